package domain

// IsVisible reports whether a listing may appear to end users. This is the
// single visibility predicate; every code path that exposes a listing to a
// search or match result must route through it.
func IsVisible(l *Listing) bool {
	return l.Status == StatusApproved && l.Active
}
