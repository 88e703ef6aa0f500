package domain

import "strings"

// CostBucket classifies a listing's fee description for filtering
type CostBucket string

const (
	CostFree CostBucket = "Free"
	CostPaid CostBucket = "Paid"
	CostNA   CostBucket = "N/A"
)

// SearchQuery is an ephemeral search request. Empty filter sets mean "any".
type SearchQuery struct {
	Location     string   `json:"location"`
	ServiceTypes []string `json:"service_type"`
	Costs        []string `json:"cost"`
}

// Fallback is the safety backstop returned when no local match exists:
// telehealth-capable visible listings plus the radius the search was
// broadened to.
type Fallback struct {
	Telehealth []*Listing `json:"telehealth"`
	RadiusKm   int        `json:"radiusKm"`
}

// MatchResult is either a ranked list of at most MaxResults listings, or an
// empty list accompanied by a fallback payload.
type MatchResult struct {
	Results  []*Listing `json:"results"`
	Fallback *Fallback  `json:"fallback,omitempty"`
}

// FeeBucket derives the cost bucket from the listing's free-text fee
// description. "Free" anywhere in the text or a zero amount counts as free;
// a blank fee is N/A.
func (l *Listing) FeeBucket() CostBucket {
	fee := strings.TrimSpace(strings.ToLower(l.Fee))
	switch {
	case fee == "" || fee == "n/a":
		return CostNA
	case strings.Contains(fee, "free") || fee == "$0" || fee == "0":
		return CostFree
	default:
		return CostPaid
	}
}
