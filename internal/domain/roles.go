package domain

// Role identifies the caller as supplied by the external identity subsystem.
// The core trusts the role and performs authorization only.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Action names an operation gated by authorization
type Action string

const (
	ActionCreateListing Action = "listing.create"
	ActionUpdateListing Action = "listing.update"
	ActionSubmitListing Action = "listing.submit"
	ActionModerate      Action = "listing.moderate"
	ActionSearch        Action = "services.search"
)

// CanPerform is the single authorization predicate, evaluated once at the
// core boundary.
func CanPerform(role Role, action Action) bool {
	switch action {
	case ActionModerate:
		return role == RoleModerator || role == RoleAdmin
	case ActionCreateListing, ActionUpdateListing, ActionSubmitListing, ActionSearch:
		return role == RoleUser || role == RoleModerator || role == RoleAdmin
	default:
		return false
	}
}
