package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind represents the kind of moderation decision
type ActionKind string

const (
	ActionApprove ActionKind = "APPROVE"
	ActionDisable ActionKind = "DISABLE"
)

// ModerationAction is an append-only audit record of a moderator decision.
// It is immutable once created and never deleted.
type ModerationAction struct {
	ID             string     `json:"id"`
	ListingID      string     `json:"listing_id"`
	ModeratorID    string     `json:"moderator_id"`
	Kind           ActionKind `json:"kind"`
	Reason         string     `json:"reason,omitempty"`
	ListingVersion int64      `json:"listing_version"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewModerationAction records a moderator decision against the listing
// version it was applied to.
func NewModerationAction(listingID, moderatorID string, kind ActionKind, reason string, listingVersion int64) *ModerationAction {
	return &ModerationAction{
		ID:             uuid.NewString(),
		ListingID:      listingID,
		ModeratorID:    moderatorID,
		Kind:           kind,
		Reason:         reason,
		ListingVersion: listingVersion,
		CreatedAt:      time.Now(),
	}
}
