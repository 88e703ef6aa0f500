package ports

import (
	"context"

	"github.com/careatlas/careatlas/internal/domain"
)

// ListingRepository defines the interface for listing persistence. It is the
// single source of truth for listing records; every mutation after create
// goes through the version-guarded Update.
type ListingRepository interface {
	// Create saves a new listing
	Create(ctx context.Context, listing *domain.Listing) error

	// FindByID retrieves a listing by its ID
	FindByID(ctx context.Context, id string) (*domain.Listing, error)

	// Update persists the listing only if the stored version still equals
	// expectedVersion, incrementing the version on success. A mismatch
	// returns domain.ErrVersionConflict.
	Update(ctx context.Context, listing *domain.Listing, expectedVersion int64) error

	// ListByStatus retrieves all listings with the given status, newest
	// created first.
	ListByStatus(ctx context.Context, status domain.ListingStatus) ([]*domain.Listing, error)

	// ListPending retrieves a page of PENDING_REVIEW listings ordered
	// oldest-submitted-first, ties broken by id ascending.
	ListPending(ctx context.Context, limit, offset int) ([]*domain.Listing, error)
}

// ModerationActionRepository defines the interface for the append-only
// moderation audit trail.
type ModerationActionRepository interface {
	// Append records a moderation action; records are immutable once written
	Append(ctx context.Context, action *domain.ModerationAction) error

	// ListByListing retrieves the audit trail for a listing, oldest first
	ListByListing(ctx context.Context, listingID string) ([]*domain.ModerationAction, error)
}
