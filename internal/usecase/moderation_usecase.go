package usecase

import (
	"context"
	"iter"

	"github.com/careatlas/careatlas/internal/domain"
	"github.com/careatlas/careatlas/internal/ports"
	"github.com/sirupsen/logrus"
)

// VersionFromStore tells the workflow to apply a decision against whatever
// version the store currently holds instead of a version the caller saw.
// The guarded update still makes a concurrent loser fail visibly.
const VersionFromStore int64 = -1

const defaultPendingPageSize = 50

// ModerationUseCase mediates moderator decisions with conflict safety and
// produces the audit trail.
type ModerationUseCase struct {
	listings ports.ListingRepository
	actions  ports.ModerationActionRepository
	logger   *logrus.Logger
	pageSize int
}

// NewModerationUseCase creates a new moderation use case
func NewModerationUseCase(listings ports.ListingRepository, actions ports.ModerationActionRepository, logger *logrus.Logger) *ModerationUseCase {
	return &ModerationUseCase{
		listings: listings,
		actions:  actions,
		logger:   logger,
		pageSize: defaultPendingPageSize,
	}
}

// SetPageSize overrides how many listings each pending-queue page fetches
func (uc *ModerationUseCase) SetPageSize(n int) {
	if n > 0 {
		uc.pageSize = n
	}
}

// Pending returns the review queue as a lazy, finite, restartable sequence:
// listings in PENDING_REVIEW ordered oldest-submitted-first, ties broken by
// id ascending. Pages are fetched from the store as the sequence is
// consumed; ranging again restarts the queue from the head.
func (uc *ModerationUseCase) Pending(ctx context.Context) iter.Seq2[*domain.Listing, error] {
	return func(yield func(*domain.Listing, error) bool) {
		offset := 0
		for {
			page, err := uc.listings.ListPending(ctx, uc.pageSize, offset)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, listing := range page {
				if !yield(listing, nil) {
					return
				}
			}
			if len(page) < uc.pageSize {
				return
			}
			offset += len(page)
		}
	}
}

// ListPending drains the pending sequence into a slice
func (uc *ModerationUseCase) ListPending(ctx context.Context) ([]*domain.Listing, error) {
	var pending []*domain.Listing
	for listing, err := range uc.Pending(ctx) {
		if err != nil {
			return nil, err
		}
		pending = append(pending, listing)
	}
	return pending, nil
}

// Approve publishes a listing under optimistic concurrency and appends an
// APPROVE action to the audit trail. Exactly one of two racing moderators
// succeeds; the loser receives domain.ErrVersionConflict and must re-read.
func (uc *ModerationUseCase) Approve(ctx context.Context, id, moderatorID string, expectedVersion int64) (*domain.Listing, error) {
	return uc.decide(ctx, id, moderatorID, domain.ActionApprove, "", expectedVersion)
}

// Disable hides a listing with a mandatory reason, same conflict semantics
// as Approve.
func (uc *ModerationUseCase) Disable(ctx context.Context, id, moderatorID, reason string, expectedVersion int64) (*domain.Listing, error) {
	if reason == "" {
		return nil, domain.ErrEmptyReason
	}
	return uc.decide(ctx, id, moderatorID, domain.ActionDisable, reason, expectedVersion)
}

// Actions retrieves the audit trail for a listing, oldest first
func (uc *ModerationUseCase) Actions(ctx context.Context, listingID string) ([]*domain.ModerationAction, error) {
	if _, err := uc.listings.FindByID(ctx, listingID); err != nil {
		return nil, err
	}
	return uc.actions.ListByListing(ctx, listingID)
}

func (uc *ModerationUseCase) decide(ctx context.Context, id, moderatorID string, kind domain.ActionKind, reason string, expectedVersion int64) (*domain.Listing, error) {
	listing, err := uc.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// A stale version is a conflict, not a transition problem: the caller
	// must re-read and retry, regardless of what status the listing is in now.
	if expectedVersion == VersionFromStore {
		expectedVersion = listing.Version
	} else if expectedVersion != listing.Version {
		return nil, domain.ErrVersionConflict
	}

	switch kind {
	case domain.ActionApprove:
		err = listing.Approve()
	case domain.ActionDisable:
		err = listing.Disable(reason)
	}
	if err != nil {
		return nil, err
	}

	if err := uc.listings.Update(ctx, listing, expectedVersion); err != nil {
		return nil, err
	}

	action := domain.NewModerationAction(listing.ID, moderatorID, kind, reason, expectedVersion)
	if err := uc.actions.Append(ctx, action); err != nil {
		// The transition already took effect; losing an audit row is logged
		// loudly rather than unwinding the decision.
		uc.logger.WithError(err).WithFields(logrus.Fields{
			"listing_id":   listing.ID,
			"moderator_id": moderatorID,
			"kind":         kind,
		}).Error("Failed to append moderation action")
	} else {
		uc.logger.WithFields(logrus.Fields{
			"listing_id":   listing.ID,
			"moderator_id": moderatorID,
			"kind":         kind,
			"version":      listing.Version,
		}).Info("Moderation decision applied")
	}

	return listing, nil
}
