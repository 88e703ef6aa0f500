package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/careatlas/careatlas/internal/domain"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// memListingRepo is an in-memory ListingRepository with the same
// version-guard semantics as the Postgres implementation.
type memListingRepo struct {
	mu       sync.Mutex
	listings map[string]domain.Listing
	failWith error
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{listings: make(map[string]domain.Listing)}
}

func (r *memListingRepo) Create(ctx context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.listings[listing.ID] = *listing
	return nil
}

func (r *memListingRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	listing, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	copied := listing
	return &copied, nil
}

func (r *memListingRepo) Update(ctx context.Context, listing *domain.Listing, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	stored, ok := r.listings[listing.ID]
	if !ok {
		return domain.ErrListingNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	listing.Version = expectedVersion + 1
	r.listings[listing.ID] = *listing
	return nil
}

func (r *memListingRepo) ListByStatus(ctx context.Context, status domain.ListingStatus) ([]*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	var result []*domain.Listing
	for _, listing := range r.listings {
		if listing.Status == status {
			copied := listing
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *memListingRepo) ListPending(ctx context.Context, limit, offset int) ([]*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	var pending []*domain.Listing
	for _, listing := range r.listings {
		if listing.Status == domain.StatusPendingReview {
			copied := listing
			pending = append(pending, &copied)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if a.SubmittedAt != nil && b.SubmittedAt != nil && !a.SubmittedAt.Equal(*b.SubmittedAt) {
			return a.SubmittedAt.Before(*b.SubmittedAt)
		}
		return a.ID < b.ID
	})
	if offset >= len(pending) {
		return nil, nil
	}
	pending = pending[offset:]
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

// memActionRepo is an in-memory append-only audit trail
type memActionRepo struct {
	mu      sync.Mutex
	actions []*domain.ModerationAction
}

func newMemActionRepo() *memActionRepo {
	return &memActionRepo{}
}

func (r *memActionRepo) Append(ctx context.Context, action *domain.ModerationAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *action
	r.actions = append(r.actions, &copied)
	return nil
}

func (r *memActionRepo) ListByListing(ctx context.Context, listingID string) ([]*domain.ModerationAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.ModerationAction
	for _, action := range r.actions {
		if action.ListingID == listingID {
			copied := *action
			result = append(result, &copied)
		}
	}
	return result, nil
}

var errStoreDown = errors.New("connection refused")
