package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/careatlas/careatlas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPending(t *testing.T, repo *memListingRepo, names ...string) []*domain.Listing {
	t.Helper()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var created []*domain.Listing
	for i, name := range names {
		fields := domain.ListingFields{
			Name:         name,
			Location:     "Melbourne",
			Specialties:  []string{"Anxiety"},
			Fee:          "$100",
			Languages:    []string{"English"},
			Hours:        "Mon-Fri 9-5",
			Availability: domain.AvailabilityOpen,
		}
		listing := domain.NewListing(fields)
		require.NoError(t, listing.SubmitForReview())
		submitted := base.Add(time.Duration(i) * time.Minute)
		listing.SubmittedAt = &submitted
		require.NoError(t, repo.Create(context.Background(), listing))
		created = append(created, listing)
	}
	return created
}

func TestModerationUseCase_PendingOrderedBySubmission(t *testing.T) {
	repo := newMemListingRepo()
	uc := NewModerationUseCase(repo, newMemActionRepo(), testLogger())

	seedPending(t, repo, "First In", "Second In", "Third In")

	pending, err := uc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 3)

	assert.Equal(t, "First In", pending[0].Name)
	assert.Equal(t, "Second In", pending[1].Name)
	assert.Equal(t, "Third In", pending[2].Name)
}

func TestModerationUseCase_PendingIsRestartable(t *testing.T) {
	repo := newMemListingRepo()
	uc := NewModerationUseCase(repo, newMemActionRepo(), testLogger())
	uc.SetPageSize(2)

	seedPending(t, repo, "A", "B", "C", "D", "E")

	seq := uc.Pending(context.Background())

	var first []string
	for listing, err := range seq {
		require.NoError(t, err)
		first = append(first, listing.Name)
	}

	// Ranging a second time restarts from the head of the queue.
	var second []string
	for listing, err := range seq {
		require.NoError(t, err)
		second = append(second, listing.Name)
	}

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, first)
	assert.Equal(t, first, second)
}

func TestModerationUseCase_PendingStopsEarly(t *testing.T) {
	repo := newMemListingRepo()
	uc := NewModerationUseCase(repo, newMemActionRepo(), testLogger())
	uc.SetPageSize(2)

	seedPending(t, repo, "A", "B", "C", "D")

	var seen []string
	for listing, err := range uc.Pending(context.Background()) {
		require.NoError(t, err)
		seen = append(seen, listing.Name)
		if len(seen) == 3 {
			break
		}
	}

	assert.Equal(t, []string{"A", "B", "C"}, seen)
}

func TestModerationUseCase_Approve(t *testing.T) {
	repo := newMemListingRepo()
	actions := newMemActionRepo()
	uc := NewModerationUseCase(repo, actions, testLogger())

	listing := seedPending(t, repo, "Calm Minds Clinic")[0]

	approved, err := uc.Approve(context.Background(), listing.ID, "mod-1", listing.Version)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, approved.Status)
	assert.True(t, approved.Active)
	assert.Equal(t, listing.Version+1, approved.Version)

	trail, err := uc.Actions(context.Background(), listing.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, domain.ActionApprove, trail[0].Kind)
	assert.Equal(t, "mod-1", trail[0].ModeratorID)
	assert.Equal(t, listing.Version, trail[0].ListingVersion)
}

func TestModerationUseCase_StaleApproveConflicts(t *testing.T) {
	repo := newMemListingRepo()
	uc := NewModerationUseCase(repo, newMemActionRepo(), testLogger())

	listing := seedPending(t, repo, "Calm Minds Clinic")[0]
	stale := listing.Version

	_, err := uc.Approve(context.Background(), listing.ID, "mod-1", stale)
	require.NoError(t, err)

	// Second moderator still holds the pre-decision version and must be told
	// to re-read, not that the transition is impossible.
	_, err = uc.Approve(context.Background(), listing.ID, "mod-2", stale)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestModerationUseCase_StaleDisableConflicts(t *testing.T) {
	repo := newMemListingRepo()
	uc := NewModerationUseCase(repo, newMemActionRepo(), testLogger())

	listing := seedPending(t, repo, "Calm Minds Clinic")[0]
	stale := listing.Version

	_, err := uc.Disable(context.Background(), listing.ID, "mod-1", "Duplicate", stale)
	require.NoError(t, err)

	_, err = uc.Disable(context.Background(), listing.ID, "mod-2", "Duplicate", stale)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestModerationUseCase_VersionGuardLosesOnConcurrentEdit(t *testing.T) {
	repo := newMemListingRepo()
	uc := NewModerationUseCase(repo, newMemActionRepo(), testLogger())

	listing := seedPending(t, repo, "Calm Minds Clinic")[0]

	// A provider edit bumps the stored version after the moderator read it.
	stored, err := repo.FindByID(context.Background(), listing.ID)
	require.NoError(t, err)
	stored.Hours = "Mon-Sat 9-5"
	require.NoError(t, repo.Update(context.Background(), stored, stored.Version))

	_, err = uc.Approve(context.Background(), listing.ID, "mod-1", listing.Version)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestModerationUseCase_VersionFromStore(t *testing.T) {
	repo := newMemListingRepo()
	uc := NewModerationUseCase(repo, newMemActionRepo(), testLogger())

	listing := seedPending(t, repo, "Calm Minds Clinic")[0]

	approved, err := uc.Approve(context.Background(), listing.ID, "mod-1", VersionFromStore)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)
}

func TestModerationUseCase_DisableRequiresReason(t *testing.T) {
	repo := newMemListingRepo()
	uc := NewModerationUseCase(repo, newMemActionRepo(), testLogger())

	listing := seedPending(t, repo, "Calm Minds Clinic")[0]

	_, err := uc.Disable(context.Background(), listing.ID, "mod-1", "", VersionFromStore)
	assert.ErrorIs(t, err, domain.ErrEmptyReason)
}

func TestModerationUseCase_DisableThenReapprove(t *testing.T) {
	repo := newMemListingRepo()
	actions := newMemActionRepo()
	uc := NewModerationUseCase(repo, actions, testLogger())

	listing := seedPending(t, repo, "Calm Minds Clinic")[0]

	approved, err := uc.Approve(context.Background(), listing.ID, "mod-1", VersionFromStore)
	require.NoError(t, err)

	disabled, err := uc.Disable(context.Background(), listing.ID, "mod-1", "Out of date details", approved.Version)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDisabled, disabled.Status)
	assert.False(t, disabled.Active)
	assert.Equal(t, "Out of date details", disabled.ModerationReason)

	reapproved, err := uc.Approve(context.Background(), listing.ID, "mod-2", disabled.Version)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, reapproved.Status)
	assert.Empty(t, reapproved.ModerationReason)

	trail, err := uc.Actions(context.Background(), listing.ID)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, domain.ActionApprove, trail[0].Kind)
	assert.Equal(t, domain.ActionDisable, trail[1].Kind)
	assert.Equal(t, domain.ActionApprove, trail[2].Kind)
}

func TestModerationUseCase_ActionsUnknownListing(t *testing.T) {
	uc := NewModerationUseCase(newMemListingRepo(), newMemActionRepo(), testLogger())

	_, err := uc.Actions(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestModerationUseCase_PendingSurfacesStoreFailure(t *testing.T) {
	repo := newMemListingRepo()
	repo.failWith = errStoreDown
	uc := NewModerationUseCase(repo, newMemActionRepo(), testLogger())

	_, err := uc.ListPending(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
}
