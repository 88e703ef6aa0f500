package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/careatlas/careatlas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedListing(t *testing.T, repo *memListingRepo, fields domain.ListingFields, createdAt time.Time) *domain.Listing {
	t.Helper()
	listing := domain.NewListing(fields)
	listing.Status = domain.StatusApproved
	listing.Active = true
	listing.CreatedAt = createdAt
	require.NoError(t, repo.Create(context.Background(), listing))
	return listing
}

func melbourneFields(name, fee string, telehealth bool) domain.ListingFields {
	return domain.ListingFields{
		Name:         name,
		Location:     "Melbourne VIC",
		Specialties:  []string{"Anxiety", "Counselling"},
		Fee:          fee,
		Telehealth:   telehealth,
		Languages:    []string{"English"},
		Hours:        "Mon-Fri 9-5",
		Availability: domain.AvailabilityOpen,
	}
}

func TestMatchUseCase_FiltersAreConjunctive(t *testing.T) {
	repo := newMemListingRepo()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	approvedListing(t, repo, melbourneFields("Melbourne Anxiety Paid", "$120", false), now)
	approvedListing(t, repo, melbourneFields("Melbourne Anxiety Free", "Free", false), now.Add(time.Minute))

	sydney := melbourneFields("Sydney Anxiety Free", "Free", false)
	sydney.Location = "Sydney NSW"
	approvedListing(t, repo, sydney, now.Add(2*time.Minute))

	depression := melbourneFields("Melbourne Depression Free", "Free", false)
	depression.Specialties = []string{"Depression"}
	approvedListing(t, repo, depression, now.Add(3*time.Minute))

	uc := NewMatchUseCase(repo, testLogger(), MatchConfig{})

	result, err := uc.Match(context.Background(), domain.SearchQuery{
		Location:     "Melbourne",
		ServiceTypes: []string{"Anxiety"},
		Costs:        []string{"Free"},
	})
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, "Melbourne Anxiety Free", result.Results[0].Name)
	assert.Nil(t, result.Fallback)
}

func TestMatchUseCase_CapsResults(t *testing.T) {
	repo := newMemListingRepo()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		fields := melbourneFields(fmt.Sprintf("Clinic %d", i), "$100", false)
		approvedListing(t, repo, fields, now.Add(time.Duration(i)*time.Minute))
	}

	uc := NewMatchUseCase(repo, testLogger(), MatchConfig{})

	result, err := uc.Match(context.Background(), domain.SearchQuery{Location: "Melbourne"})
	require.NoError(t, err)

	assert.Len(t, result.Results, 4)
}

func TestMatchUseCase_RankingIsDeterministic(t *testing.T) {
	repo := newMemListingRepo()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Same creation instant forces the id tie-break.
	for i := 0; i < 3; i++ {
		approvedListing(t, repo, melbourneFields(fmt.Sprintf("Clinic %d", i), "$100", false), now)
	}

	uc := NewMatchUseCase(repo, testLogger(), MatchConfig{})
	query := domain.SearchQuery{Location: "Melbourne"}

	first, err := uc.Match(context.Background(), query)
	require.NoError(t, err)
	second, err := uc.Match(context.Background(), query)
	require.NoError(t, err)

	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].ID, second.Results[i].ID)
	}
	for i := 1; i < len(first.Results); i++ {
		assert.Less(t, first.Results[i-1].ID, first.Results[i].ID)
	}
}

func TestMatchUseCase_HigherScoreRanksFirst(t *testing.T) {
	repo := newMemListingRepo()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Older but matches location and specialty; should outrank the newer
	// listing that matches on location alone.
	full := melbourneFields("Full Match", "$100", false)
	approvedListing(t, repo, full, now)

	partial := melbourneFields("Location Only", "$100", false)
	partial.Specialties = []string{"Trauma"}
	approvedListing(t, repo, partial, now.Add(time.Hour))

	uc := NewMatchUseCase(repo, testLogger(), MatchConfig{})

	result, err := uc.Match(context.Background(), domain.SearchQuery{
		Location:     "Melbourne",
		ServiceTypes: []string{"Anxiety", "Trauma"},
	})
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	assert.Equal(t, "Full Match", result.Results[0].Name)
}

func TestMatchUseCase_FallbackWhenNothingMatches(t *testing.T) {
	repo := newMemListingRepo()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	approvedListing(t, repo, melbourneFields("In Person Only", "$100", false), now)
	tele := approvedListing(t, repo, melbourneFields("Telehealth Clinic", "$100", true), now.Add(time.Minute))

	uc := NewMatchUseCase(repo, testLogger(), MatchConfig{})

	result, err := uc.Match(context.Background(), domain.SearchQuery{Location: "Perth"})
	require.NoError(t, err)

	assert.Empty(t, result.Results)
	require.NotNil(t, result.Fallback)
	assert.Equal(t, 25, result.Fallback.RadiusKm)
	require.Len(t, result.Fallback.Telehealth, 1)
	assert.Equal(t, tele.ID, result.Fallback.Telehealth[0].ID)
}

func TestMatchUseCase_ExcludesInvisibleListings(t *testing.T) {
	repo := newMemListingRepo()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	visible := approvedListing(t, repo, melbourneFields("Visible", "$100", false), now)

	deactivated := domain.NewListing(melbourneFields("Deactivated", "$100", false))
	deactivated.Status = domain.StatusApproved
	deactivated.Active = false
	deactivated.CreatedAt = now
	require.NoError(t, repo.Create(context.Background(), deactivated))

	disabled := domain.NewListing(melbourneFields("Disabled", "$100", false))
	disabled.Status = domain.StatusDisabled
	disabled.CreatedAt = now
	require.NoError(t, repo.Create(context.Background(), disabled))

	uc := NewMatchUseCase(repo, testLogger(), MatchConfig{})

	result, err := uc.Match(context.Background(), domain.SearchQuery{Location: "Melbourne"})
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, visible.ID, result.Results[0].ID)
}

func TestMatchUseCase_EmptyQueryReturnsVisibleSet(t *testing.T) {
	repo := newMemListingRepo()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	approvedListing(t, repo, melbourneFields("Any Clinic", "$100", false), now)

	uc := NewMatchUseCase(repo, testLogger(), MatchConfig{})

	result, err := uc.Match(context.Background(), domain.SearchQuery{})
	require.NoError(t, err)

	assert.Len(t, result.Results, 1)
}

func TestMatchUseCase_StoreFailureIsNeverPartial(t *testing.T) {
	repo := newMemListingRepo()
	repo.failWith = errStoreDown
	uc := NewMatchUseCase(repo, testLogger(), MatchConfig{})

	result, err := uc.Match(context.Background(), domain.SearchQuery{Location: "Melbourne"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestMatchUseCase_CostBucketFilter(t *testing.T) {
	repo := newMemListingRepo()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	approvedListing(t, repo, melbourneFields("Paid Clinic", "$150", false), now)
	free := approvedListing(t, repo, melbourneFields("Free Clinic", "Free", false), now.Add(time.Minute))

	uc := NewMatchUseCase(repo, testLogger(), MatchConfig{})

	result, err := uc.Match(context.Background(), domain.SearchQuery{
		Location: "Melbourne",
		Costs:    []string{"free"},
	})
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, free.ID, result.Results[0].ID)
}
