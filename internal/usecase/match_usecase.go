package usecase

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/careatlas/careatlas/internal/domain"
	"github.com/careatlas/careatlas/internal/ports"
	"github.com/sirupsen/logrus"
)

// MatchConfig bounds the matching engine
type MatchConfig struct {
	MaxResults       int
	FallbackRadiusKm int
	QueryTimeout     time.Duration
}

// MatchUseCase answers search queries against visible listings with a
// bounded, deterministically ranked result and a telehealth fallback when no
// local match exists. It performs no I/O of its own beyond the listing store.
type MatchUseCase struct {
	listings ports.ListingRepository
	logger   *logrus.Logger
	cfg      MatchConfig
}

// NewMatchUseCase creates a new matching engine
func NewMatchUseCase(listings ports.ListingRepository, logger *logrus.Logger, cfg MatchConfig) *MatchUseCase {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 4
	}
	if cfg.FallbackRadiusKm <= 0 {
		cfg.FallbackRadiusKm = 25
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 5 * time.Second
	}
	return &MatchUseCase{
		listings: listings,
		logger:   logger,
		cfg:      cfg,
	}
}

// Match runs the query against the visible listing set. The caller's query
// is never mutated, so a failed attempt can be retried verbatim. A store
// failure or timeout surfaces as ErrBackendUnavailable, never as a partial
// result.
func (uc *MatchUseCase) Match(ctx context.Context, query domain.SearchQuery) (*domain.MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.QueryTimeout)
	defer cancel()

	approved, err := uc.listings.ListByStatus(ctx, domain.StatusApproved)
	if err != nil {
		uc.logger.WithError(err).Error("Listing store unreachable during match")
		return nil, domain.ErrBackendUnavailable
	}

	var visible []*domain.Listing
	for _, listing := range approved {
		if domain.IsVisible(listing) {
			visible = append(visible, listing)
		}
	}

	var matched []*domain.Listing
	for _, listing := range visible {
		if uc.matches(listing, query) {
			matched = append(matched, listing)
		}
	}

	if len(matched) > 0 {
		rank(matched, query)
		if len(matched) > uc.cfg.MaxResults {
			matched = matched[:uc.cfg.MaxResults]
		}
		return &domain.MatchResult{Results: matched}, nil
	}

	// Broadening fallback: drop the location constraint and fall back to the
	// telehealth-capable subset of visible listings.
	var telehealth []*domain.Listing
	for _, listing := range visible {
		if listing.Telehealth {
			telehealth = append(telehealth, listing)
		}
	}
	sort.SliceStable(telehealth, func(i, j int) bool {
		if !telehealth[i].CreatedAt.Equal(telehealth[j].CreatedAt) {
			return telehealth[i].CreatedAt.After(telehealth[j].CreatedAt)
		}
		return telehealth[i].ID < telehealth[j].ID
	})

	return &domain.MatchResult{
		Results: []*domain.Listing{},
		Fallback: &domain.Fallback{
			Telehealth: telehealth,
			RadiusKm:   uc.cfg.FallbackRadiusKm,
		},
	}, nil
}

func (uc *MatchUseCase) matches(listing *domain.Listing, query domain.SearchQuery) bool {
	if !matchesLocation(listing, query.Location) {
		return false
	}
	if len(query.ServiceTypes) > 0 && !intersects(listing.Specialties, query.ServiceTypes) {
		return false
	}
	if len(query.Costs) > 0 && !containsFold(query.Costs, string(listing.FeeBucket())) {
		return false
	}
	return true
}

// matchesLocation does a token overlap against the listing's free-text
// location. Exact geocoding belongs to an external collaborator.
func matchesLocation(listing *domain.Listing, location string) bool {
	tokens := tokenize(location)
	if len(tokens) == 0 {
		return true
	}
	haystack := strings.ToLower(listing.Location)
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}

// rank orders by relevance score descending (count of matched filter
// dimensions), then most recently created, then id ascending as the final
// deterministic tie-break.
func rank(listings []*domain.Listing, query domain.SearchQuery) {
	scores := make(map[string]int, len(listings))
	for _, listing := range listings {
		scores[listing.ID] = score(listing, query)
	}
	sort.SliceStable(listings, func(i, j int) bool {
		si, sj := scores[listings[i].ID], scores[listings[j].ID]
		if si != sj {
			return si > sj
		}
		if !listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		}
		return listings[i].ID < listings[j].ID
	})
}

func score(listing *domain.Listing, query domain.SearchQuery) int {
	s := 0
	if len(tokenize(query.Location)) > 0 && matchesLocation(listing, query.Location) {
		s++
	}
	if len(query.ServiceTypes) > 0 && intersects(listing.Specialties, query.ServiceTypes) {
		s++
	}
	if len(query.Costs) > 0 && containsFold(query.Costs, string(listing.FeeBucket())) {
		s++
	}
	return s
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if containsFold(b, x) {
			return true
		}
	}
	return false
}

func containsFold(set []string, value string) bool {
	for _, s := range set {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}
