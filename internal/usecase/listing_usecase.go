package usecase

import (
	"context"
	"fmt"

	"github.com/careatlas/careatlas/internal/domain"
	"github.com/careatlas/careatlas/internal/ports"
	"github.com/sirupsen/logrus"
)

// CreateListingRequest represents the request to create a listing
type CreateListingRequest struct {
	Name         string              `json:"name"`
	Location     string              `json:"location"`
	Specialties  []string            `json:"specialties"`
	Modalities   []string            `json:"modalities"`
	Fee          string              `json:"fee"`
	Telehealth   bool                `json:"telehealth"`
	Languages    []string            `json:"languages"`
	Hours        string              `json:"hours"`
	Availability domain.Availability `json:"availability"`
}

// UpdateListingRequest represents a partial update. Nil fields are left
// untouched. ExpectedVersion carries the version the caller last saw.
type UpdateListingRequest struct {
	Name            *string              `json:"name,omitempty"`
	Location        *string              `json:"location,omitempty"`
	Specialties     []string             `json:"specialties,omitempty"`
	Modalities      []string             `json:"modalities,omitempty"`
	Fee             *string              `json:"fee,omitempty"`
	Telehealth      *bool                `json:"telehealth,omitempty"`
	Languages       []string             `json:"languages,omitempty"`
	Hours           *string              `json:"hours,omitempty"`
	Availability    *domain.Availability `json:"availability,omitempty"`
	Active          *bool                `json:"active,omitempty"`
	ExpectedVersion int64                `json:"expected_version"`
}

// ListingUseCase is the single mutation authority over listing records
type ListingUseCase struct {
	listings ports.ListingRepository
	logger   *logrus.Logger
}

// NewListingUseCase creates a new listing use case
func NewListingUseCase(listings ports.ListingRepository, logger *logrus.Logger) *ListingUseCase {
	return &ListingUseCase{
		listings: listings,
		logger:   logger,
	}
}

// Create validates the required fields and stores a new DRAFT listing.
// Validation reports every missing field at once.
func (uc *ListingUseCase) Create(ctx context.Context, req CreateListingRequest) (*domain.Listing, error) {
	listing := domain.NewListing(domain.ListingFields{
		Name:         req.Name,
		Location:     req.Location,
		Specialties:  req.Specialties,
		Modalities:   req.Modalities,
		Fee:          req.Fee,
		Telehealth:   req.Telehealth,
		Languages:    req.Languages,
		Hours:        req.Hours,
		Availability: req.Availability,
	})

	if err := listing.Validate(); err != nil {
		return nil, err
	}

	if err := uc.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	uc.logger.WithFields(logrus.Fields{
		"listing_id": listing.ID,
		"name":       listing.Name,
	}).Info("Listing created")

	return listing, nil
}

// SubmitForReview moves a draft listing into the moderation queue
func (uc *ListingUseCase) SubmitForReview(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := uc.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := listing.SubmitForReview(); err != nil {
		return nil, err
	}

	if err := uc.listings.Update(ctx, listing, listing.Version); err != nil {
		return nil, err
	}

	uc.logger.WithField("listing_id", listing.ID).Info("Listing submitted for review")

	return listing, nil
}

// Update applies a partial update under optimistic concurrency. Field edits
// are allowed while the listing is in DRAFT or PENDING_REVIEW; the active
// flag alone may be toggled at any status.
func (uc *ListingUseCase) Update(ctx context.Context, id string, req UpdateListingRequest) (*domain.Listing, error) {
	listing, err := uc.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	editable := listing.Status == domain.StatusDraft || listing.Status == domain.StatusPendingReview
	if hasFieldEdits(req) && !editable {
		return nil, &domain.InvalidTransitionError{From: listing.Status, Action: "update"}
	}

	applyFieldEdits(listing, req)
	if req.Active != nil {
		listing.SetActive(*req.Active)
	}

	// A listing that already left DRAFT must keep its required fields intact.
	if listing.Status == domain.StatusPendingReview {
		if err := listing.Validate(); err != nil {
			return nil, err
		}
	}

	if err := uc.listings.Update(ctx, listing, req.ExpectedVersion); err != nil {
		return nil, err
	}

	return listing, nil
}

// Get retrieves a listing by ID
func (uc *ListingUseCase) Get(ctx context.Context, id string) (*domain.Listing, error) {
	if id == "" {
		return nil, domain.ErrListingNotFound
	}
	return uc.listings.FindByID(ctx, id)
}

// ListByStatus retrieves listings in the given lifecycle status
func (uc *ListingUseCase) ListByStatus(ctx context.Context, status domain.ListingStatus) ([]*domain.Listing, error) {
	return uc.listings.ListByStatus(ctx, status)
}

func hasFieldEdits(req UpdateListingRequest) bool {
	return req.Name != nil || req.Location != nil || req.Specialties != nil ||
		req.Modalities != nil || req.Fee != nil || req.Telehealth != nil ||
		req.Languages != nil || req.Hours != nil || req.Availability != nil
}

func applyFieldEdits(listing *domain.Listing, req UpdateListingRequest) {
	if req.Name != nil {
		listing.Name = *req.Name
	}
	if req.Location != nil {
		listing.Location = *req.Location
	}
	if req.Specialties != nil {
		listing.Specialties = req.Specialties
	}
	if req.Modalities != nil {
		listing.Modalities = req.Modalities
	}
	if req.Fee != nil {
		listing.Fee = *req.Fee
	}
	if req.Telehealth != nil {
		listing.Telehealth = *req.Telehealth
	}
	if req.Languages != nil {
		listing.Languages = req.Languages
	}
	if req.Hours != nil {
		listing.Hours = *req.Hours
	}
	if req.Availability != nil {
		listing.Availability = *req.Availability
	}
}
