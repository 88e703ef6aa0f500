package domain

import (
	"time"

	"github.com/google/uuid"
)

// ListingStatus represents the lifecycle status of a listing
type ListingStatus string

const (
	StatusDraft         ListingStatus = "DRAFT"
	StatusPendingReview ListingStatus = "PENDING_REVIEW"
	StatusApproved      ListingStatus = "APPROVED"
	StatusDisabled      ListingStatus = "DISABLED"
)

// Availability represents how much capacity a provider currently has
type Availability string

const (
	AvailabilityOpen    Availability = "Open"
	AvailabilityLimited Availability = "Limited"
	AvailabilityClosed  Availability = "Closed"
)

// Listing represents a service provider entry in the directory
type Listing struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Location         string        `json:"location"`
	Specialties      []string      `json:"specialties"`
	Modalities       []string      `json:"modalities"`
	Fee              string        `json:"fee"`
	Telehealth       bool          `json:"telehealth"`
	Languages        []string      `json:"languages"`
	Hours            string        `json:"hours"`
	Availability     Availability  `json:"availability"`
	Status           ListingStatus `json:"status"`
	Active           bool          `json:"active"`
	ModerationReason string        `json:"moderation_reason,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	SubmittedAt      *time.Time    `json:"submitted_at,omitempty"`
	Version          int64         `json:"version"`
}

// ListingFields carries the provider-editable attributes of a listing.
type ListingFields struct {
	Name         string
	Location     string
	Specialties  []string
	Modalities   []string
	Fee          string
	Telehealth   bool
	Languages    []string
	Hours        string
	Availability Availability
}

// NewListing creates a new listing in DRAFT status
func NewListing(fields ListingFields) *Listing {
	now := time.Now()
	return &Listing{
		ID:           uuid.NewString(),
		Name:         fields.Name,
		Location:     fields.Location,
		Specialties:  fields.Specialties,
		Modalities:   fields.Modalities,
		Fee:          fields.Fee,
		Telehealth:   fields.Telehealth,
		Languages:    fields.Languages,
		Hours:        fields.Hours,
		Availability: fields.Availability,
		Status:       StatusDraft,
		Active:       false,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      0,
	}
}

// Validate checks that every required attribute is non-empty. It reports all
// violations at once so callers can surface them in a single response.
func (l *Listing) Validate() error {
	var missing []string
	if l.Name == "" {
		missing = append(missing, "name")
	}
	if l.Location == "" {
		missing = append(missing, "location")
	}
	if len(l.Specialties) == 0 {
		missing = append(missing, "specialties")
	}
	if l.Fee == "" {
		missing = append(missing, "fee")
	}
	if len(l.Languages) == 0 {
		missing = append(missing, "languages")
	}
	if l.Hours == "" {
		missing = append(missing, "hours")
	}
	if l.Availability == "" {
		missing = append(missing, "availability")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// SubmitForReview moves the listing from DRAFT to PENDING_REVIEW.
// The required-field invariant must hold before the listing leaves DRAFT.
func (l *Listing) SubmitForReview() error {
	if l.Status != StatusDraft {
		return &InvalidTransitionError{From: l.Status, Action: "submit"}
	}
	if err := l.Validate(); err != nil {
		return err
	}
	now := time.Now()
	l.Status = StatusPendingReview
	l.SubmittedAt = &now
	l.UpdatedAt = now
	return nil
}

// Approve publishes the listing. Re-approval of a disabled listing is
// allowed; approving a draft or an already-approved listing is not.
func (l *Listing) Approve() error {
	if l.Status != StatusPendingReview && l.Status != StatusDisabled {
		return &InvalidTransitionError{From: l.Status, Action: "approve"}
	}
	l.Status = StatusApproved
	l.Active = true
	l.ModerationReason = ""
	l.UpdatedAt = time.Now()
	return nil
}

// Disable hides the listing with a mandatory reason. A pending or approved
// listing may be disabled; a draft or already-disabled listing may not.
func (l *Listing) Disable(reason string) error {
	if reason == "" {
		return ErrEmptyReason
	}
	if l.Status != StatusPendingReview && l.Status != StatusApproved {
		return &InvalidTransitionError{From: l.Status, Action: "disable"}
	}
	l.Status = StatusDisabled
	l.Active = false
	l.ModerationReason = reason
	l.UpdatedAt = time.Now()
	return nil
}

// SetActive toggles the active flag. The flag is orthogonal to status and
// only has visible effect while the listing is APPROVED.
func (l *Listing) SetActive(active bool) {
	l.Active = active
	l.UpdatedAt = time.Now()
}
