package domain

import (
	"fmt"
	"strings"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

var (
	ErrListingNotFound    = NewDomainError("listing not found")
	ErrVersionConflict    = NewDomainError("listing was modified by someone else")
	ErrEmptyReason        = NewDomainError("disable reason is required")
	ErrBackendUnavailable = NewDomainError("listing store is unavailable")
)

// ValidationError reports every missing or empty required field so callers
// can present all problems at once.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// InvalidTransitionError reports a lifecycle rule violation, such as
// approving a draft.
type InvalidTransitionError struct {
	From   ListingStatus
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a listing in status %s", e.Action, e.From)
}
