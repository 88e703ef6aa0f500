package apperror

import (
	"errors"
	"net/http"

	"github.com/careatlas/careatlas/internal/domain"
)

// AppError is the HTTP-facing form of a core error
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"-"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewBadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: message, Status: http.StatusForbidden}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message, Status: http.StatusUnauthorized}
}

// MapError translates the core error taxonomy to HTTP. Every kind surfaces
// verbatim; only unknown errors collapse into a backend-unavailable response
// so callers can retry with backoff instead of discarding user input.
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		fields := make(map[string]string, len(validation.Fields))
		for _, f := range validation.Fields {
			fields[f] = "required"
		}
		return &AppError{
			Code:    "VALIDATION_FAILED",
			Message: validation.Error(),
			Status:  http.StatusBadRequest,
			Fields:  fields,
		}
	}

	var transition *domain.InvalidTransitionError
	if errors.As(err, &transition) {
		return &AppError{Code: "INVALID_TRANSITION", Message: transition.Error(), Status: http.StatusConflict}
	}

	switch {
	case errors.Is(err, domain.ErrListingNotFound):
		return &AppError{Code: "NOT_FOUND", Message: err.Error(), Status: http.StatusNotFound}
	case errors.Is(err, domain.ErrVersionConflict):
		return &AppError{Code: "CONFLICT", Message: err.Error(), Status: http.StatusConflict}
	case errors.Is(err, domain.ErrEmptyReason):
		return &AppError{Code: "BAD_REQUEST", Message: err.Error(), Status: http.StatusBadRequest}
	case errors.Is(err, domain.ErrBackendUnavailable):
		return &AppError{Code: "BACKEND_UNAVAILABLE", Message: err.Error(), Status: http.StatusServiceUnavailable}
	default:
		return &AppError{Code: "BACKEND_UNAVAILABLE", Message: "an unexpected error occurred", Status: http.StatusServiceUnavailable}
	}
}
