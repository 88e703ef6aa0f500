package http

import (
	"encoding/json"
	"net/http"

	"github.com/careatlas/careatlas/internal/domain"
	"github.com/careatlas/careatlas/internal/usecase"
	"github.com/careatlas/careatlas/pkg/apperror"
	"github.com/gorilla/mux"
)

// ListingHandler handles HTTP requests for the listing lifecycle
type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

// RegisterRoutes registers listing routes
func (h *ListingHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/listings", h.CreateListing).Methods("POST")
	router.HandleFunc("/api/listings/{id}", h.GetListing).Methods("GET")
	router.HandleFunc("/api/listings/{id}", h.UpdateListing).Methods("PATCH")
	router.HandleFunc("/api/listings/{id}/submit", h.SubmitListing).Methods("POST")
}

// CreateListing handles listing creation
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, domain.ActionCreateListing); !ok {
		return
	}

	var req usecase.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.NewBadRequest("invalid request body"))
		return
	}

	listing, err := h.listingUseCase.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": listing.ID})
}

// GetListing handles retrieving a single listing
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listingUseCase.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	// End users only ever see visible listings; owners and moderators see all.
	identity := identityFrom(r.Context())
	if !domain.CanPerform(identity.Role, domain.ActionModerate) && !domain.IsVisible(listing) {
		writeError(w, domain.ErrListingNotFound)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// UpdateListing handles partial updates under optimistic concurrency
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, domain.ActionUpdateListing); !ok {
		return
	}

	var req usecase.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.NewBadRequest("invalid request body"))
		return
	}

	listing, err := h.listingUseCase.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// SubmitListing moves a draft into the moderation queue
func (h *ListingHandler) SubmitListing(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, domain.ActionSubmitListing); !ok {
		return
	}

	listing, err := h.listingUseCase.SubmitForReview(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}
