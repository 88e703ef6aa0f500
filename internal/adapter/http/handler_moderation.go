package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/careatlas/careatlas/internal/domain"
	"github.com/careatlas/careatlas/internal/usecase"
	"github.com/careatlas/careatlas/pkg/apperror"
	"github.com/gorilla/mux"
)

// ModerationHandler handles HTTP requests for the moderation workflow
type ModerationHandler struct {
	moderationUseCase *usecase.ModerationUseCase
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(moderationUseCase *usecase.ModerationUseCase) *ModerationHandler {
	return &ModerationHandler{
		moderationUseCase: moderationUseCase,
	}
}

// RegisterRoutes registers moderation routes
func (h *ModerationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/listings/pending", h.ListPending).Methods("GET")
	router.HandleFunc("/api/listings/{id}/approve", h.ApproveListing).Methods("POST")
	router.HandleFunc("/api/listings/{id}/disable", h.DisableListing).Methods("POST")
	router.HandleFunc("/api/listings/{id}/actions", h.ListActions).Methods("GET")
}

// ListPending returns the review queue, oldest submission first
func (h *ModerationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, domain.ActionModerate); !ok {
		return
	}

	pending, err := h.moderationUseCase.ListPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if pending == nil {
		pending = []*domain.Listing{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"listings": pending})
}

// ApproveListing publishes a pending or disabled listing
func (h *ModerationHandler) ApproveListing(w http.ResponseWriter, r *http.Request) {
	identity, ok := authorize(w, r, domain.ActionModerate)
	if !ok {
		return
	}

	listing, err := h.moderationUseCase.Approve(
		r.Context(),
		mux.Vars(r)["id"],
		identity.UserID,
		expectedVersionFrom(r),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// DisableListing hides a listing with a mandatory reason
func (h *ModerationHandler) DisableListing(w http.ResponseWriter, r *http.Request) {
	identity, ok := authorize(w, r, domain.ActionModerate)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.NewBadRequest("invalid request body"))
		return
	}

	listing, err := h.moderationUseCase.Disable(
		r.Context(),
		mux.Vars(r)["id"],
		identity.UserID,
		req.Reason,
		expectedVersionFrom(r),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// ListActions returns the audit trail for a listing
func (h *ModerationHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, domain.ActionModerate); !ok {
		return
	}

	actions, err := h.moderationUseCase.Actions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if actions == nil {
		actions = []*domain.ModerationAction{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"actions": actions})
}

// expectedVersionFrom reads the listing version the moderation UI last saw
// from the If-Match header. Without it the decision applies against the
// stored version; the guarded update still makes races lose visibly.
func expectedVersionFrom(r *http.Request) int64 {
	header := r.Header.Get("If-Match")
	if header == "" {
		return usecase.VersionFromStore
	}
	version, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return usecase.VersionFromStore
	}
	return version
}
