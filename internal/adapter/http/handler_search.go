package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/careatlas/careatlas/internal/domain"
	"github.com/careatlas/careatlas/internal/usecase"
	"github.com/careatlas/careatlas/pkg/apperror"
	"github.com/gorilla/mux"
)

// SearchHandler handles HTTP requests for the matching engine
type SearchHandler struct {
	matchUseCase *usecase.MatchUseCase
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(matchUseCase *usecase.MatchUseCase) *SearchHandler {
	return &SearchHandler{
		matchUseCase: matchUseCase,
	}
}

// RegisterRoutes registers search routes on the /api/services subrouter
func (h *SearchHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/search", h.Search).Methods("POST")
	router.HandleFunc("/match", h.Match).Methods("POST")
}

// Search answers a search query with a ranked list of at most the configured
// result cap.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, domain.ActionSearch); !ok {
		return
	}

	query, err := queryFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.matchUseCase.Match(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": result.Results})
}

// Match answers a match query, including the telehealth fallback payload
// when no local result exists.
func (h *SearchHandler) Match(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, domain.ActionSearch); !ok {
		return
	}

	query, err := queryFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.matchUseCase.Match(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// queryFrom builds a SearchQuery from the JSON body, falling back to URL
// query parameters for the alternate match entry point.
func queryFrom(r *http.Request) (domain.SearchQuery, error) {
	var query domain.SearchQuery

	if err := json.NewDecoder(r.Body).Decode(&query); err != nil && err != io.EOF {
		return query, apperror.NewBadRequest("invalid request body")
	}

	params := r.URL.Query()
	if query.Location == "" {
		query.Location = params.Get("location")
	}
	if len(query.ServiceTypes) == 0 {
		query.ServiceTypes = params["service_type"]
	}
	if len(query.Costs) == 0 {
		query.Costs = params["cost"]
	}

	return query, nil
}
