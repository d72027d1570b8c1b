package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/blockfall/internal/api/response"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/storage"
)

const (
	defaultResultLimit = 10
	maxResultLimit     = 100
)

// ResultsHandler serves finished games
type ResultsHandler struct {
	results storage.ResultStore
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(results storage.ResultStore) *ResultsHandler {
	return &ResultsHandler{results: results}
}

// List handles GET /api/v1/results?mode=lines40&limit=10
func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	mode := model.GameMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = model.ModeEndless
	}
	if !mode.IsValid() {
		WriteError(w, NewInvalidRequestError("unknown mode "+string(mode)))
		return
	}

	limit := defaultResultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxResultLimit {
			WriteError(w, NewInvalidRequestError("limit must be between 1 and "+strconv.Itoa(maxResultLimit)))
			return
		}
		limit = n
	}

	results, err := h.results.ListResults(r.Context(), mode, limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ResultListFromModel(mode, results))
}

// Get handles GET /api/v1/results/{id}
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.results.GetResult(r.Context(), model.GameID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ResultFromModel(result))
}
