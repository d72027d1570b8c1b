package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/game"
	"github.com/mcoot/blockfall/internal/storage"
	"github.com/mcoot/blockfall/internal/web/view"
)

// leaderboardSize is how many results per mode the home page shows
const leaderboardSize = 10

// HomeHandler handles the home page
type HomeHandler struct {
	manager game.ManagerInterface
	results storage.ResultStore
	logger  *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(manager game.ManagerInterface, results storage.ResultStore, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{manager: manager, results: results, logger: logger}
}

// Home renders the live sessions and the leaderboard of every mode
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	var live []model.GameView
	for _, v := range h.manager.List() {
		if v.Status != model.StatusFinished {
			live = append(live, v)
		}
	}

	board := make(map[model.GameMode][]*model.GameResult)
	for _, mode := range model.ValidModes() {
		results, err := h.results.ListResults(r.Context(), mode, leaderboardSize)
		if err != nil {
			h.logger.Error("failed to list results",
				slog.String("mode", string(mode)),
				slog.Any("error", err))
			continue
		}
		board[mode] = results
	}

	render(w, r, http.StatusOK, view.Page("Home", "", view.Home(live, board)))
}
