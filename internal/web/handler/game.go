package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/game"
	"github.com/mcoot/blockfall/internal/web/sse"
	"github.com/mcoot/blockfall/internal/web/view"
)

// GameHandler serves spectator pages for live sessions
type GameHandler struct {
	manager    game.ManagerInterface
	hubManager *sse.HubManager
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(manager game.ManagerInterface, hubManager *sse.HubManager) *GameHandler {
	return &GameHandler{manager: manager, hubManager: hubManager}
}

// View renders the board of a session. The page follows the session's event
// stream for board updates.
func (h *GameHandler) View(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])
	session, err := h.manager.Get(id)
	if err != nil {
		render(w, r, http.StatusNotFound, view.Page("Not found", "", view.NotFound("Game")))
		return
	}

	title := "Game " + string(id)
	events := "/games/" + string(id) + "/events"
	render(w, r, http.StatusOK, view.Page(title, events, view.Game(session.View())))
}

// Events streams a session's events over SSE
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])
	if _, err := h.manager.Get(id); err != nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	hub := h.hubManager.GetOrCreateHub(sse.GameTopic(id))
	sse.ServeSSE(w, r, hub, r.RemoteAddr)
}
