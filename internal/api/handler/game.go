package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/mcoot/blockfall/internal/api/middleware"
	"github.com/mcoot/blockfall/internal/api/request"
	"github.com/mcoot/blockfall/internal/api/response"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/auth"
	"github.com/mcoot/blockfall/internal/services/game"
	"github.com/mcoot/blockfall/internal/web/sse"
)

// GameHandler handles game-related endpoints
type GameHandler struct {
	manager    game.ManagerInterface
	auth       auth.ServiceInterface
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(
	manager game.ManagerInterface,
	authService auth.ServiceInterface,
	hubManager *sse.HubManager,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		manager:    manager,
		auth:       authService,
		hubManager: hubManager,
		logger:     logger,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	opts := model.DefaultGameOptions()
	if req.Mode != "" {
		opts.Mode = req.Mode
	}
	session, err := h.manager.Create(opts)
	if err != nil {
		WriteError(w, err)
		return
	}

	if req.Board != nil {
		if err := session.Restore(*req.Board); err != nil {
			h.discard(session.ID())
			WriteError(w, err)
			return
		}
	}

	token, err := h.auth.Issue(r.Context(), session.ID())
	if err != nil {
		h.discard(session.ID())
		WriteError(w, err)
		return
	}

	h.manager.Start(session)
	response.JSON(w, http.StatusCreated, response.CreateGameResponse{
		Game:         response.GameFromView(session.View()),
		ControlToken: token,
	})
}

// discard forgets a session that never made it to the caller
func (h *GameHandler) discard(id model.GameID) {
	if err := h.manager.Remove(id); err != nil {
		h.logger.Warn("failed to discard game",
			slog.String("game_id", string(id)),
			slog.String("error", err.Error()))
	}
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	views := h.manager.List()
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })

	resp := response.GameList{Games: make([]response.Game, 0, len(views))}
	for _, v := range views {
		resp.Games = append(resp.Games, response.GameFromView(v))
	}
	response.JSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.manager.Get(model.GameID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameFromView(session.View()))
}

// Commands handles POST /api/v1/games/{id}/commands
func (h *GameHandler) Commands(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetGameID(r.Context())

	var req request.CommandRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if len(req.Commands) == 0 {
		WriteError(w, NewInvalidRequestError("commands is required"))
		return
	}
	for _, cmd := range req.Commands {
		if !cmd.IsValid() {
			WriteError(w, NewInvalidRequestError("unknown command "+string(cmd)))
			return
		}
	}

	// a full queue rejects the whole batch
	if err := h.manager.SubmitAll(id, req.Commands); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Forfeit handles POST /api/v1/games/{id}/forfeit
func (h *GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Forfeit(middleware.MustGetGameID(r.Context())); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Retry handles POST /api/v1/games/{id}/retry
func (h *GameHandler) Retry(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Retry(middleware.MustGetGameID(r.Context())); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Strategy handles PUT /api/v1/games/{id}/strategy
func (h *GameHandler) Strategy(w http.ResponseWriter, r *http.Request) {
	var req request.StrategyRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.manager.Get(middleware.MustGetGameID(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := session.SetStrategy(req.Strategy); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Delete handles DELETE /api/v1/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetGameID(r.Context())
	if err := h.manager.Remove(id); err != nil && !errors.Is(err, model.ErrGameNotFound) {
		WriteError(w, err)
		return
	}
	if err := h.auth.Revoke(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Events handles GET /api/v1/games/{id}/events
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])
	if _, err := h.manager.Get(id); err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(sse.GameTopic(id))
	sse.ServeSSE(w, r, hub, r.RemoteAddr)
}
