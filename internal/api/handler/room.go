package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/blockfall/internal/api/middleware"
	"github.com/mcoot/blockfall/internal/api/request"
	"github.com/mcoot/blockfall/internal/api/response"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/auth"
	"github.com/mcoot/blockfall/internal/services/room"
	"github.com/mcoot/blockfall/internal/web/sse"
)

// RoomHandler handles room-related endpoints
type RoomHandler struct {
	rooms      room.ServiceInterface
	auth       auth.ServiceInterface
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(
	rooms room.ServiceInterface,
	authService auth.ServiceInterface,
	hubManager *sse.HubManager,
	logger *slog.Logger,
) *RoomHandler {
	return &RoomHandler{
		rooms:      rooms,
		auth:       authService,
		hubManager: hubManager,
		logger:     logger,
	}
}

// roomCode reads the {code} route variable. Codes are case-insensitive.
func roomCode(r *http.Request) model.RoomID {
	return model.RoomID(strings.ToUpper(mux.Vars(r)["code"]))
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = model.ModeEndless
	}
	if !mode.IsValid() {
		WriteError(w, NewInvalidRequestError("unknown mode "+string(mode)))
		return
	}

	summary, err := h.rooms.Create(r.Context(), mode)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.RoomFromModel(summary))
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.rooms.Get(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(summary))
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRoomRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("display_name is required"))
		return
	}

	member, err := h.rooms.Join(r.Context(), roomCode(r), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.RoomMemberFromModel(member))
}

// Start handles POST /api/v1/rooms/{code}/start. The response is the only
// place the seats' control tokens are handed out.
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	summary, err := h.rooms.Start(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	tokens := make(map[string]string, len(summary.Members))
	for _, m := range summary.Members {
		token, err := h.auth.Issue(r.Context(), m.GameID)
		if err != nil {
			h.logger.Error("failed to issue control token",
				slog.String("room_id", string(summary.ID)),
				slog.String("game_id", string(m.GameID)),
				slog.String("error", err.Error()))
			WriteError(w, err)
			return
		}
		tokens[m.PlayerID.String()] = token
	}

	response.JSON(w, http.StatusOK, response.StartRoomResponse{
		Room:          response.RoomFromModel(summary),
		ControlTokens: tokens,
	})
}

// Strategy handles PUT /api/v1/rooms/{code}/players/{player_id}/strategy.
// Once the room is playing the seat's control token is required.
func (h *RoomHandler) Strategy(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	pid, err := model.ParsePlayerID(mux.Vars(r)["player_id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.StrategyRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	summary, err := h.rooms.Get(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	var seat *model.RoomMember
	for i := range summary.Members {
		if summary.Members[i].PlayerID == pid {
			seat = &summary.Members[i]
			break
		}
	}
	if seat == nil {
		WriteError(w, model.ErrNotInRoom)
		return
	}
	if seat.GameID != "" {
		if err := h.auth.Verify(r.Context(), seat.GameID, middleware.ExtractToken(r)); err != nil {
			WriteError(w, err)
			return
		}
	}

	if err := h.rooms.SetStrategy(r.Context(), code, pid, req.Strategy); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Events handles GET /api/v1/rooms/{code}/events
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if _, err := h.rooms.Get(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(sse.RoomTopic(code))
	sse.ServeSSE(w, r, hub, r.RemoteAddr)
}
