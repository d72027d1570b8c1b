package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/room"
	"github.com/mcoot/blockfall/internal/web/sse"
	"github.com/mcoot/blockfall/internal/web/view"
)

// RoomHandler serves spectator pages for rooms
type RoomHandler struct {
	rooms      room.ServiceInterface
	hubManager *sse.HubManager
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(rooms room.ServiceInterface, hubManager *sse.HubManager) *RoomHandler {
	return &RoomHandler{rooms: rooms, hubManager: hubManager}
}

// View renders the members of a room
func (h *RoomHandler) View(w http.ResponseWriter, r *http.Request) {
	code := model.RoomID(mux.Vars(r)["code"])
	summary, err := h.rooms.Get(r.Context(), code)
	if err != nil {
		render(w, r, http.StatusNotFound, view.Page("Not found", "", view.NotFound("Room")))
		return
	}

	events := ""
	if summary.State != model.RoomStateFinished {
		events = "/rooms/" + string(code) + "/events"
	}
	render(w, r, http.StatusOK, view.Page("Room "+string(code), events, view.Room(summary)))
}

// Events streams a room's events over SSE
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	code := model.RoomID(mux.Vars(r)["code"])
	if _, err := h.rooms.Get(r.Context(), code); err != nil {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}

	hub := h.hubManager.GetOrCreateHub(sse.RoomTopic(code))
	sse.ServeSSE(w, r, hub, r.RemoteAddr)
}
