package handler

import (
	"net/http"

	"github.com/mcoot/blockfall/internal/api/middleware"
	"github.com/mcoot/blockfall/internal/api/request"
	"github.com/mcoot/blockfall/internal/api/response"
	"github.com/mcoot/blockfall/internal/model"
)

// BotService attaches autoplayers to games
type BotService interface {
	Attach(id model.GameID, strategy string) error
	Attached(id model.GameID) (string, bool)
}

// BotHandler handles bot endpoints
type BotHandler struct {
	bots BotService
}

// NewBotHandler creates a new bot handler
func NewBotHandler(bots BotService) *BotHandler {
	return &BotHandler{bots: bots}
}

// Attach handles POST /api/v1/games/{id}/bot
func (h *BotHandler) Attach(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetGameID(r.Context())

	var req request.AttachBotRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}
	if req.Strategy == "" {
		req.Strategy = model.BotStrategyGreedy
	}

	if err := h.bots.Attach(id, req.Strategy); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.Bot{GameID: string(id), Strategy: req.Strategy})
}

// Get handles GET /api/v1/games/{id}/bot
func (h *BotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetGameID(r.Context())
	strategy, ok := h.bots.Attached(id)
	if !ok {
		WriteError(w, NewNotFoundError("No bot attached"))
		return
	}
	response.JSON(w, http.StatusOK, response.Bot{GameID: string(id), Strategy: strategy})
}
