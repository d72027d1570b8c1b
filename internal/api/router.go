package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blockfall/internal/api/handler"
	"github.com/mcoot/blockfall/internal/api/middleware"
	"github.com/mcoot/blockfall/internal/api/response"
	"github.com/mcoot/blockfall/internal/services/auth"
	"github.com/mcoot/blockfall/internal/services/game"
	"github.com/mcoot/blockfall/internal/services/room"
	"github.com/mcoot/blockfall/internal/storage"
	"github.com/mcoot/blockfall/internal/web/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Manager     game.ManagerInterface
	AuthService auth.ServiceInterface
	RoomService room.ServiceInterface
	BotService  handler.BotService
	Results     storage.ResultStore
	HubManager  *sse.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Mount(r, cfg)
	return r
}

// Mount registers the API routes under /api/v1 on an existing router
func Mount(r *mux.Router, cfg RouterConfig) {
	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}

	// Create handlers
	gameHandler := handler.NewGameHandler(cfg.Manager, cfg.AuthService, hubManager, cfg.Logger)
	roomHandler := handler.NewRoomHandler(cfg.RoomService, cfg.AuthService, hubManager, cfg.Logger)
	resultsHandler := handler.NewResultsHandler(cfg.Results)
	botHandler := handler.NewBotHandler(cfg.BotService)

	// Create middleware
	controlMiddleware := middleware.Control(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Public game routes
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/events", gameHandler.Events).Methods(http.MethodGet)

	// Routes that require the game's control token
	controlled := api.PathPrefix("/games/{id}").Subrouter()
	controlled.Use(controlMiddleware)
	controlled.HandleFunc("", gameHandler.Delete).Methods(http.MethodDelete)
	controlled.HandleFunc("/commands", gameHandler.Commands).Methods(http.MethodPost)
	controlled.HandleFunc("/forfeit", gameHandler.Forfeit).Methods(http.MethodPost)
	controlled.HandleFunc("/retry", gameHandler.Retry).Methods(http.MethodPost)
	controlled.HandleFunc("/strategy", gameHandler.Strategy).Methods(http.MethodPut)
	controlled.HandleFunc("/bot", botHandler.Attach).Methods(http.MethodPost)
	controlled.HandleFunc("/bot", botHandler.Get).Methods(http.MethodGet)

	// Results
	api.HandleFunc("/results", resultsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/results/{id}", resultsHandler.Get).Methods(http.MethodGet)

	// Rooms
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/start", roomHandler.Start).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/players/{player_id}/strategy", roomHandler.Strategy).Methods(http.MethodPut)
	api.HandleFunc("/rooms/{code}/events", roomHandler.Events).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler(cfg.Manager)).Methods(http.MethodGet)
}

func healthHandler(manager game.ManagerInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Games: len(manager.List())})
	}
}
