package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blockfall/internal/services/game"
	"github.com/mcoot/blockfall/internal/services/room"
	"github.com/mcoot/blockfall/internal/storage"
	"github.com/mcoot/blockfall/internal/web/handler"
	"github.com/mcoot/blockfall/internal/web/middleware"
	"github.com/mcoot/blockfall/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger      *slog.Logger
	Manager     game.ManagerInterface
	Results     storage.ResultStore
	RoomService room.ServiceInterface
	HubManager  *sse.HubManager
	StaticDir   string // Overrides the built-in static files when set
}

// NewRouter creates the spectator site: read-only pages plus their event
// streams. Playing goes through the JSON API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}

	homeHandler := handler.NewHomeHandler(cfg.Manager, cfg.Results, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.Manager, hubManager)
	roomHandler := handler.NewRoomHandler(cfg.RoomService, hubManager)

	staticHandler := http.StripPrefix("/static/", http.FileServer(staticFS(cfg.StaticDir)))
	r.PathPrefix("/static/").Handler(staticHandler)

	r.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	r.HandleFunc("/games/{id}", gameHandler.View).Methods(http.MethodGet)
	r.HandleFunc("/games/{id}/events", gameHandler.Events).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{code}", roomHandler.View).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{code}/events", roomHandler.Events).Methods(http.MethodGet)

	return r
}
