package factory

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/blockfall/internal/api"
	"github.com/mcoot/blockfall/internal/web"
)

// Handler combines the JSON API under /api/ with the spectator site. An
// empty staticDir serves the built-in assets.
func (a *App) Handler(staticDir string) http.Handler {
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:      a.Logger,
		Manager:     a.Manager,
		AuthService: a.AuthService,
		RoomService: a.RoomService,
		BotService:  a.BotService,
		Results:     a.Storage,
		HubManager:  a.HubManager,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:      a.Logger,
		Manager:     a.Manager,
		Results:     a.Storage,
		RoomService: a.RoomService,
		HubManager:  a.HubManager,
		StaticDir:   staticDir,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)
	return mux
}

// Maintain runs housekeeping every interval until ctx is cancelled. Event
// hubs nobody listens to are dropped, finished games past their retention
// are forgotten and expired token verifications are evicted.
func (a *App) Maintain(ctx context.Context, every time.Duration) {
	a.Logger.Debug("maintenance started", slog.Duration("every", every))
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.Clock.After(every):
			a.HubManager.CleanupEmptyHubs()
			a.Manager.EvictFinished()
			a.AuthService.CleanExpired()
		}
	}
}
