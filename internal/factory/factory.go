package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/blockfall/internal/config"
	"github.com/mcoot/blockfall/internal/dependencies/clock"
	"github.com/mcoot/blockfall/internal/dependencies/random"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/auth"
	"github.com/mcoot/blockfall/internal/services/bot"
	"github.com/mcoot/blockfall/internal/services/game"
	"github.com/mcoot/blockfall/internal/services/room"
	"github.com/mcoot/blockfall/internal/storage"
	"github.com/mcoot/blockfall/internal/storage/memory"
	redisstorage "github.com/mcoot/blockfall/internal/storage/redis"
	"github.com/mcoot/blockfall/internal/web/sse"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Logger *slog.Logger

	// Event fan-out
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster

	// Services
	Manager     *game.Manager
	RoomService *room.Service
	BotService  *bot.Service
	AuthService *auth.Service

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config

	// Component settings, zero values fall back to each DefaultConfig
	Game game.Config
	Auth auth.Config
	Bot  bot.Config
}

// FromConfig maps a loaded server configuration onto factory settings
func FromConfig(cfg config.Config, logger *slog.Logger) Config {
	redisCfg := cfg.Redis
	return Config{
		Logger:      logger,
		StorageType: cfg.Storage,
		RedisConfig: &redisCfg,
		Game:        cfg.Game,
		Auth:        cfg.Auth,
		Bot:         cfg.Bot,
	}
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var (
		store   storage.Storage
		closers []io.Closer
	)
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	switch storageType {
	case config.StorageMemory:
		store = memory.New()
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		store = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be %q or %q",
			storageType, config.StorageMemory, config.StorageRedis)
	}

	app := newWithDependencies(store, clock.New(), random.New(), withDefaults(cfg), logger)
	app.closers = closers
	return app, nil
}

func withDefaults(cfg Config) Config {
	if cfg.Game == (game.Config{}) {
		cfg.Game = game.DefaultConfig()
	}
	if cfg.Auth == (auth.Config{}) {
		cfg.Auth = auth.DefaultConfig()
	}
	if cfg.Bot == (bot.Config{}) {
		cfg.Bot = bot.DefaultConfig()
	}
	return cfg
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)

	manager := game.NewManager(store, broadcaster, clk, rnd, cfg.Game, logger)
	roomService := room.NewService(room.ManagerStarter{Manager: manager}, store, broadcaster, clk, rnd, logger)
	strategies := map[string]bot.Strategy{
		model.BotStrategyRandom: bot.NewRandomStrategy(rnd),
		model.BotStrategyGreedy: bot.NewGreedyStrategy(bot.DefaultWeights()),
	}
	botService := bot.NewService(manager, strategies, clk, cfg.Bot, logger)
	authService := auth.New(store, clk, cfg.Auth)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Logger:      logger,
		HubManager:  hubManager,
		Broadcaster: broadcaster,
		Manager:     manager,
		RoomService: roomService,
		BotService:  botService,
		AuthService: authService,
	}
}

// Shutdown stops bots, rooms and sessions in that order, then closes event
// streams and storage
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.BotService.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stopping bots: %w", err))
	}
	if err := a.RoomService.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stopping rooms: %w", err))
	}
	if err := a.Manager.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stopping sessions: %w", err))
	}
	a.HubManager.Close()
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
