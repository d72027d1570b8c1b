package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/blockfall/internal/dependencies/clock"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/game"
)

// Target is the session a bot plays
type Target interface {
	View() model.GameView
	Submit(cmd model.Command) error
	Done() <-chan struct{}
}

// Config holds configuration for the bot service
type Config struct {
	// ThinkInterval is how often a bot looks at its board
	ThinkInterval time.Duration `yaml:"think_interval"`
}

// DefaultConfig returns default bot configuration
func DefaultConfig() Config {
	return Config{ThinkInterval: 200 * time.Millisecond}
}

// Service runs autoplayers against game sessions
type Service struct {
	manager    game.ManagerInterface
	strategies map[string]Strategy
	clock      clock.Clock
	cfg        Config
	logger     *slog.Logger

	mu       sync.Mutex
	attached map[model.GameID]string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a new bot Service
func NewService(
	manager game.ManagerInterface,
	strategies map[string]Strategy,
	clk clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.ThinkInterval <= 0 {
		cfg.ThinkInterval = DefaultConfig().ThinkInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		manager:    manager,
		strategies: strategies,
		clock:      clk,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "bot-service")),
		attached:   make(map[model.GameID]string),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Attach starts a bot playing the given game with the named strategy
func (s *Service) Attach(id model.GameID, strategy string) error {
	st, ok := s.strategies[strategy]
	if !ok {
		return fmt.Errorf("%w: %q", model.ErrInvalidBotStrategy, strategy)
	}
	session, err := s.manager.Get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if _, exists := s.attached[id]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w to game %s", model.ErrBotAttached, id)
	}
	s.attached[id] = strategy
	s.mu.Unlock()

	s.logger.Info("bot attached",
		slog.String("game_id", string(id)),
		slog.String("strategy", strategy),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.attached, id)
			s.mu.Unlock()
		}()
		placed, err := s.Drive(s.ctx, session, st)
		s.logger.Info("bot detached",
			slog.String("game_id", string(id)),
			slog.Int("pieces", placed),
			slog.Any("error", err),
		)
	}()
	return nil
}

// Attached returns the strategy of the bot playing a game, if any
func (s *Service) Attached(id model.GameID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	strategy, ok := s.attached[id]
	return strategy, ok
}

// Drive plays target until its session ends and returns how many pieces
// the bot placed. A bot plans once per piece.
func (s *Service) Drive(ctx context.Context, target Target, strategy Strategy) (int, error) {
	placed := 0
	lastPiece := -1
	for {
		view := target.View()
		if view.Status == model.StatusFinished {
			return placed, nil
		}
		if view.Status == model.StatusRunning && view.Board.PieceNum != lastPiece {
			lastPiece = view.Board.PieceNum
			for _, cmd := range strategy.Plan(view.Board) {
				if err := target.Submit(cmd); err != nil {
					if errors.Is(err, model.ErrSessionStopped) {
						return placed, nil
					}
					return placed, err
				}
			}
			placed++
		}

		select {
		case <-ctx.Done():
			return placed, ctx.Err()
		case <-target.Done():
			return placed, nil
		case <-s.clock.After(s.cfg.ThinkInterval):
		}
	}
}

// Shutdown stops every bot and waits for them to exit
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
