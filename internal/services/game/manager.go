package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/blockfall/internal/dependencies/clock"
	"github.com/mcoot/blockfall/internal/dependencies/random"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/queue"
	"github.com/mcoot/blockfall/internal/storage"
)

const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength   = 12
	idAttempts = 5
)

var errIDExhausted = errors.New("could not allocate a unique game id")

// ManagerInterface defines the session registry used by the API and rooms
type ManagerInterface interface {
	Create(opts model.GameOptions) (*Session, error)
	CreateForRoom(mode model.GameMode, q queue.Queue, responder Responder) (*Session, error)
	Start(s *Session)
	Get(id model.GameID) (*Session, error)
	Submit(id model.GameID, cmd model.Command) error
	SubmitAll(id model.GameID, cmds []model.Command) error
	Forfeit(id model.GameID) error
	Retry(id model.GameID) error
	List() []model.GameView
	Remove(id model.GameID) error
}

// Ensure Manager implements ManagerInterface
var _ ManagerInterface = (*Manager)(nil)

// Manager owns every live session
type Manager struct {
	results storage.ResultStore
	sink    EventSink
	clock   clock.Clock
	random  random.Random
	cfg     Config
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[model.GameID]*Session
	// finished records when each started session stopped running
	finished map[model.GameID]time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a new session Manager
func NewManager(
	results storage.ResultStore,
	sink EventSink,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		results:  results,
		sink:     sink,
		clock:    clock,
		random:   random,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		sessions: make(map[model.GameID]*Session),
		finished: make(map[model.GameID]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Create registers a standalone session with its own piece bag. The session
// does not run until Start.
func (m *Manager) Create(opts model.GameOptions) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return m.register(SessionParams{
		Mode:     opts.Mode,
		NewQueue: func() queue.Queue { return queue.NewBag(m.random) },
		Sink:     m.sink,
		Results:  m.results,
	})
}

// CreateForRoom registers a session that draws from a room's shared queue
// and reports to the room
func (m *Manager) CreateForRoom(mode model.GameMode, q queue.Queue, responder Responder) (*Session, error) {
	if !mode.IsValid() {
		return nil, model.ErrInvalidOptions
	}
	return m.register(SessionParams{
		Mode:      mode,
		NewQueue:  func() queue.Queue { return q },
		Sink:      m.sink,
		Responder: responder,
	})
}

func (m *Manager) register(params SessionParams) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for attempt := 0; attempt < idAttempts; attempt++ {
		id := model.GameID(m.random.String(idLength, idAlphabet))
		if _, exists := m.sessions[id]; exists || id == "" {
			continue
		}
		params.ID = id
		s := NewSession(params, m.clock, m.cfg, m.logger)
		m.sessions[id] = s

		m.logger.Info("game created",
			slog.String("game_id", string(id)),
			slog.String("mode", string(params.Mode)),
			slog.Bool("room", params.Responder != nil),
		)
		return s, nil
	}
	return nil, errIDExhausted
}

// Start runs the session in the background
func (m *Manager) Start(s *Session) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if _, err := s.Run(m.ctx); err != nil {
			m.logger.Warn("session did not run",
				slog.String("game_id", string(s.ID())),
				slog.String("error", err.Error()),
			)
		}
		m.mu.Lock()
		if _, ok := m.sessions[s.ID()]; ok {
			m.finished[s.ID()] = m.clock.Now()
		}
		m.mu.Unlock()
	}()
}

// Get returns a registered session
func (m *Manager) Get(id model.GameID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return s, nil
}

// Submit forwards a player command
func (m *Manager) Submit(id model.GameID, cmd model.Command) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.Submit(cmd)
}

// SubmitAll forwards a batch of player commands, all or nothing
func (m *Manager) SubmitAll(id model.GameID, cmds []model.Command) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.SubmitAll(cmds)
}

// Forfeit ends a session as lost
func (m *Manager) Forfeit(id model.GameID) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.Forfeit()
}

// Retry restarts a standalone session
func (m *Manager) Retry(id model.GameID) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.Retry()
}

// List returns a view of every registered session
func (m *Manager) List() []model.GameView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	views := make([]model.GameView, 0, len(m.sessions))
	for _, s := range m.sessions {
		views = append(views, s.View())
	}
	return views
}

// Remove forfeits a session if it is still running and forgets it
func (m *Manager) Remove(id model.GameID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	delete(m.finished, id)
	m.mu.Unlock()
	if !ok {
		return model.ErrGameNotFound
	}
	if err := s.Forfeit(); err != nil && !errors.Is(err, model.ErrSessionStopped) {
		return err
	}
	return nil
}

// EvictFinished forgets sessions that stopped running more than the
// retention period ago and returns how many were dropped
func (m *Manager) EvictFinished() int {
	cutoff := m.clock.Now().Add(-m.cfg.Retention)
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, at := range m.finished {
		if at.After(cutoff) {
			continue
		}
		delete(m.sessions, id)
		delete(m.finished, id)
		evicted++
	}
	if evicted > 0 {
		m.logger.Info("evicted finished games", slog.Int("count", evicted))
	}
	return evicted
}

// Shutdown stops every session and waits for them to finish
func (m *Manager) Shutdown(ctx context.Context) error {
	m.cancel()
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
