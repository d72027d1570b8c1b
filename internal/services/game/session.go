// Package game runs a single player's session: one goroutine owns the board
// and drains player commands, timer signals and room messages in a fixed
// priority order.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/blockfall/internal/dependencies/clock"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/board"
	"github.com/mcoot/blockfall/internal/services/queue"
	"github.com/mcoot/blockfall/internal/services/scoring"
	"github.com/mcoot/blockfall/internal/storage"
)

// EventSink receives session events. Publish must not block.
type EventSink interface {
	Publish(event model.Event)
}

// SinkFunc adapts a function to EventSink
type SinkFunc func(event model.Event)

// Publish calls f
func (f SinkFunc) Publish(event model.Event) { f(event) }

type discardSink struct{}

func (discardSink) Publish(model.Event) {}

// Responder is the room coordinator seen from a session. Calls are made from
// the session goroutine and must not block.
type Responder interface {
	DangerChanged(id model.GameID, level model.DangerLevel)
	GarbageSent(id model.GameID, rows int)
	StrategyChanged(id model.GameID, strategy model.Strategy)
	Lost(id model.GameID)
}

// SessionParams describes a session to create
type SessionParams struct {
	ID   model.GameID
	Mode model.GameMode

	// NewQueue supplies the piece queue for every (re)started game
	NewQueue func() queue.Queue

	Sink EventSink

	// Results receives the final result of standalone sessions, nil skips
	// persistence
	Results storage.ResultStore

	// Responder is set for sessions that belong to a room
	Responder Responder
}

// higher-level messages, handled one per loop iteration
type message interface{ isMessage() }

type garbageMessage struct{ rows int }
type strategyMessage struct{ strategy model.Strategy }
type wonMessage struct{}
type queueRequest struct{ reply chan []model.Piece }

func (garbageMessage) isMessage()  {}
func (strategyMessage) isMessage() {}
func (wonMessage) isMessage()      {}
func (queueRequest) isMessage()    {}

// lockExpiry is sent when an extended lock timer fires
type lockExpiry struct {
	seq       int // lock arming it belongs to
	watermark int // lowest row reached when the timer was armed
}

// lockState tracks the lock delay of the resting piece
type lockState struct {
	active    bool
	seq       int
	movesLeft int
	lowestY   int
}

// Session is a single running game
type Session struct {
	id        model.GameID
	mode      model.GameMode
	cfg       Config
	clock     clock.Clock
	logger    *slog.Logger
	sink      EventSink
	results   storage.ResultStore
	responder Responder
	newQueue  func() queue.Queue

	commands   chan model.Command
	submitMu   sync.Mutex
	control    chan model.Control
	messages   chan message
	gravity    chan struct{}
	lockExpiry chan lockExpiry
	levels     chan int

	started  atomic.Bool
	done     chan struct{}
	doneOnce sync.Once

	// owned by the loop goroutine
	board      *board.Board
	score      *scoring.Service
	stats      model.SessionStats
	lock       lockState
	lockSeq    int
	danger     model.DangerLevel
	startedAt  time.Time
	lastSecond int64
	running    bool
	retry      bool
	outcome    model.GameOutcome

	viewMu sync.RWMutex
	view   model.GameView
}

// NewSession creates a session ready to Run
func NewSession(params SessionParams, clk clock.Clock, cfg Config, logger *slog.Logger) *Session {
	cfg = cfg.withDefaults()
	sink := params.Sink
	if sink == nil {
		sink = discardSink{}
	}
	s := &Session{
		id:         params.ID,
		mode:       params.Mode,
		cfg:        cfg,
		clock:      clk,
		logger:     logger.With(slog.String("game_id", string(params.ID))),
		sink:       sink,
		results:    params.Results,
		responder:  params.Responder,
		newQueue:   params.NewQueue,
		commands:   make(chan model.Command, cfg.CommandBuffer),
		control:    make(chan model.Control, 4),
		messages:   make(chan message, 32),
		gravity:    make(chan struct{}, 1),
		lockExpiry: make(chan lockExpiry, 8),
		levels:     make(chan int, 8),
		done:       make(chan struct{}),
	}
	s.reset()
	return s
}

// reset prepares a fresh game on a new queue
func (s *Session) reset() {
	s.board = board.New(s.newQueue())
	s.score = scoring.New()
	s.stats = model.SessionStats{}
	s.lock = lockState{}
	s.drainTimers()
	s.danger = s.board.DangerLevel()
	s.startedAt = s.clock.Now()
	s.lastSecond = 0
	s.running = true
	s.retry = false
	s.outcome = ""
	s.updateView(model.StatusWaiting)
}

// ID returns the session id
func (s *Session) ID() model.GameID {
	return s.id
}

// Mode returns the session's game mode
func (s *Session) Mode() model.GameMode {
	return s.mode
}

// Done is closed once the session has stopped for good
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// View returns the latest published view of the session
func (s *Session) View() model.GameView {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	v := s.view
	v.Preview = append([]model.Piece(nil), s.view.Preview...)
	return v
}

func (s *Session) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Submit queues a player command
func (s *Session) Submit(cmd model.Command) error {
	return s.SubmitAll([]model.Command{cmd})
}

// SubmitAll queues a batch of commands. Either every command is queued or,
// on an error, none is.
func (s *Session) SubmitAll(cmds []model.Command) error {
	for _, cmd := range cmds {
		if !cmd.IsValid() {
			return fmt.Errorf("%w: %q", model.ErrInvalidCommand, cmd)
		}
	}
	if s.stopped() {
		return model.ErrSessionStopped
	}

	// only the loop receives, so free space can only grow while held
	s.submitMu.Lock()
	defer s.submitMu.Unlock()
	if cap(s.commands)-len(s.commands) < len(cmds) {
		return model.ErrCommandQueueFull
	}
	for _, cmd := range cmds {
		s.commands <- cmd
	}
	return nil
}

// Forfeit ends the session as lost
func (s *Session) Forfeit() error {
	return s.sendControl(model.ControlForfeit)
}

// Retry abandons the current game and starts a new one. Room sessions
// ignore it.
func (s *Session) Retry() error {
	return s.sendControl(model.ControlRetry)
}

func (s *Session) sendControl(c model.Control) error {
	if s.stopped() {
		return model.ErrSessionStopped
	}
	select {
	case s.control <- c:
	case <-s.done:
		return model.ErrSessionStopped
	}
	return nil
}

// send delivers a message unless the session has stopped
func (s *Session) send(m message) {
	select {
	case s.messages <- m:
	case <-s.done:
	default:
		s.logger.Warn("session message dropped - buffer full")
	}
}

// ReceiveGarbage queues garbage rows sent by an opponent
func (s *Session) ReceiveGarbage(rows int) {
	s.send(garbageMessage{rows: rows})
}

// SetStrategy changes how garbage from this player is targeted
func (s *Session) SetStrategy(strategy model.Strategy) error {
	if !strategy.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidStrategy, strategy)
	}
	s.send(strategyMessage{strategy: strategy})
	return nil
}

// DeclareWon ends the session as won, used by a room for its last survivor
func (s *Session) DeclareWon() {
	s.send(wonMessage{})
}

// RequestQueue asks the session for its upcoming pieces
func (s *Session) RequestQueue(ctx context.Context) ([]model.Piece, error) {
	reply := make(chan []model.Piece, 1)
	select {
	case s.messages <- queueRequest{reply: reply}:
	case <-s.done:
		return nil, model.ErrSessionStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case pieces := <-reply:
		return pieces, nil
	case <-s.done:
		return nil, model.ErrSessionStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Restore replaces the board with an externally supplied state. It is only
// accepted before the session starts running.
func (s *Session) Restore(snap model.BoardSnapshot) error {
	if s.started.Load() {
		return model.ErrSessionRunning
	}
	if err := s.board.Restore(snap); err != nil {
		return err
	}
	s.danger = s.board.DangerLevel()
	s.updateView(model.StatusWaiting)
	return nil
}

func (s *Session) close() {
	s.doneOnce.Do(func() { close(s.done) })
}
