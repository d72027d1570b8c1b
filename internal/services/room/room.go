package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kamstrup/intmap"

	"github.com/mcoot/blockfall/internal/dependencies/clock"
	"github.com/mcoot/blockfall/internal/dependencies/random"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/game"
	"github.com/mcoot/blockfall/internal/services/queue"
	"github.com/mcoot/blockfall/internal/storage"
)

const (
	MaxPlayers = 8
	MinPlayers = 2

	inboxSize   = 64
	saveTimeout = 5 * time.Second
)

// Player is the part of a session a room drives
type Player interface {
	ID() model.GameID
	ReceiveGarbage(rows int)
	SetStrategy(strategy model.Strategy) error
	DeclareWon()
	Forfeit() error
}

// SessionStarter creates and starts the sessions of a room
type SessionStarter interface {
	StartRoomSession(mode model.GameMode, q queue.Queue, responder game.Responder) (Player, error)
}

// ManagerStarter starts room sessions on a game manager
type ManagerStarter struct {
	Manager game.ManagerInterface
}

// StartRoomSession registers a session on the shared queue and runs it
func (m ManagerStarter) StartRoomSession(mode model.GameMode, q queue.Queue, responder game.Responder) (Player, error) {
	s, err := m.Manager.CreateForRoom(mode, q, responder)
	if err != nil {
		return nil, err
	}
	m.Manager.Start(s)
	return s, nil
}

type member struct {
	model.RoomMember
	player Player

	// received counts garbage rows routed to this member
	received int
	// lastSender is whoever sent this member garbage most recently
	lastSender    model.PlayerID
	hasLastSender bool
}

// Room coordinates the sessions of several players sharing one piece
// sequence. Sessions report to the room through game.Responder; the room
// routes their garbage, tracks their danger and declares the last survivor.
type Room struct {
	id        model.RoomID
	mode      model.GameMode
	createdAt time.Time

	starter SessionStarter
	store   storage.RoomStore
	sink    game.EventSink
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	queue      *queue.Shared
	nextPlayer atomic.Uint64
	inbox      chan event
	done       chan struct{}
	closeOnce  sync.Once

	mu      sync.Mutex
	state   model.RoomState
	members *intmap.Map[model.PlayerID, *member]
	order   []model.PlayerID
	byGame  map[model.GameID]model.PlayerID
	winner  *model.PlayerID
}

// Ensure Room implements game.Responder
var _ game.Responder = (*Room)(nil)

func newRoom(
	id model.RoomID,
	mode model.GameMode,
	starter SessionStarter,
	store storage.RoomStore,
	sink game.EventSink,
	clk clock.Clock,
	rng random.Random,
	logger *slog.Logger,
) *Room {
	return &Room{
		id:        id,
		mode:      mode,
		createdAt: clk.Now(),
		starter:   starter,
		store:     store,
		sink:      sink,
		clock:     clk,
		random:    rng,
		logger:    logger.With(slog.String("room_id", string(id))),
		queue:     queue.NewShared(rng),
		inbox:     make(chan event, inboxSize),
		done:      make(chan struct{}),
		state:     model.RoomStateWaiting,
		members:   intmap.New[model.PlayerID, *member](MaxPlayers),
		byGame:    make(map[model.GameID]model.PlayerID),
	}
}

// ID returns the room id
func (r *Room) ID() model.RoomID {
	return r.id
}

// Done is closed once the room has finished
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Join seats a new player. Seats are only available before the room starts.
func (r *Room) Join(ctx context.Context, displayName string) (model.RoomMember, error) {
	r.mu.Lock()
	if r.state != model.RoomStateWaiting {
		r.mu.Unlock()
		return model.RoomMember{}, model.ErrRoomStarted
	}
	if r.members.Len() >= MaxPlayers {
		r.mu.Unlock()
		return model.RoomMember{}, model.ErrRoomFull
	}

	m := &member{RoomMember: model.RoomMember{
		PlayerID:    model.PlayerID(r.nextPlayer.Add(1)),
		DisplayName: displayName,
		Strategy:    model.StrategyEven,
		Danger:      model.DangerEmpty,
		Alive:       true,
		JoinedAt:    r.clock.Now(),
	}}
	r.members.Put(m.PlayerID, m)
	r.order = append(r.order, m.PlayerID)
	summary := r.summaryLocked()
	r.mu.Unlock()

	r.logger.Info("player joined",
		slog.String("player_id", m.PlayerID.String()),
		slog.String("display_name", displayName),
	)
	r.publish(model.EventPlayerJoined, model.PlayerJoinedPayload{
		PlayerID:    m.PlayerID,
		DisplayName: displayName,
	})
	return m.RoomMember, r.save(ctx, summary)
}

// Start launches one session per seated player on the room's shared queue
func (r *Room) Start(ctx context.Context) (*model.RoomSummary, error) {
	r.mu.Lock()
	if r.state != model.RoomStateWaiting {
		r.mu.Unlock()
		return nil, model.ErrRoomStarted
	}
	if r.members.Len() < MinPlayers {
		r.mu.Unlock()
		return nil, model.ErrNotEnoughSeat
	}

	for _, pid := range r.order {
		m, _ := r.members.Get(pid)
		player, err := r.starter.StartRoomSession(r.mode, r.queue, r)
		if err != nil {
			r.abortStartLocked()
			r.mu.Unlock()
			return nil, err
		}
		m.player = player
		m.GameID = player.ID()
		r.byGame[m.GameID] = pid
	}
	r.state = model.RoomStatePlaying
	summary := r.summaryLocked()
	r.mu.Unlock()

	r.logger.Info("room started", slog.Int("players", len(summary.Members)))
	if err := r.save(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// abortStartLocked forfeits the sessions a failed Start already launched
// and detaches them so their reports are ignored
func (r *Room) abortStartLocked() {
	for _, pid := range r.order {
		m, _ := r.members.Get(pid)
		if m.player == nil {
			continue
		}
		if err := m.player.Forfeit(); err != nil && !errors.Is(err, model.ErrSessionStopped) {
			r.logger.Warn("failed to forfeit session", slog.String("game_id", string(m.GameID)), slog.Any("error", err))
		}
		delete(r.byGame, m.GameID)
		m.player = nil
		m.GameID = ""
	}
}

// SetStrategy changes how a player's garbage is targeted
func (r *Room) SetStrategy(pid model.PlayerID, strategy model.Strategy) error {
	if !strategy.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidStrategy, strategy)
	}

	r.mu.Lock()
	m, ok := r.members.Get(pid)
	if !ok {
		r.mu.Unlock()
		return model.ErrNotInRoom
	}
	player := m.player
	if player == nil {
		m.Strategy = strategy
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	// the session reports the change back through StrategyChanged
	return player.SetStrategy(strategy)
}

// Summary returns a snapshot of the room
func (r *Room) Summary() *model.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaryLocked()
}

func (r *Room) summaryLocked() *model.RoomSummary {
	members := make([]model.RoomMember, 0, len(r.order))
	for _, pid := range r.order {
		m, _ := r.members.Get(pid)
		members = append(members, m.RoomMember)
	}
	var winner *model.PlayerID
	if r.winner != nil {
		w := *r.winner
		winner = &w
	}
	return &model.RoomSummary{
		ID:        r.id,
		State:     r.state,
		Mode:      r.mode,
		Members:   members,
		Winner:    winner,
		CreatedAt: r.createdAt,
	}
}

func (r *Room) save(ctx context.Context, summary *model.RoomSummary) error {
	if r.store == nil {
		return nil
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := r.store.SaveRoom(saveCtx, summary); err != nil {
		return fmt.Errorf("save room %s: %w", r.id, err)
	}
	return nil
}

func (r *Room) publish(t model.EventType, payload any) {
	r.publishFor("", t, payload)
}

// publishFor publishes a room event about one member's session
func (r *Room) publishFor(game model.GameID, t model.EventType, payload any) {
	if r.sink == nil {
		return
	}
	r.sink.Publish(model.Event{
		Type:      t,
		Timestamp: r.clock.Now(),
		GameID:    game,
		RoomID:    r.id,
		Payload:   payload,
	})
}

func (r *Room) finish() {
	r.closeOnce.Do(func() { close(r.done) })
}
