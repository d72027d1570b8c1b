package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/blockfall/internal/dependencies/clock"
	"github.com/mcoot/blockfall/internal/dependencies/random"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/game"
	"github.com/mcoot/blockfall/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet avoids characters that are easy to confuse
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	codeAttempts = 5
)

var errCodeExhausted = errors.New("could not allocate a unique room code")

// ServiceInterface defines room operations used by the API
type ServiceInterface interface {
	Create(ctx context.Context, mode model.GameMode) (*model.RoomSummary, error)
	Get(ctx context.Context, id model.RoomID) (*model.RoomSummary, error)
	Join(ctx context.Context, id model.RoomID, displayName string) (model.RoomMember, error)
	Start(ctx context.Context, id model.RoomID) (*model.RoomSummary, error)
	SetStrategy(ctx context.Context, id model.RoomID, player model.PlayerID, strategy model.Strategy) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

// Service owns the live rooms
type Service struct {
	starter SessionStarter
	store   storage.RoomStore
	sink    game.EventSink
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu    sync.RWMutex
	rooms map[model.RoomID]*Room

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a new room Service
func NewService(
	starter SessionStarter,
	store storage.RoomStore,
	sink game.EventSink,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		starter: starter,
		store:   store,
		sink:    sink,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "room")),
		rooms:   make(map[model.RoomID]*Room),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Create opens a new room waiting for players
func (s *Service) Create(ctx context.Context, mode model.GameMode) (*model.RoomSummary, error) {
	if !mode.IsValid() {
		return nil, model.ErrInvalidOptions
	}

	s.mu.Lock()
	var room *Room
	for attempt := 0; attempt < codeAttempts && room == nil; attempt++ {
		id := model.RoomID(s.random.String(RoomCodeLength, RoomCodeAlphabet))
		if _, exists := s.rooms[id]; exists || id == "" {
			continue
		}
		room = newRoom(id, mode, s.starter, s.store, s.sink, s.clock, s.random, s.logger)
		s.rooms[id] = room
	}
	s.mu.Unlock()
	if room == nil {
		return nil, errCodeExhausted
	}

	s.logger.Info("room created",
		slog.String("room_id", string(room.ID())),
		slog.String("mode", string(mode)),
	)
	summary := room.Summary()
	if err := room.save(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// Room returns a live room
func (s *Service) Room(id model.RoomID) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// Get returns a live room's summary, falling back to storage for rooms
// that are no longer held in memory
func (s *Service) Get(ctx context.Context, id model.RoomID) (*model.RoomSummary, error) {
	if room, err := s.Room(id); err == nil {
		return room.Summary(), nil
	}
	if s.store == nil {
		return nil, model.ErrRoomNotFound
	}
	return s.store.GetRoom(ctx, id)
}

// Join seats a player in a room
func (s *Service) Join(ctx context.Context, id model.RoomID, displayName string) (model.RoomMember, error) {
	room, err := s.Room(id)
	if err != nil {
		return model.RoomMember{}, err
	}
	return room.Join(ctx, displayName)
}

// Start launches the room's sessions and its coordinator loop
func (s *Service) Start(ctx context.Context, id model.RoomID) (*model.RoomSummary, error) {
	room, err := s.Room(id)
	if err != nil {
		return nil, err
	}
	summary, err := room.Start(ctx)
	if err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		room.Run(s.ctx)
		s.mu.Lock()
		delete(s.rooms, id)
		s.mu.Unlock()
	}()
	return summary, nil
}

// SetStrategy changes a player's targeting strategy
func (s *Service) SetStrategy(ctx context.Context, id model.RoomID, player model.PlayerID, strategy model.Strategy) error {
	room, err := s.Room(id)
	if err != nil {
		return err
	}
	return room.SetStrategy(player, strategy)
}

// Shutdown stops every room loop and waits for them to exit
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
