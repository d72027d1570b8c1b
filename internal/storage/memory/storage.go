package memory

import (
	"context"
	"sync"

	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	results map[model.GameID]*model.GameResult
	rooms   map[model.RoomID]*model.RoomSummary
	tokens  map[model.GameID]string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		results: make(map[model.GameID]*model.GameResult),
		rooms:   make(map[model.RoomID]*model.RoomSummary),
		tokens:  make(map[model.GameID]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Result operations

func (s *Storage) SaveResult(ctx context.Context, result *model.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *result
	s.results[result.ID] = &stored
	return nil
}

func (s *Storage) GetResult(ctx context.Context, id model.GameID) (*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	if !ok {
		return nil, model.ErrResultNotFound
	}
	out := *result
	return &out, nil
}

func (s *Storage) ListResults(ctx context.Context, mode model.GameMode, limit int) ([]*model.GameResult, error) {
	s.mu.RLock()
	results := []*model.GameResult{}
	for _, r := range s.results {
		if r.Mode == mode {
			out := *r
			results = append(results, &out)
		}
	}
	s.mu.RUnlock()

	storage.SortResults(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Storage) DeleteResult(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, id)
	return nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.RoomSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *room
	stored.Members = append([]model.RoomMember(nil), room.Members...)
	s.rooms[room.ID] = &stored
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.RoomSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	out := *room
	out.Members = append([]model.RoomMember(nil), room.Members...)
	return &out, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

// Control token operations

func (s *Storage) SaveControlToken(ctx context.Context, id model.GameID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[id] = hash
	return nil
}

func (s *Storage) GetControlToken(ctx context.Context, id model.GameID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.tokens[id]
	if !ok {
		return "", model.ErrInvalidToken
	}
	return hash, nil
}

func (s *Storage) DeleteControlToken(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, id)
	return nil
}
