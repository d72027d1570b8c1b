package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blockfall/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

var finished = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func result(id model.GameID, mode model.GameMode, points int, d time.Duration, outcome model.GameOutcome) *model.GameResult {
	return &model.GameResult{
		ID:         id,
		Mode:       mode,
		Outcome:    outcome,
		Points:     points,
		Duration:   d,
		FinishedAt: finished,
	}
}

func (s *StorageSuite) TestSaveAndGetResult() {
	r := result("game-1", model.ModeEndless, 300, time.Minute, model.OutcomeLost)
	s.Require().NoError(s.storage.SaveResult(s.ctx, r))

	got, err := s.storage.GetResult(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(300, got.Points)
}

func (s *StorageSuite) TestStoredResultIsACopy() {
	r := result("game-1", model.ModeEndless, 300, time.Minute, model.OutcomeLost)
	s.Require().NoError(s.storage.SaveResult(s.ctx, r))
	r.Points = 0

	got, err := s.storage.GetResult(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(300, got.Points)
}

func (s *StorageSuite) TestGetResultNotFound() {
	_, err := s.storage.GetResult(s.ctx, "missing")
	s.ErrorIs(err, model.ErrResultNotFound)
}

func (s *StorageSuite) TestListResultsFiltersAndRanks() {
	s.Require().NoError(s.storage.SaveResult(s.ctx, result("a", model.ModeEndless, 100, time.Minute, model.OutcomeLost)))
	s.Require().NoError(s.storage.SaveResult(s.ctx, result("b", model.ModeEndless, 500, time.Minute, model.OutcomeLost)))
	s.Require().NoError(s.storage.SaveResult(s.ctx, result("c", model.ModeBlitz, 900, time.Minute, model.OutcomeWon)))

	results, err := s.storage.ListResults(s.ctx, model.ModeEndless, 0)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(model.GameID("b"), results[0].ID)

	results, err = s.storage.ListResults(s.ctx, model.ModeEndless, 1)
	s.Require().NoError(err)
	s.Len(results, 1)
}

func (s *StorageSuite) TestDeleteResult() {
	s.Require().NoError(s.storage.SaveResult(s.ctx, result("a", model.ModeEndless, 100, time.Minute, model.OutcomeLost)))
	s.Require().NoError(s.storage.DeleteResult(s.ctx, "a"))

	_, err := s.storage.GetResult(s.ctx, "a")
	s.ErrorIs(err, model.ErrResultNotFound)
}

func (s *StorageSuite) TestRoomRoundTrip() {
	room := &model.RoomSummary{
		ID:      "room-1",
		State:   model.RoomStatePlaying,
		Members: []model.RoomMember{{PlayerID: 1, DisplayName: "Alice"}},
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	room.Members[0].DisplayName = "changed"

	got, err := s.storage.GetRoom(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal("Alice", got.Members[0].DisplayName)

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "room-1"))
	_, err = s.storage.GetRoom(s.ctx, "room-1")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestControlTokens() {
	_, err := s.storage.GetControlToken(s.ctx, "game-1")
	s.ErrorIs(err, model.ErrInvalidToken)

	s.Require().NoError(s.storage.SaveControlToken(s.ctx, "game-1", "hash"))
	hash, err := s.storage.GetControlToken(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal("hash", hash)
}
