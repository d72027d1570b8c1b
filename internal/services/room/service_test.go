package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blockfall/internal/dependencies/mocks"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/game"
	"github.com/mcoot/blockfall/internal/storage/memory"
	"github.com/mcoot/blockfall/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	starter *fakeStarter
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.starter = &fakeStarter{}
	s.service = NewService(s.starter, s.storage, &recordingSink{}, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.NoError(s.service.Shutdown(ctx))
}

func (s *ServiceSuite) TestCreateRoom() {
	s.random.QueueString("ABC234")

	room, err := s.service.Create(s.ctx, model.ModeBlitz)
	s.Require().NoError(err)

	s.Equal(model.RoomID("ABC234"), room.ID)
	s.Equal(model.RoomStateWaiting, room.State)
	s.Equal(model.ModeBlitz, room.Mode)
	s.Empty(room.Members)

	stored, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(model.ModeBlitz, stored.Mode)
}

func (s *ServiceSuite) TestCreateSkipsTakenCodes() {
	s.random.QueueString("ABC234", "ABC234", "XYZ789")

	_, err := s.service.Create(s.ctx, model.ModeEndless)
	s.Require().NoError(err)
	room, err := s.service.Create(s.ctx, model.ModeEndless)
	s.Require().NoError(err)

	s.Equal(model.RoomID("XYZ789"), room.ID)
}

func (s *ServiceSuite) TestCreateValidatesMode() {
	_, err := s.service.Create(s.ctx, "marathon")
	s.ErrorIs(err, model.ErrInvalidOptions)
}

func (s *ServiceSuite) TestCreateFailsWithoutCodes() {
	_, err := s.service.Create(s.ctx, model.ModeEndless)
	s.Error(err)
}

func (s *ServiceSuite) TestUnknownRoom() {
	_, err := s.service.Get(s.ctx, "NOPE00")
	s.ErrorIs(err, model.ErrRoomNotFound)
	_, err = s.service.Join(s.ctx, "NOPE00", "alice")
	s.ErrorIs(err, model.ErrRoomNotFound)
	_, err = s.service.Start(s.ctx, "NOPE00")
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.ErrorIs(s.service.SetStrategy(s.ctx, "NOPE00", 1, model.StrategyEven), model.ErrRoomNotFound)
}

func (s *ServiceSuite) TestJoinAndStart() {
	s.random.QueueString("ABC234")
	room, err := s.service.Create(s.ctx, model.ModeEndless)
	s.Require().NoError(err)

	_, err = s.service.Join(s.ctx, room.ID, "alice")
	s.Require().NoError(err)
	_, err = s.service.Join(s.ctx, room.ID, "bob")
	s.Require().NoError(err)

	started, err := s.service.Start(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatePlaying, started.State)
	s.Len(s.starter.players, 2)

	got, err := s.service.Get(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Len(got.Members, 2)
}

func (s *ServiceSuite) TestFinishedRoomIsServedFromStorage() {
	s.random.QueueString("ABC234")
	room, err := s.service.Create(s.ctx, model.ModeEndless)
	s.Require().NoError(err)
	_, _ = s.service.Join(s.ctx, room.ID, "alice")
	_, _ = s.service.Join(s.ctx, room.ID, "bob")
	_, err = s.service.Start(s.ctx, room.ID)
	s.Require().NoError(err)

	live, err := s.service.Room(room.ID)
	s.Require().NoError(err)
	live.Lost("game-1")

	s.Eventually(func() bool {
		_, err := s.service.Room(room.ID)
		return err != nil
	}, time.Second, time.Millisecond)

	got, err := s.service.Get(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomStateFinished, got.State)
	s.Require().NotNil(got.Winner)
	s.Equal(model.PlayerID(2), *got.Winner)
}

func (s *ServiceSuite) TestManagerStarterRunsRoomSessions() {
	cfg := game.DefaultConfig()
	cfg.Countdown = 0
	manager := game.NewManager(s.storage, nil, s.clock, s.random, cfg, testutil.NopLogger())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.NoError(manager.Shutdown(ctx))
	}()
	s.service = NewService(ManagerStarter{Manager: manager}, s.storage, nil, s.clock, s.random, testutil.NopLogger())

	s.random.QueueString("ABC234", "GAME00000001", "GAME00000002")
	room, err := s.service.Create(s.ctx, model.ModeEndless)
	s.Require().NoError(err)
	_, _ = s.service.Join(s.ctx, room.ID, "alice")
	_, _ = s.service.Join(s.ctx, room.ID, "bob")

	started, err := s.service.Start(s.ctx, room.ID)
	s.Require().NoError(err)

	s.Equal(model.GameID("GAME00000001"), started.Members[0].GameID)
	s.Equal(model.GameID("GAME00000002"), started.Members[1].GameID)
	session, err := manager.Get("GAME00000002")
	s.Require().NoError(err)
	s.Equal(model.ModeEndless, session.Mode())
}
