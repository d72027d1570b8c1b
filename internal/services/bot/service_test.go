package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blockfall/internal/dependencies/mocks"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/game"
	"github.com/mcoot/blockfall/internal/storage/memory"
	"github.com/mcoot/blockfall/internal/testutil"
)

// scriptedStrategy always plays the same commands
type scriptedStrategy struct {
	cmds []model.Command
}

func (s scriptedStrategy) Plan(model.BoardSnapshot) []model.Command { return s.cmds }

type fakeTarget struct {
	mu        sync.Mutex
	view      model.GameView
	submitted []model.Command
	submitErr error
	done      chan struct{}
}

func newFakeTarget(status model.GameStatus, pieceNum int) *fakeTarget {
	t := &fakeTarget{done: make(chan struct{})}
	t.view.Status = status
	t.view.Board.PieceNum = pieceNum
	return t
}

func (t *fakeTarget) View() model.GameView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

func (t *fakeTarget) Submit(cmd model.Command) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.submitErr != nil {
		return t.submitErr
	}
	t.submitted = append(t.submitted, cmd)
	return nil
}

func (t *fakeTarget) Done() <-chan struct{} { return t.done }

func (t *fakeTarget) commands() []model.Command {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.Command(nil), t.submitted...)
}

type ServiceSuite struct {
	suite.Suite
	mockClock  *mocks.MockClock
	mockRandom *mocks.MockRandom
	manager    *game.Manager
	service    *Service
	ctx        context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.mockClock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.mockRandom = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	cfg := game.DefaultConfig()
	cfg.Countdown = 0
	s.manager = game.NewManager(memory.New(), nil, s.mockClock, s.mockRandom, cfg, logger)
	strategies := map[string]Strategy{
		model.BotStrategyRandom: NewRandomStrategy(s.mockRandom),
		model.BotStrategyGreedy: NewGreedyStrategy(DefaultWeights()),
	}
	s.service = NewService(s.manager, strategies, s.mockClock, DefaultConfig(), logger)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.NoError(s.service.Shutdown(ctx))
	s.NoError(s.manager.Shutdown(ctx))
}

func (s *ServiceSuite) TestDriveReturnsWhenFinished() {
	target := newFakeTarget(model.StatusFinished, 0)

	placed, err := s.service.Drive(s.ctx, target, scriptedStrategy{cmds: []model.Command{model.CommandHardDrop}})

	s.NoError(err)
	s.Zero(placed)
	s.Empty(target.commands())
}

func (s *ServiceSuite) TestDrivePlansOncePerPiece() {
	target := newFakeTarget(model.StatusRunning, 3)
	close(target.done)
	strategy := scriptedStrategy{cmds: []model.Command{model.CommandMoveLeft, model.CommandHardDrop}}

	placed, err := s.service.Drive(s.ctx, target, strategy)

	s.NoError(err)
	s.Equal(1, placed)
	s.Equal([]model.Command{model.CommandMoveLeft, model.CommandHardDrop}, target.commands())
}

func (s *ServiceSuite) TestDriveWaitsWhileCountingDown() {
	target := newFakeTarget(model.StatusWaiting, 0)
	close(target.done)

	placed, err := s.service.Drive(s.ctx, target, scriptedStrategy{cmds: []model.Command{model.CommandHardDrop}})

	s.NoError(err)
	s.Zero(placed)
}

func (s *ServiceSuite) TestDriveStopsOnStoppedSession() {
	target := newFakeTarget(model.StatusRunning, 0)
	target.submitErr = model.ErrSessionStopped

	placed, err := s.service.Drive(s.ctx, target, scriptedStrategy{cmds: []model.Command{model.CommandHardDrop}})

	s.NoError(err)
	s.Zero(placed)
}

func (s *ServiceSuite) TestDriveReportsSubmitErrors() {
	target := newFakeTarget(model.StatusRunning, 0)
	target.submitErr = model.ErrCommandQueueFull

	_, err := s.service.Drive(s.ctx, target, scriptedStrategy{cmds: []model.Command{model.CommandHardDrop}})

	s.ErrorIs(err, model.ErrCommandQueueFull)
}

func (s *ServiceSuite) TestDriveHonoursCancellation() {
	target := newFakeTarget(model.StatusWaiting, 0)
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.service.Drive(ctx, target, scriptedStrategy{})

	s.ErrorIs(err, context.Canceled)
}

func (s *ServiceSuite) TestDriveReplansOnNextPiece() {
	target := newFakeTarget(model.StatusRunning, 0)
	strategy := scriptedStrategy{cmds: []model.Command{model.CommandHardDrop}}
	result := make(chan int, 1)
	go func() {
		placed, _ := s.service.Drive(s.ctx, target, strategy)
		result <- placed
	}()

	s.Eventually(func() bool { return len(target.commands()) == 1 }, time.Second, time.Millisecond)
	target.mu.Lock()
	target.view.Board.PieceNum = 1
	target.mu.Unlock()
	s.Eventually(func() bool { return s.mockClock.Waiters() > 0 }, time.Second, time.Millisecond)
	s.mockClock.Advance(DefaultConfig().ThinkInterval)

	s.Eventually(func() bool { return len(target.commands()) == 2 }, time.Second, time.Millisecond)
	close(target.done)
	s.Equal(2, <-result)
}

func (s *ServiceSuite) TestAttachValidatesStrategy() {
	err := s.service.Attach("GAME1", "clairvoyant")
	s.ErrorIs(err, model.ErrInvalidBotStrategy)
}

func (s *ServiceSuite) TestAttachUnknownGame() {
	err := s.service.Attach("missing", model.BotStrategyGreedy)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ServiceSuite) TestAttachPlaysSession() {
	s.mockRandom.QueueString("GAME00000001")
	session, err := s.manager.Create(model.DefaultGameOptions())
	s.Require().NoError(err)

	s.Require().NoError(s.service.Attach(session.ID(), model.BotStrategyGreedy))
	strategy, ok := s.service.Attached(session.ID())
	s.True(ok)
	s.Equal(model.BotStrategyGreedy, strategy)
	s.Error(s.service.Attach(session.ID(), model.BotStrategyRandom))

	s.Require().NoError(s.manager.Forfeit(session.ID()))
	s.manager.Start(session)

	s.Eventually(func() bool {
		_, attached := s.service.Attached(session.ID())
		return !attached
	}, time.Second, time.Millisecond)
}
