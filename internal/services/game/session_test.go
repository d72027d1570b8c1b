package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blockfall/internal/dependencies/mocks"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/queue"
	"github.com/mcoot/blockfall/internal/storage/memory"
	"github.com/mcoot/blockfall/internal/testutil"
)

type recordingSink struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recordingSink) Publish(e model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) ofType(t model.EventType) []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type recordingResponder struct {
	mu         sync.Mutex
	danger     []model.DangerLevel
	garbage    []int
	strategies []model.Strategy
	lost       int
}

func (r *recordingResponder) DangerChanged(_ model.GameID, level model.DangerLevel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.danger = append(r.danger, level)
}

func (r *recordingResponder) GarbageSent(_ model.GameID, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.garbage = append(r.garbage, rows)
}

func (r *recordingResponder) StrategyChanged(_ model.GameID, strategy model.Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = append(r.strategies, strategy)
}

func (r *recordingResponder) Lost(model.GameID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lost++
}

type SessionSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	sink    *recordingSink
	storage *memory.Storage
	session *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.sink = &recordingSink{}
	s.storage = memory.New()
	s.session = s.newSession(model.ModeEndless, nil)
}

func (s *SessionSuite) TearDownTest() {
	s.session.close()
}

// newSession builds a session whose bag deals I O T S Z J L repeatedly
func (s *SessionSuite) newSession(mode model.GameMode, responder Responder) *Session {
	rng := mocks.NewMockRandom()
	cfg := DefaultConfig()
	cfg.Countdown = 0
	params := SessionParams{
		ID:        "game-1",
		Mode:      mode,
		NewQueue:  func() queue.Queue { return queue.NewBag(rng) },
		Sink:      s.sink,
		Responder: responder,
	}
	if responder == nil {
		params.Results = s.storage
	}
	return NewSession(params, s.clock, cfg, testutil.NopLogger())
}

// cells returns an empty board string with the given points filled with
// garbage
func cells(points ...model.Point) string {
	b := make([]byte, model.SnapshotLength)
	for i := range b {
		b[i] = model.EmptySymbol
	}
	for _, p := range points {
		b[p.SnapshotIndex()] = model.PieceGarbage.Symbol()
	}
	return string(b)
}

// rowExcept returns every cell of row y outside [from, to)
func rowExcept(y, from, to int) []model.Point {
	var points []model.Point
	for x := 0; x < model.BoardWidth; x++ {
		if x < from || x >= to {
			points = append(points, model.Point{X: x, Y: y})
		}
	}
	return points
}

// restingOnLedge places a flat I piece on a single cell at (6,10), so a move
// left leaves it hanging over empty space
func (s *SessionSuite) restingOnLedge(session *Session) {
	err := session.Restore(model.BoardSnapshot{
		Cells:   cells(model.Point{X: 6, Y: 10}),
		Current: model.PieceState{Piece: model.PieceI, Orientation: model.North, X: 3, Y: 9},
	})
	s.Require().NoError(err)
}

func (s *SessionSuite) submit(cmds ...model.Command) {
	for _, cmd := range cmds {
		s.Require().NoError(s.session.Submit(cmd))
	}
}

// Commands

func (s *SessionSuite) TestCommandsApplyInOrder() {
	s.submit(model.CommandMoveLeft, model.CommandMoveLeft)

	s.session.step()

	s.Equal(1, s.session.board.Current().X)
	s.Equal(2, s.session.stats.PieceMoves)
	s.Len(s.sink.ofType(model.EventBoardState), 2)
}

func (s *SessionSuite) TestHardDropLocksBarOnFloor() {
	s.submit(model.CommandHardDrop)

	s.session.step()

	view := s.session.View()
	s.Len(view.State, model.SnapshotLength)
	mainGrid := view.State[model.SnapshotLength/2:]
	s.Equal("IIII", mainGrid[193:197])
	s.Equal(1, s.session.stats.PiecesUsed)
	s.Require().Len(s.sink.ofType(model.EventPieceSettled), 1)
	s.Equal(model.PieceO, s.session.board.Current().Piece)
	s.Empty(s.sink.ofType(model.EventLineCleared))
}

func (s *SessionSuite) TestHoldPublishesHeldPiece() {
	s.submit(model.CommandHold)

	s.session.step()

	held := s.sink.ofType(model.EventHeldPiece)
	s.Require().Len(held, 1)
	s.Equal(model.HeldPiecePayload{Piece: model.PieceI}, held[0].Payload)
	s.Equal(model.PieceO, s.session.board.Current().Piece)
}

func (s *SessionSuite) TestSubmitRejectsUnknownCommand() {
	err := s.session.Submit("teleport")
	s.ErrorIs(err, model.ErrInvalidCommand)
}

func (s *SessionSuite) TestSubmitReportsFullQueue() {
	for i := 0; i < DefaultConfig().CommandBuffer; i++ {
		s.Require().NoError(s.session.Submit(model.CommandSoftDrop))
	}

	err := s.session.Submit(model.CommandSoftDrop)
	s.ErrorIs(err, model.ErrCommandQueueFull)
}

func (s *SessionSuite) TestSubmitAllIsAllOrNothing() {
	free := DefaultConfig().CommandBuffer - 2
	for i := 0; i < free; i++ {
		s.Require().NoError(s.session.Submit(model.CommandSoftDrop))
	}

	tests := []struct {
		name    string
		cmds    []model.Command
		wantErr error
		wantLen int
	}{
		{"unknown command", []model.Command{model.CommandMoveLeft, "teleport"}, model.ErrInvalidCommand, free},
		{"larger than free space", []model.Command{model.CommandMoveLeft, model.CommandMoveLeft, model.CommandHold}, model.ErrCommandQueueFull, free},
		{"fits exactly", []model.Command{model.CommandMoveLeft, model.CommandHold}, nil, free + 2},
		{"queue now full", []model.Command{model.CommandHold}, model.ErrCommandQueueFull, free + 2},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.session.SubmitAll(tt.cmds)
			if tt.wantErr != nil {
				s.ErrorIs(err, tt.wantErr)
			} else {
				s.NoError(err)
			}
			s.Len(s.session.commands, tt.wantLen)
		})
	}
}

func (s *SessionSuite) TestSubmitAfterStop() {
	s.session.close()

	s.ErrorIs(s.session.Submit(model.CommandHold), model.ErrSessionStopped)
	s.ErrorIs(s.session.Forfeit(), model.ErrSessionStopped)
}

// Lock delay

func (s *SessionSuite) TestMoveBudgetLocksInPlace() {
	s.restingOnLedge(s.session)
	s.session.criticalChecks()
	s.Require().True(s.session.lock.active)

	for i := 0; i < DefaultConfig().MoveBudget; i++ {
		if i%2 == 0 {
			s.submit(model.CommandMoveLeft)
		} else {
			s.submit(model.CommandMoveRight)
		}
	}
	s.session.step()

	// the last move left the bar hanging over empty cells
	s.Equal(1, s.session.stats.PiecesUsed)
	state := s.session.View().Board.Cells
	s.Equal("IIII", state[292:296])
	s.Equal("EEEE", state[302:306])
	s.Equal(model.PieceO, s.session.board.Current().Piece)
}

func (s *SessionSuite) TestMovesBeforeRestingAreFree() {
	s.submit(model.CommandMoveLeft, model.CommandMoveRight)

	s.session.step()

	s.False(s.session.lock.active)
	s.Zero(s.session.stats.PiecesUsed)
}

func (s *SessionSuite) TestLockTimerForcesLock() {
	s.restingOnLedge(s.session)
	s.session.criticalChecks()
	s.Require().True(s.session.lock.active)

	s.clock.Advance(DefaultConfig().LockDelay)
	s.Eventually(func() bool { return len(s.session.lockExpiry) == 1 }, time.Second, time.Millisecond)
	s.session.criticalChecks()

	s.Equal(1, s.session.stats.PiecesUsed)
	s.Equal("IIII", s.session.View().Board.Cells[293:297])
}

func (s *SessionSuite) TestLockTimerIgnoredAfterDescent() {
	s.restingOnLedge(s.session)
	s.session.criticalChecks()
	s.Require().True(s.session.lock.active)

	s.submit(model.CommandMoveLeft, model.CommandSoftDrop)
	s.session.step()
	s.Require().False(s.session.lock.active)

	s.clock.Advance(DefaultConfig().LockDelay)
	s.Eventually(func() bool { return len(s.session.lockExpiry) == 1 }, time.Second, time.Millisecond)
	s.session.criticalChecks()

	s.Zero(s.session.stats.PiecesUsed)
	s.Equal(9, s.session.board.Current().Y)
}

func (s *SessionSuite) TestGravityTickDescends() {
	s.session.gravity <- struct{}{}

	s.session.criticalChecks()

	s.Equal(-1, s.session.board.Current().Y)
}

func (s *SessionSuite) TestGravityTickWhileRestingLocks() {
	s.restingOnLedge(s.session)
	s.session.gravity <- struct{}{}

	s.session.criticalChecks()

	s.Equal(1, s.session.stats.PiecesUsed)
}

// Scoring and outcomes

func (s *SessionSuite) TestLineClearPublishesProgress() {
	err := s.session.Restore(model.BoardSnapshot{
		Cells:   cells(rowExcept(19, 3, 7)...),
		Current: model.PieceState{Piece: model.PieceI, Orientation: model.North, X: 3, Y: -2},
	})
	s.Require().NoError(err)
	s.submit(model.CommandHardDrop)

	s.session.step()

	cleared := s.sink.ofType(model.EventLineCleared)
	s.Require().Len(cleared, 1)
	s.Equal(model.LineClearedPayload{Pattern: model.PatternSingle, Progress: "1/5"}, cleared[0].Payload)
	points := s.sink.ofType(model.EventPoints)
	s.Require().Len(points, 1)
	s.Equal(model.PointsPayload{Points: 100, Level: 1}, points[0].Payload)
	s.Equal(1, s.session.stats.Singles)
}

func (s *SessionSuite) TestLineRaceWonOnFortiethRow() {
	s.session = s.newSession(model.ModeLines40, nil)
	err := s.session.Restore(model.BoardSnapshot{
		Cells:   cells(rowExcept(19, 3, 7)...),
		Current: model.PieceState{Piece: model.PieceI, Orientation: model.North, X: 3, Y: -2},
		Lines:   model.LinesTarget - 1,
	})
	s.Require().NoError(err)
	s.submit(model.CommandHardDrop)

	s.session.step()

	s.False(s.session.running)
	s.Equal(model.OutcomeWon, s.session.outcome)
	s.Require().Len(s.sink.ofType(model.EventGameWon), 1)
	cleared := s.sink.ofType(model.EventLineCleared)
	s.Require().Len(cleared, 1)
	s.Equal("40/40", cleared[0].Payload.(model.LineClearedPayload).Progress)
}

func (s *SessionSuite) TestLockOutEndsGame() {
	var column []model.Point
	for y := 0; y < model.BoardHeight; y++ {
		column = append(column, model.Point{X: 4, Y: y})
	}
	err := s.session.Restore(model.BoardSnapshot{
		Cells:   cells(column...),
		Current: model.PieceState{Piece: model.PieceI, Orientation: model.North, X: 3, Y: -2},
	})
	s.Require().NoError(err)
	s.submit(model.CommandHardDrop)

	s.session.step()

	s.False(s.session.running)
	s.Equal(model.OutcomeLost, s.session.outcome)
	over := s.sink.ofType(model.EventGameOver)
	s.Require().Len(over, 1)
	s.Equal(model.GameOverPayload{Forfeited: false}, over[0].Payload)
}

func (s *SessionSuite) TestForfeitIsPersisted() {
	s.Require().NoError(s.session.Forfeit())

	s.session.step()
	result := s.session.finish(context.Background())

	s.Equal(model.OutcomeForfeited, result.Outcome)
	over := s.sink.ofType(model.EventGameOver)
	s.Require().Len(over, 1)
	s.Equal(model.GameOverPayload{Forfeited: true}, over[0].Payload)
	stored, err := s.storage.GetResult(context.Background(), "game-1")
	s.Require().NoError(err)
	s.Equal(model.OutcomeForfeited, stored.Outcome)
}

func (s *SessionSuite) TestRetryStopsWithoutPersisting() {
	s.Require().NoError(s.session.Retry())

	s.session.step()
	result := s.session.finish(context.Background())

	s.True(s.session.retry)
	s.Equal(model.OutcomeStopped, result.Outcome)
	_, err := s.storage.GetResult(context.Background(), "game-1")
	s.ErrorIs(err, model.ErrResultNotFound)
}

func (s *SessionSuite) TestResetDropsTimersFromPreviousGame() {
	s.session.gravity <- struct{}{}
	s.session.levels <- 7
	s.session.lockExpiry <- lockExpiry{seq: 1}
	s.session.retry = true

	s.session.reset()

	s.Empty(s.session.gravity)
	s.Empty(s.session.levels)
	s.Empty(s.session.lockExpiry)
	s.False(s.session.retry)
	s.True(s.session.running)
}

func (s *SessionSuite) TestTickElapsedOncePerSecond() {
	s.clock.Advance(1500 * time.Millisecond)
	s.session.tickElapsed()
	s.session.tickElapsed()
	s.clock.Advance(time.Second)
	s.session.tickElapsed()

	ticks := s.sink.ofType(model.EventTime)
	s.Require().Len(ticks, 2)
	s.Equal(model.TimePayload{Elapsed: "00:00:01"}, ticks[0].Payload)
	s.Equal(model.TimePayload{Elapsed: "00:00:02"}, ticks[1].Payload)
}

// Room messages

func (s *SessionSuite) TestRetryIgnoredInRoom() {
	s.session = s.newSession(model.ModeEndless, &recordingResponder{})
	s.Require().NoError(s.session.Retry())

	s.session.step()

	s.True(s.session.running)
}

func (s *SessionSuite) TestGarbageMessageQueuesRows() {
	s.session.ReceiveGarbage(3)

	s.session.step()

	s.Equal(3, s.session.board.PendingGarbage())
}

func (s *SessionSuite) TestStrategyChangeIsReported() {
	responder := &recordingResponder{}
	s.session = s.newSession(model.ModeEndless, responder)
	s.Require().NoError(s.session.SetStrategy(model.StrategyPayBack))

	s.session.step()

	s.Equal(model.StrategyPayBack, s.session.board.Strategy())
	s.Equal([]model.Strategy{model.StrategyPayBack}, responder.strategies)
}

func (s *SessionSuite) TestSetStrategyRejectsUnknown() {
	s.ErrorIs(s.session.SetStrategy("everyone"), model.ErrInvalidStrategy)
}

func (s *SessionSuite) TestClearSendsGarbageToRoom() {
	responder := &recordingResponder{}
	s.session = s.newSession(model.ModeEndless, responder)
	err := s.session.Restore(model.BoardSnapshot{
		Cells:   cells(rowExcept(19, 3, 7)...),
		Current: model.PieceState{Piece: model.PieceI, Orientation: model.North, X: 3, Y: -2},
	})
	s.Require().NoError(err)
	s.submit(model.CommandHardDrop)

	s.session.step()

	s.Equal([]int{1}, responder.garbage)
	s.Len(s.sink.ofType(model.EventGarbageSent), 1)
}

func (s *SessionSuite) TestPendingGarbageAbsorbsClear() {
	responder := &recordingResponder{}
	s.session = s.newSession(model.ModeEndless, responder)
	err := s.session.Restore(model.BoardSnapshot{
		Cells:   cells(rowExcept(19, 3, 7)...),
		Current: model.PieceState{Piece: model.PieceI, Orientation: model.North, X: 3, Y: -2},
		Pending: []int{2},
	})
	s.Require().NoError(err)
	s.submit(model.CommandHardDrop)

	s.session.step()

	s.Empty(responder.garbage)
	s.Equal(1, s.session.board.PendingGarbage())
}

func (s *SessionSuite) TestDeclareWon() {
	s.session.DeclareWon()

	s.session.step()

	s.Equal(model.OutcomeWon, s.session.outcome)
	s.Len(s.sink.ofType(model.EventGameWon), 1)
}

func (s *SessionSuite) TestRequestQueue() {
	type reply struct {
		pieces []model.Piece
		err    error
	}
	replies := make(chan reply, 1)
	go func() {
		pieces, err := s.session.RequestQueue(context.Background())
		replies <- reply{pieces, err}
	}()
	s.Eventually(func() bool { return len(s.session.messages) == 1 }, time.Second, time.Millisecond)

	s.session.step()

	r := <-replies
	s.Require().NoError(r.err)
	s.Equal([]model.Piece{model.PieceO, model.PieceT, model.PieceS, model.PieceZ, model.PieceJ}, r.pieces)
}

// Run

func (s *SessionSuite) TestRunEndsOnForfeitBeforeStart() {
	s.Require().NoError(s.session.Forfeit())

	result, err := s.session.Run(context.Background())

	s.Require().NoError(err)
	s.Equal(model.OutcomeForfeited, result.Outcome)
	s.Equal(model.StatusFinished, s.session.View().Status)
	select {
	case <-s.session.Done():
	default:
		s.Fail("session not marked done")
	}

	_, err = s.session.Run(context.Background())
	s.ErrorIs(err, model.ErrSessionRunning)
}

func (s *SessionSuite) TestRunCancelledDuringCountdown() {
	cfg := DefaultConfig()
	session := NewSession(SessionParams{
		ID:       "game-2",
		Mode:     model.ModeBlitz,
		NewQueue: func() queue.Queue { return queue.NewBag(mocks.NewMockRandom()) },
		Sink:     s.sink,
		Results:  s.storage,
	}, s.clock, cfg, testutil.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := session.Run(ctx)

	s.Require().NoError(err)
	s.Equal(model.OutcomeForfeited, result.Outcome)
	countdown := s.sink.ofType(model.EventCountdown)
	s.Require().Len(countdown, 1)
	s.Equal(model.CountdownPayload{Remaining: 3}, countdown[0].Payload)
}

func (s *SessionSuite) TestRestoreRejectedWhileRunning() {
	s.session.started.Store(true)

	err := s.session.Restore(model.BoardSnapshot{Cells: cells()})

	s.ErrorIs(err, model.ErrSessionRunning)
}

func (s *SessionSuite) TestRestoreFailsClosed() {
	err := s.session.Restore(model.BoardSnapshot{Cells: "short"})

	s.ErrorIs(err, model.ErrInvalidBoardState)
	s.Equal(-2, s.session.board.Current().Y)
}

// Win predicates

func (s *SessionSuite) TestWinConditions() {
	start := s.clock.Now()
	cases := []struct {
		name     string
		mode     model.GameMode
		elapsed  time.Duration
		gameOver bool
		lines    int
		want     bool
	}{
		{"endless never won", model.ModeEndless, time.Hour, false, 1000, false},
		{"blitz before time", model.ModeBlitz, 119 * time.Second, false, 0, false},
		{"blitz at time", model.ModeBlitz, 120 * time.Second, false, 0, true},
		{"blitz after game over", model.ModeBlitz, 200 * time.Second, true, 0, false},
		{"race short", model.ModeLines40, 0, false, 39, false},
		{"race done", model.ModeLines40, 0, false, 40, true},
		{"race after game over", model.ModeLines40, 0, true, 45, false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			clk := mocks.NewMockClock(start.Add(tc.elapsed))
			cond := WinCondition(tc.mode, clk, start)
			s.Equal(tc.want, cond(tc.gameOver, tc.lines))
		})
	}
}
