package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/board"
	"github.com/mcoot/blockfall/internal/services/piece"
	"github.com/mcoot/blockfall/internal/services/scoring"
)

// Run plays the session until it ends and returns the final result. A
// cancelled context forfeits the game. Run may only be called once.
func (s *Session) Run(ctx context.Context) (*model.GameResult, error) {
	if !s.started.CompareAndSwap(false, true) {
		return nil, model.ErrSessionRunning
	}
	defer s.close()

	for {
		result := s.play(ctx)
		if !s.retry {
			return result, nil
		}
		s.logger.Info("session restarted")
		s.reset()
	}
}

// play runs one game from countdown to a terminal state
func (s *Session) play(ctx context.Context) *model.GameResult {
	if !s.countdown(ctx) {
		s.forfeit()
		return s.finish(ctx)
	}

	stop := make(chan struct{})
	gravityDone := make(chan struct{})
	defer func() {
		close(stop)
		<-gravityDone
	}()
	go func() {
		defer close(gravityDone)
		s.gravityLoop(stop)
	}()

	s.discardCommands()
	s.startedAt = s.clock.Now()
	s.lastSecond = 0
	s.emitQueue()
	s.emitBoard()
	s.logger.Info("session started", slog.String("mode", string(s.mode)))

	for s.running {
		s.step()
		if !s.running {
			break
		}
		select {
		case <-ctx.Done():
			s.forfeit()
		case <-s.clock.After(s.cfg.FrameInterval):
		}
		s.tickElapsed()
	}
	return s.finish(ctx)
}

// countdown emits one event per second before the first piece. It reports
// false when the context is cancelled first.
func (s *Session) countdown(ctx context.Context) bool {
	for remaining := s.cfg.Countdown; remaining > 0; remaining-- {
		s.publish(model.EventCountdown, model.CountdownPayload{Remaining: remaining})
		select {
		case <-ctx.Done():
			return false
		case <-s.clock.After(time.Second):
		}
	}
	return true
}

// discardCommands drops commands issued before the game started
func (s *Session) discardCommands() {
	for {
		select {
		case <-s.commands:
		default:
			return
		}
	}
}

// drainTimers drops gravity ticks, level changes and lock expiries left
// over from a previous game
func (s *Session) drainTimers() {
	for {
		select {
		case <-s.gravity:
		case <-s.levels:
		case <-s.lockExpiry:
		default:
			return
		}
	}
}

// step runs one loop iteration: critical checks, control, every queued
// command, then at most one higher-level message
func (s *Session) step() {
	s.criticalChecks()
	if !s.running {
		return
	}

	s.handleControl()
	if !s.running {
		return
	}

	for drained := false; !drained; {
		select {
		case cmd := <-s.commands:
			s.apply(cmd)
			s.emitBoard()
			if !s.running {
				return
			}
			s.criticalChecks()
			if !s.running {
				return
			}
		default:
			drained = true
		}
	}

	select {
	case m := <-s.messages:
		s.handleMessage(m)
	default:
	}
}

// criticalChecks handles everything that can lock the live piece
func (s *Session) criticalChecks() {
	if s.lock.active && s.board.Current().Y > s.lock.lowestY {
		s.lock = lockState{}
	}

	if s.lock.active && s.lock.movesLeft <= 0 {
		s.settle(s.board.Lock())
		s.emitBoard()
		if !s.running {
			return
		}
	}

	for drained := false; !drained; {
		select {
		case exp := <-s.lockExpiry:
			if s.lock.active && exp.seq == s.lock.seq && exp.watermark >= s.lock.lowestY {
				s.settle(s.board.HardDrop())
				s.emitBoard()
				if !s.running {
					return
				}
			}
		default:
			drained = true
		}
	}

	if !s.lock.active && s.board.Resting() {
		s.armLock()
	}

	select {
	case <-s.gravity:
		if result, locked := s.board.Tick(); locked {
			s.settle(result)
		}
		s.emitBoard()
	default:
	}
}

// armLock starts the lock delay of a piece that just came to rest
func (s *Session) armLock() {
	s.lockSeq++
	s.lock = lockState{
		active:    true,
		seq:       s.lockSeq,
		movesLeft: s.cfg.MoveBudget,
		lowestY:   s.board.Current().Y,
	}
	exp := lockExpiry{seq: s.lockSeq, watermark: s.lock.lowestY}
	timer := s.clock.After(s.cfg.LockDelay)
	go func() {
		select {
		case <-timer:
		case <-s.done:
			return
		}
		select {
		case s.lockExpiry <- exp:
		case <-s.done:
		}
	}()
}

// gravityLoop sends a tick every gravity interval of the current level
func (s *Session) gravityLoop(stop <-chan struct{}) {
	level := 1
	for {
		for drained := false; !drained; {
			select {
			case level = <-s.levels:
			default:
				drained = true
			}
		}

		select {
		case <-s.clock.After(scoring.GravityInterval(level)):
		case <-stop:
			return
		}

		select {
		case s.gravity <- struct{}{}:
		case <-stop:
			return
		}
	}
}

// apply executes one player command
func (s *Session) apply(cmd model.Command) {
	moved := false
	switch cmd {
	case model.CommandMoveLeft:
		moved = s.board.MoveLeft()
	case model.CommandMoveRight:
		moved = s.board.MoveRight()
	case model.CommandRotateCW:
		moved = s.rotate(piece.Clockwise)
	case model.CommandRotateCCW:
		moved = s.rotate(piece.CounterClockwise)
	case model.CommandRotate180:
		moved = s.rotate(piece.Half)
	case model.CommandSoftDrop:
		s.board.SoftDrop()
	case model.CommandHardDrop:
		s.settle(s.board.HardDrop())
	case model.CommandHold:
		if s.board.Hold() {
			s.lock = lockState{}
			s.emitHeld()
			s.emitQueue()
		}
	}

	if moved {
		s.stats.PieceMoves++
		if s.lock.active {
			s.lock.movesLeft--
		}
	}
}

func (s *Session) rotate(d piece.Direction) bool {
	if !s.board.Rotate(d) {
		return false
	}
	s.stats.Spins++
	return true
}

// settle handles everything that follows a lock
func (s *Session) settle(result board.LockResult) {
	s.lock = lockState{}
	s.stats.PiecesUsed++
	s.emitQueue()
	s.publish(model.EventPieceSettled, model.PieceSettledPayload{Piece: result.Piece})

	pattern := s.board.TakePattern()
	award := s.score.Record(pattern)
	if pattern != model.PatternNone {
		s.stats.RecordClear(pattern)
		s.publish(model.EventLineCleared, model.LineClearedPayload{
			Pattern:  pattern,
			Progress: s.score.Progress(s.mode, s.board.Lines()),
		})
		s.publish(model.EventPoints, model.PointsPayload{
			Points: s.score.Points(),
			Level:  s.score.Level(),
		})
		if s.responder != nil {
			if rows := s.board.CounterGarbage(award.Weighted); rows > 0 {
				s.responder.GarbageSent(s.id, rows)
				s.publish(model.EventGarbageSent, model.GarbageSentPayload{Rows: rows})
			}
		}
	}
	if award.LevelUp {
		s.logger.Info("level up", slog.Int("level", s.score.Level()))
		select {
		case s.levels <- s.score.Level():
		default:
		}
	}

	if danger := s.board.DangerLevel(); danger != s.danger {
		s.danger = danger
		s.publish(model.EventDangerLevel, model.DangerLevelPayload{Level: danger})
		if s.responder != nil {
			s.responder.DangerChanged(s.id, danger)
		}
	}

	if s.board.GameWon(WinCondition(s.mode, s.clock, s.startedAt)) {
		s.win()
		return
	}
	if s.board.GameOver() {
		s.running = false
		s.outcome = model.OutcomeLost
		s.publish(model.EventGameOver, model.GameOverPayload{Forfeited: false})
		if s.responder != nil {
			s.responder.Lost(s.id)
		}
	}
}

func (s *Session) win() {
	s.running = false
	s.outcome = model.OutcomeWon
	s.publish(model.EventGameWon, model.GameWonPayload{
		Points: s.score.Points(),
		Lines:  s.board.Lines(),
	})
}

func (s *Session) forfeit() {
	if !s.running {
		return
	}
	s.running = false
	s.outcome = model.OutcomeForfeited
	s.publish(model.EventGameOver, model.GameOverPayload{Forfeited: true})
	if s.responder != nil {
		s.responder.Lost(s.id)
	}
}

// handleControl drains forfeit and retry requests
func (s *Session) handleControl() {
	for {
		select {
		case c := <-s.control:
			switch c {
			case model.ControlForfeit:
				s.forfeit()
			case model.ControlRetry:
				if s.responder == nil {
					s.running = false
					s.retry = true
					s.outcome = model.OutcomeStopped
				}
			}
		default:
			return
		}
	}
}

func (s *Session) handleMessage(m message) {
	switch m := m.(type) {
	case garbageMessage:
		s.board.QueueGarbage(m.rows)
	case strategyMessage:
		s.board.SetStrategy(m.strategy)
		s.publish(model.EventStrategySet, model.StrategySetPayload{Strategy: m.strategy})
		if s.responder != nil {
			s.responder.StrategyChanged(s.id, m.strategy)
		}
	case wonMessage:
		s.win()
	case queueRequest:
		pieces := s.board.Preview(model.PreviewLength)
		m.reply <- pieces
		s.publish(model.EventQueueReply, model.QueuePayload{Pieces: pieces})
	}
}

// tickElapsed publishes the elapsed time on every new whole second
func (s *Session) tickElapsed() {
	elapsed := s.clock.Now().Sub(s.startedAt)
	secs := int64(elapsed / time.Second)
	if secs <= s.lastSecond {
		return
	}
	s.lastSecond = secs
	s.publish(model.EventTime, model.TimePayload{Elapsed: model.FormatElapsed(elapsed)})
	s.updateView(model.StatusRunning)
}

// finish records the terminal state and hands the result to storage
func (s *Session) finish(ctx context.Context) *model.GameResult {
	if s.outcome == "" {
		s.outcome = model.OutcomeStopped
	}
	now := s.clock.Now()
	result := &model.GameResult{
		ID:         s.id,
		Mode:       s.mode,
		Outcome:    s.outcome,
		Points:     s.score.Points(),
		Level:      s.score.Level(),
		Lines:      s.board.Lines(),
		Duration:   now.Sub(s.startedAt),
		Stats:      s.stats,
		StartedAt:  s.startedAt,
		FinishedAt: now,
	}
	s.updateView(model.StatusFinished)

	s.logger.Info("session finished",
		slog.String("outcome", string(result.Outcome)),
		slog.Int("points", result.Points),
		slog.Int("lines", result.Lines),
		slog.Duration("duration", result.Duration),
	)

	if s.results == nil || s.responder != nil || result.Outcome == model.OutcomeStopped {
		return result
	}
	// the caller's context may already be cancelled
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.results.SaveResult(saveCtx, result); err != nil {
		s.logger.Error("failed to save result", slog.String("error", err.Error()))
	}
	return result
}
