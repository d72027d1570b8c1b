package game

import (
	"github.com/mcoot/blockfall/internal/model"
)

func (s *Session) publish(t model.EventType, payload any) {
	s.sink.Publish(model.Event{
		Type:      t,
		Timestamp: s.clock.Now(),
		GameID:    s.id,
		Payload:   payload,
	})
}

// emitBoard publishes the rendered board and refreshes the view
func (s *Session) emitBoard() {
	s.publish(model.EventBoardState, model.BoardStatePayload{State: s.board.State()})
	status := model.StatusRunning
	if !s.running {
		status = model.StatusFinished
	}
	s.updateView(status)
}

func (s *Session) emitQueue() {
	s.publish(model.EventQueue, model.QueuePayload{Pieces: s.board.Preview(model.PreviewLength)})
}

func (s *Session) emitHeld() {
	if held, ok := s.board.Held(); ok {
		s.publish(model.EventHeldPiece, model.HeldPiecePayload{Piece: held})
	}
}

func (s *Session) updateView(status model.GameStatus) {
	v := model.GameView{
		ID:      s.id,
		Mode:    s.mode,
		Status:  status,
		Outcome: s.outcome,
		State:   s.board.State(),
		Board:   s.board.Snapshot(),
		Preview: s.board.Preview(model.PreviewLength),
		Points:  s.score.Points(),
		Level:   s.score.Level(),
		Lines:   s.board.Lines(),
		Elapsed: model.FormatElapsed(s.clock.Now().Sub(s.startedAt)),
	}
	if status == model.StatusWaiting {
		v.Elapsed = model.FormatElapsed(0)
	}

	s.viewMu.Lock()
	s.view = v
	s.viewMu.Unlock()
}
