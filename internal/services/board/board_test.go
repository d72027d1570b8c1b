package board

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/piece"
)

// fixedQueue repeats a fixed sequence of pieces
type fixedQueue struct {
	pieces []model.Piece
}

func (q *fixedQueue) Piece(index int) model.Piece {
	return q.pieces[index%len(q.pieces)]
}

func (q *fixedQueue) Peek(from, n int) []model.Piece {
	out := make([]model.Piece, n)
	for i := range out {
		out[i] = q.Piece(from + i)
	}
	return out
}

func (q *fixedQueue) Generated() int {
	return 1000
}

type BoardSuite struct {
	suite.Suite
}

func TestBoardSuite(t *testing.T) {
	suite.Run(t, new(BoardSuite))
}

func newBoard(pieces ...model.Piece) *Board {
	return New(&fixedQueue{pieces: pieces})
}

// fillBottom sets settled cells from text rows, the last row landing on the
// bottom of the main grid. '#' is a garbage cell, anything else is empty.
func fillBottom(b *Board, rows ...string) {
	top := model.BoardHeight - len(rows)
	for i, r := range rows {
		for x, ch := range r {
			if ch == '#' {
				b.setCell(model.Point{X: x, Y: top + i}, model.FullCell(model.PieceGarbage))
			}
		}
	}
}

func mainGrid(state string) string {
	return state[model.SnapshotLength/2:]
}

func (s *BoardSuite) TestHardDropBarOnEmptyBoard() {
	b := newBoard(model.PieceI)

	result := b.HardDrop()

	s.Equal(model.PieceI, result.Piece)
	s.Equal(0, result.Rows)
	state := b.State()
	s.Len(state, 2*model.BoardWidth*model.BoardHeight)
	s.Equal("IIII", mainGrid(state)[193:197])
	for x := 3; x < 7; x++ {
		p, ok := b.Cell(model.Point{X: x, Y: 19}).Piece()
		s.True(ok)
		s.Equal(model.PieceI, p)
	}
	s.Equal(1, b.PieceNum())
	s.False(b.GameOver())
}

func (s *BoardSuite) TestVerticalBarClearsFourRows() {
	b := newBoard(model.PieceI)
	fillBottom(b,
		".#########",
		".#########",
		".#########",
		".#########",
	)

	s.Require().True(b.Rotate(piece.Clockwise))
	for b.MoveLeft() {
	}
	s.Equal(0, b.Current().X)

	result := b.HardDrop()

	s.Equal(4, result.Rows)
	s.Equal(model.PatternTetris, b.TakePattern())
	_, occupied := b.HighestRow()
	s.False(occupied)
	s.Equal(strings.Repeat("E", model.SnapshotLength), b.Snapshot().Cells)
	s.Equal(4, b.Lines())
}

func (s *BoardSuite) TestPatternIsReadOnce() {
	b := newBoard(model.PieceI)
	fillBottom(b, "###....###")

	b.HardDrop()

	s.Equal(model.PatternSingle, b.TakePattern())
	s.Equal(model.PatternNone, b.TakePattern())
}

func (s *BoardSuite) TestRepeatedSingleClearsShiftIdentically() {
	b := newBoard(model.PieceI)
	pattern := "###....###"
	fillBottom(b, pattern, pattern, pattern)

	for remaining := 2; remaining >= 0; remaining-- {
		b.HardDrop()
		s.Equal(model.PatternSingle, b.TakePattern())

		want := newBoard(model.PieceI)
		rows := make([]string, remaining)
		for i := range rows {
			rows[i] = pattern
		}
		fillBottom(want, rows...)
		s.Equal(want.Snapshot().Cells, b.Snapshot().Cells, "remaining %d", remaining)
	}
}

func (s *BoardSuite) TestClearShiftsAcrossBufferSeam() {
	b := newBoard(model.PieceI)
	fillBottom(b, "###....###")
	b.setCell(model.Point{X: 9, Y: -1}, model.FullCell(model.PieceGarbage))
	b.setCell(model.Point{X: 8, Y: -20}, model.FullCell(model.PieceGarbage))

	b.HardDrop()

	s.False(b.Cell(model.Point{X: 9, Y: 0}).IsEmpty(), "last buffer row moves into main row 0")
	s.True(b.Cell(model.Point{X: 9, Y: -1}).IsEmpty())
	s.False(b.Cell(model.Point{X: 8, Y: -19}).IsEmpty())
	s.True(b.Cell(model.Point{X: 8, Y: -20}).IsEmpty(), "top buffer row is emptied")
}

func (s *BoardSuite) TestTSpinIntoPocket() {
	b := newBoard(model.PieceT)
	b.setCell(model.Point{X: 4, Y: 19}, model.FullCell(model.PieceGarbage))
	b.setCell(model.Point{X: 6, Y: 19}, model.FullCell(model.PieceGarbage))
	b.setCell(model.Point{X: 4, Y: 17}, model.FullCell(model.PieceGarbage))
	b.current = piece.MovingPiece{Piece: model.PieceT, Orientation: model.East, X: 5, Y: 17}

	s.Require().True(b.Rotate(piece.Clockwise))
	s.Equal(piece.MovingPiece{Piece: model.PieceT, Orientation: model.South, X: 4, Y: 18}, b.Current())
	s.True(b.Resting())

	result := b.HardDrop()

	s.Equal(0, result.Rows)
	s.Equal(model.PatternTSpin, b.TakePattern())
	s.Equal(0, b.Lines())
}

func (s *BoardSuite) TestSameSlotWithoutRotationIsNotASpin() {
	b := newBoard(model.PieceT)
	b.setCell(model.Point{X: 4, Y: 19}, model.FullCell(model.PieceGarbage))
	b.setCell(model.Point{X: 6, Y: 19}, model.FullCell(model.PieceGarbage))
	b.setCell(model.Point{X: 4, Y: 17}, model.FullCell(model.PieceGarbage))
	b.current = piece.MovingPiece{Piece: model.PieceT, Orientation: model.South, X: 4, Y: 18}

	b.HardDrop()

	s.Equal(model.PatternNone, b.TakePattern())
}

func (s *BoardSuite) TestMiniSpinAgainstFloor() {
	b := newBoard(model.PieceT)
	b.setCell(model.Point{X: 0, Y: 18}, model.FullCell(model.PieceGarbage))
	b.setCell(model.Point{X: 3, Y: 18}, model.FullCell(model.PieceGarbage))
	b.current = piece.MovingPiece{Piece: model.PieceT, Orientation: model.West, X: 1, Y: 17}

	s.Require().True(b.Rotate(piece.Clockwise))
	s.Equal(piece.MovingPiece{Piece: model.PieceT, Orientation: model.North, X: 0, Y: 18}, b.Current())

	b.HardDrop()

	s.Equal(model.PatternMiniTSpin, b.TakePattern())
}

func (s *BoardSuite) TestSpinWithClearedRow() {
	b := newBoard(model.PieceT)
	fillBottom(b,
		"###....###",
		"#####.####",
	)
	b.setCell(model.Point{X: 4, Y: 17}, model.FullCell(model.PieceGarbage))
	b.current = piece.MovingPiece{Piece: model.PieceT, Orientation: model.East, X: 5, Y: 17}

	s.Require().True(b.Rotate(piece.Clockwise))
	result := b.HardDrop()

	s.Equal(1, result.Rows)
	s.Equal(model.PatternTSpinSingle, b.TakePattern())
}

func (s *BoardSuite) TestFailedRotationLeavesPieceUntouched() {
	cases := []struct {
		piece      model.Piece
		directions []piece.Direction
	}{
		{model.PieceT, []piece.Direction{piece.Clockwise, piece.CounterClockwise, piece.Half}},
		{model.PieceJ, []piece.Direction{piece.Clockwise, piece.CounterClockwise, piece.Half}},
		{model.PieceL, []piece.Direction{piece.Clockwise, piece.CounterClockwise, piece.Half}},
		// symmetric shapes cover the same cells after a half turn
		{model.PieceI, []piece.Direction{piece.Clockwise, piece.CounterClockwise}},
		{model.PieceS, []piece.Direction{piece.Clockwise, piece.CounterClockwise}},
	}
	for _, tc := range cases {
		b := newBoard(tc.piece)
		for b.SoftDrop() {
		}
		live := map[model.Point]bool{}
		for _, c := range b.Current().Cells() {
			live[c] = true
		}
		for y := -model.BoardHeight; y < model.BoardHeight; y++ {
			for x := 0; x < model.BoardWidth; x++ {
				if pt := (model.Point{X: x, Y: y}); !live[pt] {
					b.setCell(pt, model.FullCell(model.PieceGarbage))
				}
			}
		}
		before := b.Current()

		for _, d := range tc.directions {
			s.False(b.Rotate(d), "piece %s direction %s", tc.piece, d)
			s.Equal(before, b.Current())
		}
	}
}

func (s *BoardSuite) TestWallKickOffLeftWall() {
	b := newBoard(model.PieceI)
	b.current = piece.MovingPiece{Piece: model.PieceI, Orientation: model.East, X: 0, Y: 5}

	s.True(b.Rotate(piece.Clockwise))

	s.Equal(model.South, b.Current().Orientation)
	for _, c := range b.Current().Cells() {
		s.True(c.InBounds())
	}
}

func (s *BoardSuite) TestRotationFlag() {
	b := newBoard(model.PieceT)
	s.False(b.Rotated())
	s.True(b.Rotate(piece.Clockwise))
	s.True(b.Rotated())
	s.True(b.MoveLeft())
	s.False(b.Rotated())
	s.True(b.Rotate(piece.CounterClockwise))
	s.True(b.SoftDrop())
	s.False(b.Rotated())
	s.True(b.Rotate(piece.Half))
	s.False(b.Rotated())
}

func (s *BoardSuite) TestHorizontalMovesStopAtWalls() {
	b := newBoard(model.PieceI)
	moves := 0
	for b.MoveLeft() {
		moves++
	}
	s.Equal(3, moves)
	moves = 0
	for b.MoveRight() {
		moves++
	}
	s.Equal(6, moves)
	s.Equal(6, b.Current().X)
}

func (s *BoardSuite) TestHorizontalMovesBlockedBySettledCells() {
	b := newBoard(model.PieceO)
	b.setCell(model.Point{X: 3, Y: -1}, model.FullCell(model.PieceGarbage))
	s.False(b.MoveLeft())
	s.True(b.MoveRight())
}

func (s *BoardSuite) TestTickDescendsThenLocks() {
	b := newBoard(model.PieceO)
	b.current.Y = 16

	_, locked := b.Tick()
	s.False(locked)
	s.Equal(17, b.Current().Y)

	_, locked = b.Tick()
	s.False(locked)
	s.True(b.Resting())

	result, locked := b.Tick()
	s.True(locked)
	s.Equal(model.PieceO, result.Piece)
}

func (s *BoardSuite) TestHold() {
	b := newBoard(model.PieceT, model.PieceL, model.PieceZ)

	s.True(b.Hold())
	held, ok := b.Held()
	s.True(ok)
	s.Equal(model.PieceT, held)
	s.Equal(model.PieceL, b.Current().Piece)
	s.Equal(1, b.PieceNum())

	s.False(b.Hold(), "blocked until the next lock")

	b.HardDrop()
	s.Equal(model.PieceZ, b.Current().Piece)
	s.True(b.Hold())
	s.Equal(model.PieceT, b.Current().Piece)
	s.Equal(piece.Spawn(model.PieceT), b.Current())
	held, _ = b.Held()
	s.Equal(model.PieceZ, held)
	s.Equal(2, b.PieceNum())
}

func (s *BoardSuite) TestLockOut() {
	b := newBoard(model.PieceO)
	for y := 0; y < model.BoardHeight; y++ {
		b.setCell(model.Point{X: 4, Y: y}, model.FullCell(model.PieceGarbage))
		b.setCell(model.Point{X: 5, Y: y}, model.FullCell(model.PieceGarbage))
	}

	result := b.HardDrop()

	s.True(result.LockOut)
	s.True(b.GameOver())
}

func (s *BoardSuite) TestBlockOut() {
	b := newBoard(model.PieceO, model.PieceI)
	b.setCell(model.Point{X: 6, Y: -2}, model.FullCell(model.PieceGarbage))

	result := b.HardDrop()

	s.False(result.LockOut)
	s.True(b.GameOver())
}

func (s *BoardSuite) TestGhostAndDrawOrder() {
	b := newBoard(model.PieceT)
	fillBottom(b, "#.........")

	state := b.State()
	ghost := b.Ghost()
	s.Equal(18, ghost.Y)
	for _, c := range ghost.Cells() {
		s.Equal(byte('G'), state[c.SnapshotIndex()])
	}
	for _, c := range b.Current().Cells() {
		s.Equal(byte('T'), state[c.SnapshotIndex()])
	}
	s.Equal(byte('R'), state[model.Point{X: 0, Y: 19}.SnapshotIndex()])
	s.Equal(byte('E'), state[model.Point{X: 9, Y: 19}.SnapshotIndex()])
}

func (s *BoardSuite) TestLivePieceDrawnOverGhost() {
	b := newBoard(model.PieceI)
	for b.SoftDrop() {
	}
	state := b.State()
	s.Equal("IIII", mainGrid(state)[193:197])
	s.NotContains(state, "G")
}

func (s *BoardSuite) TestDangerLevelGrowsWithStackHeight() {
	b := newBoard(model.PieceI)
	s.Equal(model.DangerEmpty, b.DangerLevel())

	previous := 0
	for y := model.BoardHeight - 1; y >= -model.BoardHeight; y-- {
		stacked := newBoard(model.PieceI)
		stacked.setCell(model.Point{X: 0, Y: y}, model.FullCell(model.PieceGarbage))
		severity := stacked.DangerLevel().Severity()
		s.GreaterOrEqual(severity, previous, "row %d", y)
		previous = severity
	}
	s.Equal(model.DangerAlmostDead.Severity(), previous)
}

func (s *BoardSuite) TestGameWonUsesLineCount() {
	b := newBoard(model.PieceI)
	fillBottom(b, "###....###")
	target := func(gameOver bool, lines int) bool { return !gameOver && lines >= 1 }

	s.False(b.GameWon(target))
	b.HardDrop()
	s.True(b.GameWon(target))
}

func (s *BoardSuite) TestPreview() {
	b := newBoard(model.PieceI, model.PieceO, model.PieceT)
	s.Equal([]model.Piece{model.PieceO, model.PieceT, model.PieceI}, b.Preview(3))
}
