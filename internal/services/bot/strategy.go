package bot

import (
	"math"

	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/board"
	"github.com/mcoot/blockfall/internal/services/piece"
)

// Strategy decides where the live piece of a board goes
type Strategy interface {
	// Plan returns the commands that place the current piece, ending with a
	// hard drop
	Plan(snap model.BoardSnapshot) []model.Command
}

// placement is one way to drop the current piece
type placement struct {
	rotations int
	shift     int // negative moves left
}

func (p placement) commands() []model.Command {
	cmds := make([]model.Command, 0, p.rotations+abs(p.shift)+1)
	for i := 0; i < p.rotations; i++ {
		cmds = append(cmds, model.CommandRotateCW)
	}
	move := model.CommandMoveRight
	if p.shift < 0 {
		move = model.CommandMoveLeft
	}
	for i := 0; i < abs(p.shift); i++ {
		cmds = append(cmds, move)
	}
	return append(cmds, model.CommandHardDrop)
}

// outcome is the settled board after simulating a placement
type outcome struct {
	cells   string
	cleared int
	over    bool
}

// simulate replays a placement on a copy of the snapshot. It reports false
// when a rotation or move of the placement is blocked.
func simulate(snap model.BoardSnapshot, p placement) (outcome, bool) {
	b := board.New(fixedQueue{piece: snap.Current.Piece})
	if err := b.Restore(snap); err != nil {
		return outcome{}, false
	}
	for i := 0; i < p.rotations; i++ {
		if !b.Rotate(piece.Clockwise) {
			return outcome{}, false
		}
	}
	for i := 0; i < abs(p.shift); i++ {
		moved := false
		if p.shift < 0 {
			moved = b.MoveLeft()
		} else {
			moved = b.MoveRight()
		}
		if !moved {
			return outcome{}, false
		}
	}
	b.HardDrop()
	return outcome{
		cells:   b.Snapshot().Cells,
		cleared: b.Lines() - snap.Lines,
		over:    b.GameOver(),
	}, true
}

// candidates lists every rotation and shift that reaches a distinct column
func candidates() []placement {
	var out []placement
	for r := 0; r < 4; r++ {
		for shift := -model.BoardWidth / 2; shift <= model.BoardWidth/2; shift++ {
			out = append(out, placement{rotations: r, shift: shift})
		}
	}
	return out
}

// fixedQueue feeds the simulated board the same piece forever
type fixedQueue struct {
	piece model.Piece
}

func (q fixedQueue) Piece(int) model.Piece { return q.piece }

func (q fixedQueue) Peek(_, n int) []model.Piece {
	out := make([]model.Piece, n)
	for i := range out {
		out[i] = q.piece
	}
	return out
}

func (q fixedQueue) Generated() int { return math.MaxInt32 }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
