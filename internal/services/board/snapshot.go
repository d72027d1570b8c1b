package board

import (
	"fmt"

	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/piece"
)

// State renders the board as a SnapshotLength string, buffer rows first.
// Settled cells are drawn over empty ones, the ghost only over cells that
// are still empty, and the live piece last.
func (b *Board) State() string {
	buf := b.settled()
	for _, c := range b.Ghost().Cells() {
		if i := c.SnapshotIndex(); buf[i] == model.EmptySymbol {
			buf[i] = model.PieceGhost.Symbol()
		}
	}
	symbol := b.current.Piece.Symbol()
	for _, c := range b.current.Cells() {
		buf[c.SnapshotIndex()] = symbol
	}
	return string(buf)
}

func (b *Board) settled() []byte {
	buf := make([]byte, model.SnapshotLength)
	for y := -model.BoardHeight; y < model.BoardHeight; y++ {
		for x, c := range b.row(y) {
			buf[model.Point{X: x, Y: y}.SnapshotIndex()] = c.Symbol()
		}
	}
	return buf
}

// Snapshot returns a structured copy of the board that Restore accepts
func (b *Board) Snapshot() model.BoardSnapshot {
	snap := model.BoardSnapshot{
		Cells:      string(b.settled()),
		Current:    b.current.State(),
		HoldLocked: b.holdLocked,
		PieceNum:   b.pieceNum,
		Lines:      b.lines,
		Strategy:   b.strategy,
		Danger:     b.DangerLevel(),
	}
	if b.held != nil {
		held := *b.held
		snap.Held = &held
	}
	if len(b.pendingGarbage) > 0 {
		snap.Pending = append([]int(nil), b.pendingGarbage...)
	}
	return snap
}

// Restore replaces the board contents with snap. Nothing is changed unless
// the whole snapshot is valid.
func (b *Board) Restore(snap model.BoardSnapshot) error {
	if len(snap.Cells) != model.SnapshotLength {
		return fmt.Errorf("%w: cells has length %d, want %d",
			model.ErrInvalidBoardState, len(snap.Cells), model.SnapshotLength)
	}

	var main, buffer [model.BoardHeight]gridRow
	for i := 0; i < model.SnapshotLength; i++ {
		ch := snap.Cells[i]
		if ch == model.EmptySymbol {
			continue
		}
		p, ok := model.PieceFromSymbol(ch)
		if !ok || p == model.PieceGhost {
			return fmt.Errorf("%w: invalid cell %q at index %d", model.ErrInvalidBoardState, ch, i)
		}
		y, x := i/model.BoardWidth-model.BoardHeight, i%model.BoardWidth
		if y >= 0 {
			main[y][x] = model.FullCell(p)
		} else {
			buffer[model.BoardHeight+y][x] = model.FullCell(p)
		}
	}
	for i, r := range append(buffer[:], main[:]...) {
		if isFull(r) {
			return fmt.Errorf("%w: row %d is complete", model.ErrInvalidBoardState, i-model.BoardHeight)
		}
	}

	current, err := piece.FromState(snap.Current)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidBoardState, err)
	}
	for _, c := range current.Cells() {
		if !c.InBounds() {
			return fmt.Errorf("%w: live piece cell (%d,%d) is out of bounds", model.ErrInvalidBoardState, c.X, c.Y)
		}
		var cell model.Cell
		if c.Y >= 0 {
			cell = main[c.Y][c.X]
		} else {
			cell = buffer[model.BoardHeight+c.Y][c.X]
		}
		if !cell.IsEmpty() {
			return fmt.Errorf("%w: live piece overlaps settled cell (%d,%d)", model.ErrInvalidBoardState, c.X, c.Y)
		}
	}

	var held *model.Piece
	if snap.Held != nil {
		if !snap.Held.IsShape() {
			return fmt.Errorf("%w: held piece %s is not a shape", model.ErrInvalidBoardState, *snap.Held)
		}
		h := *snap.Held
		held = &h
	}
	if snap.PieceNum < 0 || snap.PieceNum >= b.queue.Generated() {
		return fmt.Errorf("%w: piece number %d is outside the generated queue (%d)",
			model.ErrInvalidBoardState, snap.PieceNum, b.queue.Generated())
	}
	if snap.Lines < 0 {
		return fmt.Errorf("%w: negative line count", model.ErrInvalidBoardState)
	}
	for _, rows := range snap.Pending {
		if rows <= 0 {
			return fmt.Errorf("%w: pending garbage entries must be positive", model.ErrInvalidBoardState)
		}
	}
	strategy := snap.Strategy
	if strategy == "" {
		strategy = model.StrategyEven
	}
	if !strategy.IsValid() {
		return fmt.Errorf("%w: unknown strategy %q", model.ErrInvalidBoardState, strategy)
	}

	b.main = main
	b.buffer = buffer
	b.current = current
	b.held = held
	b.holdLocked = snap.HoldLocked
	b.pieceNum = snap.PieceNum
	b.lines = snap.Lines
	b.pendingGarbage = append([]int(nil), snap.Pending...)
	b.strategy = strategy
	b.pattern = model.PatternNone
	b.rotated = false
	b.lockOut, b.blockOut, b.topOut = false, false, false
	return nil
}

func isFull(r gridRow) bool {
	for _, c := range r {
		if c.IsEmpty() {
			return false
		}
	}
	return true
}
