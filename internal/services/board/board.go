// Package board implements the playfield: a visible main grid with a hidden
// buffer of the same size above it, the live piece, and everything that
// happens when a piece locks.
package board

import (
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/piece"
	"github.com/mcoot/blockfall/internal/services/queue"
)

type gridRow [model.BoardWidth]model.Cell

// WinCondition decides whether a session has been won. It is evaluated once
// per lock with the current game-over flag and the rows cleared so far.
type WinCondition func(gameOver bool, linesCleared int) bool

// LockResult describes a lock
type LockResult struct {
	Piece   model.Piece
	Rows    int // rows removed by this lock
	LockOut bool
}

// Board is a single player's playfield. It is not safe for concurrent use;
// a session owns its board exclusively.
type Board struct {
	queue queue.Queue

	main   [model.BoardHeight]gridRow
	buffer [model.BoardHeight]gridRow

	current    piece.MovingPiece
	held       *model.Piece
	holdLocked bool
	pieceNum   int

	rotated bool // last accepted action was a quarter-turn rotation
	pattern model.ClearLinePattern
	lines   int

	lockOut  bool
	blockOut bool
	topOut   bool

	pendingGarbage []int
	strategy       model.Strategy
}

// New creates an empty board and spawns the first piece from q
func New(q queue.Queue) *Board {
	b := &Board{
		queue:    q,
		pattern:  model.PatternNone,
		strategy: model.StrategyEven,
	}
	b.spawn(q.Piece(0))
	return b
}

// row returns the grid row for a board-space y
func (b *Board) row(y int) *gridRow {
	if y >= 0 {
		return &b.main[y]
	}
	return &b.buffer[model.BoardHeight+y]
}

// Cell returns the settled cell at p. Out-of-bounds points read as empty.
func (b *Board) Cell(p model.Point) model.Cell {
	if !p.InBounds() {
		return model.CellEmpty
	}
	return b.row(p.Y)[p.X]
}

func (b *Board) setCell(p model.Point, c model.Cell) {
	b.row(p.Y)[p.X] = c
}

// occupied treats everything outside the field as full
func (b *Board) occupied(p model.Point) bool {
	if !p.InBounds() {
		return true
	}
	return !b.row(p.Y)[p.X].IsEmpty()
}

func (b *Board) fits(m piece.MovingPiece) bool {
	for _, c := range m.Cells() {
		if b.occupied(c) {
			return false
		}
	}
	return true
}

func (b *Board) canDescend(m piece.MovingPiece) bool {
	for _, c := range m.BottomContacts() {
		if c.Y+1 >= model.BoardHeight || b.occupied(model.Point{X: c.X, Y: c.Y + 1}) {
			return false
		}
	}
	return true
}

func (b *Board) spawn(p model.Piece) {
	b.current = piece.Spawn(p)
	b.rotated = false
	b.blockOut = false
	for _, c := range b.current.Cells() {
		if c.Y < 0 && b.occupied(c) {
			b.blockOut = true
		}
	}
}

// MoveLeft shifts the live piece one column left if nothing blocks it
func (b *Board) MoveLeft() bool {
	for _, c := range b.current.LeftContacts() {
		if c.X == 0 || b.occupied(model.Point{X: c.X - 1, Y: c.Y}) {
			return false
		}
	}
	b.current.MoveLeft()
	b.rotated = false
	return true
}

// MoveRight shifts the live piece one column right if nothing blocks it
func (b *Board) MoveRight() bool {
	for _, c := range b.current.RightContacts() {
		if c.X == model.BoardWidth-1 || b.occupied(model.Point{X: c.X + 1, Y: c.Y}) {
			return false
		}
	}
	b.current.MoveRight()
	b.rotated = false
	return true
}

// Rotate tries each kick candidate in order and applies the first that fits.
// When none fits the piece is left exactly as it was.
func (b *Board) Rotate(d piece.Direction) bool {
	for _, candidate := range b.current.Rotations(d) {
		if b.fits(candidate) {
			b.current = candidate
			b.rotated = d != piece.Half
			return true
		}
	}
	return false
}

// Resting reports whether the live piece cannot descend any further
func (b *Board) Resting() bool {
	return !b.canDescend(b.current)
}

// SoftDrop moves the live piece down one row without locking it
func (b *Board) SoftDrop() bool {
	if !b.canDescend(b.current) {
		return false
	}
	b.current.MoveDown()
	b.rotated = false
	return true
}

// Tick applies one gravity step: the piece descends, or locks when resting
func (b *Board) Tick() (LockResult, bool) {
	if b.SoftDrop() {
		return LockResult{}, false
	}
	return b.Lock(), true
}

// HardDrop drops the live piece as far as it goes and locks it
func (b *Board) HardDrop() LockResult {
	for b.SoftDrop() {
	}
	return b.Lock()
}

// Lock merges the live piece where it is, clears completed rows, classifies
// the clear and spawns the next piece
func (b *Board) Lock() LockResult {
	locked := b.current
	cells := locked.Cells()
	above := true
	for _, c := range cells {
		b.setCell(c, model.FullCell(locked.Piece))
		if c.Y >= 0 {
			above = false
		}
	}
	b.lockOut = above

	rows := b.completeRows()
	b.pattern = b.classify(len(rows), locked)
	for _, y := range rows {
		b.clearRow(y)
	}
	b.lines += len(rows)

	b.pieceNum++
	b.spawn(b.queue.Piece(b.pieceNum))
	b.holdLocked = false

	if b.PendingGarbage() > 0 && b.topOutCheck(b.PendingGarbage()) {
		b.topOut = true
	}

	return LockResult{Piece: locked.Piece, Rows: len(rows), LockOut: above}
}

// Hold stores the live piece. The first hold takes the next piece from the
// queue; later holds swap with the stored piece. Only one hold is allowed
// per placement.
func (b *Board) Hold() bool {
	if b.holdLocked {
		return false
	}
	current := b.current.Piece
	if b.held == nil {
		b.pieceNum++
		b.spawn(b.queue.Piece(b.pieceNum))
	} else {
		b.spawn(*b.held)
	}
	b.held = &current
	b.holdLocked = true
	return true
}

// Ghost returns where the live piece would land on a hard drop
func (b *Board) Ghost() piece.MovingPiece {
	g := b.current
	for b.canDescend(g) {
		g.MoveDown()
	}
	return g
}

// TakePattern returns the classification of the last lock and resets the
// slot, so a second read without a new lock returns PatternNone
func (b *Board) TakePattern() model.ClearLinePattern {
	p := b.pattern
	b.pattern = model.PatternNone
	return p
}

// GameOver reports lock-out, block-out or top-out
func (b *Board) GameOver() bool {
	return b.lockOut || b.blockOut || b.topOut
}

// GameWon evaluates a win condition against the board
func (b *Board) GameWon(cond WinCondition) bool {
	return cond(b.GameOver(), b.lines)
}

// HighestRow returns the smallest y holding a settled cell
func (b *Board) HighestRow() (int, bool) {
	for y := -model.BoardHeight; y < model.BoardHeight; y++ {
		for _, c := range b.row(y) {
			if !c.IsEmpty() {
				return y, true
			}
		}
	}
	return 0, false
}

// DangerLevel grades the stack height
func (b *Board) DangerLevel() model.DangerLevel {
	y, ok := b.HighestRow()
	if !ok {
		return model.DangerEmpty
	}
	return model.DangerLevelForRow(y)
}

// Current returns the live piece
func (b *Board) Current() piece.MovingPiece {
	return b.current
}

// Held returns the piece in the hold slot
func (b *Board) Held() (model.Piece, bool) {
	if b.held == nil {
		return 0, false
	}
	return *b.held, true
}

// HoldLocked reports whether hold is blocked until the next lock
func (b *Board) HoldLocked() bool {
	return b.holdLocked
}

// PieceNum returns the queue index of the live piece
func (b *Board) PieceNum() int {
	return b.pieceNum
}

// Preview returns the next n pieces after the live one
func (b *Board) Preview(n int) []model.Piece {
	return b.queue.Peek(b.pieceNum+1, n)
}

// Lines returns the total number of rows cleared
func (b *Board) Lines() int {
	return b.lines
}

// Rotated reports whether the last accepted action was a quarter turn
func (b *Board) Rotated() bool {
	return b.rotated
}

// Strategy returns the garbage targeting strategy
func (b *Board) Strategy() model.Strategy {
	return b.strategy
}

// SetStrategy changes the garbage targeting strategy
func (b *Board) SetStrategy(s model.Strategy) {
	b.strategy = s
}
