// Package piece holds the shape tables and the rotation system. A MovingPiece
// only knows its own geometry; collision is checked by the board.
package piece

import (
	"fmt"

	"github.com/mcoot/blockfall/internal/model"
)

// MovingPiece is the active piece: a shape, an orientation and an anchor.
// Every cell position is derived from these three values.
type MovingPiece struct {
	Piece       model.Piece
	Orientation model.Orientation
	X           int
	Y           int
}

// Spawn returns the piece at its spawn position
func Spawn(p model.Piece) MovingPiece {
	x := SpawnX
	if p == model.PieceO {
		x = SpawnXO
	}
	return MovingPiece{Piece: p, Orientation: model.North, X: x, Y: SpawnY}
}

// FromState builds a moving piece from a serialized state
func FromState(s model.PieceState) (MovingPiece, error) {
	if !s.Piece.IsShape() {
		return MovingPiece{}, fmt.Errorf("piece %s is not a shape", s.Piece)
	}
	if s.Orientation > model.West {
		return MovingPiece{}, fmt.Errorf("orientation %d out of range", s.Orientation)
	}
	return MovingPiece{Piece: s.Piece, Orientation: s.Orientation, X: s.X, Y: s.Y}, nil
}

// State returns the serializable form of the piece
func (m MovingPiece) State() model.PieceState {
	return model.PieceState{Piece: m.Piece, Orientation: m.Orientation, X: m.X, Y: m.Y}
}

// Cells returns the four occupied board cells
func (m MovingPiece) Cells() [4]model.Point {
	var out [4]model.Point
	for i, c := range occupied[m.Piece][m.Orientation] {
		out[i] = model.Point{X: m.X + c.X, Y: m.Y + c.Y}
	}
	return out
}

// BottomContacts returns the cells whose lower neighbour must be free for the
// piece to descend
func (m MovingPiece) BottomContacts() []model.Point {
	return m.translate(bottomContacts[m.Piece][m.Orientation])
}

// LeftContacts returns the cells whose left neighbour must be free
func (m MovingPiece) LeftContacts() []model.Point {
	return m.translate(leftContacts[m.Piece][m.Orientation])
}

// RightContacts returns the cells whose right neighbour must be free
func (m MovingPiece) RightContacts() []model.Point {
	return m.translate(rightContacts[m.Piece][m.Orientation])
}

func (m MovingPiece) translate(offsets []offset) []model.Point {
	out := make([]model.Point, len(offsets))
	for i, c := range offsets {
		out[i] = model.Point{X: m.X + c.X, Y: m.Y + c.Y}
	}
	return out
}

// MoveLeft shifts the anchor one column left without any bounds check
func (m *MovingPiece) MoveLeft() { m.X-- }

// MoveRight shifts the anchor one column right without any bounds check
func (m *MovingPiece) MoveRight() { m.X++ }

// MoveUp shifts the anchor one row up without any bounds check
func (m *MovingPiece) MoveUp() { m.Y-- }

// MoveDown shifts the anchor one row down without any bounds check
func (m *MovingPiece) MoveDown() { m.Y++ }

// Rotations returns the rotated candidates for direction d in kick order.
// The caller accepts the first one that fits.
func (m MovingPiece) Rotations(d Direction) []MovingPiece {
	offsets := kicks(m.Piece, m.Orientation, d)
	to := d.target(m.Orientation)
	out := make([]MovingPiece, len(offsets))
	for i, k := range offsets {
		out[i] = MovingPiece{Piece: m.Piece, Orientation: to, X: m.X + k.X, Y: m.Y + k.Y}
	}
	return out
}

// Corners are the four diagonal neighbours of the T pivot. Front corners sit
// on the side the T points towards.
type Corners struct {
	Front [2]model.Point
	Back  [2]model.Point
}

// SpinCorners returns the corner cells used for spin detection. Only the T
// piece has them.
func (m MovingPiece) SpinCorners() (Corners, bool) {
	if m.Piece != model.PieceT {
		return Corners{}, false
	}
	p := tPivot[m.Orientation]
	cx, cy := m.X+p.X, m.Y+p.Y
	topLeft := model.Point{X: cx - 1, Y: cy - 1}
	topRight := model.Point{X: cx + 1, Y: cy - 1}
	bottomLeft := model.Point{X: cx - 1, Y: cy + 1}
	bottomRight := model.Point{X: cx + 1, Y: cy + 1}

	switch m.Orientation {
	case model.East:
		return Corners{Front: [2]model.Point{topRight, bottomRight}, Back: [2]model.Point{topLeft, bottomLeft}}, true
	case model.South:
		return Corners{Front: [2]model.Point{bottomLeft, bottomRight}, Back: [2]model.Point{topLeft, topRight}}, true
	case model.West:
		return Corners{Front: [2]model.Point{topLeft, bottomLeft}, Back: [2]model.Point{topRight, bottomRight}}, true
	default:
		return Corners{Front: [2]model.Point{topLeft, topRight}, Back: [2]model.Point{bottomLeft, bottomRight}}, true
	}
}
