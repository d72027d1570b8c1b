package model

import "fmt"

// Piece identifies a shape or a non-shape cell colour
type Piece uint8

const (
	PieceI Piece = iota
	PieceO
	PieceT
	PieceS
	PieceZ
	PieceJ
	PieceL
	PieceGhost
	PieceGarbage
)

// Shapes lists the seven playable shapes in bag order
var Shapes = [7]Piece{PieceI, PieceO, PieceT, PieceS, PieceZ, PieceJ, PieceL}

var pieceSymbols = [...]byte{'I', 'O', 'T', 'S', 'Z', 'J', 'L', 'G', 'R'}

// EmptySymbol is the snapshot character for an empty cell
const EmptySymbol byte = 'E'

// Symbol returns the snapshot alphabet character for the piece
func (p Piece) Symbol() byte {
	if int(p) >= len(pieceSymbols) {
		return '?'
	}
	return pieceSymbols[p]
}

// IsShape reports whether the piece is one of the seven playable shapes
func (p Piece) IsShape() bool {
	return p <= PieceL
}

func (p Piece) String() string {
	return string(p.Symbol())
}

// PieceFromSymbol parses a snapshot character into a piece
func PieceFromSymbol(c byte) (Piece, bool) {
	for i, s := range pieceSymbols {
		if s == c {
			return Piece(i), true
		}
	}
	return 0, false
}

// MarshalText encodes the piece as its snapshot letter
func (p Piece) MarshalText() ([]byte, error) {
	if int(p) >= len(pieceSymbols) {
		return nil, fmt.Errorf("unknown piece %d", p)
	}
	return []byte{p.Symbol()}, nil
}

// UnmarshalText decodes a snapshot letter
func (p *Piece) UnmarshalText(text []byte) error {
	if len(text) != 1 {
		return fmt.Errorf("invalid piece %q", text)
	}
	parsed, ok := PieceFromSymbol(text[0])
	if !ok {
		return fmt.Errorf("invalid piece %q", text)
	}
	*p = parsed
	return nil
}

// Orientation is one of the four rotation states of a piece
type Orientation uint8

const (
	North Orientation = iota
	East
	South
	West
)

// CW returns the orientation after a clockwise quarter turn
func (o Orientation) CW() Orientation {
	return (o + 1) % 4
}

// CCW returns the orientation after a counter-clockwise quarter turn
func (o Orientation) CCW() Orientation {
	return (o + 3) % 4
}

// Flip returns the orientation after a half turn
func (o Orientation) Flip() Orientation {
	return (o + 2) % 4
}

func (o Orientation) String() string {
	switch o {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	default:
		return "?"
	}
}

// Cell is a single board square: either empty or full with a piece colour.
// The zero value is an empty cell.
type Cell uint8

// CellEmpty is the empty cell
const CellEmpty Cell = 0

// FullCell returns a cell filled with the given piece colour
func FullCell(p Piece) Cell {
	return Cell(p) + 1
}

// IsEmpty reports whether the cell is empty
func (c Cell) IsEmpty() bool {
	return c == CellEmpty
}

// Piece returns the colour of a full cell
func (c Cell) Piece() (Piece, bool) {
	if c == CellEmpty {
		return 0, false
	}
	return Piece(c - 1), true
}

// Symbol returns the snapshot character for the cell
func (c Cell) Symbol() byte {
	p, ok := c.Piece()
	if !ok {
		return EmptySymbol
	}
	return p.Symbol()
}

// MarshalText encodes the orientation as N, E, S or W
func (o Orientation) MarshalText() ([]byte, error) {
	if o > West {
		return nil, fmt.Errorf("unknown orientation %d", o)
	}
	return []byte(o.String()), nil
}

// UnmarshalText decodes N, E, S or W
func (o *Orientation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "N":
		*o = North
	case "E":
		*o = East
	case "S":
		*o = South
	case "W":
		*o = West
	default:
		return fmt.Errorf("invalid orientation %q", text)
	}
	return nil
}
