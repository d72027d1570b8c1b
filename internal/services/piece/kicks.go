package piece

import "github.com/mcoot/blockfall/internal/model"

// Direction is a rotation direction
type Direction uint8

const (
	Clockwise Direction = iota
	CounterClockwise
	Half
)

func (d Direction) String() string {
	switch d {
	case Clockwise:
		return "cw"
	case CounterClockwise:
		return "ccw"
	case Half:
		return "180"
	default:
		return "unknown"
	}
}

// target returns the orientation reached from o by rotating in direction d
func (d Direction) target(o model.Orientation) model.Orientation {
	switch d {
	case Clockwise:
		return o.CW()
	case CounterClockwise:
		return o.CCW()
	default:
		return o.Flip()
	}
}

// Kick tables hold final anchor offsets: the bounding-box shift between the
// two orientations already combined with the guideline kick. Candidates are
// tried in order. Indexed by the starting orientation.
var (
	jlstzCW = [4][]offset{
		model.North: {{1, 0}, {0, 0}, {0, -1}, {1, 2}, {0, 2}},
		model.East:  {{-1, 1}, {0, 1}, {0, 2}, {-1, -1}, {0, -1}},
		model.South: {{0, -1}, {1, -1}, {1, -2}, {0, 1}, {1, 1}},
		model.West:  {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
	}
	jlstzCCW = [4][]offset{
		model.North: {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
		model.East:  {{-1, 0}, {0, 0}, {0, 1}, {-1, -2}, {0, -2}},
		model.South: {{1, -1}, {0, -1}, {0, -2}, {1, 1}, {0, 1}},
		model.West:  {{0, 1}, {-1, 1}, {-1, 2}, {0, -1}, {-1, -1}},
	}

	// T drops the deep kicks out of North and South, so its table is not the
	// exact inverse of itself for those transitions.
	tCW = [4][]offset{
		model.North: {{1, 0}, {0, 0}, {0, -1}, {0, 2}},
		model.East:  {{-1, 1}, {0, 1}, {0, 2}, {-1, -1}, {0, -1}},
		model.South: {{0, -1}, {1, -1}, {0, 1}, {1, 1}},
		model.West:  {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
	}
	tCCW = [4][]offset{
		model.North: {{0, 0}, {1, 0}, {1, -1}, {1, 2}},
		model.East:  {{-1, 0}, {0, 0}, {0, 1}, {-1, -2}, {0, -2}},
		model.South: {{1, -1}, {0, -1}, {1, 1}, {0, 1}},
		model.West:  {{0, 1}, {-1, 1}, {-1, 2}, {0, -1}, {-1, -1}},
	}

	iCW = [4][]offset{
		model.North: {{2, -1}, {0, -1}, {3, -1}, {0, 0}, {3, -3}},
		model.East:  {{-2, 2}, {-3, 2}, {0, 2}, {-3, 0}, {0, 3}},
		model.South: {{1, -2}, {3, -2}, {0, -2}, {3, -3}, {0, 0}},
		model.West:  {{-1, 1}, {0, 1}, {-3, 1}, {0, 3}, {-3, 0}},
	}
	iCCW = [4][]offset{
		model.North: {{1, -1}, {0, -1}, {3, -1}, {0, -3}, {3, 0}},
		model.East:  {{-2, 1}, {0, 1}, {-3, 1}, {0, 0}, {-3, 3}},
		model.South: {{2, -2}, {3, -2}, {0, -2}, {3, 0}, {0, -3}},
		model.West:  {{-1, 2}, {-3, 2}, {0, 2}, {-3, 3}, {0, 0}},
	}

	// half turns: the bounding-box shift first, then rotation in place
	half = [4][]offset{
		model.North: {{0, 1}, {0, 0}},
		model.East:  {{-1, 0}, {0, 0}},
		model.South: {{0, -1}, {0, 0}},
		model.West:  {{1, 0}, {0, 0}},
	}

	inPlace = []offset{{0, 0}}
)

// kicks returns the ordered candidate offsets for rotating p from o
func kicks(p model.Piece, o model.Orientation, d Direction) []offset {
	switch p {
	case model.PieceO:
		return inPlace
	case model.PieceI:
		switch d {
		case Clockwise:
			return iCW[o]
		case CounterClockwise:
			return iCCW[o]
		}
		return half[o]
	case model.PieceT:
		switch d {
		case Clockwise:
			return tCW[o]
		case CounterClockwise:
			return tCCW[o]
		}
		return half[o]
	default:
		switch d {
		case Clockwise:
			return jlstzCW[o]
		case CounterClockwise:
			return jlstzCCW[o]
		}
		return half[o]
	}
}
