package piece

import "github.com/mcoot/blockfall/internal/model"

// offset is a cell position relative to a piece anchor, y growing downward
type offset struct {
	X, Y int
}

// shape tables indexed by [piece][orientation]. The anchor is the top-left
// corner of the occupied cells' bounding box.
var occupied = [7][4][4]offset{
	model.PieceI: {
		model.North: {{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		model.East:  {{0, 0}, {0, 1}, {0, 2}, {0, 3}},
		model.South: {{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		model.West:  {{0, 0}, {0, 1}, {0, 2}, {0, 3}},
	},
	model.PieceO: {
		model.North: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		model.East:  {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		model.South: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		model.West:  {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	},
	model.PieceT: {
		model.North: {{1, 0}, {0, 1}, {1, 1}, {2, 1}},
		model.East:  {{0, 0}, {0, 1}, {1, 1}, {0, 2}},
		model.South: {{0, 0}, {1, 0}, {2, 0}, {1, 1}},
		model.West:  {{1, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	model.PieceS: {
		model.North: {{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		model.East:  {{0, 0}, {0, 1}, {1, 1}, {1, 2}},
		model.South: {{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		model.West:  {{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	model.PieceZ: {
		model.North: {{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		model.East:  {{1, 0}, {0, 1}, {1, 1}, {0, 2}},
		model.South: {{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		model.West:  {{1, 0}, {0, 1}, {1, 1}, {0, 2}},
	},
	model.PieceJ: {
		model.North: {{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		model.East:  {{0, 0}, {1, 0}, {0, 1}, {0, 2}},
		model.South: {{0, 0}, {1, 0}, {2, 0}, {2, 1}},
		model.West:  {{1, 0}, {1, 1}, {0, 2}, {1, 2}},
	},
	model.PieceL: {
		model.North: {{2, 0}, {0, 1}, {1, 1}, {2, 1}},
		model.East:  {{0, 0}, {0, 1}, {0, 2}, {1, 2}},
		model.South: {{0, 0}, {1, 0}, {2, 0}, {0, 1}},
		model.West:  {{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
}

// contact cells per direction, derived once from the occupied tables
var (
	bottomContacts [7][4][]offset
	leftContacts   [7][4][]offset
	rightContacts  [7][4][]offset
)

func init() {
	for p := range occupied {
		for o := range occupied[p] {
			cells := occupied[p][o]
			bottomContacts[p][o] = facing(cells, 0, 1)
			leftContacts[p][o] = facing(cells, -1, 0)
			rightContacts[p][o] = facing(cells, 1, 0)
		}
	}
}

// facing returns the cells whose neighbour at (dx, dy) is outside the piece
func facing(cells [4]offset, dx, dy int) []offset {
	var out []offset
	for _, c := range cells {
		neighbour := offset{c.X + dx, c.Y + dy}
		inside := false
		for _, other := range cells {
			if other == neighbour {
				inside = true
				break
			}
		}
		if !inside {
			out = append(out, c)
		}
	}
	return out
}

// Spawn anchor for every shape. O sits one column further right so that it
// is centred over the middle two columns.
const (
	SpawnX  = 3
	SpawnY  = -2
	SpawnXO = 4
)

// pivot is the T-piece rotation centre relative to the anchor
var tPivot = [4]offset{
	model.North: {1, 1},
	model.East:  {0, 1},
	model.South: {1, 0},
	model.West:  {1, 1},
}
