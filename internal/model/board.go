package model

// Board dimensions. The buffer above the visible field has the same height as
// the main grid.
const (
	BoardWidth  = 10
	BoardHeight = 20

	// SnapshotLength is the size of a board state string: buffer then main grid
	SnapshotLength = 2 * BoardWidth * BoardHeight

	// PreviewLength is the number of upcoming pieces shown to the player
	PreviewLength = 5
)

// Point is a board-space coordinate. Negative y values are buffer rows.
type Point struct {
	X int
	Y int
}

// InBounds reports whether the point lies inside the buffer or main grid
func (p Point) InBounds() bool {
	return p.X >= 0 && p.X < BoardWidth && p.Y >= -BoardHeight && p.Y < BoardHeight
}

// SnapshotIndex returns the index of the point in a board state string
func (p Point) SnapshotIndex() int {
	return (p.Y+BoardHeight)*BoardWidth + p.X
}

// PieceState describes the live piece for snapshots and restores
type PieceState struct {
	Piece       Piece       `json:"piece" yaml:"piece"`
	Orientation Orientation `json:"orientation" yaml:"orientation"`
	X           int         `json:"x" yaml:"x"`
	Y           int         `json:"y" yaml:"y"`
}

// BoardSnapshot is a structured view of a board used for restores
type BoardSnapshot struct {
	Cells      string      `json:"cells"` // SnapshotLength characters, settled cells only
	Current    PieceState  `json:"current"`
	Held       *Piece      `json:"held,omitempty"`
	HoldLocked bool        `json:"hold_locked"`
	PieceNum   int         `json:"piece_num"`
	Lines      int         `json:"lines"`
	Pending    []int       `json:"pending_garbage,omitempty"`
	Strategy   Strategy    `json:"strategy"`
	Danger     DangerLevel `json:"danger"`
}

// DangerLevel summarises how close the stack is to the top of the field
type DangerLevel string

const (
	DangerEmpty      DangerLevel = "empty"
	DangerVeryLow    DangerLevel = "very_low"
	DangerLow        DangerLevel = "low"
	DangerMedium     DangerLevel = "medium"
	DangerHigh       DangerLevel = "high"
	DangerVeryHigh   DangerLevel = "very_high"
	DangerAlmostDead DangerLevel = "almost_dead"
)

// DangerLevelForRow maps the highest occupied row to a danger level.
// Rows further up the field (smaller y) are more dangerous.
func DangerLevelForRow(y int) DangerLevel {
	switch {
	case y >= 15 && y <= 19:
		return DangerVeryLow
	case y >= 13 && y <= 14:
		return DangerLow
	case y >= 8 && y <= 12:
		return DangerMedium
	case y >= 6 && y <= 7:
		return DangerHigh
	case y >= 3 && y <= 5:
		return DangerVeryHigh
	default:
		return DangerAlmostDead
	}
}

// Severity orders danger levels from empty (0) to almost dead (6)
func (d DangerLevel) Severity() int {
	switch d {
	case DangerVeryLow:
		return 1
	case DangerLow:
		return 2
	case DangerMedium:
		return 3
	case DangerHigh:
		return 4
	case DangerVeryHigh:
		return 5
	case DangerAlmostDead:
		return 6
	default:
		return 0
	}
}
