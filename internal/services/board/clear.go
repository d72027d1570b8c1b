package board

import (
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/piece"
)

// maxClearRows is the most rows a single lock can complete
const maxClearRows = 4

// completeRows scans the buffer then the main grid, top to bottom
func (b *Board) completeRows() []int {
	var rows []int
	for y := -model.BoardHeight; y < model.BoardHeight && len(rows) < maxClearRows; y++ {
		full := true
		for _, c := range b.row(y) {
			if c.IsEmpty() {
				full = false
				break
			}
		}
		if full {
			rows = append(rows, y)
		}
	}
	return rows
}

// clearRow removes row y by shifting every row above it down by one. The
// copy runs in board space, so the last buffer row moves into main row 0 and
// the top buffer row is emptied.
func (b *Board) clearRow(y int) {
	for dst := y; dst > -model.BoardHeight; dst-- {
		*b.row(dst) = *b.row(dst - 1)
	}
	*b.row(-model.BoardHeight) = gridRow{}
}

// classify labels a lock. A T that locks straight after a quarter-turn
// rotation is checked for a spin using the four corners around its pivot.
func (b *Board) classify(rows int, locked piece.MovingPiece) model.ClearLinePattern {
	if b.rotated {
		if corners, ok := locked.SpinCorners(); ok {
			front := b.countOccupied(corners.Front[:])
			back := b.countOccupied(corners.Back[:])
			if front+back >= 3 {
				if front == 2 {
					switch rows {
					case 0:
						return model.PatternTSpin
					case 1:
						return model.PatternTSpinSingle
					case 2:
						return model.PatternTSpinDouble
					case 3:
						return model.PatternTSpinTriple
					}
				} else if back == 2 {
					switch rows {
					case 0:
						return model.PatternMiniTSpin
					case 1:
						return model.PatternMiniTSpinSingle
					}
				}
			}
		}
	}
	return model.PatternForRows(rows)
}

func (b *Board) countOccupied(points []model.Point) int {
	n := 0
	for _, p := range points {
		if b.occupied(p) {
			n++
		}
	}
	return n
}
