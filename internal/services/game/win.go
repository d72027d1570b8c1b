package game

import (
	"time"

	"github.com/mcoot/blockfall/internal/dependencies/clock"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/board"
)

// WinCondition returns the win predicate of a mode. Endless games are never
// won, blitz games are won by surviving BlitzDuration from start, and line
// races by clearing LinesTarget rows. A game that is over is never won.
func WinCondition(mode model.GameMode, clk clock.Clock, start time.Time) board.WinCondition {
	switch mode {
	case model.ModeBlitz:
		return func(gameOver bool, _ int) bool {
			return !gameOver && clk.Now().Sub(start) >= model.BlitzDuration
		}
	case model.ModeLines40:
		return func(gameOver bool, lines int) bool {
			return !gameOver && lines >= model.LinesTarget
		}
	default:
		return func(bool, int) bool { return false }
	}
}
