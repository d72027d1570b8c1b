package scoring

import "github.com/mcoot/blockfall/internal/model"

// award holds the per-pattern values at level 1
type award struct {
	points      int
	bonusPoints int // added when the same pattern repeats
	lines       int // weighted lines toward the level quota and garbage
	bonusLines  int
}

var awards = map[model.ClearLinePattern]award{
	model.PatternSingle:          {points: 100, bonusPoints: 50, lines: 1, bonusLines: 1},
	model.PatternDouble:          {points: 300, bonusPoints: 150, lines: 3, bonusLines: 2},
	model.PatternTriple:          {points: 500, bonusPoints: 250, lines: 5, bonusLines: 3},
	model.PatternTetris:          {points: 800, bonusPoints: 400, lines: 8, bonusLines: 4},
	model.PatternTSpin:           {points: 400, bonusPoints: 200, lines: 4, bonusLines: 1},
	model.PatternTSpinSingle:     {points: 800, bonusPoints: 400, lines: 8, bonusLines: 4},
	model.PatternTSpinDouble:     {points: 1200, bonusPoints: 600, lines: 12, bonusLines: 6},
	model.PatternTSpinTriple:     {points: 1600, bonusPoints: 1600, lines: 16, bonusLines: 16},
	model.PatternMiniTSpin:       {points: 100, bonusPoints: 50, lines: 1, bonusLines: 1},
	model.PatternMiniTSpinSingle: {points: 200, bonusPoints: 100, lines: 2, bonusLines: 1},
}
