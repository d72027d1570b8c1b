package bot

import (
	"github.com/mcoot/blockfall/internal/model"
)

// Weights scores a settled board; higher totals are better
type Weights struct {
	Height    float64 `yaml:"height"`
	Lines     float64 `yaml:"lines"`
	Holes     float64 `yaml:"holes"`
	Bumpiness float64 `yaml:"bumpiness"`
}

// DefaultWeights are tuned to keep the stack low and flat
func DefaultWeights() Weights {
	return Weights{
		Height:    -0.51,
		Lines:     0.76,
		Holes:     -0.36,
		Bumpiness: -0.18,
	}
}

// GreedyStrategy simulates every placement of the current piece and keeps
// the one whose resulting board scores best
type GreedyStrategy struct {
	weights Weights
}

// NewGreedyStrategy creates a new GreedyStrategy
func NewGreedyStrategy(weights Weights) *GreedyStrategy {
	return &GreedyStrategy{weights: weights}
}

// Plan returns the commands for the best scoring placement
func (s *GreedyStrategy) Plan(snap model.BoardSnapshot) []model.Command {
	var (
		best      placement
		bestScore float64
		found     bool
	)
	for _, p := range candidates() {
		out, ok := simulate(snap, p)
		if !ok || out.over {
			continue
		}
		score := s.score(out)
		if !found || score > bestScore {
			best, bestScore, found = p, score, true
		}
	}
	if !found {
		return []model.Command{model.CommandHardDrop}
	}
	return best.commands()
}

func (s *GreedyStrategy) score(out outcome) float64 {
	f := measure(out.cells)
	return s.weights.Height*float64(f.aggregateHeight) +
		s.weights.Lines*float64(out.cleared) +
		s.weights.Holes*float64(f.holes) +
		s.weights.Bumpiness*float64(f.bumpiness)
}

type features struct {
	aggregateHeight int
	holes           int
	bumpiness       int
}

// measure reads column features of the main grid from a snapshot cell string
func measure(cells string) features {
	var f features
	var heights [model.BoardWidth]int
	mainGrid := cells[model.SnapshotLength/2:]
	for x := 0; x < model.BoardWidth; x++ {
		seen := false
		for y := 0; y < model.BoardHeight; y++ {
			filled := mainGrid[y*model.BoardWidth+x] != model.EmptySymbol
			switch {
			case filled && !seen:
				seen = true
				heights[x] = model.BoardHeight - y
			case !filled && seen:
				f.holes++
			}
		}
		f.aggregateHeight += heights[x]
	}
	for x := 1; x < model.BoardWidth; x++ {
		f.bumpiness += abs(heights[x] - heights[x-1])
	}
	return f
}
