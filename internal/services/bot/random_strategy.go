package bot

import (
	"github.com/mcoot/blockfall/internal/dependencies/random"
	"github.com/mcoot/blockfall/internal/model"
)

// RandomStrategy drops every piece at a random reachable placement
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// Plan picks a random placement, falling back to a plain hard drop when the
// chosen one is blocked
func (s *RandomStrategy) Plan(snap model.BoardSnapshot) []model.Command {
	all := candidates()
	p := all[s.random.Intn(len(all))]
	if _, ok := simulate(snap, p); !ok {
		return []model.Command{model.CommandHardDrop}
	}
	return p.commands()
}
