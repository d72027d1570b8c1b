package model

import (
	"fmt"
	"strconv"
	"strings"
)

// PlayerID identifies a seat in a room. Ids are issued by the room.
type PlayerID uint64

func (id PlayerID) String() string {
	return fmt.Sprintf("p%d", uint64(id))
}

// ParsePlayerID parses the "p<n>" form produced by String. A bare number is
// accepted too.
func ParsePlayerID(s string) (PlayerID, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "p"), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNotInRoom, s)
	}
	return PlayerID(n), nil
}

// Strategy selects which opponent receives a player's garbage rows
type Strategy string

const (
	StrategyElimination Strategy = "elimination" // target the player closest to topping out
	StrategyEven        Strategy = "even"        // target whoever has received the least
	StrategyPayBack     Strategy = "payback"     // target whoever sent garbage last
	StrategyRandom      Strategy = "random"
)

// ValidStrategies returns all valid targeting strategies
func ValidStrategies() []Strategy {
	return []Strategy{StrategyElimination, StrategyEven, StrategyPayBack, StrategyRandom}
}

// IsValid reports whether the strategy is known
func (s Strategy) IsValid() bool {
	for _, valid := range ValidStrategies() {
		if s == valid {
			return true
		}
	}
	return false
}
