package redis

import (
	"fmt"

	"github.com/mcoot/blockfall/internal/model"
)

// Key prefix for all blockfall data
const keyPrefix = "blockfall"

// resultKey returns the Redis key for a GameResult
func resultKey(id model.GameID) string {
	return fmt.Sprintf("%s:result:%s", keyPrefix, id)
}

// resultsByModeIndexKey returns the Redis key for the sorted set ranking a
// mode's results
func resultsByModeIndexKey(mode model.GameMode) string {
	return fmt.Sprintf("%s:idx:results:%s", keyPrefix, mode)
}

// roomKey returns the Redis key for a RoomSummary
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// tokenKey returns the Redis key for a session's control token hash
func tokenKey(id model.GameID) string {
	return fmt.Sprintf("%s:token:%s", keyPrefix, id)
}
