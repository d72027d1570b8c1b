package storage

import (
	"context"
	"sort"

	"github.com/mcoot/blockfall/internal/model"
)

// ResultStore persists finished sessions
type ResultStore interface {
	SaveResult(ctx context.Context, result *model.GameResult) error
	GetResult(ctx context.Context, id model.GameID) (*model.GameResult, error)

	// ListResults returns up to limit results of a mode, best first.
	// A limit of zero or less returns every result.
	ListResults(ctx context.Context, mode model.GameMode, limit int) ([]*model.GameResult, error)
	DeleteResult(ctx context.Context, id model.GameID) error
}

// RoomStore persists room summaries
type RoomStore interface {
	SaveRoom(ctx context.Context, room *model.RoomSummary) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.RoomSummary, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
}

// TokenStore persists hashed control tokens per session
type TokenStore interface {
	SaveControlToken(ctx context.Context, id model.GameID, hash string) error
	GetControlToken(ctx context.Context, id model.GameID) (string, error)
	DeleteControlToken(ctx context.Context, id model.GameID) error
}

// Storage defines the interface for data persistence
type Storage interface {
	ResultStore
	RoomStore
	TokenStore
}

// lostPenalty pushes unfinished line races behind every completed one
const lostPenalty = 1e12

// RankScore orders results within a mode, lower is better. Line races rank
// by time among won games; every other mode ranks by points.
func RankScore(r *model.GameResult) float64 {
	if r.Mode == model.ModeLines40 {
		score := float64(r.Duration.Milliseconds())
		if r.Outcome != model.OutcomeWon {
			score += lostPenalty
		}
		return score
	}
	return -float64(r.Points)
}

// SortResults orders results best first, breaking ties by finish time
func SortResults(results []*model.GameResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := RankScore(results[i]), RankScore(results[j])
		if a != b {
			return a < b
		}
		return results[i].FinishedAt.Before(results[j].FinishedAt)
	})
}
