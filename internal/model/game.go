package model

import (
	"fmt"
	"time"
)

// GameID uniquely identifies a game session
type GameID string

// GameMode selects the win condition of a session
type GameMode string

const (
	ModeEndless GameMode = "endless" // never won, played until top out
	ModeBlitz   GameMode = "blitz"   // won by surviving BlitzDuration
	ModeLines40 GameMode = "lines40" // won by clearing LinesTarget rows
)

// Mode parameters
const (
	BlitzDuration = 120 * time.Second
	LinesTarget   = 40
)

// ValidModes returns all valid game modes
func ValidModes() []GameMode {
	return []GameMode{ModeEndless, ModeBlitz, ModeLines40}
}

// IsValid reports whether the mode is known
func (m GameMode) IsValid() bool {
	for _, valid := range ValidModes() {
		if m == valid {
			return true
		}
	}
	return false
}

// GameOptions configures a new session
type GameOptions struct {
	Mode    GameMode `json:"mode" yaml:"mode"`
	Players int      `json:"players" yaml:"players"`
}

// DefaultGameOptions returns a single player endless game
func DefaultGameOptions() GameOptions {
	return GameOptions{
		Mode:    ModeEndless,
		Players: 1,
	}
}

// Validate checks the options
func (o GameOptions) Validate() error {
	if !o.Mode.IsValid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, o.Mode)
	}
	if o.Players < 1 {
		return fmt.Errorf("%w: players must be at least 1", ErrInvalidOptions)
	}
	return nil
}

// GameStatus is the lifecycle state of a session
type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusRunning  GameStatus = "running"
	StatusFinished GameStatus = "finished"
)

// GameOutcome describes how a session ended
type GameOutcome string

const (
	OutcomeWon       GameOutcome = "won"
	OutcomeLost      GameOutcome = "lost"
	OutcomeForfeited GameOutcome = "forfeited"
	OutcomeStopped   GameOutcome = "stopped" // retry or shutdown without a result
)

// SessionStats accumulates per-session counters
type SessionStats struct {
	PieceMoves       int `json:"piece_moves" yaml:"piece_moves"`
	Spins            int `json:"spins" yaml:"spins"`
	LinesCleared     int `json:"lines_cleared" yaml:"lines_cleared"`
	PiecesUsed       int `json:"pieces_used" yaml:"pieces_used"`
	Singles          int `json:"singles" yaml:"singles"`
	Doubles          int `json:"doubles" yaml:"doubles"`
	Triples          int `json:"triples" yaml:"triples"`
	Tetrises         int `json:"tetrises" yaml:"tetrises"`
	TSpins           int `json:"tspins" yaml:"tspins"`
	TSpinSingles     int `json:"tspin_singles" yaml:"tspin_singles"`
	TSpinDoubles     int `json:"tspin_doubles" yaml:"tspin_doubles"`
	TSpinTriples     int `json:"tspin_triples" yaml:"tspin_triples"`
	MiniTSpins       int `json:"mini_tspins" yaml:"mini_tspins"`
	MiniTSpinSingles int `json:"mini_tspin_singles" yaml:"mini_tspin_singles"`
}

// RecordClear counts a line clear pattern
func (s *SessionStats) RecordClear(p ClearLinePattern) {
	s.LinesCleared += p.Rows()
	switch p {
	case PatternSingle:
		s.Singles++
	case PatternDouble:
		s.Doubles++
	case PatternTriple:
		s.Triples++
	case PatternTetris:
		s.Tetrises++
	case PatternTSpin:
		s.TSpins++
	case PatternTSpinSingle:
		s.TSpinSingles++
	case PatternTSpinDouble:
		s.TSpinDoubles++
	case PatternTSpinTriple:
		s.TSpinTriples++
	case PatternMiniTSpin:
		s.MiniTSpins++
	case PatternMiniTSpinSingle:
		s.MiniTSpinSingles++
	}
}

// GameResult is the record handed to storage when a session ends
type GameResult struct {
	ID         GameID        `json:"id" yaml:"id"`
	Mode       GameMode      `json:"mode" yaml:"mode"`
	Outcome    GameOutcome   `json:"outcome" yaml:"outcome"`
	Points     int           `json:"points" yaml:"points"`
	Level      int           `json:"level" yaml:"level"`
	Lines      int           `json:"lines" yaml:"lines"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Stats      SessionStats  `json:"stats" yaml:"stats"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
}

// FormatElapsed renders a duration as HH:MM:SS
func FormatElapsed(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// GameView is a point-in-time, read-only view of a session
type GameView struct {
	ID      GameID        `json:"id" yaml:"id"`
	Mode    GameMode      `json:"mode" yaml:"mode"`
	Status  GameStatus    `json:"status" yaml:"status"`
	Outcome GameOutcome   `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	State   string        `json:"state" yaml:"state"` // rendered board, ghost and live piece included
	Board   BoardSnapshot `json:"board" yaml:"board"`
	Preview []Piece       `json:"preview" yaml:"preview"`
	Points  int           `json:"points" yaml:"points"`
	Level   int           `json:"level" yaml:"level"`
	Lines   int           `json:"lines" yaml:"lines"`
	Elapsed string        `json:"elapsed" yaml:"elapsed"`
}
