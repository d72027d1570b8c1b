// Package scoring turns line clear patterns into points, weighted lines and
// level progression.
package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/mcoot/blockfall/internal/model"
)

// LinesPerLevel is the weighted line quota per level, multiplied by the level
const LinesPerLevel = 5

// ServiceInterface defines the scoring operations used by a session
type ServiceInterface interface {
	Record(pattern model.ClearLinePattern) Award
	Points() int
	Level() int
	Weighted() int
	Lines() int
	Progress(mode model.GameMode, rows int) string
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

// Award is the outcome of recording a single lock
type Award struct {
	Pattern    model.ClearLinePattern
	Points     int
	Weighted   int  // weighted lines earned, available to cancel or send garbage
	BackToBack bool // the pattern repeated the previous lock's pattern
	LevelUp    bool
}

// Service tracks the score of one session. It is not safe for concurrent
// use.
type Service struct {
	points   int
	level    int
	weighted int // weighted lines toward the current level's quota
	lines    int // rows actually removed
	previous model.ClearLinePattern
}

// New creates a tracker at level 1
func New() *Service {
	return &Service{
		level:    1,
		previous: model.PatternNone,
	}
}

// Record scores the pattern of a lock. Every lock must be recorded, including
// those that clear nothing, so that back-to-back detection sees the break.
func (s *Service) Record(pattern model.ClearLinePattern) Award {
	defer func() { s.previous = pattern }()

	a, ok := awards[pattern]
	if !ok {
		return Award{Pattern: pattern}
	}

	result := Award{
		Pattern:    pattern,
		Points:     a.points * s.level,
		Weighted:   a.lines,
		BackToBack: pattern == s.previous,
	}
	if result.BackToBack {
		result.Points += a.bonusPoints * s.level
		result.Weighted += a.bonusLines
	}

	s.points += result.Points
	s.lines += pattern.Rows()
	s.weighted += result.Weighted
	if s.weighted >= LevelQuota(s.level) {
		s.level++
		s.weighted = 0
		result.LevelUp = true
	}
	return result
}

// Points returns the running score
func (s *Service) Points() int {
	return s.points
}

// Level returns the current level, starting at 1
func (s *Service) Level() int {
	return s.level
}

// Weighted returns the weighted lines counted toward the current level
func (s *Service) Weighted() int {
	return s.weighted
}

// Lines returns the rows actually removed
func (s *Service) Lines() int {
	return s.lines
}

// Progress renders the line clear progress shown to the player. Line races
// count the rows on the board, other modes the weighted level quota.
func (s *Service) Progress(mode model.GameMode, rows int) string {
	if mode == model.ModeLines40 {
		return fmt.Sprintf("%d/%d", rows, model.LinesTarget)
	}
	return fmt.Sprintf("%d/%d", s.weighted, LevelQuota(s.level))
}

// LevelQuota returns the weighted lines needed to leave a level
func LevelQuota(level int) int {
	return level * LinesPerLevel
}

// GravityInterval returns the time between gravity ticks at a level:
// (0.8 - 0.007*(level-1))^(level-1) seconds, rounded to the millisecond
func GravityInterval(level int) time.Duration {
	if level < 1 {
		level = 1
	}
	n := float64(level - 1)
	ms := math.Round(math.Pow(0.8-0.007*n, n) * 1000)
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}
