package game

import "time"

// Config holds the timing parameters of a session
type Config struct {
	// Countdown is the number of one second steps before the first piece,
	// zero starts immediately
	Countdown int `yaml:"countdown"`

	// LockDelay is how long a resting piece may stall before it is forced
	// down
	LockDelay time.Duration `yaml:"lock_delay"`

	// MoveBudget is the number of moves or rotations allowed while resting
	MoveBudget int `yaml:"move_budget"`

	// FrameInterval bounds the loop frequency
	FrameInterval time.Duration `yaml:"frame_interval"`

	// CommandBuffer is the capacity of the player command channel
	CommandBuffer int `yaml:"command_buffer"`

	// Retention is how long a finished session stays registered so its
	// final view can still be read
	Retention time.Duration `yaml:"retention"`
}

// DefaultConfig returns the standard timings
func DefaultConfig() Config {
	return Config{
		Countdown:     3,
		LockDelay:     500 * time.Millisecond,
		MoveBudget:    15,
		FrameInterval: 8333 * time.Microsecond,
		CommandBuffer: 32,
		Retention:     10 * time.Minute,
	}
}

// withDefaults fills zero fields from DefaultConfig. Countdown is left as is
// since zero is meaningful.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LockDelay <= 0 {
		c.LockDelay = d.LockDelay
	}
	if c.MoveBudget <= 0 {
		c.MoveBudget = d.MoveBudget
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = d.FrameInterval
	}
	if c.CommandBuffer <= 0 {
		c.CommandBuffer = d.CommandBuffer
	}
	if c.Retention <= 0 {
		c.Retention = d.Retention
	}
	if c.Countdown < 0 {
		c.Countdown = 0
	}
	return c
}
