package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string `yaml:"url"`

	// Pool settings
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`

	// TTL settings, zero keeps the entry forever
	ResultTTL time.Duration `yaml:"result_ttl"`
	RoomTTL   time.Duration `yaml:"room_ttl"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		ResultTTL:    0,
		RoomTTL:      24 * time.Hour,
		TokenTTL:     24 * time.Hour,
	}
}
