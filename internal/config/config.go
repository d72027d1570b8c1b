// Package config loads server configuration from an optional YAML file with
// BLOCKFALL_* environment overrides on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/blockfall/internal/api"
	"github.com/mcoot/blockfall/internal/services/auth"
	"github.com/mcoot/blockfall/internal/services/bot"
	"github.com/mcoot/blockfall/internal/services/game"
	redisstorage "github.com/mcoot/blockfall/internal/storage/redis"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the complete server configuration
type Config struct {
	LogLevel string              `yaml:"log_level"`
	Storage  string              `yaml:"storage"`
	Server   api.ServerConfig    `yaml:"server"`
	Redis    redisstorage.Config `yaml:"redis"`
	Game     game.Config         `yaml:"game"`
	Auth     auth.Config         `yaml:"auth"`
	Bot      bot.Config          `yaml:"bot"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		LogLevel: "info",
		Storage:  StorageMemory,
		Server:   api.DefaultServerConfig(),
		Redis:    redisstorage.DefaultConfig(),
		Game:     game.DefaultConfig(),
		Auth:     auth.DefaultConfig(),
		Bot:      bot.DefaultConfig(),
	}
}

// Load reads path over the defaults, then applies environment overrides. An
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes YAML into cfg, rejecting unknown keys
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.LogLevel = getEnvOrDefault("BLOCKFALL_LOG_LEVEL", c.LogLevel)
	c.Storage = getEnvOrDefault("BLOCKFALL_STORAGE", c.Storage)
	c.Redis.URL = getEnvOrDefault("BLOCKFALL_REDIS_URL", c.Redis.URL)
	c.Server.Host = getEnvOrDefault("BLOCKFALL_HOST", c.Server.Host)

	if port := os.Getenv("BLOCKFALL_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid BLOCKFALL_PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}
	return nil
}

// Validate checks values that would otherwise fail late
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("invalid storage %q: must be %q or %q", c.Storage, StorageMemory, StorageRedis)
	}
	if c.Storage == StorageRedis && c.Redis.URL == "" {
		return fmt.Errorf("redis url required when storage is %q", StorageRedis)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Logger builds the JSON logger for the configured level
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
