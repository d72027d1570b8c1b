package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("BLOCKFALL_SERVER", "http://localhost:8080"),
		Token:     os.Getenv("BLOCKFALL_TOKEN"),
		TokenFile: getEnvOrDefault("BLOCKFALL_TOKEN_FILE", defaultTokenFile()),
		Output:    "text",
		Verbose:   false,
	}
}

// Validate checks flag values
func (c *Config) Validate() error {
	switch c.Output {
	case "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("invalid output format %q: must be text, json or yaml", c.Output)
	}
}

// tokenFile is the on-disk layout of saved control tokens, keyed by game id
type tokenFile struct {
	Games map[string]string `yaml:"games"`
}

func (c *Config) readTokens() (tokenFile, error) {
	tf := tokenFile{Games: map[string]string{}}
	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tf, nil // No token file is fine
		}
		return tf, err
	}
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return tf, fmt.Errorf("parsing token file %s: %w", c.TokenFile, err)
	}
	if tf.Games == nil {
		tf.Games = map[string]string{}
	}
	return tf, nil
}

// TokenFor returns the control token for a game. The --token flag wins
// over the token file.
func (c *Config) TokenFor(gameID string) (string, error) {
	if c.Token != "" {
		return c.Token, nil
	}
	tf, err := c.readTokens()
	if err != nil {
		return "", err
	}
	return tf.Games[gameID], nil
}

// SaveToken records a game's control token in the token file
func (c *Config) SaveToken(gameID, token string) error {
	tf, err := c.readTokens()
	if err != nil {
		return err
	}
	tf.Games[gameID] = token

	data, err := yaml.Marshal(tf)
	if err != nil {
		return err
	}
	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, data, 0600)
}

// ForgetToken removes a game's control token from the token file
func (c *Config) ForgetToken(gameID string) error {
	tf, err := c.readTokens()
	if err != nil {
		return err
	}
	if _, ok := tf.Games[gameID]; !ok {
		return nil
	}
	delete(tf.Games, gameID)

	data, err := yaml.Marshal(tf)
	if err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, data, 0600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".blockfall/tokens.yaml"
	}
	return filepath.Join(home, ".blockfall", "tokens.yaml")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
