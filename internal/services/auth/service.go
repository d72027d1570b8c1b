package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/blockfall/internal/dependencies/clock"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/storage"
)

const tokenPrefix = "ctl_"

// ServiceInterface defines control token operations used by the API
type ServiceInterface interface {
	Issue(ctx context.Context, id model.GameID) (string, error)
	Verify(ctx context.Context, id model.GameID, token string) error
	Revoke(ctx context.Context, id model.GameID) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

// Config holds configuration for the auth service
type Config struct {
	// Cost is the bcrypt cost used to hash control tokens
	Cost int `yaml:"cost"`
	// CacheDuration is how long a verified token skips the bcrypt comparison
	CacheDuration time.Duration `yaml:"cache_duration"`
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Cost:          bcrypt.DefaultCost,
		CacheDuration: 5 * time.Minute,
	}
}

type verified struct {
	token     string
	expiresAt time.Time
}

// Service issues and checks the control tokens that guard game sessions.
// Only bcrypt hashes are stored; the plain token is returned once by Issue.
type Service struct {
	tokens storage.TokenStore
	clock  clock.Clock
	cfg    Config

	mu    sync.RWMutex
	cache map[model.GameID]verified
}

// New creates a new auth Service
func New(tokens storage.TokenStore, clock clock.Clock, cfg Config) *Service {
	if cfg.Cost == 0 {
		cfg.Cost = DefaultConfig().Cost
	}
	if cfg.CacheDuration == 0 {
		cfg.CacheDuration = DefaultConfig().CacheDuration
	}
	return &Service{
		tokens: tokens,
		clock:  clock,
		cfg:    cfg,
		cache:  make(map[model.GameID]verified),
	}
}

// Issue creates a new control token for a game, replacing any previous one
func (s *Service) Issue(ctx context.Context, id model.GameID) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), s.cfg.Cost)
	if err != nil {
		return "", err
	}
	if err := s.tokens.SaveControlToken(ctx, id, string(hash)); err != nil {
		return "", err
	}

	s.forget(id)
	return token, nil
}

// Verify checks a control token against the stored hash
func (s *Service) Verify(ctx context.Context, id model.GameID, token string) error {
	if token == "" {
		return model.ErrInvalidToken
	}

	s.mu.RLock()
	cached, ok := s.cache[id]
	s.mu.RUnlock()
	if ok && cached.token == token && s.clock.Now().Before(cached.expiresAt) {
		return nil
	}

	hash, err := s.tokens.GetControlToken(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return model.ErrInvalidToken
		}
		return err
	}

	s.mu.Lock()
	s.cache[id] = verified{token: token, expiresAt: s.clock.Now().Add(s.cfg.CacheDuration)}
	s.mu.Unlock()
	return nil
}

// Revoke deletes a game's control token
func (s *Service) Revoke(ctx context.Context, id model.GameID) error {
	s.forget(id)
	return s.tokens.DeleteControlToken(ctx, id)
}

// CleanExpired drops cached verifications that have expired (call periodically)
func (s *Service) CleanExpired() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, v := range s.cache {
		if !now.Before(v.expiresAt) {
			delete(s.cache, id)
		}
	}
}

func (s *Service) forget(id model.GameID) {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
}

// generateToken returns a random url-safe token
func generateToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return tokenPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}
