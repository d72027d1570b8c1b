package factory

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/blockfall/internal/dependencies/mocks"
	"github.com/mcoot/blockfall/internal/services/auth"
	"github.com/mcoot/blockfall/internal/services/bot"
	"github.com/mcoot/blockfall/internal/services/game"
	"github.com/mcoot/blockfall/internal/storage"
	"github.com/mcoot/blockfall/internal/storage/memory"
	redisstorage "github.com/mcoot/blockfall/internal/storage/redis"
	"github.com/mcoot/blockfall/internal/testutil"
)

// TestStart is the mock clock's initial time
var TestStart = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// TestConfig returns settings that make sessions start at once and tokens
// cheap to hash
func TestConfig() Config {
	gameCfg := game.DefaultConfig()
	gameCfg.Countdown = 0
	return Config{
		Game: gameCfg,
		Auth: auth.Config{Cost: bcrypt.MinCost, CacheDuration: time.Minute},
		Bot:  bot.DefaultConfig(),
	}
}

// NewTestApp creates an App on memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return newTestApp(memory.New(), TestConfig())
}

// NewTestAppWithConfig is NewTestApp with custom component settings
func NewTestAppWithConfig(cfg Config) *TestApp {
	return newTestApp(memory.New(), cfg)
}

// NewRedisTestApp creates an App backed by an in-process miniredis server
// that lives as long as the test
func NewRedisTestApp(t *testing.T) *TestApp {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	store := redisstorage.NewWithClient(client, redisstorage.DefaultConfig())
	t.Cleanup(func() { _ = store.Close() })
	return newTestApp(store, TestConfig())
}

func newTestApp(store storage.Storage, cfg Config) *TestApp {
	mockClock := mocks.NewMockClock(TestStart)
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, cfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
