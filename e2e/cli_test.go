package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/blockfall/internal/api"
	"github.com/mcoot/blockfall/internal/api/response"
	"github.com/mcoot/blockfall/internal/factory"
)

var (
	buildOnce   sync.Once
	binaryPath  string
	buildOutput []byte
	buildErr    error
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	serverURL string
	tokenFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Build the CLI binary once per test run
	buildOnce.Do(func() {
		projectRoot := findProjectRoot(t)
		binaryPath = filepath.Join(projectRoot, "bin", "blockfall-test")
		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/blockfall")
		cmd.Dir = projectRoot
		buildOutput, buildErr = cmd.CombinedOutput()
	})
	require.NoError(t, buildErr, "failed to build CLI: %s", string(buildOutput))

	return &cliRunner{
		serverURL: serverURL,
		tokenFile: filepath.Join(t.TempDir(), "tokens.yaml"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// runJSON runs a command that must succeed and decodes its output
func runJSON[T any](t *testing.T, r *cliRunner, args ...string) T {
	t.Helper()
	out, err := r.run(args...)
	require.NoError(t, err, out)
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer runs the full application on a free local port
func startTestServer(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := factory.TestConfig()
	cfg.Logger = logger
	app, err := factory.New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	server := api.NewServer(app.Handler(""), api.DefaultServerConfig(), logger)
	served := make(chan error, 1)
	go func() { served <- server.Serve(ctx, listener) }()

	t.Cleanup(func() {
		cancel()
		<-served
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = app.Shutdown(shutdownCtx)
	})

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")
	return serverURL
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

func TestE2E_Health(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	health := runJSON[response.Health](t, cli, "health")
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 0, health.Games)
}

func TestE2E_SoloGame(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	created := runJSON[response.CreateGameResponse](t, cli, "game", "create", "--mode", "lines40")
	id := created.Game.ID
	require.NotEmpty(t, id)
	assert.Equal(t, "lines40", created.Game.Mode)
	assert.Len(t, created.Game.Preview, 5)

	out, err := cli.run("game", "send", id, "left", "hard", "right", "hard", "cw", "hard")
	require.NoError(t, err, out)

	require.Eventually(t, func() bool {
		g := runJSON[response.Game](t, cli, "game", "get", id)
		return g.PieceNum >= 3
	}, 10*time.Second, 100*time.Millisecond)

	out, err = cli.run("game", "forfeit", id)
	require.NoError(t, err, out)

	require.Eventually(t, func() bool {
		out, err := cli.run("results", "get", id)
		return err == nil && strings.Contains(out, `"forfeited"`)
	}, 10*time.Second, 100*time.Millisecond)

	board := runJSON[response.ResultList](t, cli, "results", "list", "--mode", "lines40")
	require.Len(t, board.Results, 1)
	assert.Equal(t, id, board.Results[0].ID)
	assert.GreaterOrEqual(t, board.Results[0].Stats.PiecesUsed, 3)
}

func TestE2E_CommandsNeedToken(t *testing.T) {
	serverURL := startTestServer(t)
	owner := newCLIRunner(t, serverURL)
	stranger := newCLIRunner(t, serverURL)

	created := runJSON[response.CreateGameResponse](t, owner, "game", "create")

	out, err := stranger.run("game", "forfeit", created.Game.ID)
	require.Error(t, err)
	assert.Contains(t, out, "no control token")

	out, err = stranger.run("--token", "wrong", "game", "forfeit", created.Game.ID)
	require.Error(t, err)
	assert.Contains(t, out, "UNAUTHORIZED")

	out, err = stranger.run("--token", created.ControlToken, "game", "strategy", created.Game.ID, "random")
	require.NoError(t, err, out)
}

func TestE2E_UnknownGame(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	out, err := cli.run("game", "get", "NOSUCHGAME00")
	require.Error(t, err)
	assert.Contains(t, out, "GAME_NOT_FOUND")
}

func TestE2E_RoomMatch(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	room := runJSON[response.Room](t, cli, "room", "create")
	require.Len(t, room.Code, 6)
	assert.Equal(t, "waiting", room.State)

	alice := runJSON[response.RoomMember](t, cli, "room", "join", room.Code, "alice")
	bob := runJSON[response.RoomMember](t, cli, "room", "join", strings.ToLower(room.Code), "bob")
	assert.Equal(t, "p1", alice.PlayerID)
	assert.Equal(t, "p2", bob.PlayerID)

	started := runJSON[response.StartRoomResponse](t, cli, "room", "start", room.Code)
	require.Len(t, started.Room.Members, 2)
	aliceGame := started.Room.Members[0].GameID
	require.NotEmpty(t, aliceGame)

	out, err := cli.run("room", "strategy", room.Code, "p2", "elimination")
	require.NoError(t, err, out)

	// Tokens saved by "room start" let the CLI control each seat's game
	out, err = cli.run("game", "forfeit", aliceGame)
	require.NoError(t, err, out)

	require.Eventually(t, func() bool {
		r := runJSON[response.Room](t, cli, "room", "get", room.Code)
		return r.State == "finished" && r.Winner != nil && *r.Winner == "p2"
	}, 10*time.Second, 100*time.Millisecond)
}

func TestE2E_BotPlays(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	created := runJSON[response.CreateGameResponse](t, cli, "game", "create")
	id := created.Game.ID

	bot := runJSON[response.Bot](t, cli, "game", "bot", "attach", id, "--strategy", "greedy")
	assert.Equal(t, "greedy", bot.Strategy)

	require.Eventually(t, func() bool {
		g := runJSON[response.Game](t, cli, "game", "get", id)
		return g.PieceNum >= 5
	}, 15*time.Second, 100*time.Millisecond)

	out, err := cli.run("game", "delete", id)
	require.NoError(t, err, out)

	out, err = cli.run("game", "get", id)
	require.Error(t, err)
	assert.Contains(t, out, "GAME_NOT_FOUND")
}

func TestE2E_EventStream(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	created := runJSON[response.CreateGameResponse](t, cli, "game", "create")

	out, err := cli.run("events", "game", created.Game.ID, "--json", "--count", "1")
	require.NoError(t, err, out)

	var evt struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &evt), out)
	assert.Equal(t, "connected", evt.Event)

	out, err = cli.run("events", "room", "NOROOM", "--count", "1")
	require.Error(t, err)
	assert.Contains(t, out, "unexpected status: 404")
}
