package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/blockfall/internal/web/sse"
)

// eventsOptions controls how a stream is printed
type eventsOptions struct {
	jsonOutput bool
	html       bool
	count      int
}

func newEventsCmd() *cobra.Command {
	var opts eventsOptions

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream live events",
		Long: `Connect to an SSE endpoint and stream events in real-time.

Game streams carry board_state, queue, held_piece, points, time,
line_cleared, danger_level, garbage_sent, game_over and game_won events.
Room streams add player_joined, strategy_set and room_finished.

Press Ctrl+C to disconnect.`,
	}

	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output events as JSON lines")
	cmd.PersistentFlags().BoolVar(&opts.html, "html", false, "Include rendered HTML fragments")
	cmd.PersistentFlags().IntVar(&opts.count, "count", 0, "Disconnect after this many events (0 streams until interrupted)")

	cmd.AddCommand(&cobra.Command{
		Use:   "game <id>",
		Short: "Stream a game's events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(cmd.Context(), cmd.OutOrStdout(), "/api/v1/games/"+args[0]+"/events", "game "+args[0], opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "room <code>",
		Short: "Stream a room's events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			return streamEvents(cmd.Context(), cmd.OutOrStdout(), roomPath(code, "events"), "room "+code, opts)
		},
	})

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Raw   string          `json:"raw,omitempty"`
}

func streamEvents(ctx context.Context, w io.Writer, path, label string, opts eventsOptions) error {
	url := strings.TrimSuffix(cfg.ServerURL, "/") + path

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No timeout for SSE
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !opts.jsonOutput {
		_, _ = fmt.Fprintf(w, "Connected to %s\n", label)
	}

	// Parse SSE stream
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var currentEvent string
	var dataLines []string
	printed := 0

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			// End of event
			if currentEvent != "" && (opts.html || currentEvent != sse.BoardHTMLEvent) {
				printEvent(w, currentEvent, strings.Join(dataLines, "\n"), opts.jsonOutput)
				printed++
			}
			currentEvent = ""
			dataLines = nil
			if opts.count > 0 && printed >= opts.count {
				return nil
			}
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !opts.jsonOutput {
		_, _ = fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

func printEvent(w io.Writer, event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := SSEEvent{Time: now, Event: event}
		if json.Valid([]byte(data)) {
			evt.Data = json.RawMessage(data)
		} else {
			evt.Raw = data
		}
		jsonData, _ := json.Marshal(evt)
		_, _ = fmt.Fprintln(w, string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	// Truncate data if it's too long for display
	displayData := strings.ReplaceAll(data, "\n", " ")
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	_, _ = fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, event, displayData)
}
