package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/blockfall/internal/api/response"
	"github.com/mcoot/blockfall/internal/model"
)

// visibleBufferRows is how many buffer rows are drawn above the field
const visibleBufferRows = 2

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	switch o.format {
	case "json":
		o.printJSON(data)
	case "yaml":
		o.printYAML(data)
	default:
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	switch o.format {
	case "json":
		o.printJSON(map[string]string{"message": msg})
	case "yaml":
		o.printYAML(map[string]string{"message": msg})
	default:
		o.printf("%s\n", msg)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

// printYAML goes through JSON first so field names match the API
func (o *Output) printYAML(data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		o.printf("error: %s\n", err)
		return
	}
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		o.printf("error: %s\n", err)
		return
	}
	enc := yaml.NewEncoder(o.w)
	enc.SetIndent(2)
	_ = enc.Encode(generic)
	_ = enc.Close()
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Game:
		o.printGame(v)
	case response.CreateGameResponse:
		o.printGame(v.Game)
		o.printf("Control Token: %s\n", v.ControlToken)
	case response.GameList:
		o.printGameList(v)
	case response.Result:
		o.printResult(v)
	case response.ResultList:
		o.printResultList(v)
	case response.Room:
		o.printRoom(v)
	case response.StartRoomResponse:
		o.printRoom(v.Room)
	case response.RoomMember:
		o.printf("Joined as %s (%s)\n", v.DisplayName, v.PlayerID)
	case response.Bot:
		o.printf("Bot %s playing %s\n", v.Strategy, v.GameID)
	case response.Health:
		o.printf("Status: %s\n", v.Status)
		o.printf("Games: %d\n", v.Games)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printGame(g response.Game) {
	o.printf("Game: %s (%s)\n", g.ID, g.Mode)
	if g.Outcome != "" {
		o.printf("Status: %s (%s)\n", g.Status, g.Outcome)
	} else {
		o.printf("Status: %s\n", g.Status)
	}
	o.printf("Points: %d  Level: %d  Lines: %d  Time: %s\n", g.Points, g.Level, g.Lines, g.Elapsed)
	o.printf("Next: %s\n", g.Preview)
	if g.Held != "" {
		o.printf("Held: %s\n", g.Held)
	}
	o.printf("Pieces: %d  Danger: %s\n", g.PieceNum, g.Danger)
	if g.Strategy != "" {
		o.printf("Strategy: %s\n", g.Strategy)
	}
	o.printf("\n")
	for _, row := range boardRows(g.State) {
		o.printf("|%s|\n", row)
	}
	o.printf("+%s+\n", strings.Repeat("-", model.BoardWidth))
}

// boardRows renders the visible part of a board state string, one string
// per row with empty cells drawn as dots
func boardRows(state string) []string {
	if len(state) != model.SnapshotLength {
		state = strings.Repeat(string(model.EmptySymbol), model.SnapshotLength)
	}
	rows := make([]string, 0, model.BoardHeight+visibleBufferRows)
	for y := -visibleBufferRows; y < model.BoardHeight; y++ {
		start := model.Point{X: 0, Y: y}.SnapshotIndex()
		row := state[start : start+model.BoardWidth]
		rows = append(rows, strings.ReplaceAll(row, string(model.EmptySymbol), "."))
	}
	return rows
}

func (o *Output) printGameList(l response.GameList) {
	if len(l.Games) == 0 {
		o.printf("No games\n")
		return
	}
	for _, g := range l.Games {
		o.printf("%-14s %-8s %-8s %6d pts  %s\n", g.ID, g.Mode, g.Status, g.Points, g.Elapsed)
	}
}

func (o *Output) printResult(r response.Result) {
	o.printf("Result: %s (%s)\n", r.ID, r.Mode)
	o.printf("Outcome: %s\n", r.Outcome)
	o.printf("Points: %d  Level: %d  Lines: %d  Time: %s\n", r.Points, r.Level, r.Lines, r.Time)
	o.printf("Pieces: %d  Tetrises: %d  T-Spins: %d\n", r.Stats.PiecesUsed, r.Stats.Tetrises, r.Stats.TSpins)
}

func (o *Output) printResultList(l response.ResultList) {
	o.printf("Leaderboard: %s\n", l.Mode)
	if len(l.Results) == 0 {
		o.printf("  No results\n")
		return
	}
	for i, r := range l.Results {
		o.printf("%3d. %-14s %-10s %6d pts  %s\n", i+1, r.ID, r.Outcome, r.Points, r.Time)
	}
}

func (o *Output) printRoom(r response.Room) {
	o.printf("Room: %s (%s)\n", r.Code, r.Mode)
	o.printf("State: %s\n", r.State)
	o.printf("Members (%d):\n", len(r.Members))
	for _, m := range r.Members {
		line := fmt.Sprintf("  - %s (%s) strategy=%s", m.DisplayName, m.PlayerID, m.Strategy)
		if m.GameID != "" {
			status := "out"
			if m.Alive {
				status = "alive"
			}
			line += fmt.Sprintf(" game=%s danger=%s %s", m.GameID, m.Danger, status)
		}
		o.printf("%s\n", line)
	}
	if r.Winner != nil {
		o.printf("Winner: %s\n", *r.Winner)
	}
}
