package response

import (
	"time"

	"github.com/mcoot/blockfall/internal/model"
)

// Game represents a session in API responses
type Game struct {
	ID       string `json:"id"`
	Mode     string `json:"mode"`
	Status   string `json:"status"`
	Outcome  string `json:"outcome,omitempty"`
	State    string `json:"state"`
	Preview  string `json:"preview"`
	Held     string `json:"held,omitempty"`
	PieceNum int    `json:"piece_num"`
	Strategy string `json:"strategy,omitempty"`
	Danger   string `json:"danger"`
	Points   int    `json:"points"`
	Level    int    `json:"level"`
	Lines    int    `json:"lines"`
	Elapsed  string `json:"elapsed"`
}

// GameFromView converts a model.GameView
func GameFromView(v model.GameView) Game {
	g := Game{
		ID:       string(v.ID),
		Mode:     string(v.Mode),
		Status:   string(v.Status),
		Outcome:  string(v.Outcome),
		State:    v.State,
		Preview:  pieceLetters(v.Preview),
		PieceNum: v.Board.PieceNum,
		Strategy: string(v.Board.Strategy),
		Danger:   string(v.Board.Danger),
		Points:   v.Points,
		Level:    v.Level,
		Lines:    v.Lines,
		Elapsed:  v.Elapsed,
	}
	if v.Board.Held != nil {
		g.Held = v.Board.Held.String()
	}
	return g
}

func pieceLetters(pieces []model.Piece) string {
	b := make([]byte, len(pieces))
	for i, p := range pieces {
		b[i] = p.Symbol()
	}
	return string(b)
}

// CreateGameResponse is returned once when a game is created. The control
// token is not retrievable afterwards.
type CreateGameResponse struct {
	Game         Game   `json:"game"`
	ControlToken string `json:"control_token"`
}

// GameList is the response for listing live games
type GameList struct {
	Games []Game `json:"games"`
}

// Result represents a finished game in API responses
type Result struct {
	ID         string             `json:"id"`
	Mode       string             `json:"mode"`
	Outcome    string             `json:"outcome"`
	Points     int                `json:"points"`
	Level      int                `json:"level"`
	Lines      int                `json:"lines"`
	Time       string             `json:"time"`
	Stats      model.SessionStats `json:"stats"`
	FinishedAt time.Time          `json:"finished_at"`
}

// ResultFromModel converts a model.GameResult
func ResultFromModel(r *model.GameResult) Result {
	return Result{
		ID:         string(r.ID),
		Mode:       string(r.Mode),
		Outcome:    string(r.Outcome),
		Points:     r.Points,
		Level:      r.Level,
		Lines:      r.Lines,
		Time:       model.FormatElapsed(r.Duration),
		Stats:      r.Stats,
		FinishedAt: r.FinishedAt,
	}
}

// ResultList is the response for a mode's leaderboard
type ResultList struct {
	Mode    string   `json:"mode"`
	Results []Result `json:"results"`
}

// ResultListFromModel converts ranked results
func ResultListFromModel(mode model.GameMode, results []*model.GameResult) ResultList {
	list := ResultList{Mode: string(mode), Results: make([]Result, 0, len(results))}
	for _, r := range results {
		list.Results = append(list.Results, ResultFromModel(r))
	}
	return list
}

// RoomMember represents a room seat
type RoomMember struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	GameID      string `json:"game_id,omitempty"`
	Strategy    string `json:"strategy"`
	Danger      string `json:"danger"`
	Alive       bool   `json:"alive"`
}

// RoomMemberFromModel converts model.RoomMember
func RoomMemberFromModel(m model.RoomMember) RoomMember {
	return RoomMember{
		PlayerID:    m.PlayerID.String(),
		DisplayName: m.DisplayName,
		GameID:      string(m.GameID),
		Strategy:    string(m.Strategy),
		Danger:      string(m.Danger),
		Alive:       m.Alive,
	}
}

// Room represents a room in API responses
type Room struct {
	Code      string       `json:"code"`
	State     string       `json:"state"`
	Mode      string       `json:"mode"`
	Members   []RoomMember `json:"members"`
	Winner    *string      `json:"winner"`
	CreatedAt time.Time    `json:"created_at"`
}

// RoomFromModel converts a model.RoomSummary
func RoomFromModel(r *model.RoomSummary) Room {
	members := make([]RoomMember, len(r.Members))
	for i, m := range r.Members {
		members[i] = RoomMemberFromModel(m)
	}

	var winner *string
	if r.Winner != nil {
		w := r.Winner.String()
		winner = &w
	}

	return Room{
		Code:      string(r.ID),
		State:     string(r.State),
		Mode:      string(r.Mode),
		Members:   members,
		Winner:    winner,
		CreatedAt: r.CreatedAt,
	}
}

// StartRoomResponse is returned when a room starts. It carries the control
// token of every seat's session, keyed by player id.
type StartRoomResponse struct {
	Room          Room              `json:"room"`
	ControlTokens map[string]string `json:"control_tokens"`
}

// Bot describes a bot playing a game
type Bot struct {
	GameID   string `json:"game_id"`
	Strategy string `json:"strategy"`
}

// Health is the response of the health endpoint
type Health struct {
	Status string `json:"status"`
	Games  int    `json:"games"`
}
