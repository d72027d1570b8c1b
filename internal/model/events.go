package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Session events
	EventCountdown    EventType = "countdown"
	EventBoardState   EventType = "board_state"
	EventHeldPiece    EventType = "held_piece"
	EventQueue        EventType = "queue"
	EventLineCleared  EventType = "line_cleared"
	EventPieceSettled EventType = "piece_settled"
	EventPoints       EventType = "points"
	EventTime         EventType = "time"
	EventGameOver     EventType = "game_over"
	EventGameWon      EventType = "game_won"

	// Events forwarded to the room coordinator
	EventDangerLevel  EventType = "danger_level"
	EventGarbageSent  EventType = "garbage_sent"
	EventQueueReply   EventType = "queue_reply"
	EventStrategySet  EventType = "strategy_set"
	EventPlayerJoined EventType = "player_joined"
	EventRoomFinished EventType = "room_finished"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	GameID    GameID    `json:"game_id,omitempty"`
	RoomID    RoomID    `json:"room_id,omitempty"`
	Payload   any       `json:"payload"` // Type-specific data
}

// CountdownPayload contains data for countdown events
type CountdownPayload struct {
	Remaining int `json:"remaining"`
}

// BoardStatePayload carries a board state string
type BoardStatePayload struct {
	State string `json:"state"`
}

// HeldPiecePayload contains the piece currently in the hold slot
type HeldPiecePayload struct {
	Piece Piece `json:"piece"`
}

// QueuePayload lists the upcoming pieces
type QueuePayload struct {
	Pieces []Piece `json:"pieces"`
}

// LineClearedPayload contains data for line cleared events
type LineClearedPayload struct {
	Pattern  ClearLinePattern `json:"pattern"`
	Progress string           `json:"progress"` // "X/Y", meaning depends on mode
}

// PieceSettledPayload names the piece that just locked
type PieceSettledPayload struct {
	Piece Piece `json:"piece"`
}

// PointsPayload carries the running score
type PointsPayload struct {
	Points int `json:"points"`
	Level  int `json:"level"`
}

// TimePayload carries the elapsed session time as HH:MM:SS
type TimePayload struct {
	Elapsed string `json:"elapsed"`
}

// GameOverPayload contains data for game over events
type GameOverPayload struct {
	Forfeited bool `json:"forfeited"`
}

// GameWonPayload contains data for game won events
type GameWonPayload struct {
	Points int `json:"points"`
	Lines  int `json:"lines"`
}

// DangerLevelPayload reports a player's stack height after a lock
type DangerLevelPayload struct {
	Level DangerLevel `json:"level"`
}

// GarbageSentPayload reports rows that survived garbage cancellation
type GarbageSentPayload struct {
	Rows int `json:"rows"`
}

// StrategySetPayload reports a targeting strategy change
type StrategySetPayload struct {
	Strategy Strategy `json:"strategy"`
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	PlayerID    PlayerID `json:"player_id"`
	DisplayName string   `json:"display_name"`
}

// RoomFinishedPayload names the last player standing
type RoomFinishedPayload struct {
	Winner PlayerID `json:"winner"`
}
