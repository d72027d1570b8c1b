package request

import "github.com/mcoot/blockfall/internal/model"

// CreateGameRequest is the request body for creating a solo game
type CreateGameRequest struct {
	Mode model.GameMode `json:"mode,omitempty"`
	// Board optionally restores a saved board before the game starts
	Board *model.BoardSnapshot `json:"board,omitempty"`
}

// CommandRequest is the request body for submitting player commands. The
// commands are queued in order, and a batch that does not fit is rejected
// whole.
type CommandRequest struct {
	Commands []model.Command `json:"commands"`
}

// StrategyRequest is the request body for changing a garbage strategy
type StrategyRequest struct {
	Strategy model.Strategy `json:"strategy"`
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Mode model.GameMode `json:"mode,omitempty"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	DisplayName string `json:"display_name"`
}

// AttachBotRequest is the request body for handing a game to a bot
type AttachBotRequest struct {
	Strategy string `json:"strategy"`
}
