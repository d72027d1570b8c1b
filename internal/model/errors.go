package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrGameNotFound       = errors.New("game not found")
	ErrSessionStopped     = errors.New("session is stopped")
	ErrSessionRunning     = errors.New("session is already running")
	ErrCommandQueueFull   = errors.New("command queue is full")
	ErrInvalidCommand     = errors.New("invalid command")
	ErrInvalidOptions     = errors.New("invalid game options")
	ErrInvalidBoardState  = errors.New("invalid board state")
	ErrInvalidStrategy    = errors.New("invalid strategy")
	ErrInvalidBotStrategy = errors.New("invalid bot strategy")
	ErrBotAttached        = errors.New("bot already attached")

	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrRoomStarted   = errors.New("room has already started")
	ErrNotInRoom     = errors.New("player is not in room")
	ErrNotEnoughSeat = errors.New("not enough players to start")

	// Auth errors
	ErrInvalidToken = errors.New("invalid control token")

	// Storage errors
	ErrResultNotFound = errors.New("result not found")
)
