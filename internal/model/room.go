package model

import "time"

// RoomID identifies a multiplayer room
type RoomID string

// RoomState represents the current state of a room
type RoomState string

const (
	RoomStateWaiting  RoomState = "waiting"  // Members joining
	RoomStatePlaying  RoomState = "playing"  // Sessions running
	RoomStateFinished RoomState = "finished" // One player left standing
)

// RoomMember is a seat in a room together with the session it controls
type RoomMember struct {
	PlayerID    PlayerID
	DisplayName string
	GameID      GameID
	Strategy    Strategy
	Danger      DangerLevel
	Alive       bool
	JoinedAt    time.Time
}

// RoomSummary is a read-only view of a room
type RoomSummary struct {
	ID        RoomID
	State     RoomState
	Mode      GameMode
	Members   []RoomMember
	Winner    *PlayerID
	CreatedAt time.Time
}
