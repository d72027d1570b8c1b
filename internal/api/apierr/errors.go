package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/blockfall/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidCommand     = "INVALID_COMMAND"
	CodeInvalidOptions     = "INVALID_OPTIONS"
	CodeInvalidStrategy    = "INVALID_STRATEGY"
	CodeInvalidBotStrategy = "INVALID_BOT_STRATEGY"
	CodeInvalidBoardState  = "INVALID_BOARD_STATE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeResultNotFound     = "RESULT_NOT_FOUND"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeNotInRoom          = "NOT_IN_ROOM"
	CodeRoomFull           = "ROOM_FULL"
	CodeRoomStarted        = "ROOM_STARTED"
	CodeNotEnoughPlayers   = "NOT_ENOUGH_PLAYERS"
	CodeSessionStopped     = "SESSION_STOPPED"
	CodeSessionRunning     = "SESSION_RUNNING"
	CodeCommandQueueFull   = "COMMAND_QUEUE_FULL"
	CodeBotAttached        = "BOT_ATTACHED"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrResultNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeResultNotFound, "Result not found"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrNotInRoom):
		return &httpError{http.StatusNotFound, APIError{CodeNotInRoom, "Player is not in this room"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrRoomStarted):
		return &httpError{http.StatusConflict, APIError{CodeRoomStarted, "Room has already started"}}
	case errors.Is(err, model.ErrNotEnoughSeat):
		return &httpError{http.StatusConflict, APIError{CodeNotEnoughPlayers, "Not enough players to start"}}
	case errors.Is(err, model.ErrSessionStopped):
		return &httpError{http.StatusConflict, APIError{CodeSessionStopped, "Game has finished"}}
	case errors.Is(err, model.ErrSessionRunning):
		return &httpError{http.StatusConflict, APIError{CodeSessionRunning, "Game is already running"}}
	case errors.Is(err, model.ErrCommandQueueFull):
		return &httpError{http.StatusTooManyRequests, APIError{CodeCommandQueueFull, "Too many pending commands"}}
	case errors.Is(err, model.ErrInvalidCommand):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCommand, err.Error()}}
	case errors.Is(err, model.ErrInvalidOptions):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidOptions, err.Error()}}
	case errors.Is(err, model.ErrInvalidStrategy):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidStrategy, err.Error()}}
	case errors.Is(err, model.ErrInvalidBotStrategy):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidBotStrategy, err.Error()}}
	case errors.Is(err, model.ErrBotAttached):
		return &httpError{http.StatusConflict, APIError{CodeBotAttached, "A bot is already playing this game"}}
	case errors.Is(err, model.ErrInvalidBoardState):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidBoardState, "Board state was rejected"}}

	// Map auth errors
	case errors.Is(err, model.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid control token"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Control token required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
