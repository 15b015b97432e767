package models

import "errors"

// Domain errors. Internal components return these; only the dispatcher
// translates them into user-visible error events.
var (
	// NotFound
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found in room")
	ErrGameNotFound   = errors.New("no active game for room")

	// Conflict
	ErrDuplicateRoom   = errors.New("room code already in use")
	ErrDuplicatePlayer = errors.New("connection already joined this room")

	// InvalidState
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGamePaused         = errors.New("game is paused")
	ErrNumbersExhausted   = errors.New("all 75 numbers have been called")

	// Unauthorized
	ErrUnauthorized = errors.New("action requires the room host")

	// RateLimited
	ErrRateLimited = errors.New("rate limit exceeded, slow down")

	ErrInvalidPayload = errors.New("invalid or incomplete message payload")
)
