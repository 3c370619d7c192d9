package server

import "errors"

var (
	ErrServerClosed       = errors.New("server is closed")
	ErrMaxSessionsReached = errors.New("maximum sessions reached")
	ErrUnknownMessage     = errors.New("unknown message type")
	ErrInvalidMessage     = errors.New("invalid message")
)
