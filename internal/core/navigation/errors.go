package navigation

import "errors"

var (
	ErrCaptureDenied = errors.New("pointer capture denied")
	ErrModeMismatch  = errors.New("operation not available in this mode")
	ErrNotEngaged    = errors.New("pointer not captured")
)
