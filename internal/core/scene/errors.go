package scene

import "errors"

var (
	ErrDuplicateNode   = errors.New("node already exists")
	ErrNodeNotFound    = errors.New("node not found")
	ErrAlreadyAttached = errors.New("node already attached")
	ErrCycle           = errors.New("attach would create a cycle")
)
