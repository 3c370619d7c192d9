package boundary

import "errors"

var ErrInvalidExtent = errors.New("invalid boundary extent")
