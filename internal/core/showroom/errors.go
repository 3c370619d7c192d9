package showroom

import "errors"

var (
	ErrClosed         = errors.New("showroom: closed")
	ErrAlreadyStarted = errors.New("showroom: already started")
	ErrWrongDevice    = errors.New("showroom: input not available on this device")
	ErrEmptyCart      = errors.New("showroom: cart is empty")
)
