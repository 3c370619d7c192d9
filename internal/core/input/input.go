// Package input turns raw device events into a per-tick movement intent.
//
// A Source is chosen once per session from the device class and never
// swapped: Desktop latches directional keys, Touch reads two virtual
// joysticks (movement and rotation).
package input

import (
	"math"
	"strings"
)

// DeviceClass is decided once at session start.
type DeviceClass uint8

const (
	DeviceDesktop DeviceClass = iota
	DeviceTouch
)

func (c DeviceClass) String() string {
	if c == DeviceTouch {
		return "touch"
	}
	return "desktop"
}

// ParseDeviceClass accepts "desktop" or "touch" (also "mobile").
func ParseDeviceClass(s string) (DeviceClass, bool) {
	switch strings.ToLower(s) {
	case "desktop":
		return DeviceDesktop, true
	case "touch", "mobile":
		return DeviceTouch, true
	}
	return DeviceDesktop, false
}

var touchAgents = []string{
	"android", "webos", "iphone", "ipad", "ipod", "blackberry", "iemobile", "opera mini",
}

// Classify inspects a user-agent string.
func Classify(userAgent string) DeviceClass {
	ua := strings.ToLower(userAgent)
	for _, marker := range touchAgents {
		if strings.Contains(ua, marker) {
			return DeviceTouch
		}
	}
	return DeviceDesktop
}

// Rotation is the discrete turn request of the rotation joystick.
type Rotation uint8

const (
	RotateNone Rotation = iota
	RotateUp
	RotateLeft
	RotateDown
	RotateRight
)

func (r Rotation) String() string {
	switch r {
	case RotateUp:
		return "up"
	case RotateLeft:
		return "left"
	case RotateDown:
		return "down"
	case RotateRight:
		return "right"
	default:
		return "none"
	}
}

// Intent is the desired motion for one tick. Lateral is positive to the
// right, Forward positive ahead.
type Intent struct {
	Lateral  float64
	Forward  float64
	Rotation Rotation
}

// IsZero reports whether the intent requests nothing.
func (i Intent) IsZero() bool {
	return i.Lateral == 0 && i.Forward == 0 && i.Rotation == RotateNone
}

// Normalized scales the movement part to unit length when it exceeds one.
func (i Intent) Normalized() Intent {
	l := math.Hypot(i.Lateral, i.Forward)
	if l <= 1 {
		return i
	}
	i.Lateral /= l
	i.Forward /= l
	return i
}

// Source produces the intent for the current tick.
type Source interface {
	Class() DeviceClass
	Intent() Intent
	// Detach drops all latched input, as when the listeners go away.
	Detach()
}

// New returns the Source variant for class.
func New(class DeviceClass, opts ...Option) Source {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if class == DeviceTouch {
		return NewTouch(o.deadZone)
	}
	return NewDesktop(o.normalizeDiagonal)
}

type options struct {
	normalizeDiagonal bool
	deadZone          float64
}

func defaultOptions() options {
	return options{deadZone: DefaultDeadZone}
}

type Option func(*options)

// WithNormalizedDiagonal makes two-key diagonals as fast as a single key.
func WithNormalizedDiagonal(on bool) Option {
	return func(o *options) { o.normalizeDiagonal = on }
}

// WithDeadZone sets the rotation joystick dead zone.
func WithDeadZone(v float64) Option {
	return func(o *options) { o.deadZone = v }
}
