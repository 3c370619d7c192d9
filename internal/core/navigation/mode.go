package navigation

import "strings"

// Mode is fixed when a Session is built.
type Mode uint8

const (
	// ModeLocked is first-person look under pointer capture.
	ModeLocked Mode = iota
	// ModeFreeOrbit circles a target point that can be panned.
	ModeFreeOrbit
	// ModeTouchNav walks with one joystick and turns in steps with another.
	ModeTouchNav
)

func (m Mode) String() string {
	switch m {
	case ModeFreeOrbit:
		return "orbit"
	case ModeTouchNav:
		return "touch"
	default:
		return "locked"
	}
}

// ParseDesktopMode reads the configured desktop mode: "locked" or "orbit".
func ParseDesktopMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "", "locked", "pointerlock":
		return ModeLocked, true
	case "orbit", "free-orbit":
		return ModeFreeOrbit, true
	}
	return ModeLocked, false
}

// Reason says why the capture was released.
type Reason string

const (
	ReasonUser            Reason = "user"
	ReasonCaptureDenied   Reason = "capture_denied"
	ReasonCaptureLost     Reason = "capture_lost"
	ReasonEntityActivated Reason = "entity_activated"
	ReasonClosed          Reason = "closed"
)

type SignalKind uint8

const (
	SignalLocked SignalKind = iota + 1
	SignalUnlocked
)

func (k SignalKind) String() string {
	if k == SignalLocked {
		return "locked"
	}
	return "unlocked"
}

// Signal is emitted on every engaged/disengaged transition. Denied capture
// produces the same unlocked signal as an explicit exit.
type Signal struct {
	Kind   SignalKind
	Reason Reason
}

type SignalFunc func(Signal)

// Capture is the external pointer-capture mechanism.
type Capture interface {
	// Request asks for exclusive pointer capture; a non-nil error is a denial.
	Request() error
	// Release gives capture back. It must be safe to call when not held.
	Release()
}

// GrantedCapture is used when the client acquires capture on its own and
// only reports the outcome.
type GrantedCapture struct{}

func (GrantedCapture) Request() error { return nil }
func (GrantedCapture) Release()       {}
