package input

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultDeadZone is the rotation stick magnitude below which no turn is read.
const DefaultDeadZone = 0.15

var _ Source = (*Touch)(nil)

// Touch reads two virtual sticks. The movement stick maps straight onto the
// intent; the rotation stick is quantized into four 90° sectors.
type Touch struct {
	move     mgl64.Vec2
	rotate   Rotation
	deadZone float64
}

func NewTouch(deadZone float64) *Touch {
	return &Touch{deadZone: deadZone}
}

func (t *Touch) Class() DeviceClass { return DeviceTouch }

// SetMoveVector takes the movement stick vector, x to the right and y up
// (forward). Components are clamped to [-1, 1].
func (t *Touch) SetMoveVector(x, y float64) {
	t.move = mgl64.Vec2{mgl64.Clamp(x, -1, 1), mgl64.Clamp(y, -1, 1)}
}

// ReleaseMove is the movement stick's end event.
func (t *Touch) ReleaseMove() {
	t.move = mgl64.Vec2{}
}

// SetRotateVector takes the rotation stick vector and keeps its sector. A
// centred stick has no angle and never rotates, whatever the dead zone.
func (t *Touch) SetRotateVector(x, y float64) Rotation {
	if l := math.Hypot(x, y); l == 0 || l < t.deadZone {
		t.rotate = RotateNone
		return t.rotate
	}
	t.rotate = QuantizeAngle(mgl64.RadToDeg(math.Atan2(y, x)))
	return t.rotate
}

// ReleaseRotate is the rotation stick's end event.
func (t *Touch) ReleaseRotate() {
	t.rotate = RotateNone
}

func (t *Touch) Intent() Intent {
	return Intent{Lateral: t.move.X(), Forward: t.move.Y(), Rotation: t.rotate}
}

func (t *Touch) Detach() {
	t.move = mgl64.Vec2{}
	t.rotate = RotateNone
}

// QuantizeAngle maps an angle in degrees (0 = right, counter-clockwise) to a
// sector. Sector starts are inclusive: [45,135) up, [135,225) left,
// [225,315) down, everything else right.
func QuantizeAngle(deg float64) Rotation {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	switch {
	case deg >= 45 && deg < 135:
		return RotateUp
	case deg >= 135 && deg < 225:
		return RotateLeft
	case deg >= 225 && deg < 315:
		return RotateDown
	default:
		return RotateRight
	}
}
