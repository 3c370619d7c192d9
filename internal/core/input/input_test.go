package input

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, DeviceTouch, Classify("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"))
	assert.Equal(t, DeviceTouch, Classify("Mozilla/5.0 (Linux; Android 14; Pixel 8)"))
	assert.Equal(t, DeviceDesktop, Classify("Mozilla/5.0 (X11; Linux x86_64) Firefox/130.0"))
	assert.Equal(t, DeviceDesktop, Classify(""))
}

func TestParseDeviceClass(t *testing.T) {
	c, ok := ParseDeviceClass("Mobile")
	assert.True(t, ok)
	assert.Equal(t, DeviceTouch, c)

	_, ok = ParseDeviceClass("console")
	assert.False(t, ok)
}

func TestNewSelectsVariant(t *testing.T) {
	_, ok := New(DeviceDesktop).(*Desktop)
	assert.True(t, ok)
	_, ok = New(DeviceTouch).(*Touch)
	assert.True(t, ok)
}

func TestDesktopAliasesShareLatch(t *testing.T) {
	d := NewDesktop(false)

	assert.True(t, d.HandleKey("KeyW", true))
	assert.Equal(t, Intent{Forward: 1}, d.Intent())

	assert.True(t, d.HandleKey("ArrowUp", false))
	assert.True(t, d.Intent().IsZero())

	assert.False(t, d.HandleKey("Space", true))
}

func TestDesktopOpposingKeysCancel(t *testing.T) {
	d := NewDesktop(false)
	d.HandleKey("KeyA", true)
	d.HandleKey("ArrowRight", true)
	assert.Equal(t, 0.0, d.Intent().Lateral)
	assert.True(t, d.Held(DirLeft))
	assert.True(t, d.Held(DirRight))
}

func TestDesktopDiagonalIsNotNormalized(t *testing.T) {
	d := NewDesktop(false)
	d.HandleKey("KeyW", true)
	d.HandleKey("KeyA", true)

	i := d.Intent()
	assert.Equal(t, 1.0, i.Forward)
	assert.Equal(t, -1.0, i.Lateral)
	assert.InDelta(t, math.Sqrt2, math.Hypot(i.Lateral, i.Forward), 1e-12)
}

func TestDesktopDiagonalNormalizedWhenEnabled(t *testing.T) {
	d := New(DeviceDesktop, WithNormalizedDiagonal(true)).(*Desktop)
	d.HandleKey("KeyW", true)
	d.HandleKey("KeyD", true)

	i := d.Intent()
	assert.InDelta(t, 1, math.Hypot(i.Lateral, i.Forward), 1e-12)
}

func TestDesktopDetachClearsLatches(t *testing.T) {
	d := NewDesktop(false)
	d.HandleKey("KeyS", true)
	d.Detach()
	assert.True(t, d.Intent().IsZero())
}

func TestQuantizeAngleBoundaries(t *testing.T) {
	cases := []struct {
		deg  float64
		want Rotation
	}{
		{0, RotateRight},
		{44.9, RotateRight},
		{45, RotateUp},
		{90, RotateUp},
		{134.9, RotateUp},
		{135, RotateLeft},
		{224.9, RotateLeft},
		{225, RotateDown},
		{314.9, RotateDown},
		{315, RotateRight},
		{-90, RotateDown},
		{450, RotateUp},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, QuantizeAngle(tc.deg), "angle %v", tc.deg)
	}
}

func TestTouchRotateVector(t *testing.T) {
	tc := NewTouch(DefaultDeadZone)

	assert.Equal(t, RotateUp, tc.SetRotateVector(0, 1))
	assert.Equal(t, RotateLeft, tc.SetRotateVector(-1, 0.2))
	assert.Equal(t, RotateDown, tc.SetRotateVector(0.1, -1))
	assert.Equal(t, RotateRight, tc.SetRotateVector(1, -0.3))
	assert.Equal(t, RotateRight, tc.Intent().Rotation)

	assert.Equal(t, RotateNone, tc.SetRotateVector(0.05, 0.05))

	tc.SetRotateVector(0, 1)
	tc.ReleaseRotate()
	assert.Equal(t, RotateNone, tc.Intent().Rotation)
}

func TestTouchCentredStickWithoutDeadZone(t *testing.T) {
	tc := NewTouch(0)

	assert.Equal(t, RotateNone, tc.SetRotateVector(0, 0))
	assert.Equal(t, RotateNone, tc.Intent().Rotation)

	assert.Equal(t, RotateRight, tc.SetRotateVector(0.01, 0))
	assert.Equal(t, RotateNone, tc.SetRotateVector(0, 0), "recentring stops rotation")
}

func TestTouchMoveVectorIsClamped(t *testing.T) {
	tc := NewTouch(DefaultDeadZone)
	tc.SetMoveVector(2, -0.5)

	i := tc.Intent()
	require.Equal(t, 1.0, i.Lateral)
	require.Equal(t, -0.5, i.Forward)

	tc.ReleaseMove()
	assert.True(t, tc.Intent().IsZero())

	tc.SetMoveVector(0.3, 0.3)
	tc.SetRotateVector(0, 1)
	tc.Detach()
	assert.True(t, tc.Intent().IsZero())
}
