package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Forward is the camera's look direction before rotation (-Z, as in GL).
var (
	Forward = mgl64.Vec3{0, 0, -1}
	Up      = mgl64.Vec3{0, 1, 0}
	Right   = mgl64.Vec3{1, 0, 0}
)

// Lens holds the perspective parameters. FovY is in degrees.
type Lens struct {
	FovY   float64 `yaml:"fov"`
	Aspect float64 `yaml:"aspect"`
	Near   float64 `yaml:"near"`
	Far    float64 `yaml:"far"`
}

// DefaultLens matches the corridor camera: 75°, 16:9, 0.1..100.
func DefaultLens() Lens {
	return Lens{FovY: 75, Aspect: 16.0 / 9.0, Near: 0.1, Far: 100}
}

// Camera is a read-only snapshot used to build picking rays.
type Camera struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Lens        Lens
}

// View returns the world-to-camera matrix.
func (c Camera) View() mgl64.Mat4 {
	forward := c.Orientation.Rotate(Forward)
	up := c.Orientation.Rotate(Up)
	return mgl64.LookAtV(c.Position, c.Position.Add(forward), up)
}

// Projection returns the perspective matrix.
func (c Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.Lens.FovY), c.Lens.Aspect, c.Lens.Near, c.Lens.Far)
}

// Ray casts from the eye through ndc, where (-1,-1) is bottom-left and (0,0)
// the screen center.
func (c Camera) Ray(ndc mgl64.Vec2) Ray {
	inv := c.Projection().Mul4(c.View()).Inv()
	far := inv.Mul4x1(mgl64.Vec4{ndc.X(), ndc.Y(), 1, 1})
	farPoint := far.Vec3().Mul(1 / far.W())
	return Ray{Origin: c.Position, Dir: farPoint.Sub(c.Position).Normalize()}
}

// ScreenToNDC converts pixel coordinates (origin top-left) to NDC.
func ScreenToNDC(x, y, width, height float64) mgl64.Vec2 {
	if width <= 0 || height <= 0 {
		return mgl64.Vec2{}
	}
	return mgl64.Vec2{x/width*2 - 1, -(y/height*2 - 1)}
}
