package navigation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/showroom/internal/core/scene"
)

// maxPitch keeps the look direction off the poles.
var maxPitch = mgl64.DegToRad(89)

// Pose is the camera position and heading. Yaw turns about +Y (positive is
// to the left), pitch tilts about the camera's right axis (positive is up).
type Pose struct {
	Position mgl64.Vec3 `json:"position"`
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
}

// Orientation returns the yaw-then-pitch rotation.
func (p Pose) Orientation() mgl64.Quat {
	yaw := mgl64.QuatRotate(p.Yaw, scene.Up)
	pitch := mgl64.QuatRotate(p.Pitch, scene.Right)
	return yaw.Mul(pitch)
}

// Basis returns the horizontal right and forward unit vectors. Movement uses
// these so looking up or down never changes walking speed.
func (p Pose) Basis() (right, forward mgl64.Vec3) {
	yaw := mgl64.QuatRotate(p.Yaw, scene.Up)
	return yaw.Rotate(scene.Right), yaw.Rotate(scene.Forward)
}

// Look returns the full look direction, pitch included.
func (p Pose) Look() mgl64.Vec3 {
	return p.Orientation().Rotate(scene.Forward)
}

// Camera builds a picking camera from the pose.
func (p Pose) Camera(lens scene.Lens) scene.Camera {
	return scene.Camera{Position: p.Position, Orientation: p.Orientation(), Lens: lens}
}

func clampPitch(v float64) float64 {
	return mgl64.Clamp(v, -maxPitch, maxPitch)
}

// wrapAngle keeps yaw in (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
