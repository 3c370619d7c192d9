package navigation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/showroom/internal/core/input"
)

// controller applies one tick of intent to the session pose.
type controller interface {
	mode() Mode
	update(s *Session, in input.Intent, dt float64)
}

type lockedController struct {
	engaged bool
}

func (*lockedController) mode() Mode { return ModeLocked }

func (c *lockedController) update(s *Session, in input.Intent, dt float64) {
	if !c.engaged {
		return
	}
	s.walk(in, dt)
}

type touchController struct{}

func (touchController) mode() Mode { return ModeTouchNav }

func (touchController) update(s *Session, in input.Intent, dt float64) {
	switch in.Rotation {
	case input.RotateLeft:
		s.pose.Yaw = wrapAngle(s.pose.Yaw + s.cfg.RotateStep)
	case input.RotateRight:
		s.pose.Yaw = wrapAngle(s.pose.Yaw - s.cfg.RotateStep)
	case input.RotateUp:
		s.pose.Pitch = clampPitch(s.pose.Pitch + s.cfg.RotateStep)
	case input.RotateDown:
		s.pose.Pitch = clampPitch(s.pose.Pitch - s.cfg.RotateStep)
	}
	s.walk(in, dt)
}

// orbitController keeps the camera on a sphere around target.
type orbitController struct {
	target    mgl64.Vec3
	radius    float64
	azimuth   float64
	elevation float64
	limits    OrbitConfig
}

func newOrbitController(cfg OrbitConfig) *orbitController {
	return &orbitController{
		target:    cfg.Target,
		radius:    mgl64.Clamp(cfg.Radius, cfg.MinRadius, cfg.MaxRadius),
		elevation: mgl64.Clamp(cfg.Elevation, cfg.MinElevation, cfg.MaxElevation),
		limits:    cfg,
	}
}

func (*orbitController) mode() Mode { return ModeFreeOrbit }

func (c *orbitController) update(s *Session, in input.Intent, dt float64) {
	if in.Lateral != 0 || in.Forward != 0 {
		right, forward := s.pose.Basis()
		step := s.cfg.MoveSpeed * dt
		c.target = c.target.Add(right.Mul(in.Lateral * step)).Add(forward.Mul(in.Forward * step))
	}
	c.place(s)
}

func (c *orbitController) orbit(dAzimuth, dElevation float64) {
	c.azimuth = wrapAngle(c.azimuth + dAzimuth)
	c.elevation = mgl64.Clamp(c.elevation+dElevation, c.limits.MinElevation, c.limits.MaxElevation)
}

func (c *orbitController) zoom(delta float64) {
	c.radius = mgl64.Clamp(c.radius-delta, c.limits.MinRadius, c.limits.MaxRadius)
}

func (c *orbitController) pan(right, forward mgl64.Vec3, dx, dz float64) {
	c.target = c.target.Add(right.Mul(dx)).Add(forward.Mul(dz))
}

// place clamps the target and the eye, then aims the eye at the target.
func (c *orbitController) place(s *Session) {
	c.target = s.boundary.Clamp(c.target)

	offset := mgl64.Vec3{
		c.radius * math.Cos(c.elevation) * math.Sin(c.azimuth),
		c.radius * math.Sin(c.elevation),
		c.radius * math.Cos(c.elevation) * math.Cos(c.azimuth),
	}
	eye := s.boundary.Clamp(c.target.Add(offset))

	look := c.target.Sub(eye)
	horizontal := math.Hypot(look.X(), look.Z())
	s.pose.Position = eye
	if horizontal > 1e-9 || math.Abs(look.Y()) > 1e-9 {
		// yaw is measured from -Z toward -X
		s.pose.Yaw = math.Atan2(-look.X(), -look.Z())
		s.pose.Pitch = clampPitch(math.Atan2(look.Y(), horizontal))
	}
}
