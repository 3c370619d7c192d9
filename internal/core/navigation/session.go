// Package navigation owns the camera pose and the control-mode state machine.
//
// A Session replaces the ambient camera/controls globals of a page: it holds
// the pose, the walkable boundary and the active controller, and is driven by
// explicit Update calls from whatever schedules ticks.
package navigation

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/showroom/internal/core/boundary"
	"github.com/zeusync/showroom/internal/core/input"
	"github.com/zeusync/showroom/internal/core/observability/log"
)

// OrbitConfig bounds the free-orbit camera. Angles are radians.
type OrbitConfig struct {
	Target       mgl64.Vec3
	Radius       float64
	MinRadius    float64
	MaxRadius    float64
	Elevation    float64
	MinElevation float64
	MaxElevation float64
}

// Config tunes a Session.
type Config struct {
	DesktopMode Mode
	MoveSpeed   float64 // world units per second at full intent
	RotateStep  float64 // radians per tick for discrete touch turns
	Start       Pose
	Orbit       OrbitConfig
}

// DefaultConfig walks at 6 units/s, which is 0.1 per frame at 60 Hz.
func DefaultConfig() Config {
	return Config{
		DesktopMode: ModeLocked,
		MoveSpeed:   6,
		RotateStep:  mgl64.DegToRad(2),
		Start:       Pose{Position: mgl64.Vec3{0, 1.5, 0}},
		Orbit: OrbitConfig{
			Target:       mgl64.Vec3{0, 1, 0},
			Radius:       3,
			MinRadius:    1,
			MaxRadius:    10,
			Elevation:    mgl64.DegToRad(15),
			MinElevation: mgl64.DegToRad(-10),
			MaxElevation: mgl64.DegToRad(80),
		},
	}
}

// Session is driven from a single goroutine and is not safe for concurrent use.
type Session struct {
	cfg      Config
	boundary boundary.Boundary
	pose     Pose
	ctrl     controller
	capture  Capture
	signal   SignalFunc
	logger   log.Log
}

type Option func(*Session)

// WithCapture sets the pointer-capture mechanism used by Engage.
func WithCapture(c Capture) Option {
	return func(s *Session) { s.capture = c }
}

// WithSignal installs the locked/unlocked listener.
func WithSignal(fn SignalFunc) Option {
	return func(s *Session) { s.signal = fn }
}

func WithLogger(l log.Log) Option {
	return func(s *Session) { s.logger = l }
}

// New picks the mode once: touch devices get ModeTouchNav, desktops get the
// configured desktop mode.
func New(class input.DeviceClass, b boundary.Boundary, cfg Config, opts ...Option) *Session {
	s := &Session{
		cfg:      cfg,
		boundary: b,
		capture:  GrantedCapture{},
		logger:   log.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case class == input.DeviceTouch:
		s.ctrl = touchController{}
	case cfg.DesktopMode == ModeFreeOrbit:
		s.ctrl = newOrbitController(cfg.Orbit)
	default:
		s.ctrl = &lockedController{}
	}

	s.pose = cfg.Start
	s.pose.Pitch = clampPitch(s.pose.Pitch)
	s.pose.Position = b.Clamp(s.pose.Position)
	if o, ok := s.ctrl.(*orbitController); ok {
		o.place(s)
	}
	return s
}

func (s *Session) Mode() Mode { return s.ctrl.mode() }

func (s *Session) Pose() Pose { return s.pose }

func (s *Session) Boundary() boundary.Boundary { return s.boundary }

// Engaged reports whether pointer capture is held. Orbit and touch sessions
// have no capture and are always live.
func (s *Session) Engaged() bool {
	if c, ok := s.ctrl.(*lockedController); ok {
		return c.engaged
	}
	return true
}

// Engage requests pointer capture. Engaging twice is a no-op. A denial leaves
// the session disengaged, emits the unlocked signal and returns
// ErrCaptureDenied.
func (s *Session) Engage() error {
	c, ok := s.ctrl.(*lockedController)
	if !ok {
		return fmt.Errorf("%w: engage in %s mode", ErrModeMismatch, s.Mode())
	}
	if c.engaged {
		return nil
	}
	if err := s.capture.Request(); err != nil {
		s.CaptureDenied(err)
		return fmt.Errorf("%w: %v", ErrCaptureDenied, err)
	}
	c.engaged = true
	s.logger.Debug("Pointer captured")
	s.emit(Signal{Kind: SignalLocked})
	return nil
}

// CaptureDenied reports a refusal that arrived out of band.
func (s *Session) CaptureDenied(err error) {
	s.logger.Warn("Pointer capture denied", log.Error(err))
	if c, ok := s.ctrl.(*lockedController); ok && c.engaged {
		c.engaged = false
		s.capture.Release()
	}
	s.emit(Signal{Kind: SignalUnlocked, Reason: ReasonCaptureDenied})
}

// CaptureLost is called when capture is revoked from outside.
func (s *Session) CaptureLost() {
	s.Disengage(ReasonCaptureLost)
}

// Disengage leaves the locked state. It reports whether a transition
// happened; outside ModeLocked or when already disengaged it does nothing.
func (s *Session) Disengage(reason Reason) bool {
	c, ok := s.ctrl.(*lockedController)
	if !ok || !c.engaged {
		return false
	}
	c.engaged = false
	s.capture.Release()
	s.logger.Debug("Pointer released", log.String("reason", string(reason)))
	s.emit(Signal{Kind: SignalUnlocked, Reason: reason})
	return true
}

// SyncOrientation reads back the heading the capture mechanism computed from
// mouse movement. Only meaningful while engaged in ModeLocked.
func (s *Session) SyncOrientation(yaw, pitch float64) error {
	c, ok := s.ctrl.(*lockedController)
	if !ok {
		return fmt.Errorf("%w: look in %s mode", ErrModeMismatch, s.Mode())
	}
	if !c.engaged {
		return ErrNotEngaged
	}
	s.pose.Yaw = wrapAngle(yaw)
	s.pose.Pitch = clampPitch(pitch)
	return nil
}

// Orbit rotates the free-orbit camera around its target.
func (s *Session) Orbit(dAzimuth, dElevation float64) error {
	o, err := s.orbit()
	if err != nil {
		return err
	}
	o.orbit(dAzimuth, dElevation)
	o.place(s)
	return nil
}

// Zoom moves the free-orbit camera toward (positive) or away from the target.
func (s *Session) Zoom(delta float64) error {
	o, err := s.orbit()
	if err != nil {
		return err
	}
	o.zoom(delta)
	o.place(s)
	return nil
}

// Pan drags the orbit target along the camera's horizontal axes.
func (s *Session) Pan(dx, dz float64) error {
	o, err := s.orbit()
	if err != nil {
		return err
	}
	right, forward := s.pose.Basis()
	o.pan(right, forward, dx, dz)
	o.place(s)
	return nil
}

// OrbitTarget returns the free-orbit target.
func (s *Session) OrbitTarget() (mgl64.Vec3, bool) {
	o, ok := s.ctrl.(*orbitController)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return o.target, true
}

// Update applies one tick of intent and returns the clamped pose.
func (s *Session) Update(in input.Intent, dt float64) Pose {
	if dt < 0 {
		dt = 0
	}
	s.ctrl.update(s, in, dt)
	return s.pose
}

// PickPoint returns where a click should be cast: the screen center while
// looking through a captured pointer, otherwise the pointer itself.
func (s *Session) PickPoint(pointer mgl64.Vec2) mgl64.Vec2 {
	if s.Mode() == ModeLocked {
		return mgl64.Vec2{}
	}
	return pointer
}

// Close releases capture, emitting a final unlocked signal if engaged.
func (s *Session) Close() {
	s.Disengage(ReasonClosed)
}

func (s *Session) walk(in input.Intent, dt float64) {
	if in.Lateral == 0 && in.Forward == 0 {
		return
	}
	right, forward := s.pose.Basis()
	step := s.cfg.MoveSpeed * dt
	next := s.pose.Position.
		Add(right.Mul(in.Lateral * step)).
		Add(forward.Mul(in.Forward * step))
	s.pose.Position = s.boundary.Clamp(next)
}

func (s *Session) orbit() (*orbitController, error) {
	o, ok := s.ctrl.(*orbitController)
	if !ok {
		return nil, fmt.Errorf("%w: orbit in %s mode", ErrModeMismatch, s.Mode())
	}
	return o, nil
}

func (s *Session) emit(sig Signal) {
	if s.signal != nil {
		s.signal(sig)
	}
}
