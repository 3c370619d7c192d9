package config

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/showroom/internal/core/boundary"
	"github.com/zeusync/showroom/internal/core/navigation"
	"github.com/zeusync/showroom/internal/core/scene"
	"github.com/zeusync/showroom/internal/core/showroom"
)

// Validate checks every section and joins all problems found.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.ListenAddr != "", "server.listen_addr is empty")
	check(c.Server.TickRate > 0 && c.Server.TickRate <= 240, "server.tick_rate %d out of (0, 240]", c.Server.TickRate)
	check(c.Server.MaxMessageSize > 0, "server.max_message_size must be positive")
	check(c.Server.MaxSessions >= 0, "server.max_sessions must not be negative")

	if _, ok := navigation.ParseDesktopMode(c.Navigation.DesktopMode); !ok {
		errs = append(errs, fmt.Errorf("navigation.desktop_mode %q is not locked or orbit", c.Navigation.DesktopMode))
	}
	check(c.Navigation.MoveSpeed > 0, "navigation.move_speed must be positive")
	check(c.Navigation.RotateStepDeg > 0, "navigation.rotate_step_deg must be positive")
	check(c.Navigation.DeadZone >= 0 && c.Navigation.DeadZone < 1, "navigation.dead_zone must be in [0, 1)")
	o := c.Navigation.Orbit
	check(o.MinRadius > 0 && o.MinRadius <= o.MaxRadius, "navigation.orbit radius limits are inconsistent")
	check(o.MinElevationDeg <= o.MaxElevationDeg, "navigation.orbit elevation limits are inconsistent")

	check(c.Camera.FovY > 0 && c.Camera.FovY < 180, "camera.fov_y must be in (0, 180)")
	check(c.Camera.Aspect > 0, "camera.aspect must be positive")
	check(c.Camera.Near > 0 && c.Camera.Near < c.Camera.Far, "camera near/far are inconsistent")

	check(c.Assets.Concurrency >= 0, "assets.concurrency must not be negative")
	check(c.Assets.Timeout >= 0, "assets.timeout must not be negative")

	if _, err := c.BuildBoundary(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// BuildBoundary constructs the walkable region.
func (c Config) BuildBoundary() (boundary.Boundary, error) {
	b := c.Boundary
	switch b.Shape {
	case "", ShapeCorridor:
		return boundary.Corridor(b.Width, b.Length, b.Margin)
	case ShapeRing:
		return boundary.New(
			mgl64.Vec2{b.Center[0], b.Center[1]},
			boundary.Extent{X: b.Outer[0], Z: b.Outer[1]},
			boundary.Extent{X: b.Inner[0], Z: b.Inner[1]},
			b.Margin,
		)
	default:
		return boundary.Boundary{}, fmt.Errorf("boundary.shape %q is not corridor or ring", b.Shape)
	}
}

// Lens returns the picking lens.
func (c Config) Lens() scene.Lens {
	return scene.Lens{FovY: c.Camera.FovY, Aspect: c.Camera.Aspect, Near: c.Camera.Near, Far: c.Camera.Far}
}

// BuildNavigation returns the navigation settings.
func (c Config) BuildNavigation() navigation.Config {
	n := c.Navigation
	mode, _ := navigation.ParseDesktopMode(n.DesktopMode)
	return navigation.Config{
		DesktopMode: mode,
		MoveSpeed:   n.MoveSpeed,
		RotateStep:  mgl64.DegToRad(n.RotateStepDeg),
		Start: navigation.Pose{
			Position: mgl64.Vec3{c.Camera.Start[0], c.Camera.FloorY + c.Camera.EyeHeight, c.Camera.Start[1]},
		},
		Orbit: navigation.OrbitConfig{
			Target:       mgl64.Vec3(n.Orbit.Target),
			Radius:       n.Orbit.Radius,
			MinRadius:    n.Orbit.MinRadius,
			MaxRadius:    n.Orbit.MaxRadius,
			Elevation:    mgl64.DegToRad(n.Orbit.ElevationDeg),
			MinElevation: mgl64.DegToRad(n.Orbit.MinElevationDeg),
			MaxElevation: mgl64.DegToRad(n.Orbit.MaxElevationDeg),
		},
	}
}

// BuildShowroom assembles the per-session showroom settings.
func (c Config) BuildShowroom() (showroom.Config, error) {
	b, err := c.BuildBoundary()
	if err != nil {
		return showroom.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return showroom.Config{
		Boundary:          b,
		Navigation:        c.BuildNavigation(),
		Lens:              c.Lens(),
		FloorY:            c.Camera.FloorY,
		NormalizeDiagonal: c.Navigation.NormalizeDiagonal,
		DeadZone:          c.Navigation.DeadZone,
		LoadConcurrency:   c.Assets.Concurrency,
		LoadTimeout:       c.Assets.Timeout,
	}, nil
}
