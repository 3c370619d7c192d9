// Package boundary confines a viewer to the walkable floor region: an outer
// rectangle, optionally minus an inner rectangle (a ring).
package boundary

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Extent is a pair of half-extents on the horizontal axes.
type Extent struct {
	X float64 `yaml:"x"`
	Z float64 `yaml:"z"`
}

// Uniform returns an Extent with the same half-extent on both axes.
func Uniform(v float64) Extent { return Extent{X: v, Z: v} }

func (e Extent) isZero() bool { return e.X == 0 && e.Z == 0 }

// Boundary is immutable after New. All extents are half-extents measured from
// Center; Margin shrinks the outer bound and grows the inner one.
type Boundary struct {
	center mgl64.Vec2 // x, z
	outer  Extent
	inner  Extent
	margin float64

	hasInner bool
}

// New validates the parameters and builds a Boundary. A zero inner extent
// means there is no exclusion zone.
func New(center mgl64.Vec2, outer, inner Extent, margin float64) (Boundary, error) {
	if margin < 0 {
		return Boundary{}, fmt.Errorf("%w: negative margin %.3f", ErrInvalidExtent, margin)
	}
	if outer.X <= margin || outer.Z <= margin {
		return Boundary{}, fmt.Errorf("%w: outer %.3fx%.3f leaves no room inside margin %.3f",
			ErrInvalidExtent, outer.X, outer.Z, margin)
	}
	b := Boundary{center: center, outer: outer, margin: margin}
	if inner.isZero() {
		return b, nil
	}
	if inner.X <= 0 || inner.Z <= 0 {
		return Boundary{}, fmt.Errorf("%w: inner extent must be positive on both axes", ErrInvalidExtent)
	}
	if inner.X+margin >= outer.X-margin || inner.Z+margin >= outer.Z-margin {
		return Boundary{}, fmt.Errorf("%w: inner %.3fx%.3f does not fit inside outer %.3fx%.3f",
			ErrInvalidExtent, inner.X, inner.Z, outer.X, outer.Z)
	}
	b.inner = inner
	b.hasInner = true
	return b, nil
}

// Corridor builds the straight hallway: x within ±width/2, z from 0 down to
// -length, camera starting at the z=0 end.
func Corridor(width, length, margin float64) (Boundary, error) {
	return New(mgl64.Vec2{0, -length / 2}, Extent{X: width / 2, Z: length/2 + margin}, Extent{}, margin)
}

// Center returns the x/z center of the region.
func (b Boundary) Center() mgl64.Vec2 { return b.center }

// Outer returns the outer half-extent after the margin is applied.
func (b Boundary) Outer() Extent {
	return Extent{X: b.outer.X - b.margin, Z: b.outer.Z - b.margin}
}

// Inner returns the inner exclusion half-extent after the margin is applied,
// and false when there is no exclusion.
func (b Boundary) Inner() (Extent, bool) {
	if !b.hasInner {
		return Extent{}, false
	}
	return Extent{X: b.inner.X + b.margin, Z: b.inner.Z + b.margin}, true
}

// Contains reports whether pos already satisfies the boundary.
func (b Boundary) Contains(pos mgl64.Vec3) bool {
	return b.Clamp(pos) == pos
}

// Clamp returns the nearest walkable position. Y passes through untouched.
func (b Boundary) Clamp(pos mgl64.Vec3) mgl64.Vec3 {
	outer := b.Outer()
	relX, relZ := pos.X()-b.center.X(), pos.Z()-b.center.Y()
	x := clampAxis(relX, outer.X)
	z := clampAxis(relZ, outer.Z)

	if inner, ok := b.Inner(); ok && math.Abs(x) < inner.X && math.Abs(z) < inner.Z {
		// minimal displacement: push out along the shallower axis
		depthX := inner.X - math.Abs(x)
		depthZ := inner.Z - math.Abs(z)
		if depthX <= depthZ {
			x = sign(x) * inner.X
		} else {
			z = sign(z) * inner.Z
		}
	}

	out := pos
	if x != relX {
		out[0] = x + b.center.X()
	}
	if z != relZ {
		out[2] = z + b.center.Y()
	}
	return out
}

func clampAxis(v, half float64) float64 {
	return mgl64.Clamp(v, -half, half)
}

// sign treats zero as positive so a point at the exact center still gets pushed.
func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
