package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line; Dir is unit length.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// AABB is an axis-aligned box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Box returns the AABB centered on center with the given full size.
func Box(center, size mgl64.Vec3) AABB {
	half := size.Mul(0.5)
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Translate returns the box moved by offset.
func (b AABB) Translate(offset mgl64.Vec3) AABB {
	return AABB{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}

// Center returns the box midpoint.
func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Intersect runs the slab test and returns the entry distance. A ray that
// starts inside the box hits at distance 0.
func (b AABB) Intersect(r Ray) (float64, bool) {
	tMin, tMax := 0.0, math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		o, d := r.Origin[axis], r.Dir[axis]
		if math.Abs(d) < 1e-12 {
			if o < b.Min[axis] || o > b.Max[axis] {
				return 0, false
			}
			continue
		}
		inv := 1 / d
		t1 := (b.Min[axis] - o) * inv
		t2 := (b.Max[axis] - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// Transform returns the axis-aligned bounds of b after applying m.
func (b AABB) Transform(m mgl64.Mat4) AABB {
	out := AABB{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for i := 0; i < 8; i++ {
		corner := b.Min
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		p := mgl64.TransformCoordinate(corner, m)
		for axis := 0; axis < 3; axis++ {
			out.Min[axis] = math.Min(out.Min[axis], p[axis])
			out.Max[axis] = math.Max(out.Max[axis], p[axis])
		}
	}
	return out
}
