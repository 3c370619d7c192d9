package assets

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/showroom/internal/core/boundary"
	"github.com/zeusync/showroom/internal/core/catalog"
)

// Layout spreads products over the walkable region. With an inner exclusion
// they sit evenly around its edge facing outward; otherwise they alternate
// between the left and right walls, front to back, facing the aisle.
// A product's own Rotation is added to the computed heading.
func Layout(products []catalog.Product, b boundary.Boundary, floorY float64) []Placement {
	if len(products) == 0 {
		return nil
	}
	if inner, ok := b.Inner(); ok {
		return ringLayout(products, b.Center(), inner, floorY)
	}
	return wallLayout(products, b.Center(), b.Outer(), floorY)
}

func ringLayout(products []catalog.Product, center mgl64.Vec2, inner boundary.Extent, floorY float64) []Placement {
	out := make([]Placement, len(products))
	for i, p := range products {
		theta := 2 * math.Pi * float64(i) / float64(len(products))
		dx, dz := math.Sin(theta), math.Cos(theta)
		// scale the direction onto the rectangle
		s := 1 / math.Max(math.Abs(dx)/inner.X, math.Abs(dz)/inner.Z)
		out[i] = Placement{
			ProductID: p.ID,
			Position:  mgl64.Vec3{center.X() + dx*s, floorY, center.Y() + dz*s},
			Yaw:       math.Atan2(dx, dz) + p.Rotation,
		}
	}
	return out
}

func wallLayout(products []catalog.Product, center mgl64.Vec2, outer boundary.Extent, floorY float64) []Placement {
	rows := (len(products) + 1) / 2
	spacing := 2 * outer.Z / float64(rows+1)
	out := make([]Placement, len(products))
	for i, p := range products {
		side, facing := -1.0, math.Pi/2
		if i%2 == 1 {
			side, facing = 1, -math.Pi/2
		}
		row := i / 2
		out[i] = Placement{
			ProductID: p.ID,
			Position: mgl64.Vec3{
				center.X() + side*outer.X,
				floorY,
				center.Y() + outer.Z - spacing*float64(row+1),
			},
			Yaw: facing + p.Rotation,
		}
	}
	return out
}
