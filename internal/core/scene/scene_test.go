package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAABBIntersect(t *testing.T) {
	box := Box(mgl64.Vec3{0, 0, -5}, mgl64.Vec3{2, 2, 2})

	d, ok := box.Intersect(Ray{Origin: mgl64.Vec3{}, Dir: Forward})
	require.True(t, ok)
	assert.InDelta(t, 4, d, 1e-9)

	_, ok = box.Intersect(Ray{Origin: mgl64.Vec3{}, Dir: Forward.Mul(-1)})
	assert.False(t, ok, "box is behind the ray")

	_, ok = box.Intersect(Ray{Origin: mgl64.Vec3{3, 0, 0}, Dir: Forward})
	assert.False(t, ok, "parallel ray outside the slab")

	d, ok = box.Intersect(Ray{Origin: mgl64.Vec3{0, 0, -5}, Dir: Right})
	require.True(t, ok)
	assert.Equal(t, 0.0, d, "origin inside the box")

	assert.Equal(t, mgl64.Vec3{1, 0, -5}, box.Translate(mgl64.Vec3{1, 0, 0}).Center())
}

func TestCameraCenterRayLooksForward(t *testing.T) {
	cam := Camera{Position: mgl64.Vec3{0, 1.5, 0}, Orientation: mgl64.QuatIdent(), Lens: DefaultLens()}

	r := cam.Ray(mgl64.Vec2{})
	assert.True(t, r.Dir.ApproxEqualThreshold(Forward, 1e-6), "got %v", r.Dir)
	assert.Equal(t, cam.Position, r.Origin)

	// turned 90° left, the center ray points down -X
	cam.Orientation = mgl64.QuatRotate(math.Pi/2, Up)
	r = cam.Ray(mgl64.Vec2{})
	assert.True(t, r.Dir.ApproxEqualThreshold(mgl64.Vec3{-1, 0, 0}, 1e-6), "got %v", r.Dir)
}

func TestCameraOffCenterRay(t *testing.T) {
	cam := Camera{Orientation: mgl64.QuatIdent(), Lens: DefaultLens()}

	right := cam.Ray(mgl64.Vec2{1, 0})
	assert.Greater(t, right.Dir.X(), 0.0)
	assert.InDelta(t, 0, right.Dir.Y(), 1e-6)

	top := cam.Ray(mgl64.Vec2{0, 1})
	assert.Greater(t, top.Dir.Y(), 0.0)
	// the top edge sits at half the vertical field of view
	assert.InDelta(t, mgl64.DegToRad(75.0/2), math.Atan2(top.Dir.Y(), -top.Dir.Z()), 1e-6)
}

func TestScreenToNDC(t *testing.T) {
	assert.Equal(t, mgl64.Vec2{0, 0}, ScreenToNDC(400, 300, 800, 600))
	assert.Equal(t, mgl64.Vec2{-1, 1}, ScreenToNDC(0, 0, 800, 600))
	assert.Equal(t, mgl64.Vec2{}, ScreenToNDC(1, 1, 0, 0))
}

func TestGraphAttachAndWalk(t *testing.T) {
	g := NewGraph()
	_, err := g.CreateNode(1, "group", nil)
	require.NoError(t, err)
	box := Box(mgl64.Vec3{0, 0, -5}, mgl64.Vec3{1, 1, 1})
	_, err = g.CreateNode(2, "mesh", &box)
	require.NoError(t, err)

	var seen [][2]NodeID
	g.OnAttach(func(child, parent NodeID) { seen = append(seen, [2]NodeID{child, parent}) })

	require.NoError(t, g.Attach(2, 1))
	require.NoError(t, g.Attach(1, Root))
	assert.Equal(t, [][2]NodeID{{2, 1}, {1, Root}}, seen)

	p, ok := g.Parent(2)
	assert.True(t, ok)
	assert.Equal(t, NodeID(1), p)
	_, ok = g.Parent(Root)
	assert.False(t, ok)

	var visited []NodeID
	g.Walk(Root, func(n *Node) bool { visited = append(visited, n.ID); return true })
	assert.Equal(t, []NodeID{Root, 1, 2}, visited)
	assert.Equal(t, 3, g.Len())
}

func TestGraphAttachErrors(t *testing.T) {
	g := NewGraph()
	_, _ = g.CreateNode(1, "a", nil)
	_, _ = g.CreateNode(2, "b", nil)

	_, err := g.CreateNode(1, "dup", nil)
	assert.ErrorIs(t, err, ErrDuplicateNode)

	assert.ErrorIs(t, g.Attach(9, Root), ErrNodeNotFound)
	assert.ErrorIs(t, g.Attach(1, 9), ErrNodeNotFound)

	require.NoError(t, g.Attach(2, 1))
	assert.ErrorIs(t, g.Attach(1, 2), ErrCycle)
	assert.ErrorIs(t, g.Attach(2, Root), ErrAlreadyAttached)
	assert.ErrorIs(t, g.Attach(Root, 1), ErrAlreadyAttached)
}

func TestRaycastOrdersNearestFirstAndSkipsDetached(t *testing.T) {
	g := NewGraph()
	near := Box(mgl64.Vec3{0, 0, -3}, mgl64.Vec3{1, 1, 1})
	far := Box(mgl64.Vec3{0, 0, -8}, mgl64.Vec3{1, 1, 1})
	loose := Box(mgl64.Vec3{0, 0, -1}, mgl64.Vec3{1, 1, 1})
	_, _ = g.CreateNode(10, "far", &far)
	_, _ = g.CreateNode(11, "near", &near)
	_, _ = g.CreateNode(12, "loose", &loose)
	require.NoError(t, g.Attach(10, Root))
	require.NoError(t, g.Attach(11, Root))

	hits := g.Raycast(Ray{Dir: Forward})
	require.Len(t, hits, 2)
	assert.Equal(t, NodeID(11), hits[0].Node)
	assert.Equal(t, NodeID(10), hits[1].Node)
	assert.InDelta(t, 2.5, hits[0].Distance, 1e-9)

	g.Clear()
	assert.Empty(t, g.Raycast(Ray{Dir: Forward}))
	assert.Equal(t, 1, g.Len())
}

func TestAABBTransform(t *testing.T) {
	box := Box(mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{2, 1, 0.5})

	turned := box.Transform(mgl64.Translate3D(3, 0, -1).Mul4(mgl64.HomogRotate3DY(math.Pi / 2)))
	assert.True(t, turned.Min.ApproxEqualThreshold(mgl64.Vec3{2.75, 0, -2}, 1e-9), "%v", turned.Min)
	assert.True(t, turned.Max.ApproxEqualThreshold(mgl64.Vec3{3.25, 1, 0}, 1e-9), "%v", turned.Max)
}
