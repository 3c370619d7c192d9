// Package assets loads product models and places them in the scene graph.
package assets

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/showroom/internal/core/scene"
)

// Part is one node of a loaded model. Bounds are in model space; groups have
// none.
type Part struct {
	Name     string
	Bounds   *scene.AABB
	Children []*Part
}

// Model is a loaded asset: a part tree rooted at Root.
type Model struct {
	URL  string
	Root *Part
}

// Count returns the number of parts.
func (m *Model) Count() int {
	n := 0
	walkParts(m.Root, m.Root.Name, func(*Part, string) { n++ })
	return n
}

// Placement puts a product's model into the world.
type Placement struct {
	ProductID string
	Position  mgl64.Vec3
	Yaw       float64
}

// Matrix returns the model-to-world transform.
func (p Placement) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z()).
		Mul4(mgl64.HomogRotate3DY(p.Yaw))
}

// NodeIDFor derives a stable handle for the part at path inside the asset at
// url. The same asset always yields the same ids.
func NodeIDFor(url, path string) scene.NodeID {
	id := scene.NodeID(xxhash.Sum64String(url + "#" + path))
	if id == scene.Root {
		id++
	}
	return id
}

// Instantiate creates the model's nodes in g with world-space bounds and links
// them to each other. The returned root is left detached.
func Instantiate(g *scene.Graph, m *Model, at Placement) (scene.NodeID, error) {
	if m == nil || m.Root == nil {
		return 0, fmt.Errorf("%w: %s: empty model", ErrLoadFailed, at.ProductID)
	}

	type pending struct {
		id, parent scene.NodeID
		part       *Part
	}
	var nodes []pending
	var collect func(p *Part, path string, parent scene.NodeID)
	collect = func(p *Part, path string, parent scene.NodeID) {
		id := NodeIDFor(m.URL, path)
		nodes = append(nodes, pending{id: id, parent: parent, part: p})
		for i, child := range p.Children {
			collect(child, childPath(path, i, child), id)
		}
	}
	collect(m.Root, m.Root.Name, scene.Root)

	for _, n := range nodes {
		if _, exists := g.Node(n.id); exists {
			return 0, fmt.Errorf("%w: %d", scene.ErrDuplicateNode, n.id)
		}
	}

	world := at.Matrix()
	for _, n := range nodes {
		var bounds *scene.AABB
		if n.part.Bounds != nil {
			b := n.part.Bounds.Transform(world)
			bounds = &b
		}
		if _, err := g.CreateNode(n.id, n.part.Name, bounds); err != nil {
			return 0, err
		}
	}
	// parents were created first by the pre-order walk
	for _, n := range nodes[1:] {
		if err := g.Attach(n.id, n.parent); err != nil {
			return 0, err
		}
	}
	return nodes[0].id, nil
}

// walkParts visits p and its descendants in pre-order with slash paths.
// Sibling names are suffixed with their index to keep paths unique.
func walkParts(p *Part, path string, fn func(*Part, string)) {
	fn(p, path)
	for i, child := range p.Children {
		walkParts(child, childPath(path, i, child), fn)
	}
}

func childPath(parent string, i int, child *Part) string {
	return fmt.Sprintf("%s/%d:%s", parent, i, child.Name)
}
