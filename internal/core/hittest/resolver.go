package hittest

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/showroom/internal/core/scene"
)

// Hit is the nearest registered entity under the pointer.
type Hit struct {
	Entity   Entity
	Node     scene.NodeID // the intersected node, possibly deep below Entity.Root
	Distance float64
	Point    mgl64.Vec3
}

// Resolver casts picking rays into a graph and resolves them against a
// Registry.
type Resolver struct {
	graph    *scene.Graph
	registry *Registry
}

func NewResolver(graph *scene.Graph, registry *Registry) *Resolver {
	return &Resolver{graph: graph, registry: registry}
}

// Resolve casts from cam through ndc and returns the nearest intersection
// owned by a registered entity. Geometry without an owner is passed over.
func (r *Resolver) Resolve(cam scene.Camera, ndc mgl64.Vec2) (Hit, bool) {
	return r.ResolveRay(cam.Ray(ndc))
}

// ResolveRay is Resolve for a ray that is already built.
func (r *Resolver) ResolveRay(ray scene.Ray) (Hit, bool) {
	for _, in := range r.graph.Raycast(ray) {
		if e, ok := r.registry.Owner(in.Node); ok {
			return Hit{
				Entity:   e,
				Node:     in.Node,
				Distance: in.Distance,
				Point:    ray.At(in.Distance),
			}, true
		}
	}
	return Hit{}, false
}
