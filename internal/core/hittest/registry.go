// Package hittest maps a screen point to the purchasable object under it.
//
// Ownership is precomputed: when a root is registered every node below it is
// indexed to that root, and nodes attached later inherit the owner of their
// parent. Resolving a hit is then a map lookup per intersection rather than a
// walk up live parent links.
package hittest

import (
	"github.com/zeusync/showroom/internal/core/catalog"
	"github.com/zeusync/showroom/internal/core/scene"
)

// Entity is a registered interactive root and the product it sells.
type Entity struct {
	Root    scene.NodeID
	Product catalog.Product
}

// Registry owns the descendant → root index.
type Registry struct {
	graph    *scene.Graph
	entities map[scene.NodeID]Entity
	owner    map[scene.NodeID]scene.NodeID
}

// NewRegistry indexes roots of graph and follows its later attachments.
func NewRegistry(graph *scene.Graph) *Registry {
	r := &Registry{
		graph:    graph,
		entities: make(map[scene.NodeID]Entity),
		owner:    make(map[scene.NodeID]scene.NodeID),
	}
	graph.OnAttach(r.attached)
	return r
}

// Register makes root hit-testable. Registering the same root again is a
// no-op and reports false. The scene root itself cannot be registered.
func (r *Registry) Register(root scene.NodeID, product catalog.Product) bool {
	if root == scene.Root {
		return false
	}
	if _, ok := r.graph.Node(root); !ok {
		return false
	}
	if _, exists := r.entities[root]; exists {
		return false
	}
	r.entities[root] = Entity{Root: root, Product: product}
	r.index(root)
	return true
}

// Mount attaches a detached root under parent and registers it. Nothing is
// registered when the attach fails.
func (r *Registry) Mount(root, parent scene.NodeID, product catalog.Product) error {
	if err := r.graph.Attach(root, parent); err != nil {
		return err
	}
	r.Register(root, product)
	return nil
}

// Owner returns the entity owning node, if any.
func (r *Registry) Owner(node scene.NodeID) (Entity, bool) {
	root, ok := r.owner[node]
	if !ok {
		return Entity{}, false
	}
	e, ok := r.entities[root]
	return e, ok
}

// Entity returns the entity registered at root.
func (r *Registry) Entity(root scene.NodeID) (Entity, bool) {
	e, ok := r.entities[root]
	return e, ok
}

// Len returns the number of registered entities.
func (r *Registry) Len() int { return len(r.entities) }

// Reset forgets every registration, as on scene teardown.
func (r *Registry) Reset() {
	r.entities = make(map[scene.NodeID]Entity)
	r.owner = make(map[scene.NodeID]scene.NodeID)
}

// index claims root's subtree, stopping at nested registered roots: those
// are nearer owners for everything beneath them.
func (r *Registry) index(root scene.NodeID) {
	r.graph.Walk(root, func(n *scene.Node) bool {
		if n.ID != root {
			if _, nested := r.entities[n.ID]; nested {
				return false
			}
		}
		r.owner[n.ID] = root
		return true
	})
}

func (r *Registry) attached(child, parent scene.NodeID) {
	root, ok := r.owner[parent]
	if !ok {
		return
	}
	r.graph.Walk(child, func(n *scene.Node) bool {
		if _, nested := r.entities[n.ID]; nested {
			return false
		}
		r.owner[n.ID] = root
		return true
	})
}
