// Package scene is the in-process stand-in for the render engine's scene
// graph: nodes with parent links, world-space bounds on mesh nodes, and
// nearest-first ray queries.
package scene

import (
	"fmt"
	"sort"
)

// NodeID is an opaque node handle. Root is the implicit scene root.
type NodeID uint64

const Root NodeID = 0

// Node is one element of the graph. Only nodes with Bounds can be hit.
type Node struct {
	ID       NodeID
	Name     string
	Parent   NodeID
	Children []NodeID
	Bounds   *AABB

	attached bool
}

// Intersection is one ray hit, ordered nearest first by Raycast.
type Intersection struct {
	Node     NodeID
	Distance float64
}

// AttachFunc observes every Attach call after it succeeds.
type AttachFunc func(child, parent NodeID)

// Graph is not safe for concurrent use; it belongs to the tick goroutine.
type Graph struct {
	nodes     map[NodeID]*Node
	listeners []AttachFunc
}

func NewGraph() *Graph {
	g := &Graph{nodes: make(map[NodeID]*Node)}
	g.nodes[Root] = &Node{ID: Root, Name: "scene", attached: true}
	return g
}

// OnAttach registers fn to be called after each successful Attach.
func (g *Graph) OnAttach(fn AttachFunc) {
	g.listeners = append(g.listeners, fn)
}

// CreateNode adds a detached node. Bounds may be nil for grouping nodes.
func (g *Graph) CreateNode(id NodeID, name string, bounds *AABB) (*Node, error) {
	if _, exists := g.nodes[id]; exists {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}
	n := &Node{ID: id, Name: name, Bounds: bounds}
	g.nodes[id] = n
	return n, nil
}

// Attach makes child a child of parent. A node may only be attached once.
func (g *Graph) Attach(child, parent NodeID) error {
	c, ok := g.nodes[child]
	if !ok {
		return fmt.Errorf("%w: child %d", ErrNodeNotFound, child)
	}
	p, ok := g.nodes[parent]
	if !ok {
		return fmt.Errorf("%w: parent %d", ErrNodeNotFound, parent)
	}
	if child == Root || c.attached || c.Parent != Root {
		return fmt.Errorf("%w: %d", ErrAlreadyAttached, child)
	}
	if g.isAncestor(child, parent) {
		return fmt.Errorf("%w: %d under %d", ErrCycle, child, parent)
	}

	c.Parent = parent
	p.Children = append(p.Children, child)
	if p.attached {
		g.markAttached(child)
	}
	for _, fn := range g.listeners {
		fn(child, parent)
	}
	return nil
}

// Node returns the node with id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Parent returns the parent of id; the root has none.
func (g *Graph) Parent(id NodeID) (NodeID, bool) {
	n, ok := g.nodes[id]
	if !ok || id == Root {
		return Root, false
	}
	return n.Parent, true
}

// Len returns the number of nodes, the root included.
func (g *Graph) Len() int { return len(g.nodes) }

// Walk visits id and its descendants depth-first. Returning false from fn
// skips the subtree below the visited node.
func (g *Graph) Walk(id NodeID, fn func(*Node) bool) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		g.Walk(c, fn)
	}
}

// Raycast returns every bounded node reachable from the scene root that the
// ray enters, nearest first.
func (g *Graph) Raycast(r Ray) []Intersection {
	var hits []Intersection
	g.Walk(Root, func(n *Node) bool {
		if n.Bounds != nil {
			if t, ok := n.Bounds.Intersect(r); ok {
				hits = append(hits, Intersection{Node: n.ID, Distance: t})
			}
		}
		return true
	})
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// Clear drops everything but the root. Listeners stay registered.
func (g *Graph) Clear() {
	g.nodes = map[NodeID]*Node{Root: {ID: Root, Name: "scene", attached: true}}
}

func (g *Graph) markAttached(id NodeID) {
	g.Walk(id, func(n *Node) bool {
		n.attached = true
		return true
	})
}

func (g *Graph) isAncestor(candidate, of NodeID) bool {
	for cur := of; ; {
		if cur == candidate {
			return true
		}
		if cur == Root {
			return false
		}
		n, ok := g.nodes[cur]
		if !ok {
			return false
		}
		cur = n.Parent
	}
}
