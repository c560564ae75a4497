package simulation

import (
	"errors"
	"fmt"
	"math"

	"forcetree/internal/common"
)

// Errors returned by AddChild and Simulation.AddRoot.
var (
	ErrNilNode         = errors.New("node is nil")
	ErrSelfChild       = errors.New("node cannot be its own child")
	ErrAlreadyParented = errors.New("node already has a parent")
	ErrCycle           = errors.New("adding child would create a cycle")
)

// AppliedForce pairs a force with the time it was attached to a node.
type AppliedForce struct {
	Force     *Force
	AppliedAt float64
}

// Node is a point mass positioned relative to an optional parent.
// A node owns its forces and its children; the parent link is a plain
// back-reference and carries no ownership.
type Node struct {
	id         uint64
	pos        common.Vector2D // relative to parent
	mass       float64
	velocity   common.Vector2D // units per second
	lastUpdate float64         // milliseconds

	forces   []AppliedForce
	children []*Node
	parent   *Node
}

// NodeOption configures a Node at construction.
type NodeOption func(*Node)

// WithPosition sets the position relative to the parent.
func WithPosition(pos common.Vector2D) NodeOption {
	return func(n *Node) { n.pos = pos }
}

// WithVelocity sets the initial velocity in units per second.
func WithVelocity(v common.Vector2D) NodeOption {
	return func(n *Node) { n.velocity = v }
}

// WithMass sets the mass. Values that are not positive are ignored.
func WithMass(mass float64) NodeOption {
	return func(n *Node) {
		if mass > 0 && !math.IsInf(mass, 0) {
			n.mass = mass
		}
	}
}

// WithStartTime sets the time of the last update.
func WithStartTime(ms float64) NodeOption {
	return func(n *Node) { n.lastUpdate = ms }
}

// NewNode creates a root node at rest at the origin with mass 1, unless options say otherwise.
func NewNode(id uint64, opts ...NodeOption) *Node {
	n := &Node{
		id:   id,
		mass: 1.0,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ID returns the node identifier.
func (n *Node) ID() uint64 { return n.id }

// Mass returns the mass used to scale force deltas.
func (n *Node) Mass() float64 { return n.mass }

// LastUpdate returns the time of the last update in milliseconds.
func (n *Node) LastUpdate() float64 { return n.lastUpdate }

// LocalPosition returns the position relative to the parent.
func (n *Node) LocalPosition() common.Vector2D { return n.pos }

// SetLocalPosition moves the node relative to its parent.
func (n *Node) SetLocalPosition(p common.Vector2D) { n.pos = p }

// Velocity returns the velocity in units per second.
func (n *Node) Velocity() common.Vector2D { return n.velocity }

// SetVelocity replaces the velocity.
func (n *Node) SetVelocity(v common.Vector2D) { n.velocity = v }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Children returns a copy of the child list in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// PendingForces returns a copy of the attached forces in insertion order.
func (n *Node) PendingForces() []AppliedForce {
	out := make([]AppliedForce, len(n.forces))
	copy(out, n.forces)
	return out
}

// Position returns the absolute position: the local position plus the
// absolute position of every ancestor. It is recomputed on each call.
func (n *Node) Position() common.Vector2D {
	if n.parent == nil {
		return n.pos
	}
	return n.pos.Add(n.parent.Position())
}

// Depth returns the number of ancestors.
func (n *Node) Depth() int {
	depth := 0
	for p := n.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// AddChild attaches child under n and returns it.
// The child must be a root and must not be n or one of n's ancestors.
func (n *Node) AddChild(child *Node) (*Node, error) {
	if child == nil {
		return nil, ErrNilNode
	}
	if child == n {
		return nil, ErrSelfChild
	}
	if child.parent != nil {
		return nil, fmt.Errorf("node %d: %w (parent %d)", child.id, ErrAlreadyParented, child.parent.id)
	}
	for p := n.parent; p != nil; p = p.parent {
		if p == child {
			return nil, fmt.Errorf("node %d under node %d: %w", child.id, n.id, ErrCycle)
		}
	}

	child.parent = n
	n.children = append(n.children, child)
	return child, nil
}

// AddForce attaches a force applied at appliedAt. Expiry is not checked here.
func (n *Node) AddForce(f *Force, appliedAt float64) {
	if f == nil {
		return
	}
	n.forces = append(n.forces, AppliedForce{Force: f, AppliedAt: appliedAt})
}

// Update advances the node to now.
// Expired forces are dropped, every remaining force contributes its delta to
// the velocity exactly once, the position is integrated with the new velocity,
// and finally every child is updated to the same time.
func (n *Node) Update(now float64) {
	if len(n.forces) > 0 {
		kept := n.forces[:0]
		for _, af := range n.forces {
			if af.Force.IsExpired(now) {
				continue
			}
			n.velocity.AddWith(af.Force.ComputeDelta(af.AppliedAt, n.lastUpdate, now, n.mass))
			kept = append(kept, af)
		}
		clear(n.forces[len(kept):])
		n.forces = kept
	}

	n.pos.AddWith(n.velocity.ScalarMul((now - n.lastUpdate) / 1000))
	n.lastUpdate = now

	for _, child := range n.children {
		child.Update(now)
	}
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the visited node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// String returns a string representation of the node.
func (n *Node) String() string {
	return fmt.Sprintf("Node[%d] Pos: %s Vel: %s Mass: %.2f Forces: %d Children: %d",
		n.id, n.Position(), n.velocity, n.mass, len(n.forces), len(n.children))
}
