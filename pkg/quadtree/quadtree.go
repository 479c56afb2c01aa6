// Package quadtree indexes particles of an externally owned buffer by position and
// advances them with a mixed exact/approximate gravity pass.
//
// A tree is built fresh for every tick: construct it over the bounding box of the
// buffer, Insert every index, Tick, then Visit to draw.
package quadtree

import (
	"errors"
	"fmt"

	"particle-sim/pkg/physics"
)

var (
	ErrInvalidCapacity = errors.New("quadtree: capacity must be at least 1")
	ErrIndexOutOfRange = errors.New("quadtree: particle index out of range")
)

// splitEpsilon inflates child quadrants, relative to the parent size, so that
// particles on a quadrant boundary are not lost to floating point noise.
const splitEpsilon = 1e-9

// MaxDepth bounds how often a node may split. Coincident particles (or NaN positions)
// can never be separated and would otherwise split forever. Leaves at MaxDepth accept
// indices beyond their capacity.
const MaxDepth = 32

// child slots
const (
	topLeft = iota
	topRight
	bottomLeft
	bottomRight
)

// Tree is a node of a particle quadtree. A node is a leaf holding particle indices until
// an insertion finds it full; it then splits once into four quadrant children.
type Tree struct {
	center   physics.Vec2
	width    float64
	height   float64
	capacity int
	depth    int

	count   int
	summary physics.Particle

	indices  []int
	children *[4]*Tree
}

// New returns an empty tree covering the box of the given size around center. The box
// is never resized and particles outside it are still accepted.
func New(center physics.Vec2, width, height float64, capacity int) (*Tree, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return newNode(center, width, height, capacity, 0), nil
}

func newNode(center physics.Vec2, width, height float64, capacity, depth int) *Tree {
	return &Tree{
		center:   center,
		width:    width,
		height:   height,
		capacity: capacity,
		depth:    depth,
		summary:  physics.Particle{Pos: center},
		indices:  make([]int, 0, capacity),
	}
}

func (t *Tree) Center() physics.Vec2 { return t.center }
func (t *Tree) Width() float64       { return t.width }
func (t *Tree) Height() float64      { return t.height }
func (t *Tree) Capacity() int        { return t.capacity }

// Len returns the number of particles inserted into this node or its descendants.
func (t *Tree) Len() int { return t.count }

// IsLeaf reports whether the node still holds indices directly.
func (t *Tree) IsLeaf() bool { return t.children == nil }

// Summary returns the aggregate particle of the node: the unweighted mean position and
// the total mass of everything inserted beneath it.
func (t *Tree) Summary() physics.Particle { return t.summary }

// Insert adds particles[index] to the tree. Only the index is stored.
func (t *Tree) Insert(particles []physics.Particle, index int) error {
	if index < 0 || index >= len(particles) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(particles))
	}
	t.insert(particles, index)
	return nil
}

func (t *Tree) insert(particles []physics.Particle, index int) {
	p := particles[index]
	t.accumulate(p)

	if t.children == nil {
		if len(t.indices) < t.capacity || t.depth >= MaxDepth {
			t.indices = append(t.indices, index)
			return
		}
		t.split(particles)
	}
	t.children[routeInclusive(t.center, p.Pos)].insert(particles, index)
}

// accumulate folds p into the running summary: mass is summed, position is the
// count-weighted mean regardless of mass.
func (t *Tree) accumulate(p physics.Particle) {
	if t.count == 0 {
		t.summary.Pos = p.Pos
		t.summary.Mass = p.Mass
		t.count = 1
		return
	}
	n := float64(t.count)
	next := float64(t.count + 1)
	c := t.summary.Pos
	t.summary.Pos = physics.Vec2{
		X: (c.X*n + p.Pos.X) / next,
		Y: (c.Y*n + p.Pos.Y) / next,
	}
	t.summary.Mass += p.Mass
	t.count++
}

// split turns a full leaf into an internal node and moves its indices into the new
// children.
func (t *Tree) split(particles []physics.Particle) {
	w := t.width * (0.5 + splitEpsilon)
	h := t.height * (0.5 + splitEpsilon)
	qw, qh := t.width/4, t.height/4
	cx, cy := t.center.X, t.center.Y
	d := t.depth + 1

	t.children = &[4]*Tree{
		topLeft:     newNode(physics.Vec2{X: cx - qw, Y: cy - qh}, w, h, t.capacity, d),
		topRight:    newNode(physics.Vec2{X: cx + qw, Y: cy - qh}, w, h, t.capacity, d),
		bottomLeft:  newNode(physics.Vec2{X: cx - qw, Y: cy + qh}, w, h, t.capacity, d),
		bottomRight: newNode(physics.Vec2{X: cx + qw, Y: cy + qh}, w, h, t.capacity, d),
	}

	held := t.indices
	t.indices = nil
	if len(held) == 0 {
		return
	}
	// first index, then the rest from the back
	t.redistribute(particles, held[0])
	for i := len(held) - 1; i > 0; i-- {
		t.redistribute(particles, held[i])
	}
}

func (t *Tree) redistribute(particles []physics.Particle, index int) {
	t.children[routeExclusive(t.center, particles[index].Pos)].insert(particles, index)
}

// routeInclusive picks the child for a new insertion. Points on the center line go
// left and top.
func routeInclusive(center, p physics.Vec2) int {
	if p.X <= center.X {
		if p.Y <= center.Y {
			return topLeft
		}
		return bottomLeft
	}
	if p.Y <= center.Y {
		return topRight
	}
	return bottomRight
}

// routeExclusive picks the child for an index moved down during a split. Points on the
// center line go right and bottom.
func routeExclusive(center, p physics.Vec2) int {
	if p.X < center.X {
		if p.Y < center.Y {
			return topLeft
		}
		return bottomLeft
	}
	if p.Y < center.Y {
		return topRight
	}
	return bottomRight
}
