package quadtree

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"particle-sim/pkg/physics"
)

func build(t testing.TB, particles []physics.Particle, center physics.Vec2, width, height float64, capacity int) *Tree {
	t.Helper()
	tree, err := New(center, width, height, capacity)
	require.NoError(t, err)
	for i := range particles {
		require.NoError(t, tree.Insert(particles, i))
	}
	return tree
}

func randomParticles(seed int64, n int) []physics.Particle {
	rng := rand.New(rand.NewSource(seed))
	particles := make([]physics.Particle, n)
	for i := range particles {
		particles[i] = physics.Particle{
			Pos:    physics.Vec2{X: rng.Float64() * 500, Y: rng.Float64() * 100},
			Radius: 1,
			Mass:   float64(1 + rng.Intn(5)),
		}
	}
	return particles
}

// walk calls fn for every node, depth first.
func walk(t *Tree, fn func(*Tree)) {
	fn(t)
	if t.children == nil {
		return
	}
	for _, child := range t.children {
		walk(child, fn)
	}
}

func reachable(t *Tree) []int {
	var out []int
	walk(t, func(n *Tree) {
		out = append(out, n.indices...)
	})
	sort.Ints(out)
	return out
}

func TestNewRejectsZeroCapacity(t *testing.T) {
	_, err := New(physics.Vec2{}, 10, 10, 0)
	assert.True(t, errors.Is(err, ErrInvalidCapacity))

	_, err = New(physics.Vec2{}, 10, 10, -3)
	assert.True(t, errors.Is(err, ErrInvalidCapacity))
}

func TestNewIsEmptyLeaf(t *testing.T) {
	center := physics.Vec2{X: 3, Y: 4}
	tree, err := New(center, 20, 10, 8)
	require.NoError(t, err)

	assert.True(t, tree.IsLeaf())
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, center, tree.Center())
	assert.Equal(t, 20.0, tree.Width())
	assert.Equal(t, 10.0, tree.Height())
	assert.Equal(t, physics.Particle{Pos: center}, tree.Summary())
	assert.Equal(t, 8, cap(tree.indices))
}

func TestInsertRejectsInvalidIndex(t *testing.T) {
	particles := randomParticles(1, 3)
	tree, err := New(physics.Vec2{}, 10, 10, 4)
	require.NoError(t, err)

	for _, index := range []int{-1, 3, 100} {
		err := tree.Insert(particles, index)
		assert.True(t, errors.Is(err, ErrIndexOutOfRange), "index %d", index)
	}
	assert.Equal(t, 0, tree.Len())
	assert.Empty(t, tree.indices)
}

func TestMassConservation(t *testing.T) {
	particles := randomParticles(7, 200)

	var total float64
	for _, p := range particles {
		total += p.Mass
	}

	forward := build(t, particles, physics.Vec2{X: 250, Y: 50}, 500, 100, 4)
	assert.Equal(t, total, forward.Summary().Mass)

	reversed, err := New(physics.Vec2{X: 250, Y: 50}, 500, 100, 4)
	require.NoError(t, err)
	for i := len(particles) - 1; i >= 0; i-- {
		require.NoError(t, reversed.Insert(particles, i))
	}
	assert.Equal(t, total, reversed.Summary().Mass)

	walk(forward, func(n *Tree) {
		var sum float64
		for _, i := range reachable(n) {
			sum += particles[i].Mass
		}
		assert.Equal(t, sum, n.Summary().Mass)
	})
}

func TestSummaryPositionIsUnweightedMean(t *testing.T) {
	particles := []physics.Particle{
		{Pos: physics.Vec2{X: 0, Y: 0}, Mass: 1},
		{Pos: physics.Vec2{X: 9, Y: 3}, Mass: 100},
		{Pos: physics.Vec2{X: 3, Y: 6}, Mass: 0.5},
	}
	tree := build(t, particles, physics.Vec2{X: 5, Y: 5}, 10, 10, 10)

	s := tree.Summary()
	assert.InDelta(t, 4.0, s.Pos.X, 1e-12)
	assert.InDelta(t, 3.0, s.Pos.Y, 1e-12)
	assert.Equal(t, 101.5, s.Mass)
	assert.Equal(t, 3, tree.Len())
}

func TestSummaryFirstInsertTakesPosition(t *testing.T) {
	particles := []physics.Particle{{Pos: physics.Vec2{X: -7, Y: 2}, Mass: 3}}
	tree := build(t, particles, physics.Vec2{}, 10, 10, 1)

	assert.Equal(t, particles[0].Pos, tree.Summary().Pos)
	assert.Equal(t, 3.0, tree.Summary().Mass)
}

func TestLeafCapacityInvariant(t *testing.T) {
	particles := randomParticles(3, 500)
	const capacity = 4
	tree := build(t, particles, physics.Vec2{X: 250, Y: 50}, 500, 100, capacity)

	walk(tree, func(n *Tree) {
		if n.IsLeaf() {
			assert.LessOrEqual(t, len(n.indices), capacity)
			return
		}
		assert.Empty(t, n.indices)
		for _, child := range n.children {
			assert.NotNil(t, child)
		}
	})

	walk(tree, func(n *Tree) {
		assert.Equal(t, n.Len(), len(reachable(n)))
	})

	all := reachable(tree)
	require.Len(t, all, len(particles))
	for i, index := range all {
		assert.Equal(t, i, index)
	}
}

func TestSplitKeepsEveryIndex(t *testing.T) {
	particles := []physics.Particle{
		{Pos: physics.Vec2{X: -10, Y: -10}, Mass: 1},
		{Pos: physics.Vec2{X: 10, Y: -10}, Mass: 1},
		{Pos: physics.Vec2{X: -10, Y: 10}, Mass: 1},
		{Pos: physics.Vec2{X: 10, Y: 10}, Mass: 1},
		{Pos: physics.Vec2{X: -20, Y: -20}, Mass: 1},
	}
	tree, err := New(physics.Vec2{}, 100, 100, 4)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, tree.Insert(particles, i))
	}
	require.True(t, tree.IsLeaf())

	require.NoError(t, tree.Insert(particles, 4))
	require.False(t, tree.IsLeaf())

	assert.Equal(t, []int{0, 4}, tree.children[topLeft].indices)
	assert.Equal(t, []int{1}, tree.children[topRight].indices)
	assert.Equal(t, []int{2}, tree.children[bottomLeft].indices)
	assert.Equal(t, []int{3}, tree.children[bottomRight].indices)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, reachable(tree))
	assert.Equal(t, 5, tree.Len())
}

func TestSplitRedistributionOrder(t *testing.T) {
	// all held indices land in one quadrant, so their order there shows the order in
	// which they were moved down
	particles := []physics.Particle{
		{Pos: physics.Vec2{X: -1, Y: -1}, Mass: 1},
		{Pos: physics.Vec2{X: -2, Y: -2}, Mass: 1},
		{Pos: physics.Vec2{X: -3, Y: -3}, Mass: 1},
		{Pos: physics.Vec2{X: -4, Y: -4}, Mass: 1},
		{Pos: physics.Vec2{X: 5, Y: 5}, Mass: 1},
	}
	tree := build(t, particles, physics.Vec2{}, 100, 100, 4)

	assert.Equal(t, []int{0, 3, 2, 1}, tree.children[topLeft].indices)
	assert.Equal(t, []int{4}, tree.children[bottomRight].indices)
}

func TestSplitChildGeometry(t *testing.T) {
	particles := randomParticles(5, 3)
	tree := build(t, particles, physics.Vec2{X: 10, Y: 20}, 40, 18, 2)
	require.False(t, tree.IsLeaf())

	want := map[int]physics.Vec2{
		topLeft:     {X: 0, Y: 15.5},
		topRight:    {X: 20, Y: 15.5},
		bottomLeft:  {X: 0, Y: 24.5},
		bottomRight: {X: 20, Y: 24.5},
	}
	for slot, center := range want {
		child := tree.children[slot]
		assert.Equal(t, center, child.Center())
		assert.InDelta(t, 20.0, child.Width(), 1e-6)
		assert.InDelta(t, 9.0, child.Height(), 1e-6)
		assert.Greater(t, child.Width(), 20.0)
		assert.Greater(t, child.Height(), 9.0)
		assert.Equal(t, 2, child.Capacity())
	}
}

func TestCloseParticlesSplitApart(t *testing.T) {
	particles := []physics.Particle{
		{Pos: physics.Vec2{X: -5, Y: -5}, Mass: 1},
		{Pos: physics.Vec2{X: 5, Y: 5}, Mass: 1},
		{Pos: physics.Vec2{X: 3.1, Y: 3.1}, Mass: 1},
		{Pos: physics.Vec2{X: 3.3, Y: 3.3}, Mass: 1},
	}
	tree := build(t, particles, physics.Vec2{}, 10, 10, 1)

	s := tree.Stats()
	assert.Equal(t, 1, s.MaxLeafLen)
	assert.Less(t, s.MaxDepth, 10)
	assert.Equal(t, []int{0, 1, 2, 3}, reachable(tree))
}

func TestClusterKeepsLeafCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	particles := make([]physics.Particle, 200)
	for i := range particles {
		particles[i] = physics.Particle{
			Pos:  physics.Vec2{X: 40 + rng.Float64()*0.5, Y: 60 + rng.Float64()*0.5},
			Mass: 1,
		}
	}
	tree := build(t, particles, physics.Vec2{X: 50, Y: 50}, 100, 100, 2)

	s := tree.Stats()
	assert.LessOrEqual(t, s.MaxLeafLen, 2)
	assert.Less(t, s.MaxDepth, MaxDepth)
	assert.Len(t, reachable(tree), len(particles))
}

func TestBoundaryRouting(t *testing.T) {
	particles := []physics.Particle{
		{Pos: physics.Vec2{X: 0, Y: 0}, Mass: 1},
		{Pos: physics.Vec2{X: -1, Y: -1}, Mass: 1},
		{Pos: physics.Vec2{X: 0, Y: 0}, Mass: 1},
	}
	tree := build(t, particles, physics.Vec2{}, 10, 10, 1)

	// moved down during the split: strict comparison sends it bottom-right
	assert.Equal(t, []int{0}, tree.children[bottomRight].indices)
	// routed through the internal node: inclusive comparison sends it top-left
	assert.Equal(t, 2, tree.children[topLeft].Len())
	assert.Contains(t, reachable(tree.children[topLeft]), 2)
}

func TestOutsideBoxIsAccepted(t *testing.T) {
	particles := []physics.Particle{
		{Pos: physics.Vec2{X: 1000, Y: -1000}, Mass: 1},
		{Pos: physics.Vec2{X: -1000, Y: 1000}, Mass: 1},
	}
	tree := build(t, particles, physics.Vec2{}, 10, 10, 1)

	assert.Equal(t, []int{0}, tree.children[topRight].indices)
	assert.Equal(t, []int{1}, tree.children[bottomLeft].indices)
}

func TestNaNRoutesBottomRight(t *testing.T) {
	nan := math.NaN()
	particles := []physics.Particle{
		{Pos: physics.Vec2{X: -1, Y: -1}, Mass: 1},
		{Pos: physics.Vec2{X: nan, Y: nan}, Mass: 1},
	}
	tree := build(t, particles, physics.Vec2{}, 10, 10, 1)

	assert.Equal(t, []int{0}, tree.children[topLeft].indices)
	assert.Equal(t, []int{1}, tree.children[bottomRight].indices)
}

func TestStats(t *testing.T) {
	particles := []physics.Particle{
		{Pos: physics.Vec2{X: -10, Y: -10}, Mass: 1},
		{Pos: physics.Vec2{X: -20, Y: -20}, Mass: 1},
		{Pos: physics.Vec2{X: 10, Y: 10}, Mass: 1},
	}
	tree := build(t, particles, physics.Vec2{}, 100, 100, 2)

	assert.Equal(t, Stats{
		Nodes:       5,
		Leaves:      4,
		EmptyLeaves: 2,
		MaxDepth:    1,
		MaxLeafLen:  2,
	}, tree.Stats())
}

func TestCoincidentParticlesStopAtMaxDepth(t *testing.T) {
	// outside the box, so every quadrant center on the way down lies above and left of
	// them and the two routing rules agree
	particles := []physics.Particle{
		{Pos: physics.Vec2{X: 5.3, Y: 5.7}, Mass: 1},
		{Pos: physics.Vec2{X: 5.3, Y: 5.7}, Mass: 1},
	}
	tree := build(t, particles, physics.Vec2{}, 10, 10, 1)

	s := tree.Stats()
	assert.Equal(t, MaxDepth, s.MaxDepth)
	assert.Equal(t, 2, s.MaxLeafLen)
	assert.Equal(t, []int{0, 1}, reachable(tree))
}
