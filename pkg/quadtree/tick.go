package quadtree

import (
	"particle-sim/pkg/physics"
)

// siblings lists, per child slot, the three other slots whose summaries stand in for
// their particles while that child is ticked.
var siblings = [4][3]int{
	topLeft:     {topRight, bottomLeft, bottomRight},
	topRight:    {topLeft, bottomLeft, bottomRight},
	bottomLeft:  {topRight, topLeft, bottomRight},
	bottomRight: {topRight, bottomLeft, topLeft},
}

// Tick advances every particle in the tree by dt under gravitational constant g.
//
// Particles sharing a leaf attract each other exactly. Every other particle is felt
// through the summaries of the sibling quadrants met on the way down from the root.
// Velocities and positions in particles are updated in place.
func (t *Tree) Tick(particles []physics.Particle, g, dt float64) {
	t.tick(particles, g, dt, nil)
}

func (t *Tree) tick(particles []physics.Particle, g, dt float64, distant []physics.Particle) {
	if t.children != nil {
		for slot, child := range t.children {
			summaries := make([]physics.Particle, len(distant), len(distant)+3)
			copy(summaries, distant)
			for _, s := range siblings[slot] {
				summaries = append(summaries, t.children[s].summary)
			}
			child.tick(particles, g, dt, summaries)
		}
		return
	}

	// all deltas come from the state before this leaf is advanced
	deltas := make([]physics.Vec2, len(t.indices))
	for i, pi := range t.indices {
		self := particles[pi]
		var dv physics.Vec2
		for j, pj := range t.indices {
			if i == j {
				continue
			}
			dv = dv.Add(physics.Pull(self, particles[pj], g, dt))
		}
		for _, s := range distant {
			dv = dv.Add(physics.Pull(self, s, g, dt))
		}
		deltas[i] = dv
	}

	for i, pi := range t.indices {
		physics.IntegrateEulerSymplectic(&particles[pi], deltas[i], dt)
	}
}
