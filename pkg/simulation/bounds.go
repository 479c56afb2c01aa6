package simulation

import (
	"errors"

	"particle-sim/pkg/physics"
)

var ErrNoParticles = errors.New("no particles")

// Bounds is an axis aligned box.
type Bounds struct {
	Min, Max physics.Vec2
}

// BoundingBox returns the smallest box containing every particle position. NaN
// coordinates never win a comparison and so only show up when the first particle has
// them.
func BoundingBox(particles []physics.Particle) (Bounds, error) {
	if len(particles) == 0 {
		return Bounds{}, ErrNoParticles
	}
	b := Bounds{Min: particles[0].Pos, Max: particles[0].Pos}
	for _, p := range particles[1:] {
		if p.Pos.X < b.Min.X {
			b.Min.X = p.Pos.X
		}
		if p.Pos.X > b.Max.X {
			b.Max.X = p.Pos.X
		}
		if p.Pos.Y < b.Min.Y {
			b.Min.Y = p.Pos.Y
		}
		if p.Pos.Y > b.Max.Y {
			b.Max.Y = p.Pos.Y
		}
	}
	return b, nil
}

func (b Bounds) Width() float64  { return b.Max.X - b.Min.X }
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

func (b Bounds) Center() physics.Vec2 {
	return physics.Vec2{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}
