package physics

// IntegrateEulerSymplectic applies a velocity change and then advances the position with
// the updated velocity (semi-implicit Euler).
func IntegrateEulerSymplectic(p *Particle, dv Vec2, dt float64) {
	p.Vel = p.Vel.Add(dv)
	p.Pos = p.Pos.Add(p.Vel.Mul(dt))
}
