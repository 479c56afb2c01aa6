package physics

// Pull returns the velocity change that other imparts on self over dt.
//
// The acceleration g*m/r² scales the raw displacement rather than a unit vector, so the
// effective magnitude falls off as 1/r. Coincident positions divide by zero and yield
// Inf or NaN components.
func Pull(self, other Particle, g, dt float64) Vec2 {
	dir := other.Pos.Sub(self.Pos)
	a := g * other.Mass / dir.LenSq()
	return dir.Mul(a).Mul(dt)
}
