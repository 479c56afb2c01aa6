package physics

// --- Particle ---

// Particle is a point mass. It is identified by its index in the buffer that owns it.
type Particle struct {
	Pos    Vec2
	Vel    Vec2
	Radius float64
	Mass   float64
}
