package physics

// Vec2 is a 2D vector. All operations return new values.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// LenSq returns x*x + y*y.
func (v Vec2) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y
}
