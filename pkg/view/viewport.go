// Package view maps simulation coordinates to screen pixels.
package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"particle-sim/pkg/physics"
)

// Viewport is an affine world-to-screen transform.
type Viewport struct {
	m mgl64.Mat3
}

// Fit returns a viewport that centers the world box on the screen. Both axes are divided
// by the larger world extent and then stretched to the screen width and height
// respectively, so the aspect ratio follows the window.
func Fit(worldCenter physics.Vec2, worldWidth, worldHeight float64, screenWidth, screenHeight float64) Viewport {
	factor := math.Max(worldWidth, worldHeight)
	if !(factor > 0) || math.IsInf(factor, 0) {
		factor = 1
	}
	m := mgl64.Translate2D(screenWidth/2, screenHeight/2).
		Mul3(mgl64.Scale2D(screenWidth/factor, screenHeight/factor)).
		Mul3(mgl64.Translate2D(-worldCenter.X, -worldCenter.Y))
	return Viewport{m: m}
}

// ToScreen maps a world position to pixels.
func (v Viewport) ToScreen(p physics.Vec2) (x, y float64) {
	s := v.m.Mul3x1(mgl64.Vec3{p.X, p.Y, 1})
	return s[0], s[1]
}

// Scale returns the pixels per world unit along each axis.
func (v Viewport) Scale() (sx, sy float64) {
	return v.m.At(0, 0), v.m.At(1, 1)
}
