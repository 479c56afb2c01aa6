// Package render draws a running simulation in an ebiten window.
package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"k8s.io/klog/v2"

	"particle-sim/pkg/simulation"
	"particle-sim/pkg/view"
)

// Options configures the window.
type Options struct {
	Width, Height int
	// Overlay starts with the quadtree overlay shown.
	Overlay    bool
	Foreground color.RGBA
	Background color.RGBA
}

// Game adapts a Simulator to ebiten. Each Update advances the simulation one tick and
// each Draw walks the tree of the latest tick.
type Game struct {
	sim  *simulation.Simulator
	opts Options

	paused           bool
	overlay          bool
	shortcutsVisible bool

	shortcuts *ebiten.Image
}

func NewGame(sim *simulation.Simulator, opts Options) *Game {
	return &Game{
		sim:              sim,
		opts:             opts,
		overlay:          opts.Overlay,
		shortcutsVisible: true,
	}
}

// Run opens the window and blocks until it is closed or a tick fails.
func Run(sim *simulation.Simulator, opts Options) error {
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle("Particles - " + sim.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(sim.TicksPerSecond())
	klog.Infof("Starting %q with %d particles", sim.Name, len(sim.Particles))
	return ebiten.RunGame(NewGame(sim, opts))
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.overlay = !g.overlay
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.shortcutsVisible = !g.shortcutsVisible
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	// the first frame always ticks so there is a tree to draw
	if g.paused && g.sim.Tree() != nil {
		if !inpututil.IsKeyJustPressed(ebiten.KeyN) {
			return nil
		}
	}
	if err := g.sim.Step(); err != nil {
		return fmt.Errorf("tick %d: %w", g.sim.Ticks(), err)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.opts.Background)

	tree := g.sim.Tree()
	if tree == nil {
		return
	}
	b := g.sim.Bounds()
	size := screen.Bounds().Size()
	d := &treeDrawer{
		screen:    screen,
		particles: g.sim.Particles,
		viewport:  view.Fit(b.Center(), b.Width(), b.Height(), float64(size.X), float64(size.Y)),
		overlay:   g.overlay,
		color:     g.opts.Foreground,
	}
	tree.Visit(d)

	status := fmt.Sprintf("TPS %.0f  FPS %.0f  tick %d  particles %d",
		ebiten.ActualTPS(), ebiten.ActualFPS(), g.sim.Ticks(), len(g.sim.Particles))
	if n := g.sim.NonFinite(); n > 0 {
		status += fmt.Sprintf("  non-finite %d", n)
	}
	if g.paused {
		status += "  PAUSED"
	}
	ebitenutil.DebugPrint(screen, status)

	if g.shortcutsVisible {
		g.drawShortcuts(screen)
	}
}

// Layout follows the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
