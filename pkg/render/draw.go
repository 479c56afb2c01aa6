package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"particle-sim/pkg/physics"
	"particle-sim/pkg/quadtree"
	"particle-sim/pkg/view"
)

var (
	leafColor    = color.RGBA{60, 90, 140, 255}
	summaryColor = color.RGBA{220, 80, 60, 160}
)

// treeDrawer draws particles as filled circles and, with the overlay on, leaf boxes and
// the summary of every internal node.
type treeDrawer struct {
	screen    *ebiten.Image
	particles []physics.Particle
	viewport  view.Viewport
	overlay   bool
	color     color.RGBA
}

func (d *treeDrawer) VisitNode(t *quadtree.Tree) {
	if !d.overlay {
		return
	}
	x, y := d.viewport.ToScreen(t.Summary().Pos)
	vector.StrokeCircle(d.screen, float32(x), float32(y), 3, 1, summaryColor, true)
}

func (d *treeDrawer) VisitLeafNode(t *quadtree.Tree, _ []int) {
	if !d.overlay {
		return
	}
	sx, sy := d.viewport.Scale()
	w, h := t.Width()*sx, t.Height()*sy
	x, y := d.viewport.ToScreen(t.Center())
	vector.StrokeRect(d.screen, float32(x-w/2), float32(y-h/2), float32(w), float32(h), 1, leafColor, false)
}

func (d *treeDrawer) VisitElement(index int) {
	p := d.particles[index]
	x, y := d.viewport.ToScreen(p.Pos)
	vector.DrawFilledCircle(d.screen, float32(x), float32(y), float32(p.Radius), d.color, true)
}

var shortcutLines = []string{
	"P - Pause/Resume",
	"N - Step (when paused)",
	"G - Quadtree overlay",
	"H - Hide shortcuts",
	"Q / Esc - Quit",
}

func (g *Game) drawShortcuts(screen *ebiten.Image) {
	if g.shortcuts == nil {
		g.shortcuts = shortcutPanel(shortcutLines)
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(12, 24)
	screen.DrawImage(g.shortcuts, op)
}

func shortcutPanel(lines []string) *ebiten.Image {
	pad := 6
	charW := 7
	lineH := 14
	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	w := maxLen*charW + pad*2
	h := len(lines)*lineH + pad*2

	panel := ebiten.NewImage(w, h)
	panel.Fill(color.RGBA{10, 10, 20, 200})
	for i, l := range lines {
		text.Draw(panel, l, basicfont.Face7x13, pad, pad+(i+1)*lineH-2, color.RGBA{220, 220, 220, 255})
	}
	return panel
}
