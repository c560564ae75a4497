package visualization

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const strokeWidth = 1.5

// EbitenCanvas draws onto an ebiten image through a viewport.
type EbitenCanvas struct {
	path
	dst      *ebiten.Image
	viewport *Viewport
}

// NewEbitenCanvas creates a canvas drawing onto dst.
func NewEbitenCanvas(dst *ebiten.Image, viewport *Viewport) *EbitenCanvas {
	return &EbitenCanvas{dst: dst, viewport: viewport}
}

// Stroke draws every segment of the current path and clears it.
func (c *EbitenCanvas) Stroke(clr color.Color) {
	for _, s := range c.take() {
		x0, y0 := c.viewport.ToScreen(s.x0, s.y0)
		x1, y1 := c.viewport.ToScreen(s.x1, s.y1)
		vector.StrokeLine(c.dst, float32(x0), float32(y0), float32(x1), float32(y1), strokeWidth, clr, true)
	}
}

// FillArc draws a filled circle. The radius is in screen units so points stay
// visible at any zoom.
func (c *EbitenCanvas) FillArc(x, y, radius float64, clr color.Color) {
	sx, sy := c.viewport.ToScreen(x, y)
	vector.DrawFilledCircle(c.dst, float32(sx), float32(sy), float32(radius), clr, true)
}
