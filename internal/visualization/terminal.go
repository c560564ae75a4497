package visualization

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
)

const (
	lineRune  = '·'
	pointRune = '●'
)

// TerminalCanvas draws onto a tcell screen, one world point per cell.
// Lines are rasterised with Bresenham's algorithm; points become a single rune.
type TerminalCanvas struct {
	path
	screen   tcell.Screen
	viewport *Viewport
}

// NewTerminalCanvas creates a canvas drawing onto screen.
func NewTerminalCanvas(screen tcell.Screen, viewport *Viewport) *TerminalCanvas {
	return &TerminalCanvas{screen: screen, viewport: viewport}
}

// Stroke rasterises the current path, clipped to the screen, and clears it.
func (c *TerminalCanvas) Stroke(clr color.Color) {
	style := tcell.StyleDefault.Foreground(toTcell(clr))
	w, h := c.screen.Size()
	for _, s := range c.take() {
		sx0, sy0 := c.viewport.ToScreen(s.x0, s.y0)
		sx1, sy1 := c.viewport.ToScreen(s.x1, s.y1)
		sx0, sy0, sx1, sy1, ok := clipSegment(sx0, sy0, sx1, sy1, float64(w-1), float64(h-1))
		if !ok {
			continue
		}
		for _, p := range rasterLine(round(sx0), round(sy0), round(sx1), round(sy1)) {
			c.screen.SetContent(p[0], p[1], lineRune, nil, style)
		}
	}
}

// FillArc marks the cell under (x, y); the radius is below cell resolution.
// Points off the screen are not drawn.
func (c *TerminalCanvas) FillArc(x, y, _ float64, clr color.Color) {
	sx, sy := c.viewport.ToScreen(x, y)
	w, h := c.screen.Size()
	if !(sx >= 0 && sx <= float64(w-1) && sy >= 0 && sy <= float64(h-1)) {
		return
	}
	c.screen.SetContent(round(sx), round(sy), pointRune, nil, tcell.StyleDefault.Foreground(toTcell(clr)))
}

func round(f float64) int {
	return int(math.Round(f))
}

// clipSegment clips a line to the rectangle [0, maxX] x [0, maxY] using the
// Liang-Barsky parametrisation. ok is false when nothing of the line is
// visible or an endpoint is not finite.
func clipSegment(x0, y0, x1, y1, maxX, maxY float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	if !finite(x0, y0, x1, y1) || maxX < 0 || maxY < 0 {
		return 0, 0, 0, 0, false
	}

	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	for _, edge := range [...][2]float64{{-dx, x0}, {dx, maxX - x0}, {-dy, y0}, {dy, maxY - y0}} {
		p, q := edge[0], edge[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, r)
		}
	}

	cx0, cy0 = x0+t0*dx, y0+t0*dy
	cx1, cy1 = x0+t1*dx, y0+t1*dy
	if !finite(cx0, cy0, cx1, cy1) {
		return 0, 0, 0, 0, false
	}
	return cx0, cy0, cx1, cy1, true
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func toTcell(clr color.Color) tcell.Color {
	r, g, b, _ := clr.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

// rasterLine returns the cells on the line from (x0, y0) to (x1, y1), both ends included.
func rasterLine(x0, y0, x1, y1 int) [][2]int {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	cells := make([][2]int, 0, max(dx, -dy)+1)
	err := dx + dy
	for {
		cells = append(cells, [2]int{x0, y0})
		if x0 == x1 && y0 == y1 {
			return cells
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
