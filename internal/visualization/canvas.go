package visualization

import (
	"image/color"

	"forcetree/internal/common"
	"forcetree/internal/simulation"
)

// PointRadius is the radius of a drawn point in world units.
const PointRadius = 2.0

// Canvas is the drawing surface the simulation hands geometry to.
// Coordinates are world coordinates; implementations map them to pixels or cells.
type Canvas interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	// Stroke draws the path built since the last Stroke and clears it.
	Stroke(c color.Color)
	FillArc(x, y, radius float64, c color.Color)
}

// DrawVector draws a line from origin to v in lineStyle and a point at v in
// pointStyle. A nil style skips that part.
func DrawVector(c Canvas, v, origin common.Vector2D, pointStyle, lineStyle color.Color) {
	if lineStyle != nil {
		c.MoveTo(origin.X, origin.Y)
		c.LineTo(v.X, v.Y)
		c.Stroke(lineStyle)
	}
	if pointStyle != nil {
		c.FillArc(v.X, v.Y, PointRadius, pointStyle)
	}
}

// ShowDebug draws node and up to depth levels of its descendants: a point per
// node and a line from every parent to each child. Level i is drawn with the
// i-th entry of each style list; once a list runs out its last entry is reused.
func ShowDebug(c Canvas, node *simulation.Node, pointStyles, lineStyles []color.Color, depth int) {
	if depth < 0 {
		return
	}
	DrawVector(c, node.Position(), common.Vector2D{}, first(pointStyles), nil)
	showLevel(c, node, pointStyles, lineStyles, depth)
}

func showLevel(c Canvas, node *simulation.Node, pointStyles, lineStyles []color.Color, depth int) {
	if depth < 0 {
		return
	}
	depth--

	pos := node.Position()
	pointStyles, lineStyles = rest(pointStyles), rest(lineStyles)

	for _, child := range node.Children() {
		DrawVector(c, child.Position(), pos, first(pointStyles), first(lineStyles))
		showLevel(c, child, pointStyles, lineStyles, depth)
	}
}

func first(styles []color.Color) color.Color {
	if len(styles) == 0 {
		return nil
	}
	return styles[0]
}

// rest drops the head of styles while more than one entry remains.
func rest(styles []color.Color) []color.Color {
	if len(styles) > 1 {
		return styles[1:]
	}
	return styles
}

// segment is a straight line in world coordinates.
type segment struct {
	x0, y0, x1, y1 float64
}

// path collects MoveTo/LineTo calls into segments until they are stroked.
type path struct {
	x, y     float64
	started  bool
	segments []segment
}

func (p *path) MoveTo(x, y float64) {
	p.x, p.y = x, y
	p.started = true
}

func (p *path) LineTo(x, y float64) {
	if p.started {
		p.segments = append(p.segments, segment{p.x, p.y, x, y})
	}
	p.x, p.y = x, y
	p.started = true
}

// take returns the collected segments and resets the path.
func (p *path) take() []segment {
	segs := p.segments
	p.segments = nil
	p.started = false
	return segs
}
