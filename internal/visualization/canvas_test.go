package visualization

import (
	"fmt"
	"image/color"
	"testing"

	"forcetree/internal/common"
	"forcetree/internal/simulation"

	"github.com/stretchr/testify/require"
)

var (
	p0 = color.RGBA{R: 1, A: 255}
	p1 = color.RGBA{R: 2, A: 255}
	p2 = color.RGBA{R: 3, A: 255}
	l0 = color.RGBA{G: 1, A: 255}
	l1 = color.RGBA{G: 2, A: 255}
)

type recordingCanvas struct {
	path
	ops []string
}

func (c *recordingCanvas) Stroke(clr color.Color) {
	for _, s := range c.take() {
		c.ops = append(c.ops, fmt.Sprintf("line %g,%g->%g,%g %v", s.x0, s.y0, s.x1, s.y1, clr))
	}
}

func (c *recordingCanvas) FillArc(x, y, radius float64, clr color.Color) {
	c.ops = append(c.ops, fmt.Sprintf("point %g,%g r%g %v", x, y, radius, clr))
}

func line(x0, y0, x1, y1 float64, clr color.Color) string {
	return fmt.Sprintf("line %g,%g->%g,%g %v", x0, y0, x1, y1, clr)
}

func point(x, y float64, clr color.Color) string {
	return fmt.Sprintf("point %g,%g r%g %v", x, y, PointRadius, clr)
}

func TestDrawVector(t *testing.T) {
	v := common.Vector2D{X: 3, Y: 4}
	origin := common.Vector2D{X: 1, Y: 1}

	tests := []struct {
		name      string
		point, ln color.Color
		want      []string
	}{
		{"line and point", p0, l0, []string{line(1, 1, 3, 4, l0), point(3, 4, p0)}},
		{"point only", p0, nil, []string{point(3, 4, p0)}},
		{"line only", nil, l0, []string{line(1, 1, 3, 4, l0)}},
		{"nothing", nil, nil, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := &recordingCanvas{}
			DrawVector(c, v, origin, test.point, test.ln)
			require.Equal(t, test.want, c.ops)
		})
	}
}

func buildTree(t *testing.T) *simulation.Node {
	t.Helper()
	root := simulation.NewNode(1)
	a, err := root.AddChild(simulation.NewNode(2, simulation.WithPosition(common.Vector2D{X: 1})))
	require.NoError(t, err)
	_, err = a.AddChild(simulation.NewNode(3, simulation.WithPosition(common.Vector2D{X: 1, Y: 1})))
	require.NoError(t, err)
	_, err = root.AddChild(simulation.NewNode(4, simulation.WithPosition(common.Vector2D{Y: 2})))
	require.NoError(t, err)
	return root
}

func TestShowDebug(t *testing.T) {
	root := buildTree(t)
	c := &recordingCanvas{}

	ShowDebug(c, root, []color.Color{p0, p1, p2}, []color.Color{l0, l1}, 5)

	require.Equal(t, []string{
		point(0, 0, p0),
		line(0, 0, 1, 0, l1), point(1, 0, p1),
		line(1, 0, 2, 1, l1), point(2, 1, p2),
		line(0, 0, 0, 2, l1), point(0, 2, p1),
	}, c.ops)
}

func TestShowDebug_DepthLimit(t *testing.T) {
	root := buildTree(t)

	c := &recordingCanvas{}
	ShowDebug(c, root, []color.Color{p0}, []color.Color{l0}, 0)
	require.Equal(t, []string{
		point(0, 0, p0),
		line(0, 0, 1, 0, l0), point(1, 0, p0),
		line(0, 0, 0, 2, l0), point(0, 2, p0),
	}, c.ops)

	c = &recordingCanvas{}
	ShowDebug(c, root, []color.Color{p0}, []color.Color{l0}, -1)
	require.Empty(t, c.ops)
}

func TestShowDebug_NoStyles(t *testing.T) {
	c := &recordingCanvas{}
	ShowDebug(c, buildTree(t), nil, nil, 3)
	require.Empty(t, c.ops)
}

func TestPath_LineToWithoutMoveTo(t *testing.T) {
	var p path
	p.LineTo(1, 1)
	p.LineTo(2, 2)
	require.Equal(t, []segment{{1, 1, 2, 2}}, p.take())
	require.Empty(t, p.take())
}
