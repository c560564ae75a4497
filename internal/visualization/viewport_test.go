package visualization

import (
	"testing"

	"forcetree/internal/common"
	"forcetree/internal/simulation"

	"github.com/stretchr/testify/require"
)

func objectsAt(points ...common.Vector2D) []simulation.Object {
	objects := make([]simulation.Object, len(points))
	for i, p := range points {
		objects[i] = simulation.NewNode(uint64(i+1), simulation.WithPosition(p))
	}
	return objects
}

func requireScreen(t *testing.T, v *Viewport, worldX, worldY, wantX, wantY float64) {
	t.Helper()
	x, y := v.ToScreen(worldX, worldY)
	require.InDelta(t, wantX, x, 1e-9)
	require.InDelta(t, wantY, y, 1e-9)
}

func TestViewport_FitKeepsAspectRatio(t *testing.T) {
	v := NewViewport(50)
	v.Fit(objectsAt(common.Vector2D{}, common.Vector2D{X: 100, Y: 50}), 300, 200)

	require.InDelta(t, 2.0, v.Scale(), 1e-9)
	requireScreen(t, v, 0, 0, 50, 50)
	requireScreen(t, v, 100, 50, 250, 150)
}

func TestViewport_FitLimitedByNarrowAxis(t *testing.T) {
	v := NewViewport(0)
	v.Fit(objectsAt(common.Vector2D{}, common.Vector2D{X: 10, Y: 10}), 100, 50)

	require.InDelta(t, 5.0, v.Scale(), 1e-9)
	requireScreen(t, v, 5, 5, 50, 25)
}

func TestViewport_Degenerate(t *testing.T) {
	t.Run("no objects", func(t *testing.T) {
		v := NewViewport(10)
		v.Fit(nil, 80, 40)
		require.Equal(t, 1.0, v.Scale())
		requireScreen(t, v, 0, 0, 40, 20)
	})

	t.Run("single point is centred", func(t *testing.T) {
		v := NewViewport(10)
		v.Fit(objectsAt(common.Vector2D{X: 7, Y: -3}), 80, 40)
		require.Equal(t, 1.0, v.Scale())
		requireScreen(t, v, 7, -3, 40, 20)
	})

	t.Run("horizontal line", func(t *testing.T) {
		v := NewViewport(0)
		v.Fit(objectsAt(common.Vector2D{}, common.Vector2D{X: 20}), 40, 40)
		require.InDelta(t, 2.0, v.Scale(), 1e-9)
		requireScreen(t, v, 10, 0, 20, 20)
	})
}
