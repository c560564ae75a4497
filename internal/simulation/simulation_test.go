package simulation

import (
	"context"
	"strings"
	"testing"
	"time"

	"forcetree/internal/common"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSimulation(t *testing.T, opts Options) *Simulation {
	t.Helper()
	sim, err := NewSimulation(opts, zap.NewNop())
	require.NoError(t, err)
	return sim
}

// buildOrbit creates a root with a permanent push and a child with a
// short-lived volatile kick.
func buildOrbit(t *testing.T, sim *Simulation) {
	t.Helper()
	root := sim.NewNode(WithPosition(sim.Vector(10, 10)), WithMass(2))
	root.AddForce(NewForce(sim.Vector(0.5, 0), 0), 0)
	child, err := root.AddChild(sim.NewNode(WithPosition(sim.Vector(3, 0))))
	require.NoError(t, err)
	child.AddForce(NewForce(sim.Vector(0, 1), 0, Volatile()), 0)
	require.NoError(t, sim.AddRoot(root))
}

func TestNewSimulation(t *testing.T) {
	sim := newTestSimulation(t, Options{})
	require.Equal(t, DefaultTick, sim.Tick())
	require.Equal(t, 1.0, sim.Scale().Factor())
	require.True(t, strings.HasPrefix(sim.ID(), "sim-"))

	_, err := NewSimulation(Options{Tick: -time.Millisecond}, nil)
	require.ErrorIs(t, err, ErrInvalidTick)
}

func TestSimulation_NewNodeAllocatesIDsPerSimulation(t *testing.T) {
	a := newTestSimulation(t, Options{})
	b := newTestSimulation(t, Options{})

	require.Equal(t, uint64(1), a.NewNode().ID())
	require.Equal(t, uint64(2), a.NewNode().ID())
	require.Equal(t, uint64(1), b.NewNode().ID())
}

func TestSimulation_NewNodeStampsClock(t *testing.T) {
	sim := newTestSimulation(t, Options{Start: 250})
	require.Equal(t, 250.0, sim.NewNode().LastUpdate())
	require.Equal(t, 10.0, sim.NewNode(WithStartTime(10)).LastUpdate())
}

func TestSimulation_VectorUsesScale(t *testing.T) {
	scale, err := common.NewScale(3)
	require.NoError(t, err)
	sim := newTestSimulation(t, Options{Scale: scale})

	require.Equal(t, common.Vector2D{X: 3, Y: 6}, sim.Vector(1, 2))
}

func TestSimulation_AddRoot(t *testing.T) {
	sim := newTestSimulation(t, Options{})
	root := sim.NewNode()
	child, err := root.AddChild(sim.NewNode())
	require.NoError(t, err)

	require.NoError(t, sim.AddRoot(root))
	require.ErrorIs(t, sim.AddRoot(root), ErrDuplicateRoot)
	require.ErrorIs(t, sim.AddRoot(child), ErrNotRoot)
	require.ErrorIs(t, sim.AddRoot(nil), ErrNilNode)
	require.Len(t, sim.Roots(), 1)
	require.Len(t, sim.Nodes(), 2)
	require.Len(t, sim.Objects(), 2)
}

func TestSimulation_StepAdvancesClock(t *testing.T) {
	sim := newTestSimulation(t, Options{Tick: 100 * time.Millisecond})
	root := sim.NewNode(WithVelocity(common.Vector2D{X: 10}))
	require.NoError(t, sim.AddRoot(root))

	sim.Step()
	sim.Step()

	require.InDelta(t, 200.0, sim.Time(), 1e-9)
	require.InDelta(t, 200.0, root.LastUpdate(), 1e-9)
	require.InDelta(t, 2.0, root.Position().X, 1e-9)
}

func TestSimulation_StepTo(t *testing.T) {
	sim := newTestSimulation(t, Options{})
	require.NoError(t, sim.AddRoot(sim.NewNode()))

	require.NoError(t, sim.StepTo(500))
	require.Equal(t, 500.0, sim.Time())
	require.ErrorIs(t, sim.StepTo(499), ErrTimeReversed)
}

func TestSimulation_RunAndStats(t *testing.T) {
	sim := newTestSimulation(t, Options{Tick: 10 * time.Millisecond})
	buildOrbit(t, sim)

	require.NoError(t, sim.Run(context.Background(), 50))
	require.InDelta(t, 500.0, sim.Time(), 1e-9)

	stats := sim.Stats()
	require.Equal(t, 2, stats.Nodes)
	// The volatile kick on the child is gone, the permanent push remains.
	require.Equal(t, 1, stats.PendingForces)
	require.Greater(t, stats.MeanSpeed, 0.0)
}

func TestSimulation_StatsEmptyAndSingle(t *testing.T) {
	sim := newTestSimulation(t, Options{})
	require.Equal(t, Stats{}, sim.Stats())

	require.NoError(t, sim.AddRoot(sim.NewNode(WithVelocity(common.Vector2D{X: 3, Y: 4}))))
	stats := sim.Stats()
	require.Equal(t, 5.0, stats.MeanSpeed)
	require.Equal(t, 0.0, stats.SpeedStdDev)
}

func TestSimulation_RunStopsOnCancel(t *testing.T) {
	sim := newTestSimulation(t, Options{})
	buildOrbit(t, sim)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sim.Run(ctx, 10)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0.0, sim.Time())
}

func TestSimulation_ChecksumIsDeterministic(t *testing.T) {
	a := newTestSimulation(t, Options{Tick: 16 * time.Millisecond})
	b := newTestSimulation(t, Options{Tick: 16 * time.Millisecond})
	buildOrbit(t, a)
	buildOrbit(t, b)
	require.Equal(t, a.Checksum(), b.Checksum())

	require.NoError(t, RunAll(context.Background(), 120, a, b))
	require.Equal(t, a.Checksum(), b.Checksum())

	before := a.Checksum()
	a.Step()
	require.NotEqual(t, before, a.Checksum())
}
