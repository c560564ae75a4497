package simulation

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"forcetree/internal/common"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Errors returned while creating and driving a Simulation.
var (
	ErrInvalidTick   = errors.New("tick must be positive")
	ErrNotRoot       = errors.New("node has a parent")
	ErrDuplicateRoot = errors.New("node is already a root of this simulation")
	ErrTimeReversed  = errors.New("time cannot move backwards")
)

// DefaultTick is one frame at 60 frames per second.
const DefaultTick = time.Second / 60

// Options configures a Simulation.
type Options struct {
	Scale common.Scale  // applied by Simulation.Vector
	Tick  time.Duration // time advanced by each Step
	Start float64       // initial clock, milliseconds
	IDs   IDAllocator   // defaults to a fresh SequentialIDs
}

// Simulation holds a set of independent node trees sharing one clock.
// It is not safe for concurrent use; separate simulations may run in parallel.
type Simulation struct {
	id    string
	scale common.Scale
	ids   IDAllocator
	tick  time.Duration
	now   float64 // milliseconds
	roots []*Node
	log   *zap.Logger
}

// Stats summarises the state of every node in a simulation.
type Stats struct {
	Nodes         int
	PendingForces int
	MeanSpeed     float64
	SpeedStdDev   float64
}

// NewSimulation creates an empty simulation.
func NewSimulation(opts Options, logger *zap.Logger) (*Simulation, error) {
	if opts.Tick == 0 {
		opts.Tick = DefaultTick
	}
	if opts.Tick < 0 {
		return nil, fmt.Errorf("%w, got %s", ErrInvalidTick, opts.Tick)
	}
	if opts.IDs == nil {
		opts.IDs = &SequentialIDs{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	id := fmt.Sprintf("sim-%s", uuid.NewString()[:8])
	return &Simulation{
		id:    id,
		scale: opts.Scale,
		ids:   opts.IDs,
		tick:  opts.Tick,
		now:   opts.Start,
		log:   logger.With(zap.String("simulation", id)),
	}, nil
}

// ID returns the simulation identifier, "sim-" followed by eight hex digits.
func (s *Simulation) ID() string { return s.id }

// Scale returns the scale applied by Vector.
func (s *Simulation) Scale() common.Scale { return s.scale }

// Tick returns the time advanced by each Step.
func (s *Simulation) Tick() time.Duration { return s.tick }

// Time returns the simulation clock in milliseconds.
func (s *Simulation) Time() float64 { return s.now }

// Vector creates a vector scaled by the simulation's scale.
func (s *Simulation) Vector(x, y float64) common.Vector2D {
	return s.scale.Vector(x, y)
}

// NewNode creates a node with the next identifier, stamped with the current
// simulation time. Options may override the start time.
func (s *Simulation) NewNode(opts ...NodeOption) *Node {
	opts = append([]NodeOption{WithStartTime(s.now)}, opts...)
	return NewNode(s.ids.Next(), opts...)
}

// AddRoot registers a parentless node to be updated on every step.
func (s *Simulation) AddRoot(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	if !n.IsRoot() {
		return fmt.Errorf("node %d: %w", n.ID(), ErrNotRoot)
	}
	for _, r := range s.roots {
		if r == n {
			return fmt.Errorf("node %d: %w", n.ID(), ErrDuplicateRoot)
		}
	}
	s.roots = append(s.roots, n)
	return nil
}

// Roots returns the registered root nodes.
func (s *Simulation) Roots() []*Node {
	out := make([]*Node, len(s.roots))
	copy(out, s.roots)
	return out
}

// Nodes returns every node of every tree in pre-order.
func (s *Simulation) Nodes() []*Node {
	var out []*Node
	for _, r := range s.roots {
		r.Walk(func(n *Node) bool {
			out = append(out, n)
			return true
		})
	}
	return out
}

// Objects returns every node as an Object.
func (s *Simulation) Objects() []Object {
	nodes := s.Nodes()
	out := make([]Object, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}

// Step advances the clock by one tick and updates every tree.
func (s *Simulation) Step() {
	s.advance(s.now + float64(s.tick)/float64(time.Millisecond))
}

// StepTo updates every tree to the given time in milliseconds.
func (s *Simulation) StepTo(now float64) error {
	if now < s.now {
		return fmt.Errorf("%w: %.3f < %.3f", ErrTimeReversed, now, s.now)
	}
	s.advance(now)
	return nil
}

func (s *Simulation) advance(now float64) {
	s.now = now
	for _, r := range s.roots {
		r.Update(now)
	}
}

// Run executes the given number of steps, stopping early if ctx is cancelled.
func (s *Simulation) Run(ctx context.Context, steps int) error {
	s.log.Info("starting simulation",
		zap.Int("steps", steps),
		zap.Duration("tick", s.tick),
		zap.Float64("scale", s.scale.Factor()),
		zap.Int("roots", len(s.roots)),
	)
	s.logState()

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			s.log.Warn("simulation interrupted", zap.Int("step", i), zap.Error(err))
			return fmt.Errorf("simulation %s interrupted at step %d: %w", s.id, i, err)
		}
		s.Step()
		if ce := s.log.Check(zap.DebugLevel, "step"); ce != nil {
			ce.Write(zap.Int("step", i+1), zap.Float64("time_ms", s.now))
			s.logState()
		}
	}

	stats := s.Stats()
	s.log.Info("simulation finished",
		zap.Float64("time_ms", s.now),
		zap.Int("nodes", stats.Nodes),
		zap.Int("pending_forces", stats.PendingForces),
		zap.Float64("mean_speed", stats.MeanSpeed),
		zap.Uint64("checksum", s.Checksum()),
	)
	return nil
}

func (s *Simulation) logState() {
	for _, n := range s.Nodes() {
		s.log.Debug("node",
			zap.Uint64("id", n.ID()),
			zap.Int("depth", n.Depth()),
			zap.Stringer("position", n.Position()),
			zap.Stringer("velocity", n.Velocity()),
			zap.Int("forces", len(n.forces)),
		)
	}
}

// Stats computes node, force and speed statistics over every tree.
func (s *Simulation) Stats() Stats {
	nodes := s.Nodes()
	st := Stats{Nodes: len(nodes)}
	if len(nodes) == 0 {
		return st
	}

	speeds := make([]float64, len(nodes))
	for i, n := range nodes {
		speeds[i] = n.Velocity().Len()
		st.PendingForces += len(n.forces)
	}
	if len(speeds) == 1 {
		st.MeanSpeed = speeds[0]
		return st
	}
	st.MeanSpeed, st.SpeedStdDev = stat.MeanStdDev(speeds, nil)
	return st
}

// Checksum fingerprints the identity, absolute position and velocity of every
// node. Two simulations built and stepped the same way have equal checksums.
func (s *Simulation) Checksum() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 40)
	for _, n := range s.Nodes() {
		pos, vel := n.Position(), n.Velocity()
		buf = binary.LittleEndian.AppendUint64(buf[:0], n.ID())
		for _, f := range [...]float64{pos.X, pos.Y, vel.X, vel.Y} {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
		}
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}

// RunAll runs independent simulations concurrently and returns the first error.
// The simulations must not share nodes.
func RunAll(ctx context.Context, steps int, sims ...*Simulation) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sim := range sims {
		g.Go(func() error {
			return sim.Run(gctx, steps)
		})
	}
	return g.Wait()
}
