package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"forcetree/internal/common"
	"forcetree/internal/logging"
	"forcetree/internal/simulation"

	"gopkg.in/yaml.v3"
)

// Errors returned by Validate.
var (
	ErrScaleConflict = errors.New("scale: factor and dimensions are mutually exclusive")
	ErrIncomplete    = errors.New("scale: reference and dimension must both be set")
	ErrDuplicateName = errors.New("duplicate node name")
)

// Config describes a scenario: how to scale it, how to step it and which
// node trees to build.
type Config struct {
	Scale ScaleConfig   `yaml:"scale"`
	Tick  time.Duration `yaml:"tick"`
	Steps int           `yaml:"steps"`
	Log   LogConfig     `yaml:"log"`
	Nodes []NodeConfig  `yaml:"nodes"`
}

// ScaleConfig holds either an explicit factor or the dimensions to derive one from.
type ScaleConfig struct {
	Factor    *float64     `yaml:"factor,omitempty"`
	Reference *common.Rect `yaml:"reference,omitempty"`
	Dimension *common.Rect `yaml:"dimension,omitempty"`
	Constant  *float64     `yaml:"constant,omitempty"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level    string           `yaml:"level"`
	Encoding logging.Encoding `yaml:"encoding"`
}

// Point is an [x, y] pair in unscaled scenario units.
type Point [2]float64

// NodeConfig describes one node, its forces and its subtree.
// A zero mass means the default mass of 1.
type NodeConfig struct {
	Name     string        `yaml:"name,omitempty"`
	Position Point         `yaml:"position"`
	Velocity Point         `yaml:"velocity"`
	Mass     float64       `yaml:"mass,omitempty"`
	Forces   []ForceConfig `yaml:"forces,omitempty"`
	Children []NodeConfig  `yaml:"children,omitempty"`
}

// ForceConfig describes a force applied at At milliseconds.
// Without a duration the force never expires.
type ForceConfig struct {
	Vector   Point    `yaml:"vector"`
	At       float64  `yaml:"at"`
	Duration *float64 `yaml:"duration,omitempty"`
	Volatile bool     `yaml:"volatile,omitempty"`
}

// Default returns a scenario with no nodes, stepped at 60 ticks per second.
func Default() *Config {
	return &Config{
		Tick:  simulation.DefaultTick,
		Steps: 600,
		Log: LogConfig{
			Level:    "info",
			Encoding: logging.EncodingConsole,
		},
	}
}

// Load reads a YAML scenario file.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario: %w", err)
	}
	defer file.Close()

	c, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return c, nil
}

// Decode reads a YAML scenario on top of Default and validates it.
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the scenario for values the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("%w, got %s", simulation.ErrInvalidTick, c.Tick)
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", c.Steps)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := c.ResolveScale(); err != nil {
		return err
	}

	names := make(map[string]struct{})
	var check func(nodes []NodeConfig) error
	check = func(nodes []NodeConfig) error {
		for _, n := range nodes {
			if n.Name != "" {
				if _, ok := names[n.Name]; ok {
					return fmt.Errorf("%w: %s", ErrDuplicateName, n.Name)
				}
				names[n.Name] = struct{}{}
			}
			if n.Mass < 0 {
				return fmt.Errorf("node %q: mass must not be negative, got %v", n.Name, n.Mass)
			}
			if err := check(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return check(c.Nodes)
}

// ResolveScale turns the scale section into a common.Scale.
// Without a scale section the identity scale is used.
func (c *Config) ResolveScale() (common.Scale, error) {
	s := c.Scale
	hasDims := s.Reference != nil || s.Dimension != nil
	switch {
	case s.Factor != nil && hasDims:
		return common.Scale{}, ErrScaleConflict
	case hasDims:
		if s.Reference == nil || s.Dimension == nil {
			return common.Scale{}, ErrIncomplete
		}
		constant := 1.0
		if s.Constant != nil {
			constant = *s.Constant
		}
		return common.ScaleFromDimensions(*s.Reference, *s.Dimension, constant)
	case s.Factor != nil:
		return common.NewScale(*s.Factor)
	default:
		return common.DefaultScale(), nil
	}
}

// Options returns simulation options for this scenario.
func (c *Config) Options() (simulation.Options, error) {
	scale, err := c.ResolveScale()
	if err != nil {
		return simulation.Options{}, err
	}
	return simulation.Options{Scale: scale, Tick: c.Tick}, nil
}

// Build creates the scenario's node trees in sim and registers the roots.
// Vectors are scaled by the simulation. Named nodes are returned by name.
func (c *Config) Build(sim *simulation.Simulation) (map[string]*simulation.Node, error) {
	named := make(map[string]*simulation.Node)
	for _, nc := range c.Nodes {
		root := c.buildNode(sim, nc, named)
		if err := sim.AddRoot(root); err != nil {
			return nil, fmt.Errorf("failed to add root %q: %w", nc.Name, err)
		}
	}
	return named, nil
}

func (c *Config) buildNode(sim *simulation.Simulation, nc NodeConfig, named map[string]*simulation.Node) *simulation.Node {
	n := sim.NewNode(
		simulation.WithPosition(sim.Vector(nc.Position[0], nc.Position[1])),
		simulation.WithVelocity(sim.Vector(nc.Velocity[0], nc.Velocity[1])),
		simulation.WithMass(nc.Mass),
	)
	if nc.Name != "" {
		named[nc.Name] = n
	}

	for _, fc := range nc.Forces {
		var opts []simulation.ForceOption
		if fc.Duration != nil {
			opts = append(opts, simulation.WithDuration(*fc.Duration))
		}
		if fc.Volatile {
			opts = append(opts, simulation.Volatile())
		}
		n.AddForce(simulation.NewForce(sim.Vector(fc.Vector[0], fc.Vector[1]), fc.At, opts...), fc.At)
	}

	for _, cc := range nc.Children {
		// Freshly built children are roots, so attaching them cannot fail.
		_, _ = n.AddChild(c.buildNode(sim, cc, named))
	}
	return n
}
