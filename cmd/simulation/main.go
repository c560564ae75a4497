package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"forcetree/internal/config"
	"forcetree/internal/logging"
	"forcetree/internal/simulation"
	"forcetree/internal/visualization"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

const (
	windowWidth  = 1024
	windowHeight = 768
)

func main() {
	configPath := flag.String("config", "scenarios/orbit.yaml", "scenario file")
	mode := flag.String("mode", "headless", "headless, window or term")
	steps := flag.Int("steps", -1, "number of steps, overrides the scenario when >= 0")
	logLevel := flag.String("log-level", "", "log level, overrides the scenario")
	parallel := flag.Int("parallel", 1, "headless only: run this many copies of the scenario concurrently")
	depth := flag.Int("depth", 8, "levels of each tree to draw")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scenario: %v\n", err)
		os.Exit(1)
	}
	if *steps >= 0 {
		cfg.Steps = *steps
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *mode, *parallel, *depth, logger); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, mode string, parallel, depth int, logger *zap.Logger) error {
	if mode != "headless" && parallel > 1 {
		return fmt.Errorf("-parallel is only supported in headless mode")
	}

	sims := make([]*simulation.Simulation, 0, max(parallel, 1))
	for i := 0; i < max(parallel, 1); i++ {
		sim, err := newSimulation(cfg, logger)
		if err != nil {
			return err
		}
		sims = append(sims, sim)
	}

	renderOpts := visualization.RendererOptions{Depth: depth, MaxSteps: cfg.Steps}

	switch mode {
	case "headless":
		if err := simulation.RunAll(ctx, cfg.Steps, sims...); err != nil {
			return err
		}
		for _, sim := range sims[1:] {
			if sim.Checksum() != sims[0].Checksum() {
				logger.Warn("parallel runs diverged",
					zap.String("simulation", sim.ID()),
					zap.Uint64("checksum", sim.Checksum()),
					zap.Uint64("expected", sims[0].Checksum()),
				)
			}
		}
		for _, n := range sims[0].Nodes() {
			fmt.Println(n)
		}
		return nil

	case "window":
		ebiten.SetWindowSize(windowWidth, windowHeight)
		ebiten.SetWindowTitle("forcetree")
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
		ebiten.SetTPS(tpsFor(sims[0]))
		if err := ebiten.RunGame(visualization.NewRenderer(sims[0], renderOpts)); err != nil {
			return fmt.Errorf("window mode: %w", err)
		}
		return nil

	case "term":
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to create terminal screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to initialise terminal screen: %w", err)
		}
		defer screen.Fini()
		return visualization.NewTerminalRunner(sims[0], screen, renderOpts, logger).Run(ctx)

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func newSimulation(cfg *config.Config, logger *zap.Logger) (*simulation.Simulation, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	sim, err := simulation.NewSimulation(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulation: %w", err)
	}
	if _, err := cfg.Build(sim); err != nil {
		return nil, fmt.Errorf("failed to build scenario: %w", err)
	}
	return sim, nil
}

// tpsFor matches ebiten's update rate to the simulation tick so that one
// Update is one tick of simulated time.
func tpsFor(sim *simulation.Simulation) int {
	tps := int(1e9 / sim.Tick().Nanoseconds())
	if tps < 1 {
		return 1
	}
	return tps
}
