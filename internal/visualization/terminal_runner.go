package visualization

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"forcetree/internal/simulation"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// TerminalRunner steps a simulation in real time and draws it onto a tcell screen.
type TerminalRunner struct {
	sim      *simulation.Simulation
	screen   tcell.Screen
	viewport *Viewport
	opts     RendererOptions
	log      *zap.Logger
}

// NewTerminalRunner creates a runner for an initialised screen.
func NewTerminalRunner(sim *simulation.Simulation, screen tcell.Screen, opts RendererOptions, logger *zap.Logger) *TerminalRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TerminalRunner{
		sim:      sim,
		screen:   screen,
		viewport: NewViewport(1),
		opts:     opts.withDefaults(),
		log:      logger,
	}
}

// Frame draws the current state of the simulation and shows it.
func (t *TerminalRunner) Frame() {
	t.screen.Clear()
	w, h := t.screen.Size()
	t.viewport.Fit(t.sim.Objects(), w, h)

	canvas := NewTerminalCanvas(t.screen, t.viewport)
	for _, root := range t.sim.Roots() {
		ShowDebug(canvas, root, t.opts.PointStyles, t.opts.LineStyles, t.opts.Depth)
	}

	status := fmt.Sprintf(" t=%.0fms nodes=%d  q:quit ", t.sim.Time(), len(t.sim.Nodes()))
	style := tcell.StyleDefault.Foreground(toTcell(color.White))
	for i, r := range status {
		t.screen.SetContent(i, 0, r, nil, style)
	}
	t.screen.Show()
}

// Run steps and draws once per tick until the step limit, ctx is done, or the
// user presses q, Escape or Ctrl-C.
func (t *TerminalRunner) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 8)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(t.sim.Tick())
	defer ticker.Stop()

	t.Frame()
	for steps := 0; t.opts.MaxSteps == 0 || steps < t.opts.MaxSteps; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					t.log.Info("terminal run stopped by user", zap.Int("steps", steps))
					return nil
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		case <-ticker.C:
			t.sim.Step()
			steps++
			t.Frame()
		}
	}
	return nil
}
