package visualization

import (
	"fmt"
	"image/color"

	"forcetree/internal/simulation"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const padding = 50.0 // screen margin in pixels

var (
	backgroundColor = color.RGBA{20, 20, 28, 255}

	// DefaultPointStyles colours roots, their children and everything deeper.
	DefaultPointStyles = []color.Color{
		color.RGBA{255, 200, 0, 255},
		color.RGBA{0, 160, 255, 255},
		color.RGBA{200, 200, 200, 255},
	}
	// DefaultLineStyles colours the parent links of the first level and of everything deeper.
	DefaultLineStyles = []color.Color{
		color.RGBA{0, 160, 255, 120},
		color.RGBA{120, 120, 120, 90},
	}
)

// RendererOptions configures a Renderer.
type RendererOptions struct {
	PointStyles []color.Color
	LineStyles  []color.Color
	Depth       int // levels below each root to draw
	MaxSteps    int // stop stepping after this many ticks, 0 means never
}

func (o RendererOptions) withDefaults() RendererOptions {
	if len(o.PointStyles) == 0 {
		o.PointStyles = DefaultPointStyles
	}
	if len(o.LineStyles) == 0 {
		o.LineStyles = DefaultLineStyles
	}
	if o.Depth <= 0 {
		o.Depth = 8
	}
	return o
}

// Renderer implements ebiten.Game. Each Update advances the simulation by one
// tick; Draw renders every tree with ShowDebug.
type Renderer struct {
	sim      *simulation.Simulation
	viewport *Viewport
	opts     RendererOptions

	screenWidth  int
	screenHeight int

	steps  int
	paused bool
}

// NewRenderer creates a new Ebiten renderer for sim.
func NewRenderer(sim *simulation.Simulation, opts RendererOptions) *Renderer {
	return &Renderer{
		sim:      sim,
		viewport: NewViewport(padding),
		opts:     opts.withDefaults(),
	}
}

// Update is called every tick. Space pauses, Escape quits.
func (r *Renderer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		r.paused = !r.paused
	}

	if !r.paused && (r.opts.MaxSteps == 0 || r.steps < r.opts.MaxSteps) {
		r.sim.Step()
		r.steps++
	}

	r.viewport.Fit(r.sim.Objects(), r.screenWidth, r.screenHeight)
	return nil
}

// Draw is called every frame to render the simulation.
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	canvas := NewEbitenCanvas(screen, r.viewport)
	for _, root := range r.sim.Roots() {
		ShowDebug(canvas, root, r.opts.PointStyles, r.opts.LineStyles, r.opts.Depth)
	}

	r.drawDebugInfo(screen)
}

// Layout keeps the logical screen equal to the window size.
func (r *Renderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	r.screenWidth, r.screenHeight = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (r *Renderer) drawDebugInfo(screen *ebiten.Image) {
	stats := r.sim.Stats()
	msg := fmt.Sprintf("Time: %.0f ms  Step: %d\n", r.sim.Time(), r.steps)
	msg += fmt.Sprintf("FPS: %.1f, TPS: %.1f\n", ebiten.ActualFPS(), ebiten.ActualTPS())
	msg += fmt.Sprintf("Nodes: %d  Forces: %d  Mean speed: %.2f\n", stats.Nodes, stats.PendingForces, stats.MeanSpeed)
	msg += fmt.Sprintf("Zoom: %.3f", r.viewport.Scale())
	if r.paused {
		msg += "\n[paused]"
	}
	ebitenutil.DebugPrint(screen, msg)
}
