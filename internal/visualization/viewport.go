package visualization

import (
	"math"

	"forcetree/internal/simulation"
)

// Viewport maps world coordinates onto a screen so that every object fits.
type Viewport struct {
	Padding float64 // screen units kept free on every side

	width, height float64
	scale         float64
	offsetX       float64
	offsetY       float64
}

// NewViewport creates a viewport with the given padding.
func NewViewport(padding float64) *Viewport {
	return &Viewport{Padding: padding, scale: 1}
}

// Scale returns the number of screen units per world unit.
func (v *Viewport) Scale() float64 { return v.scale }

// Fit recomputes scale and offset so the absolute positions of objects fill a
// screen of the given size while keeping the aspect ratio.
func (v *Viewport) Fit(objects []simulation.Object, screenWidth, screenHeight int) {
	v.width, v.height = float64(screenWidth), float64(screenHeight)

	if len(objects) == 0 {
		v.center(0, 0, 1)
		return
	}

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, obj := range objects {
		pos := obj.Position()
		if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) {
			continue
		}
		minX, maxX = math.Min(minX, pos.X), math.Max(maxX, pos.X)
		minY, maxY = math.Min(minY, pos.Y), math.Max(maxY, pos.Y)
	}

	if minX == math.MaxFloat64 { // no finite positions
		v.center(0, 0, 1)
		return
	}

	worldWidth := maxX - minX
	worldHeight := maxY - minY
	if worldWidth == 0 && worldHeight == 0 {
		v.center(minX, minY, 1)
		return
	}
	// A line of points along one axis still has a usable extent on the other.
	if worldWidth == 0 {
		worldWidth = 1
	}
	if worldHeight == 0 {
		worldHeight = 1
	}

	scaleX := (v.width - 2*v.Padding) / worldWidth
	scaleY := (v.height - 2*v.Padding) / worldHeight
	scale := math.Min(scaleX, scaleY)
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}

	v.center((minX+maxX)/2, (minY+maxY)/2, scale)
}

func (v *Viewport) center(worldX, worldY, scale float64) {
	v.scale = scale
	v.offsetX = v.width/2 - worldX*scale
	v.offsetY = v.height/2 - worldY*scale
}

// ToScreen converts world coordinates to screen coordinates.
func (v *Viewport) ToScreen(worldX, worldY float64) (float64, float64) {
	return worldX*v.scale + v.offsetX, worldY*v.scale + v.offsetY
}
