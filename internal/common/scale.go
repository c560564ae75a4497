package common

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidScale is returned when a scale factor is not a finite number.
var ErrInvalidScale = errors.New("invalid scale factor")

// Scale converts construction-time coordinates into world units.
// A Scale is applied once, when a vector is built; vectors that already
// exist are never rescaled when a different Scale comes into use.
type Scale struct {
	factor float64
	set    bool
}

// Rect is a width/height pair used to derive a Scale from screen dimensions.
type Rect struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Area returns Width*Height.
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// DefaultScale returns the identity scale.
func DefaultScale() Scale {
	return Scale{factor: 1, set: true}
}

// NewScale validates factor and returns a Scale using it.
func NewScale(factor float64) (Scale, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return Scale{}, fmt.Errorf("%w: %v", ErrInvalidScale, factor)
	}
	return Scale{factor: factor, set: true}, nil
}

// ScaleFromDimensions derives a scale from the ratio of two areas:
// constant * (dim.Width*dim.Height) / (ref.Width*ref.Height).
// It suits a fixed-size canvas; a resizable one should scale at draw time instead.
func ScaleFromDimensions(ref, dim Rect, constant float64) (Scale, error) {
	refArea := ref.Area()
	if refArea == 0 || math.IsNaN(refArea) {
		return Scale{}, fmt.Errorf("%w: reference area is %v", ErrInvalidScale, refArea)
	}
	return NewScale(constant * (dim.Area() / refArea))
}

// Factor returns the multiplier applied to constructed vectors.
// The zero Scale behaves like DefaultScale.
func (s Scale) Factor() float64 {
	if !s.set {
		return 1
	}
	return s.factor
}

// Vector creates a vector with both components multiplied by the scale factor.
// NaN components become zero.
func (s Scale) Vector(x, y float64) Vector2D {
	f := s.Factor()
	return Vector2D{X: sanitize(x) * f, Y: sanitize(y) * f}
}
