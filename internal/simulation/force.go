package simulation

import (
	"fmt"
	"math"

	"forcetree/internal/common"
)

// NoExpiry marks a force that stays active until its owner removes it.
const NoExpiry = -1.0

// Force is a directional push with an optional validity window.
// All times are in milliseconds.
type Force struct {
	vector   common.Vector2D
	start    float64
	expire   float64 // NoExpiry when the force has no duration
	volatile bool
}

// ForceOption configures a Force at construction.
type ForceOption func(*Force)

// WithDuration makes the force expire duration milliseconds after its start time.
// A negative or NaN duration leaves the force without an expiry.
func WithDuration(duration float64) ForceOption {
	return func(f *Force) {
		if duration >= 0 {
			f.expire = f.start + duration
		}
	}
}

// Volatile makes the force single-use: it expires as soon as its first delta is computed.
func Volatile() ForceOption {
	return func(f *Force) {
		f.volatile = true
	}
}

// NewForce creates a force applying vector from start onwards.
func NewForce(vector common.Vector2D, start float64, opts ...ForceOption) *Force {
	f := &Force{
		vector: vector,
		start:  start,
		expire: NoExpiry,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Vector returns the direction and magnitude of the force.
func (f *Force) Vector() common.Vector2D { return f.vector }

// Start returns the time the force was created for.
func (f *Force) Start() float64 { return f.start }

// IsVolatile reports whether the force is single-use.
func (f *Force) IsVolatile() bool { return f.volatile }

// ExpireTime returns the absolute expiry time, if the force has one.
func (f *Force) ExpireTime() (float64, bool) {
	if f.expire < 0 {
		return 0, false
	}
	return f.expire, true
}

// IsExpired reports whether the force has an expiry time and now has reached it.
func (f *Force) IsExpired(now float64) bool {
	if f.expire < 0 {
		return false
	}
	return f.expire <= now
}

// ComputeDelta returns the velocity change contributed between t1 and t2,
// both measured relative to skew (the time the force was applied):
//
//	vector * ((t2-skew)² - (t1-skew)²) / 1000 / mass
//
// A mass that is not positive counts as 1. Computing the delta of a
// volatile force expires it at t2.
func (f *Force) ComputeDelta(skew, t1, t2, mass float64) common.Vector2D {
	if !(mass > 0) {
		mass = 1
	}
	t1 -= skew
	t2 -= skew

	if f.volatile {
		f.expire = math.Max(t2+skew, 0)
	}

	return f.vector.ScalarMul((t2*t2)/1000/mass - (t1*t1)/1000/mass)
}

// String returns a string representation of the force.
func (f *Force) String() string {
	expire := "never"
	if at, ok := f.ExpireTime(); ok {
		expire = fmt.Sprintf("%.1f", at)
	}
	return fmt.Sprintf("Force[%s start=%.1f expire=%s volatile=%t]", f.vector, f.start, expire, f.volatile)
}
