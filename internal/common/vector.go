package common

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector2D represents a point or a displacement in the plane.
// Methods with a pointer receiver mutate the vector and return it for chaining,
// methods with a value receiver leave it untouched and return a new value.
type Vector2D struct {
	X, Y float64
}

// NewVector2D creates an unscaled vector. NaN components become zero.
// Use Scale.Vector to construct a vector in scaled world units.
func NewVector2D(x, y float64) Vector2D {
	return Vector2D{X: sanitize(x), Y: sanitize(y)}
}

// FromAngle creates a vector of the given magnitude pointing at angle (radians).
func FromAngle(angle, magnitude float64) Vector2D {
	var v Vector2D
	v.Shove(angle, magnitude)
	return v
}

func (v Vector2D) r2() r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}

func fromR2(p r2.Vec) Vector2D {
	return Vector2D{X: p.X, Y: p.Y}
}

// Translate adds other to v in place.
func (v *Vector2D) Translate(other Vector2D) *Vector2D {
	*v = fromR2(r2.Add(v.r2(), other.r2()))
	return v
}

// Shove adds a polar-specified vector (magnitude, angle) to v in place.
func (v *Vector2D) Shove(angle, magnitude float64) *Vector2D {
	v.X += magnitude * math.Cos(angle)
	v.Y += magnitude * math.Sin(angle)
	return v
}

// Rotate translates v by origin and then rotates it by angle around (0, 0).
// The translation happens before the rotation matrix is applied, so the
// rotation is performed in the translated frame.
func (v *Vector2D) Rotate(angle float64, origin Vector2D) *Vector2D {
	v.Translate(origin)
	sin, cos := math.Sincos(angle)
	x := v.X*cos - v.Y*sin
	y := v.X*sin + v.Y*cos
	v.X, v.Y = x, y
	return v
}

// RotateAbout rotates v by angle around the coordinate origin.
func (v *Vector2D) RotateAbout(angle float64) *Vector2D {
	return v.Rotate(angle, Vector2D{})
}

// ScalarMul returns v multiplied by factor.
func (v Vector2D) ScalarMul(factor float64) Vector2D {
	return fromR2(r2.Scale(factor, v.r2()))
}

// DotProd returns the dot product of v and other.
func (v Vector2D) DotProd(other Vector2D) float64 {
	return r2.Dot(v.r2(), other.r2())
}

// Len returns the Euclidean length of v.
func (v Vector2D) Len() float64 {
	return r2.Norm(v.r2())
}

// IsZero reports whether both components are exactly zero.
func (v Vector2D) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Norm returns the unit vector pointing in the direction of v.
// The zero vector has no direction, so Norm returns the zero vector for it.
func (v Vector2D) Norm() Vector2D {
	if v.IsZero() {
		return Vector2D{}
	}
	return fromR2(r2.Unit(v.r2()))
}

// Add returns the sum of v and other.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return fromR2(r2.Add(v.r2(), other.r2()))
}

// AddWith adds other to v in place.
func (v *Vector2D) AddWith(other Vector2D) *Vector2D {
	v.X += other.X
	v.Y += other.Y
	return v
}

// Sub returns v minus other.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return fromR2(r2.Sub(v.r2(), other.r2()))
}

// AngleTo returns the signed angle in radians from v to other, in [-π, π].
// The angle is negative when other lies clockwise of v. If either vector
// is zero the angle is undefined and AngleTo returns 0. Parallel vectors
// give exactly 0, antiparallel ones exactly π.
func (v Vector2D) AngleTo(other Vector2D) float64 {
	if v.IsZero() || other.IsZero() {
		return 0
	}

	cross := r2.Cross(v.r2(), other.r2())
	dot := v.Norm().DotProd(other.Norm())
	if cross == 0 {
		if dot < 0 {
			return math.Pi
		}
		return 0
	}

	var angle float64
	if dot == 0 {
		angle = math.Pi / 2
	} else {
		// Floating drift can push the product of two unit vectors just past ±1.
		angle = math.Acos(math.Max(-1, math.Min(1, dot)))
	}

	if cross < 0 {
		return -angle
	}
	return angle
}

// String returns a string representation of the vector.
func (v Vector2D) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y)
}

func sanitize(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}
