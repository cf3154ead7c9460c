// Package vec3 provides a single-precision 3-vector used throughout the
// DXT1 block codec as both a weighted RGB color and an error gradient.
package vec3

import "math"

// Vec3 is a single-precision 3-vector with component arithmetic.
type Vec3 struct {
	X, Y, Z float32
}

// Splat returns a vector with all three components set to c.
func Splat(c float32) Vec3 {
	return Vec3{c, c, c}
}

// New returns the vector (x, y, z).
func New(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// Add returns a + b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Mul returns the component-wise product a * b.
func (a Vec3) Mul(b Vec3) Vec3 {
	return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

// Div returns the component-wise quotient a / b.
func (a Vec3) Div(b Vec3) Vec3 {
	return Vec3{a.X / b.X, a.Y / b.Y, a.Z / b.Z}
}

// Scale returns a * k.
func (a Vec3) Scale(k float32) Vec3 {
	return Vec3{a.X * k, a.Y * k, a.Z * k}
}

// ScaleDiv returns a / k.
func (a Vec3) ScaleDiv(k float32) Vec3 {
	return Vec3{a.X / k, a.Y / k, a.Z / k}
}

// Length2 returns the squared length of the vector.
func (a Vec3) Length2() float32 {
	return a.X*a.X + a.Y*a.Y + a.Z*a.Z
}

// Length returns the length of the vector.
func (a Vec3) Length() float32 {
	return float32(math.Sqrt(float64(a.Length2())))
}

// Sum returns the sum of the components.
func (a Vec3) Sum() float32 {
	return a.X + a.Y + a.Z
}

// Clamp clamps each component of a to [minimum, maximum] and returns the result.
func (a Vec3) Clamp(minimum, maximum Vec3) Vec3 {
	return Vec3{
		clamp1(a.X, minimum.X, maximum.X),
		clamp1(a.Y, minimum.Y, maximum.Y),
		clamp1(a.Z, minimum.Z, maximum.Z),
	}
}

func clamp1(x, mini, maxi float32) float32 {
	if x < mini {
		return mini
	}
	if x > maxi {
		return maxi
	}
	return x
}

// Min returns the component-wise minimum of a and b.
func Min(a, b Vec3) Vec3 {
	return Vec3{min32(a.X, b.X), min32(a.Y, b.Y), min32(a.Z, b.Z)}
}

// Max returns the component-wise maximum of a and b.
func Max(a, b Vec3) Vec3 {
	return Vec3{max32(a.X, b.X), max32(a.Y, b.Y), max32(a.Z, b.Z)}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Lerp linearly interpolates between a and b. Returns a when t = 0 and b when t = 1.
func Lerp(a, b Vec3, t float32) Vec3 {
	return a.Scale(1 - t).Add(b.Scale(t))
}

// Finite reports whether all three components are finite (not NaN or Inf).
func (a Vec3) Finite() bool {
	return isFinite(a.X) && isFinite(a.Y) && isFinite(a.Z)
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
