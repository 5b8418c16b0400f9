package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Tolerance is the absolute per-axis error accepted when two resolved points
// are compared for coincidence.
const Tolerance = 1e-4

// Vec3 is a point or direction in 3D space. Y is up.
type Vec3 struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
	Z float64 `json:"z" toml:"z"`
}

// V is a shorthand constructor for Vec3.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// One is the identity scale.
var One = Vec3{1, 1, 1}

// FromSlice builds a Vec3 from a 3-element slice. Missing elements are zero.
func FromSlice(s []float64) Vec3 {
	var v Vec3
	if len(s) > 0 {
		v.X = s[0]
	}
	if len(s) > 1 {
		v.Y = s[1]
	}
	if len(s) > 2 {
		v.Z = s[2]
	}
	return v
}

// Slice returns v as a 3-element slice.
func (v Vec3) Slice() []float64 { return []float64{v.X, v.Y, v.Z} }

func (v Vec3) r3() r3.Vec { return r3.Vec(v) }

func fromR3(v r3.Vec) Vec3 { return Vec3(v) }

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return fromR3(r3.Add(v.r3(), w.r3())) }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return fromR3(r3.Sub(v.r3(), w.r3())) }

// Scale returns v * f.
func (v Vec3) Scale(f float64) Vec3 { return fromR3(r3.Scale(f, v.r3())) }

// Mul returns the component-wise product of v and w.
func (v Vec3) Mul(w Vec3) Vec3 { return Vec3{v.X * w.X, v.Y * w.Y, v.Z * w.Z} }

// Div returns the component-wise quotient of v and w. A zero divisor yields
// zero on that axis instead of an infinity.
func (v Vec3) Div(w Vec3) Vec3 {
	return Vec3{safeDiv(v.X, w.X), safeDiv(v.Y, w.Y), safeDiv(v.Z, w.Z)}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return r3.Norm(v.r3()) }

// MaxAbsDiff returns the largest per-axis absolute difference between v and w.
// NaN on any axis propagates to the result.
func (v Vec3) MaxAbsDiff(w Vec3) float64 {
	dx, dy, dz := math.Abs(v.X-w.X), math.Abs(v.Y-w.Y), math.Abs(v.Z-w.Z)
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsNaN(dz) {
		return math.NaN()
	}
	return math.Max(dx, math.Max(dy, dz))
}

// ApproxEqual reports whether v and w agree within tol on every axis.
func (v Vec3) ApproxEqual(w Vec3, tol float64) bool {
	return v.MaxAbsDiff(w) <= tol
}

// IsFinite reports whether no component of v is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func (v Vec3) String() string {
	return fmt.Sprintf("[%.4f, %.4f, %.4f]", v.X, v.Y, v.Z)
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
