package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Euler is an intrinsic XYZ rotation in radians.
type Euler struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
	Z float64 `json:"z" toml:"z"`
}

// Deg converts degrees to radians.
func Deg(d float64) float64 { return d * math.Pi / 180 }

// EulerDeg builds an Euler rotation from angles given in degrees.
func EulerDeg(x, y, z float64) Euler { return Euler{Deg(x), Deg(y), Deg(z)} }

// Degrees returns the angles of e in degrees.
func (e Euler) Degrees() Vec3 {
	const k = 180 / math.Pi
	return Vec3{e.X * k, e.Y * k, e.Z * k}
}

// Vec returns the raw angles as a Vec3.
func (e Euler) Vec() Vec3 { return Vec3(e) }

// MaxAbsDiff returns the largest per-angle absolute difference in radians.
func (e Euler) MaxAbsDiff(o Euler) float64 { return Vec3(e).MaxAbsDiff(Vec3(o)) }

func (e Euler) String() string {
	d := e.Degrees()
	return fmt.Sprintf("[%.2f°, %.2f°, %.2f°]", d.X, d.Y, d.Z)
}

// gimbalThreshold is the |m13| value above which y is treated as ±90°.
const gimbalThreshold = 0.9999999

// Matrix returns the 3×3 rotation matrix Rx·Ry·Rz for e.
func (e Euler) Matrix() *mat.Dense {
	sx, cx := math.Sincos(e.X)
	sy, cy := math.Sincos(e.Y)
	sz, cz := math.Sincos(e.Z)

	rx := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, cx, -sx,
		0, sx, cx,
	})
	ry := mat.NewDense(3, 3, []float64{
		cy, 0, sy,
		0, 1, 0,
		-sy, 0, cy,
	})
	rz := mat.NewDense(3, 3, []float64{
		cz, -sz, 0,
		sz, cz, 0,
		0, 0, 1,
	})

	var rxy, r mat.Dense
	rxy.Mul(rx, ry)
	r.Mul(&rxy, rz)
	return &r
}

// EulerFromMatrix extracts intrinsic XYZ angles from a pure rotation matrix.
// Near gimbal lock the z angle is pinned to zero.
func EulerFromMatrix(m mat.Matrix) Euler {
	m11, m12, m13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m22, m23 := m.At(1, 1), m.At(1, 2)
	m32, m33 := m.At(2, 1), m.At(2, 2)

	y := math.Asin(clamp(m13, -1, 1))
	if math.Abs(m13) < gimbalThreshold {
		return Euler{
			X: math.Atan2(-m23, m33),
			Y: y,
			Z: math.Atan2(-m12, m11),
		}
	}
	return Euler{X: math.Atan2(m32, m22), Y: y}
}

// SameRotation reports whether a and b describe the same orientation within
// tol, comparing rotation matrices element-wise so that equivalent Euler
// triples compare equal.
func SameRotation(a, b Euler, tol float64) bool {
	return mat.EqualApprox(a.Matrix(), b.Matrix(), tol)
}

// mulVec returns m · v.
func mulVec(m mat.Matrix, v Vec3) Vec3 {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, v.Slice()))
	return Vec3{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
