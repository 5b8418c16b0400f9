// Package geom resolves snap points between component-local and world space.
//
// A [Transform] places a component in the room: its local geometry is scaled
// component-wise, rotated by an [Euler] triple and then translated. Rotation
// follows the intrinsic XYZ convention, so the rotation matrix is
//
//	R = Rx(x) · Ry(y) · Rz(z)
//
// and a local point p maps to world space as
//
//	world = R · (scale ∘ p) + position
//
// # Core Functions
//
//   - [WorldPosition]: local point → world point
//   - [LocalPosition]: world point → local point (inverse of WorldPosition)
//   - [WorldRotation]: local Euler → world Euler (component rotation first)
//   - [LocalRotation]: world Euler → local Euler (inverse of WorldRotation)
//
// Angles are radians. Use [Deg] and [Euler.Degrees] at file and display
// boundaries, where degrees are easier to read.
//
// # Gimbal Lock
//
// Euler extraction near y = ±90° is ambiguous. Extraction pins z to zero in
// that case and performs no further correction; callers comparing rotations
// should compare [Euler.Matrix] values rather than raw angles.
//
// # Concurrency
//
// All functions are pure and safe for concurrent use.
package geom
