package geom

import "gonum.org/v1/gonum/mat"

// Transform places component-local geometry in world space.
type Transform struct {
	Position Vec3  `json:"position"`
	Rotation Euler `json:"rotation"`
	Scale    Vec3  `json:"scale"`
}

// Identity returns a transform at the origin with no rotation and unit scale.
func Identity() Transform {
	return Transform{Scale: One}
}

// WorldPosition maps a component-local point to world space: scale first,
// then rotation, then translation by t.Position.
func WorldPosition(t Transform, local Vec3) Vec3 {
	return Offset(t.Rotation, t.Scale, local).Add(t.Position)
}

// Offset applies only the scale and rotation parts of a transform to local.
// It is the displacement of local from the component origin in world axes.
func Offset(rot Euler, scale, local Vec3) Vec3 {
	return mulVec(rot.Matrix(), local.Mul(scale))
}

// LocalPosition is the inverse of [WorldPosition]. Axes with zero scale
// resolve to zero.
func LocalPosition(t Transform, world Vec3) Vec3 {
	rel := world.Sub(t.Position)
	return mulVec(t.Rotation.Matrix().T(), rel).Div(t.Scale)
}

// WorldRotation composes the component rotation with a child rotation
// expressed in the component frame: R_world = R_component · R_local.
func WorldRotation(t Transform, local Euler) Euler {
	var m mat.Dense
	m.Mul(t.Rotation.Matrix(), local.Matrix())
	return EulerFromMatrix(&m)
}

// LocalRotation is the inverse of [WorldRotation].
func LocalRotation(t Transform, world Euler) Euler {
	var m mat.Dense
	m.Mul(t.Rotation.Matrix().T(), world.Matrix())
	return EulerFromMatrix(&m)
}
