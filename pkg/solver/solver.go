package solver

import (
	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
)

// Result is a solved placement for the target component.
type Result struct {
	Position   geom.Vec3          `json:"position"`
	Rotation   geom.Euler         `json:"rotation"`
	Scale      geom.Vec3          `json:"scale"`
	Policy     Policy             `json:"policy"`
	Connection fixture.Connection `json:"connection"`
	Residual   float64            `json:"residual"` // max per-axis alignment error
}

// Transform returns the solved transform.
func (r Result) Transform() geom.Transform {
	return geom.Transform{Position: r.Position, Rotation: r.Rotation, Scale: r.Scale}
}

// Solve places target so that its snap point targetSnap coincides with
// sourceSnap on source. source is treated as fixed; target's own position and
// rotation are ignored, its scale is kept.
//
// The returned connection names target.ID as the target component, which is
// empty for catalogue templates; callers fill it in when they commit.
func Solve(source *fixture.Component, sourceSnap string, target *fixture.Component, targetSnap string) (Result, error) {
	ssp, ok := source.Snap(sourceSnap)
	if !ok {
		return Result{}, errors.New(errors.ErrCodeMissingSnapPoint, "source %q has no snap point %q", source.ID, sourceSnap)
	}
	tsp, ok := target.Snap(targetSnap)
	if !ok {
		return Result{}, errors.New(errors.ErrCodeMissingSnapPoint, "target %q has no snap point %q", targetName(target), targetSnap)
	}

	anchor := geom.WorldPosition(source.Transform(), ssp.LocalPosition)

	rot, policy := Orientation(source.Owner(), source.Rotation, target.Owner())
	scale := target.Transform().Scale
	d := geom.Offset(rot, scale, tsp.LocalPosition)

	res := Result{
		Position: anchor.Sub(d),
		Rotation: rot,
		Scale:    scale,
		Policy:   policy,
		Connection: fixture.Connection{
			SourceComponentID: source.ID,
			SourceSnapPointID: ssp.ID,
			TargetComponentID: target.ID,
			TargetSnapPointID: tsp.ID,
			Kind:              ssp.Kind,
		},
	}

	got := geom.WorldPosition(res.Transform(), tsp.LocalPosition)
	res.Residual = got.MaxAbsDiff(anchor)
	if !(res.Residual <= geom.Tolerance) {
		return Result{}, errors.New(errors.ErrCodeSolverAlignment,
			"snap %s/%s resolves to %v, want %v (residual %g)",
			targetName(target), tsp.ID, got, anchor, res.Residual)
	}
	return res, nil
}

func targetName(c *fixture.Component) string {
	if c.ID != "" {
		return c.ID
	}
	return c.Template
}
