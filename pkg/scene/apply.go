package scene

import (
	"context"

	"github.com/lightrig/rigsnap/pkg/assembly"
	"github.com/lightrig/rigsnap/pkg/errors"
)

// StepResult is the outcome of one plan step.
type StepResult struct {
	Op      string           `json:"op"`
	Index   int              `json:"index"`
	Outcome assembly.Outcome `json:"outcome"`
}

// Report summarises a plan replay.
type Report struct {
	Steps     []StepResult `json:"steps"`
	Placed    int          `json:"placed"`
	Attached  int          `json:"attached"`
	Corrected int          `json:"corrected"`
	Rejected  int          `json:"rejected"`
}

// OK reports whether every step succeeded.
func (r *Report) OK() bool { return r.Rejected == 0 }

// Options controls Apply.
type Options struct {
	// FailFast stops at the first rejected step and returns its error.
	FailFast bool
}

// Apply replays plan against a. Rejected steps are recorded in the report
// and, unless opts.FailFast is set, do not stop the replay. Apply returns an
// error for cancellation, for FailFast rejections and for failures that are
// not expected interaction outcomes.
func Apply(ctx context.Context, a *assembly.Assembler, plan *Plan, opts Options) (*Report, error) {
	r := &Report{}

	record := func(op string, i int, out assembly.Outcome, err error) error {
		r.Steps = append(r.Steps, StepResult{Op: op, Index: i, Outcome: out})
		switch {
		case err == nil && out.Status == assembly.StatusAttached:
			r.Attached++
		case err == nil:
			r.Placed++
			if out.Correction != nil && out.Correction.WasCorrected {
				r.Corrected++
			}
		default:
			r.Rejected++
			if opts.FailFast || fatal(err) {
				return err
			}
		}
		return nil
	}

	for i, s := range plan.Place {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		pos, rot, scale := s.Transform()
		out, err := a.Place(ctx, assembly.PlaceRequest{
			Template: s.Template, ID: s.ID,
			Position: pos, Rotation: rot, Scale: scale,
		})
		if err := record("place", i, out, err); err != nil {
			return r, err
		}
	}

	for i, s := range plan.Attach {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		out, err := a.Attach(ctx, assembly.AttachRequest{
			SourceID: s.Source, SourceSnap: s.SourceSnap,
			Template: s.Template, TargetSnap: s.TargetSnap,
			ID: s.ID,
		})
		if err := record("attach", i, out, err); err != nil {
			return r, err
		}
	}
	return r, nil
}

// fatal reports whether err means the engine itself misbehaved, as opposed
// to a step the plan got wrong.
func fatal(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeSolverAlignment, errors.ErrCodeInternal, "":
		return true
	}
	return false
}
