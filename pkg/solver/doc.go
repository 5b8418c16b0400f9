// Package solver computes where a newly attached component must go so that
// its snap point coincides with a snap point on an already placed component.
//
// Orientation is policy, not a free variable: [Orientation] picks the target
// rotation from the owner types alone (tracks laid flat under ceiling
// connectors, end caps turned back toward their track, pendants hanging
// straight down). Given that rotation, the position follows exactly:
//
//	position = sourceWorld − R·(scale ∘ targetLocal)
//
// [Solve] re-resolves the result and refuses to return a transform whose
// snap points disagree by more than geom.Tolerance on any axis. Such a
// failure means malformed template data (NaN or infinite scale, for example)
// and is reported as SOLVER_ALIGNMENT_FAILURE.
//
// Solved placements must be committed as-is. Running boundary clamping over
// them would break the alignment.
package solver
