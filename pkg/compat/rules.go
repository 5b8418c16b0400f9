package compat

import "github.com/lightrig/rigsnap/pkg/fixture"

// Endpoint is one side of a candidate connection.
type Endpoint struct {
	Point fixture.SnapPoint
	Owner fixture.Owner
}

// pattern matches one endpoint.
type pattern func(Endpoint) bool

// Rule pairs a left-hand pattern with the right-hand patterns it accepts.
type Rule struct {
	ID          int
	Description string
	left        pattern
	right       pattern
}

func kindOn(k fixture.Kind, owner func(fixture.Owner) bool) pattern {
	return func(e Endpoint) bool {
		return e.Point.Kind == k && owner(e.Owner)
	}
}

func either(ps ...pattern) pattern {
	return func(e Endpoint) bool {
		for _, p := range ps {
			if p(e) {
				return true
			}
		}
		return false
	}
}

func anyOwner(fixture.Owner) bool { return true }

func isConnector(o fixture.Owner) bool { return o.Type == fixture.TypeConnector }

func isTrackLike(o fixture.Owner) bool { return o.Type.IsTrackLike() }

// Rules is the compatibility table in precedence order.
var Rules = []Rule{
	{
		ID:          1,
		Description: "connector track point mates with a track or profile track point",
		left:        kindOn(fixture.KindTrack, isConnector),
		right:       kindOn(fixture.KindTrack, isTrackLike),
	},
	{
		ID:          2,
		Description: "track or profile track point mates with a connector track point",
		left:        kindOn(fixture.KindTrack, isTrackLike),
		right:       kindOn(fixture.KindTrack, isConnector),
	},
	{
		ID:          3,
		Description: "mounting point takes a lamp mechanical point or a connector mounting point",
		left:        kindOn(fixture.KindMounting, anyOwner),
		right: either(
			kindOn(fixture.KindMechanical, fixture.Owner.IsLamp),
			kindOn(fixture.KindMounting, isConnector),
		),
	},
	{
		ID:          4,
		Description: "pendant mechanical point bridges to a spotlight mechanical point or a connector mounting point",
		left:        kindOn(fixture.KindMechanical, fixture.Owner.IsPendant),
		right: either(
			kindOn(fixture.KindMechanical, fixture.Owner.IsPlainSpotlight),
			kindOn(fixture.KindMounting, isConnector),
		),
	},
	{
		ID:          5,
		Description: "spotlight mechanical point mates with a mounting point",
		left:        kindOn(fixture.KindMechanical, fixture.Owner.IsPlainSpotlight),
		right:       kindOn(fixture.KindMounting, anyOwner),
	},
	{
		ID:          6,
		Description: "power point mates with a power point",
		left:        kindOn(fixture.KindPower, anyOwner),
		right:       kindOn(fixture.KindPower, anyOwner),
	},
}

// Verdict records how a pair was decided.
type Verdict struct {
	Compatible bool
	Rule       int    // 0 when no rule applied
	Reason     string // human-readable explanation
}

// Explain evaluates the rule table for a pair and reports the deciding rule.
func Explain(a fixture.SnapPoint, ownerA fixture.Owner, b fixture.SnapPoint, ownerB fixture.Owner) Verdict {
	ea := Endpoint{Point: a, Owner: ownerA}
	eb := Endpoint{Point: b, Owner: ownerB}

	for _, r := range Rules {
		fwd, rev := r.left(ea), r.left(eb)
		if !fwd && !rev {
			continue
		}
		ok := (fwd && r.right(eb)) || (rev && r.right(ea))
		return Verdict{Compatible: ok, Rule: r.ID, Reason: r.Description}
	}
	return Verdict{Reason: "no rule pairs " + describe(ea) + " with " + describe(eb)}
}

// IsCompatible reports whether snap point a on ownerA may connect to snap
// point b on ownerB. It is symmetric, pure and total.
func IsCompatible(a fixture.SnapPoint, ownerA fixture.Owner, b fixture.SnapPoint, ownerB fixture.Owner) bool {
	return Explain(a, ownerA, b, ownerB).Compatible
}

// Between is IsCompatible over two components and snap point ids. Unknown ids
// are incompatible.
func Between(a *fixture.Component, snapA string, b *fixture.Component, snapB string) bool {
	spA, okA := a.Snap(snapA)
	spB, okB := b.Snap(snapB)
	if !okA || !okB {
		return false
	}
	return IsCompatible(spA, a.Owner(), spB, b.Owner())
}

func describe(e Endpoint) string {
	return e.Point.Kind.String() + "@" + e.Owner.String()
}
