package compat

import (
	"slices"

	"github.com/lightrig/rigsnap/pkg/fixture"
)

// Candidate is a template snap point that can attach to a source snap point.
type Candidate struct {
	Template *fixture.Component
	Snap     fixture.SnapPoint
	Rule     int
}

// Candidates lists, in template then snap point order, every template snap
// point compatible with source on owner. Occupied template snap points are
// skipped.
func Candidates(source fixture.SnapPoint, owner fixture.Owner, templates []*fixture.Component) []Candidate {
	var out []Candidate
	for _, tpl := range templates {
		for _, sp := range tpl.Snaps {
			if tpl.IsOccupied(sp.ID) {
				continue
			}
			v := Explain(source, owner, sp, tpl.Owner())
			if v.Compatible {
				out = append(out, Candidate{Template: tpl, Snap: sp, Rule: v.Rule})
			}
		}
	}
	return out
}

// sampleOwners covers every owner shape the rules distinguish.
func sampleOwners() []fixture.Owner {
	owners := make([]fixture.Owner, 0, len(fixture.TypeTags)+3)
	for _, t := range fixture.TypeTags {
		owners = append(owners, fixture.Owner{Type: t})
	}
	return append(owners,
		fixture.Owner{Type: fixture.TypeSpotlight, Attrs: fixture.Attrs{Pendant: true}},
		fixture.Owner{Type: fixture.TypeConnector, Attrs: fixture.Attrs{CeilingMount: true}},
		fixture.Owner{Type: fixture.TypeUnknown},
	)
}

// PairableKinds returns the kinds a snap point of kind k on owner can ever
// connect to, over every owner shape. Catalogue validation uses it to flag
// compatible-kind hints the rules can never honour.
func PairableKinds(k fixture.Kind, owner fixture.Owner) []fixture.Kind {
	var out []fixture.Kind
	a := fixture.SnapPoint{Kind: k}
	for _, other := range fixture.Kinds {
		b := fixture.SnapPoint{Kind: other}
		for _, o := range sampleOwners() {
			if IsCompatible(a, owner, b, o) {
				out = append(out, other)
				break
			}
		}
	}
	return out
}

// UnreachableHints returns the entries of sp.CompatibleKinds that no rule can
// satisfy for a snap point on owner.
func UnreachableHints(sp fixture.SnapPoint, owner fixture.Owner) []fixture.Kind {
	reachable := PairableKinds(sp.Kind, owner)
	var out []fixture.Kind
	for _, k := range sp.CompatibleKinds {
		if !slices.Contains(reachable, k) {
			out = append(out, k)
		}
	}
	return out
}
