package solver

import (
	"fmt"
	"math"

	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
)

// Policy names the orientation rule chosen for a solved placement.
type Policy uint8

// Orientation policies, in evaluation order.
const (
	PolicyDefault        Policy = iota // no rotation
	PolicyTrackFromMount               // lay the track flat, inherit source yaw and roll
	PolicyCapOnTrack                   // end cap faces back toward its track
	PolicyPendantDrop                  // pendant hangs straight down
)

var policyNames = [...]string{
	PolicyDefault:        "default",
	PolicyTrackFromMount: "track-from-mount",
	PolicyCapOnTrack:     "cap-on-track",
	PolicyPendantDrop:    "pendant-drop",
}

func (p Policy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(b []byte) error {
	for i, name := range policyNames {
		if name == string(b) {
			*p = Policy(i)
			return nil
		}
	}
	return fmt.Errorf("unknown orientation policy %q", b)
}

const quarterTurn = math.Pi / 2

// Orientation returns the world rotation a target owned by target must take
// when attached to a source owned by source with rotation sourceRot.
func Orientation(source fixture.Owner, sourceRot geom.Euler, target fixture.Owner) (geom.Euler, Policy) {
	switch {
	case target.Type.IsTrackLike() && (source.IsCeilingConnector() || source.IsEndCap()):
		return geom.Euler{X: quarterTurn, Y: sourceRot.Y, Z: sourceRot.Z}, PolicyTrackFromMount
	case source.Type.IsTrackLike() && target.IsEndCap():
		return geom.Euler{Y: sourceRot.Y + math.Pi, Z: sourceRot.Z}, PolicyCapOnTrack
	case target.IsPendant():
		return geom.Euler{X: quarterTurn}, PolicyPendantDrop
	}
	return geom.Euler{}, PolicyDefault
}
