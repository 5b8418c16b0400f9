package constrain

import (
	"math"
	"strings"

	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
)

// Zone thresholds and targets, in metres.
const (
	CeilingZone    = 0.5
	CeilingDrop    = 1.0
	MaxTrackHeight = 2.0
	WallZone       = 0.3
	WallInset      = 0.15
)

// CorrectionTolerance is the per-component change above which a placement
// counts as corrected.
const CorrectionTolerance = 1e-2

// maxPasses bounds the override loop. Every zone pins the coordinates it
// touches to a constant, so real inputs settle within three passes.
const maxPasses = 8

// ReasonDegenerateRoom is reported when the room has a non-positive extent.
const ReasonDegenerateRoom = "degenerate room dimensions"

// Horizontal is the rotation tracks are forced into.
var Horizontal = geom.Euler{X: math.Pi / 2}

// Zone identifies which override fired for a track.
type Zone uint8

// Track zones.
const (
	ZoneNone Zone = iota
	ZoneCeiling
	ZoneSideWall
	ZoneEndWall
	ZoneOpen
)

var zoneReasons = [...]string{
	ZoneNone:     "",
	ZoneCeiling:  "track near ceiling lowered and laid horizontal",
	ZoneSideWall: "track near side wall snapped to wall offset",
	ZoneEndWall:  "track near end wall snapped to wall offset",
	ZoneOpen:     "track in open space laid horizontal",
}

func (z Zone) String() string {
	if int(z) < len(zoneReasons) {
		return zoneReasons[z]
	}
	return "unknown zone"
}

// Result is a constrained placement.
type Result struct {
	Position     geom.Vec3  `json:"position"`
	Rotation     geom.Euler `json:"rotation"`
	WasCorrected bool       `json:"was_corrected"`
	Reason       string     `json:"reason"`
	Zones        []Zone     `json:"-"`
}

// Constrain clamps a component of type tag into room and applies the track
// orientation override. It never panics and always terminates.
func Constrain(tag fixture.TypeTag, pos geom.Vec3, rot geom.Euler, scale geom.Vec3, room fixture.Room) Result {
	return ConstrainBox(tag, fixture.BoundsFor(tag), pos, rot, scale, room)
}

// ConstrainBox is Constrain with explicit unscaled bounds, for templates that
// override the per-type table.
func ConstrainBox(tag fixture.TypeTag, bounds fixture.Box, pos geom.Vec3, rot geom.Euler, scale geom.Vec3, room fixture.Room) Result {
	if !room.Valid() {
		return Result{Position: pos, Rotation: rot, Reason: ReasonDegenerateRoom}
	}

	box := bounds.Scaled(scale)
	p := clampToRoom(pos, box, room)
	r := rot

	var reasons []string
	if p != pos {
		reasons = append(reasons, "clamped to room")
	}

	var zones []Zone
	if tag == fixture.TypeTrack {
		for pass := 0; pass < maxPasses; pass++ {
			np, nr, zone := trackOverride(p, box, room)
			np = clampToRoom(np, box, room)
			if len(zones) == 0 || zones[len(zones)-1] != zone {
				zones = append(zones, zone)
			}
			if np == p && nr == r {
				break
			}
			p, r = np, nr
		}
		for _, z := range zones {
			reasons = append(reasons, z.String())
		}
	}

	corrected := pos.MaxAbsDiff(p) > CorrectionTolerance || rot.MaxAbsDiff(r) > CorrectionTolerance
	reason := strings.Join(reasons, "; ")
	if reason == "" {
		reason = "within room"
	}
	return Result{Position: p, Rotation: r, WasCorrected: corrected, Reason: reason, Zones: zones}
}

// clampToRoom moves pos so that box placed at pos lies inside room. On an
// axis where the box is larger than the room, the box is centred instead.
func clampToRoom(pos geom.Vec3, box fixture.Box, room fixture.Room) geom.Vec3 {
	rb := room.Box()
	return geom.Vec3{
		X: clampAxis(pos.X, rb.Min.X-box.Min.X, rb.Max.X-box.Max.X),
		Y: clampAxis(pos.Y, rb.Min.Y-box.Min.Y, rb.Max.Y-box.Max.Y),
		Z: clampAxis(pos.Z, rb.Min.Z-box.Min.Z, rb.Max.Z-box.Max.Z),
	}
}

func clampAxis(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}

// trackOverride applies the first matching zone rule to a track at p, in the
// order ceiling, side wall, end wall. A track near two walls is inset from
// the side wall only; a corner needs no rule of its own since every zone
// lays the track horizontal. The left and back walls take precedence over
// their opposites so that a track wedged between two walls settles instead
// of bouncing between them.
func trackOverride(p geom.Vec3, box fixture.Box, room fixture.Room) (geom.Vec3, geom.Euler, Zone) {
	rb := room.Box()
	b := box.At(p)

	left, right := b.Min.X-rb.Min.X, rb.Max.X-b.Max.X
	back, front := b.Min.Z-rb.Min.Z, rb.Max.Z-b.Max.Z
	nearX := left < WallZone || right < WallZone
	nearZ := back < WallZone || front < WallZone

	switch {
	case rb.Max.Y-b.Max.Y < CeilingZone:
		p.Y = math.Min(room.Height-CeilingDrop, MaxTrackHeight)
		return p, Horizontal, ZoneCeiling
	case nearX:
		if left < WallZone {
			p.X = rb.Min.X + WallInset - box.Min.X
		} else {
			p.X = rb.Max.X - WallInset - box.Max.X
		}
		return p, Horizontal, ZoneSideWall
	case nearZ:
		if back < WallZone {
			p.Z = rb.Min.Z + WallInset - box.Min.Z
		} else {
			p.Z = rb.Max.Z - WallInset - box.Max.Z
		}
		return p, Horizontal, ZoneEndWall
	}
	return p, Horizontal, ZoneOpen
}
