package fixture

import (
	"fmt"
	"math"

	"github.com/lightrig/rigsnap/pkg/geom"
)

// Room is the interior volume components must stay inside. X spans
// [-Width/2, Width/2], Z spans [-Depth/2, Depth/2], Y spans [0, Height].
type Room struct {
	Width  float64 `json:"width" toml:"width"`
	Depth  float64 `json:"depth" toml:"depth"`
	Height float64 `json:"height" toml:"height"`
}

// Valid reports whether every extent is positive. NaN extents are invalid.
func (r Room) Valid() bool {
	return r.Width > 0 && r.Depth > 0 && r.Height > 0 &&
		!math.IsInf(r.Width, 0) && !math.IsInf(r.Depth, 0) && !math.IsInf(r.Height, 0)
}

// Box returns the room volume.
func (r Room) Box() Box {
	return Box{
		Min: geom.V(-r.Width/2, 0, -r.Depth/2),
		Max: geom.V(r.Width/2, r.Height, r.Depth/2),
	}
}

func (r Room) String() string {
	return fmt.Sprintf("%gx%gx%g", r.Width, r.Depth, r.Height)
}

// Box is an axis-aligned box given as corner offsets.
type Box struct {
	Min geom.Vec3 `json:"min" toml:"min"`
	Max geom.Vec3 `json:"max" toml:"max"`
}

// Scaled multiplies both corners by scale component-wise. A negative scale
// mirrors the box; corners are reordered so Min stays below Max.
func (b Box) Scaled(scale geom.Vec3) Box {
	lo, hi := b.Min.Mul(scale), b.Max.Mul(scale)
	return Box{
		Min: geom.V(math.Min(lo.X, hi.X), math.Min(lo.Y, hi.Y), math.Min(lo.Z, hi.Z)),
		Max: geom.V(math.Max(lo.X, hi.X), math.Max(lo.Y, hi.Y), math.Max(lo.Z, hi.Z)),
	}
}

// At translates the box to an origin at p.
func (b Box) At(p geom.Vec3) Box {
	return Box{Min: b.Min.Add(p), Max: b.Max.Add(p)}
}

// Size returns the extent of the box on each axis.
func (b Box) Size() geom.Vec3 { return b.Max.Sub(b.Min) }

// Contains reports whether inner lies within b, allowing tol slack per face.
func (b Box) Contains(inner Box, tol float64) bool {
	return inner.Min.X >= b.Min.X-tol && inner.Max.X <= b.Max.X+tol &&
		inner.Min.Y >= b.Min.Y-tol && inner.Max.Y <= b.Max.Y+tol &&
		inner.Min.Z >= b.Min.Z-tol && inner.Max.Z <= b.Max.Z+tol
}

func symmetric(x, y, z float64) Box {
	return Box{Min: geom.V(-x, -y, -z), Max: geom.V(x, y, z)}
}

// DefaultBounds applies to types without an entry in the bounds table.
var DefaultBounds = symmetric(0.1, 0.1, 0.1)

// typeBounds holds unscaled local bounds per type, in metres. Tracks and
// profiles run along local X.
var typeBounds = map[TypeTag]Box{
	TypeTrack:       symmetric(1.0, 0.02, 0.02),
	TypeProfile:     symmetric(1.0, 0.035, 0.035),
	TypeConnector:   symmetric(0.05, 0.05, 0.05),
	TypeSpotlight:   {Min: geom.V(-0.05, -0.2, -0.05), Max: geom.V(0.05, 0.02, 0.05)},
	TypePendant:     {Min: geom.V(-0.1, -0.6, -0.1), Max: geom.V(0.1, 0.02, 0.1)},
	TypePowerSupply: symmetric(0.15, 0.04, 0.05),
	TypeEndCap:      symmetric(0.02, 0.02, 0.02),
	TypeAccessory:   symmetric(0.05, 0.05, 0.05),
}

// BoundsFor returns the unscaled bounds for t, or DefaultBounds.
func BoundsFor(t TypeTag) Box {
	if b, ok := typeBounds[t]; ok {
		return b
	}
	return DefaultBounds
}
