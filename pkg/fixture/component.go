package fixture

import (
	"fmt"
	"maps"
	"slices"

	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/geom"
)

// SnapPoint is a typed attachment location in a component's local frame.
type SnapPoint struct {
	ID              string     `json:"id"`
	Kind            Kind       `json:"kind"`
	LocalPosition   geom.Vec3  `json:"local_position"`
	LocalRotation   geom.Euler `json:"local_rotation"`
	CompatibleKinds []Kind     `json:"compatible_kinds,omitempty"` // hint only; the rules decide
}

// Attrs are explicit behavioural flags fixed at catalogue-definition time.
type Attrs struct {
	Pendant      bool `json:"pendant,omitempty"`       // hangs below its mount
	EndCap       bool `json:"end_cap,omitempty"`       // terminates a track run
	CeilingMount bool `json:"ceiling_mount,omitempty"` // fixed to the ceiling
}

// Owner is the part of a component the compatibility rules look at.
type Owner struct {
	Type  TypeTag
	Attrs Attrs
}

// IsPendant reports whether the owner is a pendant or a pendant-tagged spotlight.
func (o Owner) IsPendant() bool {
	return o.Type == TypePendant || (o.Type == TypeSpotlight && o.Attrs.Pendant)
}

// IsPlainSpotlight reports whether the owner is a spotlight without the pendant flag.
func (o Owner) IsPlainSpotlight() bool {
	return o.Type == TypeSpotlight && !o.Attrs.Pendant
}

// IsLamp reports whether the owner is any spotlight or pendant.
func (o Owner) IsLamp() bool {
	return o.Type == TypeSpotlight || o.Type == TypePendant
}

// IsEndCap reports whether the owner terminates a track run.
func (o Owner) IsEndCap() bool {
	return o.Type == TypeEndCap || o.Attrs.EndCap
}

// IsCeilingConnector reports whether the owner is a ceiling-mounted connector.
func (o Owner) IsCeilingConnector() bool {
	return o.Type == TypeConnector && o.Attrs.CeilingMount
}

func (o Owner) String() string {
	switch {
	case o.Type == TypeSpotlight && o.Attrs.Pendant:
		return "spotlight(pendant)"
	case o.Type == TypeConnector && o.Attrs.CeilingMount:
		return "connector(ceiling)"
	}
	return o.Type.String()
}

// Component is a placed part or a catalogue template. Templates have an empty
// ID and an identity transform.
type Component struct {
	ID       string          `json:"id"`
	Template string          `json:"template,omitempty"`
	Name     string          `json:"name,omitempty"`
	Type     TypeTag         `json:"type"`
	Attrs    Attrs           `json:"attrs"`
	Position geom.Vec3       `json:"position"`
	Rotation geom.Euler      `json:"rotation"`
	Scale    geom.Vec3       `json:"scale"`
	Bounds   *Box            `json:"bounds,omitempty"` // overrides the per-type table
	Snaps    []SnapPoint     `json:"snap_points"`
	Occupied map[string]bool `json:"connections,omitempty"`
}

// Owner returns the compatibility view of c.
func (c *Component) Owner() Owner {
	return Owner{Type: c.Type, Attrs: c.Attrs}
}

// Transform returns c's placement as a geom.Transform.
func (c *Component) Transform() geom.Transform {
	return geom.Transform{Position: c.Position, Rotation: c.Rotation, Scale: c.scale()}
}

// SetTransform copies position, rotation and scale from t.
func (c *Component) SetTransform(t geom.Transform) {
	c.Position = t.Position
	c.Rotation = t.Rotation
	c.Scale = t.Scale
}

// scale treats an all-zero scale as unit scale, so templates decoded without
// an explicit scale behave as expected.
func (c *Component) scale() geom.Vec3 {
	if c.Scale == (geom.Vec3{}) {
		return geom.One
	}
	return c.Scale
}

// Snap returns the snap point with the given id.
func (c *Component) Snap(id string) (SnapPoint, bool) {
	for _, sp := range c.Snaps {
		if sp.ID == id {
			return sp, true
		}
	}
	return SnapPoint{}, false
}

// IsOccupied reports whether snap point id is part of a connection.
func (c *Component) IsOccupied(id string) bool {
	return c.Occupied[id]
}

// OccupiedIDs returns the occupied snap point ids in sorted order.
func (c *Component) OccupiedIDs() []string {
	return slices.Sorted(maps.Keys(c.Occupied))
}

// FreeSnaps returns the snap points that are not occupied, in declaration order.
func (c *Component) FreeSnaps() []SnapPoint {
	var out []SnapPoint
	for _, sp := range c.Snaps {
		if !c.Occupied[sp.ID] {
			out = append(out, sp)
		}
	}
	return out
}

// BoundingBox returns the unscaled local bounds of c.
func (c *Component) BoundingBox() Box {
	if c.Bounds != nil {
		return *c.Bounds
	}
	return BoundsFor(c.Type)
}

// SnapWorldPosition resolves snap point id to world space.
func (c *Component) SnapWorldPosition(id string) (geom.Vec3, error) {
	sp, ok := c.Snap(id)
	if !ok {
		return geom.Vec3{}, errors.New(errors.ErrCodeMissingSnapPoint, "component %q has no snap point %q", c.ID, id)
	}
	return geom.WorldPosition(c.Transform(), sp.LocalPosition), nil
}

// SnapWorldRotation resolves the orientation of snap point id in world space.
func (c *Component) SnapWorldRotation(id string) (geom.Euler, error) {
	sp, ok := c.Snap(id)
	if !ok {
		return geom.Euler{}, errors.New(errors.ErrCodeMissingSnapPoint, "component %q has no snap point %q", c.ID, id)
	}
	return geom.WorldRotation(c.Transform(), sp.LocalRotation), nil
}

// Clone returns a deep copy of c.
func (c *Component) Clone() *Component {
	out := *c
	out.Snaps = make([]SnapPoint, len(c.Snaps))
	for i, sp := range c.Snaps {
		sp.CompatibleKinds = slices.Clone(sp.CompatibleKinds)
		out.Snaps[i] = sp
	}
	if c.Occupied != nil {
		out.Occupied = maps.Clone(c.Occupied)
	}
	if c.Bounds != nil {
		b := *c.Bounds
		out.Bounds = &b
	}
	return &out
}

// Validate checks snap point ids for uniqueness and that every occupied id
// names a snap point of c.
func (c *Component) Validate() error {
	seen := make(map[string]bool, len(c.Snaps))
	for i, sp := range c.Snaps {
		if err := errors.ValidateID("snap point", sp.ID); err != nil {
			return fmt.Errorf("snap point %d: %w", i, err)
		}
		if seen[sp.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate snap point id %q", sp.ID)
		}
		if sp.Kind == KindUnknown {
			return errors.New(errors.ErrCodeInvalidInput, "snap point %q has no kind", sp.ID)
		}
		seen[sp.ID] = true
	}
	for id := range c.Occupied {
		if !seen[id] {
			return errors.New(errors.ErrCodeInvalidInput, "occupied id %q is not a snap point of %q", id, c.ID)
		}
	}
	return nil
}

// Connection is a committed joint between two snap points on two distinct
// components.
type Connection struct {
	SourceComponentID string `json:"source_component_id"`
	SourceSnapPointID string `json:"source_snap_point_id"`
	TargetComponentID string `json:"target_component_id"`
	TargetSnapPointID string `json:"target_snap_point_id"`
	Kind              Kind   `json:"kind"`
}

// Involves reports whether the connection touches component id.
func (c Connection) Involves(id string) bool {
	return c.SourceComponentID == id || c.TargetComponentID == id
}

// Endpoint returns the snap point id the connection occupies on component id.
func (c Connection) Endpoint(id string) (string, bool) {
	switch id {
	case c.SourceComponentID:
		return c.SourceSnapPointID, true
	case c.TargetComponentID:
		return c.TargetSnapPointID, true
	}
	return "", false
}

func (c Connection) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s (%s)",
		c.SourceComponentID, c.SourceSnapPointID, c.TargetComponentID, c.TargetSnapPointID, c.Kind)
}
