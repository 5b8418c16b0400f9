// Package scene replays TOML scene plans against an assembler.
//
// A plan names a room, free placements and snap attachments:
//
//	name = "gallery"
//
//	[room]
//	width = 8
//	depth = 6
//	height = 3
//
//	[[place]]
//	id = "c1"
//	template = "connector-ceiling"
//	position = [0, 2.9, 0]
//	rotation = [0, 90, 0]   # degrees
//
//	[[attach]]
//	id = "t1"
//	source = "c1"
//	source_snap = "track"
//	template = "track-2m"
//	target_snap = "end-a"
//
// All placements run first, in file order, then all attachments in file
// order, so an attachment may build on any placed component or on an
// earlier attachment. The resulting assembly can be written as JSON with
// [WriteJSON] and read back with [ReadJSON].
package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
)

// Plan is a decoded scene file.
type Plan struct {
	Name    string       `toml:"name"`
	Catalog string       `toml:"catalog"` // optional catalogue path, relative to the plan
	Room    fixture.Room `toml:"room"`
	Place   []PlaceStep  `toml:"place"`
	Attach  []AttachStep `toml:"attach"`

	// Path is the file the plan was loaded from, if any.
	Path string `toml:"-"`
}

// PlaceStep places a template at a free transform.
type PlaceStep struct {
	ID       string    `toml:"id"`
	Template string    `toml:"template"`
	Position []float64 `toml:"position"`
	Rotation []float64 `toml:"rotation"` // degrees
	Scale    []float64 `toml:"scale"`
}

// AttachStep snaps a new component onto an existing one.
type AttachStep struct {
	ID         string `toml:"id"`
	Source     string `toml:"source"`
	SourceSnap string `toml:"source_snap"`
	Template   string `toml:"template"`
	TargetSnap string `toml:"target_snap"`
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s", path)
	}
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Path = path
	return p, nil
}

// CatalogPath returns the plan's catalogue path resolved against the plan
// file's directory, or "" when the plan uses the caller's catalogue.
func (p *Plan) CatalogPath() string {
	if p.Catalog == "" || filepath.IsAbs(p.Catalog) || p.Path == "" {
		return p.Catalog
	}
	return filepath.Join(filepath.Dir(p.Path), p.Catalog)
}

// Parse decodes and validates plan TOML.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode scene")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidScene, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the plan for structural problems that do not need a
// catalogue: room extents, required fields, vector lengths and id clashes.
func (p *Plan) Validate() error {
	if err := errors.ValidateRoom(p.Room.Width, p.Room.Depth, p.Room.Height); err != nil {
		return err
	}

	ids := make(map[string]string)
	claim := func(id, where string) error {
		if id == "" {
			return nil
		}
		if err := errors.ValidateID("component", id); err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}
		if prev, dup := ids[id]; dup {
			return errors.New(errors.ErrCodeInvalidScene, "%s: id %q already used by %s", where, id, prev)
		}
		ids[id] = where
		return nil
	}

	for i, s := range p.Place {
		where := fmt.Sprintf("place[%d]", i)
		if s.Template == "" {
			return errors.New(errors.ErrCodeInvalidScene, "%s: template is required", where)
		}
		vecs := []struct {
			name string
			v    []float64
		}{{"position", s.Position}, {"rotation", s.Rotation}, {"scale", s.Scale}}
		for _, f := range vecs {
			if f.v != nil && len(f.v) != 3 {
				return errors.New(errors.ErrCodeInvalidScene, "%s: %s needs 3 values, got %d", where, f.name, len(f.v))
			}
			if err := errors.ValidateFinite(where+" "+f.name, f.v...); err != nil {
				return err
			}
		}
		if err := claim(s.ID, where); err != nil {
			return err
		}
	}
	for i, s := range p.Attach {
		where := fmt.Sprintf("attach[%d]", i)
		switch {
		case s.Source == "":
			return errors.New(errors.ErrCodeInvalidScene, "%s: source is required", where)
		case s.SourceSnap == "":
			return errors.New(errors.ErrCodeInvalidScene, "%s: source_snap is required", where)
		case s.Template == "":
			return errors.New(errors.ErrCodeInvalidScene, "%s: template is required", where)
		case s.TargetSnap == "":
			return errors.New(errors.ErrCodeInvalidScene, "%s: target_snap is required", where)
		}
		if err := claim(s.ID, where); err != nil {
			return err
		}
	}
	return nil
}

// Transform returns the step's transform with rotation converted to radians.
// A missing scale is zero, meaning "keep the template scale".
func (s PlaceStep) Transform() (pos geom.Vec3, rot geom.Euler, scale geom.Vec3) {
	if s.Position != nil {
		pos = geom.FromSlice(s.Position)
	}
	if s.Rotation != nil {
		d := geom.FromSlice(s.Rotation)
		rot = geom.EulerDeg(d.X, d.Y, d.Z)
	}
	if s.Scale != nil {
		scale = geom.FromSlice(s.Scale)
	}
	return pos, rot, scale
}
