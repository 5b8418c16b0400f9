// Package catalog loads component templates from TOML.
//
// A catalogue file lists templates, each with a type, optional behavioural
// flags and its snap points:
//
//	[[template]]
//	slug = "connector-ceiling"
//	type = "connector"
//	ceiling_mount = true
//
//	  [[template.snap]]
//	  id = "track"
//	  kind = "track"
//	  position = [0, -0.01, 0]
//	  rotation = [0, 0, 0]   # degrees
//	  compatible = ["track"]
//
// Rotations are degrees in the file and radians in memory. [Default] returns
// the built-in catalogue embedded in the binary.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lightrig/rigsnap/pkg/compat"
	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
)

//go:embed default.toml
var defaultTOML []byte

// file mirrors the on-disk layout.
type file struct {
	Templates []templateFile `toml:"template"`
}

type templateFile struct {
	Slug         string      `toml:"slug"`
	Name         string      `toml:"name"`
	Type         string      `toml:"type"`
	Pendant      bool        `toml:"pendant"`
	EndCap       bool        `toml:"end_cap"`
	CeilingMount bool        `toml:"ceiling_mount"`
	Scale        []float64   `toml:"scale"`
	Bounds       *boundsFile `toml:"bounds"`
	Snaps        []snapFile  `toml:"snap"`
}

type boundsFile struct {
	Min []float64 `toml:"min"`
	Max []float64 `toml:"max"`
}

type snapFile struct {
	ID         string         `toml:"id"`
	Kind       fixture.Kind   `toml:"kind"`
	Position   []float64      `toml:"position"`
	Rotation   []float64      `toml:"rotation"`
	Compatible []fixture.Kind `toml:"compatible"`
}

// Catalog is an ordered, read-only set of templates keyed by slug.
type Catalog struct {
	order     []string
	templates map[string]*fixture.Component
}

// Warning is a non-fatal catalogue problem.
type Warning struct {
	Template string
	Snap     string
	Message  string
}

func (w Warning) String() string {
	if w.Snap != "" {
		return fmt.Sprintf("%s/%s: %s", w.Template, w.Snap, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Template, w.Message)
}

// Default returns the built-in catalogue.
func Default() *Catalog {
	c, err := Parse(defaultTOML)
	if err != nil {
		panic(fmt.Sprintf("built-in catalogue: %v", err))
	}
	return c
}

// Load reads a catalogue from a TOML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalogue %s", path)
	}
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalogue TOML. Unknown keys are rejected so
// that typos in snap point definitions do not silently drop data.
func Parse(data []byte) (*Catalog, error) {
	var f file
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode catalogue")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "unknown keys: %s", strings.Join(keys, ", "))
	}

	c := &Catalog{templates: make(map[string]*fixture.Component, len(f.Templates))}
	for i, tf := range f.Templates {
		tpl, err := tf.build()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "template %d (%s)", i, tf.Slug)
		}
		if _, dup := c.templates[tpl.Template]; dup {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "duplicate template slug %q", tpl.Template)
		}
		c.templates[tpl.Template] = tpl
		c.order = append(c.order, tpl.Template)
	}
	return c, nil
}

func (tf templateFile) build() (*fixture.Component, error) {
	if err := errors.ValidateID("template", tf.Slug); err != nil {
		return nil, err
	}
	tag, err := fixture.ParseTypeTag(tf.Type)
	if err != nil {
		return nil, err
	}

	scale := geom.One
	if tf.Scale != nil {
		if len(tf.Scale) != 3 {
			return nil, fmt.Errorf("scale needs 3 values, got %d", len(tf.Scale))
		}
		scale = geom.FromSlice(tf.Scale)
		if scale.X == 0 || scale.Y == 0 || scale.Z == 0 {
			return nil, fmt.Errorf("scale %v has a zero axis", scale)
		}
	}

	tpl := &fixture.Component{
		Template: tf.Slug,
		Name:     tf.Name,
		Type:     tag,
		Attrs: fixture.Attrs{
			Pendant:      tf.Pendant,
			EndCap:       tf.EndCap,
			CeilingMount: tf.CeilingMount,
		},
		Scale: scale,
	}
	if tpl.Name == "" {
		tpl.Name = tf.Slug
	}

	if tf.Bounds != nil {
		if len(tf.Bounds.Min) != 3 || len(tf.Bounds.Max) != 3 {
			return nil, fmt.Errorf("bounds need 3 values per corner")
		}
		b := fixture.Box{Min: geom.FromSlice(tf.Bounds.Min), Max: geom.FromSlice(tf.Bounds.Max)}
		if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z {
			return nil, fmt.Errorf("bounds min %v exceeds max %v", b.Min, b.Max)
		}
		tpl.Bounds = &b
	}

	for _, sf := range tf.Snaps {
		pos, err := vec3(sf.Position, "position")
		if err != nil {
			return nil, fmt.Errorf("snap %q: %w", sf.ID, err)
		}
		rot, err := vec3(sf.Rotation, "rotation")
		if err != nil {
			return nil, fmt.Errorf("snap %q: %w", sf.ID, err)
		}
		if err := errors.ValidateFinite("snap "+sf.ID, pos.X, pos.Y, pos.Z, rot.X, rot.Y, rot.Z); err != nil {
			return nil, err
		}
		tpl.Snaps = append(tpl.Snaps, fixture.SnapPoint{
			ID:              sf.ID,
			Kind:            sf.Kind,
			LocalPosition:   pos,
			LocalRotation:   geom.EulerDeg(rot.X, rot.Y, rot.Z),
			CompatibleKinds: sf.Compatible,
		})
	}
	if len(tpl.Snaps) == 0 {
		return nil, fmt.Errorf("template has no snap points")
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return tpl, nil
}

func vec3(s []float64, field string) (geom.Vec3, error) {
	if s == nil {
		return geom.Vec3{}, nil
	}
	if len(s) != 3 {
		return geom.Vec3{}, fmt.Errorf("%s needs 3 values, got %d", field, len(s))
	}
	return geom.FromSlice(s), nil
}

// Get returns a copy of the template with the given slug.
func (c *Catalog) Get(slug string) (*fixture.Component, error) {
	tpl, ok := c.templates[slug]
	if !ok {
		return nil, errors.New(errors.ErrCodeTemplateNotFound, "no template %q in catalogue", slug)
	}
	return tpl.Clone(), nil
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.order) }

// List returns template slugs in file order.
func (c *Catalog) List() []string {
	return append([]string(nil), c.order...)
}

// Templates returns copies of every template in file order.
func (c *Catalog) Templates() []*fixture.Component {
	out := make([]*fixture.Component, len(c.order))
	for i, slug := range c.order {
		out[i] = c.templates[slug].Clone()
	}
	return out
}

// Validate reports compatible-kind hints that no compatibility rule can honour.
// Such hints usually mean a snap point was declared with the wrong kind.
func (c *Catalog) Validate() []Warning {
	var out []Warning
	for _, slug := range c.order {
		tpl := c.templates[slug]
		for _, sp := range tpl.Snaps {
			for _, k := range compat.UnreachableHints(sp, tpl.Owner()) {
				out = append(out, Warning{
					Template: slug,
					Snap:     sp.ID,
					Message:  fmt.Sprintf("%s point can never mate with %s", sp.Kind, k),
				})
			}
			if len(compat.PairableKinds(sp.Kind, tpl.Owner())) == 0 {
				out = append(out, Warning{
					Template: slug,
					Snap:     sp.ID,
					Message:  fmt.Sprintf("%s point on %s matches no compatibility rule", sp.Kind, tpl.Owner()),
				})
			}
		}
	}
	return out
}
