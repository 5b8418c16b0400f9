package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
)

// parseEndpoint splits "template/snap". Ids cannot contain "/", so the split
// is unambiguous.
func parseEndpoint(s string) (template, snap string, err error) {
	template, snap, ok := strings.Cut(s, "/")
	if !ok || template == "" || snap == "" {
		return "", "", fmt.Errorf("endpoint %q: want TEMPLATE/SNAP", s)
	}
	return template, snap, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%q: want %d comma-separated numbers", s, n)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out[i] = v
	}
	if err := errors.ValidateFinite("value", out...); err != nil {
		return nil, fmt.Errorf("%q: %w", s, err)
	}
	return out, nil
}

// vecValue is a pflag.Value for "x,y,z".
type vecValue struct {
	v   geom.Vec3
	set bool
}

func (f *vecValue) Set(s string) error {
	xs, err := parseFloats(s, 3)
	if err != nil {
		return err
	}
	f.v, f.set = geom.FromSlice(xs), true
	return nil
}

func (f *vecValue) String() string { return fmt.Sprintf("%g,%g,%g", f.v.X, f.v.Y, f.v.Z) }

func (f *vecValue) Type() string { return "x,y,z" }

// degrees reads the value as Euler angles in degrees.
func (f *vecValue) degrees() geom.Euler { return geom.EulerDeg(f.v.X, f.v.Y, f.v.Z) }

// roomValue is a pflag.Value for "WIDTHxDEPTHxHEIGHT" in metres.
type roomValue struct {
	room fixture.Room
	set  bool
}

func (f *roomValue) Set(s string) error {
	xs, err := parseFloats(strings.ReplaceAll(strings.ToLower(s), "x", ","), 3)
	if err != nil {
		return fmt.Errorf("room %q: want WIDTHxDEPTHxHEIGHT", s)
	}
	f.room = fixture.Room{Width: xs[0], Depth: xs[1], Height: xs[2]}
	f.set = true
	return nil
}

func (f *roomValue) String() string {
	if !f.set {
		return ""
	}
	return f.room.String()
}

// or returns the flag's room if set, otherwise def.
func (f *roomValue) or(def fixture.Room) fixture.Room {
	if f.set {
		return f.room
	}
	return def
}

func (f *roomValue) Type() string { return "WxDxH" }
