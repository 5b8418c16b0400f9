package fixture

import (
	"encoding/json"
	"testing"

	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/geom"
)

func connector() *Component {
	return &Component{
		ID:       "c1",
		Type:     TypeConnector,
		Attrs:    Attrs{CeilingMount: true},
		Position: geom.V(0, 2.99, 0),
		Rotation: geom.EulerDeg(0, 90, 0),
		Scale:    geom.One,
		Snaps: []SnapPoint{
			{ID: "track", Kind: KindTrack, LocalPosition: geom.V(0, -0.01, 0)},
			{ID: "power", Kind: KindPower},
		},
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("laser"); err == nil {
		t.Error("ParseKind(laser) should fail")
	}
}

func TestParseTypeTag(t *testing.T) {
	tests := []struct {
		in   string
		want TypeTag
	}{
		{"track", TypeTrack},
		{"Power-Supply", TypePowerSupply},
		{"end cap", TypeEndCap},
		{" Spotlight ", TypeSpotlight},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTypeTag(tt.in)
			if err != nil || got != tt.want {
				t.Errorf("ParseTypeTag(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
	if got, err := ParseTypeTag("chandelier"); err == nil || got != TypeUnknown {
		t.Errorf("ParseTypeTag(chandelier) = %v, %v", got, err)
	}
}

func TestKindJSON(t *testing.T) {
	data, err := json.Marshal(SnapPoint{ID: "a", Kind: KindMounting})
	if err != nil {
		t.Fatal(err)
	}
	var sp SnapPoint
	if err := json.Unmarshal(data, &sp); err != nil {
		t.Fatal(err)
	}
	if sp.Kind != KindMounting {
		t.Errorf("Kind = %v, want mounting", sp.Kind)
	}
}

func TestOwnerPredicates(t *testing.T) {
	tests := []struct {
		name                     string
		owner                    Owner
		pendant, plain, lamp, ec bool
	}{
		{"plain spotlight", Owner{Type: TypeSpotlight}, false, true, true, false},
		{"pendant spotlight", Owner{Type: TypeSpotlight, Attrs: Attrs{Pendant: true}}, true, false, true, false},
		{"pendant type", Owner{Type: TypePendant}, true, false, true, false},
		{"end cap type", Owner{Type: TypeEndCap}, false, false, false, true},
		{"connector flagged end cap", Owner{Type: TypeConnector, Attrs: Attrs{EndCap: true}}, false, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.owner.IsPendant(); got != tt.pendant {
				t.Errorf("IsPendant() = %v", got)
			}
			if got := tt.owner.IsPlainSpotlight(); got != tt.plain {
				t.Errorf("IsPlainSpotlight() = %v", got)
			}
			if got := tt.owner.IsLamp(); got != tt.lamp {
				t.Errorf("IsLamp() = %v", got)
			}
			if got := tt.owner.IsEndCap(); got != tt.ec {
				t.Errorf("IsEndCap() = %v", got)
			}
		})
	}
}

func TestSnapWorldPosition(t *testing.T) {
	c := connector()
	got, err := c.SnapWorldPosition("track")
	if err != nil {
		t.Fatal(err)
	}
	if want := geom.V(0, 2.98, 0); !got.ApproxEqual(want, 1e-9) {
		t.Errorf("SnapWorldPosition = %v, want %v", got, want)
	}

	_, err = c.SnapWorldPosition("nope")
	if !errors.Is(err, errors.ErrCodeMissingSnapPoint) {
		t.Errorf("missing snap error = %v", err)
	}
}

func TestZeroScaleTreatedAsUnit(t *testing.T) {
	c := &Component{Snaps: []SnapPoint{{ID: "a", Kind: KindPower, LocalPosition: geom.V(1, 0, 0)}}}
	got, _ := c.SnapWorldPosition("a")
	if !got.ApproxEqual(geom.V(1, 0, 0), 1e-12) {
		t.Errorf("template without scale resolved to %v", got)
	}
}

func TestValidate(t *testing.T) {
	c := connector()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	dup := connector()
	dup.Snaps = append(dup.Snaps, SnapPoint{ID: "track", Kind: KindTrack})
	if err := dup.Validate(); err == nil {
		t.Error("duplicate snap ids should fail validation")
	}

	stale := connector()
	stale.Occupied = map[string]bool{"ghost": true}
	if err := stale.Validate(); err == nil {
		t.Error("occupied id outside the snap set should fail validation")
	}
}

func TestClone(t *testing.T) {
	c := connector()
	c.Occupied = map[string]bool{"track": true}
	cp := c.Clone()

	cp.Occupied["power"] = true
	cp.Snaps[0].LocalPosition = geom.V(9, 9, 9)

	if c.Occupied["power"] {
		t.Error("Clone shares the occupied set")
	}
	if c.Snaps[0].LocalPosition.X == 9 {
		t.Error("Clone shares snap points")
	}
}

func TestFreeSnaps(t *testing.T) {
	c := connector()
	c.Occupied = map[string]bool{"track": true}
	free := c.FreeSnaps()
	if len(free) != 1 || free[0].ID != "power" {
		t.Errorf("FreeSnaps() = %+v", free)
	}
}

func TestBoxScaled(t *testing.T) {
	b := BoundsFor(TypeTrack).Scaled(geom.V(-0.5, 2, 1))
	if b.Min.X != -0.5 || b.Max.X != 0.5 {
		t.Errorf("mirrored X = [%v, %v]", b.Min.X, b.Max.X)
	}
	if b.Min.Y != -0.04 || b.Max.Y != 0.04 {
		t.Errorf("scaled Y = [%v, %v]", b.Min.Y, b.Max.Y)
	}
}

func TestBoundsDefault(t *testing.T) {
	if got := BoundsFor(TypeUnknown); got != DefaultBounds {
		t.Errorf("BoundsFor(unknown) = %+v", got)
	}
}

func TestRoom(t *testing.T) {
	r := Room{Width: 8, Depth: 6, Height: 3}
	if !r.Valid() {
		t.Error("8x6x3 should be valid")
	}
	box := r.Box()
	if box.Min != geom.V(-4, 0, -3) || box.Max != geom.V(4, 3, 3) {
		t.Errorf("Box() = %+v", box)
	}
	if (Room{Width: 0, Depth: 6, Height: 3}).Valid() {
		t.Error("zero width should be invalid")
	}
}

func TestConnectionEndpoint(t *testing.T) {
	c := Connection{SourceComponentID: "a", SourceSnapPointID: "x", TargetComponentID: "b", TargetSnapPointID: "y", Kind: KindTrack}
	if sp, ok := c.Endpoint("b"); !ok || sp != "y" {
		t.Errorf("Endpoint(b) = %q, %v", sp, ok)
	}
	if _, ok := c.Endpoint("z"); ok {
		t.Error("Endpoint(z) should be absent")
	}
	if !c.Involves("a") || c.Involves("z") {
		t.Error("Involves mismatch")
	}
}
