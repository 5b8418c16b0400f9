package registry

import (
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
)

func track(id string) *fixture.Component {
	return &fixture.Component{
		ID:   id,
		Type: fixture.TypeTrack,
		Snaps: []fixture.SnapPoint{
			{ID: "end-a", Kind: fixture.KindTrack, LocalPosition: geom.V(-1, 0, 0)},
			{ID: "end-b", Kind: fixture.KindTrack, LocalPosition: geom.V(1, 0, 0)},
		},
	}
}

func connector(id string) *fixture.Component {
	return &fixture.Component{
		ID:   id,
		Type: fixture.TypeConnector,
		Snaps: []fixture.SnapPoint{
			{ID: "track-a", Kind: fixture.KindTrack},
			{ID: "track-b", Kind: fixture.KindTrack},
		},
	}
}

func link(src, srcSnap, dst, dstSnap string) fixture.Connection {
	return fixture.Connection{
		SourceComponentID: src, SourceSnapPointID: srcSnap,
		TargetComponentID: dst, TargetSnapPointID: dstSnap,
		Kind: fixture.KindTrack,
	}
}

func TestAddAssignsUUID(t *testing.T) {
	r := New()
	id, err := r.Add(track(""))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("id %q is not a uuid: %v", id, err)
	}
	if !r.Has(id) || r.Len() != 1 {
		t.Error("component not stored")
	}
}

func TestAddRejectsDuplicate(t *testing.T) {
	r := New()
	if _, err := r.Add(track("t1")); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Add(track("t1")); !errors.Is(err, errors.ErrCodeInvalidID) {
		t.Errorf("err = %v, want INVALID_ID", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	r := New()
	r.Add(track("t1"))
	c, _ := r.Get("t1")
	c.Position = geom.V(9, 9, 9)
	again, _ := r.Get("t1")
	if again.Position != (geom.Vec3{}) {
		t.Error("mutating a copy changed the registry")
	}
}

func TestGetMissing(t *testing.T) {
	_, err := New().Get("ghost")
	if !errors.Is(err, errors.ErrCodeMissingComponent) {
		t.Errorf("code = %s, want MISSING_COMPONENT", errors.GetCode(err))
	}
	if !stderrors.Is(err, ErrNotFound) {
		t.Error("error does not wrap ErrNotFound")
	}
}

func TestUpdate(t *testing.T) {
	r := New()
	r.Add(track("t1"))
	want := geom.Transform{Position: geom.V(1, 2, 3), Rotation: geom.Euler{Y: 1}, Scale: geom.One}
	if err := r.Update("t1", want); err != nil {
		t.Fatal(err)
	}
	c, _ := r.Get("t1")
	if c.Transform() != want {
		t.Errorf("Transform = %+v, want %+v", c.Transform(), want)
	}
}

func TestConnect(t *testing.T) {
	r := New()
	r.Add(track("t1"))
	r.Add(connector("c1"))

	if err := r.Connect(link("t1", "end-b", "c1", "track-a")); err != nil {
		t.Fatal(err)
	}
	t1, _ := r.Get("t1")
	c1, _ := r.Get("c1")
	if !t1.IsOccupied("end-b") || !c1.IsOccupied("track-a") {
		t.Error("both endpoints should be occupied")
	}
	if t1.IsOccupied("end-a") || c1.IsOccupied("track-b") {
		t.Error("other snap points should stay free")
	}
	if n := len(r.Connections()); n != 1 {
		t.Errorf("len(Connections) = %d, want 1", n)
	}
}

func TestConnectFailuresLeaveStateUntouched(t *testing.T) {
	tests := []struct {
		name string
		conn fixture.Connection
		code errors.Code
	}{
		{"missing source", link("ghost", "end-b", "c1", "track-a"), errors.ErrCodeMissingComponent},
		{"missing target", link("t1", "end-b", "ghost", "track-a"), errors.ErrCodeMissingComponent},
		{"missing source snap", link("t1", "middle", "c1", "track-a"), errors.ErrCodeMissingSnapPoint},
		{"missing target snap", link("t1", "end-b", "c1", "middle"), errors.ErrCodeMissingSnapPoint},
		{"occupied target", link("t1", "end-b", "c1", "track-b"), errors.ErrCodeSnapPointOccupied},
		{"self", link("t1", "end-a", "t1", "end-b"), errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			r.Add(track("t1"))
			r.Add(track("t2"))
			r.Add(connector("c1"))
			if err := r.Connect(link("t2", "end-a", "c1", "track-b")); err != nil {
				t.Fatal(err)
			}

			err := r.Connect(tt.conn)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			t1, _ := r.Get("t1")
			if len(t1.Occupied) != 0 {
				t.Errorf("t1 occupancy changed: %v", t1.Occupied)
			}
			if n := len(r.Connections()); n != 1 {
				t.Errorf("len(Connections) = %d, want 1", n)
			}
		})
	}
}

func TestDisconnect(t *testing.T) {
	r := New()
	r.Add(track("t1"))
	r.Add(connector("c1"))
	r.Connect(link("t1", "end-b", "c1", "track-a"))

	conn, err := r.Disconnect("c1", "track-a")
	if err != nil {
		t.Fatal(err)
	}
	if conn.SourceComponentID != "t1" {
		t.Errorf("removed %v", conn)
	}
	t1, _ := r.Get("t1")
	c1, _ := r.Get("c1")
	if t1.IsOccupied("end-b") || c1.IsOccupied("track-a") {
		t.Error("endpoints still occupied")
	}
	if _, err := r.Disconnect("c1", "track-a"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("second disconnect: err = %v, want NOT_FOUND", err)
	}
}

func TestRemoveCascades(t *testing.T) {
	r := New()
	r.Add(track("t1"))
	r.Add(connector("c1"))
	r.Add(track("t2"))
	r.Connect(link("t1", "end-b", "c1", "track-a"))
	r.Connect(link("t2", "end-a", "c1", "track-b"))

	removed, err := r.Remove("c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 2 {
		t.Errorf("removed %d connections, want 2", len(removed))
	}
	if r.Has("c1") || r.Len() != 2 {
		t.Error("c1 still registered")
	}
	if len(r.Connections()) != 0 {
		t.Error("dangling connections remain")
	}
	for _, id := range []string{"t1", "t2"} {
		c, _ := r.Get(id)
		if len(c.Occupied) != 0 {
			t.Errorf("%s still has occupied snaps %v", id, c.Occupied)
		}
	}
}

func TestComponentsOrder(t *testing.T) {
	r := New()
	for i := range 5 {
		r.Add(track(fmt.Sprintf("t%d", i)))
	}
	r.Remove("t2")
	var got []string
	for _, c := range r.Components() {
		got = append(got, c.ID)
	}
	want := []string{"t0", "t1", "t3", "t4"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestConcurrentConnectSingleWinner(t *testing.T) {
	r := New()
	r.Add(connector("c1"))
	const n = 16
	for i := range n {
		r.Add(track(fmt.Sprintf("t%d", i)))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Connect(link(fmt.Sprintf("t%d", i), "end-a", "c1", "track-a"))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, errors.ErrCodeSnapPointOccupied) {
			t.Errorf("unexpected error %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("%d connects succeeded on one snap point, want 1", wins)
	}
}
