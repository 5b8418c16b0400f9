package assembly

import (
	"bytes"
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lightrig/rigsnap/pkg/cache"
	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
	"github.com/lightrig/rigsnap/pkg/solver"
)

var room = fixture.Room{Width: 8, Depth: 6, Height: 3}

// memCache is an in-memory cache.Cache that counts hits.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	if ok {
		m.hits++
	}
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	m.sets++
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func place(t *testing.T, a *Assembler, tpl, id string, pos geom.Vec3, rot geom.Euler) *fixture.Component {
	t.Helper()
	out, err := a.Place(context.Background(), PlaceRequest{Template: tpl, ID: id, Position: pos, Rotation: rot})
	if err != nil {
		t.Fatalf("Place(%s): %v", tpl, err)
	}
	return out.Component
}

func TestPlaceTrackNearCeiling(t *testing.T) {
	a := New(Options{Room: room})
	out, err := a.Place(context.Background(), PlaceRequest{Template: "track-2m", Position: geom.V(0, 2.9, 0)})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusPlaced || out.Origin != FreePlacement {
		t.Errorf("status/origin = %s/%s", out.Status, out.Origin)
	}
	if !out.Correction.WasCorrected {
		t.Error("expected a correction")
	}
	if got := out.Component.Position.Y; math.Abs(got-2) > 1e-9 {
		t.Errorf("y = %v, want 2", got)
	}
	if got := out.Component.Rotation.X; math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("rotation x = %v, want pi/2", got)
	}
	if out.Component.ID == "" {
		t.Error("no id assigned")
	}
}

func TestPlaceDegenerateRoom(t *testing.T) {
	a := New(Options{Room: fixture.Room{Width: 0, Depth: 6, Height: 3}})
	pos := geom.V(1, 2.9, 1)
	out, err := a.Place(context.Background(), PlaceRequest{Template: "track-2m", Position: pos})
	if err != nil {
		t.Fatal(err)
	}
	if out.Correction.WasCorrected || out.Component.Position != pos {
		t.Errorf("degenerate room moved the component to %v", out.Component.Position)
	}
}

func TestPlaceRejects(t *testing.T) {
	tests := []struct {
		name string
		req  PlaceRequest
		code errors.Code
	}{
		{"unknown template", PlaceRequest{Template: "nope"}, errors.ErrCodeTemplateNotFound},
		{"nan position", PlaceRequest{Template: "track-2m", Position: geom.V(math.NaN(), 0, 0)}, errors.ErrCodeInvalidInput},
		{"inf rotation", PlaceRequest{Template: "track-2m", Rotation: geom.Euler{Y: math.Inf(1)}}, errors.ErrCodeInvalidInput},
		{"bad id", PlaceRequest{Template: "track-2m", ID: "a b"}, errors.ErrCodeInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(Options{Room: room})
			out, err := a.Place(context.Background(), tt.req)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if out.Status != StatusRejected || out.Code != tt.code {
				t.Errorf("outcome = %+v", out)
			}
			if a.Registry().Len() != 0 {
				t.Error("rejected placement was stored")
			}
		})
	}
}

func TestAttachToCeilingConnector(t *testing.T) {
	a := New(Options{Room: room})
	conn := place(t, a, "connector-ceiling", "c1", geom.V(0, 2.9, 0), geom.EulerDeg(0, 90, 0))

	out, err := a.Attach(context.Background(), AttachRequest{
		SourceID: "c1", SourceSnap: "track", Template: "track-2m", TargetSnap: "end-a", ID: "t1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusAttached || out.Origin != SnapSolved {
		t.Errorf("status/origin = %s/%s", out.Status, out.Origin)
	}
	if out.Policy != solver.PolicyTrackFromMount.String() {
		t.Errorf("policy = %s", out.Policy)
	}

	track := out.Component
	want := geom.EulerDeg(90, 90, 0)
	if track.Rotation.MaxAbsDiff(want) > 1e-9 {
		t.Errorf("rotation = %v, want %v", track.Rotation, want)
	}
	anchor, _ := conn.SnapWorldPosition("track")
	got, _ := track.SnapWorldPosition("end-a")
	if !got.ApproxEqual(anchor, geom.Tolerance) {
		t.Errorf("end-a at %v, want %v", got, anchor)
	}

	if !track.IsOccupied("end-a") {
		t.Error("track end-a not occupied")
	}
	c1, _ := a.Registry().Get("c1")
	if !c1.IsOccupied("track") {
		t.Error("connector snap not occupied")
	}
	if out.Connection.TargetComponentID != "t1" || out.Connection.SourceComponentID != "c1" {
		t.Errorf("connection = %v", out.Connection)
	}
}

func TestAttachSkipsClamping(t *testing.T) {
	a := New(Options{Room: room})
	place(t, a, "connector-straight", "c1", geom.V(3.9, 1.5, 0), geom.Euler{})

	out, err := a.Attach(context.Background(), AttachRequest{
		SourceID: "c1", SourceSnap: "track-b", Template: "track-2m", TargetSnap: "end-a",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := geom.V(4.95, 1.5, 0)
	if !out.Component.Position.ApproxEqual(want, 1e-9) {
		t.Errorf("position = %v, want %v (solved placements are not clamped)", out.Component.Position, want)
	}
	if out.Correction != nil {
		t.Error("solved placement reported a correction")
	}
}

func TestAttachRejectsLeaveStateUntouched(t *testing.T) {
	tests := []struct {
		name string
		req  AttachRequest
		code errors.Code
	}{
		{"missing source", AttachRequest{SourceID: "ghost", SourceSnap: "track-a", Template: "track-2m", TargetSnap: "end-a"}, errors.ErrCodeMissingComponent},
		{"missing source snap", AttachRequest{SourceID: "c1", SourceSnap: "nope", Template: "track-2m", TargetSnap: "end-a"}, errors.ErrCodeMissingSnapPoint},
		{"missing target snap", AttachRequest{SourceID: "c1", SourceSnap: "track-b", Template: "track-2m", TargetSnap: "nope"}, errors.ErrCodeMissingSnapPoint},
		{"unknown template", AttachRequest{SourceID: "c1", SourceSnap: "track-b", Template: "nope", TargetSnap: "end-a"}, errors.ErrCodeTemplateNotFound},
		{"occupied", AttachRequest{SourceID: "c1", SourceSnap: "track-a", Template: "track-2m", TargetSnap: "end-b"}, errors.ErrCodeSnapPointOccupied},
		{"incompatible", AttachRequest{SourceID: "c1", SourceSnap: "track-b", Template: "connector-straight", TargetSnap: "track-a"}, errors.ErrCodeIncompatible},
		{"power to mechanical", AttachRequest{SourceID: "t1", SourceSnap: "feed", Template: "spot-classic", TargetSnap: "adapter"}, errors.ErrCodeIncompatible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(Options{Room: room})
			place(t, a, "connector-straight", "c1", geom.V(0, 1.5, 0), geom.Euler{})
			if _, err := a.Attach(context.Background(), AttachRequest{
				SourceID: "c1", SourceSnap: "track-a", Template: "track-2m", TargetSnap: "end-b", ID: "t1",
			}); err != nil {
				t.Fatal(err)
			}
			before := a.Snapshot()

			out, err := a.Attach(context.Background(), tt.req)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if !errors.IsRecoverable(err) {
				t.Errorf("%s should be recoverable", tt.code)
			}
			if out.Status != StatusRejected || out.Code != tt.code || out.Message == "" {
				t.Errorf("outcome = %+v", out)
			}

			after := a.Snapshot()
			if len(after.Components) != len(before.Components) || len(after.Connections) != len(before.Connections) {
				t.Error("rejected attach changed the assembly")
			}
			for i := range before.Components {
				b, c := before.Components[i], after.Components[i]
				if b.Transform() != c.Transform() || len(b.Occupied) != len(c.Occupied) {
					t.Errorf("%s changed", b.ID)
				}
			}
		})
	}
}

func TestAttachUsesSolveCache(t *testing.T) {
	mc := newMemCache()
	a := New(Options{Room: room, Cache: mc})
	place(t, a, "connector-straight", "c1", geom.V(0, 1.5, 0), geom.Euler{})
	place(t, a, "connector-straight", "c2", geom.V(0, 1.5, 0), geom.Euler{})

	req := AttachRequest{SourceSnap: "track-b", Template: "track-2m", TargetSnap: "end-a"}
	req.SourceID = "c1"
	first, err := a.Attach(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	req.SourceID = "c2"
	second, err := a.Attach(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if mc.sets != 1 || mc.hits != 1 {
		t.Errorf("sets=%d hits=%d, want 1/1", mc.sets, mc.hits)
	}
	if first.Component.Transform() != second.Component.Transform() {
		t.Error("cached solve differs from computed solve")
	}
	if second.Connection.SourceComponentID != "c2" || second.Connection.TargetComponentID != second.Component.ID {
		t.Errorf("cached connection not re-stamped: %v", second.Connection)
	}
}

func TestAttachCorruptCacheEntryRecomputes(t *testing.T) {
	mc := newMemCache()
	a := New(Options{Room: room, Cache: mc})
	c1 := place(t, a, "connector-straight", "c1", geom.V(0, 1.5, 0), geom.Euler{})
	tpl, _ := a.Catalog().Get("track-2m")
	key := cache.NewDefaultKeyer().SolveKey(cache.SolveKeyOpts{Source: c1, SourceSnap: "track-b", Target: tpl, TargetSnap: "end-a"})
	mc.data[key] = []byte("garbage")

	out, err := a.Attach(context.Background(), AttachRequest{SourceID: "c1", SourceSnap: "track-b", Template: "track-2m", TargetSnap: "end-a"})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Component.Position.ApproxEqual(geom.V(1.05, 1.5, 0), 1e-9) {
		t.Errorf("position = %v", out.Component.Position)
	}
}

func TestMove(t *testing.T) {
	a := New(Options{Room: room})
	place(t, a, "spot-classic", "s1", geom.V(0, 1, 0), geom.Euler{})

	out, err := a.Move(context.Background(), "s1", geom.V(10, 1, 0), geom.Euler{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusMoved || !out.Correction.WasCorrected {
		t.Errorf("outcome = %+v", out)
	}
	s1, _ := a.Registry().Get("s1")
	if math.Abs(s1.Position.X-3.95) > 1e-9 {
		t.Errorf("x = %v, want clamped to 3.95", s1.Position.X)
	}
}

func TestMoveConnectedRejected(t *testing.T) {
	a := New(Options{Room: room})
	place(t, a, "connector-straight", "c1", geom.V(0, 1.5, 0), geom.Euler{})
	if _, err := a.Attach(context.Background(), AttachRequest{SourceID: "c1", SourceSnap: "track-a", Template: "track-2m", TargetSnap: "end-b"}); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Move(context.Background(), "c1", geom.V(1, 1, 1), geom.Euler{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestDetachThenMove(t *testing.T) {
	a := New(Options{Room: room})
	place(t, a, "connector-straight", "c1", geom.V(0, 1.5, 0), geom.Euler{})
	out, err := a.Attach(context.Background(), AttachRequest{SourceID: "c1", SourceSnap: "track-a", Template: "track-2m", TargetSnap: "end-b"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Detach(context.Background(), "c1", "track-a"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Move(context.Background(), out.Component.ID, geom.V(0, 1, 0), geom.Euler{}); err != nil {
		t.Errorf("move after detach: %v", err)
	}
}

func TestRemove(t *testing.T) {
	a := New(Options{Room: room})
	place(t, a, "connector-straight", "c1", geom.V(0, 1.5, 0), geom.Euler{})
	if _, err := a.Attach(context.Background(), AttachRequest{SourceID: "c1", SourceSnap: "track-a", Template: "track-2m", TargetSnap: "end-b", ID: "t1"}); err != nil {
		t.Fatal(err)
	}
	conns, err := a.Remove(context.Background(), "t1")
	if err != nil || len(conns) != 1 {
		t.Fatalf("Remove = %v, %v", conns, err)
	}
	c1, _ := a.Registry().Get("c1")
	if c1.IsOccupied("track-a") {
		t.Error("partner snap still occupied")
	}
}

func TestCandidates(t *testing.T) {
	a := New(Options{Room: room})
	place(t, a, "connector-ceiling", "c1", geom.V(0, 2.5, 0), geom.Euler{})

	cands, err := a.Candidates("c1", "track")
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) == 0 {
		t.Fatal("no candidates for a ceiling connector track point")
	}
	for _, c := range cands {
		if !c.Template.Type.IsTrackLike() {
			t.Errorf("candidate %s/%s is not track-like", c.Template.Template, c.Snap.ID)
		}
	}

	if _, err := a.Candidates("c1", "nope"); !errors.Is(err, errors.ErrCodeMissingSnapPoint) {
		t.Errorf("err = %v, want MISSING_SNAP_POINT", err)
	}
}

func TestRejectLogLevels(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
	}{
		{"missing component", errors.New(errors.ErrCodeMissingComponent, "component %q not found", "ghost"), "WARN"},
		{"missing snap", errors.New(errors.ErrCodeMissingSnapPoint, "snap point %q not found", "nope"), "WARN"},
		{"alignment", errors.New(errors.ErrCodeSolverAlignment, "snap points misaligned"), "ERRO"},
		{"incompatible", errors.New(errors.ErrCodeIncompatible, "power cannot mate mechanical"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			a := New(Options{Room: room, Logger: log.New(&buf)})
			out, _ := a.reject(context.Background(), "attach", tt.err)
			if out.Status != StatusRejected {
				t.Errorf("status = %s", out.Status)
			}
			got := buf.String()
			if tt.level == "" {
				if got != "" {
					t.Errorf("logged %q, want nothing at info level", got)
				}
				return
			}
			if !strings.Contains(got, tt.level) || !strings.Contains(got, string(errors.GetCode(tt.err))) {
				t.Errorf("log = %q, want %s line with code", got, tt.level)
			}
		})
	}
}

func TestAttachMissingSourceLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	a := New(Options{Room: room, Logger: log.New(&buf)})
	_, err := a.Attach(context.Background(), AttachRequest{SourceID: "ghost", SourceSnap: "track", Template: "track-2m", TargetSnap: "end-a"})
	if !errors.Is(err, errors.ErrCodeMissingComponent) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(buf.String(), "WARN") {
		t.Errorf("log = %q, want a warning", buf.String())
	}
}
