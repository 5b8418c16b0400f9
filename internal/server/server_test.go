package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lightrig/rigsnap/pkg/cache"
	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/solver"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(Config{Room: fixture.Room{Width: 8, Depth: 6, Height: 3}, Cache: cache.NewNullCache()})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestCatalog(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/catalog")
	if err != nil {
		t.Fatal(err)
	}
	var all []fixture.Component
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(all) == 0 {
		t.Fatal("catalog is empty")
	}

	resp, err = http.Get(ts.URL + "/api/catalog/track-2m")
	if err != nil {
		t.Fatal(err)
	}
	var tpl fixture.Component
	if err := json.NewDecoder(resp.Body).Decode(&tpl); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if tpl.Template != "track-2m" || tpl.Type != fixture.TypeTrack {
		t.Errorf("template = %q %v", tpl.Template, tpl.Type)
	}

	resp, err = http.Get(ts.URL + "/api/catalog/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown slug status = %d, want 404", resp.StatusCode)
	}
}

func TestCompatible(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "track to ceiling connector",
			body: `{"source":{"template":"connector-ceiling","snap":"track"},"target":{"template":"track-2m","snap":"end-a"}}`,
			want: true,
		},
		{
			name: "spotlight on mount",
			body: `{"source":{"template":"track-2m","snap":"mount-1"},"target":{"template":"spot-classic","snap":"adapter"}}`,
			want: true,
		},
		{
			name: "power to track",
			body: `{"source":{"template":"power-feed","snap":"out"},"target":{"template":"track-2m","snap":"end-a"}}`,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := post(t, ts, "/api/compatible", tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %v", resp.StatusCode, out)
			}
			if got := out["compatible"]; got != tt.want {
				t.Errorf("compatible = %v, want %v (%v)", got, tt.want, out["reason"])
			}
		})
	}
}

func TestSolve(t *testing.T) {
	ts := newTestServer(t)
	body := `{
		"source": {"template":"connector-ceiling","snap":"track","position":{"x":0,"y":2.9,"z":0}},
		"target": {"template":"track-2m","snap":"end-a"}
	}`
	resp, err := http.Post(ts.URL+"/api/solve", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out solveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Status != "solved" || out.Result == nil {
		t.Fatalf("response = %+v", out)
	}
	if out.Result.Policy != solver.PolicyTrackFromMount {
		t.Errorf("policy = %v", out.Result.Policy)
	}
	// end-a sits at local x=-1; the connector's track point is at y=2.89.
	want := [3]float64{1, 2.89, 0}
	got := [3]float64{out.Result.Position.X, out.Result.Position.Y, out.Result.Position.Z}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("position = %v, want %v", got, want)
		}
	}
}

func TestSolveRejections(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		body string
		code string
	}{
		{
			name: "incompatible",
			body: `{"source":{"template":"power-feed","snap":"out"},"target":{"template":"track-2m","snap":"end-a"}}`,
			code: "INCOMPATIBLE_SNAP_POINTS",
		},
		{
			name: "missing snap",
			body: `{"source":{"template":"track-2m","snap":"end-z"},"target":{"template":"track-2m","snap":"end-a"}}`,
			code: "MISSING_SNAP_POINT",
		},
		{
			name: "unknown template",
			body: `{"source":{"template":"nope","snap":"end-a"},"target":{"template":"track-2m","snap":"end-a"}}`,
			code: "TEMPLATE_NOT_FOUND",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := post(t, ts, "/api/solve", tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if out["status"] != "rejected" || out["code"] != tt.code {
				t.Errorf("response = %v, want rejected %s", out, tt.code)
			}
		})
	}
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/api/solve", `{"source":`},
		{"unknown field", "/api/compatible", `{"source":{"template":"track-2m","snap":"end-a"},"bogus":1}`},
		{"no component", "/api/solve", `{"source":{"snap":"end-a"},"target":{"template":"track-2m","snap":"end-a"}}`},
		{"constrain without subject", "/api/constrain", `{"position":{"x":0,"y":0,"z":0}}`},
		{"constrain bad type", "/api/constrain", `{"type":"chandelier"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := post(t, ts, tt.path, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (%v)", resp.StatusCode, out)
			}
			if out["error"] == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestConstrain(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name      string
		body      string
		wantX     float64
		corrected bool
	}{
		{
			name:  "inside room",
			body:  `{"type":"spotlight","position":{"x":1,"y":1.5,"z":0}}`,
			wantX: 1,
		},
		{
			name:      "clamped by default room",
			body:      `{"type":"spotlight","position":{"x":10,"y":1.5,"z":0}}`,
			wantX:     3.95,
			corrected: true,
		},
		{
			name:  "request room overrides",
			body:  `{"type":"spotlight","position":{"x":10,"y":1.5,"z":0},"room":{"width":30,"depth":6,"height":3}}`,
			wantX: 10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := post(t, ts, "/api/constrain", tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %v", resp.StatusCode, out)
			}
			pos := out["position"].(map[string]any)
			if x := pos["x"].(float64); math.Abs(x-tt.wantX) > 1e-9 {
				t.Errorf("x = %v, want %v", x, tt.wantX)
			}
			if out["was_corrected"] != tt.corrected {
				t.Errorf("was_corrected = %v, want %v", out["was_corrected"], tt.corrected)
			}
		})
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("ListenAndServe() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRespondFailureAlignmentLogsError(t *testing.T) {
	var buf bytes.Buffer
	s := New(Config{Room: fixture.Room{Width: 8, Depth: 6, Height: 3}, Cache: cache.NewNullCache(), Logger: log.New(&buf)})

	rec := httptest.NewRecorder()
	s.respondFailure(rec, errors.New(errors.ErrCodeSolverAlignment, "snap points misaligned"))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var body rejection
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "rejected" || body.Code != errors.ErrCodeSolverAlignment {
		t.Errorf("body = %+v", body)
	}
	if !strings.Contains(buf.String(), "ERRO") {
		t.Errorf("log = %q, want an error line", buf.String())
	}
}
