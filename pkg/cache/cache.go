// Package cache memoizes solver results.
//
// Backends share the [Cache] interface: [NullCache] disables caching,
// [FileCache] stores entries under a directory for CLI runs, and [RedisCache]
// shares entries between server instances. Keys come from a [Keyer] so that
// callers never build them by hand.
package cache

import (
	"context"
	"time"

	"github.com/lightrig/rigsnap/pkg/fixture"
)

// DefaultTTL is how long solver results stay cached. Results are a pure
// function of their key, so the TTL only bounds storage growth.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// SolveKey identifies a solver call by everything the result depends on.
	SolveKey(opts SolveKeyOpts) string
}

// SolveKeyOpts describes a solver call.
type SolveKeyOpts struct {
	Source     *fixture.Component
	SourceSnap string
	Target     *fixture.Component
	TargetSnap string
}

// DefaultKeyer hashes inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// solveInput is the part of a component the solver reads. Ids and occupancy
// are left out so identical geometry hits the same entry.
type solveInput struct {
	Type  fixture.TypeTag
	Attrs fixture.Attrs
	Pos   [3]float64
	Rot   [3]float64
	Scale [3]float64
	Snap  fixture.SnapPoint
}

func inputOf(c *fixture.Component, snap string) solveInput {
	in := solveInput{Type: c.Type, Attrs: c.Attrs}
	t := c.Transform()
	in.Pos = [3]float64{t.Position.X, t.Position.Y, t.Position.Z}
	in.Rot = [3]float64{t.Rotation.X, t.Rotation.Y, t.Rotation.Z}
	in.Scale = [3]float64{t.Scale.X, t.Scale.Y, t.Scale.Z}
	if sp, ok := c.Snap(snap); ok {
		in.Snap = sp
	} else {
		in.Snap.ID = snap
	}
	return in
}

// SolveKey implements Keyer.
func (DefaultKeyer) SolveKey(opts SolveKeyOpts) string {
	return hashKey("solve", inputOf(opts.Source, opts.SourceSnap), inputOf(opts.Target, opts.TargetSnap))
}

// ScopedKeyer prefixes every key, giving each tenant or environment its own
// namespace in a shared backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SolveKey implements Keyer.
func (k *ScopedKeyer) SolveKey(opts SolveKeyOpts) string {
	return k.prefix + k.inner.SolveKey(opts)
}
