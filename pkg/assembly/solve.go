package assembly

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lightrig/rigsnap/pkg/cache"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/observability"
	"github.com/lightrig/rigsnap/pkg/solver"
)

// Solver is solver.Solve memoized through a cache. It is safe for
// concurrent use when the underlying cache is.
type Solver struct {
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewSolver returns a memoizing solver. Nil arguments select a NullCache,
// the default keyer, cache.DefaultTTL and a discarding logger.
func NewSolver(c cache.Cache, k cache.Keyer, ttl time.Duration, logger *log.Logger) *Solver {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Solver{cache: c, keyer: k, ttl: ttl, logger: logger}
}

// Solve returns solver.Solve(source, sourceSnap, target, targetSnap),
// serving repeated geometry from the cache. Cache failures degrade to a
// recompute. Failed solves are not cached.
func (s *Solver) Solve(ctx context.Context, source *fixture.Component, sourceSnap string, target *fixture.Component, targetSnap string) (solver.Result, error) {
	key := s.keyer.SolveKey(cache.SolveKeyOpts{
		Source: source, SourceSnap: sourceSnap,
		Target: target, TargetSnap: targetSnap,
	})

	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("solve cache read failed", "err", err)
	}
	if hit {
		var res solver.Result
		if err := json.Unmarshal(data, &res); err == nil {
			observability.Cache().OnCacheHit(ctx, "solve")
			res.Connection.SourceComponentID = source.ID
			res.Connection.TargetComponentID = target.ID
			return res, nil
		}
		s.logger.Warn("dropping unreadable solve cache entry", "key", key)
		_ = s.cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "solve")

	res, err := solver.Solve(source, sourceSnap, target, targetSnap)
	if err != nil {
		return solver.Result{}, err
	}
	if data, err := json.Marshal(res); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("solve cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "solve", len(data))
		}
	}
	return res, nil
}
