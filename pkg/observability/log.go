package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports assembly and cache events to a logger at debug level.
// The CLI registers it when --verbose is set.
type LogHooks struct {
	Logger *log.Logger
}

func (h LogHooks) OnAttach(_ context.Context, connection, policy string, d time.Duration) {
	h.Logger.Debug("attach", "connection", connection, "policy", policy, "took", d)
}

func (h LogHooks) OnPlace(_ context.Context, componentType string, corrected bool, d time.Duration) {
	h.Logger.Debug("place", "type", componentType, "corrected", corrected, "took", d)
}

func (h LogHooks) OnReject(_ context.Context, operation, code string) {
	h.Logger.Debug("reject", "op", operation, "code", code)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ AssemblyHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
)
