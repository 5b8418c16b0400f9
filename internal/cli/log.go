// Package cli implements the rigsnap command-line interface.
//
// Commands cover the engine's single-shot operations (compat, candidates,
// solve, constrain), catalogue inspection, scene plan replay, topology
// graphs, the HTTP API and cache management. The CLI is built with cobra
// and logs through charmbracelet/log.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes assembly and cache events to the log. The logger travels on
// context.Context.
//
// # Configuration
//
// Defaults for the room, catalogue, cache backend and server address come
// from ~/.config/rigsnap/config.toml; see [Config].
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs an operation's elapsed time when it completes. Not safe for
// concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, e.g.
// "Applied gallery.toml (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
