package rendergraph

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Because Enabled reports false, the
// per-barrier debug logging in Compile costs a single branch.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// current holds the active logger; SetLogger may race with a frame being
// compiled on another goroutine.
var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(newNopLogger())
}

// SetLogger configures the logger for rendergraph and its sub-packages.
// By default the package produces no log output.
//
// Pass nil to restore the silent default.
//
// Log levels used by rendergraph:
//   - [slog.LevelDebug]: per-compile diagnostics (dependency counts, lifetimes, barriers)
//   - [slog.LevelInfo]: compile summaries and backend object creation
//   - [slog.LevelWarn]: recoverable failures (allocation, framebuffer creation, declaration order)
//   - [slog.LevelError]: rejected operations (execute before compile, bad imports)
//
// Example:
//
//	rendergraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	current.Store(l)
}

// Logger returns the current logger used by rendergraph.
// Backends (backend/native) call this to share the same configuration.
func Logger() *slog.Logger {
	return current.Load()
}
