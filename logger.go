package tileanim

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip
// building attributes, which keeps logging off the animation hot path.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger shared by tileanim and its sub-packages
// (atlas, texio, manifest). By default nothing is logged. Pass nil to
// restore the silent default. SetLogger is safe for concurrent use.
//
// Levels in use:
//   - [slog.LevelDebug]: scratch growth, loader cache hits, pool fan-out
//   - [slog.LevelInfo]: manifest loads and reloads
//   - [slog.LevelWarn]: textures skipped while reloading
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ComponentLogger returns the current logger tagged with a component name.
func ComponentLogger(component string) *slog.Logger {
	l := Logger()
	if !l.Enabled(context.Background(), slog.LevelError) {
		return l
	}
	return l.With(slog.String("component", component))
}
