package containerof

import (
	"sync/atomic"

	"golang.org/x/exp/slog"
)

var logger atomic.Pointer[slog.Logger]

// Logger returns the logger used to report unreleased ownership and borrows. It is
// slog.Default() unless SetLogger has been called.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// SetLogger replaces the logger used to report unreleased ownership and borrows. Passing
// nil restores the default.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}
