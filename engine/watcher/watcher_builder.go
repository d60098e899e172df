package watcher

import (
	"time"

	"go.uber.org/zap"
)

// WatcherBuilderOption is a functional option applied to a watcher during construction via NewWatcher.
type WatcherBuilderOption func(*watcher)

// WithLogger sets the logger used for watch events.
//
// Parameters:
//   - logger: the logger instance
//
// Returns:
//   - WatcherBuilderOption: a function that applies the logger option to a watcher
func WithLogger(logger *zap.Logger) WatcherBuilderOption {
	return func(w *watcher) {
		if logger != nil {
			w.logger = logger.Named("watcher")
		}
	}
}

// WithDebounce sets how long the file must stay quiet before it is rehashed.
//
// Parameters:
//   - d: the quiet period (default 250ms)
//
// Returns:
//   - WatcherBuilderOption: a function that applies the debounce option to a watcher
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}
