package watch

import "time"

// WatcherBuilderOption is a functional option for configuring a Watcher.
type WatcherBuilderOption func(*watcherImpl)

// WithSettle sets how long a file must stay quiet before its change is reported.
//
// Parameters:
//   - d: settle duration; non-positive values report on the next timer tick
//
// Returns:
//   - WatcherBuilderOption: a function that applies the settle duration to a watcher
func WithSettle(d time.Duration) WatcherBuilderOption {
	return func(w *watcherImpl) {
		w.settle = max(d, 0)
	}
}
