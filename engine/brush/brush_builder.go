package brush

import (
	"time"
)

type StateBuilderOption func(*stateImpl)

// WithColor sets the initial brush color. Invalid colors are ignored.
//
// Parameters:
//   - hex: initial color as #RRGGBB or #RGB
//
// Returns:
//   - StateBuilderOption: a function that sets the initial color
func WithColor(hex string) StateBuilderOption {
	return func(s *stateImpl) {
		s.commitHex(hex)
	}
}

// WithDebounce sets the quiet period before OnChange is called.
//
// Parameters:
//   - d: debounce window
//
// Returns:
//   - StateBuilderOption: a function that sets the debounce window
func WithDebounce(d time.Duration) StateBuilderOption {
	return func(s *stateImpl) {
		s.debounce = newDebouncer(d)
	}
}

// WithOnChange registers the debounced color-change callback.
//
// Parameters:
//   - fn: receives the committed color as #RRGGBB
//
// Returns:
//   - StateBuilderOption: a function that sets the callback
func WithOnChange(fn func(hex string)) StateBuilderOption {
	return func(s *stateImpl) {
		s.onChange = fn
	}
}

// WithOnCursorChange registers a callback fired when painting mode flips.
func WithOnCursorChange(fn func(Cursor)) StateBuilderOption {
	return func(s *stateImpl) {
		s.onCursorChange = fn
	}
}

// WithPainting sets the initial painting-mode flag.
func WithPainting(on bool) StateBuilderOption {
	return func(s *stateImpl) {
		s.painting = on
	}
}
