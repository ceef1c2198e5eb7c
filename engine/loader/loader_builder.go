package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets how many goroutines extract meshes in parallel.
//
// Parameters:
//   - n: worker count; values below 1 are treated as 1
//
// Returns:
//   - LoaderBuilderOption: a function that sets the worker count
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n < 1 {
			n = 1
		}
		l.workers = n
	}
}
