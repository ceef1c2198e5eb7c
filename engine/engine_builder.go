package engine

import (
	"time"

	"github.com/Carmen-Shannon/paint-house/engine/catalog"
	"github.com/Carmen-Shannon/paint-house/engine/export"
	"github.com/Carmen-Shannon/paint-house/engine/renderer"
	"github.com/Carmen-Shannon/paint-house/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Camera damping advances at this rate.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets the window the engine draws to and takes input from.
// Without a window the engine runs headless on the software renderer.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}

// WithCatalog sets the model catalog. Defaults to the embedded catalog.
//
// Parameters:
//   - c: the catalog
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCatalog(c catalog.Catalog) EngineBuilderOption {
	return func(e *engine) {
		e.catalog = c
	}
}

// WithRenderer sets a renderer owned by the caller. The engine does not release it.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
		e.ownsRenderer = false
	}
}

// WithGraphLoader replaces the glTF loader, e.g. with procedural scenes.
//
// Parameters:
//   - load: returns a fresh graph per call
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithGraphLoader(load GraphLoader) EngineBuilderOption {
	return func(e *engine) {
		e.loadGraph = load
	}
}

// WithWatch reloads the mounted model when its file changes on disk.
func WithWatch(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.watchEnabled = enabled
	}
}

// WithOutputDir sets the directory exported documents are written to.
func WithOutputDir(dir string) EngineBuilderOption {
	return func(e *engine) {
		e.outputDir = dir
	}
}

// WithSinkFactory overrides the export sink for a format.
//
// Parameters:
//   - format: catalog.FormatPDF, catalog.FormatPNG or a custom name
//   - factory: creates one sink per export
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSinkFactory(format string, factory export.Factory) EngineBuilderOption {
	return func(e *engine) {
		e.factories[format] = factory
	}
}
