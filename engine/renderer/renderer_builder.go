package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/paint-house/engine/light"
)

// RendererBuilderOption is a functional option for configuring a Renderer.
type RendererBuilderOption func(*renderer)

// WithSize sets the initial color target size in pixels.
//
// Parameters:
//   - width: target width
//   - height: target height
//
// Returns:
//   - RendererBuilderOption: a function that applies the size option to a renderer
func WithSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.width = max(width, 1)
		r.height = max(height, 1)
	}
}

// WithWorkers sets how many pool workers the software backend rasterizes with.
// Zero or less uses one worker per CPU.
func WithWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.workers = n
	}
}

// WithLights sets the light rig. Without it the renderer uses light.DefaultRig.
//
// Parameters:
//   - rig: the light rig
//
// Returns:
//   - RendererBuilderOption: a function that applies the rig to a renderer
func WithLights(rig light.Rig) RendererBuilderOption {
	return func(r *renderer) {
		r.rig = rig
	}
}

// WithClearColor sets the background color. The default is white.
func WithClearColor(rgb [3]float32) RendererBuilderOption {
	return func(r *renderer) {
		r.clear = rgb
	}
}

// WithSurface attaches a platform window surface, typically from Window.SurfaceDescriptor().
// Only the WebGPU backend presents to it.
//
// Parameters:
//   - descriptor: the platform-specific surface descriptor
//
// Returns:
//   - RendererBuilderOption: a function that applies the surface to a renderer
func WithSurface(descriptor *wgpu.SurfaceDescriptor) RendererBuilderOption {
	return func(r *renderer) {
		r.surfaceDescriptor = descriptor
	}
}

// WithPresentMode sets the presentation mode for the renderer's surface.
// When not specified, the default is PresentModeVSync.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the WebGPU backend.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
