package renderer

import (
	"context"
	"fmt"
	"image"
	"strings"
)

// RendererBackendType identifies the implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeSoftware selects the pure-Go rasterizer. It needs no GPU and is the default.
	BackendTypeSoftware RendererBackendType = iota

	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeSoftware:
		return "software"
	case BackendTypeWGPU:
		return "wgpu"
	default:
		return fmt.Sprintf("RendererBackendType(%d)", int(t))
	}
}

// ParseBackendType maps a config name ("software", "wgpu") to a RendererBackendType.
// An empty name selects the software backend.
//
// Parameters:
//   - name: the backend name, case-insensitive
//
// Returns:
//   - RendererBackendType: the backend type
//   - error: ErrUnknownBackend if the name is not recognised
func ParseBackendType(name string) (RendererBackendType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "software", "cpu":
		return BackendTypeSoftware, nil
	case "wgpu", "webgpu", "gpu":
		return BackendTypeWGPU, nil
	default:
		return BackendTypeSoftware, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values are adapter-dependent. The software backend ignores it.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default for WebGPU.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the backend interface the Renderer drives. Each backend owns its
// color target and signals frame completion on its own schedule.
type RendererBackend interface {
	// Resize reallocates the color and depth targets.
	//
	// Parameters:
	//   - width: target width in pixels
	//   - height: target height in pixels
	Resize(width, height int)

	// Draw renders one prepared frame. It returns once the work is submitted; the
	// frame-ready signal may fire later.
	//
	// Parameters:
	//   - f: the frame to draw
	//
	// Returns:
	//   - error: an error if the frame could not be drawn
	Draw(f *frame) error

	// AwaitFrame blocks until the most recently drawn frame has been flushed to a
	// readable buffer, or ctx is done.
	AwaitFrame(ctx context.Context) error

	// ReadImage copies the last flushed frame.
	//
	// Returns:
	//   - *image.RGBA: the frame, with straight alpha
	//   - error: ErrNoFrame if nothing was flushed yet
	ReadImage() (*image.RGBA, error)

	// Present shows the last frame on the window surface. Backends without a surface
	// treat it as a no-op.
	Present()

	// Release frees every resource held by the backend.
	Release()
}
