package renderer

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/camera"
	"github.com/Carmen-Shannon/paint-house/engine/light"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
)

var (
	// ErrNoFrame is returned by ReadImage before any frame has been flushed.
	ErrNoFrame = errors.New("no frame has been flushed")

	// ErrUnknownBackend is returned by ParseBackendType for names it does not know.
	ErrUnknownBackend = errors.New("unknown renderer backend")

	// ErrReleased is returned by Render after Release.
	ErrReleased = errors.New("renderer has been released")

	errNilCamera = errors.New("render requires a camera")
)

// DefaultWidth and DefaultHeight size the color target when no WithSize option is given.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	width  int
	height int
	rig    light.Rig
	clear  [3]float32
	frames uint64

	released bool

	// Pre-creation config collected from builder options
	workers              int
	surfaceDescriptor    *wgpu.SurfaceDescriptor
	forceFallbackAdapter bool
	presentMode          PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer draws a scene graph from a camera into a color target that can be read
// back as an image.
//
// Rendering is split in three steps so callers can wait for asynchronous backends:
// Render submits the frame, AwaitFrame blocks until it is flushed, and ReadImage
// copies it out.
type Renderer interface {
	// BackendType reports which backend draws the frames.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// Render draws every visible mesh of graph as seen by cam. It returns once the
	// frame has been submitted to the backend.
	//
	// Parameters:
	//   - graph: the scene to draw; nil draws only the clear color
	//   - cam: the camera supplying the view-projection matrix and eye position
	//
	// Returns:
	//   - error: ErrReleased after Release, or a backend error
	Render(graph scene.Graph, cam camera.Camera) error

	// AwaitFrame blocks until the last rendered frame is readable. It has no timeout
	// of its own; ctx only ends the wait early.
	//
	// Parameters:
	//   - ctx: cancellation for the wait
	//
	// Returns:
	//   - error: ctx.Err() if the wait was cut short
	AwaitFrame(ctx context.Context) error

	// ReadImage copies the last flushed frame.
	//
	// Returns:
	//   - image.Image: an *image.RGBA the caller owns
	//   - error: ErrNoFrame if nothing was flushed yet
	ReadImage() (image.Image, error)

	// Present shows the last frame on the attached window surface, if any.
	Present()

	// Resize reallocates the color target. Non-positive sizes are clamped to 1.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	Resize(width, height int)

	// Viewport returns the pixel rectangle the frames cover, anchored at the origin.
	//
	// Returns:
	//   - common.Rect: the viewport rectangle
	Viewport() common.Rect

	// SetLights replaces the light rig used for shading. A nil rig lights every
	// surface with full white ambient.
	//
	// Parameters:
	//   - rig: the new rig
	SetLights(rig light.Rig)

	// Lights returns the current light rig.
	Lights() light.Rig

	// FrameCount returns the number of frames rendered so far.
	FrameCount() uint64

	// Release frees the backend. The renderer cannot be used afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with the specified backend. The WebGPU backend
// panics if no adapter or device is available.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		width:       DefaultWidth,
		height:      DefaultHeight,
		rig:         light.DefaultRig(),
		clear:       [3]float32{1, 1, 1},
		presentMode: PresentModeVSync,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		msaa := MSAA4x
		if r.pendingMSAA != nil {
			msaa = *r.pendingMSAA
		}
		r.backend = newWGPURendererBackend(r.surfaceDescriptor, r.forceFallbackAdapter, msaa, r.presentMode, r.width, r.height)
	case BackendTypeSoftware:
		fallthrough
	default:
		r.backendType = BackendTypeSoftware
		r.backend = newSoftwareRendererBackend(r.width, r.height, r.workers)
	}
	return r
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Render(graph scene.Graph, cam camera.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	if cam == nil {
		return errNilCamera
	}

	f := buildFrame(graph, cam, r.rig, r.width, r.height, r.clear)
	if err := r.backend.Draw(f); err != nil {
		return err
	}
	r.frames++
	return nil
}

func (r *renderer) AwaitFrame(ctx context.Context) error {
	return r.backend.AwaitFrame(ctx)
}

func (r *renderer) ReadImage() (image.Image, error) {
	img, err := r.backend.ReadImage()
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = max(width, 1), max(height, 1)
	r.backend.Resize(r.width, r.height)
}

func (r *renderer) Viewport() common.Rect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return common.Rect{Width: float32(r.width), Height: float32(r.height)}
}

func (r *renderer) SetLights(rig light.Rig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rig = rig
}

func (r *renderer) Lights() light.Rig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rig
}

func (r *renderer) FrameCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.backend.Release()
}
