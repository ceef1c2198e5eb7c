// Package viewer mounts one loaded model for interactive painting.
package viewer

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/brush"
	"github.com/Carmen-Shannon/paint-house/engine/camera"
	"github.com/Carmen-Shannon/paint-house/engine/capture"
	"github.com/Carmen-Shannon/paint-house/engine/paint"
	"github.com/Carmen-Shannon/paint-house/engine/renderer"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
)

// ErrClosed is returned by RenderFrame and Capture after Close.
var ErrClosed = errors.New("viewer is closed")

type viewerImpl struct {
	mu *sync.Mutex

	name     string
	graph    scene.Graph
	surfaces paint.SurfaceSet
	camera   camera.Camera
	renderer renderer.Renderer
	brush    brush.State

	resolver   paint.Resolver
	applicator paint.Applicator
	capture    capture.Engine

	closed bool
	paints uint64

	// builder config
	eye            common.Vec3
	fovDegrees     float32
	damping        float32
	captureOptions []capture.EngineBuilderOption
	ownsRenderer   bool
}

// Viewer binds one scene graph to its paintable surfaces, camera, renderer and
// capture engine. All input and rendering is serialized by the viewer's lock.
type Viewer interface {
	// Name returns the catalog name of the mounted model.
	Name() string

	// Graph returns the mounted scene graph.
	Graph() scene.Graph

	// Surfaces returns the paintable surfaces built on mount.
	Surfaces() paint.SurfaceSet

	// Camera returns the interactive camera.
	Camera() camera.Camera

	// HandleClick paints the surface under the pointer with the brush color. It does
	// nothing unless painting mode is on.
	//
	// Parameters:
	//   - px, py: pointer position in viewport pixels
	//
	// Returns:
	//   - bool: true if at least one descriptor was recolored
	HandleClick(px, py float32) bool

	// HandleDrag orbits the camera. Drags are ignored while painting.
	//
	// Parameters:
	//   - dx, dy: pointer movement in pixels
	//
	// Returns:
	//   - bool: true if the drag moved the camera
	HandleDrag(dx, dy float32) bool

	// HandleScroll zooms the camera; positive delta moves closer.
	//
	// Parameters:
	//   - delta: scroll amount
	HandleScroll(delta float32)

	// Tick advances damped camera motion.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Tick(dt float32)

	// RenderFrame draws the scene and presents it.
	//
	// Returns:
	//   - error: ErrClosed or a renderer error
	RenderFrame() error

	// Resize updates the renderer target and the camera aspect.
	//
	// Parameters:
	//   - width, height: new size in pixels
	Resize(width, height int)

	// Capture exports the four capture views and the color inventory. The viewer
	// lock is held for the whole sequence, so no interactive frame interleaves, and
	// the camera is left at the last capture pose.
	//
	// Parameters:
	//   - ctx: only interrupts the frame waits
	//   - name: artifact name
	//
	// Returns:
	//   - capture.Result: the capture result
	//   - error: ErrClosed or a capture error
	Capture(ctx context.Context, name string) (capture.Result, error)

	// PaintCount returns the number of successful paint clicks.
	PaintCount() uint64

	// CaptureCount returns the number of documents exported.
	CaptureCount() uint64

	// Close unbinds everything. The renderer is released only if the viewer owns it.
	Close()
}

var _ Viewer = &viewerImpl{}

// NewViewer mounts graph: it prepares the paintable surfaces, builds an orbit camera
// and binds a capture engine to the renderer.
//
// Parameters:
//   - name: the catalog name of the model
//   - graph: a freshly loaded scene graph; it must not be shared with another viewer
//   - r: the renderer frames are drawn with
//   - b: the brush supplying the paint color and the painting-mode flag
//   - options: variadic list of ViewerBuilderOption functions
//
// Returns:
//   - Viewer: the mounted viewer
func NewViewer(name string, graph scene.Graph, r renderer.Renderer, b brush.State, options ...ViewerBuilderOption) Viewer {
	v := &viewerImpl{
		mu:         &sync.Mutex{},
		name:       name,
		graph:      graph,
		renderer:   r,
		brush:      b,
		applicator: paint.NewApplicator(),
		eye:        common.Vec3{0, 2, 5},
		fovDegrees: camera.DefaultFovDegrees,
		damping:    camera.DefaultDamping,
	}
	for _, opt := range options {
		opt(v)
	}

	v.surfaces = paint.NewPreparer(graph).Prepare()

	vp := r.Viewport()
	v.camera = camera.NewCamera(
		camera.WithController(camera.NewCameraController(
			camera.WithEye(v.eye),
			camera.WithDamping(v.damping),
		)),
		camera.WithFov(v.fovDegrees*math.Pi/180),
		camera.WithAspect(vp.Aspect()),
	)
	v.resolver = paint.NewResolver(paint.WithPaintingGate(b.Painting))
	v.capture = capture.NewEngine(v.captureOptions...)
	v.capture.Bind(r, v.camera, graph, v.surfaces)

	log.Printf("[Viewer] mounted %s: %d paintable surfaces", name, v.surfaces.Len())
	return v
}

func (v *viewerImpl) Name() string {
	return v.name
}

func (v *viewerImpl) Graph() scene.Graph {
	return v.graph
}

func (v *viewerImpl) Surfaces() paint.SurfaceSet {
	return v.surfaces
}

func (v *viewerImpl) Camera() camera.Camera {
	return v.camera
}

func (v *viewerImpl) HandleClick(px, py float32) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || !v.brush.Painting() {
		return false
	}

	hit, ok := v.resolver.Resolve(px, py, v.camera, v.renderer.Viewport(), v.surfaces)
	if !ok {
		log.Printf("[Paint] no surface at (%.0f, %.0f)", px, py)
		return false
	}

	hex := v.brush.Color()
	n := v.applicator.Apply(hit.Surface, v.brush.RGB().Floats())
	if n == 0 {
		log.Printf("[Paint] %s has no paintable descriptor", hit.Surface.Name())
		return false
	}
	v.paints++
	log.Printf("[Paint] %s -> %s (%d descriptors, distance %.2f)", hit.Surface.Name(), hex, n, hit.Distance)
	return true
}

func (v *viewerImpl) HandleDrag(dx, dy float32) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.brush.Painting() {
		return false
	}
	ctrl := v.camera.Controller()
	if ctrl == nil {
		return false
	}
	ctrl.Drag(dx, dy)
	return true
}

func (v *viewerImpl) HandleScroll(delta float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if ctrl := v.camera.Controller(); ctrl != nil {
		ctrl.Zoom(delta)
		v.camera.Update()
	}
}

func (v *viewerImpl) Tick(dt float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if ctrl := v.camera.Controller(); ctrl != nil && ctrl.Update(dt) {
		v.camera.Update()
	}
}

func (v *viewerImpl) RenderFrame() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	if err := v.renderer.Render(v.graph, v.camera); err != nil {
		return err
	}
	v.renderer.Present()
	return nil
}

func (v *viewerImpl) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.renderer.Resize(width, height)
	v.camera.SetAspect(float32(max(width, 1)) / float32(max(height, 1)))
}

func (v *viewerImpl) Capture(ctx context.Context, name string) (capture.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return capture.Result{}, ErrClosed
	}
	return v.capture.Capture(ctx, name)
}

func (v *viewerImpl) PaintCount() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paints
}

func (v *viewerImpl) CaptureCount() uint64 {
	return v.capture.Count()
}

func (v *viewerImpl) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.capture.Bind(nil, nil, nil, nil)
	if v.ownsRenderer {
		v.renderer.Release()
	}
	log.Printf("[Viewer] closed %s", v.name)
}
