// Package capture renders a painted scene from fixed viewpoints and assembles the
// views and the list of applied colors into an exported document.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"sync"

	"github.com/Carmen-Shannon/paint-house/engine/camera"
	"github.com/Carmen-Shannon/paint-house/engine/export"
	"github.com/Carmen-Shannon/paint-house/engine/paint"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
)

var (
	// ErrCaptureInProgress is returned when a capture is requested while another runs.
	ErrCaptureInProgress = errors.New("capture already in progress")

	// ErrNotBound is returned when the renderer, camera, scene or surface set is missing.
	ErrNotBound = errors.New("capture requires a renderer, camera, scene and surface set")

	// ErrReadback wraps any failure to read back or encode a rendered view.
	ErrReadback = errors.New("frame read-back failed")
)

// State is a step of the capture state machine.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateAssembling
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateAssembling:
		return "assembling"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Step is a state transition reported to the observer. Pose is set while capturing.
type Step struct {
	State State
	Pose  string
}

// FrameSource is the part of the renderer a capture drives.
type FrameSource interface {
	Render(graph scene.Graph, cam camera.Camera) error
	AwaitFrame(ctx context.Context) error
	ReadImage() (image.Image, error)
}

// Result describes a finished capture.
type Result struct {
	// Path is where the sink wrote the document.
	Path string
	// Poses names the captured views, in order.
	Poses []string
	// Images holds the PNG encoding of each view, indexed like Poses.
	Images [][]byte
	// Colors is the sorted color inventory.
	Colors []string
	// Pages is the number of document pages.
	Pages int
}

type engineImpl struct {
	mu   *sync.Mutex
	busy *sync.Mutex

	source  FrameSource
	camera  camera.Camera
	graph   scene.Graph
	set     paint.SurfaceSet
	factory export.Factory

	poses    []camera.Pose
	layout   Layout
	observer func(Step)

	state State
	count uint64
}

// Engine captures the scene from a fixed sequence of poses and exports the result.
// It restores no camera state: after a capture the camera sits at the last pose.
type Engine interface {
	// Bind sets what Capture draws. Any argument may be nil to unbind it.
	//
	// Parameters:
	//   - source: the renderer
	//   - cam: the camera the poses are applied to
	//   - graph: the scene to draw
	//   - set: the surfaces whose colors make up the inventory
	Bind(source FrameSource, cam camera.Camera, graph scene.Graph, set paint.SurfaceSet)

	// Capture renders every pose, then assembles the views and the color inventory
	// into a fresh sink and finalizes it under name. It is all-or-nothing: a
	// failure before assembly leaves no document and never invokes the sink factory.
	// ctx only interrupts the per-pose frame wait.
	//
	// Parameters:
	//   - ctx: cancellation for the frame waits
	//   - name: artifact name passed to Sink.Finalize
	//
	// Returns:
	//   - Result: the captured views and the written path
	//   - error: ErrNotBound, ErrCaptureInProgress, ErrReadback or a sink error
	Capture(ctx context.Context, name string) (Result, error)

	// State returns the current state.
	//
	// Returns:
	//   - State: StateIdle unless a capture is running
	State() State

	// Count returns the number of documents written.
	//
	// Returns:
	//   - uint64: successful capture count
	Count() uint64
}

var _ Engine = &engineImpl{}

// NewEngine creates a capture Engine. Without options it captures camera.CapturePoses
// with DefaultLayout into a PDF in the working directory.
//
// Parameters:
//   - options: variadic list of EngineBuilderOption functions
//
// Returns:
//   - Engine: the capture engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engineImpl{
		mu:     &sync.Mutex{},
		busy:   &sync.Mutex{},
		poses:  camera.CapturePoses(),
		layout: DefaultLayout(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.factory == nil {
		e.factory = export.PDFFactory()
	}
	e.layout = e.layout.withDefaults()
	return e
}

func (e *engineImpl) Bind(source FrameSource, cam camera.Camera, graph scene.Graph, set paint.SurfaceSet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.source = source
	e.camera = cam
	e.graph = graph
	e.set = set
}

func (e *engineImpl) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *engineImpl) Count() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

func (e *engineImpl) Capture(ctx context.Context, name string) (Result, error) {
	if !e.busy.TryLock() {
		return Result{}, ErrCaptureInProgress
	}
	defer e.busy.Unlock()
	defer e.transition(Step{State: StateIdle})

	e.mu.Lock()
	source, cam, graph, set := e.source, e.camera, e.graph, e.set
	poses := append([]camera.Pose(nil), e.poses...)
	e.mu.Unlock()

	if source == nil || cam == nil || graph == nil || set == nil {
		log.Printf("[Capture] aborted: %v", ErrNotBound)
		return Result{}, ErrNotBound
	}
	if err := camera.ValidateCapturePoses(poses); err != nil {
		log.Printf("[Capture] aborted: %v", err)
		return Result{}, err
	}

	res := Result{
		Poses:  make([]string, 0, len(poses)),
		Images: make([][]byte, 0, len(poses)),
	}
	for _, pose := range poses {
		e.transition(Step{State: StateCapturing, Pose: pose.Name})
		data, err := e.capturePose(ctx, source, cam, graph, pose)
		if err != nil {
			log.Printf("[Capture] aborted at %s: %v", pose.Name, err)
			return Result{}, err
		}
		res.Poses = append(res.Poses, pose.Name)
		res.Images = append(res.Images, data)
	}

	e.transition(Step{State: StateAssembling})
	res.Colors = Inventory(set)

	sink, err := e.factory()
	if err != nil {
		return Result{}, fmt.Errorf("create sink: %w", err)
	}
	if res.Pages, err = assemble(sink, e.layout, res.Images, res.Colors); err != nil {
		return Result{}, err
	}
	if res.Path, err = sink.Finalize(name); err != nil {
		return Result{}, fmt.Errorf("finalize: %w", err)
	}

	e.mu.Lock()
	e.count++
	e.mu.Unlock()
	e.transition(Step{State: StateDone})
	log.Printf("[Capture] wrote %s: %d views, %d colors, %d pages", res.Path, len(res.Images), len(res.Colors), res.Pages)
	return res, nil
}

// capturePose points the camera at the pose target from the pose position, draws one
// frame and returns it PNG-encoded.
func (e *engineImpl) capturePose(ctx context.Context, source FrameSource, cam camera.Camera, graph scene.Graph, pose camera.Pose) ([]byte, error) {
	cam.ApplyPose(pose)

	if err := source.Render(graph, cam); err != nil {
		return nil, fmt.Errorf("render %s: %w", pose.Name, err)
	}
	if err := source.AwaitFrame(ctx); err != nil {
		return nil, fmt.Errorf("await %s frame: %w", pose.Name, err)
	}
	img, err := source.ReadImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadback, pose.Name, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode %s: %w", ErrReadback, pose.Name, err)
	}
	return buf.Bytes(), nil
}

func (e *engineImpl) transition(s Step) {
	e.mu.Lock()
	e.state = s.State
	observer := e.observer
	e.mu.Unlock()
	if observer != nil {
		observer(s)
	}
}
