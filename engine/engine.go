package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/brush"
	"github.com/Carmen-Shannon/paint-house/engine/capture"
	"github.com/Carmen-Shannon/paint-house/engine/catalog"
	"github.com/Carmen-Shannon/paint-house/engine/export"
	"github.com/Carmen-Shannon/paint-house/engine/light"
	"github.com/Carmen-Shannon/paint-house/engine/loader"
	"github.com/Carmen-Shannon/paint-house/engine/profiler"
	"github.com/Carmen-Shannon/paint-house/engine/renderer"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
	"github.com/Carmen-Shannon/paint-house/engine/viewer"
	"github.com/Carmen-Shannon/paint-house/engine/watch"
	"github.com/Carmen-Shannon/paint-house/engine/window"
)

// Catalog names bound to the model keys.
const (
	ModelHouse = "house"
	ModelRoom  = "room"
)

var (
	// ErrNoModel is returned by Export before any model is mounted.
	ErrNoModel = errors.New("no model is mounted")

	// ErrUnknownFormat is returned by Export for a format with no sink factory.
	ErrUnknownFormat = errors.New("unknown export format")
)

// GraphLoader produces a fresh scene graph for a resolved catalog entry.
type GraphLoader func(entry catalog.Entry) (scene.Graph, error)

// engine implements the Engine interface.
// Coordinates the tick, render and window threads around the mounted viewer.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window      window.Window
	windowClose sync.Once

	renderer     renderer.Renderer
	ownsRenderer bool

	catalog   catalog.Catalog
	selection catalog.Selection
	brush     brush.State

	loader    loader.Loader
	loadGraph GraphLoader

	watcher      watch.Watcher
	watchEnabled bool

	// mu guards viewer, entry and pointer.
	mu      *sync.Mutex
	viewer  viewer.Viewer
	entry   catalog.Entry
	pointer pointer

	// mountMu serializes model swaps.
	mountMu *sync.Mutex

	// exportMu is held for a whole export; exportFactory is only read under it.
	exportMu      *sync.Mutex
	exportFactory export.Factory
	factories     map[string]export.Factory
	outputDir     string

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate   time.Duration
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the paint house application. It owns the window, the brush, the model
// selection and the mounted viewer, and runs the tick and render loops.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Brush returns the brush state.
	//
	// Returns:
	//   - brush.State: the brush
	Brush() brush.State

	// Catalog returns the model catalog.
	//
	// Returns:
	//   - catalog.Catalog: the catalog
	Catalog() catalog.Catalog

	// Selection returns the current model/area selection.
	//
	// Returns:
	//   - catalog.Selection: the selection
	Selection() catalog.Selection

	// Viewer returns the mounted viewer, or nil before the first mount.
	//
	// Returns:
	//   - viewer.Viewer: the mounted viewer
	Viewer() viewer.Viewer

	// SelectModel selects a model and optional area, loads a fresh graph for it and
	// swaps the mounted viewer. The old viewer is closed only after the new one is
	// mounted; on a load error the old viewer stays.
	//
	// Parameters:
	//   - model: the main model name
	//   - area: the area name, or ""
	//
	// Returns:
	//   - error: the load error, if any
	SelectModel(model, area string) error

	// SelectAreaIndex toggles the i-th area of the current model and remounts. It is
	// a no-op when the model has no such area.
	//
	// Parameters:
	//   - i: zero-based area index
	//
	// Returns:
	//   - error: the load error, if any
	SelectAreaIndex(i int) error

	// Export captures the mounted model and writes a document.
	//
	// Parameters:
	//   - ctx: interrupts the frame waits
	//   - format: catalog.FormatPDF or catalog.FormatPNG
	//
	// Returns:
	//   - capture.Result: the capture result
	//   - error: ErrNoModel, ErrUnknownFormat or a capture error
	Export(ctx context.Context, format string) (capture.Result, error)

	// HandleKey applies a key binding.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	HandleKey(keyCode uint32)

	// HandleMouseDown starts a click or drag gesture.
	//
	// Parameters:
	//   - button: the mouse button
	//   - x, y: pointer position in pixels
	HandleMouseDown(button uint32, x, y int32)

	// HandleMouseMove orbits the camera while a drag is in progress.
	//
	// Parameters:
	//   - x, y: pointer position in pixels
	HandleMouseMove(x, y int32)

	// HandleMouseUp ends a gesture; a gesture that stayed within the click slop paints.
	//
	// Parameters:
	//   - button: the mouse button
	//   - x, y: pointer position in pixels
	HandleMouseUp(button uint32, x, y int32)

	// HandleScroll zooms the camera.
	//
	// Parameters:
	//   - delta: scroll amount, positive zooms in
	HandleScroll(delta float32)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run mounts the selected model if nothing is mounted, starts the loops and
	// processes window messages until the window closes.
	//
	// Returns:
	//   - error: the initial load error, or an error when there is no window
	Run() error

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Close releases the viewer, watcher, loader and any owned renderer.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// The renderer defaults to the catalog's backend drawing to the window surface, or to
// the software backend when there is no window.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		running:          false,
		wg:               sync.WaitGroup{},
		mu:               &sync.Mutex{},
		mountMu:          &sync.Mutex{},
		exportMu:         &sync.Mutex{},
		factories:        make(map[string]export.Factory),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.catalog == nil {
		e.catalog = catalog.Default()
	}
	cfg := e.catalog.Config()
	e.selection = catalog.NewSelection(e.catalog)

	if e.outputDir == "" {
		e.outputDir = cfg.Capture.Output
	}
	if _, ok := e.factories[catalog.FormatPDF]; !ok {
		e.factories[catalog.FormatPDF] = export.PDFFactory(export.WithOutputDir(e.outputDir))
	}
	if _, ok := e.factories[catalog.FormatPNG]; !ok {
		e.factories[catalog.FormatPNG] = export.SheetFactory(export.WithOutputDir(e.outputDir))
	}

	e.brush = brush.NewState(
		brush.WithColor(cfg.Defaults.Brush),
		brush.WithOnChange(func(hex string) {
			log.Printf("[Brush] color %s", hex)
		}),
		brush.WithOnCursorChange(func(c brush.Cursor) {
			if e.window != nil {
				e.window.SetCursor(c)
			}
		}),
	)

	if e.renderer == nil {
		e.renderer = e.newRenderer(cfg)
		e.ownsRenderer = true
	}

	if e.loadGraph == nil {
		e.loader = loader.NewLoader(loader.BackendTypeGLTF)
		e.loadGraph = func(entry catalog.Entry) (scene.Graph, error) {
			return e.loader.Load(entry.Path)
		}
	}

	if e.watchEnabled {
		w, err := watch.NewWatcher(e.onModelChanged)
		if err != nil {
			log.Printf("[Watch] disabled: %v", err)
		} else {
			e.watcher = w
		}
	}

	e.profiler = profiler.NewProfiler(profiler.WithStats(e.stats))

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if v := e.Viewer(); v != nil {
				v.Resize(width, height)
			} else {
				e.renderer.Resize(width, height)
			}
		})
		e.window.SetKeyDownCallback(e.HandleKey)
		e.window.SetMouseDownCallback(e.HandleMouseDown)
		e.window.SetMouseUpCallback(e.HandleMouseUp)
		e.window.SetMouseMoveCallback(e.HandleMouseMove)
		e.window.SetScrollCallback(e.HandleScroll)
	}

	return e
}

// newRenderer builds the renderer described by the catalog config.
func (e *engine) newRenderer(cfg catalog.Config) renderer.Renderer {
	opts := []renderer.RendererBuilderOption{
		renderer.WithLights(light.DefaultRig()),
		renderer.WithMSAA(cfg.MSAA()),
		renderer.WithPresentMode(cfg.PresentMode()),
	}
	backend := renderer.BackendTypeSoftware
	if e.window != nil {
		backend = cfg.Backend()
		opts = append(opts,
			renderer.WithSize(e.window.Width(), e.window.Height()),
			renderer.WithSurface(e.window.SurfaceDescriptor()),
		)
	} else {
		opts = append(opts, renderer.WithSize(cfg.Window.Width, cfg.Window.Height))
	}
	return renderer.NewRenderer(backend, opts...)
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Brush() brush.State {
	return e.brush
}

func (e *engine) Catalog() catalog.Catalog {
	return e.catalog
}

func (e *engine) Selection() catalog.Selection {
	return e.selection
}

func (e *engine) Viewer() viewer.Viewer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewer
}

// --- model selection ---

func (e *engine) SelectModel(model, area string) error {
	e.selection.SetModel(model)
	if area != "" {
		e.selection.SetArea(area)
	}
	return e.mount(e.selection.Resolve())
}

func (e *engine) SelectAreaIndex(i int) error {
	areas := e.catalog.Areas(e.selection.Model())
	if i < 0 || i >= len(areas) {
		return nil
	}
	e.selection.ToggleArea(areas[i])
	return e.mount(e.selection.Resolve())
}

// mount loads a fresh graph for entry and swaps it in as the mounted viewer.
func (e *engine) mount(entry catalog.Entry) error {
	e.mountMu.Lock()
	defer e.mountMu.Unlock()

	if entry.Fallback {
		log.Printf("[Engine] selection %q/%q not in catalog, using %s", e.selection.Model(), e.selection.Area(), entry.Name)
	}
	graph, err := e.loadGraph(entry)
	if err != nil {
		log.Printf("[Engine] failed to load %s: %v", entry.Name, err)
		return fmt.Errorf("load %s: %w", entry.Name, err)
	}

	cfg := e.catalog.Config()
	next := viewer.NewViewer(entry.Name, graph, e.renderer, e.brush,
		viewer.WithCameraPosition(entry.Camera),
		viewer.WithFov(cfg.Defaults.Fov),
		viewer.WithCaptureOptions(
			capture.WithSinkFactory(e.newSink),
			capture.WithPoses(cfg.CameraPoses()...),
			capture.WithLayout(cfg.Capture.Layout),
		),
	)

	e.mu.Lock()
	prev, prevEntry := e.viewer, e.entry
	e.viewer, e.entry = next, entry
	e.pointer = pointer{}
	e.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	if e.watcher != nil {
		if prevEntry.Path != "" && prevEntry.Path != entry.Path {
			e.watcher.Unwatch(prevEntry.Path)
		}
		if err := e.watcher.Watch(entry.Path); err != nil {
			log.Printf("[Watch] cannot watch %s: %v", entry.Path, err)
		}
	}
	if e.window != nil {
		e.window.SetTitle(window.ModelTitle(cfg.Window.Title, entry.Name))
	}
	log.Printf("[Engine] mounted %s (%s)", entry.Name, entry.Path)
	return nil
}

// onModelChanged remounts the current model when its file changes on disk.
func (e *engine) onModelChanged(path string) {
	e.mu.Lock()
	current := e.entry
	e.mu.Unlock()
	if current.Path == "" || path != current.Path {
		return
	}
	if e.loader != nil {
		e.loader.Evict(path)
	}
	log.Printf("[Engine] reloading %s", current.Name)
	if err := e.mount(current); err != nil {
		log.Printf("[Engine] reload of %s failed, keeping the mounted model", current.Name)
	}
}

// --- export ---

func (e *engine) Export(ctx context.Context, format string) (capture.Result, error) {
	factory, ok := e.factories[format]
	if !ok {
		return capture.Result{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	v := e.Viewer()
	if v == nil {
		return capture.Result{}, ErrNoModel
	}
	if !e.exportMu.TryLock() {
		return capture.Result{}, capture.ErrCaptureInProgress
	}
	defer e.exportMu.Unlock()

	e.exportFactory = factory
	defer func() { e.exportFactory = nil }()

	name := fmt.Sprintf("%s-%s", v.Name(), time.Now().Format("20060102-150405"))
	res, err := v.Capture(ctx, name)
	if err != nil {
		log.Printf("[Engine] export failed: %v", err)
		return res, err
	}
	return res, nil
}

// newSink is the capture engine's sink factory. It runs inside Export, which holds
// exportMu.
func (e *engine) newSink() (export.Sink, error) {
	if e.exportFactory == nil {
		return nil, ErrUnknownFormat
	}
	return e.exportFactory()
}

// --- input ---

func (e *engine) HandleKey(keyCode uint32) {
	var err error
	switch keyCode {
	case common.KeyP:
		if e.brush.TogglePainting() {
			log.Printf("[Paint] painting mode on")
		} else {
			log.Printf("[Paint] painting mode off")
		}
	case common.KeyE:
		_, err = e.Export(context.Background(), catalog.FormatPDF)
	case common.KeyS:
		_, err = e.Export(context.Background(), catalog.FormatPNG)
	case common.KeyH:
		err = e.SelectModel(ModelHouse, "")
	case common.KeyR:
		err = e.SelectModel(ModelRoom, "")
	case common.Key1, common.Key2, common.Key3:
		err = e.SelectAreaIndex(int(keyCode - common.Key1))
	case common.KeyEsc:
		e.Quit()
	}
	if err != nil {
		log.Printf("[Engine] key %d: %v", keyCode, err)
	}
}

func (e *engine) HandleMouseDown(button uint32, x, y int32) {
	if button != common.MouseLeft {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointer.press(x, y)
}

func (e *engine) HandleMouseMove(x, y int32) {
	e.mu.Lock()
	dx, dy, dragging := e.pointer.move(x, y)
	v := e.viewer
	e.mu.Unlock()
	if dragging && v != nil {
		v.HandleDrag(dx, dy)
	}
}

func (e *engine) HandleMouseUp(button uint32, x, y int32) {
	if button != common.MouseLeft {
		return
	}
	e.mu.Lock()
	click := e.pointer.release()
	v := e.viewer
	e.mu.Unlock()
	if click && v != nil {
		v.HandleClick(float32(x), float32(y))
	}
}

func (e *engine) HandleScroll(delta float32) {
	if v := e.Viewer(); v != nil {
		v.HandleScroll(delta)
	}
}

// stats feeds the profiler.
func (e *engine) stats() profiler.Stats {
	v := e.Viewer()
	if v == nil {
		return profiler.Stats{}
	}
	return profiler.Stats{
		Model:    v.Name(),
		Surfaces: v.Surfaces().Len(),
		Paints:   v.PaintCount(),
		Captures: v.CaptureCount(),
	}
}

// --- loops ---

func (e *engine) Run() error {
	if e.window == nil {
		return errors.New("engine has no window")
	}
	if e.Viewer() == nil {
		if err := e.mount(e.selection.Resolve()); err != nil {
			return err
		}
	}
	e.window.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			e.closeWindow()
		default:
		}
	})
	e.handle()
	e.window.ProcessMessages()
	e.Quit()
	e.wg.Wait()
	e.closeWindow()
	return nil
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// closeWindow destroys the window once. It must run on the window's thread.
func (e *engine) closeWindow() {
	e.windowClose.Do(func() {
		if err := e.window.Close(); err != nil {
			log.Printf("[Engine] close window: %v", err)
		}
	})
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.running = true
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Advances camera damping at the configured tick rate and listens for dynamic rate
// changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if v := e.Viewer(); v != nil {
				v.Tick(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			frameStart := time.Now()

			if v := e.Viewer(); v != nil {
				if err := v.RenderFrame(); err != nil && !errors.Is(err, viewer.ErrClosed) {
					log.Printf("[Engine] render: %v", err)
				}
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) Close() {
	e.Quit()
	e.wg.Wait()

	e.mu.Lock()
	v := e.viewer
	e.viewer = nil
	e.mu.Unlock()
	if v != nil {
		v.Close()
	}
	if e.watcher != nil {
		e.watcher.Close()
	}
	if e.loader != nil {
		e.loader.Close()
	}
	if e.ownsRenderer {
		e.renderer.Release()
	}
	e.brush.Close()
}
