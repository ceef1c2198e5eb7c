package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/paint-house/engine/camera"
	"github.com/Carmen-Shannon/paint-house/engine/export"
	"github.com/Carmen-Shannon/paint-house/engine/material"
	"github.com/Carmen-Shannon/paint-house/engine/paint"
	"github.com/Carmen-Shannon/paint-house/engine/renderer"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
)

// paintedBlocks prepares n boxes and paints them with colors[i % len(colors)].
func paintedBlocks(t *testing.T, n int, colors ...[3]float32) (scene.Graph, paint.SurfaceSet) {
	t.Helper()
	shared := material.NewStandard(material.WithColor([3]float32{0.5, 0.5, 0.5}))
	children := make([]scene.Node, 0, n)
	for i := 0; i < n; i++ {
		children = append(children, scene.NewMesh("block", scene.NewBox(0.4, 0.4, 0.4), []material.Descriptor{shared},
			scene.WithTranslation(float32(i)-float32(n-1)/2, 0, 0)))
	}
	g := scene.NewGraph(scene.WithName("blocks"), scene.WithRoot(scene.NewGroup("root", scene.WithChildren(children...))))
	set := paint.NewPreparer(g).Prepare()
	require.Equal(t, n, set.Len())

	app := paint.NewApplicator()
	for i, s := range set.Surfaces() {
		require.Equal(t, 1, app.Apply(s, colors[i%len(colors)]))
	}
	return g, set
}

func newCamera() camera.Camera {
	return camera.NewCamera(camera.WithController(camera.NewCameraController()))
}

// countingFactory wraps a recorder and counts how often the factory ran.
func countingFactory(rec *export.Recorder, calls *int) export.Factory {
	return func() (export.Sink, error) {
		*calls++
		return rec, nil
	}
}

// fakeSource hands out blank frames and can block or fail on demand.
type fakeSource struct {
	mu      sync.Mutex
	renders int
	failAt  int
	gate    chan struct{}
}

func (f *fakeSource) Render(scene.Graph, camera.Camera) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders++
	return nil
}

func (f *fakeSource) AwaitFrame(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSource) ReadImage() (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renders == f.failAt {
		return nil, errors.New("device lost")
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func TestCaptureProducesFourViewsAndInventory(t *testing.T) {
	red, green := [3]float32{1, 0, 0}, [3]float32{0, 1, 0}
	g, set := paintedBlocks(t, 3, red, red, green)

	r := renderer.NewRenderer(renderer.BackendTypeSoftware, renderer.WithSize(64, 64), renderer.WithWorkers(2))
	defer r.Release()
	cam := newCamera()

	var steps []Step
	rec := export.NewRecorder()
	e := NewEngine(WithSinkFactory(rec.Factory()), WithObserver(func(s Step) { steps = append(steps, s) }))
	e.Bind(r, cam, g, set)

	res, err := e.Capture(context.Background(), "house")
	require.NoError(t, err)

	assert.Equal(t, "house.rec", res.Path)
	assert.Equal(t, []string{camera.PoseFront, camera.PoseBack, camera.PoseLeft, camera.PoseRight}, res.Poses)
	assert.Equal(t, []string{"#00FF00", "#FF0000"}, res.Colors)
	assert.Equal(t, 1, res.Pages)
	require.Len(t, res.Images, 4)
	for _, data := range res.Images {
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	}

	placed := rec.Images()
	require.Len(t, placed, 4)
	wantCorners := [][2]float64{{5, 5}, {110, 5}, {5, 110}, {110, 110}}
	for i, p := range placed {
		assert.Equal(t, wantCorners[i], [2]float64{p.X, p.Y}, "image %d", i)
		assert.Equal(t, [2]float64{100, 100}, [2]float64{p.W, p.H})
		assert.Equal(t, res.Images[i], p.PNG)
	}

	texts := rec.Texts()
	require.Len(t, texts, 3)
	assert.Equal(t, "Colors used", texts[0].Text)
	assert.Equal(t, "#00FF00", texts[1].Text)
	assert.Equal(t, "#FF0000", texts[2].Text)
	assert.Equal(t, 222.0, texts[0].Y)
	assert.Greater(t, texts[0].Y, 210.0, "text starts below the grid")

	name, ok := rec.Finalized()
	assert.True(t, ok)
	assert.Equal(t, "house", name)

	right := cam.Position()
	assert.InDelta(t, 5, right[0], 1e-4)
	assert.InDelta(t, 2, right[1], 1e-4)
	assert.InDelta(t, 0, right[2], 1e-4)

	assert.Equal(t, []Step{
		{State: StateCapturing, Pose: camera.PoseFront},
		{State: StateCapturing, Pose: camera.PoseBack},
		{State: StateCapturing, Pose: camera.PoseLeft},
		{State: StateCapturing, Pose: camera.PoseRight},
		{State: StateAssembling},
		{State: StateDone},
		{State: StateIdle},
	}, steps)
	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, uint64(1), e.Count())
}

func TestCaptureUnboundProducesNothing(t *testing.T) {
	g, set := paintedBlocks(t, 1, [3]float32{1, 0, 0})

	tests := []struct {
		name   string
		source FrameSource
		cam    camera.Camera
		graph  scene.Graph
		set    paint.SurfaceSet
	}{
		{name: "nothing bound"},
		{name: "no renderer", cam: newCamera(), graph: g, set: set},
		{name: "no camera", source: &fakeSource{}, graph: g, set: set},
		{name: "no scene", source: &fakeSource{}, cam: newCamera(), set: set},
		{name: "no surfaces", source: &fakeSource{}, cam: newCamera(), graph: g},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			rec := export.NewRecorder()
			e := NewEngine(WithSinkFactory(countingFactory(rec, &calls)))
			e.Bind(tt.source, tt.cam, tt.graph, tt.set)

			res, err := e.Capture(context.Background(), "nope")
			assert.ErrorIs(t, err, ErrNotBound)
			assert.Empty(t, res.Images)
			assert.Zero(t, calls)
			assert.Empty(t, rec.Images())
			assert.Equal(t, StateIdle, e.State())
		})
	}
}

func TestCaptureReadbackFailureIsAllOrNothing(t *testing.T) {
	g, set := paintedBlocks(t, 1, [3]float32{1, 0, 0})
	calls := 0
	rec := export.NewRecorder()
	e := NewEngine(WithSinkFactory(countingFactory(rec, &calls)))
	e.Bind(&fakeSource{failAt: 3}, newCamera(), g, set)

	res, err := e.Capture(context.Background(), "partial")
	assert.ErrorIs(t, err, ErrReadback)
	assert.Empty(t, res.Images)
	assert.Zero(t, calls)
	assert.Zero(t, e.Count())
	assert.Equal(t, StateIdle, e.State())
}

func TestCaptureRejectsNonStandardPoses(t *testing.T) {
	g, set := paintedBlocks(t, 1, [3]float32{1, 0, 0})
	calls := 0
	rec := export.NewRecorder()
	src := &fakeSource{}
	e := NewEngine(
		WithSinkFactory(countingFactory(rec, &calls)),
		WithPoses(camera.Pose{Name: "top", Position: [3]float32{0, 9, 0.01}, Target: [3]float32{3, 0, 0}}),
	)
	e.Bind(src, newCamera(), g, set)

	res, err := e.Capture(context.Background(), "x")
	assert.ErrorIs(t, err, camera.ErrInvalidCapturePoses)
	assert.Empty(t, res.Images)
	assert.Zero(t, src.renders)
	assert.Zero(t, calls)
	assert.Zero(t, e.Count())
	assert.Equal(t, StateIdle, e.State())
}

func TestCaptureRejectsConcurrentRequest(t *testing.T) {
	g, set := paintedBlocks(t, 1, [3]float32{1, 0, 0})
	src := &fakeSource{gate: make(chan struct{})}

	started := make(chan struct{})
	var once sync.Once
	e := NewEngine(
		WithSinkFactory(export.NewRecorder().Factory()),
		WithObserver(func(s Step) {
			if s.State == StateCapturing {
				once.Do(func() { close(started) })
			}
		}),
	)
	e.Bind(src, newCamera(), g, set)

	done := make(chan error, 1)
	go func() {
		_, err := e.Capture(context.Background(), "first")
		done <- err
	}()

	<-started
	assert.Equal(t, StateCapturing, e.State())
	_, err := e.Capture(context.Background(), "second")
	assert.ErrorIs(t, err, ErrCaptureInProgress)

	close(src.gate)
	require.NoError(t, <-done)
	assert.Equal(t, uint64(1), e.Count())
}

func TestCaptureHonoursShutdown(t *testing.T) {
	g, set := paintedBlocks(t, 1, [3]float32{1, 0, 0})
	calls := 0
	e := NewEngine(WithSinkFactory(countingFactory(export.NewRecorder(), &calls)))
	e.Bind(&fakeSource{gate: make(chan struct{})}, newCamera(), g, set)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Capture(ctx, "shutdown")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestCaptureInventoryOverflowsToNewPage(t *testing.T) {
	colors := make([][3]float32, 40)
	for i := range colors {
		colors[i] = [3]float32{float32(i) / 40, 0, 1}
	}
	g, set := paintedBlocks(t, len(colors), colors...)

	rec := export.NewRecorder()
	e := NewEngine(WithSinkFactory(rec.Factory()))
	e.Bind(&fakeSource{}, newCamera(), g, set)

	res, err := e.Capture(context.Background(), "many")
	require.NoError(t, err)
	require.Len(t, res.Colors, 40)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 2, rec.Pages())

	texts := rec.Texts()
	require.Len(t, texts, 41)
	for _, tx := range texts {
		assert.LessOrEqual(t, tx.Y, export.PageHeight-5)
	}
	assert.Equal(t, 1, texts[10].Page)
	assert.Equal(t, 292.0, texts[10].Y)
	assert.Equal(t, 2, texts[11].Page)
	assert.Equal(t, 12.0, texts[11].Y)
}

func TestInventoryCollapsesDuplicates(t *testing.T) {
	_, set := paintedBlocks(t, 3, [3]float32{1, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})
	assert.Equal(t, []string{"#00FF00", "#FF0000"}, Inventory(set))

	assert.Empty(t, Inventory(paint.NewSurfaceSet()))
}

func TestLayoutCells(t *testing.T) {
	l := DefaultLayout()
	tests := []struct {
		i    int
		x, y float64
	}{
		{0, 5, 5},
		{1, 110, 5},
		{2, 5, 110},
		{3, 110, 110},
	}
	for _, tt := range tests {
		x, y := l.Cell(tt.i)
		assert.Equal(t, tt.x, x)
		assert.Equal(t, tt.y, y)
	}
	assert.Equal(t, 210.0, l.gridBottom(4))
	assert.Equal(t, 5.0, l.gridBottom(0))

	fixed := Layout{Gutter: 2}.withDefaults()
	assert.Equal(t, 100.0, fixed.ImageSize)
	assert.Equal(t, 2.0, fixed.Gutter)
	assert.Equal(t, 2, fixed.Columns)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "capturing", StateCapturing.String())
	assert.Equal(t, "assembling", StateAssembling.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "unknown", State(42).String())
}
