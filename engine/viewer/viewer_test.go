package viewer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/brush"
	"github.com/Carmen-Shannon/paint-house/engine/capture"
	"github.com/Carmen-Shannon/paint-house/engine/export"
	"github.com/Carmen-Shannon/paint-house/engine/material"
	"github.com/Carmen-Shannon/paint-house/engine/renderer"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
)

func wallGraph() scene.Graph {
	wall := material.NewStandard(material.WithColor([3]float32{0.8, 0.8, 0.8}))
	return scene.NewGraph(
		scene.WithName("wall"),
		scene.WithRoot(scene.NewGroup("root", scene.WithChildren(
			scene.NewMesh("wall", scene.NewBox(1, 1, 1), []material.Descriptor{wall}),
		))),
	)
}

func newTestViewer(t *testing.T, painting bool, options ...ViewerBuilderOption) (Viewer, renderer.Renderer, brush.State) {
	t.Helper()
	r := renderer.NewRenderer(renderer.BackendTypeSoftware, renderer.WithSize(64, 64), renderer.WithWorkers(2))
	b := brush.NewState(brush.WithColor("#00FF00"), brush.WithPainting(painting))
	v := NewViewer("wall", wallGraph(), r, b, options...)
	t.Cleanup(func() {
		v.Close()
		b.Close()
		r.Release()
	})
	return v, r, b
}

func TestMountPreparesSurfaces(t *testing.T) {
	v, _, _ := newTestViewer(t, false)

	assert.Equal(t, "wall", v.Name())
	assert.Equal(t, 1, v.Surfaces().Len())
	assert.InDelta(t, 5.385, common.Length(v.Camera().Position()), 1e-2)
}

func TestClickPaintsOnlyInPaintingMode(t *testing.T) {
	v, _, b := newTestViewer(t, false)
	surface := v.Surfaces().Surfaces()[0]

	assert.False(t, v.HandleClick(32, 32), "painting mode is off")
	assert.Equal(t, [3]float32{1, 1, 1}, surface.Descriptors()[0].Color(), "mount resets paintable surfaces to white")

	b.SetPainting(true)
	assert.True(t, v.HandleClick(32, 32))
	assert.Equal(t, [3]float32{0, 1, 0}, surface.Descriptors()[0].Color())
	assert.Equal(t, uint64(1), v.PaintCount())

	assert.False(t, v.HandleClick(0, 0), "corner ray misses the wall")
	assert.Equal(t, uint64(1), v.PaintCount())
}

func TestDragOrbitsOnlyWhenNotPainting(t *testing.T) {
	v, _, b := newTestViewer(t, true)
	start := v.Camera().Position()

	assert.False(t, v.HandleDrag(40, 0))
	v.Tick(1.0 / 60)
	assert.Equal(t, start, v.Camera().Position())

	b.SetPainting(false)
	assert.True(t, v.HandleDrag(40, 0))
	for i := 0; i < 30; i++ {
		v.Tick(1.0 / 60)
	}
	assert.NotEqual(t, start, v.Camera().Position())
}

func TestScrollZoomsIn(t *testing.T) {
	v, _, _ := newTestViewer(t, false)
	before := common.Length(v.Camera().Position())

	v.HandleScroll(1)
	assert.Less(t, common.Length(v.Camera().Position()), before)
}

func TestCameraPositionAndFovOptions(t *testing.T) {
	v, _, _ := newTestViewer(t, false, WithCameraPosition(common.Vec3{0, 1.5, 5}), WithFov(60), WithFov(200))

	pos := v.Camera().Position()
	assert.InDelta(t, 1.5, pos[1], 1e-4)
	assert.InDelta(t, 5, pos[2], 1e-4)
	assert.InDelta(t, 60*3.14159265/180, v.Camera().Fov(), 1e-4)
}

func TestRenderAndResize(t *testing.T) {
	v, r, _ := newTestViewer(t, false)

	require.NoError(t, v.RenderFrame())
	require.NoError(t, r.AwaitFrame(context.Background()))
	assert.Equal(t, uint64(1), r.FrameCount())

	v.Resize(128, 32)
	assert.Equal(t, common.Rect{Width: 128, Height: 32}, r.Viewport())
	assert.InDelta(t, 4, v.Camera().Aspect(), 1e-6)
}

func TestCaptureInventoriesPaintedColors(t *testing.T) {
	rec := export.NewRecorder()
	v, _, _ := newTestViewer(t, true, WithCaptureOptions(capture.WithSinkFactory(rec.Factory())))
	require.True(t, v.HandleClick(32, 32))

	res, err := v.Capture(context.Background(), "wall")
	require.NoError(t, err)
	assert.Equal(t, []string{"#00FF00"}, res.Colors)
	assert.Len(t, rec.Images(), 4)
	assert.Equal(t, uint64(1), v.CaptureCount())
}

func TestClosedViewerRejectsWork(t *testing.T) {
	v, _, _ := newTestViewer(t, true)
	v.Close()
	v.Close()

	assert.ErrorIs(t, v.RenderFrame(), ErrClosed)
	_, err := v.Capture(context.Background(), "wall")
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, v.HandleClick(32, 32))
	assert.False(t, v.HandleDrag(1, 1))
}

func TestOwnedRendererReleasedOnClose(t *testing.T) {
	r := renderer.NewRenderer(renderer.BackendTypeSoftware, renderer.WithSize(16, 16))
	b := brush.NewState()
	defer b.Close()
	v := NewViewer("wall", wallGraph(), r, b, WithOwnedRenderer())

	v.Close()
	assert.ErrorIs(t, r.Render(v.Graph(), v.Camera()), renderer.ErrReleased)
}
