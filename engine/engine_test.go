package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/catalog"
	"github.com/Carmen-Shannon/paint-house/engine/export"
	"github.com/Carmen-Shannon/paint-house/engine/material"
	"github.com/Carmen-Shannon/paint-house/engine/renderer"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
	"github.com/Carmen-Shannon/paint-house/engine/viewer"
)

// fakeLoader builds a one-box graph per entry and records what was asked for.
type fakeLoader struct {
	mu    sync.Mutex
	names []string
	paths []string
	fail  map[string]bool
}

func (f *fakeLoader) load(entry catalog.Entry) (scene.Graph, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[entry.Name] {
		return nil, errors.New("corrupt asset")
	}
	f.names = append(f.names, entry.Name)
	f.paths = append(f.paths, entry.Path)
	wall := material.NewStandard(material.WithColor([3]float32{0.7, 0.7, 0.7}))
	return scene.NewGraph(
		scene.WithName(entry.Name),
		scene.WithRoot(scene.NewGroup("root", scene.WithChildren(
			scene.NewMesh("wall", scene.NewBox(1, 1, 1), []material.Descriptor{wall}),
		))),
	), nil
}

func (f *fakeLoader) loaded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (*engine, *fakeLoader, renderer.Renderer) {
	t.Helper()
	fl := &fakeLoader{fail: map[string]bool{}}
	r := renderer.NewRenderer(renderer.BackendTypeSoftware, renderer.WithSize(64, 64), renderer.WithWorkers(2))
	opts := append([]EngineBuilderOption{WithRenderer(r), WithGraphLoader(fl.load)}, options...)
	e := NewEngine(opts...).(*engine)
	t.Cleanup(func() {
		e.Close()
		r.Release()
	})
	return e, fl, r
}

func TestSelectModelMountsResolvedEntry(t *testing.T) {
	e, fl, _ := newTestEngine(t)
	assert.Nil(t, e.Viewer())

	require.NoError(t, e.SelectModel(ModelRoom, ""))
	require.NotNil(t, e.Viewer())
	assert.Equal(t, "room", e.Viewer().Name())
	assert.Equal(t, []string{filepath.Join("models", "room.glb")}, fl.paths)

	pos := e.Viewer().Camera().Position()
	assert.InDelta(t, 1.5, pos[1], 1e-4)
	assert.InDelta(t, 5, pos[2], 1e-4)
}

func TestAreaKeys(t *testing.T) {
	e, fl, _ := newTestEngine(t)
	require.NoError(t, e.SelectModel(ModelHouse, ""))

	e.HandleKey(common.Key1)
	assert.Equal(t, "house", e.Viewer().Name(), "house has no areas")
	assert.Len(t, fl.loaded(), 1)

	e.HandleKey(common.KeyR)
	assert.Equal(t, "room", e.Viewer().Name())

	tests := []struct {
		key  uint32
		want string
	}{
		{common.Key1, "kitchen"},
		{common.Key2, "livingroom"},
		{common.Key3, "bathroom"},
		{common.Key3, "room"},
	}
	for _, tt := range tests {
		e.HandleKey(tt.key)
		assert.Equal(t, tt.want, e.Viewer().Name())
	}

	e.HandleKey(common.KeyH)
	assert.Equal(t, "house", e.Viewer().Name())
	assert.Equal(t, []string{"house", "room", "kitchen", "livingroom", "bathroom", "room", "house"}, fl.loaded())
}

func TestSwapClosesPreviousViewer(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.SelectModel(ModelHouse, ""))
	old := e.Viewer()

	require.NoError(t, e.SelectModel(ModelRoom, ""))
	assert.NotSame(t, old, e.Viewer())
	assert.ErrorIs(t, old.RenderFrame(), viewer.ErrClosed)
	assert.NoError(t, e.Viewer().RenderFrame())
}

func TestLoadFailureKeepsMountedModel(t *testing.T) {
	e, fl, _ := newTestEngine(t)
	require.NoError(t, e.SelectModel(ModelHouse, ""))
	old := e.Viewer()

	fl.fail["room"] = true
	err := e.SelectModel(ModelRoom, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load room")
	assert.Same(t, old, e.Viewer())
	assert.NoError(t, old.RenderFrame())
}

func TestClickPaintsAndDragOrbits(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.SelectModel(ModelHouse, ""))
	v := e.Viewer()

	// A click without painting mode does nothing.
	e.HandleMouseDown(common.MouseLeft, 32, 32)
	e.HandleMouseUp(common.MouseLeft, 32, 32)
	assert.Equal(t, uint64(0), v.PaintCount())

	e.HandleKey(common.KeyP)
	require.True(t, e.Brush().Painting())

	// Jitter inside the click slop still paints.
	e.HandleMouseDown(common.MouseLeft, 32, 32)
	e.HandleMouseMove(33, 31)
	e.HandleMouseUp(common.MouseLeft, 33, 31)
	assert.Equal(t, uint64(1), v.PaintCount())

	// A drag never paints, and does not orbit while painting.
	start := v.Camera().Position()
	e.HandleMouseDown(common.MouseLeft, 10, 32)
	e.HandleMouseMove(40, 32)
	e.HandleMouseUp(common.MouseLeft, 40, 32)
	v.Tick(0.5)
	assert.Equal(t, uint64(1), v.PaintCount())
	assert.Equal(t, start, v.Camera().Position())

	e.HandleKey(common.KeyP)
	e.HandleMouseDown(common.MouseLeft, 10, 32)
	e.HandleMouseMove(40, 32)
	e.HandleMouseUp(common.MouseLeft, 40, 32)
	v.Tick(0.5)
	assert.NotEqual(t, start, v.Camera().Position())

	// Other buttons are ignored.
	e.HandleKey(common.KeyP)
	e.HandleMouseDown(common.MouseRight, 32, 32)
	e.HandleMouseUp(common.MouseRight, 32, 32)
	assert.Equal(t, uint64(1), v.PaintCount())
}

func TestExport(t *testing.T) {
	rec := export.NewRecorder()
	e, _, _ := newTestEngine(t, WithSinkFactory(catalog.FormatPDF, rec.Factory()))

	_, err := e.Export(context.Background(), catalog.FormatPDF)
	assert.ErrorIs(t, err, ErrNoModel)

	require.NoError(t, e.SelectModel(ModelHouse, ""))
	_, err = e.Export(context.Background(), "docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	e.Brush().SetPainting(true)
	e.HandleMouseDown(common.MouseLeft, 32, 32)
	e.HandleMouseUp(common.MouseLeft, 32, 32)

	res, err := e.Export(context.Background(), catalog.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, []string{"front", "back", "left", "right"}, res.Poses)
	assert.Equal(t, []string{"#FF5733"}, res.Colors)
	assert.Len(t, rec.Images(), 4)

	name, ok := rec.Finalized()
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(name, "house-"), name)
	assert.Equal(t, uint64(1), e.stats().Captures)
}

func TestExportKeyUsesSheetFactory(t *testing.T) {
	pdf, sheet := export.NewRecorder(), export.NewRecorder()
	e, _, _ := newTestEngine(t,
		WithSinkFactory(catalog.FormatPDF, pdf.Factory()),
		WithSinkFactory(catalog.FormatPNG, sheet.Factory()),
	)
	require.NoError(t, e.SelectModel(ModelHouse, ""))

	e.HandleKey(common.KeyS)
	_, ok := sheet.Finalized()
	assert.True(t, ok)
	_, ok = pdf.Finalized()
	assert.False(t, ok)

	e.HandleKey(common.KeyE)
	_, ok = pdf.Finalized()
	assert.True(t, ok)
}

func TestModelChangeReloadsCurrentModel(t *testing.T) {
	e, fl, _ := newTestEngine(t)
	require.NoError(t, e.SelectModel(ModelHouse, ""))
	old := e.Viewer()

	e.onModelChanged(filepath.Join("models", "room.glb"))
	assert.Same(t, old, e.Viewer())

	e.onModelChanged(filepath.Join("models", "house.glb"))
	assert.NotSame(t, old, e.Viewer())
	assert.Equal(t, "house", e.Viewer().Name())
	assert.Equal(t, []string{"house", "house"}, fl.loaded())
}

func TestStats(t *testing.T) {
	e, _, _ := newTestEngine(t)
	assert.Equal(t, "", e.stats().Model)

	require.NoError(t, e.SelectModel(ModelHouse, ""))
	e.Brush().SetPainting(true)
	e.HandleMouseDown(common.MouseLeft, 32, 32)
	e.HandleMouseUp(common.MouseLeft, 32, 32)

	s := e.stats()
	assert.Equal(t, "house", s.Model)
	assert.Equal(t, 1, s.Surfaces)
	assert.Equal(t, uint64(1), s.Paints)
}

func TestLoopsRenderUntilQuit(t *testing.T) {
	e, _, r := newTestEngine(t, WithRenderFrameLimit(200), WithTickRate(200))
	require.NoError(t, e.SelectModel(ModelHouse, ""))

	e.handle()
	assert.Eventually(t, func() bool { return r.FrameCount() > 2 }, 5*time.Second, 10*time.Millisecond)
	e.HandleKey(common.KeyEsc)

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loops did not stop")
	}
}

func TestRunNeedsWindow(t *testing.T) {
	e, _, _ := newTestEngine(t)
	assert.Error(t, e.Run())
}
