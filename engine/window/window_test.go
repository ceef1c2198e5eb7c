package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/paint-house/engine/brush"
)

func TestNewEngineWindowDefaults(t *testing.T) {
	w := newEngineWindow()
	assert.Equal(t, "Paint House", w.title)
	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())

	cursor, title := w.takePending()
	assert.Nil(t, cursor)
	assert.Nil(t, title)
}

func TestWindowSizeOptions(t *testing.T) {
	tests := []struct {
		name          string
		options       []WindowBuilderOption
		width, height int
	}{
		{"size", []WindowBuilderOption{WithSize(800, 600)}, 800, 600},
		{"zero keeps default", []WindowBuilderOption{WithSize(0, 0)}, 1280, 720},
		{"clamped to max", []WindowBuilderOption{WithSize(4000, 3000)}, 1600, 1200},
		{"clamped to min", []WindowBuilderOption{WithSize(100, 50)}, 600, 200},
		{"limits before size", []WindowBuilderOption{WithSizeLimits(0, 0, 640, 480), WithSize(800, 600)}, 640, 480},
		{"limits after size", []WindowBuilderOption{WithSize(300, 150), WithSizeLimits(320, 240, 0, 0)}, 320, 240},
		{"max raised to min", []WindowBuilderOption{WithSizeLimits(2000, 0, 0, 0), WithSize(1000, 700)}, 2000, 700},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newEngineWindow(tt.options...)
			assert.Equal(t, tt.width, w.width)
			assert.Equal(t, tt.height, w.height)
			assert.LessOrEqual(t, w.minWidth, w.maxWidth)
			assert.LessOrEqual(t, w.minHeight, w.maxHeight)
		})
	}
}

func TestWithTitleAndModelTitle(t *testing.T) {
	assert.Equal(t, "Paint House", newEngineWindow(WithTitle("")).title)

	w := newEngineWindow(WithTitle("Studio"))
	assert.Equal(t, "Studio", w.title)
	assert.Equal(t, "Studio - kitchen", ModelTitle(w.title, "kitchen"))
	assert.Equal(t, "Studio", ModelTitle(w.title, ""))
}

func TestCursorAndTitleRequestsQueue(t *testing.T) {
	w := newEngineWindow(WithCursor(brush.CursorDefault))

	cursor, _ := w.takePending()
	require.NotNil(t, cursor)
	assert.Equal(t, brush.CursorDefault, *cursor)

	w.SetCursor(brush.CursorDefault)
	w.SetCursor(brush.CursorCrosshair)
	w.SetTitle("Paint House - house")

	cursor, title := w.takePending()
	require.NotNil(t, cursor)
	require.NotNil(t, title)
	assert.Equal(t, brush.CursorCrosshair, *cursor)
	assert.Equal(t, "Paint House - house", *title)

	cursor, title = w.takePending()
	assert.Nil(t, cursor)
	assert.Nil(t, title)
}
