package brush

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/paint-house/engine/color"
)

func TestDefaults(t *testing.T) {
	s := NewState()
	defer s.Close()

	assert.Equal(t, DefaultColor, s.Color())
	assert.Equal(t, color.RGB{R: 255, G: 87, B: 51}, s.RGB())
	assert.False(t, s.Painting())
	assert.Equal(t, CursorDefault, s.Cursor())
}

func TestSetHexInput(t *testing.T) {
	s := NewState()
	defer s.Close()

	assert.True(t, s.SetHexInput("00ff00"))
	assert.Equal(t, "#00FF00", s.Color())

	// invalid text is retained but the committed color is unchanged
	assert.False(t, s.SetHexInput("#12"))
	assert.Equal(t, "#12", s.HexInput())
	assert.Equal(t, "#00FF00", s.Color())
}

func TestSetRGBRange(t *testing.T) {
	s := NewState()
	defer s.Close()

	require.NoError(t, s.SetRGB(10, 20, 30))
	assert.Equal(t, "#0A141E", s.Color())

	err := s.SetRGB(256, 0, 0)
	assert.ErrorIs(t, err, ErrComponentRange)
	assert.Equal(t, "#0A141E", s.Color())

	assert.ErrorIs(t, s.SetRGB(0, -1, 0), ErrComponentRange)
}

func TestSetHSVClamps(t *testing.T) {
	s := NewState()
	defer s.Close()

	s.SetHSV(400, 2, 2)
	hsv := s.HSV()
	assert.Equal(t, 360.0, hsv.H)
	assert.Equal(t, 1.0, hsv.S)
	assert.Equal(t, 1.0, hsv.V)
	assert.Equal(t, "#FF0000", s.Color())
}

func TestSetBrightnessKeepsHue(t *testing.T) {
	s := NewState()
	defer s.Close()

	s.SetHSV(120, 1, 1)
	s.SetBrightness(0)
	assert.Equal(t, "#000000", s.Color())

	s.SetBrightness(100)
	assert.Equal(t, "#00FF00", s.Color(), "hue survives a trip through black")

	s.SetBrightness(250)
	assert.Equal(t, 1.0, s.HSV().V)
}

func TestDebounceCoalescesRapidUpdates(t *testing.T) {
	var calls atomic.Int32
	var mu sync.Mutex
	var last string

	s := NewState(
		WithDebounce(20*time.Millisecond),
		WithOnChange(func(hex string) {
			calls.Add(1)
			mu.Lock()
			last = hex
			mu.Unlock()
		}),
	)
	defer s.Close()

	for h := 0.0; h < 50; h += 10 {
		s.SetHSV(h, 1, 1)
	}
	s.SetHSV(240, 1, 1)

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "#0000FF", last)
}

func TestInvalidHexDoesNotNotify(t *testing.T) {
	var calls atomic.Int32
	s := NewState(WithDebounce(time.Millisecond), WithOnChange(func(string) { calls.Add(1) }))
	defer s.Close()

	s.SetHexInput("#XYZ")
	_ = s.SetRGB(300, 0, 0)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestCursorSignal(t *testing.T) {
	var seen []Cursor
	s := NewState(WithOnCursorChange(func(c Cursor) { seen = append(seen, c) }))
	defer s.Close()

	assert.True(t, s.TogglePainting())
	assert.Equal(t, CursorCrosshair, s.Cursor())

	s.SetPainting(true) // no change, no signal
	assert.False(t, s.TogglePainting())
	assert.Equal(t, CursorDefault, s.Cursor())

	assert.Equal(t, []Cursor{CursorCrosshair, CursorDefault}, seen)
}

func TestWithColor(t *testing.T) {
	s := NewState(WithColor("#abc"), WithPainting(true))
	defer s.Close()
	assert.Equal(t, "#AABBCC", s.Color())
	assert.True(t, s.Painting())
}
