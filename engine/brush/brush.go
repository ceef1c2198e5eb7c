package brush

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/paint-house/engine/color"
)

// DefaultColor is the brush color before the user picks one.
const DefaultColor = "#FF5733"

var (
	// ErrComponentRange is returned when an RGB channel is outside [0, 255].
	ErrComponentRange = errors.New("rgb component out of range")
)

// Cursor is the pointer affordance the viewport should show.
type Cursor string

const (
	CursorDefault   Cursor = "default"
	CursorCrosshair Cursor = "crosshair"
)

type stateImpl struct {
	mu *sync.Mutex

	hexInput string
	rgb      color.RGB
	hsv      color.HSV
	painting bool

	debounce       *debouncer
	onChange       func(hex string)
	onCursorChange func(Cursor)
}

// State holds the currently selected brush color and the painting-mode flag.
// The color is kept in HEX, RGB and HSV form; HSV is stored rather than derived so
// the hue survives while saturation or value is zero.
type State interface {
	// HexInput returns the raw text last given to SetHexInput, which may be an invalid color.
	//
	// Returns:
	//   - string: the retained hex input text
	HexInput() string

	// SetHexInput records hex text typed by the user. A leading '#' is added when missing.
	// The color is committed only when the text is a valid hex color.
	//
	// Parameters:
	//   - s: hex text
	//
	// Returns:
	//   - bool: true if the text was valid and committed
	SetHexInput(s string) bool

	// Color returns the committed color as uppercase #RRGGBB.
	//
	// Returns:
	//   - string: the committed color
	Color() string

	// RGB returns the committed color's channels.
	//
	// Returns:
	//   - color.RGB: the committed color
	RGB() color.RGB

	// HSV returns the committed color in hue/saturation/value form.
	//
	// Returns:
	//   - color.HSV: the committed color
	HSV() color.HSV

	// SetRGB commits a color from 8-bit channels.
	//
	// Parameters:
	//   - r, g, b: channels in [0, 255]
	//
	// Returns:
	//   - error: ErrComponentRange if any channel is out of range; nothing is committed
	SetRGB(r, g, b int) error

	// SetHSV commits a color from hue/saturation/value. Hue is clamped to [0, 360],
	// saturation and value to [0, 1].
	//
	// Parameters:
	//   - h: hue in degrees
	//   - s: saturation
	//   - v: value
	SetHSV(h, s, v float64)

	// SetBrightness sets the value channel from a percentage, clamped to [0, 100].
	//
	// Parameters:
	//   - percent: brightness percentage
	SetBrightness(percent float64)

	// Painting reports whether painting mode is on.
	//
	// Returns:
	//   - bool: true while painting mode is enabled
	Painting() bool

	// SetPainting enables or disables painting mode.
	//
	// Parameters:
	//   - on: the new painting-mode flag
	SetPainting(on bool)

	// TogglePainting flips painting mode.
	//
	// Returns:
	//   - bool: the new painting-mode flag
	TogglePainting() bool

	// Cursor returns the pointer affordance for the current mode.
	//
	// Returns:
	//   - Cursor: CursorCrosshair while painting, CursorDefault otherwise
	Cursor() Cursor

	// Close cancels any pending debounced notification.
	Close()
}

var _ State = &stateImpl{}

// NewState creates a brush State with the given options applied over the defaults.
// The default color is DefaultColor and the debounce window is DefaultDebounce.
//
// Parameters:
//   - options: variadic list of StateBuilderOption functions
//
// Returns:
//   - State: the new brush state
func NewState(options ...StateBuilderOption) State {
	s := &stateImpl{
		mu:       &sync.Mutex{},
		debounce: newDebouncer(DefaultDebounce),
	}
	s.commitHex(DefaultColor)

	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *stateImpl) HexInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hexInput
}

func (s *stateImpl) SetHexInput(text string) bool {
	if !strings.HasPrefix(text, "#") {
		text = "#" + text
	}

	s.mu.Lock()
	s.hexInput = text
	if !color.IsValidHex(text) {
		s.mu.Unlock()
		return false
	}
	hex := s.commitHex(text)
	s.mu.Unlock()

	s.notify(hex)
	return true
}

func (s *stateImpl) Color() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rgb.Hex()
}

func (s *stateImpl) RGB() color.RGB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rgb
}

func (s *stateImpl) HSV() color.HSV {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hsv
}

func (s *stateImpl) SetRGB(r, g, b int) error {
	c := color.RGB{R: r, G: g, B: b}
	if !c.Valid() {
		return fmt.Errorf("%w: (%d, %d, %d)", ErrComponentRange, r, g, b)
	}

	s.mu.Lock()
	s.rgb = c
	s.hsv = color.RGBToHSV(r, g, b)
	s.hexInput = c.Hex()
	hex := s.hexInput
	s.mu.Unlock()

	s.notify(hex)
	return nil
}

func (s *stateImpl) SetHSV(h, sat, v float64) {
	s.mu.Lock()
	s.setHSVLocked(color.HSV{H: clamp(h, 0, 360), S: clamp(sat, 0, 1), V: clamp(v, 0, 1)})
	hex := s.hexInput
	s.mu.Unlock()

	s.notify(hex)
}

func (s *stateImpl) SetBrightness(percent float64) {
	s.mu.Lock()
	hsv := s.hsv
	hsv.V = clamp(percent/100, 0, 1)
	s.setHSVLocked(hsv)
	hex := s.hexInput
	s.mu.Unlock()

	s.notify(hex)
}

func (s *stateImpl) Painting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.painting
}

func (s *stateImpl) SetPainting(on bool) {
	s.mu.Lock()
	changed := s.painting != on
	s.painting = on
	cb := s.onCursorChange
	s.mu.Unlock()

	if changed && cb != nil {
		cb(cursorFor(on))
	}
}

func (s *stateImpl) TogglePainting() bool {
	s.mu.Lock()
	on := !s.painting
	s.mu.Unlock()

	s.SetPainting(on)
	return on
}

func (s *stateImpl) Cursor() Cursor {
	return cursorFor(s.Painting())
}

func (s *stateImpl) Close() {
	s.debounce.Stop()
}

// commitHex stores a valid hex color and its derived forms. Caller holds mu.
func (s *stateImpl) commitHex(hex string) string {
	c, err := color.HexToRGB(hex)
	if err != nil {
		return s.hexInput
	}
	s.rgb = c
	s.hsv = color.RGBToHSV(c.R, c.G, c.B)
	s.hexInput = c.Hex()
	return s.hexInput
}

func (s *stateImpl) setHSVLocked(hsv color.HSV) {
	s.hsv = hsv
	s.rgb = color.HSVToRGB(hsv.H, hsv.S, hsv.V)
	s.hexInput = s.rgb.Hex()
}

func (s *stateImpl) notify(hex string) {
	s.mu.Lock()
	cb := s.onChange
	s.mu.Unlock()
	if cb == nil {
		return
	}
	s.debounce.Trigger(func() { cb(hex) })
}

func cursorFor(painting bool) Cursor {
	if painting {
		return CursorCrosshair
	}
	return CursorDefault
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
