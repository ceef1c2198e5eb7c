// Package color converts brush colors between the HEX, RGB and HSV models used by the picker and the paint pipeline.
package color

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var hexPattern = regexp.MustCompile(`^#?([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

var (
	// ErrInvalidHex is returned when a string is not a #RRGGBB or #RGB color.
	ErrInvalidHex = errors.New("invalid hex color")
)

// RGB is a color with 8-bit integer channels in [0, 255].
type RGB struct {
	R, G, B int
}

// HSV is a color in the hue/saturation/value model.
// H is in degrees [0, 360), S and V are in [0, 1].
type HSV struct {
	H, S, V float64
}

// Floats returns the color as linear [0, 1] channels for shading descriptors.
func (c RGB) Floats() [3]float32 {
	return [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

// Hex formats the color as uppercase #RRGGBB.
func (c RGB) Hex() string {
	return RGBToHex(c.R, c.G, c.B)
}

// Valid reports whether every channel is within [0, 255].
func (c RGB) Valid() bool {
	return inByte(c.R) && inByte(c.G) && inByte(c.B)
}

func inByte(v int) bool { return v >= 0 && v <= 255 }

// IsValidHex reports whether s is a 6 or 3 digit hex color, with or without a leading '#'.
func IsValidHex(s string) bool {
	return hexPattern.MatchString(s)
}

// NormalizeHex expands and uppercases a hex color to the canonical #RRGGBB form.
//
// Parameters:
//   - s: a hex color string, '#' optional, 3 or 6 digits
//
// Returns:
//   - string: the color as #RRGGBB
//   - error: ErrInvalidHex if s is not a hex color
func NormalizeHex(s string) (string, error) {
	m := hexPattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	digits := m[1]
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	return "#" + strings.ToUpper(digits), nil
}

// HexToRGB parses a hex color into its RGB channels.
//
// Parameters:
//   - s: a hex color string, '#' optional, 3 or 6 digits
//
// Returns:
//   - RGB: the parsed color, or black when s is invalid
//   - error: ErrInvalidHex if s is not a hex color
func HexToRGB(s string) (RGB, error) {
	norm, err := NormalizeHex(s)
	if err != nil {
		return RGB{}, err
	}
	v, err := strconv.ParseUint(norm[1:], 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return RGB{R: int(v>>16) & 0xFF, G: int(v>>8) & 0xFF, B: int(v) & 0xFF}, nil
}

// RGBToHex formats 8-bit channels as uppercase #RRGGBB. Channels are clamped to [0, 255].
func RGBToHex(r, g, b int) string {
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r), clampByte(g), clampByte(b))
}

// FloatsToHex formats linear [0, 1] channels as uppercase #RRGGBB.
func FloatsToHex(c [3]float32) string {
	return RGBToHex(toByte(float64(c[0])), toByte(float64(c[1])), toByte(float64(c[2])))
}

// RGBToHSV converts 8-bit channels into hue/saturation/value.
//
// Parameters:
//   - r, g, b: channels in [0, 255]
//
// Returns:
//   - HSV: hue in degrees [0, 360), saturation and value in [0, 1]
func RGBToHSV(r, g, b int) HSV {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	d := max - min

	var h float64
	if d != 0 {
		switch max {
		case rf:
			h = 60 * math.Mod((gf-bf)/d, 6)
		case gf:
			h = 60 * ((bf-rf)/d + 2)
		default:
			h = 60 * ((rf-gf)/d + 4)
		}
	}
	if h < 0 {
		h += 360
	}

	var s float64
	if max != 0 {
		s = d / max
	}
	return HSV{H: h, S: s, V: max}
}

// HSVToRGB converts hue/saturation/value into 8-bit channels, rounding to the nearest integer.
//
// Parameters:
//   - h: hue in degrees; values outside [0, 360) wrap around
//   - s, v: saturation and value in [0, 1]
//
// Returns:
//   - RGB: the converted color
func HSVToRGB(h, s, v float64) RGB {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return RGB{R: toByte(r + m), G: toByte(g + m), B: toByte(b + m)}
}

func toByte(f float64) int {
	return clampByte(int(math.Round(f * 255)))
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
