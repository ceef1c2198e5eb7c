package paint

import (
	"github.com/Carmen-Shannon/paint-house/engine/material"
)

type applicatorImpl struct{}

// Applicator recolors one surface at a time.
type Applicator interface {
	// Apply replaces the color of every standard descriptor on the surface, re-asserts
	// the paint roughness and metalness, and marks each one dirty. Descriptors of
	// other kinds are left alone. No other surface is touched.
	//
	// Parameters:
	//   - s: the target surface
	//   - rgb: the new color as normalized floats
	//
	// Returns:
	//   - int: the number of descriptors recolored
	Apply(s Surface, rgb [3]float32) int
}

var _ Applicator = &applicatorImpl{}

// NewApplicator creates an Applicator.
func NewApplicator() Applicator {
	return &applicatorImpl{}
}

func (a *applicatorImpl) Apply(s Surface, rgb [3]float32) int {
	if s == nil {
		return 0
	}
	painted := 0
	for _, d := range s.Descriptors() {
		std, ok := d.(material.Standard)
		if !ok {
			continue
		}
		std.SetColor(rgb)
		std.SetRoughness(PaintRoughness)
		std.SetMetalness(PaintMetalness)
		std.MarkDirty()
		painted++
	}
	return painted
}
