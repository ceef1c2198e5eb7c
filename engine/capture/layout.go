package capture

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/paint-house/engine/color"
	"github.com/Carmen-Shannon/paint-house/engine/export"
	"github.com/Carmen-Shannon/paint-house/engine/paint"
)

// Layout places the captured views and the color inventory on the document pages.
// All values are in sink units.
type Layout struct {
	ImageSize  float64 `yaml:"image_size" toml:"image_size"`
	Gutter     float64 `yaml:"gutter" toml:"gutter"`
	Padding    float64 `yaml:"padding" toml:"padding"`
	Columns    int     `yaml:"columns" toml:"columns"`
	LineHeight float64 `yaml:"line_height" toml:"line_height"`
	Heading    string  `yaml:"heading" toml:"heading"`
}

// DefaultLayout is a 2x2 grid of 100-unit views with a 5-unit gutter and padding.
func DefaultLayout() Layout {
	return Layout{
		ImageSize:  100,
		Gutter:     5,
		Padding:    5,
		Columns:    2,
		LineHeight: 7,
		Heading:    "Colors used",
	}
}

func (l Layout) withDefaults() Layout {
	d := DefaultLayout()
	if l.ImageSize <= 0 {
		l.ImageSize = d.ImageSize
	}
	if l.Gutter < 0 {
		l.Gutter = d.Gutter
	}
	if l.Padding < 0 {
		l.Padding = d.Padding
	}
	if l.Columns <= 0 {
		l.Columns = d.Columns
	}
	if l.LineHeight <= 0 {
		l.LineHeight = d.LineHeight
	}
	if l.Heading == "" {
		l.Heading = d.Heading
	}
	return l
}

// Cell returns the top-left corner of the i-th image, filling rows left to right.
func (l Layout) Cell(i int) (float64, float64) {
	col, row := i%l.Columns, i/l.Columns
	step := l.ImageSize + l.Gutter
	return l.Padding + float64(col)*step, l.Padding + float64(row)*step
}

// gridBottom is the y coordinate just below the last image row.
func (l Layout) gridBottom(images int) float64 {
	rows := (images + l.Columns - 1) / l.Columns
	if rows == 0 {
		return l.Padding
	}
	return l.Padding + float64(rows)*l.ImageSize + float64(rows-1)*l.Gutter
}

// Inventory lists the distinct colors applied to every descriptor of every surface
// as sorted uppercase #RRGGBB strings.
//
// Parameters:
//   - set: the surfaces to inspect
//
// Returns:
//   - []string: the distinct colors
func Inventory(set paint.SurfaceSet) []string {
	seen := make(map[string]struct{})
	for _, s := range set.Surfaces() {
		for _, d := range s.Descriptors() {
			if d == nil {
				continue
			}
			seen[color.FloatsToHex(d.Color())] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for hex := range seen {
		out = append(out, hex)
	}
	sort.Strings(out)
	return out
}

// assemble writes the image grid and the inventory text into sink. Text continues
// on a new page whenever the next baseline would pass the bottom padding.
//
// Returns the number of pages used.
func assemble(sink export.Sink, l Layout, images [][]byte, colors []string) (int, error) {
	pages := 1
	for i, img := range images {
		x, y := l.Cell(i)
		if err := sink.PlaceImage(img, x, y, l.ImageSize, l.ImageSize); err != nil {
			return pages, fmt.Errorf("place image %d: %w", i, err)
		}
	}

	_, pageHeight := sink.PageSize()
	limit := pageHeight - l.Padding
	y := l.gridBottom(len(images)) + l.Gutter

	lines := append([]string{l.Heading}, colors...)
	for _, line := range lines {
		y += l.LineHeight
		if y > limit {
			if err := sink.AddPage(); err != nil {
				return pages, fmt.Errorf("add page: %w", err)
			}
			pages++
			y = l.Padding + l.LineHeight
		}
		if err := sink.PlaceText(line, l.Padding, y); err != nil {
			return pages, fmt.Errorf("place text %q: %w", line, err)
		}
	}
	return pages, nil
}
