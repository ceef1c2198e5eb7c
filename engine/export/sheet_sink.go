package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"sync"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type sheetSink struct {
	mu  *sync.Mutex
	cfg sinkConfig

	pages     []*image.RGBA
	finalized bool
}

var _ Sink = &sheetSink{}

// NewSheetSink creates a Sink that rasterizes every page and writes them stacked
// top to bottom as a single PNG contact sheet.
//
// Parameters:
//   - options: variadic list of SinkBuilderOption functions
//
// Returns:
//   - Sink: the sheet sink, positioned on its first page
func NewSheetSink(options ...SinkBuilderOption) Sink {
	cfg := defaultSinkConfig()
	for _, opt := range options {
		opt(&cfg)
	}
	s := &sheetSink{
		mu:  &sync.Mutex{},
		cfg: cfg,
	}
	s.newPage()
	return s
}

// SheetFactory returns a Factory producing sheet sinks with the given options.
func SheetFactory(options ...SinkBuilderOption) Factory {
	return func() (Sink, error) {
		return NewSheetSink(options...), nil
	}
}

func (s *sheetSink) PageSize() (float64, float64) {
	return PageWidth, PageHeight
}

func (s *sheetSink) px(v float64) int {
	return int(math.Round(v * s.cfg.pixelsPerUnit))
}

func (s *sheetSink) newPage() {
	page := image.NewRGBA(image.Rect(0, 0, s.px(PageWidth), s.px(PageHeight)))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	s.pages = append(s.pages, page)
}

func (s *sheetSink) current() *image.RGBA {
	return s.pages[len(s.pages)-1]
}

func (s *sheetSink) PlaceImage(data []byte, x, y, w, h float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	pw, ph := max(s.px(w), 1), max(s.px(h), 1)
	scaled := transform.Resize(img, pw, ph, transform.Linear)

	origin := image.Pt(s.px(x), s.px(y))
	draw.Draw(s.current(), image.Rectangle{Min: origin, Max: origin.Add(image.Pt(pw, ph))}, scaled, image.Point{}, draw.Over)
	return nil
}

func (s *sheetSink) PlaceText(text string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}

	d := &font.Drawer{
		Dst:  s.current(),
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(s.px(x), s.px(y)),
	}
	d.DrawString(text)
	return nil
}

func (s *sheetSink) AddPage() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}
	s.newPage()
	return nil
}

func (s *sheetSink) Finalize(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return "", ErrFinalized
	}

	path, err := artifactPath(s.cfg.dir, name, ".png")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.cfg.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	s.finalized = true

	sheet := s.compose()
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, sheet); err != nil {
		f.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// compose stacks the pages vertically.
func (s *sheetSink) compose() *image.RGBA {
	pw, ph := s.px(PageWidth), s.px(PageHeight)
	sheet := image.NewRGBA(image.Rect(0, 0, pw, ph*len(s.pages)))
	for i, page := range s.pages {
		r := image.Rect(0, i*ph, pw, (i+1)*ph)
		draw.Draw(sheet, r, page, image.Point{}, draw.Src)
	}
	return sheet
}
