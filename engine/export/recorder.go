package export

import (
	"bytes"
	"fmt"
	"image/png"
	"sync"
)

// PlacedImage is an image call seen by a Recorder.
type PlacedImage struct {
	Page       int
	PNG        []byte
	X, Y, W, H float64
}

// PlacedText is a text call seen by a Recorder.
type PlacedText struct {
	Page int
	Text string
	X, Y float64
}

// Recorder is an in-memory Sink that keeps every call for inspection.
// Images are still validated as PNG so it fails where the real sinks would.
type Recorder struct {
	mu *sync.Mutex

	images    []PlacedImage
	texts     []PlacedText
	pages     int
	name      string
	finalized bool
}

var _ Sink = &Recorder{}

// NewRecorder creates an empty Recorder positioned on page 1.
func NewRecorder() *Recorder {
	return &Recorder{
		mu:    &sync.Mutex{},
		pages: 1,
	}
}

// Factory returns a Factory that always hands out this recorder.
func (r *Recorder) Factory() Factory {
	return func() (Sink, error) {
		return r, nil
	}
}

func (r *Recorder) PageSize() (float64, float64) {
	return PageWidth, PageHeight
}

func (r *Recorder) PlaceImage(data []byte, x, y, w, h float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return ErrFinalized
	}
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	r.images = append(r.images, PlacedImage{Page: r.pages, PNG: data, X: x, Y: y, W: w, H: h})
	return nil
}

func (r *Recorder) PlaceText(text string, x, y float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return ErrFinalized
	}
	r.texts = append(r.texts, PlacedText{Page: r.pages, Text: text, X: x, Y: y})
	return nil
}

func (r *Recorder) AddPage() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return ErrFinalized
	}
	r.pages++
	return nil
}

func (r *Recorder) Finalize(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return "", ErrFinalized
	}
	path, err := artifactPath("", name, ".rec")
	if err != nil {
		return "", err
	}
	r.name = name
	r.finalized = true
	return path, nil
}

// Images returns the placed images in call order.
func (r *Recorder) Images() []PlacedImage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PlacedImage(nil), r.images...)
}

// Texts returns the placed text lines in call order.
func (r *Recorder) Texts() []PlacedText {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PlacedText(nil), r.texts...)
}

// Pages returns the number of pages started so far.
func (r *Recorder) Pages() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pages
}

// Finalized reports whether Finalize succeeded, and with which name.
func (r *Recorder) Finalized() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name, r.finalized
}
