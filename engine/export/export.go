// Package export writes captured views and text into paginated documents.
package export

import (
	"errors"
	"path/filepath"
	"strings"
)

// Page size of every sink, in document units (millimetres for PDF).
const (
	PageWidth  = 210.0
	PageHeight = 297.0
)

var (
	// ErrFinalized is returned by every Sink method after Finalize.
	ErrFinalized = errors.New("sink already finalized")

	// ErrEmptyName is returned by Finalize when no artifact name is given.
	ErrEmptyName = errors.New("artifact name is empty")
)

// Sink receives positioned images and text and turns them into one artifact.
// Coordinates are in document units with the origin at the top-left corner of
// the current page.
type Sink interface {
	// PageSize returns the page dimensions.
	//
	// Returns:
	//   - float64: page width
	//   - float64: page height
	PageSize() (float64, float64)

	// PlaceImage draws a PNG-encoded image into the given box on the current page.
	//
	// Parameters:
	//   - png: PNG bytes
	//   - x, y: top-left corner of the box
	//   - w, h: box size
	//
	// Returns:
	//   - error: a decode error, or ErrFinalized
	PlaceImage(png []byte, x, y, w, h float64) error

	// PlaceText writes one line of text with its baseline at y.
	//
	// Parameters:
	//   - text: the line
	//   - x, y: baseline origin
	//
	// Returns:
	//   - error: ErrFinalized after Finalize
	PlaceText(text string, x, y float64) error

	// AddPage starts a new page. Subsequent placements land on it.
	//
	// Returns:
	//   - error: ErrFinalized after Finalize
	AddPage() error

	// Finalize writes the artifact and closes the sink.
	//
	// Parameters:
	//   - name: artifact name; the sink's extension is appended when missing
	//
	// Returns:
	//   - string: the path of the written artifact
	//   - error: ErrEmptyName, ErrFinalized or a write error
	Finalize(name string) (string, error)
}

// Factory creates a fresh Sink for one document.
type Factory func() (Sink, error)

// artifactPath joins dir and name, appending ext when name has no extension of its own.
func artifactPath(dir, name, ext string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if !strings.EqualFold(filepath.Ext(name), ext) {
		name += ext
	}
	return filepath.Join(dir, name), nil
}
