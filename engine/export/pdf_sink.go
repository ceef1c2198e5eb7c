package export

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"codeberg.org/go-pdf/fpdf"
)

type pdfSink struct {
	mu  *sync.Mutex
	cfg sinkConfig
	doc *fpdf.Fpdf

	images    int
	finalized bool
}

var _ Sink = &pdfSink{}

// NewPDFSink creates a Sink that writes an A4 portrait PDF in millimetres.
// Margins and automatic page breaks are off; callers place everything explicitly.
//
// Parameters:
//   - options: variadic list of SinkBuilderOption functions
//
// Returns:
//   - Sink: the PDF sink, positioned on its first page
func NewPDFSink(options ...SinkBuilderOption) Sink {
	cfg := defaultSinkConfig()
	for _, opt := range options {
		opt(&cfg)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	doc.SetFont("Helvetica", "", cfg.fontSize)

	return &pdfSink{
		mu:  &sync.Mutex{},
		cfg: cfg,
		doc: doc,
	}
}

// PDFFactory returns a Factory producing PDF sinks with the given options.
func PDFFactory(options ...SinkBuilderOption) Factory {
	return func() (Sink, error) {
		return NewPDFSink(options...), nil
	}
}

func (s *pdfSink) PageSize() (float64, float64) {
	return PageWidth, PageHeight
}

func (s *pdfSink) PlaceImage(png []byte, x, y, w, h float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}

	name := fmt.Sprintf("image-%d", s.images)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	s.doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if err := s.doc.Error(); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	s.doc.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	s.images++
	return s.doc.Error()
}

func (s *pdfSink) PlaceText(text string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}
	s.doc.Text(x, y, text)
	return s.doc.Error()
}

func (s *pdfSink) AddPage() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}
	s.doc.AddPage()
	return s.doc.Error()
}

func (s *pdfSink) Finalize(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return "", ErrFinalized
	}

	path, err := artifactPath(s.cfg.dir, name, ".pdf")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.cfg.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	s.finalized = true
	if err := s.doc.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
