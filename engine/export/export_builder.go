package export

// sinkConfig holds the settings shared by every file-backed sink.
type sinkConfig struct {
	dir           string
	fontSize      float64
	pixelsPerUnit float64
}

func defaultSinkConfig() sinkConfig {
	return sinkConfig{
		dir:           ".",
		fontSize:      12,
		pixelsPerUnit: 4,
	}
}

// SinkBuilderOption is a functional option for configuring a file-backed Sink.
type SinkBuilderOption func(*sinkConfig)

// WithOutputDir sets the directory Finalize writes into. It is created when missing.
//
// Parameters:
//   - dir: output directory
//
// Returns:
//   - SinkBuilderOption: a function that applies the directory to a sink
func WithOutputDir(dir string) SinkBuilderOption {
	return func(c *sinkConfig) {
		if dir != "" {
			c.dir = dir
		}
	}
}

// WithFontSize sets the text size in points. Only the PDF sink scales its font;
// the sheet sink always draws a fixed 7x13 bitmap face.
//
// Parameters:
//   - size: font size in points
//
// Returns:
//   - SinkBuilderOption: a function that applies the font size to a sink
func WithFontSize(size float64) SinkBuilderOption {
	return func(c *sinkConfig) {
		if size > 0 {
			c.fontSize = size
		}
	}
}

// WithPixelsPerUnit sets the raster density of the sheet sink.
//
// Parameters:
//   - ppu: pixels per document unit
//
// Returns:
//   - SinkBuilderOption: a function that applies the density to a sink
func WithPixelsPerUnit(ppu float64) SinkBuilderOption {
	return func(c *sinkConfig) {
		if ppu > 0 {
			c.pixelsPerUnit = ppu
		}
	}
}
