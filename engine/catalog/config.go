package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/camera"
	"github.com/Carmen-Shannon/paint-house/engine/capture"
	"github.com/Carmen-Shannon/paint-house/engine/color"
	"github.com/Carmen-Shannon/paint-house/engine/renderer"
)

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid catalog config")
)

// Model is one loadable asset. Models with AreaOf set are selectable areas of that
// parent model.
type Model struct {
	Name   string      `yaml:"name" toml:"name"`
	Path   string      `yaml:"path" toml:"path"`
	Camera common.Vec3 `yaml:"camera" toml:"camera"`
	AreaOf string      `yaml:"area_of,omitempty" toml:"area_of,omitempty"`
}

// Defaults apply when a selection or field does not say otherwise.
type Defaults struct {
	Model    string      `yaml:"model" toml:"model"`
	ModelDir string      `yaml:"model_dir" toml:"model_dir"`
	Camera   common.Vec3 `yaml:"camera" toml:"camera"`
	Fov      float32     `yaml:"fov" toml:"fov"`
	Brush    string      `yaml:"brush" toml:"brush"`
}

// Window sizes the interactive viewport.
type Window struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
}

// Renderer picks the backend for the interactive viewport.
type Renderer struct {
	Backend string `yaml:"backend" toml:"backend"`
	MSAA    int    `yaml:"msaa" toml:"msaa"`
	VSync   bool   `yaml:"vsync" toml:"vsync"`
}

// Pose moves the eye of one of the four capture views. Every view looks at the origin.
type Pose struct {
	Name     string      `yaml:"name" toml:"name"`
	Position common.Vec3 `yaml:"position" toml:"position"`
}

// Capture configures the exported document.
type Capture struct {
	Format string         `yaml:"format" toml:"format"`
	Output string         `yaml:"output" toml:"output"`
	Layout capture.Layout `yaml:"layout" toml:"layout"`
	Poses  []Pose         `yaml:"poses" toml:"poses"`
}

// Config is the full catalog file.
type Config struct {
	Defaults Defaults `yaml:"defaults" toml:"defaults"`
	Models   []Model  `yaml:"models" toml:"models"`
	Window   Window   `yaml:"window" toml:"window"`
	Renderer Renderer `yaml:"renderer" toml:"renderer"`
	Capture  Capture  `yaml:"capture" toml:"capture"`
}

// Export formats understood by Capture.Format.
const (
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// Validate checks the config for missing or contradictory values.
//
// Returns:
//   - error: ErrInvalidConfig wrapping the first problem found
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("%w: no models", ErrInvalidConfig)
	}
	names := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("%w: model %d has no name", ErrInvalidConfig, i)
		}
		if names[m.Name] {
			return fmt.Errorf("%w: duplicate model %q", ErrInvalidConfig, m.Name)
		}
		if m.Path == "" {
			return fmt.Errorf("%w: model %q has no path", ErrInvalidConfig, m.Name)
		}
		names[m.Name] = true
	}
	for _, m := range c.Models {
		if m.AreaOf != "" && !names[m.AreaOf] {
			return fmt.Errorf("%w: area %q belongs to unknown model %q", ErrInvalidConfig, m.Name, m.AreaOf)
		}
	}
	if !names[c.Defaults.Model] {
		return fmt.Errorf("%w: default model %q is not in the catalog", ErrInvalidConfig, c.Defaults.Model)
	}
	if c.Defaults.Fov <= 0 || c.Defaults.Fov >= 180 {
		return fmt.Errorf("%w: fov %v out of (0, 180)", ErrInvalidConfig, c.Defaults.Fov)
	}
	if _, err := color.NormalizeHex(c.Defaults.Brush); err != nil {
		return fmt.Errorf("%w: brush: %w", ErrInvalidConfig, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if _, err := renderer.ParseBackendType(c.Renderer.Backend); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Capture.Format) {
	case FormatPDF, FormatPNG:
	default:
		return fmt.Errorf("%w: capture format %q", ErrInvalidConfig, c.Capture.Format)
	}
	if err := camera.ValidateCapturePoses(c.CameraPoses()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Backend returns the configured renderer backend.
func (c *Config) Backend() renderer.RendererBackendType {
	t, err := renderer.ParseBackendType(c.Renderer.Backend)
	if err != nil {
		return renderer.BackendTypeSoftware
	}
	return t
}

// MSAA returns the configured sample count; anything but 4 disables multisampling.
func (c *Config) MSAA() renderer.MSAASampleCount {
	if c.Renderer.MSAA == int(renderer.MSAA4x) {
		return renderer.MSAA4x
	}
	return renderer.MSAAOff
}

// PresentMode maps the vsync flag to a present mode.
func (c *Config) PresentMode() renderer.PresentMode {
	if c.Renderer.VSync {
		return renderer.PresentModeVSync
	}
	return renderer.PresentModeUncapped
}

// CameraPoses converts the capture poses for the capture engine, aimed at the origin.
func (c *Config) CameraPoses() []camera.Pose {
	out := make([]camera.Pose, 0, len(c.Capture.Poses))
	for _, p := range c.Capture.Poses {
		out = append(out, camera.Pose{Name: p.Name, Position: p.Position})
	}
	return out
}
