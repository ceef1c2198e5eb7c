// Package catalog lists the paintable models, resolves a model/area selection to an
// asset and camera, and carries the application config.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/paint-house/common"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrUnsupportedFormat is returned by Load for files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Entry is a resolved selection: the asset to load and where the camera starts.
type Entry struct {
	// Name is the catalog model actually used.
	Name   string
	Path   string
	Camera common.Vec3
	// Fallback is set when the requested model or area was unknown.
	Fallback bool
}

type catalogImpl struct {
	cfg    Config
	byName map[string]Model
	dir    string
}

// Catalog answers model lookups over a validated Config.
type Catalog interface {
	// Config returns a deep copy of the catalog config.
	//
	// Returns:
	//   - Config: the config
	Config() Config

	// Models returns the names of the top-level models, in file order.
	//
	// Returns:
	//   - []string: model names
	Models() []string

	// Areas returns the names of the areas of model, in file order.
	//
	// Parameters:
	//   - model: the parent model
	//
	// Returns:
	//   - []string: area names, empty when the model has none
	Areas(model string) []string

	// Resolve picks the asset and camera for a model and optional area. An area is
	// only consulted when model has areas; an unknown area falls back to the house
	// model at the default camera. An unknown model falls back the same way.
	//
	// Parameters:
	//   - model: the selected main model
	//   - area: the selected area, or ""
	//
	// Returns:
	//   - Entry: the resolved asset
	Resolve(model, area string) Entry

	// Lookup finds a model by name, areas included.
	//
	// Parameters:
	//   - name: the model name
	//
	// Returns:
	//   - Model: the model
	//   - bool: true if found
	Lookup(name string) (Model, bool)
}

var _ Catalog = &catalogImpl{}

// Default returns the catalog compiled into the binary. It panics if the embedded
// file is invalid.
func Default() Catalog {
	c, err := Parse(defaultYAML, ".yaml", "")
	if err != nil {
		panic(fmt.Errorf("embedded catalog: %w", err))
	}
	return c
}

// Load reads a catalog file, selecting the decoder by extension. Values the file
// leaves out keep their embedded defaults. A relative model_dir is resolved against
// the file's directory.
//
// Parameters:
//   - path: a .yaml, .yml or .toml file
//
// Returns:
//   - Catalog: the catalog
//   - error: ErrUnsupportedFormat, a read or decode error, or ErrInvalidConfig
func Load(path string) (Catalog, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", ".toml":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data, ext, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes catalog data over the embedded defaults.
//
// Parameters:
//   - data: file contents
//   - ext: ".yaml", ".yml" or ".toml"
//   - baseDir: directory a relative model_dir is joined to; "" leaves it as is
//
// Returns:
//   - Catalog: the catalog
//   - error: a decode error or ErrInvalidConfig
func Parse(data []byte, ext, baseDir string) (Catalog, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}

	raw := map[string]any{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		clearOverridden(&cfg, raw)
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		clearOverridden(&cfg, raw)
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newCatalog(cfg, baseDir), nil
}

// clearOverridden drops default lists the file redefines, so they are replaced
// rather than merged element by element.
func clearOverridden(cfg *Config, raw map[string]any) {
	if _, ok := raw["models"]; ok {
		cfg.Models = nil
	}
	if c, ok := raw["capture"].(map[string]any); ok {
		if _, ok := c["poses"]; ok {
			cfg.Capture.Poses = nil
		}
	}
}

func newCatalog(cfg Config, baseDir string) *catalogImpl {
	c := &catalogImpl{
		cfg:    cfg,
		byName: make(map[string]Model, len(cfg.Models)),
		dir:    cfg.Defaults.ModelDir,
	}
	if baseDir != "" && c.dir != "" && !filepath.IsAbs(c.dir) {
		c.dir = filepath.Join(baseDir, c.dir)
	}
	for _, m := range cfg.Models {
		c.byName[m.Name] = m
	}
	return c
}

func (c *catalogImpl) Config() Config {
	var out Config
	if err := copier.CopyWithOption(&out, &c.cfg, copier.Option{DeepCopy: true}); err != nil {
		return c.cfg
	}
	return out
}

func (c *catalogImpl) Models() []string {
	var out []string
	for _, m := range c.cfg.Models {
		if m.AreaOf == "" {
			out = append(out, m.Name)
		}
	}
	return out
}

func (c *catalogImpl) Areas(model string) []string {
	var out []string
	for _, m := range c.cfg.Models {
		if m.AreaOf == model {
			out = append(out, m.Name)
		}
	}
	return out
}

func (c *catalogImpl) Lookup(name string) (Model, bool) {
	m, ok := c.byName[name]
	return m, ok
}

func (c *catalogImpl) Resolve(model, area string) Entry {
	if area != "" && len(c.Areas(model)) > 0 {
		if m, ok := c.byName[area]; ok && (m.AreaOf == model || m.Name == model) {
			return c.entry(m, false)
		}
		return c.fallback()
	}
	if m, ok := c.byName[model]; ok && m.AreaOf == "" {
		return c.entry(m, false)
	}
	return c.fallback()
}

func (c *catalogImpl) entry(m Model, fallback bool) Entry {
	path := m.Path
	if c.dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, path)
	}
	return Entry{Name: m.Name, Path: path, Camera: m.Camera, Fallback: fallback}
}

// fallback is the default model seen from the default camera.
func (c *catalogImpl) fallback() Entry {
	e := c.entry(c.byName[c.cfg.Defaults.Model], true)
	e.Camera = c.cfg.Defaults.Camera
	return e
}
