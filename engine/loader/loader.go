package loader

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/paint-house/engine/scene"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// ErrUnsupportedFormat is returned for files whose extension no backend handles.
var ErrUnsupportedFormat = errors.New("unsupported model format")

type loader struct {
	mu sync.RWMutex

	workers int
	pool    worker.DynamicWorkerPool

	assetCache map[string]*importedAsset

	backend loaderBackend
}

// Loader imports model files into scene graphs. Parsed assets are cached by path, but
// every Load returns a brand-new graph with its own nodes and descriptors, so callers may
// mutate what they receive.
type Loader interface {
	// Load imports a model file, parsing it only on the first request for that path.
	// The backend is selected by file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - scene.Graph: a fresh graph for the model
	//   - error: error if loading fails
	Load(path string) (scene.Graph, error)

	// LoadReader imports a model from a stream and caches it under name.
	//
	// Parameters:
	//   - name: the cache key, also used to resolve relative buffer URIs
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - scene.Graph: a fresh graph for the model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (scene.Graph, error)

	// Cached reports whether an asset is in the cache.
	//
	// Parameters:
	//   - name: the cache key
	//
	// Returns:
	//   - bool: true if cached
	Cached(name string) bool

	// Evict drops a cached asset so the next Load re-reads the file.
	//
	// Parameters:
	//   - name: the cache key
	Evict(name string)

	// Names returns the cache keys in sorted order.
	//
	// Returns:
	//   - []string: cached asset names
	Names() []string

	// Close stops the extraction worker pool.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		workers:    runtime.NumCPU(),
		assetCache: make(map[string]*importedAsset),
	}
	for _, option := range options {
		option(l)
	}

	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.pool)
	}
	return l
}

func (l *loader) Load(path string) (scene.Graph, error) {
	l.mu.RLock()
	cached, ok := l.assetCache[path]
	l.mu.RUnlock()
	if ok {
		return cached.instantiate(), nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	asset, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	log.Printf("[Loader] imported %s: %d nodes, %d meshes, %d materials in %s",
		path, len(asset.Nodes), len(asset.Meshes), len(asset.Materials), time.Since(start).Round(time.Millisecond))

	l.mu.Lock()
	l.assetCache[path] = asset
	l.mu.Unlock()

	return asset.instantiate(), nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (scene.Graph, error) {
	l.mu.RLock()
	cached, ok := l.assetCache[name]
	l.mu.RUnlock()
	if ok {
		return cached.instantiate(), nil
	}

	asset, err := l.backend.LoadReader(name, r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.mu.Lock()
	l.assetCache[name] = asset
	l.mu.Unlock()

	return asset.instantiate(), nil
}

func (l *loader) Cached(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.assetCache[name]
	return ok
}

func (l *loader) Evict(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.assetCache, name)
}

func (l *loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.assetCache))
	for k := range l.assetCache {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (l *loader) Close() {
	l.pool.Stop()
}

// resolveBackend selects an appropriate loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}
