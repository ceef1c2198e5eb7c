package loader

import (
	"io"
)

// loaderBackend loads one model file format into an importedAsset.
type loaderBackend interface {
	// Load imports the file at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *importedAsset: the imported asset
	//   - error: error if loading fails
	Load(path string) (*importedAsset, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - name: the asset name, also used to resolve relative URIs
	//   - r: the reader providing model data
	//   - isGLB: true for GLB binary data, false for glTF JSON
	//
	// Returns:
	//   - *importedAsset: the imported asset
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*importedAsset, error)
}
