package loader

import (
	"io"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend for glTF/GLB files.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend(pool worker.DynamicWorkerPool) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(pool),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*importedAsset, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader, isGLB bool) (*importedAsset, error) {
	return b.importer.ImportReader(name, r, isGLB)
}
