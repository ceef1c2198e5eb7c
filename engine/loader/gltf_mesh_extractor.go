package loader

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
)

// importedMesh is one glTF mesh flattened into a single geometry. Each primitive
// becomes a geometry group; Slots[i] is the material index drawn by group i, or -1
// for the glTF default material.
type importedMesh struct {
	Name     string
	Geometry *scene.Geometry
	Slots    []int
}

type gltfMeshExtractorImpl struct {
	parser gltfParser
	pool   worker.DynamicWorkerPool
}

// gltfMeshExtractor converts glTF meshes into engine geometry.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index. Primitives that are not triangle
	// lists are skipped.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - *importedMesh: the merged geometry and its material slots
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) (*importedMesh, error)

	// ExtractAllMeshes extracts every mesh in document order, spreading the work
	// across the worker pool.
	//
	// Returns:
	//   - []*importedMesh: the meshes, indexed like the document's mesh array
	//   - error: the first extraction error, if any
	ExtractAllMeshes() ([]*importedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser, pool worker.DynamicWorkerPool) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser, pool: pool}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) (*importedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d: %w", meshIndex, errAccessorOutOfRange)
	}
	src := &doc.Meshes[meshIndex]

	var positions, normals []common.Vec3
	var indices []uint32
	var groups []scene.Group
	var slots []int
	haveNormals := true

	for primIdx := range src.Primitives {
		prim := &src.Primitives[primIdx]
		if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
			continue
		}
		posIdx, ok := prim.Attributes["POSITION"]
		if !ok {
			return nil, fmt.Errorf("mesh %d primitive %d has no POSITION", meshIndex, primIdx)
		}
		pos, err := e.parser.ReadVec3Accessor(posIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d positions: %w", meshIndex, primIdx, err)
		}

		var nrm [][3]float32
		if nIdx, ok := prim.Attributes["NORMAL"]; ok {
			if nrm, err = e.parser.ReadVec3Accessor(nIdx); err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d normals: %w", meshIndex, primIdx, err)
			}
		}
		if len(nrm) != len(pos) {
			haveNormals = false
		}

		var idx []uint32
		if prim.Indices != nil {
			if idx, err = e.parser.ReadIndicesAccessor(*prim.Indices); err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d indices: %w", meshIndex, primIdx, err)
			}
		} else {
			idx = make([]uint32, len(pos))
			for i := range idx {
				idx[i] = uint32(i)
			}
		}
		for _, v := range idx {
			if int(v) >= len(pos) {
				return nil, fmt.Errorf("mesh %d primitive %d index %d: %w", meshIndex, primIdx, v, errAccessorOutOfRange)
			}
		}

		base := uint32(len(positions))
		start := uint32(len(indices))
		positions = append(positions, pos...)
		normals = append(normals, nrm...)
		for _, v := range idx {
			indices = append(indices, v+base)
		}

		slot := -1
		if prim.Material != nil {
			slot = *prim.Material
		}
		groups = append(groups, scene.Group{Start: start, Count: uint32(len(idx)), Slot: len(slots)})
		slots = append(slots, slot)
	}

	if !haveNormals {
		normals = nil
	}
	if len(slots) <= 1 {
		groups = nil
	}
	return &importedMesh{
		Name:     src.Name,
		Geometry: scene.NewGeometry(positions, normals, indices, groups),
		Slots:    slots,
	}, nil
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]*importedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	out := make([]*importedMesh, len(doc.Meshes))
	errs := make([]error, len(doc.Meshes))

	// the pool's Wait blocks until workers idle out, so a WaitGroup is the barrier
	var wg sync.WaitGroup
	for i := range doc.Meshes {
		wg.Add(1)
		idx := i
		e.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				out[idx], errs[idx] = e.ExtractMesh(idx)
				return nil, errs[idx]
			},
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
