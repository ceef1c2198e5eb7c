package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/material"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
)

// importedNode mirrors one glTF node: its transform, children and optional mesh index.
type importedNode struct {
	Name     string
	Children []int
	Mesh     int
	Local    common.Mat4
	Other    bool
}

// importedAsset is the parsed, format-independent form of a model file. It is cached by
// the loader and turned into a fresh scene.Graph on every instantiation.
type importedAsset struct {
	Name      string
	Roots     []int
	Nodes     []importedNode
	Meshes    []*importedMesh
	Materials []material.Descriptor
}

type gltfImporterImpl struct {
	pool worker.DynamicWorkerPool
}

// gltfImporter combines the parser and the extractors into a complete importedAsset.
type gltfImporter interface {
	// Import loads a glTF/GLB file.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *importedAsset: the imported asset
	//   - error: error if import fails
	Import(path string) (*importedAsset, error)

	// ImportReader loads a glTF/GLB stream.
	//
	// Parameters:
	//   - name: the asset name
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *importedAsset: the imported asset
	//   - error: error if import fails
	ImportReader(name string, r io.Reader, isGLB bool) (*importedAsset, error)
}

var _ gltfImporter = &gltfImporterImpl{}

func newGLTFImporter(pool worker.DynamicWorkerPool) gltfImporter {
	return &gltfImporterImpl{pool: pool}
}

func (imp *gltfImporterImpl) Import(path string) (*importedAsset, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return imp.importFromParser(parser, path)
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, isGLB bool) (*importedAsset, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB, filepath.Dir(name)); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}
	return imp.importFromParser(parser, name)
}

func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackName string) (*importedAsset, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	meshes, err := newGLTFMeshExtractor(parser, imp.pool).ExtractAllMeshes()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}
	materials, err := newGLTFMaterialExtractor(parser).ExtractAllMaterials()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}

	nodes := make([]importedNode, len(doc.Nodes))
	for i, src := range doc.Nodes {
		n := importedNode{
			Name:     src.Name,
			Children: src.Children,
			Mesh:     -1,
			Local:    gltfNodeMatrix(&src),
			Other:    src.Camera != nil,
		}
		if src.Mesh != nil {
			if *src.Mesh < 0 || *src.Mesh >= len(meshes) {
				return nil, fmt.Errorf("node %d mesh %d: %w", i, *src.Mesh, errAccessorOutOfRange)
			}
			n.Mesh = *src.Mesh
		}
		for _, c := range src.Children {
			if c < 0 || c >= len(doc.Nodes) {
				return nil, fmt.Errorf("node %d child %d: %w", i, c, errAccessorOutOfRange)
			}
		}
		if n.Name == "" {
			n.Name = fmt.Sprintf("node_%d", i)
		}
		nodes[i] = n
	}

	for _, slot := range allSlots(meshes) {
		if slot >= len(materials) {
			return nil, fmt.Errorf("material %d: %w", slot, errAccessorOutOfRange)
		}
	}

	return &importedAsset{
		Name:      gltfExtractModelName(doc, fallbackName),
		Roots:     gltfRootNodes(doc),
		Nodes:     nodes,
		Meshes:    meshes,
		Materials: materials,
	}, nil
}

// instantiate builds an independent scene graph from the asset. Material templates are
// cloned once per instantiation, so nodes that reference the same glTF material share
// one descriptor within the graph, exactly as the source asset intends.
func (a *importedAsset) instantiate() scene.Graph {
	shared := make([]material.Descriptor, len(a.Materials))
	for i, m := range a.Materials {
		shared[i] = m.Clone()
	}
	var fallback material.Descriptor
	descriptorFor := func(slot int) material.Descriptor {
		if slot >= 0 && slot < len(shared) {
			return shared[slot]
		}
		if fallback == nil {
			fallback = material.NewStandard(material.WithName("default"), material.WithMetalness(1), material.WithRoughness(1))
		}
		return fallback
	}

	// guards against cycles in malformed files
	visited := make([]bool, len(a.Nodes))
	var build func(idx int) scene.Node
	build = func(idx int) scene.Node {
		visited[idx] = true
		src := a.Nodes[idx]

		var n scene.Node
		switch {
		case src.Mesh >= 0:
			m := a.Meshes[src.Mesh]
			ds := make([]material.Descriptor, len(m.Slots))
			for i, slot := range m.Slots {
				ds[i] = descriptorFor(slot)
			}
			n = scene.NewMesh(src.Name, m.Geometry, ds, scene.WithLocalMatrix(src.Local), scene.WithMultiMaterial(len(ds) > 1))
		case src.Other:
			n = scene.NewOther(src.Name, scene.WithLocalMatrix(src.Local))
		default:
			n = scene.NewGroup(src.Name, scene.WithLocalMatrix(src.Local))
		}

		for _, c := range src.Children {
			if visited[c] {
				continue
			}
			n.AddChild(build(c))
		}
		return n
	}

	root := scene.NewGroup(a.Name)
	for _, r := range a.Roots {
		if r >= 0 && r < len(a.Nodes) && !visited[r] {
			root.AddChild(build(r))
		}
	}
	return scene.NewGraph(scene.WithName(a.Name), scene.WithRoot(root))
}

// --- helpers ---

// gltfNodeMatrix returns a node's local transform from its matrix or its TRS properties.
func gltfNodeMatrix(n *gltfNode) common.Mat4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	t := common.Vec3{}
	r := [4]float32{0, 0, 0, 1}
	s := common.Vec3{1, 1, 1}
	if n.Translation != nil {
		t = *n.Translation
	}
	if n.Rotation != nil {
		r = *n.Rotation
	}
	if n.Scale != nil {
		s = *n.Scale
	}
	var m common.Mat4
	common.ComposeTRS(m[:], t, r, s)
	return m
}

// gltfRootNodes returns the default scene's root nodes, or every parentless node when
// the document declares no scene.
func gltfRootNodes(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i, p := range hasParent {
		if !p {
			roots = append(roots, i)
		}
	}
	return roots
}

// gltfExtractModelName derives a model name from the default scene or the file path.
func gltfExtractModelName(doc *gltfDocument, fallback string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if fallback != "" {
		return strings.TrimSuffix(filepath.Base(fallback), filepath.Ext(fallback))
	}
	return "unnamed_model"
}

func allSlots(meshes []*importedMesh) []int {
	var out []int
	for _, m := range meshes {
		out = append(out, m.Slots...)
	}
	return out
}
