package paint

import (
	"log"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/paint-house/engine/material"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
)

type preparerImpl struct {
	mu          *sync.Mutex
	graph       scene.Graph
	set         *surfaceSetImpl
	initialized bool
}

// Preparer detaches every mesh of a freshly loaded graph from shared material
// state and registers it as a paintable surface.
type Preparer interface {
	// Prepare walks the graph depth-first. Each mesh node's descriptors are replaced
	// by deep clones that are reset to white, double-sided, opaque and normalized
	// roughness/metalness, with the loaded colors kept as a snapshot. Mesh nodes
	// without descriptors are skipped. Later calls return the set built by the first.
	//
	// Returns:
	//   - SurfaceSet: the paintable surfaces in traversal order
	Prepare() SurfaceSet

	// Initialized reports whether Prepare has run.
	//
	// Returns:
	//   - bool: true after the first Prepare
	Initialized() bool
}

var _ Preparer = &preparerImpl{}

// NewPreparer creates a preparer bound to one graph.
//
// Parameters:
//   - graph: the freshly loaded scene graph
//
// Returns:
//   - Preparer: the preparer
func NewPreparer(graph scene.Graph) Preparer {
	return &preparerImpl{
		mu:    &sync.Mutex{},
		graph: graph,
		set:   newSurfaceSet(),
	}
}

func (p *preparerImpl) Prepare() SurfaceSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return p.set
	}
	p.initialized = true

	p.graph.Traverse(func(n scene.Node) {
		if n.Kind() != scene.NodeKindMesh {
			return
		}
		source := n.Descriptors()
		if len(source) == 0 {
			return
		}

		clones := make([]material.Descriptor, len(source))
		original := make([][3]float32, len(source))
		kinds := make([]string, len(source))
		for i, d := range source {
			c := d.Clone()
			original[i] = c.Color()
			normalize(c)
			clones[i] = c
			kinds[i] = string(c.Kind())
		}
		n.SetDescriptors(clones)

		p.set.add(&surfaceImpl{node: n, original: original})
		log.Printf("[Paint] registered surface %q (%s)", n.Name(), strings.Join(kinds, ", "))
	})
	log.Printf("[Paint] %d paintable surfaces in %q", p.set.Len(), p.graph.Name())
	return p.set
}

func (p *preparerImpl) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// normalize resets a descriptor to the base paintable appearance.
func normalize(d material.Descriptor) {
	d.SetSide(material.DoubleSide)
	d.SetVisible(true)
	d.SetOpacity(1)
	d.SetTransparent(false)
	if s, ok := d.(material.Standard); ok {
		s.SetRoughness(PaintRoughness)
		s.SetMetalness(PaintMetalness)
	}
	d.SetColor([3]float32{1, 1, 1})
	d.MarkDirty()
}
