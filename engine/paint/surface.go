// Package paint turns a loaded scene graph into a set of independently paintable
// surfaces, resolves pointer input to one of them and recolors it.
package paint

import (
	"sync"

	"github.com/Carmen-Shannon/paint-house/engine/material"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
)

// Shading parameters every paintable surface is normalized to.
const (
	PaintRoughness float32 = 0.3
	PaintMetalness float32 = 0.1
)

type surfaceImpl struct {
	node     scene.Node
	original [][3]float32
}

// Surface is a mesh node whose descriptors are owned exclusively by it.
type Surface interface {
	// ID returns the node's process-unique identifier.
	//
	// Returns:
	//   - uint64: the node ID
	ID() uint64

	// Name returns the node name.
	//
	// Returns:
	//   - string: the node name
	Name() string

	// Node returns the underlying scene node.
	//
	// Returns:
	//   - scene.Node: the mesh node
	Node() scene.Node

	// Descriptors returns the surface's descriptors, one per material slot.
	//
	// Returns:
	//   - []material.Descriptor: the descriptors
	Descriptors() []material.Descriptor

	// OriginalColors returns each descriptor's color as loaded, before preparation
	// reset it to white.
	//
	// Returns:
	//   - [][3]float32: a copy of the snapshot, indexed like Descriptors
	OriginalColors() [][3]float32
}

var _ Surface = &surfaceImpl{}

func (s *surfaceImpl) ID() uint64 {
	return s.node.ID()
}

func (s *surfaceImpl) Name() string {
	return s.node.Name()
}

func (s *surfaceImpl) Node() scene.Node {
	return s.node
}

func (s *surfaceImpl) Descriptors() []material.Descriptor {
	return s.node.Descriptors()
}

func (s *surfaceImpl) OriginalColors() [][3]float32 {
	return append([][3]float32(nil), s.original...)
}

type surfaceSetImpl struct {
	mu       *sync.RWMutex
	surfaces []Surface
	byID     map[uint64]Surface
}

// SurfaceSet is the ordered collection of paintable surfaces of one model, in
// depth-first traversal order.
type SurfaceSet interface {
	// Surfaces returns the surfaces in registration order.
	//
	// Returns:
	//   - []Surface: a copy of the surface list
	Surfaces() []Surface

	// Get looks up a surface by node ID.
	//
	// Parameters:
	//   - id: the node ID
	//
	// Returns:
	//   - Surface: the surface
	//   - bool: true if found
	Get(id uint64) (Surface, bool)

	// Len returns the number of surfaces.
	//
	// Returns:
	//   - int: surface count
	Len() int
}

var _ SurfaceSet = &surfaceSetImpl{}

// NewSurfaceSet creates an empty set.
func NewSurfaceSet() SurfaceSet {
	return newSurfaceSet()
}

func newSurfaceSet() *surfaceSetImpl {
	return &surfaceSetImpl{
		mu:   &sync.RWMutex{},
		byID: make(map[uint64]Surface),
	}
}

func (s *surfaceSetImpl) add(surface Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[surface.ID()]; ok {
		return
	}
	s.surfaces = append(s.surfaces, surface)
	s.byID[surface.ID()] = surface
}

func (s *surfaceSetImpl) Surfaces() []Surface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Surface(nil), s.surfaces...)
}

func (s *surfaceSetImpl) Get(id uint64) (Surface, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	surface, ok := s.byID[id]
	return surface, ok
}

func (s *surfaceSetImpl) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.surfaces)
}
