package scene

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/material"
)

// nodeCount generates unique node IDs across all graphs in the process.
var nodeCount atomic.Uint64

// NodeKind tags what a node carries.
type NodeKind int

const (
	// NodeKindGroup only organizes children.
	NodeKindGroup NodeKind = iota
	// NodeKindMesh carries geometry and one or more shading descriptors.
	NodeKindMesh
	// NodeKindOther is any imported node the engine does not draw (cameras, lights, empties with extras).
	NodeKindOther
)

func (k NodeKind) String() string {
	switch k {
	case NodeKindMesh:
		return "mesh"
	case NodeKindOther:
		return "other"
	default:
		return "group"
	}
}

type nodeImpl struct {
	mu *sync.Mutex

	id       uint64
	name     string
	kind     NodeKind
	parent   *nodeImpl
	children []*nodeImpl

	local common.Mat4
	world common.Mat4

	geometry    *Geometry
	descriptors []material.Descriptor
	multi       bool
}

// Node is one element of a scene graph.
type Node interface {
	// ID returns the process-unique node identifier.
	//
	// Returns:
	//   - uint64: the node ID
	ID() uint64

	// Name returns the node's name from the source asset.
	//
	// Returns:
	//   - string: the node name
	Name() string

	// Kind returns the node's tag.
	//
	// Returns:
	//   - NodeKind: group, mesh or other
	Kind() NodeKind

	// Parent returns the parent node, or nil for the root.
	//
	// Returns:
	//   - Node: the parent or nil
	Parent() Node

	// Children returns the node's children in insertion order.
	//
	// Returns:
	//   - []Node: the children
	Children() []Node

	// AddChild appends child to this node and sets its parent.
	//
	// Parameters:
	//   - child: the node to attach; must have been created by this package
	AddChild(child Node)

	// LocalMatrix returns the node transform relative to its parent.
	//
	// Returns:
	//   - common.Mat4: the local transform
	LocalMatrix() common.Mat4

	// SetLocalMatrix replaces the local transform. Call Graph.UpdateWorldMatrices afterwards.
	//
	// Parameters:
	//   - m: the local transform
	SetLocalMatrix(m common.Mat4)

	// WorldMatrix returns the transform from mesh-local to world space, as of the
	// last Graph.UpdateWorldMatrices.
	//
	// Returns:
	//   - common.Mat4: the world transform
	WorldMatrix() common.Mat4

	// Geometry returns the node's triangles, or nil unless the node is a mesh.
	//
	// Returns:
	//   - *Geometry: the geometry or nil
	Geometry() *Geometry

	// Descriptors returns a copy of the node's descriptor list. The list is empty for
	// non-mesh nodes.
	//
	// Returns:
	//   - []material.Descriptor: the descriptors
	Descriptors() []material.Descriptor

	// SetDescriptors replaces the node's descriptors in place, keeping the
	// single-or-array shape.
	//
	// Parameters:
	//   - ds: the new descriptors
	SetDescriptors(ds []material.Descriptor)

	// MultiMaterial reports whether the descriptors came as an array, one per geometry group.
	//
	// Returns:
	//   - bool: true for an array of descriptors
	MultiMaterial() bool
}

var _ Node = &nodeImpl{}

// NewGroup creates a group node.
func NewGroup(name string, options ...NodeBuilderOption) Node {
	return newNode(name, NodeKindGroup, options...)
}

// NewOther creates a node the engine does not draw.
func NewOther(name string, options ...NodeBuilderOption) Node {
	return newNode(name, NodeKindOther, options...)
}

// NewMesh creates a mesh node drawing geometry with the given descriptors. More than
// one descriptor marks the mesh as multi-material; WithMultiMaterial forces it.
//
// Parameters:
//   - name: node name
//   - geometry: the triangles to draw
//   - descriptors: one descriptor, or one per geometry group
//   - options: variadic list of NodeBuilderOption functions
//
// Returns:
//   - Node: the mesh node
func NewMesh(name string, geometry *Geometry, descriptors []material.Descriptor, options ...NodeBuilderOption) Node {
	n := newNode(name, NodeKindMesh)
	n.geometry = geometry
	n.descriptors = append([]material.Descriptor(nil), descriptors...)
	n.multi = len(descriptors) > 1
	for _, opt := range options {
		opt(n)
	}
	return n
}

func newNode(name string, kind NodeKind, options ...NodeBuilderOption) *nodeImpl {
	n := &nodeImpl{
		mu:    &sync.Mutex{},
		id:    nodeCount.Add(1),
		name:  name,
		kind:  kind,
		local: common.IdentityMat4(),
		world: common.IdentityMat4(),
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *nodeImpl) ID() uint64 {
	return n.id
}

func (n *nodeImpl) Name() string {
	return n.name
}

func (n *nodeImpl) Kind() NodeKind {
	return n.kind
}

func (n *nodeImpl) Parent() Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *nodeImpl) Children() []Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *nodeImpl) AddChild(child Node) {
	c, ok := child.(*nodeImpl)
	if !ok || c == nil {
		return
	}
	c.mu.Lock()
	c.parent = n
	c.mu.Unlock()

	n.mu.Lock()
	n.children = append(n.children, c)
	n.mu.Unlock()
}

func (n *nodeImpl) LocalMatrix() common.Mat4 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.local
}

func (n *nodeImpl) SetLocalMatrix(m common.Mat4) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.local = m
}

func (n *nodeImpl) WorldMatrix() common.Mat4 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.world
}

func (n *nodeImpl) Geometry() *Geometry {
	return n.geometry
}

func (n *nodeImpl) Descriptors() []material.Descriptor {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]material.Descriptor(nil), n.descriptors...)
}

func (n *nodeImpl) SetDescriptors(ds []material.Descriptor) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.descriptors = append([]material.Descriptor(nil), ds...)
}

func (n *nodeImpl) MultiMaterial() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.multi
}

// updateWorld recomputes this node's world matrix from parentWorld and recurses into children.
func (n *nodeImpl) updateWorld(parentWorld *common.Mat4) {
	n.mu.Lock()
	if parentWorld == nil {
		n.world = n.local
	} else {
		common.Mul4(n.world[:], parentWorld[:], n.local[:])
	}
	world := n.world
	children := append([]*nodeImpl(nil), n.children...)
	n.mu.Unlock()

	for _, c := range children {
		c.updateWorld(&world)
	}
}
