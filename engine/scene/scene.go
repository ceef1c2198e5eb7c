package scene

import (
	"sync"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/chewxy/math32"
)

type graphImpl struct {
	mu *sync.RWMutex

	name string
	root *nodeImpl
}

// Graph is a tree of nodes rooted at one loaded model. A Graph is owned by a single
// viewer; loading the same asset twice yields two independent graphs.
type Graph interface {
	// Name returns the graph's name, usually the source asset path.
	//
	// Returns:
	//   - string: the graph name
	Name() string

	// Root returns the root node.
	//
	// Returns:
	//   - Node: the root
	Root() Node

	// Traverse visits every node depth-first in pre-order: a node, then each child
	// subtree in insertion order.
	//
	// Parameters:
	//   - visit: called once per node
	Traverse(visit func(Node))

	// Meshes returns every mesh node in traversal order.
	//
	// Returns:
	//   - []Node: the mesh nodes
	Meshes() []Node

	// UpdateWorldMatrices recomputes every node's world matrix from the local transforms.
	UpdateWorldMatrices()

	// Bounds returns the world-space box around all mesh geometry.
	//
	// Returns:
	//   - common.Vec3: minimum corner
	//   - common.Vec3: maximum corner
	//   - bool: false if the graph has no geometry
	Bounds() (common.Vec3, common.Vec3, bool)
}

var _ Graph = &graphImpl{}

// NewGraph creates a Graph. Without WithRoot the graph starts with an empty group root.
//
// Parameters:
//   - options: variadic list of GraphBuilderOption functions
//
// Returns:
//   - Graph: the new graph
func NewGraph(options ...GraphBuilderOption) Graph {
	g := &graphImpl{
		mu: &sync.RWMutex{},
	}
	for _, opt := range options {
		opt(g)
	}
	if g.root == nil {
		g.root = newNode(g.name, NodeKindGroup)
	}
	g.UpdateWorldMatrices()
	return g
}

func (g *graphImpl) Name() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.name
}

func (g *graphImpl) Root() Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.root
}

func (g *graphImpl) Traverse(visit func(Node)) {
	g.mu.RLock()
	root := g.root
	g.mu.RUnlock()
	traverse(root, visit)
}

func traverse(n Node, visit func(Node)) {
	visit(n)
	for _, c := range n.Children() {
		traverse(c, visit)
	}
}

func (g *graphImpl) Meshes() []Node {
	var out []Node
	g.Traverse(func(n Node) {
		if n.Kind() == NodeKindMesh {
			out = append(out, n)
		}
	})
	return out
}

func (g *graphImpl) UpdateWorldMatrices() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.root.updateWorld(nil)
}

func (g *graphImpl) Bounds() (common.Vec3, common.Vec3, bool) {
	min := common.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
	max := common.Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32}
	found := false

	for _, n := range g.Meshes() {
		geo := n.Geometry()
		if geo == nil || len(geo.Positions) == 0 {
			continue
		}
		world := n.WorldMatrix()
		lo, hi := common.TransformAABB(world[:], geo.BoundsMin, geo.BoundsMax)
		for k := 0; k < 3; k++ {
			min[k] = math32.Min(min[k], lo[k])
			max[k] = math32.Max(max[k], hi[k])
		}
		found = true
	}
	return min, max, found
}
