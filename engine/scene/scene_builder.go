package scene

import (
	"github.com/Carmen-Shannon/paint-house/common"
)

type GraphBuilderOption func(*graphImpl)

// WithName sets the graph's name.
//
// Parameters:
//   - name: the graph name
//
// Returns:
//   - GraphBuilderOption: a function that sets the name
func WithName(name string) GraphBuilderOption {
	return func(g *graphImpl) {
		g.name = name
	}
}

// WithRoot sets the graph's root node. Nodes not created by this package are ignored.
//
// Parameters:
//   - root: the root node
//
// Returns:
//   - GraphBuilderOption: a function that sets the root
func WithRoot(root Node) GraphBuilderOption {
	return func(g *graphImpl) {
		if n, ok := root.(*nodeImpl); ok {
			g.root = n
		}
	}
}

type NodeBuilderOption func(*nodeImpl)

// WithLocalMatrix sets the node's transform relative to its parent.
func WithLocalMatrix(m common.Mat4) NodeBuilderOption {
	return func(n *nodeImpl) {
		n.local = m
	}
}

// WithTRS sets the node's local transform from translation, rotation quaternion (x, y, z, w) and scale.
func WithTRS(t common.Vec3, r [4]float32, s common.Vec3) NodeBuilderOption {
	return func(n *nodeImpl) {
		common.ComposeTRS(n.local[:], t, r, s)
	}
}

// WithTranslation sets the node's local transform to a pure translation.
func WithTranslation(x, y, z float32) NodeBuilderOption {
	return func(n *nodeImpl) {
		common.ComposeTRS(n.local[:], common.Vec3{x, y, z}, [4]float32{0, 0, 0, 1}, common.Vec3{1, 1, 1})
	}
}

// WithMultiMaterial marks a mesh's descriptor list as an array even when it holds a single entry.
func WithMultiMaterial(multi bool) NodeBuilderOption {
	return func(n *nodeImpl) {
		n.multi = multi
	}
}

// WithChildren attaches children to the node in order.
func WithChildren(children ...Node) NodeBuilderOption {
	return func(n *nodeImpl) {
		for _, c := range children {
			n.AddChild(c)
		}
	}
}
