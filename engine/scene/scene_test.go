package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/material"
)

func buildHouse() Graph {
	wall := NewMesh("wall", NewBox(1, 1, 0.1), []material.Descriptor{material.NewStandard()})
	door := NewMesh("door", NewQuad(0.5), []material.Descriptor{material.NewStandard()}, WithTranslation(0, 0, 0.2))
	roof := NewMesh("roof", NewBox(1, 0.2, 1), []material.Descriptor{material.NewStandard(), material.NewBasic()}, WithTranslation(0, 2, 0))

	front := NewGroup("front", WithChildren(wall, door))
	marker := NewOther("spawn")
	root := NewGroup("house", WithTranslation(0, 1, 0), WithChildren(front, roof, marker))
	return NewGraph(WithName("house.glb"), WithRoot(root))
}

func TestTraversePreOrder(t *testing.T) {
	g := buildHouse()

	var names []string
	g.Traverse(func(n Node) { names = append(names, n.Name()) })
	assert.Equal(t, []string{"house", "front", "wall", "door", "roof", "spawn"}, names)

	var meshes []string
	for _, m := range g.Meshes() {
		meshes = append(meshes, m.Name())
	}
	assert.Equal(t, []string{"wall", "door", "roof"}, meshes)
}

func TestWorldMatricesCompose(t *testing.T) {
	g := buildHouse()

	var roof Node
	g.Traverse(func(n Node) {
		if n.Name() == "roof" {
			roof = n
		}
	})
	require.NotNil(t, roof)

	world := roof.WorldMatrix()
	p := common.TransformPoint(world[:], common.Vec3{})
	assert.InDelta(t, 3, p[1], 1e-6)

	assert.Equal(t, "house", roof.Parent().Name())
	assert.True(t, roof.MultiMaterial())
	assert.Len(t, roof.Descriptors(), 2)
}

func TestBounds(t *testing.T) {
	g := buildHouse()
	min, max, ok := g.Bounds()
	require.True(t, ok)
	assert.InDelta(t, 0, min[1], 1e-6)
	assert.InDelta(t, 3.2, max[1], 1e-6)

	_, _, ok = NewGraph().Bounds()
	assert.False(t, ok)
}

func TestNodeIDsUnique(t *testing.T) {
	a := NewGroup("a")
	b := NewGroup("a")
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestDescriptorsReturnsCopy(t *testing.T) {
	d := material.NewStandard()
	n := NewMesh("m", NewQuad(1), []material.Descriptor{d})
	ds := n.Descriptors()
	ds[0] = nil
	assert.NotNil(t, n.Descriptors()[0])
	assert.False(t, n.MultiMaterial())
}

func TestGeometryDefaults(t *testing.T) {
	g := NewGeometry([]common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, nil, nil, nil)
	assert.Equal(t, []uint32{0, 1, 2}, g.Indices)
	assert.Equal(t, common.Vec3{0, 0, 1}, g.Normals[0])
	assert.Equal(t, common.Vec3{1, 1, 0}, g.BoundsMax)
	assert.Equal(t, 1, g.TriangleCount())
}

func TestSlotForTriangle(t *testing.T) {
	g := NewBox(1, 1, 1)
	g.Groups = []Group{{Start: 0, Count: 18, Slot: 0}, {Start: 18, Count: 18, Slot: 1}}
	assert.Equal(t, 0, g.SlotForTriangle(0))
	assert.Equal(t, 0, g.SlotForTriangle(5))
	assert.Equal(t, 1, g.SlotForTriangle(6))
	assert.Equal(t, 1, g.SlotForTriangle(11))
}
