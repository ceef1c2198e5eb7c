package scene

import (
	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/chewxy/math32"
)

// Group is a contiguous range of indices drawn with one descriptor slot of a
// multi-material mesh. Start and Count are measured in indices, not triangles.
type Group struct {
	Start uint32
	Count uint32
	Slot  int
}

// Geometry holds an indexed triangle list in mesh-local space.
type Geometry struct {
	Positions []common.Vec3
	Normals   []common.Vec3
	Indices   []uint32
	Groups    []Group

	// BoundsMin and BoundsMax enclose every position.
	BoundsMin common.Vec3
	BoundsMax common.Vec3
}

// NewGeometry builds a Geometry and fills in whatever the source asset left out:
// sequential indices for non-indexed lists, flat-accumulated normals, and bounds.
//
// Parameters:
//   - positions: vertex positions
//   - normals: vertex normals, or nil to compute them
//   - indices: triangle indices, or nil for a non-indexed triangle list
//   - groups: descriptor slot ranges, or nil for a single-slot mesh
//
// Returns:
//   - *Geometry: the geometry
func NewGeometry(positions, normals []common.Vec3, indices []uint32, groups []Group) *Geometry {
	g := &Geometry{
		Positions: positions,
		Normals:   normals,
		Indices:   indices,
		Groups:    groups,
	}
	if len(g.Indices) == 0 {
		g.Indices = make([]uint32, len(positions))
		for i := range g.Indices {
			g.Indices[i] = uint32(i)
		}
	}
	if len(g.Normals) != len(g.Positions) {
		g.computeNormals()
	}
	g.computeBounds()
	return g
}

// TriangleCount returns the number of whole triangles in the index list.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Triangle returns the three local-space corners of triangle t.
func (g *Geometry) Triangle(t int) (common.Vec3, common.Vec3, common.Vec3) {
	i := t * 3
	return g.Positions[g.Indices[i]], g.Positions[g.Indices[i+1]], g.Positions[g.Indices[i+2]]
}

// SlotForTriangle returns the descriptor slot that draws triangle t. Triangles
// outside every group fall back to slot 0.
func (g *Geometry) SlotForTriangle(t int) int {
	idx := uint32(t * 3)
	for _, gr := range g.Groups {
		if idx >= gr.Start && idx < gr.Start+gr.Count {
			return gr.Slot
		}
	}
	return 0
}

func (g *Geometry) computeNormals() {
	g.Normals = make([]common.Vec3, len(g.Positions))
	for t := 0; t < g.TriangleCount(); t++ {
		i0, i1, i2 := g.Indices[t*3], g.Indices[t*3+1], g.Indices[t*3+2]
		a, b, c := g.Positions[i0], g.Positions[i1], g.Positions[i2]
		// area-weighted face normal
		n := common.Cross(common.Sub(b, a), common.Sub(c, a))
		for _, i := range [3]uint32{i0, i1, i2} {
			g.Normals[i] = common.Add(g.Normals[i], n)
		}
	}
	for i := range g.Normals {
		g.Normals[i] = common.Normalize(g.Normals[i])
	}
}

func (g *Geometry) computeBounds() {
	if len(g.Positions) == 0 {
		return
	}
	g.BoundsMin = common.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
	g.BoundsMax = common.Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32}
	for _, p := range g.Positions {
		for k := 0; k < 3; k++ {
			g.BoundsMin[k] = math32.Min(g.BoundsMin[k], p[k])
			g.BoundsMax[k] = math32.Max(g.BoundsMax[k], p[k])
		}
	}
}

// NewBox returns an axis-aligned box centred on the origin with the given half extents.
// Each face has its own vertices so the normals stay flat.
func NewBox(hx, hy, hz float32) *Geometry {
	type face struct {
		n    common.Vec3
		u, v common.Vec3
	}
	faces := []face{
		{common.Vec3{1, 0, 0}, common.Vec3{0, 0, -1}, common.Vec3{0, 1, 0}},
		{common.Vec3{-1, 0, 0}, common.Vec3{0, 0, 1}, common.Vec3{0, 1, 0}},
		{common.Vec3{0, 1, 0}, common.Vec3{1, 0, 0}, common.Vec3{0, 0, -1}},
		{common.Vec3{0, -1, 0}, common.Vec3{1, 0, 0}, common.Vec3{0, 0, 1}},
		{common.Vec3{0, 0, 1}, common.Vec3{1, 0, 0}, common.Vec3{0, 1, 0}},
		{common.Vec3{0, 0, -1}, common.Vec3{-1, 0, 0}, common.Vec3{0, 1, 0}},
	}
	half := common.Vec3{hx, hy, hz}
	mul := func(a, b common.Vec3) common.Vec3 { return common.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]} }

	var positions, normals []common.Vec3
	var indices []uint32
	for _, f := range faces {
		base := uint32(len(positions))
		c := mul(f.n, half)
		u := mul(f.u, half)
		v := mul(f.v, half)
		positions = append(positions,
			common.Sub(common.Sub(c, u), v),
			common.Sub(common.Add(c, u), v),
			common.Add(common.Add(c, u), v),
			common.Add(common.Sub(c, u), v),
		)
		normals = append(normals, f.n, f.n, f.n, f.n)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewGeometry(positions, normals, indices, nil)
}

// NewQuad returns a single-sided square in the XY plane facing +Z.
func NewQuad(halfSize float32) *Geometry {
	positions := []common.Vec3{
		{-halfSize, -halfSize, 0},
		{halfSize, -halfSize, 0},
		{halfSize, halfSize, 0},
		{-halfSize, halfSize, 0},
	}
	return NewGeometry(positions, nil, []uint32{0, 1, 2, 0, 2, 3}, nil)
}
