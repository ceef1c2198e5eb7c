package renderer

import (
	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/camera"
	"github.com/Carmen-Shannon/paint-house/engine/light"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
)

// drawItem is one mesh node as seen at frame-build time.
type drawItem struct {
	geometry *scene.Geometry
	world    common.Mat4
	// shades is indexed by material slot; hidden slots hold ok=false.
	shades []Shade
	ok     []bool
}

// shadeFor returns the shade for triangle t, falling back to slot 0 when the
// geometry's groups point past the descriptor list.
func (d *drawItem) shadeFor(t int) (Shade, bool) {
	slot := d.geometry.SlotForTriangle(t)
	if slot < 0 || slot >= len(d.shades) {
		slot = 0
	}
	return d.shades[slot], d.ok[slot]
}

// frame is everything a backend needs to draw one image. It holds copies, so
// a backend can read it without locking the scene.
type frame struct {
	width, height int
	viewProj      common.Mat4
	eye           common.Vec3
	clear         [3]float32
	lighting      Lighting
	rig           light.Rig
	items         []drawItem
}

// buildFrame snapshots the visible meshes of graph from cam's point of view.
// Meshes whose world bounds fall outside the view frustum are dropped.
func buildFrame(graph scene.Graph, cam camera.Camera, rig light.Rig, width, height int, clear [3]float32) *frame {
	f := &frame{
		width:    width,
		height:   height,
		clear:    clear,
		lighting: NewLighting(rig),
		rig:      rig,
		eye:      cam.Position(),
		viewProj: cam.ViewProjectionMatrix(),
	}
	if graph == nil {
		return f
	}

	graph.UpdateWorldMatrices()
	frustum := common.ExtractFrustumFromMatrix(f.viewProj[:])

	for _, n := range graph.Meshes() {
		geo := n.Geometry()
		descriptors := n.Descriptors()
		if geo == nil || len(descriptors) == 0 || geo.TriangleCount() == 0 {
			continue
		}
		world := n.WorldMatrix()
		bmin, bmax := common.TransformAABB(world[:], geo.BoundsMin, geo.BoundsMax)
		if !frustum.IntersectsAABB(bmin, bmax) {
			continue
		}

		item := drawItem{
			geometry: geo,
			world:    world,
			shades:   make([]Shade, len(descriptors)),
			ok:       make([]bool, len(descriptors)),
		}
		visible := false
		for i, d := range descriptors {
			item.shades[i], item.ok[i] = ShadeFromDescriptor(d)
			visible = visible || item.ok[i]
		}
		if visible {
			f.items = append(f.items, item)
		}
	}
	return f
}
