package paint

import (
	"sort"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/camera"
	"github.com/Carmen-Shannon/paint-house/engine/raycast"
)

// Hit is a resolved pointer target.
type Hit struct {
	Surface  Surface
	Distance float32
	Point    common.Vec3
	// Slot is the material slot of the triangle that was hit.
	Slot int
}

// ResolverBuilderOption configures a Resolver.
type ResolverBuilderOption func(*resolverImpl)

// WithPaintingGate makes the resolver report no target while gate returns false.
//
// Parameters:
//   - gate: reports whether painting mode is on
//
// Returns:
//   - ResolverBuilderOption: the option
func WithPaintingGate(gate func() bool) ResolverBuilderOption {
	return func(r *resolverImpl) {
		r.gate = gate
	}
}

type resolverImpl struct {
	gate func() bool
}

// Resolver maps a pointer position to the nearest paintable surface under it.
type Resolver interface {
	// Resolve casts a ray from the camera through the pointer and intersects it with
	// every surface, double-sided. The nearest hit wins; equal distances keep
	// registration order.
	//
	// Parameters:
	//   - px, py: pointer position in the same pixel space as rect
	//   - cam: the camera the frame was drawn with
	//   - rect: the viewport rectangle
	//   - set: the candidate surfaces
	//
	// Returns:
	//   - Hit: the nearest hit
	//   - bool: false when nothing was hit or painting mode is off
	Resolve(px, py float32, cam camera.Camera, rect common.Rect, set SurfaceSet) (Hit, bool)
}

var _ Resolver = &resolverImpl{}

// NewResolver creates a Resolver.
func NewResolver(options ...ResolverBuilderOption) Resolver {
	r := &resolverImpl{}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *resolverImpl) Resolve(px, py float32, cam camera.Camera, rect common.Rect, set SurfaceSet) (Hit, bool) {
	if r.gate != nil && !r.gate() {
		return Hit{}, false
	}
	if cam == nil || set == nil || rect.Width <= 0 || rect.Height <= 0 {
		return Hit{}, false
	}

	ndcX, ndcY := rect.ToNDC(px, py)
	ray := raycast.FromNDC(ndcX, ndcY, cam.Position(), cam.InverseViewProjectionMatrix())

	hits := Intersect(ray, set)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}

// Intersect returns every surface the ray hits, nearest first. Each surface
// contributes at most its nearest triangle.
//
// Parameters:
//   - ray: the pick ray in world space
//   - set: the candidate surfaces
//
// Returns:
//   - []Hit: hits sorted by distance, ties in registration order
func Intersect(ray raycast.Ray, set SurfaceSet) []Hit {
	var hits []Hit
	for _, s := range set.Surfaces() {
		if hit, ok := intersectSurface(ray, s); ok {
			hits = append(hits, hit)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

func intersectSurface(ray raycast.Ray, s Surface) (Hit, bool) {
	geo := s.Node().Geometry()
	if geo == nil || geo.TriangleCount() == 0 {
		return Hit{}, false
	}
	world := s.Node().WorldMatrix()

	min, max := common.TransformAABB(world[:], geo.BoundsMin, geo.BoundsMax)
	if _, ok := ray.IntersectAABB(min, max); !ok {
		return Hit{}, false
	}

	best := Hit{Surface: s, Distance: -1}
	for t := 0; t < geo.TriangleCount(); t++ {
		a, b, c := geo.Triangle(t)
		d, ok := ray.IntersectTriangle(
			common.TransformPoint(world[:], a),
			common.TransformPoint(world[:], b),
			common.TransformPoint(world[:], c),
		)
		if !ok || (best.Distance >= 0 && d >= best.Distance) {
			continue
		}
		best.Distance = d
		best.Slot = geo.SlotForTriangle(t)
	}
	if best.Distance < 0 {
		return Hit{}, false
	}
	best.Point = ray.At(best.Distance)
	return best, true
}
