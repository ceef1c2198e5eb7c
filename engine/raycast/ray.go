// Package raycast provides ray construction from screen coordinates and the
// intersection tests used to pick paintable surfaces.
package raycast

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/paint-house/common"
)

// epsilon rejects rays parallel to a triangle's plane and hits behind the origin.
const epsilon = 1e-7

// Ray is a half-line with a unit-length direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// NewRay builds a ray from an origin toward a point.
//
// Parameters:
//   - origin: ray start
//   - through: any point the ray passes through
//
// Returns:
//   - Ray: the ray, with a zero direction when both points coincide
func NewRay(origin, through common.Vec3) Ray {
	o := mgl32.Vec3(origin)
	d := mgl32.Vec3(through).Sub(o)
	if d.Len() == 0 {
		return Ray{Origin: o}
	}
	return Ray{Origin: o, Direction: d.Normalize()}
}

// FromNDC casts a ray from the camera eye through a point given in normalized device
// coordinates. The point is un-projected on the far plane (depth 1 in a [0,1] depth
// range) with the inverse view-projection matrix.
//
// Parameters:
//   - ndcX, ndcY: normalized device coordinates in [-1, 1]
//   - eye: the camera position
//   - invViewProj: inverse of the camera's view-projection matrix
//
// Returns:
//   - Ray: the pick ray
func FromNDC(ndcX, ndcY float32, eye common.Vec3, invViewProj common.Mat4) Ray {
	far := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, 1}, mgl32.Mat4(invViewProj))
	return NewRay(eye, common.Vec3(far))
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) common.Vec3 {
	return common.Vec3(r.Origin.Add(r.Direction.Mul(t)))
}

// IntersectAABB tests the ray against an axis-aligned box with the slab method.
//
// Parameters:
//   - min, max: box corners
//
// Returns:
//   - float32: distance to the entry point, 0 when the origin is inside
//   - bool: true if the ray hits the box in front of its origin
func (r Ray) IntersectAABB(min, max common.Vec3) (float32, bool) {
	tNear := float32(0)
	tFar := float32(3.4e38)
	for axis := 0; axis < 3; axis++ {
		o, d := r.Origin[axis], r.Direction[axis]
		if d > -epsilon && d < epsilon {
			if o < min[axis] || o > max[axis] {
				return 0, false
			}
			continue
		}
		inv := 1 / d
		t1 := (min[axis] - o) * inv
		t2 := (max[axis] - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tNear {
			tNear = t1
		}
		if t2 < tFar {
			tFar = t2
		}
		if tNear > tFar {
			return 0, false
		}
	}
	return tNear, true
}

// IntersectTriangle runs a Möller–Trumbore test that accepts hits on either face.
//
// Parameters:
//   - a, b, c: triangle vertices in the same space as the ray
//
// Returns:
//   - float32: distance along the ray to the hit
//   - bool: true on a hit in front of the origin
func (r Ray) IntersectTriangle(a, b, c common.Vec3) (float32, bool) {
	va := mgl32.Vec3(a)
	edge1 := mgl32.Vec3(b).Sub(va)
	edge2 := mgl32.Vec3(c).Sub(va)

	p := r.Direction.Cross(edge2)
	det := edge1.Dot(p)
	if det > -epsilon && det < epsilon {
		return 0, false
	}
	invDet := 1 / det

	s := r.Origin.Sub(va)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(edge1)
	v := r.Direction.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := edge2.Dot(q) * invDet
	if t <= epsilon {
		return 0, false
	}
	return t, true
}
