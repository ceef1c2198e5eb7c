package raycast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/paint-house/common"
)

func TestIntersectTriangleBothFaces(t *testing.T) {
	a, b, c := common.Vec3{-1, -1, 0}, common.Vec3{1, -1, 0}, common.Vec3{0, 1, 0}

	front := NewRay(common.Vec3{0, 0, 5}, common.Vec3{0, 0, 0})
	dist, ok := front.IntersectTriangle(a, b, c)
	assert.True(t, ok)
	assert.InDelta(t, 5, dist, 1e-5)

	back := NewRay(common.Vec3{0, 0, -3}, common.Vec3{0, 0, 0})
	dist, ok = back.IntersectTriangle(a, b, c)
	assert.True(t, ok, "back faces are hit too")
	assert.InDelta(t, 3, dist, 1e-5)
}

func TestIntersectTriangleMisses(t *testing.T) {
	a, b, c := common.Vec3{-1, -1, 0}, common.Vec3{1, -1, 0}, common.Vec3{0, 1, 0}

	tests := []struct {
		name string
		ray  Ray
	}{
		{"outside edge", NewRay(common.Vec3{2, 2, 5}, common.Vec3{2, 2, 0})},
		{"parallel", NewRay(common.Vec3{0, 0, 1}, common.Vec3{1, 0, 1})},
		{"behind origin", NewRay(common.Vec3{0, 0, 5}, common.Vec3{0, 0, 10})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.ray.IntersectTriangle(a, b, c)
			assert.False(t, ok)
		})
	}
}

func TestIntersectAABB(t *testing.T) {
	min, max := common.Vec3{-1, -1, -1}, common.Vec3{1, 1, 1}

	dist, ok := NewRay(common.Vec3{0, 0, 5}, common.Vec3{}).IntersectAABB(min, max)
	assert.True(t, ok)
	assert.InDelta(t, 4, dist, 1e-5)

	dist, ok = NewRay(common.Vec3{}, common.Vec3{0, 0, 1}).IntersectAABB(min, max)
	assert.True(t, ok, "origin inside the box")
	assert.Equal(t, float32(0), dist)

	_, ok = NewRay(common.Vec3{3, 0, 5}, common.Vec3{3, 0, 0}).IntersectAABB(min, max)
	assert.False(t, ok)

	_, ok = NewRay(common.Vec3{0, 0, 5}, common.Vec3{0, 0, 10}).IntersectAABB(min, max)
	assert.False(t, ok, "box behind the ray")
}

func TestFromNDCCentre(t *testing.T) {
	eye := common.Vec3{0, 2, 5}
	var view, proj, vp, inv common.Mat4
	common.LookAt(view[:], eye, common.Vec3{}, common.Vec3{0, 1, 0})
	common.Perspective(proj[:], 50*3.14159265/180, 1, 0.1, 100)
	common.Mul4(vp[:], proj[:], view[:])
	common.Invert4(inv[:], vp[:])

	r := FromNDC(0, 0, eye, inv)
	want := common.Normalize(common.Sub(common.Vec3{}, eye))
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], r.Direction[i], 1e-4)
	}
	p := r.At(common.Length(eye))
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, p[i], 1e-3)
	}
}
