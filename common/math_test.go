package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvert4RoundTrip(t *testing.T) {
	var proj, view, vp, inv, out Mat4
	Perspective(proj[:], 0.8, 1.5, 0.1, 100)
	LookAt(view[:], Vec3{1, 2, 5}, Vec3{}, Vec3{0, 1, 0})
	Mul4(vp[:], proj[:], view[:])

	require.True(t, Invert4(inv[:], vp[:]))
	Mul4(out[:], vp[:], inv[:])

	id := IdentityMat4()
	for i := range out {
		assert.InDelta(t, id[i], out[i], 1e-4, "element %d", i)
	}
}

func TestInvert4Singular(t *testing.T) {
	var zero, out Mat4
	assert.False(t, Invert4(out[:], zero[:]))
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	var view Mat4
	eye := Vec3{0, 2, 5}
	LookAt(view[:], eye, Vec3{}, Vec3{0, 1, 0})

	p := TransformPoint(view[:], eye)
	assert.InDelta(t, 0, p[0], 1e-5)
	assert.InDelta(t, 0, p[1], 1e-5)
	assert.InDelta(t, 0, p[2], 1e-5)

	// the target sits straight ahead on -Z
	target := TransformPoint(view[:], Vec3{})
	assert.InDelta(t, 0, target[0], 1e-5)
	assert.InDelta(t, 0, target[1], 1e-5)
	assert.Less(t, target[2], float32(0))
}

func TestComposeTRS(t *testing.T) {
	var m Mat4
	// 90 degrees around Y
	s := float32(0.70710677)
	ComposeTRS(m[:], Vec3{1, 0, 0}, [4]float32{0, s, 0, s}, Vec3{2, 2, 2})

	p := TransformPoint(m[:], Vec3{1, 0, 0})
	assert.InDelta(t, 1, p[0], 1e-5)
	assert.InDelta(t, 0, p[1], 1e-5)
	assert.InDelta(t, -2, p[2], 1e-5)
}

func TestTransformAABB(t *testing.T) {
	var m Mat4
	ComposeTRS(m[:], Vec3{0, 5, 0}, [4]float32{0, 0, 0, 1}, Vec3{1, 1, 1})
	min, max := TransformAABB(m[:], Vec3{-1, -1, -1}, Vec3{1, 1, 1})
	assert.Equal(t, Vec3{-1, 4, -1}, min)
	assert.Equal(t, Vec3{1, 6, 1}, max)
}

func TestFrustumIntersectsAABB(t *testing.T) {
	var proj, view, vp Mat4
	Perspective(proj[:], 0.9, 1, 0.1, 50)
	LookAt(view[:], Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})
	Mul4(vp[:], proj[:], view[:])
	f := ExtractFrustumFromMatrix(vp[:])

	assert.True(t, f.IntersectsAABB(Vec3{-1, -1, -1}, Vec3{1, 1, 1}))
	assert.False(t, f.IntersectsAABB(Vec3{-1, -1, 10}, Vec3{1, 1, 12}), "behind the camera")
	assert.False(t, f.IntersectsAABB(Vec3{40, -1, -1}, Vec3{42, 1, 1}), "far to the right")
}

func TestRectToNDC(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Width: 200, Height: 100}

	x, y := r.ToNDC(110, 70)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	x, y = r.ToNDC(10, 20)
	assert.InDelta(t, -1, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6)

	x, y = r.ToNDC(210, 120)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, -1, y, 1e-6)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}
