package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/paint-house/common"
)

func assertVec(t *testing.T, want, got common.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d", i)
	}
}

func TestControllerDefaultsToHouseView(t *testing.T) {
	cc := NewCameraController()
	assertVec(t, common.Vec3{0, 2, 5}, cc.Position())
	assertVec(t, common.Vec3{}, cc.Target())
	assert.InDelta(t, DefaultDamping, cc.Damping(), 1e-9)
}

func TestLookFromRoundTrips(t *testing.T) {
	cc := NewCameraController()
	for _, p := range CapturePoses() {
		cc.LookFrom(p.Position, p.Target)
		assertVec(t, p.Position, cc.Position())

		// re-deriving from spherical coordinates lands on the same point
		cc.SetAzimuth(cc.Azimuth())
		assertVec(t, p.Position, cc.Position())
	}
}

func TestDragIsDampedAndConverges(t *testing.T) {
	cc := NewCameraController(WithMouseSensitivity(0.01))
	start := cc.Azimuth()

	cc.Drag(-10, 0)
	require.True(t, cc.Update(1.0/60))
	first := cc.Azimuth() - start
	assert.InDelta(t, 0.1*DefaultDamping, first, 1e-5)

	for i := 0; i < 2000; i++ {
		cc.Update(1.0 / 60)
	}
	assert.InDelta(t, 0.1, cc.Azimuth()-start, 1e-3)
	assert.False(t, cc.Update(1.0/60), "momentum is exhausted")
}

func TestDampingIsFrameRateIndependent(t *testing.T) {
	a := NewCameraController()
	b := NewCameraController()
	a.Drag(50, 0)
	b.Drag(50, 0)

	for i := 0; i < 60; i++ {
		a.Update(1.0 / 60)
	}
	for i := 0; i < 30; i++ {
		b.Update(1.0 / 30)
	}
	assert.InDelta(t, a.Azimuth(), b.Azimuth(), 1e-4)
}

func TestZoomAndElevationClamp(t *testing.T) {
	cc := NewCameraController(WithRadiusBounds(2, 10), WithZoomSpeed(1))
	cc.Zoom(100)
	assert.InDelta(t, 2, cc.Radius(), 1e-6)
	cc.Zoom(-100)
	assert.InDelta(t, 10, cc.Radius(), 1e-6)

	cc.SetElevation(10)
	assert.Less(t, cc.Elevation(), float32(1.6))
}

func TestPanMovesTargetAndEye(t *testing.T) {
	cc := NewCameraController(WithPanSpeed(1))
	cc.PanRight(1)
	assertVec(t, common.Vec3{1, 0, 0}, cc.Target())
	assertVec(t, common.Vec3{1, 2, 5}, cc.Position())
}

func TestCameraMatricesFollowPose(t *testing.T) {
	cam := NewCamera(WithController(NewCameraController()), WithAspect(1))
	cam.ApplyPose(Pose{Name: PoseBack, Position: common.Vec3{0, 2, -5}})

	assertVec(t, common.Vec3{0, 2, -5}, cam.Position())

	vp := cam.ViewProjectionMatrix()
	clip := common.TransformVec4(vp[:], [4]float32{0, 0, 0, 1})
	assert.InDelta(t, 0, clip[0]/clip[3], 1e-5, "origin projects to screen centre")
	assert.InDelta(t, 0, clip[1]/clip[3], 1e-5)

	inv := cam.InverseViewProjectionMatrix()
	var id common.Mat4
	common.Mul4(id[:], inv[:], vp[:])
	want := common.IdentityMat4()
	for i := range id {
		assert.InDelta(t, want[i], id[i], 1e-3)
	}

	pose := cam.Pose()
	assertVec(t, common.Vec3{0, 2, -5}, pose.Position)
}

func TestCapturePosesOrder(t *testing.T) {
	poses := CapturePoses()
	require.Len(t, poses, 4)
	names := []string{poses[0].Name, poses[1].Name, poses[2].Name, poses[3].Name}
	assert.Equal(t, []string{PoseFront, PoseBack, PoseLeft, PoseRight}, names)
	assert.Equal(t, common.Vec3{-5, 2, 0}, poses[2].Position)
}

func TestCameraWithoutController(t *testing.T) {
	cam := NewCamera()
	cam.ApplyPose(CapturePoses()[0])
	cam.Update()
	assert.Equal(t, common.Vec3{}, cam.Position())
	assert.Equal(t, common.IdentityMat4(), cam.ViewMatrix())
}

func TestValidateCapturePoses(t *testing.T) {
	require.NoError(t, ValidateCapturePoses(CapturePoses()))

	farther := CapturePoses()
	for i := range farther {
		farther[i].Position = common.Scale(farther[i].Position, 2)
	}
	require.NoError(t, ValidateCapturePoses(farther))

	tests := []struct {
		name string
		edit func([]Pose) []Pose
	}{
		{"single pose", func(p []Pose) []Pose {
			return []Pose{{Name: "top", Position: common.Vec3{0, 9, 0.01}, Target: common.Vec3{3, 0, 0}}}
		}},
		{"none", func(p []Pose) []Pose { return nil }},
		{"five", func(p []Pose) []Pose { return append(p, p[0]) }},
		{"reordered", func(p []Pose) []Pose {
			p[0], p[1] = p[1], p[0]
			return p
		}},
		{"renamed", func(p []Pose) []Pose {
			p[2].Name = "top"
			return p
		}},
		{"off-origin target", func(p []Pose) []Pose {
			p[3].Target = common.Vec3{3, 0, 0}
			return p
		}},
		{"straight down", func(p []Pose) []Pose {
			p[0].Position = common.Vec3{0, 9, 0}
			return p
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCapturePoses(tt.edit(CapturePoses()))
			assert.ErrorIs(t, err, ErrInvalidCapturePoses)
		})
	}
}
