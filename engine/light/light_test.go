package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/paint-house/common"
)

func TestDefaultRig(t *testing.T) {
	rig := DefaultRig()
	lights := rig.Lights()
	require.Len(t, lights, 5)

	assert.Equal(t, LightTypeAmbient, lights[0].Type())
	assert.Equal(t, [3]float32{0.6, 0.6, 0.6}, rig.Ambient())

	assert.Equal(t, LightTypeDirectional, lights[1].Type())
	assert.Equal(t, common.Vec3{5, 10, 5}, lights[1].Position())
	assert.InDelta(t, 0.8, lights[1].Intensity(), 1e-6)
	assert.InDelta(t, 0.4, lights[2].Intensity(), 1e-6)

	for _, l := range lights[3:] {
		assert.Equal(t, LightTypePoint, l.Type())
		assert.InDelta(t, 0.3, l.Intensity(), 1e-6)
	}
}

func TestDirectionalShinesTowardOrigin(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithPosition(0, 10, 0))
	assert.Equal(t, common.Vec3{0, -1, 0}, l.Direction())

	p := NewLight(LightTypePoint, WithPosition(0, 10, 0))
	assert.Equal(t, common.Vec3{}, p.Direction())
}

func TestAmbientSkipsDisabled(t *testing.T) {
	rig := NewRig(
		NewLight(LightTypeAmbient, WithIntensity(0.5), WithColor(1, 0, 0)),
		NewLight(LightTypeAmbient, WithIntensity(0.5), WithEnabled(false)),
	)
	assert.Equal(t, [3]float32{0.5, 0, 0}, rig.Ambient())
}

func TestMarshalRig(t *testing.T) {
	buf := MarshalRig(DefaultRig())
	require.Len(t, buf, 16+MaxGPULights*48)

	assert.InDelta(t, 0.6, math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])), 1e-6)
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(buf[12:16]), "ambient light takes no slot")

	first := buf[16:64]
	assert.Equal(t, uint32(LightTypeDirectional), binary.LittleEndian.Uint32(first[12:16]))
	assert.InDelta(t, 0.8, math.Float32frombits(binary.LittleEndian.Uint32(first[28:32])), 1e-6)
}

func TestMarshalRigCapsLights(t *testing.T) {
	rig := NewRig()
	for i := 0; i < MaxGPULights+3; i++ {
		rig.Add(NewLight(LightTypePoint, WithPosition(float32(i), 0, 0)))
	}
	buf := MarshalRig(rig)
	assert.Equal(t, uint32(MaxGPULights), binary.LittleEndian.Uint32(buf[12:16]))
}
