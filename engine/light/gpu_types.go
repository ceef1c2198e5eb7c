package light

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// MaxGPULights is the size of the fixed light array in the shading uniform.
// Ambient lights are folded into the header and do not take a slot.
const MaxGPULights = 8

// GPULight is the GPU-aligned representation of a single light source.
// Matches the WGSL Light struct in the paint shader.
// Size: 48 bytes (WGSL uniform aligned).
type GPULight struct {
	Position  [3]float32 // offset  0: world-space position
	LightType uint32     // offset 12: 1 = directional, 2 = point
	Color     [3]float32 // offset 16: RGB color
	Intensity float32    // offset 28: scalar multiplier
	Direction [3]float32 // offset 32: normalized travel direction (directional only)
	Range     float32    // offset 44: point light cutoff, 0 = unlimited
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 48)
	putVec3(buf[0:12], g.Position)
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	putVec3(buf[16:28], g.Color)
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Intensity))
	putVec3(buf[32:44], g.Direction)
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.Range))
	return buf
}

// GPULightHeader is the header at the start of the light uniform.
// Size: 16 bytes (vec3 + u32).
type GPULightHeader struct {
	AmbientColor [3]float32 // offset 0: summed ambient RGB
	LightCount   uint32     // offset 12: number of valid entries in the light array
}

// Size returns the size of the GPULightHeader struct in bytes.
func (h *GPULightHeader) Size() int {
	return int(unsafe.Sizeof(*h))
}

// Marshal serializes the header into a 16-byte buffer.
func (h *GPULightHeader) Marshal() []byte {
	buf := make([]byte, 16)
	putVec3(buf[0:12], h.AmbientColor)
	binary.LittleEndian.PutUint32(buf[12:16], h.LightCount)
	return buf
}

// ToGPULight converts a Light into its GPU representation.
//
// Parameters:
//   - l: the Light to convert
//
// Returns:
//   - GPULight: the GPU-aligned representation
func ToGPULight(l Light) GPULight {
	return GPULight{
		Position:  l.Position(),
		LightType: uint32(l.Type()),
		Color:     l.Color(),
		Intensity: l.Intensity(),
		Direction: l.Direction(),
		Range:     l.Range(),
	}
}

// MarshalRig packs a rig into the fixed-size light uniform:
//
//	[GPULightHeader (16 bytes)] [GPULight × MaxGPULights (48 bytes each)]
//
// Disabled lights are skipped and lights beyond MaxGPULights are dropped.
//
// Parameters:
//   - r: the rig to marshal
//
// Returns:
//   - []byte: the uniform buffer contents
func MarshalRig(r Rig) []byte {
	headerSize := (&GPULightHeader{}).Size()
	lightSize := (&GPULight{}).Size()
	buf := make([]byte, headerSize+MaxGPULights*lightSize)

	offset := headerSize
	count := 0
	for _, l := range r.Lights() {
		if l.Type() == LightTypeAmbient || !l.Enabled() {
			continue
		}
		if count >= MaxGPULights {
			break
		}
		gpu := ToGPULight(l)
		copy(buf[offset:offset+lightSize], gpu.Marshal())
		offset += lightSize
		count++
	}

	header := GPULightHeader{AmbientColor: r.Ambient(), LightCount: uint32(count)}
	copy(buf[:headerSize], header.Marshal())
	return buf
}

func putVec3(dst []byte, v [3]float32) {
	binary.LittleEndian.PutUint32(dst[0:4], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(dst[8:12], math.Float32bits(v[2]))
}
