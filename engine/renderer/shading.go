package renderer

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/light"
	"github.com/Carmen-Shannon/paint-house/engine/material"
)

// dielectricSpecular is the specular reflectance of a fully non-metallic surface.
const dielectricSpecular = 0.04

// Shade is the snapshot of one material slot taken when a frame is built.
type Shade struct {
	Color     [3]float32
	Roughness float32
	Metalness float32
	// Unlit shades skip lighting and output Color as-is.
	Unlit bool
}

// ShadeFromDescriptor snapshots a descriptor. Invisible descriptors report false.
//
// Parameters:
//   - d: the descriptor
//
// Returns:
//   - Shade: the snapshot
//   - bool: false if the descriptor is nil or hidden
func ShadeFromDescriptor(d material.Descriptor) (Shade, bool) {
	if d == nil || !d.Visible() {
		return Shade{}, false
	}
	s := Shade{Color: d.Color(), Roughness: 1}
	switch m := d.(type) {
	case material.Standard:
		s.Roughness = m.Roughness()
		s.Metalness = m.Metalness()
	default:
		s.Unlit = d.Kind() == material.KindBasic
	}
	return s, true
}

type lightSample struct {
	kind       light.LightType
	position   common.Vec3
	toLight    common.Vec3 // directional only
	radiance   [3]float32
	lightRange float32
}

// Lighting is a rig flattened for per-pixel evaluation.
type Lighting struct {
	ambient [3]float32
	lights  []lightSample
}

// NewLighting flattens the enabled lights of a rig. A nil rig yields full white ambient.
//
// Parameters:
//   - rig: the light rig
//
// Returns:
//   - Lighting: the flattened lighting
func NewLighting(rig light.Rig) Lighting {
	if rig == nil {
		return Lighting{ambient: [3]float32{1, 1, 1}}
	}
	lt := Lighting{ambient: rig.Ambient()}
	for _, l := range rig.Lights() {
		if !l.Enabled() || l.Type() == light.LightTypeAmbient {
			continue
		}
		c, i := l.Color(), l.Intensity()
		lt.lights = append(lt.lights, lightSample{
			kind:       l.Type(),
			position:   l.Position(),
			toLight:    common.Scale(l.Direction(), -1),
			radiance:   [3]float32{c[0] * i, c[1] * i, c[2] * i},
			lightRange: l.Range(),
		})
	}
	return lt
}

// ShadePoint evaluates Lambert diffuse plus a Blinn-Phong specular lobe whose exponent
// follows roughness. Metalness moves energy from the diffuse term into a specular
// term tinted by the base color. The normal is flipped toward the eye, so both
// faces light the same way.
//
// Parameters:
//   - s: the material snapshot
//   - p: world-space position
//   - n: world-space normal, not necessarily normalized
//   - eye: world-space camera position
//   - lt: the lighting
//
// Returns:
//   - [3]float32: linear RGB in [0, 1]
func ShadePoint(s Shade, p, n, eye common.Vec3, lt Lighting) [3]float32 {
	if s.Unlit {
		return s.Color
	}

	v := common.Normalize(common.Sub(eye, p))
	n = common.Normalize(n)
	if common.Dot(n, v) < 0 {
		n = common.Scale(n, -1)
	}

	metal := common.Clamp01(s.Metalness)
	rough := math32.Max(common.Clamp01(s.Roughness), 0.05)
	shininess := 2/(rough*rough*rough*rough) - 2
	specWeight := 1 - rough

	var diffuse, specular [3]float32
	for i := 0; i < 3; i++ {
		diffuse[i] = s.Color[i] * (1 - metal)
		specular[i] = dielectricSpecular + (s.Color[i]-dielectricSpecular)*metal
	}

	var out [3]float32
	for i := 0; i < 3; i++ {
		out[i] = lt.ambient[i] * s.Color[i]
	}

	for _, l := range lt.lights {
		var dir common.Vec3
		atten := float32(1)
		switch l.kind {
		case light.LightTypeDirectional:
			dir = l.toLight
		case light.LightTypePoint:
			toLight := common.Sub(l.position, p)
			dist := common.Length(toLight)
			if dist == 0 {
				continue
			}
			dir = common.Scale(toLight, 1/dist)
			if l.lightRange > 0 {
				falloff := common.Clamp01(1 - dist/l.lightRange)
				atten = falloff * falloff
			}
		default:
			continue
		}

		ndl := common.Dot(n, dir)
		if ndl <= 0 || atten == 0 {
			continue
		}
		h := common.Normalize(common.Add(dir, v))
		spec := math32.Pow(math32.Max(common.Dot(n, h), 0), shininess) * specWeight

		for i := 0; i < 3; i++ {
			out[i] += l.radiance[i] * atten * ndl * (diffuse[i] + specular[i]*spec)
		}
	}

	for i := range out {
		out[i] = common.Clamp01(out[i])
	}
	return out
}
