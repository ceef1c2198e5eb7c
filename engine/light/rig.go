package light

import (
	"sync"
)

type rigImpl struct {
	mu     *sync.Mutex
	lights []Light
}

// Rig is the ordered set of lights a model is shaded with.
type Rig interface {
	// Lights returns the lights in insertion order.
	//
	// Returns:
	//   - []Light: a copy of the light list
	Lights() []Light

	// Ambient returns the summed color × intensity of every enabled ambient light.
	//
	// Returns:
	//   - [3]float32: the ambient term
	Ambient() [3]float32

	// Add appends lights to the rig.
	//
	// Parameters:
	//   - lights: the lights to add
	Add(lights ...Light)
}

var _ Rig = &rigImpl{}

// NewRig creates a rig holding the given lights.
func NewRig(lights ...Light) Rig {
	return &rigImpl{
		mu:     &sync.Mutex{},
		lights: append([]Light(nil), lights...),
	}
}

// DefaultRig returns the lighting every house model is shown with: a soft ambient
// fill, a key and a fill directional light, and two weak point lights at opposite
// corners.
//
// Returns:
//   - Rig: a new rig with the default lights
func DefaultRig() Rig {
	return NewRig(
		NewLight(LightTypeAmbient, WithIntensity(0.6)),
		NewLight(LightTypeDirectional, WithPosition(5, 10, 5), WithIntensity(0.8)),
		NewLight(LightTypeDirectional, WithPosition(-5, 10, -5), WithIntensity(0.4)),
		NewLight(LightTypePoint, WithPosition(10, 10, 10), WithIntensity(0.3)),
		NewLight(LightTypePoint, WithPosition(-10, 10, -10), WithIntensity(0.3)),
	)
}

func (r *rigImpl) Lights() []Light {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Light(nil), r.lights...)
}

func (r *rigImpl) Ambient() [3]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out [3]float32
	for _, l := range r.lights {
		if l.Type() != LightTypeAmbient || !l.Enabled() {
			continue
		}
		c, i := l.Color(), l.Intensity()
		out[0] += c[0] * i
		out[1] += c[1] * i
		out[2] += c[2] * i
	}
	return out
}

func (r *rigImpl) Add(lights ...Light) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lights = append(r.lights, lights...)
}
