package material

import (
	"sync"
	"sync/atomic"

	"github.com/jinzhu/copier"
)

// Kind identifies the shading model of a descriptor.
type Kind string

const (
	// KindStandard is a physically based metallic-roughness descriptor.
	KindStandard Kind = "standard"
	// KindBasic is an unlit descriptor that ignores scene lighting.
	KindBasic Kind = "basic"
)

// Side selects which triangle faces are rasterized.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

func (s Side) String() string {
	switch s {
	case BackSide:
		return "back"
	case DoubleSide:
		return "double"
	default:
		return "front"
	}
}

// properties is the copyable state of a descriptor. It holds no locks so it can
// be deep-copied as a unit.
type properties struct {
	Name        string
	Color       [3]float32
	Side        Side
	Opacity     float32
	Transparent bool
	Visible     bool
	Roughness   float32
	Metalness   float32
	Extras      map[string]any
}

type descriptorImpl struct {
	mu      *sync.Mutex
	kind    Kind
	props   properties
	version *atomic.Uint64
}

// Descriptor describes how a surface appears: its color, face culling, opacity and visibility.
// Renderers compare Version against the value they last drew to detect changes.
type Descriptor interface {
	// Name returns the descriptor's name, usually taken from the source asset.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Kind returns the shading model.
	//
	// Returns:
	//   - Kind: KindStandard or KindBasic
	Kind() Kind

	// Color returns the base color as linear [0, 1] RGB.
	//
	// Returns:
	//   - [3]float32: the base color
	Color() [3]float32

	// SetColor copies c into the base color.
	//
	// Parameters:
	//   - c: linear [0, 1] RGB
	SetColor(c [3]float32)

	// Side returns the face culling mode.
	//
	// Returns:
	//   - Side: the rasterized faces
	Side() Side

	// SetSide sets the face culling mode.
	//
	// Parameters:
	//   - s: the faces to rasterize
	SetSide(s Side)

	// Opacity returns the opacity in [0, 1].
	//
	// Returns:
	//   - float32: the opacity
	Opacity() float32

	// SetOpacity sets the opacity.
	//
	// Parameters:
	//   - o: opacity in [0, 1]
	SetOpacity(o float32)

	// Transparent reports whether the descriptor is alpha blended.
	//
	// Returns:
	//   - bool: true if blended
	Transparent() bool

	// SetTransparent toggles alpha blending.
	//
	// Parameters:
	//   - t: the blending flag
	SetTransparent(t bool)

	// Visible reports whether surfaces using this descriptor are drawn at all.
	//
	// Returns:
	//   - bool: true if drawn
	Visible() bool

	// SetVisible toggles drawing.
	//
	// Parameters:
	//   - v: the visibility flag
	SetVisible(v bool)

	// Extras returns a copy of the free-form asset metadata attached to the descriptor.
	//
	// Returns:
	//   - map[string]any: the metadata copy
	Extras() map[string]any

	// SetExtra stores one metadata value.
	//
	// Parameters:
	//   - key: metadata key
	//   - value: metadata value
	SetExtra(key string, value any)

	// Version returns the change counter. It increases on every MarkDirty.
	//
	// Returns:
	//   - uint64: the current version
	Version() uint64

	// MarkDirty flags the descriptor for re-render.
	MarkDirty()

	// Clone returns an independent descriptor of the same kind. No mutable state,
	// including the color and the extras map, is shared with the source.
	//
	// Returns:
	//   - Descriptor: the clone
	Clone() Descriptor
}

// Standard is a Descriptor with metallic-roughness shading parameters.
type Standard interface {
	Descriptor

	// Roughness returns the microfacet roughness in [0, 1].
	//
	// Returns:
	//   - float32: the roughness
	Roughness() float32

	// SetRoughness sets the roughness.
	//
	// Parameters:
	//   - r: roughness in [0, 1]
	SetRoughness(r float32)

	// Metalness returns the metalness in [0, 1].
	//
	// Returns:
	//   - float32: the metalness
	Metalness() float32

	// SetMetalness sets the metalness.
	//
	// Parameters:
	//   - m: metalness in [0, 1]
	SetMetalness(m float32)
}

type standardImpl struct {
	*descriptorImpl
}

type basicImpl struct {
	*descriptorImpl
}

var _ Standard = &standardImpl{}
var _ Descriptor = &basicImpl{}

// NewStandard creates a metallic-roughness descriptor.
// Defaults: white, roughness 1, metalness 0, opaque, visible, front-side.
//
// Parameters:
//   - options: variadic list of DescriptorBuilderOption functions
//
// Returns:
//   - Standard: the new descriptor
func NewStandard(options ...DescriptorBuilderOption) Standard {
	d := newDescriptor(KindStandard)
	d.props.Roughness = 1
	for _, opt := range options {
		opt(d)
	}
	return &standardImpl{descriptorImpl: d}
}

// NewBasic creates an unlit descriptor.
// Defaults: white, opaque, visible, front-side.
//
// Parameters:
//   - options: variadic list of DescriptorBuilderOption functions
//
// Returns:
//   - Descriptor: the new descriptor
func NewBasic(options ...DescriptorBuilderOption) Descriptor {
	d := newDescriptor(KindBasic)
	for _, opt := range options {
		opt(d)
	}
	return &basicImpl{descriptorImpl: d}
}

func newDescriptor(kind Kind) *descriptorImpl {
	return &descriptorImpl{
		mu:      &sync.Mutex{},
		kind:    kind,
		version: &atomic.Uint64{},
		props: properties{
			Color:   [3]float32{1, 1, 1},
			Opacity: 1,
			Visible: true,
			Extras:  map[string]any{},
		},
	}
}

// --- shared accessors ---

func (d *descriptorImpl) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.props.Name
}

func (d *descriptorImpl) Kind() Kind {
	return d.kind
}

func (d *descriptorImpl) Color() [3]float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.props.Color
}

func (d *descriptorImpl) SetColor(c [3]float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.props.Color = c
}

func (d *descriptorImpl) Side() Side {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.props.Side
}

func (d *descriptorImpl) SetSide(s Side) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.props.Side = s
}

func (d *descriptorImpl) Opacity() float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.props.Opacity
}

func (d *descriptorImpl) SetOpacity(o float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.props.Opacity = o
}

func (d *descriptorImpl) Transparent() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.props.Transparent
}

func (d *descriptorImpl) SetTransparent(t bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.props.Transparent = t
}

func (d *descriptorImpl) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.props.Visible
}

func (d *descriptorImpl) SetVisible(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.props.Visible = v
}

func (d *descriptorImpl) Extras() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]any, len(d.props.Extras))
	for k, v := range d.props.Extras {
		out[k] = v
	}
	return out
}

func (d *descriptorImpl) SetExtra(key string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.props.Extras == nil {
		d.props.Extras = map[string]any{}
	}
	d.props.Extras[key] = value
}

func (d *descriptorImpl) Version() uint64 {
	return d.version.Load()
}

func (d *descriptorImpl) MarkDirty() {
	d.version.Add(1)
}

// cloneBase deep-copies the properties into a fresh descriptor with its own lock and version.
func (d *descriptorImpl) cloneBase() *descriptorImpl {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := newDescriptor(d.kind)
	if err := copier.CopyWithOption(&out.props, &d.props, copier.Option{DeepCopy: true}); err != nil {
		out.props = d.props
		out.props.Extras = make(map[string]any, len(d.props.Extras))
		for k, v := range d.props.Extras {
			out.props.Extras[k] = v
		}
	}
	out.version.Store(d.version.Load())
	return out
}

// --- standard ---

func (s *standardImpl) Roughness() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.props.Roughness
}

func (s *standardImpl) SetRoughness(r float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props.Roughness = r
}

func (s *standardImpl) Metalness() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.props.Metalness
}

func (s *standardImpl) SetMetalness(m float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props.Metalness = m
}

func (s *standardImpl) Clone() Descriptor {
	return &standardImpl{descriptorImpl: s.cloneBase()}
}

// --- basic ---

func (b *basicImpl) Clone() Descriptor {
	return &basicImpl{descriptorImpl: b.cloneBase()}
}
