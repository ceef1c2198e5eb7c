package material

type DescriptorBuilderOption func(*descriptorImpl)

// WithName sets the descriptor's name.
//
// Parameters:
//   - name: the descriptor name
//
// Returns:
//   - DescriptorBuilderOption: a function that sets the name
func WithName(name string) DescriptorBuilderOption {
	return func(d *descriptorImpl) {
		d.props.Name = name
	}
}

// WithColor sets the base color as linear [0, 1] RGB.
//
// Parameters:
//   - c: the base color
//
// Returns:
//   - DescriptorBuilderOption: a function that sets the base color
func WithColor(c [3]float32) DescriptorBuilderOption {
	return func(d *descriptorImpl) {
		d.props.Color = c
	}
}

// WithRoughness sets the roughness. Ignored by basic descriptors.
func WithRoughness(r float32) DescriptorBuilderOption {
	return func(d *descriptorImpl) {
		d.props.Roughness = r
	}
}

// WithMetalness sets the metalness. Ignored by basic descriptors.
func WithMetalness(m float32) DescriptorBuilderOption {
	return func(d *descriptorImpl) {
		d.props.Metalness = m
	}
}

// WithSide sets the face culling mode.
func WithSide(s Side) DescriptorBuilderOption {
	return func(d *descriptorImpl) {
		d.props.Side = s
	}
}

// WithOpacity sets the opacity and marks the descriptor transparent when it is below 1.
func WithOpacity(o float32) DescriptorBuilderOption {
	return func(d *descriptorImpl) {
		d.props.Opacity = o
		d.props.Transparent = o < 1
	}
}

// WithExtras copies asset metadata into the descriptor.
func WithExtras(extras map[string]any) DescriptorBuilderOption {
	return func(d *descriptorImpl) {
		for k, v := range extras {
			d.props.Extras[k] = v
		}
	}
}
