package viewer

import (
	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/capture"
)

// ViewerBuilderOption is a functional option for configuring a Viewer.
type ViewerBuilderOption func(*viewerImpl)

// WithCameraPosition sets the initial eye position. The camera looks at the origin.
//
// Parameters:
//   - eye: the world-space camera position
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithCameraPosition(eye common.Vec3) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.eye = eye
	}
}

// WithFov sets the vertical field of view in degrees.
//
// Parameters:
//   - degrees: field of view, ignored unless in (0, 180)
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithFov(degrees float32) ViewerBuilderOption {
	return func(v *viewerImpl) {
		if degrees > 0 && degrees < 180 {
			v.fovDegrees = degrees
		}
	}
}

// WithDamping sets the orbit damping factor.
func WithDamping(damping float32) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.damping = damping
	}
}

// WithCaptureOptions forwards options to the viewer's capture engine.
//
// Parameters:
//   - options: capture engine options, e.g. the sink factory or layout
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithCaptureOptions(options ...capture.EngineBuilderOption) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.captureOptions = append(v.captureOptions, options...)
	}
}

// WithOwnedRenderer makes Close release the renderer.
func WithOwnedRenderer() ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.ownsRenderer = true
	}
}
