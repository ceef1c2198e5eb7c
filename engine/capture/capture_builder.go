package capture

import (
	"github.com/Carmen-Shannon/paint-house/engine/camera"
	"github.com/Carmen-Shannon/paint-house/engine/export"
)

// EngineBuilderOption is a functional option for configuring a capture Engine.
type EngineBuilderOption func(*engineImpl)

// WithSinkFactory sets how the document sink is created. The factory is called once
// per capture, after every view has been read back.
//
// Parameters:
//   - factory: the sink factory
//
// Returns:
//   - EngineBuilderOption: a function that applies the factory to an engine
func WithSinkFactory(factory export.Factory) EngineBuilderOption {
	return func(e *engineImpl) {
		e.factory = factory
	}
}

// WithPoses replaces the capture viewpoints. Capture refuses poses that fail
// camera.ValidateCapturePoses.
//
// Parameters:
//   - poses: viewpoints in capture order
//
// Returns:
//   - EngineBuilderOption: a function that applies the poses to an engine
func WithPoses(poses ...camera.Pose) EngineBuilderOption {
	return func(e *engineImpl) {
		e.poses = poses
	}
}

// WithLayout sets the page layout. A non-positive image size, column count or line
// height and an empty heading fall back to DefaultLayout.
func WithLayout(l Layout) EngineBuilderOption {
	return func(e *engineImpl) {
		e.layout = l
	}
}

// WithObserver registers a callback invoked on every state transition.
func WithObserver(observer func(Step)) EngineBuilderOption {
	return func(e *engineImpl) {
		e.observer = observer
	}
}
