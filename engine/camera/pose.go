package camera

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/paint-house/common"
)

// ErrInvalidCapturePoses is returned for a capture sequence other than the four
// origin-facing views front, back, left and right.
var ErrInvalidCapturePoses = errors.New("invalid capture poses")

// Pose is a named viewpoint: an eye position looking at a fixed target.
type Pose struct {
	Name     string
	Position common.Vec3
	Target   common.Vec3
}

// Capture pose names, in capture order.
const (
	PoseFront = "front"
	PoseBack  = "back"
	PoseLeft  = "left"
	PoseRight = "right"
)

// CapturePoses returns the four fixed capture viewpoints in capture order. All of them
// look at the origin from a height of 2 units and a distance of 5.
func CapturePoses() []Pose {
	return []Pose{
		{Name: PoseFront, Position: common.Vec3{0, 2, 5}},
		{Name: PoseBack, Position: common.Vec3{0, 2, -5}},
		{Name: PoseLeft, Position: common.Vec3{-5, 2, 0}},
		{Name: PoseRight, Position: common.Vec3{5, 2, 0}},
	}
}

// ValidateCapturePoses checks that poses are the four capture views in capture order,
// each looking at the origin from a distinct, non-vertical eye position. Only the eye
// positions may differ from CapturePoses.
//
// Parameters:
//   - poses: the viewpoints to check
//
// Returns:
//   - error: ErrInvalidCapturePoses wrapping the first problem found
func ValidateCapturePoses(poses []Pose) error {
	want := CapturePoses()
	if len(poses) != len(want) {
		return fmt.Errorf("%w: want %d poses, got %d", ErrInvalidCapturePoses, len(want), len(poses))
	}
	for i, p := range poses {
		if p.Name != want[i].Name {
			return fmt.Errorf("%w: pose %d is %q, want %q", ErrInvalidCapturePoses, i, p.Name, want[i].Name)
		}
		if p.Target != (common.Vec3{}) {
			return fmt.Errorf("%w: %s does not look at the origin", ErrInvalidCapturePoses, p.Name)
		}
		if p.Position[0] == 0 && p.Position[2] == 0 {
			return fmt.Errorf("%w: %s has no horizontal distance from the origin", ErrInvalidCapturePoses, p.Name)
		}
	}
	return nil
}
