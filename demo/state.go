package demo

import (
	"github.com/go-gl/mathgl/mgl32"
)

// targetDelta is the half-width of the x and z slider ranges around the target's initial position.
const targetDelta = 20

// TargetControl is the slider state of the IK target bone: its local position and the range each axis may take.
type TargetControl struct {
	Position mgl32.Vec3
	Min      mgl32.Vec3
	Max      mgl32.Vec3
}

// newTargetControl derives the slider ranges from the target's initial local position: x and z move by
// targetDelta either way, y spans [-y0, y0].
func newTargetControl(p mgl32.Vec3) TargetControl {
	tc := TargetControl{
		Position: p,
		Min:      mgl32.Vec3{p.X() - targetDelta, -p.Y(), p.Z() - targetDelta},
		Max:      mgl32.Vec3{p.X() + targetDelta, p.Y(), p.Z() + targetDelta},
	}
	if tc.Min.Y() > tc.Max.Y() {
		tc.Min[1], tc.Max[1] = tc.Max[1], tc.Min[1]
	}
	return tc
}

// Clamp limits p to the slider ranges.
func (tc TargetControl) Clamp(p mgl32.Vec3) mgl32.Vec3 {
	for i := range 3 {
		p[i] = mgl32.Clamp(p[i], tc.Min[i], tc.Max[i])
	}
	return p
}

// State is the mutable demo state read by the frame callback. It is owned by the caller of App.Frame and only
// changed on the frame goroutine, by Frame applying queued actions.
type State struct {
	// AutoUpdate runs one solver update per frame.
	AutoUpdate bool
	// Wireframe draws every mesh as its edges.
	Wireframe bool
	Target    TargetControl
}

// Snapshot is the JSON view of the demo published to the debug panel.
type Snapshot struct {
	AutoUpdate    bool       `json:"autoUpdate"`
	Wireframe     bool       `json:"wireframe"`
	Target        [3]float32 `json:"target"`
	TargetMin     [3]float32 `json:"targetMin"`
	TargetMax     [3]float32 `json:"targetMax"`
	Effector      [3]float32 `json:"effector"`
	Distance      float32    `json:"distance"`
	SegmentHeight float32    `json:"segmentHeight"`
	SegmentCount  int        `json:"segmentCount"`
	BoneCount     int        `json:"boneCount"`
}
