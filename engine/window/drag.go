package window

import "github.com/mo-kasiri/Three-IK/common"

// DragMode is what a pointer drag currently controls.
type DragMode int

const (
	DragNone DragMode = iota
	DragRotate
	DragPan
)

// DragTracker turns button and cursor events into per-move drag deltas: the left button rotates, the right or
// middle button pans. Only the first button pressed counts until it is released.
type DragTracker struct {
	mode         DragMode
	button       int
	lastX, lastY float32
}

// Mode returns the active drag mode.
func (d *DragTracker) Mode() DragMode {
	return d.mode
}

// Button records a press or release.
//
// Parameters:
//   - button: the mouse button (common.MouseButton*)
//   - pressed: true on press, false on release
//   - x, y: cursor position
func (d *DragTracker) Button(button int, pressed bool, x, y float32) {
	if !pressed {
		if d.mode != DragNone && button == d.button {
			d.mode = DragNone
		}
		return
	}
	if d.mode != DragNone {
		return
	}
	switch button {
	case common.MouseButtonLeft:
		d.mode = DragRotate
	case common.MouseButtonRight, common.MouseButtonMiddle:
		d.mode = DragPan
	default:
		return
	}
	d.button = button
	d.lastX, d.lastY = x, y
}

// Move records a cursor move.
//
// Parameters:
//   - x, y: cursor position
//
// Returns:
//   - DragMode: the active mode (DragNone when no button is held)
//   - float32: horizontal movement since the last event
//   - float32: vertical movement since the last event
func (d *DragTracker) Move(x, y float32) (DragMode, float32, float32) {
	if d.mode == DragNone {
		return DragNone, 0, 0
	}
	dx, dy := x-d.lastX, y-d.lastY
	d.lastX, d.lastY = x, y
	return d.mode, dx, dy
}
