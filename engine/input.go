package engine

import (
	"sync"

	"github.com/mo-kasiri/Three-IK/engine/camera"
	"github.com/mo-kasiri/Three-IK/engine/scene"
	"github.com/mo-kasiri/Three-IK/engine/window"
)

// inputRouter feeds window pointer events to the orbit controllers of the active scenes and key presses to a
// handler. Left drag rotates, right or middle drag pans, the wheel zooms.
type inputRouter struct {
	mu     *sync.Mutex
	drag   window.DragTracker
	scenes func() []scene.Scene
	onKey  func(keyCode uint32)
}

func newInputRouter(scenes func() []scene.Scene, onKey func(keyCode uint32)) *inputRouter {
	return &inputRouter{mu: &sync.Mutex{}, scenes: scenes, onKey: onKey}
}

func (in *inputRouter) controllers() []camera.OrbitController {
	var ctrls []camera.OrbitController
	for _, s := range in.scenes() {
		if cam := s.Camera(); cam != nil {
			if ctrl := cam.Controller(); ctrl != nil {
				ctrls = append(ctrls, ctrl)
			}
		}
	}
	return ctrls
}

func (in *inputRouter) button(button int, pressed bool, x, y float32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.drag.Button(button, pressed, x, y)
}

func (in *inputRouter) move(x, y float32) {
	in.mu.Lock()
	mode, dx, dy := in.drag.Move(x, y)
	in.mu.Unlock()

	if mode == window.DragNone || (dx == 0 && dy == 0) {
		return
	}
	for _, ctrl := range in.controllers() {
		switch mode {
		case window.DragRotate:
			ctrl.Rotate(dx, dy)
		case window.DragPan:
			ctrl.Pan(dx, dy)
		}
	}
}

func (in *inputRouter) scroll(delta float32) {
	for _, ctrl := range in.controllers() {
		ctrl.Zoom(delta)
	}
}

func (in *inputRouter) key(keyCode uint32) {
	if in.onKey != nil {
		in.onKey(keyCode)
	}
}
