package demo

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/common"
)

// Action is a change requested by the debug panel or a hotkey. Actions are queued with App.Enqueue and applied in
// order at the start of the next frame.
type Action interface {
	apply(a *App, st *State) error
}

// ActionPose returns every bone, the target included, to the bind pose.
type ActionPose struct{}

// ActionSolve runs one solver update regardless of AutoUpdate.
type ActionSolve struct{}

// ActionSetTarget moves the target bone. Each axis is clamped to its slider range.
type ActionSetTarget struct {
	X, Y, Z float32
}

// ActionSetWireframe switches between edge and filled rendering.
type ActionSetWireframe struct {
	Value bool
}

// ActionSetAutoUpdate enables or disables the per-frame solver update.
type ActionSetAutoUpdate struct {
	Value bool
}

// ActionToggleWireframe flips State.Wireframe.
type ActionToggleWireframe struct{}

// ActionToggleAutoUpdate flips State.AutoUpdate.
type ActionToggleAutoUpdate struct{}

// ActionExport writes the rig as binary glTF. An empty Path uses the app's export path.
type ActionExport struct {
	Path string
}

func (ActionPose) apply(a *App, st *State) error {
	if err := a.skeleton.Pose(); err != nil {
		return fmt.Errorf("pose: %w", err)
	}
	st.Target.Position = a.skeleton.Bone(a.skeleton.Layout().Target).Position
	return nil
}

func (ActionSolve) apply(a *App, _ *State) error {
	a.solve()
	return nil
}

func (act ActionSetTarget) apply(a *App, st *State) error {
	p := st.Target.Clamp(mgl32.Vec3{act.X, act.Y, act.Z})
	a.skeleton.Bone(a.skeleton.Layout().Target).Position = p
	a.skeleton.UpdateWorldMatrices()
	st.Target.Position = p
	return nil
}

func (act ActionSetWireframe) apply(_ *App, st *State) error {
	st.Wireframe = act.Value
	return nil
}

func (act ActionSetAutoUpdate) apply(_ *App, st *State) error {
	st.AutoUpdate = act.Value
	return nil
}

func (ActionToggleWireframe) apply(_ *App, st *State) error {
	st.Wireframe = !st.Wireframe
	return nil
}

func (ActionToggleAutoUpdate) apply(_ *App, st *State) error {
	st.AutoUpdate = !st.AutoUpdate
	return nil
}

func (act ActionExport) apply(a *App, _ *State) error {
	path := common.Coalesce(act.Path, a.exportPath)
	rig := Rig{Skeleton: a.skeleton, Geometry: a.geometry, Influences: a.influences}
	if err := rig.Export(path); err != nil {
		return err
	}
	log.Printf("[Demo] exported rig to %s", path)
	return nil
}

// HotkeyAction maps a key press to its action: P rest pose, Space solve once, U toggle auto-update,
// F toggle wireframe, X export.
//
// Parameters:
//   - keyCode: GLFW key code
//
// Returns:
//   - Action: the action
//   - bool: false when the key has no binding
func HotkeyAction(keyCode uint32) (Action, bool) {
	switch keyCode {
	case common.KeyP:
		return ActionPose{}, true
	case common.KeySpace:
		return ActionSolve{}, true
	case common.KeyU:
		return ActionToggleAutoUpdate{}, true
	case common.KeyF:
		return ActionToggleWireframe{}, true
	case common.KeyX:
		return ActionExport{}, true
	}
	return nil, false
}
