package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/common"
	"github.com/mo-kasiri/Three-IK/engine/camera"
	"github.com/mo-kasiri/Three-IK/engine/game_object"
	"github.com/mo-kasiri/Three-IK/engine/geometry"
	"github.com/mo-kasiri/Three-IK/engine/model"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
	"github.com/mo-kasiri/Three-IK/engine/renderer/material"
	"github.com/mo-kasiri/Three-IK/engine/renderer/renderertest"
	"github.com/mo-kasiri/Three-IK/engine/scene"
)

func newTestScene(t *testing.T, name string) (scene.Scene, *renderertest.Recorder) {
	t.Helper()
	rec := renderertest.NewRecorder()
	if err := rec.RegisterPipelines(renderer.StandardPipelines()...); err != nil {
		t.Fatal(err)
	}
	ctrl := camera.NewOrbitController(camera.WithPosition(mgl32.Vec3{0, 0, 5}))
	s := scene.NewScene(name, camera.NewCamera(camera.WithController(ctrl)), rec)
	obj := game_object.NewGameObject(
		game_object.WithName("Plane"),
		game_object.WithModel(model.NewModel(model.WithName("Plane"), model.WithGeometry(geometry.NewPlane(1, 1)))),
		game_object.WithMaterial(material.NewMaterial()),
	)
	if _, err := s.Add(obj); err != nil {
		t.Fatal(err)
	}
	return s, rec
}

func TestRenderFrameDrawsActiveScenesInOrder(t *testing.T) {
	s, rec := newTestScene(t, "Main")
	overlay := scene.NewScene("Overlay", s.Camera(), rec)
	hidden, _ := newTestScene(t, "Hidden")
	hidden.SetActive(false)

	e := NewEngine(WithScene(0, s), WithScene(1, overlay), WithScene(2, hidden)).(*engine)
	active := e.activeScenes()
	if len(active) != 2 || active[0] != s || active[1] != overlay {
		t.Fatalf("active scenes = %v", active)
	}

	if err := renderFrame(active); err != nil {
		t.Fatalf("renderFrame: %v", err)
	}
	if rec.Frames != 1 {
		t.Errorf("frames = %d, want 1", rec.Frames)
	}
	if len(rec.Draws) != 1 || rec.Draws[0].Mesh != "Plane Fill" {
		t.Errorf("draws = %+v", rec.Draws)
	}
	if len(rec.BufferWrites) != 3 {
		t.Errorf("%d uniform writes, want 2 frames + 1 object", len(rec.BufferWrites))
	}
}

func TestResizeUpdatesRendererAndCamera(t *testing.T) {
	s, rec := newTestScene(t, "Main")
	e := NewEngine(WithScene(0, s))

	e.Resize(1600, 800)
	if rec.Width != 1600 || rec.Height != 800 {
		t.Errorf("surface = %dx%d", rec.Width, rec.Height)
	}
	if got := s.Camera().Aspect(); got != 2 {
		t.Errorf("aspect = %v, want 2", got)
	}

	e.Resize(0, 600)
	if rec.Width != 1600 {
		t.Error("zero-size resize must be ignored")
	}
}

func TestInputDrivesOrbitController(t *testing.T) {
	s, _ := newTestScene(t, "Main")
	e := NewEngine(WithScene(0, s)).(*engine)
	e.Resize(800, 600)
	ctrl := s.Camera().Controller()

	az := ctrl.Azimuth()
	e.input.button(common.MouseButtonLeft, true, 100, 100)
	e.input.move(160, 100)
	e.input.button(common.MouseButtonLeft, false, 160, 100)
	e.input.move(300, 300)
	ctrl.Update()
	if ctrl.Azimuth() == az {
		t.Error("left drag did not rotate")
	}

	r := ctrl.Radius()
	e.input.scroll(1)
	ctrl.Update()
	if ctrl.Radius() >= r {
		t.Errorf("scroll up did not zoom in: %v -> %v", r, ctrl.Radius())
	}
}

func TestKeysAndQuit(t *testing.T) {
	var keys []uint32
	e := NewEngine(WithKeyCallback(func(k uint32) { keys = append(keys, k) })).(*engine)

	e.input.key(common.KeyP)
	e.input.key(common.KeySpace)
	if len(keys) != 2 || keys[0] != common.KeyP {
		t.Errorf("forwarded keys = %v", keys)
	}

	e.input.key(common.KeyEsc)
	select {
	case <-e.quitChannel:
	default:
		t.Fatal("Escape did not quit")
	}
	if len(keys) != 2 {
		t.Error("Escape must not reach the key callback")
	}
	e.Quit()
}
