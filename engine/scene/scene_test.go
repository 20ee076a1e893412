package scene

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/camera"
	"github.com/mo-kasiri/Three-IK/engine/game_object"
	"github.com/mo-kasiri/Three-IK/engine/geometry"
	"github.com/mo-kasiri/Three-IK/engine/light"
	"github.com/mo-kasiri/Three-IK/engine/model"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
	"github.com/mo-kasiri/Three-IK/engine/renderer/animator"
	"github.com/mo-kasiri/Three-IK/engine/renderer/material"
	"github.com/mo-kasiri/Three-IK/engine/renderer/renderertest"
)

func newTestScene(t *testing.T) (Scene, *renderertest.Recorder) {
	t.Helper()
	rec := renderertest.NewRecorder()
	if err := rec.RegisterPipelines(renderer.StandardPipelines()...); err != nil {
		t.Fatalf("RegisterPipelines: %v", err)
	}
	cam := camera.NewCamera(camera.WithController(camera.NewOrbitController(camera.WithPosition(mgl32.Vec3{1, 1, 2}))))
	return NewScene("Demo", cam, rec), rec
}

func TestSkinnedObjectDrawsWithPalette(t *testing.T) {
	s, rec := newTestScene(t)

	g := geometry.NewPlane(1, 1)
	joints := make([][4]uint16, g.VertexCount())
	weights := make([][4]float32, g.VertexCount())
	for i := range weights {
		weights[i] = [4]float32{1, 0, 0, 0}
	}
	mdl := model.NewModel(model.WithName("Skin"), model.WithGeometry(g), model.WithSkin(joints, weights))
	anim := animator.NewAnimator(animator.BackendTypeGPU, animator.WithModel(mdl), animator.WithBoneCount(2))
	mat := material.NewMaterial(material.WithWireframe(true))
	obj := game_object.NewGameObject(
		game_object.WithName("Skin"),
		game_object.WithModel(mdl),
		game_object.WithMaterial(mat),
		game_object.WithAnimator(anim),
	)
	if _, err := s.Add(obj); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if anim.PaletteProvider() == nil {
		t.Fatal("Add did not initialize the animator")
	}

	if err := anim.Update([]mgl32.Mat4{mgl32.Ident4(), mgl32.Ident4()}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	s.Prepare()
	var palette int
	for _, w := range rec.BufferWrites {
		if w.Provider == anim.PaletteProvider() {
			palette++
		}
	}
	if palette != 1 {
		t.Errorf("%d palette writes in Prepare, want 1", palette)
	}

	if err := s.DrawCalls(); err != nil {
		t.Fatalf("DrawCalls: %v", err)
	}
	want := renderertest.Draw{
		Pipeline:   renderer.PipelineSkinnedWire,
		Mesh:       "Skin Wire",
		BindGroups: []string{"Demo Frame", "Skin Object 1", "Skin Palette"},
		Indexed:    true,
		Count:      len(g.WireIndices()),
	}
	if len(rec.Draws) != 1 || !reflect.DeepEqual(rec.Draws[0], want) {
		t.Fatalf("draws = %+v\nwant %+v", rec.Draws, want)
	}

	mat.SetWireframe(false)
	rec.Reset()
	if err := s.DrawCalls(); err != nil {
		t.Fatal(err)
	}
	if rec.Draws[0].Pipeline != renderer.PipelineSkinnedFill {
		t.Errorf("filled skinned object drawn with %s", rec.Draws[0].Pipeline)
	}
}

func TestAddFailsWhenAnimatorCannotInit(t *testing.T) {
	s, _ := newTestScene(t)
	mdl := model.NewModel(model.WithName("Rigid"), model.WithGeometry(geometry.NewPlane(1, 1)))
	obj := game_object.NewGameObject(
		game_object.WithName("Rigid"),
		game_object.WithModel(mdl),
		game_object.WithMaterial(material.NewMaterial()),
		game_object.WithAnimator(animator.NewAnimator(animator.BackendTypeGPU, animator.WithModel(mdl), animator.WithBoneCount(2))),
	)
	if _, err := s.Add(obj); !errors.Is(err, animator.ErrModelNotSkinned) {
		t.Errorf("Add = %v, want ErrModelNotSkinned", err)
	}
}

func TestDrawCallsFollowMaterials(t *testing.T) {
	s, rec := newTestScene(t)

	solid := material.NewMaterial()
	wire := material.NewMaterial(material.WithWireframe(true))

	plane := game_object.NewGameObject(
		game_object.WithName("Plane"),
		game_object.WithModel(model.NewModel(model.WithName("Plane"), model.WithGeometry(geometry.NewPlane(5, 5)))),
		game_object.WithMaterial(solid),
	)
	sphere := game_object.NewGameObject(
		game_object.WithName("Sphere"),
		game_object.WithModel(model.NewModel(model.WithName("Sphere"), model.WithGeometry(geometry.NewSphere(0.5, 8, 8)))),
		game_object.WithMaterial(wire),
	)
	hidden := game_object.NewGameObject(
		game_object.WithName("Hidden"),
		game_object.WithEnabled(false),
		game_object.WithModel(model.NewModel(model.WithName("Hidden"), model.WithGeometry(geometry.NewPlane(1, 1)))),
		game_object.WithMaterial(solid),
	)
	for _, obj := range []game_object.GameObject{plane, sphere, hidden} {
		if _, err := s.Add(obj); err != nil {
			t.Fatalf("Add(%s): %v", obj.Name(), err)
		}
	}
	if plane.ID() != 1 || sphere.ID() != 2 || s.Count() != 3 {
		t.Fatalf("ids = %d, %d; count = %d", plane.ID(), sphere.ID(), s.Count())
	}

	s.Prepare()
	if len(rec.BufferWrites) != 3 {
		t.Fatalf("%d buffer writes, want frame + 2 enabled objects", len(rec.BufferWrites))
	}
	if got := len(rec.BufferWrites[0].Data); got != renderer.FrameUniformSize {
		t.Errorf("frame uniform is %d bytes", got)
	}

	if err := s.DrawCalls(); err != nil {
		t.Fatalf("DrawCalls: %v", err)
	}
	want := []renderertest.Draw{
		{Pipeline: renderer.PipelineMeshFill, Mesh: "Plane Fill", BindGroups: []string{"Demo Frame", "Plane Object 1"}, Indexed: true, Count: 6},
		{Pipeline: renderer.PipelineMeshWire, Mesh: "Sphere Wire", BindGroups: []string{"Demo Frame", "Sphere Object 2"}, Indexed: true,
			Count: len(sphere.Model().Geometry().WireIndices())},
	}
	if !reflect.DeepEqual(rec.Draws, want) {
		t.Errorf("draws = %+v\nwant %+v", rec.Draws, want)
	}

	// Toggling wireframe on the shared material switches pipelines on the next frame.
	rec.Reset()
	solid.SetWireframe(true)
	if err := s.DrawCalls(); err != nil {
		t.Fatal(err)
	}
	if rec.Draws[0].Pipeline != renderer.PipelineMeshWire || rec.Draws[0].Mesh != "Plane Wire" {
		t.Errorf("after toggle: %+v", rec.Draws[0])
	}

	s.Remove(plane.ID())
	if s.Get(plane.ID()) != nil || plane.ObjectProvider() != nil {
		t.Error("Remove left the object registered")
	}
}

func TestAddRejectsIncompleteObjects(t *testing.T) {
	s, _ := newTestScene(t)
	if _, err := s.Add(game_object.NewGameObject(game_object.WithName("Empty"))); !errors.Is(err, ErrNoModel) {
		t.Errorf("Add = %v, want ErrNoModel", err)
	}

	mk := func() game_object.GameObject {
		return game_object.NewGameObject(
			game_object.WithID(7),
			game_object.WithModel(model.NewModel(model.WithGeometry(geometry.NewPlane(1, 1)))),
			game_object.WithMaterial(material.NewMaterial()),
		)
	}
	if _, err := s.Add(mk()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(mk()); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Add = %v, want ErrDuplicateID", err)
	}
}

func TestLineSetDrawsAfterObjects(t *testing.T) {
	s, rec := newTestScene(t)
	ls, err := s.AddLines("Bones", 4)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.DrawCalls(); err != nil || len(rec.Draws) != 0 {
		t.Fatalf("empty line set drawn: %v %+v", err, rec.Draws)
	}

	var lines geometry.Lines
	lines.Segment(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0})
	if err := ls.Update(lines.Vertices); err != nil {
		t.Fatal(err)
	}
	if err := s.DrawCalls(); err != nil {
		t.Fatal(err)
	}
	want := renderertest.Draw{Pipeline: renderer.PipelineLines, Mesh: "Bones", BindGroups: []string{"Demo Frame"}, Count: 2}
	if len(rec.Draws) != 1 || !reflect.DeepEqual(rec.Draws[0], want) {
		t.Errorf("draws = %+v", rec.Draws)
	}

	lines.Cross(mgl32.Vec3{}, 1, mgl32.Vec3{1, 1, 1})
	if err := ls.Update(lines.Vertices); !errors.Is(err, renderer.ErrVertexOverflow) {
		t.Errorf("Update = %v, want ErrVertexOverflow", err)
	}
	if ls.Count() != 2 {
		t.Errorf("count after failed update = %d", ls.Count())
	}
}

func TestBuildFrameUniformPicksFirstEnabledLights(t *testing.T) {
	cam := camera.NewCamera(camera.WithController(camera.NewOrbitController(camera.WithPosition(mgl32.Vec3{1, 1, 2}))))

	off := light.NewPointLight(0xffffff, 1, 5, 2)
	off.SetEnabled(false)
	pt := light.NewPointLight(0xff9000, 0.5, 10, 2)
	amb := light.NewAmbientLight(0xffffff, 0.5)

	u := BuildFrameUniform(cam, []light.Light{off, pt, amb})
	if u.Point.LightRange != 10 || u.Point.Intensity != 0.5 {
		t.Errorf("point light = %+v", u.Point)
	}
	if u.Ambient.Intensity != 0.5 {
		t.Errorf("ambient = %+v", u.Ambient)
	}
	if !u.CameraPosition.ApproxEqualThreshold(mgl32.Vec3{1, 1, 2}, 1e-5) {
		t.Errorf("camera position = %v", u.CameraPosition)
	}

	empty := BuildFrameUniform(cam, nil)
	if empty.Point.Intensity != 0 || empty.Ambient.Intensity != 0 {
		t.Error("missing lights must contribute nothing")
	}
}
