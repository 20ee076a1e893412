package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestWithPositionDerivesSphericalCoordinates(t *testing.T) {
	eye := mgl32.Vec3{1, 1, 2}
	cc := NewOrbitController(WithPosition(eye))

	if got := cc.Position(); !got.ApproxEqualThreshold(eye, 1e-5) {
		t.Fatalf("position = %v, want %v", got, eye)
	}
	if got, want := cc.Radius(), float32(math.Sqrt(6)); math.Abs(float64(got-want)) > 1e-5 {
		t.Errorf("radius = %v, want %v", got, want)
	}
	if cc.DampingFactor() != 1 {
		t.Errorf("damping factor = %v, want 1 (disabled)", cc.DampingFactor())
	}
}

func TestDampedRotationEasesOut(t *testing.T) {
	cc := NewOrbitController(WithPosition(mgl32.Vec3{0, 0, 5}), WithDamping(0.05))
	cc.SetViewport(800, 600)

	cc.Rotate(-60, 0)
	wantTotal := 2 * math.Pi * 60 / 600.0

	var steps []float32
	prev := cc.Azimuth()
	for range 400 {
		cc.Update()
		a := cc.Azimuth()
		steps = append(steps, a-prev)
		prev = a
	}

	if got := float64(cc.Azimuth()); math.Abs(got-wantTotal) > 1e-3 {
		t.Fatalf("azimuth after settling = %v, want %v", got, wantTotal)
	}
	if first, want := float64(steps[0]), wantTotal*0.05; math.Abs(first-want) > 1e-5 {
		t.Errorf("first step = %v, want %v", first, want)
	}
	for i := 1; i < len(steps); i++ {
		if steps[i] > steps[i-1]+1e-7 {
			t.Fatalf("step %d grew: %v > %v", i, steps[i], steps[i-1])
		}
	}
	if cc.Update() {
		t.Error("camera still moving after settling")
	}
}

func TestUndampedRotationAppliesAtOnce(t *testing.T) {
	cc := NewOrbitController(WithPosition(mgl32.Vec3{0, 0, 5}))
	cc.SetViewport(800, 600)
	cc.Rotate(0, -150)
	if !cc.Update() {
		t.Fatal("Update reported no movement")
	}
	want := float32(-math.Pi / 2)
	if got := cc.Elevation(); math.Abs(float64(got-want)) > 0.02 {
		t.Errorf("elevation = %v, want close to %v", got, want)
	}
	if cc.Elevation() < -math.Pi/2 {
		t.Error("elevation not clamped")
	}
}

func TestZoomAndPan(t *testing.T) {
	cc := NewOrbitController(WithPosition(mgl32.Vec3{0, 0, 10}))
	cc.Zoom(1)
	cc.Update()
	if got := cc.Radius(); math.Abs(float64(got-9.5)) > 1e-4 {
		t.Fatalf("radius after one zoom step = %v, want 9.5", got)
	}

	cc.SetViewport(100, 100)
	cc.Pan(10, 0)
	cc.Update()
	// Dragging right moves the scene right, so the target slides left.
	if x := cc.Target().X(); x >= 0 {
		t.Errorf("target x = %v, want negative", x)
	}
	if got := cc.Position().Sub(cc.Target()).Len(); math.Abs(float64(got-cc.Radius())) > 1e-4 {
		t.Errorf("pan changed the orbit distance: %v", got)
	}
}

func TestCameraFollowsController(t *testing.T) {
	cc := NewOrbitController(WithPosition(mgl32.Vec3{1, 1, 2}))
	cam := NewCamera(WithAspect(2), WithController(cc))

	if cam.Fov() != mgl32.DegToRad(75) || cam.Near() != 0.1 || cam.Far() != 100 {
		t.Fatalf("unexpected defaults fov=%v near=%v far=%v", cam.Fov(), cam.Near(), cam.Far())
	}

	// The target projects to the centre of the screen.
	clip := cam.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math.Abs(float64(clip.X()/clip.W())) > 1e-5 || math.Abs(float64(clip.Y()/clip.W())) > 1e-5 {
		t.Errorf("origin projects to %v", clip)
	}

	cam.SetAspect(0)
	if cam.Aspect() != 2 {
		t.Errorf("zero aspect accepted")
	}
	cam.SetAspect(0.5)
	if cam.ProjectionMatrix()[0] <= cam.ProjectionMatrix()[5] {
		t.Errorf("narrow aspect should widen the x scale: %v", cam.ProjectionMatrix())
	}

	cc.Rotate(50, 0)
	cc.Update()
	cam.Update()
	if !cam.Position().ApproxEqualThreshold(cc.Position(), 1e-6) {
		t.Errorf("camera position %v does not follow controller %v", cam.Position(), cc.Position())
	}
}
