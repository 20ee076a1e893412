package game_object

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestModelMatrixAppliesTransform(t *testing.T) {
	obj := NewGameObject(
		WithName("Plane"),
		WithPosition(mgl32.Vec3{0, -0.65, 0}),
		WithRotation(mgl32.Vec3{-math.Pi / 2, 0, 0}),
	)
	if !obj.Enabled() {
		t.Fatal("objects start enabled")
	}

	// The plane's +Z normal must point up once rotated.
	n := obj.ModelMatrix().Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3()
	if !n.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-6) {
		t.Errorf("rotated normal = %v, want +Y", n)
	}
	p := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 0}, obj.ModelMatrix())
	if !p.ApproxEqual(mgl32.Vec3{0, -0.65, 0}) {
		t.Errorf("origin maps to %v", p)
	}

	obj.SetPosition(mgl32.Vec3{-1.5, 0, 0})
	if got := obj.Transform().Position; got != (mgl32.Vec3{-1.5, 0, 0}) {
		t.Errorf("position = %v", got)
	}
}
