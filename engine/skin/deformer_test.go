package skin

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/skeleton"
)

func TestDeformerRestPoseIsIdentity(t *testing.T) {
	sk, err := skeleton.BuildChain(skeleton.Sizing{SegmentHeight: 8, SegmentCount: 4})
	if err != nil {
		t.Fatalf("BuildChain: %v", err)
	}
	b, err := NewBinder(sk)
	if err != nil {
		t.Fatalf("NewBinder: %v", err)
	}

	var positions, normals []mgl32.Vec3
	for i := 0; i <= 32; i++ {
		a := float64(i) * 0.4
		positions = append(positions, mgl32.Vec3{5 * float32(math.Sin(a)), float32(i) - 16, 5 * float32(math.Cos(a))})
		normals = append(normals, mgl32.Vec3{float32(math.Sin(a)), 0, float32(math.Cos(a))})
	}
	infl, err := b.Bind(positions)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	d, err := NewDeformer(positions, normals, infl, WithWorkerCount(3), WithChunkSize(5))
	if err != nil {
		t.Fatalf("NewDeformer: %v", err)
	}
	defer d.Close()

	if err := d.Deform(sk.SkinMatrices(nil)); err != nil {
		t.Fatalf("Deform: %v", err)
	}
	for i, p := range d.Positions() {
		if !p.ApproxEqualThreshold(positions[i], 1e-4) {
			t.Fatalf("vertex %d moved at bind pose: %v -> %v", i, positions[i], p)
		}
		if !d.Normals()[i].ApproxEqualThreshold(normals[i], 1e-4) {
			t.Fatalf("normal %d changed at bind pose: %v -> %v", i, normals[i], d.Normals()[i])
		}
	}
}

func TestDeformerBlendsBetweenBones(t *testing.T) {
	positions := []mgl32.Vec3{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}}
	infl := []Influence{
		{Indices: [4]uint16{0, 1}, Weights: [4]float32{1, 0}, Active: 2},
		{Indices: [4]uint16{0, 1}, Weights: [4]float32{0.5, 0.5}, Active: 2},
		{Indices: [4]uint16{0, 1}, Weights: [4]float32{0, 1}, Active: 2},
	}
	d, err := NewDeformer(positions, nil, infl, WithWorkerCount(2), WithChunkSize(1))
	if err != nil {
		t.Fatalf("NewDeformer: %v", err)
	}
	defer d.Close()

	mats := []mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(0, 10, 0)}
	if err := d.Deform(mats); err != nil {
		t.Fatalf("Deform: %v", err)
	}
	want := []mgl32.Vec3{{1, 0, 0}, {1, 5, 0}, {1, 10, 0}}
	for i, p := range d.Positions() {
		if !p.ApproxEqualThreshold(want[i], 1e-5) {
			t.Errorf("vertex %d = %v, want %v", i, p, want[i])
		}
	}
	if d.Normals() != nil {
		t.Errorf("normals should stay nil when none were given")
	}
}

func TestDeformerValidatesInputs(t *testing.T) {
	positions := []mgl32.Vec3{{0, 0, 0}}
	if _, err := NewDeformer(positions, nil, nil); err == nil {
		t.Fatalf("expected error for missing influences")
	}
	if _, err := NewDeformer(positions, []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}}, make([]Influence, 1)); err == nil {
		t.Fatalf("expected error for mismatched normals")
	}

	infl := []Influence{{Indices: [4]uint16{3, 4}, Weights: [4]float32{1, 0}, Active: 2}}
	d, err := NewDeformer(positions, nil, infl)
	if err != nil {
		t.Fatalf("NewDeformer: %v", err)
	}
	defer d.Close()
	if err := d.Deform([]mgl32.Mat4{mgl32.Ident4()}); err == nil {
		t.Fatalf("expected error when skin matrices are missing")
	}
}
