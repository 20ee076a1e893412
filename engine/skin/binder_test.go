package skin

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/skeleton"
)

const epsilon = 1e-6

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) <= epsilon
}

func newTestBinder(t *testing.T, s skeleton.Sizing) *Binder {
	t.Helper()
	sk, err := skeleton.BuildChain(s)
	if err != nil {
		t.Fatalf("BuildChain: %v", err)
	}
	b, err := NewBinder(sk)
	if err != nil {
		t.Fatalf("NewBinder: %v", err)
	}
	return b
}

func TestBindVertexScenarios(t *testing.T) {
	b := newTestBinder(t, skeleton.Sizing{SegmentHeight: 8, SegmentCount: 4})

	tests := []struct {
		name    string
		vy      float32
		indices [2]uint16
		weights [2]float32
	}{
		{"bottom ring", -16, [2]uint16{0, 1}, [2]float32{1, 0}},
		{"one segment up", -8, [2]uint16{1, 2}, [2]float32{1, 0}},
		{"centre", 0, [2]uint16{2, 3}, [2]float32{1, 0}},
		{"half way through a segment", 4, [2]uint16{2, 3}, [2]float32{0.5, 0.5}},
		{"quarter way", -14, [2]uint16{0, 1}, [2]float32{0.75, 0.25}},
		{"top ring uses the last segment slot", 16, [2]uint16{4, 5}, [2]float32{1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := b.BindVertex(mgl32.Vec3{3, tt.vy, -2})
			if err != nil {
				t.Fatalf("BindVertex: %v", err)
			}
			if in.Indices[0] != tt.indices[0] || in.Indices[1] != tt.indices[1] {
				t.Errorf("indices = %v, want %v", in.Indices[:2], tt.indices)
			}
			if !approx(in.Weights[0], tt.weights[0]) || !approx(in.Weights[1], tt.weights[1]) {
				t.Errorf("weights = %v, want %v", in.Weights[:2], tt.weights)
			}
			if in.Active != ActiveInfluences {
				t.Errorf("active = %d, want %d", in.Active, ActiveInfluences)
			}
			if in.Indices[2] != 0 || in.Indices[3] != 0 || in.Weights[2] != 0 || in.Weights[3] != 0 {
				t.Errorf("unused slots not zero: %v %v", in.Indices, in.Weights)
			}
		})
	}
}

func TestTopIndexIsLastSegment(t *testing.T) {
	sk, err := skeleton.BuildChain(skeleton.Sizing{SegmentHeight: 8, SegmentCount: 4})
	if err != nil {
		t.Fatalf("BuildChain: %v", err)
	}
	b, err := NewBinder(sk)
	if err != nil {
		t.Fatalf("NewBinder: %v", err)
	}
	if b.TopIndex() != 5 {
		t.Fatalf("TopIndex = %d, want 5", b.TopIndex())
	}
	in, err := b.BindVertex(mgl32.Vec3{0, 16, 0})
	if err != nil {
		t.Fatalf("BindVertex: %v", err)
	}
	if int(in.Indices[1]) != sk.Layout().LastSegment {
		t.Fatalf("top vertex references bone %d, last segment is %d", in.Indices[1], sk.Layout().LastSegment)
	}
	if int(in.Indices[1]) == sk.Layout().Target {
		t.Fatal("top vertex is bound to the IK target")
	}
}

func TestWeightsSumToOne(t *testing.T) {
	s := skeleton.Sizing{SegmentHeight: 0.3, SegmentCount: 7}
	b := newTestBinder(t, s)

	const steps = 997
	positions := make([]mgl32.Vec3, 0, steps+1)
	for i := 0; i <= steps; i++ {
		y := -s.HalfHeight() + s.Height()*float32(i)/steps
		positions = append(positions, mgl32.Vec3{1, y, 0})
	}
	infl, err := b.Bind(positions)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	for i, in := range infl {
		if !approx(in.Sum(), 1) {
			t.Fatalf("vertex %d weights %v sum to %v", i, in.Weights, in.Sum())
		}
		if int(in.Indices[1]) > b.TopIndex() {
			t.Fatalf("vertex %d index %d above top %d", i, in.Indices[1], b.TopIndex())
		}
		if in.Weights[1] < 0 || in.Weights[1] >= 1 {
			t.Fatalf("vertex %d upper weight %v outside [0, 1)", i, in.Weights[1])
		}
	}
}

func TestBindRejectsVerticesOutsideChain(t *testing.T) {
	b := newTestBinder(t, skeleton.Sizing{SegmentHeight: 8, SegmentCount: 4})
	tests := []struct {
		name string
		vy   float32
	}{
		{"below the root", -16.5},
		{"just below the bottom ring", -16.0001},
		{"just above the top ring", 16.0001},
		{"inside the stretch above the last segment", 17},
		{"a full segment above the top", 24},
		{"far above", 100},
		{"nan", float32(math.NaN())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Bind([]mgl32.Vec3{{0, 0, 0}, {0, tt.vy, 0}})
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Fatalf("got %v, want ErrIndexOutOfRange", err)
			}
		})
	}
}

func TestBindSnapsBoundaryNoise(t *testing.T) {
	b := newTestBinder(t, skeleton.Sizing{SegmentHeight: 8, SegmentCount: 4})
	in, err := b.BindVertex(mgl32.Vec3{0, -16.000002, 0})
	if err != nil {
		t.Fatalf("BindVertex below the bottom ring by float noise: %v", err)
	}
	if in.Indices[0] != 0 || !approx(in.Weights[0], 1) {
		t.Errorf("got %v %v, want bone 0 fully weighted", in.Indices, in.Weights)
	}

	in, err = b.BindVertex(mgl32.Vec3{0, 16.000002, 0})
	if err != nil {
		t.Fatalf("BindVertex above the top ring by float noise: %v", err)
	}
	if in.Indices[0] != 4 || in.Indices[1] != 5 || !approx(in.Weights[0], 1) {
		t.Errorf("got %v %v, want bone 4 fully weighted", in.Indices, in.Weights)
	}
}

type fakeRig struct {
	sizing skeleton.Sizing
	layout skeleton.Layout
	n      int
}

func (f fakeRig) Sizing() skeleton.Sizing { return f.sizing }
func (f fakeRig) Layout() skeleton.Layout { return f.layout }
func (f fakeRig) Len() int                { return f.n }

func TestNewBinderChecksChainCoupling(t *testing.T) {
	s := skeleton.Sizing{SegmentHeight: 8, SegmentCount: 4}
	good := skeleton.Layout{Root: 0, FirstSegment: 1, LastSegment: 5, Target: 6}
	tests := []struct {
		name string
		rig  fakeRig
		want error
	}{
		{"chain too short", fakeRig{s, good, 5}, ErrChainCoupling},
		{"target in top slot", fakeRig{s, skeleton.Layout{FirstSegment: 1, LastSegment: 5, Target: 5}, 6}, ErrChainCoupling},
		{"segments shifted", fakeRig{s, skeleton.Layout{FirstSegment: 2, LastSegment: 6, Target: 1}, 7}, ErrChainCoupling},
		{"invalid sizing", fakeRig{skeleton.Sizing{SegmentHeight: 0, SegmentCount: 4}, good, 7}, skeleton.ErrInvalidSegmentHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBinder(tt.rig); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := NewBinder(fakeRig{s, good, 7}); err != nil {
		t.Fatalf("consistent rig rejected: %v", err)
	}
}

func TestFlatten(t *testing.T) {
	b := newTestBinder(t, skeleton.Sizing{SegmentHeight: 8, SegmentCount: 4})
	infl, err := b.Bind([]mgl32.Vec3{{0, -16, 0}, {0, 4, 0}})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	joints, weights := Flatten(infl)
	if joints[1] != [4]uint16{2, 3, 0, 0} {
		t.Errorf("joints[1] = %v", joints[1])
	}
	if weights[1] != [4]float32{0.5, 0.5, 0, 0} {
		t.Errorf("weights[1] = %v", weights[1])
	}
	if joints[0] != [4]uint16{0, 1, 0, 0} || weights[0] != [4]float32{1, 0, 0, 0} {
		t.Errorf("vertex 0 flattened to %v %v", joints[0], weights[0])
	}
}
