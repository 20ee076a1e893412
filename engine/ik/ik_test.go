package ik

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/geometry"
	"github.com/mo-kasiri/Three-IK/engine/skeleton"
)

func buildChain(t *testing.T, count int) *skeleton.Skeleton {
	t.Helper()
	sk, err := skeleton.BuildChain(skeleton.Sizing{SegmentHeight: 8, SegmentCount: count})
	if err != nil {
		t.Fatalf("BuildChain: %v", err)
	}
	return sk
}

func linkIndices(c Chain) []int {
	out := make([]int, len(c.Links))
	for i, l := range c.Links {
		out[i] = l.Index
	}
	return out
}

func TestDefaultChain(t *testing.T) {
	tests := []struct {
		count    int
		target   int
		effector int
		links    []int
	}{
		{4, 6, 5, []int{4, 5, 3, 2, 1}},
		{2, 4, 3, []int{2, 3, 1}},
		{1, 3, 2, []int{1, 2}},
		{0, 2, 1, []int{1}},
	}
	for _, tt := range tests {
		c := DefaultChain(buildChain(t, tt.count).Layout())
		if c.Target != tt.target || c.Effector != tt.effector {
			t.Errorf("count=%d: target/effector = %d/%d, want %d/%d", tt.count, c.Target, c.Effector, tt.target, tt.effector)
		}
		if got := linkIndices(c); !reflect.DeepEqual(got, tt.links) {
			t.Errorf("count=%d: links = %v, want %v", tt.count, got, tt.links)
		}
		for _, l := range c.Links {
			if l.RotationMin != nil || l.RotationMax != nil {
				t.Errorf("count=%d: link %d has limits", tt.count, l.Index)
			}
		}
		if err := c.Validate(tt.count + 3); err != nil {
			t.Errorf("count=%d: default chain invalid: %v", tt.count, err)
		}
	}
}

func TestChainValidate(t *testing.T) {
	lo, hi := float32(1), float32(0.5)
	tests := []struct {
		name  string
		chain Chain
	}{
		{"target out of range", Chain{Target: 7, Effector: 5, Links: []Link{{Index: 4}}}},
		{"negative effector", Chain{Target: 6, Effector: -1, Links: []Link{{Index: 4}}}},
		{"no links", Chain{Target: 6, Effector: 5}},
		{"link out of range", Chain{Target: 6, Effector: 5, Links: []Link{{Index: 9}}}},
		{"link is target", Chain{Target: 6, Effector: 5, Links: []Link{{Index: 6}}}},
		{"inverted angle clamp", Chain{Target: 6, Effector: 5, Links: []Link{{Index: 4}}, MinAngle: &lo, MaxAngle: &hi}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.chain.Validate(7); !errors.Is(err, ErrInvalidChain) {
				t.Fatalf("got %v, want ErrInvalidChain", err)
			}
		})
	}

	sk := buildChain(t, 4)
	if _, err := NewCCDSolver(sk, Chain{Target: 6, Effector: 5}); !errors.Is(err, ErrInvalidChain) {
		t.Fatalf("NewCCDSolver accepted an empty chain: %v", err)
	}
}

func moveTarget(sk *skeleton.Skeleton, pos mgl32.Vec3) {
	sk.Bone(sk.Layout().Target).Position = pos
	sk.UpdateWorldMatrices()
}

func TestCCDApproachesTarget(t *testing.T) {
	sk := buildChain(t, 4)
	layout := sk.Layout()
	// Target local to the root, which sits at y=-16.
	moveTarget(sk, mgl32.Vec3{10, 24, 0})

	before := sk.WorldPosition(layout.LastSegment).Sub(sk.WorldPosition(layout.Target)).Len()

	chain := DefaultChain(layout)
	chain.Iterations = 10
	solver, err := NewCCDSolver(sk, chain)
	if err != nil {
		t.Fatalf("NewCCDSolver: %v", err)
	}
	rootBefore := sk.WorldMatrix(layout.Root)
	targetBefore := sk.WorldPosition(layout.Target)

	solver.Update()

	after := sk.WorldPosition(layout.LastSegment).Sub(sk.WorldPosition(layout.Target)).Len()
	if after >= before*0.5 {
		t.Fatalf("effector distance %v -> %v, expected a large improvement", before, after)
	}
	if sk.WorldMatrix(layout.Root) != rootBefore {
		t.Error("root moved")
	}
	if !sk.WorldPosition(layout.Target).ApproxEqualThreshold(targetBefore, 1e-5) {
		t.Error("target moved")
	}
	// Rotations preserve segment lengths.
	for i := layout.Segment(1); i <= layout.LastSegment; i++ {
		d := sk.WorldPosition(i).Sub(sk.WorldPosition(i - 1)).Len()
		if math.Abs(float64(d-8)) > 1e-3 {
			t.Errorf("segment %d length = %v, want 8", i, d)
		}
	}
}

func TestCCDAlignedTargetIsNoOp(t *testing.T) {
	sk := buildChain(t, 4)
	solver, err := NewCCDSolver(sk, DefaultChain(sk.Layout()))
	if err != nil {
		t.Fatalf("NewCCDSolver: %v", err)
	}
	want := sk.Clone()

	solver.Update()

	if !sk.Equal(want) {
		t.Fatal("solver rotated bones although the effector already points at the target")
	}
}

func quatAngle(q mgl32.Quat) float64 {
	w := math.Min(math.Abs(float64(q.Normalize().W)), 1)
	return 2 * math.Acos(w)
}

func TestCCDMaxAngleClampsEachStep(t *testing.T) {
	sk := buildChain(t, 4)
	moveTarget(sk, mgl32.Vec3{20, 8, 0})

	maxAngle := float32(0.01)
	chain := DefaultChain(sk.Layout())
	chain.MaxAngle = &maxAngle
	solver, err := NewCCDSolver(sk, chain)
	if err != nil {
		t.Fatalf("NewCCDSolver: %v", err)
	}
	solver.Update()

	moved := false
	for _, l := range chain.Links {
		a := quatAngle(sk.Bone(l.Index).Rotation)
		if a > float64(maxAngle)+1e-4 {
			t.Errorf("link %d rotated by %v, max %v", l.Index, a, maxAngle)
		}
		if a > 1e-4 {
			moved = true
		}
	}
	if !moved {
		t.Fatal("no link rotated")
	}
}

func TestCCDRotationLimits(t *testing.T) {
	sk := buildChain(t, 4)
	moveTarget(sk, mgl32.Vec3{10, 24, 0})

	zero := mgl32.Vec3{}
	chain := DefaultChain(sk.Layout())
	locked := chain.Links[0].Index
	chain.Links[0].RotationMin = &zero
	chain.Links[0].RotationMax = &zero

	solver, err := NewCCDSolver(sk, chain)
	if err != nil {
		t.Fatalf("NewCCDSolver: %v", err)
	}
	solver.Update()

	if a := quatAngle(sk.Bone(locked).Rotation); a > 1e-5 {
		t.Fatalf("locked link %d rotated by %v", locked, a)
	}
	if a := quatAngle(sk.Bone(chain.Links[2].Index).Rotation); a < 1e-4 {
		t.Fatalf("unlocked link %d did not rotate", chain.Links[2].Index)
	}
}

func TestEulerRoundTrip(t *testing.T) {
	for _, e := range []mgl32.Vec3{
		{0, 0, 0},
		{0.3, -0.2, 0.1},
		{1.2, -1.4, -0.4},
		{-2.5, 0.7, 2.9},
	} {
		q := quatFromEulerXYZ(e)
		got := eulerXYZ(q)
		if !got.ApproxEqualThreshold(e, 1e-4) {
			t.Errorf("euler %v round-tripped to %v", e, got)
		}
		// Must agree with composing the axis rotations in XYZ order.
		m := mgl32.HomogRotate3DX(e[0]).Mul4(mgl32.HomogRotate3DY(e[1])).Mul4(mgl32.HomogRotate3DZ(e[2]))
		if !q.Mat4().ApproxEqualThreshold(m, 1e-5) {
			t.Errorf("euler %v quaternion disagrees with matrix composition", e)
		}
	}
}

func TestHelperLines(t *testing.T) {
	sk := buildChain(t, 4)
	chain := DefaultChain(sk.Layout())
	h := NewHelper(sk, 0.25, chain)

	var lines geometry.Lines
	h.AppendLines(&lines)

	// Three segments per marker for target and effector, three per link marker plus one chain segment per link.
	want := 2 * (3 + 3 + 4*len(chain.Links))
	if len(lines.Vertices) != want {
		t.Fatalf("got %d vertices, want %d", len(lines.Vertices), want)
	}

	lines.Reset()
	if len(lines.Vertices) != 0 {
		t.Fatal("Reset kept vertices")
	}
}
