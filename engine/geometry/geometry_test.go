package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCylinderLayout(t *testing.T) {
	g := NewCylinder(5, 5, 32, 8, 4, true)

	if got, want := g.VertexCount(), (4+1)*(8+1); got != want {
		t.Fatalf("vertex count = %d, want %d", got, want)
	}
	if got, want := len(g.Indices), 8*4*6; got != want {
		t.Fatalf("index count = %d, want %d", got, want)
	}

	// Rows run from the top down, one ring per height segment boundary.
	for row := 0; row <= 4; row++ {
		wantY := 16 - float32(row)*8
		for col := 0; col <= 8; col++ {
			p := g.Positions[row*9+col]
			if math.Abs(float64(p.Y()-wantY)) > 1e-5 {
				t.Fatalf("row %d col %d y = %v, want %v", row, col, p.Y(), wantY)
			}
			if r := math.Hypot(float64(p.X()), float64(p.Z())); math.Abs(r-5) > 1e-4 {
				t.Fatalf("row %d col %d radius = %v, want 5", row, col, r)
			}
		}
		// The seam vertex is duplicated at the end of each row.
		first, last := g.Positions[row*9], g.Positions[row*9+8]
		if !first.ApproxEqualThreshold(last, 1e-5) {
			t.Errorf("row %d seam mismatch %v vs %v", row, first, last)
		}
	}

	for i, n := range g.Normals {
		if math.Abs(float64(n.Len()-1)) > 1e-5 || math.Abs(float64(n.Y())) > 1e-6 {
			t.Fatalf("normal %d = %v, want unit horizontal", i, n)
		}
	}

	lo, hi := g.Bounds()
	if math.Abs(float64(lo.Y()+16)) > 1e-5 || math.Abs(float64(hi.Y()-16)) > 1e-5 {
		t.Errorf("bounds y = [%v, %v], want [-16, 16]", lo.Y(), hi.Y())
	}
}

func TestCylinderCaps(t *testing.T) {
	open := NewCylinder(1, 1, 2, 6, 1, true)
	closed := NewCylinder(1, 1, 2, 6, 1, false)

	capVerts := 2 * (6 + 7)
	if got := closed.VertexCount() - open.VertexCount(); got != capVerts {
		t.Fatalf("caps added %d vertices, want %d", got, capVerts)
	}
	if got := len(closed.Indices) - len(open.Indices); got != 2*6*3 {
		t.Fatalf("caps added %d indices, want %d", got, 2*6*3)
	}
	for _, idx := range closed.Indices {
		if int(idx) >= closed.VertexCount() {
			t.Fatalf("index %d out of range", idx)
		}
	}
}

func TestSphere(t *testing.T) {
	g := NewSphere(0.5, 32, 32)
	if got, want := g.VertexCount(), 33*33; got != want {
		t.Fatalf("vertex count = %d, want %d", got, want)
	}
	// Pole rows produce a single triangle per segment.
	if got, want := len(g.Indices), (32*32*2-2*32)*3; got != want {
		t.Fatalf("index count = %d, want %d", got, want)
	}
	for i, p := range g.Positions {
		if math.Abs(float64(p.Len()-0.5)) > 1e-5 {
			t.Fatalf("vertex %d at distance %v, want 0.5", i, p.Len())
		}
	}
}

func TestPlane(t *testing.T) {
	g := NewPlane(5, 5)
	if g.VertexCount() != 4 || len(g.Indices) != 6 {
		t.Fatalf("plane has %d vertices / %d indices", g.VertexCount(), len(g.Indices))
	}
	// Counter-clockwise winding seen from +Z.
	a, b, c := g.Positions[g.Indices[0]], g.Positions[g.Indices[1]], g.Positions[g.Indices[2]]
	if n := b.Sub(a).Cross(c.Sub(a)); n.Z() <= 0 {
		t.Errorf("first triangle faces %v, want +Z", n)
	}
}

func TestWireIndicesUniqueEdges(t *testing.T) {
	g := NewPlane(1, 1)
	wire := g.WireIndices()
	// Two triangles sharing one diagonal: 5 unique edges.
	if len(wire) != 10 {
		t.Fatalf("got %d wire indices, want 10: %v", len(wire), wire)
	}
	seen := map[[2]uint32]bool{}
	for i := 0; i < len(wire); i += 2 {
		e := [2]uint32{wire[i], wire[i+1]}
		if e[0] >= e[1] {
			t.Errorf("edge %v not ordered", e)
		}
		if seen[e] {
			t.Errorf("edge %v repeated", e)
		}
		seen[e] = true
	}

	cyl := NewCylinder(5, 5, 32, 8, 4, true)
	// Per quad: one vertical, one horizontal, one diagonal, plus the closing ring and seam column edges.
	want := 8*4*3 + 8 + 4
	if got := len(cyl.WireIndices()) / 2; got != want {
		t.Errorf("cylinder wire edges = %d, want %d", got, want)
	}
}

func TestTransformMatrix(t *testing.T) {
	tr := NewTransform()
	if !tr.Matrix().ApproxEqualThreshold(mgl32.Ident4(), 1e-6) {
		t.Fatalf("identity transform produced %v", tr.Matrix())
	}

	tr.Rotation = mgl32.Vec3{-math.Pi / 2, 0, 0}
	tr.Position = mgl32.Vec3{0, -0.65, 0}
	// A plane facing +Z rotated -90 degrees about X faces +Y.
	n := tr.Matrix().Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3()
	if n.Sub(mgl32.Vec3{0, 1, 0}).Len() > 1e-6 {
		t.Errorf("rotated normal = %v, want (0, 1, 0)", n)
	}
	p := tr.Matrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	if p.Sub(mgl32.Vec3{0, -0.65, 0}).Len() > 1e-6 {
		t.Errorf("translated origin = %v", p)
	}
}
