package geometry

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is an indexed triangle mesh with per-vertex normals.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// WireIndices returns every unique triangle edge once, as a line list.
// Edges are emitted in ascending (min, max) vertex order so the result is stable.
//
// Returns:
//   - []uint32: pairs of vertex indices
func (g *Geometry) WireIndices() []uint32 {
	type edge struct{ a, b uint32 }
	seen := make(map[edge]struct{}, len(g.Indices))
	edges := make([]edge, 0, len(g.Indices))

	add := func(a, b uint32) {
		if a > b {
			a, b = b, a
		}
		e := edge{a, b}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		edges = append(edges, e)
	}

	for i := 0; i+2 < len(g.Indices); i += 3 {
		a, b, c := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		add(a, b)
		add(b, c)
		add(c, a)
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].a != edges[j].a {
			return edges[i].a < edges[j].a
		}
		return edges[i].b < edges[j].b
	})

	out := make([]uint32, 0, len(edges)*2)
	for _, e := range edges {
		out = append(out, e.a, e.b)
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the positions.
//
// Returns:
//   - mgl32.Vec3: minimum corner
//   - mgl32.Vec3: maximum corner
func (g *Geometry) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if len(g.Positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo, hi := g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

// Transform is a decomposed object transform. Rotation holds Euler angles in radians applied in XYZ order.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// NewTransform returns an identity transform.
func NewTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix composes the transform as T * Rx * Ry * Rz * S.
//
// Returns:
//   - mgl32.Mat4: the model matrix
func (t Transform) Matrix() mgl32.Mat4 {
	r := mgl32.HomogRotate3DX(t.Rotation.X()).
		Mul4(mgl32.HomogRotate3DY(t.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation.Z()))
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(r).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}
