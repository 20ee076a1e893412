package renderer

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/light"
)

const (
	// FrameUniformSize is the size in bytes of the group 0 uniform.
	FrameUniformSize = 176
	// ObjectUniformSize is the size in bytes of the group 1 uniform.
	ObjectUniformSize = 80
	// MeshVertexStride is the size in bytes of one MeshVertex.
	MeshVertexStride = 24
	// LineVertexStride is the size in bytes of one geometry.LineVertex.
	LineVertexStride = 24
	// SkinnedVertexStride is the size in bytes of one SkinnedVertex.
	SkinnedVertexStride = 48
	// BoneMatrixSize is the size in bytes of one bone palette entry.
	BoneMatrixSize = 64
)

// MeshVertex is the interleaved vertex layout of lit meshes.
type MeshVertex struct {
	Position mgl32.Vec3 // location 0
	Normal   mgl32.Vec3 // location 1
}

// PackMeshVertices interleaves positions and normals into dst, reusing its capacity.
//
// Parameters:
//   - dst: slice to reuse, may be nil
//   - positions: vertex positions
//   - normals: vertex normals, same length as positions
//
// Returns:
//   - []MeshVertex: the interleaved vertices
func PackMeshVertices(dst []MeshVertex, positions, normals []mgl32.Vec3) []MeshVertex {
	dst = dst[:0]
	for i, p := range positions {
		dst = append(dst, MeshVertex{Position: p, Normal: normals[i]})
	}
	return dst
}

// SkinnedVertex is the interleaved vertex layout of meshes skinned in the vertex shader.
type SkinnedVertex struct {
	Position mgl32.Vec3 // location 0
	Normal   mgl32.Vec3 // location 1
	Joints   [4]uint16  // location 2, offset 24
	Weights  [4]float32 // location 3, offset 32
}

// PackSkinnedVertices interleaves positions, normals and per-vertex joint influences into dst, reusing its capacity.
//
// Parameters:
//   - dst: slice to reuse, may be nil
//   - positions: rest positions
//   - normals: rest normals, same length as positions
//   - joints: four bone indices per vertex, same length as positions
//   - weights: four weights per vertex, same length as positions
//
// Returns:
//   - []SkinnedVertex: the interleaved vertices
func PackSkinnedVertices(dst []SkinnedVertex, positions, normals []mgl32.Vec3, joints [][4]uint16, weights [][4]float32) []SkinnedVertex {
	dst = dst[:0]
	for i, p := range positions {
		dst = append(dst, SkinnedVertex{Position: p, Normal: normals[i], Joints: joints[i], Weights: weights[i]})
	}
	return dst
}

// BonePaletteSize returns the byte size of a palette holding count bone matrices.
func BonePaletteSize(count int) uint64 {
	return uint64(max(count, 1)) * BoneMatrixSize
}

// MarshalBonePalette packs skin matrices column-major into dst, growing it if needed.
//
// Parameters:
//   - dst: slice to reuse, may be nil
//   - matrices: one skin matrix per bone, in bone index order
//
// Returns:
//   - []byte: len(matrices)*BoneMatrixSize bytes
func MarshalBonePalette(dst []byte, matrices []mgl32.Mat4) []byte {
	n := len(matrices) * BoneMatrixSize
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, m := range matrices {
		putMat4(dst[i*BoneMatrixSize:], m)
	}
	return dst
}

// GPUFrameUniform is bound at @group(0) @binding(0) of every pipeline.
type GPUFrameUniform struct {
	ViewProjection mgl32.Mat4     // offset   0
	CameraPosition mgl32.Vec3     // offset  64, padded to 16
	Ambient        light.GPULight // offset  80
	Point          light.GPULight // offset 128
}

// Marshal packs the uniform into its 176-byte std140-compatible layout.
//
// Returns:
//   - []byte: FrameUniformSize bytes
func (u *GPUFrameUniform) Marshal() []byte {
	buf := make([]byte, FrameUniformSize)
	putMat4(buf[0:], u.ViewProjection)
	putFloats(buf[64:], u.CameraPosition[:]...)
	u.Ambient.MarshalTo(buf[80:])
	u.Point.MarshalTo(buf[128:])
	return buf
}

// GPUObjectUniform is bound at @group(1) @binding(0) of the mesh pipelines.
type GPUObjectUniform struct {
	Model     mgl32.Mat4 // offset  0
	Color     mgl32.Vec3 // offset 64
	Roughness float32    // offset 76
}

// Marshal packs the uniform into its 80-byte layout.
//
// Returns:
//   - []byte: ObjectUniformSize bytes
func (u *GPUObjectUniform) Marshal() []byte {
	buf := make([]byte, ObjectUniformSize)
	putMat4(buf[0:], u.Model)
	putFloats(buf[64:], u.Color[0], u.Color[1], u.Color[2], u.Roughness)
	return buf
}

// putMat4 writes m column-major, which is both the mgl32 and the WGSL layout.
func putMat4(buf []byte, m mgl32.Mat4) {
	putFloats(buf, m[:]...)
}

func putFloats(buf []byte, v ...float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}
