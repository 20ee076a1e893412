package renderer

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/common"
	"github.com/mo-kasiri/Three-IK/engine/geometry"
	"github.com/mo-kasiri/Three-IK/engine/light"
	"github.com/mo-kasiri/Three-IK/engine/renderer/pipeline"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestFrameUniformLayout(t *testing.T) {
	amb := light.NewAmbientLight(0xffffff, 0.5)
	pt := light.NewPointLight(0xff9000, 0.5, 10, 2)
	pt.SetPosition(mgl32.Vec3{1, -0.5, 1})

	u := GPUFrameUniform{
		ViewProjection: mgl32.Translate3D(7, 8, 9),
		CameraPosition: mgl32.Vec3{1, 1, 2},
		Ambient:        amb.GPU(),
		Point:          pt.GPU(),
	}
	buf := u.Marshal()
	if len(buf) != FrameUniformSize {
		t.Fatalf("len = %d, want %d", len(buf), FrameUniformSize)
	}

	// Column-major translation lives in elements 12..14.
	if f32At(buf, 48) != 7 || f32At(buf, 52) != 8 || f32At(buf, 56) != 9 {
		t.Errorf("translation not column-major: %v %v %v", f32At(buf, 48), f32At(buf, 52), f32At(buf, 56))
	}
	if f32At(buf, 64) != 1 || f32At(buf, 68) != 1 || f32At(buf, 72) != 2 {
		t.Errorf("camera position = (%v, %v, %v)", f32At(buf, 64), f32At(buf, 68), f32At(buf, 72))
	}
	if got := f32At(buf, 80+28); got != 0.5 {
		t.Errorf("ambient intensity = %v, want 0.5", got)
	}
	if got := binary.LittleEndian.Uint32(buf[128+12:]); got != uint32(light.LightTypePoint) {
		t.Errorf("point light type = %d", got)
	}
	if got := f32At(buf, 128+32); got != 10 {
		t.Errorf("point light range = %v, want 10", got)
	}
}

func TestObjectUniformLayout(t *testing.T) {
	u := GPUObjectUniform{Model: mgl32.Ident4(), Color: mgl32.Vec3{1, 0.5, 0.25}, Roughness: 0.4}
	buf := u.Marshal()
	if len(buf) != ObjectUniformSize {
		t.Fatalf("len = %d, want %d", len(buf), ObjectUniformSize)
	}
	if f32At(buf, 0) != 1 || f32At(buf, 20) != 1 || f32At(buf, 4) != 0 {
		t.Error("model matrix not identity")
	}
	if f32At(buf, 64) != 1 || f32At(buf, 68) != 0.5 || f32At(buf, 72) != 0.25 {
		t.Errorf("color = (%v, %v, %v)", f32At(buf, 64), f32At(buf, 68), f32At(buf, 72))
	}
	if f32At(buf, 76) != 0.4 {
		t.Errorf("roughness = %v, want 0.4", f32At(buf, 76))
	}
}

func TestVertexStridesMatchGoTypes(t *testing.T) {
	if got := int(unsafe.Sizeof(MeshVertex{})); got != MeshVertexStride {
		t.Errorf("MeshVertex size = %d, want %d", got, MeshVertexStride)
	}
	if got := int(unsafe.Sizeof(geometry.LineVertex{})); got != LineVertexStride {
		t.Errorf("LineVertex size = %d, want %d", got, LineVertexStride)
	}

	if got := int(unsafe.Sizeof(SkinnedVertex{})); got != SkinnedVertexStride {
		t.Errorf("SkinnedVertex size = %d, want %d", got, SkinnedVertexStride)
	}

	verts := PackMeshVertices(nil, []mgl32.Vec3{{1, 2, 3}}, []mgl32.Vec3{{0, 1, 0}})
	b := common.SliceToBytes(verts)
	if f32At(b, 12) != 0 || f32At(b, 16) != 1 {
		t.Errorf("normal not at offset 12: %v", verts)
	}
}

func TestPackSkinnedVertices(t *testing.T) {
	verts := PackSkinnedVertices(nil,
		[]mgl32.Vec3{{1, 2, 3}, {4, 5, 6}},
		[]mgl32.Vec3{{0, 1, 0}, {1, 0, 0}},
		[][4]uint16{{0, 1, 0, 0}, {4, 5, 0, 0}},
		[][4]float32{{1, 0, 0, 0}, {0.75, 0.25, 0, 0}},
	)
	b := common.SliceToBytes(verts)
	if len(b) != 2*SkinnedVertexStride {
		t.Fatalf("packed %d bytes, want %d", len(b), 2*SkinnedVertexStride)
	}

	second := b[SkinnedVertexStride:]
	if f32At(second, 0) != 4 || f32At(second, 12) != 1 {
		t.Errorf("position or normal misplaced: %v", verts[1])
	}
	if binary.LittleEndian.Uint16(second[24:]) != 4 || binary.LittleEndian.Uint16(second[26:]) != 5 {
		t.Errorf("joints not at offset 24: %v", second[24:32])
	}
	if f32At(second, 32) != 0.75 || f32At(second, 36) != 0.25 {
		t.Errorf("weights not at offset 32: %v", verts[1].Weights)
	}

	// Attribute offsets in the layout must agree with the Go struct.
	layout := SkinnedVertexLayout()
	wantOffsets := []uint64{
		uint64(unsafe.Offsetof(SkinnedVertex{}.Position)),
		uint64(unsafe.Offsetof(SkinnedVertex{}.Normal)),
		uint64(unsafe.Offsetof(SkinnedVertex{}.Joints)),
		uint64(unsafe.Offsetof(SkinnedVertex{}.Weights)),
	}
	for i, attr := range layout.Attributes {
		if attr.Offset != wantOffsets[i] {
			t.Errorf("location %d at offset %d, struct field at %d", attr.ShaderLocation, attr.Offset, wantOffsets[i])
		}
	}
}

func TestMarshalBonePalette(t *testing.T) {
	mats := []mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(1, 2, 3)}
	buf := MarshalBonePalette(nil, mats)
	if len(buf) != 2*BoneMatrixSize {
		t.Fatalf("len = %d, want %d", len(buf), 2*BoneMatrixSize)
	}
	if f32At(buf, 0) != 1 || f32At(buf, 60) != 1 {
		t.Error("first matrix is not identity")
	}
	if f32At(buf, 64+48) != 1 || f32At(buf, 64+52) != 2 || f32At(buf, 64+56) != 3 {
		t.Error("second matrix translation not column-major")
	}

	reused := MarshalBonePalette(buf, mats[:1])
	if len(reused) != BoneMatrixSize || &reused[0] != &buf[0] {
		t.Error("palette buffer was not reused")
	}
	if BonePaletteSize(0) != BoneMatrixSize || BonePaletteSize(7) != 7*BoneMatrixSize {
		t.Errorf("BonePaletteSize(0, 7) = %d, %d", BonePaletteSize(0), BonePaletteSize(7))
	}
}

func TestStandardPipelines(t *testing.T) {
	ps := StandardPipelines()
	byKey := make(map[string]pipeline.Pipeline, len(ps))
	for _, p := range ps {
		if err := p.Validate(); err != nil {
			t.Fatalf("Validate(%s): %v", p.PipelineKey(), err)
		}
		if !strings.Contains(p.Source(), "struct Light") || !strings.Contains(p.Source(), "var<uniform> frame") {
			t.Errorf("%s: source is missing shared declarations", p.PipelineKey())
		}
		byKey[p.PipelineKey()] = p
	}

	fill, wire, lines := byKey[PipelineMeshFill], byKey[PipelineMeshWire], byKey[PipelineLines]
	if fill == nil || wire == nil || lines == nil {
		t.Fatalf("missing pipelines: %v", byKey)
	}
	if fill.Topology() != wgpu.PrimitiveTopologyTriangleList || fill.CullMode() != wgpu.CullModeNone {
		t.Error("mesh_fill must draw double-sided triangles")
	}
	if wire.Topology() != wgpu.PrimitiveTopologyLineList {
		t.Error("mesh_wire must draw a line list")
	}
	if lines.DepthTestEnabled() || lines.DepthWriteEnabled() {
		t.Error("lines must draw over the scene")
	}
	if len(fill.BindGroupLayouts()) != 2 || len(lines.BindGroupLayouts()) != 1 {
		t.Error("unexpected bind group count")
	}

	for _, key := range []string{PipelineSkinnedFill, PipelineSkinnedWire} {
		p := byKey[key]
		if p == nil {
			t.Fatalf("missing %s", key)
		}
		if p.VertexEntryPoint() != "vs_skinned" || !strings.Contains(p.Source(), "var<storage, read> bones") {
			t.Errorf("%s does not skin in the vertex stage", key)
		}
		groups := p.BindGroupLayouts()
		if len(groups) != 3 || groups[2].Entries[0].Buffer.Type != wgpu.BufferBindingTypeReadOnlyStorage {
			t.Errorf("%s: group 2 must be the bone palette storage buffer", key)
		}
	}
	if byKey[PipelineSkinnedWire].Topology() != wgpu.PrimitiveTopologyLineList {
		t.Error("skinned_wire must draw a line list")
	}
}

func TestSkinnedPipelineKey(t *testing.T) {
	tests := map[string]string{
		PipelineMeshFill: PipelineSkinnedFill,
		PipelineMeshWire: PipelineSkinnedWire,
		PipelineLines:    PipelineLines,
	}
	for in, want := range tests {
		if got := SkinnedPipelineKey(in); got != want {
			t.Errorf("SkinnedPipelineKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateRejectsBadLayouts(t *testing.T) {
	p := pipeline.NewPipeline("empty")
	if err := p.Validate(); !errors.Is(err, pipeline.ErrMissingSource) {
		t.Errorf("Validate() = %v, want ErrMissingSource", err)
	}

	short := MeshVertexLayout()
	short.ArrayStride = 16
	p = pipeline.NewPipeline("short", pipeline.WithShader("// wgsl", "vs_main", "fs_main"), pipeline.WithVertexLayouts(short))
	if err := p.Validate(); !errors.Is(err, pipeline.ErrInvalidVertexLayout) {
		t.Errorf("Validate() = %v, want ErrInvalidVertexLayout", err)
	}
}
