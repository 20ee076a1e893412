package renderer

import (
	_ "embed"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/mo-kasiri/Three-IK/engine/light"
	"github.com/mo-kasiri/Three-IK/engine/renderer/pipeline"
)

// Keys of the pipelines returned by StandardPipelines.
const (
	PipelineMeshFill    = "mesh_fill"
	PipelineMeshWire    = "mesh_wire"
	PipelineSkinnedFill = "skinned_fill"
	PipelineSkinnedWire = "skinned_wire"
	PipelineLines       = "lines"
)

// FrameSource declares the Frame uniform at @group(0) @binding(0). It depends on light.GPULightSource.
//
//go:embed assets/frame.wgsl
var FrameSource string

//go:embed assets/mesh.wgsl
var meshSource string

//go:embed assets/skinned.wgsl
var skinnedSource string

//go:embed assets/lines.wgsl
var linesSource string

// SkinnedPipelineKey maps a mesh pipeline key to its vertex-skinned variant. Other keys are returned unchanged.
func SkinnedPipelineKey(key string) string {
	switch key {
	case PipelineMeshFill:
		return PipelineSkinnedFill
	case PipelineMeshWire:
		return PipelineSkinnedWire
	}
	return key
}

// FrameBindGroupLayout describes group 0: the per-frame camera and lights.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: one uniform buffer of FrameUniformSize bytes
func FrameBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return uniformLayout("Frame", FrameUniformSize)
}

// ObjectBindGroupLayout describes group 1: the per-object transform and material.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: one uniform buffer of ObjectUniformSize bytes
func ObjectBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return uniformLayout("Object", ObjectUniformSize)
}

// SkinBindGroupLayout describes group 2 of the skinned pipelines: the bone palette as a read-only storage array.
// Create it with a size override of BonePaletteSize(boneCount) on binding 0.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: one storage buffer holding at least one bone matrix
func SkinBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Skin Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: BoneMatrixSize,
				},
			},
		},
	}
}

func uniformLayout(label string, size uint64) wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: label + " Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			},
		},
	}
}

// MeshVertexLayout is the buffer layout of MeshVertex.
func MeshVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: MeshVertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}
}

// SkinnedVertexLayout is the buffer layout of SkinnedVertex.
func SkinnedVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: SkinnedVertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatUint16x4, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},
		},
	}
}

// LineVertexLayout is the buffer layout of geometry.LineVertex.
func LineVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: LineVertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}
}

// StandardPipelines returns the pipelines the demo draws with:
//   - mesh_fill: lit triangles, double sided
//   - mesh_wire: lit line list over a mesh's edge indices
//   - skinned_fill, skinned_wire: the same two, with vertices blended by the group 2 bone palette
//   - lines: vertex-colored line list drawn over everything
//
// Returns:
//   - []pipeline.Pipeline: unregistered pipeline descriptions
func StandardPipelines() []pipeline.Pipeline {
	lit := light.GPULightSource + FrameSource + meshSource
	groups := pipeline.WithBindGroupLayouts(FrameBindGroupLayout(), ObjectBindGroupLayout())
	skinned := lit + skinnedSource
	skinGroups := pipeline.WithBindGroupLayouts(FrameBindGroupLayout(), ObjectBindGroupLayout(), SkinBindGroupLayout())

	return []pipeline.Pipeline{
		pipeline.NewPipeline(PipelineMeshFill,
			pipeline.WithShader(lit, "vs_main", "fs_main"),
			pipeline.WithVertexLayouts(MeshVertexLayout()),
			groups,
			pipeline.WithCullMode(wgpu.CullModeNone),
			pipeline.WithBlendEnabled(false),
		),
		pipeline.NewPipeline(PipelineMeshWire,
			pipeline.WithShader(lit, "vs_main", "fs_main"),
			pipeline.WithVertexLayouts(MeshVertexLayout()),
			groups,
			pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
			pipeline.WithBlendEnabled(false),
		),
		pipeline.NewPipeline(PipelineSkinnedFill,
			pipeline.WithShader(skinned, "vs_skinned", "fs_main"),
			pipeline.WithVertexLayouts(SkinnedVertexLayout()),
			skinGroups,
			pipeline.WithCullMode(wgpu.CullModeNone),
			pipeline.WithBlendEnabled(false),
		),
		pipeline.NewPipeline(PipelineSkinnedWire,
			pipeline.WithShader(skinned, "vs_skinned", "fs_main"),
			pipeline.WithVertexLayouts(SkinnedVertexLayout()),
			skinGroups,
			pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
			pipeline.WithBlendEnabled(false),
		),
		pipeline.NewPipeline(PipelineLines,
			pipeline.WithShader(light.GPULightSource+FrameSource+linesSource, "vs_main", "fs_main"),
			pipeline.WithVertexLayouts(LineVertexLayout()),
			pipeline.WithBindGroupLayouts(FrameBindGroupLayout()),
			pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
			pipeline.WithDepthTestEnabled(false),
			pipeline.WithDepthWriteEnabled(false),
		),
	}
}
