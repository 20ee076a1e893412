package pipeline

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrMissingSource is returned by Validate when the pipeline has no WGSL source.
	ErrMissingSource = errors.New("pipeline has no shader source")
	// ErrMissingEntryPoint is returned by Validate when a vertex or fragment entry point is empty.
	ErrMissingEntryPoint = errors.New("pipeline is missing a shader entry point")
	// ErrInvalidVertexLayout is returned by Validate when an attribute does not fit its buffer stride.
	ErrInvalidVertexLayout = errors.New("invalid vertex buffer layout")
)

// pipeline is the implementation of the Pipeline interface.
// It holds the WGSL module, its resource layout and the fixed-function state used to create a render pipeline.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	source         string
	vertexEntry    string
	fragmentEntry  string
	vertexLayouts  []wgpu.VertexBufferLayout
	bindGroupDescs []wgpu.BindGroupLayoutDescriptor

	// renderPipeline is set once the backend has created the pipeline
	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline describes a render pipeline: one WGSL module with a vertex and a fragment entry point, the vertex buffer
// layouts and bind group layouts it expects, and the depth, blend, cull and topology state it is created with.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Source returns the WGSL source of the shader module.
	Source() string

	// VertexEntryPoint returns the name of the vertex stage entry point.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the fragment stage entry point.
	FragmentEntryPoint() string

	// VertexLayouts returns the vertex buffer layouts, indexed by vertex buffer slot.
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayouts returns the bind group layout descriptors, indexed by group.
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutDescriptor: one descriptor per @group index used by the shader
	BindGroupLayouts() []wgpu.BindGroupLayoutDescriptor

	// RenderPipeline returns the created GPU pipeline, or nil before registration.
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline sets the render pipeline created by the backend.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// DepthTestEnabled returns whether fragments are depth tested. When false they always pass.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	DepthWriteEnabled() bool

	// DepthBias returns the constant depth bias configured for this pipeline.
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	DepthBiasSlopeScale() float32

	// BlendEnabled returns whether blending is enabled for this pipeline.
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state for this pipeline, or nil if blending is not enabled
	BlendState() *wgpu.BlendState

	// Validate checks that the pipeline description is complete enough to be created on a device.
	//
	// Returns:
	//   - error: ErrMissingSource, ErrMissingEntryPoint or ErrInvalidVertexLayout, wrapped with detail
	Validate() error

	// Release releases the GPU pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new Pipeline with the given key. Unless overridden by options the pipeline depth tests and
// writes depth, draws a triangle list with counter-clockwise front faces, culls nothing and alpha blends.
//
// Parameters:
//   - pipelineKey: the unique identifier for this pipeline
//   - options: optional builder options to customize the pipeline configuration
//
// Returns:
//   - Pipeline: the newly created pipeline
func NewPipeline(pipelineKey string, options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		vertexEntry:       "vs_main",
		fragmentEntry:     "fs_main",
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendEnabled:      true,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Source() string {
	return p.source
}

func (p *pipeline) VertexEntryPoint() string {
	return p.vertexEntry
}

func (p *pipeline) FragmentEntryPoint() string {
	return p.fragmentEntry
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	return p.vertexLayouts
}

func (p *pipeline) BindGroupLayouts() []wgpu.BindGroupLayoutDescriptor {
	return p.bindGroupDescs
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) Validate() error {
	if p.source == "" {
		return fmt.Errorf("%s: %w", p.pipelineKey, ErrMissingSource)
	}
	if p.vertexEntry == "" || p.fragmentEntry == "" {
		return fmt.Errorf("%s: %w", p.pipelineKey, ErrMissingEntryPoint)
	}
	for slot, layout := range p.vertexLayouts {
		for _, attr := range layout.Attributes {
			size := VertexFormatSize(attr.Format)
			if size == 0 || attr.Offset+size > layout.ArrayStride {
				return fmt.Errorf("%s: slot %d location %d: %w", p.pipelineKey, slot, attr.ShaderLocation, ErrInvalidVertexLayout)
			}
		}
	}
	return nil
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}

// VertexFormatSize returns the byte size of a vertex format, or 0 for formats the renderer does not use.
//
// Parameters:
//   - f: the vertex format
//
// Returns:
//   - uint64: size in bytes
func VertexFormatSize(f wgpu.VertexFormat) uint64 {
	switch f {
	case wgpu.VertexFormatFloat32:
		return 4
	case wgpu.VertexFormatFloat32x2:
		return 8
	case wgpu.VertexFormatFloat32x3:
		return 12
	case wgpu.VertexFormatFloat32x4:
		return 16
	case wgpu.VertexFormatUint16x4:
		return 8
	case wgpu.VertexFormatUint32x4:
		return 16
	}
	return 0
}
