package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/mo-kasiri/Three-IK/engine/renderer/bind_group_provider"
	"github.com/mo-kasiri/Three-IK/engine/renderer/pipeline"
	"github.com/mo-kasiri/Three-IK/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	// pipelineCache holds registered pipelines keyed by PipelineKey
	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Applied once the backend exists
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *wgpu.Color
	pendingPipelines     []pipeline.Pipeline
}

// Renderer draws frames to a window surface. Resources are owned by BindGroupProviders that the renderer fills in;
// pipelines are registered once and looked up by key at draw time.
//
// A frame is BeginFrame, any number of DrawCall, EndFrame, Present. Buffer writes may happen at any time before
// EndFrame and are visible to the frame being recorded.
type Renderer interface {
	// Pipeline returns the registered pipeline with the given key, or nil.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline, or nil if none is registered under key
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates GPU pipelines for every description not yet registered.
	//
	// Parameters:
	//   - pipelines: pipeline descriptions
	//
	// Returns:
	//   - error: the first creation error
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface to the given size in pixels.
	Resize(width, height int)

	// SetPresentMode changes the present mode. It takes effect on the next Resize.
	SetPresentMode(mode PresentMode)

	// InitMeshBuffers uploads a mesh into a new vertex buffer and, if indexData is not empty, index buffer.
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitVertexBuffer allocates an empty vertex buffer of capacity bytes for per-frame uploads.
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, capacity uint64) error

	// InitIndexBuffer uploads uint32 indices into a new index buffer on the provider.
	InitIndexBuffer(provider bind_group_provider.BindGroupProvider, indexData []byte, indexCount int) error

	// WriteVertexBuffer overwrites the provider's vertices.
	WriteVertexBuffer(provider bind_group_provider.BindGroupProvider, data []byte) error

	// InitBindGroup creates the buffers and bind group for a layout. Storage entries get storage buffers, the rest
	// uniform buffers.
	//
	// Parameters:
	//   - provider: receives the buffers, layout and bind group
	//   - descriptor: the layout, normally FrameBindGroupLayout, ObjectBindGroupLayout or SkinBindGroupLayout
	//   - bufferSizeOverrides: buffer sizes keyed by binding, replacing MinBindingSize
	//
	// Returns:
	//   - error: an error if GPU object creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers writes staged uniform data to the GPU queue.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and opens the frame's render pass.
	BeginFrame() error

	// DrawCall records a draw of meshProvider with the named pipeline.
	//
	// Parameters:
	//   - pipelineKey: key of a registered pipeline
	//   - meshProvider: provider holding the vertex and optional index buffer
	//   - instanceCount: number of instances, normally 1
	//   - bindGroups: providers bound at group 0, 1, ...
	//
	// Returns:
	//   - error: an error if the pipeline is not registered
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the render pass and submits the frame.
	EndFrame()

	// Present presents the submitted frame.
	Present()

	// Release releases every registered pipeline and the GPU device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the GPU backend for the window's surface, configures the surface to the window's framebuffer
// size and registers any pipelines passed with WithPipelines.
//
// Parameters:
//   - backendType: the GPU API to use
//   - window: the window to render into
//   - options: renderer builder options
//
// Returns:
//   - Renderer: the renderer
//   - error: the first pipeline registration error
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}
	r.backend.ConfigureSurface(window.Width(), window.Height())

	if err := r.RegisterPipelines(r.pendingPipelines...); err != nil {
		r.Release()
		return nil, err
	}
	r.pendingPipelines = nil
	return r, nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, capacity uint64) error {
	return r.backend.InitVertexBuffer(provider, capacity)
}

func (r *renderer) InitIndexBuffer(provider bind_group_provider.BindGroupProvider, indexData []byte, indexCount int) error {
	return r.backend.InitIndexBuffer(provider, indexData, indexCount)
}

func (r *renderer) WriteVertexBuffer(provider bind_group_provider.BindGroupProvider, data []byte) error {
	return r.backend.WriteVertexBuffer(provider, data)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	r.backend.Release()
}
