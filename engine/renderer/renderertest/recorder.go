// Package renderertest provides a GPU-free renderer.Renderer that records what it is asked to do.
package renderertest

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
	"github.com/mo-kasiri/Three-IK/engine/renderer/bind_group_provider"
	"github.com/mo-kasiri/Three-IK/engine/renderer/pipeline"
)

// Draw is one recorded draw call.
type Draw struct {
	Pipeline   string
	Mesh       string
	BindGroups []string
	Indexed    bool
	Count      int
}

// Recorder implements renderer.Renderer without a device. Buffers are tracked by size only.
type Recorder struct {
	mu *sync.Mutex

	pipelines map[string]pipeline.Pipeline

	Draws        []Draw
	BufferWrites []bind_group_provider.BufferWrite
	VertexWrites map[string][]byte
	Frames       int
	Width        int
	Height       int

	// BindGroupSizes holds the buffer size of every binding created by InitBindGroup, keyed by provider label.
	BindGroupSizes map[string]map[int]uint64
}

var _ renderer.Renderer = &Recorder{}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		mu:             &sync.Mutex{},
		pipelines:      make(map[string]pipeline.Pipeline),
		VertexWrites:   make(map[string][]byte),
		BindGroupSizes: make(map[string]map[int]uint64),
	}
}

func (r *Recorder) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines[key]
}

func (r *Recorder) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		if err := p.Validate(); err != nil {
			return err
		}
		r.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (r *Recorder) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Width, r.Height = width, height
}

func (r *Recorder) SetPresentMode(renderer.PresentMode) {}

func (r *Recorder) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	provider.SetVertexBuffer(nil, uint64(len(vertexData)))
	r.record(provider, vertexData)
	if len(indexData) > 0 {
		provider.SetIndexCount(indexCount)
	}
	return nil
}

func (r *Recorder) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, capacity uint64) error {
	provider.SetVertexBuffer(nil, capacity)
	return nil
}

func (r *Recorder) InitIndexBuffer(provider bind_group_provider.BindGroupProvider, _ []byte, indexCount int) error {
	provider.SetIndexCount(indexCount)
	return nil
}

func (r *Recorder) WriteVertexBuffer(provider bind_group_provider.BindGroupProvider, data []byte) error {
	if uint64(len(data)) > provider.VertexCapacity() {
		return fmt.Errorf("%s: %w", provider.Label(), renderer.ErrVertexOverflow)
	}
	r.record(provider, data)
	return nil
}

func (r *Recorder) record(provider bind_group_provider.BindGroupProvider, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.VertexWrites[provider.Label()] = append([]byte(nil), data...)
}

func (r *Recorder) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sizes := make(map[int]uint64, len(descriptor.Entries))
	for _, entry := range descriptor.Entries {
		size := entry.Buffer.MinBindingSize
		if override, ok := bufferSizeOverrides[int(entry.Binding)]; ok {
			size = override
		}
		sizes[int(entry.Binding)] = size
	}
	r.BindGroupSizes[provider.Label()] = sizes
	return nil
}

func (r *Recorder) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range writes {
		w.Data = append([]byte(nil), w.Data...)
		r.BufferWrites = append(r.BufferWrites, w)
	}
}

func (r *Recorder) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Frames++
	return nil
}

func (r *Recorder) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, _ uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pipelines[pipelineKey]; !ok {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	d := Draw{Pipeline: pipelineKey, Mesh: meshProvider.Label(), Indexed: meshProvider.Indexed()}
	if d.Indexed {
		d.Count = meshProvider.IndexCount()
	} else {
		d.Count = meshProvider.VertexCount()
	}
	for _, bg := range bindGroups {
		d.BindGroups = append(d.BindGroups, bg.Label())
	}
	r.Draws = append(r.Draws, d)
	return nil
}

func (r *Recorder) EndFrame() {}

func (r *Recorder) Present() {}

func (r *Recorder) Release() {}

// Reset clears recorded draws and writes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Draws = nil
	r.BufferWrites = nil
	r.VertexWrites = make(map[string][]byte)
}
