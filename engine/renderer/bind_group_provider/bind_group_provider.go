package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the implementation of the BindGroupProvider interface.
type bindGroupProvider struct {
	label string

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	// buffers maps binding index to the uniform buffer bound there
	buffers map[int]*wgpu.Buffer

	// Mesh data. A provider with no index buffer is drawn non-indexed with vertexCount vertices.
	vertexBuffer   *wgpu.Buffer
	vertexCapacity uint64
	vertexCount    int
	indexBuffer    *wgpu.Buffer
	indexCount     int
	// sharedVertices is set when the vertex buffer belongs to another provider and must not be released here.
	sharedVertices bool
}

// BindGroupProvider owns the GPU resources of one drawable or one bind group: a bind group with its layout and
// uniform buffers, and optionally the vertex and index buffers of a mesh.
//
// A provider can borrow another provider's vertex buffer with ShareVertexBuffer, which is how one set of vertices is
// drawn with two index buffers (filled triangles and wireframe edges).
type BindGroupProvider interface {
	// Release releases every GPU resource owned by the provider. Borrowed vertex buffers are left alone.
	Release()

	// Label returns the debug label used for the resources of this provider.
	Label() string

	// BindGroup returns the bind group, or nil before InitBindGroup.
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group was created with.
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer bound at the given binding index, or nil.
	//
	// Parameters:
	//   - binding: the @binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer, or nil if none is bound there
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns every bound buffer keyed by binding index.
	Buffers() map[int]*wgpu.Buffer

	// VertexBuffer returns the vertex buffer, or nil for a pure bind group provider.
	VertexBuffer() *wgpu.Buffer

	// VertexCapacity returns the size in bytes of the vertex buffer.
	VertexCapacity() uint64

	// VertexCount returns the number of vertices drawn by a non-indexed draw.
	VertexCount() int

	// IndexBuffer returns the index buffer, or nil when the mesh is drawn non-indexed.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of uint32 indices in the index buffer.
	IndexCount() int

	// Indexed reports whether draws should use the index buffer.
	Indexed() bool

	// SetBindGroup sets the bind group.
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout sets the bind group layout.
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer binds a buffer at the given binding index.
	//
	// Parameters:
	//   - binding: the @binding index
	//   - buf: the buffer to bind
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetVertexBuffer sets an owned vertex buffer and its size in bytes.
	//
	// Parameters:
	//   - buf: the vertex buffer
	//   - capacity: buffer size in bytes
	SetVertexBuffer(buf *wgpu.Buffer, capacity uint64)

	// SetVertexCount sets the number of vertices drawn by a non-indexed draw.
	SetVertexCount(count int)

	// SetIndexBuffer sets the index buffer.
	SetIndexBuffer(buf *wgpu.Buffer)

	// SetIndexCount sets the number of indices drawn.
	SetIndexCount(count int)

	// ShareVertexBuffer borrows the vertex buffer of another provider. The borrowed buffer is not released by this
	// provider.
	//
	// Parameters:
	//   - from: the provider owning the vertex buffer
	ShareVertexBuffer(from BindGroupProvider)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider. GPU resources are attached later by the renderer.
//
// Parameters:
//   - label: debug label for the provider's GPU resources
//   - options: optional builder options
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) VertexCapacity() uint64 {
	return p.vertexCapacity
}

func (p *bindGroupProvider) VertexCount() int {
	return p.vertexCount
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) Indexed() bool {
	return p.indexBuffer != nil || p.indexCount > 0
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if p.buffers == nil {
		p.buffers = make(map[int]*wgpu.Buffer)
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer, capacity uint64) {
	p.vertexBuffer = buf
	p.vertexCapacity = capacity
	p.sharedVertices = false
}

func (p *bindGroupProvider) SetVertexCount(count int) {
	p.vertexCount = count
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) ShareVertexBuffer(from BindGroupProvider) {
	p.vertexBuffer = from.VertexBuffer()
	p.vertexCapacity = from.VertexCapacity()
	p.vertexCount = from.VertexCount()
	p.sharedVertices = true
}

func (p *bindGroupProvider) Release() {
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	if p.vertexBuffer != nil && !p.sharedVertices {
		p.vertexBuffer.Release()
	}
	p.vertexBuffer = nil
	p.vertexCapacity = 0
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
}
