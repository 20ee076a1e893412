package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/common"
	"github.com/mo-kasiri/Three-IK/engine/geometry"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
	"github.com/mo-kasiri/Three-IK/engine/renderer/bind_group_provider"
)

var (
	// ErrStaticModel is returned when vertices of a model created without WithDynamic are updated.
	ErrStaticModel = errors.New("model is static")
	// ErrVertexCount is returned when an update does not supply one position and normal per vertex.
	ErrVertexCount = errors.New("vertex count mismatch")
	// ErrNoGeometry is returned by Init for a model without geometry.
	ErrNoGeometry = errors.New("model has no geometry")
)

// model is the implementation of the Model interface.
type model struct {
	mu *sync.Mutex

	name     string
	geometry *geometry.Geometry
	dynamic  bool

	// fillProvider owns the vertex buffer and the triangle indices; wireProvider borrows the vertices and owns
	// the edge indices.
	fillProvider bind_group_provider.BindGroupProvider
	wireProvider bind_group_provider.BindGroupProvider

	// joints and weights are set for models skinned in the vertex shader; their vertices upload as SkinnedVertex.
	joints  [][4]uint16
	weights [][4]float32

	vertices        []renderer.MeshVertex
	skinnedVertices []renderer.SkinnedVertex
	initialized     bool
}

// Model is the GPU side of a mesh: one vertex buffer drawn either as triangles or as its unique edges.
// Dynamic models accept new vertex data every frame, which is how CPU skinning results reach the GPU. Skinned
// models carry four joint indices and weights per vertex for the skinned pipelines.
type Model interface {
	// Name returns the model name, used as the GPU debug label.
	Name() string

	// Geometry returns the rest geometry the model was created from.
	Geometry() *geometry.Geometry

	// Dynamic reports whether UpdateVertices is allowed.
	Dynamic() bool

	// Skinned reports whether the vertex buffer carries joint influences, i.e. the model was created WithSkin.
	Skinned() bool

	// Initialized reports whether Init has uploaded the buffers.
	Initialized() bool

	// Init uploads the rest vertices, the triangle indices and the edge indices. Calling it again is a no-op.
	//
	// Parameters:
	//   - r: the renderer owning the GPU device
	//
	// Returns:
	//   - error: ErrNoGeometry, ErrVertexCount for skin data of the wrong length, or a buffer creation error
	Init(r renderer.Renderer) error

	// UpdateVertices uploads new positions and normals for every vertex.
	//
	// Parameters:
	//   - r: the renderer the model was initialized with
	//   - positions: one position per vertex
	//   - normals: one normal per vertex
	//
	// Returns:
	//   - error: ErrStaticModel, ErrVertexCount or an upload error
	UpdateVertices(r renderer.Renderer, positions, normals []mgl32.Vec3) error

	// MeshProvider returns the provider to draw with.
	//
	// Parameters:
	//   - wireframe: true for the edge list, false for triangles
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider, nil before Init
	MeshProvider(wireframe bool) bind_group_provider.BindGroupProvider

	// Release releases the GPU buffers.
	Release()
}

var _ Model = &model{}

// NewModel creates a model. Buffers are created by Init.
//
// Parameters:
//   - options: model builder options, WithGeometry is required before Init
//
// Returns:
//   - Model: the new model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		mu:   &sync.Mutex{},
		name: "Model",
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Geometry() *geometry.Geometry {
	return m.geometry
}

func (m *model) Dynamic() bool {
	return m.dynamic
}

func (m *model) Skinned() bool {
	return m.joints != nil
}

func (m *model) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

func (m *model) Init(r renderer.Renderer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}
	if m.geometry == nil || m.geometry.VertexCount() == 0 {
		return fmt.Errorf("%s: %w", m.name, ErrNoGeometry)
	}

	g := m.geometry
	if m.Skinned() && (len(m.joints) != g.VertexCount() || len(m.weights) != g.VertexCount()) {
		return fmt.Errorf("%s: %d joints, %d weights for %d vertices: %w",
			m.name, len(m.joints), len(m.weights), g.VertexCount(), ErrVertexCount)
	}

	fill := bind_group_provider.NewBindGroupProvider(m.name + " Fill")
	fill.SetVertexCount(g.VertexCount())
	if err := r.InitMeshBuffers(fill, m.pack(g.Positions, g.Normals), common.SliceToBytes(g.Indices), len(g.Indices)); err != nil {
		return fmt.Errorf("%s: %w", m.name, err)
	}

	wire := bind_group_provider.NewBindGroupProvider(m.name + " Wire")
	wire.ShareVertexBuffer(fill)
	edges := g.WireIndices()
	if err := r.InitIndexBuffer(wire, common.SliceToBytes(edges), len(edges)); err != nil {
		fill.Release()
		return fmt.Errorf("%s: %w", m.name, err)
	}

	m.fillProvider = fill
	m.wireProvider = wire
	m.initialized = true
	return nil
}

func (m *model) UpdateVertices(r renderer.Renderer, positions, normals []mgl32.Vec3) error {
	if !m.dynamic {
		return fmt.Errorf("%s: %w", m.name, ErrStaticModel)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(positions) != m.geometry.VertexCount() || len(normals) != len(positions) {
		return fmt.Errorf("%s: %d positions, %d normals for %d vertices: %w",
			m.name, len(positions), len(normals), m.geometry.VertexCount(), ErrVertexCount)
	}
	if !m.initialized {
		return fmt.Errorf("%s: not initialized", m.name)
	}

	return r.WriteVertexBuffer(m.fillProvider, m.pack(positions, normals))
}

// pack interleaves vertex data in the layout of the model's pipelines. The caller holds m.mu.
func (m *model) pack(positions, normals []mgl32.Vec3) []byte {
	if m.Skinned() {
		m.skinnedVertices = renderer.PackSkinnedVertices(m.skinnedVertices, positions, normals, m.joints, m.weights)
		return common.SliceToBytes(m.skinnedVertices)
	}
	m.vertices = renderer.PackMeshVertices(m.vertices, positions, normals)
	return common.SliceToBytes(m.vertices)
}

func (m *model) MeshProvider(wireframe bool) bind_group_provider.BindGroupProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	if wireframe {
		return m.wireProvider
	}
	return m.fillProvider
}

func (m *model) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.wireProvider != nil {
		m.wireProvider.Release()
		m.wireProvider = nil
	}
	if m.fillProvider != nil {
		m.fillProvider.Release()
		m.fillProvider = nil
	}
	m.initialized = false
}
