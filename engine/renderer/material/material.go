package material

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
)

// material is the implementation of the Material interface.
type material struct {
	mu *sync.Mutex

	name      string
	color     mgl32.Vec3
	roughness float32
	wireframe bool
}

// Material is a lit surface description shared by any number of objects. The wireframe flag is read at draw time,
// so toggling it on a shared material switches every object using it between filled and edge rendering.
type Material interface {
	// Name returns the material name.
	Name() string

	// Color returns the linear RGB base color.
	Color() mgl32.Vec3

	// Roughness returns the roughness in [0, 1].
	Roughness() float32

	// Wireframe reports whether objects are drawn as edges.
	Wireframe() bool

	// SetWireframe switches between filled and edge rendering.
	//
	// Parameters:
	//   - enabled: true to draw edges
	SetWireframe(enabled bool)

	// PipelineKey returns the pipeline objects with this material are drawn with.
	//
	// Returns:
	//   - string: renderer.PipelineMeshWire in wireframe mode, otherwise renderer.PipelineMeshFill
	PipelineKey() string

	// ObjectUniform builds the per-object uniform for an object drawn with this material.
	//
	// Parameters:
	//   - model: the object's model matrix
	//
	// Returns:
	//   - renderer.GPUObjectUniform: the uniform ready to marshal
	ObjectUniform(model mgl32.Mat4) renderer.GPUObjectUniform
}

var _ Material = &material{}

// NewMaterial creates a white, fully rough, filled material.
//
// Parameters:
//   - options: material builder options
//
// Returns:
//   - Material: the new material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		mu:        &sync.Mutex{},
		color:     mgl32.Vec3{1, 1, 1},
		roughness: 1.0,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Color() mgl32.Vec3 {
	return m.color
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Wireframe() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wireframe
}

func (m *material) SetWireframe(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wireframe = enabled
}

func (m *material) PipelineKey() string {
	if m.Wireframe() {
		return renderer.PipelineMeshWire
	}
	return renderer.PipelineMeshFill
}

func (m *material) ObjectUniform(model mgl32.Mat4) renderer.GPUObjectUniform {
	return renderer.GPUObjectUniform{
		Model:     model,
		Color:     m.color,
		Roughness: m.roughness,
	}
}
