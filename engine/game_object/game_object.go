package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/geometry"
	"github.com/mo-kasiri/Three-IK/engine/model"
	"github.com/mo-kasiri/Three-IK/engine/renderer/animator"
	"github.com/mo-kasiri/Three-IK/engine/renderer/bind_group_provider"
	"github.com/mo-kasiri/Three-IK/engine/renderer/material"
)

type gameObject struct {
	mu *sync.Mutex

	id        uint64
	name      string
	enabled   atomic.Bool
	mdl       model.Model
	mat       material.Material
	anim      animator.Animator
	transform geometry.Transform

	// objectProvider holds the per-object uniform, created when the object is added to a scene
	objectProvider bind_group_provider.BindGroupProvider
}

// GameObject is a scene entity: a model drawn with a material at a transform.
type GameObject interface {
	// ID returns the object's identifier, assigned by the scene when zero.
	ID() uint64

	// SetID sets the object's identifier.
	SetID(id uint64)

	// Name returns the object name.
	Name() string

	// Enabled returns whether this object is drawn.
	Enabled() bool

	// SetEnabled shows or hides the object.
	SetEnabled(enabled bool)

	// Model returns the object's mesh.
	Model() model.Model

	// Material returns the object's material.
	Material() material.Material

	// Animator returns the animator skinning the object's model, or nil for rigid objects.
	Animator() animator.Animator

	// Transform returns the object's transform.
	Transform() geometry.Transform

	// SetTransform replaces the object's transform.
	//
	// Parameters:
	//   - t: the new transform
	SetTransform(t geometry.Transform)

	// SetPosition moves the object.
	SetPosition(p mgl32.Vec3)

	// SetRotation sets the XYZ Euler rotation in radians.
	SetRotation(r mgl32.Vec3)

	// ModelMatrix returns the composed transform matrix.
	ModelMatrix() mgl32.Mat4

	// ObjectProvider returns the bind group provider holding the object uniform.
	ObjectProvider() bind_group_provider.BindGroupProvider

	// SetObjectProvider sets the bind group provider holding the object uniform.
	SetObjectProvider(p bind_group_provider.BindGroupProvider)
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled object with an identity transform.
//
// Parameters:
//   - options: functional options, WithModel and WithMaterial are required to draw it
//
// Returns:
//   - GameObject: the new object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:        &sync.Mutex{},
		transform: geometry.NewTransform(),
	}
	obj.enabled.Store(true)
	for _, opt := range options {
		opt(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Animator() animator.Animator {
	return g.anim
}

func (g *gameObject) Material() material.Material {
	return g.mat
}

func (g *gameObject) Transform() geometry.Transform {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.transform
}

func (g *gameObject) SetTransform(t geometry.Transform) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform = t
}

func (g *gameObject) SetPosition(p mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform.Position = p
}

func (g *gameObject) SetRotation(r mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform.Rotation = r
}

func (g *gameObject) ModelMatrix() mgl32.Mat4 {
	return g.Transform().Matrix()
}

func (g *gameObject) ObjectProvider() bind_group_provider.BindGroupProvider {
	return g.objectProvider
}

func (g *gameObject) SetObjectProvider(p bind_group_provider.BindGroupProvider) {
	g.objectProvider = p
}
