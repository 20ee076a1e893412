package game_object

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/model"
	"github.com/mo-kasiri/Three-IK/engine/renderer/animator"
	"github.com/mo-kasiri/Three-IK/engine/renderer/material"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithName sets the object name.
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithEnabled sets whether the GameObject is drawn.
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithModel sets the Model for this GameObject.
//
// Parameters:
//   - m: the Model to associate
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Model
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mdl = m
	}
}

// WithMaterial sets the Material for this GameObject.
//
// Parameters:
//   - m: the Material to draw with, may be shared between objects
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Material
func WithMaterial(m material.Material) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mat = m
	}
}

// WithPosition sets the initial position.
func WithPosition(p mgl32.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform.Position = p
	}
}

// WithRotation sets the initial XYZ Euler rotation in radians.
func WithRotation(r mgl32.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform.Rotation = r
	}
}

// WithScale sets the initial scale.
func WithScale(s mgl32.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform.Scale = s
	}
}

// WithAnimator attaches the animator that skins the object's model. The scene initializes it when the object is
// added and draws the object with the skinned pipelines when the animator has a palette.
//
// Parameters:
//   - a: an animator created with animator.WithModel for this object's model
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Animator
func WithAnimator(a animator.Animator) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.anim = a
	}
}
