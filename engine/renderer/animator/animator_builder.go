package animator

import (
	"github.com/mo-kasiri/Three-IK/engine/model"
	"github.com/mo-kasiri/Three-IK/engine/skin"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithModel sets the model the Animator skins.
//
// Parameters:
//   - m: a model created with model.WithSkin for the GPU backend, or model.WithDynamic for the CPU backend
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the model option to an animator
func WithModel(m model.Model) AnimatorBuilderOption {
	return func(a *animator) {
		a.model = m
	}
}

// WithBoneCount sets the number of skin matrices per update, which sizes the bone palette.
func WithBoneCount(count int) AnimatorBuilderOption {
	return func(a *animator) {
		a.boneCount = count
	}
}

// WithDeformer hands the CPU backend its deformer. The animator closes it on Release. Ignored by the GPU backend.
//
// Parameters:
//   - d: a deformer bound to the model's rest geometry
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the deformer option to an animator
func WithDeformer(d skin.Deformer) AnimatorBuilderOption {
	return func(a *animator) {
		if b, ok := a.backend.(*deformerAnimatorBackendImpl); ok {
			b.setDeformer(d)
		}
	}
}
