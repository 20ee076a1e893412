// Package animator applies skeleton skin matrices to a skinned model, either as a GPU bone palette or through a
// CPU deformer.
package animator

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/model"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
	"github.com/mo-kasiri/Three-IK/engine/renderer/bind_group_provider"
)

var (
	// ErrBoneCount is returned when the number of skin matrices does not match the configured bone count.
	ErrBoneCount = errors.New("skin matrix count does not match bone count")
	// ErrNotInitialized is returned by Update before Init.
	ErrNotInitialized = errors.New("animator is not initialized")
	// ErrNoModel is returned by Init for an animator created without WithModel.
	ErrNoModel = errors.New("animator has no model")
	// ErrModelNotSkinned is returned when the GPU backend is given a model without joint influences.
	ErrModelNotSkinned = errors.New("model has no skin attributes")
	// ErrNoDeformer is returned when the CPU backend is initialized without WithDeformer.
	ErrNoDeformer = errors.New("animator has no deformer")
	// ErrUnknownBackend is returned by ParseBackendType for names other than "gpu" and "cpu".
	ErrUnknownBackend = errors.New("unknown skinning backend")
)

// animator is the implementation of the Animator interface.
type animator struct {
	backendType AnimatorBackendType
	backend     AnimatorBackend
	model       model.Model
	boneCount   int
}

// Animator drives the skinning of one model from a skeleton's skin matrices.
//
// Update is called once per frame after the skeleton's world matrices are current. Depending on the backend it either
// stages a bone palette write for the skinned pipelines or deforms the vertices on the CPU and uploads them.
// The scene collects staged writes in Prepare and binds PaletteProvider as group 2 when it is not nil.
type Animator interface {
	// BackendType returns the backend the animator was created with.
	BackendType() AnimatorBackendType

	// Model returns the skinned model.
	Model() model.Model

	// BoneCount returns the number of skin matrices Update expects.
	BoneCount() int

	// Init creates the backend's resources. The model must be initialized first.
	//
	// Parameters:
	//   - r: the renderer owning the model's buffers
	//
	// Returns:
	//   - error: ErrNoModel, a backend precondition error or a GPU resource error
	Init(r renderer.Renderer) error

	// PaletteProvider returns the bone palette bind group provider, nil for CPU skinning.
	PaletteProvider() bind_group_provider.BindGroupProvider

	// Update applies a new set of skin matrices.
	//
	// Parameters:
	//   - skinMatrices: one matrix per bone, e.g. from skeleton.Skeleton.SkinMatrices
	//
	// Returns:
	//   - error: ErrNotInitialized, ErrBoneCount, or a skinning or upload error
	Update(skinMatrices []mgl32.Mat4) error

	// StagedWriteData returns the buffer writes queued by Update and clears them.
	//
	// Returns:
	//   - []bind_group_provider.BufferWrite: writes for renderer.WriteBuffers, valid until the next call
	StagedWriteData() []bind_group_provider.BufferWrite

	// Release frees the backend's resources.
	Release()
}

var _ Animator = &animator{}

// NewAnimator creates an Animator with the given backend.
//
// Parameters:
//   - backendType: BackendTypeGPU or BackendTypeCPU; unknown values fall back to BackendTypeGPU
//   - options: functional options, WithModel and WithBoneCount are required before Init
//
// Returns:
//   - Animator: the new animator
func NewAnimator(backendType AnimatorBackendType, options ...AnimatorBuilderOption) Animator {
	a := &animator{
		backendType: backendType,
	}
	switch backendType {
	case BackendTypeCPU:
		a.backend = newDeformerAnimatorBackend()
	case BackendTypeGPU:
		fallthrough
	default:
		a.backendType = BackendTypeGPU
		a.backend = newPaletteAnimatorBackend()
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *animator) BackendType() AnimatorBackendType {
	return a.backendType
}

func (a *animator) Model() model.Model {
	return a.model
}

func (a *animator) BoneCount() int {
	return a.boneCount
}

func (a *animator) Init(r renderer.Renderer) error {
	if a.model == nil {
		return ErrNoModel
	}
	if err := a.backend.Init(r, a.model, a.boneCount); err != nil {
		return fmt.Errorf("%s animator: %w", a.backendType, err)
	}
	return nil
}

func (a *animator) PaletteProvider() bind_group_provider.BindGroupProvider {
	return a.backend.PaletteProvider()
}

func (a *animator) Update(skinMatrices []mgl32.Mat4) error {
	return a.backend.Update(skinMatrices)
}

func (a *animator) StagedWriteData() []bind_group_provider.BufferWrite {
	return a.backend.StagedWriteData()
}

func (a *animator) Release() {
	a.backend.Release()
}
