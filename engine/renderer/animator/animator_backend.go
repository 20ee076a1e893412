package animator

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/model"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
	"github.com/mo-kasiri/Three-IK/engine/renderer/bind_group_provider"
)

// AnimatorBackendType identifies where an Animator applies the skin matrices.
type AnimatorBackendType int

const (
	// BackendTypeGPU uploads the skin matrices as a bone palette and skins in the vertex shader. The model must be
	// created with model.WithSkin.
	BackendTypeGPU AnimatorBackendType = iota

	// BackendTypeCPU skins every vertex with a skin.Deformer and uploads the result. The model must be dynamic.
	BackendTypeCPU
)

// String returns the configuration name of the backend type.
func (t AnimatorBackendType) String() string {
	switch t {
	case BackendTypeGPU:
		return "gpu"
	case BackendTypeCPU:
		return "cpu"
	}
	return "unknown"
}

// ParseBackendType maps a configuration name, "gpu" or "cpu", to its backend type.
//
// Parameters:
//   - name: the name as returned by AnimatorBackendType.String
//
// Returns:
//   - AnimatorBackendType: the backend type, BackendTypeGPU on error
//   - error: ErrUnknownBackend for any other name
func ParseBackendType(name string) (AnimatorBackendType, error) {
	for _, t := range []AnimatorBackendType{BackendTypeGPU, BackendTypeCPU} {
		if t.String() == name {
			return t, nil
		}
	}
	return BackendTypeGPU, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

// AnimatorBackend is implemented by every skinning backend. Methods that do not apply to a backend return zero
// values.
type AnimatorBackend interface {
	// Init creates the backend's GPU resources for m.
	//
	// Parameters:
	//   - r: the renderer the model was initialized with
	//   - m: the model to skin
	//   - boneCount: the number of skin matrices every Update receives
	//
	// Returns:
	//   - error: a model mismatch or GPU resource error
	Init(r renderer.Renderer, m model.Model, boneCount int) error

	// PaletteProvider returns the group 2 provider holding the bone palette, or nil when skinning on the CPU.
	PaletteProvider() bind_group_provider.BindGroupProvider

	// Update applies one set of skin matrices.
	//
	// Parameters:
	//   - skinMatrices: world * inverse bind per bone, in bone index order
	//
	// Returns:
	//   - error: ErrBoneCount, ErrNotInitialized, or a skinning or upload error
	Update(skinMatrices []mgl32.Mat4) error

	// StagedWriteData returns the buffer writes queued since the last call and clears the queue.
	StagedWriteData() []bind_group_provider.BufferWrite

	// Release frees the backend's resources. Calling it more than once is safe.
	Release()
}
