package animator

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/model"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
	"github.com/mo-kasiri/Three-IK/engine/renderer/bind_group_provider"
	"github.com/mo-kasiri/Three-IK/engine/skin"
)

// deformerAnimatorBackendImpl skins on the CPU and rewrites the model's vertex buffer every update.
type deformerAnimatorBackendImpl struct {
	mu *sync.Mutex

	deformer  skin.Deformer
	renderer  renderer.Renderer
	model     model.Model
	boneCount int
}

var _ AnimatorBackend = &deformerAnimatorBackendImpl{}

func newDeformerAnimatorBackend() AnimatorBackend {
	return &deformerAnimatorBackendImpl{
		mu: &sync.Mutex{},
	}
}

func (d *deformerAnimatorBackendImpl) Init(r renderer.Renderer, m model.Model, boneCount int) error {
	if !m.Dynamic() {
		return fmt.Errorf("%s: %w", m.Name(), model.ErrStaticModel)
	}
	if boneCount <= 0 {
		return fmt.Errorf("%s: %d bones: %w", m.Name(), boneCount, ErrBoneCount)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deformer == nil {
		return fmt.Errorf("%s: %w", m.Name(), ErrNoDeformer)
	}
	d.renderer = r
	d.model = m
	d.boneCount = boneCount
	return nil
}

func (d *deformerAnimatorBackendImpl) setDeformer(deformer skin.Deformer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deformer = deformer
}

func (d *deformerAnimatorBackendImpl) PaletteProvider() bind_group_provider.BindGroupProvider {
	return nil
}

func (d *deformerAnimatorBackendImpl) Update(skinMatrices []mgl32.Mat4) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.model == nil {
		return ErrNotInitialized
	}
	if len(skinMatrices) != d.boneCount {
		return fmt.Errorf("%d skin matrices for %d bones: %w", len(skinMatrices), d.boneCount, ErrBoneCount)
	}
	if err := d.deformer.Deform(skinMatrices); err != nil {
		return err
	}
	return d.model.UpdateVertices(d.renderer, d.deformer.Positions(), d.deformer.Normals())
}

func (d *deformerAnimatorBackendImpl) StagedWriteData() []bind_group_provider.BufferWrite {
	return nil
}

func (d *deformerAnimatorBackendImpl) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deformer != nil {
		d.deformer.Close()
	}
	d.model = nil
}
