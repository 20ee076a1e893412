package animator

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/model"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
	"github.com/mo-kasiri/Three-IK/engine/renderer/bind_group_provider"
)

// paletteBinding is the binding of the bone palette inside renderer.SkinBindGroupLayout.
const paletteBinding = 0

// paletteAnimatorBackendImpl stages the skin matrices as a storage buffer for the skinned pipelines.
type paletteAnimatorBackendImpl struct {
	mu *sync.Mutex

	provider  bind_group_provider.BindGroupProvider
	boneCount int

	// palette is reused every frame; the queue copies staged data before WriteBuffers returns.
	palette         []byte
	dirty           bool
	stagedWriteData []bind_group_provider.BufferWrite
}

var _ AnimatorBackend = &paletteAnimatorBackendImpl{}

func newPaletteAnimatorBackend() AnimatorBackend {
	return &paletteAnimatorBackendImpl{
		mu: &sync.Mutex{},
	}
}

func (p *paletteAnimatorBackendImpl) Init(r renderer.Renderer, m model.Model, boneCount int) error {
	if !m.Skinned() {
		return fmt.Errorf("%s: %w", m.Name(), ErrModelNotSkinned)
	}
	if boneCount <= 0 {
		return fmt.Errorf("%s: %d bones: %w", m.Name(), boneCount, ErrBoneCount)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.provider != nil {
		return nil
	}

	provider := bind_group_provider.NewBindGroupProvider(m.Name() + " Palette")
	sizes := map[int]uint64{paletteBinding: renderer.BonePaletteSize(boneCount)}
	if err := r.InitBindGroup(provider, renderer.SkinBindGroupLayout(), sizes); err != nil {
		return fmt.Errorf("%s palette: %w", m.Name(), err)
	}
	p.provider = provider
	p.boneCount = boneCount
	p.palette = make([]byte, 0, boneCount*renderer.BoneMatrixSize)
	return nil
}

func (p *paletteAnimatorBackendImpl) PaletteProvider() bind_group_provider.BindGroupProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.provider
}

func (p *paletteAnimatorBackendImpl) Update(skinMatrices []mgl32.Mat4) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.provider == nil {
		return ErrNotInitialized
	}
	if len(skinMatrices) != p.boneCount {
		return fmt.Errorf("%d skin matrices for %d bones: %w", len(skinMatrices), p.boneCount, ErrBoneCount)
	}
	p.palette = renderer.MarshalBonePalette(p.palette, skinMatrices)
	p.dirty = true
	return nil
}

func (p *paletteAnimatorBackendImpl) StagedWriteData() []bind_group_provider.BufferWrite {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stagedWriteData = p.stagedWriteData[:0]
	if p.dirty {
		p.stagedWriteData = append(p.stagedWriteData, bind_group_provider.BufferWrite{
			Provider: p.provider,
			Binding:  paletteBinding,
			Data:     p.palette,
		})
		p.dirty = false
	}
	return p.stagedWriteData
}

func (p *paletteAnimatorBackendImpl) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.provider != nil {
		p.provider.Release()
		p.provider = nil
	}
	p.palette = nil
	p.stagedWriteData = nil
	p.dirty = false
}
