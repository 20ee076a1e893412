package material

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
)

func TestWireframeSelectsPipeline(t *testing.T) {
	m := NewMaterial(WithRoughness(0.4), WithWireframe(true))
	if m.PipelineKey() != renderer.PipelineMeshWire {
		t.Errorf("PipelineKey() = %q, want %q", m.PipelineKey(), renderer.PipelineMeshWire)
	}
	m.SetWireframe(false)
	if m.PipelineKey() != renderer.PipelineMeshFill {
		t.Errorf("PipelineKey() = %q, want %q", m.PipelineKey(), renderer.PipelineMeshFill)
	}
}

func TestObjectUniformCarriesMaterial(t *testing.T) {
	m := NewMaterial(WithHexColor(0x00ff00), WithRoughness(2))
	u := m.ObjectUniform(mgl32.Translate3D(1, 2, 3))
	if u.Roughness != 1 {
		t.Errorf("roughness = %v, want clamped to 1", u.Roughness)
	}
	if u.Color != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("color = %v", u.Color)
	}
	if u.Model.Col(3) != (mgl32.Vec4{1, 2, 3, 1}) {
		t.Errorf("model translation = %v", u.Model.Col(3))
	}
}
