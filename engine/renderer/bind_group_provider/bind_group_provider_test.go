package bind_group_provider

import "testing"

func TestProviderLabelAndDrawMode(t *testing.T) {
	p := NewBindGroupProvider("lines", WithVertexCount(12))
	if p.Label() != "lines" {
		t.Errorf("Label() = %q, want %q", p.Label(), "lines")
	}
	if p.Indexed() {
		t.Error("provider without indices reports Indexed")
	}
	if p.VertexCount() != 12 {
		t.Errorf("VertexCount() = %d, want 12", p.VertexCount())
	}

	p.SetIndexCount(36)
	if !p.Indexed() {
		t.Error("provider with indices is not Indexed")
	}
}

func TestShareVertexBufferIsNotReleased(t *testing.T) {
	fill := NewBindGroupProvider("fill")
	fill.SetVertexCount(45)

	wire := NewBindGroupProvider("wire")
	wire.ShareVertexBuffer(fill)
	if wire.VertexCount() != 45 {
		t.Errorf("shared VertexCount() = %d, want 45", wire.VertexCount())
	}

	// Releasing with no GPU resources attached must be a no-op.
	wire.Release()
	fill.Release()
	if wire.VertexBuffer() != nil || fill.VertexBuffer() != nil {
		t.Error("vertex buffer not cleared on release")
	}
}
