package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(100)
	p := Perspective(mgl32.DegToRad(75), 16.0/9.0, near, far)

	depth := func(z float32) float32 {
		clip := p.Mul4x1(mgl32.Vec4{0, 0, -z, 1})
		return clip.Z() / clip.W()
	}
	if d := depth(near); math.Abs(float64(d)) > 1e-5 {
		t.Errorf("near plane depth = %v, want 0", d)
	}
	if d := depth(far); math.Abs(float64(d-1)) > 1e-4 {
		t.Errorf("far plane depth = %v, want 1", d)
	}
}

func TestPixelRatio(t *testing.T) {
	tests := []struct {
		scale, want float32
	}{
		{1, 1},
		{1.5, 1.5},
		{3, 2},
		{0, 1},
		{float32(math.NaN()), 1},
	}
	for _, tt := range tests {
		if got := PixelRatio(tt.scale, 2); got != tt.want {
			t.Errorf("PixelRatio(%v, 2) = %v, want %v", tt.scale, got, tt.want)
		}
	}
}

func TestSliceToBytes(t *testing.T) {
	if SliceToBytes([]float32(nil)) != nil {
		t.Fatal("empty slice produced bytes")
	}
	b := SliceToBytes([]mgl32.Vec3{{1, 2, 3}, {4, 5, 6}})
	if len(b) != 24 {
		t.Fatalf("got %d bytes, want 24", len(b))
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "", "title"); got != "title" {
		t.Errorf("Coalesce = %q", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("Coalesce = %d", got)
	}
}

func TestSurfaceSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		scale        float32
		wantW, wantH int
	}{
		{"standard display", 1280, 720, 1, 1280, 720},
		{"retina under limit", 2560, 1440, 2, 2560, 1440},
		{"high density clamped", 3840, 2160, 3, 2560, 1440},
		{"minimized", 0, 0, 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := SurfaceSize(tt.w, tt.h, tt.scale, 2)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("SurfaceSize = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
