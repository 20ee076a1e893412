package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPointLightAttenuation(t *testing.T) {
	l := NewPointLight(0xff9000, 0.5, 10, 2)

	tests := []struct {
		d    float32
		want float64
	}{
		{0, 100},                                 // capped by the 0.01 floor
		{1, math.Pow(1-math.Pow(0.1, 4), 2)},     // 1/1 windowed
		{5, math.Pow(1-math.Pow(0.5, 4), 2) / 25}, // 1/25 windowed
		{10, 0},
		{12, 0},
	}
	for _, tt := range tests {
		if got := float64(l.Attenuation(tt.d)); math.Abs(got-tt.want) > 1e-5 {
			t.Errorf("Attenuation(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}

	unlimited := NewPointLight(0xffffff, 1, 0, 2)
	if got := unlimited.Attenuation(100); math.Abs(float64(got)-1e-4) > 1e-9 {
		t.Errorf("unlimited Attenuation(100) = %v, want 1e-4", got)
	}
	if got := NewAmbientLight(0xffffff, 0.5).Attenuation(50); got != 1 {
		t.Errorf("ambient attenuation = %v, want 1", got)
	}
}

func TestHexColor(t *testing.T) {
	l := NewPointLight(0xff9000, 0.5, 10, 2)
	want := mgl32.Vec3{1, float32(0x90) / 255, 0}
	if !l.Color().ApproxEqual(want) {
		t.Errorf("color = %v, want %v", l.Color(), want)
	}
}

func TestGPULightMarshal(t *testing.T) {
	l := NewPointLight(0xffffff, 0.5, 10, 2)
	l.SetPosition(mgl32.Vec3{1, -0.5, 1})
	g := l.GPU()

	if g.Size() != GPULightSize {
		t.Fatalf("Size = %d, want %d", g.Size(), GPULightSize)
	}
	buf := g.Marshal()
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }

	if f(0) != 1 || f(4) != -0.5 || f(8) != 1 {
		t.Errorf("position = (%v, %v, %v)", f(0), f(4), f(8))
	}
	if binary.LittleEndian.Uint32(buf[12:]) != uint32(LightTypePoint) {
		t.Errorf("light type = %d", binary.LittleEndian.Uint32(buf[12:]))
	}
	if f(28) != 0.5 || f(32) != 10 || f(36) != 2 {
		t.Errorf("intensity/range/decay = %v/%v/%v", f(28), f(32), f(36))
	}

	l.SetEnabled(false)
	if g := l.GPU(); g.Intensity != 0 {
		t.Errorf("disabled light intensity = %v, want 0", g.Intensity)
	}
}
