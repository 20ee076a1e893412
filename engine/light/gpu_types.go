package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPULightSize is the size in bytes of one packed light.
const GPULightSize = 48

// GPULightSource is the WGSL definition of the Light struct. Matches GPULight exactly (48 bytes).
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of a single light source.
// Matches the WGSL Light struct layout exactly (see GPULightSource).
type GPULight struct {
	Position   mgl32.Vec3 // offset  0
	LightType  uint32     // offset 12: 0 = ambient, 1 = point
	Color      mgl32.Vec3 // offset 16
	Intensity  float32    // offset 28
	LightRange float32    // offset 32: 0 = unlimited
	Decay      float32    // offset 36
	_pad       [2]float32 // offset 40: padding to 48 bytes
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo writes the light into buf, which must hold at least GPULightSize bytes.
//
// Parameters:
//   - buf: destination buffer
func (g *GPULight) MarshalTo(buf []byte) {
	_ = buf[GPULightSize-1]
	putVec3(buf[0:], g.Position)
	binary.LittleEndian.PutUint32(buf[12:], g.LightType)
	putVec3(buf[16:], g.Color)
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.Intensity))
	binary.LittleEndian.PutUint32(buf[32:], math.Float32bits(g.LightRange))
	binary.LittleEndian.PutUint32(buf[36:], math.Float32bits(g.Decay))
	binary.LittleEndian.PutUint32(buf[40:], 0)
	binary.LittleEndian.PutUint32(buf[44:], 0)
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, GPULightSize)
	g.MarshalTo(buf)
	return buf
}

func putVec3(buf []byte, v mgl32.Vec3) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v[i]))
	}
}
