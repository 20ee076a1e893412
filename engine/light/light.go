package light

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeAmbient lights every fragment uniformly, with no position or falloff.
	LightTypeAmbient LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance, reaching zero at its range when a range is set.
	LightTypePoint
)

// minFalloffDenominator caps the inverse-power falloff very close to a point light.
const minFalloffDenominator = 0.01

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	lightType  LightType
	position   mgl32.Vec3
	color      mgl32.Vec3
	intensity  float32
	lightRange float32
	decay      float32
	enabled    bool
}

// Light defines the interface for a light source in the scene.
//
// Lights are read by the renderer once per frame and packed into the frame uniform via the gpu_types helpers,
// so setters may be called from any goroutine.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (ambient or point)
	Type() LightType

	// Position returns the world-space position of the light. Meaningless for ambient lights.
	Position() mgl32.Vec3

	// Color returns the linear RGB color of the light.
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	Intensity() float32

	// Range returns the distance at which a point light's contribution reaches zero. Zero means unlimited.
	Range() float32

	// Decay returns the exponent of the inverse-distance falloff of a point light.
	Decay() float32

	// Enabled returns whether this light is active for rendering.
	// Disabled lights are marshaled with zero intensity.
	Enabled() bool

	// Attenuation returns the distance falloff factor of a point light at distance d, in [0, 100].
	// The falloff is 1/max(d^decay, 0.01), windowed by (1 - (d/range)^4)^2 (clamped) when a range is set.
	// Ambient lights always return 1.
	//
	// Parameters:
	//   - d: distance from the light
	//
	// Returns:
	//   - float32: the attenuation factor
	Attenuation(d float32) float32

	// SetPosition sets the world-space position of the light.
	SetPosition(p mgl32.Vec3)

	// SetColor sets the linear RGB color of the light.
	SetColor(c mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	SetIntensity(intensity float32)

	// SetEnabled toggles the light.
	SetEnabled(enabled bool)

	// GPU packs the light into its uniform layout.
	//
	// Returns:
	//   - GPULight: the packed light
	GPU() GPULight
}

var _ Light = &lightImpl{}

// NewLight creates a light of the given type. Defaults are white, intensity 1, no range, decay 2, enabled.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: the newly created light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.Mutex{},
		lightType: lightType,
		color:     mgl32.Vec3{1, 1, 1},
		intensity: 1,
		decay:     2,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewAmbientLight creates an ambient light.
//
// Parameters:
//   - hex: color as 0xRRGGBB
//   - intensity: scalar multiplier
//
// Returns:
//   - Light: the ambient light
func NewAmbientLight(hex uint32, intensity float32) Light {
	return NewLight(LightTypeAmbient, WithHexColor(hex), WithIntensity(intensity))
}

// NewPointLight creates a point light with the argument order of the usual scene-graph constructor.
//
// Parameters:
//   - hex: color as 0xRRGGBB
//   - intensity: scalar multiplier
//   - lightRange: distance at which the light fades out, 0 for unlimited
//   - decay: falloff exponent
//
// Returns:
//   - Light: the point light, at the origin until SetPosition is called
func NewPointLight(hex uint32, intensity, lightRange, decay float32) Light {
	return NewLight(LightTypePoint, WithHexColor(hex), WithIntensity(intensity), WithRange(lightRange), WithDecay(decay))
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) Color() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lightRange
}

func (l *lightImpl) Decay() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.decay
}

func (l *lightImpl) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *lightImpl) Attenuation(d float32) float32 {
	if l.lightType == LightTypeAmbient {
		return 1
	}
	l.mu.Lock()
	lightRange, decay := l.lightRange, l.decay
	l.mu.Unlock()

	falloff := 1 / math.Max(math.Pow(float64(d), float64(decay)), minFalloffDenominator)
	if lightRange > 0 {
		r := float64(d / lightRange)
		w := mgl32.Clamp(float32(1-r*r*r*r), 0, 1)
		falloff *= float64(w * w)
	}
	return float32(falloff)
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = p
}

func (l *lightImpl) SetColor(c mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

func (l *lightImpl) GPU() GPULight {
	l.mu.Lock()
	defer l.mu.Unlock()
	g := GPULight{
		Position:   l.position,
		LightType:  uint32(l.lightType),
		Color:      l.color,
		Intensity:  l.intensity,
		LightRange: l.lightRange,
		Decay:      l.decay,
	}
	if !l.enabled {
		g.Intensity = 0
	}
	return g
}
