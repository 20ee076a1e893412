package material

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/geometry"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName sets the name of the material.
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithColor sets the linear RGB base color.
//
// Parameters:
//   - color: the base color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color
func WithColor(color mgl32.Vec3) MaterialBuilderOption {
	return func(m *material) {
		m.color = color
	}
}

// WithHexColor sets the base color from a 0xRRGGBB value.
func WithHexColor(hex uint32) MaterialBuilderOption {
	return WithColor(geometry.HexColor(hex))
}

// WithRoughness sets the roughness factor, clamped to [0, 1].
//
// Parameters:
//   - roughness: 0 = smooth, 1 = fully rough
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = mgl32.Clamp(roughness, 0, 1)
	}
}

// WithWireframe sets the initial wireframe mode.
func WithWireframe(enabled bool) MaterialBuilderOption {
	return func(m *material) {
		m.wireframe = enabled
	}
}
