package model

import "github.com/mo-kasiri/Three-IK/engine/geometry"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName sets the model name.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithGeometry sets the mesh the model uploads.
//
// Parameters:
//   - g: the rest geometry
//
// Returns:
//   - ModelBuilderOption: a function that applies the geometry
func WithGeometry(g *geometry.Geometry) ModelBuilderOption {
	return func(m *model) {
		m.geometry = g
	}
}

// WithDynamic allows UpdateVertices, for meshes deformed on the CPU.
func WithDynamic(dynamic bool) ModelBuilderOption {
	return func(m *model) {
		m.dynamic = dynamic
	}
}

// WithSkin attaches per-vertex joint influences, e.g. from skin.Flatten. The model then uploads SkinnedVertex data
// and is drawn with the skinned pipelines.
//
// Parameters:
//   - joints: four bone indices per vertex
//   - weights: four weights per vertex
//
// Returns:
//   - ModelBuilderOption: a function that applies the skin data
func WithSkin(joints [][4]uint16, weights [][4]float32) ModelBuilderOption {
	return func(m *model) {
		m.joints = joints
		m.weights = weights
	}
}
