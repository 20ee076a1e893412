package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/renderer/pipeline"
)

// RendererBuilderOption is a functional option for configuring a Renderer.
type RendererBuilderOption func(*renderer)

// WithPipelines registers pipelines as soon as the device exists.
//
// Parameters:
//   - pipelines: pipeline descriptions, e.g. StandardPipelines()
//
// Returns:
//   - RendererBuilderOption: a function that queues the pipelines
func WithPipelines(pipelines ...pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPipelines = append(r.pendingPipelines, pipelines...)
	}
}

// WithPresentMode sets the initial present mode.
//
// Parameters:
//   - mode: PresentModeVSync or PresentModeUncapped
//
// Returns:
//   - RendererBuilderOption: a function that sets the present mode
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the sample count of the main render pass. The default is MSAA4x.
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithClearColor sets the background color. The default is black.
//
// Parameters:
//   - c: linear RGB color
//
// Returns:
//   - RendererBuilderOption: a function that sets the clear color
func WithClearColor(c mgl32.Vec3) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingClearColor = &wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: 1}
	}
}

// WithForceSoftwareRenderer requests the fallback (software) adapter.
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
