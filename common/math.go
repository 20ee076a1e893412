package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Perspective creates a right-handed perspective projection matrix mapping depth to the WebGPU clip range [0, 1].
// mgl32.Perspective targets the OpenGL range [-1, 1] and cannot be used directly with a Depth24Plus attachment.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix (column-major)
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := float32(1.0 / math.Tan(float64(fovY)/2.0))
	var m mgl32.Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1.0
	m[14] = (near * far) / (near - far)
	return m
}

// PixelRatio returns the device pixel ratio to render at: the window content scale capped at limit.
// A non-positive scale is treated as 1.
//
// Parameters:
//   - contentScale: the window's content scale (device pixels per logical pixel)
//   - limit: the largest ratio allowed
//
// Returns:
//   - float32: the clamped ratio
func PixelRatio(contentScale, limit float32) float32 {
	if !(contentScale > 0) {
		contentScale = 1
	}
	return min(contentScale, limit)
}

// SurfaceSize scales a framebuffer size down so it is rendered at no more than limit device pixels per logical
// pixel. Framebuffers at or below the limit are returned unchanged.
//
// Parameters:
//   - fbWidth, fbHeight: framebuffer size in device pixels
//   - contentScale: the window's content scale
//   - limit: the largest pixel ratio allowed
//
// Returns:
//   - int: surface width, at least 1 for a non-empty framebuffer
//   - int: surface height, at least 1 for a non-empty framebuffer
func SurfaceSize(fbWidth, fbHeight int, contentScale, limit float32) (int, int) {
	if fbWidth <= 0 || fbHeight <= 0 {
		return fbWidth, fbHeight
	}
	if !(contentScale > 0) {
		contentScale = 1
	}
	ratio := PixelRatio(contentScale, limit) / contentScale
	if ratio >= 1 {
		return fbWidth, fbHeight
	}
	w := max(int(math.Round(float64(float32(fbWidth)*ratio))), 1)
	h := max(int(math.Round(float64(float32(fbHeight)*ratio))), 1)
	return w, h
}
