package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitController orbits an eye position around a target using spherical coordinates
// (radius, azimuth, elevation) relative to the target.
//
// Pointer input (Rotate, Pan, Zoom) only records a pending change. Update applies it, either all at once or, with
// damping enabled, a fraction per call with the remainder decaying, which gives the eased motion of an orbit
// camera with inertia. Update must therefore be called every frame even when there is no input.
type OrbitController interface {
	// Position returns the camera's world-space position.
	Position() mgl32.Vec3

	// Target returns the look-at/pivot point.
	Target() mgl32.Vec3

	// SetTarget moves the pivot point and drops any pending pan.
	//
	// Parameters:
	//   - t: world-space pivot
	SetTarget(t mgl32.Vec3)

	// Radius returns the current orbit radius (distance from target).
	Radius() float32

	// Azimuth returns the horizontal angle around the Y axis in radians (0 = +Z axis).
	Azimuth() float32

	// Elevation returns the vertical angle from the horizontal plane in radians.
	Elevation() float32

	// DampingFactor returns the fraction of pending motion applied per Update, or 1 when damping is disabled.
	DampingFactor() float32

	// SetViewport records the size of the surface pointer deltas are measured against.
	//
	// Parameters:
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	SetViewport(width, height int)

	// Rotate queues an orbit by a pointer drag. A drag across the full viewport height turns a full circle.
	//
	// Parameters:
	//   - dx: horizontal drag in pixels (positive = right)
	//   - dy: vertical drag in pixels (positive = down)
	Rotate(dx, dy float32)

	// Pan queues a translation of both target and eye in the view plane, scaled so the point under the pointer at
	// the target distance follows the drag.
	//
	// Parameters:
	//   - dx: horizontal drag in pixels
	//   - dy: vertical drag in pixels
	Pan(dx, dy float32)

	// Zoom scales the orbit radius by 0.95 per step raised to the zoom speed. Positive steps move closer.
	//
	// Parameters:
	//   - steps: wheel steps
	Zoom(steps float32)

	// Update applies pending motion and recomputes the position.
	//
	// Returns:
	//   - bool: true if the camera moved
	Update() bool
}
