package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*orbitControllerImpl)

// WithRadius sets the initial orbit radius (distance from target).
//
// Parameters:
//   - radius: distance from the orbit target
//
// Returns:
//   - OrbitControllerOption: functional option to set the radius
func WithRadius(radius float32) OrbitControllerOption {
	return func(cc *orbitControllerImpl) {
		cc.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - azimuth: horizontal angle in radians (0 = +Z axis)
//
// Returns:
//   - OrbitControllerOption: functional option to set the azimuth
func WithAzimuth(azimuth float32) OrbitControllerOption {
	return func(cc *orbitControllerImpl) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
//
// Parameters:
//   - elevation: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - OrbitControllerOption: functional option to set the elevation
func WithElevation(elevation float32) OrbitControllerOption {
	return func(cc *orbitControllerImpl) {
		cc.elevation = elevation
	}
}

// WithTarget sets the look-at/pivot point.
//
// Parameters:
//   - t: world-space pivot
//
// Returns:
//   - OrbitControllerOption: functional option to set the target position
func WithTarget(t mgl32.Vec3) OrbitControllerOption {
	return func(cc *orbitControllerImpl) {
		cc.target = t
	}
}

// WithPosition places the eye at a world-space position. Radius, azimuth and elevation are derived from it relative
// to the target after every option has been applied, so option order does not matter.
//
// Parameters:
//   - p: world-space eye position
//
// Returns:
//   - OrbitControllerOption: functional option to set the eye position
func WithPosition(p mgl32.Vec3) OrbitControllerOption {
	return func(cc *orbitControllerImpl) {
		cc.initialPosition = &p
	}
}

// WithRadiusLimits sets the minimum and maximum orbit radius.
//
// Parameters:
//   - minRadius: closest allowed distance
//   - maxRadius: farthest allowed distance
//
// Returns:
//   - OrbitControllerOption: functional option to set the limits
func WithRadiusLimits(minRadius, maxRadius float32) OrbitControllerOption {
	return func(cc *orbitControllerImpl) {
		cc.minRadius = minRadius
		cc.maxRadius = maxRadius
	}
}

// WithDamping enables eased motion: each Update applies factor of the pending rotation and pan, then keeps the
// remaining (1 - factor). A factor outside (0, 1) disables damping.
//
// Parameters:
//   - factor: fraction applied per update, e.g. 0.05
//
// Returns:
//   - OrbitControllerOption: functional option to enable damping
func WithDamping(factor float32) OrbitControllerOption {
	return func(cc *orbitControllerImpl) {
		if factor > 0 && factor < 1 {
			cc.dampingFactor = factor
		} else {
			cc.dampingFactor = 1
		}
	}
}

// WithRotateSpeed scales pointer rotation.
//
// Parameters:
//   - speed: multiplier, 1 = one turn per viewport height
//
// Returns:
//   - OrbitControllerOption: functional option to set the rotate speed
func WithRotateSpeed(speed float32) OrbitControllerOption {
	return func(cc *orbitControllerImpl) {
		cc.rotateSpeed = speed
	}
}

// WithZoomSpeed scales wheel zoom.
//
// Parameters:
//   - speed: exponent applied to the per-step zoom scale
//
// Returns:
//   - OrbitControllerOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) OrbitControllerOption {
	return func(cc *orbitControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithFieldOfView tells the controller the camera's vertical field of view, used to scale panning.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - OrbitControllerOption: functional option to set the field of view
func WithFieldOfView(fov float32) OrbitControllerOption {
	return func(cc *orbitControllerImpl) {
		cc.fov = fov
	}
}
