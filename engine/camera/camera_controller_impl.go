package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// settleThreshold is the pending motion below which damping is considered finished.
const settleThreshold = 1e-6

// orbitControllerImpl is the OrbitController implementation.
type orbitControllerImpl struct {
	mu *sync.Mutex

	// Camera position (computed from target + spherical coords)
	position mgl32.Vec3
	target   mgl32.Vec3

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32
	elevation float32

	// Set by WithPosition, resolved into spherical coordinates once all options are applied.
	initialPosition *mgl32.Vec3

	// Orbit constraints
	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	rotateSpeed   float32
	zoomSpeed     float32
	dampingFactor float32
	fov           float32

	viewportWidth  float32
	viewportHeight float32

	// Pending motion
	deltaAzimuth   float32
	deltaElevation float32
	panOffset      mgl32.Vec3
	scale          float32
}

// Compile-time interface compliance check
var _ OrbitController = &orbitControllerImpl{}

// NewOrbitController creates a new orbit controller. Without options it looks at the origin from a radius of 5
// with damping disabled.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the newly created controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	cc := &orbitControllerImpl{
		mu: &sync.Mutex{},

		radius:    5.0,
		azimuth:   0.0,
		elevation: 0.0,

		minRadius:    0.1,
		maxRadius:    90.0,
		minElevation: float32(-math.Pi/2 + 0.01),
		maxElevation: float32(math.Pi/2 - 0.01),

		rotateSpeed:   1.0,
		zoomSpeed:     1.0,
		dampingFactor: 1.0,
		fov:           mgl32.DegToRad(75),

		viewportWidth:  1280,
		viewportHeight: 720,

		scale: 1,
	}

	for _, option := range options {
		option(cc)
	}

	if cc.initialPosition != nil {
		cc.setSpherical(cc.initialPosition.Sub(cc.target))
		cc.initialPosition = nil
	}
	cc.clamp()
	cc.updatePosition()
	return cc
}

// --- internal helpers ---

// setSpherical derives radius, azimuth and elevation from an offset relative to the target.
func (cc *orbitControllerImpl) setSpherical(offset mgl32.Vec3) {
	cc.radius = offset.Len()
	if cc.radius < settleThreshold {
		cc.azimuth, cc.elevation = 0, 0
		return
	}
	cc.azimuth = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
	cc.elevation = float32(math.Asin(float64(mgl32.Clamp(offset.Y()/cc.radius, -1, 1))))
}

// clamp keeps radius and elevation inside the configured limits. Caller must hold the mutex.
func (cc *orbitControllerImpl) clamp() {
	cc.radius = mgl32.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = mgl32.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
}

// updatePosition recomputes the camera position from spherical coordinates.
// Must be called whenever radius, azimuth, elevation, or target changes.
// Caller must hold the mutex.
func (cc *orbitControllerImpl) updatePosition() {
	sinElev, cosElev := math.Sincos(float64(cc.elevation))
	sinAzim, cosAzim := math.Sincos(float64(cc.azimuth))

	cc.position = cc.target.Add(mgl32.Vec3{
		cc.radius * float32(cosElev*sinAzim),
		cc.radius * float32(sinElev),
		cc.radius * float32(cosElev*cosAzim),
	})
}

// localAxes computes the camera's right and up axes consistent with the LookAt matrix.
// Both are zero if position and target coincide. Caller must hold the mutex.
func (cc *orbitControllerImpl) localAxes() (right, up mgl32.Vec3) {
	back := cc.position.Sub(cc.target)
	if back.Len() < 1e-8 {
		return
	}
	back = back.Normalize()
	right = mgl32.Vec3{0, 1, 0}.Cross(back)
	if right.Len() < 1e-8 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	right = right.Normalize()
	up = back.Cross(right)
	return right, up
}

// --- OrbitController ---

func (cc *orbitControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *orbitControllerImpl) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *orbitControllerImpl) SetTarget(t mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = t
	cc.panOffset = mgl32.Vec3{}
	cc.updatePosition()
}

func (cc *orbitControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *orbitControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *orbitControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *orbitControllerImpl) DampingFactor() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.dampingFactor
}

func (cc *orbitControllerImpl) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.viewportWidth = float32(width)
	cc.viewportHeight = float32(height)
}

func (cc *orbitControllerImpl) Rotate(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	perPixel := 2 * math.Pi / cc.viewportHeight * cc.rotateSpeed
	cc.deltaAzimuth -= dx * perPixel
	cc.deltaElevation += dy * perPixel
}

func (cc *orbitControllerImpl) Pan(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	right, up := cc.localAxes()
	visible := cc.radius * float32(math.Tan(float64(cc.fov)/2))
	cc.panOffset = cc.panOffset.
		Sub(right.Mul(2 * dx * visible / cc.viewportHeight)).
		Add(up.Mul(2 * dy * visible / cc.viewportHeight))
}

func (cc *orbitControllerImpl) Zoom(steps float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.scale *= float32(math.Pow(0.95, float64(steps*cc.zoomSpeed)))
}

func (cc *orbitControllerImpl) Update() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	before := cc.position
	f := cc.dampingFactor

	cc.azimuth += cc.deltaAzimuth * f
	cc.elevation += cc.deltaElevation * f
	cc.target = cc.target.Add(cc.panOffset.Mul(f))
	cc.radius *= cc.scale
	cc.scale = 1
	cc.clamp()

	keep := 1 - f
	cc.deltaAzimuth *= keep
	cc.deltaElevation *= keep
	cc.panOffset = cc.panOffset.Mul(keep)
	if abs32(cc.deltaAzimuth) < settleThreshold && abs32(cc.deltaElevation) < settleThreshold {
		cc.deltaAzimuth, cc.deltaElevation = 0, 0
	}
	if cc.panOffset.Len() < settleThreshold {
		cc.panOffset = mgl32.Vec3{}
	}

	cc.updatePosition()
	return !cc.position.ApproxEqualThreshold(before, settleThreshold)
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
