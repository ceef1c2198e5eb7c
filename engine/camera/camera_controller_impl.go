package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/paint-house/common"
)

// DefaultDamping is the fraction of pending orbit velocity applied per 60 Hz tick.
const DefaultDamping = 0.05

// velocityEpsilon is the angular speed below which momentum is dropped.
const velocityEpsilon = 1e-5

// cameraControllerImpl is the single implementation of CameraController.
// Orbit methods modify spherical coordinates and recompute position; pan methods
// translate both position and target along the camera's local axes.
type cameraControllerImpl struct {
	mu *sync.Mutex

	// position is derived from target + spherical coords, except right after LookFrom.
	position common.Vec3
	target   common.Vec3
	eye      *common.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	// pending angular motion consumed by Update
	azimuthVelocity   float32
	elevationVelocity float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	damping          float32
	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller sized for house-scale models,
// looking at the origin from (0, 2, 5) unless options say otherwise.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		minRadius:    0.5,
		maxRadius:    100.0,
		minElevation: -math32.Pi/2 + 0.05,
		maxElevation: math32.Pi/2 - 0.05,

		damping:          DefaultDamping,
		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.5,
		panSpeed:         0.01,
	}

	for _, option := range options {
		option(cc)
	}

	eye := common.Vec3{0, 2, 5}
	if cc.eye != nil {
		eye = *cc.eye
	}
	cc.lookFrom(eye, cc.target)
	return cc
}

// --- internal helpers ---

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev, sinElev := math32.Cos(cc.elevation), math32.Sin(cc.elevation)
	cosAzim, sinAzim := math32.Cos(cc.azimuth), math32.Sin(cc.azimuth)

	cc.position = common.Add(cc.target, common.Vec3{
		cc.radius * cosElev * sinAzim,
		cc.radius * sinElev,
		cc.radius * cosElev * cosAzim,
	})
}

// lookFrom derives spherical coordinates from an eye/target pair.
// Caller must hold the mutex (or own cc exclusively).
func (cc *cameraControllerImpl) lookFrom(eye, target common.Vec3) {
	cc.target = target
	cc.position = eye
	offset := common.Sub(eye, target)
	cc.radius = common.Length(offset)
	if cc.radius > 0 {
		cc.elevation = math32.Asin(offset[1] / cc.radius)
		cc.azimuth = math32.Atan2(offset[0], offset[2])
	}
	cc.azimuthVelocity, cc.elevationVelocity = 0, 0
}

func (cc *cameraControllerImpl) clampElevation() {
	if cc.elevation < cc.minElevation {
		cc.elevation = cc.minElevation
	}
	if cc.elevation > cc.maxElevation {
		cc.elevation = cc.maxElevation
	}
}

func (cc *cameraControllerImpl) clampRadius() {
	if cc.radius < cc.minRadius {
		cc.radius = cc.minRadius
	}
	if cc.radius > cc.maxRadius {
		cc.radius = cc.maxRadius
	}
}

// localAxes returns the right and up axes consistent with the LookAt matrix.
// Both are zero when position and target coincide. Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up common.Vec3) {
	backward := common.Normalize(common.Sub(cc.position, cc.target))
	if backward == (common.Vec3{}) {
		return
	}
	right = common.Normalize(common.Cross(common.Vec3{0, 1, 0}, backward))
	if right == (common.Vec3{}) {
		return
	}
	up = common.Cross(backward, right)
	return
}

// --- CameraController shared methods ---

func (cc *cameraControllerImpl) Position() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *cameraControllerImpl) LookFrom(position, target common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.lookFrom(position, target)
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius -= delta * cc.zoomSpeed
	cc.clampRadius()
	cc.updatePosition()
}

// Update applies the share of pending velocity a 60 Hz loop would have applied over
// dt, so total motion from one drag is the same at any frame rate.
func (cc *cameraControllerImpl) Update(dt float32) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.azimuthVelocity == 0 && cc.elevationVelocity == 0 {
		return false
	}
	if dt <= 0 {
		return false
	}

	decay := math32.Pow(1-cc.damping, dt*60)
	applied := 1 - decay

	cc.azimuth += cc.azimuthVelocity * applied
	cc.elevation += cc.elevationVelocity * applied
	cc.clampElevation()
	cc.azimuthVelocity *= decay
	cc.elevationVelocity *= decay

	if math32.Abs(cc.azimuthVelocity) < velocityEpsilon {
		cc.azimuthVelocity = 0
	}
	if math32.Abs(cc.elevationVelocity) < velocityEpsilon {
		cc.elevationVelocity = 0
	}
	cc.updatePosition()
	return true
}

// --- orbitCameraController implementation ---

func (cc *cameraControllerImpl) Drag(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuthVelocity -= dx * cc.mouseSensitivity
	cc.elevationVelocity += dy * cc.mouseSensitivity
}

func (cc *cameraControllerImpl) OrbitLeft() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth -= cc.orbitSpeed
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitRight() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth += cc.orbitSpeed
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitUp() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation += cc.orbitSpeed
	cc.clampElevation()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitDown() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation -= cc.orbitSpeed
	cc.clampElevation()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = radius
	cc.clampRadius()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) SetAzimuth(azimuth float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = azimuth
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = elevation
	cc.clampElevation()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Damping() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.damping
}

// --- planarCameraController implementation ---

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	right, _ := cc.localAxes()
	offset := common.Scale(right, delta*cc.panSpeed)
	cc.target = common.Add(cc.target, offset)
	cc.position = common.Add(cc.position, offset)
}

func (cc *cameraControllerImpl) PanUp(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	_, up := cc.localAxes()
	offset := common.Scale(up, delta*cc.panSpeed)
	cc.target = common.Add(cc.target, offset)
	cc.position = common.Add(cc.position, offset)
}
