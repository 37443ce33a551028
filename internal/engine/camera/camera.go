// Package camera provides the orbit camera used by the product viewer.
package camera

import (
	"github.com/Faultbox/valvesite/pkg/math"
)

// Defaults for a product framed by scene.DefaultFitSize.
const (
	DefaultFOV         = 45 * math.Pi / 180
	DefaultNear        = 0.05
	DefaultFar         = 100
	DefaultMinDistance = 0.75
	DefaultMaxDistance = 10
	DefaultMinPolar    = math.Pi / 3
	DefaultMaxPolar    = 2 * math.Pi / 3
	DefaultRotateSpeed = 0.8
	DefaultZoomSpeed   = 0.1
	DefaultPanSpeed    = 1.0
)

// DefaultPosition is where the camera starts, looking at the origin.
var DefaultPosition = math.Vec3{X: 0, Y: 0, Z: 4}

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	Target math.Vec3

	// Spherical coordinates around Target. Polar is measured from +Y, so
	// pi/2 is level with the target. Azimuth 0 looks down -Z.
	Distance float32
	Polar    float32
	Azimuth  float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPolar    float32
	MaxPolar    float32

	// Projection
	FOV  float32
	Near float32
	Far  float32

	// Sensitivity
	RotateSpeed float32
	ZoomSpeed   float32
	PanSpeed    float32
}

// NewOrbitCamera creates an orbit camera at DefaultPosition looking at the origin.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{
		MinDistance: DefaultMinDistance,
		MaxDistance: DefaultMaxDistance,
		MinPolar:    DefaultMinPolar,
		MaxPolar:    DefaultMaxPolar,
		FOV:         DefaultFOV,
		Near:        DefaultNear,
		Far:         DefaultFar,
		RotateSpeed: DefaultRotateSpeed,
		ZoomSpeed:   DefaultZoomSpeed,
		PanSpeed:    DefaultPanSpeed,
	}
	c.Reset()
	return c
}

// Reset returns to the initial pose.
func (c *OrbitCamera) Reset() {
	c.SetPose(DefaultPosition, math.Vec3{})
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	return c.Target.Add(offset(c.Distance, c.Polar, c.Azimuth))
}

func offset(distance, polar, azimuth float32) math.Vec3 {
	sp := math.Sin(polar)
	return math.Vec3{
		X: distance * sp * math.Sin(azimuth),
		Y: distance * math.Cos(polar),
		Z: distance * sp * math.Cos(azimuth),
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection for a viewport.
func (c *OrbitCamera) ProjectionMatrix(width, height float32) math.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = width / height
	}
	return math.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(width, height float32) math.Mat4 {
	return c.ProjectionMatrix(width, height).Mul(c.ViewMatrix())
}

// Rotate orbits by a pointer drag in pixels. A drag across the full
// viewport height turns 2*pi*RotateSpeed.
func (c *OrbitCamera) Rotate(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	k := 2 * math.Pi * c.RotateSpeed / viewportHeight
	c.Azimuth -= dx * k
	c.Polar = math.Clamp(c.Polar-dy*k, c.MinPolar, c.MaxPolar)
}

// Zoom moves toward (delta > 0) or away from the target.
func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance = math.Clamp(c.Distance*(1-delta*c.ZoomSpeed), c.MinDistance, c.MaxDistance)
}

// Pan shifts the target in the view plane by a pointer drag in pixels so the
// point under the cursor follows it.
func (c *OrbitCamera) Pan(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	pos := c.Position()
	forward := c.Target.Sub(pos).Normalize()
	right := forward.Cross(math.Vec3{Y: 1}).Normalize()
	up := right.Cross(forward)

	// World units per pixel at the target distance.
	halfHeight := c.Distance * math.Sin(c.FOV/2) / math.Cos(c.FOV/2)
	k := 2 * halfHeight / viewportHeight * c.PanSpeed

	c.Target = c.Target.Add(right.Scale(-dx * k)).Add(up.Scale(dy * k))
}

// SetPose places the camera at position looking at target, clamped to the
// orbit constraints.
func (c *OrbitCamera) SetPose(position, target math.Vec3) {
	c.Target = target
	c.Distance, c.Polar, c.Azimuth = c.spherical(position.Sub(target))
}

// Pose returns the camera position and target.
func (c *OrbitCamera) Pose() (position, target math.Vec3) {
	return c.Position(), c.Target
}

// ClampPose returns the position SetPose would settle on for this target
// without moving the camera.
func (c *OrbitCamera) ClampPose(position, target math.Vec3) math.Vec3 {
	d, p, a := c.spherical(position.Sub(target))
	return target.Add(offset(d, p, a))
}

func (c *OrbitCamera) spherical(v math.Vec3) (distance, polar, azimuth float32) {
	distance = v.Length()
	if distance < 1e-6 {
		// Degenerate: keep the current direction.
		return math.Clamp(distance, c.MinDistance, c.MaxDistance), math.Clamp(c.Polar, c.MinPolar, c.MaxPolar), c.Azimuth
	}
	polar = math.Acos(v.Y / distance)
	azimuth = math.Atan2(v.X, v.Z)
	return math.Clamp(distance, c.MinDistance, c.MaxDistance),
		math.Clamp(polar, c.MinPolar, c.MaxPolar),
		azimuth
}
