package viewer

import (
	"time"

	"github.com/Faultbox/valvesite/internal/engine/camera"
	"github.com/Faultbox/valvesite/internal/engine/picking"
	"github.com/Faultbox/valvesite/internal/engine/scene"
	"github.com/Faultbox/valvesite/pkg/math"
)

// Viewer is the per-product viewer state. It is not safe for concurrent use;
// Session serialises access when loads complete on other goroutines.
type Viewer struct {
	cfg    Config
	camera *camera.OrbitCamera

	state         State
	modelPath     string
	fallbackImage string

	model          *scene.Model
	imageAttempted bool
	imageErr       error
	loadErr        error

	yaw       float32
	gesture   *gesture
	flight    *flight
	flyTarget *math.Vec3
}

type gesture struct {
	down  PointerEvent
	last  PointerEvent
	moved float32 // furthest distance from the down position
}

type flight struct {
	fromPos, fromTarget math.Vec3
	toPos, toTarget     math.Vec3
	elapsed             time.Duration
	duration            time.Duration
}

func (f *flight) progress() float32 {
	if f.duration <= 0 {
		return 1
	}
	return math.Clamp(float32(f.elapsed)/float32(f.duration), 0, 1)
}

// New creates a viewer with no product loaded.
func New(cfg Config) *Viewer {
	return &Viewer{cfg: cfg, camera: camera.NewOrbitCamera()}
}

// Reset switches to a new product. Every per-product flag, the fly-to target,
// any running animation or gesture, the model yaw and the camera are cleared.
// An empty modelPath leaves the viewer on the fallback image for good.
func (v *Viewer) Reset(modelPath, fallbackImage string) {
	v.state = ShowingFallback
	v.modelPath = modelPath
	v.fallbackImage = fallbackImage
	v.model = nil
	v.imageAttempted = false
	v.imageErr = nil
	v.loadErr = nil
	v.yaw = 0
	v.gesture = nil
	v.flight = nil
	v.flyTarget = nil
	v.camera.Reset()
}

// ModelLoaded records a decoded model. The finish pass and fit scale are
// applied here if the loader has not done so, before the model can show.
func (v *Viewer) ModelLoaded(m *scene.Model) {
	if m == nil || v.modelPath == "" || v.state != ShowingFallback || v.model != nil {
		return
	}
	if !m.Finished() {
		m.ApplyMachinedFinish()
	}
	m.FitScale(scene.DefaultFitSize)
	v.model = m
	v.gate()
}

// ModelFailed records a model that could not be fetched or decoded.
func (v *Viewer) ModelFailed(err error) {
	if v.modelPath == "" || v.state != ShowingFallback || v.model != nil {
		return
	}
	v.loadErr = err
	v.state = LoadFailed
}

// ImageSettled records that the fallback image preload finished. A failed
// preload still counts as attempted.
func (v *Viewer) ImageSettled(err error) {
	if v.imageAttempted {
		return
	}
	v.imageAttempted = true
	v.imageErr = err
	v.gate()
}

func (v *Viewer) gate() {
	if v.state == ShowingFallback && v.model != nil && v.imageAttempted {
		v.state = ModelReady
	}
}

// Update advances time by dt. Auto-rotation only runs in ModelReady.
func (v *Viewer) Update(dt time.Duration) {
	if dt <= 0 {
		return
	}
	switch v.state {
	case ModelReady:
		v.yaw += v.cfg.RotationSpeed * float32(dt.Seconds())
	case AnimatingToPoint:
		v.stepFlight(dt)
	}
}

func (v *Viewer) stepFlight(dt time.Duration) {
	f := v.flight
	f.elapsed += dt
	t := f.progress()
	e := math.EaseOutCubic(t)
	v.camera.SetPose(f.fromPos.Lerp(f.toPos, e), f.fromTarget.Lerp(f.toTarget, e))
	if t >= 1 {
		v.flight = nil
		v.state = ModelReady
	}
}

// PointerDown starts an orbit gesture.
func (v *Viewer) PointerDown(ev PointerEvent) {
	if v.state != ModelReady {
		return
	}
	v.gesture = &gesture{down: ev, last: ev}
	v.state = UserDragging
}

// PointerMove orbits with the primary button and pans with the secondary.
func (v *Viewer) PointerMove(ev PointerEvent) {
	if v.state != UserDragging || v.gesture == nil {
		return
	}
	g := v.gesture
	dx, dy := ev.X-g.last.X, ev.Y-g.last.Y
	switch g.down.Button {
	case ButtonSecondary:
		v.camera.Pan(dx, dy, v.cfg.Height)
	default:
		v.camera.Rotate(dx, dy, v.cfg.Height)
	}
	g.last = ev
	g.moved = max(g.moved, pointerDistance(g.down, ev))
}

// PointerUp ends the gesture. Auto-rotation resumes immediately. A short,
// still primary press is a click and flies the camera to the point under
// the pointer when that point is on the model.
func (v *Viewer) PointerUp(ev PointerEvent) {
	if v.state != UserDragging || v.gesture == nil {
		return
	}
	g := v.gesture
	g.moved = max(g.moved, pointerDistance(g.down, ev))
	v.gesture = nil
	v.state = ModelReady

	if g.down.Button != ButtonPrimary || !v.isClick(g, ev) {
		return
	}
	if hit, ok := v.Pick(ev.X, ev.Y); ok {
		v.flyTo(hit.Point)
	}
}

func (v *Viewer) isClick(g *gesture, up PointerEvent) bool {
	if g.moved > v.cfg.DragThreshold {
		return false
	}
	return up.At.Sub(g.down.At) <= v.cfg.ClickMaxDuration
}

func pointerDistance(a, b PointerEvent) float32 {
	return math.Vec3{X: b.X - a.X, Y: b.Y - a.Y}.Length()
}

// Wheel zooms the orbit camera; positive delta moves closer.
func (v *Viewer) Wheel(delta float32) {
	if v.state != ModelReady && v.state != UserDragging {
		return
	}
	v.camera.Zoom(delta)
}

// Resize changes the viewport used for picking and orbit sensitivity.
func (v *Viewer) Resize(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	v.cfg.Width, v.cfg.Height = width, height
}

// Pick casts a ray through a viewport pixel against the model as currently
// posed.
func (v *Viewer) Pick(x, y float32) (picking.Hit, bool) {
	if v.model == nil {
		return picking.Hit{}, false
	}
	inv := v.camera.ViewProjection(v.cfg.Width, v.cfg.Height).Inverse()
	ray := picking.ScreenToRay(x, y, v.cfg.Width, v.cfg.Height, inv)
	return picking.IntersectModel(ray, v.model, v.ModelMatrix())
}

func (v *Viewer) flyTo(point math.Vec3) {
	fromPos, fromTarget := v.camera.Pose()

	// Halfway from the hit point back toward the camera, never closer than
	// MinFlyDistance.
	back := fromPos.Sub(point)
	dist := max(back.Length()/2, v.cfg.MinFlyDistance)
	toPos := point.Add(back.Normalize().Scale(dist))
	toPos = v.camera.ClampPose(toPos, point)

	target := point
	v.flyTarget = &target
	v.flight = &flight{
		fromPos:    fromPos,
		fromTarget: fromTarget,
		toPos:      toPos,
		toTarget:   point,
		duration:   v.cfg.FlyToDuration,
	}
	v.state = AnimatingToPoint
}

// State returns the current state.
func (v *Viewer) State() State { return v.state }

// Loading reports whether a model is still expected: the fallback is shown
// and neither a model nor a failure has arrived.
func (v *Viewer) Loading() bool {
	return v.state == ShowingFallback && v.modelPath != "" && (v.model == nil || !v.imageAttempted)
}

// LoadError returns the model load failure, if any.
func (v *Viewer) LoadError() error { return v.loadErr }

// ImageError returns the fallback preload failure, if any.
func (v *Viewer) ImageError() error { return v.imageErr }

// FlyTarget returns the most recent fly-to target since the last Reset.
func (v *Viewer) FlyTarget() (math.Vec3, bool) {
	if v.flyTarget == nil {
		return math.Vec3{}, false
	}
	return *v.flyTarget, true
}

// Yaw returns the model's auto-rotation angle in radians.
func (v *Viewer) Yaw() float32 { return v.yaw }

// Model returns the loaded model or nil.
func (v *Viewer) Model() *scene.Model { return v.model }

// ModelMatrix places the model in the world.
func (v *Viewer) ModelMatrix() math.Mat4 {
	if v.model == nil {
		return math.Identity()
	}
	return v.model.Transform(v.yaw)
}

// Camera exposes the orbit camera for rendering.
func (v *Viewer) Camera() *camera.OrbitCamera { return v.camera }

// Viewport returns the viewport size in pixels.
func (v *Viewer) Viewport() (width, height float32) { return v.cfg.Width, v.cfg.Height }

// ModelPath returns the current product's model reference.
func (v *Viewer) ModelPath() string { return v.modelPath }

// FallbackImage returns the current product's fallback image reference.
func (v *Viewer) FallbackImage() string { return v.fallbackImage }
