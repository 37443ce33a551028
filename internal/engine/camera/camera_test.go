package camera

import (
	"testing"

	"github.com/Faultbox/valvesite/pkg/math"
)

const eps = 1e-4

func TestNewOrbitCameraStartsAtDefault(t *testing.T) {
	c := NewOrbitCamera()

	pos, target := c.Pose()
	if !pos.ApproxEqual(DefaultPosition, eps) {
		t.Errorf("position = %v, want %v", pos, DefaultPosition)
	}
	if !target.ApproxEqual(math.Vec3{}, eps) {
		t.Errorf("target = %v", target)
	}
	if math.Abs(c.Polar-math.Pi/2) > eps || c.Distance != 4 {
		t.Errorf("polar=%v distance=%v", c.Polar, c.Distance)
	}

	// The origin projects to the center of the viewport.
	p := c.ViewProjection(480, 650).TransformPoint(math.Vec3{})
	if !p.ApproxEqual(math.Vec3{X: 0, Y: 0, Z: p.Z}, eps) {
		t.Errorf("origin projects to %v", p)
	}
}

func TestRotateClampsPolarBand(t *testing.T) {
	c := NewOrbitCamera()

	tests := []struct {
		name string
		dy   float32
		want float32
	}{
		{"drag far down", 5000, DefaultMinPolar},
		{"drag far up", -5000, DefaultMaxPolar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Reset()
			c.Rotate(0, tt.dy, 650)
			if math.Abs(c.Polar-tt.want) > eps {
				t.Errorf("polar = %v, want %v", c.Polar, tt.want)
			}
			// The camera never reaches the poles.
			pos := c.Position()
			if math.Abs(pos.Y)/c.Distance > 0.5+eps {
				t.Errorf("camera too steep: %v", pos)
			}
		})
	}
}

func TestRotateAzimuthKeepsDistance(t *testing.T) {
	c := NewOrbitCamera()

	// A drag across the full height turns 2*pi*0.8.
	c.Rotate(650, 0, 650)
	want := -2 * math.Pi * DefaultRotateSpeed
	if math.Abs(c.Azimuth-want) > eps {
		t.Errorf("azimuth = %v, want %v", c.Azimuth, want)
	}
	if d := c.Position().Distance(c.Target); math.Abs(d-4) > eps {
		t.Errorf("distance changed to %v", d)
	}

	c.Rotate(10, 10, 0)
	if math.Abs(c.Azimuth-want) > eps {
		t.Error("zero viewport should be ignored")
	}
}

func TestZoomDistanceBand(t *testing.T) {
	c := NewOrbitCamera()

	for i := 0; i < 200; i++ {
		c.Zoom(1)
	}
	if c.Distance != DefaultMinDistance {
		t.Errorf("zoom in distance = %v, want %v", c.Distance, DefaultMinDistance)
	}

	for i := 0; i < 200; i++ {
		c.Zoom(-1)
	}
	if c.Distance != DefaultMaxDistance {
		t.Errorf("zoom out distance = %v, want %v", c.Distance, DefaultMaxDistance)
	}
}

func TestPanMovesTargetInViewPlane(t *testing.T) {
	c := NewOrbitCamera()
	before := c.Position()

	c.Pan(-100, 0, 650)

	// Looking down -Z, dragging left moves the target toward +X.
	if c.Target.X <= 0 || math.Abs(c.Target.Y) > eps || math.Abs(c.Target.Z) > eps {
		t.Errorf("target = %v", c.Target)
	}
	// Orientation and distance are unchanged; the camera translated with the target.
	after := c.Position()
	if !after.Sub(before).ApproxEqual(c.Target, eps) {
		t.Errorf("camera moved %v, target moved %v", after.Sub(before), c.Target)
	}
}

func TestSetPoseClamps(t *testing.T) {
	c := NewOrbitCamera()

	tests := []struct {
		name     string
		position math.Vec3
		target   math.Vec3
		wantDist float32
	}{
		{"in band", math.Vec3{X: 2, Z: 2}, math.Vec3{}, 2.8284},
		{"too close", math.Vec3{Z: 0.1}, math.Vec3{}, DefaultMinDistance},
		{"too far", math.Vec3{Z: 50}, math.Vec3{X: 1}, DefaultMaxDistance},
		{"straight above", math.Vec3{Y: 3}, math.Vec3{}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.SetPose(tt.position, tt.target)
			if math.Abs(c.Distance-tt.wantDist) > 1e-3 {
				t.Errorf("distance = %v, want %v", c.Distance, tt.wantDist)
			}
			if c.Polar < DefaultMinPolar-eps || c.Polar > DefaultMaxPolar+eps {
				t.Errorf("polar %v outside band", c.Polar)
			}
			if !c.Target.ApproxEqual(tt.target, eps) {
				t.Errorf("target = %v", c.Target)
			}
			if got := c.ClampPose(tt.position, tt.target); !got.ApproxEqual(c.Position(), eps) {
				t.Errorf("ClampPose = %v, SetPose gave %v", got, c.Position())
			}
		})
	}
}

func TestSetPoseRoundTrip(t *testing.T) {
	c := NewOrbitCamera()
	pos := math.Vec3{X: 1, Y: 0.5, Z: -2}
	target := math.Vec3{X: 0.2, Y: 0.1, Z: 0}

	c.SetPose(pos, target)
	got, gotTarget := c.Pose()
	if !got.ApproxEqual(pos, eps) || !gotTarget.ApproxEqual(target, eps) {
		t.Errorf("pose = %v/%v, want %v/%v", got, gotTarget, pos, target)
	}
}
