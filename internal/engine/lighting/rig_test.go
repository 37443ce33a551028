package lighting

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Faultbox/valvesite/pkg/math"
)

func TestStudioDiffuse(t *testing.T) {
	rig := Studio()

	tests := []struct {
		name   string
		normal math.Vec3
		want   float32
	}{
		// Nothing in the rig lights a face pointing straight down.
		{"underside", math.Vec3{Y: -1}, 0.6},
		// Faces the key light and the spot head on, the top light at an angle.
		{"key side", math.Vec3{X: 1, Y: 1, Z: 1}, 0.6 + 1 + 0.5*0.57735 + 0.8},
		{"top", math.Vec3{Y: 1}, 0.6 + 0.57735 + 0.4*0.39057 + 0.5 + 0.8*0.57735},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rig.Diffuse(math.Vec3{}, tt.normal)
			if math.Abs(got-tt.want) > 1e-3 {
				t.Errorf("Diffuse = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSpotCone(t *testing.T) {
	s := Spot{Position: math.Vec3{Y: 10}, Angle: 0.3, Penumbra: 0.5}

	if got := s.cone(math.Vec3{Y: -1}); got != 1 {
		t.Errorf("on axis: got %f, want 1", got)
	}
	if got := s.cone(math.Vec3{X: 1}); got != 0 {
		t.Errorf("outside: got %f, want 0", got)
	}
	// Halfway between the inner (0.15) and outer (0.3) half-angles.
	edge := math.Vec3{X: math.Sin(0.225), Y: -math.Cos(0.225)}
	if got := s.cone(edge); got <= 0 || got >= 1 {
		t.Errorf("penumbra: got %f, want strictly between 0 and 1", got)
	}

	hard := Spot{Position: math.Vec3{Y: 10}, Angle: 0.3}
	if got := hard.cone(edge); got != 1 {
		t.Errorf("no penumbra: got %f, want 1", got)
	}
}

func TestPointRange(t *testing.T) {
	rig := Rig{Points: []Point{{Position: math.Vec3{Y: 4}, Color: white, Intensity: 1, Range: 8}}}
	if got := rig.Diffuse(math.Vec3{}, math.Vec3{Y: 1}); math.Abs(got-0.5) > 1e-6 {
		t.Errorf("half range: got %f, want 0.5", got)
	}
	if got := rig.Diffuse(math.Vec3{Y: -10}, math.Vec3{Y: 1}); got != 0 {
		t.Errorf("out of range: got %f, want 0", got)
	}
}

func TestPack(t *testing.T) {
	p := Studio().Pack()

	if p.DirCount != 2 || p.LightCount != 2 {
		t.Fatalf("counts: dir %d light %d, want 2 and 2", p.DirCount, p.LightCount)
	}
	opt := cmpopts.EquateApprox(0, 1e-5)
	if diff := cmp.Diff([3]float32{0.6, 0.6, 0.6}, p.Ambient, opt); diff != "" {
		t.Errorf("ambient (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{1, 1, 1, 0.4, 0.4, 0.4}, p.DirColors, opt); diff != "" {
		t.Errorf("dir colors (-want +got):\n%s", diff)
	}
	// The point light comes first and has no cone.
	if diff := cmp.Diff([]float32{-1, math.Cos(0.3)}, p.SpotOuterCos, opt); diff != "" {
		t.Errorf("outer cos (-want +got):\n%s", diff)
	}
	if len(p.LightPositions) != 6 || len(p.SpotAxes) != 6 {
		t.Errorf("vec3 arrays: positions %d axes %d, want 6", len(p.LightPositions), len(p.SpotAxes))
	}
}

func TestPackLimit(t *testing.T) {
	var rig Rig
	for i := 0; i < MaxLights+3; i++ {
		rig.Directionals = append(rig.Directionals, Directional{Position: math.Vec3{Y: 1}, Color: white, Intensity: 1})
		rig.Points = append(rig.Points, Point{Color: white, Intensity: 1})
	}
	p := rig.Pack()
	if p.DirCount != MaxLights || p.LightCount != MaxLights {
		t.Errorf("counts %d/%d, want %d", p.DirCount, p.LightCount, MaxLights)
	}
	if len(p.LightRanges) != MaxLights {
		t.Errorf("ranges %d, want %d", len(p.LightRanges), MaxLights)
	}
}
