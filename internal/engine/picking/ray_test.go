package picking

import (
	"bytes"
	"testing"

	"github.com/Faultbox/valvesite/internal/engine/camera"
	"github.com/Faultbox/valvesite/internal/engine/scene"
	"github.com/Faultbox/valvesite/pkg/glb"
	"github.com/Faultbox/valvesite/pkg/math"
)

const eps = 1e-3

func cubeModel(t *testing.T) *scene.Model {
	t.Helper()
	b := glb.NewBuilder("picking test")
	pos, idx := glb.Box([3]float32{-1, -1, -1}, [3]float32{1, 1, 1})
	b.AddMesh("cube", pos, idx, -1)

	var buf bytes.Buffer
	if err := b.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	f, err := glb.Parse(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	m, err := scene.FromFile(f)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestScreenToRayCenter(t *testing.T) {
	cam := camera.NewOrbitCamera()
	inv := cam.ViewProjection(480, 650).Inverse()

	r := ScreenToRay(240, 325, 480, 650, inv)
	if !r.Direction.ApproxEqual(math.Vec3{Z: -1}, eps) {
		t.Errorf("center ray direction = %v", r.Direction)
	}
	if r.Origin.Z <= 3 || r.Origin.Z > 4 {
		t.Errorf("ray should start near the camera, got %v", r.Origin)
	}

	// Right half of the screen points toward +X.
	r = ScreenToRay(400, 325, 480, 650, inv)
	if r.Direction.X <= 0 {
		t.Errorf("right-side ray direction = %v", r.Direction)
	}
}

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(math.Vec3{X: 1, Y: 1, Z: 1}, math.Vec3{X: -1, Y: -1, Z: -1})

	tests := []struct {
		name  string
		ray   Ray
		wantT float32
		hit   bool
	}{
		{"head on", Ray{math.Vec3{Z: 5}, math.Vec3{Z: -1}}, 4, true},
		{"miss", Ray{math.Vec3{X: 3, Z: 5}, math.Vec3{Z: -1}}, 0, false},
		{"pointing away", Ray{math.Vec3{Z: 5}, math.Vec3{Z: 1}}, 0, false},
		{"from inside", Ray{math.Vec3{}, math.Vec3{X: 1}}, 1, true},
		{"parallel outside", Ray{math.Vec3{Y: 2}, math.Vec3{X: 1}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectAABB(box)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && math.Abs(got-tt.wantT) > eps {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestIntersectTriangle(t *testing.T) {
	a := math.Vec3{X: -1, Y: -1}
	b := math.Vec3{X: 1, Y: -1}
	c := math.Vec3{Y: 1}

	tests := []struct {
		name  string
		ray   Ray
		wantT float32
		hit   bool
	}{
		{"front", Ray{math.Vec3{Z: 2}, math.Vec3{Z: -1}}, 2, true},
		{"back face", Ray{math.Vec3{Z: -3}, math.Vec3{Z: 1}}, 3, true},
		{"outside edge", Ray{math.Vec3{X: 0.9, Y: 0.9, Z: 2}, math.Vec3{Z: -1}}, 0, false},
		{"parallel", Ray{math.Vec3{Z: 2}, math.Vec3{X: 1}}, 0, false},
		{"behind origin", Ray{math.Vec3{Z: -2}, math.Vec3{Z: -1}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectTriangle(a, b, c)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && math.Abs(got-tt.wantT) > eps {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestIntersectModel(t *testing.T) {
	m := cubeModel(t)
	m.FitScale(scene.DefaultFitSize) // cube becomes 2.5 wide, centered

	r := Ray{Origin: math.Vec3{Z: 4}, Direction: math.Vec3{Z: -1}}
	hit, ok := IntersectModel(r, m, m.Transform(0))
	if !ok {
		t.Fatal("expected hit on the front face")
	}
	if !hit.Point.ApproxEqual(math.Vec3{Z: 1.25}, eps) {
		t.Errorf("hit point = %v", hit.Point)
	}
	if math.Abs(hit.Distance-2.75) > eps {
		t.Errorf("distance = %v", hit.Distance)
	}

	// Rotating the model does not change the hit on a cube face through its axis.
	if hit, ok := IntersectModel(r, m, m.Transform(math.Pi/2)); !ok || math.Abs(hit.Distance-2.75) > eps {
		t.Errorf("rotated hit = %+v ok=%v", hit, ok)
	}

	miss := Ray{Origin: math.Vec3{X: 3, Z: 4}, Direction: math.Vec3{Z: -1}}
	if _, ok := IntersectModel(miss, m, m.Transform(0)); ok {
		t.Error("ray beside the model should miss")
	}

	if _, ok := IntersectModel(r, nil, math.Identity()); ok {
		t.Error("nil model should never hit")
	}
}

func TestTransformAABB(t *testing.T) {
	box := AABB{Min: math.Vec3{X: -1, Y: -1, Z: -1}, Max: math.Vec3{X: 1, Y: 1, Z: 1}}
	got := TransformAABB(box, math.Translate(math.Vec3{X: 5}).Mul(math.UniformScale(2)))

	if !got.Min.ApproxEqual(math.Vec3{X: 3, Y: -2, Z: -2}, eps) || !got.Max.ApproxEqual(math.Vec3{X: 7, Y: 2, Z: 2}, eps) {
		t.Errorf("transformed box = %+v", got)
	}
}
