package scene

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Faultbox/valvesite/pkg/glb"
	"github.com/Faultbox/valvesite/pkg/math"
)

func parse(t *testing.T, b *glb.Builder) *glb.File {
	t.Helper()
	var buf bytes.Buffer
	if err := b.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	f, err := glb.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return f
}

// twoPartValve is a body box plus a handle box offset along +X, with one
// standard and one unlit material.
func twoPartValve(t *testing.T) *Model {
	t.Helper()
	b := glb.NewBuilder("scene test")
	steel := b.AddMaterial("steel", [4]float32{0.7, 0.7, 0.7, 1}, 0.1, 0.9)
	label := b.AddUnlitMaterial("label", [4]float32{1, 0, 0, 1})

	pos, idx := glb.Box([3]float32{-1, -1, -1}, [3]float32{1, 1, 1})
	b.AddMesh("body", pos, idx, steel)

	pos, idx = glb.Box([3]float32{0, 0, 0}, [3]float32{1, 1, 1})
	handle := b.AddMesh("handle", pos, idx, label)
	b.Node(handle).Translation = [3]float64{2, 0, 0}

	m, err := FromFile(parse(t, b))
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	return m
}

func TestFromFile(t *testing.T) {
	m := twoPartValve(t)

	if len(m.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(m.Meshes))
	}
	if m.TriangleCount() != 24 || m.VertexCount() != 16 {
		t.Errorf("triangles=%d vertices=%d", m.TriangleCount(), m.VertexCount())
	}

	b := m.Bounds()
	if !b.Min.ApproxEqual(math.Vec3{X: -1, Y: -1, Z: -1}, 1e-6) || !b.Max.ApproxEqual(math.Vec3{X: 3, Y: 1, Z: 1}, 1e-6) {
		t.Errorf("bounds = %+v .. %+v", b.Min, b.Max)
	}

	handle := m.Meshes[1]
	if handle.Material.Kind != MaterialUnlit {
		t.Errorf("handle material kind = %v", handle.Material.Kind)
	}
	for _, n := range handle.Normals {
		if l := n.Length(); l < 0.99 || l > 1.01 {
			t.Fatalf("generated normal not unit length: %v", n)
		}
	}
}

func TestApplyMachinedFinish(t *testing.T) {
	m := twoPartValve(t)

	for _, mesh := range m.Meshes {
		if mesh.CastShadow || mesh.ReceiveShadow {
			t.Fatal("shadows should be off before the finish pass")
		}
	}

	m.ApplyMachinedFinish()

	for _, mesh := range m.Meshes {
		if !mesh.CastShadow || !mesh.ReceiveShadow {
			t.Errorf("mesh %q shadows not enabled", mesh.Name)
		}
	}
	steel := m.Meshes[0].Material
	if steel.Metalness != MachinedMetalness || steel.Roughness != MachinedRoughness {
		t.Errorf("standard material = %v/%v", steel.Metalness, steel.Roughness)
	}
	label := m.Meshes[1].Material
	if label.Metalness != 1 || label.Roughness != 1 {
		t.Errorf("unlit material should be untouched, got %v/%v", label.Metalness, label.Roughness)
	}

	// A second pass is a no-op even if materials were edited in between.
	steel.Metalness = 0.5
	m.ApplyMachinedFinish()
	if steel.Metalness != 0.5 {
		t.Error("finish pass ran twice")
	}
	if !m.Finished() {
		t.Error("Finished should report true")
	}
}

func TestFitScaleAndTransform(t *testing.T) {
	m := twoPartValve(t)

	// Largest dimension is X: 4 units.
	if s := m.FitScale(DefaultFitSize); s != DefaultFitSize/4 {
		t.Errorf("scale = %v, want %v", s, DefaultFitSize/4)
	}

	// The bounds center maps to the origin and the X extent to 2.5.
	tr := m.Transform(0)
	if c := tr.TransformPoint(m.Bounds().Center()); !c.ApproxEqual(math.Vec3{}, 1e-5) {
		t.Errorf("center maps to %v", c)
	}
	lo := tr.TransformPoint(m.Bounds().Min)
	hi := tr.TransformPoint(m.Bounds().Max)
	if w := hi.X - lo.X; math.Abs(w-DefaultFitSize) > 1e-5 {
		t.Errorf("fitted width = %v", w)
	}

	// Yaw of pi/2 swings +X onto -Z.
	p := m.Transform(math.Pi / 2).TransformPoint(math.Vec3{X: 3})
	if p.Z > -1 {
		t.Errorf("rotated point = %v, expected negative Z", p)
	}
}

func TestFromFileOrderIndependence(t *testing.T) {
	// Finish then fit, and fit then finish, must agree.
	a := twoPartValve(t)
	a.ApplyMachinedFinish()
	a.FitScale(DefaultFitSize)

	b := twoPartValve(t)
	b.FitScale(DefaultFitSize)
	b.ApplyMachinedFinish()

	if a.Transform(0.3) != b.Transform(0.3) {
		t.Error("transform depends on pass order")
	}
	if a.Meshes[0].Material.Metalness != b.Meshes[0].Material.Metalness {
		t.Error("material depends on pass order")
	}
}

func TestFromFileErrors(t *testing.T) {
	t.Run("no scene", func(t *testing.T) {
		f := &glb.File{Document: &glb.Document{Asset: glb.Asset{Version: "2.0"}}}
		if _, err := FromFile(f); !errors.Is(err, ErrNoGeometry) {
			t.Errorf("expected ErrNoGeometry, got %v", err)
		}
	})

	t.Run("empty scene", func(t *testing.T) {
		if _, err := FromFile(parse(t, glb.NewBuilder(""))); !errors.Is(err, ErrNoGeometry) {
			t.Errorf("expected ErrNoGeometry, got %v", err)
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		b := glb.NewBuilder("")
		b.AddMesh("bad", [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []uint32{0, 1, 7}, -1)
		if _, err := FromFile(parse(t, b)); err == nil {
			t.Error("expected index range error")
		}
	})

	t.Run("oversized accessor", func(t *testing.T) {
		for _, detach := range []bool{false, true} {
			b := glb.NewBuilder("")
			pos, idx := glb.Box([3]float32{0, 0, 0}, [3]float32{1, 1, 1})
			b.AddMesh("huge", pos, idx, -1)
			acc := b.Build().Accessors[0]
			acc.Count = 1 << 62
			if detach {
				acc.BufferView = nil
			}
			if _, err := FromFile(parse(t, b)); !errors.Is(err, glb.ErrInvalidAccessor) {
				t.Errorf("detached=%v: expected ErrInvalidAccessor, got %v", detach, err)
			}
		}
	})

	t.Run("node cycle", func(t *testing.T) {
		b := glb.NewBuilder("")
		pos, idx := glb.Box([3]float32{0, 0, 0}, [3]float32{1, 1, 1})
		n := b.AddMesh("loop", pos, idx, -1)
		b.Node(n).Children = []uint32{uint32(n)}
		if _, err := FromFile(parse(t, b)); err == nil {
			t.Error("expected depth error for cyclic nodes")
		}
	})
}

func TestMissingMaterialUsesDefault(t *testing.T) {
	b := glb.NewBuilder("")
	pos, idx := glb.Box([3]float32{0, 0, 0}, [3]float32{1, 1, 1})
	b.AddMesh("a", pos, idx, -1)
	b.AddMesh("b", pos, idx, -1)

	m, err := FromFile(parse(t, b))
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if m.Meshes[0].Material == nil || m.Meshes[0].Material != m.Meshes[1].Material {
		t.Error("meshes without a material should share one default")
	}
	if len(m.Materials) != 1 {
		t.Errorf("expected 1 material, got %d", len(m.Materials))
	}
}
