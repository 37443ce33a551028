package renderer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/valvesite/internal/engine/scene"
	"github.com/Faultbox/valvesite/pkg/math"
)

func TestInterleave(t *testing.T) {
	m := &scene.Mesh{
		Positions: []math.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}},
		Normals:   []math.Vec3{{Z: 1}},
	}
	want := []float32{
		1, 2, 3, 0, 0, 1,
		// Missing normal falls back to +Y.
		4, 5, 6, 0, 1, 0,
	}
	if diff := cmp.Diff(want, interleave(m)); diff != "" {
		t.Errorf("interleave (-want +got):\n%s", diff)
	}
}

func TestToRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 5, 5))
	src.Set(2, 3, color.NRGBA{R: 255, A: 255})

	got := toRGBA(src)
	if got.Rect != image.Rect(0, 0, 3, 2) {
		t.Fatalf("rect = %v, want origin-based 3x2", got.Rect)
	}
	if r, _, _, a := got.At(0, 0).RGBA(); r != 0xffff || a != 0xffff {
		t.Errorf("top-left pixel not carried over: r=%x a=%x", r, a)
	}

	// Packed RGBA at the origin is used as is.
	packed := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if toRGBA(packed) != packed {
		t.Error("packed RGBA image was copied")
	}
}

func TestFitScale(t *testing.T) {
	tests := []struct {
		name           string
		iw, ih, vw, vh int
		sx, sy         float32
	}{
		{"same aspect", 480, 650, 480, 650, 1, 1},
		{"square in portrait", 600, 600, 480, 650, 1, 480.0 / 650.0},
		{"wide in square", 200, 100, 400, 400, 1, 0.5},
		{"tall in square", 100, 200, 400, 400, 0.5, 1},
		{"empty", 0, 0, 400, 400, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := fitScale(tt.iw, tt.ih, tt.vw, tt.vh)
			if math.Abs(sx-tt.sx) > 1e-5 || math.Abs(sy-tt.sy) > 1e-5 {
				t.Errorf("fitScale = (%f, %f), want (%f, %f)", sx, sy, tt.sx, tt.sy)
			}
		})
	}
}

func TestFlipRows(t *testing.T) {
	// Two rows of one pixel, bottom row first as GL returns them.
	pixels := []byte{
		1, 1, 1, 255,
		2, 2, 2, 255,
	}
	img := flipRows(pixels, 1, 2)
	if got := img.RGBAAt(0, 0).R; got != 2 {
		t.Errorf("top row R = %d, want 2", got)
	}
	if got := img.RGBAAt(0, 1).R; got != 1 {
		t.Errorf("bottom row R = %d, want 1", got)
	}
}

func TestSaveScreenshot(t *testing.T) {
	dir := t.TempDir() + "/shots"
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	path, err := SaveScreenshot(img, dir, "ball-valve")
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, _ := got.At(1, 1).RGBA(); r != 0xffff {
		t.Errorf("pixel (1,1) red = %#x", r)
	}
}
