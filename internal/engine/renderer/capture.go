package renderer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Capture reads the current back buffer into an image.
func (r *Renderer) Capture() *image.RGBA {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return flipRows(pixels, w, h)
}

// flipRows copies bottom-up GL rows into a top-down image.
func flipRows(pixels []byte, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	row := w * 4
	for y := 0; y < h; y++ {
		src := (h - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img
}

// SaveScreenshot writes img as dir/<name>_<timestamp>.png and returns the path.
func SaveScreenshot(img image.Image, dir, name string) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating screenshot dir: %w", err)
		}
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", name, time.Now().Format("2006-01-02_15-04-05")))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}
	return path, f.Close()
}
