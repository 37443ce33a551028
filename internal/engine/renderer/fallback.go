package renderer

import (
	"image"
	"image/draw"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// fallbackQuad shows the product photo while the model is loading or after
// it failed.
type fallbackQuad struct {
	vao, vbo uint32
	tex      uint32
	w, h     int
}

func (q *fallbackQuad) init() {
	// Two triangles covering clip space: x y u v.
	verts := []float32{
		-1, -1, 0, 1,
		1, -1, 1, 1,
		1, 1, 1, 0,
		-1, -1, 0, 1,
		1, 1, 1, 0,
		-1, 1, 0, 0,
	}
	gl.GenVertexArrays(1, &q.vao)
	gl.BindVertexArray(q.vao)
	gl.GenBuffers(1, &q.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 4*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 4*4, 2*4)
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)
}

func (q *fallbackQuad) release() {
	if q.tex != 0 {
		gl.DeleteTextures(1, &q.tex)
		q.tex = 0
	}
	gl.DeleteBuffers(1, &q.vbo)
	gl.DeleteVertexArrays(1, &q.vao)
}

// toRGBA converts any decoded image to tightly packed RGBA rows.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == rgba.Rect.Dx()*4 && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// fitScale returns the clip-space scale that letterboxes an image of size
// iw x ih into a viewport of vw x vh while keeping its aspect ratio.
func fitScale(iw, ih, vw, vh int) (sx, sy float32) {
	if iw <= 0 || ih <= 0 || vw <= 0 || vh <= 0 {
		return 1, 1
	}
	img := float32(iw) / float32(ih)
	view := float32(vw) / float32(vh)
	if img > view {
		return 1, view / img
	}
	return img / view, 1
}

// SetFallbackImage uploads the image shown by DrawFallback. nil clears it.
func (r *Renderer) SetFallbackImage(img image.Image) {
	q := &r.fallback
	if q.tex != 0 {
		gl.DeleteTextures(1, &q.tex)
		q.tex = 0
	}
	if img == nil {
		return
	}

	rgba := toRGBA(img)
	q.w, q.h = rgba.Rect.Dx(), rgba.Rect.Dy()
	if q.w == 0 || q.h == 0 {
		return
	}
	gl.GenTextures(1, &q.tex)
	gl.BindTexture(gl.TEXTURE_2D, q.tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(q.w), int32(q.h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

// DrawFallback draws the fallback image letterboxed over the viewport.
func (r *Renderer) DrawFallback() {
	q := &r.fallback
	if q.tex == 0 {
		return
	}
	p := r.quadProgram
	p.Use()
	sx, sy := fitScale(q.w, q.h, r.config.Width, r.config.Height)
	gl.Uniform2f(p.Uniform("uScale"), sx, sy)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, q.tex)
	gl.Uniform1i(p.Uniform("uImage"), 0)

	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}
