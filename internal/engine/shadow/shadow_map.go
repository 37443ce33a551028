package shadow

import (
	"errors"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// DefaultResolution is the depth map edge length in texels.
const DefaultResolution = 2048

// Map is a depth-only framebuffer sampled with hardware comparison.
type Map struct {
	fbo, depth uint32
	resolution int32
	viewport   [4]int32
}

// NewMap allocates a square depth map. It needs a current GL context.
func NewMap(resolution int32) (*Map, error) {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	m := &Map{resolution: resolution}

	gl.GenFramebuffers(1, &m.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, m.fbo)

	gl.GenTextures(1, &m.depth)
	gl.BindTexture(gl.TEXTURE_2D, m.depth)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, resolution, resolution, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	// Outside the map is lit.
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)

	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, m.depth, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		m.Destroy()
		return nil, errors.New("shadow: depth framebuffer incomplete")
	}
	return m, nil
}

// Begin redirects drawing into the depth map. Front faces are culled to
// keep acne off lit surfaces.
func (m *Map) Begin() {
	gl.GetIntegerv(gl.VIEWPORT, &m.viewport[0])
	gl.BindFramebuffer(gl.FRAMEBUFFER, m.fbo)
	gl.Viewport(0, 0, m.resolution, m.resolution)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.FRONT)
}

// End restores the default framebuffer and viewport.
func (m *Map) End() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(m.viewport[0], m.viewport[1], m.viewport[2], m.viewport[3])
	gl.CullFace(gl.BACK)
	gl.Disable(gl.CULL_FACE)
}

// Bind attaches the depth texture to the given texture unit.
func (m *Map) Bind(unit uint32) {
	gl.ActiveTexture(unit)
	gl.BindTexture(gl.TEXTURE_2D, m.depth)
}

// Destroy frees the GPU objects.
func (m *Map) Destroy() {
	if m.fbo != 0 {
		gl.DeleteFramebuffers(1, &m.fbo)
		m.fbo = 0
	}
	if m.depth != 0 {
		gl.DeleteTextures(1, &m.depth)
		m.depth = 0
	}
}
