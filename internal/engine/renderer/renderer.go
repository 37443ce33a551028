// Package renderer draws a product model, or its fallback image, with OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/valvesite/internal/engine/lighting"
	"github.com/Faultbox/valvesite/internal/engine/renderer/shaders"
	"github.com/Faultbox/valvesite/internal/engine/scene"
	"github.com/Faultbox/valvesite/internal/engine/shader"
	"github.com/Faultbox/valvesite/internal/engine/shadow"
	"github.com/Faultbox/valvesite/internal/logger"
	"github.com/Faultbox/valvesite/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Background is the clear color, a pale studio grey.
var Background = [4]float32{0.93, 0.94, 0.96, 1}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	modelProgram *shader.Program
	quadProgram  *shader.Program
	depthProgram *shader.Program

	meshes []gpuMesh
	bounds scene.Bounds
	rig    lighting.Packed

	// nil when the driver cannot give us a depth framebuffer
	shadows  *shadow.Map
	keyLight math.Vec3

	fallback fallbackQuad

	log *zap.Logger
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, rig lighting.Rig) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		rig:    rig.Pack(),
		log:    logger.Named("renderer"),
	}
	if len(rig.Directionals) > 0 {
		r.keyLight = rig.Directionals[0].Direction()
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(Background[0], Background[1], Background[2], Background[3])

	var err error
	if r.modelProgram, err = shader.Compile(shaders.ModelVertexShader, shaders.ModelFragmentShader); err != nil {
		return nil, fmt.Errorf("model shader: %w", err)
	}
	if r.quadProgram, err = shader.Compile(shaders.QuadVertexShader, shaders.QuadFragmentShader); err != nil {
		r.modelProgram.Delete()
		return nil, fmt.Errorf("quad shader: %w", err)
	}
	if r.depthProgram, err = shader.Compile(shaders.DepthVertexShader, shaders.DepthFragmentShader); err != nil {
		r.modelProgram.Delete()
		r.quadProgram.Delete()
		return nil, fmt.Errorf("depth shader: %w", err)
	}
	r.fallback.init()

	if len(rig.Directionals) > 0 {
		if r.shadows, err = shadow.NewMap(shadow.DefaultResolution); err != nil {
			r.log.Warn("shadows disabled", zap.Error(err))
		}
	}

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.ClearModel()
	r.fallback.release()
	if r.shadows != nil {
		r.shadows.Destroy()
	}
	r.modelProgram.Delete()
	r.quadProgram.Delete()
	r.depthProgram.Delete()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}
