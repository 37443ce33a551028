package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/valvesite/internal/engine/scene"
	"github.com/Faultbox/valvesite/internal/engine/shadow"
	"github.com/Faultbox/valvesite/pkg/math"
)

// floatsPerVertex is position + normal.
const floatsPerVertex = 6

type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
	material      scene.Material
	castShadow    bool
	receiveShadow bool
}

// interleave packs positions and normals as x y z nx ny nz per vertex.
// A mesh without normals gets +Y.
func interleave(m *scene.Mesh) []float32 {
	out := make([]float32, 0, len(m.Positions)*floatsPerVertex)
	for i, p := range m.Positions {
		n := math.Vec3{Y: 1}
		if i < len(m.Normals) {
			n = m.Normals[i]
		}
		out = append(out, p.X, p.Y, p.Z, n.X, n.Y, n.Z)
	}
	return out
}

// defaultMaterial is used for meshes that reference none.
var defaultMaterial = scene.Material{
	Name:      "default",
	BaseColor: [4]float32{0.8, 0.8, 0.8, 1},
	Metalness: scene.MachinedMetalness,
	Roughness: scene.MachinedRoughness,
}

// UploadModel replaces the GPU copy of the current model.
func (r *Renderer) UploadModel(m *scene.Model) {
	r.ClearModel()
	if m == nil {
		return
	}
	for _, mesh := range m.Meshes {
		if len(mesh.Indices) == 0 {
			continue
		}
		g := gpuMesh{
			material:      defaultMaterial,
			castShadow:    mesh.CastShadow,
			receiveShadow: mesh.ReceiveShadow,
		}
		if mesh.Material != nil {
			g.material = *mesh.Material
		}

		vertices := interleave(mesh)
		stride := int32(floatsPerVertex * 4)

		gl.GenVertexArrays(1, &g.vao)
		gl.BindVertexArray(g.vao)

		gl.GenBuffers(1, &g.vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
		gl.EnableVertexAttribArray(1)

		gl.GenBuffers(1, &g.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

		g.indexCount = int32(len(mesh.Indices))
		gl.BindVertexArray(0)
		r.meshes = append(r.meshes, g)
	}
	r.bounds = m.Bounds()
	r.log.Debug("model uploaded", zap.String("model", m.Name), zap.Int("meshes", len(r.meshes)))
}

// ClearModel frees the uploaded meshes.
func (r *Renderer) ClearModel() {
	for i := range r.meshes {
		g := &r.meshes[i]
		gl.DeleteVertexArrays(1, &g.vao)
		gl.DeleteBuffers(1, &g.vbo)
		gl.DeleteBuffers(1, &g.ebo)
	}
	r.meshes = nil
	r.bounds = scene.Bounds{}
}

// HasModel reports whether a model is uploaded.
func (r *Renderer) HasModel() bool {
	return len(r.meshes) > 0
}

// DrawModel draws the uploaded model under the studio rig.
func (r *Renderer) DrawModel(viewProj, model math.Mat4, eye math.Vec3) {
	if len(r.meshes) == 0 {
		return
	}
	shadows := r.shadowPass(model)
	lightVP := r.lightViewProj(model)

	p := r.modelProgram
	p.Use()

	mvp := viewProj.Mul(model)
	gl.UniformMatrix4fv(p.Uniform("uMVP"), 1, false, mvp.Ptr())
	gl.UniformMatrix4fv(p.Uniform("uModel"), 1, false, model.Ptr())
	gl.UniformMatrix4fv(p.Uniform("uLightVP"), 1, false, lightVP.Ptr())
	gl.Uniform3f(p.Uniform("uEye"), eye.X, eye.Y, eye.Z)
	if shadows {
		r.shadows.Bind(gl.TEXTURE1)
	}
	gl.Uniform1i(p.Uniform("uShadowMap"), 1)
	r.uploadRig()

	for i := range r.meshes {
		g := &r.meshes[i]
		mat := &g.material
		gl.Uniform4f(p.Uniform("uBaseColor"), mat.BaseColor[0], mat.BaseColor[1], mat.BaseColor[2], mat.BaseColor[3])
		gl.Uniform1f(p.Uniform("uMetalness"), mat.Metalness)
		gl.Uniform1f(p.Uniform("uRoughness"), mat.Roughness)
		unlit := int32(0)
		if mat.Kind == scene.MaterialUnlit {
			unlit = 1
		}
		gl.Uniform1i(p.Uniform("uUnlit"), unlit)
		receive := int32(0)
		if shadows && g.receiveShadow {
			receive = 1
		}
		gl.Uniform1i(p.Uniform("uReceiveShadow"), receive)

		if mat.DoubleSided {
			gl.Disable(gl.CULL_FACE)
		} else {
			gl.Enable(gl.CULL_FACE)
		}
		gl.BindVertexArray(g.vao)
		gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.Disable(gl.CULL_FACE)
	gl.BindVertexArray(0)
}

// lightViewProj frames the model, as placed by model, from the key light.
func (r *Renderer) lightViewProj(model math.Mat4) math.Mat4 {
	if r.bounds.Empty() {
		return math.Identity()
	}
	center, radius := shadow.Sphere(r.bounds.Min, r.bounds.Max, model)
	return shadow.LightMatrix(r.keyLight, center, radius)
}

// shadowPass renders the casting meshes into the depth map. It reports
// whether the map holds this frame's shadows.
func (r *Renderer) shadowPass(model math.Mat4) bool {
	if r.shadows == nil || r.bounds.Empty() {
		return false
	}
	casters := 0
	for i := range r.meshes {
		if r.meshes[i].castShadow {
			casters++
		}
	}
	if casters == 0 {
		return false
	}

	lightMVP := r.lightViewProj(model).Mul(model)
	p := r.depthProgram
	p.Use()
	gl.UniformMatrix4fv(p.Uniform("uLightMVP"), 1, false, lightMVP.Ptr())

	r.shadows.Begin()
	for i := range r.meshes {
		g := &r.meshes[i]
		if !g.castShadow {
			continue
		}
		gl.BindVertexArray(g.vao)
		gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
	r.shadows.End()
	return true
}

func (r *Renderer) uploadRig() {
	p, rig := r.modelProgram, &r.rig
	gl.Uniform3f(p.Uniform("uAmbient"), rig.Ambient[0], rig.Ambient[1], rig.Ambient[2])

	gl.Uniform1i(p.Uniform("uDirCount"), rig.DirCount)
	if rig.DirCount > 0 {
		gl.Uniform3fv(p.Uniform("uDirDirections"), rig.DirCount, &rig.DirDirections[0])
		gl.Uniform3fv(p.Uniform("uDirColors"), rig.DirCount, &rig.DirColors[0])
	}

	gl.Uniform1i(p.Uniform("uLightCount"), rig.LightCount)
	if rig.LightCount > 0 {
		gl.Uniform3fv(p.Uniform("uLightPositions"), rig.LightCount, &rig.LightPositions[0])
		gl.Uniform3fv(p.Uniform("uLightColors"), rig.LightCount, &rig.LightColors[0])
		gl.Uniform1fv(p.Uniform("uLightRanges"), rig.LightCount, &rig.LightRanges[0])
		gl.Uniform3fv(p.Uniform("uSpotAxes"), rig.LightCount, &rig.SpotAxes[0])
		gl.Uniform1fv(p.Uniform("uSpotOuterCos"), rig.LightCount, &rig.SpotOuterCos[0])
		gl.Uniform1fv(p.Uniform("uSpotInnerCos"), rig.LightCount, &rig.SpotInnerCos[0])
	}
}
