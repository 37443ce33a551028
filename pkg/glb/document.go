package glb

import (
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/valvesite/pkg/math"
)

// glTF document types, shared with qmuntal/gltf.
type (
	Document   = gltf.Document
	Asset      = gltf.Asset
	Scene      = gltf.Scene
	Node       = gltf.Node
	Mesh       = gltf.Mesh
	Primitive  = gltf.Primitive
	Material   = gltf.Material
	Accessor   = gltf.Accessor
	BufferView = gltf.BufferView
	Buffer     = gltf.Buffer
)

// Attribute names.
const (
	AttrPosition = "POSITION"
	AttrNormal   = "NORMAL"
)

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// ExtUnlit marks a material as unlit.
const ExtUnlit = "KHR_materials_unlit"

// DefaultScene returns the scene to display, or nil when there is none.
func DefaultScene(doc *Document) *Scene {
	if len(doc.Scenes) == 0 {
		return nil
	}
	if doc.Scene != nil && *doc.Scene >= 0 && int(*doc.Scene) < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene]
	}
	return doc.Scenes[0]
}

// IsTriangles reports whether the primitive draws a triangle list.
func IsTriangles(p *Primitive) bool {
	return p.Mode == gltf.PrimitiveTriangles
}

// LocalTransform returns the node's transform relative to its parent. A
// matrix other than identity overrides TRS.
func LocalTransform(n *Node) math.Mat4 {
	if n.Matrix != [16]float64{} && n.Matrix != identityMatrix {
		var m math.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return m
	}

	t := math.Vec3{X: float32(n.Translation[0]), Y: float32(n.Translation[1]), Z: float32(n.Translation[2])}
	r := math.QuatIdentity()
	if n.Rotation != [4]float64{} {
		r = math.Quat{X: float32(n.Rotation[0]), Y: float32(n.Rotation[1]), Z: float32(n.Rotation[2]), W: float32(n.Rotation[3])}
	}
	s := math.Vec3{X: 1, Y: 1, Z: 1}
	if n.Scale != [3]float64{} {
		s = math.Vec3{X: float32(n.Scale[0]), Y: float32(n.Scale[1]), Z: float32(n.Scale[2])}
	}
	return math.TRS(t, r, s)
}

// Unlit reports whether the material uses KHR_materials_unlit.
func Unlit(m *Material) bool {
	_, ok := m.Extensions[ExtUnlit]
	return ok
}

// BaseColor returns the base color factor (default opaque white).
func BaseColor(m *Material) [4]float32 {
	if m.PBRMetallicRoughness == nil || m.PBRMetallicRoughness.BaseColorFactor == nil {
		return [4]float32{1, 1, 1, 1}
	}
	c := m.PBRMetallicRoughness.BaseColorFactor
	return [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
}

// MetallicRoughness returns the metallic and roughness factors (default 1, 1).
func MetallicRoughness(m *Material) (metallic, roughness float32) {
	metallic, roughness = 1, 1
	pbr := m.PBRMetallicRoughness
	if pbr == nil {
		return
	}
	if pbr.MetallicFactor != nil {
		metallic = float32(*pbr.MetallicFactor)
	}
	if pbr.RoughnessFactor != nil {
		roughness = float32(*pbr.RoughnessFactor)
	}
	return
}
