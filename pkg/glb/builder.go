package glb

import (
	"encoding/json"
	"io"
	"slices"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Builder assembles a single-scene document with one embedded buffer. It is
// used to produce sample assets and test fixtures.
type Builder struct {
	doc *Document
}

// NewBuilder returns an empty builder with one scene.
func NewBuilder(generator string) *Builder {
	zero := uint32(0)
	return &Builder{
		doc: &gltf.Document{
			Asset:  gltf.Asset{Version: "2.0", Generator: generator},
			Scene:  &zero,
			Scenes: []*gltf.Scene{{}},
		},
	}
}

// AddMaterial appends a metallic-roughness material and returns its index.
func (b *Builder) AddMaterial(name string, baseColor [4]float32, metallic, roughness float32) int {
	color := widen4(baseColor)
	m, r := float64(metallic), float64(roughness)
	b.doc.Materials = append(b.doc.Materials, &gltf.Material{
		Name: name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &color,
			MetallicFactor:  &m,
			RoughnessFactor: &r,
		},
	})
	return len(b.doc.Materials) - 1
}

// AddUnlitMaterial appends a KHR_materials_unlit material.
func (b *Builder) AddUnlitMaterial(name string, baseColor [4]float32) int {
	color := widen4(baseColor)
	b.doc.Materials = append(b.doc.Materials, &gltf.Material{
		Name:                 name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &color},
		Extensions:           gltf.Extensions{ExtUnlit: json.RawMessage("{}")},
	})
	if !slices.Contains(b.doc.ExtensionsUsed, ExtUnlit) {
		b.doc.ExtensionsUsed = append(b.doc.ExtensionsUsed, ExtUnlit)
	}
	return len(b.doc.Materials) - 1
}

// AddMesh appends a triangle mesh and a root node that instances it. A
// negative material leaves the primitive without one. It returns the node
// index so callers can set its transform.
func (b *Builder) AddMesh(name string, positions [][3]float32, indices []uint32, material int) int {
	posAcc := modeler.WritePosition(b.doc, positions)
	idxAcc := modeler.WriteIndices(b.doc, indices)

	prim := &gltf.Primitive{
		Attributes: gltf.Attribute{AttrPosition: posAcc},
		Indices:    &idxAcc,
	}
	if material >= 0 {
		m := uint32(material)
		prim.Material = &m
	}
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
	mesh := uint32(len(b.doc.Meshes) - 1)

	b.doc.Nodes = append(b.doc.Nodes, &gltf.Node{Name: name, Mesh: &mesh})
	node := len(b.doc.Nodes) - 1
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, uint32(node))
	return node
}

// Node returns a node for in-place edits before Build.
func (b *Builder) Node(i int) *Node {
	return b.doc.Nodes[i]
}

// Build returns the assembled document. Later calls to the builder keep
// modifying it.
func (b *Builder) Build() *Document {
	return b.doc
}

// WriteTo encodes the built document as GLB.
func (b *Builder) WriteTo(w io.Writer) error {
	return Encode(w, b.doc)
}

func widen4(v [4]float32) [4]float64 {
	return [4]float64{float64(v[0]), float64(v[1]), float64(v[2]), float64(v[3])}
}

// Box returns the 8 corners and 12 triangles of an axis-aligned box,
// wound counter-clockwise when seen from outside.
func Box(lo, hi [3]float32) ([][3]float32, []uint32) {
	positions := [][3]float32{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]}, {hi[0], hi[1], lo[2]}, {lo[0], hi[1], lo[2]},
		{lo[0], lo[1], hi[2]}, {hi[0], lo[1], hi[2]}, {hi[0], hi[1], hi[2]}, {lo[0], hi[1], hi[2]},
	}
	indices := []uint32{
		4, 5, 6, 4, 6, 7, // +Z
		1, 0, 3, 1, 3, 2, // -Z
		5, 1, 2, 5, 2, 6, // +X
		0, 4, 7, 0, 7, 3, // -X
		7, 6, 2, 7, 2, 3, // +Y
		0, 1, 5, 0, 5, 4, // -Y
	}
	return positions, indices
}
