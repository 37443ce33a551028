// Package scene holds a decoded product model: world-space triangle meshes,
// their materials and the bounds used to frame the model in the viewer.
//
// The package has no GPU dependency so the viewer state machine, picking and
// the HTTP viewer stream can use it without a GL context.
package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/valvesite/pkg/glb"
	"github.com/Faultbox/valvesite/pkg/math"
)

// Finish and framing constants.
const (
	MachinedMetalness = 0.7
	MachinedRoughness = 0.3

	// DefaultFitSize is the extent of the largest model dimension after FitScale.
	DefaultFitSize = 2.5

	maxNodeDepth = 64
)

// ErrNoGeometry is returned when a document has no triangles to show.
var ErrNoGeometry = errors.New("model has no triangle geometry")

// MaterialKind separates lit PBR materials from unlit ones.
type MaterialKind int

const (
	MaterialStandard MaterialKind = iota
	MaterialUnlit
)

// String returns the kind name.
func (k MaterialKind) String() string {
	switch k {
	case MaterialStandard:
		return "standard"
	case MaterialUnlit:
		return "unlit"
	default:
		return fmt.Sprintf("MaterialKind(%d)", int(k))
	}
}

// Material is a surface description shared by any number of meshes.
type Material struct {
	Name        string
	Kind        MaterialKind
	BaseColor   [4]float32
	Metalness   float32
	Roughness   float32
	DoubleSided bool
}

// Mesh is one triangle primitive with positions already in model space
// (all node transforms applied).
type Mesh struct {
	Name          string
	Positions     []math.Vec3
	Normals       []math.Vec3
	Indices       []uint32
	Material      *Material
	CastShadow    bool
	ReceiveShadow bool
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c math.Vec3) {
	return m.Positions[m.Indices[i*3]], m.Positions[m.Indices[i*3+1]], m.Positions[m.Indices[i*3+2]]
}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min, Max math.Vec3
	valid    bool
}

// Extend grows the box to contain p.
func (b *Bounds) Extend(p math.Vec3) {
	if !b.valid {
		b.Min, b.Max, b.valid = p, p, true
		return
	}
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Empty reports whether no point was added.
func (b Bounds) Empty() bool { return !b.valid }

// Center returns the box center.
func (b Bounds) Center() math.Vec3 { return b.Min.Add(b.Max).Scale(0.5) }

// Size returns the box extent per axis.
func (b Bounds) Size() math.Vec3 { return b.Max.Sub(b.Min) }

// MaxDim returns the largest extent.
func (b Bounds) MaxDim() float32 {
	s := b.Size()
	return max(s.X, s.Y, s.Z)
}

// Model is a loaded product model ready for display and picking.
type Model struct {
	Name      string
	Meshes    []*Mesh
	Materials []*Material

	bounds   Bounds
	offset   math.Vec3
	scale    float32
	finished bool
}

// FromFile builds a model from a parsed GLB, walking the default scene and
// flattening node transforms. Non-triangle primitives are skipped.
func FromFile(f *glb.File) (*Model, error) {
	doc := f.Document
	m := &Model{scale: 1}

	m.Materials = make([]*Material, len(doc.Materials))
	for i, src := range doc.Materials {
		if src == nil {
			src = &glb.Material{}
		}
		m.Materials[i] = convertMaterial(src)
	}
	var fallback *Material

	sc := glb.DefaultScene(doc)
	if sc == nil {
		return nil, ErrNoGeometry
	}
	m.Name = sc.Name

	var walk func(node int, parent math.Mat4, depth int) error
	walk = func(node int, parent math.Mat4, depth int) error {
		if node < 0 || node >= len(doc.Nodes) || doc.Nodes[node] == nil {
			return fmt.Errorf("node %d out of range", node)
		}
		if depth > maxNodeDepth {
			return fmt.Errorf("node hierarchy deeper than %d", maxNodeDepth)
		}
		n := doc.Nodes[node]
		world := parent.Mul(glb.LocalTransform(n))

		if n.Mesh != nil {
			if *n.Mesh < 0 || int(*n.Mesh) >= len(doc.Meshes) || doc.Meshes[*n.Mesh] == nil {
				return fmt.Errorf("node %d: mesh %d out of range", node, *n.Mesh)
			}
			src := doc.Meshes[*n.Mesh]
			for pi, p := range src.Primitives {
				if p == nil || !glb.IsTriangles(p) {
					continue
				}
				mesh, err := buildMesh(f, p, world)
				if err != nil {
					return fmt.Errorf("mesh %q primitive %d: %w", src.Name, pi, err)
				}
				mesh.Name = src.Name
				if p.Material != nil && *p.Material >= 0 && int(*p.Material) < len(m.Materials) {
					mesh.Material = m.Materials[*p.Material]
				} else {
					if fallback == nil {
						fallback = defaultMaterial()
						m.Materials = append(m.Materials, fallback)
					}
					mesh.Material = fallback
				}
				m.Meshes = append(m.Meshes, mesh)
			}
		}

		for _, child := range n.Children {
			if err := walk(int(child), world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range sc.Nodes {
		if err := walk(int(root), math.Identity(), 0); err != nil {
			return nil, err
		}
	}

	for _, mesh := range m.Meshes {
		for _, p := range mesh.Positions {
			m.bounds.Extend(p)
		}
	}
	if m.TriangleCount() == 0 {
		return nil, ErrNoGeometry
	}
	return m, nil
}

func buildMesh(f *glb.File, p *glb.Primitive, world math.Mat4) (*Mesh, error) {
	posAcc, ok := p.Attributes[glb.AttrPosition]
	if !ok {
		return nil, errors.New("primitive has no POSITION")
	}
	raw, err := f.ReadPositions(int(posAcc))
	if err != nil {
		return nil, err
	}

	mesh := &Mesh{Positions: make([]math.Vec3, len(raw))}
	for i, v := range raw {
		mesh.Positions[i] = world.TransformPoint(math.V3(v))
	}

	if p.Indices != nil {
		mesh.Indices, err = f.ReadIndices(int(*p.Indices))
		if err != nil {
			return nil, err
		}
	} else {
		mesh.Indices = make([]uint32, len(raw))
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}
	mesh.Indices = mesh.Indices[:len(mesh.Indices)/3*3]
	for _, idx := range mesh.Indices {
		if int(idx) >= len(mesh.Positions) {
			return nil, fmt.Errorf("index %d out of range (%d vertices)", idx, len(mesh.Positions))
		}
	}

	if nAcc, ok := p.Attributes[glb.AttrNormal]; ok {
		rawN, err := f.ReadNormals(int(nAcc))
		if err != nil {
			return nil, err
		}
		if len(rawN) == len(raw) {
			mesh.Normals = make([]math.Vec3, len(rawN))
			for i, n := range rawN {
				mesh.Normals[i] = world.TransformDirection(math.V3(n)).Normalize()
			}
		}
	}
	if mesh.Normals == nil {
		mesh.Normals = smoothNormals(mesh.Positions, mesh.Indices)
	}

	return mesh, nil
}

// smoothNormals averages area-weighted face normals per vertex.
func smoothNormals(pos []math.Vec3, idx []uint32) []math.Vec3 {
	normals := make([]math.Vec3, len(pos))
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := pos[idx[i]], pos[idx[i+1]], pos[idx[i+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		normals[idx[i]] = normals[idx[i]].Add(n)
		normals[idx[i+1]] = normals[idx[i+1]].Add(n)
		normals[idx[i+2]] = normals[idx[i+2]].Add(n)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}

func convertMaterial(src *glb.Material) *Material {
	metal, rough := glb.MetallicRoughness(src)
	kind := MaterialStandard
	if glb.Unlit(src) {
		kind = MaterialUnlit
	}
	return &Material{
		Name:        src.Name,
		Kind:        kind,
		BaseColor:   glb.BaseColor(src),
		Metalness:   metal,
		Roughness:   rough,
		DoubleSided: src.DoubleSided,
	}
}

// defaultMaterial follows the glTF default for primitives without one.
func defaultMaterial() *Material {
	return &Material{
		Name:      "default",
		Kind:      MaterialStandard,
		BaseColor: [4]float32{1, 1, 1, 1},
		Metalness: 1,
		Roughness: 1,
	}
}

// ApplyMachinedFinish turns on shadows for every mesh and forces standard
// materials to a brushed-metal look. It runs once; later calls do nothing.
func (m *Model) ApplyMachinedFinish() {
	if m.finished {
		return
	}
	for _, mesh := range m.Meshes {
		mesh.CastShadow = true
		mesh.ReceiveShadow = true
	}
	for _, mat := range m.Materials {
		if mat.Kind == MaterialStandard {
			mat.Metalness = MachinedMetalness
			mat.Roughness = MachinedRoughness
		}
	}
	m.finished = true
}

// Finished reports whether ApplyMachinedFinish has run.
func (m *Model) Finished() bool {
	return m.finished
}

// Bounds returns the model-space bounds of all geometry.
func (m *Model) Bounds() Bounds {
	return m.bounds
}

// FitScale centers the model at the origin and scales it so its largest
// dimension equals size. It returns the applied scale.
func (m *Model) FitScale(size float32) float32 {
	m.offset = m.bounds.Center().Scale(-1)
	m.scale = 1
	if d := m.bounds.MaxDim(); d > 0 {
		m.scale = size / d
	}
	return m.scale
}

// Scale returns the uniform scale set by FitScale (1 before).
func (m *Model) Scale() float32 {
	return m.scale
}

// Transform returns the model matrix for a yaw rotation about +Y applied
// after centering and scaling.
func (m *Model) Transform(yaw float32) math.Mat4 {
	return math.RotateY(yaw).Mul(math.UniformScale(m.scale)).Mul(math.Translate(m.offset))
}

// TriangleCount returns the total number of triangles.
func (m *Model) TriangleCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += mesh.TriangleCount()
	}
	return n
}

// VertexCount returns the total number of vertices.
func (m *Model) VertexCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += len(mesh.Positions)
	}
	return n
}
