// Package picking provides ray casting against product models.
package picking

import (
	gomath "math"

	"github.com/Faultbox/valvesite/internal/engine/scene"
	"github.com/Faultbox/valvesite/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Hit is the nearest intersection of a ray with a model.
type Hit struct {
	Point    math.Vec3 // World-space intersection
	Distance float32   // Distance along the ray
	Mesh     int       // Index into Model.Meshes
	Triangle int       // Triangle index within the mesh
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH // Flip Y

	// Unproject near and far points
	nearWorld := invViewProj.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: -1})
	farWorld := invViewProj.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: 1})

	return Ray{Origin: nearWorld, Direction: farWorld.Sub(nearWorld).Normalize()}
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	origin := r.Origin.Array()
	dir := r.Direction.Array()
	lo := box.Min.Array()
	hi := box.Max.Array()

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	// Check if intersection is valid
	if tmax < tmin || tmax < 0 {
		return 0, false
	}

	// Return entry point, or exit point if starting inside
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle is the Möller-Trumbore test. Both faces count as hits.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t float32, hit bool) {
	const epsilon = 1e-7

	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -epsilon && det < epsilon {
		return 0, false // Parallel to the triangle plane
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = e2.Dot(q) * inv
	if t <= epsilon {
		return 0, false // Behind the origin
	}
	return t, true
}

// NewAABB creates an AABB from two corners in any order.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// TransformAABB returns the world-space box enclosing all eight corners of
// box under m.
func TransformAABB(box AABB, m math.Mat4) AABB {
	var out AABB
	for i := 0; i < 8; i++ {
		corner := math.Vec3{X: box.Min.X, Y: box.Min.Y, Z: box.Min.Z}
		if i&1 != 0 {
			corner.X = box.Max.X
		}
		if i&2 != 0 {
			corner.Y = box.Max.Y
		}
		if i&4 != 0 {
			corner.Z = box.Max.Z
		}
		p := m.TransformPoint(corner)
		if i == 0 {
			out = AABB{Min: p, Max: p}
			continue
		}
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// IntersectModel casts a world-space ray against every triangle of the model
// placed by modelMatrix and returns the nearest hit.
func IntersectModel(r Ray, model *scene.Model, modelMatrix math.Mat4) (Hit, bool) {
	if model == nil {
		return Hit{}, false
	}
	b := model.Bounds()
	if b.Empty() {
		return Hit{}, false
	}

	// Cheap reject against the transformed bounds first.
	if _, ok := r.IntersectAABB(TransformAABB(AABB{Min: b.Min, Max: b.Max}, modelMatrix)); !ok {
		return Hit{}, false
	}

	// Test in model space: the ray is moved by the inverse transform and the
	// hit distance is recomputed in world space afterwards.
	inv := modelMatrix.Inverse()
	local := Ray{
		Origin:    inv.TransformPoint(r.Origin),
		Direction: inv.TransformDirection(r.Direction).Normalize(),
	}

	best := Hit{Distance: float32(gomath.MaxFloat32)}
	found := false
	for mi, mesh := range model.Meshes {
		for ti := 0; ti < mesh.TriangleCount(); ti++ {
			a, bb, c := mesh.Triangle(ti)
			t, ok := local.IntersectTriangle(a, bb, c)
			if !ok {
				continue
			}
			world := modelMatrix.TransformPoint(local.At(t))
			d := world.Distance(r.Origin)
			if d < best.Distance {
				best = Hit{Point: world, Distance: d, Mesh: mi, Triangle: ti}
				found = true
			}
		}
	}
	return best, found
}
