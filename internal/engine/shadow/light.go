// Package shadow renders the key light's depth map so product meshes can
// shadow themselves.
package shadow

import (
	"github.com/Faultbox/valvesite/pkg/math"
)

// LightMatrix returns the view-projection of a directional light that sees
// the whole sphere (center, radius). toLight points from the scene towards
// the light and must be normalized.
func LightMatrix(toLight, center math.Vec3, radius float32) math.Mat4 {
	if radius <= 0 {
		radius = 1
	}
	distance := radius * 2
	eye := center.Add(toLight.Scale(distance))

	up := math.Vec3{Y: 1}
	if math.Abs(toLight.Y) > 0.99 {
		up = math.Vec3{Z: 1}
	}
	view := math.LookAt(eye, center, up)

	// A little slack keeps the silhouette off the map edge.
	half := radius * 1.1
	proj := math.Ortho(-half, half, -half, half, 0.01, distance+half)
	return proj.Mul(view)
}

// Sphere returns a bounding sphere of the box [lo, hi] after transforming it
// by m.
func Sphere(lo, hi math.Vec3, m math.Mat4) (center math.Vec3, radius float32) {
	var wmin, wmax math.Vec3
	for i := 0; i < 8; i++ {
		c := lo
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		w := m.TransformPoint(c)
		if i == 0 {
			wmin, wmax = w, w
			continue
		}
		wmin, wmax = wmin.Min(w), wmax.Max(w)
	}
	center = wmin.Add(wmax).Scale(0.5)
	return center, wmax.Sub(wmin).Length() / 2
}
