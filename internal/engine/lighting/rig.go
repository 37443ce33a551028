// Package lighting describes the studio light rig the desktop viewer renders
// product models under, and packs it into flat arrays for shader upload.
package lighting

import (
	"github.com/Faultbox/valvesite/pkg/math"
)

// MaxLights is the size of each light array in the model shader.
const MaxLights = 4

// Directional is a light at infinity shining towards the origin.
type Directional struct {
	Position  math.Vec3 // where the light sits; only its direction matters
	Color     [3]float32
	Intensity float32
}

// Direction returns the normalized vector from a surface towards the light.
func (d Directional) Direction() math.Vec3 {
	return d.Position.Normalize()
}

// Point is an omnidirectional light. Range zero means no falloff.
type Point struct {
	Position  math.Vec3
	Color     [3]float32
	Intensity float32
	Range     float32
}

// Spot is a cone light aimed at Target.
type Spot struct {
	Position  math.Vec3
	Target    math.Vec3
	Color     [3]float32
	Intensity float32
	Angle     float32 // half-angle of the cone, radians
	Penumbra  float32 // 0..1 share of the cone that fades out
}

// Rig is a full light setup.
type Rig struct {
	Ambient      [3]float32
	AmbientLevel float32
	Directionals []Directional
	Points       []Point
	Spots        []Spot
}

var white = [3]float32{1, 1, 1}

// Studio returns the product viewer rig: soft ambient fill, a key light from
// the front right, a dimmer rim light from behind, a top light and a spot.
func Studio() Rig {
	return Rig{
		Ambient:      white,
		AmbientLevel: 0.6,
		Directionals: []Directional{
			{Position: math.Vec3{X: 5, Y: 5, Z: 5}, Color: white, Intensity: 1},
			{Position: math.Vec3{X: -5, Y: 3, Z: -5}, Color: white, Intensity: 0.4},
		},
		Points: []Point{
			{Position: math.Vec3{X: 0, Y: 10, Z: 0}, Color: white, Intensity: 0.5},
		},
		Spots: []Spot{
			{Position: math.Vec3{X: 10, Y: 10, Z: 10}, Color: white, Intensity: 0.8, Angle: 0.3, Penumbra: 0.5},
		},
	}
}

// Diffuse returns the Lambert light level arriving at a surface point with
// the given normal, matching the diffuse term of the model shader.
func (r Rig) Diffuse(pos, normal math.Vec3) float32 {
	n := normal.Normalize()
	level := r.AmbientLevel

	for _, d := range r.Directionals {
		level += d.Intensity * max(0, n.Dot(d.Direction()))
	}
	for _, p := range r.Points {
		toLight := p.Position.Sub(pos)
		level += p.Intensity * attenuation(toLight.Length(), p.Range) * max(0, n.Dot(toLight.Normalize()))
	}
	for _, s := range r.Spots {
		toLight := s.Position.Sub(pos)
		l := toLight.Normalize()
		level += s.Intensity * s.cone(l.Scale(-1)) * max(0, n.Dot(l))
	}
	return level
}

func attenuation(dist, rng float32) float32 {
	if rng <= 0 {
		return 1
	}
	return math.Clamp(1-dist/rng, 0, 1)
}

// cone returns 1 inside the inner cone, 0 outside the cone and a smooth ramp
// across the penumbra. dir points from the light towards the surface.
func (s Spot) cone(dir math.Vec3) float32 {
	axis := s.Target.Sub(s.Position).Normalize()
	cosTheta := dir.Dot(axis)
	outer := math.Cos(s.Angle)
	inner := math.Cos(s.Angle * (1 - s.Penumbra))
	if inner <= outer {
		if cosTheta >= outer {
			return 1
		}
		return 0
	}
	t := math.Clamp((cosTheta-outer)/(inner-outer), 0, 1)
	return t * t * (3 - 2*t)
}

// Packed is the rig flattened for glUniform*fv. Points and spots share one
// array; spots carry a cone, points have ConeCos of -1.
type Packed struct {
	Ambient [3]float32

	DirCount      int32
	DirDirections []float32 // 3 per light
	DirColors     []float32 // color * intensity, 3 per light

	LightCount     int32
	LightPositions []float32 // 3 per light
	LightColors    []float32 // 3 per light
	LightRanges    []float32
	SpotAxes       []float32 // 3 per light
	SpotOuterCos   []float32
	SpotInnerCos   []float32
}

func scaled(c [3]float32, k float32) [3]float32 {
	return [3]float32{c[0] * k, c[1] * k, c[2] * k}
}

// Pack flattens the rig, keeping at most MaxLights of each array.
func (r Rig) Pack() Packed {
	p := Packed{Ambient: scaled(r.Ambient, r.AmbientLevel)}

	for i, d := range r.Directionals {
		if i == MaxLights {
			break
		}
		dir := d.Direction().Array()
		c := scaled(d.Color, d.Intensity)
		p.DirDirections = append(p.DirDirections, dir[:]...)
		p.DirColors = append(p.DirColors, c[:]...)
		p.DirCount++
	}

	add := func(pos math.Vec3, c [3]float32, rng float32, axis math.Vec3, outer, inner float32) {
		if p.LightCount == MaxLights {
			return
		}
		a, ax := pos.Array(), axis.Array()
		p.LightPositions = append(p.LightPositions, a[:]...)
		p.LightColors = append(p.LightColors, c[:]...)
		p.LightRanges = append(p.LightRanges, rng)
		p.SpotAxes = append(p.SpotAxes, ax[:]...)
		p.SpotOuterCos = append(p.SpotOuterCos, outer)
		p.SpotInnerCos = append(p.SpotInnerCos, inner)
		p.LightCount++
	}
	for _, pt := range r.Points {
		add(pt.Position, scaled(pt.Color, pt.Intensity), pt.Range, math.Vec3{Y: -1}, -1, -1)
	}
	for _, s := range r.Spots {
		add(s.Position, scaled(s.Color, s.Intensity), 0,
			s.Target.Sub(s.Position).Normalize(),
			math.Cos(s.Angle), math.Cos(s.Angle*(1-s.Penumbra)))
	}
	return p
}
