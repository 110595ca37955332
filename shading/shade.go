// Package shading implements the per-fragment lighting stage: a single point light
// evaluated with the local Phong model over a textured surface, or the light's own
// color when drawing the emissive light marker.
//
// All positional inputs are expected in view space, where the viewer sits at the
// origin. Nothing here holds state; Shade may be called from any number of
// goroutines at once.
package shading

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Fragment carries the interpolated per-fragment attributes.
type Fragment struct {
	TexCoord          mgl32.Vec2
	Normal            mgl32.Vec3 // not necessarily unit length
	Position          mgl32.Vec3 // view space
	LightViewPosition mgl32.Vec3 // light position in the same space as Position
}

// LightData is constant for every fragment of a draw call.
type LightData struct {
	Position mgl32.Vec3 // view space
	Color    mgl32.Vec3 // unclamped RGB
}

// Sampler is a bound 2D color texture. Out-of-range coordinates follow the
// sampler's own wrap policy.
type Sampler interface {
	Sample(uv mgl32.Vec2) mgl32.Vec4
}

// Shade computes the output color of one fragment with the default light model.
func Shade(frag Fragment, light LightData, tex Sampler, pc PushConstants) mgl32.Vec4 {
	return DefaultLightModel().Shade(frag, light, tex, pc)
}

// Shade computes the output color of one fragment. The returned alpha is always 1.
func (m LightModel) Shade(frag Fragment, light LightData, tex Sampler, pc PushConstants) mgl32.Vec4 {
	if pc.Mode() == ModeEmissiveMarker {
		return light.Color.Vec4(1)
	}

	ambient := light.Color.Mul(m.Ambient)

	n := Normalize(frag.Normal)
	l := Normalize(frag.LightViewPosition.Sub(frag.Position))

	var diffuse, specular mgl32.Vec3
	// A zero n or l yields a zero dot product, so degenerate geometry only keeps ambient.
	if nDotL := n.Dot(l); nDotL > 0 {
		diffuse = light.Color.Mul(nDotL)

		v := Normalize(frag.Position.Mul(-1))
		r := Reflect(l.Mul(-1), n)
		if vDotR := v.Dot(r); vDotR > 0 {
			spec := float32(math.Pow(float64(vDotR), float64(m.Shininess)))
			specular = light.Color.Mul(m.Specular * spec)
		}
	}

	texel := mgl32.Vec3{1, 1, 1}
	if tex != nil {
		texel = tex.Sample(frag.TexCoord).Vec3()
	}

	lit := ambient.Add(diffuse).Add(specular)
	return MulElem(lit, texel).Vec4(1)
}

// Normalize returns v scaled to unit length, or the zero vector when v has no
// usable length (zero, denormal underflow, NaN or Inf components).
func Normalize(v mgl32.Vec3) mgl32.Vec3 {
	// float64 so large finite components do not overflow when squared.
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	l := math.Sqrt(x*x + y*y + z*z)
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl32.Vec3{}
	}
	out := mgl32.Vec3{float32(x / l), float32(y / l), float32(z / l)}
	if !finite(out) {
		return mgl32.Vec3{}
	}
	return out
}

// Reflect reflects the incident direction i about the normal n: i - 2(n·i)n.
func Reflect(i, n mgl32.Vec3) mgl32.Vec3 {
	return i.Sub(n.Mul(2 * n.Dot(i)))
}

// MulElem multiplies a and b component-wise.
func MulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
