// Package texture provides CPU samplers for the shading stage: decoded image
// textures with nearest or bilinear filtering and per-axis wrap policies, and
// solid colors for untextured meshes.
package texture

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"

	"github.com/gekko3d/fragshade/shading"
)

type Filter uint32

const (
	FilterLinear  Filter = 0
	FilterNearest Filter = 1
)

type Wrap uint32

const (
	WrapRepeat         Wrap = 0
	WrapClampToEdge    Wrap = 1
	WrapMirroredRepeat Wrap = 2
)

// Image is an RGBA texture sampled at normalized coordinates. UV (0,0) maps to
// the top-left corner of the first texel row.
type Image struct {
	Width  int
	Height int
	// Texels in straight alpha, 0..1, row-major top-to-bottom.
	Texels []mgl32.Vec4
	Filter Filter
	WrapU  Wrap
	WrapV  Wrap
}

var _ shading.Sampler = (*Image)(nil)

// Option configures sampling state of an Image.
type Option func(*Image)

func WithFilter(f Filter) Option {
	return func(img *Image) { img.Filter = f }
}

// WithWrap sets the same wrap policy on both axes.
func WithWrap(w Wrap) Option {
	return func(img *Image) {
		img.WrapU = w
		img.WrapV = w
	}
}

// FromImage copies src into a texture. Any image.Image is accepted; it is first
// converted to non-premultiplied RGBA.
func FromImage(src image.Image, opts ...Option) *Image {
	bounds := src.Bounds()
	nrgba, ok := src.(*image.NRGBA)
	if !ok || bounds.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)
	}

	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()
	tex := &Image{Width: w, Height: h, Texels: make([]mgl32.Vec4, w*h)}
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4]
			tex.Texels[y*w+x] = mgl32.Vec4{
				float32(p[0]) / 255,
				float32(p[1]) / 255,
				float32(p[2]) / 255,
				float32(p[3]) / 255,
			}
		}
	}
	for _, opt := range opts {
		opt(tex)
	}
	return tex
}

// Resize returns a copy of the texture resampled to w×h with a bilinear kernel.
// Sampling state is preserved.
func (t *Image) Resize(w, h int) *Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), t.NRGBA(), image.Rect(0, 0, t.Width, t.Height), draw.Src, nil)
	out := FromImage(dst)
	out.Filter, out.WrapU, out.WrapV = t.Filter, t.WrapU, t.WrapV
	return out
}

// NRGBA converts the texture back to an 8-bit image.
func (t *Image) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i, c := range t.Texels {
		p := img.Pix[i*4 : i*4+4]
		for k := 0; k < 4; k++ {
			p[k] = toByte(c[k])
		}
	}
	return img
}

// Sample implements shading.Sampler.
func (t *Image) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	if t.Width == 0 || t.Height == 0 {
		return mgl32.Vec4{}
	}
	if t.Filter == FilterNearest {
		x := wrapIndex(int(math.Floor(float64(uv.X())*float64(t.Width))), t.Width, t.WrapU)
		y := wrapIndex(int(math.Floor(float64(uv.Y())*float64(t.Height))), t.Height, t.WrapV)
		return t.texel(x, y)
	}

	// Texel centers sit at half-integer coordinates.
	fx := float64(uv.X())*float64(t.Width) - 0.5
	fy := float64(uv.Y())*float64(t.Height) - 0.5
	x0f, y0f := math.Floor(fx), math.Floor(fy)
	ax, ay := float32(fx-x0f), float32(fy-y0f)
	x0, y0 := int(x0f), int(y0f)

	xa, xb := wrapIndex(x0, t.Width, t.WrapU), wrapIndex(x0+1, t.Width, t.WrapU)
	ya, yb := wrapIndex(y0, t.Height, t.WrapV), wrapIndex(y0+1, t.Height, t.WrapV)

	top := lerp(t.texel(xa, ya), t.texel(xb, ya), ax)
	bottom := lerp(t.texel(xa, yb), t.texel(xb, yb), ax)
	return lerp(top, bottom, ay)
}

func (t *Image) texel(x, y int) mgl32.Vec4 {
	return t.Texels[y*t.Width+x]
}

func wrapIndex(i, n int, w Wrap) int {
	switch w {
	case WrapClampToEdge:
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	case WrapMirroredRepeat:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
		return i
	default:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
}

func lerp(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

func toByte(c float32) uint8 {
	if c <= 0 || c != c {
		return 0
	}
	if c >= 1 {
		return 255
	}
	return uint8(c*255 + 0.5)
}

// Solid is a constant-color sampler.
type Solid mgl32.Vec4

// White is bound for meshes without a texture, leaving lighting unmodulated.
var White = Solid{1, 1, 1, 1}

// Sample implements shading.Sampler.
func (s Solid) Sample(mgl32.Vec2) mgl32.Vec4 {
	return mgl32.Vec4(s)
}
