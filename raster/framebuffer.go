package raster

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Framebuffer holds linear float color and a [0,1] depth buffer, row-major with
// row 0 at the top.
type Framebuffer struct {
	Width  int
	Height int
	Color  []mgl32.Vec4
	Depth  []float32
}

func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Color:  make([]mgl32.Vec4, width*height),
		Depth:  make([]float32, width*height),
	}
	fb.Clear(mgl32.Vec4{0, 0, 0, 1})
	return fb
}

// Clear fills color with c and resets depth to the far plane.
func (fb *Framebuffer) Clear(c mgl32.Vec4) {
	for i := range fb.Color {
		fb.Color[i] = c
		fb.Depth[i] = 1
	}
}

func (fb *Framebuffer) At(x, y int) mgl32.Vec4 {
	return fb.Color[y*fb.Width+x]
}

// Image converts the color buffer to 8-bit RGBA. Channels are clamped to [0,1];
// no gamma or tone mapping is applied.
func (fb *Framebuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, c := range fb.Color {
		p := img.Pix[i*4 : i*4+4]
		for k := 0; k < 4; k++ {
			p[k] = unorm8(c[k])
		}
	}
	return img
}

func unorm8(c float32) uint8 {
	// NaN fails both comparisons and lands on 0.
	if !(c > 0) {
		return 0
	}
	if c >= 1 {
		return 255
	}
	return uint8(c*255 + 0.5)
}
