package texture

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Load decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file into a texture.
func Load(path string, opts ...Option) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	tex, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return tex, nil
}

// Decode reads an encoded image from r into a texture.
func Decode(r io.Reader, opts ...Option) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(img, opts...), nil
}

// Checker builds an n×n checkerboard of two colors, cells texels wide. Used as the
// default surface texture when no image is supplied.
func Checker(n, cells int, a, b [4]uint8, opts ...Option) *Image {
	if cells <= 0 {
		cells = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			c := a
			if (x/cells+y/cells)%2 == 1 {
				c = b
			}
			copy(img.Pix[y*img.Stride+x*4:], c[:])
		}
	}
	return FromImage(img, opts...)
}
