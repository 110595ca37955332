package fragshade

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/fragshade/raster"
)

var (
	ErrInvalidSize     = errors.New("invalid output size")
	ErrInvalidWorkers  = errors.New("invalid worker count")
	ErrInvalidTileSize = errors.New("invalid tile size")
)

// Settings configures a Renderer.
type Settings struct {
	Title  string
	Width  int
	Height int
	// Workers bounds concurrent tile goroutines; 0 uses GOMAXPROCS.
	Workers    int
	TileSize   int
	ClearColor mgl32.Vec4
	// FrustumCulling skips objects whose bounds lie outside the view.
	FrustumCulling bool
	Debug          bool
}

func DefaultSettings() Settings {
	return Settings{
		Title:          "fragshade",
		Width:          640,
		Height:         480,
		TileSize:       raster.DefaultTileSize,
		ClearColor:     mgl32.Vec4{0, 0, 0, 1},
		FrustumCulling: true,
	}
}

func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, s.Width, s.Height)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, s.Workers)
	}
	if s.TileSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTileSize, s.TileSize)
	}
	return nil
}

func (s Settings) AspectRatio() float32 {
	return float32(s.Width) / float32(s.Height)
}
