package raster

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/fragshade/scene"
	"github.com/gekko3d/fragshade/shading"
	"github.com/gekko3d/fragshade/texture"
)

// fullscreen returns a draw call whose quad covers NDC [-1,1]² at depth z with
// identity view and projection.
func fullscreen(z float32, color mgl32.Vec3, pc shading.PushConstants) DrawCall {
	return DrawCall{
		Mesh: scene.Quad(),
		Uniforms: Uniforms{
			Model:      mgl32.Translate3D(0, 0, z).Mul4(mgl32.Scale3D(2, 2, 1)),
			View:       mgl32.Ident4(),
			Projection: mgl32.Ident4(),
		},
		Light:   shading.LightData{Color: color},
		Texture: texture.White,
		Push:    pc,
	}
}

func TestFramebuffer_Image(t *testing.T) {
	fb := NewFramebuffer(2, 1)
	fb.Color[0] = mgl32.Vec4{1.7, 0.5, -1, 1}
	fb.Color[1] = mgl32.Vec4{float32(math.NaN()), 0, 0, 1}

	img := fb.Image()
	assert.Equal(t, []uint8{255, 128, 0, 255, 0, 0, 0, 255}, img.Pix)
	assert.Equal(t, float32(1), fb.Depth[0])
}

func TestDraw_FullscreenEmissive(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	p := NewPipeline(2, 4)

	stats, err := p.Draw(context.Background(), fb, fullscreen(0, mgl32.Vec3{0.2, 0.4, 0.6}, shading.PushConstants{LightSource: true}))
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Triangles)
	assert.Equal(t, int64(0), stats.Culled)
	assert.GreaterOrEqual(t, stats.Fragments, int64(64))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			assert.Equal(t, mgl32.Vec4{0.2, 0.4, 0.6, 1}, fb.At(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestDraw_DepthTest(t *testing.T) {
	red := fullscreen(-0.5, mgl32.Vec3{1, 0, 0}, shading.PushConstants{LightSource: true})
	green := fullscreen(0.5, mgl32.Vec3{0, 1, 0}, shading.PushConstants{LightSource: true})

	for _, order := range [][]DrawCall{{red, green}, {green, red}} {
		fb := NewFramebuffer(4, 4)
		_, err := NewPipeline(1, 0).Draw(context.Background(), fb, order...)
		require.NoError(t, err)
		assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, fb.At(1, 2))
		assert.InDelta(t, 0.25, fb.Depth[0], 1e-6)
	}
}

func perspectiveQuad(z float32) DrawCall {
	cam := &scene.Camera{FovY: mgl32.DegToRad(90), Near: 0.1, Far: 100}
	return DrawCall{
		Mesh: scene.Quad(),
		Uniforms: Uniforms{
			Model:      mgl32.Translate3D(0, 0, z).Mul4(mgl32.Scale3D(4, 4, 1)),
			View:       cam.GetViewMatrix(),
			Projection: cam.GetProjectionMatrix(1),
		},
		Light:   shading.LightData{Color: mgl32.Vec3{1, 1, 1}},
		Texture: texture.White,
	}
}

func TestDraw_LitQuadFacingLight(t *testing.T) {
	fb := NewFramebuffer(16, 16)
	call := perspectiveQuad(-2)
	stats, err := NewPipeline(4, 8).Draw(context.Background(), fb, call)
	require.NoError(t, err)
	require.Positive(t, stats.Fragments)

	// With a 90 degree FOV the quad at z=-2 spans the view exactly, so a pixel
	// center maps back to view space as ndc * 2.
	expectedAt := func(x, y int) mgl32.Vec4 {
		ndcX := (float32(x)+0.5)/float32(fb.Width)*2 - 1
		ndcY := 1 - (float32(y)+0.5)/float32(fb.Height)*2
		frag := shading.Fragment{
			Normal:   mgl32.Vec3{0, 0, 1},
			Position: mgl32.Vec3{ndcX * 2, ndcY * 2, -2},
		}
		return shading.Shade(frag, call.Light, call.Texture, call.Push)
	}

	for _, px := range [][2]int{{8, 8}, {0, 0}, {15, 3}} {
		got := fb.At(px[0], px[1])
		want := expectedAt(px[0], px[1])
		for i := range want {
			assert.InDelta(t, want[i], got[i], 1e-3, "pixel %v channel %d", px, i)
		}
	}
	assert.Greater(t, fb.At(8, 8).X(), fb.At(0, 0).X())
}

func TestDraw_Deterministic(t *testing.T) {
	calls := []DrawCall{perspectiveQuad(-3), perspectiveQuad(-2)}
	calls[1].Uniforms.Model = mgl32.Translate3D(0.5, 0, -2).Mul4(mgl32.HomogRotate3DY(0.6))

	a, b := NewFramebuffer(33, 17), NewFramebuffer(33, 17)
	_, err := NewPipeline(1, 64).Draw(context.Background(), a, calls...)
	require.NoError(t, err)
	_, err = NewPipeline(8, 5).Draw(context.Background(), b, calls...)
	require.NoError(t, err)

	assert.Equal(t, a.Color, b.Color)
	assert.Equal(t, a.Depth, b.Depth)
}

func TestDraw_NearPlaneClipping(t *testing.T) {
	// Floor plane running from behind the camera to far in front.
	call := perspectiveQuad(0)
	call.Uniforms.Model = mgl32.Translate3D(0, -1, -5).
		Mul4(mgl32.HomogRotate3DX(-math.Pi / 2)).
		Mul4(mgl32.Scale3D(20, 20, 1))

	fb := NewFramebuffer(16, 16)
	stats, err := NewPipeline(2, 0).Draw(context.Background(), fb, call)
	require.NoError(t, err)
	assert.Positive(t, stats.Fragments)

	for _, c := range fb.Color {
		for _, v := range c {
			assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0))
		}
	}
}

func TestDraw_BehindCameraIsCulled(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	stats, err := NewPipeline(2, 0).Draw(context.Background(), fb, perspectiveQuad(5))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Culled)
	assert.Zero(t, stats.Fragments)
}

func TestDraw_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fb := NewFramebuffer(8, 8)
	_, err := NewPipeline(2, 0).Draw(ctx, fb, perspectiveQuad(-2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDraw_ZeroValueLimits(t *testing.T) {
	want := mgl32.Vec4{0.3, 0.6, 0.9, 1}
	for _, p := range []*Pipeline{
		{Model: shading.DefaultLightModel()},
		{TileSize: 8, Model: shading.DefaultLightModel()},
		{Workers: 2, Model: shading.DefaultLightModel()},
		{Workers: -1, TileSize: -4, Model: shading.DefaultLightModel()},
	} {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		fb := NewFramebuffer(8, 8)
		_, err := p.Draw(ctx, fb, fullscreen(0, want.Vec3(), shading.PushConstants{LightSource: true}))
		cancel()
		require.NoError(t, err, "workers %d, tile size %d", p.Workers, p.TileSize)
		assert.Equal(t, want, fb.At(7, 7))
	}
}

func TestDraw_SkipsNilMesh(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	stats, err := NewPipeline(1, 0).Draw(context.Background(), fb, DrawCall{})
	require.NoError(t, err)
	assert.Zero(t, stats.Triangles)
}

func TestClipNear(t *testing.T) {
	v := func(z float32) clipVertex { return clipVertex{clip: mgl32.Vec4{0, 0, z, 1}} }
	var out [4]clipVertex

	assert.Equal(t, 3, clipNear([3]clipVertex{v(0), v(0), v(0)}, &out))
	assert.Equal(t, 4, clipNear([3]clipVertex{v(-2), v(0), v(0)}, &out))
	assert.Equal(t, 3, clipNear([3]clipVertex{v(-2), v(-2), v(0)}, &out))
	assert.Equal(t, 0, clipNear([3]clipVertex{v(-2), v(-2), v(-2)}, &out))

	// Intersection lands on z == -w.
	n := clipNear([3]clipVertex{v(-3), v(1), v(1)}, &out)
	require.Equal(t, 4, n)
	for i := 0; i < n; i++ {
		assert.GreaterOrEqual(t, out[i].clip.Z()+out[i].clip.W(), float32(-1e-6))
	}
}

func TestTileGrid(t *testing.T) {
	g := newTileGrid(70, 40, 32)
	require.Len(t, g.tiles, 6)
	assert.Equal(t, 3, g.cols)
	assert.Equal(t, 70, g.tiles[2].x1)
	assert.Equal(t, 40, g.tiles[5].y1)

	g.bin([]triangle{{minX: 30, minY: 0, maxX: 40, maxY: 5}})
	assert.Equal(t, []int{0}, g.tiles[0].tris)
	assert.Equal(t, []int{0}, g.tiles[1].tris)
	assert.Empty(t, g.tiles[2].tris)
}
