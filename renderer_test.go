package fragshade

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/fragshade/scene"
	"github.com/gekko3d/fragshade/texture"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.Width = 64
	s.Height = 64
	s.Workers = 2
	s.TileSize = 16
	return s
}

// cubeScene puts a unit cube at the origin in front of a camera at (0,0,4), with a
// white light at the camera.
func cubeScene(assets *scene.AssetServer, lightSource bool) *scene.Scene {
	s := scene.NewScene("cube", scene.NewCamera())
	s.Light = scene.Light{Position: mgl32.Vec3{0, 0, 4}, Color: mgl32.Vec3{1, 1, 1}}

	b := scene.NewObjectBuilder("cube").WithMesh(assets.AddMesh(scene.Cube()))
	if lightSource {
		b.AsLightSource()
	}
	s.AddObject(b.Build())
	return s
}

func TestNewRenderer_InvalidSettings(t *testing.T) {
	s := testSettings()
	s.Width = 0
	_, err := NewRenderer(s, nil)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestRenderScene_EmissiveMarker(t *testing.T) {
	assets := scene.NewAssetServer()
	s := cubeScene(assets, true)
	s.Light.Color = mgl32.Vec3{0.9, 0.3, 0.1}

	r, err := NewRenderer(testSettings(), NewNopLogger())
	require.NoError(t, err)

	fb, err := r.RenderScene(context.Background(), s, assets)
	require.NoError(t, err)

	assert.Equal(t, mgl32.Vec4{0.9, 0.3, 0.1, 1}, fb.At(32, 32))
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, fb.At(0, 0), "clear color outside the cube")
}

func TestRenderScene_LitSurface(t *testing.T) {
	assets := scene.NewAssetServer()
	s := cubeScene(assets, false)

	r, err := NewRenderer(testSettings(), NewNopLogger())
	require.NoError(t, err)

	fb, err := r.RenderScene(context.Background(), s, assets)
	require.NoError(t, err)

	c := fb.At(32, 32)
	// Facing the light head on: ambient plus nearly full diffuse and specular.
	assert.Greater(t, c.X(), float32(1.1))
	assert.InDelta(t, c.X(), c.Y(), 1e-6)
	assert.InDelta(t, c.X(), c.Z(), 1e-6)
	assert.Equal(t, float32(1), c.W())
}

func TestRenderScene_TexturedObject(t *testing.T) {
	assets := scene.NewAssetServer()
	s := cubeScene(assets, false)

	cube, ok := assets.Mesh(s.Objects[0].Mesh)
	require.True(t, ok)
	cube.Texture = assets.AddTexture(texture.Solid{0.5, 0, 1, 1}, "")

	r, err := NewRenderer(testSettings(), NewNopLogger())
	require.NoError(t, err)

	fb, err := r.RenderScene(context.Background(), s, assets)
	require.NoError(t, err)

	c := fb.At(32, 32)
	assert.Greater(t, c.X(), float32(0))
	assert.Equal(t, float32(0), c.Y())
	assert.InDelta(t, 2*c.X(), c.Z(), 1e-5)
}

func TestRenderScene_Cancelled(t *testing.T) {
	assets := scene.NewAssetServer()
	s := cubeScene(assets, false)

	r, err := NewRenderer(testSettings(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.RenderScene(ctx, s, assets)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDrawCalls(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewLoggerTo(&out, &errOut, "test", false)

	assets := scene.NewAssetServer()
	s := cubeScene(assets, false)

	behind := scene.NewTransform()
	behind.Position = mgl32.Vec3{0, 0, 20}
	s.AddObject(
		scene.NewObjectBuilder("behind").WithMesh(s.Objects[0].Mesh).WithTransform(behind).Build(),
		scene.Object{Id: uuid.New(), Name: "ghost", Mesh: "missing"},
	)

	t.Run("culling", func(t *testing.T) {
		r, err := NewRenderer(testSettings(), logger)
		require.NoError(t, err)

		calls := r.DrawCalls(s, assets)
		require.Len(t, calls, 1)
		assert.Equal(t, texture.White, calls[0].Texture)
		assert.False(t, calls[0].Push.LightSource)
		assert.True(t, calls[0].Push.UniformScale)
		assert.Contains(t, errOut.String(), `WARN: object "ghost"`)
	})

	t.Run("no culling", func(t *testing.T) {
		settings := testSettings()
		settings.FrustumCulling = false
		r, err := NewRenderer(settings, logger)
		require.NoError(t, err)

		assert.Len(t, r.DrawCalls(s, assets), 2)
	})
}

func TestDrawCalls_LightInViewSpace(t *testing.T) {
	assets := scene.NewAssetServer()
	s := cubeScene(assets, false)

	r, err := NewRenderer(testSettings(), nil)
	require.NoError(t, err)

	calls := r.DrawCalls(s, assets)
	require.Len(t, calls, 1)
	// The light sits at the camera.
	assert.InDelta(t, 0, calls[0].Light.Position.Len(), 1e-5)
}
