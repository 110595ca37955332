// Package fragshade renders scenes of textured, lit objects on the CPU with a
// single point light and the local Phong shading model. Objects flagged as light
// sources are drawn as emissive markers in the light's color.
package fragshade

import (
	"context"
	"fmt"
	"time"

	"github.com/gekko3d/fragshade/raster"
	"github.com/gekko3d/fragshade/scene"
	"github.com/gekko3d/fragshade/shading"
	"github.com/gekko3d/fragshade/texture"
)

type Renderer struct {
	settings Settings
	logger   Logger
	pipeline *raster.Pipeline
}

// NewRenderer validates settings and builds a renderer. A nil logger discards output.
func NewRenderer(settings Settings, logger Logger) (*Renderer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	logger.SetDebug(settings.Debug || logger.DebugEnabled())

	p := raster.NewPipeline(settings.Workers, settings.TileSize)
	logger.Debugf("renderer %q: %dx%d, %d workers, tile %d", settings.Title, settings.Width, settings.Height, p.Workers, p.TileSize)

	return &Renderer{settings: settings, logger: logger, pipeline: p}, nil
}

func (r *Renderer) Settings() Settings {
	return r.settings
}

// RenderScene draws every object of s into a new framebuffer.
func (r *Renderer) RenderScene(ctx context.Context, s *scene.Scene, assets *scene.AssetServer) (*raster.Framebuffer, error) {
	fb := raster.NewFramebuffer(r.settings.Width, r.settings.Height)
	fb.Clear(r.settings.ClearColor)

	calls := r.DrawCalls(s, assets)

	start := time.Now()
	stats, err := r.pipeline.Draw(ctx, fb, calls...)
	if err != nil {
		return nil, fmt.Errorf("render scene %q: %w", s.Name, err)
	}
	r.logger.Debugf("scene %q: %d draws, %d triangles (%d culled), %d fragments in %s",
		s.Name, len(calls), stats.Triangles, stats.Culled, stats.Fragments, time.Since(start))

	return fb, nil
}

// DrawCalls builds one draw call per visible object, in scene order.
func (r *Renderer) DrawCalls(s *scene.Scene, assets *scene.AssetServer) []raster.DrawCall {
	cam := s.Camera
	if cam == nil {
		cam = scene.NewCamera()
	}
	view := cam.GetViewMatrix()
	proj := cam.GetProjectionMatrix(r.settings.AspectRatio())
	planes := cam.ExtractFrustum(proj.Mul4(view))
	light := s.LightData(view)

	calls := make([]raster.DrawCall, 0, len(s.Objects))
	for _, obj := range s.Objects {
		mesh, ok := assets.Mesh(obj.Mesh)
		if !ok {
			r.logger.Warnf("object %q (%s) has no mesh, skipping", obj.Name, obj.Id)
			continue
		}

		model := obj.Transform.ObjectToWorld()
		if r.settings.FrustumCulling && !scene.AABBInFrustum(scene.TransformAABB(mesh.Bounds(), model), planes) {
			r.logger.Debugf("object %q outside view", obj.Name)
			continue
		}

		calls = append(calls, raster.DrawCall{
			Mesh: mesh,
			Uniforms: raster.Uniforms{
				Model:      model,
				View:       view,
				Projection: proj,
			},
			Light:   light,
			Texture: r.sampler(assets, mesh),
			Push: shading.PushConstants{
				LightSource:  obj.LightSource,
				UniformScale: obj.UniformScale,
			},
		})
	}
	return calls
}

func (r *Renderer) sampler(assets *scene.AssetServer, mesh *scene.Mesh) shading.Sampler {
	if mesh.Texture == "" {
		return texture.White
	}
	if tex, ok := assets.Texture(mesh.Texture); ok && tex.Sampler != nil {
		return tex.Sampler
	}
	r.logger.Warnf("mesh %q: texture %s not found, using white", mesh.Name, mesh.Texture)
	return texture.White
}
