// Package raster is a small CPU host pipeline for the shading stage. It runs the
// vertex transform, clips against the near plane, rasterizes triangles with
// perspective-correct interpolation and a depth test, and invokes
// shading.LightModel.Shade once per visible fragment.
//
// Fragments are shaded in parallel, one goroutine per framebuffer tile. Tiles
// never overlap, so each invocation writes only its own pixel.
package raster

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/gekko3d/fragshade/scene"
	"github.com/gekko3d/fragshade/shading"
)

const DefaultTileSize = 32

// Uniforms is the per-object transformation data.
type Uniforms struct {
	Model      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// DrawCall binds everything needed to draw one mesh.
type DrawCall struct {
	Mesh     *scene.Mesh
	Uniforms Uniforms
	Light    shading.LightData
	Texture  shading.Sampler
	Push     shading.PushConstants
}

type Stats struct {
	Triangles int64 // submitted
	Culled    int64 // fully outside the view volume or degenerate
	Fragments int64 // passed the depth test and were shaded
}

type Pipeline struct {
	Workers  int
	TileSize int
	Model    shading.LightModel
}

// NewPipeline returns a pipeline using the default light model. Non-positive
// workers or tileSize select GOMAXPROCS and DefaultTileSize.
func NewPipeline(workers, tileSize int) *Pipeline {
	workers, tileSize = resolveLimits(workers, tileSize)
	return &Pipeline{
		Workers:  workers,
		TileSize: tileSize,
		Model:    shading.DefaultLightModel(),
	}
}

func resolveLimits(workers, tileSize int) (int, int) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	return workers, tileSize
}

// Draw renders calls into fb in submission order. Cancelling ctx aborts the whole
// draw; tiles already shaded keep their result. Non-positive Workers or TileSize
// fall back to the NewPipeline defaults.
func (p *Pipeline) Draw(ctx context.Context, fb *Framebuffer, calls ...DrawCall) (Stats, error) {
	var stats Stats
	if fb.Width == 0 || fb.Height == 0 {
		return stats, nil
	}

	var tris []triangle
	for i := range calls {
		if calls[i].Mesh == nil {
			continue
		}
		var culled int64
		tris, culled = assemble(tris, &calls[i], i, fb.Width, fb.Height)
		stats.Triangles += int64(calls[i].Mesh.Triangles())
		stats.Culled += culled
	}

	workers, tileSize := resolveLimits(p.Workers, p.TileSize)
	grid := newTileGrid(fb.Width, fb.Height, tileSize)
	grid.bin(tris)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var fragments atomic.Int64
	for i := range grid.tiles {
		t := &grid.tiles[i]
		if len(t.tris) == 0 {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fragments.Add(p.rasterTile(fb, t, tris, calls))
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	stats.Fragments = fragments.Load()
	return stats, err
}

// clipVertex is a vertex after the vertex stage.
type clipVertex struct {
	clip     mgl32.Vec4
	position mgl32.Vec3 // view space
	normal   mgl32.Vec3 // view space
	texCoord mgl32.Vec2
}

// screenVertex has attributes divided by w for perspective-correct interpolation.
type screenVertex struct {
	x, y, z  float32
	invW     float32
	position mgl32.Vec3
	normal   mgl32.Vec3
	texCoord mgl32.Vec2
}

type triangle struct {
	v    [3]screenVertex
	call int
	// screen-space bounds, inclusive, clamped to the framebuffer
	minX, minY, maxX, maxY int
}

func assemble(tris []triangle, call *DrawCall, callIndex, width, height int) ([]triangle, int64) {
	mesh := call.Mesh
	u := call.Uniforms
	modelView := u.View.Mul4(u.Model)
	normalMat := scene.NormalMatrix(modelView)

	verts := make([]clipVertex, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		viewPos := modelView.Mul4x1(v.Position.Vec4(1))
		verts[i] = clipVertex{
			clip:     u.Projection.Mul4x1(viewPos),
			position: viewPos.Vec3(),
			normal:   normalMat.Mul3x1(v.Normal),
			texCoord: v.TexCoord,
		}
	}

	var culled int64
	var poly [4]clipVertex
	for t := 0; t+2 < len(mesh.Indices); t += 3 {
		in := [3]clipVertex{
			verts[mesh.Indices[t]],
			verts[mesh.Indices[t+1]],
			verts[mesh.Indices[t+2]],
		}
		n := clipNear(in, &poly)
		emitted := false
		for k := 1; k+1 < n; k++ {
			tri, ok := toScreen(poly[0], poly[k], poly[k+1], width, height)
			if !ok {
				continue
			}
			tri.call = callIndex
			tris = append(tris, tri)
			emitted = true
		}
		if !emitted {
			culled++
		}
	}
	return tris, culled
}

// clipNear clips a triangle against the near plane (z >= -w) and writes the
// resulting convex polygon to out, returning its vertex count (0, 3 or 4).
func clipNear(in [3]clipVertex, out *[4]clipVertex) int {
	dist := func(v clipVertex) float32 { return v.clip.Z() + v.clip.W() }
	n := 0
	for i := 0; i < 3; i++ {
		a, b := in[i], in[(i+1)%3]
		da, db := dist(a), dist(b)
		if da >= 0 {
			out[n] = a
			n++
		}
		if (da >= 0) != (db >= 0) {
			out[n] = lerpVertex(a, b, da/(da-db))
			n++
		}
	}
	return n
}

func lerpVertex(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		clip:     a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
		position: a.position.Add(b.position.Sub(a.position).Mul(t)),
		normal:   a.normal.Add(b.normal.Sub(a.normal).Mul(t)),
		texCoord: a.texCoord.Add(b.texCoord.Sub(a.texCoord).Mul(t)),
	}
}

func toScreen(a, b, c clipVertex, width, height int) (triangle, bool) {
	var tri triangle
	for i, v := range [3]clipVertex{a, b, c} {
		w := v.clip.W()
		if w <= 0 {
			return tri, false
		}
		invW := 1 / w
		ndc := v.clip.Vec3().Mul(invW)
		tri.v[i] = screenVertex{
			x:        (ndc.X() + 1) * 0.5 * float32(width),
			y:        (1 - ndc.Y()) * 0.5 * float32(height),
			z:        ndc.Z()*0.5 + 0.5,
			invW:     invW,
			position: v.position.Mul(invW),
			normal:   v.normal.Mul(invW),
			texCoord: v.texCoord.Mul(invW),
		}
	}
	if edge(tri.v[0], tri.v[1], tri.v[2].x, tri.v[2].y) == 0 {
		return tri, false
	}

	minX := min(tri.v[0].x, tri.v[1].x, tri.v[2].x)
	maxX := max(tri.v[0].x, tri.v[1].x, tri.v[2].x)
	minY := min(tri.v[0].y, tri.v[1].y, tri.v[2].y)
	maxY := max(tri.v[0].y, tri.v[1].y, tri.v[2].y)

	// Pixel centers sit at +0.5.
	tri.minX = max(0, int(math.Ceil(float64(minX-0.5))))
	tri.minY = max(0, int(math.Ceil(float64(minY-0.5))))
	tri.maxX = min(width-1, int(math.Floor(float64(maxX-0.5))))
	tri.maxY = min(height-1, int(math.Floor(float64(maxY-0.5))))
	if tri.minX > tri.maxX || tri.minY > tri.maxY {
		return tri, false
	}
	return tri, true
}

func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

func (p *Pipeline) rasterTile(fb *Framebuffer, t *tile, tris []triangle, calls []DrawCall) int64 {
	var shaded int64
	for _, ti := range t.tris {
		tri := &tris[ti]
		call := &calls[tri.call]
		v0, v1, v2 := tri.v[0], tri.v[1], tri.v[2]
		area := edge(v0, v1, v2.x, v2.y)

		x0, x1 := max(tri.minX, t.x0), min(tri.maxX, t.x1-1)
		y0, y1 := max(tri.minY, t.y0), min(tri.maxY, t.y1-1)

		for y := y0; y <= y1; y++ {
			py := float32(y) + 0.5
			for x := x0; x <= x1; x++ {
				px := float32(x) + 0.5
				b0 := edge(v1, v2, px, py) / area
				b1 := edge(v2, v0, px, py) / area
				b2 := edge(v0, v1, px, py) / area
				if b0 < 0 || b1 < 0 || b2 < 0 {
					continue
				}

				z := b0*v0.z + b1*v1.z + b2*v2.z
				idx := y*fb.Width + x
				if z < 0 || z > 1 || z >= fb.Depth[idx] {
					continue
				}

				invW := b0*v0.invW + b1*v1.invW + b2*v2.invW
				if invW <= 0 {
					continue
				}
				w := 1 / invW
				frag := shading.Fragment{
					TexCoord:          interp2(v0.texCoord, v1.texCoord, v2.texCoord, b0, b1, b2).Mul(w),
					Normal:            interp3(v0.normal, v1.normal, v2.normal, b0, b1, b2).Mul(w),
					Position:          interp3(v0.position, v1.position, v2.position, b0, b1, b2).Mul(w),
					LightViewPosition: call.Light.Position,
				}

				fb.Depth[idx] = z
				fb.Color[idx] = p.Model.Shade(frag, call.Light, call.Texture, call.Push)
				shaded++
			}
		}
	}
	return shaded
}

func interp3(a, b, c mgl32.Vec3, wa, wb, wc float32) mgl32.Vec3 {
	return a.Mul(wa).Add(b.Mul(wb)).Add(c.Mul(wc))
}

func interp2(a, b, c mgl32.Vec2, wa, wb, wc float32) mgl32.Vec2 {
	return a.Mul(wa).Add(b.Mul(wb)).Add(c.Mul(wc))
}
