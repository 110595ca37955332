package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Mesh is an indexed triangle list. Texture is empty for untextured meshes.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Texture  AssetId
}

// Bounds returns the local-space AABB of the mesh.
func (m *Mesh) Bounds() [2]mgl32.Vec3 {
	if len(m.Vertices) == 0 {
		return [2]mgl32.Vec3{}
	}
	inf := float32(math.Inf(1))
	b := [2]mgl32.Vec3{{inf, inf, inf}, {-inf, -inf, -inf}}
	for _, v := range m.Vertices {
		for k := 0; k < 3; k++ {
			b[0][k] = min(b[0][k], v.Position[k])
			b[1][k] = max(b[1][k], v.Position[k])
		}
	}
	return b
}

// Triangles returns the number of whole triangles in the index list.
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// cubeFaces lists, per face, the outward normal and the tangent axes (u, v) such
// that u x v == normal, giving counter-clockwise winding seen from outside.
var cubeFaces = [6]struct {
	normal, u, v mgl32.Vec3
}{
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
}

// Cube builds a unit cube centered at the origin with per-face normals and a full
// 0..1 texture mapping on every face.
func Cube() *Mesh {
	mesh := &Mesh{
		Name:     MeshCube,
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for _, f := range cubeFaces {
		base := uint32(len(mesh.Vertices))
		center := f.normal.Mul(0.5)
		for _, c := range corners {
			pos := center.Add(f.u.Mul(c[0] * 0.5)).Add(f.v.Mul(c[1] * 0.5))
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: pos,
				Normal:   f.normal,
				// Image rows run top to bottom, so v flips.
				TexCoord: mgl32.Vec2{(c[0] + 1) / 2, 1 - (c[1]+1)/2},
			})
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mesh
}

// Quad builds a unit square in the XY plane facing +Z.
func Quad() *Mesh {
	return &Mesh{
		Name: MeshQuad,
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-0.5, -0.5, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0, 1}},
			{Position: mgl32.Vec3{0.5, -0.5, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{0.5, 0.5, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{-0.5, 0.5, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Built-in procedural mesh names, referenced by presets.
const (
	MeshCube = "cube"
	MeshQuad = "quad"
)

func builtinMesh(name string) (*Mesh, bool) {
	switch name {
	case MeshCube:
		return Cube(), true
	case MeshQuad:
		return Quad(), true
	default:
		return nil, false
	}
}
