// Package scene describes what the renderer draws: a camera, one point light and
// a list of objects referencing meshes and textures held by an AssetServer.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/fragshade/shading"
)

// Light is a point light in world space.
type Light struct {
	Position mgl32.Vec3 `json:"position"`
	Color    mgl32.Vec3 `json:"color"`
}

type Scene struct {
	Name    string
	Camera  *Camera
	Light   Light
	Objects []Object
}

func NewScene(name string, camera *Camera) *Scene {
	if camera == nil {
		camera = NewCamera()
	}
	return &Scene{
		Name:   name,
		Camera: camera,
		Light:  Light{Color: mgl32.Vec3{1, 1, 1}},
	}
}

func (s *Scene) AddObject(objs ...Object) {
	s.Objects = append(s.Objects, objs...)
}

// LightData returns the light transformed into the view space of view.
func (s *Scene) LightData(view mgl32.Mat4) shading.LightData {
	return shading.LightData{
		Position: view.Mul4x1(s.Light.Position.Vec4(1)).Vec3(),
		Color:    s.Light.Color,
	}
}

// Default builds a checker-textured cube lit by a warm point light, with a small
// emissive marker drawn at the light's position.
func Default(assets *AssetServer) (*Scene, error) {
	tex, err := assets.LoadTexture(BuiltinChecker)
	if err != nil {
		return nil, err
	}
	cube := Cube()
	cube.Texture = tex
	cubeId := assets.AddMesh(cube)
	markerId := assets.AddMesh(Cube())

	cam := NewCamera()
	cam.Position = mgl32.Vec3{1.5, 1.5, 3}
	cam.LookAt(mgl32.Vec3{0, 0, 0})

	s := NewScene("default", cam)
	s.Light = Light{Position: mgl32.Vec3{1.6, 1.4, 1.2}, Color: mgl32.Vec3{1, 0.95, 0.85}}

	body := NewTransform()
	body.Rotation = mgl32.QuatRotate(mgl32.DegToRad(25), mgl32.Vec3{0, 1, 0})

	marker := NewTransform()
	marker.Position = s.Light.Position
	marker.Scale = mgl32.Vec3{0.1, 0.1, 0.1}

	s.AddObject(
		NewObjectBuilder("cube").WithMesh(cubeId).WithTransform(body).Build(),
		NewObjectBuilder("light").WithMesh(markerId).WithTransform(marker).AsLightSource().Build(),
	)
	return s, nil
}
