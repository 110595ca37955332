package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidCamera = errors.New("invalid camera")

// Camera is a Y-up yaw/pitch camera. Yaw 0 looks down -Z.
type Camera struct {
	Position mgl32.Vec3 `json:"position"`
	Yaw      float32    `json:"yaw"`
	Pitch    float32    `json:"pitch"`
	FovY     float32    `json:"fov_y"` // radians
	Near     float32    `json:"near"`
	Far      float32    `json:"far"`
}

func NewCamera() *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 0, 4},
		FovY:     mgl32.DegToRad(60),
		Near:     0.1,
		Far:      100,
	}
}

// Validate reports a projection that would produce NaN or an empty view volume.
func (c *Camera) Validate() error {
	if !(c.FovY > 0 && c.FovY < math.Pi) {
		return fmt.Errorf("%w: fov_y %g", ErrInvalidCamera, c.FovY)
	}
	if !(c.Near > 0 && c.Far > c.Near) {
		return fmt.Errorf("%w: near %g, far %g", ErrInvalidCamera, c.Near, c.Far)
	}
	return nil
}

func (c *Camera) GetForward() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Pitch)) * math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		float32(-math.Cos(float64(c.Pitch)) * math.Cos(float64(c.Yaw))),
	}
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target mgl32.Vec3) {
	d := target.Sub(c.Position)
	if d.Len() == 0 {
		return
	}
	d = d.Normalize()
	c.Pitch = float32(math.Asin(float64(d.Y())))
	c.Yaw = float32(math.Atan2(float64(d.X()), float64(-d.Z())))
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	eye := c.Position
	return mgl32.LookAtV(eye, eye.Add(c.GetForward()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) GetProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ExtractFrustum returns the planes Left, Right, Bottom, Top, Near, Far of the
// view-projection matrix, normalized, with normals pointing inside.
// Plane is Ax + By + Cz + D = 0.
func (c *Camera) ExtractFrustum(vp mgl32.Mat4) [6]mgl32.Vec4 {
	var planes [6]mgl32.Vec4
	row := func(i int) mgl32.Vec4 { return vp.Row(i) }

	planes[0] = row(3).Add(row(0))
	planes[1] = row(3).Sub(row(0))
	planes[2] = row(3).Add(row(1))
	planes[3] = row(3).Sub(row(1))
	planes[4] = row(3).Add(row(2)) // OpenGL-style -1..1
	planes[5] = row(3).Sub(row(2))

	for i := range planes {
		length := planes[i].Vec3().Len()
		if length > 0 {
			planes[i] = planes[i].Mul(1.0 / length)
		}
	}
	return planes
}

// AABBInFrustum reports whether the box [min, max] is at least partially inside.
func AABBInFrustum(aabb [2]mgl32.Vec3, planes [6]mgl32.Vec4) bool {
	for _, plane := range planes {
		// Most-inside corner; if it is behind the plane the whole box is.
		var p mgl32.Vec3
		for k := 0; k < 3; k++ {
			if plane[k] > 0 {
				p[k] = aabb[1][k]
			} else {
				p[k] = aabb[0][k]
			}
		}
		if plane.Vec3().Dot(p)+plane[3] < 0 {
			return false
		}
	}
	return true
}

// TransformAABB returns the world-space bounds of a local box under m.
func TransformAABB(aabb [2]mgl32.Vec3, m mgl32.Mat4) [2]mgl32.Vec3 {
	inf := float32(math.Inf(1))
	out := [2]mgl32.Vec3{{inf, inf, inf}, {-inf, -inf, -inf}}
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{
			aabb[i&1][0],
			aabb[(i>>1)&1][1],
			aabb[(i>>2)&1][2],
		}
		w := m.Mul4x1(corner.Vec4(1)).Vec3()
		for k := 0; k < 3; k++ {
			out[0][k] = min(out[0][k], w[k])
			out[1][k] = max(out[1][k], w[k])
		}
	}
	return out
}
