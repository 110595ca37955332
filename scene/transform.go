package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Transform struct {
	Position mgl32.Vec3 `json:"position"`
	Rotation mgl32.Quat `json:"rotation"`
	Scale    mgl32.Vec3 `json:"scale"`
}

func NewTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) ObjectToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

// IsUniformScale reports whether all three scale factors are equal.
func (t Transform) IsUniformScale() bool {
	return t.Scale.X() == t.Scale.Y() && t.Scale.Y() == t.Scale.Z()
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of m, which keeps
// normals perpendicular to surfaces under non-uniform scale. A singular m falls
// back to its plain 3x3.
func NormalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	m3 := m.Mat3()
	if m3.Det() == 0 {
		return m3
	}
	return m3.Inv().Transpose()
}
