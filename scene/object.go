package scene

import (
	"github.com/google/uuid"
)

type ObjectId = uuid.UUID

// Object is one drawable in a scene. LightSource draws the object as the
// emissive light marker; UniformScale is forwarded to the shading stage as a
// reserved draw constant.
type Object struct {
	Id           ObjectId
	Name         string
	Transform    Transform
	Mesh         AssetId
	LightSource  bool
	UniformScale bool
}

type ObjectBuilder struct {
	obj             Object
	uniformScaleSet bool
}

func NewObjectBuilder(name string) *ObjectBuilder {
	return &ObjectBuilder{obj: Object{
		Id:        uuid.New(),
		Name:      name,
		Transform: NewTransform(),
	}}
}

func (b *ObjectBuilder) WithMesh(mesh AssetId) *ObjectBuilder {
	b.obj.Mesh = mesh
	return b
}

func (b *ObjectBuilder) WithTransform(t Transform) *ObjectBuilder {
	b.obj.Transform = t
	return b
}

func (b *ObjectBuilder) AsLightSource() *ObjectBuilder {
	b.obj.LightSource = true
	return b
}

// WithUniformScale overrides the flag, which otherwise follows the transform.
func (b *ObjectBuilder) WithUniformScale(uniform bool) *ObjectBuilder {
	b.obj.UniformScale = uniform
	b.uniformScaleSet = true
	return b
}

func (b *ObjectBuilder) Build() Object {
	obj := b.obj
	if !b.uniformScaleSet {
		obj.UniformScale = obj.Transform.IsUniformScale()
	}
	return obj
}
