package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

type ObjectData struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Transform    Transform `json:"transform"`
	Mesh         string    `json:"mesh"`
	Texture      string    `json:"texture,omitempty"`
	LightSource  bool      `json:"light_source"`
	UniformScale bool      `json:"uniform_scale"`
}

// UnmarshalJSON starts from NewTransform so omitted fields keep their defaults.
func (d *ObjectData) UnmarshalJSON(b []byte) error {
	type objectData ObjectData
	data := objectData{Transform: NewTransform()}
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}
	*d = ObjectData(data)
	return nil
}

type PresetData struct {
	Name    string       `json:"name"`
	Camera  Camera       `json:"camera"`
	Light   Light        `json:"light"`
	Objects []ObjectData `json:"objects"`
}

func SavePreset(s *Scene, server *AssetServer, filename string) error {
	preset := PresetData{
		Name:  s.Name,
		Light: s.Light,
	}
	if s.Camera != nil {
		preset.Camera = *s.Camera
	}

	for _, obj := range s.Objects {
		data := ObjectData{
			ID:           obj.Id.String(),
			Name:         obj.Name,
			Transform:    obj.Transform,
			LightSource:  obj.LightSource,
			UniformScale: obj.UniformScale,
		}
		if mesh, ok := server.Mesh(obj.Mesh); ok {
			data.Mesh = mesh.Name
			if tex, ok := server.Texture(mesh.Texture); ok {
				data.Texture = tex.Source
			}
		}
		preset.Objects = append(preset.Objects, data)
	}

	bytes, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytes, 0644)
}

func LoadPreset(server *AssetServer, filename string) (*Scene, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	preset := PresetData{Camera: *NewCamera()}
	if err := json.Unmarshal(bytes, &preset); err != nil {
		return nil, fmt.Errorf("parse preset %q: %w", filename, err)
	}
	if err := preset.Camera.Validate(); err != nil {
		return nil, fmt.Errorf("preset %q: %w", filename, err)
	}

	cam := preset.Camera
	s := NewScene(preset.Name, &cam)
	s.Light = preset.Light

	// Objects sharing a mesh and texture share one asset.
	type meshKey struct{ mesh, texture string }
	meshes := make(map[meshKey]AssetId)
	textures := make(map[string]AssetId)

	for _, data := range preset.Objects {
		key := meshKey{data.Mesh, data.Texture}
		meshId, ok := meshes[key]
		if !ok {
			mesh, found := builtinMesh(data.Mesh)
			if !found {
				return nil, fmt.Errorf("object %q: unknown mesh %q", data.Name, data.Mesh)
			}
			if data.Texture != "" {
				texId, loaded := textures[data.Texture]
				if !loaded {
					texId, err = server.LoadTexture(data.Texture)
					if err != nil {
						return nil, fmt.Errorf("object %q: %w", data.Name, err)
					}
					textures[data.Texture] = texId
				}
				mesh.Texture = texId
			}
			meshId = server.AddMesh(mesh)
			meshes[key] = meshId
		}

		id, err := uuid.Parse(data.ID)
		if err != nil {
			id = uuid.New()
		}
		s.AddObject(Object{
			Id:           id,
			Name:         data.Name,
			Transform:    data.Transform,
			Mesh:         meshId,
			LightSource:  data.LightSource,
			UniformScale: data.UniformScale,
		})
	}

	return s, nil
}
