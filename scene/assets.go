package scene

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gekko3d/fragshade/shading"
	"github.com/gekko3d/fragshade/texture"
)

type AssetId string

// BuiltinChecker names the procedural checkerboard texture.
const BuiltinChecker = "builtin:checker"

type TextureAsset struct {
	Sampler shading.Sampler
	// Source is the file path or builtin name the texture came from; empty for
	// textures created in code.
	Source string
}

// AssetServer owns meshes and textures shared between objects and scenes.
type AssetServer struct {
	mu       sync.RWMutex
	meshes   map[AssetId]*Mesh
	textures map[AssetId]TextureAsset
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		meshes:   make(map[AssetId]*Mesh),
		textures: make(map[AssetId]TextureAsset),
	}
}

func (server *AssetServer) AddMesh(mesh *Mesh) AssetId {
	id := makeAssetId()

	server.mu.Lock()
	server.meshes[id] = mesh
	server.mu.Unlock()

	return id
}

func (server *AssetServer) Mesh(id AssetId) (*Mesh, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	m, ok := server.meshes[id]
	return m, ok
}

func (server *AssetServer) AddTexture(sampler shading.Sampler, source string) AssetId {
	id := makeAssetId()

	server.mu.Lock()
	server.textures[id] = TextureAsset{Sampler: sampler, Source: source}
	server.mu.Unlock()

	return id
}

// LoadTexture decodes an image file, or resolves a builtin name, and stores it.
func (server *AssetServer) LoadTexture(source string, opts ...texture.Option) (AssetId, error) {
	if strings.HasPrefix(source, "builtin:") {
		sampler, err := builtinTexture(source, opts...)
		if err != nil {
			return "", err
		}
		return server.AddTexture(sampler, source), nil
	}

	tex, err := texture.Load(source, opts...)
	if err != nil {
		return "", err
	}
	return server.AddTexture(tex, source), nil
}

func (server *AssetServer) Texture(id AssetId) (TextureAsset, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	t, ok := server.textures[id]
	return t, ok
}

func builtinTexture(name string, opts ...texture.Option) (shading.Sampler, error) {
	switch name {
	case BuiltinChecker:
		return texture.Checker(64, 8,
			[4]uint8{230, 230, 230, 255},
			[4]uint8{200, 60, 40, 255},
			opts...), nil
	case "builtin:white":
		return texture.White, nil
	default:
		return nil, fmt.Errorf("unknown builtin texture %q", name)
	}
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
