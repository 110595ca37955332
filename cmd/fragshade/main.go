package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/gekko3d/fragshade"
	"github.com/gekko3d/fragshade/scene"
	"github.com/gekko3d/fragshade/shaders"
)

func main() {
	settings := fragshade.DefaultSettings()

	scenePath := flag.String("scene", "", "Scene preset (JSON); the built-in scene when empty")
	texturePath := flag.String("texture", "", "Texture for every lit object, overriding the scene")
	out := flag.String("out", "frame.png", "Output file (.png, .bmp, .tif)")
	emit := flag.String("emit", "", "Write the shader compiled for spirv, glsl or msl to -out instead of rendering")
	saveScene := flag.String("save-scene", "", "Write the scene preset to this file")
	flag.IntVar(&settings.Width, "width", settings.Width, "Output width")
	flag.IntVar(&settings.Height, "height", settings.Height, "Output height")
	flag.IntVar(&settings.Workers, "workers", settings.Workers, "Tile workers (0 = GOMAXPROCS)")
	flag.BoolVar(&settings.Debug, "debug", false, "Enable debug logging")
	flag.Parse()

	logger := fragshade.NewDefaultLogger("fragshade", settings.Debug)

	if *emit != "" {
		if err := emitShader(*emit, *out); err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
		logger.Infof("wrote %s shader to %s", *emit, *out)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, settings, logger, *scenePath, *texturePath, *out, *saveScene); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, settings fragshade.Settings, logger fragshade.Logger, scenePath, texturePath, out, saveScene string) error {
	r, err := fragshade.NewRenderer(settings, logger)
	if err != nil {
		return err
	}

	assets := scene.NewAssetServer()
	var s *scene.Scene
	if scenePath != "" {
		s, err = scene.LoadPreset(assets, scenePath)
	} else {
		s, err = scene.Default(assets)
	}
	if err != nil {
		return err
	}

	if texturePath != "" {
		if err := overrideTexture(s, assets, texturePath); err != nil {
			return err
		}
	}

	if saveScene != "" {
		if err := scene.SavePreset(s, assets, saveScene); err != nil {
			return err
		}
		logger.Infof("saved scene %q to %s", s.Name, saveScene)
	}

	fb, err := r.RenderScene(ctx, s, assets)
	if err != nil {
		return err
	}
	if err := fragshade.SaveImage(out, fb.Image()); err != nil {
		return err
	}
	logger.Infof("rendered %q (%dx%d) to %s", s.Name, settings.Width, settings.Height, out)
	return nil
}

// overrideTexture gives every lit object its own copy of its mesh bound to the
// texture at path. Light markers keep their meshes.
func overrideTexture(s *scene.Scene, assets *scene.AssetServer, path string) error {
	tex, err := assets.LoadTexture(path)
	if err != nil {
		return err
	}
	swapped := make(map[scene.AssetId]scene.AssetId)
	for i := range s.Objects {
		obj := &s.Objects[i]
		if obj.LightSource {
			continue
		}
		if id, ok := swapped[obj.Mesh]; ok {
			obj.Mesh = id
			continue
		}
		mesh, ok := assets.Mesh(obj.Mesh)
		if !ok {
			continue
		}
		textured := *mesh
		textured.Texture = tex
		id := assets.AddMesh(&textured)
		swapped[obj.Mesh] = id
		obj.Mesh = id
	}
	return nil
}

func emitShader(target, out string) error {
	t, err := shaders.ParseTarget(target)
	if err != nil {
		return err
	}
	code, err := shaders.Compile(t)
	if err != nil {
		return err
	}
	return os.WriteFile(out, code, 0644)
}
