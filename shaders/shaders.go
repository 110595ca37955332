// Package shaders holds the GPU form of the shading stage as WGSL and compiles it
// for the common graphics backends.
package shaders

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/msl"
)

//go:embed phong.wgsl
var PhongWGSL string

// Entry points in PhongWGSL.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

type Target string

const (
	TargetSPIRV Target = "spirv"
	TargetGLSL  Target = "glsl"
	TargetMSL   Target = "msl"
)

func ParseTarget(s string) (Target, error) {
	switch t := Target(strings.ToLower(s)); t {
	case TargetSPIRV, TargetGLSL, TargetMSL:
		return t, nil
	default:
		return "", fmt.Errorf("unknown shader target %q (want spirv, glsl or msl)", s)
	}
}

// Compile translates PhongWGSL for target. SPIR-V is returned as a binary module;
// GLSL is the fragment stage only, since GLSL keeps one stage per source; MSL
// holds both entry points.
func Compile(target Target) ([]byte, error) {
	return CompileSource(PhongWGSL, target)
}

func CompileSource(source string, target Target) ([]byte, error) {
	if target == TargetSPIRV {
		spirv, err := naga.Compile(source)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", target, err)
		}
		return spirv, nil
	}

	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", target, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", target, err)
	}

	var code string
	switch target {
	case TargetGLSL:
		opts := glsl.DefaultOptions()
		opts.EntryPoint = FragmentEntryPoint
		code, _, err = glsl.Compile(module, opts)
	case TargetMSL:
		code, _, err = msl.Compile(module, msl.DefaultOptions())
	default:
		return nil, fmt.Errorf("unknown shader target %q", target)
	}
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", target, err)
	}
	return []byte(code), nil
}
