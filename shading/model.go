package shading

// Light model coefficients.
const (
	AmbientStrength  float32 = 0.1
	SpecularStrength float32 = 0.5
	Shininess        float32 = 32
)

// LightModel is the fixed lighting policy. The zero value disables every term;
// use DefaultLightModel for the standard coefficients.
type LightModel struct {
	Ambient   float32
	Specular  float32
	Shininess float32
}

// DefaultLightModel returns the standard coefficients.
func DefaultLightModel() LightModel {
	return LightModel{
		Ambient:   AmbientStrength,
		Specular:  SpecularStrength,
		Shininess: Shininess,
	}
}

// Mode selects the active branch of the shading function for a draw call.
type Mode uint32

const (
	ModeLitSurface     Mode = 0
	ModeEmissiveMarker Mode = 1
)

func (m Mode) String() string {
	switch m {
	case ModeLitSurface:
		return "lit_surface"
	case ModeEmissiveMarker:
		return "emissive_marker"
	default:
		return "unknown"
	}
}

// PushConstants are the per-draw-call flags.
type PushConstants struct {
	LightSource bool
	// UniformScale is reserved. It is forwarded to the shading stage untouched and
	// has no effect on the output.
	UniformScale bool
}

// Mode maps the flags onto the branch they select. Only LightSource is observed.
func (pc PushConstants) Mode() Mode {
	if pc.LightSource {
		return ModeEmissiveMarker
	}
	return ModeLitSurface
}

// Words returns the GPU layout of the flags: two 32-bit booleans.
func (pc PushConstants) Words() [2]uint32 {
	var w [2]uint32
	if pc.LightSource {
		w[0] = 1
	}
	if pc.UniformScale {
		w[1] = 1
	}
	return w
}
