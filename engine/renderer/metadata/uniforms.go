package metadata

import (
	"unsafe"

	"github.com/spaghettifunk/volren/engine/config"
	"github.com/spaghettifunk/volren/engine/math"
)

/**
 * @brief Shading uniforms pushed to the composite pass. Field order matches
 * the std140 block in the fragment shader; scalars first, then the vec4 eye
 * position so no implicit padding is introduced.
 */
type ShadingUniforms struct {
	StepSize         float32
	BaseDistance     float32
	OpacityThreshold float32
	Shininess        float32
	Ambient          float32
	Diffuse          float32
	Specular         float32
	// 1 enables gradient shading, 0 renders unshaded
	Shaded uint32
	// Eye position in volume space, w unused.
	Eye math.Vec4
}

// DefaultShadingUniforms mirrors the configuration defaults.
func DefaultShadingUniforms() ShadingUniforms {
	return ShadingFromConfig(config.Default().Shading)
}

// ShadingFromConfig converts the config block into the GPU uniform layout.
func ShadingFromConfig(s config.Shading) ShadingUniforms {
	u := ShadingUniforms{
		StepSize:         s.StepSize,
		BaseDistance:     s.BaseDistance,
		OpacityThreshold: s.OpacityThreshold,
		Shininess:        s.Shininess,
		Ambient:          s.Ambient,
		Diffuse:          s.Diffuse,
		Specular:         s.Specular,
	}
	if s.Enabled {
		u.Shaded = 1
	}
	return u
}

// Bytes reinterprets the uniform block for buffer upload.
func (u *ShadingUniforms) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), unsafe.Sizeof(*u))
}

// MVPUniform is the face passes' uniform block: a single matrix.
type MVPUniform struct {
	ModelViewProj math.Mat4
}

func (u *MVPUniform) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), unsafe.Sizeof(*u))
}
