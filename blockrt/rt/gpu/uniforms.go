package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FrameUniformsSize is the byte size of the per-pass uniform block.
//
//	struct Frame {
//	  view:            mat4x4<f32>, //   0
//	  proj:            mat4x4<f32>, //  64
//	  light_view_proj: mat4x4<f32>, // 128
//	  bounds_min:      vec4<f32>,   // 192, w = bounds enabled
//	  bounds_max:      vec4<f32>,   // 208
//	  light_dir:       vec4<f32>,   // 224
//	  illumination:    vec4<f32>,   // 240
//	  camera_pos:      vec4<f32>,   // 256, w = shading level
//	} // 272
const FrameUniformsSize = 272

// DrawUniformsSize is the byte size of the per-draw block.
//
//	struct Draw {
//	  grid_origin: vec4<f32>, // 0, w = block step
//	  tint:        vec4<f32>, // 16, used when material < 0
//	} // 32
const DrawUniformsSize = 32

type FrameUniforms struct {
	View          mgl32.Mat4
	Proj          mgl32.Mat4
	LightViewProj mgl32.Mat4
	BoundsMin     mgl32.Vec3
	BoundsMax     mgl32.Vec3
	UseBounds     bool
	LightDir      mgl32.Vec3
	Illumination  mgl32.Vec4
	CameraPos     mgl32.Vec3
	Shading       int
}

// DrawUniforms places grid-space instance records in the world:
// world = (grid - Origin) * Step.
type DrawUniforms struct {
	Origin mgl32.Vec3
	Step   float32
	Tint   mgl32.Vec4
}

func putFloats(buf []byte, offset int, vals ...float32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v))
	}
}

func (u FrameUniforms) Encode() []byte {
	buf := make([]byte, FrameUniformsSize)
	putFloats(buf, 0, u.View[:]...)
	putFloats(buf, 64, u.Proj[:]...)
	putFloats(buf, 128, u.LightViewProj[:]...)

	var use float32
	if u.UseBounds {
		use = 1
	}
	putFloats(buf, 192, u.BoundsMin[0], u.BoundsMin[1], u.BoundsMin[2], use)
	putFloats(buf, 208, u.BoundsMax[0], u.BoundsMax[1], u.BoundsMax[2], 0)
	putFloats(buf, 224, u.LightDir[0], u.LightDir[1], u.LightDir[2], 0)
	putFloats(buf, 240, u.Illumination[:]...)
	putFloats(buf, 256, u.CameraPos[0], u.CameraPos[1], u.CameraPos[2], float32(u.Shading))
	return buf
}

func (u DrawUniforms) Encode() []byte {
	buf := make([]byte, DrawUniformsSize)
	putFloats(buf, 0, u.Origin[0], u.Origin[1], u.Origin[2], u.Step)
	putFloats(buf, 16, u.Tint[:]...)
	return buf
}
