package script

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
)

// symbols maps OpenGL constant names, without the GL_ prefix, to their values.
var symbols = map[string]uint64{
	// primitives
	"POINTS":         0x0000,
	"LINES":          0x0001,
	"LINE_LOOP":      0x0002,
	"LINE_STRIP":     0x0003,
	"TRIANGLES":      0x0004,
	"TRIANGLE_STRIP": 0x0005,
	"TRIANGLE_FAN":   0x0006,
	"PATCHES":        0x000E,

	// capabilities
	"CULL_FACE":                 0x0B44,
	"DEPTH_TEST":                0x0B71,
	"STENCIL_TEST":              0x0B90,
	"BLEND":                     0x0BE2,
	"SCISSOR_TEST":              0x0C11,
	"POLYGON_OFFSET_FILL":       0x8037,
	"MULTISAMPLE":               0x809D,
	"PROGRAM_POINT_SIZE":        0x8642,
	"DEPTH_CLAMP":               0x864F,
	"TEXTURE_CUBE_MAP_SEAMLESS": 0x884F,
	"FRAMEBUFFER_SRGB":          0x8DB9,
	"PRIMITIVE_RESTART":         0x8F9D,

	// comparison functions
	"NEVER":    0x0200,
	"LESS":     0x0201,
	"EQUAL":    0x0202,
	"LEQUAL":   0x0203,
	"GREATER":  0x0204,
	"NOTEQUAL": 0x0205,
	"GEQUAL":   0x0206,
	"ALWAYS":   0x0207,

	// blend factors and equations
	"ZERO":                     0x0000,
	"ONE":                      0x0001,
	"SRC_COLOR":                0x0300,
	"ONE_MINUS_SRC_COLOR":      0x0301,
	"SRC_ALPHA":                0x0302,
	"ONE_MINUS_SRC_ALPHA":      0x0303,
	"DST_ALPHA":                0x0304,
	"ONE_MINUS_DST_ALPHA":      0x0305,
	"DST_COLOR":                0x0306,
	"ONE_MINUS_DST_COLOR":      0x0307,
	"SRC_ALPHA_SATURATE":       0x0308,
	"CONSTANT_COLOR":           0x8001,
	"ONE_MINUS_CONSTANT_COLOR": 0x8002,
	"CONSTANT_ALPHA":           0x8003,
	"ONE_MINUS_CONSTANT_ALPHA": 0x8004,
	"FUNC_ADD":                 0x8006,
	"MIN":                      0x8007,
	"MAX":                      0x8008,
	"FUNC_SUBTRACT":            0x800A,
	"FUNC_REVERSE_SUBTRACT":    0x800B,

	// stencil operations
	"KEEP":      0x1E00,
	"REPLACE":   0x1E01,
	"INCR":      0x1E02,
	"DECR":      0x1E03,
	"INVERT":    0x150A,
	"INCR_WRAP": 0x8507,
	"DECR_WRAP": 0x8508,

	// faces and polygon modes
	"FRONT":          uint64(vm.EnumFront),
	"BACK":           uint64(vm.EnumBack),
	"FRONT_AND_BACK": uint64(vm.EnumFrontAndBack),
	"CW":             0x0900,
	"CCW":            0x0901,
	"POINT":          0x1B00,
	"LINE":           0x1B01,
	"FILL":           0x1B02,

	// buffer and framebuffer targets
	"ARRAY_BUFFER":              uint64(vm.EnumArrayBuffer),
	"ELEMENT_ARRAY_BUFFER":      uint64(vm.EnumElementArrayBuffer),
	"UNIFORM_BUFFER":            uint64(vm.EnumUniformBuffer),
	"SHADER_STORAGE_BUFFER":     uint64(vm.EnumShaderStorageBuffer),
	"ATOMIC_COUNTER_BUFFER":     uint64(vm.EnumAtomicCounterBuffer),
	"TRANSFORM_FEEDBACK_BUFFER": uint64(vm.EnumTransformFeedbackBuf),
	"DRAW_INDIRECT_BUFFER":      0x8F3F,
	"FRAMEBUFFER":               uint64(vm.EnumFramebuffer),
	"READ_FRAMEBUFFER":          uint64(vm.EnumReadFramebuffer),
	"DRAW_FRAMEBUFFER":          uint64(vm.EnumDrawFramebuffer),

	// texture targets
	"TEXTURE_1D":       0x0DE0,
	"TEXTURE_2D":       uint64(vm.EnumTexture2D),
	"TEXTURE_3D":       0x806F,
	"TEXTURE_CUBE_MAP": 0x8513,
	"TEXTURE_2D_ARRAY": 0x8C1A,

	// clear bits
	"DEPTH_BUFFER_BIT":   uint64(vm.EnumDepthBufferBit),
	"STENCIL_BUFFER_BIT": uint64(vm.EnumStencilBufferBit),
	"COLOR_BUFFER_BIT":   uint64(vm.EnumColorBufferBit),

	// data types
	"BYTE":           0x1400,
	"UNSIGNED_BYTE":  0x1401,
	"SHORT":          0x1402,
	"UNSIGNED_SHORT": 0x1403,
	"INT":            0x1404,
	"UNSIGNED_INT":   uint64(vm.EnumUnsignedInt),
	"FLOAT":          uint64(vm.EnumFloat),
	"HALF_FLOAT":     0x140B,

	// image units
	"READ_ONLY":  0x88B8,
	"WRITE_ONLY": 0x88B9,
	"READ_WRITE": 0x88BA,
	"RGBA8":      0x8058,
	"RGBA32F":    0x8814,
	"RGBA16F":    0x881A,
	"R32F":       0x822E,
	"R32UI":      0x8236,
	"RGBA32UI":   0x8D70,

	"PATCH_VERTICES": 0x8E72,
}

func init() {
	for n := range 32 {
		symbols[fmt.Sprintf("TEXTURE%d", n)] = uint64(vm.EnumTexture0) + uint64(n)
	}
}

// normalizedKeyword marks a VertexAttribPointer type as normalized, e.g. "GL_UNSIGNED_BYTE|normalized".
const normalizedKeyword = "normalized"

// Symbol returns the value of an OpenGL constant given with or without its GL_ prefix.
//
// Parameters:
//   - name: the constant name, e.g. "GL_TRIANGLES"
//
// Returns:
//   - uint64: the constant value
//   - bool: false if the name is unknown
func Symbol(name string) (uint64, bool) {
	v, ok := symbols[strings.TrimPrefix(name, "GL_")]
	return v, ok
}
