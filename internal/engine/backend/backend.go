// Package backend defines the graphics capabilities the scene pipeline
// needs and provides an OpenGL implementation plus a call recorder.
package backend

import (
	"image"

	"github.com/Faultbox/reliquary/pkg/math"
)

// Handles returned by a Backend. Zero is never a valid handle.
type (
	BufferHandle  uint32
	ProgramHandle uint32
	TextureHandle uint32
)

// Primitive is a draw topology.
type Primitive int

// Primitive types.
const (
	Triangles Primitive = iota
	Lines
)

// CullFace selects which faces are discarded.
type CullFace int

// Cull modes.
const (
	CullBack CullFace = iota
	CullFront
)

// String returns the cull mode name.
func (c CullFace) String() string {
	if c == CullFront {
		return "front"
	}
	return "back"
}

// BlendFactor is a blend function factor.
type BlendFactor int

// Blend factors.
const (
	Zero BlendFactor = iota
	One
	SrcColor
	DstColor
	SrcAlpha
	OneMinusSrcAlpha
)

// BlendEquation combines source and destination terms.
type BlendEquation int

// Blend equations.
const (
	FuncAdd BlendEquation = iota
	FuncSubtract
)

// BlendMode is a separate (color/alpha) blend configuration.
type BlendMode struct {
	Enabled  bool
	SrcRGB   BlendFactor
	DstRGB   BlendFactor
	SrcAlpha BlendFactor
	DstAlpha BlendFactor
	EqRGB    BlendEquation
	EqAlpha  BlendEquation
}

// BlendOff disables blending.
var BlendOff = BlendMode{}

// CubeFace is one face target of a cube map.
type CubeFace int

// Cube map face targets.
const (
	CubePositiveX CubeFace = iota
	CubeNegativeX
	CubePositiveY
	CubeNegativeY
	CubePositiveZ
	CubeNegativeZ
)

// String returns the GL-style face name.
func (f CubeFace) String() string {
	switch f {
	case CubePositiveX:
		return "+X"
	case CubeNegativeX:
		return "-X"
	case CubePositiveY:
		return "+Y"
	case CubeNegativeY:
		return "-Y"
	case CubePositiveZ:
		return "+Z"
	case CubeNegativeZ:
		return "-Z"
	default:
		return "?"
	}
}

// Attrib binds one float attribute inside an interleaved record.
// Size and Offset are in floats.
type Attrib struct {
	Location uint32
	Size     int32
	Offset   int
}

// VertexFormat describes how a vertex buffer feeds shader attributes.
type VertexFormat struct {
	Stride  int
	Attribs []Attrib
}

// Backend is the capability surface the scene pipeline draws through.
type Backend interface {
	CreateVertexBuffer(data []float32) BufferHandle
	CreateIndexBuffer(data []uint16) BufferHandle
	BindVertexBuffer(buf BufferHandle, format VertexFormat)
	BindIndexBuffer(buf BufferHandle)

	// CompileProgram always returns a handle. A non-nil error carries the
	// compiler or linker log; the handle may then be unusable.
	CompileProgram(vertexSrc, fragmentSrc string) (ProgramHandle, error)
	UseProgram(p ProgramHandle)

	SetUniformMat4(p ProgramHandle, name string, m math.Mat4)
	SetUniformMat3(p ProgramHandle, name string, m math.Mat3)
	SetUniformVec3(p ProgramHandle, name string, v math.Vec3)
	SetUniformVec4(p ProgramHandle, name string, v math.Vec4)
	SetUniformFloat(p ProgramHandle, name string, v float32)
	SetUniformInt(p ProgramHandle, name string, v int32)

	CreateTexture2D(unit int32, img *image.RGBA) TextureHandle
	CreateCubeMap(unit int32) TextureHandle
	BindCubeMapFace(tex TextureHandle, face CubeFace, img *image.RGBA)
	GenerateCubeMapMipmaps(tex TextureHandle)

	SetViewport(width, height int32)
	SetClearColor(c math.Vec4)
	Clear(color, depth bool)
	DrawIndexed(prim Primitive, indexCount int32)
	DrawArrays(prim Primitive, vertexCount int32)

	SetBlendMode(mode BlendMode)
	SetCullFace(mode CullFace)
	SetDepthWrite(enabled bool)

	Destroy()
}
