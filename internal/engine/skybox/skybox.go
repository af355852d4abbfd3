// Package skybox builds the environment cube drawn behind the scene and
// derives the reflection direction the object shader samples it with.
package skybox

import (
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/reliquary/internal/engine/backend"
	"github.com/Faultbox/reliquary/internal/engine/texture"
	"github.com/Faultbox/reliquary/pkg/math"
)

// ErrMissingFace is returned when a cube map face image is nil.
var ErrMissingFace = errors.New("skybox: missing face image")

// Uniform names used by the skybox program.
const (
	UniformModelView  = "modelViewMatrix"
	UniformProjection = "projMatrix"
	UniformTexture    = "cubeTexture"
)

// cubeVertices holds 4 vertices per face so faces never share a vertex.
var cubeVertices = [...]float32{
	// Top
	-1, 1, -1,
	-1, 1, 1,
	1, 1, 1,
	1, 1, -1,

	// Left
	-1, 1, 1,
	-1, -1, 1,
	-1, -1, -1,
	-1, 1, -1,

	// Right
	1, 1, 1,
	1, -1, 1,
	1, -1, -1,
	1, 1, -1,

	// Front
	1, 1, 1,
	1, -1, 1,
	-1, -1, 1,
	-1, 1, 1,

	// Back
	1, 1, -1,
	1, -1, -1,
	-1, -1, -1,
	-1, 1, -1,

	// Bottom
	-1, -1, -1,
	-1, -1, 1,
	1, -1, 1,
	1, -1, -1,
}

var cubeIndices = [...]uint16{
	0, 1, 2, 0, 2, 3, // top
	5, 4, 6, 6, 4, 7, // left
	8, 9, 10, 8, 10, 11, // right
	13, 12, 14, 15, 14, 12, // front
	16, 17, 18, 16, 18, 19, // back
	21, 20, 22, 22, 20, 23, // bottom
}

// CubeVertices returns a copy of the 24 cube positions (xyz per vertex).
func CubeVertices() []float32 {
	out := make([]float32, len(cubeVertices))
	copy(out, cubeVertices[:])
	return out
}

// CubeIndices returns a copy of the 36 triangle indices into CubeVertices.
func CubeIndices() []uint16 {
	out := make([]uint16, len(cubeIndices))
	copy(out, cubeIndices[:])
	return out
}

// Faces holds the six environment images, named by how they appear from
// inside the cube.
type Faces struct {
	Left, Right, Down, Up, Front, Back *image.RGBA
}

// FaceTarget pairs a face image with the cube map face it is uploaded to.
type FaceTarget struct {
	Face  backend.CubeFace
	Image *image.RGBA
}

// Targets returns the fixed image to face mapping. The cube is viewed from
// inside, so the vertical pair is swapped.
func (f Faces) Targets() [6]FaceTarget {
	return [6]FaceTarget{
		{backend.CubePositiveX, f.Left},
		{backend.CubeNegativeX, f.Right},
		{backend.CubePositiveY, f.Down},
		{backend.CubeNegativeY, f.Up},
		{backend.CubePositiveZ, f.Front},
		{backend.CubeNegativeZ, f.Back},
	}
}

// Skybox is the immutable draw bundle for the environment cube.
type Skybox struct {
	Program      backend.ProgramHandle
	VertexBuffer backend.BufferHandle
	IndexBuffer  backend.BufferHandle
	IndexCount   int32
	CubeMap      backend.TextureHandle
	TextureUnit  int32
}

var positionFormat = backend.VertexFormat{
	Stride:  3,
	Attribs: []backend.Attrib{{Location: 0, Size: 3, Offset: 0}},
}

// New uploads the cube geometry and the six faces. A shader compile error is
// returned alongside a usable Skybox; the caller decides whether it is fatal.
func New(b backend.Backend, faces Faces, unit int32, vertexSrc, fragmentSrc string) (*Skybox, error) {
	targets := faces.Targets()
	for _, t := range targets {
		if t.Image == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingFace, t.Face)
		}
	}

	program, compileErr := b.CompileProgram(vertexSrc, fragmentSrc)

	sb := &Skybox{
		Program:      program,
		VertexBuffer: b.CreateVertexBuffer(cubeVertices[:]),
		IndexBuffer:  b.CreateIndexBuffer(cubeIndices[:]),
		IndexCount:   int32(len(cubeIndices)),
		TextureUnit:  unit,
	}

	sb.CubeMap = b.CreateCubeMap(unit)
	for _, t := range targets {
		b.BindCubeMapFace(sb.CubeMap, t.Face, texture.Square(t.Image))
	}
	b.GenerateCubeMapMipmaps(sb.CubeMap)

	b.UseProgram(program)
	b.SetUniformInt(program, UniformTexture, unit)

	if compileErr != nil {
		return sb, fmt.Errorf("skybox program: %w", compileErr)
	}
	return sb, nil
}

// Draw renders the cube around the camera. The view translation is dropped
// so the sky stays at infinity; front faces are culled because the camera
// sits inside the cube.
func (s *Skybox) Draw(b backend.Backend, view, proj math.Mat4) {
	b.SetBlendMode(backend.BlendOff)
	b.SetDepthWrite(true)
	b.SetCullFace(backend.CullFront)

	b.UseProgram(s.Program)
	b.SetUniformMat4(s.Program, UniformModelView, view.WithoutTranslation())
	b.SetUniformMat4(s.Program, UniformProjection, proj)

	b.BindVertexBuffer(s.VertexBuffer, positionFormat)
	b.BindIndexBuffer(s.IndexBuffer)
	b.DrawIndexed(backend.Triangles, s.IndexCount)
}

// ReflectionVector derives the reflection direction from the view rotation.
// Only the vertical projection survives: z is the sum of the third column of
// the inverted 3x3 view rotation, x and y stay zero.
func ReflectionVector(view math.Mat4) math.Vec3 {
	c := view.Mat3().Inverse().Column(2)
	return math.Vec3{Z: c.X + c.Y + c.Z}
}
