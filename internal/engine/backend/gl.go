package backend

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/reliquary/internal/engine/shader"
	"github.com/Faultbox/reliquary/internal/logger"
	"github.com/Faultbox/reliquary/pkg/math"
)

var _ Backend = (*GL)(nil)

// GL implements Backend on OpenGL 4.1 core.
// IMPORTANT: Must be created AFTER the OpenGL context exists, on the
// thread that owns it.
type GL struct {
	vao      uint32
	buffers  []uint32
	programs []uint32
	textures []uint32

	enabledAttribs []uint32
	locations      map[ProgramHandle]map[string]int32
	textureUnits   map[TextureHandle]int32
}

// NewGL initializes OpenGL and sets the default pipeline state.
func NewGL() (*GL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	g := &GL{
		locations:    make(map[ProgramHandle]map[string]int32),
		textureUnits: make(map[TextureHandle]int32),
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)

	// Core profile needs a bound VAO for any attribute setup.
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	return g, nil
}

// CreateVertexBuffer implements Backend.
func (g *GL) CreateVertexBuffer(data []float32) BufferHandle {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	g.buffers = append(g.buffers, vbo)
	return BufferHandle(vbo)
}

// CreateIndexBuffer implements Backend.
func (g *GL) CreateIndexBuffer(data []uint16) BufferHandle {
	var ibo uint32
	gl.GenBuffers(1, &ibo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ibo)
	if len(data) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*2, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	}
	g.buffers = append(g.buffers, ibo)
	return BufferHandle(ibo)
}

// BindVertexBuffer implements Backend.
func (g *GL) BindVertexBuffer(buf BufferHandle, format VertexFormat) {
	for _, loc := range g.enabledAttribs {
		gl.DisableVertexAttribArray(loc)
	}
	g.enabledAttribs = g.enabledAttribs[:0]

	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
	stride := int32(format.Stride * 4)
	for _, a := range format.Attribs {
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, stride, uintptr(a.Offset*4))
		gl.EnableVertexAttribArray(a.Location)
		g.enabledAttribs = append(g.enabledAttribs, a.Location)
	}
}

// BindIndexBuffer implements Backend.
func (g *GL) BindIndexBuffer(buf BufferHandle) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(buf))
}

// CompileProgram implements Backend.
func (g *GL) CompileProgram(vertexSrc, fragmentSrc string) (ProgramHandle, error) {
	program, err := shader.CompileProgram(vertexSrc, fragmentSrc)
	g.programs = append(g.programs, program)
	logger.Debug("shader program created", zap.Uint32("program", program), zap.Bool("ok", err == nil))
	return ProgramHandle(program), err
}

// UseProgram implements Backend.
func (g *GL) UseProgram(p ProgramHandle) {
	gl.UseProgram(uint32(p))
}

// location caches uniform lookups; -1 (inactive) is cached too.
func (g *GL) location(p ProgramHandle, name string) int32 {
	locs, ok := g.locations[p]
	if !ok {
		locs = make(map[string]int32)
		g.locations[p] = locs
	}
	loc, ok := locs[name]
	if !ok {
		loc = shader.GetUniform(uint32(p), name)
		locs[name] = loc
	}
	return loc
}

// SetUniformMat4 implements Backend.
func (g *GL) SetUniformMat4(p ProgramHandle, name string, m math.Mat4) {
	gl.ProgramUniformMatrix4fv(uint32(p), g.location(p, name), 1, false, m.Ptr())
}

// SetUniformMat3 implements Backend.
func (g *GL) SetUniformMat3(p ProgramHandle, name string, m math.Mat3) {
	gl.ProgramUniformMatrix3fv(uint32(p), g.location(p, name), 1, false, m.Ptr())
}

// SetUniformVec3 implements Backend.
func (g *GL) SetUniformVec3(p ProgramHandle, name string, v math.Vec3) {
	gl.ProgramUniform3f(uint32(p), g.location(p, name), v.X, v.Y, v.Z)
}

// SetUniformVec4 implements Backend.
func (g *GL) SetUniformVec4(p ProgramHandle, name string, v math.Vec4) {
	gl.ProgramUniform4f(uint32(p), g.location(p, name), v[0], v[1], v[2], v[3])
}

// SetUniformFloat implements Backend.
func (g *GL) SetUniformFloat(p ProgramHandle, name string, v float32) {
	gl.ProgramUniform1f(uint32(p), g.location(p, name), v)
}

// SetUniformInt implements Backend.
func (g *GL) SetUniformInt(p ProgramHandle, name string, v int32) {
	gl.ProgramUniform1i(uint32(p), g.location(p, name), v)
}

// CreateTexture2D implements Backend.
func (g *GL) CreateTexture2D(unit int32, img *image.RGBA) TextureHandle {
	var texID uint32
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)

	g.textures = append(g.textures, texID)
	g.textureUnits[TextureHandle(texID)] = unit
	return TextureHandle(texID)
}

// CreateCubeMap implements Backend.
func (g *GL) CreateCubeMap(unit int32) TextureHandle {
	var texID uint32
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, texID)

	g.textures = append(g.textures, texID)
	g.textureUnits[TextureHandle(texID)] = unit
	return TextureHandle(texID)
}

// BindCubeMapFace implements Backend.
func (g *GL) BindCubeMapFace(tex TextureHandle, face CubeFace, img *image.RGBA) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(g.textureUnits[tex]))
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(tex))
	gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), 0, gl.RGBA,
		int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
}

// GenerateCubeMapMipmaps implements Backend.
func (g *GL) GenerateCubeMapMipmaps(tex TextureHandle) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(g.textureUnits[tex]))
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(tex))
	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
}

// SetViewport implements Backend.
func (g *GL) SetViewport(width, height int32) {
	gl.Viewport(0, 0, width, height)
}

// SetClearColor implements Backend.
func (g *GL) SetClearColor(c math.Vec4) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
}

// Clear implements Backend.
func (g *GL) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

// DrawIndexed implements Backend.
func (g *GL) DrawIndexed(prim Primitive, indexCount int32) {
	gl.DrawElements(glPrimitive(prim), indexCount, gl.UNSIGNED_SHORT, nil)
}

// DrawArrays implements Backend.
func (g *GL) DrawArrays(prim Primitive, vertexCount int32) {
	gl.DrawArrays(glPrimitive(prim), 0, vertexCount)
}

// SetBlendMode implements Backend.
func (g *GL) SetBlendMode(mode BlendMode) {
	if !mode.Enabled {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendFuncSeparate(glBlendFactor(mode.SrcRGB), glBlendFactor(mode.DstRGB),
		glBlendFactor(mode.SrcAlpha), glBlendFactor(mode.DstAlpha))
	gl.BlendEquationSeparate(glBlendEquation(mode.EqRGB), glBlendEquation(mode.EqAlpha))
}

// SetCullFace implements Backend.
func (g *GL) SetCullFace(mode CullFace) {
	if mode == CullFront {
		gl.CullFace(gl.FRONT)
		return
	}
	gl.CullFace(gl.BACK)
}

// SetDepthWrite implements Backend.
func (g *GL) SetDepthWrite(enabled bool) {
	gl.DepthMask(enabled)
}

// ReadPixels reads the back buffer as tightly packed RGBA rows, bottom row
// first.
func (g *GL) ReadPixels(width, height int32) []byte {
	pixels := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

// Destroy releases every GL object created through this backend.
func (g *GL) Destroy() {
	logger.Info("closing graphics backend",
		zap.Int("buffers", len(g.buffers)),
		zap.Int("programs", len(g.programs)),
		zap.Int("textures", len(g.textures)),
	)
	if len(g.buffers) > 0 {
		gl.DeleteBuffers(int32(len(g.buffers)), &g.buffers[0])
	}
	if len(g.textures) > 0 {
		gl.DeleteTextures(int32(len(g.textures)), &g.textures[0])
	}
	for _, p := range g.programs {
		gl.DeleteProgram(p)
	}
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
	}
	g.buffers, g.textures, g.programs = nil, nil, nil
}

func glPrimitive(p Primitive) uint32 {
	if p == Lines {
		return gl.LINES
	}
	return gl.TRIANGLES
}

func glBlendFactor(f BlendFactor) uint32 {
	switch f {
	case One:
		return gl.ONE
	case SrcColor:
		return gl.SRC_COLOR
	case DstColor:
		return gl.DST_COLOR
	case SrcAlpha:
		return gl.SRC_ALPHA
	case OneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	default:
		return gl.ZERO
	}
}

func glBlendEquation(e BlendEquation) uint32 {
	if e == FuncSubtract {
		return gl.FUNC_SUBTRACT
	}
	return gl.FUNC_ADD
}
