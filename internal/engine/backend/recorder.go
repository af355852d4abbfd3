package backend

import (
	"image"

	"github.com/Faultbox/reliquary/pkg/math"
)

// Op names a recorded Backend call.
type Op string

// Recorded operations.
const (
	OpCreateVertexBuffer Op = "CreateVertexBuffer"
	OpCreateIndexBuffer  Op = "CreateIndexBuffer"
	OpBindVertexBuffer   Op = "BindVertexBuffer"
	OpBindIndexBuffer    Op = "BindIndexBuffer"
	OpCompileProgram     Op = "CompileProgram"
	OpUseProgram         Op = "UseProgram"
	OpSetUniform         Op = "SetUniform"
	OpCreateTexture2D    Op = "CreateTexture2D"
	OpCreateCubeMap      Op = "CreateCubeMap"
	OpBindCubeMapFace    Op = "BindCubeMapFace"
	OpGenerateMipmaps    Op = "GenerateCubeMapMipmaps"
	OpSetViewport        Op = "SetViewport"
	OpSetClearColor      Op = "SetClearColor"
	OpClear              Op = "Clear"
	OpDrawIndexed        Op = "DrawIndexed"
	OpDrawArrays         Op = "DrawArrays"
	OpSetBlendMode       Op = "SetBlendMode"
	OpSetCullFace        Op = "SetCullFace"
	OpSetDepthWrite      Op = "SetDepthWrite"
)

// Call is one recorded Backend call together with the pipeline state
// that was current when it was made.
type Call struct {
	Op         Op
	Program    ProgramHandle
	Buffer     BufferHandle
	Texture    TextureHandle
	Name       string
	Value      any
	Count      int32
	Face       CubeFace
	Color      bool
	Depth      bool
	Blend      BlendMode
	Cull       CullFace
	DepthWrite bool
	// Uniforms is a snapshot of the current program's uniforms, taken for draws only.
	Uniforms map[string]any
}

var _ Backend = (*Recorder)(nil)

// Recorder is a Backend that records calls instead of touching a GPU.
// It is used to test draw ordering and uniform traffic headless.
type Recorder struct {
	Calls []Call

	// CompileErr, when set, is returned from every CompileProgram call.
	CompileErr error

	next       uint32
	program    ProgramHandle
	buffer     BufferHandle
	blend      BlendMode
	cull       CullFace
	depthWrite bool
	uniforms   map[ProgramHandle]map[string]any
	sources    map[ProgramHandle][2]string
	buffers    map[BufferHandle]int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		depthWrite: true,
		uniforms:   make(map[ProgramHandle]map[string]any),
		sources:    make(map[ProgramHandle][2]string),
		buffers:    make(map[BufferHandle]int),
	}
}

func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) record(c Call) {
	c.Program = r.program
	if c.Buffer == 0 {
		c.Buffer = r.buffer
	}
	c.Blend = r.blend
	c.Cull = r.cull
	c.DepthWrite = r.depthWrite
	r.Calls = append(r.Calls, c)
}

// CreateVertexBuffer implements Backend.
func (r *Recorder) CreateVertexBuffer(data []float32) BufferHandle {
	h := BufferHandle(r.handle())
	r.buffers[h] = len(data)
	r.record(Call{Op: OpCreateVertexBuffer, Buffer: h, Count: int32(len(data))})
	return h
}

// CreateIndexBuffer implements Backend.
func (r *Recorder) CreateIndexBuffer(data []uint16) BufferHandle {
	h := BufferHandle(r.handle())
	r.buffers[h] = len(data)
	r.record(Call{Op: OpCreateIndexBuffer, Buffer: h, Count: int32(len(data))})
	return h
}

// BindVertexBuffer implements Backend.
func (r *Recorder) BindVertexBuffer(buf BufferHandle, format VertexFormat) {
	r.buffer = buf
	r.record(Call{Op: OpBindVertexBuffer, Buffer: buf, Value: format})
}

// BindIndexBuffer implements Backend.
func (r *Recorder) BindIndexBuffer(buf BufferHandle) {
	r.record(Call{Op: OpBindIndexBuffer, Buffer: buf})
}

// CompileProgram implements Backend.
func (r *Recorder) CompileProgram(vertexSrc, fragmentSrc string) (ProgramHandle, error) {
	h := ProgramHandle(r.handle())
	r.sources[h] = [2]string{vertexSrc, fragmentSrc}
	r.uniforms[h] = make(map[string]any)
	r.record(Call{Op: OpCompileProgram, Value: h})
	return h, r.CompileErr
}

// UseProgram implements Backend.
func (r *Recorder) UseProgram(p ProgramHandle) {
	r.program = p
	r.record(Call{Op: OpUseProgram})
}

func (r *Recorder) setUniform(p ProgramHandle, name string, v any) {
	u, ok := r.uniforms[p]
	if !ok {
		u = make(map[string]any)
		r.uniforms[p] = u
	}
	u[name] = v
	r.record(Call{Op: OpSetUniform, Name: name, Value: v})
}

// SetUniformMat4 implements Backend.
func (r *Recorder) SetUniformMat4(p ProgramHandle, name string, m math.Mat4) {
	r.setUniform(p, name, m)
}

// SetUniformMat3 implements Backend.
func (r *Recorder) SetUniformMat3(p ProgramHandle, name string, m math.Mat3) {
	r.setUniform(p, name, m)
}

// SetUniformVec3 implements Backend.
func (r *Recorder) SetUniformVec3(p ProgramHandle, name string, v math.Vec3) {
	r.setUniform(p, name, v)
}

// SetUniformVec4 implements Backend.
func (r *Recorder) SetUniformVec4(p ProgramHandle, name string, v math.Vec4) {
	r.setUniform(p, name, v)
}

// SetUniformFloat implements Backend.
func (r *Recorder) SetUniformFloat(p ProgramHandle, name string, v float32) {
	r.setUniform(p, name, v)
}

// SetUniformInt implements Backend.
func (r *Recorder) SetUniformInt(p ProgramHandle, name string, v int32) {
	r.setUniform(p, name, v)
}

// CreateTexture2D implements Backend.
func (r *Recorder) CreateTexture2D(unit int32, img *image.RGBA) TextureHandle {
	h := TextureHandle(r.handle())
	r.record(Call{Op: OpCreateTexture2D, Texture: h, Value: unit})
	return h
}

// CreateCubeMap implements Backend.
func (r *Recorder) CreateCubeMap(unit int32) TextureHandle {
	h := TextureHandle(r.handle())
	r.record(Call{Op: OpCreateCubeMap, Texture: h, Value: unit})
	return h
}

// BindCubeMapFace implements Backend.
func (r *Recorder) BindCubeMapFace(tex TextureHandle, face CubeFace, img *image.RGBA) {
	r.record(Call{Op: OpBindCubeMapFace, Texture: tex, Face: face, Value: img.Bounds().Size()})
}

// GenerateCubeMapMipmaps implements Backend.
func (r *Recorder) GenerateCubeMapMipmaps(tex TextureHandle) {
	r.record(Call{Op: OpGenerateMipmaps, Texture: tex})
}

// SetViewport implements Backend.
func (r *Recorder) SetViewport(width, height int32) {
	r.record(Call{Op: OpSetViewport, Value: [2]int32{width, height}})
}

// SetClearColor implements Backend.
func (r *Recorder) SetClearColor(c math.Vec4) {
	r.record(Call{Op: OpSetClearColor, Value: c})
}

// Clear implements Backend.
func (r *Recorder) Clear(color, depth bool) {
	r.record(Call{Op: OpClear, Color: color, Depth: depth})
}

func (r *Recorder) snapshot() map[string]any {
	src := r.uniforms[r.program]
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// DrawIndexed implements Backend.
func (r *Recorder) DrawIndexed(prim Primitive, indexCount int32) {
	r.record(Call{Op: OpDrawIndexed, Count: indexCount, Value: prim, Uniforms: r.snapshot()})
}

// DrawArrays implements Backend.
func (r *Recorder) DrawArrays(prim Primitive, vertexCount int32) {
	r.record(Call{Op: OpDrawArrays, Count: vertexCount, Value: prim, Uniforms: r.snapshot()})
}

// SetBlendMode implements Backend.
func (r *Recorder) SetBlendMode(mode BlendMode) {
	r.blend = mode
	r.record(Call{Op: OpSetBlendMode})
}

// SetCullFace implements Backend.
func (r *Recorder) SetCullFace(mode CullFace) {
	r.cull = mode
	r.record(Call{Op: OpSetCullFace})
}

// SetDepthWrite implements Backend.
func (r *Recorder) SetDepthWrite(enabled bool) {
	r.depthWrite = enabled
	r.record(Call{Op: OpSetDepthWrite})
}

// Destroy implements Backend.
func (r *Recorder) Destroy() {}

// Draws returns the recorded draw calls in order.
func (r *Recorder) Draws() []Call {
	var draws []Call
	for _, c := range r.Calls {
		if c.Op == OpDrawArrays || c.Op == OpDrawIndexed {
			draws = append(draws, c)
		}
	}
	return draws
}

// Uniform returns the last value set for name on program p.
func (r *Recorder) Uniform(p ProgramHandle, name string) (any, bool) {
	v, ok := r.uniforms[p][name]
	return v, ok
}

// BufferLen returns the element count a buffer was created with.
func (r *Recorder) BufferLen(buf BufferHandle) int {
	return r.buffers[buf]
}

// Reset drops recorded calls but keeps handles and uniform state.
func (r *Recorder) Reset() {
	r.Calls = nil
}
