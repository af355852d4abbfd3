package backend

import (
	"errors"
	"image"
	"testing"

	"github.com/Faultbox/reliquary/pkg/math"
)

func TestRecorderCapturesState(t *testing.T) {
	r := NewRecorder()

	p, err := r.CompileProgram("vs", "fs")
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	vbo := r.CreateVertexBuffer(make([]float32, 24))
	r.UseProgram(p)
	r.BindVertexBuffer(vbo, VertexFormat{Stride: 8})
	r.SetUniformInt(p, "baseColorTexture", 3)
	r.SetBlendMode(BlendMode{Enabled: true, SrcRGB: SrcColor})
	r.SetCullFace(CullFront)
	r.SetDepthWrite(false)
	r.DrawArrays(Triangles, 3)

	draws := r.Draws()
	if len(draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(draws))
	}
	d := draws[0]
	if d.Program != p || d.Buffer != vbo {
		t.Errorf("draw program/buffer = %d/%d, want %d/%d", d.Program, d.Buffer, p, vbo)
	}
	if !d.Blend.Enabled || d.Cull != CullFront || d.DepthWrite {
		t.Errorf("draw state = blend %v cull %v depthWrite %v", d.Blend.Enabled, d.Cull, d.DepthWrite)
	}
	if d.Uniforms["baseColorTexture"] != int32(3) {
		t.Errorf("uniform snapshot = %v, want 3", d.Uniforms["baseColorTexture"])
	}
	if r.BufferLen(vbo) != 24 {
		t.Errorf("BufferLen = %d, want 24", r.BufferLen(vbo))
	}

	// Later uniform changes must not leak into the earlier snapshot.
	r.SetUniformInt(p, "baseColorTexture", 0)
	if d.Uniforms["baseColorTexture"] != int32(3) {
		t.Error("snapshot was mutated by a later uniform write")
	}
	if v, _ := r.Uniform(p, "baseColorTexture"); v != int32(0) {
		t.Errorf("Uniform() = %v, want 0", v)
	}
}

func TestRecorderCompileError(t *testing.T) {
	r := NewRecorder()
	r.CompileErr = errors.New("syntax error")

	p, err := r.CompileProgram("vs", "fs")
	if err == nil {
		t.Fatal("expected compile error")
	}
	if p == 0 {
		t.Error("a handle must be returned even on failure")
	}
}

func TestRecorderCubeMap(t *testing.T) {
	r := NewRecorder()
	tex := r.CreateCubeMap(2)
	r.BindCubeMapFace(tex, CubeNegativeY, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	r.GenerateCubeMapMipmaps(tex)

	var faces int
	for _, c := range r.Calls {
		if c.Op == OpBindCubeMapFace {
			faces++
			if c.Face != CubeNegativeY || c.Texture != tex {
				t.Errorf("face call = %+v", c)
			}
		}
	}
	if faces != 1 {
		t.Errorf("expected 1 face upload, got %d", faces)
	}
}

func TestRecorderReset(t *testing.T) {
	r := NewRecorder()
	p, _ := r.CompileProgram("vs", "fs")
	r.SetUniformVec3(p, "reflectionVec", math.Vec3{Z: 1})
	r.Reset()

	if len(r.Calls) != 0 {
		t.Errorf("calls after reset = %d", len(r.Calls))
	}
	if _, ok := r.Uniform(p, "reflectionVec"); !ok {
		t.Error("uniform state should survive Reset")
	}
}

func TestCubeFaceString(t *testing.T) {
	if CubePositiveX.String() != "+X" || CubeNegativeZ.String() != "-Z" {
		t.Errorf("unexpected face names %s %s", CubePositiveX, CubeNegativeZ)
	}
}
