package scene

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/Faultbox/reliquary/internal/assets"
	"github.com/Faultbox/reliquary/internal/engine/backend"
	"github.com/Faultbox/reliquary/internal/engine/input"
	"github.com/Faultbox/reliquary/internal/engine/model"
	"github.com/Faultbox/reliquary/pkg/formats"
	"github.com/Faultbox/reliquary/pkg/math"
)

const triangleOBJ = `# one textured triangle
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
`

var testSources = Sources{
	Meshes: ObjectSources{
		Pedestal: "objects/pedestal.obj",
		Skull:    "objects/skull.obj",
		Diamond:  "objects/diamond.obj",
	},
	Textures: ObjectSources{
		Pedestal: "objects/pedestal_tex.png",
		Skull:    "objects/skull_tex.png",
		Diamond:  "objects/diamond_tex.png",
	},
	Skybox: SkyboxSources{
		Left: "skybox/left.png", Right: "skybox/right.png",
		Down: "skybox/down.png", Up: "skybox/up.png",
		Front: "skybox/front.png", Back: "skybox/back.png",
	},
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testFS(t *testing.T) fstest.MapFS {
	t.Helper()
	fsys := fstest.MapFS{}
	for _, name := range testSources.Meshes.list() {
		fsys[name] = &fstest.MapFile{Data: []byte(triangleOBJ)}
	}
	for _, name := range testSources.Textures.list() {
		fsys[name] = &fstest.MapFile{Data: pngBytes(t, 2, 2)}
	}
	for _, name := range testSources.Skybox.list() {
		fsys[name] = &fstest.MapFile{Data: pngBytes(t, 4, 4)}
	}
	return fsys
}

func loaderFor(fsys fstest.MapFS) *assets.Manager {
	m := assets.NewManager()
	m.AddFS(fsys)
	return m
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Rand = rand.New(rand.NewSource(7))
	return opts
}

func newTestScene(t *testing.T) (*Scene, *backend.Recorder) {
	t.Helper()
	rec := backend.NewRecorder()
	s, err := Init(context.Background(), rec, loaderFor(testFS(t)), testSources, testOptions())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s, rec
}

func TestSourcesPaths(t *testing.T) {
	paths := testSources.Paths()
	if len(paths) != 12 {
		t.Fatalf("paths = %d, want 12", len(paths))
	}
	if paths[0] != testSources.Meshes.Pedestal || paths[11] != testSources.Skybox.Back {
		t.Errorf("unexpected order %v", paths)
	}
}

func TestInitRegistersObjects(t *testing.T) {
	s, rec := newTestScene(t)

	if got := s.Registry().Len(); got != 13 {
		t.Errorf("registered objects = %d, want 13", got)
	}

	var textures, faces int
	units := map[int32]bool{}
	for _, c := range rec.Calls {
		switch c.Op {
		case backend.OpCreateTexture2D:
			textures++
			units[c.Value.(int32)] = true
		case backend.OpBindCubeMapFace:
			faces++
		}
	}
	if textures != 3 || faces != 6 {
		t.Errorf("textures=%d faces=%d, want 3 and 6", textures, faces)
	}
	for _, u := range []int32{DiamondUnit, PedestalUnit, SkullUnit} {
		if !units[u] {
			t.Errorf("no texture on unit %d", u)
		}
	}

	skull, _ := s.Registry().Object(s.Handles()[1])
	if !skull.Reflective || skull.TextureUnit != SkullUnit {
		t.Errorf("skull = %+v", skull)
	}
	if skull.World.Translation() != SkullRest {
		t.Errorf("skull starts at %v, want %v", skull.World.Translation(), SkullRest)
	}
}

func TestFrameDrawOrder(t *testing.T) {
	s, rec := newTestScene(t)
	rec.Reset()

	in := &input.State{Reflect: true}
	s.OnFrame(in)

	draws := rec.Draws()
	if len(draws) != 14 {
		t.Fatalf("draws = %d, want 1 + 2 + 11", len(draws))
	}

	sky := draws[0]
	if sky.Op != backend.OpDrawIndexed || sky.Count != 36 || sky.Cull != backend.CullFront {
		t.Errorf("skybox draw = %s(%d) cull %s", sky.Op, sky.Count, sky.Cull)
	}

	for i, d := range draws[1:3] {
		if d.Op != backend.OpDrawArrays || d.Cull != backend.CullBack {
			t.Errorf("opaque draw %d = %s cull %s", i, d.Op, d.Cull)
		}
		if d.Blend.Enabled || !d.DepthWrite {
			t.Errorf("opaque draw %d blend=%v depthWrite=%v", i, d.Blend.Enabled, d.DepthWrite)
		}
	}
	if draws[1].Uniforms[uniformReflects] != int32(0) || draws[1].Uniforms[uniformBaseColor] != PedestalUnit {
		t.Errorf("pedestal reflect=%v unit=%v", draws[1].Uniforms[uniformReflects], draws[1].Uniforms[uniformBaseColor])
	}
	if draws[2].Uniforms[uniformReflects] != int32(1) || draws[2].Uniforms[uniformBaseColor] != SkullUnit {
		t.Errorf("skull reflect=%v unit=%v", draws[2].Uniforms[uniformReflects], draws[2].Uniforms[uniformBaseColor])
	}

	gemBuffer := draws[3].Buffer
	for i, d := range draws[3:] {
		if d.Blend != GemBlend || d.DepthWrite {
			t.Errorf("gem draw %d blend=%+v depthWrite=%v", i, d.Blend, d.DepthWrite)
		}
		if d.Uniforms[uniformReflects] != int32(0) || d.Uniforms[uniformBaseColor] != DiamondUnit {
			t.Errorf("gem draw %d reflect=%v unit=%v", i, d.Uniforms[uniformReflects], d.Uniforms[uniformBaseColor])
		}
		if d.Buffer != gemBuffer {
			t.Errorf("gem draw %d uses buffer %d, want shared %d", i, d.Buffer, gemBuffer)
		}
	}
	mainWorld := draws[13].Uniforms[uniformWorld].(math.Mat4)
	if mainWorld.Translation() != MainGemPosition {
		t.Errorf("last draw at %v, want main gem at %v", mainWorld.Translation(), MainGemPosition)
	}

	want := Stats{Frame: 1, SkyboxDraws: 1, OpaqueDraws: 2, BlendedDraws: 11}
	if s.Stats() != want {
		t.Errorf("stats = %+v, want %+v", s.Stats(), want)
	}
}

func TestFramePedestalVertexCount(t *testing.T) {
	fsys := testFS(t)
	pedestal := triangleOBJ + strings.Repeat("f 1/1/1 2/2/1 3/3/1\n", 23)
	fsys[testSources.Meshes.Pedestal] = &fstest.MapFile{Data: []byte(pedestal)}

	rec := backend.NewRecorder()
	s, err := Init(context.Background(), rec, loaderFor(fsys), testSources, testOptions())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	rec.Reset()
	s.OnFrame(&input.State{})

	draws := rec.Draws()
	if len(draws) != 14 {
		t.Fatalf("draws = %d, want 14", len(draws))
	}
	if draws[1].Count != 24*3 {
		t.Errorf("pedestal vertex count = %d, want 72", draws[1].Count)
	}
	if draws[2].Count != 3 {
		t.Errorf("skull vertex count = %d, want 3", draws[2].Count)
	}
}

func TestFrameClears(t *testing.T) {
	s, rec := newTestScene(t)
	rec.Reset()
	s.OnFrame(&input.State{})

	var clears []backend.Call
	var firstDraw, depthClear int
	for i, c := range rec.Calls {
		switch c.Op {
		case backend.OpClear:
			clears = append(clears, c)
			if len(clears) == 2 {
				depthClear = i
			}
		case backend.OpDrawIndexed:
			firstDraw = i
		}
	}
	if len(clears) != 2 {
		t.Fatalf("clears = %d, want 2", len(clears))
	}
	if !clears[0].Color || !clears[0].Depth {
		t.Error("first clear must clear color and depth")
	}
	if clears[1].Color || !clears[1].Depth {
		t.Error("second clear must clear depth only")
	}
	if depthClear < firstDraw {
		t.Error("depth clear issued before the skybox draw")
	}
}

func TestFrameReflectionOff(t *testing.T) {
	s, rec := newTestScene(t)
	rec.Reset()
	s.OnFrame(&input.State{Reflect: false, Toon: true})

	draws := rec.Draws()
	if draws[2].Uniforms[uniformReflects] != int32(0) {
		t.Error("skull reflects with reflection off")
	}
	for i, d := range draws[1:] {
		if d.Uniforms[uniformToon] != int32(1) {
			t.Errorf("draw %d toon=%v, want 1", i+1, d.Uniforms[uniformToon])
		}
	}
}

func TestFrameNormalMatrices(t *testing.T) {
	s, rec := newTestScene(t)
	rec.Reset()

	in := &input.State{}
	in.PointerDelta(-157, 0)
	s.OnFrame(in)

	view := s.Camera().ViewMatrix(s.Hover().Height)
	draws := rec.Draws()
	handles := s.Handles()
	for i, d := range draws[1:] {
		obj, _ := s.Registry().Object(handles[i])
		got := d.Uniforms[uniformNormal].(math.Mat3)
		if !got.ApproxEqual(math.NormalMatrix(obj.World, view), 1e-5) {
			t.Errorf("%s normal matrix is not derived from its own world and the frame view", obj.Name)
		}
		if d.Uniforms[uniformView] != view {
			t.Errorf("%s drawn with a stale view", obj.Name)
		}
	}
}

func TestFrameConsumesInput(t *testing.T) {
	s, _ := newTestScene(t)

	in := &input.State{}
	in.PointerDelta(100, 0)
	in.AddZoom(10)
	s.OnFrame(in)

	cam := s.Camera()
	if cam.Yaw != -1 {
		t.Errorf("yaw = %v, want -1", cam.Yaw)
	}
	if cam.Distance != cam.MaxDistance {
		t.Errorf("distance = %v, want clamped to %v", cam.Distance, cam.MaxDistance)
	}
	if in.PointerDX != 0 || in.ZoomDelta != 0 {
		t.Error("deltas not consumed")
	}

	s.OnFrame(in)
	if cam.Yaw != -1 {
		t.Error("consumed delta applied twice")
	}
}

func TestFrameLightFollowsEye(t *testing.T) {
	s, rec := newTestScene(t)
	rec.Reset()
	s.OnFrame(&input.State{})

	d := rec.Draws()[1]
	if d.Uniforms[uniformLightPos] != s.Camera().LightPosition() {
		t.Errorf("light = %v, want eye %v", d.Uniforms[uniformLightPos], s.Camera().LightPosition())
	}
}

func TestFrameAnimation(t *testing.T) {
	s, rec := newTestScene(t)
	start := s.Hover().Height

	s.OnFrame(&input.State{Animate: false})
	if s.Hover().Height != start {
		t.Fatal("hover moved with animation off")
	}

	rec.Reset()
	s.OnFrame(&input.State{Animate: true})
	h := s.Hover()
	if h.Height == start {
		t.Fatal("hover did not move with animation on")
	}

	skull := rec.Draws()[2].Uniforms[uniformWorld].(math.Mat4)
	if skull != h.World(SkullRest.X, SkullRest.Z) {
		t.Error("skull drawn with a stale world matrix")
	}
}

func TestStaticUniforms(t *testing.T) {
	s, rec := newTestScene(t)
	p := s.program

	checks := map[string]any{
		uniformFogNear:      float32(FogNear),
		uniformFogFar:       float32(FogFar),
		uniformFogColor:     FogColor,
		uniformSkyTexture:   SkyUnit,
		uniformMatShininess: DefaultMaterial.Shininess,
		uniformMatAmbient:   DefaultMaterial.Ambient,
	}
	for name, want := range checks {
		if got, ok := rec.Uniform(p, name); !ok || got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}

	var clear, viewport bool
	for _, c := range rec.Calls {
		if c.Op == backend.OpSetClearColor && c.Value == FogColor {
			clear = true
		}
		if c.Op == backend.OpSetViewport && c.Value == [2]int32{1280, 720} {
			viewport = true
		}
	}
	if !clear || !viewport {
		t.Errorf("clear color set=%v viewport set=%v", clear, viewport)
	}
}

func TestResize(t *testing.T) {
	s, rec := newTestScene(t)
	before := s.Projection()
	rec.Reset()

	s.Resize(0, 600)
	if len(rec.Calls) != 0 {
		t.Error("zero size should be ignored")
	}

	s.Resize(800, 800)
	if s.Projection() == before {
		t.Error("projection unchanged after resize")
	}
	want := math.Perspective(math.Radians(45), 1, 0.1, 1000)
	if !s.Projection().ApproxEqual(want, 1e-6) {
		t.Error("projection does not match the new aspect")
	}
}

func TestInitCompileErrorIsNotFatal(t *testing.T) {
	rec := backend.NewRecorder()
	rec.CompileErr = errors.New("0:1: syntax error")

	if _, err := Init(context.Background(), rec, loaderFor(testFS(t)), testSources, testOptions()); err != nil {
		t.Fatalf("Init: %v", err)
	}
}

func TestInitMissingAsset(t *testing.T) {
	fsys := testFS(t)
	delete(fsys, testSources.Skybox.Up)

	_, err := Init(context.Background(), backend.NewRecorder(), loaderFor(fsys), testSources, testOptions())
	if !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestInitMalformedMesh(t *testing.T) {
	fsys := testFS(t)
	fsys[testSources.Meshes.Skull] = &fstest.MapFile{Data: []byte("v 0 0 0\nf 1 2 3\n")}

	_, err := Init(context.Background(), backend.NewRecorder(), loaderFor(fsys), testSources, testOptions())
	if !errors.Is(err, formats.ErrMalformedOBJ) {
		t.Fatalf("err = %v, want ErrMalformedOBJ", err)
	}
}

func TestInitRejectsBareMesh(t *testing.T) {
	fsys := testFS(t)
	fsys[testSources.Meshes.Diamond] = &fstest.MapFile{Data: []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")}

	rec := backend.NewRecorder()
	_, err := Init(context.Background(), rec, loaderFor(fsys), testSources, testOptions())
	if !errors.Is(err, model.ErrLayoutMismatch) {
		t.Fatalf("err = %v, want ErrLayoutMismatch", err)
	}
}

func TestRingIsDeterministicForSeed(t *testing.T) {
	a, _ := newTestScene(t)
	b, _ := newTestScene(t)

	for i, h := range a.Handles() {
		oa, _ := a.Registry().Object(h)
		ob, _ := b.Registry().Object(b.Handles()[i])
		if oa.World != ob.World {
			t.Errorf("%s differs between scenes with the same seed", oa.Name)
		}
	}
}
