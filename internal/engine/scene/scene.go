// Package scene owns the reliquary scene: a pedestal, a hovering skull and
// a ring of gems in front of a skybox. It registers the objects, keeps their
// normal matrices current and issues every draw of a frame in a fixed order.
package scene

import (
	"context"
	"fmt"
	"image"
	"math/rand"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/reliquary/internal/engine/animation"
	"github.com/Faultbox/reliquary/internal/engine/backend"
	"github.com/Faultbox/reliquary/internal/engine/camera"
	"github.com/Faultbox/reliquary/internal/engine/input"
	"github.com/Faultbox/reliquary/internal/engine/model"
	"github.com/Faultbox/reliquary/internal/engine/scene/shaders"
	"github.com/Faultbox/reliquary/internal/engine/skybox"
	"github.com/Faultbox/reliquary/internal/engine/texture"
	"github.com/Faultbox/reliquary/internal/logger"
	"github.com/Faultbox/reliquary/pkg/math"
)

// Texture units. The skybox cube map lives on SkyUnit.
const (
	DiamondUnit  int32 = 0
	PedestalUnit int32 = 1
	SkyUnit      int32 = 2
	SkullUnit    int32 = 3
)

// Fog settings. FogColor is also the clear color.
const (
	FogNear = 5.0
	FogFar  = 8.0
)

// FogColor is the color distant fragments fade to.
var FogColor = math.Vec4{0, 0, 0.02, 1}

// Object placement.
var (
	SkullRest       = math.Vec3{X: 0, Y: 4.705, Z: -0.2}
	MainGemPosition = math.Vec3{X: 0, Y: 4.75, Z: 0.2}
)

// Gem ring layout.
const (
	RingRadius   = 0.6
	RingHeight   = 4.75
	MainGemScale = 0.05
)

// GemBlend is the additive/subtractive blend the gems are drawn with.
var GemBlend = backend.BlendMode{
	Enabled:  true,
	SrcRGB:   backend.SrcColor,
	DstRGB:   backend.DstColor,
	SrcAlpha: backend.SrcAlpha,
	DstAlpha: backend.OneMinusSrcAlpha,
	EqRGB:    backend.FuncAdd,
	EqAlpha:  backend.FuncSubtract,
}

// DefaultMaterial is the material shared by every object.
var DefaultMaterial = Material{
	Ambient:   math.Vec4{0.25, 0.25, 0.25, 1},
	Diffuse:   math.Vec4{0.4, 0.4, 0.4, 1},
	Specular:  math.Vec4{0.77, 0.77, 0.77, 1},
	Emission:  math.Vec4{0, 0, 0, 0},
	Shininess: 76.6,
}

// DefaultLight returns the light colors. Its position follows the camera.
func DefaultLight() Light {
	return Light{
		Ambient:  math.Vec4{0.3, 0.3, 0.4, 1},
		Diffuse:  math.Vec4{1, 1, 1, 1},
		Specular: math.Vec4{1, 1, 1, 1},
	}
}

// Uniform names used by the object program.
const (
	uniformWorld        = "worldMat"
	uniformView         = "viewMat"
	uniformProjection   = "projectionMat"
	uniformNormal       = "normalMat"
	uniformLightPos     = "lightPosition"
	uniformLightAmb     = "lightAmbient"
	uniformLightDiff    = "lightDiffuse"
	uniformLightSpec    = "lightSpecular"
	uniformLightHalf    = "lightHalfVector"
	uniformMatEmission  = "materialEmission"
	uniformMatAmbient   = "materialAmbient"
	uniformMatDiffuse   = "materialDiffuse"
	uniformMatSpecular  = "materialSpecular"
	uniformMatShininess = "materialShininess"
	uniformBaseColor    = "baseColorTexture"
	uniformToon         = "useToonshader"
	uniformFogNear      = "fogNear"
	uniformFogFar       = "fogFar"
	uniformFogColor     = "fogColor"
	uniformReflection   = "reflectionVec"
	uniformSkyTexture   = "skyTexture"
	uniformReflects     = "reflectsSkybox"
)

// ObjectSources names one asset per scene object.
type ObjectSources struct {
	Pedestal string
	Skull    string
	Diamond  string
}

func (o ObjectSources) list() []string {
	return []string{o.Pedestal, o.Skull, o.Diamond}
}

// SkyboxSources names the six skybox faces as seen from inside the cube.
type SkyboxSources struct {
	Left, Right, Down, Up, Front, Back string
}

func (s SkyboxSources) list() []string {
	return []string{s.Left, s.Right, s.Down, s.Up, s.Front, s.Back}
}

// Sources lists every file the scene needs.
type Sources struct {
	Meshes   ObjectSources
	Textures ObjectSources
	Skybox   SkyboxSources
}

// Paths returns all source paths in a stable order.
func (s Sources) Paths() []string {
	paths := s.Meshes.list()
	paths = append(paths, s.Textures.list()...)
	return append(paths, s.Skybox.list()...)
}

// Loader resolves asset paths to their contents. Implementations return
// either every file or an error.
type Loader interface {
	LoadAll(ctx context.Context, names []string) (map[string][]byte, error)
}

// Options configures a scene.
type Options struct {
	Width, Height int32
	FOV           float32 // vertical, degrees
	Near, Far     float32
	GemCount      int

	// Rand drives the gem ring placement. Nil uses a randomly seeded source.
	Rand *rand.Rand
	// Camera is used as is when set; otherwise a default controller is made.
	Camera *camera.Controller
}

// DefaultOptions returns the stock scene options.
func DefaultOptions() Options {
	return Options{
		Width:    1280,
		Height:   720,
		FOV:      45,
		Near:     0.1,
		Far:      1000,
		GemCount: 10,
	}
}

// Stats holds the draw counts of the last frame.
type Stats struct {
	Frame        uint64
	SkyboxDraws  int
	OpaqueDraws  int
	BlendedDraws int
}

// Draws returns the total number of draw calls.
func (s Stats) Draws() int {
	return s.SkyboxDraws + s.OpaqueDraws + s.BlendedDraws
}

// Scene is the reliquary scene. All methods must be called on the thread
// that owns the graphics context.
type Scene struct {
	b   backend.Backend
	log *zap.Logger

	opts       Options
	program    backend.ProgramHandle
	sky        *skybox.Skybox
	registry   *Registry
	material   *Material
	light      Light
	projection math.Mat4
	view       math.Mat4

	hover  *animation.Hover
	ring   *animation.Ring
	camera *camera.Controller

	pedestal Handle
	skull    Handle
	gems     []Handle
	mainGem  Handle

	stats Stats
}

// decoded holds every asset after parsing, before any GPU upload.
type decoded struct {
	meshes   [3]*model.Mesh
	textures [3]*image.RGBA
	faces    [6]*image.RGBA
}

// Init loads every asset, uploads it and registers the scene objects.
// Any missing asset or malformed mesh fails the whole call. Shader compile
// errors are logged and do not.
func Init(ctx context.Context, b backend.Backend, loader Loader, src Sources, opts Options) (*Scene, error) {
	s := &Scene{
		b:        b,
		log:      logger.Named("scene"),
		opts:     opts,
		registry: NewRegistry(),
		light:    DefaultLight(),
		camera:   opts.Camera,
	}
	if s.camera == nil {
		s.camera = camera.NewController()
	}
	mat := DefaultMaterial
	s.material = &mat

	data, err := loader.LoadAll(ctx, src.Paths())
	if err != nil {
		return nil, fmt.Errorf("load scene assets: %w", err)
	}
	dec, err := decodeAll(src, data)
	if err != nil {
		return nil, err
	}

	// Everything below touches the GPU and stays on this goroutine.
	meshes := make([]*GPUMesh, len(dec.meshes))
	for i, m := range dec.meshes {
		if meshes[i], err = UploadMesh(b, m); err != nil {
			return nil, fmt.Errorf("mesh %s: %w", src.Meshes.list()[i], err)
		}
	}
	pedestalMesh, skullMesh, diamondMesh := meshes[0], meshes[1], meshes[2]

	b.CreateTexture2D(PedestalUnit, dec.textures[0])
	b.CreateTexture2D(SkullUnit, dec.textures[1])
	b.CreateTexture2D(DiamondUnit, dec.textures[2])

	s.program, err = b.CompileProgram(shaders.ObjectVertexShader, shaders.ObjectFragmentShader)
	if err != nil {
		s.log.Warn("object program failed to compile", zap.Error(err))
	}

	faces := skybox.Faces{
		Left: dec.faces[0], Right: dec.faces[1],
		Down: dec.faces[2], Up: dec.faces[3],
		Front: dec.faces[4], Back: dec.faces[5],
	}
	s.sky, err = skybox.New(b, faces, SkyUnit, shaders.SkyboxVertexShader, shaders.SkyboxFragmentShader)
	if s.sky == nil {
		return nil, err
	}
	if err != nil {
		s.log.Warn("skybox program failed to compile", zap.Error(err))
	}

	s.hover = animation.NewHover(SkullRest.Y)
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	s.ring = animation.NewRing(opts.GemCount, RingRadius, RingHeight, rng)

	s.view = s.camera.ViewMatrix(s.hover.Height)
	s.pedestal = s.registry.Register(Object{
		Name: "pedestal", Mesh: pedestalMesh, Material: s.material,
		TextureUnit: PedestalUnit, World: math.Identity(),
	}, s.view)
	s.skull = s.registry.Register(Object{
		Name: "skull", Mesh: skullMesh, Material: s.material,
		TextureUnit: SkullUnit, Reflective: true,
		World: s.hover.World(SkullRest.X, SkullRest.Z),
	}, s.view)
	s.gems = make([]Handle, s.ring.Len())
	for i := range s.gems {
		s.gems[i] = s.registry.Register(Object{
			Name: fmt.Sprintf("gem-%d", i), Mesh: diamondMesh, Material: s.material,
			TextureUnit: DiamondUnit, World: s.ring.World(i),
		}, s.view)
	}
	s.mainGem = s.registry.Register(Object{
		Name: "main-gem", Mesh: diamondMesh, Material: s.material,
		TextureUnit: DiamondUnit, World: animation.MainGem(MainGemPosition, MainGemScale),
	}, s.view)

	s.setStaticUniforms()
	s.Resize(opts.Width, opts.Height)
	b.SetClearColor(FogColor)

	s.log.Info("scene ready",
		zap.Int("objects", s.registry.Len()),
		zap.Int("gems", s.ring.Len()),
		zap.Int("pedestal_vertices", int(pedestalMesh.VertexCount)),
		zap.Int("skull_vertices", int(skullMesh.VertexCount)))
	return s, nil
}

// decodeAll parses meshes and images in parallel. It never touches the GPU.
func decodeAll(src Sources, data map[string][]byte) (*decoded, error) {
	dec := &decoded{}
	var g errgroup.Group

	for i, name := range src.Meshes.list() {
		g.Go(func() error {
			m, err := model.LoadOBJ(data[name])
			if err != nil {
				return fmt.Errorf("mesh %s: %w", name, err)
			}
			dec.meshes[i] = m
			return nil
		})
	}
	for i, name := range src.Textures.list() {
		g.Go(func() error {
			img, err := texture.Load2D(data[name])
			if err != nil {
				return fmt.Errorf("texture %s: %w", name, err)
			}
			dec.textures[i] = img
			return nil
		})
	}
	for i, name := range src.Skybox.list() {
		g.Go(func() error {
			img, err := texture.LoadFace(data[name])
			if err != nil {
				return fmt.Errorf("skybox face %s: %w", name, err)
			}
			dec.faces[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dec, nil
}

func (s *Scene) setStaticUniforms() {
	b, p, m := s.b, s.program, s.material
	b.UseProgram(p)

	b.SetUniformVec4(p, uniformMatEmission, m.Emission)
	b.SetUniformVec4(p, uniformMatAmbient, m.Ambient)
	b.SetUniformVec4(p, uniformMatDiffuse, m.Diffuse)
	b.SetUniformVec4(p, uniformMatSpecular, m.Specular)
	b.SetUniformFloat(p, uniformMatShininess, m.Shininess)

	b.SetUniformFloat(p, uniformFogNear, FogNear)
	b.SetUniformFloat(p, uniformFogFar, FogFar)
	b.SetUniformVec4(p, uniformFogColor, FogColor)

	b.SetUniformInt(p, uniformBaseColor, DiamondUnit)
	b.SetUniformInt(p, uniformSkyTexture, SkyUnit)
	b.SetUniformInt(p, uniformReflects, 0)
	b.SetUniformInt(p, uniformToon, 0)
	b.SetUniformVec3(p, uniformReflection, skybox.ReflectionVector(s.view))
}

// Resize updates the viewport and projection for a new drawable size.
func (s *Scene) Resize(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	s.opts.Width, s.opts.Height = width, height
	aspect := float32(width) / float32(height)
	s.projection = math.Perspective(math.Radians(s.opts.FOV), aspect, s.opts.Near, s.opts.Far)
	s.b.SetViewport(width, height)
}

// OnFrame advances the animation by one tick and draws the frame.
func (s *Scene) OnFrame(in *input.State) {
	b, p := s.b, s.program

	d := in.Consume()
	s.camera.AddPointerDelta(d.PointerDX, d.PointerDY)
	s.camera.AddTouchDelta(d.TouchDX)
	s.camera.AddZoom(d.Zoom)

	s.hover.Step(in.Animate)
	s.view = s.camera.ViewMatrix(s.hover.Height)
	_ = s.registry.SetWorldMatrix(s.skull, s.hover.World(SkullRest.X, SkullRest.Z), s.view)
	s.light.Position = s.camera.LightPosition()

	stats := Stats{Frame: s.stats.Frame + 1}

	b.SetBlendMode(backend.BlendOff)
	b.SetDepthWrite(true)
	b.SetClearColor(FogColor)
	b.Clear(true, true)

	s.sky.Draw(b, s.view, s.projection)
	stats.SkyboxDraws++

	b.Clear(false, true)
	b.UseProgram(p)
	s.setLightUniforms()
	b.SetUniformMat4(p, uniformView, s.view)
	b.SetUniformMat4(p, uniformProjection, s.projection)
	b.SetUniformVec3(p, uniformReflection, skybox.ReflectionVector(s.view))
	b.SetCullFace(backend.CullBack)
	b.SetUniformInt(p, uniformToon, boolInt(in.Toon))

	for _, h := range []Handle{s.pedestal, s.skull} {
		s.drawObject(h, in.Reflect)
		stats.OpaqueDraws++
	}

	b.SetBlendMode(GemBlend)
	b.SetDepthWrite(false)
	for _, h := range s.gems {
		s.drawObject(h, false)
		stats.BlendedDraws++
	}
	s.drawObject(s.mainGem, false)
	stats.BlendedDraws++

	s.stats = stats
}

func (s *Scene) setLightUniforms() {
	b, p, l := s.b, s.program, s.light
	b.SetUniformVec4(p, uniformLightPos, l.Position)
	b.SetUniformVec4(p, uniformLightAmb, l.Ambient)
	b.SetUniformVec4(p, uniformLightDiff, l.Diffuse)
	b.SetUniformVec4(p, uniformLightSpec, l.Specular)
	b.SetUniformVec3(p, uniformLightHalf, l.HalfVector)
}

// drawObject refreshes the normal matrix against the current view and
// issues one draw. Reflection only applies to reflective objects.
func (s *Scene) drawObject(h Handle, reflect bool) {
	b, p := s.b, s.program
	if err := s.registry.Refresh(h, s.view); err != nil {
		s.log.Error("draw skipped", zap.Int("handle", int(h)), zap.Error(err))
		return
	}
	obj, _ := s.registry.Object(h)

	b.BindVertexBuffer(obj.Mesh.Buffer, obj.Mesh.Format)
	b.SetUniformInt(p, uniformReflects, boolInt(reflect && obj.Reflective))
	b.SetUniformInt(p, uniformBaseColor, obj.TextureUnit)
	b.SetUniformMat4(p, uniformWorld, obj.World)
	b.SetUniformMat3(p, uniformNormal, obj.Normal)
	b.DrawArrays(backend.Triangles, obj.Mesh.VertexCount)
}

// Stats returns the draw counts of the last frame.
func (s *Scene) Stats() Stats {
	return s.stats
}

// Camera returns the orbit camera.
func (s *Scene) Camera() *camera.Controller {
	return s.camera
}

// Hover returns the skull hover state.
func (s *Scene) Hover() animation.Hover {
	return *s.hover
}

// Registry returns the object registry.
func (s *Scene) Registry() *Registry {
	return s.registry
}

// Handles returns the pedestal and skull handles, then the ring gems,
// then the main gem.
func (s *Scene) Handles() []Handle {
	out := []Handle{s.pedestal, s.skull}
	out = append(out, s.gems...)
	return append(out, s.mainGem)
}

// Projection returns the current projection matrix.
func (s *Scene) Projection() math.Mat4 {
	return s.projection
}

func boolInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
