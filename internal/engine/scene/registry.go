package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/reliquary/internal/engine/backend"
	"github.com/Faultbox/reliquary/internal/engine/model"
	"github.com/Faultbox/reliquary/pkg/math"
)

// ErrUnknownObject is returned for handles the registry never issued.
var ErrUnknownObject = errors.New("unknown scene object")

// Material holds the Phong material terms shared by every object.
type Material struct {
	Ambient   math.Vec4
	Diffuse   math.Vec4
	Specular  math.Vec4
	Emission  math.Vec4
	Shininess float32
}

// Light is a single positional light. HalfVector is always zero.
type Light struct {
	Position   math.Vec4 // w=1
	Ambient    math.Vec4
	Diffuse    math.Vec4
	Specular   math.Vec4
	HalfVector math.Vec3
}

// objectFormat feeds the interleaved object layout to shader locations
// 0 (position), 1 (texcoord) and 2 (normal).
var objectFormat = backend.VertexFormat{
	Stride: model.LayoutObject.Stride,
	Attribs: []backend.Attrib{
		{Location: 0, Size: 3, Offset: 0},
		{Location: 1, Size: 2, Offset: model.LayoutObject.TexCoordOffset},
		{Location: 2, Size: 3, Offset: model.LayoutObject.NormalOffset},
	},
}

// GPUMesh is an uploaded mesh. Several objects may share one.
type GPUMesh struct {
	Buffer      backend.BufferHandle
	Format      backend.VertexFormat
	VertexCount int32
}

// UploadMesh uploads m, which must use the object layout.
func UploadMesh(b backend.Backend, m *model.Mesh) (*GPUMesh, error) {
	if err := m.RequireLayout(model.LayoutObject); err != nil {
		return nil, err
	}
	return &GPUMesh{
		Buffer:      b.CreateVertexBuffer(m.Vertices),
		Format:      objectFormat,
		VertexCount: int32(m.VertexCount),
	}, nil
}

// Handle identifies a registered object.
type Handle int

// Object is the draw bundle for one registered object.
type Object struct {
	Name        string
	Mesh        *GPUMesh
	Material    *Material
	TextureUnit int32

	// Reflective objects sample the sky when reflections are switched on.
	Reflective bool
	World      math.Mat4
	Normal     math.Mat3
}

// Registry owns per-object transforms. Normal matrices are recomputed
// eagerly whenever the world or view matrix changes; there is no dirty flag.
type Registry struct {
	objects []Object
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an object and computes its normal matrix against view.
func (r *Registry) Register(obj Object, view math.Mat4) Handle {
	obj.Normal = math.NormalMatrix(obj.World, view)
	r.objects = append(r.objects, obj)
	return Handle(len(r.objects) - 1)
}

func (r *Registry) lookup(h Handle) (*Object, error) {
	if h < 0 || int(h) >= len(r.objects) {
		return nil, fmt.Errorf("%w: handle %d", ErrUnknownObject, h)
	}
	return &r.objects[h], nil
}

// SetWorldMatrix replaces the world matrix and recomputes the normal matrix.
func (r *Registry) SetWorldMatrix(h Handle, world, view math.Mat4) error {
	obj, err := r.lookup(h)
	if err != nil {
		return err
	}
	obj.World = world
	obj.Normal = math.NormalMatrix(world, view)
	return nil
}

// Refresh recomputes the normal matrix for a new view.
func (r *Registry) Refresh(h Handle, view math.Mat4) error {
	obj, err := r.lookup(h)
	if err != nil {
		return err
	}
	obj.Normal = math.NormalMatrix(obj.World, view)
	return nil
}

// Object returns a copy of the object's draw bundle.
func (r *Registry) Object(h Handle) (Object, error) {
	obj, err := r.lookup(h)
	if err != nil {
		return Object{}, err
	}
	return *obj, nil
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	return len(r.objects)
}
