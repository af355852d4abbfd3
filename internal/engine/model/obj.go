package model

import (
	"github.com/Faultbox/reliquary/pkg/formats"
)

// LayoutFor returns the record layout produced for obj.
func LayoutFor(obj *formats.OBJ) Layout {
	l := Layout{Stride: 3, TexCoordOffset: -1, NormalOffset: -1}
	if obj.HasTexCoords() {
		l.TexCoordOffset = l.Stride
		l.Stride += 2
	}
	if obj.HasNormals() {
		l.NormalOffset = l.Stride
		l.Stride += 3
	}
	return l
}

// BuildOBJMesh unrolls indexed OBJ faces into a flat interleaved vertex
// stream. Every face-vertex becomes its own record; nothing is shared or
// deduplicated.
func BuildOBJMesh(obj *formats.OBJ) *Mesh {
	layout := LayoutFor(obj)
	vertexCount := len(obj.Faces) * 3

	mesh := &Mesh{
		Vertices:    make([]float32, 0, vertexCount*layout.Stride),
		Layout:      layout,
		VertexCount: vertexCount,
		Bounds: Bounds{
			Min: [3]float32{1e10, 1e10, 1e10},
			Max: [3]float32{-1e10, -1e10, -1e10},
		},
	}

	for _, face := range obj.Faces {
		for _, fv := range face {
			pos := obj.Positions[fv.Position]
			mesh.Vertices = append(mesh.Vertices, pos[0], pos[1], pos[2])
			updateBounds(&mesh.Bounds, pos)

			if layout.HasTexCoords() {
				uv := obj.TexCoords[fv.TexCoord]
				mesh.Vertices = append(mesh.Vertices, uv[0], uv[1])
			}
			if layout.HasNormals() {
				n := obj.Normals[fv.Normal]
				mesh.Vertices = append(mesh.Vertices, n[0], n[1], n[2])
			}
		}
	}

	if vertexCount == 0 {
		mesh.Bounds = Bounds{}
	}

	return mesh
}

// LoadOBJ parses OBJ text and builds its mesh.
func LoadOBJ(data []byte) (*Mesh, error) {
	obj, err := formats.ParseOBJ(data)
	if err != nil {
		return nil, err
	}
	return BuildOBJMesh(obj), nil
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
