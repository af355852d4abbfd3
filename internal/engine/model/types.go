// Package model turns parsed mesh descriptions into GPU-ready vertex streams.
package model

import (
	"errors"
	"fmt"
)

// ErrLayoutMismatch is returned when a mesh lacks attributes its renderer needs.
var ErrLayoutMismatch = errors.New("mesh layout mismatch")

// Layout describes one interleaved vertex record, in floats.
// Record order is position(3), texcoord(2), normal(3); an absent attribute
// has offset -1 and takes no space.
type Layout struct {
	Stride         int
	TexCoordOffset int
	NormalOffset   int
}

// Common layouts.
var (
	// LayoutPosition is a bare position stream (skybox geometry).
	LayoutPosition = Layout{Stride: 3, TexCoordOffset: -1, NormalOffset: -1}
	// LayoutObject is the layout every lit, textured scene object uses.
	LayoutObject = Layout{Stride: 8, TexCoordOffset: 3, NormalOffset: 5}
)

// HasTexCoords reports whether records carry a texture coordinate.
func (l Layout) HasTexCoords() bool {
	return l.TexCoordOffset >= 0
}

// HasNormals reports whether records carry a normal.
func (l Layout) HasNormals() bool {
	return l.NormalOffset >= 0
}

// Mesh is a non-indexed triangle list ready for GPU upload.
// It is built once and never modified.
type Mesh struct {
	Vertices    []float32
	Layout      Layout
	VertexCount int
	Bounds      Bounds
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return m.VertexCount / 3
}

// Position returns the position of vertex i.
func (m *Mesh) Position(i int) [3]float32 {
	base := i * m.Layout.Stride
	return [3]float32{m.Vertices[base], m.Vertices[base+1], m.Vertices[base+2]}
}

// RequireLayout returns an error unless the mesh uses layout want.
func (m *Mesh) RequireLayout(want Layout) error {
	if m.Layout != want {
		return fmt.Errorf("%w: stride %d (texcoord %d, normal %d), want stride %d (texcoord %d, normal %d)",
			ErrLayoutMismatch,
			m.Layout.Stride, m.Layout.TexCoordOffset, m.Layout.NormalOffset,
			want.Stride, want.TexCoordOffset, want.NormalOffset)
	}
	return nil
}
