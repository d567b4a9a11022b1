// Package mesh extracts triangle meshes from IFC geometric representation
// items: triangulated face sets, extruded area solids and mapped items.
package mesh

import (
	"github.com/arx-os/arxos-sub004/internal/geometry"
)

// Mesh is an indexed triangle list. Indices are 0-based, three per triangle.
type Mesh struct {
	Vertices []geometry.Vec3 `json:"vertices" yaml:"vertices"`
	Indices  []uint32        `json:"indices" yaml:"indices,flow"`
}

// New validates and wraps a vertex/index pair. Meshes without vertices,
// without indices, with a partial triangle or with an out-of-range index
// are rejected.
func New(vertices []geometry.Vec3, indices []uint32) (*Mesh, bool) {
	if len(vertices) == 0 || len(indices) == 0 || len(indices)%3 != 0 {
		return nil, false
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, false
		}
	}
	return &Mesh{Vertices: vertices, Indices: indices}, true
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Merge appends other's triangles, offsetting its indices.
func (m *Mesh) Merge(other *Mesh) {
	offset := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, idx+offset)
	}
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (lo, hi geometry.Vec3) {
	if len(m.Vertices) == 0 {
		return lo, hi
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo = geometry.Vec3{X: min(lo.X, v.X), Y: min(lo.Y, v.Y), Z: min(lo.Z, v.Z)}
		hi = geometry.Vec3{X: max(hi.X, v.X), Y: max(hi.Y, v.Y), Z: max(hi.Z, v.Z)}
	}
	return lo, hi
}
