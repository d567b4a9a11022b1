package mesh

import (
	"math"

	"github.com/arx-os/arxos-sub004/internal/geometry"
	"github.com/arx-os/arxos-sub004/internal/registry"
	"github.com/arx-os/arxos-sub004/internal/step"
)

// maxMappingDepth bounds nested mapped items, which may reference each
// other in a loop.
const maxMappingDepth = 8

// defaultDepth replaces a missing or malformed extrusion depth.
const defaultDepth = 1.0

// Resolver builds meshes from representation items.
type Resolver struct {
	reg *registry.Registry
	geo *geometry.Resolver
}

// NewResolver creates a mesh resolver sharing geo for placements and profiles.
func NewResolver(reg *registry.Registry, geo *geometry.Resolver) *Resolver {
	return &Resolver{reg: reg, geo: geo}
}

// ExtractMeshFromShape returns the mesh of the first representation of a
// product definition shape that yields one. Representations are not
// merged. A shape representation id is accepted directly.
func (r *Resolver) ExtractMeshFromShape(shapeID uint64, t geometry.Transform3D) (*Mesh, bool) {
	e, ok := r.reg.GetRaw(shapeID)
	if !ok {
		return nil, false
	}

	switch r.reg.Kind(shapeID) {
	case registry.KindProductDefinitionShape:
		for _, repID := range e.Refs(2) {
			if m, ok := r.representation(repID, t, 0); ok {
				return m, true
			}
		}
		return nil, false
	case registry.KindShapeRepresentation:
		return r.representation(shapeID, t, 0)
	default:
		return nil, false
	}
}

// representation merges the meshes of every item of a shape representation.
func (r *Resolver) representation(repID uint64, t geometry.Transform3D, depth int) (*Mesh, bool) {
	e, ok := r.reg.GetRaw(repID)
	if !ok || r.reg.Kind(repID) != registry.KindShapeRepresentation {
		return nil, false
	}

	var merged *Mesh
	for _, itemID := range e.Refs(3) {
		m, ok := r.item(itemID, t, depth)
		if !ok {
			continue
		}
		if merged == nil {
			merged = m
			continue
		}
		merged.Merge(m)
	}
	return merged, merged != nil
}

func (r *Resolver) item(id uint64, t geometry.Transform3D, depth int) (*Mesh, bool) {
	switch r.reg.Kind(id) {
	case registry.KindTriangulatedFaceSet:
		return r.ResolveTriangulatedFaceSet(id, t)
	case registry.KindExtrudedAreaSolid:
		return r.ResolveExtrudedAreaSolid(id, t)
	case registry.KindMappedItem:
		return r.mappedItem(id, t, depth)
	default:
		return nil, false
	}
}

// ResolveItem resolves a single representation item under t.
func (r *Resolver) ResolveItem(id uint64, t geometry.Transform3D) (*Mesh, bool) {
	return r.item(id, t, 0)
}

// ResolveTriangulatedFaceSet converts a face set's point list and 1-based
// coordinate index into a mesh transformed by t. Triangles that reference
// a missing point are dropped; a set left without points or triangles is
// not resolved.
func (r *Resolver) ResolveTriangulatedFaceSet(id uint64, t geometry.Transform3D) (*Mesh, bool) {
	e, ok := r.reg.GetRaw(id)
	if !ok || r.reg.Kind(id) != registry.KindTriangulatedFaceSet {
		return nil, false
	}

	vertices := r.pointList(e, t)
	if len(vertices) == 0 {
		return nil, false
	}

	// Optional PnIndex remaps CoordIndex values onto the point list.
	var remap []int64
	if pn, ok := e.List(4); ok {
		for _, p := range pn {
			if n, ok := step.AsInt(p); ok {
				remap = append(remap, n)
			}
		}
	}

	lookup := func(p step.Param) (uint32, bool) {
		n, ok := step.AsInt(p)
		if !ok {
			return 0, false
		}
		if len(remap) > 0 {
			if n < 1 || n > int64(len(remap)) {
				return 0, false
			}
			n = remap[n-1]
		}
		if n < 1 || n > int64(len(vertices)) {
			return 0, false
		}
		return uint32(n - 1), true
	}

	coordIndex, _ := e.List(3)
	indices := make([]uint32, 0, len(coordIndex)*3)
	for _, tri := range coordIndex {
		corners, ok := step.AsList(tri)
		if !ok || len(corners) != 3 {
			continue
		}
		a, okA := lookup(corners[0])
		b, okB := lookup(corners[1])
		c, okC := lookup(corners[2])
		if !okA || !okB || !okC {
			continue
		}
		indices = append(indices, a, b, c)
	}

	return New(vertices, indices)
}

func (r *Resolver) pointList(e *step.Entity, t geometry.Transform3D) []geometry.Vec3 {
	listID, ok := e.Ref(0)
	if !ok || r.reg.Kind(listID) != registry.KindCartesianPointList3D {
		return nil
	}
	list, _ := r.reg.GetRaw(listID)
	coords, ok := list.List(0)
	if !ok {
		return nil
	}

	vertices := make([]geometry.Vec3, 0, len(coords))
	for _, c := range coords {
		xyz, ok := step.AsList(c)
		if !ok {
			continue
		}
		var v [3]float64
		for i := 0; i < len(xyz) && i < 3; i++ {
			v[i], _ = step.AsFloat(xyz[i])
		}
		vertices = append(vertices, t.TransformPoint(geometry.Vec3{X: v[0], Y: v[1], Z: v[2]}))
	}
	return vertices
}

// ResolveExtrudedAreaSolid sweeps a profile along its local +Z by the
// declared depth.
//
// The local position is composed with t. Vertices 0..n-1 form the bottom
// ring and n..2n-1 the top ring. Each profile edge i -> i+1 yields the
// lateral triangles (b_i, b_i+1, t_i) and (b_i+1, t_i+1, t_i); both rings
// are capped by a fan from vertex 0, which is only correct for convex
// profiles.
func (r *Resolver) ResolveExtrudedAreaSolid(id uint64, t geometry.Transform3D) (*Mesh, bool) {
	e, ok := r.reg.GetRaw(id)
	if !ok || r.reg.Kind(id) != registry.KindExtrudedAreaSolid {
		return nil, false
	}

	profileID, ok := e.Ref(0)
	if !ok {
		return nil, false
	}
	profile, ok := r.geo.ResolveProfilePoints(profileID)
	if !ok || len(profile) < 3 {
		return nil, false
	}

	local := geometry.Identity()
	if posID, ok := e.Ref(1); ok {
		local, _ = r.geo.ResolvePlacement(posID)
	}
	composed := t.Compose(local)

	depth, ok := e.Float(3)
	if !ok || depth <= 0 || math.IsNaN(depth) || math.IsInf(depth, 0) {
		depth = defaultDepth
	}

	n := len(profile)
	vertices := make([]geometry.Vec3, 0, 2*n)
	for _, p := range profile {
		vertices = append(vertices, composed.TransformPoint(p))
	}
	for _, p := range profile {
		vertices = append(vertices, composed.TransformPoint(p.Add(geometry.Vec3{Z: depth})))
	}

	triangles := 2*n + 2*(n-2)
	indices := make([]uint32, 0, triangles*3)
	top := uint32(n)
	for i := 0; i < n; i++ {
		b0, b1 := uint32(i), uint32((i+1)%n)
		t0, t1 := top+b0, top+b1
		indices = append(indices, b0, b1, t0)
		indices = append(indices, b1, t1, t0)
	}
	for i := uint32(1); i+1 < uint32(n); i++ {
		indices = append(indices, 0, i+1, i)
	}
	for i := uint32(1); i+1 < uint32(n); i++ {
		indices = append(indices, top, top+i, top+i+1)
	}

	return New(vertices, indices)
}

// mappedItem instantiates a representation map: its items are resolved
// under t * target * origin.
func (r *Resolver) mappedItem(id uint64, t geometry.Transform3D, depth int) (*Mesh, bool) {
	if depth >= maxMappingDepth {
		return nil, false
	}
	e, ok := r.reg.GetRaw(id)
	if !ok {
		return nil, false
	}

	sourceID, ok := e.Ref(0)
	if !ok || r.reg.Kind(sourceID) != registry.KindRepresentationMap {
		return nil, false
	}
	source, _ := r.reg.GetRaw(sourceID)

	origin := geometry.Identity()
	if originID, ok := source.Ref(0); ok {
		origin, _ = r.geo.ResolvePlacement(originID)
	}
	target := geometry.Identity()
	if targetID, ok := e.Ref(1); ok {
		target, _ = r.geo.ResolvePlacement(targetID)
	}

	repID, ok := source.Ref(1)
	if !ok {
		return nil, false
	}
	return r.representation(repID, t.Compose(target).Compose(origin), depth+1)
}
