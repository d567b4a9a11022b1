package geometry

import (
	"math"

	"github.com/arx-os/arxos-sub004/internal/registry"
	"github.com/arx-os/arxos-sub004/internal/step"
)

// Resolver turns placement and profile entities into geometry.
type Resolver struct {
	reg *registry.Registry
}

// NewResolver creates a resolver reading from reg.
func NewResolver(reg *registry.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// ResolvePlacement returns the global transform of a placement entity.
//
// A local placement composes its optional parent (absent means identity)
// with its relative placement: global = parent.Compose(relative). Axis
// placements build an orthonormal frame. Unsupported classes, dangling
// references and placement loops resolve to identity with resolved=false.
func (r *Resolver) ResolvePlacement(id uint64) (Transform3D, bool) {
	return r.placement(id, make(map[uint64]bool))
}

func (r *Resolver) placement(id uint64, visiting map[uint64]bool) (Transform3D, bool) {
	e, ok := r.reg.GetRaw(id)
	if !ok {
		return Identity(), false
	}

	switch r.reg.Kind(id) {
	case registry.KindLocalPlacement:
		// visiting holds the current chain only; shared axis placements
		// referenced from sibling chains are not loops.
		if visiting[id] {
			return Identity(), false
		}
		visiting[id] = true
		defer delete(visiting, id)

		resolved := true

		parent := Identity()
		if parentID, ok := e.Ref(0); ok {
			parent, ok = r.placement(parentID, visiting)
			resolved = resolved && ok
		}

		relative := Identity()
		if relID, ok := e.Ref(1); ok {
			relative, ok = r.placement(relID, visiting)
			resolved = resolved && ok
		} else {
			resolved = false
		}

		return parent.Compose(relative), resolved

	case registry.KindAxis2Placement3D:
		return r.frame(e, 0, 1, 2), true

	case registry.KindAxis2Placement2D:
		return r.planarFrame(e), true

	case registry.KindCartesianTransformationOperator3D:
		// Axis1, Axis2, LocalOrigin, Scale, Axis3. Scale is ignored: frames stay rigid.
		return r.frame(e, 2, 4, 0), true

	default:
		return Identity(), false
	}
}

// frame builds a right-handed orthonormal frame from the location, Z axis
// and reference X axis found at the given parameter positions.
func (r *Resolver) frame(e *step.Entity, locIdx, axisIdx, refIdx int) Transform3D {
	location := Vec3{}
	if id, ok := e.Ref(locIdx); ok {
		location, _ = r.ResolveCartesianPoint(id)
	}

	z := UnitZ
	if id, ok := e.Ref(axisIdx); ok {
		if d, ok := r.ResolveDirection(id); ok {
			z = d
		}
	}

	x := UnitX
	if id, ok := e.Ref(refIdx); ok {
		if d, ok := r.ResolveDirection(id); ok {
			x = d
		}
	}

	x, y, z := Orthonormalize(z, x)
	return FromBasis(x, y, z, location)
}

func (r *Resolver) planarFrame(e *step.Entity) Transform3D {
	location := Vec3{}
	if id, ok := e.Ref(0); ok {
		location, _ = r.ResolveCartesianPoint(id)
		location.Z = 0
	}

	x := UnitX
	if id, ok := e.Ref(1); ok {
		if d, ok := r.ResolveDirection(id); ok {
			if planar, ok := (Vec3{X: d.X, Y: d.Y}).Normalize(); ok {
				x = planar
			}
		}
	}

	y := Vec3{X: -x.Y, Y: x.X}
	return FromBasis(x, y, UnitZ, location)
}

// Orthonormalize returns the X, Y and Z axes of a right-handed frame from an
// approximate Z direction and reference X direction. Z is normalized first
// (falling back to +Z), the Z component is projected out of the reference X
// and the result normalized, and Y is Z x X. A reference collinear with Z is
// replaced by whichever world axis is least aligned with Z.
func Orthonormalize(axis, ref Vec3) (x, y, z Vec3) {
	z, ok := axis.Normalize()
	if !ok {
		z = UnitZ
	}

	x, ok = ref.Sub(z.Scale(ref.Dot(z))).Normalize()
	if !ok {
		fallback := UnitX
		if math.Abs(z.X) > 0.9 {
			fallback = UnitY
		}
		x, _ = fallback.Sub(z.Scale(fallback.Dot(z))).Normalize()
	}

	y = z.Cross(x)
	return x, y, z
}

// ResolveCartesianPoint reads a point's coordinate list. Missing
// coordinates default to 0; 2D points get Z = 0.
func (r *Resolver) ResolveCartesianPoint(id uint64) (Vec3, bool) {
	e, ok := r.reg.GetRaw(id)
	if !ok || r.reg.Kind(id) != registry.KindCartesianPoint {
		return Vec3{}, false
	}
	coords, ok := e.List(0)
	if !ok {
		return Vec3{}, false
	}
	return triple(coords), true
}

// ResolveDirection reads and normalizes a direction. A zero-length vector
// is reported as unset rather than normalized to NaN.
func (r *Resolver) ResolveDirection(id uint64) (Vec3, bool) {
	e, ok := r.reg.GetRaw(id)
	if !ok || r.reg.Kind(id) != registry.KindDirection {
		return Vec3{}, false
	}
	ratios, ok := e.List(0)
	if !ok {
		return Vec3{}, false
	}
	d, ok := triple(ratios).Normalize()
	if !ok {
		return Vec3{}, false
	}
	return d, true
}

// ResolveProfilePoints returns the outline of a 2D profile in its local
// XY plane. Rectangles are centered on the origin; arbitrary closed
// profiles follow their outer polyline with a repeated closing point
// removed.
func (r *Resolver) ResolveProfilePoints(profileID uint64) ([]Vec3, bool) {
	e, ok := r.reg.GetRaw(profileID)
	if !ok {
		return nil, false
	}

	switch r.reg.Kind(profileID) {
	case registry.KindRectangleProfileDef:
		xDim, okX := e.Float(3)
		yDim, okY := e.Float(4)
		if !okX || !okY || xDim <= 0 || yDim <= 0 {
			return nil, false
		}
		hw, hd := xDim/2, yDim/2
		return []Vec3{
			{X: -hw, Y: -hd},
			{X: hw, Y: -hd},
			{X: hw, Y: hd},
			{X: -hw, Y: hd},
		}, true

	case registry.KindArbitraryClosedProfileDef:
		curveID, ok := e.Ref(2)
		if !ok {
			return nil, false
		}
		points, ok := r.ResolvePolyline(curveID)
		if !ok {
			return nil, false
		}
		if n := len(points); n > 1 && points[0].ApproxEqual(points[n-1], 1e-9) {
			points = points[:n-1]
		}
		return points, len(points) > 0

	default:
		return nil, false
	}
}

// ResolvePolyline returns the points of a polyline in order. Unresolvable
// point references are skipped.
func (r *Resolver) ResolvePolyline(id uint64) ([]Vec3, bool) {
	e, ok := r.reg.GetRaw(id)
	if !ok || r.reg.Kind(id) != registry.KindPolyline {
		return nil, false
	}
	var points []Vec3
	for _, pointID := range e.Refs(0) {
		if p, ok := r.ResolveCartesianPoint(pointID); ok {
			points = append(points, p)
		}
	}
	return points, len(points) > 0
}

// triple reads up to three numbers from a list, defaulting missing ones to 0.
func triple(list step.List) Vec3 {
	var c [3]float64
	for i := 0; i < len(list) && i < 3; i++ {
		if f, ok := step.AsFloat(list[i]); ok {
			c[i] = f
		}
	}
	return Vec3{X: c[0], Y: c[1], Z: c[2]}
}
