package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arx-os/arxos-sub004/internal/registry"
	"github.com/arx-os/arxos-sub004/internal/step"
)

const tol = 1e-9

func resolverFor(t *testing.T, src string) *Resolver {
	t.Helper()
	reg := registry.Populate(step.NewLexer(src))
	require.Positive(t, reg.Len())
	return NewResolver(reg)
}

func TestComposeWithIdentity(t *testing.T) {
	x, y, z := Orthonormalize(Vec3{X: 1, Y: 1, Z: 1}, Vec3{X: 1})
	transforms := []Transform3D{
		Identity(),
		Translation(Vec3{X: 3, Y: -2, Z: 7.5}),
		FromBasis(x, y, z, Vec3{X: 1, Y: 2, Z: 3}),
	}

	for _, tr := range transforms {
		assert.True(t, Identity().Compose(tr).ApproxEqual(tr, tol))
		assert.True(t, tr.Compose(Identity()).ApproxEqual(tr, tol))
	}
}

func TestComposeIsAssociative(t *testing.T) {
	x, y, z := Orthonormalize(Vec3{Y: 1}, Vec3{X: 1})
	a := Translation(Vec3{X: 1})
	b := FromBasis(x, y, z, Vec3{Z: 2})
	c := Translation(Vec3{Y: 5})

	left := a.Compose(b).Compose(c)
	right := a.Compose(b.Compose(c))
	assert.True(t, left.ApproxEqual(right, tol))
}

func TestTransformPoint(t *testing.T) {
	// 90 degrees about Z, then move by (10, 0, 0)
	tr := FromBasis(UnitY, Vec3{X: -1}, UnitZ, Vec3{X: 10})

	p := tr.TransformPoint(Vec3{X: 1, Y: 0, Z: 2})
	assert.True(t, p.ApproxEqual(Vec3{X: 10, Y: 1, Z: 2}, tol), "got %+v", p)
}

func TestOrthonormalizeProducesOrthonormalFrame(t *testing.T) {
	pairs := [][2]Vec3{
		{{Z: 1}, {X: 1}},
		{{X: 0.1, Y: 0.2, Z: 0.97}, {X: 1, Y: 0.05}},
		{{X: 1, Y: 1}, {X: 0.3, Y: -0.2, Z: 1}},
		{{X: -3, Y: 4, Z: 12}, {X: 2, Y: 1, Z: 0}},
	}

	for _, pair := range pairs {
		x, y, z := Orthonormalize(pair[0], pair[1])
		for _, axis := range []Vec3{x, y, z} {
			assert.InDelta(t, 1.0, axis.Length(), 1e-9)
		}
		assert.InDelta(t, 0.0, x.Dot(y), 1e-9)
		assert.InDelta(t, 0.0, y.Dot(z), 1e-9)
		assert.InDelta(t, 0.0, z.Dot(x), 1e-9)
		// right-handed
		assert.True(t, x.Cross(y).ApproxEqual(z, 1e-9))
	}
}

func TestOrthonormalizeCollinearReference(t *testing.T) {
	x, y, z := Orthonormalize(UnitX, UnitX)
	assert.True(t, z.ApproxEqual(UnitX, tol))
	assert.InDelta(t, 1.0, x.Length(), tol)
	assert.InDelta(t, 0.0, x.Dot(z), tol)
	assert.InDelta(t, 1.0, y.Length(), tol)
}

func TestResolveAxisPlacement(t *testing.T) {
	r := resolverFor(t, `
#1= IFCCARTESIANPOINT((1.,2.,3.));
#2= IFCDIRECTION((0.,0.,1.));
#3= IFCDIRECTION((0.,1.,0.));
#4= IFCAXIS2PLACEMENT3D(#1,#2,#3);
`)

	tr, ok := r.ResolvePlacement(4)
	require.True(t, ok)
	assert.True(t, tr.Origin().ApproxEqual(Vec3{X: 1, Y: 2, Z: 3}, tol))
	assert.True(t, tr.Column(0).ApproxEqual(UnitY, tol))
	assert.True(t, tr.Column(1).ApproxEqual(Vec3{X: -1}, tol))
	assert.True(t, tr.Column(2).ApproxEqual(UnitZ, tol))
}

func TestResolveAxisPlacementApproximateDirections(t *testing.T) {
	r := resolverFor(t, `
#1= IFCCARTESIANPOINT((0.,0.,0.));
#2= IFCDIRECTION((0.01,0.,2.));
#3= IFCDIRECTION((1.,0.02,0.1));
#4= IFCAXIS2PLACEMENT3D(#1,#2,#3);
`)

	tr, ok := r.ResolvePlacement(4)
	require.True(t, ok)
	x, y, z := tr.Column(0), tr.Column(1), tr.Column(2)
	for _, axis := range []Vec3{x, y, z} {
		assert.InDelta(t, 1.0, axis.Length(), 1e-9)
	}
	assert.InDelta(t, 0.0, x.Dot(y), 1e-9)
	assert.InDelta(t, 0.0, x.Dot(z), 1e-9)
	assert.InDelta(t, 0.0, y.Dot(z), 1e-9)
}

func TestZeroDirectionFallsBackToDefaultAxis(t *testing.T) {
	r := resolverFor(t, `
#1= IFCCARTESIANPOINT((5.,0.,0.));
#2= IFCDIRECTION((0.,0.,0.));
#3= IFCAXIS2PLACEMENT3D(#1,#2,$);
`)

	_, ok := r.ResolveDirection(2)
	assert.False(t, ok, "zero vector is unset")

	tr, ok := r.ResolvePlacement(3)
	require.True(t, ok)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.False(t, math.IsNaN(tr.M[i][j]))
		}
	}
	assert.True(t, tr.Column(2).ApproxEqual(UnitZ, tol))
	assert.True(t, tr.Column(0).ApproxEqual(UnitX, tol))
}

func TestResolveLocalPlacementChain(t *testing.T) {
	r := resolverFor(t, `
#1= IFCCARTESIANPOINT((10.,0.,0.));
#2= IFCAXIS2PLACEMENT3D(#1,$,$);
#3= IFCLOCALPLACEMENT($,#2);
#4= IFCCARTESIANPOINT((0.,5.,0.));
#5= IFCDIRECTION((0.,0.,1.));
#6= IFCDIRECTION((0.,1.,0.));
#7= IFCAXIS2PLACEMENT3D(#4,#5,#6);
#8= IFCLOCALPLACEMENT(#3,#7);
#9= IFCLOCALPLACEMENT(#8,#2);
`)

	root, ok := r.ResolvePlacement(3)
	require.True(t, ok)
	assert.True(t, root.Origin().ApproxEqual(Vec3{X: 10}, tol))

	mid, ok := r.ResolvePlacement(8)
	require.True(t, ok)
	assert.True(t, mid.Origin().ApproxEqual(Vec3{X: 10, Y: 5}, tol))

	// #9 reuses #2 relative to the rotated frame of #8: local +X is world +Y.
	leaf, ok := r.ResolvePlacement(9)
	require.True(t, ok)
	assert.True(t, leaf.Origin().ApproxEqual(Vec3{X: 10, Y: 15}, tol), "got %+v", leaf.Origin())
}

func TestUnsupportedPlacementResolvesToIdentity(t *testing.T) {
	r := resolverFor(t, `
#1= IFCGRIDPLACEMENT($,$);
#2= IFCLOCALPLACEMENT($,#1);
`)

	tr, ok := r.ResolvePlacement(1)
	assert.False(t, ok)
	assert.Equal(t, Identity(), tr)

	tr, ok = r.ResolvePlacement(2)
	assert.False(t, ok)
	assert.Equal(t, Identity(), tr)

	tr, ok = r.ResolvePlacement(404)
	assert.False(t, ok)
	assert.Equal(t, Identity(), tr)
}

func TestPlacementLoopDegrades(t *testing.T) {
	r := resolverFor(t, `
#1= IFCCARTESIANPOINT((1.,0.,0.));
#2= IFCAXIS2PLACEMENT3D(#1,$,$);
#3= IFCLOCALPLACEMENT(#4,#2);
#4= IFCLOCALPLACEMENT(#3,#2);
`)

	_, ok := r.ResolvePlacement(3)
	assert.False(t, ok)
}

func TestResolveAxis2Placement2D(t *testing.T) {
	r := resolverFor(t, `
#1= IFCCARTESIANPOINT((2.,3.));
#2= IFCDIRECTION((0.,1.));
#3= IFCAXIS2PLACEMENT2D(#1,#2);
`)

	tr, ok := r.ResolvePlacement(3)
	require.True(t, ok)
	assert.True(t, tr.Origin().ApproxEqual(Vec3{X: 2, Y: 3}, tol))
	assert.True(t, tr.Column(0).ApproxEqual(UnitY, tol))
	assert.True(t, tr.Column(1).ApproxEqual(Vec3{X: -1}, tol))
}

func TestResolveCartesianPointDefaultsMissingCoordinates(t *testing.T) {
	r := resolverFor(t, `
#1= IFCCARTESIANPOINT((4.,5.));
#2= IFCCARTESIANPOINT(());
#3= IFCDIRECTION((1.,0.,0.));
`)

	p, ok := r.ResolveCartesianPoint(1)
	require.True(t, ok)
	assert.Equal(t, Vec3{X: 4, Y: 5}, p)

	p, ok = r.ResolveCartesianPoint(2)
	require.True(t, ok)
	assert.Equal(t, Vec3{}, p)

	_, ok = r.ResolveCartesianPoint(3)
	assert.False(t, ok, "directions are not points")
}

func TestResolveRectangleProfile(t *testing.T) {
	r := resolverFor(t, `
#1= IFCRECTANGLEPROFILEDEF(.AREA.,$,$,4.,2.);
#2= IFCRECTANGLEPROFILEDEF(.AREA.,$,$,$,2.);
`)

	points, ok := r.ResolveProfilePoints(1)
	require.True(t, ok)
	assert.Equal(t, []Vec3{
		{X: -2, Y: -1},
		{X: 2, Y: -1},
		{X: 2, Y: 1},
		{X: -2, Y: 1},
	}, points)

	_, ok = r.ResolveProfilePoints(2)
	assert.False(t, ok)
}

func TestResolveArbitraryClosedProfileDropsClosingPoint(t *testing.T) {
	r := resolverFor(t, `
#1= IFCCARTESIANPOINT((0.,0.));
#2= IFCCARTESIANPOINT((3.,0.));
#3= IFCCARTESIANPOINT((0.,3.));
#4= IFCPOLYLINE((#1,#2,#3,#1));
#5= IFCARBITRARYCLOSEDPROFILEDEF(.AREA.,$,#4);
`)

	points, ok := r.ResolveProfilePoints(5)
	require.True(t, ok)
	assert.Equal(t, []Vec3{{}, {X: 3}, {Y: 3}}, points)

	line, ok := r.ResolvePolyline(4)
	require.True(t, ok)
	assert.Len(t, line, 4)
}
