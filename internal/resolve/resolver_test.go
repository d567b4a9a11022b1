package resolve

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arx-os/arxos-sub004/internal/domain"
	"github.com/arx-os/arxos-sub004/internal/geometry"
	"github.com/arx-os/arxos-sub004/internal/registry"
	"github.com/arx-os/arxos-sub004/internal/step"
)

func load(t *testing.T, src string) *registry.Registry {
	t.Helper()
	return registry.Populate(step.NewLexer(step.DataSection(src)))
}

func office(t *testing.T) *registry.Registry {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "office.ifc"))
	require.NoError(t, err)
	reg := load(t, string(data))
	require.Equal(t, 59, reg.Len())
	return reg
}

func resolveOffice(t *testing.T) *Result {
	t.Helper()
	res, err := Resolve(office(t), DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, res.Building)
	return res
}

func TestResolveWithoutProjectFails(t *testing.T) {
	for _, src := range []string{
		"",
		"#1= IFCBUILDING('x',$,'HQ',$,$,$,$,$,$,$,$,$);",
	} {
		res, err := Resolve(load(t, src), DefaultOptions())
		require.Error(t, err)
		assert.Nil(t, res)

		var rerr *ResolveError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, ErrNoProject, rerr.Code)
	}
}

func TestResolveBuildingAddressFromPostalAddress(t *testing.T) {
	b := resolveOffice(t).Building

	assert.Equal(t, uint64(3), b.EntityID)
	assert.Equal(t, "HQ", b.Name)
	assert.Equal(t, domain.Address("usa/ny/brooklyn/hq"), b.Address)
	assert.True(t, b.Position.ApproxEqual(geometry.Vec3{X: 100, Y: 50}, 1e-9))
}

func TestResolveConfiguredPrefixWithoutPostalAddress(t *testing.T) {
	opts := DefaultOptions()
	opts.UsePostalAddress = false
	opts.Prefix = domain.NewAddress("Canada", "ON", "Toronto")

	res, err := Resolve(office(t), opts)
	require.NoError(t, err)
	assert.Equal(t, domain.Address("canada/on/toronto/hq"), res.Building.Address)
}

func TestResolveFloorsWingsRooms(t *testing.T) {
	b := resolveOffice(t).Building
	require.Len(t, b.Floors, 2)

	l1 := b.Floors[0]
	assert.Equal(t, domain.Address("usa/ny/brooklyn/hq/level-1"), l1.Address)
	assert.Equal(t, 0.0, l1.Elevation)
	require.Len(t, l1.Wings, 1)
	assert.Equal(t, domain.MainWing, l1.Wings[0].Name)
	assert.Equal(t, l1.Address, l1.Wings[0].Address, "main wing adds no segment")
	require.Len(t, l1.Wings[0].Rooms, 1)

	room := l1.Wings[0].Rooms[0]
	assert.Equal(t, domain.Address("usa/ny/brooklyn/hq/level-1/101"), room.Address)
	assert.Equal(t, "Open Office", room.LongName)
	assert.True(t, room.Position.ApproxEqual(geometry.Vec3{X: 105, Y: 55}, 1e-9))
	assert.Equal(t, "24", room.Properties["Qto_SpaceBaseQuantities:NetFloorArea"])

	l2 := b.Floors[1]
	assert.Equal(t, 3.5, l2.Elevation)
	assert.InDelta(t, 3.5, l2.Position.Z, 1e-9)
	require.Len(t, l2.Wings, 1)
	wing := l2.Wings[0]
	assert.Equal(t, uint64(7), wing.EntityID)
	assert.Equal(t, domain.Address("usa/ny/brooklyn/hq/level-2/east-wing"), wing.Address)
	require.Len(t, wing.Rooms, 2)
	assert.Equal(t, domain.Address("usa/ny/brooklyn/hq/level-2/east-wing/201"), wing.Rooms[0].Address)
	assert.Equal(t, domain.Address("usa/ny/brooklyn/hq/level-2/east-wing/202"), wing.Rooms[1].Address)

	assert.Len(t, b.Rooms(), 3)
}

func TestResolveRoomMeshFromExtrusion(t *testing.T) {
	b := resolveOffice(t).Building
	room := b.Floors[0].Wings[0].Rooms[0]

	require.NotNil(t, room.Mesh)
	assert.Len(t, room.Mesh.Vertices, 8)
	assert.Equal(t, 12, room.Mesh.TriangleCount())
	assert.True(t, room.Mesh.Vertices[0].ApproxEqual(geometry.Vec3{X: 103, Y: 52}, 1e-9))
	assert.True(t, room.Mesh.Vertices[4].ApproxEqual(geometry.Vec3{X: 103, Y: 52, Z: 3}, 1e-9))
}

func TestResolveEquipment(t *testing.T) {
	b := resolveOffice(t).Building
	require.Len(t, b.Equipment, 5)

	var addrs []domain.Address
	for _, e := range b.Equipment {
		addrs = append(addrs, e.Address)
	}
	assert.Equal(t, []domain.Address{
		"usa/ny/brooklyn/hq/level-1/diffuser",
		"usa/ny/brooklyn/hq/level-2/east-wing/201/ft-9",
		"usa/ny/brooklyn/hq/level-1/101/lamp",
		"usa/ny/brooklyn/hq/level-1/101/lamp-43",
		"usa/ny/brooklyn/hq/level-2/ar-marker-north",
	}, addrs)

	lamp, ok := b.FindEquipment("usa/ny/brooklyn/hq/level-1/101/lamp")
	require.True(t, ok)
	assert.Equal(t, domain.EquipmentType{Kind: domain.KindLighting, Class: "IFCLIGHTFIXTURE"}, lamp.Type)
	assert.Equal(t, "LF-1", lamp.Tag)
	assert.Equal(t, domain.Address("usa/ny/brooklyn/hq/level-1/101"), lamp.Scope)
	assert.Equal(t, uuid.MustParse("dd47bfbd-f50f-5419-9343-c320bc3fc4d9"), lamp.UUID)
	assert.True(t, lamp.Position.ApproxEqual(geometry.Vec3{X: 106, Y: 56, Z: 2.5}, 1e-9))
	require.NotNil(t, lamp.Mesh)
	assert.Equal(t, []uint32{0, 1, 2}, lamp.Mesh.Indices)
	assert.True(t, lamp.Mesh.Vertices[1].ApproxEqual(geometry.Vec3{X: 106.5, Y: 56, Z: 2.5}, 1e-9))
	assert.Equal(t, domain.Properties{
		"Pset_LightFixtureTypeCommon:Wattage":      "60",
		"Pset_LightFixtureTypeCommon:Manufacturer": "Acme",
	}, lamp.Properties)

	diffuser := b.Equipment[0]
	assert.Equal(t, domain.KindHVAC, diffuser.Type.Kind)
	assert.Equal(t, domain.Address("usa/ny/brooklyn/hq/level-1"), diffuser.Scope)
	assert.Equal(t, geometry.Identity(), diffuser.Transform)
	assert.Nil(t, diffuser.Mesh)

	terminal := b.Equipment[1]
	assert.Equal(t, "FT-9", terminal.Name)
	assert.NotEqual(t, uuid.Nil, terminal.UUID)

	anchor := b.Equipment[4]
	assert.Equal(t, domain.EquipmentType{Kind: domain.KindAnchor, Class: "IFCANNOTATION"}, anchor.Type)
}

func TestResolveDiagnostics(t *testing.T) {
	res := resolveOffice(t)

	assert.Equal(t, []Diagnostic{
		{EntityID: 46, Code: DiagUnnamed, Message: `no Name, using "FT-9"`},
		{EntityID: 46, Code: DiagGlobalID, Message: `GlobalId "bad" malformed, deriving UUID from address`},
		{EntityID: 43, Code: DiagAddressInUse, Message: "address usa/ny/brooklyn/hq/level-1/101/lamp in use, using usa/ny/brooklyn/hq/level-1/101/lamp-43"},
	}, res.Diagnostics)
}

func TestResolveGeoLocation(t *testing.T) {
	loc := resolveOffice(t).Building.Location
	require.NotNil(t, loc)

	assert.InDelta(t, 40.71277777777778, loc.Latitude, 1e-12)
	assert.InDelta(t, -73.98625, loc.Longitude, 1e-9)
	assert.Equal(t, 12.5, loc.Elevation)
}

func TestResolveRecordsAddressesInRegistry(t *testing.T) {
	reg := office(t)
	_, err := Resolve(reg, DefaultOptions())
	require.NoError(t, err)

	for id, want := range map[uint64]string{
		3:  "usa/ny/brooklyn/hq",
		5:  "usa/ny/brooklyn/hq/level-2",
		7:  "usa/ny/brooklyn/hq/level-2/east-wing",
		10: "usa/ny/brooklyn/hq/level-2/east-wing/202",
		43: "usa/ny/brooklyn/hq/level-1/101/lamp-43",
	} {
		got, ok := reg.GetAddress(id)
		require.True(t, ok, "#%d", id)
		assert.Equal(t, want, got)
	}

	_, ok := reg.GetAddress(45)
	assert.False(t, ok, "walls are not equipment")
}

func TestResolveOptionsDisableMeshesAndOverrideKinds(t *testing.T) {
	opts := DefaultOptions()
	opts.Meshes = false
	opts.AnchorKeywords = []string{"grid"}
	opts.EquipmentKinds = map[string]domain.EquipmentKind{
		"IfcLightFixture": domain.KindElectrical,
		"IFCWALL":         domain.KindOther,
	}

	res, err := Resolve(office(t), opts)
	require.NoError(t, err)

	for _, e := range res.Building.Equipment {
		assert.Nil(t, e.Mesh)
	}
	lamp, ok := res.Building.FindEquipment("usa/ny/brooklyn/hq/level-1/101/lamp")
	require.True(t, ok)
	assert.Equal(t, domain.KindElectrical, lamp.Type.Kind)

	wall, ok := res.Building.FindEquipment("usa/ny/brooklyn/hq/level-1/partition")
	require.True(t, ok)
	assert.Equal(t, "other(IFCWALL)", wall.Type.String())

	_, ok = res.Building.FindEquipment("usa/ny/brooklyn/hq/grid-line-a")
	assert.True(t, ok, "uncontained anchor falls back to the building scope")
	_, ok = res.Building.FindEquipment("usa/ny/brooklyn/hq/level-2/ar-marker-north")
	assert.False(t, ok)
}

func TestResolveDegradesWithoutBuilding(t *testing.T) {
	res, err := Resolve(load(t, `
#1= IFCPROJECT('0ilnOv_vPJpwo3qjoOaddA',$,'Lonely',$,$,$,$,$,$);
#2= IFCLOCALPLACEMENT($,#3);
#3= IFCGRIDPLACEMENT($,$);
#4= IFCPUMP('bad',$,'P-1',$,$,#2,#5,$,$);
#5= IFCPRODUCTDEFINITIONSHAPE($,$,(#6));
#6= IFCSHAPEREPRESENTATION($,'Body','Brep',(#7));
#7= IFCFACETEDBREP(#8);
#8= IFCPROPERTYSET('x',$,'Pset',$,(#9));
#10= IFCRELDEFINESBYPROPERTIES('y',$,$,$,(#4),#99);
`), DefaultOptions())
	require.NoError(t, err)

	b := res.Building
	assert.Equal(t, domain.Address("usa/unknown/unknown/lonely"), b.Address)
	assert.Empty(t, b.Floors)
	assert.Nil(t, b.Location)
	require.Len(t, b.Equipment, 1)

	pump := b.Equipment[0]
	assert.Equal(t, domain.Address("usa/unknown/unknown/lonely/p-1"), pump.Address)
	assert.Equal(t, domain.KindPlumbing, pump.Type.Kind)
	assert.Equal(t, geometry.Identity(), pump.Transform)
	assert.Nil(t, pump.Mesh)
	assert.Empty(t, pump.Properties)

	var codes []string
	for _, d := range res.Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []string{
		DiagNoBuilding,
		DiagContainer,
		DiagGlobalID,
		DiagPlacement,
		DiagMesh,
		DiagPropertySet,
	}, codes)
}

func TestResolveUnparseableGeoLocationIsZero(t *testing.T) {
	res, err := Resolve(load(t, `
#1= IFCPROJECT('p',$,'P',$,$,$,$,$,$);
#2= IFCSITE('s',$,'Site',$,$,$,$,$,.ELEMENT.,('north'),(1,2,3),$,$,$);
#3= IFCBUILDING('b',$,'B',$,$,$,$,$,.ELEMENT.,$,$,$);
#4= IFCRELAGGREGATES('r1',$,$,$,#1,(#2));
#5= IFCRELAGGREGATES('r2',$,$,$,#2,(#3));
`), DefaultOptions())
	require.NoError(t, err)

	require.NotNil(t, res.Building.Location)
	assert.True(t, res.Building.Location.IsZero())
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagGeoLocation, res.Diagnostics[0].Code)
}

func TestResolvePartialPostalAddressFallsBackPerComponent(t *testing.T) {
	res, err := Resolve(load(t, `
#1= IFCPROJECT('p',$,'P',$,$,$,$,$,$);
#2= IFCBUILDING('b',$,'Annex',$,$,$,$,$,.ELEMENT.,$,$,#3);
#3= IFCPOSTALADDRESS($,$,$,$,$,$,'Austin',$,$,'USA');
#4= IFCRELAGGREGATES('r1',$,$,$,#1,(#2));
`), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, domain.Address("usa/unknown/austin/annex"), res.Building.Address)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagPostalAddress, res.Diagnostics[0].Code)
	assert.Equal(t, "postal address lacks Region", res.Diagnostics[0].Message)
}

func TestResolveLogsDegradedPaths(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, err := Resolve(office(t), opts)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"code":"D007"`)
	assert.Contains(t, out, `"component":"resolve"`)
	assert.Contains(t, out, `"message":"resolved building"`)
}

func TestResolveFixtureAddressSkipsTakenSuffix(t *testing.T) {
	res, err := Resolve(load(t, `
#1= IFCPROJECT('0ilnOv_vPJpwo3qjoOaddA',$,'P',$,$,$,$,$,$);
#2= IFCBUILDING('1ZFRd7f8DJrxgz961dsL5E',$,'HQ',$,$,$,$,$,.ELEMENT.,$,$,$);
#3= IFCBUILDINGSTOREY('20cSB7Q79Mgvc8RpViTM_L',$,'L1',$,$,$,$,$,.ELEMENT.,0.);
#40= IFCLIGHTFIXTURE('3THx_zzGzK6PD3mo2yFyJP',$,'Lamp',$,$,$,$,$,$);
#41= IFCLIGHTFIXTURE('3PCzVLE5jQGesKP4ay5z4H',$,'Lamp 42',$,$,$,$,$,$);
#42= IFCLIGHTFIXTURE('2YrjLKrvTKLhHge8GBeHEg',$,'Lamp',$,$,$,$,$,$);
#100= IFCRELAGGREGATES('a',$,$,$,#1,(#2));
#101= IFCRELAGGREGATES('b',$,$,$,#2,(#3));
#102= IFCRELCONTAINEDINSPATIALSTRUCTURE('c',$,$,$,(#40,#41,#42),#3);
`), DefaultOptions())
	require.NoError(t, err)

	seen := make(map[domain.Address]uint64)
	for _, e := range res.Building.Equipment {
		prev, dup := seen[e.Address]
		require.False(t, dup, "#%d and #%d share %s", prev, e.EntityID, e.Address)
		seen[e.Address] = e.EntityID
	}
	assert.Equal(t, map[domain.Address]uint64{
		"usa/unknown/unknown/hq/l1/lamp":      40,
		"usa/unknown/unknown/hq/l1/lamp-42":   41,
		"usa/unknown/unknown/hq/l1/lamp-42-2": 42,
	}, seen)
}

func TestResolveNestedSpacesRecursively(t *testing.T) {
	res, err := Resolve(load(t, `
#1= IFCPROJECT('0ilnOv_vPJpwo3qjoOaddA',$,'P',$,$,$,$,$,$);
#2= IFCBUILDING('1ZFRd7f8DJrxgz961dsL5E',$,'HQ',$,$,$,$,$,.ELEMENT.,$,$,$);
#3= IFCBUILDINGSTOREY('20cSB7Q79Mgvc8RpViTM_L',$,'L1',$,$,$,$,$,.ELEMENT.,0.);
#4= IFCSPACE('3wzMOSK8zSFPxrsvtOEV9E',$,'Wing',$,$,$,$,$,.ELEMENT.,.INTERNAL.,$);
#5= IFCSPACE('2CGmEJJ0bGi9$h1dvTf0Ik',$,'Suite',$,$,$,$,$,.ELEMENT.,.INTERNAL.,$);
#6= IFCSPACE('1OtOBOj3jQ1gct8$Lvn7wT',$,'Closet',$,$,$,$,$,.ELEMENT.,.INTERNAL.,$);
#40= IFCLIGHTFIXTURE('3THx_zzGzK6PD3mo2yFyJP',$,'Lamp',$,$,$,$,$,$);
#100= IFCRELAGGREGATES('a',$,$,$,#1,(#2));
#101= IFCRELAGGREGATES('b',$,$,$,#2,(#3));
#102= IFCRELAGGREGATES('c',$,$,$,#3,(#4));
#103= IFCRELAGGREGATES('d',$,$,$,#4,(#5));
#104= IFCRELAGGREGATES('e',$,$,$,#5,(#6));
#105= IFCRELCONTAINEDINSPATIALSTRUCTURE('f',$,$,$,(#40),#6);
`), DefaultOptions())
	require.NoError(t, err)

	b := res.Building
	require.Len(t, b.Floors, 1)
	require.Len(t, b.Floors[0].Wings, 1)
	wing := b.Floors[0].Wings[0]
	assert.Equal(t, domain.Address("usa/unknown/unknown/hq/l1/wing"), wing.Address)
	require.Len(t, wing.Rooms, 2)
	assert.Equal(t, "Suite", wing.Rooms[0].Name)
	assert.Equal(t, domain.Address("usa/unknown/unknown/hq/l1/wing/suite"), wing.Rooms[0].Address)
	assert.Equal(t, "Closet", wing.Rooms[1].Name)
	assert.Equal(t, domain.Address("usa/unknown/unknown/hq/l1/wing/suite/closet"), wing.Rooms[1].Address)

	require.Len(t, b.Equipment, 1)
	assert.Equal(t, domain.Address("usa/unknown/unknown/hq/l1/wing/suite/closet"), b.Equipment[0].Scope)
	for _, d := range res.Diagnostics {
		assert.NotEqual(t, DiagContainer, d.Code)
	}
}
