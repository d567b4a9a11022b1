package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arx-os/arxos-sub004/internal/domain"
	"github.com/arx-os/arxos-sub004/internal/geometry"
	"github.com/arx-os/arxos-sub004/internal/mesh"
	"github.com/arx-os/arxos-sub004/internal/registry"
	"github.com/arx-os/arxos-sub004/internal/step"
)

// IFC attribute positions shared by every rooted product.
const (
	attrGlobalID       = 0
	attrName           = 2
	attrPlacement      = 5
	attrRepresentation = 6
	attrLongName       = 7 // spatial structure elements
	attrTag            = 7 // elements
)

const (
	attrStoreyElevation = 9
	attrBuildingAddress = 11
	attrSiteLatitude    = 9
	attrSiteLongitude   = 10
	attrSiteElevation   = 11
)

// Result is the outcome of a successful run.
type Result struct {
	Building    *domain.Building `json:"building" yaml:"building"`
	Diagnostics []Diagnostic     `json:"diagnostics" yaml:"diagnostics"`
}

// Resolver reconstructs the building aggregate from a fully populated
// registry. A Resolver is single-use per run and not safe for concurrent
// use: it writes the registry's address table.
type Resolver struct {
	reg    *registry.Registry
	geo    *geometry.Resolver
	meshes *mesh.Resolver
	opts   Options
	kinds  map[string]domain.EquipmentKind
	log    zerolog.Logger

	diags []Diagnostic
	used  map[domain.Address]bool
}

// New creates a resolver over reg.
func New(reg *registry.Registry, opts Options) *Resolver {
	if opts.Prefix == "" {
		opts.Prefix = DefaultOptions().Prefix
	}
	kinds := make(map[string]domain.EquipmentKind, len(opts.EquipmentKinds))
	for class, kind := range opts.EquipmentKinds {
		kinds[strings.ToUpper(class)] = kind
	}

	geo := geometry.NewResolver(reg)
	return &Resolver{
		reg:    reg,
		geo:    geo,
		meshes: mesh.NewResolver(reg, geo),
		opts:   opts,
		kinds:  kinds,
		log:    opts.Logger.With().Str("component", "resolve").Logger(),
	}
}

// Resolve runs a resolver over reg.
func Resolve(reg *registry.Registry, opts Options) (*Result, error) {
	return New(reg, opts).Resolve()
}

// Resolve builds the aggregate. The only error is a *ResolveError with
// code ErrNoProject; every other gap degrades to a default and is listed
// in Result.Diagnostics.
func (r *Resolver) Resolve() (*Result, error) {
	r.diags = nil
	r.used = make(map[domain.Address]bool)

	projects := r.reg.GetByClass("IFCPROJECT")
	if len(projects) == 0 {
		return nil, &ResolveError{
			Code:    ErrNoProject,
			Message: fmt.Sprintf("no IFCPROJECT among %d entities", r.reg.Len()),
		}
	}
	projectID := projects[0]
	if len(projects) > 1 {
		r.degrade(projectID, DiagManyProjects, "%d projects in file, resolving #%d", len(projects), projectID)
	}

	b := r.building(projectID)

	r.log.Debug().
		Str("address", b.Address.String()).
		Int("floors", len(b.Floors)).
		Int("rooms", len(b.Rooms())).
		Int("equipment", len(b.Equipment)).
		Int("diagnostics", len(r.diags)).
		Msg("resolved building")

	return &Result{Building: b, Diagnostics: r.diags}, nil
}

func (r *Resolver) building(projectID uint64) *domain.Building {
	id := r.findBuilding(projectID)
	e, _ := r.reg.GetRaw(id)

	name := r.name(e, "building")
	b := &domain.Building{
		EntityID: id,
		GlobalID: globalID(e),
		Name:     name,
		Address:  r.prefix(e).Extend(name),
	}
	r.assign(id, b.Address)

	b.Transform = r.placement(e)
	b.Position = b.Transform.Origin()
	b.Properties = r.properties(id)

	if siteID, ok := r.reachable(projectID, "IFCSITE"); ok {
		b.Location = r.geoLocation(siteID)
	}

	for _, storeyID := range r.reg.FindChildrenOf(id, "IFCBUILDINGSTOREY") {
		if _, done := r.reg.GetAddress(storeyID); done {
			continue
		}
		b.Floors = append(b.Floors, r.floor(storeyID, b.Address))
	}

	b.Equipment = append(r.equipment(b), r.anchors(b)...)
	return b
}

// findBuilding returns the first building reachable from the project. A
// building outside the project tree is used next; without any building
// the project itself stands in.
func (r *Resolver) findBuilding(projectID uint64) uint64 {
	if id, ok := r.reachable(projectID, "IFCBUILDING"); ok {
		return id
	}
	if ids := r.reg.GetByClass("IFCBUILDING"); len(ids) > 0 {
		r.degrade(ids[0], DiagUnreachable, "building not aggregated under project #%d", projectID)
		return ids[0]
	}
	r.degrade(projectID, DiagNoBuilding, "no IFCBUILDING, using the project as building")
	return projectID
}

// reachable walks aggregation and containment breadth-first from rootID
// and returns the first instance of class.
func (r *Resolver) reachable(rootID uint64, class string) (uint64, bool) {
	seen := map[uint64]bool{rootID: true}
	queue := []uint64{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range r.reg.GetContained(id) {
			if seen[child] {
				continue
			}
			seen[child] = true
			if e, ok := r.reg.GetRaw(child); ok && e.Class == class {
				return child, true
			}
			queue = append(queue, child)
		}
	}
	return 0, false
}

// prefix returns the country/state/city part of the building address.
func (r *Resolver) prefix(b *step.Entity) domain.Address {
	if !r.opts.UsePostalAddress || r.reg.Kind(b.ID) != registry.KindBuilding {
		return r.opts.Prefix
	}
	addrID, ok := b.Ref(attrBuildingAddress)
	if !ok || r.reg.Kind(addrID) != registry.KindPostalAddress {
		return r.opts.Prefix
	}
	postal, _ := r.reg.GetRaw(addrID)

	fallback := r.opts.Prefix.Segments()
	fields := []struct {
		name string
		idx  int
	}{{"Country", 9}, {"Region", 7}, {"Town", 6}}

	parts := make([]string, len(fields))
	var missing []string
	for i, f := range fields {
		if s, ok := postal.String(f.idx); ok && strings.TrimSpace(s) != "" {
			parts[i] = s
			continue
		}
		missing = append(missing, f.name)
		if i < len(fallback) {
			parts[i] = fallback[i]
		} else {
			parts[i] = domain.Unnamed
		}
	}
	if len(missing) > 0 {
		r.degrade(addrID, DiagPostalAddress, "postal address lacks %s", strings.Join(missing, ", "))
	}
	return domain.NewAddress(parts...)
}

func (r *Resolver) floor(id uint64, parent domain.Address) *domain.Floor {
	e, _ := r.reg.GetRaw(id)
	name := r.name(e, fmt.Sprintf("floor %d", id))
	f := &domain.Floor{
		EntityID: id,
		GlobalID: globalID(e),
		Name:     name,
		Address:  parent.Extend(name),
	}
	r.assign(id, f.Address)

	f.Transform = r.placement(e)
	f.Position = f.Transform.Origin()
	if elevation, ok := e.Float(attrStoreyElevation); ok {
		f.Elevation = elevation
	} else {
		f.Elevation = f.Position.Z
	}
	f.Properties = r.properties(id)

	for _, spaceID := range r.reg.FindChildrenOf(id, "IFCSPACE") {
		if _, done := r.reg.GetAddress(spaceID); done {
			continue
		}

		children := r.reg.FindChildrenOf(spaceID, "IFCSPACE")
		if len(children) == 0 {
			w := f.Wing(domain.MainWing, 0, f.Address)
			w.Rooms = append(w.Rooms, r.rooms(spaceID, f.Address)...)
			continue
		}

		se, _ := r.reg.GetRaw(spaceID)
		wingName := r.name(se, fmt.Sprintf("wing %d", spaceID))
		wingAddr := f.Address.Extend(wingName)
		r.assign(spaceID, wingAddr)

		w := f.Wing(wingName, spaceID, wingAddr)
		for _, childID := range children {
			if _, done := r.reg.GetAddress(childID); done {
				continue
			}
			w.Rooms = append(w.Rooms, r.rooms(childID, w.Address)...)
		}
	}
	return f
}

// rooms resolves id and every space aggregated below it, depth first. Nested
// spaces join the enclosing wing, addressed under their parent room.
func (r *Resolver) rooms(id uint64, parent domain.Address) []*domain.Room {
	room := r.room(id, parent)
	out := []*domain.Room{room}
	for _, childID := range r.reg.FindChildrenOf(id, "IFCSPACE") {
		if _, done := r.reg.GetAddress(childID); done {
			continue
		}
		out = append(out, r.rooms(childID, room.Address)...)
	}
	return out
}

func (r *Resolver) room(id uint64, parent domain.Address) *domain.Room {
	e, _ := r.reg.GetRaw(id)
	name := r.name(e, fmt.Sprintf("space %d", id))
	room := &domain.Room{
		EntityID: id,
		GlobalID: globalID(e),
		Name:     name,
		Address:  parent.Extend(name),
	}
	r.assign(id, room.Address)

	room.LongName, _ = e.String(attrLongName)
	room.Transform = r.placement(e)
	room.Position = room.Transform.Origin()
	room.Mesh = r.shape(e, room.Transform)
	room.Properties = r.properties(id)
	return room
}

// equipment resolves every instance of the allow-listed classes, plus any
// class named only in the kind overrides.
func (r *Resolver) equipment(b *domain.Building) []*domain.Equipment {
	classes := domain.EquipmentClasses()
	known := make(map[string]bool, len(classes))
	for _, c := range classes {
		known[c] = true
	}
	var extra []string
	for c := range r.kinds {
		if !known[c] {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	classes = append(classes, extra...)

	var out []*domain.Equipment
	for _, class := range classes {
		typ := domain.ClassifyEquipment(class)
		if kind, ok := r.kinds[class]; ok {
			typ.Kind = kind
		}
		for _, id := range r.reg.GetByClass(class) {
			out = append(out, r.fixture(id, typ, b))
		}
	}
	return out
}

// anchors resolves annotations whose name carries an anchor keyword.
func (r *Resolver) anchors(b *domain.Building) []*domain.Equipment {
	var out []*domain.Equipment
	for _, id := range r.reg.GetByClass("IFCANNOTATION") {
		e, _ := r.reg.GetRaw(id)
		name, _ := e.String(attrName)
		if !r.isAnchor(name) {
			continue
		}
		typ := domain.EquipmentType{Kind: domain.KindAnchor, Class: e.Class}
		out = append(out, r.fixture(id, typ, b))
	}
	return out
}

func (r *Resolver) isAnchor(name string) bool {
	upper := strings.ToUpper(name)
	for _, kw := range r.opts.AnchorKeywords {
		if kw != "" && strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

func (r *Resolver) fixture(id uint64, typ domain.EquipmentType, b *domain.Building) *domain.Equipment {
	e, _ := r.reg.GetRaw(id)
	eq := &domain.Equipment{
		EntityID: id,
		GlobalID: globalID(e),
		Type:     typ,
	}
	if typ.Kind != domain.KindAnchor {
		eq.Tag, _ = e.String(attrTag)
	}

	fallback := eq.Tag
	if strings.TrimSpace(fallback) == "" {
		fallback = fmt.Sprintf("%s %d", strings.TrimPrefix(strings.ToLower(e.Class), "ifc"), id)
	}
	eq.Name = r.name(e, fallback)

	eq.Scope = r.scope(id, b)
	eq.Address = r.fixtureAddress(id, eq.Scope, eq.Name)
	eq.UUID = r.identity(e, eq.Address)

	eq.Transform = r.placement(e)
	eq.Position = eq.Transform.Origin()
	eq.Mesh = r.shape(e, eq.Transform)
	eq.Properties = r.properties(id)
	return eq
}

// scope returns the address of the spatial structure containing id, or the
// building address when the container has none.
func (r *Resolver) scope(id uint64, b *domain.Building) domain.Address {
	container, ok := r.reg.ContainerOf(id)
	if !ok {
		r.degrade(id, DiagContainer, "not contained in any spatial structure, using building")
		return b.Address
	}
	if addr, ok := r.reg.GetAddress(container); ok {
		return domain.Address(addr)
	}
	r.degrade(id, DiagContainer, "container #%d has no address, using building", container)
	return b.Address
}

// fixtureAddress extends scope by name. An address already taken gets the
// entity id appended, then a counter until the result is free.
func (r *Resolver) fixtureAddress(id uint64, scope domain.Address, name string) domain.Address {
	addr := scope.Extend(name)
	if r.used[addr] {
		taken := addr
		addr = scope.Extend(fmt.Sprintf("%s %d", name, id))
		for n := 2; r.used[addr]; n++ {
			addr = scope.Extend(fmt.Sprintf("%s %d %d", name, id, n))
		}
		r.degrade(id, DiagAddressInUse, "address %s in use, using %s", taken, addr)
	}
	r.assign(id, addr)
	return addr
}

// identity decodes the GlobalId, or derives a stable UUID from the address.
func (r *Resolver) identity(e *step.Entity, addr domain.Address) uuid.UUID {
	if u, ok := domain.GlobalIDToUUID(globalID(e)); ok {
		return u
	}
	r.degrade(e.ID, DiagGlobalID, "GlobalId %q malformed, deriving UUID from address", globalID(e))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("arxos:"+addr.String()))
}

func (r *Resolver) geoLocation(siteID uint64) *domain.GeoLocation {
	e, _ := r.reg.GetRaw(siteID)
	latParts, okLat := e.List(attrSiteLatitude)
	lonParts, okLon := e.List(attrSiteLongitude)
	if !okLat && !okLon {
		return nil
	}

	loc := &domain.GeoLocation{}
	lat, okLat := compoundAngle(latParts)
	lon, okLon := compoundAngle(lonParts)
	if !okLat || !okLon {
		r.degrade(siteID, DiagGeoLocation, "latitude/longitude not a compound plane angle, using zero")
		return loc
	}
	loc.Latitude, loc.Longitude = lat, lon
	loc.Elevation, _ = e.Float(attrSiteElevation)
	return loc
}

func compoundAngle(list step.List) (float64, bool) {
	parts := make([]int64, 0, len(list))
	for _, p := range list {
		n, ok := step.AsInt(p)
		if !ok {
			return 0, false
		}
		parts = append(parts, n)
	}
	return domain.DecimalDegrees(parts)
}

// placement resolves the ObjectPlacement of a product.
func (r *Resolver) placement(e *step.Entity) geometry.Transform3D {
	id, ok := e.Ref(attrPlacement)
	if !ok {
		return geometry.Identity()
	}
	t, ok := r.geo.ResolvePlacement(id)
	if !ok {
		r.degrade(e.ID, DiagPlacement, "placement #%d not fully resolved", id)
	}
	return t
}

// shape extracts the mesh of a product's Representation.
func (r *Resolver) shape(e *step.Entity, t geometry.Transform3D) *mesh.Mesh {
	if !r.opts.Meshes {
		return nil
	}
	id, ok := e.Ref(attrRepresentation)
	if !ok {
		return nil
	}
	m, ok := r.meshes.ExtractMeshFromShape(id, t)
	if !ok {
		r.degrade(e.ID, DiagMesh, "representation #%d yielded no mesh", id)
		return nil
	}
	return m
}

func (r *Resolver) name(e *step.Entity, fallback string) string {
	if s, ok := e.String(attrName); ok && strings.TrimSpace(s) != "" {
		return s
	}
	r.degrade(e.ID, DiagUnnamed, "no Name, using %q", fallback)
	return fallback
}

// assign records addr in the registry's write-once table and marks it taken.
func (r *Resolver) assign(id uint64, addr domain.Address) {
	r.reg.SetAddress(id, addr.String())
	r.used[addr] = true
}

func (r *Resolver) degrade(id uint64, code, format string, args ...any) {
	d := Diagnostic{EntityID: id, Code: code, Message: fmt.Sprintf(format, args...)}
	r.diags = append(r.diags, d)
	r.log.Debug().Uint64("entity", id).Str("code", code).Msg(d.Message)
}

func globalID(e *step.Entity) string {
	s, _ := e.String(attrGlobalID)
	return s
}
