package registry

import (
	"github.com/arx-os/arxos-sub004/internal/step"
)

// Attribute positions of the relationship classes the registry indexes.
const (
	aggregatesRelating = 4
	aggregatesRelated  = 5

	containedRelated  = 4
	containedRelating = 5

	definesRelated  = 4
	definesRelating = 5
)

// Registry owns every lexed entity of one file.
type Registry struct {
	entities map[uint64]*step.Entity
	kinds    map[uint64]Kind
	order    []uint64
	byClass  map[string][]uint64

	// relating id -> relationship ids, kept per relationship class so query
	// results follow the class-by-class scan order.
	aggregates map[uint64][]uint64
	contained  map[uint64][]uint64

	// element id -> spatial structure id (first containment wins)
	container map[uint64]uint64
	// object id -> defines-by-properties relationship ids
	defines map[uint64][]uint64

	addresses map[uint64]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entities:   make(map[uint64]*step.Entity),
		kinds:      make(map[uint64]Kind),
		byClass:    make(map[string][]uint64),
		aggregates: make(map[uint64][]uint64),
		contained:  make(map[uint64][]uint64),
		container:  make(map[uint64]uint64),
		defines:    make(map[uint64][]uint64),
		addresses:  make(map[uint64]string),
	}
}

// Populate drains the lexer into a new registry. Resolution must only start
// after the whole file is registered because STEP references may point
// forward.
func Populate(l *step.Lexer) *Registry {
	r := New()
	for {
		e, ok := l.NextEntity()
		if !ok {
			return r
		}
		r.Register(e)
	}
}

// FromEntities builds a registry from already lexed records.
func FromEntities(entities []*step.Entity) *Registry {
	r := New()
	for _, e := range entities {
		r.Register(e)
	}
	return r
}

// Register inserts e into every index. A record whose id is already
// registered is ignored and Register reports false.
func (r *Registry) Register(e *step.Entity) bool {
	if e == nil {
		return false
	}
	if _, exists := r.entities[e.ID]; exists {
		return false
	}

	kind := Classify(e.Class)
	r.entities[e.ID] = e
	r.kinds[e.ID] = kind
	r.order = append(r.order, e.ID)
	r.byClass[e.Class] = append(r.byClass[e.Class], e.ID)

	switch kind {
	case KindRelAggregates:
		if relating, ok := e.Ref(aggregatesRelating); ok {
			r.aggregates[relating] = append(r.aggregates[relating], e.ID)
		}
	case KindRelContainedInSpatialStructure:
		if relating, ok := e.Ref(containedRelating); ok {
			r.contained[relating] = append(r.contained[relating], e.ID)
			for _, element := range e.Refs(containedRelated) {
				if _, seen := r.container[element]; !seen {
					r.container[element] = relating
				}
			}
		}
	case KindRelDefinesByProperties:
		for _, object := range e.Refs(definesRelated) {
			r.defines[object] = append(r.defines[object], e.ID)
		}
	}

	return true
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	return len(r.entities)
}

// IDs returns every registered id in registration order.
func (r *Registry) IDs() []uint64 {
	return append([]uint64(nil), r.order...)
}

// GetRaw returns the record registered under id.
func (r *Registry) GetRaw(id uint64) (*step.Entity, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// Kind returns the class tag of id, or KindOther when unregistered.
func (r *Registry) Kind(id uint64) Kind {
	return r.kinds[id]
}

// GetByClass returns the ids of every instance of class in registration order.
func (r *Registry) GetByClass(class string) []uint64 {
	return append([]uint64(nil), r.byClass[class]...)
}

// Classes returns the number of instances per class name.
func (r *Registry) Classes() map[string]int {
	counts := make(map[string]int, len(r.byClass))
	for class, ids := range r.byClass {
		counts[class] = len(ids)
	}
	return counts
}

// GetContained returns every id related to containerID through aggregation
// (part-whole) or spatial containment. Aggregated parts come first, then
// contained elements; within each group relationships keep file order and
// related ids keep list order.
func (r *Registry) GetContained(containerID uint64) []uint64 {
	var out []uint64
	for _, relID := range r.aggregates[containerID] {
		out = append(out, r.entities[relID].Refs(aggregatesRelated)...)
	}
	for _, relID := range r.contained[containerID] {
		out = append(out, r.entities[relID].Refs(containedRelated)...)
	}
	return out
}

// FindChildrenOf filters GetContained to registered instances of class.
func (r *Registry) FindChildrenOf(parentID uint64, class string) []uint64 {
	var out []uint64
	for _, id := range r.GetContained(parentID) {
		if e, ok := r.entities[id]; ok && e.Class == class {
			out = append(out, id)
		}
	}
	return out
}

// ContainerOf returns the spatial structure that contains elementID.
func (r *Registry) ContainerOf(elementID uint64) (uint64, bool) {
	id, ok := r.container[elementID]
	return id, ok
}

// DefinitionsOf returns the property definitions (property sets, element
// quantities) attached to objectID, in relationship order.
func (r *Registry) DefinitionsOf(objectID uint64) []uint64 {
	var out []uint64
	for _, relID := range r.defines[objectID] {
		if def, ok := r.entities[relID].Ref(definesRelating); ok {
			out = append(out, def)
		}
	}
	return out
}

// SetAddress records the hierarchical address of id. The first write wins;
// SetAddress reports false when id already has an address.
func (r *Registry) SetAddress(id uint64, address string) bool {
	if _, exists := r.addresses[id]; exists {
		return false
	}
	r.addresses[id] = address
	return true
}

// GetAddress returns the address recorded for id.
func (r *Registry) GetAddress(id uint64) (string, bool) {
	a, ok := r.addresses[id]
	return a, ok
}
