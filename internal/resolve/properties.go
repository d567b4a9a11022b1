package resolve

import (
	"github.com/arx-os/arxos-sub004/internal/domain"
	"github.com/arx-os/arxos-sub004/internal/registry"
	"github.com/arx-os/arxos-sub004/internal/step"
)

const (
	attrSetName        = 2
	attrPropertySetHas = 4 // IfcPropertySet.HasProperties
	attrQuantities     = 5 // IfcElementQuantity.Quantities

	attrPropertyName  = 0
	attrNominalValue  = 2
	attrQuantityName  = 0
	attrQuantityValue = 3
)

// properties flattens every property set and element quantity attached to
// id into "<SetName>:<Name>" entries. Values are rendered as text with any
// type label removed. Properties without a value are skipped.
func (r *Resolver) properties(id uint64) domain.Properties {
	props := domain.Properties{}
	for _, defID := range r.reg.DefinitionsOf(id) {
		def, ok := r.reg.GetRaw(defID)
		if !ok {
			r.degrade(id, DiagPropertySet, "property definition #%d missing", defID)
			continue
		}
		setName, _ := def.String(attrSetName)

		switch r.reg.Kind(defID) {
		case registry.KindPropertySet:
			for _, propID := range def.Refs(attrPropertySetHas) {
				r.singleValue(props, setName, propID)
			}
		case registry.KindElementQuantity:
			for _, qID := range def.Refs(attrQuantities) {
				r.quantity(props, setName, qID)
			}
		default:
			r.degrade(id, DiagPropertySet, "definition #%d is %s, not a property set", defID, def.Class)
		}
	}
	return props
}

func (r *Resolver) singleValue(props domain.Properties, setName string, propID uint64) {
	if r.reg.Kind(propID) != registry.KindPropertySingleValue {
		return
	}
	prop, _ := r.reg.GetRaw(propID)
	name, ok := prop.String(attrPropertyName)
	if !ok {
		return
	}
	if value, ok := step.Text(prop.Param(attrNominalValue)); ok {
		props[setName+":"+name] = value
	}
}

func (r *Resolver) quantity(props domain.Properties, setName string, qID uint64) {
	switch r.reg.Kind(qID) {
	case registry.KindQuantityLength, registry.KindQuantityArea, registry.KindQuantityVolume,
		registry.KindQuantityCount, registry.KindQuantityWeight:
	default:
		return
	}
	q, _ := r.reg.GetRaw(qID)
	name, ok := q.String(attrQuantityName)
	if !ok {
		return
	}
	if value, ok := step.Text(q.Param(attrQuantityValue)); ok {
		props[setName+":"+name] = value
	}
}
