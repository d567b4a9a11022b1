// Package domain holds the building aggregate produced by an IFC import.
//
// A Building owns its Floors, each Floor its Wings and each Wing its Rooms.
// Equipment is kept in one flat list on the Building; every item records
// the address of the floor or room it was found in. Every level carries
// the hierarchical address assigned during resolution.
package domain

import (
	"github.com/google/uuid"

	"github.com/arx-os/arxos-sub004/internal/geometry"
	"github.com/arx-os/arxos-sub004/internal/mesh"
)

// MainWing names the implicit wing holding rooms that are not grouped
// under a wing space. It adds no address segment.
const MainWing = "main"

// Properties maps "<SetName>:<PropertyName>" to the property's text value.
type Properties map[string]string

// Building is the root of the aggregate.
type Building struct {
	EntityID   uint64               `json:"entity_id" yaml:"entity_id"`
	GlobalID   string               `json:"global_id,omitempty" yaml:"global_id,omitempty"`
	Name       string               `json:"name" yaml:"name"`
	Address    Address              `json:"address" yaml:"address"`
	Transform  geometry.Transform3D `json:"transform" yaml:"-"`
	Position   geometry.Vec3        `json:"position" yaml:"position"`
	Location   *GeoLocation         `json:"location,omitempty" yaml:"location,omitempty"`
	Properties Properties           `json:"properties,omitempty" yaml:"properties,omitempty"`
	Floors     []*Floor             `json:"floors" yaml:"floors"`
	Equipment  []*Equipment         `json:"equipment" yaml:"equipment"`
}

// Floor is one building storey.
type Floor struct {
	EntityID   uint64               `json:"entity_id" yaml:"entity_id"`
	GlobalID   string               `json:"global_id,omitempty" yaml:"global_id,omitempty"`
	Name       string               `json:"name" yaml:"name"`
	Address    Address              `json:"address" yaml:"address"`
	Elevation  float64              `json:"elevation" yaml:"elevation"`
	Transform  geometry.Transform3D `json:"transform" yaml:"-"`
	Position   geometry.Vec3        `json:"position" yaml:"position"`
	Properties Properties           `json:"properties,omitempty" yaml:"properties,omitempty"`
	Wings      []*Wing              `json:"wings" yaml:"wings"`
}

// Wing groups rooms of one floor. EntityID is zero for the implicit main
// wing.
type Wing struct {
	EntityID uint64  `json:"entity_id,omitempty" yaml:"entity_id,omitempty"`
	Name     string  `json:"name" yaml:"name"`
	Address  Address `json:"address" yaml:"address"`
	Rooms    []*Room `json:"rooms" yaml:"rooms"`
}

// Room is one IFC space.
type Room struct {
	EntityID   uint64               `json:"entity_id" yaml:"entity_id"`
	GlobalID   string               `json:"global_id,omitempty" yaml:"global_id,omitempty"`
	Name       string               `json:"name" yaml:"name"`
	LongName   string               `json:"long_name,omitempty" yaml:"long_name,omitempty"`
	Address    Address              `json:"address" yaml:"address"`
	Transform  geometry.Transform3D `json:"transform" yaml:"-"`
	Position   geometry.Vec3        `json:"position" yaml:"position"`
	Mesh       *mesh.Mesh           `json:"mesh,omitempty" yaml:"mesh,omitempty"`
	Properties Properties           `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Equipment is a fixture, device or AR anchor.
type Equipment struct {
	EntityID   uint64               `json:"entity_id" yaml:"entity_id"`
	GlobalID   string               `json:"global_id,omitempty" yaml:"global_id,omitempty"`
	UUID       uuid.UUID            `json:"uuid" yaml:"uuid"`
	Name       string               `json:"name" yaml:"name"`
	Tag        string               `json:"tag,omitempty" yaml:"tag,omitempty"`
	Type       EquipmentType        `json:"type" yaml:"type"`
	Address    Address              `json:"address" yaml:"address"`
	Scope      Address              `json:"scope" yaml:"scope"`
	Transform  geometry.Transform3D `json:"transform" yaml:"-"`
	Position   geometry.Vec3        `json:"position" yaml:"position"`
	Mesh       *mesh.Mesh           `json:"mesh,omitempty" yaml:"mesh,omitempty"`
	Properties Properties           `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Rooms returns every room of the building in floor, wing, room order.
func (b *Building) Rooms() []*Room {
	var out []*Room
	for _, f := range b.Floors {
		for _, w := range f.Wings {
			out = append(out, w.Rooms...)
		}
	}
	return out
}

// FindEquipment returns the equipment with the given address.
func (b *Building) FindEquipment(addr Address) (*Equipment, bool) {
	for _, e := range b.Equipment {
		if e.Address == addr {
			return e, true
		}
	}
	return nil, false
}

// Wing returns the wing named name, creating it when absent.
func (f *Floor) Wing(name string, entityID uint64, addr Address) *Wing {
	for _, w := range f.Wings {
		if w.Name == name && w.EntityID == entityID {
			return w
		}
	}
	w := &Wing{EntityID: entityID, Name: name, Address: addr}
	f.Wings = append(f.Wings, w)
	return w
}
