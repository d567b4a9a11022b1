package domain

import "strings"

// EquipmentKind is the trade category of a piece of equipment.
type EquipmentKind string

const (
	KindHVAC       EquipmentKind = "hvac"
	KindElectrical EquipmentKind = "electrical"
	KindLighting   EquipmentKind = "lighting"
	KindPlumbing   EquipmentKind = "plumbing"
	KindFireSafety EquipmentKind = "fire_safety"
	KindSensor     EquipmentKind = "sensor"
	KindFurniture  EquipmentKind = "furniture"
	KindOpening    EquipmentKind = "opening"
	KindAnchor     EquipmentKind = "ar_anchor"
	KindOther      EquipmentKind = "other"
)

var kinds = []EquipmentKind{
	KindHVAC, KindElectrical, KindLighting, KindPlumbing, KindFireSafety,
	KindSensor, KindFurniture, KindOpening, KindAnchor, KindOther,
}

// ParseEquipmentKind accepts a kind name in any letter case.
func ParseEquipmentKind(s string) (EquipmentKind, bool) {
	k := EquipmentKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// EquipmentType pairs a kind with the IFC class it was read from.
type EquipmentType struct {
	Kind  EquipmentKind `json:"kind" yaml:"kind"`
	Class string        `json:"class" yaml:"class"`
}

// Other is the type of a class the equipment table does not map.
func Other(class string) EquipmentType {
	return EquipmentType{Kind: KindOther, Class: class}
}

func (t EquipmentType) String() string {
	if t.Kind == KindOther {
		return "other(" + t.Class + ")"
	}
	return string(t.Kind)
}

// equipmentClasses is the allow-list of IFC classes resolved into
// equipment, in resolution order.
var equipmentClasses = []struct {
	class string
	kind  EquipmentKind
}{
	{"IFCAIRTERMINAL", KindHVAC},
	{"IFCDUCTSEGMENT", KindHVAC},
	{"IFCFAN", KindHVAC},
	{"IFCBOILER", KindHVAC},
	{"IFCCHILLER", KindHVAC},
	{"IFCUNITARYEQUIPMENT", KindHVAC},
	{"IFCFLOWMOVINGDEVICE", KindHVAC},
	{"IFCFLOWTERMINAL", KindHVAC},
	{"IFCFLOWSEGMENT", KindHVAC},
	{"IFCFLOWFITTING", KindHVAC},
	{"IFCFLOWCONTROLLER", KindHVAC},
	{"IFCELECTRICAPPLIANCE", KindElectrical},
	{"IFCELECTRICDISTRIBUTIONBOARD", KindElectrical},
	{"IFCOUTLET", KindElectrical},
	{"IFCSWITCHINGDEVICE", KindElectrical},
	{"IFCLIGHTFIXTURE", KindLighting},
	{"IFCPIPESEGMENT", KindPlumbing},
	{"IFCPUMP", KindPlumbing},
	{"IFCVALVE", KindPlumbing},
	{"IFCSANITARYTERMINAL", KindPlumbing},
	{"IFCFIRESUPPRESSIONTERMINAL", KindFireSafety},
	{"IFCALARM", KindFireSafety},
	{"IFCSENSOR", KindSensor},
	{"IFCDISTRIBUTIONCONTROLELEMENT", KindSensor},
	{"IFCFURNISHINGELEMENT", KindFurniture},
	{"IFCDOOR", KindOpening},
	{"IFCWINDOW", KindOpening},
	{"IFCBUILDINGELEMENTPROXY", KindOther},
}

// EquipmentClasses returns the allow-list of IFC classes resolved into
// equipment.
func EquipmentClasses() []string {
	out := make([]string, len(equipmentClasses))
	for i, c := range equipmentClasses {
		out[i] = c.class
	}
	return out
}

// ClassifyEquipment maps an IFC class to its equipment type. Classes
// missing from the table yield Other(class); nothing is dropped.
func ClassifyEquipment(class string) EquipmentType {
	class = strings.ToUpper(class)
	for _, c := range equipmentClasses {
		if c.class == class {
			return EquipmentType{Kind: c.kind, Class: class}
		}
	}
	return Other(class)
}
