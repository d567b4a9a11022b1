package registry

// Kind is a closed tag for the entity classes the resolvers dispatch on.
// Classes outside this set map to KindOther.
type Kind uint8

const (
	KindOther Kind = iota

	// Spatial structure
	KindProject
	KindSite
	KindBuilding
	KindBuildingStorey
	KindSpace
	KindAnnotation
	KindPostalAddress

	// Relationships
	KindRelAggregates
	KindRelContainedInSpatialStructure
	KindRelDefinesByProperties

	// Properties and quantities
	KindPropertySet
	KindPropertySingleValue
	KindElementQuantity
	KindQuantityLength
	KindQuantityArea
	KindQuantityVolume
	KindQuantityCount
	KindQuantityWeight

	// Placement and geometry
	KindLocalPlacement
	KindAxis2Placement3D
	KindAxis2Placement2D
	KindCartesianPoint
	KindDirection
	KindCartesianPointList3D
	KindPolyline
	KindRectangleProfileDef
	KindArbitraryClosedProfileDef
	KindProductDefinitionShape
	KindShapeRepresentation
	KindExtrudedAreaSolid
	KindTriangulatedFaceSet
	KindMappedItem
	KindRepresentationMap
	KindCartesianTransformationOperator3D
)

var kindByClass = map[string]Kind{
	"IFCPROJECT":                           KindProject,
	"IFCSITE":                              KindSite,
	"IFCBUILDING":                          KindBuilding,
	"IFCBUILDINGSTOREY":                    KindBuildingStorey,
	"IFCSPACE":                             KindSpace,
	"IFCANNOTATION":                        KindAnnotation,
	"IFCPOSTALADDRESS":                     KindPostalAddress,
	"IFCRELAGGREGATES":                     KindRelAggregates,
	"IFCRELCONTAINEDINSPATIALSTRUCTURE":    KindRelContainedInSpatialStructure,
	"IFCRELDEFINESBYPROPERTIES":            KindRelDefinesByProperties,
	"IFCPROPERTYSET":                       KindPropertySet,
	"IFCPROPERTYSINGLEVALUE":               KindPropertySingleValue,
	"IFCELEMENTQUANTITY":                   KindElementQuantity,
	"IFCQUANTITYLENGTH":                    KindQuantityLength,
	"IFCQUANTITYAREA":                      KindQuantityArea,
	"IFCQUANTITYVOLUME":                    KindQuantityVolume,
	"IFCQUANTITYCOUNT":                     KindQuantityCount,
	"IFCQUANTITYWEIGHT":                    KindQuantityWeight,
	"IFCLOCALPLACEMENT":                    KindLocalPlacement,
	"IFCAXIS2PLACEMENT3D":                  KindAxis2Placement3D,
	"IFCAXIS2PLACEMENT2D":                  KindAxis2Placement2D,
	"IFCCARTESIANPOINT":                    KindCartesianPoint,
	"IFCDIRECTION":                         KindDirection,
	"IFCCARTESIANPOINTLIST3D":              KindCartesianPointList3D,
	"IFCPOLYLINE":                          KindPolyline,
	"IFCRECTANGLEPROFILEDEF":               KindRectangleProfileDef,
	"IFCARBITRARYCLOSEDPROFILEDEF":         KindArbitraryClosedProfileDef,
	"IFCPRODUCTDEFINITIONSHAPE":            KindProductDefinitionShape,
	"IFCSHAPEREPRESENTATION":               KindShapeRepresentation,
	"IFCEXTRUDEDAREASOLID":                 KindExtrudedAreaSolid,
	"IFCTRIANGULATEDFACESET":               KindTriangulatedFaceSet,
	"IFCMAPPEDITEM":                        KindMappedItem,
	"IFCREPRESENTATIONMAP":                 KindRepresentationMap,
	"IFCCARTESIANTRANSFORMATIONOPERATOR3D": KindCartesianTransformationOperator3D,
}

// Classify maps an uppercase class name to its Kind.
func Classify(class string) Kind {
	return kindByClass[class]
}

// IsRelationship reports whether k links a relating entity to related ones.
func (k Kind) IsRelationship() bool {
	return k == KindRelAggregates || k == KindRelContainedInSpatialStructure || k == KindRelDefinesByProperties
}
