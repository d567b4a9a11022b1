package resolve

import "fmt"

// Hard failure codes (R001-R009)
const (
	ErrNoProject = "R001" // no IFCPROJECT in the file
)

// Diagnostic codes for degraded paths (D001-D099)
const (
	DiagPlacement     = "D001" // placement unresolved, identity used
	DiagMesh          = "D002" // representation yielded no mesh
	DiagPropertySet   = "D003" // property definition missing or unsupported
	DiagContainer     = "D004" // equipment container has no address
	DiagGeoLocation   = "D005" // site geolocation unparseable
	DiagNoBuilding    = "D006" // no building reachable from the project
	DiagAddressInUse  = "D007" // fixture address collided, entity id appended
	DiagGlobalID      = "D008" // GlobalId malformed, derived UUID used
	DiagManyProjects  = "D009" // more than one project, first used
	DiagUnreachable   = "D010" // building found outside the project tree
	DiagUnnamed       = "D011" // empty name, fallback used
	DiagPostalAddress = "D012" // postal address incomplete, configured prefix used
)

// ResolveError is the single hard failure of a resolution run.
type ResolveError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Diagnostic records one degraded path. The run continued with the
// documented default.
type Diagnostic struct {
	EntityID uint64 `json:"entity_id" yaml:"entity_id"`
	Code     string `json:"code" yaml:"code"`
	Message  string `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] #%d: %s", d.Code, d.EntityID, d.Message)
}
