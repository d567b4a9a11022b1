package step

// Entity is one `#id= CLASS(params);` record.
type Entity struct {
	ID     uint64
	Class  string // uppercase schema type name
	Params []Param
}

// Param returns the i-th parameter, or Null when out of range.
func (e *Entity) Param(i int) Param {
	if i < 0 || i >= len(e.Params) {
		return Null{}
	}
	return e.Params[i]
}

// Ref returns the i-th parameter as a reference.
func (e *Entity) Ref(i int) (uint64, bool) {
	return AsRef(e.Param(i))
}

// String returns the i-th parameter as a string.
func (e *Entity) String(i int) (string, bool) {
	return AsString(e.Param(i))
}

// Float returns the i-th parameter as a number.
func (e *Entity) Float(i int) (float64, bool) {
	return AsFloat(e.Param(i))
}

// List returns the i-th parameter as a list.
func (e *Entity) List(i int) (List, bool) {
	return AsList(e.Param(i))
}

// Refs returns the references held in the i-th list parameter.
func (e *Entity) Refs(i int) []uint64 {
	return AsRefs(e.Param(i))
}
