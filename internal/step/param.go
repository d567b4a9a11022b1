package step

import (
	"strconv"
)

// Param is a sealed interface over the STEP parameter kinds.
type Param interface {
	param() // Sealed - only types in this package implement it
}

// Integer is an integer literal such as `42` or `-7`.
type Integer int64

func (Integer) param() {}

// Float is a real literal such as `1.`, `2.5` or `1.E-5`.
type Float float64

func (Float) param() {}

// String is a quoted literal with `''` escapes already decoded.
type String string

func (String) param() {}

// Ref is an instance reference `#n`. The target may not exist.
type Ref uint64

func (Ref) param() {}

// List is a parenthesized, possibly nested, parameter list.
type List []Param

func (List) param() {}

// Null is the unset marker `$` (and the derived marker `*`).
type Null struct{}

func (Null) param() {}

// Enum is an enumeration value `.NAME.` or a bare uppercase word.
type Enum string

func (Enum) param() {}

// Bool is `.T.` or `.F.`. The unknown logical `.U.` lexes as Null.
type Bool bool

func (Bool) param() {}

// Typed wraps a single value in a defined type, e.g. `IFCLABEL('x')`.
type Typed struct {
	Type  string
	Value Param
}

func (Typed) param() {}

// Unwrap strips any number of Typed wrappers.
func Unwrap(p Param) Param {
	for {
		t, ok := p.(Typed)
		if !ok {
			return p
		}
		p = t.Value
	}
}

// AsFloat returns the numeric value of an Integer or Float, looking through Typed.
func AsFloat(p Param) (float64, bool) {
	switch v := Unwrap(p).(type) {
	case Float:
		return float64(v), true
	case Integer:
		return float64(v), true
	default:
		return 0, false
	}
}

// AsInt returns the value of an Integer, looking through Typed.
func AsInt(p Param) (int64, bool) {
	v, ok := Unwrap(p).(Integer)
	return int64(v), ok
}

// AsString returns the value of a String, looking through Typed.
func AsString(p Param) (string, bool) {
	v, ok := Unwrap(p).(String)
	return string(v), ok
}

// AsRef returns the target id of a Ref.
func AsRef(p Param) (uint64, bool) {
	v, ok := p.(Ref)
	return uint64(v), ok
}

// AsList returns the elements of a List.
func AsList(p Param) (List, bool) {
	v, ok := p.(List)
	return v, ok
}

// AsRefs returns every Ref element of a List, skipping other kinds.
func AsRefs(p Param) []uint64 {
	list, ok := p.(List)
	if !ok {
		return nil
	}
	ids := make([]uint64, 0, len(list))
	for _, item := range list {
		if id, ok := AsRef(item); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Text renders a primitive value as a plain string, looking through Typed.
// Lists, references and Null report false.
func Text(p Param) (string, bool) {
	switch v := Unwrap(p).(type) {
	case String:
		return string(v), true
	case Integer:
		return strconv.FormatInt(int64(v), 10), true
	case Float:
		return strconv.FormatFloat(float64(v), 'f', -1, 64), true
	case Bool:
		return strconv.FormatBool(bool(v)), true
	case Enum:
		return string(v), true
	default:
		return "", false
	}
}
