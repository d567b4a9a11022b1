package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Unnamed replaces a name that sanitizes to nothing.
const Unnamed = "unnamed"

// Address is a slash-separated path such as
// usa/ny/brooklyn/hq/level-1/101/lamp. Segments are sanitized names.
type Address string

// NewAddress joins sanitized segments.
func NewAddress(segments ...string) Address {
	var a Address
	for _, s := range segments {
		a = a.Extend(s)
	}
	return a
}

// Extend returns a child address with name sanitized as its last segment.
// The receiver is never modified.
func (a Address) Extend(name string) Address {
	seg := Sanitize(name)
	if a == "" {
		return Address(seg)
	}
	return a + "/" + Address(seg)
}

// Segments splits the address into its sanitized parts.
func (a Address) Segments() []string {
	if a == "" {
		return nil
	}
	return strings.Split(string(a), "/")
}

// Depth is the number of segments.
func (a Address) Depth() int { return len(a.Segments()) }

// HasPrefix reports whether a lies at or below prefix.
func (a Address) HasPrefix(prefix Address) bool {
	if prefix == "" || a == prefix {
		return true
	}
	return strings.HasPrefix(string(a), string(prefix)+"/")
}

func (a Address) String() string { return string(a) }

// Sanitize turns a free-form IFC name into an address segment: diacritics
// are removed, letters lowercased, and every run of characters other than
// letters and digits becomes a single '-'. Leading and trailing dashes are
// trimmed. A name with nothing left becomes Unnamed.
func Sanitize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}

	if b.Len() == 0 {
		return Unnamed
	}
	return b.String()
}
