package step

import "strings"

// DataSection returns the text between `DATA;` and the next `ENDSEC;`.
// Input without a DATA header is returned unchanged so callers may pass
// either a full .ifc file or a bare list of records.
func DataSection(text string) string {
	start := strings.Index(text, "DATA;")
	if start < 0 {
		return text
	}
	rest := text[start+len("DATA;"):]
	if end := strings.Index(rest, "ENDSEC;"); end >= 0 {
		return rest[:end]
	}
	return rest
}
