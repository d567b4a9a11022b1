package step

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// Lexer produces entity records from STEP text one at a time.
// It holds no state besides the input and the current offset, so a caller
// may Seek to any record boundary and resume from there.
type Lexer struct {
	src     string
	pos     int
	stopped bool
}

// NewLexer creates a lexer over src, positioned at offset 0.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Seek moves the lexer to offset, clamped to the input bounds.
// Seeking clears a previous stop caused by malformed input.
func (l *Lexer) Seek(offset int) {
	switch {
	case offset < 0:
		offset = 0
	case offset > len(l.src):
		offset = len(l.src)
	}
	l.pos = offset
	l.stopped = false
}

// Offset returns the current byte offset. After a malformed record it
// points at the byte where lexing gave up.
func (l *Lexer) Offset() int {
	return l.pos
}

// Stopped reports whether the stream ended on malformed input rather than
// on exhaustion.
func (l *Lexer) Stopped() bool {
	return l.stopped
}

// Len returns the input length in bytes.
func (l *Lexer) Len() int {
	return len(l.src)
}

// NextEntity returns the next record, or false once no further `#` exists
// or the record at the current position is malformed.
func (l *Lexer) NextEntity() (*Entity, bool) {
	if l.stopped {
		return nil, false
	}

	if !l.seekRecord() {
		l.pos = len(l.src)
		return nil, false
	}
	l.pos++

	id, ok := l.readUint()
	if !ok {
		return l.stop()
	}

	l.skipSpace()
	if !l.consume('=') {
		return l.stop()
	}

	l.skipSpace()
	class := l.readWord()
	if class == "" {
		return l.stop()
	}

	entity := &Entity{ID: id, Class: strings.ToUpper(class)}

	l.skipSpace()
	if l.peek() == '(' {
		params, ok := l.parseList()
		if !ok {
			return l.stop()
		}
		entity.Params = params
	}

	l.skipSpace()
	l.consume(';')

	return entity, true
}

// All drains the lexer and returns every record it produced.
func (l *Lexer) All() []*Entity {
	var out []*Entity
	for {
		e, ok := l.NextEntity()
		if !ok {
			return out
		}
		out = append(out, e)
	}
}

// Lex is a convenience wrapper returning every record in src.
func Lex(src string) []*Entity {
	return NewLexer(src).All()
}

// seekRecord moves to the next `#` outside a comment.
func (l *Lexer) seekRecord() bool {
	for l.pos < len(l.src) {
		if strings.HasPrefix(l.src[l.pos:], "/*") {
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				return false
			}
			l.pos += end + 4
			continue
		}
		if l.src[l.pos] == '#' {
			return true
		}
		l.pos++
	}
	return false
}

func (l *Lexer) stop() (*Entity, bool) {
	l.stopped = true
	return nil, false
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) consume(c byte) bool {
	if l.peek() != c {
		return false
	}
	l.pos++
	return true
}

// skipSpace skips whitespace and /* ... */ comments.
func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '/' && strings.HasPrefix(l.src[l.pos:], "/*"):
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				l.pos = len(l.src)
				return
			}
			l.pos += end + 4
		default:
			return
		}
	}
}

func (l *Lexer) readUint() (uint64, bool) {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return 0, false
	}
	n, err := strconv.ParseUint(l.src[start:l.pos], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (l *Lexer) readWord() string {
	start := l.pos
	for l.pos < len(l.src) && isWordByte(l.src[l.pos]) {
		l.pos++
	}
	return l.src[start:l.pos]
}

// parseList parses `( param, param, ... )` starting at the open paren.
func (l *Lexer) parseList() (List, bool) {
	l.pos++ // (
	list := List{}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return nil, false
		}
		if l.src[l.pos] == ')' {
			l.pos++
			return list, true
		}

		p, ok := l.parseParam()
		if !ok {
			return nil, false
		}
		list = append(list, p)

		l.skipSpace()
		switch l.peek() {
		case ',':
			l.pos++
		case ')':
			l.pos++
			return list, true
		default:
			return nil, false
		}
	}
}

func (l *Lexer) parseParam() (Param, bool) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return nil, false
	}

	switch c := l.src[l.pos]; {
	case c == '$' || c == '*':
		l.pos++
		return Null{}, true
	case c == '#':
		l.pos++
		id, ok := l.readUint()
		if !ok {
			return nil, false
		}
		return Ref(id), true
	case c == '\'':
		return l.parseString()
	case c == '"':
		return l.parseBinary()
	case c == '(':
		return l.parseList()
	case c == '.':
		return l.parseEnum()
	case isUpper(c):
		word := l.readWord()
		if l.peek() != '(' {
			return Enum(strings.ToUpper(word)), true
		}
		l.pos++ // (
		inner, ok := l.parseParam()
		if !ok {
			return nil, false
		}
		l.skipSpace()
		if !l.consume(')') {
			return nil, false
		}
		return Typed{Type: strings.ToUpper(word), Value: inner}, true
	case isDigit(c) || c == '-' || c == '+':
		return l.parseNumber()
	default:
		return nil, false
	}
}

// parseString reads a quoted literal; `''` is an escaped quote.
func (l *Lexer) parseString() (Param, bool) {
	l.pos++ // '
	var b strings.Builder
	for {
		end := strings.IndexByte(l.src[l.pos:], '\'')
		if end < 0 {
			return nil, false
		}
		b.WriteString(l.src[l.pos : l.pos+end])
		l.pos += end + 1
		if l.peek() == '\'' {
			b.WriteByte('\'')
			l.pos++
			continue
		}
		return String(decodeEscapes(b.String())), true
	}
}

// parseBinary reads a `"..."` binary literal and keeps its hex digits verbatim.
func (l *Lexer) parseBinary() (Param, bool) {
	l.pos++ // "
	end := strings.IndexByte(l.src[l.pos:], '"')
	if end < 0 {
		return nil, false
	}
	s := l.src[l.pos : l.pos+end]
	l.pos += end + 1
	return String(s), true
}

func (l *Lexer) parseEnum() (Param, bool) {
	l.pos++ // .
	end := strings.IndexByte(l.src[l.pos:], '.')
	if end <= 0 {
		return nil, false
	}
	name := strings.ToUpper(l.src[l.pos : l.pos+end])
	for i := 0; i < len(name); i++ {
		if !isWordByte(name[i]) {
			return nil, false
		}
	}
	l.pos += end + 1

	switch name {
	case "T":
		return Bool(true), true
	case "F":
		return Bool(false), true
	case "U":
		return Null{}, true
	default:
		return Enum(name), true
	}
}

func (l *Lexer) parseNumber() (Param, bool) {
	start := l.pos
	if c := l.src[l.pos]; c == '-' || c == '+' {
		l.pos++
	}
	isFloat := false
scan:
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isDigit(c):
		case c == '.':
			isFloat = true
		case c == 'e' || c == 'E':
			isFloat = true
			if next := l.pos + 1; next < len(l.src) && (l.src[next] == '-' || l.src[next] == '+') {
				l.pos++
			}
		default:
			break scan
		}
		l.pos++
	}

	text := l.src[start:l.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, false
		}
		return Float(f), true
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, false
	}
	return Integer(n), true
}

// decodeEscapes expands the STEP control directives \X2\..\X0\, \X\HH,
// \S\c and \\. Malformed directives are kept verbatim.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, `\X2\`):
			body := rest[4:]
			end := strings.Index(body, `\X0\`)
			if end < 0 {
				b.WriteString(rest)
				return b.String()
			}
			if units, ok := hexUnits(body[:end]); ok {
				b.WriteString(string(utf16.Decode(units)))
			} else {
				b.WriteString(rest[:4+end+4])
			}
			i += 4 + end + 4
		case strings.HasPrefix(rest, `\X\`) && len(rest) >= 5:
			v, err := strconv.ParseUint(rest[3:5], 16, 8)
			if err != nil {
				b.WriteByte(s[i])
				i++
				continue
			}
			b.WriteRune(rune(v))
			i += 5
		case strings.HasPrefix(rest, `\S\`) && len(rest) >= 4:
			b.WriteRune(rune(rest[3]) + 128)
			i += 4
		case strings.HasPrefix(rest, `\\`):
			b.WriteByte('\\')
			i += 2
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

func hexUnits(hex string) ([]uint16, bool) {
	if len(hex)%4 != 0 {
		return nil, false
	}
	units := make([]uint16, 0, len(hex)/4)
	for k := 0; k < len(hex); k += 4 {
		v, err := strconv.ParseUint(hex[k:k+4], 16, 16)
		if err != nil {
			return nil, false
		}
		units = append(units, uint16(v))
	}
	return units, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isWordByte(c byte) bool {
	return isDigit(c) || isUpper(c) || (c >= 'a' && c <= 'z') || c == '_'
}
