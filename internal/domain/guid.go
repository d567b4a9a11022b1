package domain

import (
	"strings"

	"github.com/google/uuid"
)

// globalIDAlphabet is the base-64 digit set of IFC compressed GUIDs. It is
// not the RFC 4648 alphabet.
const globalIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// globalIDGroups splits the 22 characters into one 8-bit and five 24-bit
// big-endian groups.
var globalIDGroups = [...]int{2, 4, 4, 4, 4, 4}

// GlobalIDToUUID decodes a 22-character IFC GlobalId into the 128-bit UUID
// it compresses.
func GlobalIDToUUID(id string) (uuid.UUID, bool) {
	if len(id) != 22 {
		return uuid.Nil, false
	}

	var raw [16]byte
	n, pos := 0, 0
	for i, width := range globalIDGroups {
		var v uint32
		for _, c := range []byte(id[pos : pos+width]) {
			d := strings.IndexByte(globalIDAlphabet, c)
			if d < 0 {
				return uuid.Nil, false
			}
			v = v<<6 | uint32(d)
		}
		pos += width

		if i == 0 {
			if v > 0xff {
				return uuid.Nil, false
			}
			raw[n] = byte(v)
			n++
			continue
		}
		raw[n], raw[n+1], raw[n+2] = byte(v>>16), byte(v>>8), byte(v)
		n += 3
	}

	u, err := uuid.FromBytes(raw[:])
	if err != nil {
		return uuid.Nil, false
	}
	return u, true
}

// UUIDToGlobalID compresses u into the 22-character IFC form.
func UUIDToGlobalID(u uuid.UUID) string {
	var b strings.Builder
	b.Grow(22)

	write := func(v uint32, digits int) {
		for i := digits - 1; i >= 0; i-- {
			b.WriteByte(globalIDAlphabet[(v>>(6*uint(i)))&0x3f])
		}
	}

	write(uint32(u[0]), 2)
	for i := 1; i < 16; i += 3 {
		write(uint32(u[i])<<16|uint32(u[i+1])<<8|uint32(u[i+2]), 4)
	}
	return b.String()
}
