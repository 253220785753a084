package acestream

import "strings"

// ContentID is the 40-hex-character identifier of an acestream resource.
// IDs are normalized to lowercase as soon as they are extracted; every
// downstream consumer (rewriting, deduplication, logging) sees one spelling.
type ContentID string

// Valid reports whether the ID is exactly 40 hexadecimal characters.
func (id ContentID) Valid() bool {
	if len(id) != 40 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if !isHex(id[i]) {
			return false
		}
	}
	return true
}

func (id ContentID) String() string {
	return string(id)
}

// Normalize returns the lowercase form of the ID.
func Normalize(raw string) ContentID {
	return ContentID(strings.ToLower(raw))
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
