package store

import (
	"strings"

	"dxf/dwire"
)

// Prefixer joins key parts under prefix with "/".
func Prefixer(prefix string) func(k ...string) []byte {
	return func(parts ...string) []byte {
		k := strings.Join(append([]string{prefix}, parts...), "/")
		return []byte(k)
	}
}

// recordKeys returns the data and meta keys of the record typ/h.
func recordKeys(typ string, h dwire.Handle) ([]byte, []byte) {
	handle := h.String()
	return entitiesPrefix(typ, handle), metaPrefix(typ, handle)
}
