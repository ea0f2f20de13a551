package fsutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizePathname makes a single path element safe on every common filesystem:
// reserved characters and control characters become "_", trailing spaces, dots and
// underscores are dropped. The result is in Unicode NFC form.
func NormalizePathname(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return '_'
		}
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		return r
	}, norm.NFC.String(name))
	return strings.TrimRight(name, " ._")
}
