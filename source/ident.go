package source

import (
	"strings"
	"unicode/utf8"

	"github.com/smasher164/xid"
)

func isLetter(ch rune) bool {
	return ch == '_' || xid.Start(ch)
}

// IsIdent reports whether s can be used verbatim as an identifier in the
// generated C code.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		if ch >= utf8.RuneSelf {
			return false
		}
		if i == 0 && !isLetter(ch) {
			return false
		}
		if i > 0 && !xid.Continue(ch) {
			return false
		}
	}
	return true
}

// Mangle joins parts into a single C identifier. Characters that cannot
// appear in an identifier are replaced by '_'.
func Mangle(parts ...string) string {
	var sb strings.Builder
	for _, part := range parts {
		for _, ch := range part {
			if ch < utf8.RuneSelf && (isLetter(ch) || (sb.Len() > 0 && xid.Continue(ch))) {
				sb.WriteRune(ch)
			} else {
				sb.WriteByte('_')
			}
		}
	}
	return sb.String()
}
