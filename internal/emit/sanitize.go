package emit

import (
	"errors"
	"strings"
)

// ErrInvalidPath is returned when a name sanitizes to nothing and cannot
// form a path component.
var ErrInvalidPath = errors.New("emit: invalid path")

// SanitizeName derives a filename stem from s: lowercase, every run of
// characters outside [a-z0-9] collapsed to a single "_", with no leading or
// trailing "_". The result may be empty.
func SanitizeName(s string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return b.String()
}

// IsSanitized reports whether s is a non-empty fixed point of SanitizeName.
func IsSanitized(s string) bool {
	return s != "" && SanitizeName(s) == s
}
