package filegate

import (
	"unicode"
	"unicode/utf8"
)

// MaxKeyLength is the longest object key accepted, in bytes.
const MaxKeyLength = 1024

// IsValidKey reports whether k can be used as an object key.
// It checks that the key:
//   - is not empty and at most MaxKeyLength bytes
//   - is valid UTF-8
//   - does not contain null bytes or other control characters
//
// Keys are otherwise opaque: slashes, dots and spaces are allowed.
func IsValidKey(k string) bool {
	if k == "" || len(k) > MaxKeyLength {
		return false
	}

	if !utf8.ValidString(k) {
		return false
	}

	for _, r := range k {
		if unicode.IsControl(r) {
			return false
		}
	}

	return true
}
