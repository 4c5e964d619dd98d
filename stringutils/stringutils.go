package stringutils

import (
	"crypto/subtle"
	"strings"
)

// NullIfBlank returns nil when the provided value is empty after trimming
// whitespace; otherwise it returns the original string.
func NullIfBlank(value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

// ConstantTimeEquals reports whether a and b are equal without leaking
// timing information proportional to the position of the first mismatch.
// An empty b never matches, since an empty presented credential is always
// a caller bug rather than a legitimate secret.
func ConstantTimeEquals(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// JoinNonEmpty joins values with sep, skipping any that are empty after
// trimming whitespace.
func JoinNonEmpty(values []string, sep string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}

// SplitNonEmpty splits value on sep, trims each field, and drops empty ones.
func SplitNonEmpty(value, sep string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	fields := strings.Split(value, sep)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
