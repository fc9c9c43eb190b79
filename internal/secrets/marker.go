package secrets

import "strings"

const (
	markerPrefix = "cipher("
	markerSuffix = ")"
)

// ParseMarker reports whether v follows the cipher(<base64>) convention and,
// if so, returns the base64 payload with the wrapper stripped.
func ParseMarker(v string) (string, bool) {
	if !strings.HasPrefix(v, markerPrefix) || !strings.HasSuffix(v, markerSuffix) {
		return "", false
	}
	return v[len(markerPrefix) : len(v)-len(markerSuffix)], true
}

// WrapMarker wraps a base64 ciphertext in the cipher(...) convention so the
// result can be stored as an ordinary string configuration value.
func WrapMarker(ciphertextB64 string) string {
	return markerPrefix + ciphertextB64 + markerSuffix
}
