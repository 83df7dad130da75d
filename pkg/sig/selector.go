package sig

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ErrInvalidSelector reports a queried selector that is not "0x" followed by
// eight hex digits. This is the one malformed input the package rejects
// instead of tolerating: a bad selector query can silently match nothing and
// corrupt downstream audit data.
var ErrInvalidSelector = errors.New("invalid selector format")

var selectorRe = regexp.MustCompile(`^0x[0-9a-fA-F]{8}$`)

// Selector returns the 4-byte function selector for a canonical signature:
// "0x" plus the first eight lowercase hex digits of keccak256(signature).
func Selector(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return "0x" + hex.EncodeToString(h.Sum(nil))[:8]
}

// IsSelector reports whether s is a well-formed selector.
func IsSelector(s string) bool {
	return selectorRe.MatchString(s)
}

// ValidateSelector returns ErrInvalidSelector unless s is well-formed.
func ValidateSelector(s string) error {
	if !IsSelector(s) {
		return fmt.Errorf("%w: %q", ErrInvalidSelector, s)
	}
	return nil
}

// ResolveKey turns a descriptor display key into a selector. A key that
// already is a selector passes through lowercased; anything else must be a
// signature (possibly with parameter names), which is normalized and
// hashed. Keys that are neither fail.
func ResolveKey(key string) (string, error) {
	return ResolveKeyTypes(key, nil)
}

// ResolveKeyTypes is ResolveKey with a type-resolution map forwarded to
// NormalizeTypes.
func ResolveKeyTypes(key string, types map[string]string) (string, error) {
	key = strings.TrimSpace(key)
	if IsSelector(key) {
		return strings.ToLower(key), nil
	}
	normalized := NormalizeTypes(key, types)
	if normalized == key && !strings.Contains(key, "(") {
		return "", fmt.Errorf("display key %q is neither a selector nor a signature", key)
	}
	return Selector(normalized), nil
}
