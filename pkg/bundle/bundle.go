// Package bundle assembles multi-file verified-source payloads into one
// concatenated text the structural scanners can work over.
package bundle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// File is one labeled source unit in a bundle.
type File struct {
	Label   string
	Content string
}

// Bundle is an ordered list of source files. Order is meaningful: when the
// same declaration appears in several files, the scanners pick the last
// occurrence in the concatenated text, so later files win.
type Bundle []File

// Stringify concatenates the bundle into one scan target, files separated
// by a blank line. Labels are not written into the text: the scanners see
// exactly what the compiler saw.
func (b Bundle) Stringify() string {
	parts := make([]string, len(b))
	for i, f := range b {
		parts[i] = f.Content
	}
	return strings.Join(parts, "\n\n")
}

// Dedup drops files whose content already appeared earlier in the bundle,
// keeping the first occurrence. Verified-source payloads routinely repeat
// vendored libraries once per importing file.
func (b Bundle) Dedup() Bundle {
	seen := make(map[uint64]struct{}, len(b))
	out := make(Bundle, 0, len(b))
	for _, f := range b {
		key := xxhash.Sum64String(f.Content)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Merge appends other onto b, with other's files taking precedence through
// concatenation order.
func (b Bundle) Merge(other Bundle) Bundle {
	out := make(Bundle, 0, len(b)+len(other))
	out = append(out, b...)
	out = append(out, other...)
	return out
}

// Sorted returns a copy ordered by label. Useful for stable listings; not
// used for Stringify, where payload order carries meaning.
func (b Bundle) Sorted() Bundle {
	out := make(Bundle, len(b))
	copy(out, b)
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Fingerprint is a stable content hash over the concatenated bundle, used as
// a cache key.
func (b Bundle) Fingerprint() string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.Stringify()))
}
