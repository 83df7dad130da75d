// Package scanner finds contract source inputs on disk and loads them as
// scan-ready bundles.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cairnsec/sigil/pkg/bundle"
	"github.com/cairnsec/sigil/pkg/config"
)

// Kind classifies an input file.
type Kind int

const (
	KindUnknown Kind = iota
	KindSolidity
	KindVyper
	KindPayload // JSON verified-source payload or ABI
)

func (k Kind) String() string {
	switch k {
	case KindSolidity:
		return "solidity"
	case KindVyper:
		return "vyper"
	case KindPayload:
		return "payload"
	default:
		return "unknown"
	}
}

// DetectKind classifies a path by extension.
func DetectKind(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sol":
		return KindSolidity
	case ".vy":
		return KindVyper
	case ".json":
		return KindPayload
	default:
		return KindUnknown
	}
}

// Scanner finds source files in a directory.
type Scanner struct {
	config *config.Config
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

func (s *Scanner) wanted(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range s.config.Sources.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (s *Scanner) isExcludedDir(name string) bool {
	for _, dir := range s.config.Exclude.Dirs {
		if name == dir {
			return true
		}
	}
	return false
}

// ScanDir recursively scans a directory for contract inputs.
// Uses filepath.WalkDir for better performance (avoids stat calls).
// Validates that all paths stay within the root directory to prevent traversal attacks.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	// Resolve root to absolute path for security validation
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	// Resolve any symlinks in the root path
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		// Security: validate path stays within root (prevent symlink traversal)
		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				// Skip unresolvable symlinks
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !isWithinRoot(resolved, absRoot) {
				// Symlink points outside root - skip it
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if relPath != "." && s.isExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.config.ShouldExclude(relPath) {
			return nil
		}
		if s.wanted(path) {
			files = append(files, path)
		}

		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	if !strings.HasPrefix(absPath, root+string(filepath.Separator)) && absPath != root {
		return false
	}

	return true
}

// ScanFile checks if a single file should be processed.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	if info.IsDir() {
		return false, nil
	}

	if s.config.ShouldExclude(filepath.Base(path)) {
		return false, nil
	}

	return s.wanted(path), nil
}

// FilterByKind filters files to only those of a specific kind.
func (s *Scanner) FilterByKind(files []string, kind Kind) []string {
	var filtered []string
	for _, f := range files {
		if DetectKind(f) == kind {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// GroupByKind groups files by their detected kind.
func (s *Scanner) GroupByKind(files []string) map[Kind][]string {
	groups := make(map[Kind][]string)
	for _, f := range files {
		kind := DetectKind(f)
		if kind != KindUnknown {
			groups[kind] = append(groups[kind], f)
		}
	}
	return groups
}

// LoadBundle reads a file and turns it into a scan-ready bundle. Payload
// files go through format detection; plain sources become single-file
// bundles labeled with their path.
func (s *Scanner) LoadBundle(path string) (bundle.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var b bundle.Bundle
	if DetectKind(path) == KindPayload {
		b = bundle.Parse(string(data))
	} else {
		b = bundle.Bundle{{Label: filepath.ToSlash(path), Content: string(data)}}
	}
	if s.config.Sources.Dedup {
		b = b.Dedup()
	}
	return b, nil
}

// FilterBySize filters files that exceed the given maximum size.
// Returns the filtered list and the count of files that were skipped.
// If maxSize is 0, returns the original list unchanged.
func FilterBySize(files []string, maxSize int64) ([]string, int) {
	if maxSize <= 0 {
		return files, 0
	}

	filtered := make([]string, 0, len(files))
	skipped := 0

	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			skipped++
			continue
		}
		if info.Size() > maxSize {
			skipped++
			continue
		}
		filtered = append(filtered, f)
	}

	return filtered, skipped
}
