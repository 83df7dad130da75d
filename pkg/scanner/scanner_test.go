package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cairnsec/sigil/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDetectKind(t *testing.T) {
	cases := []struct {
		path string
		want Kind
	}{
		{"Token.sol", KindSolidity},
		{"pool.vy", KindVyper},
		{"Token.json", KindPayload},
		{"Token.SOL", KindSolidity},
		{"README.md", KindUnknown},
	}
	for _, tc := range cases {
		if got := DetectKind(tc.path); got != tc.want {
			t.Errorf("DetectKind(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "Token.sol"), "contract Token {}")
	writeFile(t, filepath.Join(dir, "src", "pool.vy"), "@external\ndef f():\n    pass")
	writeFile(t, filepath.Join(dir, "abi", "Token.json"), "[]")
	writeFile(t, filepath.Join(dir, "README.md"), "docs")
	writeFile(t, filepath.Join(dir, "node_modules", "dep", "Dep.sol"), "contract Dep {}")
	writeFile(t, filepath.Join(dir, "test", "Token.t.sol"), "contract TokenTest {}")

	s := NewScanner(nil)
	files, err := s.ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("files = %v, want 3 entries", files)
	}
	for _, f := range files {
		base := filepath.Base(f)
		if base == "Dep.sol" || base == "Token.t.sol" || base == "README.md" {
			t.Errorf("should have been excluded: %s", f)
		}
	}
}

func TestScanDir_NonExistent(t *testing.T) {
	s := NewScanner(nil)
	if _, err := s.ScanDir("/nonexistent/dir"); err == nil {
		t.Error("ScanDir should fail on missing root")
	}
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	sol := filepath.Join(dir, "Token.sol")
	writeFile(t, sol, "contract Token {}")
	md := filepath.Join(dir, "README.md")
	writeFile(t, md, "docs")

	s := NewScanner(nil)

	ok, err := s.ScanFile(sol)
	if err != nil || !ok {
		t.Errorf("ScanFile(sol) = %v, %v", ok, err)
	}
	ok, err = s.ScanFile(md)
	if err != nil || ok {
		t.Errorf("ScanFile(md) = %v, %v", ok, err)
	}
	if _, err := s.ScanFile(filepath.Join(dir, "missing.sol")); err == nil {
		t.Error("ScanFile should fail on missing file")
	}
}

func TestFilterAndGroupByKind(t *testing.T) {
	files := []string{"a/Token.sol", "b/pool.vy", "c/Token.json", "d/Other.sol"}
	s := NewScanner(nil)

	sols := s.FilterByKind(files, KindSolidity)
	if len(sols) != 2 {
		t.Errorf("FilterByKind = %v", sols)
	}

	groups := s.GroupByKind(files)
	if len(groups[KindSolidity]) != 2 || len(groups[KindVyper]) != 1 || len(groups[KindPayload]) != 1 {
		t.Errorf("GroupByKind = %v", groups)
	}
}

func TestLoadBundle_Solidity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Token.sol")
	writeFile(t, path, "contract Token {}")

	s := NewScanner(nil)
	b, err := s.LoadBundle(path)
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}
	if len(b) != 1 || b[0].Content != "contract Token {}" {
		t.Fatalf("bundle = %+v", b)
	}
}

func TestLoadBundle_Payload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.json")
	writeFile(t, path, `{"A.sol":{"content":"contract A {}"},"B.sol":{"content":"contract A {}"}}`)

	s := NewScanner(nil)
	b, err := s.LoadBundle(path)
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}
	// Dedup enabled by default: identical contents collapse
	if len(b) != 1 {
		t.Fatalf("bundle = %+v, want deduped single file", b)
	}
}

func TestLoadBundle_DedupDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.json")
	writeFile(t, path, `{"A.sol":{"content":"contract A {}"},"B.sol":{"content":"contract A {}"}}`)

	cfg := config.DefaultConfig()
	cfg.Sources.Dedup = false
	b, err := NewScanner(cfg).LoadBundle(path)
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}
	if len(b) != 2 {
		t.Fatalf("bundle = %+v, want both files", b)
	}
}

func TestFilterBySize(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.sol")
	big := filepath.Join(dir, "big.sol")
	writeFile(t, small, "contract A {}")
	writeFile(t, big, string(make([]byte, 2048)))

	filtered, skipped := FilterBySize([]string{small, big}, 1024)
	if len(filtered) != 1 || skipped != 1 {
		t.Errorf("filtered = %v, skipped = %d", filtered, skipped)
	}

	filtered, skipped = FilterBySize([]string{small, big}, 0)
	if len(filtered) != 2 || skipped != 0 {
		t.Errorf("maxSize 0 should pass everything through")
	}
}
