// Package cache persists per-bundle function indexes between runs so
// repeated listings over the same verified-source payload skip the full
// structural scan.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/cairnsec/sigil/pkg/solidity"
)

// Cache is a directory of TTL'd function-index entries keyed by bundle
// fingerprint (bundle.Fingerprint). A disabled cache accepts every call
// and stores nothing.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// entry is one stored index. The fingerprint is repeated inside the entry:
// the filename is derived from it by hashing, so a stale or colliding file
// must not be allowed to answer for a different bundle.
type entry struct {
	Fingerprint string                  `json:"fingerprint"`
	CachedAt    time.Time               `json:"cached_at"`
	Functions   []solidity.FunctionDecl `json:"functions"`
}

// New opens (creating if needed) the cache directory.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// Index returns the cached function listing for a bundle fingerprint.
// Expired and corrupt entries are dropped and reported as misses.
func (c *Cache) Index(fingerprint string) ([]solidity.FunctionDecl, bool) {
	if !c.enabled {
		return nil, false
	}

	path := c.entryPath(fingerprint)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Fingerprint != fingerprint {
		os.Remove(path)
		return nil, false
	}
	if time.Since(e.CachedAt) > c.ttl {
		os.Remove(path)
		return nil, false
	}

	return e.Functions, true
}

// PutIndex stores the function listing for a bundle fingerprint.
func (c *Cache) PutIndex(fingerprint string, decls []solidity.FunctionDecl) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(entry{
		Fingerprint: fingerprint,
		CachedAt:    time.Now(),
		Functions:   decls,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(c.entryPath(fingerprint), data, 0600)
}

// Invalidate removes the entry for a bundle fingerprint.
func (c *Cache) Invalidate(fingerprint string) error {
	if !c.enabled {
		return nil
	}
	return os.Remove(c.entryPath(fingerprint))
}

// Clear removes the whole cache directory.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// entryPath derives a filesystem-safe filename from a fingerprint. The
// fingerprint is caller-supplied text, so it is hashed rather than used
// directly.
func (c *Cache) entryPath(fingerprint string) string {
	sum := blake3.Sum256([]byte(fingerprint))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// Stats summarizes the on-disk cache contents.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats walks the cache directory and reports entry count, byte size,
// and the age spread of the stored indexes.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}
