package acquire

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/willibrandon/gonuget-acquire/feed"
	"github.com/willibrandon/gonuget-acquire/version"
)

// MetadataCache persists feed.PackageMetadata to JSON files in the
// environment's cache root, keyed by (name, normalized-version,
// hash(normalized-url)), with a schema-version tag and a sticky
// ".failed" marker, on top of the teacher's DiskCache atomic two-phase
// write pattern (temp file + rename) from cache/disk.go — reimplemented
// here rather than reused directly since that type caches opaque byte
// blobs under an HTTP (sourceURL, cacheKey) pair, not a JSON record
// keyed by package identity plus a sticky-error side channel.
type MetadataCache struct {
	root string
}

// NewMetadataCache roots a cache at dir, creating it if absent.
func NewMetadataCache(dir string) (*MetadataCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create cache directory %s: %v", ErrCacheError, dir, err)
	}
	return &MetadataCache{root: dir}, nil
}

// cacheFileName builds {name}.{normalizedVersion}.s{hash}.json.
func (c *MetadataCache) cacheFileName(name string, v *version.NuGetVersion, normalizedURL string) string {
	return fmt.Sprintf("%s.%s.s%s.json", name, v.Normalize(), HashNormalizedURL(normalizedURL))
}

func (c *MetadataCache) cachePath(name string, v *version.NuGetVersion, normalizedURL string) string {
	return filepath.Join(c.root, c.cacheFileName(name, v, normalizedURL))
}

// ErrorMarkerPath returns the sticky-failure marker path for (name, v, normalizedURL).
func (c *MetadataCache) ErrorMarkerPath(name string, v *version.NuGetVersion, normalizedURL string) string {
	return c.cachePath(name, v, normalizedURL) + ".failed"
}

// HasStickyError reports whether a .failed marker exists for this key.
func (c *MetadataCache) HasStickyError(name string, v *version.NuGetVersion, normalizedURL string) bool {
	_, err := os.Stat(c.ErrorMarkerPath(name, v, normalizedURL))
	return err == nil
}

// RecordFailure appends diagnostic to the sticky .failed marker,
// creating it if absent. Marker writes are append-only, matching the
// concurrency contract in spec.md §5.
func (c *MetadataCache) RecordFailure(name string, v *version.NuGetVersion, normalizedURL, diagnostic string) {
	path := c.ErrorMarkerPath(name, v, normalizedURL)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	_, _ = fmt.Fprintf(f, "%s: %s\n", time.Now().UTC().Format(time.RFC3339), diagnostic)
}

// ClearStickyError removes the .failed marker, if any.
func (c *MetadataCache) ClearStickyError(name string, v *version.NuGetVersion, normalizedURL string) {
	_ = os.Remove(c.ErrorMarkerPath(name, v, normalizedURL))
}

// cacheEnvelope is the on-disk JSON shape: the metadata plus the schema
// version it was written under, so a reader can detect a stale schema
// without guessing at the embedded CacheVersion field's meaning.
type cacheEnvelope struct {
	Metadata     feed.PackageMetadata `json:"metadata"`
	CacheVersion string               `json:"cacheVersion"`
}

// Load reads the cached metadata for (name, v, normalizedURL). The bool
// result is true only when the file exists and its cacheVersion matches
// feed.CurrentCacheVersion; a schema mismatch is reported as a cache
// miss so the caller refetches.
func (c *MetadataCache) Load(name string, v *version.NuGetVersion, normalizedURL string) (feed.PackageMetadata, bool) {
	data, err := os.ReadFile(c.cachePath(name, v, normalizedURL))
	if err != nil {
		return feed.PackageMetadata{}, false
	}

	var env cacheEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return feed.PackageMetadata{}, false
	}

	if env.CacheVersion != feed.CurrentCacheVersion || env.Metadata.CacheVersion != feed.CurrentCacheVersion {
		return feed.PackageMetadata{}, false
	}

	return env.Metadata, true
}

// Store writes metadata to the cache file using an atomic temp-file +
// rename, mirroring cache.DiskCache.Set. Write failures are swallowed:
// the cache is a best-effort accelerator, never load-bearing for
// correctness.
func (c *MetadataCache) Store(name string, v *version.NuGetVersion, normalizedURL string, metadata feed.PackageMetadata) {
	path := c.cachePath(name, v, normalizedURL)

	env := cacheEnvelope{Metadata: metadata, CacheVersion: feed.CurrentCacheVersion}
	data, err := json.MarshalIndent(&env, "", "  ")
	if err != nil {
		return
	}

	tmp := fmt.Sprintf("%s-new.%d", path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
	}
}
