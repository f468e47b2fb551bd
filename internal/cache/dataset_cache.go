// Package cache keeps cleaned datasets in memory keyed by source identity.
//
// A source's identity is its absolute path plus either its modification time
// and size or a content digest. When the identity changes the next Get reloads
// the file; concurrent Gets for the same identity share one load.
package cache

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"salespulse/internal/dataprocessing"
)

// KeyStrategy selects how a source identity is computed
type KeyStrategy string

const (
	// KeyByStat identifies a source by path, modification time and size
	KeyByStat KeyStrategy = "stat"
	// KeyByContent identifies a source by path and an xxhash digest of its bytes
	KeyByContent KeyStrategy = "content"
)

// Loader produces a cleaned dataset from a file
type Loader interface {
	LoadFile(path string) (*dataprocessing.Dataset, error)
}

// SourceKey identifies one version of a source file
type SourceKey struct {
	Path    string
	ModTime time.Time
	Size    int64
	Digest  string
}

// String renders the key; two keys with equal strings name the same content
func (k SourceKey) String() string {
	if k.Digest != "" {
		return k.Path + "#" + k.Digest
	}
	return fmt.Sprintf("%s@%d:%d", k.Path, k.ModTime.UnixNano(), k.Size)
}

// Stats reports cache activity
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Loads   int64 `json:"loads"`
	Evicted int64 `json:"evicted"`
}

type entry struct {
	key      SourceKey
	dataset  *dataprocessing.Dataset
	loadedAt time.Time
}

// DatasetCache caches datasets per absolute path. It is safe for concurrent use.
type DatasetCache struct {
	loader     Loader
	strategy   KeyStrategy
	maxEntries int
	logger     *slog.Logger

	mu      sync.RWMutex
	entries map[string]*entry
	stats   Stats

	group singleflight.Group
}

// Options configures a DatasetCache
type Options struct {
	Strategy   KeyStrategy
	MaxEntries int // 0 means unbounded
}

// New creates a cache backed by loader
func New(loader Loader, opts Options, logger *slog.Logger) *DatasetCache {
	if opts.Strategy == "" {
		opts.Strategy = KeyByStat
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetCache{
		loader:     loader,
		strategy:   opts.Strategy,
		maxEntries: opts.MaxEntries,
		logger:     logger.With(slog.String("component", "dataset_cache")),
		entries:    make(map[string]*entry),
	}
}

// Key computes the current identity of the file at path
func (c *DatasetCache) Key(path string) (SourceKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return SourceKey{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return SourceKey{}, fmt.Errorf("failed to stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return SourceKey{}, fmt.Errorf("%s is a directory", abs)
	}

	key := SourceKey{Path: abs, ModTime: info.ModTime(), Size: info.Size()}
	if c.strategy == KeyByContent {
		digest, err := fileDigest(abs)
		if err != nil {
			return SourceKey{}, err
		}
		key.Digest = digest
	}
	return key, nil
}

// Get returns the dataset for path, loading it when the cached copy is missing
// or stale. The boolean reports whether the cached copy was used.
func (c *DatasetCache) Get(ctx context.Context, path string) (*dataprocessing.Dataset, bool, error) {
	key, err := c.Key(path)
	if err != nil {
		return nil, false, err
	}

	c.mu.RLock()
	cached, ok := c.entries[key.Path]
	c.mu.RUnlock()
	if ok && sameSource(cached.key, key) {
		c.mu.Lock()
		c.stats.Hits++
		c.mu.Unlock()
		return cached.dataset, true, nil
	}

	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()

	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		start := time.Now()
		ds, err := c.loader.LoadFile(key.Path)
		if err != nil {
			return nil, err
		}
		c.store(key, ds)
		c.logger.Info("dataset loaded into cache",
			slog.String("path", key.Path),
			slog.Int("records", ds.Len()),
			slog.Duration("duration", time.Since(start)))
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*dataprocessing.Dataset), false, nil
	}
}

func (c *DatasetCache) store(key SourceKey, ds *dataprocessing.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Loads++
	c.entries[key.Path] = &entry{key: key, dataset: ds, loadedAt: time.Now()}

	if c.maxEntries <= 0 {
		return
	}
	for len(c.entries) > c.maxEntries {
		var oldestPath string
		var oldest time.Time
		for p, e := range c.entries {
			if oldestPath == "" || e.loadedAt.Before(oldest) {
				oldestPath, oldest = p, e.loadedAt
			}
		}
		delete(c.entries, oldestPath)
		c.stats.Evicted++
	}
}

// Invalidate drops the cached dataset for path and reports whether one existed
func (c *DatasetCache) Invalidate(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[abs]; !ok {
		return false
	}
	delete(c.entries, abs)
	c.logger.Info("dataset invalidated", slog.String("path", abs))
	return true
}

// Purge drops every cached dataset and returns how many were dropped
func (c *DatasetCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]*entry)
	c.logger.Info("dataset cache purged", slog.Int("entries", n))
	return n
}

// Stats returns a snapshot of cache activity
func (c *DatasetCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Entries = len(c.entries)
	return stats
}

func sameSource(a, b SourceKey) bool {
	if a.Digest != "" || b.Digest != "" {
		return a.Path == b.Path && a.Digest == b.Digest
	}
	return a.Path == b.Path && a.ModTime.Equal(b.ModTime) && a.Size == b.Size
}

func fileDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to hash file %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
