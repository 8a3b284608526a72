package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// cacheKey identifies one version of a file on disk.
type cacheKey struct {
	path    string
	size    int64
	modTime int64
}

// Cache memoizes the table for the default path. A file is re-read only when
// its size or modification time changes. Failed loads are not memoized.
type Cache struct {
	loader *Loader

	mu    sync.RWMutex
	key   cacheKey
	table *Table

	group singleflight.Group
	hits  func()
}

// NewCache wraps a loader.
func NewCache(l *Loader) *Cache {
	return &Cache{loader: l}
}

// OnHit registers a callback invoked on every cache hit.
func (c *Cache) OnHit(fn func()) { c.hits = fn }

// Load returns the memoized table for path, reading it when it changed.
func (c *Cache) Load(path string) (*Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// let the loader announce and classify the failure
			return c.loader.LoadFile(path)
		}
		return nil, &LoadError{Kind: ParseError, Source: Source{Path: path, AbsPath: abs}, Err: fmt.Errorf("stat: %w", err)}
	}
	key := cacheKey{path: abs, size: info.Size(), modTime: info.ModTime().UnixNano()}

	c.mu.RLock()
	if c.table != nil && c.key == key {
		t := c.table
		c.mu.RUnlock()
		if c.hits != nil {
			c.hits()
		}
		return t, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(abs, func() (any, error) {
		t, err := c.loader.LoadFile(path)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.key = key
		c.table = t
		c.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Invalidate drops the memoized table.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.table = nil
	c.key = cacheKey{}
	c.mu.Unlock()
}
