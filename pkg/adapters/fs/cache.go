package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// cacheVersion is bumped whenever summaryEntry changes shape; older
// caches are discarded on load.
const cacheVersion = 2

// summaryEntry is what List needs to know about one project file without
// parsing it again.
type summaryEntry struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Nodes        int       `json:"nodes"`
	LastModified time.Time `json:"lastModified"`
}

type summaryIndex struct {
	Version int                      `json:"version"`
	Entries map[string]*summaryEntry `json:"entries"` // keyed by file name
}

// cache persists project summaries under the system directory so that
// listing a large workspace only parses files whose mtime changed.
type cache struct {
	Path string

	mu    sync.RWMutex
	index summaryIndex
	dirty bool
}

func newCache(root, systemDir string) *cache {
	return &cache{
		Path:  filepath.Join(root, systemDir, "summaries.json"),
		index: summaryIndex{Version: cacheVersion, Entries: make(map[string]*summaryEntry)},
	}
}

// Load reads the cache from disk. A missing, stale or corrupted cache
// starts empty.
func (c *cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	var loaded summaryIndex
	if err := json.Unmarshal(data, &loaded); err != nil || loaded.Version != cacheVersion || loaded.Entries == nil {
		c.index = summaryIndex{Version: cacheVersion, Entries: make(map[string]*summaryEntry)}
		c.dirty = true
		return nil
	}
	c.index = loaded
	c.dirty = false
	return nil
}

// Save writes the cache if it changed since the last load or save.
func (c *cache) Save() error {
	c.mu.RLock()
	if !c.dirty {
		c.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}
	if err := writeFileAtomic(c.Path, data, 0644); err != nil {
		return err
	}

	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
	return nil
}

// Get returns the entry for file if it was recorded at mtime.
func (c *cache) Get(file string, mtime time.Time) (*summaryEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.index.Entries[file]
	if !ok || !e.LastModified.Equal(mtime) {
		return nil, false
	}
	return e, true
}

func (c *cache) Set(file string, e *summaryEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index.Entries[file] = e
	c.dirty = true
}

func (c *cache) Delete(file string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index.Entries[file]; ok {
		delete(c.index.Entries, file)
		c.dirty = true
	}
}

// Prune drops entries whose file is not in keep.
func (c *cache) Prune(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for file := range c.index.Entries {
		if !keep[file] {
			delete(c.index.Entries, file)
			c.dirty = true
		}
	}
}

// Range calls fn for each entry until it returns false.
func (c *cache) Range(fn func(file string, e *summaryEntry) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for k, v := range c.index.Entries {
		if !fn(k, v) {
			return
		}
	}
}

func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index.Entries)
}
