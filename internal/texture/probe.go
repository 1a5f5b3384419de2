package texture

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Probe returns the pixel size of the image at path. Only the header is
// decoded.
func Probe(path string) (w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("texture: %s image %s has size %dx%d", format, path, cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// Cache is a concurrency-safe cache of probed texture sizes, keyed by
// path. One Cache is shared by every job of a batch.
type Cache struct {
	mu    sync.RWMutex
	items map[string]cacheEntry

	// Stats
	hits   int
	misses int
}

type cacheEntry struct {
	w, h int
	ok   bool // false if probing failed; failures are cached too
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]cacheEntry)}
}

// Size resolves texName through index and returns its probed size.
// ok is false when the texture is not indexed or cannot be decoded.
func (c *Cache) Size(index *Index, texName string) (w, h int, ok bool) {
	path, found := index.ResolvePath(texName)
	if !found {
		return 0, 0, false
	}

	// Fast path: read lock
	c.mu.RLock()
	entry, exists := c.items[path]
	c.mu.RUnlock()
	if exists {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entry.w, entry.h, entry.ok
	}

	// Slow path: probe from disk
	w, h, err := Probe(path)
	entry = cacheEntry{w: w, h: h, ok: err == nil}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, exists := c.items[path]; exists {
		c.hits++
		return prev.w, prev.h, prev.ok
	}
	c.items[path] = entry
	c.misses++
	return entry.w, entry.h, entry.ok
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
