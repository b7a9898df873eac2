// Package scenecache memoizes built scenes per image and pipeline settings.
package scenecache

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/heightmesh/internal/logger"
	"github.com/Faultbox/heightmesh/internal/scene"
)

// BuildFunc produces a scene for an image. scene.Build is the default.
type BuildFunc func(path string, opts scene.Options) (*scene.Scene, error)

// Key identifies one cached scene.
type Key struct {
	Path    string // absolute, cleaned
	Options scene.Options
}

// Cache holds built scenes. At most one build runs per key; concurrent
// callers for the same key wait for it and share the result. Failed builds
// are not cached.
type Cache struct {
	opts  scene.Options
	build BuildFunc
	group singleflight.Group

	mu   sync.RWMutex
	data map[Key]*scene.Scene

	// Stats
	hits   int
	misses int
}

// New creates a cache that builds with scene.Build and opts.
func New(opts scene.Options) *Cache {
	return NewWithBuilder(opts, scene.Build)
}

// NewWithBuilder creates a cache with a custom build function.
func NewWithBuilder(opts scene.Options, build BuildFunc) *Cache {
	return &Cache{
		opts:  opts,
		build: build,
		data:  make(map[Key]*scene.Scene),
	}
}

// Get returns the scene for path built with the cache's options.
func (c *Cache) Get(path string) (*scene.Scene, error) {
	return c.GetWith(path, c.opts)
}

// GetWith returns the scene for path built with opts.
func (c *Cache) GetWith(path string, opts scene.Options) (*scene.Scene, error) {
	key, err := newKey(path, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	sc, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
	if ok {
		return sc, nil
	}

	v, err, shared := c.group.Do(flightKey(key), func() (any, error) {
		c.mu.RLock()
		sc, ok := c.data[key]
		c.mu.RUnlock()
		if ok {
			return sc, nil
		}

		sc, err := c.build(key.Path, key.Options)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.data[key] = sc
		c.mu.Unlock()
		return sc, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("scene cache fill",
		zap.String("path", key.Path),
		zap.Bool("shared", shared),
	)
	return v.(*scene.Scene), nil
}

// Forget drops every cached scene for path.
func (c *Cache) Forget(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	abs = filepath.Clean(abs)

	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if k.Path == abs {
			delete(c.data, k)
		}
	}
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[Key]*scene.Scene)
	c.hits = 0
	c.misses = 0
}

// Len returns the number of cached scenes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func newKey(path string, opts scene.Options) (Key, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Key{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	return Key{Path: filepath.Clean(abs), Options: opts}, nil
}

func flightKey(k Key) string {
	return fmt.Sprintf("%s\x00%+v", k.Path, k.Options)
}
