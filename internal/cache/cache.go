// internal/cache/cache.go
//
// Explicit keyed snapshot cache shared by the identity manager and the
// game session controller.
//
// Characteristics:
//   - Entries are keyed by (kind, key): kind is the entity family
//     ("current_game", "stats"), key is the owning identity or game id.
//   - Values are whole snapshots, replaced wholesale on every Put; the
//     cache never patches or merges. A present entry may hold a nil
//     value ("identity has no open game" is itself cacheable).
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes
//     exclusive). Process-local; lost on restart.

package cache

import "sync"

// Entity kinds used by this client.
const (
	KindCurrentGame = "current_game"
	KindStats       = "stats"
)

type entry struct {
	value any
}

// Cache is an in-memory map-based snapshot cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]map[string]entry // kind → key → entry
}

// New constructs an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]map[string]entry)}
}

// Get returns the cached value for (kind, key) and whether an entry
// exists. A (nil, true) result is a cached absence, not a miss.
func (c *Cache) Get(kind, key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[kind][key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Put replaces the entry for (kind, key) wholesale.
func (c *Cache) Put(kind, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byKey, ok := c.entries[kind]
	if !ok {
		byKey = make(map[string]entry)
		c.entries[kind] = byKey
	}
	byKey[key] = entry{value: value}
}

// Invalidate removes the entry for (kind, key), if any.
func (c *Cache) Invalidate(kind, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries[kind], key)
}

// InvalidateKey removes key's entries across every kind. Used when an
// identity is replaced: everything cached under the old token goes.
func (c *Cache) InvalidateKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, byKey := range c.entries {
		delete(byKey, key)
	}
}
