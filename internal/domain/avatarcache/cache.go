// Package avatarcache keeps each avatar's original material snapshot.
//
// A snapshot is captured once per avatar, when it joins the scene or first
// crosses a spawn trigger, and is never overwritten: the first capture is the
// ground truth that restore returns to, even if the avatar is captured again
// while painted.
package avatarcache

import (
	"context"
	"sync"

	"github.com/okian/avatarpaint/internal/domain/model"
	"github.com/okian/avatarpaint/pkg/metrics"
)

// Cache maps avatars to their captured original materials.
type Cache interface {
	// Capture stores snap for id unless id already has one.
	// Returns true if snap was stored, false if an earlier capture exists.
	Capture(ctx context.Context, id model.AvatarID, snap model.Snapshot) bool

	// Lookup returns the captured snapshot. Absence is an expected outcome.
	Lookup(ctx context.Context, id model.AvatarID) (model.Snapshot, bool)

	// Forget drops the entry for id, typically when the avatar leaves.
	// Returns true if an entry was removed.
	Forget(ctx context.Context, id model.AvatarID) bool

	Size() int64
}

type entry struct {
	id   model.AvatarID
	snap model.Snapshot
	prev *entry
	next *entry
}

// inMemoryCache implements Cache with a map and, when bounded, an insertion
// ordered list used to evict the oldest capture first.
type inMemoryCache struct {
	mu      sync.RWMutex
	entries map[model.AvatarID]*entry
	oldest  *entry
	newest  *entry
	maxSize int // 0 or negative = unbounded
}

// New creates an in-memory cache. It is unbounded unless WithMaxSize is given.
func New(opts ...Option) Cache {
	c := &inMemoryCache{
		entries: make(map[model.AvatarID]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	metrics.UpdateCacheEntries(0)
	return c
}

func (c *inMemoryCache) Capture(_ context.Context, id model.AvatarID, snap model.Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[id]; exists {
		metrics.RecordCapture("duplicate")
		return false
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	e := &entry{id: id, snap: snap, prev: c.newest}
	if c.newest != nil {
		c.newest.next = e
	}
	c.newest = e
	if c.oldest == nil {
		c.oldest = e
	}
	c.entries[id] = e

	metrics.RecordCapture("captured")
	metrics.UpdateCacheEntries(int64(len(c.entries)))
	return true
}

func (c *inMemoryCache) Lookup(_ context.Context, id model.AvatarID) (model.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok {
		return model.Snapshot{}, false
	}
	return e.snap, true
}

func (c *inMemoryCache) Forget(_ context.Context, id model.AvatarID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return false
	}
	c.unlink(e)
	metrics.RecordCacheForget()
	metrics.UpdateCacheEntries(int64(len(c.entries)))
	return true
}

func (c *inMemoryCache) Size() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.entries))
}

// evictOldest removes the earliest capture. Must be called with c.mu held.
func (c *inMemoryCache) evictOldest() {
	if c.oldest == nil {
		return
	}
	c.unlink(c.oldest)
	metrics.RecordCacheEviction()
}

// unlink removes e from the map and list. Must be called with c.mu held.
func (c *inMemoryCache) unlink(e *entry) {
	delete(c.entries, e.id)
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.oldest = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.newest = e.prev
	}
	e.prev, e.next = nil, nil
}
