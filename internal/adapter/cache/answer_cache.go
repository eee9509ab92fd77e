// Package cache provides the in-process answer cache.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// AnswerCache is a bounded LRU with per-entry TTL for generated answers.
// Safe for concurrent use.
type AnswerCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	entries    map[string]*list.Element
	order      *list.List // front = most recently used

	now func() time.Time // test hook
}

type cacheEntry struct {
	key      string
	answer   string
	storedAt time.Time
}

func NewAnswerCache(maxEntries int, ttl time.Duration) *AnswerCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &AnswerCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// GetAnswer returns the cached answer for key. Expired entries are evicted
// on access and report a miss.
func (c *AnswerCache) GetAnswer(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}
	entry := elem.Value.(*cacheEntry)

	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		c.order.Remove(elem)
		delete(c.entries, key)
		return "", false
	}

	c.order.MoveToFront(elem)
	return entry.answer, true
}

// SetAnswer stores an answer, evicting the least recently used entry when
// the cache is full.
func (c *AnswerCache) SetAnswer(key, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.answer = answer
		entry.storedAt = c.now()
		c.order.MoveToFront(elem)
		return
	}

	if len(c.entries) >= c.maxEntries {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}

	elem := c.order.PushFront(&cacheEntry{key: key, answer: answer, storedAt: c.now()})
	c.entries[key] = elem
}

// Len returns the number of live entries, counting expired ones not yet
// evicted.
func (c *AnswerCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops all entries.
func (c *AnswerCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}
