package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// lruEntry is one cached render.
type lruEntry struct {
	key       string
	value     string
	expiresAt time.Time
}

func (e *lruEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// LRU is the default page cache: capacity-bounded with least-recently-used
// eviction and per-entry TTL expiry. Expired entries are dropped lazily on
// Get and eagerly by PurgeExpired. Safe for concurrent use.
type LRU struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List

	now func() time.Time // test hook
}

var _ PageCache = (*LRU)(nil)

// LRUOption configures an LRU.
type LRUOption func(*LRU)

// WithCapacity overrides the default entry bound.
func WithCapacity(capacity int) LRUOption {
	return func(c *LRU) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) LRUOption {
	return func(c *LRU) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewLRU creates a page cache bounded to 100 entries and 60s per entry
// unless overridden.
func NewLRU(opts ...LRUOption) *LRU {
	c := &LRU{
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key, dropping it if expired.
func (c *LRU) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		return "", false, nil
	}

	entry := element.Value.(*lruEntry)
	if entry.expired(c.now()) {
		c.removeElement(element)
		return "", false, nil
	}

	c.order.MoveToFront(element)
	return entry.value, true, nil
}

// Set stores value under key, evicting least-recently-used entries beyond
// capacity.
func (c *LRU) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if element, ok := c.items[key]; ok {
		entry := element.Value.(*lruEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		c.order.MoveToFront(element)
		return nil
	}

	element := c.order.PushFront(&lruEntry{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = element

	for len(c.items) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
	}
	return nil
}

// Len returns the current entry count.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// PurgeExpired removes all expired entries and returns how many were
// dropped.
func (c *LRU) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	purged := 0
	for element := c.order.Back(); element != nil; {
		prev := element.Prev()
		if element.Value.(*lruEntry).expired(now) {
			c.removeElement(element)
			purged++
		}
		element = prev
	}
	return purged
}

// AttachJanitor schedules PurgeExpired on the given cron runner, e.g. with
// schedule "@every 30s". The caller owns the runner's lifecycle.
func (c *LRU) AttachJanitor(runner *cron.Cron, schedule string) error {
	_, err := runner.AddFunc(schedule, func() { c.PurgeExpired() })
	return err
}

func (c *LRU) removeElement(element *list.Element) {
	c.order.Remove(element)
	delete(c.items, element.Value.(*lruEntry).key)
}
