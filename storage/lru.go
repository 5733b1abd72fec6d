package storage

import (
	"container/list"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// LRU is a capacity-bounded store. Reads move the entry to the recency
// front; inserts evict from the back until the bound holds. A per-entry
// TTL is layered on top: an expired entry reads as a miss and is removed.
type LRU struct {
	clock clockwork.Clock

	mu        sync.Mutex
	capacity  int
	order     *list.List
	items     map[string]*list.Element
	evictions uint64
}

type lruEntry struct {
	key       string
	value     []byte
	expiresAt time.Time // zero means never
}

func (e *lruEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewLRU creates a store bounded to capacity entries.
func NewLRU(capacity int) (*LRU, error) {
	return NewLRUWithClock(capacity, clockwork.NewRealClock())
}

// NewLRUWithClock creates a bounded store that reads time from clock.
func NewLRUWithClock(capacity int, clock clockwork.Clock) (*LRU, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return &LRU{
		clock:    clock,
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}, nil
}

// Get returns the payload at key and marks it most recently used.
func (l *LRU) Get(_ context.Context, key string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	elem, ok := l.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	entry := elem.Value.(*lruEntry)
	if entry.expired(l.clock.Now()) {
		l.removeLocked(elem)
		return nil, ErrNotFound
	}
	l.order.MoveToFront(elem)
	return entry.value, nil
}

// Set stores the payload at key as most recently used, evicting from
// the least recently used end while over capacity. ttl <= 0 means no
// expiry.
func (l *LRU) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = l.clock.Now().Add(ttl)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		entry := elem.Value.(*lruEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		l.order.MoveToFront(elem)
		return nil
	}

	l.items[key] = l.order.PushFront(&lruEntry{key: key, value: value, expiresAt: expiresAt})
	for l.order.Len() > l.capacity {
		if oldest := l.order.Back(); oldest != nil {
			l.removeLocked(oldest)
			l.evictions++
		}
	}
	return nil
}

// Delete removes the entry at key. Idempotent.
func (l *LRU) Delete(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		l.removeLocked(elem)
	}
	return nil
}

// Clear removes every entry. The eviction counter is preserved.
func (l *LRU) Clear(_ context.Context) error {
	l.mu.Lock()
	l.order.Init()
	l.items = make(map[string]*list.Element)
	l.mu.Unlock()
	return nil
}

// Incr atomically increments the integer stored at key, creating it at
// 1 when absent. Counters participate in recency like any other entry.
func (l *LRU) Incr(ctx context.Context, key string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int64
	if elem, ok := l.items[key]; ok {
		entry := elem.Value.(*lruEntry)
		if !entry.expired(l.clock.Now()) {
			n, _ = strconv.ParseInt(string(entry.value), 10, 64)
		}
		entry.value = []byte(strconv.FormatInt(n+1, 10))
		entry.expiresAt = time.Time{}
		l.order.MoveToFront(elem)
		return n + 1, nil
	}

	l.items[key] = l.order.PushFront(&lruEntry{key: key, value: []byte("1")})
	for l.order.Len() > l.capacity {
		if oldest := l.order.Back(); oldest != nil {
			l.removeLocked(oldest)
			l.evictions++
		}
	}
	return 1, nil
}

// Evictions reports how many entries capacity pressure has removed.
func (l *LRU) Evictions() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.evictions
}

// Len reports the number of entries.
func (l *LRU) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}

// Footprint reports the approximate byte size of keys and payloads.
func (l *LRU) Footprint() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total int64
	for elem := l.order.Front(); elem != nil; elem = elem.Next() {
		entry := elem.Value.(*lruEntry)
		total += int64(len(entry.key) + len(entry.value) + entryOverhead)
	}
	return total
}

// Capacity reports the entry bound.
func (l *LRU) Capacity() int { return l.capacity }

func (l *LRU) removeLocked(elem *list.Element) {
	entry := elem.Value.(*lruEntry)
	l.order.Remove(elem)
	delete(l.items, entry.key)
}

var (
	_ Store   = (*LRU)(nil)
	_ Counter = (*LRU)(nil)
	_ Sizer   = (*LRU)(nil)
)
