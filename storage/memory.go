package storage

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// sweepEvery is the write cadence for the opportunistic reap of expired
// entries. Expired entries are otherwise reclaimed lazily on read.
const sweepEvery = 1024

// entryOverhead approximates the per-entry bookkeeping cost in bytes
// used by Footprint.
const entryOverhead = 64

// Memory is an in-memory store with per-entry TTL. Expired entries are
// skipped and removed on read and swept on every sweepEvery-th write.
type Memory struct {
	clock clockwork.Clock

	mu      sync.Mutex
	entries map[string]memoryEntry
	writes  uint64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means never
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemory creates an empty TTL store.
func NewMemory() *Memory {
	return NewMemoryWithClock(clockwork.NewRealClock())
}

// NewMemoryWithClock creates a TTL store that reads time from clock.
func NewMemoryWithClock(clock clockwork.Clock) *Memory {
	return &Memory{
		clock:   clock,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the payload at key, or ErrNotFound when absent or expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	if entry.expired(m.clock.Now()) {
		delete(m.entries, key)
		return nil, ErrNotFound
	}
	return entry.value, nil
}

// Set stores the payload at key. ttl <= 0 means no expiry.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := m.clock.Now()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	m.writes++
	if m.writes%sweepEvery == 0 {
		m.sweepLocked(now)
	}
	return nil
}

// Delete removes the entry at key. Idempotent.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Clear removes every entry.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

// Incr atomically increments the integer stored at key, creating it at
// 1 when absent. Counters are stored without expiry.
func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	if entry, ok := m.entries[key]; ok && !entry.expired(m.clock.Now()) {
		n, _ = strconv.ParseInt(string(entry.value), 10, 64)
	}
	n++
	m.entries[key] = memoryEntry{value: []byte(strconv.FormatInt(n, 10))}
	return n, nil
}

// Len reports the number of entries, including not-yet-reaped expired ones.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Footprint reports the approximate byte size of keys and payloads.
func (m *Memory) Footprint() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total int64
	for key, entry := range m.entries {
		total += int64(len(key) + len(entry.value) + entryOverhead)
	}
	return total
}

// Capacity reports 0: the TTL store is unbounded.
func (m *Memory) Capacity() int { return 0 }

func (m *Memory) sweepLocked(now time.Time) {
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
		}
	}
}

var (
	_ Store   = (*Memory)(nil)
	_ Counter = (*Memory)(nil)
	_ Sizer   = (*Memory)(nil)
)
