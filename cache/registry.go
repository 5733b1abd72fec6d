package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"weak"
)

// PrimeFunc warms a cache with known argument tuples. The invocation
// wrapper registers one per preload provider; PreloadAll fans out over
// them at startup.
type PrimeFunc func(ctx context.Context) error

// registry is the process-wide list of every manager ever created plus
// the registered primers and the on/off flag. Managers are held through
// weak pointers so the registry never keeps a dead cache alive.
// Insertion takes the mutex; iteration works on a snapshot.
type registry struct {
	disabled atomic.Bool
	seq      atomic.Int64

	mu       sync.Mutex
	managers []weak.Pointer[Manager]
	primers  []PrimeFunc
}

var global registry

// Enabled reports whether caching is globally on. Managers consult it
// on every get and set.
func Enabled() bool { return !global.disabled.Load() }

// Enable turns the global cache on.
func Enable() { global.disabled.Store(false) }

// Disable turns the global cache off: every get reads as a miss and
// every set is a no-op until Enable.
func Disable() { global.disabled.Store(true) }

// RegisterPrimer adds a preload primer to the global registry.
func RegisterPrimer(p PrimeFunc) {
	global.mu.Lock()
	global.primers = append(global.primers, p)
	global.mu.Unlock()
}

// register adds a manager and returns its display name, generating one
// when the config left it empty.
func register(m *Manager, name string) string {
	if name == "" {
		name = "cache-" + strconv.FormatInt(global.seq.Add(1), 10)
	}
	global.mu.Lock()
	global.managers = append(global.managers, weak.Make(m))
	global.mu.Unlock()
	return name
}

// Managers returns the live managers at this instant.
func Managers() []*Manager {
	global.mu.Lock()
	refs := make([]weak.Pointer[Manager], len(global.managers))
	copy(refs, global.managers)
	global.mu.Unlock()

	live := make([]*Manager, 0, len(refs))
	for _, ref := range refs {
		if m := ref.Value(); m != nil {
			live = append(live, m)
		}
	}
	return live
}

// PreloadAll runs every registered primer, warming the associated
// caches. Primer failures are collected, not fatal to each other.
func PreloadAll(ctx context.Context) error {
	global.mu.Lock()
	primers := make([]PrimeFunc, len(global.primers))
	copy(primers, global.primers)
	global.mu.Unlock()

	var errs []error
	for _, prime := range primers {
		if err := prime(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InvalidateAll bumps the global version counter on every live manager.
func InvalidateAll(ctx context.Context) error {
	var errs []error
	for _, m := range Managers() {
		if err := m.InvalidateAll(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InvalidateUser bumps a user's version counter on every live manager.
func InvalidateUser(ctx context.Context, userID string) error {
	var errs []error
	for _, m := range Managers() {
		if err := m.InvalidateUser(ctx, userID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AllStats snapshots the counters of every live manager, keyed by name.
func AllStats() map[string]Snapshot {
	stats := make(map[string]Snapshot)
	for _, m := range Managers() {
		stats[m.Name()] = m.Stats()
	}
	return stats
}

// ResetAllStats zeroes every live manager's counters.
func ResetAllStats() {
	for _, m := range Managers() {
		m.ResetStats()
	}
}

// AllUsage samples the footprint of every live manager, keyed by name.
func AllUsage() map[string]Usage {
	usage := make(map[string]Usage)
	for _, m := range Managers() {
		usage[m.Name()] = m.Usage()
	}
	return usage
}
