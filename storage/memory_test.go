package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestMemory_GetSetDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	value := []byte("payload")
	if err := m.Set(ctx, "k", value, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get = %q, want %q", got, value)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}

	// Idempotent
	if err := m.Delete(ctx, "k"); err != nil {
		t.Errorf("repeat Delete failed: %v", err)
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemoryWithClock(clock)
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v"), 2*time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(1 * time.Second)
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	clock.Advance(2 * time.Second)
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after expiry error = %v, want ErrNotFound", err)
	}

	// The expired read reclaimed the entry.
	if m.Len() != 0 {
		t.Errorf("Len after expired read = %d, want 0", m.Len())
	}
}

func TestMemory_ZeroTTLNeverExpires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemoryWithClock(clock)
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(1000 * time.Hour)
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Errorf("Get after long advance failed: %v", err)
	}
}

func TestMemory_SweepReclaimsExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemoryWithClock(clock)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_ = m.Set(ctx, fmt.Sprintf("stale-%d", i), []byte("v"), time.Second)
	}
	clock.Advance(2 * time.Second)

	// Drive writes past the sweep cadence without reading the stale keys.
	for i := 0; i < sweepEvery; i++ {
		_ = m.Set(ctx, "fresh", []byte("v"), 0)
	}

	if m.Len() != 1 {
		t.Errorf("Len after sweep = %d, want 1", m.Len())
	}
}

func TestMemory_Clear(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_ = m.Set(ctx, "a", []byte("1"), 0)
	_ = m.Set(ctx, "b", []byte("2"), 0)

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", m.Len())
	}
}

func TestMemory_Incr(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := m.Incr(ctx, "counter")
		if err != nil {
			t.Fatalf("Incr failed: %v", err)
		}
		if n != want {
			t.Errorf("Incr = %d, want %d", n, want)
		}
	}
}

func TestMemory_Footprint(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if m.Footprint() != 0 {
		t.Errorf("empty Footprint = %d, want 0", m.Footprint())
	}

	_ = m.Set(ctx, "key", []byte("value"), 0)
	want := int64(len("key") + len("value") + entryOverhead)
	if m.Footprint() != want {
		t.Errorf("Footprint = %d, want %d", m.Footprint(), want)
	}

	if m.Capacity() != 0 {
		t.Errorf("Capacity = %d, want 0 (unbounded)", m.Capacity())
	}
}
