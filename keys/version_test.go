package keys

import (
	"context"
	"testing"

	"github.com/leowzz/fn-cache/storage"
)

func TestVersionRegistry_MissingCounterReadsAsOne(t *testing.T) {
	store := storage.NewMemory()
	r := NewVersionRegistry(store)
	ctx := context.Background()

	v, err := r.Global(ctx)
	if err != nil {
		t.Fatalf("Global failed: %v", err)
	}
	if v != 1 {
		t.Errorf("first Global = %d, want 1", v)
	}

	// The first read wrote the counter back.
	data, err := store.Get(ctx, GlobalVersionKey)
	if err != nil {
		t.Fatalf("counter was not persisted: %v", err)
	}
	if string(data) != "1" {
		t.Errorf("persisted counter = %q, want %q", data, "1")
	}
}

func TestVersionRegistry_IncrGlobalIsMonotonic(t *testing.T) {
	r := NewVersionRegistry(storage.NewMemory())
	ctx := context.Background()

	prev, _ := r.Global(ctx)
	for i := 0; i < 5; i++ {
		v, err := r.IncrGlobal(ctx)
		if err != nil {
			t.Fatalf("IncrGlobal failed: %v", err)
		}
		if v <= prev {
			t.Fatalf("IncrGlobal = %d after %d, want strictly increasing", v, prev)
		}
		prev = v
	}

	v, err := r.Global(ctx)
	if err != nil {
		t.Fatalf("Global failed: %v", err)
	}
	if v != prev {
		t.Errorf("Global = %d, want %d", v, prev)
	}
}

func TestVersionRegistry_UserCountersAreIndependent(t *testing.T) {
	r := NewVersionRegistry(storage.NewMemory())
	ctx := context.Background()

	if v, err := r.User(ctx, "42"); err != nil || v != 1 {
		t.Fatalf("User(42) = %d, %v, want 1", v, err)
	}
	if _, err := r.IncrUser(ctx, "42"); err != nil {
		t.Fatalf("IncrUser failed: %v", err)
	}

	v42, _ := r.User(ctx, "42")
	v43, _ := r.User(ctx, "43")
	if v42 != 2 {
		t.Errorf("User(42) = %d, want 2", v42)
	}
	if v43 != 1 {
		t.Errorf("User(43) = %d, want 1", v43)
	}
}

func TestVersionRegistry_CorruptCounterResets(t *testing.T) {
	store := storage.NewMemory()
	r := NewVersionRegistry(store)
	ctx := context.Background()

	_ = store.Set(ctx, GlobalVersionKey, []byte("junk"), 0)

	v, err := r.Global(ctx)
	if err != nil {
		t.Fatalf("Global failed: %v", err)
	}
	if v != 1 {
		t.Errorf("Global after corruption = %d, want 1", v)
	}
}

func TestUserVersionKey(t *testing.T) {
	if got := UserVersionKey("42"); got != "fncache:user:version:42" {
		t.Errorf("UserVersionKey = %q", got)
	}
}
