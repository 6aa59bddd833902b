package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := newSession(KindProof, time.Minute)

	if err := store.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, sess.ID)
	if err != nil || got != sess {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing session err = %v", err)
	}
	_ = store.Delete(ctx, sess.ID)
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted session err = %v", err)
	}
}

func TestIdleExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	idle := newSession(KindModel, time.Minute)
	busy := newSession(KindProof, time.Minute)
	_ = store.Set(ctx, idle)
	_ = store.Set(ctx, busy)

	now = now.Add(50 * time.Second)
	if _, err := store.Get(ctx, busy.ID); err != nil {
		t.Fatal(err)
	}

	now = now.Add(20 * time.Second)
	n, _ := store.Cleanup(ctx)
	if n != 1 {
		t.Errorf("Cleanup dropped %d sessions, want 1", n)
	}
	if _, err := store.Get(ctx, busy.ID); err != nil {
		t.Errorf("touched session should survive: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d", store.Len())
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, busy.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("expired session err = %v", err)
	}
}

func TestGenerateIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
