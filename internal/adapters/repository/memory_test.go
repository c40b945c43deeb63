package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newRun(status Status, started time.Time) *Run {
	return &Run{ID: uuid.New(), Status: status, StartedAt: started}
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Test empty store
	if _, err := store.Latest(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	run := newRun(StatusRunning, time.Now())
	if err := store.Save(ctx, run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusRunning {
		t.Errorf("expected running, got %s", got.Status)
	}

	// Saving the same id replaces the record
	run.Status = StatusSucceeded
	if err := store.Save(ctx, run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
	got, _ = store.Get(ctx, run.ID)
	if got.Status != StatusSucceeded {
		t.Errorf("expected succeeded, got %s", got.Status)
	}

	// Returned runs are copies
	got.Status = StatusFailed
	again, _ := store.Get(ctx, run.ID)
	if again.Status != StatusSucceeded {
		t.Errorf("store was mutated through a returned run")
	}
}

func TestMemoryStore_Invalid(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, nil); !errors.Is(err, ErrInvalidRun) {
		t.Errorf("expected ErrInvalidRun for nil, got %v", err)
	}
	if err := store.Save(ctx, &Run{}); !errors.Is(err, ErrInvalidRun) {
		t.Errorf("expected ErrInvalidRun for nil id, got %v", err)
	}
	if _, err := store.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.List(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestMemoryStore_LatestAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	ok := newRun(StatusSucceeded, base)
	failed := newRun(StatusFailed, base.Add(time.Minute))
	for _, r := range []*Run{ok, failed} {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	latest, err := store.Latest(ctx)
	if err != nil || latest.ID != failed.ID {
		t.Errorf("expected latest %s, got %v (%v)", failed.ID, latest, err)
	}
	good, err := store.LatestSucceeded(ctx)
	if err != nil || good.ID != ok.ID {
		t.Errorf("expected latest succeeded %s, got %v (%v)", ok.ID, good, err)
	}

	runs, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != failed.ID || runs[1].ID != ok.ID {
		t.Errorf("expected newest first, got %v", runs)
	}
}

func TestMemoryStore_Capacity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithCapacity(2))

	first := newRun(StatusSucceeded, time.Now())
	_ = store.Save(ctx, first)
	_ = store.Save(ctx, newRun(StatusSucceeded, time.Now()))
	_ = store.Save(ctx, newRun(StatusSucceeded, time.Now()))

	if count := store.Count(ctx); count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
	if _, err := store.Get(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected oldest run evicted, got %v", err)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithCapacity(1000))

	const goroutines = 10
	const perGoroutine = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				r := newRun(StatusSucceeded, time.Now())
				if err := store.Save(ctx, r); err != nil {
					t.Errorf("save: %v", err)
					return
				}
				if _, err := store.Get(ctx, r.ID); err != nil {
					t.Errorf("get: %v", err)
				}
				_, _ = store.Latest(ctx)
			}
		}()
	}
	wg.Wait()

	if count := store.Count(ctx); count != goroutines*perGoroutine {
		t.Errorf("expected %d runs, got %d", goroutines*perGoroutine, count)
	}
}
