package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/ratecards/internal/domain/model"
)

func job(id string) Job {
	return Job{RunID: "run-1", Document: model.Document{ID: id, Path: "/in/" + id + ".xlsx"}}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if !q.Enqueue(ctx, job("acme_2023")) {
		t.Fatal("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.Document.ID != "acme_2023" {
		t.Errorf("expected acme_2023, got %v", got.Document.ID)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("a")) || !q.Enqueue(ctx, job("b")) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, job("c")) {
		t.Error("expected enqueue to fail when full")
	}
}

func TestInMemoryQueue_PutWaitsForRoom(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if err := q.Put(ctx, job("a")); err != nil {
		t.Fatalf("put: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- q.Put(ctx, job("b")) }()

	select {
	case err := <-done:
		t.Fatalf("put returned before room was made: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	jobs := q.Dequeue(ctx)
	if j := <-jobs; j.Document.ID != "a" {
		t.Errorf("expected a, got %s", j.Document.ID)
	}
	if err := <-done; err != nil {
		t.Errorf("put after room: %v", err)
	}
	if j := <-jobs; j.Document.ID != "b" {
		t.Errorf("expected b, got %s", j.Document.ID)
	}
}

func TestInMemoryQueue_PutCancelled(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_ = q.Put(ctx, job("a"))
	if err := q.Put(ctx, job("b")); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestInMemoryQueue_CloseDrains(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	_ = q.Enqueue(ctx, job("a"))
	_ = q.Enqueue(ctx, job("b"))
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, job("c")) {
		t.Error("expected enqueue on closed queue to fail")
	}
	if err := q.Put(ctx, job("c")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	var ids []string
	for j := range q.Dequeue(ctx) {
		ids = append(ids, j.Document.ID)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("expected queued jobs to drain in order, got %v", ids)
	}
}
