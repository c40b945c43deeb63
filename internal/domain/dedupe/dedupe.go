// Package dedupe tracks which documents a run has already taken on.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen document ids so each is processed at most once.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so it can be taken on again, e.g. after the job
	// could not be enqueued.
	Unrecord(ctx context.Context, id string)

	// Seen lists recorded ids in the order they were first recorded.
	Seen() []string

	Size() int64
}

// inMemoryDeduper keeps ids in a map with an insertion-order slice. With
// maxSize > 0 the oldest id is evicted once the set is full.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	maxSize int
}

// NewInMemoryDeduper creates a deduper. It is unbounded unless WithMaxSize
// sets a positive limit.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{seen: make(map[string]struct{})}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.order) >= d.maxSize {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}
	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

func (d *inMemoryDeduper) Seen() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
