// Package worker runs document jobs from the queue on a fixed pool of
// goroutines and reports each result on a channel.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/ratecards/internal/adapters/mq/queue"
	"github.com/okian/ratecards/internal/domain/model"
	"github.com/okian/ratecards/pkg/logger"
	"github.com/okian/ratecards/pkg/metrics"
)

// Processor turns one document job into a result. Failures travel in
// DocumentResult.Err so the pool never stops on a bad document.
type Processor interface {
	Process(ctx context.Context, job model.DocumentJob) model.DocumentResult
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job model.DocumentJob) model.DocumentResult

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, job model.DocumentJob) model.DocumentResult {
	return f(ctx, job)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// InMemoryWorker processes jobs from a queue.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	results   chan<- model.DocumentResult
	name      string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker that sends results on results.
func NewInMemoryWorker(q Queue, p Processor, results chan<- model.DocumentResult, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: p,
		results:   results,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes jobs until the queue is drained, ctx is done or Shutdown
// is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			res := w.process(ctx, job)
			select {
			case w.results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, job model.DocumentJob) model.DocumentResult {
	start := time.Now()
	metrics.AddWorkerActive(1)
	defer metrics.AddWorkerActive(-1)

	res := w.processor.Process(ctx, job)
	if res.DocumentID == "" {
		res.DocumentID = job.Document.ID
	}
	res.Duration = time.Since(start)
	metrics.RecordWorkerProcessingLatency(float64(res.Duration.Microseconds()) / 1000)

	if res.Err != nil {
		metrics.RecordWorkerError()
		w.logger.Debug(ctx, "document failed",
			logger.Document(res.DocumentID),
			logger.Duration("took", res.Duration),
			logger.Error(res.Err),
		)
		return res
	}
	w.logger.Debug(ctx, "document processed",
		logger.Document(res.DocumentID),
		logger.Int("rows", len(res.Rows)),
		logger.Duration("took", res.Duration),
	)
	return res
}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	wg      sync.WaitGroup
	logger  logger.Logger
}

// NewPool creates workerCount workers. A count below one means one worker
// per CPU.
func NewPool(workerCount int, q Queue, p Processor, results chan<- model.DocumentResult, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range pool.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, p, results, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned, normally after the queue is
// closed and drained.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Shutdown closes the queue and stops the workers, giving up when ctx is
// done.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	var firstErr error
	for i, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
