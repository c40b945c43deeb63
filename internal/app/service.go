// Package service runs the rate card pipeline and keeps its runs.
package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/ratecards/internal/adapters/csvio"
	"github.com/okian/ratecards/internal/adapters/extract"
	eventqueue "github.com/okian/ratecards/internal/adapters/mq/queue"
	workerpool "github.com/okian/ratecards/internal/adapters/mq/worker"
	"github.com/okian/ratecards/internal/adapters/repository"
	"github.com/okian/ratecards/internal/domain/aggregate"
	"github.com/okian/ratecards/internal/domain/benchmark"
	"github.com/okian/ratecards/internal/domain/classify"
	"github.com/okian/ratecards/internal/domain/dedupe"
	"github.com/okian/ratecards/internal/domain/gold"
	"github.com/okian/ratecards/internal/domain/model"
	"github.com/okian/ratecards/internal/domain/normalize"
	"github.com/okian/ratecards/pkg/logger"
	"github.com/okian/ratecards/pkg/metrics"
)

// RunResult is the record of one pipeline run.
type RunResult = repository.Run

// Outputs names the files a run writes. Empty paths are skipped.
type Outputs struct {
	Silver     string
	PriceRange string
	Gold       string
	Benchmark  string
}

// DatabaseSink persists run datasets, e.g. to PostgreSQL.
type DatabaseSink interface {
	Write(ctx context.Context, runID uuid.UUID, rows []model.NormalizedRow, gold *model.GoldTable) error
}

// Service runs the pipeline over an input directory.
type Service struct {
	inputDir   string
	engine     extract.Engine
	classifier *classify.Classifier
	mode       normalize.SynonymMode

	workerCount int
	queueSize   int

	dimPath   string
	dimExtend bool
	outputs   Outputs
	database  DatabaseSink

	targets    []benchmark.Target
	benchOpts  benchmark.Options
	store      repository.Store
	now        func() time.Time
	running    atomic.Bool
	background sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithInputDir sets the directory documents are read from.
func WithInputDir(dir string) Option {
	return func(s *Service) { s.inputDir = dir }
}

// WithEngine sets the table extraction engine.
func WithEngine(e extract.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithClassifier replaces the default signature classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithSynonymMode sets how legacy category labels are mapped.
func WithSynonymMode(m normalize.SynonymMode) Option {
	return func(s *Service) { s.mode = m }
}

// WithWorkerCount sets the number of document workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the document queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDimension sets the dimension table file. With extend, documents the
// table lacks get new ids and the file is rewritten.
func WithDimension(path string, extend bool) Option {
	return func(s *Service) {
		s.dimPath = path
		s.dimExtend = extend
	}
}

// WithOutputs sets the dataset files.
func WithOutputs(o Outputs) Option {
	return func(s *Service) { s.outputs = o }
}

// WithDatabase adds a database sink.
func WithDatabase(d DatabaseSink) Option {
	return func(s *Service) { s.database = d }
}

// WithBenchmark sets the benchmark targets and sampling options.
func WithBenchmark(targets []benchmark.Target, opts benchmark.Options) Option {
	return func(s *Service) {
		s.targets = targets
		s.benchOpts = opts
	}
}

// WithStore sets the run store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. The default classifier uses every registered
// signature with strict layouts.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		mode:        normalize.SynonymExact,
		dimExtend:   true,
		targets:     benchmark.DefaultTargets(350, 1350),
		benchOpts:   benchmark.Options{Samples: 5000, Seed: 42},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.engine == nil {
		return nil, ErrNoSource
	}
	if s.classifier == nil {
		reg, err := classify.NewRegistry()
		if err != nil {
			return nil, err
		}
		if s.classifier, err = classify.New(reg); err != nil {
			return nil, err
		}
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("pipeline")
	}
	if s.benchOpts.Now == nil {
		s.benchOpts.Now = s.now
	}
	return s, nil
}

// Store returns the run store.
func (s *Service) Store() repository.Store { return s.store }

// Running reports whether a run is in progress.
func (s *Service) Running() bool { return s.running.Load() }

// Run executes the pipeline and waits for it. The returned run is also
// saved in the store, whatever its outcome.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	run, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.running.Store(false)
	err = s.finish(ctx, run, s.execute(ctx, run))
	return run, err
}

// Trigger starts a run in the background and returns its record in the
// running state. The run outlives ctx's cancellation.
func (s *Service) Trigger(ctx context.Context) (*RunResult, error) {
	run, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	started := *run

	bg := context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer s.running.Store(false)
		_ = s.finish(bg, run, s.execute(bg, run))
	}()
	return &started, nil
}

// Wait blocks until background runs started by Trigger have finished.
func (s *Service) Wait() { s.background.Wait() }

func (s *Service) begin(ctx context.Context) (*RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	run := &RunResult{
		ID:        uuid.New(),
		Status:    repository.StatusRunning,
		StartedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, run); err != nil {
		s.running.Store(false)
		return nil, err
	}
	return run, nil
}

func (s *Service) finish(ctx context.Context, run *RunResult, err error) error {
	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.Status = repository.StatusSucceeded
	if err != nil {
		run.Status = repository.StatusFailed
		run.Error = err.Error()
	}
	metrics.RecordRun(string(run.Status), finished.Sub(run.StartedAt), finished)

	fields := []logger.Field{
		logger.String("run", run.ID.String()),
		logger.String("status", string(run.Status)),
		logger.Int("documents", run.Documents),
		logger.Int("skipped", len(run.Skipped)),
		logger.Int("failures", len(run.Failures)),
		logger.Int("single", len(run.Single)),
		logger.Int("ranges", len(run.Ranges)),
		logger.Duration("took", finished.Sub(run.StartedAt)),
	}
	if err != nil {
		s.logger.Error(ctx, "run failed", append(fields, logger.Error(err))...)
	} else {
		s.logger.Info(ctx, "run finished", fields...)
	}

	if saveErr := s.store.Save(ctx, run); saveErr != nil {
		s.logger.Error(ctx, "failed to save run", logger.Error(saveErr))
		if err == nil {
			err = saveErr
		}
	}
	return err
}

func (s *Service) execute(ctx context.Context, run *RunResult) error {
	src := extract.NewSource(s.inputDir, s.engine, dedupe.NewInMemoryDeduper())
	docs, err := src.List(ctx)
	if err != nil {
		return err
	}
	run.Documents = len(docs)
	s.logger.Info(ctx, "run started",
		logger.String("run", run.ID.String()),
		logger.String("dir", s.inputDir),
		logger.Int("documents", len(docs)))

	perDocument, err := s.processDocuments(ctx, run, src, docs)
	if err != nil {
		return err
	}
	return s.reduce(ctx, run, perDocument)
}

// processDocuments fans documents out to the worker pool and collects the
// results on this goroutine. Extraction failures skip the document; any
// other document failure is joined and returned once every document has
// been seen.
func (s *Service) processDocuments(ctx context.Context, run *RunResult, src *extract.Source, docs []model.Document) (map[string][]model.NormalizedRow, error) {
	q := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	results := make(chan model.DocumentResult, s.workerCount)
	proc := &documentProcessor{
		source:     src,
		classifier: s.classifier,
		mode:       s.mode,
		logger:     s.logger,
	}
	pool := workerpool.NewPool(s.workerCount, q, proc, results)
	pool.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer q.Close()
		for _, d := range docs {
			if err := q.Put(gctx, eventqueue.Job{RunID: run.ID.String(), Document: d}); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		pool.Wait()
		close(results)
		return nil
	})

	perDocument := make(map[string][]model.NormalizedRow, len(docs))
	var structural []error
	for res := range results {
		switch {
		case res.Err == nil:
			perDocument[res.DocumentID] = res.Rows
			metrics.RecordDocument("ok")
		case errors.Is(res.Err, model.ErrExtraction):
			run.Skipped = append(run.Skipped, failure(res))
			metrics.RecordDocument("skipped")
			s.logger.Warn(ctx, "document skipped", logger.Document(res.DocumentID), logger.Error(res.Err))
		default:
			run.Failures = append(run.Failures, failure(res))
			structural = append(structural, res.Err)
			metrics.RecordDocument("failed")
			s.logger.Error(ctx, "document failed", logger.Document(res.DocumentID), logger.Error(res.Err))
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(structural) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrDocuments, errors.Join(structural...))
	}
	return perDocument, nil
}

func failure(res model.DocumentResult) repository.Failure {
	kind := "error"
	switch {
	case errors.Is(res.Err, model.ErrExtraction):
		kind = "extraction"
	case errors.Is(res.Err, model.ErrUnrecognizedLayout):
		kind = "unrecognized_layout"
	case errors.Is(res.Err, model.ErrShoreClassification):
		kind = "shore_classification"
	case errors.Is(res.Err, model.ErrTooManyTables):
		kind = "too_many_tables"
	}
	return repository.Failure{DocumentID: res.DocumentID, Kind: kind, Error: res.Err.Error()}
}

// reduce builds the run datasets from per-document rows and writes them.
func (s *Service) reduce(ctx context.Context, run *RunResult, perDocument map[string][]model.NormalizedRow) error {
	all := aggregate.ConcatAll(perDocument)
	var ranges []model.PriceRangeRow
	single, err := timed("aggregate", func() ([]model.NormalizedRow, error) {
		var (
			single []model.NormalizedRow
			err    error
		)
		single, ranges, err = aggregate.PartitionAndClean(all)
		return single, err
	})
	if err != nil {
		return err
	}
	run.Single, run.Ranges = single, ranges
	metrics.RecordRows("single", len(single))
	metrics.RecordRows("range", len(ranges))

	if err := s.derive(ctx, run, slices.Sorted(maps.Keys(perDocument))); err != nil {
		return err
	}
	_, err = timed("write", func() (struct{}, error) {
		return struct{}{}, s.writeOutputs(ctx, run, true)
	})
	return err
}

// derive pivots run.Single into the gold table and benchmarks it.
func (s *Service) derive(ctx context.Context, run *RunResult, documentIDs []string) error {
	dim, err := s.dimension(ctx, documentIDs)
	if err != nil {
		return err
	}
	table, err := timed("gold", func() (model.GoldTable, error) {
		return gold.Pivot(run.Single, dim)
	})
	if err != nil {
		return err
	}
	run.Gold = &table
	metrics.RecordRows("gold", len(table.Rows))

	report, err := timed("benchmark", func() (benchmark.Report, error) {
		return benchmark.BuildReport(run.Single, s.targets, s.benchOpts)
	})
	if err != nil {
		return err
	}
	run.Benchmark = &report
	for _, l := range report.Levels {
		if l.Summary != nil {
			metrics.UpdateBenchmarkMean(l.Target.Name, l.Summary.Mean)
		}
	}
	return nil
}

// Rebuild derives the gold table and benchmark again from the single-price
// dataset on disk without reading any source document. It is recorded as a
// run like any other.
func (s *Service) Rebuild(ctx context.Context) (*RunResult, error) {
	run, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.running.Store(false)
	err = s.finish(ctx, run, s.rebuild(ctx, run))
	return run, err
}

func (s *Service) rebuild(ctx context.Context, run *RunResult) error {
	if s.outputs.Silver == "" {
		return ErrNoSilver
	}
	single, err := csvio.ReadFile(s.outputs.Silver, csvio.ReadSingle)
	if err != nil {
		return fmt.Errorf("read silver %s: %w", s.outputs.Silver, err)
	}
	run.Single = single

	seen := make(map[string]struct{})
	for _, r := range single {
		seen[r.SourceDocumentID] = struct{}{}
	}
	run.Documents = len(seen)
	s.logger.Info(ctx, "rebuilding from silver",
		logger.String("run", run.ID.String()),
		logger.String("path", s.outputs.Silver),
		logger.Int("rows", len(single)))

	if err := s.derive(ctx, run, slices.Sorted(maps.Keys(seen))); err != nil {
		return err
	}
	return s.writeOutputs(ctx, run, false)
}

// GetStats returns a snapshot of the service state for /stats.
func (s *Service) GetStats() map[string]any {
	stored := s.store.Count(context.Background())
	metrics.UpdateStoredRuns(stored)

	stats := map[string]any{
		"running":      s.Running(),
		"stored_runs":  stored,
		"input_dir":    s.inputDir,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
	}
	if last, err := s.store.Latest(context.Background()); err == nil {
		stats["last_run_id"] = last.ID.String()
		stats["last_run_status"] = string(last.Status)
	}
	return stats
}
