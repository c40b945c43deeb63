package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/ratecards/internal/adapters/extract"
	"github.com/okian/ratecards/internal/adapters/repository/postgres"
	service "github.com/okian/ratecards/internal/app"
	"github.com/okian/ratecards/internal/config"
	"github.com/okian/ratecards/internal/domain/benchmark"
	"github.com/okian/ratecards/internal/domain/classify"
	"github.com/okian/ratecards/internal/domain/normalize"
	"github.com/okian/ratecards/pkg/logger"
)

// setup initializes logging and loads configuration
// (defaults -> optional file -> env -> flags).
func setup(ctx context.Context) (*config.Config, error) {
	if cfgFile != "" {
		if err := os.Setenv(config.EnvConfigFile, cfgFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// buildService wires the pipeline from cfg. The returned cleanup closes the
// database pool, if any.
func buildService(ctx context.Context, cfg *config.Config) (*service.Service, func(), error) {
	engine, err := extract.NewEngine(cfg.Engine, cfg.TabulaCommand)
	if err != nil {
		return nil, nil, err
	}

	registry, err := classify.NewRegistry()
	if err != nil {
		return nil, nil, err
	}
	classifier, err := classify.New(registry,
		classify.WithActive(cfg.Signature),
		classify.WithStrictLayouts(cfg.StrictLayouts))
	if err != nil {
		return nil, nil, err
	}

	mode, err := normalize.ParseSynonymMode(cfg.SynonymMode)
	if err != nil {
		return nil, nil, err
	}

	opts := []service.Option{
		service.WithLogger(logger.Get().Named("pipeline")),
		service.WithInputDir(cfg.InputDir),
		service.WithEngine(engine),
		service.WithClassifier(classifier),
		service.WithSynonymMode(mode),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDimension(cfg.DimPath, cfg.DimExtend),
		service.WithOutputs(service.Outputs{
			Silver:     cfg.SilverPath,
			PriceRange: cfg.PriceRangePath,
			Gold:       cfg.GoldPath,
			Benchmark:  cfg.BenchmarkPath,
		}),
		service.WithBenchmark(
			benchmark.DefaultTargets(cfg.ReferenceMinRate, cfg.ReferenceMaxRate),
			benchmark.Options{Samples: cfg.MCSamples, Seed: cfg.MCSeed}),
	}

	cleanup := func() {}
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		sink := postgres.New(pool)
		if err := sink.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		opts = append(opts, service.WithDatabase(sink))
		cleanup = pool.Close
	}

	svc, err := service.New(opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
