package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"golang.org/x/sync/errgroup"

	"github.com/okian/ratecards/internal/adapters/csvio"
	"github.com/okian/ratecards/internal/adapters/extract"
	"github.com/okian/ratecards/internal/domain/dedupe"
	"github.com/okian/ratecards/internal/domain/gold"
	"github.com/okian/ratecards/pkg/logger"
	"github.com/okian/ratecards/pkg/metrics"
)

// dimension loads the dimension table and, when extending, adds ids for
// documents it lacks.
func (s *Service) dimension(ctx context.Context, documentIDs []string) (gold.Dimension, error) {
	existing, err := s.loadDimension(ctx)
	if err != nil {
		return nil, err
	}
	if !s.dimExtend {
		return existing, nil
	}
	return s.extendDimension(ctx, existing, documentIDs)
}

// SyncDimension assigns ids to every document of the input directory that
// the dimension table lacks and writes the table back, without running the
// pipeline.
func (s *Service) SyncDimension(ctx context.Context) (gold.Dimension, error) {
	src := extract.NewSource(s.inputDir, s.engine, dedupe.NewInMemoryDeduper())
	docs, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	existing, err := s.loadDimension(ctx)
	if err != nil {
		return nil, err
	}
	return s.extendDimension(ctx, existing, ids)
}

// loadDimension reads the dimension table. Without a file it starts empty.
func (s *Service) loadDimension(ctx context.Context) (gold.Dimension, error) {
	if s.dimPath == "" {
		return gold.Dimension{}, nil
	}
	d, err := csvio.ReadFile(s.dimPath, csvio.ReadDimension)
	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Info(ctx, "no dimension table yet", logger.String("path", s.dimPath))
		return gold.Dimension{}, nil
	default:
		return nil, fmt.Errorf("read dimension %s: %w", s.dimPath, err)
	}
}

func (s *Service) extendDimension(ctx context.Context, existing gold.Dimension, ids []string) (gold.Dimension, error) {
	dim := gold.BuildDimension(existing, ids)
	if len(dim) == len(existing) || s.dimPath == "" {
		return dim, nil
	}
	if err := csvio.WriteFile(s.dimPath, func(w io.Writer) error {
		return csvio.WriteDimension(w, dim)
	}); err != nil {
		return nil, fmt.Errorf("write dimension %s: %w", s.dimPath, err)
	}
	s.logger.Info(ctx, "dimension table extended",
		logger.Int("before", len(existing)),
		logger.Int("after", len(dim)))
	return dim, nil
}

// writeOutputs writes every configured dataset concurrently. The silver
// and price range files are left alone unless withSilver is set.
func (s *Service) writeOutputs(ctx context.Context, run *RunResult, withSilver bool) error {
	g, gctx := errgroup.WithContext(ctx)

	writeFile := func(sink, path string, write func(io.Writer) error) {
		if path == "" {
			return
		}
		g.Go(func() error {
			err := csvio.WriteFile(path, write)
			recordSink(sink, err)
			if err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			return nil
		})
	}

	if withSilver {
		writeFile("silver_csv", s.outputs.Silver, func(w io.Writer) error {
			return csvio.WriteSingle(w, run.Single)
		})
		writeFile("price_range_csv", s.outputs.PriceRange, func(w io.Writer) error {
			return csvio.WriteRanges(w, run.Ranges)
		})
	}
	if run.Gold != nil {
		writeFile("gold_csv", s.outputs.Gold, func(w io.Writer) error {
			return csvio.WriteGold(w, *run.Gold)
		})
	}
	if run.Benchmark != nil {
		writeFile("benchmark_json", s.outputs.Benchmark, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(run.Benchmark)
		})
	}
	if s.database != nil {
		g.Go(func() error {
			return s.database.Write(gctx, run.ID, run.Single, run.Gold)
		})
	}
	return g.Wait()
}

func recordSink(sink string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordSinkWrite(sink, status)
}
