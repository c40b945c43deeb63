package service

import (
	"context"
	"time"

	"github.com/okian/ratecards/internal/adapters/extract"
	"github.com/okian/ratecards/internal/domain/classify"
	"github.com/okian/ratecards/internal/domain/model"
	"github.com/okian/ratecards/internal/domain/normalize"
	"github.com/okian/ratecards/internal/domain/shore"
	"github.com/okian/ratecards/pkg/logger"
	"github.com/okian/ratecards/pkg/metrics"
)

// documentProcessor runs the per-document stages: extract, classify,
// normalize and shore. It holds no state that changes between documents.
type documentProcessor struct {
	source     *extract.Source
	classifier *classify.Classifier
	mode       normalize.SynonymMode
	logger     logger.Logger
}

func timed[T any](stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.RecordStageLatency(stage, time.Since(start))
	return v, err
}

func (p *documentProcessor) Process(ctx context.Context, job model.DocumentJob) model.DocumentResult {
	doc := job.Document
	res := model.DocumentResult{DocumentID: doc.ID}

	raw, err := timed("extract", func() ([]model.RawTable, error) {
		return p.source.Extract(ctx, doc)
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.RawTables = len(raw)
	metrics.RecordTables("raw", len(raw))

	cards, err := timed("classify", func() ([]model.RateCardTable, error) {
		return p.classifier.Classify(doc.ID, raw)
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.RateCardTables = len(cards)
	metrics.RecordTables("rate_card", len(cards))
	if len(cards) == 0 {
		p.logger.Info(ctx, "no rate card tables found", logger.Document(doc.ID), logger.Int("tables", len(raw)))
		return res
	}

	tables, err := timed("normalize", func() ([][]model.NormalizedRow, error) {
		out := make([][]model.NormalizedRow, 0, len(cards))
		for _, c := range cards {
			n, err := normalize.Normalize(c, p.mode)
			if err != nil {
				return nil, err
			}
			res.Unmapped = append(res.Unmapped, n.Unmapped...)
			out = append(out, n.Rows)
		}
		return out, nil
	})
	if err != nil {
		res.Err = err
		return res
	}
	if len(res.Unmapped) > 0 {
		p.logger.Warn(ctx, "columns outside the canonical schema ignored",
			logger.Document(doc.ID),
			logger.Any("columns", res.Unmapped))
	}

	rows, err := timed("shore", func() ([]model.NormalizedRow, error) {
		return shore.Classify(doc.ID, tables)
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.Rows = rows
	return res
}
