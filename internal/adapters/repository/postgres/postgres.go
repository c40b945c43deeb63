// Package postgres writes run datasets to PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/okian/ratecards/internal/domain/model"
	"github.com/okian/ratecards/pkg/logger"
	"github.com/okian/ratecards/pkg/metrics"
)

// Querier is the subset of *pgxpool.Pool the sink uses.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS rate_card_silver (
    run_id                         UUID NOT NULL,
    source_document_id             TEXT NOT NULL,
    level_code                     TEXT NOT NULL,
    level_name                     TEXT NOT NULL,
    location_type                  TEXT NOT NULL,
    strategy_and_architecture      TEXT NOT NULL,
    change_and_transformation      TEXT NOT NULL,
    development_and_implementation TEXT NOT NULL,
    delivery_and_operation         TEXT NOT NULL,
    people_and_skills              TEXT NOT NULL,
    relationships_and_engagement   TEXT NOT NULL,
    PRIMARY KEY (run_id, source_document_id, location_type, level_name)
);
CREATE TABLE IF NOT EXISTS rate_card_gold (
    run_id        UUID NOT NULL,
    rate_card_id  INTEGER NOT NULL,
    company       TEXT NOT NULL,
    location_type TEXT NOT NULL,
    level_name    TEXT NOT NULL,
    price         TEXT NOT NULL,
    PRIMARY KEY (run_id, rate_card_id, location_type, level_name)
)`

const insertSilverSQL = `INSERT INTO rate_card_silver
    (run_id, source_document_id, level_code, level_name, location_type,
     strategy_and_architecture, change_and_transformation, development_and_implementation,
     delivery_and_operation, people_and_skills, relationships_and_engagement)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const insertGoldSQL = `INSERT INTO rate_card_gold
    (run_id, rate_card_id, company, location_type, level_name, price)
    VALUES ($1, $2, $3, $4, $5, $6)`

// Sink writes single-price and gold rows keyed by run id. Writing a run
// twice replaces its rows.
type Sink struct {
	db Querier
}

// New creates a sink over a pool or connection.
func New(db Querier) *Sink {
	return &Sink{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: create tables: %w", err)
	}
	return nil
}

// WriteSilver replaces the single-price rows of a run.
func (s *Sink) WriteSilver(ctx context.Context, runID uuid.UUID, rows []model.NormalizedRow) error {
	return s.inTx(ctx, "silver", func(tx pgx.Tx) error {
		return writeSilver(ctx, tx, runID, rows)
	})
}

// WriteGold replaces the gold rows of a run. Each pivot cell is one row.
func (s *Sink) WriteGold(ctx context.Context, runID uuid.UUID, gold model.GoldTable) error {
	return s.inTx(ctx, "gold", func(tx pgx.Tx) error {
		return writeGold(ctx, tx, runID, gold)
	})
}

// Write stores both datasets in one transaction.
func (s *Sink) Write(ctx context.Context, runID uuid.UUID, rows []model.NormalizedRow, gold *model.GoldTable) error {
	return s.inTx(ctx, "run", func(tx pgx.Tx) error {
		if err := writeSilver(ctx, tx, runID, rows); err != nil {
			return err
		}
		if gold == nil {
			return nil
		}
		return writeGold(ctx, tx, runID, *gold)
	})
}

func writeSilver(ctx context.Context, tx pgx.Tx, runID uuid.UUID, rows []model.NormalizedRow) error {
	if _, err := tx.Exec(ctx, `DELETE FROM rate_card_silver WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("postgres: clear silver: %w", err)
	}
	for _, r := range rows {
		p := r.Prices
		if _, err := tx.Exec(ctx, insertSilverSQL,
			runID, r.SourceDocumentID, r.LevelCode, r.LevelName, string(r.LocationType),
			p[0], p[1], p[2], p[3], p[4], p[5],
		); err != nil {
			return fmt.Errorf("postgres: insert silver %s/%s: %w", r.SourceDocumentID, r.LevelName, err)
		}
	}
	return nil
}

func writeGold(ctx context.Context, tx pgx.Tx, runID uuid.UUID, gold model.GoldTable) error {
	if _, err := tx.Exec(ctx, `DELETE FROM rate_card_gold WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("postgres: clear gold: %w", err)
	}
	for _, row := range gold.Rows {
		for _, level := range gold.LevelNames {
			price, ok := row.Levels[level]
			if !ok {
				continue
			}
			if _, err := tx.Exec(ctx, insertGoldSQL,
				runID, row.RateCardID, row.Company, string(row.LocationType), level, price,
			); err != nil {
				return fmt.Errorf("postgres: insert gold %d/%s: %w", row.RateCardID, level, err)
			}
		}
	}
	return nil
}

func (s *Sink) inTx(ctx context.Context, what string, fn func(pgx.Tx) error) (err error) {
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			logger.Get().Named("postgres").Error(ctx, "write failed",
				logger.String("dataset", what),
				logger.Error(err))
		}
		metrics.RecordSinkWrite("postgres", status)
	}()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}
