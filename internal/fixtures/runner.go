package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/ratecards/pkg/logger"
)

// Run writes generated cards into the service's input directory, triggers
// a run and checks the gold table against the generated prices.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("smoke")

	log.Info(ctx, "starting rate card smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("dir", cfg.Dir),
		logger.Int("cards", cfg.Cards),
		logger.Bool("offshore", cfg.Offshore),
		logger.Bool("ranges", cfg.Ranges))

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate and write cards
	cards := Generate(cfg)
	if err := WriteCards(ctx, cfg.Dir, cards); err != nil {
		return stats, err
	}
	stats.CardsWritten = len(cards)
	want := ExpectedGold(cards)
	stats.RowsExpected = want.Rows()

	// Step 3: Run the pipeline
	run, err := client.TriggerRun(ctx)
	if err != nil {
		return stats, fmt.Errorf("trigger run: %w", err)
	}
	run, err = client.WaitForRun(ctx, run.ID, cfg.PollInterval)
	if err != nil {
		return stats, fmt.Errorf("wait for run: %w", err)
	}
	if run.Status != "succeeded" {
		return stats, fmt.Errorf("run %s %s: %s", run.ID, run.Status, run.Error)
	}

	// Step 4: Verify gold output
	got, err := client.Gold(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch gold: %w", err)
	}
	stats.GoldRows = len(got.Rows)
	diffs := VerifyGold(want, got)
	stats.Mismatches = len(diffs)
	if cfg.Verbose {
		for _, d := range diffs {
			log.Info(ctx, "gold mismatch", logger.String("diff", d))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "smoke test finished",
		logger.Int("cards", stats.CardsWritten),
		logger.Int("goldRows", stats.GoldRows),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("took", stats.Duration))

	if len(diffs) > 0 {
		return stats, fmt.Errorf("gold output differs from generated cards: %s", Summary(diffs, 10))
	}
	return stats, nil
}
