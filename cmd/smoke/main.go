// Package main writes generated rate cards for a running ratecards service
// and checks the gold table it produces.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/okian/ratecards/internal/fixtures"
)

// Default configuration constants.
const (
	defaultCards       = 20
	defaultTimeout     = 30 * time.Second
	defaultPoll        = 500 * time.Millisecond
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		dir      = flag.String("dir", "database/bronze/company_rate_cards", "Input directory the service reads")
		cards    = flag.Int("cards", defaultCards, "Number of rate cards to generate")
		seed     = flag.Uint64("seed", 1, "Seed for generated prices")
		offshore = flag.Bool("offshore", true, "Add an offshore table to every other card")
		ranges   = flag.Bool("ranges", true, "Give every third card a price-range row")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		poll     = flag.Duration("poll", defaultPoll, "Run status poll interval")
		logFile  = flag.String("log", "", "Log file for test output (default: smoke_TIMESTAMP.log)")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fixtures.ShowHelp(os.Stdout)
		return 0
	}

	closeLog, err := fixtures.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &fixtures.Config{
		BaseURL:      *baseURL,
		Dir:          *dir,
		Cards:        *cards,
		Seed:         *seed,
		Offshore:     *offshore,
		Ranges:       *ranges,
		Timeout:      *timeout,
		PollInterval: *poll,
		Verbose:      *verbose,
	}

	stats, err := fixtures.Run(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("Smoke test failed: " + err.Error() + "\n")
		return 1
	}
	fmt.Printf("ok: %d cards, %d gold rows in %s\n", stats.CardsWritten, stats.GoldRows, stats.Duration)
	return 0
}
