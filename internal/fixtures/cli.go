package fixtures

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/ratecards/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends log output to both stdout and a file. If logFile is
// empty, a timestamped filename is generated. The returned function closes
// the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	if logFile == "" {
		logFile = "smoke_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file.Close, nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Rate Card Smoke Test
====================

Writes generated rate card workbooks into the input directory of a running
ratecards service, triggers a run and checks the gold table it serves.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -dir string
        Input directory the service reads (default "database/bronze/company_rate_cards")
  -cards int
        Number of rate cards to generate (default 20)
  -seed uint
        Seed for generated prices (default 1)
  -offshore
        Add an offshore table to every other card (default true)
  -ranges
        Give every third card a price-range row (default true)
  -timeout duration
        HTTP request timeout (default 30s)
  -poll duration
        Run status poll interval (default 500ms)
  -log string
        Log file for test output (default: smoke_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/smoke
  go run ./cmd/smoke -cards 200 -url http://localhost:8080
`)
}
