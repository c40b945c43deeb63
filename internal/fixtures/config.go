// Package fixtures generates synthetic rate card workbooks and checks a
// running service's gold output against them.
package fixtures

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Dir          string        // Directory the service reads documents from
	Cards        int           // Number of rate cards to generate
	Seed         uint64        // Seed for generated prices
	Offshore     bool          // Add an offshore table to every other card
	Ranges       bool          // Give some cards a price-range row
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between run status polls
	Verbose      bool
}

// Stats holds smoke run statistics.
type Stats struct {
	CardsWritten int
	RowsExpected int
	GoldRows     int
	Mismatches   int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
