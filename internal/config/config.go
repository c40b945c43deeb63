// Package config defines the pipeline configuration and how it is loaded.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// InputDir holds the source rate card documents.
	InputDir string `koanf:"input_dir" validate:"required"`

	// Output datasets.
	SilverPath     string `koanf:"silver_path" validate:"required"`
	PriceRangePath string `koanf:"price_range_path" validate:"required"`
	GoldPath       string `koanf:"gold_path" validate:"required"`
	BenchmarkPath  string `koanf:"benchmark_path" validate:"required"`

	// DimPath is the rate card dimension table read by the gold pivot.
	DimPath string `koanf:"dim_path" validate:"required"`
	// DimExtend assigns ids to documents missing from the dimension table
	// and writes it back. When false such documents fail the gold stage.
	DimExtend bool `koanf:"dim_extend"`

	// Engine picks the table extractor; auto chooses by file extension.
	Engine string `koanf:"engine" validate:"oneof=auto tabula html xlsx csv"`
	// TabulaCommand runs the external PDF table extractor.
	TabulaCommand string `koanf:"tabula_command"`

	// Signature names the active table signature.
	Signature string `koanf:"signature" validate:"required"`
	// SynonymMode is exact or per_column.
	SynonymMode string `koanf:"synonym_mode" validate:"oneof=exact per_column"`
	// StrictLayouts reports level tables that match no signature.
	StrictLayouts bool `koanf:"strict_layouts"`

	// WorkerCount sets the number of document workers.
	WorkerCount int `koanf:"worker_count" validate:"min=1"`
	// QueueSize bounds the in-memory document queue.
	QueueSize int `koanf:"queue_size" validate:"min=1"`

	// DatabaseURL enables the Postgres sink when set.
	DatabaseURL string `koanf:"database_url" validate:"omitempty,url"`

	// Monte Carlo benchmark.
	MCSamples        int     `koanf:"mc_samples" validate:"min=1"`
	MCSeed           uint64  `koanf:"mc_seed"`
	ReferenceMinRate float64 `koanf:"reference_min_rate" validate:"gte=0"`
	ReferenceMaxRate float64 `koanf:"reference_max_rate" validate:"gtefield=ReferenceMinRate"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		InputDir:         "database/bronze/company_rate_cards",
		SilverPath:       "database/silver/rate_cards/rate_cards_silver.csv",
		PriceRangePath:   "database/silver/rate_cards/rate_cards_price_range.csv",
		DimPath:          "database/gold/dim_ratecard.csv",
		DimExtend:        true,
		GoldPath:         "database/gold/gold_rate_card.csv",
		BenchmarkPath:    "database/gold/benchmark.json",
		Engine:           "auto",
		TabulaCommand:    "java -jar tabula.jar",
		Signature:        "tabula-sfia-v1",
		SynonymMode:      "exact",
		StrictLayouts:    true,
		WorkerCount:      runtime.NumCPU(),
		QueueSize:        1024,
		MCSamples:        5000,
		MCSeed:           42,
		ReferenceMinRate: 350,
		ReferenceMaxRate: 1350,
	}
}
