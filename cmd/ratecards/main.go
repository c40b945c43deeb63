// Package main is the rate card pipeline command: one-shot runs, the HTTP
// service and dimension table maintenance.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/ratecards/internal/config"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "ratecards",
	Short: "Extract and normalize supplier rate cards",
	Long: `ratecards extracts rate tables from supplier rate card documents,
normalizes them onto the SFIA price categories and writes the silver,
price range, gold and benchmark datasets.

Examples:
  ratecards run
  ratecards serve
  ratecards dim`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (overrides "+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override: debug, info, warn, error")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
