// Package cli wires the benchmark pipeline stages into subcommands.
package cli

import (
	"errors"
	"io"
	"log"

	"github.com/spf13/cobra"

	"slitherbench/internal/config"
	"slitherbench/internal/logging"
)

// ErrPartial means the run finished but skipped contracts because of
// scanner-level failures. main maps it to a distinct exit code so batch
// scripts can tell "all clean" from "finished with holes".
var ErrPartial = errors.New("completed with scanner errors")

type globalFlags struct {
	configPath string
	resultsDir string
	timeoutSec int
	verbose    bool
}

var flags globalFlags

// AddCommands attaches every subcommand and the shared flags to root.
func AddCommands(root *cobra.Command) {
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "slitherbench.yaml", "Path to the YAML config file")
	root.PersistentFlags().StringVar(&flags.resultsDir, "results", "", "Override the results directory")
	root.PersistentFlags().IntVar(&flags.timeoutSec, "timeout", 0, "Override the per-contract timeout in seconds")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log progress to stderr")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newRektsCmd())
	root.AddCommand(newSolcCmd())
}

// loadConfig resolves config file plus flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return cfg, err
	}
	if flags.resultsDir != "" {
		cfg.ResultsDir = flags.resultsDir
	}
	if flags.timeoutSec > 0 {
		cfg.TimeoutSec = flags.timeoutSec
	}
	return cfg, nil
}

// newLogger returns a logger that always writes a run log file and mirrors
// to stderr only under --verbose.
func newLogger(name string, cfg config.Config) (*log.Logger, io.Closer) {
	logger, closer, err := logging.New(name, cfg.LogsDir(), flags.verbose)
	if err != nil {
		// logging.New already fell back to a stderr logger; just note it.
		logger.Printf("warning: could not open log file: %v", err)
	}
	return logger, closer
}
