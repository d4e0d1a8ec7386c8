package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"slitherbench/internal/config"
	"slitherbench/internal/contract"
	"slitherbench/internal/groundtruth"
	"slitherbench/internal/model"
	"slitherbench/internal/report"
	"slitherbench/internal/slither"
	"slitherbench/internal/stats"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		useDocker    bool
		remaps       []string
		contractPath string
		category     string
	)
	cmd := &cobra.Command{
		Use:   "analyze [batch-dir]",
		Short: "Run Slither against the dataset or a single contract",
		Long: `Runs Slither with a per-contract timeout, saves raw and parsed output
under the results directory, then computes detection statistics against
the ground truth and writes report.json/report.md.

Targets, in order of precedence: --contract analyzes one .sol file,
--category analyzes one dataset category (e.g. exploits/ethereum), a
positional directory analyzes that tree, and with no target the whole
configured dataset directory is walked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, closer := newLogger("analyze", cfg)
			defer closer.Close()

			// The flag and the config both select docker mode; the
			// availability check must see the merged mode.
			dockerMode := useDocker || cfg.Docker.Enabled
			if !slither.Available(dockerMode) {
				if dockerMode {
					return fmt.Errorf("docker not found on PATH")
				}
				return fmt.Errorf("slither not found on PATH (pip install slither-analyzer, or use --docker)")
			}

			contracts, target, err := selectContracts(cfg, contractPath, category, args)
			if err != nil {
				return err
			}
			if len(contracts) == 0 {
				return fmt.Errorf("no .sol files found under %s", target)
			}
			logger.Printf("analyzing %d contract(s) from %s", len(contracts), target)

			opts := slither.Options{
				RawDir:      cfg.RawDir(slither.Tool),
				ParsedDir:   cfg.ParsedDir(slither.Tool),
				TmpDir:      cfg.TmpDir,
				UseDocker:   dockerMode,
				DockerImage: cfg.Docker.Image,
				ExtraRemaps: remaps,
				Logger:      logger,
			}

			var (
				results   []model.ParsedResult
				scanErrs  []report.ScannerError
				perCtxDur = time.Duration(cfg.TimeoutSec) * time.Second
			)
			for i, c := range contracts {
				logger.Printf("[%d/%d] %s", i+1, len(contracts), c.Name)

				ctx, cancel := context.WithTimeout(cmd.Context(), perCtxDur)
				pr, err := slither.Scan(ctx, c, opts)
				cancel()
				if err != nil {
					logger.Printf("  skipped: %v", err)
					scanErrs = append(scanErrs, report.ScannerError{
						Source:   slither.Tool,
						Contract: c.Name,
						Message:  err.Error(),
					})
					continue
				}
				results = append(results, pr)
			}

			gt, err := groundtruth.Load(cfg.GroundTruth)
			if err != nil {
				return err
			}
			summary := stats.Compute(results, gt)

			meta := report.Meta{
				RunID:         uuid.NewString(),
				Timestamp:     time.Now().UTC().Format(time.RFC3339),
				Tool:          slither.Tool,
				ResultsDir:    cfg.ResultsDir,
				DockerMode:    opts.UseDocker,
				ScannerErrors: scanErrs,
			}
			if err := report.Generate(cfg.ResultsDir, meta, summary); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Analyzed %d/%d contracts: %d findings, detection rate %.1f%% (report in %s)\n",
				len(results), len(contracts), summary.TotalFindings,
				summary.DetectionRate*100, cfg.ResultsDir)

			if len(scanErrs) > 0 {
				return fmt.Errorf("%d contract(s) skipped: %w", len(scanErrs), ErrPartial)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useDocker, "docker", false, "Run Slither inside the eth-security-toolbox container")
	cmd.Flags().StringSliceVar(&remaps, "remap", nil, "Extra solc import remappings (prefix=path)")
	cmd.Flags().StringVar(&contractPath, "contract", "", "Analyze a single .sol file")
	cmd.Flags().StringVar(&category, "category", "", "Analyze one dataset category (path under the dataset dir)")
	return cmd
}

// selectContracts resolves the analyze target to a contract list plus a
// human-readable description of where it came from.
func selectContracts(cfg config.Config, contractPath, category string, args []string) ([]model.Contract, string, error) {
	switch {
	case contractPath != "":
		c, err := model.LoadContract(contractPath)
		if err != nil {
			return nil, contractPath, err
		}
		return []model.Contract{c}, contractPath, nil
	case category != "":
		dir := filepath.Join(cfg.DatasetDir, filepath.FromSlash(category))
		contracts, err := contract.Discover(dir)
		return contracts, dir, err
	case len(args) > 0:
		contracts, err := contract.Discover(args[0])
		return contracts, args[0], err
	default:
		contracts, err := contract.Discover(cfg.DatasetDir)
		return contracts, cfg.DatasetDir, err
	}
}
