package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"slitherbench/internal/analyst"
	"slitherbench/internal/groundtruth"
	"slitherbench/internal/slither"
	"slitherbench/internal/stats"
	"slitherbench/internal/storage"
)

func newStatsCmd() *cobra.Command {
	var (
		writeCSV  bool
		summarize bool
		upload    bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Compute detection statistics against the ground truth",
		Long: `Loads the parsed results and the ground truth labels, computes
per-contract and overall detection rates, and prints the summary as JSON.
Optionally exports CSV tables, asks a language model for an
interpretation, and archives the results directory to object storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger, closer := newLogger("stats", cfg)
			defer closer.Close()

			results, err := slither.LoadParsedDir(cfg.ParsedDir(slither.Tool))
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("no parsed results under %s (run analyze or parse first)", cfg.ParsedDir(slither.Tool))
			}

			gt, err := groundtruth.Load(cfg.GroundTruth)
			if err != nil {
				return err
			}
			if len(gt) == 0 {
				logger.Printf("warning: no ground truth at %s; detection rates will be empty", cfg.GroundTruth)
			}

			summary := stats.Compute(results, gt)

			data, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))

			summaryPath := filepath.Join(cfg.ResultsDir, "statistics.json")
			if err := os.WriteFile(summaryPath, data, 0644); err != nil {
				return err
			}

			if writeCSV {
				csvDir := filepath.Join(cfg.ResultsDir, "csv")
				if err := stats.WriteCSVs(csvDir, summary); err != nil {
					return err
				}
				logger.Printf("CSV tables written to %s", csvDir)
			}

			if summarize {
				if cfg.OpenAI.APIKey == "" {
					return fmt.Errorf("no OpenAI API key configured (openai.api_key or OPENAI_API_KEY)")
				}
				client := analyst.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
				interp, err := client.Summarize(cmd.Context(), summary)
				if err != nil {
					return fmt.Errorf("summarize: %w", err)
				}
				out, err := json.MarshalIndent(interp, "", "  ")
				if err != nil {
					return err
				}
				interpPath := filepath.Join(cfg.ResultsDir, "interpretation.json")
				if err := os.WriteFile(interpPath, out, 0644); err != nil {
					return err
				}
				logger.Printf("interpretation written to %s", interpPath)
				fmt.Fprintln(cmd.OutOrStdout(), interp.Headline)
			}

			if upload {
				if cfg.Minio.Endpoint == "" {
					return fmt.Errorf("no MinIO endpoint configured")
				}
				store, err := storage.New(cmd.Context(), cfg.Minio.Endpoint, cfg.Minio.BucketName,
					cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
				if err != nil {
					return fmt.Errorf("connect object storage: %w", err)
				}
				prefix := "runs/" + time.Now().UTC().Format("20060102_150405")
				n, err := store.UploadDir(cmd.Context(), cfg.ResultsDir, prefix, logger)
				if err != nil {
					return fmt.Errorf("archive results: %w", err)
				}
				logger.Printf("archived %d file(s) under %s", n, prefix)
			}

			return nil
		},
	}
	cmd.Flags().BoolVar(&writeCSV, "csv", false, "Export severity/check/contract tables as CSV")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "Ask the configured language model to interpret the results")
	cmd.Flags().BoolVar(&upload, "upload", false, "Archive the results directory to object storage")
	return cmd
}
