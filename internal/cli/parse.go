package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"slitherbench/internal/model"
	"slitherbench/internal/slither"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Re-parse raw Slither JSON into normalized results",
		Long: `Reads every raw report under <results>/raw/slither and rewrites the
normalized results under <results>/parsed/slither. Useful after changing
the parser without re-running the analyzer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger, closer := newLogger("parse", cfg)
			defer closer.Close()

			rawFiles, err := slither.ListRaw(cfg.RawDir(slither.Tool))
			if err != nil {
				return err
			}
			if len(rawFiles) == 0 {
				return fmt.Errorf("no raw reports under %s (run analyze first)", cfg.RawDir(slither.Tool))
			}

			parsed := 0
			for _, path := range rawFiles {
				data, err := os.ReadFile(path)
				if err != nil {
					logger.Printf("skipping %s: %v", path, err)
					continue
				}
				pr := model.ParsedResult{
					Contract: slither.ContractNameFromRaw(path),
					Tool:     slither.Tool,
					Analysis: slither.Parse(string(data)),
				}
				if err := slither.WriteParsed(cfg.ParsedDir(slither.Tool), pr); err != nil {
					return err
				}
				logger.Printf("%s: %d findings", pr.Contract, pr.Analysis.TotalFindings)
				parsed++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Parsed %d raw report(s) into %s\n",
				parsed, cfg.ParsedDir(slither.Tool))
			return nil
		},
	}
	return cmd
}
