package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"slitherbench/internal/extract"
	"slitherbench/internal/slither"
)

func newExtractCmd() *cobra.Command {
	var (
		contractName string
		outPath      string
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Write a plain-text summary of parsed findings",
		Long: `Formats the parsed results into the fixed-width text summary used in
the thesis appendix: per-contract sections grouped by severity and check
type, followed by aggregate counts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			results, err := slither.LoadParsedDir(cfg.ParsedDir(slither.Tool))
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("no parsed results under %s (run analyze or parse first)", cfg.ParsedDir(slither.Tool))
			}

			if outPath != "" {
				if err := extract.Extract(results, contractName, outPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Summary written to %s\n", outPath)
				return nil
			}
			results, err = extract.Filter(results, contractName)
			if err != nil {
				return err
			}
			return extract.WriteSummary(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&contractName, "contract", "", "Summarize only this contract")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the summary to a file instead of stdout")
	return cmd
}
