package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"slitherbench/internal/dataset"
)

func newRektsCmd() *cobra.Command {
	var (
		outDir   string
		maxPages int
	)
	cmd := &cobra.Command{
		Use:   "rekts",
		Short: "Export the De.Fi exploit incident database",
		Long: `Pages through the De.Fi rekts GraphQL API and exports every recorded
DeFi exploit incident as CSV and JSON. Progress is checkpointed after
each page, so an interrupted or rate-limited export resumes where it
stopped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DeFi.APIKey == "" {
				return fmt.Errorf("no De.Fi API key configured (defi.api_key or DEFI_API_KEY)")
			}

			logger, closer := newLogger("rekts", cfg)
			defer closer.Close()

			if outDir == "" {
				outDir = filepath.Join(cfg.DatasetDir, "..", "rekts")
			}
			client := dataset.NewDeFiClient(cfg.DeFi.APIKey)
			if err := dataset.ExportRekts(cmd.Context(), client, outDir, maxPages, logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Incident database exported to %s\n", outDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default <dataset>/../rekts)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "Stop after this many pages (0 = all)")
	return cmd
}
