package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"slitherbench/internal/dataset"
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the curated contract dataset from block explorers",
		Long: `Fetches the verified Solidity source of every contract in the curated
dataset (one audited baseline plus five exploited contracts) through the
Etherscan v2 API and writes it under the dataset directory, organized by
category.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Etherscan.APIKey == "" {
				return fmt.Errorf("no Etherscan API key configured (etherscan.api_key or ETHERSCAN_API_KEY)")
			}

			logger, closer := newLogger("fetch", cfg)
			defer closer.Close()

			client := dataset.NewEtherscanClient(cfg.Etherscan.APIKey)
			outcomes, err := dataset.FetchAll(cmd.Context(), client, dataset.AllContracts(), cfg.DatasetDir, logger)
			if err != nil {
				return err
			}

			fetched, failed := 0, 0
			for _, o := range outcomes {
				if o.Error != "" {
					failed++
					continue
				}
				fetched++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d contract(s) into %s (%d failed)\n",
				fetched, cfg.DatasetDir, failed)
			if failed > 0 {
				return fmt.Errorf("%d contract(s) failed: %w", failed, ErrPartial)
			}
			return nil
		},
	}
	return cmd
}
