package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"slitherbench/internal/solcver"
)

func newSolcCmd() *cobra.Command {
	var install bool
	cmd := &cobra.Command{
		Use:   "solc",
		Short: "Check or install the solc versions the dataset needs",
		Long: `Compares the solc versions installed through solc-select against the
set required to compile every pragma in the curated dataset, and
optionally installs the missing ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if !solcver.Available() {
				return fmt.Errorf("solc-select not found on PATH (pip install solc-select)")
			}

			logger, closer := newLogger("solc", cfg)
			defer closer.Close()

			if install {
				done, err := solcver.InstallMissing(cmd.Context(), logger)
				if err != nil {
					return err
				}
				if len(done) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "All required solc versions already installed")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Installed: %s\n", strings.Join(done, ", "))
				return nil
			}

			installed, err := solcver.Installed(cmd.Context())
			if err != nil {
				return err
			}
			missing := solcver.Missing(installed)
			fmt.Fprintf(cmd.OutOrStdout(), "Installed: %d, required: %d\n", len(installed), len(solcver.Required))
			if len(missing) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Missing: %s (run with --install)\n", strings.Join(missing, ", "))
				return ErrPartial
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&install, "install", false, "Install the missing versions")
	return cmd
}
