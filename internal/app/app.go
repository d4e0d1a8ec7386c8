package app

import (
	"github.com/spf13/cobra"

	"slitherbench/internal/cli"
)

// BuildRoot assembles the command tree.
func BuildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "slitherbench",
		Short:         "Benchmark Slither against a labeled smart contract exploit dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.AddCommands(root)
	return root
}
