package cli

import (
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every stored donation",
		Long: `Show every stored donation in stored order.

Examples:
  donorlog list
  donorlog list --storage ./doacoes.csv
  donorlog list --backend sqlite --storage ./doacoes.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	reg, backend, err := opts.openRegistry()
	if err != nil {
		return formatter.Fail(err)
	}
	defer backend.Close()

	records, err := reg.List(cmd.Context())
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(newListResult(records))
	}
	return writeTable(formatter.Writer, records)
}
