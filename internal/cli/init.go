package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty store",
		Long: `Create an empty store at the configured location.

For the file backend this creates the file (and its directory). For the
SQLite backend it creates the database and schema. Existing records are
never touched.

Example:
  donorlog init --storage ./data/doacoes.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	_, backend, err := opts.openRegistry()
	if err != nil {
		return formatter.Fail(err)
	}
	defer backend.Close()

	if err := backend.Init(cmd.Context()); err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{
			"path":    backend.Path(),
			"backend": opts.Config.Storage.Backend,
		})
	}
	fmt.Fprintf(formatter.Writer, "Store ready at %s (%s)\n", backend.Path(), opts.Config.Storage.Backend)
	return nil
}
