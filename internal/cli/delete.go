package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// DeleteResult is the JSON payload of a delete.
type DeleteResult struct {
	Code    int  `json:"code"`
	Removed bool `json:"removed"`
	ListResult
}

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Code int
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <code> | --code <code>",
		Short: "Remove the donation with the given code",
		Long: `Remove every donation with the given code and rewrite the store.

Deleting a code that is not stored is not an error; the store is
rewritten unchanged.

A negative code looks like a flag when given as an argument; pass it
with --code or after --.

Examples:
  donorlog delete 1
  donorlog delete --code -7
  donorlog delete -- -7`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := deleteCode(cmd, opts, args)
			if err != nil {
				return err
			}
			return runDelete(rootOpts, code, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Code, "code", 0, "code of the donation to delete")

	return cmd
}

// deleteCode takes the code from --code or the single argument, not both.
func deleteCode(cmd *cobra.Command, opts *DeleteOptions, args []string) (int, error) {
	flagSet := cmd.Flags().Changed("code")
	switch {
	case flagSet && len(args) > 0:
		return 0, NewExitError(ExitCommandError, "give the code either as an argument or with --code, not both")
	case flagSet:
		return opts.Code, nil
	case len(args) == 0:
		return 0, NewExitError(ExitCommandError, "missing code: pass it as an argument or with --code")
	}
	code, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid code %q: must be an integer", args[0]))
	}
	return code, nil
}

func runDelete(opts *RootOptions, code int, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	reg, backend, err := opts.openRegistry()
	if err != nil {
		return formatter.Fail(err)
	}
	defer backend.Close()

	ctx := cmd.Context()
	removed, err := reg.Delete(ctx, code)
	if err != nil {
		return formatter.Fail(err)
	}

	records, err := reg.List(ctx)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(DeleteResult{
			Code:       code,
			Removed:    removed,
			ListResult: newListResult(records),
		})
	}

	if removed {
		fmt.Fprintf(formatter.Writer, "Donation %d deleted.\n\n", code)
	} else {
		fmt.Fprintf(formatter.Writer, "No donation with code %d; store unchanged.\n\n", code)
	}
	return writeTable(formatter.Writer, records)
}
