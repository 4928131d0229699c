package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/donorlog/internal/donation"
)

// InsertOptions holds flags for the insert command.
type InsertOptions struct {
	*RootOptions
	Fields donation.Fields
}

// InsertResult is the JSON payload of a successful insert.
type InsertResult struct {
	Inserted donation.Fields `json:"inserted"`
	ListResult
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Add a donation",
		Long: `Add a donation to the end of the store.

The code must not be in use and the birth date must be YYYY-MM-DD.
Name, national ID and blood type may not contain commas or line breaks.

Exit codes:
  0 - Donation stored
  1 - Rejected (duplicate code, invalid date or field)
  2 - Command error (store unreadable or unwritable)

Example:
  donorlog insert --code 2 --name Bruno --national-id 222 \
    --birth-date 1985-11-20 --blood-type A- --volume 500`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Fields.Code, "code", 0, "donation code (unique)")
	cmd.Flags().StringVar(&opts.Fields.Name, "name", "", "donor name")
	cmd.Flags().StringVar(&opts.Fields.NationalID, "national-id", "", "donor national ID")
	cmd.Flags().StringVar(&opts.Fields.BirthDate, "birth-date", "", "birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Fields.BloodType, "blood-type", "", "blood type, e.g. O+")
	cmd.Flags().IntVar(&opts.Fields.Volume, "volume", 0, "volume donated in ml")

	for _, name := range []string{"code", "name", "national-id", "birth-date", "blood-type", "volume"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runInsert(opts *InsertOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	reg, backend, err := opts.openRegistry()
	if err != nil {
		return formatter.Fail(err)
	}
	defer backend.Close()

	ctx := cmd.Context()
	rec, err := reg.Insert(ctx, opts.Fields)
	if err != nil {
		return formatter.Fail(err)
	}

	records, err := reg.List(ctx)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(InsertResult{
			Inserted:   rec.Fields(),
			ListResult: newListResult(records),
		})
	}

	fmt.Fprintf(formatter.Writer, "Donation %d inserted.\n\n", rec.Code)
	return writeTable(formatter.Writer, records)
}
