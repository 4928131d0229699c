package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/donorlog/internal/donation"
	"github.com/roach88/donorlog/internal/logging"
	"github.com/roach88/donorlog/internal/store"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	ToBackend string
	ToPath    string
}

// ConvertResult is the JSON payload of a conversion.
type ConvertResult struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Backend string `json:"backend"`
	Count   int    `json:"count"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Copy every donation into another store",
		Long: `Copy every donation from the configured store into another store.

The target is fully replaced with the source records in stored order.

The sqlite backend requires unique codes. A text store holding a code more
than once is refused with E002 before the target is touched; delete the
extra rows first.

Examples:
  donorlog convert --to-backend sqlite --to-path ./doacoes.db
  donorlog convert --backend sqlite --storage ./doacoes.db --to-backend file --to-path ./doacoes.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ToBackend, "to-backend", string(store.KindSQLite), "target backend: file|sqlite")
	cmd.Flags().StringVar(&opts.ToPath, "to-path", "", "target store location (required)")
	_ = cmd.MarkFlagRequired("to-path")

	return cmd
}

func runConvert(opts *ConvertOptions, cmd *cobra.Command) error {
	kind, err := store.ParseKind(opts.ToBackend)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --to-backend", err)
	}
	if opts.ToPath == opts.Config.Storage.Path {
		return NewExitError(ExitCommandError, "--to-path must differ from the source store")
	}

	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	reg, source, err := opts.openRegistry()
	if err != nil {
		return formatter.Fail(err)
	}
	defer source.Close()

	records, err := reg.List(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	if kind == store.KindSQLite {
		if code, ok := repeatedCode(records); ok {
			return formatter.Fail(&donation.Error{
				Code:    donation.ErrCodeDuplicateCode,
				Message: fmt.Sprintf("code %d is stored more than once; the sqlite backend requires unique codes", code),
				Path:    source.Path(),
			})
		}
	}

	target, err := store.Open(kind, opts.ToPath)
	if err != nil {
		return formatter.Fail(err)
	}
	defer target.Close()

	if err := target.Init(ctx); err != nil {
		return formatter.Fail(err)
	}
	if err := target.SaveAll(ctx, records); err != nil {
		return formatter.Fail(err)
	}

	logging.FromContext(ctx).Info("store converted",
		"from", source.Path(),
		"to", target.Path(),
		"backend", kind,
		"count", len(records),
	)

	if formatter.Format == "json" {
		return formatter.Success(ConvertResult{
			From:    source.Path(),
			To:      target.Path(),
			Backend: string(kind),
			Count:   len(records),
		})
	}
	fmt.Fprintf(formatter.Writer, "Copied %d donation(s) from %s to %s (%s)\n",
		len(records), source.Path(), target.Path(), kind)
	return nil
}

// repeatedCode returns the first code that appears more than once.
func repeatedCode(records []donation.Record) (int, bool) {
	seen := make(map[int]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.Code]; ok {
			return r.Code, true
		}
		seen[r.Code] = struct{}{}
	}
	return 0, false
}
