package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/donorlog/internal/donation"
	"github.com/roach88/donorlog/internal/registry"
)

// NewMenuCommand creates the menu command.
func NewMenuCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu",
		Long: `Run the interactive menu on standard input.

Options:
  1 - list donations
  2 - insert a donation (asks again for the code while it is in use)
  3 - delete a donation by code
  4 - exit

End of input also exits. Errors are reported and the menu continues.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(rootOpts, cmd)
		},
	}
}

func runMenu(opts *RootOptions, cmd *cobra.Command) error {
	reg, backend, err := opts.openRegistry()
	if err != nil {
		return opts.formatter(cmd).Fail(err)
	}
	defer backend.Close()

	m := &menu{
		reg: reg,
		in:  bufio.NewScanner(cmd.InOrStdin()),
		out: cmd.OutOrStdout(),
	}
	return m.run(cmd.Context())
}

// menu is one interactive session. Output is always text.
type menu struct {
	reg *registry.Registry
	in  *bufio.Scanner
	out io.Writer
}

const menuText = `----- MENU -----
1. List donations
2. Insert donation
3. Delete donation by code
4. Exit
`

func (m *menu) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(m.out, menuText)
		choice, err := m.prompt("Choose an option: ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(m.out)
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = m.list(ctx)
		case "2":
			err = m.insert(ctx)
		case "3":
			err = m.delete(ctx)
		case "4":
			fmt.Fprintln(m.out, "Goodbye.")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid option. Try again.")
			continue
		}

		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(m.out)
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			m.report(err)
		}
	}
}

func (m *menu) list(ctx context.Context) error {
	records, err := m.reg.List(ctx)
	if err != nil {
		return err
	}
	return writeTable(m.out, records)
}

func (m *menu) insert(ctx context.Context) error {
	fmt.Fprintln(m.out, "Enter the new donation:")

	code, err := m.freshCode(ctx)
	if err != nil {
		return err
	}

	f := donation.Fields{Code: code}
	if f.Name, err = m.prompt("Name: "); err != nil {
		return err
	}
	if f.NationalID, err = m.prompt("National ID: "); err != nil {
		return err
	}
	if f.BirthDate, err = m.prompt("Birth date (YYYY-MM-DD): "); err != nil {
		return err
	}
	if !donation.ValidDate(f.BirthDate) {
		fmt.Fprintln(m.out, "Invalid date format. Use YYYY-MM-DD.")
		return nil
	}
	if f.BloodType, err = m.prompt("Blood type: "); err != nil {
		return err
	}
	if f.Volume, err = m.promptInt("Volume (ml): ", "volume"); err != nil {
		return err
	}

	for {
		_, err = m.reg.Insert(ctx, f)
		if !donation.IsDuplicateCode(err) {
			break
		}
		// The code was taken after it was checked.
		fmt.Fprintln(m.out, "Code already in use. Enter another code.")
		if f.Code, err = m.freshCode(ctx); err != nil {
			return err
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(m.out, "Donation inserted.")
	fmt.Fprintln(m.out)
	return m.list(ctx)
}

// freshCode prompts until the user enters a code that is not stored.
func (m *menu) freshCode(ctx context.Context) (int, error) {
	for {
		code, err := m.promptInt("Code: ", "code")
		if err != nil {
			return 0, err
		}
		_, taken, err := m.reg.Find(ctx, code)
		if err != nil {
			return 0, err
		}
		if !taken {
			return code, nil
		}
		fmt.Fprintln(m.out, "Code already in use. Enter another code.")
	}
}

func (m *menu) delete(ctx context.Context) error {
	code, err := m.promptInt("Code of the donation to delete: ", "code")
	if err != nil {
		return err
	}

	removed, err := m.reg.Delete(ctx, code)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintf(m.out, "Donation %d deleted.\n", code)
	} else {
		fmt.Fprintf(m.out, "No donation with code %d; store unchanged.\n", code)
	}
	fmt.Fprintln(m.out)
	return m.list(ctx)
}

// prompt writes label and reads one line. It returns io.EOF when input ends.
func (m *menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *menu) promptInt(label, what string) (int, error) {
	text, err := m.prompt(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", what, text)
	}
	return n, nil
}

func (m *menu) report(err error) {
	code, _ := MapErrorCode(err)
	f := &OutputFormatter{Format: "text", Writer: m.out}
	_ = f.Error(code, err.Error(), nil)
}
