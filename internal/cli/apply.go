package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/donorlog/internal/batch"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Filter string // script filter (glob pattern)
}

// ScriptSummary is the outcome of one script file.
type ScriptSummary struct {
	File   string        `json:"file"`
	Pass   bool          `json:"pass"`
	Result *batch.Result `json:"result,omitempty"`
	Errors []string      `json:"errors,omitempty"`
}

// ApplyResult holds the overall apply result.
type ApplyResult struct {
	Scripts []ScriptSummary `json:"scripts"`
	Passed  int             `json:"passed"`
	Failed  int             `json:"failed"`
	Total   int             `json:"total"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <script.yaml | dir>",
		Short: "Run batch scripts of list/insert/delete steps",
		Long: `Run one YAML batch script, or every script in a directory, against the
configured store.

Scripts in a directory run in lexical order against the same store.

Exit codes:
  0 - All steps succeeded
  1 - One or more steps failed
  2 - Command error (missing path, malformed script, etc.)

Examples:
  donorlog apply seed.yaml
  donorlog apply ./scripts --filter "seed-*"
  donorlog apply seed.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scripts by glob pattern")

	return cmd
}

func runApply(opts *ApplyOptions, target string, cmd *cobra.Command) error {
	info, err := os.Stat(target)
	if os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("script path not found: %s", target))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to stat script path", err)
	}

	files := []string{target}
	if info.IsDir() {
		files, err = findScriptFiles(target, opts.Filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scripts", err)
		}
	}

	// Parse everything up front so a typo in a later script aborts before
	// any step has touched the store.
	scripts := make([]*batch.Script, len(files))
	for i, file := range files {
		scripts[i], err = batch.LoadScript(file)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid script %s", file), err)
		}
	}

	formatter := opts.formatter(cmd)

	if len(scripts) == 0 {
		if opts.Format == "json" {
			return outputApplyJSON(cmd, ApplyResult{Scripts: []ScriptSummary{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scripts found.")
		return nil
	}

	reg, backend, err := opts.openRegistry()
	if err != nil {
		return formatter.Fail(err)
	}
	defer backend.Close()

	result := ApplyResult{
		Scripts: make([]ScriptSummary, 0, len(scripts)),
		Total:   len(scripts),
	}

	for i, script := range scripts {
		formatter.VerboseLog("Running %s (%d step(s))", files[i], len(script.Steps))

		res, err := batch.Run(cmd.Context(), reg, script)
		if err != nil {
			return WrapExitError(ExitCommandError, "apply interrupted", err)
		}

		summary := ScriptSummary{File: files[i], Result: res, Pass: res.Failed == 0}
		for _, sr := range res.Steps {
			if !sr.OK() {
				summary.Errors = append(summary.Errors, fmt.Sprintf("step %d (%s): %s", sr.Step, sr.Op, sr.Error))
			}
		}
		if opts.Format != "json" {
			writeScriptText(cmd, script.Name, summary)
		}

		result.Scripts = append(result.Scripts, summary)
		if summary.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputApplyJSON(cmd, result)
	}
	return outputApplyText(cmd, result)
}

// findScriptFiles finds all YAML script files under dir in lexical order.
func findScriptFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		// Apply filter if specified
		if filter != "" {
			base := filepath.Base(path)
			name := strings.TrimSuffix(base, ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

func writeScriptText(cmd *cobra.Command, name string, summary ScriptSummary) {
	w := cmd.OutOrStdout()
	if summary.Pass {
		fmt.Fprintf(w, "✓ %s (%d step(s))\n", name, len(summary.Result.Steps))
		return
	}
	fmt.Fprintf(w, "✗ %s\n", name)
	for _, e := range summary.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// outputApplyJSON outputs the apply result as JSON.
func outputApplyJSON(cmd *cobra.Command, result ApplyResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("%d script(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d script(s) failed", result.Failed))
	}
	return nil
}

// outputApplyText outputs the apply summary as text.
func outputApplyText(cmd *cobra.Command, result ApplyResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Apply Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d script(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scripts applied")
	return nil
}
