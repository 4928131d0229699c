package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/donorlog/internal/donation"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation rejected (duplicate code, bad date, failed batch step)
	ExitCommandError = 2 // Command error (bad flags, unreadable store, malformed store file)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeDuplicate    = "E002" // Code already in use
	ErrCodeInvalidDate  = "E003" // Birth date not YYYY-MM-DD
	ErrCodeInvalidField = "E004" // Delimiter in a free-text field
	ErrCodeReadFailed   = "E005" // Store cannot be read
	ErrCodeWriteFailed  = "E006" // Store cannot be written
	ErrCodeParseFailed  = "E007" // Malformed stored row
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set when the error was already rendered to stdout.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// MapErrorCode maps a donation error to its CLI error code and exit code.
// Rejected operations exit 1; storage problems exit 2.
func MapErrorCode(err error) (string, int) {
	switch donation.CodeOf(err) {
	case donation.ErrCodeDuplicateCode:
		return ErrCodeDuplicate, ExitFailure
	case donation.ErrCodeInvalidDate:
		return ErrCodeInvalidDate, ExitFailure
	case donation.ErrCodeInvalidField:
		return ErrCodeInvalidField, ExitFailure
	case donation.ErrCodeStorageRead:
		return ErrCodeReadFailed, ExitCommandError
	case donation.ErrCodeStorageWrite:
		return ErrCodeWriteFailed, ExitCommandError
	case donation.ErrCodeRecordParse:
		return ErrCodeParseFailed, ExitCommandError
	default:
		return ErrCodeGeneric, ExitCommandError
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err through the formatter and returns the ExitError the
// command should return.
func (f *OutputFormatter) Fail(err error) error {
	code, exit := MapErrorCode(err)
	_ = f.Error(code, err.Error(), errorDetails(err))
	exitErr := WrapExitError(exit, code, err)
	exitErr.Reported = true
	return exitErr
}

// errorDetails exposes the location of a malformed stored row.
func errorDetails(err error) interface{} {
	var derr *donation.Error
	if !errors.As(err, &derr) || derr.Line == 0 {
		return nil
	}
	return map[string]interface{}{"path": derr.Path, "line": derr.Line}
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
