package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bytedance/sonic"

	"github.com/roach88/invitations/internal/invite"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected operation or failed scenario
	ExitCommandError = 2 // Command error (bad config, database unavailable, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // invite error code or E_* for CLI errors
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// CLI-level error codes. Engine failures use their invite.ErrorCode.
const (
	ErrCodeConfig  = "E_CONFIG"
	ErrCodeArgs    = "E_ARGS"
	ErrCodeGeneric = "E_GENERIC"
)

func (f *OutputFormatter) encode(v any) error {
	enc := sonic.ConfigStd.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Records outputs records as a JSON list or a text table.
func (f *OutputFormatter) Records(recs []invite.Record) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: recs})
	}
	if len(recs) == 0 {
		fmt.Fprintln(f.Writer, "No records.")
		return nil
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tINVITEE\tINVITER\tKEY\tSENT\tACCEPTED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s/%s/%d/%d\t%t\t%t\n",
			r.ID, r.Type, r.Identity(), r.InviterID,
			r.ComponentName, r.ComponentAction, r.ItemID, r.SecondaryItemID,
			r.InviteSent, r.Accepted)
	}
	return tw.Flush()
}

// Count outputs the number of records an operation affected.
func (f *OutputFormatter) Count(op string, n int) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: map[string]any{"op": op, "records": n}})
	}
	fmt.Fprintf(f.Writer, "%s: %d record(s)\n", op, n)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should end with.
// Rejections by the engine exit with ExitFailure, everything else with
// ExitCommandError.
func (f *OutputFormatter) Fail(message string, err error) error {
	code := string(invite.CodeOf(err))
	exit := ExitFailure
	switch code {
	case "":
		code = ErrCodeGeneric
		exit = ExitCommandError
	case string(invite.CodeStorage):
		exit = ExitCommandError
	}
	if outErr := f.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(exit, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
