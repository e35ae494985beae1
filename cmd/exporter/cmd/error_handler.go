package cmd

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"finance-export-service/pkg/errors"
	"finance-export-service/pkg/logger"

	"github.com/spf13/viper"
)

// ExitError carries a process exit code out of a command's RunE so that
// main can terminate with it after the handler has printed the details.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints a user-facing explanation of err and returns the
// exit code the process should terminate with
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if exportErr, ok := errors.AsExportError(err); ok {
		return h.handleExportError(exportErr)
	}

	return h.handleGenericError(err)
}

// handleExportError handles ExportError with detailed context
func (h *CLIErrorHandler) handleExportError(err *errors.ExportError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	// Show underlying error in verbose mode
	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-ExportError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 3
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 3
	}

	if h.isDiskFullError(err) {
		fmt.Fprintf(os.Stderr, "Error: Insufficient disk space\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Free up disk space and try again\n")
		return 3
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if !h.verbose {
		fmt.Fprintf(os.Stderr, "\nFor more details, run with the --verbose flag\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryValidation:
		return `Validation error help:
• Check that the report type is one of: default, audit, budget, category, tag, double
• Verify date formats use YYYY-MM-DD and the start date is not after the end date
• Ensure at least one account id is passed with --accounts
• Dimension reports need matching selector flags (--budgets, --categories, --tags)`

	case errors.CategoryFile:
		return `File error help:
• Check if the journal file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Ensure the output directory is writable
• Check available disk space before exporting again`

	case errors.CategoryCollection:
		return `Collection error help:
• Verify the journal CSV has the expected column headers
• Check that amounts are decimal numbers without currency symbols
• Ensure dates in the journal use a supported format
• Sections that fail individually still appear in the workbook as placeholders`

	case errors.CategoryChart:
		return `Chart error help:
• Charts with no underlying data are skipped, not fatal
• Check that the selected period actually contains journal entries
• Try the default report type to confirm the journal file parses cleanly`

	case errors.CategoryWorkbook:
		return `Workbook error help:
• Check available disk space and memory
• Verify no other process holds the output file open
• Try exporting to a different output directory`

	default:
		return `For more help:
• Use 'exporter --help' for general help
• Use 'exporter export --help' for command-specific help
• Run with --verbose for detailed error information`
	}
}

// Error detection helpers

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}

func (h *CLIErrorHandler) isDiskFullError(err error) bool {
	if err == syscall.ENOSPC {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left") ||
		strings.Contains(errStr, "disk full") ||
		strings.Contains(errStr, "device full")
}
