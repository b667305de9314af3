package cli

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/tablecore/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Tables []TableSummary             `json:"tables,omitempty"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// TableSummary describes one table that passed validation.
type TableSummary struct {
	Name        string `json:"name"`
	Columns     int    `json:"columns"`
	Fingerprint string `json:"fingerprint"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <definition>",
		Short: "Validate table definitions without loading data",
		Long: `Validate CUE table definitions without building a table.

Checks CUE syntax, the definition schema, and column and option rules.
The definition may be a .cue file or a directory of CUE files.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, defPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	specs, err := LoadDefinitions(defPath)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Code == ErrCodeNotFound {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
		// Anything the compiler rejected is a validation failure.
		return outputValidationErrors(formatter, []compiler.ValidationError{loadValidationError(err)})
	}

	var (
		summaries []TableSummary
		allErrors []compiler.ValidationError
	)
	for _, spec := range specs {
		formatter.VerboseLog("Validating table: %s", spec.Name)
		errs := compiler.Validate(spec)
		for _, e := range errs {
			e.Field = fmt.Sprintf("table.%s.%s", spec.Name, e.Field)
			allErrors = append(allErrors, e)
		}
		if len(errs) > 0 {
			continue
		}
		fp, err := spec.Hash()
		if err != nil {
			return outputValidateError(formatter, ErrCodeGeneric, fmt.Sprintf("fingerprint %s: %v", spec.Name, err))
		}
		summaries = append(summaries, TableSummary{Name: spec.Name, Columns: len(spec.Columns), Fingerprint: fp})
	}

	if len(allErrors) > 0 {
		return outputValidationErrors(formatter, allErrors)
	}
	return outputValidateSuccess(formatter, summaries)
}

// loadValidationError turns a compile failure into a ValidationError
// carrying the CUE line when there is one.
func loadValidationError(err error) compiler.ValidationError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return compiler.ValidationError{
			Field:   "load",
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    lineOf(loadErr.Pos),
		}
	}
	return compiler.ValidationError{Field: "load", Message: err.Error(), Code: ErrCodeGeneric}
}

func lineOf(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, tables []TableSummary) error {
	if formatter.IsJSON() {
		return formatter.Success(ValidationResult{Valid: true, Tables: tables})
	}

	for _, t := range tables {
		fmt.Fprintf(formatter.Writer, "✓ %s (%d columns, %s)\n", t.Name, t.Columns, shortFingerprint(t.Fingerprint))
	}
	fmt.Fprintln(formatter.Writer, "✓ All tables valid")
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.IsJSON() {
		err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		})
		if err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return failure
}
