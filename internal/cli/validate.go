package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/stabsim/internal/model"
	"github.com/roach88/stabsim/internal/oprep"
)

// OperatorInfo summarizes one loaded operator.
type OperatorInfo struct {
	Label         string `json:"label"`
	Arity         int    `json:"arity"`
	Deterministic bool   `json:"deterministic"`
	Form          string `json:"form"`
}

// ValidationError locates a model error.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Operators []OperatorInfo    `json:"operators,omitempty"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

func (r ValidationResult) String() string {
	var b strings.Builder
	if !r.Valid {
		for _, e := range r.Errors {
			if e.Line > 0 {
				fmt.Fprintf(&b, "%s:%d: ", e.File, e.Line)
			}
			if e.Field != "" {
				fmt.Fprintf(&b, "%s: ", e.Field)
			}
			fmt.Fprintln(&b, e.Message)
		}
		return b.String()
	}
	fmt.Fprintf(&b, "✓ %d operator(s)\n", len(r.Operators))
	for _, op := range r.Operators {
		fmt.Fprintf(&b, "  %s/%d %s\n", op.Label, op.Arity, op.Form)
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <model-dir>",
		Short: "Check a CUE operator model",
		Long: `Load a directory of CUE operator definitions and report every operator
it defines, or the first error with its source position.

Exit codes:
  0 - The model is valid
  2 - The model could not be loaded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Errors are reported through the formatter
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	table, err := model.LoadDir(dir)
	if err != nil {
		result := ValidationResult{Errors: []ValidationError{validationError(err)}}
		if formatter.JSON() {
			_ = formatter.encode(CLIResponse{
				Status: "error",
				Data:   result,
				Error:  &CLIError{Code: errorCode(err), Message: err.Error()},
			})
		} else {
			_ = formatter.Success(result)
		}
		return WrapExitError(ExitCommandError, "invalid model", err)
	}

	result := ValidationResult{Valid: true}
	for _, label := range table.Labels() {
		rep := table[label]
		formatter.VerboseLog("validated operator %s", label)
		result.Operators = append(result.Operators, OperatorInfo{
			Label:         label,
			Arity:         rep.Arity(),
			Deterministic: oprep.IsDeterministic(rep),
			Form:          oprep.Describe(rep),
		})
	}
	return formatter.Success(result)
}

// validationError extracts the source position from a model error when it
// has one.
func validationError(err error) ValidationError {
	var ce *model.CompileError
	if !errors.As(err, &ce) {
		return ValidationError{Message: err.Error()}
	}
	ve := ValidationError{Field: ce.Field, Message: ce.Message}
	if ce.Pos.IsValid() {
		ve.File = ce.Pos.Filename()
		ve.Line = ce.Pos.Line()
	}
	return ve
}
