// Package simerr defines the error taxonomy shared by translation, shot
// execution, and aggregation.
//
// Errors fall into three groups:
//   - construction: CONFIGURATION, never retried
//   - translation: UNKNOWN_OPERATOR, INVALID_LAYER, raised before any process spawn
//   - execution: SIMULATOR_EXECUTION, PARSE, TIMEOUT, retried per shot
package simerr

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes an Error.
type Code string

const (
	// CodeConfiguration covers invalid weights, invalid embeddings, and bad
	// simulator configuration such as a shot count below one.
	CodeConfiguration Code = "CONFIGURATION"

	// CodeUnknownOperator means a circuit label has no lookup-table entry.
	CodeUnknownOperator Code = "UNKNOWN_OPERATOR"

	// CodeInvalidLayer means a layer is malformed: overlapping targets,
	// out-of-range qubits, arity mismatch, or an unavailable placement.
	CodeInvalidLayer Code = "INVALID_LAYER"

	// CodeSimulatorExecution means the external process failed to start or
	// exited non-zero.
	CodeSimulatorExecution Code = "SIMULATOR_EXECUTION"

	// CodeParse means the external process output did not match the schema.
	CodeParse Code = "PARSE"

	// CodeTimeout means a shot exceeded its deadline and was killed.
	CodeTimeout Code = "TIMEOUT"
)

// Codes returns every error code in taxonomy order.
func Codes() []Code {
	return []Code{
		CodeConfiguration,
		CodeUnknownOperator,
		CodeInvalidLayer,
		CodeSimulatorExecution,
		CodeParse,
		CodeTimeout,
	}
}

// Error is the structured error type returned across stabsim packages.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Label is the operator label involved, if any.
	Label string

	// Layer is the zero-based layer index for translation errors, -1 otherwise.
	Layer int

	// Qubit is the register position at fault, -1 when not applicable.
	Qubit int

	// Shot is the zero-based shot index for execution errors, -1 otherwise.
	Shot int

	// Attempts counts executions tried for a shot before giving up.
	Attempts int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var ctx []string
	if e.Label != "" {
		ctx = append(ctx, "label="+e.Label)
	}
	if e.Layer >= 0 {
		ctx = append(ctx, fmt.Sprintf("layer=%d", e.Layer))
	}
	if e.Qubit >= 0 {
		ctx = append(ctx, fmt.Sprintf("qubit=%d", e.Qubit))
	}
	if e.Shot >= 0 {
		ctx = append(ctx, fmt.Sprintf("shot=%d", e.Shot))
	}
	if e.Attempts > 0 {
		ctx = append(ctx, fmt.Sprintf("attempts=%d", e.Attempts))
	}

	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if len(ctx) > 0 {
		msg += " (" + strings.Join(ctx, ", ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with no layer or shot context.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Layer: -1, Qubit: -1, Shot: -1}
}

// Wrap creates an Error around a cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Err = err
	return e
}

// Configuration creates a CONFIGURATION error.
func Configuration(format string, args ...any) *Error {
	return New(CodeConfiguration, format, args...)
}

// UnknownOperator creates an UNKNOWN_OPERATOR error for label in layer.
func UnknownOperator(label string, layer int) *Error {
	e := New(CodeUnknownOperator, "operator label not found in lookup table")
	e.Label = label
	e.Layer = layer
	return e
}

// InvalidLayer creates an INVALID_LAYER error for layer.
func InvalidLayer(layer int, format string, args ...any) *Error {
	e := New(CodeInvalidLayer, format, args...)
	e.Layer = layer
	return e
}

// SharedQubit creates an INVALID_LAYER error for two operators in layer that
// both target qubit.
func SharedQubit(layer, qubit int, first, second string) *Error {
	e := New(CodeInvalidLayer, "operators %s and %s both target the same qubit", first, second)
	e.Layer = layer
	e.Qubit = qubit
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsConfiguration reports whether err is a CONFIGURATION error.
func IsConfiguration(err error) bool { return CodeOf(err) == CodeConfiguration }

// IsUnknownOperator reports whether err is an UNKNOWN_OPERATOR error.
func IsUnknownOperator(err error) bool { return CodeOf(err) == CodeUnknownOperator }

// IsInvalidLayer reports whether err is an INVALID_LAYER error.
func IsInvalidLayer(err error) bool { return CodeOf(err) == CodeInvalidLayer }

// IsSimulatorExecution reports whether err is a SIMULATOR_EXECUTION error.
func IsSimulatorExecution(err error) bool { return CodeOf(err) == CodeSimulatorExecution }

// IsParse reports whether err is a PARSE error.
func IsParse(err error) bool { return CodeOf(err) == CodeParse }

// IsTimeout reports whether err is a TIMEOUT error.
func IsTimeout(err error) bool { return CodeOf(err) == CodeTimeout }

// IsRetryable reports whether err is a per-shot execution failure that may
// succeed on another attempt.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case CodeSimulatorExecution, CodeParse, CodeTimeout:
		return true
	default:
		return false
	}
}

// IsTranslation reports whether err was raised while translating a circuit.
func IsTranslation(err error) bool {
	switch CodeOf(err) {
	case CodeUnknownOperator, CodeInvalidLayer:
		return true
	default:
		return false
	}
}
