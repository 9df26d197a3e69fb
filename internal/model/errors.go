package model

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/stabsim/internal/simerr"
)

// CompileError is an operator model error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// configErr wraps a compile error as CONFIGURATION so callers can branch on
// the code and still reach the position with errors.As.
func configErr(field string, pos token.Pos, format string, args ...any) error {
	ce := &CompileError{Field: field, Message: fmt.Sprintf(format, args...), Pos: pos}
	return simerr.Wrap(simerr.CodeConfiguration, ce, "invalid operator model")
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(field string, err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return simerr.Wrap(simerr.CodeConfiguration, err, "invalid operator model")
	}

	// Report the first one, with its position if it has one
	first := errs[0]
	var pos token.Pos
	if positions := errors.Positions(first); len(positions) > 0 {
		pos = positions[0]
	}
	return configErr(field, pos, "%s", first.Error())
}
