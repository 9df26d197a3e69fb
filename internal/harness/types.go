package harness

import (
	"github.com/roach88/stabsim/internal/ir"
	"github.com/roach88/stabsim/internal/outcome"
)

// Result is the outcome of running one scenario.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Program is the translated program, nil when translation failed.
	Program *ir.Program `json:"program,omitempty"`

	// Distribution is what was compared against Expect, after marginalizing.
	Distribution *outcome.Distribution `json:"distribution,omitempty"`

	// Err is the simulation error, if any. It fails the scenario unless it
	// matches ExpectError.
	Err error `json:"-"`

	// Errors lists every failed expectation. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
