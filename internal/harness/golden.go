package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/stabsim/internal/chp"
)

// RunWithGolden runs a scenario, requires it to pass, and compares its
// translated program with testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) *Result {
	t.Helper()

	result, err := Run(context.Background(), scenario, opts...)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	if !result.Pass {
		t.Errorf("scenario %s failed:", scenario.Name)
		for _, msg := range result.Errors {
			t.Errorf("  %s", msg)
		}
	}
	if result.Program != nil {
		AssertGolden(t, scenario.Name, result)
	}
	return result
}

// AssertGolden compares result's program, in simulator grammar, with the
// golden file called name. Fails the test when the result has no program.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	if result.Program == nil {
		t.Fatalf("scenario %s produced no program", name)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, chp.Encode(result.Program))
}
