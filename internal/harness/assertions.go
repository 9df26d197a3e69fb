package harness

import (
	"fmt"
	"math"
	"slices"

	"github.com/roach88/stabsim/internal/outcome"
	"github.com/roach88/stabsim/internal/simerr"
)

// exactSlack absorbs float rounding when Tolerance is zero.
const exactSlack = 1e-9

// checkError compares a run's error with ExpectError.
func checkError(s *Scenario, err error) []string {
	if s.ExpectError == "" {
		if err != nil {
			return []string{fmt.Sprintf("simulation failed: %v", err)}
		}
		return nil
	}

	want := simerr.Code(s.ExpectError)
	switch {
	case err == nil:
		return []string{fmt.Sprintf("expected %s error, run succeeded", want)}
	case simerr.CodeOf(err) != want:
		return []string{fmt.Sprintf("expected %s error, got: %v", want, err)}
	}
	return nil
}

// checkDistribution compares every outcome that is either expected or
// observed. Messages are sorted by bitstring.
func checkDistribution(s *Scenario, d *outcome.Distribution) []string {
	var errs []string
	width := len(d.Qubits)

	keys := d.Outcomes()
	for key := range s.Expect {
		if len(key) != width {
			errs = append(errs, fmt.Sprintf("expect[%q]: has %d bit(s), distribution covers %d qubit(s)", key, len(key), width))
			continue
		}
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(errs)
	slices.Sort(keys)

	for _, key := range keys {
		got, want := d.Prob(key), s.Expect[key]
		if math.Abs(got-want) > s.Tolerance+exactSlack {
			errs = append(errs, fmt.Sprintf("outcome %s: got %.4f, want %.4f ± %g", key, got, want, s.Tolerance))
		}
	}
	return errs
}
