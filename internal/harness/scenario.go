package harness

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/stabsim/internal/circuit"
	"github.com/roach88/stabsim/internal/simerr"
)

// ModelStandard selects the built-in standard gate table.
const ModelStandard = "standard"

// Scenario is one calibration check.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description,omitempty"`

	// Model is ModelStandard (the default) or a directory of CUE operator
	// definitions, relative to the scenario file.
	Model string `yaml:"model,omitempty"`

	// Noise attaches depolarizing noise of this strength to every operator.
	Noise float64 `yaml:"noise,omitempty"`

	// Circuit is given inline, as a string or as layers.
	circuit.File `yaml:",inline"`

	// Shots is the number of executions. Required.
	Shots int `yaml:"shots"`

	// Seed fixes the in-process simulator's random stream and noise seeds.
	Seed int64 `yaml:"seed,omitempty"`

	// Marginal restricts the comparison to these qubits, in this order.
	Marginal []int `yaml:"marginal,omitempty"`

	// Expect maps bitstrings to probabilities. Outcomes not listed are
	// expected to have probability zero.
	Expect map[string]float64 `yaml:"expect,omitempty"`

	// Tolerance is the allowed absolute difference per outcome. Zero means
	// the probabilities must match exactly.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// ExpectError is an error code the run must fail with, e.g. INVALID_LAYER.
	ExpectError string `yaml:"expect_error,omitempty"`

	// dir is the directory relative model paths resolve against.
	dir string
}

// LoadScenario reads and validates a scenario YAML file. Unknown fields are
// rejected so typos do not silently disable checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// ParseScenario decodes and validates scenario YAML. Relative model paths
// resolve against the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// ModelPath returns the CUE directory the scenario loads, or "" for the
// standard gate table.
func (s *Scenario) ModelPath() string {
	if s.Model == "" || s.Model == ModelStandard {
		return ""
	}
	if filepath.IsAbs(s.Model) {
		return s.Model
	}
	return filepath.Join(s.dir, s.Model)
}

// validateScenario checks what can be checked without building the model.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.File.Circuit == "" && s.File.Layers == nil {
		return fmt.Errorf("circuit or layers is required")
	}
	if s.Shots < 1 {
		return fmt.Errorf("shots must be >= 1, got %d", s.Shots)
	}
	if s.Noise < 0 || s.Noise > 1 {
		return fmt.Errorf("noise must be in [0,1], got %g", s.Noise)
	}
	if s.Tolerance < 0 || s.Tolerance > 1 {
		return fmt.Errorf("tolerance must be in [0,1], got %g", s.Tolerance)
	}

	if s.ExpectError != "" {
		if !slices.Contains(simerr.Codes(), simerr.Code(s.ExpectError)) {
			return fmt.Errorf("expect_error: unknown error code %q", s.ExpectError)
		}
		if len(s.Expect) > 0 {
			return fmt.Errorf("expect and expect_error are mutually exclusive")
		}
		return nil
	}

	if len(s.Expect) == 0 {
		return fmt.Errorf("expect or expect_error is required")
	}
	total := 0.0
	for key, p := range s.Expect {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return fmt.Errorf("expect[%q]: probability must be in [0,1], got %g", key, p)
		}
		for _, ch := range key {
			if ch != '0' && ch != '1' {
				return fmt.Errorf("expect[%q]: outcome must be a bitstring", key)
			}
		}
		total += p
	}
	if math.Abs(total-1) > 1e-9 {
		return fmt.Errorf("expect: probabilities sum to %g, want 1", total)
	}
	return nil
}
