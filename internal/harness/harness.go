package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/stabsim/internal/chp"
	"github.com/roach88/stabsim/internal/circuit"
	"github.com/roach88/stabsim/internal/engine"
	"github.com/roach88/stabsim/internal/model"
	"github.com/roach88/stabsim/internal/oprep"
	"github.com/roach88/stabsim/internal/outcome"
	"github.com/roach88/stabsim/internal/testutil"
)

// Option configures a scenario run.
type Option func(*Harness)

// WithExecutable runs shots on an external simulator instead of in process.
func WithExecutable(exe string, args ...string) Option {
	return func(h *Harness) {
		h.exe = exe
		h.args = args
	}
}

// WithRunner runs shots on r.
func WithRunner(r chp.Runner) Option {
	return func(h *Harness) {
		h.runner = r
	}
}

// WithLogger replaces the default discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Harness holds the per-run settings.
type Harness struct {
	exe    string
	args   []string
	runner chp.Runner
	logger *slog.Logger
}

// Run executes a scenario and evaluates its expectations.
//
// Execution flow:
//  1. Build the operator table (standard gates or CUE model, plus noise)
//  2. Build the circuit
//  3. Run it on a fresh Simulator
//  4. Compare the error or the distribution with the scenario
//
// A returned error means the scenario itself is unusable, e.g. its circuit
// does not parse. Simulation failures land in Result.Err and are judged
// against ExpectError.
func Run(ctx context.Context, s *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	c, err := s.File.Build()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: circuit: %w", s.Name, err)
	}

	result := NewResult()
	res, err := h.simulate(ctx, s, c)
	if err == nil {
		result.Program = res.Program
		result.Distribution, err = compared(s, res.Distribution)
	}
	result.Err = err

	for _, msg := range checkError(s, err) {
		result.AddError(msg)
	}
	if err == nil {
		for _, msg := range checkDistribution(s, result.Distribution) {
			result.AddError(msg)
		}
	}

	h.logger.Info("scenario completed",
		"scenario", s.Name,
		"pass", result.Pass,
		"errors", len(result.Errors))
	return result, nil
}

func (h *Harness) simulate(ctx context.Context, s *Scenario, c circuit.Circuit) (*engine.Result, error) {
	table, err := buildTable(s)
	if err != nil {
		return nil, err
	}

	cfg := engine.DefaultConfig()
	cfg.Shots = s.Shots
	var opts []engine.Option
	switch {
	case h.runner != nil:
		opts = append(opts, engine.WithRunner(h.runner))
	case h.exe != "":
		cfg.Executable = h.exe
		cfg.Args = h.args
	default:
		// One worker keeps the seeded stream's assignment to shots fixed.
		cfg.Workers = 1
		opts = append(opts, engine.WithRunner(testutil.NewFakeRunner(s.Seed)))
	}

	sim, err := engine.New(cfg, table, opts...)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("running scenario", "scenario", s.Name, "shots", cfg.Shots, "model", s.Model)
	return sim.Run(ctx, c)
}

// buildTable loads the scenario's model and applies its noise.
func buildTable(s *Scenario) (oprep.Table, error) {
	table := model.StandardGates()
	if path := s.ModelPath(); path != "" {
		loaded, err := model.LoadDir(path)
		if err != nil {
			return nil, err
		}
		table = loaded
	}
	if s.Noise > 0 {
		return model.NoisyTable(table, s.Noise, s.Seed)
	}
	return table, nil
}

// compared returns the distribution the expectations are checked against.
func compared(s *Scenario, d *outcome.Distribution) (*outcome.Distribution, error) {
	if len(s.Marginal) == 0 {
		return d, nil
	}
	return d.Marginalize(s.Marginal)
}
