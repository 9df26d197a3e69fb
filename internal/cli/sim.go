package cli

import (
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/stabsim/internal/chp"
	"github.com/roach88/stabsim/internal/circuit"
	"github.com/roach88/stabsim/internal/engine"
	"github.com/roach88/stabsim/internal/model"
	"github.com/roach88/stabsim/internal/oprep"
	"github.com/roach88/stabsim/internal/simerr"
	"github.com/roach88/stabsim/internal/store"
)

// DefaultExecutable is the companion simulator binary, looked up on PATH.
const DefaultExecutable = "stabsim-chp"

// SimOptions holds the flags shared by commands that build a Simulator.
type SimOptions struct {
	Executable string
	ExeArgs    []string
	Shots      int
	Timeout    time.Duration
	Retries    int
	Workers    int
	CacheSize  int

	Model    string  // CUE model directory
	StdGates bool    // include the standard gate library
	Noise    float64 // depolarizing strength attached to every operator
	Seed     int64   // noise seed
	Geometry string  // restrict standard gates to a processor connectivity

	// Runner allows overriding the external simulator (for testing).
	Runner chp.Runner
}

// addSimFlags registers the simulator flags on cmd.
func addSimFlags(cmd *cobra.Command, opts *SimOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.Executable, "exe", DefaultExecutable, "simulator executable")
	f.StringArrayVar(&opts.ExeArgs, "exe-arg", nil, "argument passed to the simulator before the program path (repeatable)")
	f.IntVar(&opts.Shots, "shots", engine.DefaultShots, "executions per circuit")
	f.DurationVar(&opts.Timeout, "timeout", engine.DefaultTimeout, "deadline for one simulator execution")
	f.IntVar(&opts.Retries, "retries", engine.DefaultRetries, "extra attempts for a failed shot")
	f.IntVar(&opts.Workers, "workers", 0, "concurrent shots (0 = GOMAXPROCS)")
	f.IntVar(&opts.CacheSize, "cache-size", engine.DefaultCacheSize, "translation cache entries (0 disables)")
	addModelFlags(cmd, opts)
}

// addModelFlags registers only the flags that shape the lookup table.
func addModelFlags(cmd *cobra.Command, opts *SimOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.Model, "model", "", "directory of CUE operator definitions")
	f.BoolVar(&opts.StdGates, "std-gates", true, "include the standard gate library (model entries take precedence)")
	f.Float64Var(&opts.Noise, "noise", 0, "depolarizing noise strength attached to every operator")
	f.Int64Var(&opts.Seed, "seed", 1, "seed for noise operators")
	f.StringVar(&opts.Geometry, "geometry", "", "processor connectivity for standard gates (line|ring|full)")
}

// buildTable assembles the lookup table: standard gates, then the CUE
// model on top, then noise.
func buildTable(opts *SimOptions) (oprep.Table, error) {
	table := oprep.Table{}
	if opts.StdGates {
		table = model.StandardGates()
	}
	if opts.Model != "" {
		loaded, err := model.LoadDir(opts.Model)
		if err != nil {
			return nil, err
		}
		maps.Copy(table, loaded)
		slog.Debug("model loaded", "dir", opts.Model, "operators", len(loaded))
	}
	if len(table) == 0 {
		return nil, simerr.Configuration("no operators: pass --model or --std-gates")
	}
	if opts.Noise > 0 {
		return model.NoisyTable(table, opts.Noise, opts.Seed)
	}
	return table, nil
}

// availability returns the processor restriction for c, or nil when no
// geometry was requested.
func availability(opts *SimOptions, table oprep.Table, c circuit.Circuit) (*model.ProcessorSpec, error) {
	if opts.Geometry == "" {
		return nil, nil
	}
	var gates []string
	for _, label := range table.Labels() {
		if model.IsStandardGate(label) {
			gates = append(gates, label)
		}
	}
	return model.NewProcessorSpec(c.NumQubits, gates, model.Geometry(opts.Geometry))
}

func (opts *SimOptions) config() engine.Config {
	return engine.Config{
		Executable: opts.Executable,
		Args:       opts.ExeArgs,
		Shots:      opts.Shots,
		Timeout:    opts.Timeout,
		Retries:    opts.Retries,
		Workers:    opts.Workers,
		CacheSize:  opts.CacheSize,
	}
}

// newSimulator builds the table and a Simulator sized for c. st may be nil.
func newSimulator(opts *SimOptions, c circuit.Circuit, st *store.Store) (*engine.Simulator, error) {
	table, err := buildTable(opts)
	if err != nil {
		return nil, err
	}

	var eopts []engine.Option
	if opts.Runner != nil {
		eopts = append(eopts, engine.WithRunner(opts.Runner))
	}
	if st != nil {
		eopts = append(eopts, engine.WithStore(st))
	}
	ps, err := availability(opts, table, c)
	if err != nil {
		return nil, err
	}
	if ps != nil {
		eopts = append(eopts, engine.WithAvailability(ps))
	}

	sim, err := engine.New(opts.config(), table, eopts...)
	if err != nil {
		return nil, err
	}
	return sim, nil
}

// loadCircuit resolves a circuit argument and wraps failures as command
// errors.
func loadCircuit(arg string) (circuit.Circuit, *ExitError) {
	c, err := circuit.Resolve(arg)
	if err != nil {
		return circuit.Circuit{}, WrapExitError(ExitCommandError, fmt.Sprintf("invalid circuit %q", arg), err)
	}
	return c, nil
}
