package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/stabsim/internal/chp"
	"github.com/roach88/stabsim/internal/circuit"
	"github.com/roach88/stabsim/internal/compiler"
	"github.com/roach88/stabsim/internal/ir"
	"github.com/roach88/stabsim/internal/oprep"
	"github.com/roach88/stabsim/internal/outcome"
	"github.com/roach88/stabsim/internal/simerr"
	"github.com/roach88/stabsim/internal/store"
)

// Version is recorded with every logged run.
const Version = ir.EngineVersion

// Simulator estimates outcome distributions of circuits by repeated
// execution of their translated programs.
//
// Thread-safety: Probabilities may be called concurrently. Concurrent calls
// on a table with stochastic operators interleave their draws in call order.
type Simulator struct {
	cfg        Config
	table      oprep.Table
	translator *compiler.Translator
	runner     chp.Runner
	store      *store.Store
	ids        IDGenerator
	clock      *Clock
	avail      compiler.Availability
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithRunner replaces the external process adapter, typically with an
// in-process fake in tests. Config.Executable is then not required.
func WithRunner(r chp.Runner) Option {
	return func(s *Simulator) {
		s.runner = r
	}
}

// WithStore records every successful run in st.
func WithStore(st *store.Store) Option {
	return func(s *Simulator) {
		s.store = st
	}
}

// WithIDGenerator names logged runs. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Simulator) {
		s.ids = g
	}
}

// WithAvailability restricts where operators may be placed, e.g. to a
// processor's connectivity.
func WithAvailability(a compiler.Availability) Option {
	return func(s *Simulator) {
		s.avail = a
	}
}

// Result is one completed run.
type Result struct {
	// ID and Seq are set only when a store is attached.
	ID  string
	Seq int64

	Program      *ir.Program
	Distribution *outcome.Distribution
}

// New validates cfg and builds a Simulator over table. Configuration errors
// are reported here, before any circuit is seen.
func New(cfg Config, table oprep.Table, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		cfg:   cfg.withDefaults(),
		table: table,
		ids:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.cfg.validate(s.runner == nil); err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, simerr.Configuration("lookup table is empty")
	}

	if s.runner == nil {
		s.runner = &chp.Adapter{
			Executable: s.cfg.Executable,
			Args:       s.cfg.Args,
			Timeout:    s.cfg.Timeout,
			Retries:    s.cfg.Retries,
		}
	}

	topts := []compiler.Option{compiler.WithCache(s.cfg.CacheSize)}
	if s.avail != nil {
		topts = append(topts, compiler.WithAvailability(s.avail))
	}
	s.translator = compiler.New(table, topts...)

	start := int64(0)
	if s.store != nil {
		seq, err := s.store.MaxSeq(context.Background())
		if err != nil {
			return nil, fmt.Errorf("resume run clock: %w", err)
		}
		start = seq
	}
	s.clock = NewClockAt(start)

	return s, nil
}

// Config returns the validated configuration, defaults applied.
func (s *Simulator) Config() Config { return s.cfg }

// Translator returns the translator the simulator uses.
func (s *Simulator) Translator() *compiler.Translator { return s.translator }

// Translate validates c and returns its program without running it. Like
// Probabilities, it advances stochastic operators.
func (s *Simulator) Translate(c circuit.Circuit) (*ir.Program, error) {
	return s.translator.Translate(c)
}

// Probabilities runs c Config.Shots times and returns the observed outcome
// frequencies over c's measured qubits.
func (s *Simulator) Probabilities(ctx context.Context, c circuit.Circuit) (*outcome.Distribution, error) {
	res, err := s.Run(ctx, c)
	if err != nil {
		return nil, err
	}
	return res.Distribution, nil
}

// Run is Probabilities with the translated program and, when a store is
// attached, the logged run's identity.
func (s *Simulator) Run(ctx context.Context, c circuit.Circuit) (*Result, error) {
	start := time.Now()
	res, err := s.run(ctx, c)
	runDuration.Observe(time.Since(start).Seconds())
	runsTotal.WithLabelValues(resultLabel(err)).Inc()
	return res, err
}

func (s *Simulator) run(ctx context.Context, c circuit.Circuit) (*Result, error) {
	prog, err := s.translator.Translate(c)
	if err != nil {
		return nil, err
	}

	shots, err := s.runShots(ctx, prog)
	if err != nil {
		return nil, err
	}

	dist, err := outcome.Aggregate(prog.Measured, shots)
	if err != nil {
		return nil, err
	}
	res := &Result{Program: prog, Distribution: dist}

	if s.store != nil {
		if err := s.record(ctx, c, res); err != nil {
			return nil, err
		}
	}

	slog.Info("simulation complete",
		"run_id", res.ID,
		"qubits", len(prog.Measured),
		"shots", dist.Shots,
		"outcomes", len(dist.Outcomes()))
	return res, nil
}

// runShots executes every shot or none. The first failure cancels the
// shots still running.
func (s *Simulator) runShots(ctx context.Context, prog *ir.Program) ([]outcome.Shot, error) {
	payload := chp.Encode(prog)
	shots := make([]outcome.Shot, s.cfg.Shots)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range shots {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			shot, err := s.runner.RunShot(gctx, prog, payload)
			if err != nil {
				return shotError(i, err)
			}
			shots[i] = shot
			shotsTotal.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The loop may have stopped early on a parent cancellation that no
	// running shot observed.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return shots, nil
}

func (s *Simulator) record(ctx context.Context, c circuit.Circuit, res *Result) error {
	circuitHash, err := c.Hash()
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	programHash, err := ir.ProgramHash(res.Program)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	res.ID = s.ids.Generate()
	res.Seq = s.clock.Next()
	run := store.Run{
		ID:            res.ID,
		Seq:           res.Seq,
		CircuitHash:   circuitHash,
		ProgramHash:   programHash,
		Circuit:       c.String(),
		Shots:         res.Distribution.Shots,
		Qubits:        res.Distribution.Qubits,
		EngineVersion: Version,
		Counts:        res.Distribution.Counts(),
	}
	if err := s.store.WriteRun(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	slog.Debug("run recorded", "run_id", run.ID, "seq", run.Seq, "circuit_hash", circuitHash)
	return nil
}

// shotError attaches the shot index to simulator failures.
func shotError(i int, err error) error {
	var se *simerr.Error
	if errors.As(err, &se) && se.Shot < 0 {
		se.Shot = i
	}
	return err
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	if code := simerr.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}
