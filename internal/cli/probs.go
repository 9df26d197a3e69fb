package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/stabsim/internal/outcome"
	"github.com/roach88/stabsim/internal/store"
)

// ProbsOptions holds flags for the probs command.
type ProbsOptions struct {
	*RootOptions
	SimOptions
	Marginal []int
	Database string
}

// ProbsResult is the probs command's output.
type ProbsResult struct {
	RunID        string                `json:"run_id,omitempty"`
	Seq          int64                 `json:"seq,omitempty"`
	Distribution *outcome.Distribution `json:"distribution"`
}

// String renders one "bitstring probability" line per outcome.
func (r ProbsResult) String() string {
	var b strings.Builder
	if r.RunID != "" {
		fmt.Fprintf(&b, "# run %s (seq %d)\n", r.RunID, r.Seq)
	}
	b.WriteString(r.Distribution.String())
	return b.String()
}

// NewProbsCommand creates the probs command.
func NewProbsCommand(rootOpts *RootOptions) *cobra.Command {
	return newProbsCommand(&ProbsOptions{RootOptions: rootOpts})
}

func newProbsCommand(opts *ProbsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probs <circuit>",
		Short: "Estimate a circuit's outcome distribution",
		Long: `Run a circuit's program on the external simulator --shots times and print
the observed outcome probabilities. Bit i of each outcome is measured qubit i
(or marginal qubit i with --marginal).

Exit codes:
  0 - Distribution printed
  1 - The simulator failed (after retries) or timed out
  2 - Command error (invalid circuit, model, or flags)

Examples:
  stabsim probs "Gh:0Gcnot:0:1" --shots 2000
  stabsim probs --model ./model --noise 0.01 circuit.yaml
  stabsim probs --exe ./chp --exe-arg -q --db runs.db "Gxpi2:0"
  stabsim probs --marginal 2,0 "Gxpi:2Gcnot:2:0@(0,1,2)"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbs(opts, args[0], cmd)
		},
	}

	addSimFlags(cmd, &opts.SimOptions)
	cmd.Flags().IntSliceVar(&opts.Marginal, "marginal", nil, "report only these qubits, in this order")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runProbs(opts *ProbsOptions, arg string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	c, exitErr := loadCircuit(arg)
	if exitErr != nil {
		return formatter.Fail(exitErr)
	}

	var st *store.Store
	if opts.Database != "" {
		var err error
		st, err = store.Open(opts.Database)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "failed to open database", err))
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
	}

	sim, err := newSimulator(&opts.SimOptions, c, st)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "failed to build simulator", err))
	}

	// Use the command's context if available (for testing)
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatter.VerboseLog("running %d shot(s) of %s", sim.Config().Shots, c)
	res, err := sim.Run(ctx, c)
	if err != nil {
		return formatter.Fail(simulationExit("simulation failed", err))
	}

	dist := res.Distribution
	if len(opts.Marginal) > 0 {
		dist, err = dist.Marginalize(opts.Marginal)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "invalid --marginal", err))
		}
	}

	return formatter.Success(ProbsResult{RunID: res.ID, Seq: res.Seq, Distribution: dist})
}
