package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/stabsim/internal/outcome"
	"github.com/roach88/stabsim/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	Circuit  string // only runs of this circuit
}

// RunSummary is one logged run as printed by the runs command.
type RunSummary struct {
	ID            string                `json:"id"`
	Seq           int64                 `json:"seq"`
	Circuit       string                `json:"circuit"`
	CircuitHash   string                `json:"circuit_hash"`
	ProgramHash   string                `json:"program_hash"`
	Shots         int                   `json:"shots"`
	EngineVersion string                `json:"engine_version"`
	Distribution  *outcome.Distribution `json:"distribution,omitempty"`
}

// RunList is the runs command's output.
type RunList struct {
	Runs []RunSummary `json:"runs"`
}

func (l RunList) String() string {
	if len(l.Runs) == 0 {
		return "No runs recorded.\n"
	}
	var b strings.Builder
	for _, r := range l.Runs {
		fmt.Fprintf(&b, "%4d  %s  %s  shots=%d\n", r.Seq, r.ID, r.Circuit, r.Shots)
		if r.Distribution != nil {
			for _, line := range strings.Split(strings.TrimSuffix(r.Distribution.String(), "\n"), "\n") {
				fmt.Fprintf(&b, "      %s\n", line)
			}
		}
	}
	return b.String()
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List runs recorded by probs --db",
		Long: `List logged runs in sequence order, or show one run's distribution.

Examples:
  stabsim runs --db runs.db
  stabsim runs --db runs.db --circuit "Gh:0Gcnot:0:1"
  stabsim runs --db runs.db 0192d4e0-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Circuit, "circuit", "", "only list runs of this circuit")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRuns(opts *RunsOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Listing must not create a database as a side effect.
	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "database not found", err))
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 1 {
		run, err := st.ReadRun(ctx, args[0])
		if errors.Is(err, sql.ErrNoRows) {
			return formatter.Fail(NewExitError(ExitCommandError, fmt.Sprintf("run %s not found", args[0])))
		}
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "failed to read run", err))
		}
		summary, err := summarize(run, true)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "corrupt run", err))
		}
		return formatter.Success(RunList{Runs: []RunSummary{summary}})
	}

	runs, err := listRuns(ctx, st, opts.Circuit)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "failed to list runs", err))
	}
	list := RunList{Runs: make([]RunSummary, 0, len(runs))}
	for _, run := range runs {
		summary, err := summarize(run, opts.Verbose)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "corrupt run", err))
		}
		list.Runs = append(list.Runs, summary)
	}
	return formatter.Success(list)
}

func listRuns(ctx context.Context, st *store.Store, circuitArg string) ([]store.Run, error) {
	if circuitArg == "" {
		return st.ListRuns(ctx)
	}
	c, exitErr := loadCircuit(circuitArg)
	if exitErr != nil {
		return nil, exitErr
	}
	hash, err := c.Hash()
	if err != nil {
		return nil, err
	}
	return st.RunsForCircuit(ctx, hash)
}

func summarize(run store.Run, withDistribution bool) (RunSummary, error) {
	s := RunSummary{
		ID:            run.ID,
		Seq:           run.Seq,
		Circuit:       run.Circuit,
		CircuitHash:   run.CircuitHash,
		ProgramHash:   run.ProgramHash,
		Shots:         run.Shots,
		EngineVersion: run.EngineVersion,
	}
	if withDistribution {
		d, err := run.Distribution()
		if err != nil {
			return RunSummary{}, err
		}
		s.Distribution = d
	}
	return s, nil
}
