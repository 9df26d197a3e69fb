package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/stabsim/internal/chp"
	"github.com/roach88/stabsim/internal/ir"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	SimOptions
}

// programText renders a program in simulator grammar for text output.
type programText struct {
	*ir.Program
}

func (p programText) String() string { return string(chp.Encode(p.Program)) }

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	return newTranslateCommand(&TranslateOptions{RootOptions: rootOpts})
}

func newTranslateCommand(opts *TranslateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <circuit>",
		Short: "Print the simulator program for a circuit",
		Long: `Translate a circuit into the simulator's instruction grammar without
running it. The circuit is a string such as "Gh:0Gcnot:0:1" or a path to a
circuit file (.yaml, or a text file holding a circuit string).

Stochastic operators draw once, so repeated translations of a noisy circuit
may differ.

Examples:
  stabsim translate "Gh:0Gcnot:0:1"
  stabsim translate --model ./model circuit.yaml
  stabsim translate --format json "[Gxpi2:0Gh:1]"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args[0], cmd)
		},
	}

	addModelFlags(cmd, &opts.SimOptions)
	return cmd
}

func runTranslate(opts *TranslateOptions, arg string, cmd *cobra.Command) error {
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
	formatter.VerboseLog("circuit: %d qubit(s), %d layer(s)", c.NumQubits, c.Depth())

	// Translation never spawns the simulator, so any executable will do.
	opts.Executable = DefaultExecutable
	opts.Shots = 1
	opts.Timeout = 1
	sim, err := newSimulator(&opts.SimOptions, c, nil)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "failed to build simulator", err))
	}

	prog, err := sim.Translate(c)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "translation failed", err))
	}

	if formatter.JSON() {
		return formatter.Success(prog)
	}
	return formatter.Success(programText{prog})
}
