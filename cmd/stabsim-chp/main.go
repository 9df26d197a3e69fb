// Command stabsim-chp is a reference stabilizer simulator speaking the
// instruction grammar stabsim emits. It reads a program from the file named
// by its last argument, or from stdin, and prints one "<qubit> <bit>" line
// per measurement.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/stabsim/internal/tableau"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stabsim-chp:", err)
		os.Exit(2)
	}
}

func newCommand() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:           "stabsim-chp [program-file]",
		Short:         "Run one shot of a stabilizer program",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			return tableau.Execute(src, cmd.OutOrStdout(), rand.New(rand.NewSource(seed)))
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "measurement seed (0 = from the clock)")
	return cmd
}
