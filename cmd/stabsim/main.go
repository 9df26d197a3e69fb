// Command stabsim translates layered Clifford circuits into stabilizer
// simulator programs and estimates their outcome distributions.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/stabsim/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
