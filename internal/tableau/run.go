package tableau

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/roach88/stabsim/internal/ir"
)

// Measurement is one measured qubit and its outcome.
type Measurement struct {
	Qubit int
	Bit   byte
}

// Interpret runs a program body. The first instruction must be a reset; its
// largest operand fixes the register size. Later resets act on the listed
// qubits.
func Interpret(instrs []ir.Instruction, rng *rand.Rand) ([]Measurement, error) {
	if len(instrs) == 0 || instrs[0].Op != ir.OpReset {
		return nil, fmt.Errorf("program must start with reset")
	}

	n := 0
	for _, q := range instrs[0].Qubits {
		n = max(n, q+1)
	}
	t := New(n, rng)

	var out []Measurement
	for i, in := range instrs {
		if err := in.Validate(n); err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i+1, err)
		}
		switch in.Op {
		case ir.OpReset:
			if i == 0 {
				continue
			}
			for _, q := range in.Qubits {
				t.Reset(q)
			}
		case ir.OpH:
			t.H(in.Qubits[0])
		case ir.OpP:
			t.S(in.Qubits[0])
		case ir.OpX:
			t.X(in.Qubits[0])
		case ir.OpY:
			t.Y(in.Qubits[0])
		case ir.OpZ:
			t.Z(in.Qubits[0])
		case ir.OpCNOT:
			t.CNOT(in.Qubits[0], in.Qubits[1])
		case ir.OpMeasure:
			bit, _ := t.Measure(in.Qubits[0])
			out = append(out, Measurement{Qubit: in.Qubits[0], Bit: bit})
		}
	}
	return out, nil
}

// Execute reads grammar lines from src, simulates them, and writes one
// "<qubit> <bit>" line per measurement to w. Blank lines and lines starting
// with '#' are ignored.
func Execute(src io.Reader, w io.Writer, rng *rand.Rand) error {
	var instrs []ir.Instruction
	sc := bufio.NewScanner(src)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		in, err := ir.ParseInstruction(text)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		instrs = append(instrs, in)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read program: %w", err)
	}

	results, err := Interpret(instrs, rng)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, m := range results {
		fmt.Fprintf(bw, "%d %d\n", m.Qubit, m.Bit)
	}
	return bw.Flush()
}
