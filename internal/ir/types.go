package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Opcode is a primitive instruction token of the simulator grammar.
type Opcode string

// Grammar opcodes. The tokens are the wire contract with the external
// simulator and must not change without bumping IRVersion.
const (
	OpReset   Opcode = "reset" // reset listed qubits to |0>; carries the whole register
	OpH       Opcode = "h"     // Hadamard
	OpP       Opcode = "p"     // phase (S)
	OpX       Opcode = "x"     // Pauli X
	OpY       Opcode = "y"     // Pauli Y
	OpZ       Opcode = "z"     // Pauli Z
	OpCNOT    Opcode = "c"     // controlled-NOT: control, target
	OpMeasure Opcode = "m"     // Z-basis measurement
)

// opcodeArity maps each opcode to its operand count. Zero means "one or more".
var opcodeArity = map[Opcode]int{
	OpReset:   0,
	OpH:       1,
	OpP:       1,
	OpX:       1,
	OpY:       1,
	OpZ:       1,
	OpCNOT:    2,
	OpMeasure: 1,
}

// Opcodes returns every opcode in grammar-table order.
func Opcodes() []Opcode {
	return []Opcode{OpReset, OpH, OpP, OpX, OpY, OpZ, OpCNOT, OpMeasure}
}

// IsGate reports whether op is a unitary gate (not reset or measure).
func (op Opcode) IsGate() bool {
	_, ok := opcodeArity[op]
	return ok && op != OpReset && op != OpMeasure
}

// Instruction is one grammar line: an opcode and its qubit operands.
type Instruction struct {
	Op     Opcode `json:"op"`
	Qubits []int  `json:"qubits"`
}

// NewInstruction builds an instruction, copying the operand slice.
func NewInstruction(op Opcode, qubits ...int) Instruction {
	qs := make([]int, len(qubits))
	copy(qs, qubits)
	return Instruction{Op: op, Qubits: qs}
}

// String renders the instruction as a grammar line without newline,
// e.g. "c 0 1".
func (in Instruction) String() string {
	var b strings.Builder
	b.WriteString(string(in.Op))
	for _, q := range in.Qubits {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(q))
	}
	return b.String()
}

// Validate checks the opcode, operand count, and that every operand lies in
// [0, numQubits) without repeats.
func (in Instruction) Validate(numQubits int) error {
	want, ok := opcodeArity[in.Op]
	if !ok {
		return fmt.Errorf("unknown opcode %q", in.Op)
	}
	if want == 0 && len(in.Qubits) == 0 {
		return fmt.Errorf("%s: needs at least one qubit", in.Op)
	}
	if want > 0 && len(in.Qubits) != want {
		return fmt.Errorf("%s: want %d qubit(s), got %d", in.Op, want, len(in.Qubits))
	}
	seen := make(map[int]bool, len(in.Qubits))
	for _, q := range in.Qubits {
		if q < 0 || q >= numQubits {
			return fmt.Errorf("%s: qubit %d out of range [0,%d)", in.Op, q, numQubits)
		}
		if seen[q] {
			return fmt.Errorf("%s: qubit %d repeated", in.Op, q)
		}
		seen[q] = true
	}
	return nil
}

// Remap rewrites local operand i to targets[i].
func (in Instruction) Remap(targets []int) (Instruction, error) {
	out := Instruction{Op: in.Op, Qubits: make([]int, len(in.Qubits))}
	for i, q := range in.Qubits {
		if q < 0 || q >= len(targets) {
			return Instruction{}, fmt.Errorf("%s: local qubit %d has no target (have %d)", in.Op, q, len(targets))
		}
		out.Qubits[i] = targets[q]
	}
	return out, nil
}

// ParseInstruction parses a single grammar line such as "h 0" or "c 1 0".
// Surrounding whitespace is ignored; operands must be non-negative integers.
func ParseInstruction(line string) (Instruction, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Instruction{}, fmt.Errorf("empty instruction")
	}
	op := Opcode(fields[0])
	if _, ok := opcodeArity[op]; !ok {
		return Instruction{}, fmt.Errorf("unknown opcode %q", fields[0])
	}
	in := Instruction{Op: op, Qubits: make([]int, 0, len(fields)-1)}
	for _, f := range fields[1:] {
		q, err := strconv.Atoi(f)
		if err != nil || q < 0 {
			return Instruction{}, fmt.Errorf("%s: invalid qubit operand %q", op, f)
		}
		in.Qubits = append(in.Qubits, q)
	}
	return in, nil
}

// MustParse parses grammar lines and panics on error.
// Use only in tests or for built-in tables known to be valid.
func MustParse(lines ...string) []Instruction {
	out := make([]Instruction, 0, len(lines))
	for _, l := range lines {
		in, err := ParseInstruction(l)
		if err != nil {
			panic(err)
		}
		out = append(out, in)
	}
	return out
}

// Program is a complete, flat simulator input: a reset of the whole register,
// the circuit body in time order, and one measurement per designated qubit.
type Program struct {
	NumQubits    int           `json:"num_qubits"`
	Measured     []int         `json:"measured"`
	Instructions []Instruction `json:"instructions"`
}

// Lines renders every instruction as a grammar line.
func (p *Program) Lines() []string {
	lines := make([]string, len(p.Instructions))
	for i, in := range p.Instructions {
		lines[i] = in.String()
	}
	return lines
}

// Body returns the instructions between the reset prefix and the measurement
// suffix.
func (p *Program) Body() []Instruction {
	start, end := 0, len(p.Instructions)
	if start < end && p.Instructions[start].Op == OpReset {
		start++
	}
	for end > start && p.Instructions[end-1].Op == OpMeasure {
		end--
	}
	return p.Instructions[start:end]
}
