package chp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/stabsim/internal/ir"
	"github.com/roach88/stabsim/internal/outcome"
	"github.com/roach88/stabsim/internal/simerr"
)

// ProgramFile is the name of the program file inside each attempt directory.
const ProgramFile = "program.chp"

// Encode serializes p as newline-terminated grammar lines.
func Encode(p *ir.Program) []byte {
	var b bytes.Buffer
	for _, in := range p.Instructions {
		b.WriteString(in.String())
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// ParseOutput reads simulator output. It requires exactly one "<qubit> <bit>"
// line per entry of measured, in the same order, and nothing else.
func ParseOutput(r io.Reader, measured []int) (outcome.Shot, error) {
	bits := make([]byte, 0, len(measured))

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		if len(bits) == len(measured) {
			return outcome.Shot{}, parseErr(line, "unexpected extra output %q", sc.Text())
		}

		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			return outcome.Shot{}, parseErr(line, "want \"<qubit> <bit>\", got %q", sc.Text())
		}
		q, err := strconv.Atoi(fields[0])
		if err != nil {
			return outcome.Shot{}, parseErr(line, "invalid qubit %q", fields[0])
		}
		if want := measured[len(bits)]; q != want {
			return outcome.Shot{}, parseErr(line, "expected qubit %d, got %d", want, q)
		}
		switch fields[1] {
		case "0":
			bits = append(bits, 0)
		case "1":
			bits = append(bits, 1)
		default:
			return outcome.Shot{}, parseErr(line, "invalid bit %q", fields[1])
		}
	}
	if err := sc.Err(); err != nil {
		return outcome.Shot{}, simerr.Wrap(simerr.CodeParse, err, "read simulator output")
	}
	if len(bits) != len(measured) {
		return outcome.Shot{}, simerr.New(simerr.CodeParse,
			"simulator reported %d measurement(s), expected %d", len(bits), len(measured))
	}
	return outcome.Shot{Bits: bits}, nil
}

func parseErr(line int, format string, args ...any) *simerr.Error {
	return simerr.New(simerr.CodeParse, "output line %d: %s", line, fmt.Sprintf(format, args...))
}
