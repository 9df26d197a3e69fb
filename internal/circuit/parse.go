package circuit

import (
	"fmt"
	"slices"
	"strconv"
)

// maxRepeat bounds (...)^n so a typo cannot expand into millions of layers.
const maxRepeat = 10000

// SyntaxError reports a malformed circuit string.
type SyntaxError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("circuit %q: offset %d: %s", e.Input, e.Offset, e.Msg)
}

// Parse reads a circuit in string form. Without an "@(...)" suffix the
// register is sized to the highest target used. All lines are measured.
func Parse(s string) (Circuit, error) {
	p := &parser{in: s}

	layers, err := p.items(false)
	if err != nil {
		return Circuit{}, err
	}

	numQubits := -1
	p.skipSpace()
	if p.peek() == '@' {
		p.pos++
		if numQubits, err = p.lineLabels(); err != nil {
			return Circuit{}, err
		}
	}
	p.skipSpace()
	if !p.done() {
		return Circuit{}, p.errorf("unexpected %q", p.peek())
	}

	if numQubits < 0 {
		numQubits = 0
		for _, layer := range layers {
			for _, e := range layer {
				for _, q := range e.Targets {
					numQubits = max(numQubits, q+1)
				}
			}
		}
	}
	return New(numQubits, layers, nil), nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or for literals known to be valid.
func MustParse(s string) Circuit {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

type parser struct {
	in  string
	pos int
}

func (p *parser) done() bool { return p.pos >= len(p.in) }

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.in[p.pos]
}

func (p *parser) skipSpace() {
	for !p.done() && (p.in[p.pos] == ' ' || p.in[p.pos] == '\t' || p.in[p.pos] == '\n' || p.in[p.pos] == '\r') {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Input: p.in, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		if p.done() {
			return p.errorf("expected %q, got end of input", c)
		}
		return p.errorf("expected %q, got %q", c, p.peek())
	}
	p.pos++
	return nil
}

// items parses layers until '@', end of input, or ')' when nested.
func (p *parser) items(nested bool) ([]Layer, error) {
	var layers []Layer
	for {
		p.skipSpace()
		switch c := p.peek(); {
		case p.done(), c == '@':
			if nested {
				return nil, p.errorf("unclosed '('")
			}
			return layers, nil

		case c == ')':
			if !nested {
				return nil, p.errorf("unmatched ')'")
			}
			return layers, nil

		case c == '(':
			p.pos++
			inner, err := p.items(true)
			if err != nil {
				return nil, err
			}
			p.pos++ // ')'
			n := 1
			p.skipSpace()
			if p.peek() == '^' {
				p.pos++
				p.skipSpace()
				if n, err = p.integer(); err != nil {
					return nil, err
				}
				if n > maxRepeat {
					return nil, p.errorf("repeat count %d exceeds %d", n, maxRepeat)
				}
			}
			for i := 0; i < n; i++ {
				layers = append(layers, cloneLayers(inner)...)
			}

		case c == '[':
			p.pos++
			layer, err := p.parallel()
			if err != nil {
				return nil, err
			}
			layers = append(layers, layer)

		case c == '{':
			p.pos++
			if err := p.expect('}'); err != nil {
				return nil, err
			}
			layers = append(layers, Layer{})

		case isUpper(c):
			e, err := p.entry()
			if err != nil {
				return nil, err
			}
			layers = append(layers, Layer{e})

		default:
			return nil, p.errorf("unexpected %q", c)
		}
	}
}

func (p *parser) parallel() (Layer, error) {
	layer := Layer{}
	for {
		p.skipSpace()
		if p.peek() == ']' {
			p.pos++
			return layer, nil
		}
		if !isUpper(p.peek()) {
			if p.done() {
				return nil, p.errorf("unclosed '['")
			}
			return nil, p.errorf("expected operator label, got %q", p.peek())
		}
		e, err := p.entry()
		if err != nil {
			return nil, err
		}
		layer = append(layer, e)
	}
}

// entry parses Name(:int)+. A name is an uppercase letter followed by
// lowercase letters, digits, or underscores, so "GxGy" is two labels.
func (p *parser) entry() (Entry, error) {
	start := p.pos
	p.pos++
	for !p.done() && isNameRest(p.in[p.pos]) {
		p.pos++
	}
	e := Entry{Label: p.in[start:p.pos]}
	for p.peek() == ':' {
		p.pos++
		q, err := p.integer()
		if err != nil {
			return Entry{}, err
		}
		e.Targets = append(e.Targets, q)
	}
	if len(e.Targets) == 0 {
		return Entry{}, &SyntaxError{Input: p.in, Offset: start, Msg: fmt.Sprintf("operator %s has no target qubits", e.Label)}
	}
	return e, nil
}

func (p *parser) integer() (int, error) {
	start := p.pos
	for !p.done() && isDigit(p.in[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("expected integer")
	}
	n, err := strconv.Atoi(p.in[start:p.pos])
	if err != nil {
		return 0, &SyntaxError{Input: p.in, Offset: start, Msg: err.Error()}
	}
	return n, nil
}

// lineLabels parses "(0,1,...)" and requires the labels to be exactly
// 0..n-1 in some order. It returns n.
func (p *parser) lineLabels() (int, error) {
	if err := p.expect('('); err != nil {
		return 0, err
	}
	var lines []int
	for {
		p.skipSpace()
		if p.peek() == ')' && len(lines) == 0 {
			p.pos++
			break
		}
		q, err := p.integer()
		if err != nil {
			return 0, err
		}
		lines = append(lines, q)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if err := p.expect(')'); err != nil {
			return 0, err
		}
		break
	}

	sorted := slices.Clone(lines)
	slices.Sort(sorted)
	for i, q := range sorted {
		if q != i {
			return 0, p.errorf("line labels must be 0..%d, got %v", len(lines)-1, lines)
		}
	}
	return len(lines), nil
}

func cloneLayers(layers []Layer) []Layer {
	out := make([]Layer, len(layers))
	for i, layer := range layers {
		out[i] = make(Layer, len(layer))
		for j, e := range layer {
			out[i][j] = Entry{Label: e.Label, Targets: slices.Clone(e.Targets)}
		}
	}
	return out
}

func isUpper(c byte) bool    { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isNameRest(c byte) bool { return (c >= 'a' && c <= 'z') || isDigit(c) || c == '_' }
