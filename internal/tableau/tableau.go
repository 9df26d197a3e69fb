// Package tableau is a stabilizer-tableau simulator for the instruction
// grammar. It backs the bundled simulator binary and in-process test fakes.
//
// The state of n qubits is 2n generator rows (n destabilizers then n
// stabilizers) plus one scratch row, each row a Pauli string with a sign bit.
// Clifford gates update every row in O(n); measurement is O(n^2).
package tableau

import (
	"fmt"
	"math/rand"
)

// Tableau holds the generator rows for n qubits.
type Tableau struct {
	n   int
	x   [][]bool
	z   [][]bool
	r   []bool
	rng *rand.Rand
}

// New returns n qubits in |0...0>. rng supplies outcomes of random
// measurements.
func New(n int, rng *rand.Rand) *Tableau {
	rows := 2*n + 1
	t := &Tableau{
		n:   n,
		x:   make([][]bool, rows),
		z:   make([][]bool, rows),
		r:   make([]bool, rows),
		rng: rng,
	}
	for i := 0; i < rows; i++ {
		t.x[i] = make([]bool, n)
		t.z[i] = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		t.x[i][i] = true
		t.z[n+i][i] = true
	}
	return t
}

// NumQubits returns the register size.
func (t *Tableau) NumQubits() int { return t.n }

// H applies a Hadamard to qubit a.
func (t *Tableau) H(a int) {
	for i := 0; i < 2*t.n; i++ {
		t.r[i] = t.r[i] != (t.x[i][a] && t.z[i][a])
		t.x[i][a], t.z[i][a] = t.z[i][a], t.x[i][a]
	}
}

// S applies the phase gate to qubit a.
func (t *Tableau) S(a int) {
	for i := 0; i < 2*t.n; i++ {
		t.r[i] = t.r[i] != (t.x[i][a] && t.z[i][a])
		t.z[i][a] = t.z[i][a] != t.x[i][a]
	}
}

// X applies Pauli X to qubit a.
func (t *Tableau) X(a int) {
	for i := 0; i < 2*t.n; i++ {
		t.r[i] = t.r[i] != t.z[i][a]
	}
}

// Y applies Pauli Y to qubit a.
func (t *Tableau) Y(a int) {
	for i := 0; i < 2*t.n; i++ {
		t.r[i] = t.r[i] != (t.x[i][a] != t.z[i][a])
	}
}

// Z applies Pauli Z to qubit a.
func (t *Tableau) Z(a int) {
	for i := 0; i < 2*t.n; i++ {
		t.r[i] = t.r[i] != t.x[i][a]
	}
}

// CNOT applies a controlled-NOT with control a and target b.
func (t *Tableau) CNOT(a, b int) {
	for i := 0; i < 2*t.n; i++ {
		if t.x[i][a] && t.z[i][b] && (t.x[i][b] == t.z[i][a]) {
			t.r[i] = !t.r[i]
		}
		t.x[i][b] = t.x[i][b] != t.x[i][a]
		t.z[i][a] = t.z[i][a] != t.z[i][b]
	}
}

// Measure measures qubit a in the Z basis, collapsing the state. random
// reports whether the outcome was drawn from rng rather than fixed by the
// state.
func (t *Tableau) Measure(a int) (bit byte, random bool) {
	n := t.n

	p := -1
	for i := n; i < 2*n; i++ {
		if t.x[i][a] {
			p = i
			break
		}
	}

	if p >= 0 {
		for i := 0; i < 2*n; i++ {
			if i != p && t.x[i][a] {
				t.rowsum(i, p)
			}
		}
		t.copyRow(p-n, p)
		t.clearRow(p)
		t.z[p][a] = true
		t.r[p] = t.rng.Intn(2) == 1
		return b2u(t.r[p]), true
	}

	scratch := 2 * n
	t.clearRow(scratch)
	for i := 0; i < n; i++ {
		if t.x[i][a] {
			t.rowsum(scratch, i+n)
		}
	}
	return b2u(t.r[scratch]), false
}

// Reset returns qubit a to |0>.
func (t *Tableau) Reset(a int) {
	if bit, _ := t.Measure(a); bit == 1 {
		t.X(a)
	}
}

// rowsum sets row h to the product of rows h and i, tracking the sign.
func (t *Tableau) rowsum(h, i int) {
	sum := 0
	if t.r[h] {
		sum += 2
	}
	if t.r[i] {
		sum += 2
	}
	for j := 0; j < t.n; j++ {
		sum += g(t.x[i][j], t.z[i][j], t.x[h][j], t.z[h][j])
	}
	switch ((sum % 4) + 4) % 4 {
	case 0:
		t.r[h] = false
	case 2:
		t.r[h] = true
	default:
		panic(fmt.Sprintf("tableau: rowsum produced imaginary phase (sum=%d)", sum))
	}
	for j := 0; j < t.n; j++ {
		t.x[h][j] = t.x[h][j] != t.x[i][j]
		t.z[h][j] = t.z[h][j] != t.z[i][j]
	}
}

// g is the exponent of i picked up when multiplying Pauli (x1,z1) by (x2,z2).
func g(x1, z1, x2, z2 bool) int {
	switch {
	case !x1 && !z1:
		return 0
	case x1 && z1:
		return b2i(z2) - b2i(x2)
	case x1 && !z1:
		return b2i(z2) * (2*b2i(x2) - 1)
	default:
		return b2i(x2) * (1 - 2*b2i(z2))
	}
}

func (t *Tableau) copyRow(dst, src int) {
	copy(t.x[dst], t.x[src])
	copy(t.z[dst], t.z[src])
	t.r[dst] = t.r[src]
}

func (t *Tableau) clearRow(i int) {
	clear(t.x[i])
	clear(t.z[i])
	t.r[i] = false
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func b2u(b bool) byte {
	if b {
		return 1
	}
	return 0
}
