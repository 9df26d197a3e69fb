// Package outcome turns per-shot measurement records into sparse outcome
// probability distributions.
package outcome

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/stabsim/internal/simerr"
)

// Shot is one execution's measured bits, aligned with the measured qubits.
type Shot struct {
	Bits []byte
}

// String renders the bits as a bitstring such as "010".
func (s Shot) String() string {
	var b strings.Builder
	b.Grow(len(s.Bits))
	for _, bit := range s.Bits {
		b.WriteByte('0' + bit)
	}
	return b.String()
}

// Distribution maps observed bitstrings to probabilities. Character i of a
// bitstring is the outcome of Qubits[i]. Outcomes never observed are absent.
type Distribution struct {
	Qubits []int
	Shots  int

	probs  map[string]float64
	counts map[string]int // nil when built from probabilities alone
}

// Aggregate counts shots over qubits and divides by the shot count.
func Aggregate(qubits []int, shots []Shot) (*Distribution, error) {
	if len(shots) < 1 {
		return nil, simerr.Configuration("aggregate: need at least one shot, got %d", len(shots))
	}
	counts := make(map[string]int)
	for i, s := range shots {
		if len(s.Bits) != len(qubits) {
			return nil, simerr.Configuration("aggregate: shot %d has %d bit(s), expected %d", i, len(s.Bits), len(qubits))
		}
		for _, bit := range s.Bits {
			if bit > 1 {
				return nil, simerr.Configuration("aggregate: shot %d has non-binary bit %d", i, bit)
			}
		}
		counts[s.String()]++
	}
	return FromCounts(qubits, counts)
}

// FromCounts builds a distribution from integer outcome counts. The shot
// count is the sum of the counts.
func FromCounts(qubits []int, counts map[string]int) (*Distribution, error) {
	total := 0
	for key, c := range counts {
		if err := checkKey(key, len(qubits)); err != nil {
			return nil, err
		}
		if c < 0 {
			return nil, simerr.Configuration("outcome %q has negative count %d", key, c)
		}
		total += c
	}
	if total < 1 {
		return nil, simerr.Configuration("distribution needs at least one shot, got %d", total)
	}

	d := &Distribution{
		Qubits: slices.Clone(qubits),
		Shots:  total,
		probs:  make(map[string]float64, len(counts)),
		counts: make(map[string]int, len(counts)),
	}
	for key, c := range counts {
		if c == 0 {
			continue
		}
		d.counts[key] = c
		d.probs[key] = float64(c) / float64(total)
	}
	return d, nil
}

// FromProbabilities builds a distribution with no shot information.
func FromProbabilities(qubits []int, probs map[string]float64) (*Distribution, error) {
	d := &Distribution{
		Qubits: slices.Clone(qubits),
		probs:  make(map[string]float64, len(probs)),
	}
	for key, p := range probs {
		if err := checkKey(key, len(qubits)); err != nil {
			return nil, err
		}
		if p < 0 || p > 1 {
			return nil, simerr.Configuration("outcome %q has probability %g outside [0,1]", key, p)
		}
		if p > 0 {
			d.probs[key] = p
		}
	}
	return d, nil
}

func checkKey(key string, width int) error {
	if len(key) != width {
		return simerr.Configuration("outcome %q has %d bit(s), expected %d", key, len(key), width)
	}
	if strings.Trim(key, "01") != "" {
		return simerr.Configuration("outcome %q is not a bitstring", key)
	}
	return nil
}

// Prob returns the probability of bitstring, zero if never observed.
func (d *Distribution) Prob(bitstring string) float64 { return d.probs[bitstring] }

// Probabilities returns a copy of the outcome map.
func (d *Distribution) Probabilities() map[string]float64 { return maps.Clone(d.probs) }

// Counts returns a copy of the integer counts, or nil when the distribution
// was not built from shots.
func (d *Distribution) Counts() map[string]int {
	if d.counts == nil {
		return nil
	}
	return maps.Clone(d.counts)
}

// Outcomes returns the observed bitstrings in lexical order.
func (d *Distribution) Outcomes() []string {
	var keys []string
	for k := range d.probs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Marginalize sums out every qubit not in qs. The result's bit order follows
// qs. Count-backed distributions stay count-backed, so probabilities remain
// exact ratios.
func (d *Distribution) Marginalize(qs []int) (*Distribution, error) {
	pos := make([]int, len(qs))
	seen := make(map[int]bool, len(qs))
	for i, q := range qs {
		j := slices.Index(d.Qubits, q)
		if j < 0 {
			return nil, simerr.Configuration("marginalize: qubit %d is not in the distribution %v", q, d.Qubits)
		}
		if seen[q] {
			return nil, simerr.Configuration("marginalize: qubit %d requested twice", q)
		}
		seen[q] = true
		pos[i] = j
	}

	project := func(key string) string {
		out := make([]byte, len(pos))
		for i, j := range pos {
			out[i] = key[j]
		}
		return string(out)
	}

	if d.counts != nil {
		counts := make(map[string]int)
		for key, c := range d.counts {
			counts[project(key)] += c
		}
		return FromCounts(qs, counts)
	}

	probs := make(map[string]float64)
	for key, p := range d.probs {
		probs[project(key)] += p
	}
	return &Distribution{Qubits: slices.Clone(qs), probs: probs}, nil
}

// String renders one "bitstring probability" pair per line in outcome order.
func (d *Distribution) String() string {
	var b strings.Builder
	for _, key := range d.Outcomes() {
		fmt.Fprintf(&b, "%s %g\n", key, d.probs[key])
	}
	return b.String()
}

type distributionJSON struct {
	Qubits        []int              `json:"qubits"`
	Shots         int                `json:"shots,omitempty"`
	Probabilities map[string]float64 `json:"probabilities"`
	Counts        map[string]int     `json:"counts,omitempty"`
}

// MarshalJSON implements json.Marshaler. Map keys are emitted sorted.
func (d *Distribution) MarshalJSON() ([]byte, error) {
	return json.Marshal(distributionJSON{
		Qubits:        d.Qubits,
		Shots:         d.Shots,
		Probabilities: d.probs,
		Counts:        d.counts,
	})
}
