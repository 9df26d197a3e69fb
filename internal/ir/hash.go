package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix leaves
// room for changing the hashed shape later.
const (
	DomainCircuit = "stabsim/circuit/v1"
	DomainProgram = "stabsim/program/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data). The separator keeps
// the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash hashes the canonical form of v under domain.
func ContentHash(domain string, v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("content hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// ProgramValue converts a program to its hashed form.
func ProgramValue(p *Program) Object {
	instrs := make(Array, len(p.Instructions))
	for i, in := range p.Instructions {
		instrs[i] = InstructionValue(in)
	}
	return Object{
		"ir_version":   String(IRVersion),
		"num_qubits":   Int(p.NumQubits),
		"measured":     Ints(p.Measured),
		"instructions": instrs,
	}
}

// ProgramHash returns the content hash of a program. Two programs with the
// same hash send byte-identical input to the simulator.
func ProgramHash(p *Program) (string, error) {
	return ContentHash(DomainProgram, ProgramValue(p))
}

// MustProgramHash is like ProgramHash but panics on error.
// Use only in tests or when the program is known to be well formed.
func MustProgramHash(p *Program) string {
	h, err := ProgramHash(p)
	if err != nil {
		panic(err)
	}
	return h
}
