package ir

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the value kinds that may enter a content
// hash. There is no float kind: hashed identities must be exact.
type Value interface {
	irValue()
}

// String is a string value.
type String string

// Int is an integer value.
type Int int64

// Bool is a boolean value.
type Bool bool

// Array is an ordered list of values.
type Array []Value

// Object maps keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (String) irValue() {}
func (Int) irValue()    {}
func (Bool) irValue()   {}
func (Array) irValue()  {}
func (Object) irValue() {}

// Ints converts an int slice to an Array.
func Ints(xs []int) Array {
	arr := make(Array, len(xs))
	for i, x := range xs {
		arr[i] = Int(x)
	}
	return arr
}

// SortedKeys returns keys ordered by UTF-16 code units, as RFC 8785 requires.
// Plain string comparison orders by UTF-8 bytes, which differs for
// characters outside the BMP.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// InstructionValue converts an instruction to its hashed form:
// ["op", q0, q1, ...].
func InstructionValue(in Instruction) Array {
	arr := make(Array, 0, len(in.Qubits)+1)
	arr = append(arr, String(in.Op))
	for _, q := range in.Qubits {
		arr = append(arr, Int(q))
	}
	return arr
}
