package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/stabsim/internal/ir"
)

// marshalQubits stores the measured qubit list as canonical JSON so equal
// lists are byte-equal in the database.
func marshalQubits(qubits []int) (string, error) {
	data, err := ir.MarshalCanonical(ir.Ints(qubits))
	if err != nil {
		return "", fmt.Errorf("marshal qubits: %w", err)
	}
	return string(data), nil
}

func unmarshalQubits(data string) ([]int, error) {
	qubits := []int{}
	if err := json.Unmarshal([]byte(data), &qubits); err != nil {
		return nil, fmt.Errorf("unmarshal qubits: %w", err)
	}
	return qubits, nil
}
