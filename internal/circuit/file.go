package circuit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the YAML form of a circuit. Exactly one of Circuit or Layers is
// set. Qubits overrides the register size; Measured defaults to every line.
//
//	qubits: 2
//	layers:
//	  - [{op: Gh, on: [0]}]
//	  - [{op: Gcnot, on: [0, 1]}]
//	measured: [0, 1]
type File struct {
	Qubits   int       `yaml:"qubits,omitempty"`
	Circuit  string    `yaml:"circuit,omitempty"`
	Layers   [][]Entry `yaml:"layers,omitempty"`
	Measured []int     `yaml:"measured,omitempty"`
}

// Build converts the file form to a Circuit.
func (f File) Build() (Circuit, error) {
	if f.Circuit != "" && f.Layers != nil {
		return Circuit{}, fmt.Errorf("circuit and layers are mutually exclusive")
	}

	var c Circuit
	if f.Circuit != "" {
		parsed, err := Parse(f.Circuit)
		if err != nil {
			return Circuit{}, err
		}
		c = parsed
	} else {
		layers := make([]Layer, len(f.Layers))
		for i, l := range f.Layers {
			layers[i] = Layer(l)
			if layers[i] == nil {
				layers[i] = Layer{}
			}
		}
		c = New(0, layers, nil)
		for _, layer := range c.Layers {
			for _, e := range layer {
				for _, q := range e.Targets {
					c.NumQubits = max(c.NumQubits, q+1)
				}
			}
		}
	}

	if f.Qubits < 0 {
		return Circuit{}, fmt.Errorf("qubits must be >= 0, got %d", f.Qubits)
	}
	if f.Qubits > 0 {
		c.NumQubits = f.Qubits
	}
	if f.Measured != nil {
		c.Measured = f.Measured
	} else {
		c.Measured = AllLines(c.NumQubits)
	}
	return c, nil
}

// Decode parses a YAML circuit file, rejecting unknown fields.
func Decode(data []byte) (Circuit, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Circuit{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return f.Build()
}

// LoadFile reads a circuit from path. Files ending in .yaml or .yml are
// decoded as YAML; anything else is read as a circuit string.
func LoadFile(path string) (Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Circuit{}, fmt.Errorf("failed to read circuit file: %w", err)
	}
	if isYAML(path) {
		c, err := Decode(data)
		if err != nil {
			return Circuit{}, fmt.Errorf("%s: %w", path, err)
		}
		return c, nil
	}
	c, err := Parse(string(bytes.TrimSpace(data)))
	if err != nil {
		return Circuit{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Resolve interprets arg as a file path when it names an existing file and
// as a circuit string otherwise.
func Resolve(arg string) (Circuit, error) {
	if _, err := os.Stat(arg); err == nil {
		return LoadFile(arg)
	}
	return Parse(arg)
}

func isYAML(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
