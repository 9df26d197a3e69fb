package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/stabsim/internal/ir"
	"github.com/roach88/stabsim/internal/oprep"
	"github.com/roach88/stabsim/internal/simerr"
)

// Operator kinds accepted under op.<Name>.
const (
	KindStatic       = "static"
	KindStochastic   = "stochastic"
	KindComposed     = "composed"
	KindEmbedded     = "embedded"
	KindDepolarizing = "depolarizing"
	KindBitFlip      = "bitflip"
)

// opDef is one parsed operator definition awaiting reference resolution.
type opDef struct {
	name  string
	kind  string
	pos   token.Pos
	refs  []string
	build func(resolve func(string) (oprep.Rep, error)) (oprep.Rep, error)
}

// LoadDir loads every .cue file in dir as one CUE instance and compiles its
// operator model.
func LoadDir(dir string) (oprep.Table, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, simerr.Wrap(simerr.CodeConfiguration, err, "model directory")
	}
	if !info.IsDir() {
		return nil, simerr.Configuration("model path %s is not a directory", dir)
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, simerr.Wrap(simerr.CodeConfiguration, err, "scan model directory")
	}
	if len(cueFiles) == 0 {
		return nil, simerr.Configuration("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, simerr.Configuration("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError("load", inst.Err)
	}

	return Compile(ctx.BuildInstance(inst))
}

// CompileString compiles an operator model from CUE source.
func CompileString(src string) (oprep.Table, error) {
	ctx := cuecontext.New()
	return Compile(ctx.CompileString(src, cue.Filename("model.cue")))
}

// Compile builds a lookup table from a CUE value of the form
//
//	standard: true             // optional: include the standard gates
//	op: Gx: static: {qubits: 1, ops: ["h 0", "p 0", "h 0"]}
//	op: Nz: stochastic: {qubits: 1, seed: 7, alternatives: [{weight: 0.1, ops: ["z 0"]}]}
//	op: GxN: composed: ["Gx", "Nz"]
//	op: Gx1: embedded: {op: "Gx", mapping: [1], register: 2}
//
// Composed and embedded operators reference others by name. Each name is
// built once, so every reference to a stochastic operator shares its
// sampling sequence.
func Compile(v cue.Value) (oprep.Table, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}

	standard := false
	if sv := v.LookupPath(cue.ParsePath("standard")); sv.Exists() {
		b, err := sv.Bool()
		if err != nil {
			return nil, formatCUEError("standard", err)
		}
		standard = b
	}

	defs := make(map[string]*opDef)
	opsVal := v.LookupPath(cue.ParsePath("op"))
	if opsVal.Exists() {
		iter, err := opsVal.Fields()
		if err != nil {
			return nil, formatCUEError("op", err)
		}
		for iter.Next() {
			def, err := parseOp(iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				return nil, err
			}
			defs[def.name] = def
		}
	}
	if len(defs) == 0 && !standard {
		return nil, configErr("op", v.Pos(), "model defines no operators")
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	slices.Sort(names)

	known := func(name string) bool {
		_, ok := defs[name]
		return ok || (standard && IsStandardGate(name))
	}

	graph := make(refGraph, len(defs))
	for _, name := range names {
		d := defs[name]
		for _, ref := range d.refs {
			if !known(ref) {
				return nil, configErr("op."+name, d.pos, "references unknown operator %q", ref)
			}
		}
		graph[name] = d.refs
	}
	if cycles := findCycles(graph); len(cycles) > 0 {
		first := cycles[0]
		return nil, configErr("op."+first[0], defs[first[0]].pos,
			"reference cycle: %s", strings.Join(first, " -> "))
	}

	built := make(map[string]oprep.Rep)
	var resolve func(string) (oprep.Rep, error)
	resolve = func(name string) (oprep.Rep, error) {
		if r, ok := built[name]; ok {
			return r, nil
		}
		var (
			r   oprep.Rep
			err error
		)
		if d, ok := defs[name]; ok {
			if r, err = d.build(resolve); err != nil {
				return nil, buildErr("op."+name+"."+d.kind, d.pos, err)
			}
		} else {
			r = standardGate(name)
		}
		built[name] = r
		return r, nil
	}

	table := make(oprep.Table)
	if standard {
		for _, name := range StandardGateNames() {
			if _, overridden := defs[name]; !overridden {
				r, _ := resolve(name)
				table[name] = r
			}
		}
	}
	for _, name := range names {
		r, err := resolve(name)
		if err != nil {
			return nil, err
		}
		table[name] = r
	}
	return table, nil
}

// parseOp reads op.<name>, which must hold exactly one kind.
func parseOp(name string, v cue.Value) (*opDef, error) {
	field := "op." + name
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(field, err)
	}

	var kinds []string
	var body cue.Value
	for iter.Next() {
		kinds = append(kinds, iter.Selector().Unquoted())
		body = iter.Value()
	}
	if len(kinds) != 1 {
		return nil, configErr(field, v.Pos(), "must define exactly one kind, got %v", kinds)
	}

	d := &opDef{name: name, kind: kinds[0], pos: v.Pos()}
	field += "." + d.kind

	switch d.kind {
	case KindStatic:
		qubits, err := intField(body, field, "qubits")
		if err != nil {
			return nil, err
		}
		ops, err := opsField(body, field, "ops")
		if err != nil {
			return nil, err
		}
		d.build = func(func(string) (oprep.Rep, error)) (oprep.Rep, error) {
			return oprep.NewStatic(qubits, ops)
		}

	case KindStochastic:
		qubits, err := intField(body, field, "qubits")
		if err != nil {
			return nil, err
		}
		seed, err := intField(body, field, "seed")
		if err != nil {
			return nil, err
		}
		alts, err := alternativesField(body, field)
		if err != nil {
			return nil, err
		}
		d.build = func(func(string) (oprep.Rep, error)) (oprep.Rep, error) {
			return oprep.NewStochastic(qubits, int64(seed), alts...)
		}

	case KindDepolarizing, KindBitFlip:
		p, err := floatField(body, field, "p")
		if err != nil {
			return nil, err
		}
		seed, err := intField(body, field, "seed")
		if err != nil {
			return nil, err
		}
		kind := d.kind
		d.build = func(func(string) (oprep.Rep, error)) (oprep.Rep, error) {
			if kind == KindBitFlip {
				return BitFlip(p, int64(seed))
			}
			return Depolarizing(p, int64(seed))
		}

	case KindComposed:
		refs, err := stringList(body, field)
		if err != nil {
			return nil, err
		}
		if len(refs) == 0 {
			return nil, configErr(field, body.Pos(), "needs at least one operator")
		}
		d.refs = refs
		d.build = func(resolve func(string) (oprep.Rep, error)) (oprep.Rep, error) {
			children := make([]oprep.Rep, len(refs))
			for i, ref := range refs {
				r, err := resolve(ref)
				if err != nil {
					return nil, err
				}
				children[i] = r
			}
			return oprep.NewComposed(children...)
		}

	case KindEmbedded:
		ref, err := stringField(body, field, "op")
		if err != nil {
			return nil, err
		}
		mapping, err := intList(body.LookupPath(cue.ParsePath("mapping")), field+".mapping")
		if err != nil {
			return nil, err
		}
		register, err := intField(body, field, "register")
		if err != nil {
			return nil, err
		}
		d.refs = []string{ref}
		d.build = func(resolve func(string) (oprep.Rep, error)) (oprep.Rep, error) {
			child, err := resolve(ref)
			if err != nil {
				return nil, err
			}
			return oprep.NewEmbedded(child, mapping, register)
		}

	default:
		return nil, configErr(field, v.Pos(), "unknown operator kind %q", d.kind)
	}
	return d, nil
}

func alternativesField(body cue.Value, field string) ([]oprep.Alternative, error) {
	field += ".alternatives"
	av := body.LookupPath(cue.ParsePath("alternatives"))
	if !av.Exists() {
		return nil, nil
	}
	iter, err := av.List()
	if err != nil {
		return nil, formatCUEError(field, err)
	}
	var alts []oprep.Alternative
	for i := 0; iter.Next(); i++ {
		item := iter.Value()
		f := fmt.Sprintf("%s[%d]", field, i)
		w, err := floatField(item, f, "weight")
		if err != nil {
			return nil, err
		}
		ops, err := opsField(item, f, "ops")
		if err != nil {
			return nil, err
		}
		alts = append(alts, oprep.Alternative{Weight: w, Ops: ops})
	}
	return alts, nil
}

func required(v cue.Value, field, name string) (cue.Value, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return fv, configErr(field+"."+name, v.Pos(), "%s is required", name)
	}
	return fv, nil
}

func intField(v cue.Value, field, name string) (int, error) {
	fv, err := required(v, field, name)
	if err != nil {
		return 0, err
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(field+"."+name, err)
	}
	return int(n), nil
}

func floatField(v cue.Value, field, name string) (float64, error) {
	fv, err := required(v, field, name)
	if err != nil {
		return 0, err
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, formatCUEError(field+"."+name, err)
	}
	return f, nil
}

func stringField(v cue.Value, field, name string) (string, error) {
	fv, err := required(v, field, name)
	if err != nil {
		return "", err
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(field+"."+name, err)
	}
	return s, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(field, err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func intList(v cue.Value, field string) ([]int, error) {
	if !v.Exists() {
		return nil, configErr(field, v.Pos(), "is required")
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(field, err)
	}
	var out []int
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		out = append(out, int(n))
	}
	return out, nil
}

func opsField(v cue.Value, field, name string) ([]ir.Instruction, error) {
	fv, err := required(v, field, name)
	if err != nil {
		return nil, err
	}
	lines, err := stringList(fv, field+"."+name)
	if err != nil {
		return nil, err
	}
	ops := make([]ir.Instruction, len(lines))
	for i, line := range lines {
		in, err := ir.ParseInstruction(line)
		if err != nil {
			return nil, configErr(fmt.Sprintf("%s.%s[%d]", field, name, i), fv.Pos(), "%v", err)
		}
		ops[i] = in
	}
	return ops, nil
}

// buildErr re-attaches a constructor failure to the definition's position.
func buildErr(field string, pos token.Pos, err error) error {
	var ce *CompileError
	if errors.As(err, &ce) {
		return err
	}
	msg := strings.TrimPrefix(err.Error(), string(simerr.CodeConfiguration)+": ")
	return configErr(field, pos, "%s", msg)
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
