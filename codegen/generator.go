// Package codegen lowers a ram.Program into a bytecode.Program. Generate
// walks the statement and operation trees twice: the first walk populates
// the builder's label table by running every emission exactly as the
// second walk will, so every forward branch has a resolved target by the
// time it is written for real; the second walk, after the builder's
// per-pass allocators are reset (but not its label table), produces the
// stream that is actually kept.
package codegen

import (
	"fmt"
	"sort"

	"github.com/gfour/souffle/analysis"
	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/encoder"
	"github.com/gfour/souffle/internal/logging"
	"github.com/gfour/souffle/ram"
)

var log = logging.Named("codegen")

// FaultKind classifies a compiler invariant violation: these are the only
// three outcomes Generate ever reports as an error, as opposed to a bug in
// the generator itself.
type FaultKind int

const (
	FaultMalformedIR FaultKind = iota
	FaultUnsupportedIntrinsic
	FaultMissingIndex
)

func (k FaultKind) String() string {
	switch k {
	case FaultMalformedIR:
		return "malformed-ir"
	case FaultUnsupportedIntrinsic:
		return "unsupported-intrinsic"
	case FaultMissingIndex:
		return "missing-index"
	default:
		return fmt.Sprintf("fault(%d)", int(k))
	}
}

// Fault is what Generate returns for every invariant violation it detects.
// Pos, when non-empty, is the debugging tag carried by the statement the
// violation was found under.
type Fault struct {
	Kind FaultKind
	Pos  ram.Pos
	Msg  string
}

func (f *Fault) Error() string {
	if f.Pos != "" {
		return fmt.Sprintf("%s: %s (at %s)", f.Kind, f.Msg, f.Pos)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

// generator carries the state both passes share while walking the tree.
type generator struct {
	b   *bytecode.Builder
	sym *bytecode.SymbolTable
	enc *encoder.Encoder
	res *analysis.Resolver

	// pos is the debugging tag of the nearest enclosing LogTimer or
	// LogRelationTimer, attached to any fault raised while lowering its
	// body. ram.Pos carries no structural meaning of its own; this is its
	// one use.
	pos ram.Pos
}

// fault panics with a *Fault tagged with the generator's current position.
// Generate is the only place that recovers it; every lowering function in
// this package calls it instead of returning an error, so a violation
// found ten stack frames deep in a loop nest unwinds cleanly to the one
// place that turns it into a result.
func (g *generator) fault(kind FaultKind, format string, args ...interface{}) {
	f := &Fault{Kind: kind, Pos: g.pos, Msg: fmt.Sprintf(format, args...)}
	log.Error("%s", f.Error())
	panic(f)
}

// fault is fault's untagged form, for the handful of pure opcode-mapping
// helpers below that have no generator (and so no ambient position) to
// hand.
func fault(kind FaultKind, format string, args ...interface{}) {
	f := &Fault{Kind: kind, Msg: fmt.Sprintf(format, args...)}
	log.Error("%s", f.Error())
	panic(f)
}

// Generate lowers prog into a finished bytecode.Program, resolving indexed
// operations against oracle, using the encoder's default arity threshold.
// Every *Fault, and every *analysis.MissingIndexError
// escaping the Index Resolver, is recovered here and returned as err; any
// other panic is a bug in the generator and is left to propagate.
func Generate(prog *ram.Program, oracle analysis.Oracle) (*bytecode.Program, error) {
	return GenerateWithMaxArity(prog, oracle, encoder.DefaultMaxDirectArity)
}

// GenerateWithMaxArity is Generate with an explicit storage-kind arity
// threshold, so config.Config.Compiler.MaxDirectArity can override the
// encoder's default without this package importing the config package.
func GenerateWithMaxArity(prog *ram.Program, oracle analysis.Oracle, maxDirectArity int) (out *bytecode.Program, err error) {
	defer func() {
		if r := recover(); r == nil {
			return
		} else if e, ok := r.(*Fault); ok {
			err = e
		} else if e, ok := r.(*analysis.MissingIndexError); ok {
			err = &Fault{Kind: FaultMissingIndex, Msg: e.Error()}
		} else {
			panic(r)
		}
	}()

	g := &generator{
		b:   bytecode.NewBuilder(),
		sym: bytecode.NewSymbolTable(),
		enc: encoder.NewWithMaxArity(prog.Relations, maxDirectArity),
		res: analysis.NewResolver(oracle),
	}

	log.Debug("pass one: populating label table")
	g.pass(prog)
	g.b.Reset()
	log.Debug("pass two: emitting final stream")
	g.pass(prog)
	g.b.EmitOp(bytecode.OpStop)

	p := bytecode.NewProgram(g.b.Words(), g.sym, g.b.IO().All(), g.b.IterSlotCount(), g.b.TimerSlotCount())
	return p, nil
}

// pass walks prog's whole translation unit once: Main, then every
// subroutine in a fixed (sorted-by-name) order. Subroutine order must be
// identical between the two passes — deterministic emission depends on it
// — so it cannot be left to Go's randomized map iteration.
func (g *generator) pass(prog *ram.Program) {
	g.genStatement(prog.Main, noLabel)

	names := make([]string, 0, len(prog.Subroutines))
	for name := range prog.Subroutines {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		body := prog.Subroutines[name]
		g.b.Mark(g.b.Label(body, "subroutine-entry"))
		g.genStatement(body, noLabel)
	}
}

// noLabel is the sentinel passed as an enclosing-loop or enclosing-operation
// exit address when there is none: an Exit or Break reached with this value
// in scope is a malformed-IR fault.
const noLabel bytecode.LabelID = -1

// relID resolves a RelationRef to its encoder id. The encoder is
// pre-seeded from the declared relation list and relID only looks names
// up in it: a reference to a relation that was not declared is a
// malformed-IR fault.
func (g *generator) relID(ref ram.RelationRef) encoder.RelationID {
	if d, ok := g.enc.LookupByName(ref.Name); ok {
		return d.ID
	}
	g.fault(FaultMalformedIR, "reference to undeclared relation %q", ref.Name)
	panic("unreachable")
}

func isTriviallyTrue(c ram.Condition) bool {
	if c == nil {
		return true
	}
	_, ok := c.(*ram.True)
	return ok
}
