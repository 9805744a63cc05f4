package codegen

import (
	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/encoder"
	"github.com/gfour/souffle/ram"
)

// maskWordBits is the width of one packed type-mask word: one bit per
// bound/free column, most words fully used except possibly the last.
const maskWordBits = 64

// genExistenceCheck lowers an existence check: classify every considered
// column of the pattern as bound (has an expression) or free (nil), then
// pick one of three shapes depending on how many turned out bound.
//
// The considered range is all of [0, arity) normally, or [0, arity-2) when
// Provenance is set: a provenance-tracked relation carries two trailing
// columns that a caller-supplied pattern is never allowed to constrain, so
// they are excluded from consideration regardless of what the pattern
// says about them. See DESIGN.md for how this range was pinned down.
func (g *generator) genExistenceCheck(n *ram.ExistenceCheck) {
	id := g.relID(n.Rel)
	arity := g.enc.Lookup(id).Arity
	if len(n.Pattern) != arity {
		g.fault(FaultMalformedIR, "existence check pattern length %d does not match relation %q arity %d", len(n.Pattern), n.Rel.Name, arity)
	}

	hi := arity
	if n.Provenance {
		hi = arity - 2
		if hi < 0 {
			hi = 0
		}
	}

	bound := make([]bool, arity)
	anyBound := false
	allBound := true

	for i := hi - 1; i >= 0; i-- {
		v := n.Pattern[i]
		if v == nil {
			allBound = false
			continue
		}
		g.genExpr(v)
		bound[i] = true
		anyBound = true
	}
	if n.Provenance {
		// per the original's comment, a provenance existence check can
		// never be a full-order check even if every considered column
		// happened to be bound.
		allBound = false
	}

	switch {
	case !anyBound:
		g.b.EmitOp(bytecode.OpEmptinessCheck)
		g.b.Emit(bytecode.Word(id))
		g.b.EmitOp(bytecode.OpLNot)
	case allBound:
		g.b.EmitOp(bytecode.OpRelationContains)
		g.b.Emit(bytecode.Word(id))
	default:
		indexPos := g.res.Resolve(n, n.Rel.Name, arity)
		g.emitPartialExistenceCheck(id, indexPos, bound)
	}
}

// emitPartialExistenceCheck packs bound into ceil(arity/maskWordBits)
// words and emits the single-word or multi-word opcode accordingly.
func (g *generator) emitPartialExistenceCheck(id encoder.RelationID, indexPos int, bound []bool) {
	words := packTypeMask(bound)
	if len(words) == 1 {
		g.b.EmitOp(bytecode.OpExistenceCheckOneArg)
		g.b.Emit(bytecode.Word(id))
		g.b.Emit(bytecode.Word(indexPos))
		g.b.Emit(words[0])
		return
	}
	g.b.EmitOp(bytecode.OpExistenceCheck)
	g.b.Emit(bytecode.Word(id))
	g.b.Emit(bytecode.Word(indexPos))
	g.b.Emit(bytecode.Word(len(words)))
	for _, w := range words {
		g.b.Emit(w)
	}
}

// packTypeMask packs one bit per column into ceil(len(bound)/maskWordBits)
// words (minimum one), bit j of word i corresponding to column
// i*maskWordBits+j.
func packTypeMask(bound []bool) []bytecode.Word {
	n := (len(bound) + maskWordBits - 1) / maskWordBits
	if n == 0 {
		n = 1
	}
	words := make([]bytecode.Word, n)
	for i, b := range bound {
		if b {
			words[i/maskWordBits] |= bytecode.Word(1) << uint(i%maskWordBits)
		}
	}
	return words
}
