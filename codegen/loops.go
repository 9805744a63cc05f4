package codegen

import (
	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/encoder"
	"github.com/gfour/souffle/ram"
)

// genOperation dispatches one node of the loop-nest tree rooted at a
// Query. exitAddr is the label a nested Break jumps to: the "end" label of
// the nearest enclosing Scan/IndexedScan/Choice/IndexedChoice, or noLabel
// at the root of a Query with no enclosing loop at all. Aggregate and
// IndexedAggregate pass the exitAddr they received on to their Nested.
func (g *generator) genOperation(op ram.Operation, exitAddr bytecode.LabelID) {
	switch n := op.(type) {
	case *ram.Scan:
		g.genScan(n)
	case *ram.IndexedScan:
		g.genIndexedScan(n)
	case *ram.Choice:
		g.genChoice(n)
	case *ram.IndexedChoice:
		g.genIndexedChoice(n)
	case *ram.Aggregate:
		g.genAggregate(n, exitAddr)
	case *ram.IndexedAggregate:
		g.genIndexedAggregate(n, exitAddr)
	case *ram.Filter:
		g.genFilter(n, exitAddr)
	case *ram.Break:
		g.genBreak(n, exitAddr)
	case *ram.UnpackRecord:
		g.genUnpackRecord(n, exitAddr)
	case *ram.Project:
		g.genProject(n)
	case *ram.SubroutineReturn:
		g.genSubroutineReturn(n)
	case nil:
		g.fault(FaultMalformedIR, "nil operation")
	default:
		g.fault(FaultMalformedIR, "unsupported operation node %T", op)
	}
}

func (g *generator) genScan(n *ram.Scan) {
	id := g.relID(n.Rel)
	slot := g.b.NewIterSlot()
	g.b.EmitOp(bytecode.OpIterInitFullIndex)
	g.b.Emit(bytecode.Word(slot))
	g.b.Emit(bytecode.Word(id))
	g.genScanLoop(n, slot, n.TupleID, n.Nested)
}

func (g *generator) genIndexedScan(n *ram.IndexedScan) {
	slot := g.openIndexedIterator(n, n.Rel, n.Pattern)
	g.genScanLoop(n, slot, n.TupleID, n.Nested)
}

func (g *generator) genChoice(n *ram.Choice) {
	id := g.relID(n.Rel)
	slot := g.b.NewIterSlot()
	g.b.EmitOp(bytecode.OpIterInitFullIndex)
	g.b.Emit(bytecode.Word(slot))
	g.b.Emit(bytecode.Word(id))
	g.genChoiceLoop(n, slot, n.TupleID, n.Cond, n.Nested)
}

func (g *generator) genIndexedChoice(n *ram.IndexedChoice) {
	slot := g.openIndexedIterator(n, n.Rel, n.Pattern)
	g.genChoiceLoop(n, slot, n.TupleID, n.Cond, n.Nested)
}

// openIndexedIterator lowers an indexed pattern shared by IndexedScan,
// IndexedChoice and IndexedAggregate: bound columns are pushed in reverse
// column order, then the iterator is opened against either a resolved
// range index or, when the pattern turns out to have nothing bound, a
// plain full-index scan (a fully free pattern degenerates to an
// unconstrained scan, so the resolver is never even consulted).
func (g *generator) openIndexedIterator(node interface{}, rel ram.RelationRef, pattern []ram.Expression) int {
	id := g.relID(rel)
	arity := g.enc.Lookup(id).Arity
	if len(pattern) != arity {
		g.fault(FaultMalformedIR, "indexed operation pattern length %d does not match relation %q arity %d", len(pattern), rel.Name, arity)
	}

	bound := make([]bool, arity)
	fullIndexSearch := true
	for i := arity - 1; i >= 0; i-- {
		v := pattern[i]
		if v == nil {
			continue
		}
		g.genExpr(v)
		bound[i] = true
		fullIndexSearch = false
	}

	slot := g.b.NewIterSlot()
	if fullIndexSearch {
		g.b.EmitOp(bytecode.OpIterInitFullIndex)
		g.b.Emit(bytecode.Word(slot))
		g.b.Emit(bytecode.Word(id))
	} else {
		indexPos := g.res.Resolve(node, rel.Name, arity)
		g.emitRangeIndexInit(id, indexPos, slot, bound)
	}
	return slot
}

// emitRangeIndexInit packs bound into a type mask and emits the
// single-word or multi-word range-index init opcode.
func (g *generator) emitRangeIndexInit(id encoder.RelationID, indexPos, slot int, bound []bool) {
	words := packTypeMask(bound)
	if len(words) == 1 {
		g.b.EmitOp(bytecode.OpIterInitRangeIndexOneArg)
		g.b.Emit(bytecode.Word(slot))
		g.b.Emit(bytecode.Word(id))
		g.b.Emit(bytecode.Word(indexPos))
		g.b.Emit(words[0])
		return
	}
	g.b.EmitOp(bytecode.OpIterInitRangeIndex)
	g.b.Emit(bytecode.Word(slot))
	g.b.Emit(bytecode.Word(id))
	g.b.Emit(bytecode.Word(indexPos))
	g.b.Emit(bytecode.Word(len(words)))
	for _, w := range words {
		g.b.Emit(w)
	}
}

// genScanLoop emits the unconditional loop shape Scan/IndexedScan share:
// every tuple the already-opened iterator produces runs Nested once, and
// the loop always continues to the next tuple.
func (g *generator) genScanLoop(node interface{}, slot, tupleID int, nested ram.Operation) {
	end := g.b.Label(node, "end")
	top := g.b.Len()

	g.b.EmitOp(bytecode.OpIterNotAtEnd)
	g.b.Emit(bytecode.Word(slot))
	g.b.EmitBranchByID(bytecode.OpJumpIfZero, end)

	g.b.EmitOp(bytecode.OpIterSelect)
	g.b.Emit(bytecode.Word(slot))
	g.b.Emit(bytecode.Word(tupleID))

	g.genOperation(nested, end)

	g.b.EmitOp(bytecode.OpIterInc)
	g.b.Emit(bytecode.Word(slot))
	g.b.EmitBranchAbsolute(bytecode.OpGoto, top)
	g.b.Mark(end)
}

// genChoiceLoop emits the shape Choice/IndexedChoice share: the loop
// advances tuple by tuple testing cond, and on the first tuple satisfying
// it runs Nested exactly once before falling straight through to the loop
// exit — it never resumes iterating afterward, unlike Scan which visits
// every tuple.
func (g *generator) genChoiceLoop(node interface{}, slot, tupleID int, cond ram.Condition, nested ram.Operation) {
	end := g.b.Label(node, "end")
	match := g.b.Label(node, "match")
	top := g.b.Len()

	g.b.EmitOp(bytecode.OpIterNotAtEnd)
	g.b.Emit(bytecode.Word(slot))
	g.b.EmitBranchByID(bytecode.OpJumpIfZero, end)

	g.b.EmitOp(bytecode.OpIterSelect)
	g.b.Emit(bytecode.Word(slot))
	g.b.Emit(bytecode.Word(tupleID))

	g.genCond(cond)
	g.b.EmitBranchByID(bytecode.OpJumpIfNotZero, match)

	g.b.EmitOp(bytecode.OpIterInc)
	g.b.Emit(bytecode.Word(slot))
	g.b.EmitBranchAbsolute(bytecode.OpGoto, top)

	g.b.Mark(match)
	g.genOperation(nested, end)
	g.b.Mark(end)
}

// genFilter runs Nested only when Cond holds; unlike Choice it iterates
// nothing of its own.
func (g *generator) genFilter(n *ram.Filter, exitAddr bytecode.LabelID) {
	g.genCond(n.Cond)
	skip := g.b.Label(n, "filter-skip")
	g.b.EmitBranchByID(bytecode.OpJumpIfZero, skip)
	g.genOperation(n.Nested, exitAddr)
	g.b.Mark(skip)
}

// genBreak tests Cond and, if it holds, jumps straight to the nearest
// enclosing loop's exit address without running Nested for this tuple;
// otherwise it falls through into Nested (matches original_source's
// visitBreak: the condition gates whether Nested runs at all, not
// something evaluated only after it runs).
func (g *generator) genBreak(n *ram.Break, exitAddr bytecode.LabelID) {
	if exitAddr == noLabel {
		g.fault(FaultMalformedIR, "break statement outside an enclosing loop")
	}
	g.genCond(n.Cond)
	g.b.EmitBranchByID(bytecode.OpExit, exitAddr)
	g.genOperation(n.Nested, exitAddr)
}

// genUnpackRecord evaluates Expr, then unpacks it into TupleID and runs
// Nested unless the record reference turns out to be null, in which case
// Nested is skipped entirely; this mirrors the original generator's
// visitUnpackRecord, which evaluates the record expression, emits the
// unpack opcode with a forward-referenced skip label, lowers Nested, then
// marks the skip label right after it.
func (g *generator) genUnpackRecord(n *ram.UnpackRecord, exitAddr bytecode.LabelID) {
	g.genExpr(n.Expr)

	skip := g.b.Label(n, "unpack-skip")
	g.b.EmitOp(bytecode.OpUnpackRecord)
	g.b.Emit(bytecode.Word(n.Arity))
	g.b.Emit(bytecode.Word(n.TupleID))
	if off, ok := g.b.ResolveLabel(skip); ok {
		g.b.Emit(off)
	} else {
		g.b.Emit(0)
	}

	g.genOperation(n.Nested, exitAddr)
	g.b.Mark(skip)
}

// genProject inserts one tuple, built from Values, into Rel.
func (g *generator) genProject(n *ram.Project) {
	id := g.relID(n.Rel)
	arity := g.enc.Lookup(id).Arity
	if len(n.Values) != arity {
		g.fault(FaultMalformedIR, "project into %q supplies %d values, relation arity is %d", n.Rel.Name, len(n.Values), arity)
	}
	for i := len(n.Values) - 1; i >= 0; i-- {
		g.genExpr(n.Values[i])
	}
	g.b.EmitOp(bytecode.OpProject)
	g.b.Emit(bytecode.Word(arity))
	g.b.Emit(bytecode.Word(id))
}

// genSubroutineReturn pushes every defined value of Values (reverse column
// order) and describes the whole tuple, including undefined placeholder
// columns, with a 'V'/'_' descriptor string interned into the symbol
// table.
func (g *generator) genSubroutineReturn(n *ram.SubroutineReturn) {
	descriptor := make([]byte, len(n.Values))
	for i := len(n.Values) - 1; i >= 0; i-- {
		if n.Values[i] == nil {
			descriptor[i] = '_'
			continue
		}
		descriptor[i] = 'V'
		g.genExpr(n.Values[i])
	}
	g.b.EmitOp(bytecode.OpSubroutineReturn)
	g.b.Emit(bytecode.Word(len(n.Values)))
	g.b.Emit(g.sym.Intern(string(descriptor)))
}
