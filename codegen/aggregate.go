package codegen

import (
	"math"

	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/ram"
)

// aggSeed is the accumulator's starting value for fn: the domain's max for
// a min-fold (so the first real value always replaces it), the domain's
// min for a max-fold, and zero for count/sum.
func aggSeed(fn ram.AggFunc) int64 {
	switch fn {
	case ram.AggMin:
		return math.MaxInt64
	case ram.AggMax:
		return math.MinInt64
	case ram.AggCount, ram.AggSum:
		return 0
	default:
		fault(FaultUnsupportedIntrinsic, "unsupported aggregate function %v", fn)
		panic("unreachable")
	}
}

// foldOpcode returns the binary opcode that combines the running
// accumulator with one new value for fn. min/max are the variadic
// OpMin/OpMax with an argument count of 2; count and sum both fold with
// plain addition, count's "new value" simply always being the constant 1.
func foldOpcode(fn ram.AggFunc) bytecode.Opcode {
	switch fn {
	case ram.AggMin:
		return bytecode.OpMin
	case ram.AggMax:
		return bytecode.OpMax
	case ram.AggCount, ram.AggSum:
		return bytecode.OpAdd
	default:
		fault(FaultUnsupportedIntrinsic, "unsupported aggregate function %v", fn)
		panic("unreachable")
	}
}

func (g *generator) genAggregate(n *ram.Aggregate, exitAddr bytecode.LabelID) {
	id := g.relID(n.Rel)
	slot := g.b.NewIterSlot()
	g.b.EmitOp(bytecode.OpIterInitFullIndex)
	g.b.Emit(bytecode.Word(slot))
	g.b.Emit(bytecode.Word(id))
	g.genAggregateBody(n, slot, n.TupleID, n.Func, n.Target, n.Cond, n.Nested, exitAddr)
}

func (g *generator) genIndexedAggregate(n *ram.IndexedAggregate, exitAddr bytecode.LabelID) {
	slot := g.openIndexedIterator(n, n.Rel, n.Pattern)
	g.genAggregateBody(n, slot, n.TupleID, n.Func, n.Target, n.Cond, n.Nested, exitAddr)
}

// genAggregateBody lowers the shared tail of Aggregate/IndexedAggregate
// once the relation iterator identified by slot is already open: fold
// Target over every tuple satisfying Cond, write the result into column 0
// of tupleID, then run Nested — unless the fold is min/max and the
// accumulator never moved off its seed, in which case Nested is skipped.
// That "no rows matched" test is the same seed comparison the original
// generator uses, including its false-negative on real data that happens
// to equal the seed (documented in DESIGN.md and preserved unchanged).
func (g *generator) genAggregateBody(node interface{}, slot, tupleID int, fn ram.AggFunc, target ram.Expression, cond ram.Condition, nested ram.Operation, exitAddr bytecode.LabelID) {
	if fn == ram.AggCount && isTriviallyTrue(cond) {
		g.b.EmitOp(bytecode.OpAggregateCountShortcut)
		g.b.Emit(bytecode.Word(slot))
	} else {
		seed := aggSeed(fn)
		g.b.EmitOp(bytecode.OpNumber)
		g.b.Emit(bytecode.Word(seed))
		g.genAccumulateLoop(node, slot, tupleID, fn, target, cond)
	}

	g.b.EmitOp(bytecode.OpAggregateReturn)
	g.b.Emit(bytecode.Word(tupleID))

	if fn != ram.AggMin && fn != ram.AggMax {
		g.genOperation(nested, exitAddr)
		return
	}

	skip := g.b.Label(node, "agg-no-match")
	g.genCond(&ram.Constraint{
		Op:    ram.CstrEq,
		Left:  &ram.TupleElement{TupleID: tupleID, Column: 0},
		Right: &ram.NumberConstant{Value: aggSeed(fn)},
	})
	g.b.EmitBranchByID(bytecode.OpExit, skip)
	g.genOperation(nested, exitAddr)
	g.b.Mark(skip)
}

// genAccumulateLoop drives the iterator identified by slot: for every
// tuple, select it into tupleID, test cond (true if nil or *ram.True), and
// on a match fold either target's value (min/max/sum) or the constant 1
// (count) into the running accumulator on top of the operand stack. The
// loop always continues to the next tuple regardless of whether cond held.
func (g *generator) genAccumulateLoop(node interface{}, slot, tupleID int, fn ram.AggFunc, target ram.Expression, cond ram.Condition) {
	done := g.b.Label(node, "agg-done")
	top := g.b.Len()

	g.b.EmitOp(bytecode.OpIterNotAtEnd)
	g.b.Emit(bytecode.Word(slot))
	g.b.EmitBranchByID(bytecode.OpJumpIfZero, done)

	g.b.EmitOp(bytecode.OpIterSelect)
	g.b.Emit(bytecode.Word(slot))
	g.b.Emit(bytecode.Word(tupleID))

	endOfIteration := g.b.Label(node, "agg-skip")
	if !isTriviallyTrue(cond) {
		g.genCond(cond)
		g.b.EmitBranchByID(bytecode.OpJumpIfZero, endOfIteration)
	}

	if fn == ram.AggCount {
		g.b.EmitOp(bytecode.OpNumber)
		g.b.Emit(bytecode.Word(1))
	} else {
		g.genExpr(target)
	}
	op := foldOpcode(fn)
	g.b.EmitOp(op)
	if op == bytecode.OpMin || op == bytecode.OpMax {
		g.b.Emit(bytecode.Word(2))
	}

	g.b.Mark(endOfIteration)
	g.b.EmitOp(bytecode.OpIterInc)
	g.b.Emit(bytecode.Word(slot))
	g.b.EmitBranchAbsolute(bytecode.OpGoto, top)
	g.b.Mark(done)
}
