package codegen

import (
	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/ram"
)

// genStatement dispatches one node of the top-level executable tree.
// loopExit is the label a nested Exit jumps to: the nearest enclosing
// Loop's exit, or noLabel outside any Loop.
func (g *generator) genStatement(st ram.Statement, loopExit bytecode.LabelID) {
	switch n := st.(type) {
	case *ram.Sequence:
		for _, s := range n.Stmts {
			g.genStatement(s, loopExit)
		}
	case *ram.Parallel:
		g.genParallel(n, loopExit)
	case *ram.Loop:
		g.genLoop(n)
	case *ram.Exit:
		g.genExit(n, loopExit)
	case *ram.Query:
		g.genOperation(n.Root, noLabel)
	case *ram.Create:
		g.b.EmitOp(bytecode.OpCreate)
		g.b.Emit(bytecode.Word(g.relID(n.Rel)))
	case *ram.Clear:
		g.b.EmitOp(bytecode.OpClear)
		g.b.Emit(bytecode.Word(g.relID(n.Rel)))
	case *ram.Drop:
		g.b.EmitOp(bytecode.OpDrop)
		g.b.Emit(bytecode.Word(g.relID(n.Rel)))
	case *ram.Merge:
		g.b.EmitOp(bytecode.OpMerge)
		g.b.Emit(bytecode.Word(g.relID(n.From)))
		g.b.Emit(bytecode.Word(g.relID(n.To)))
	case *ram.Swap:
		g.b.EmitOp(bytecode.OpSwap)
		g.b.Emit(bytecode.Word(g.relID(n.A)))
		g.b.Emit(bytecode.Word(g.relID(n.B)))
	case *ram.LogSize:
		g.b.EmitOp(bytecode.OpLogSize)
		g.b.Emit(bytecode.Word(g.relID(n.Rel)))
		g.b.Emit(g.sym.Intern(n.Message))
	case *ram.Load:
		g.genLoad(n)
	case *ram.Store:
		g.genStore(n)
	case *ram.Fact:
		g.genFact(n)
	case *ram.LogTimer:
		g.genLogTimer(n, loopExit)
	case *ram.LogRelationTimer:
		g.genLogRelationTimer(n, loopExit)
	case *ram.DebugInfo:
		g.genDebugInfo(n, loopExit)
	case nil:
		g.fault(FaultMalformedIR, "nil statement")
	default:
		g.fault(FaultMalformedIR, "unsupported statement node %T", st)
	}
}

// genParallel serialises Parallel exactly like Sequence when Mode is
// ParallelSerial; ParallelFork has no interpreter to run concurrently on,
// so codegen rejects it rather than silently serialising something the
// author marked as needing to fork.
func (g *generator) genParallel(n *ram.Parallel, loopExit bytecode.LabelID) {
	if n.Mode == ram.ParallelFork {
		g.fault(FaultUnsupportedIntrinsic, "parallel fork is not supported by this generator")
	}
	for _, s := range n.Stmts {
		g.genStatement(s, loopExit)
	}
}

// genLoop repeats Body until a nested Exit fires. exit is the label Body's
// Exit statements (and Breaks reaching up through it, though Break's own
// exitAddr comes from its enclosing loop-nest operation, not this one)
// branch to.
func (g *generator) genLoop(n *ram.Loop) {
	g.b.EmitOp(bytecode.OpLoopHeader)
	g.b.EmitOp(bytecode.OpResetIteration)

	exit := g.b.Label(n, "loop-exit")
	top := g.b.Len()

	g.genStatement(n.Body, exit)

	g.b.EmitOp(bytecode.OpIncIteration)
	g.b.EmitBranchAbsolute(bytecode.OpGoto, top)
	g.b.Mark(exit)
}

// genExit tests Cond and, if it holds, jumps to the nearest enclosing
// Loop's exit label.
func (g *generator) genExit(n *ram.Exit, loopExit bytecode.LabelID) {
	if loopExit == noLabel {
		g.fault(FaultMalformedIR, "exit statement outside an enclosing loop")
	}
	g.genCond(n.Cond)
	g.b.EmitBranchByID(bytecode.OpExit, loopExit)
}

func (g *generator) genLoad(n *ram.Load) {
	id := g.relID(n.Rel)
	idx := g.b.IO().Add(bytecode.IODirective{
		RelationName: n.Rel.Name,
		Operation:    n.Directive.Operation,
		Params:       n.Directive.Params,
	})
	g.b.EmitOp(bytecode.OpLoad)
	g.b.Emit(bytecode.Word(id))
	g.b.Emit(bytecode.Word(idx))
}

func (g *generator) genStore(n *ram.Store) {
	id := g.relID(n.Rel)
	idx := g.b.IO().Add(bytecode.IODirective{
		RelationName: n.Rel.Name,
		Operation:    n.Directive.Operation,
		Params:       n.Directive.Params,
	})
	g.b.EmitOp(bytecode.OpStore)
	g.b.Emit(bytecode.Word(id))
	g.b.Emit(bytecode.Word(idx))
}

// genFact inserts one literal tuple. Unlike Project, Fact pushes the
// relation id before the arity — the two opcodes' operand orders disagree
// in the original generator itself, and codegen preserves that as-is
// rather than "fixing" it into a consistency the original never had.
func (g *generator) genFact(n *ram.Fact) {
	id := g.relID(n.Rel)
	arity := g.enc.Lookup(id).Arity
	if len(n.Values) != arity {
		g.fault(FaultMalformedIR, "fact for %q supplies %d values, relation arity is %d", n.Rel.Name, len(n.Values), arity)
	}
	for i := len(n.Values) - 1; i >= 0; i-- {
		g.genExpr(n.Values[i])
	}
	g.b.EmitOp(bytecode.OpFact)
	g.b.Emit(bytecode.Word(id))
	g.b.Emit(bytecode.Word(arity))
}

// genLogTimer and genLogRelationTimer bracket Body with a profile timer,
// tagging any fault raised while lowering Body with n.Pos so a malformed
// nested statement is reported against the timer's debugging label it was
// found under.
func (g *generator) genLogTimer(n *ram.LogTimer, loopExit bytecode.LabelID) {
	prevPos := g.pos
	g.pos = n.Pos
	defer func() { g.pos = prevPos }()

	slot := g.b.NewTimerSlot()
	g.b.EmitOp(bytecode.OpLogTimer)
	g.b.Emit(g.sym.Intern(n.Message))
	g.b.Emit(bytecode.Word(slot))

	g.genStatement(n.Body, loopExit)

	g.b.EmitOp(bytecode.OpStopLogTimer)
	g.b.Emit(bytecode.Word(slot))
}

// genDebugInfo tags Body with Message and lowers it unconditionally; unlike
// genLogTimer/genLogRelationTimer there is no closing opcode, since
// OpDebugInfo is a pure annotation rather than a timer bracket.
func (g *generator) genDebugInfo(n *ram.DebugInfo, loopExit bytecode.LabelID) {
	g.b.EmitOp(bytecode.OpDebugInfo)
	g.b.Emit(g.sym.Intern(n.Message))

	g.genStatement(n.Body, loopExit)
}

func (g *generator) genLogRelationTimer(n *ram.LogRelationTimer, loopExit bytecode.LabelID) {
	prevPos := g.pos
	g.pos = n.Pos
	defer func() { g.pos = prevPos }()

	slot := g.b.NewTimerSlot()
	id := g.relID(n.Rel)
	g.b.EmitOp(bytecode.OpLogRelationTimer)
	g.b.Emit(g.sym.Intern(n.Message))
	g.b.Emit(bytecode.Word(slot))
	g.b.Emit(bytecode.Word(id))

	g.genStatement(n.Body, loopExit)

	g.b.EmitOp(bytecode.OpStopLogTimer)
	g.b.Emit(bytecode.Word(slot))
}
