package codegen

import (
	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/ram"
)

// genCond lowers c in post-order, leaving a single boolean on the operand
// stack.
func (g *generator) genCond(c ram.Condition) {
	switch n := c.(type) {
	case *ram.True:
		g.b.EmitOp(bytecode.OpTrue)
	case *ram.False:
		g.b.EmitOp(bytecode.OpFalse)
	case *ram.And:
		g.genCond(n.Left)
		g.genCond(n.Right)
		g.b.EmitOp(bytecode.OpAnd)
	case *ram.Not:
		g.genCond(n.Arg)
		g.b.EmitOp(bytecode.OpLNot)
	case *ram.Constraint:
		g.genExpr(n.Left)
		g.genExpr(n.Right)
		g.b.EmitOp(constraintOpcode(n.Op))
	case *ram.ExistenceCheck:
		g.genExistenceCheck(n)
	case nil:
		g.fault(FaultMalformedIR, "nil condition")
	default:
		g.fault(FaultMalformedIR, "unsupported condition node %T", c)
	}
}

func constraintOpcode(op ram.ConstraintOp) bytecode.Opcode {
	switch op {
	case ram.CstrEq:
		return bytecode.OpCstrEq
	case ram.CstrNe:
		return bytecode.OpCstrNe
	case ram.CstrLt:
		return bytecode.OpCstrLt
	case ram.CstrLe:
		return bytecode.OpCstrLe
	case ram.CstrGt:
		return bytecode.OpCstrGt
	case ram.CstrGe:
		return bytecode.OpCstrGe
	case ram.CstrMatch:
		return bytecode.OpCstrMatch
	case ram.CstrNotMatch:
		return bytecode.OpCstrNotMatch
	case ram.CstrContains:
		return bytecode.OpCstrContains
	case ram.CstrNotContains:
		return bytecode.OpCstrNotContains
	default:
		fault(FaultUnsupportedIntrinsic, "unsupported constraint operator %v", op)
		panic("unreachable")
	}
}
