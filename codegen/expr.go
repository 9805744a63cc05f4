package codegen

import (
	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/ram"
)

// genExpr lowers e in post-order: every argument is emitted before the
// opcode that consumes it, so the interpreter's operand stack holds
// arguments in evaluation order when the opcode runs.
func (g *generator) genExpr(e ram.Expression) {
	switch n := e.(type) {
	case *ram.NumberConstant:
		g.b.EmitOp(bytecode.OpNumber)
		g.b.Emit(bytecode.Word(n.Value))

	case *ram.TupleElement:
		g.b.EmitOp(bytecode.OpTupleElement)
		g.b.Emit(bytecode.Word(n.TupleID))
		g.b.Emit(bytecode.Word(n.Column))

	case *ram.AutoIncrement:
		g.b.EmitOp(bytecode.OpAutoIncrement)
		g.b.Emit(g.sym.Intern(n.Counter))

	case *ram.PackRecord:
		for _, a := range n.Args {
			g.genExpr(a)
		}
		g.b.EmitOp(bytecode.OpPackRecord)
		g.b.Emit(bytecode.Word(len(n.Args)))

	case *ram.SubroutineArgument:
		g.b.EmitOp(bytecode.OpSubroutineArg)
		g.b.Emit(bytecode.Word(n.Index))

	case *ram.Unary:
		g.genExpr(n.Arg)
		g.b.EmitOp(unaryOpcode(n.Op))

	case *ram.Binary:
		g.genExpr(n.Left)
		g.genExpr(n.Right)
		g.b.EmitOp(binaryOpcode(n.Op))

	case *ram.Variadic:
		if len(n.Args) < 2 {
			g.fault(FaultMalformedIR, "min/max requires at least 2 arguments, got %d", len(n.Args))
		}
		for _, a := range n.Args {
			g.genExpr(a)
		}
		g.b.EmitOp(variadicOpcode(n.Op))
		g.b.Emit(bytecode.Word(len(n.Args)))

	case *ram.Cat:
		// arguments are emitted in reverse so the interpreter's operand
		// stack yields them left to right as it pops.
		for i := len(n.Args) - 1; i >= 0; i-- {
			g.genExpr(n.Args[i])
		}
		g.b.EmitOp(bytecode.OpCat)
		g.b.Emit(bytecode.Word(len(n.Args)))

	case *ram.Substr:
		g.genExpr(n.Str)
		g.genExpr(n.Offset)
		g.genExpr(n.Length)
		g.b.EmitOp(bytecode.OpSubstr)

	case *ram.UserDefinedOperator:
		for i := len(n.Args) - 1; i >= 0; i-- {
			g.genExpr(n.Args[i])
		}
		g.b.EmitOp(bytecode.OpUserDefinedOperator)
		g.b.Emit(g.sym.Intern(n.Name))
		g.b.Emit(g.sym.Intern(n.TypeSignature))
		g.b.Emit(bytecode.Word(len(n.Args)))

	case nil:
		g.fault(FaultMalformedIR, "nil expression")
	default:
		g.fault(FaultMalformedIR, "unsupported expression node %T", e)
	}
}

func unaryOpcode(op ram.UnaryOp) bytecode.Opcode {
	switch op {
	case ram.OpOrd:
		return bytecode.OpOrd
	case ram.OpStrLen:
		return bytecode.OpStrLen
	case ram.OpNeg:
		return bytecode.OpNeg
	case ram.OpBNot:
		return bytecode.OpBNot
	case ram.OpLNot:
		return bytecode.OpLNot
	case ram.OpToNumber:
		return bytecode.OpToNumber
	case ram.OpToString:
		return bytecode.OpToString
	default:
		fault(FaultUnsupportedIntrinsic, "unsupported unary operator %v", op)
		panic("unreachable")
	}
}

func binaryOpcode(op ram.BinaryOp) bytecode.Opcode {
	switch op {
	case ram.OpAdd:
		return bytecode.OpAdd
	case ram.OpSub:
		return bytecode.OpSub
	case ram.OpMul:
		return bytecode.OpMul
	case ram.OpDiv:
		return bytecode.OpDiv
	case ram.OpExp:
		return bytecode.OpExp
	case ram.OpMod:
		return bytecode.OpMod
	case ram.OpBAnd:
		return bytecode.OpBAnd
	case ram.OpBOr:
		return bytecode.OpBOr
	case ram.OpBXor:
		return bytecode.OpBXor
	case ram.OpLAnd:
		return bytecode.OpLAnd
	case ram.OpLOr:
		return bytecode.OpLOr
	default:
		fault(FaultUnsupportedIntrinsic, "unsupported binary operator %v", op)
		panic("unreachable")
	}
}

func variadicOpcode(op ram.VariadicOp) bytecode.Opcode {
	switch op {
	case ram.OpMin:
		return bytecode.OpMin
	case ram.OpMax:
		return bytecode.OpMax
	default:
		fault(FaultUnsupportedIntrinsic, "unsupported variadic operator %v", op)
		panic("unreachable")
	}
}
