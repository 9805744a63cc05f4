package bytecode

import (
	"fmt"
	"strings"
)

// branchTargetOperand reports, for opcodes whose operand words include an
// absolute stream offset, which operand position (0-based) that offset
// occupies. Every other opcode has no branch target.
func branchTargetOperand(op Opcode) (operandIndex int, ok bool) {
	switch op {
	case OpGoto, OpJumpIfZero, OpJumpIfNotZero, OpExit:
		return 0, true
	case OpUnpackRecord:
		return 2, true
	default:
		return 0, false
	}
}

// operandCount returns how many operand words follow op at position pos in
// stream. OpExistenceCheck and OpIterInitRangeIndex are the only opcodes
// whose own operand words include a trailing run of a runtime-determined
// length (a packed type mask); every other opcode's word count is static,
// even the ones (OpMin/OpMax/OpCat/OpFact/OpProject) whose argument values
// are pushed by separate instructions ahead of it rather than carried as
// its own operands.
func operandCount(op Opcode, stream []Word, pos int) int {
	if n, ok := op.FixedOperandCount(); ok {
		return n
	}
	switch op {
	case OpExistenceCheck:
		if pos+2 < len(stream) {
			return 2 + 1 + int(stream[pos+2])
		}
	case OpIterInitRangeIndex:
		if pos+3 < len(stream) {
			return 3 + 1 + int(stream[pos+3])
		}
	}
	return 0
}

// findJumpTargets walks stream once, in the same instruction-boundary order
// a real execution would, recording every offset a branch opcode names.
func findJumpTargets(stream []Word) map[int]bool {
	targets := make(map[int]bool)
	pos := 0
	for pos < len(stream) {
		op := Opcode(stream[pos])
		pos++
		n := operandCount(op, stream, pos)
		if idx, ok := branchTargetOperand(op); ok && pos+idx < len(stream) {
			targets[int(stream[pos+idx])] = true
		}
		pos += n
	}
	return targets
}

// Disassembler renders a Program's word stream as human-readable text,
// resolving symbol ids to their strings and marking branch targets with
// L<offset> labels.
type Disassembler struct {
	Program *Program
}

// NewDisassembler wraps p for disassembly.
func NewDisassembler(p *Program) *Disassembler {
	return &Disassembler{Program: p}
}

// Text renders the whole stream.
func (d *Disassembler) Text() string {
	stream := d.Program.Stream
	targets := findJumpTargets(stream)

	var b strings.Builder
	pos := 0
	for pos < len(stream) {
		if targets[pos] {
			fmt.Fprintf(&b, "L%d:\n", pos)
		}
		line, next := d.instruction(stream, pos)
		b.WriteString(line)
		b.WriteByte('\n')
		pos = next
	}
	return b.String()
}

// instruction renders one instruction starting at pos and returns the
// offset of the next one.
func (d *Disassembler) instruction(stream []Word, pos int) (string, int) {
	op := Opcode(stream[pos])
	opPos := pos
	pos++
	n := operandCount(op, stream, pos)
	operands := stream[pos : pos+n]

	var sb strings.Builder
	fmt.Fprintf(&sb, "%04d  %s", opPos, op.Name())
	for _, w := range operands {
		fmt.Fprintf(&sb, " %d", w)
	}
	if sym := d.symbolHint(op, operands); sym != "" {
		fmt.Fprintf(&sb, "  ; %s", sym)
	}
	return sb.String(), pos + n
}

// symbolHint annotates a few opcodes whose operands include a symbol-table
// id, so disassembly is legible without a separate symbol dump.
func (d *Disassembler) symbolHint(op Opcode, operands []Word) string {
	if d.Program.Symbols == nil {
		return ""
	}
	var symWord Word
	switch op {
	case OpAutoIncrement, OpLogSize:
		if len(operands) == 0 {
			return ""
		}
		symWord = operands[len(operands)-1]
	case OpLogTimer, OpLogRelationTimer, OpDebugInfo:
		if len(operands) == 0 {
			return ""
		}
		symWord = operands[0]
	case OpSubroutineReturn:
		if len(operands) < 2 {
			return ""
		}
		symWord = operands[1]
	case OpUserDefinedOperator:
		if len(operands) < 2 {
			return ""
		}
		symWord = operands[0]
	default:
		return ""
	}
	return d.Program.Symbols.String(symWord)
}
