package codegen

import (
	"strings"
	"testing"

	"github.com/gfour/souffle/analysis"
	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/ram"
)

func TestGenScanEmitsUnconditionalLoopShape(t *testing.T) {
	prog := &ram.Program{
		Relations: relDecls("edge"),
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Query{Root: &ram.Scan{
				Rel:     ram.RelationRef{Name: "edge"},
				TupleID: 0,
				Nested:  &ram.Break{Cond: &ram.False{}, Nested: &ram.Project{Rel: ram.RelationRef{Name: "edge"}, Values: []ram.Expression{&ram.NumberConstant{Value: 1}, &ram.NumberConstant{Value: 2}}}},
			}},
		}},
	}
	p := mustGenerate(t, prog, analysis.NewStaticOracle(nil))
	text := bytecode.NewDisassembler(p).Text()
	for _, want := range []string{"ITER_INIT_FULL_INDEX", "ITER_NOT_AT_END", "JUMP_IF_ZERO", "ITER_SELECT", "ITER_INC", "GOTO"} {
		if !strings.Contains(text, want) {
			t.Errorf("disassembly missing %q:\n%s", want, text)
		}
	}
}

func TestGenChoiceStopsAtFirstMatchAndFallsThroughToExit(t *testing.T) {
	prog := &ram.Program{
		Relations: relDecls("edge"),
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Query{Root: &ram.Choice{
				Rel:     ram.RelationRef{Name: "edge"},
				TupleID: 0,
				Cond:    &ram.True{},
				Nested: &ram.Project{
					Rel:    ram.RelationRef{Name: "edge"},
					Values: []ram.Expression{&ram.NumberConstant{Value: 1}, &ram.NumberConstant{Value: 2}},
				},
			}},
		}},
	}
	p := mustGenerate(t, prog, analysis.NewStaticOracle(nil))
	text := bytecode.NewDisassembler(p).Text()
	for _, want := range []string{"ITER_INIT_FULL_INDEX", "TRUE", "JUMP_IF_NOT_ZERO", "PROJECT"} {
		if !strings.Contains(text, want) {
			t.Errorf("disassembly missing %q:\n%s", want, text)
		}
	}
	// the fold's PROJECT must appear only once: Choice runs Nested exactly
	// once, on the first matching tuple, unlike Scan's unconditional loop.
	if n := strings.Count(text, "PROJECT"); n != 1 {
		t.Errorf("PROJECT appears %d times, want exactly 1", n)
	}
}

func TestGenFilterSkipsNestedWhenCondFalse(t *testing.T) {
	prog := &ram.Program{
		Relations: relDecls("edge"),
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Query{Root: &ram.Filter{
				Cond: &ram.False{},
				Nested: &ram.Project{
					Rel:    ram.RelationRef{Name: "edge"},
					Values: []ram.Expression{&ram.NumberConstant{Value: 1}, &ram.NumberConstant{Value: 2}},
				},
			}},
		}},
	}
	p := mustGenerate(t, prog, analysis.NewStaticOracle(nil))
	text := bytecode.NewDisassembler(p).Text()
	if !strings.Contains(text, "FALSE") || !strings.Contains(text, "JUMP_IF_ZERO") || !strings.Contains(text, "PROJECT") {
		t.Errorf("disassembly missing expected filter shape:\n%s", text)
	}
}

func TestGenBreakOutsideLoopFaults(t *testing.T) {
	prog := &ram.Program{
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Query{Root: &ram.Break{Cond: &ram.True{}, Nested: &ram.SubroutineReturn{}}},
		}},
	}
	_, err := Generate(prog, analysis.NewStaticOracle(nil))
	if err == nil {
		t.Fatal("Generate should fault on a Break outside any enclosing loop-nest operation")
	}
	if f, ok := err.(*Fault); !ok || f.Kind != FaultMalformedIR {
		t.Fatalf("err = %#v, want *Fault{Kind: FaultMalformedIR}", err)
	}
}

func TestGenIndexedScanFullyFreePatternDegeneratesToFullIndex(t *testing.T) {
	prog := &ram.Program{
		Relations: relDecls("edge"),
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Query{Root: &ram.IndexedScan{
				Rel:     ram.RelationRef{Name: "edge"},
				TupleID: 0,
				Pattern: []ram.Expression{nil, nil},
				Nested:  &ram.SubroutineReturn{},
			}},
		}},
	}
	// no indexes offered at all: if this ever tried a range-index path it
	// would have to call Resolve and fault for lack of any index; a fully
	// free pattern must instead take the full-index shortcut and never
	// touch the resolver at all.
	p, err := Generate(prog, analysis.NewStaticOracle(map[string][]ram.LexOrder{}))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	text := bytecode.NewDisassembler(p).Text()
	if !strings.Contains(text, "ITER_INIT_FULL_INDEX") {
		t.Errorf("expected a full-index degenerate scan:\n%s", text)
	}
	if strings.Contains(text, "ITER_INIT_RANGE_INDEX") {
		t.Errorf("a fully free pattern should never emit a range-index init:\n%s", text)
	}
}

func TestGenIndexedScanPartialPatternUsesRangeIndex(t *testing.T) {
	prog := &ram.Program{
		Relations: relDecls("edge"),
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Query{Root: &ram.IndexedScan{
				Rel:     ram.RelationRef{Name: "edge"},
				TupleID: 0,
				Pattern: []ram.Expression{&ram.NumberConstant{Value: 1}, nil},
				Nested:  &ram.SubroutineReturn{},
			}},
		}},
	}
	oracle := analysis.NewStaticOracle(map[string][]ram.LexOrder{
		"edge": {{0, 1}},
	})
	p, err := Generate(prog, oracle)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	text := bytecode.NewDisassembler(p).Text()
	if !strings.Contains(text, "ITER_INIT_RANGE_INDEX_ONE_ARG") {
		t.Errorf("expected a single-mask-word range index init:\n%s", text)
	}
}

func TestGenProjectArityMismatchFaults(t *testing.T) {
	prog := &ram.Program{
		Relations: relDecls("edge"),
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Query{Root: &ram.Project{
				Rel:    ram.RelationRef{Name: "edge"},
				Values: []ram.Expression{&ram.NumberConstant{Value: 1}},
			}},
		}},
	}
	_, err := Generate(prog, analysis.NewStaticOracle(nil))
	if err == nil {
		t.Fatal("Generate should fault when Project supplies fewer values than the relation's arity")
	}
	if f, ok := err.(*Fault); !ok || f.Kind != FaultMalformedIR {
		t.Fatalf("err = %#v, want *Fault{Kind: FaultMalformedIR}", err)
	}
}

func TestGenUnpackRecordUnpacksThenRunsNested(t *testing.T) {
	prog := &ram.Program{
		Relations: relDecls("edge"),
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Query{Root: &ram.UnpackRecord{
				Expr:    &ram.PackRecord{Args: []ram.Expression{&ram.NumberConstant{Value: 1}, &ram.NumberConstant{Value: 2}}},
				Arity:   2,
				TupleID: 1,
				Nested: &ram.Project{
					Rel:    ram.RelationRef{Name: "edge"},
					Values: []ram.Expression{&ram.NumberConstant{Value: 1}, &ram.NumberConstant{Value: 2}},
				},
			}},
		}},
	}
	p := mustGenerate(t, prog, analysis.NewStaticOracle(nil))
	text := bytecode.NewDisassembler(p).Text()
	for _, want := range []string{"PACK_RECORD", "UNPACK_RECORD", "PROJECT"} {
		if !strings.Contains(text, want) {
			t.Errorf("disassembly missing %q:\n%s", want, text)
		}
	}

	idx := -1
	for i, w := range p.Stream {
		if bytecode.Opcode(w) == bytecode.OpUnpackRecord {
			idx = i
		}
	}
	if idx == -1 {
		t.Fatal("expected an UNPACK_RECORD instruction")
	}
	if p.Stream[idx+1] != 2 {
		t.Errorf("arity operand = %d, want 2", p.Stream[idx+1])
	}
	if p.Stream[idx+2] != 1 {
		t.Errorf("tuple id operand = %d, want 1", p.Stream[idx+2])
	}
	skipTo := int(p.Stream[idx+3])
	if skipTo <= idx {
		t.Errorf("skip target %d should be after UNPACK_RECORD at %d", skipTo, idx)
	}
	if skipTo > len(p.Stream) {
		t.Errorf("skip target %d is past the end of the stream (len %d)", skipTo, len(p.Stream))
	}
}

func TestGenUnpackRecordSkipLabelMarksPastNested(t *testing.T) {
	prog := &ram.Program{
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Query{Root: &ram.UnpackRecord{
				Expr:    &ram.PackRecord{},
				Arity:   0,
				TupleID: 0,
				Nested:  &ram.SubroutineReturn{},
			}},
		}},
	}
	p := mustGenerate(t, prog, analysis.NewStaticOracle(nil))
	text := bytecode.NewDisassembler(p).Text()
	if !strings.Contains(text, "L") {
		t.Errorf("disassembly should mark the skip target as a jump label:\n%s", text)
	}
}

func TestGenSubroutineReturnAllFreeColumns(t *testing.T) {
	prog := &ram.Program{
		Main: &ram.Sequence{},
		Subroutines: map[string]ram.Statement{
			"empty": &ram.Query{Root: &ram.SubroutineReturn{Values: []ram.Expression{nil, nil}}},
		},
	}
	p := mustGenerate(t, prog, analysis.NewStaticOracle(nil))
	idx := -1
	for i, w := range p.Stream {
		if bytecode.Opcode(w) == bytecode.OpSubroutineReturn {
			idx = i
		}
	}
	if idx == -1 {
		t.Fatal("expected a SUBROUTINE_RETURN instruction")
	}
	if descriptor := p.Symbols.String(p.Stream[idx+2]); descriptor != "__" {
		t.Errorf("descriptor = %q, want \"__\"", descriptor)
	}
}
