package codegen

import (
	"strings"
	"testing"

	"github.com/gfour/souffle/analysis"
	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/ram"
)

func existenceProgram(pattern []ram.Expression, provenance bool) *ram.Program {
	return &ram.Program{
		Relations: relDecls("edge"),
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Query{Root: &ram.Filter{
				Cond:   &ram.ExistenceCheck{Rel: ram.RelationRef{Name: "edge"}, Pattern: pattern, Provenance: provenance},
				Nested: &ram.SubroutineReturn{},
			}},
		}},
	}
}

func TestGenExistenceCheckAllFreeUsesEmptinessCheck(t *testing.T) {
	p := mustGenerate(t, existenceProgram([]ram.Expression{nil, nil}, false), analysis.NewStaticOracle(nil))
	text := bytecode.NewDisassembler(p).Text()
	if !strings.Contains(text, "EMPTINESS_CHECK") || !strings.Contains(text, "LNOT") {
		t.Errorf("expected EMPTINESS_CHECK negated by LNOT:\n%s", text)
	}
	if strings.Contains(text, "EXISTENCE_CHECK") || strings.Contains(text, "CONTAINS") {
		t.Errorf("a fully free pattern should not touch CONTAINS or EXISTENCE_CHECK:\n%s", text)
	}
}

func TestGenExistenceCheckAllBoundUsesRelationContains(t *testing.T) {
	p := mustGenerate(t, existenceProgram([]ram.Expression{&ram.NumberConstant{Value: 1}, &ram.NumberConstant{Value: 2}}, false), analysis.NewStaticOracle(nil))
	text := bytecode.NewDisassembler(p).Text()
	if !strings.Contains(text, "CONTAINS") {
		t.Errorf("expected CONTAINS for a fully bound pattern:\n%s", text)
	}
}

func TestGenExistenceCheckPartialResolvesIndex(t *testing.T) {
	oracle := analysis.NewStaticOracle(map[string][]ram.LexOrder{"edge": {{0, 1}}})
	p, err := Generate(existenceProgram([]ram.Expression{&ram.NumberConstant{Value: 1}, nil}, false), oracle)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	text := bytecode.NewDisassembler(p).Text()
	if !strings.Contains(text, "EXISTENCE_CHECK_ONE_ARG") {
		t.Errorf("expected a single-mask-word partial existence check:\n%s", text)
	}
}

func TestGenExistenceCheckProvenanceOnAllColumnsBoundUsesEmptinessCheck(t *testing.T) {
	// arity 2, Provenance true: hi = arity-2 = 0, so no columns are ever
	// considered bound regardless of the pattern, and this must take the
	// "no columns bound" (EMPTINESS_CHECK) path, never CONTAINS.
	oracle := analysis.NewStaticOracle(map[string][]ram.LexOrder{"edge": {{0, 1}}})
	p, err := Generate(existenceProgram([]ram.Expression{&ram.NumberConstant{Value: 1}, &ram.NumberConstant{Value: 2}}, true), oracle)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	text := bytecode.NewDisassembler(p).Text()
	if !strings.Contains(text, "EMPTINESS_CHECK") {
		t.Errorf("a 2-column provenance check considers zero columns, expected EMPTINESS_CHECK:\n%s", text)
	}
	if strings.Contains(text, "CONTAINS") {
		t.Errorf("provenance must never report allBound, even with every column populated:\n%s", text)
	}
}

func TestGenExistenceCheckPatternArityMismatchFaults(t *testing.T) {
	_, err := Generate(existenceProgram([]ram.Expression{nil}, false), analysis.NewStaticOracle(nil))
	if err == nil {
		t.Fatal("Generate should fault when the pattern length disagrees with the relation's arity")
	}
	if f, ok := err.(*Fault); !ok || f.Kind != FaultMalformedIR {
		t.Fatalf("err = %#v, want *Fault{Kind: FaultMalformedIR}", err)
	}
}
