package ram

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ram: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireNode is a generic tagged-union envelope every Statement, Operation,
// Condition and Expression node round-trips through. There is no
// polymorphic proto/cbor codegen in this module — IR construction is out
// of scope, and this package supplies the node shapes, not a parser for
// them — so a program that needs to cross a wire — the RPC service's
// Compile request, a saved fixture — does it through this single generic
// shape instead of forty-odd hand-written mirror structs.
// Each concrete kind documents, in the switch arms of encode/decode below,
// which of these fields it actually populates.
type wireNode struct {
	Kind string

	Int0, Int1 int64
	Str0, Str1, Str2 string
	Bool0 bool

	Child0, Child1, Child2 *wireNode

	Children []wireNode  // ordered same-interface children (Stmts, Args, Values)
	Pattern  []*wireNode // nullable expression list (IndexedScan/Choice/Aggregate patterns)

	StrMap  map[string]string  // IODirectiveInfo.Params
	NodeMap map[string]wireNode // Program.Subroutines
}

// wireProgram is Program's wire shape: relation declarations round-trip as
// plain structs (no interfaces involved), Main and Subroutines go through
// the generic node envelope.
type wireProgram struct {
	Relations   []RelationDecl
	Main        wireNode
	Subroutines map[string]wireNode
}

// Marshal serializes p to canonical CBOR.
func (p *Program) Marshal() ([]byte, error) {
	subs := make(map[string]wireNode, len(p.Subroutines))
	for name, body := range p.Subroutines {
		subs[name] = encodeStatement(body)
	}
	w := wireProgram{
		Relations:   p.Relations,
		Main:        encodeStatement(p.Main),
		Subroutines: subs,
	}
	b, err := cborEncMode.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("ram: marshal program: %w", err)
	}
	return b, nil
}

// UnmarshalProgram deserializes a Program previously produced by Marshal.
func UnmarshalProgram(data []byte) (*Program, error) {
	var w wireProgram
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("ram: unmarshal program: %w", err)
	}
	subs := make(map[string]Statement, len(w.Subroutines))
	for name, body := range w.Subroutines {
		st, err := decodeStatement(body)
		if err != nil {
			return nil, fmt.Errorf("ram: unmarshal subroutine %q: %w", name, err)
		}
		subs[name] = st
	}
	main, err := decodeStatement(w.Main)
	if err != nil {
		return nil, fmt.Errorf("ram: unmarshal main: %w", err)
	}
	return &Program{Relations: w.Relations, Main: main, Subroutines: subs}, nil
}

func encodeExprPtr(e Expression) *wireNode {
	if e == nil {
		return nil
	}
	n := encodeExpression(e)
	return &n
}

func decodeExprPtr(n *wireNode) (Expression, error) {
	if n == nil {
		return nil, nil
	}
	return decodeExpression(*n)
}

func encodeExprList(es []Expression) []wireNode {
	out := make([]wireNode, len(es))
	for i, e := range es {
		out[i] = encodeExpression(e)
	}
	return out
}

func decodeExprList(ns []wireNode) ([]Expression, error) {
	out := make([]Expression, len(ns))
	for i, n := range ns {
		e, err := decodeExpression(n)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func encodePattern(es []Expression) []*wireNode {
	out := make([]*wireNode, len(es))
	for i, e := range es {
		out[i] = encodeExprPtr(e)
	}
	return out
}

func decodePattern(ns []*wireNode) ([]Expression, error) {
	out := make([]Expression, len(ns))
	for i, n := range ns {
		e, err := decodeExprPtr(n)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// -- Statement --

// encodeStatement's Kind-specific field usage:
//   Sequence:         Children = Stmts
//   Parallel:         Children = Stmts, Int0 = ParallelMode
//   Loop:              Child0 = Body
//   Exit:              Child0 = Cond
//   Query:             Child0 = Root (operation)
//   Create/Clear/Drop: Str0 = Rel.Name
//   Merge:             Str0, Str1 = From.Name, To.Name
//   Swap:              Str0, Str1 = A.Name, B.Name
//   LogSize:           Str0, Str1 = Rel.Name, Message
//   Load/Store:        Str0, Str1 = Rel.Name, Directive.Operation; StrMap = Directive.Params
//   Fact:              Str0 = Rel.Name, Children = Values
//   LogTimer:          Str0, Str1 = Message, Pos; Child0 = Body
//   LogRelationTimer:  Str0, Str1, Str2 = Message, Pos, Rel.Name; Child0 = Body
//   DebugInfo:         Str0 = Message; Child0 = Body
func encodeStatement(s Statement) wireNode {
	switch n := s.(type) {
	case *Sequence:
		return wireNode{Kind: "Sequence", Children: encodeStatementList(n.Stmts)}
	case *Parallel:
		return wireNode{Kind: "Parallel", Children: encodeStatementList(n.Stmts), Int0: int64(n.Mode)}
	case *Loop:
		body := encodeStatement(n.Body)
		return wireNode{Kind: "Loop", Child0: &body}
	case *Exit:
		cond := encodeCondition(n.Cond)
		return wireNode{Kind: "Exit", Child0: &cond}
	case *Query:
		root := encodeOperation(n.Root)
		return wireNode{Kind: "Query", Child0: &root}
	case *Create:
		return wireNode{Kind: "Create", Str0: n.Rel.Name}
	case *Clear:
		return wireNode{Kind: "Clear", Str0: n.Rel.Name}
	case *Drop:
		return wireNode{Kind: "Drop", Str0: n.Rel.Name}
	case *Merge:
		return wireNode{Kind: "Merge", Str0: n.From.Name, Str1: n.To.Name}
	case *Swap:
		return wireNode{Kind: "Swap", Str0: n.A.Name, Str1: n.B.Name}
	case *LogSize:
		return wireNode{Kind: "LogSize", Str0: n.Rel.Name, Str1: n.Message}
	case *Load:
		return wireNode{Kind: "Load", Str0: n.Rel.Name, Str1: n.Directive.Operation, StrMap: n.Directive.Params}
	case *Store:
		return wireNode{Kind: "Store", Str0: n.Rel.Name, Str1: n.Directive.Operation, StrMap: n.Directive.Params}
	case *Fact:
		return wireNode{Kind: "Fact", Str0: n.Rel.Name, Children: encodeExprList(n.Values)}
	case *LogTimer:
		body := encodeStatement(n.Body)
		return wireNode{Kind: "LogTimer", Str0: n.Message, Str1: string(n.Pos), Child0: &body}
	case *LogRelationTimer:
		body := encodeStatement(n.Body)
		return wireNode{Kind: "LogRelationTimer", Str0: n.Message, Str1: string(n.Pos), Str2: n.Rel.Name, Child0: &body}
	case *DebugInfo:
		body := encodeStatement(n.Body)
		return wireNode{Kind: "DebugInfo", Str0: n.Message, Child0: &body}
	default:
		panic(fmt.Sprintf("ram: unsupported statement node %T", s))
	}
}

func encodeStatementList(stmts []Statement) []wireNode {
	out := make([]wireNode, len(stmts))
	for i, s := range stmts {
		out[i] = encodeStatement(s)
	}
	return out
}

func decodeStatementList(ns []wireNode) ([]Statement, error) {
	out := make([]Statement, len(ns))
	for i, n := range ns {
		st, err := decodeStatement(n)
		if err != nil {
			return nil, err
		}
		out[i] = st
	}
	return out, nil
}

func decodeStatement(n wireNode) (Statement, error) {
	switch n.Kind {
	case "Sequence":
		stmts, err := decodeStatementList(n.Children)
		if err != nil {
			return nil, err
		}
		return &Sequence{Stmts: stmts}, nil
	case "Parallel":
		stmts, err := decodeStatementList(n.Children)
		if err != nil {
			return nil, err
		}
		return &Parallel{Stmts: stmts, Mode: ParallelMode(n.Int0)}, nil
	case "Loop":
		body, err := decodeStatement(*n.Child0)
		if err != nil {
			return nil, err
		}
		return &Loop{Body: body}, nil
	case "Exit":
		cond, err := decodeCondition(*n.Child0)
		if err != nil {
			return nil, err
		}
		return &Exit{Cond: cond}, nil
	case "Query":
		root, err := decodeOperation(*n.Child0)
		if err != nil {
			return nil, err
		}
		return &Query{Root: root}, nil
	case "Create":
		return &Create{Rel: RelationRef{Name: n.Str0}}, nil
	case "Clear":
		return &Clear{Rel: RelationRef{Name: n.Str0}}, nil
	case "Drop":
		return &Drop{Rel: RelationRef{Name: n.Str0}}, nil
	case "Merge":
		return &Merge{From: RelationRef{Name: n.Str0}, To: RelationRef{Name: n.Str1}}, nil
	case "Swap":
		return &Swap{A: RelationRef{Name: n.Str0}, B: RelationRef{Name: n.Str1}}, nil
	case "LogSize":
		return &LogSize{Rel: RelationRef{Name: n.Str0}, Message: n.Str1}, nil
	case "Load":
		return &Load{Rel: RelationRef{Name: n.Str0}, Directive: IODirectiveInfo{Operation: n.Str1, Params: n.StrMap}}, nil
	case "Store":
		return &Store{Rel: RelationRef{Name: n.Str0}, Directive: IODirectiveInfo{Operation: n.Str1, Params: n.StrMap}}, nil
	case "Fact":
		values, err := decodeExprList(n.Children)
		if err != nil {
			return nil, err
		}
		return &Fact{Rel: RelationRef{Name: n.Str0}, Values: values}, nil
	case "LogTimer":
		body, err := decodeStatement(*n.Child0)
		if err != nil {
			return nil, err
		}
		return &LogTimer{Message: n.Str0, Pos: Pos(n.Str1), Body: body}, nil
	case "LogRelationTimer":
		body, err := decodeStatement(*n.Child0)
		if err != nil {
			return nil, err
		}
		return &LogRelationTimer{Message: n.Str0, Pos: Pos(n.Str1), Rel: RelationRef{Name: n.Str2}, Body: body}, nil
	case "DebugInfo":
		body, err := decodeStatement(*n.Child0)
		if err != nil {
			return nil, err
		}
		return &DebugInfo{Message: n.Str0, Body: body}, nil
	default:
		return nil, fmt.Errorf("ram: unknown statement kind %q", n.Kind)
	}
}

// -- Operation --

// encodeOperation's Kind-specific field usage:
//   Scan:              Str0 = Rel.Name, Int0 = TupleID, Child0 = Nested
//   IndexedScan:       Str0 = Rel.Name, Int0 = TupleID, Pattern = Pattern, Child0 = Nested
//   Choice:            Str0 = Rel.Name, Int0 = TupleID, Child0 = Nested, Child1 = Cond
//   IndexedChoice:     Str0 = Rel.Name, Int0 = TupleID, Pattern = Pattern, Child0 = Nested, Child1 = Cond
//   Aggregate:         Str0 = Rel.Name, Int0 = TupleID, Int1 = Func, Child0 = Nested, Child1 = Target, Child2 = Cond (a nil Child2 pointer decodes to a nil Cond)
//   IndexedAggregate:  as Aggregate, plus Pattern = Pattern
//   Filter:            Child0 = Nested, Child1 = Cond
//   Break:             Child0 = Nested, Child1 = Cond
//   UnpackRecord:      Int0 = Arity, Int1 = TupleID, Child0 = Nested, Child1 = Expr
//   Project:           Str0 = Rel.Name, Children = Values
//   SubroutineReturn:  Pattern = Values (nilable per undefined column)
func encodeOperation(op Operation) wireNode {
	switch n := op.(type) {
	case *Scan:
		nested := encodeOperation(n.Nested)
		return wireNode{Kind: "Scan", Str0: n.Rel.Name, Int0: int64(n.TupleID), Child0: &nested}
	case *IndexedScan:
		nested := encodeOperation(n.Nested)
		return wireNode{Kind: "IndexedScan", Str0: n.Rel.Name, Int0: int64(n.TupleID), Pattern: encodePattern(n.Pattern), Child0: &nested}
	case *Choice:
		nested := encodeOperation(n.Nested)
		cond := encodeCondition(n.Cond)
		return wireNode{Kind: "Choice", Str0: n.Rel.Name, Int0: int64(n.TupleID), Child0: &nested, Child1: &cond}
	case *IndexedChoice:
		nested := encodeOperation(n.Nested)
		cond := encodeCondition(n.Cond)
		return wireNode{Kind: "IndexedChoice", Str0: n.Rel.Name, Int0: int64(n.TupleID), Pattern: encodePattern(n.Pattern), Child0: &nested, Child1: &cond}
	case *Aggregate:
		nested := encodeOperation(n.Nested)
		w := wireNode{Kind: "Aggregate", Str0: n.Rel.Name, Int0: int64(n.TupleID), Int1: int64(n.Func), Child0: &nested}
		if n.Target != nil {
			t := encodeExpression(n.Target)
			w.Child1 = &t
		}
		if n.Cond != nil {
			c := encodeCondition(n.Cond)
			w.Child2 = &c
		}
		return w
	case *IndexedAggregate:
		nested := encodeOperation(n.Nested)
		w := wireNode{Kind: "IndexedAggregate", Str0: n.Rel.Name, Int0: int64(n.TupleID), Int1: int64(n.Func), Pattern: encodePattern(n.Pattern), Child0: &nested}
		if n.Target != nil {
			t := encodeExpression(n.Target)
			w.Child1 = &t
		}
		if n.Cond != nil {
			c := encodeCondition(n.Cond)
			w.Child2 = &c
		}
		return w
	case *Filter:
		nested := encodeOperation(n.Nested)
		cond := encodeCondition(n.Cond)
		return wireNode{Kind: "Filter", Child0: &nested, Child1: &cond}
	case *Break:
		nested := encodeOperation(n.Nested)
		cond := encodeCondition(n.Cond)
		return wireNode{Kind: "Break", Child0: &nested, Child1: &cond}
	case *UnpackRecord:
		nested := encodeOperation(n.Nested)
		expr := encodeExpression(n.Expr)
		return wireNode{Kind: "UnpackRecord", Int0: int64(n.Arity), Int1: int64(n.TupleID), Child0: &nested, Child1: &expr}
	case *Project:
		return wireNode{Kind: "Project", Str0: n.Rel.Name, Children: encodeExprList(n.Values)}
	case *SubroutineReturn:
		return wireNode{Kind: "SubroutineReturn", Pattern: encodePattern(n.Values)}
	default:
		panic(fmt.Sprintf("ram: unsupported operation node %T", op))
	}
}

func decodeOperation(n wireNode) (Operation, error) {
	switch n.Kind {
	case "Scan":
		nested, err := decodeOperation(*n.Child0)
		if err != nil {
			return nil, err
		}
		return &Scan{Rel: RelationRef{Name: n.Str0}, TupleID: int(n.Int0), Nested: nested}, nil
	case "IndexedScan":
		nested, err := decodeOperation(*n.Child0)
		if err != nil {
			return nil, err
		}
		pattern, err := decodePattern(n.Pattern)
		if err != nil {
			return nil, err
		}
		return &IndexedScan{Rel: RelationRef{Name: n.Str0}, TupleID: int(n.Int0), Pattern: pattern, Nested: nested}, nil
	case "Choice":
		nested, err := decodeOperation(*n.Child0)
		if err != nil {
			return nil, err
		}
		cond, err := decodeCondition(*n.Child1)
		if err != nil {
			return nil, err
		}
		return &Choice{Rel: RelationRef{Name: n.Str0}, TupleID: int(n.Int0), Cond: cond, Nested: nested}, nil
	case "IndexedChoice":
		nested, err := decodeOperation(*n.Child0)
		if err != nil {
			return nil, err
		}
		cond, err := decodeCondition(*n.Child1)
		if err != nil {
			return nil, err
		}
		pattern, err := decodePattern(n.Pattern)
		if err != nil {
			return nil, err
		}
		return &IndexedChoice{Rel: RelationRef{Name: n.Str0}, TupleID: int(n.Int0), Pattern: pattern, Cond: cond, Nested: nested}, nil
	case "Aggregate":
		nested, err := decodeOperation(*n.Child0)
		if err != nil {
			return nil, err
		}
		target, err := decodeExprPtr(n.Child1)
		if err != nil {
			return nil, err
		}
		cond, err := decodeConditionPtr(n.Child2)
		if err != nil {
			return nil, err
		}
		return &Aggregate{Rel: RelationRef{Name: n.Str0}, TupleID: int(n.Int0), Func: AggFunc(n.Int1), Target: target, Cond: cond, Nested: nested}, nil
	case "IndexedAggregate":
		nested, err := decodeOperation(*n.Child0)
		if err != nil {
			return nil, err
		}
		target, err := decodeExprPtr(n.Child1)
		if err != nil {
			return nil, err
		}
		cond, err := decodeConditionPtr(n.Child2)
		if err != nil {
			return nil, err
		}
		pattern, err := decodePattern(n.Pattern)
		if err != nil {
			return nil, err
		}
		return &IndexedAggregate{Rel: RelationRef{Name: n.Str0}, TupleID: int(n.Int0), Func: AggFunc(n.Int1), Pattern: pattern, Target: target, Cond: cond, Nested: nested}, nil
	case "Filter":
		nested, err := decodeOperation(*n.Child0)
		if err != nil {
			return nil, err
		}
		cond, err := decodeCondition(*n.Child1)
		if err != nil {
			return nil, err
		}
		return &Filter{Cond: cond, Nested: nested}, nil
	case "Break":
		nested, err := decodeOperation(*n.Child0)
		if err != nil {
			return nil, err
		}
		cond, err := decodeCondition(*n.Child1)
		if err != nil {
			return nil, err
		}
		return &Break{Cond: cond, Nested: nested}, nil
	case "UnpackRecord":
		nested, err := decodeOperation(*n.Child0)
		if err != nil {
			return nil, err
		}
		expr, err := decodeExpression(*n.Child1)
		if err != nil {
			return nil, err
		}
		return &UnpackRecord{Expr: expr, Arity: int(n.Int0), TupleID: int(n.Int1), Nested: nested}, nil
	case "Project":
		values, err := decodeExprList(n.Children)
		if err != nil {
			return nil, err
		}
		return &Project{Rel: RelationRef{Name: n.Str0}, Values: values}, nil
	case "SubroutineReturn":
		values, err := decodePattern(n.Pattern)
		if err != nil {
			return nil, err
		}
		return &SubroutineReturn{Values: values}, nil
	default:
		return nil, fmt.Errorf("ram: unknown operation kind %q", n.Kind)
	}
}

// -- Condition --

// encodeCondition's Kind-specific field usage:
//   True/False:      no fields
//   And:             Child0, Child1 = Left, Right
//   Not:             Child0 = Arg
//   Constraint:      Int0 = Op, Child0, Child1 = Left, Right (expressions)
//   ExistenceCheck:  Str0 = Rel.Name, Bool0 = Provenance, Pattern = Pattern
func encodeCondition(c Condition) wireNode {
	switch n := c.(type) {
	case *True:
		return wireNode{Kind: "True"}
	case *False:
		return wireNode{Kind: "False"}
	case *And:
		l, r := encodeCondition(n.Left), encodeCondition(n.Right)
		return wireNode{Kind: "And", Child0: &l, Child1: &r}
	case *Not:
		a := encodeCondition(n.Arg)
		return wireNode{Kind: "Not", Child0: &a}
	case *Constraint:
		l, r := encodeExpression(n.Left), encodeExpression(n.Right)
		return wireNode{Kind: "Constraint", Int0: int64(n.Op), Child0: &l, Child1: &r}
	case *ExistenceCheck:
		return wireNode{Kind: "ExistenceCheck", Str0: n.Rel.Name, Bool0: n.Provenance, Pattern: encodePattern(n.Pattern)}
	default:
		panic(fmt.Sprintf("ram: unsupported condition node %T", c))
	}
}

func decodeConditionPtr(n *wireNode) (Condition, error) {
	if n == nil {
		return nil, nil
	}
	return decodeCondition(*n)
}

func decodeCondition(n wireNode) (Condition, error) {
	switch n.Kind {
	case "True":
		return &True{}, nil
	case "False":
		return &False{}, nil
	case "And":
		l, err := decodeCondition(*n.Child0)
		if err != nil {
			return nil, err
		}
		r, err := decodeCondition(*n.Child1)
		if err != nil {
			return nil, err
		}
		return &And{Left: l, Right: r}, nil
	case "Not":
		a, err := decodeCondition(*n.Child0)
		if err != nil {
			return nil, err
		}
		return &Not{Arg: a}, nil
	case "Constraint":
		l, err := decodeExpression(*n.Child0)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpression(*n.Child1)
		if err != nil {
			return nil, err
		}
		return &Constraint{Op: ConstraintOp(n.Int0), Left: l, Right: r}, nil
	case "ExistenceCheck":
		pattern, err := decodePattern(n.Pattern)
		if err != nil {
			return nil, err
		}
		return &ExistenceCheck{Rel: RelationRef{Name: n.Str0}, Provenance: n.Bool0, Pattern: pattern}, nil
	default:
		return nil, fmt.Errorf("ram: unknown condition kind %q", n.Kind)
	}
}

// -- Expression --

// encodeExpression's Kind-specific field usage:
//   NumberConstant:      Int0 = Value
//   TupleElement:        Int0, Int1 = TupleID, Column
//   AutoIncrement:       Str0 = Counter
//   PackRecord:          Children = Args
//   SubroutineArgument:  Int0 = Index
//   Unary:               Int0 = Op, Child0 = Arg
//   Binary:              Int0 = Op, Child0, Child1 = Left, Right
//   Variadic:            Int0 = Op, Children = Args
//   Cat:                 Children = Args
//   Substr:              Child0, Child1, Child2 = Str, Offset, Length
//   UserDefinedOperator: Str0, Str1 = Name, TypeSignature, Children = Args
func encodeExpression(e Expression) wireNode {
	switch n := e.(type) {
	case *NumberConstant:
		return wireNode{Kind: "NumberConstant", Int0: n.Value}
	case *TupleElement:
		return wireNode{Kind: "TupleElement", Int0: int64(n.TupleID), Int1: int64(n.Column)}
	case *AutoIncrement:
		return wireNode{Kind: "AutoIncrement", Str0: n.Counter}
	case *PackRecord:
		return wireNode{Kind: "PackRecord", Children: encodeExprList(n.Args)}
	case *SubroutineArgument:
		return wireNode{Kind: "SubroutineArgument", Int0: int64(n.Index)}
	case *Unary:
		a := encodeExpression(n.Arg)
		return wireNode{Kind: "Unary", Int0: int64(n.Op), Child0: &a}
	case *Binary:
		l, r := encodeExpression(n.Left), encodeExpression(n.Right)
		return wireNode{Kind: "Binary", Int0: int64(n.Op), Child0: &l, Child1: &r}
	case *Variadic:
		return wireNode{Kind: "Variadic", Int0: int64(n.Op), Children: encodeExprList(n.Args)}
	case *Cat:
		return wireNode{Kind: "Cat", Children: encodeExprList(n.Args)}
	case *Substr:
		s, o, l := encodeExpression(n.Str), encodeExpression(n.Offset), encodeExpression(n.Length)
		return wireNode{Kind: "Substr", Child0: &s, Child1: &o, Child2: &l}
	case *UserDefinedOperator:
		return wireNode{Kind: "UserDefinedOperator", Str0: n.Name, Str1: n.TypeSignature, Children: encodeExprList(n.Args)}
	default:
		panic(fmt.Sprintf("ram: unsupported expression node %T", e))
	}
}

func decodeExpression(n wireNode) (Expression, error) {
	switch n.Kind {
	case "NumberConstant":
		return &NumberConstant{Value: n.Int0}, nil
	case "TupleElement":
		return &TupleElement{TupleID: int(n.Int0), Column: int(n.Int1)}, nil
	case "AutoIncrement":
		return &AutoIncrement{Counter: n.Str0}, nil
	case "PackRecord":
		args, err := decodeExprList(n.Children)
		if err != nil {
			return nil, err
		}
		return &PackRecord{Args: args}, nil
	case "SubroutineArgument":
		return &SubroutineArgument{Index: int(n.Int0)}, nil
	case "Unary":
		a, err := decodeExpression(*n.Child0)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: UnaryOp(n.Int0), Arg: a}, nil
	case "Binary":
		l, err := decodeExpression(*n.Child0)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpression(*n.Child1)
		if err != nil {
			return nil, err
		}
		return &Binary{Op: BinaryOp(n.Int0), Left: l, Right: r}, nil
	case "Variadic":
		args, err := decodeExprList(n.Children)
		if err != nil {
			return nil, err
		}
		return &Variadic{Op: VariadicOp(n.Int0), Args: args}, nil
	case "Cat":
		args, err := decodeExprList(n.Children)
		if err != nil {
			return nil, err
		}
		return &Cat{Args: args}, nil
	case "Substr":
		s, err := decodeExpression(*n.Child0)
		if err != nil {
			return nil, err
		}
		o, err := decodeExpression(*n.Child1)
		if err != nil {
			return nil, err
		}
		l, err := decodeExpression(*n.Child2)
		if err != nil {
			return nil, err
		}
		return &Substr{Str: s, Offset: o, Length: l}, nil
	case "UserDefinedOperator":
		args, err := decodeExprList(n.Children)
		if err != nil {
			return nil, err
		}
		return &UserDefinedOperator{Name: n.Str0, TypeSignature: n.Str1, Args: args}, nil
	default:
		return nil, fmt.Errorf("ram: unknown expression kind %q", n.Kind)
	}
}
