package ram

// Operation is a node in the loop-nest tree rooted at a Query statement:
// something that either iterates a relation and nests a further Operation,
// or terminates the nest (Project, SubroutineReturn).
type Operation interface{ isOperation() }

// Scan iterates every tuple of Rel using its full index, binding each
// tuple into register TupleID for Nested to consume.
type Scan struct {
	Rel     RelationRef
	TupleID int
	Nested  Operation
}

// IndexedScan iterates the tuples of Rel matching Pattern (nil entries are
// free columns) using a range index chosen by the Index Resolver.
type IndexedScan struct {
	Rel     RelationRef
	TupleID int
	Pattern []Expression
	Nested  Operation
}

// Choice iterates Rel like Scan but stops at the first tuple satisfying
// Cond.
type Choice struct {
	Rel     RelationRef
	TupleID int
	Cond    Condition
	Nested  Operation
}

// IndexedChoice composes IndexedScan's range restriction with Choice's
// early termination.
type IndexedChoice struct {
	Rel     RelationRef
	TupleID int
	Pattern []Expression
	Cond    Condition
	Nested  Operation
}

// Aggregate folds Target over every tuple of Rel satisfying Cond (nil Cond
// means unconditional) using Func, binding the result into column 0 of
// TupleID before running Nested.
type Aggregate struct {
	Rel     RelationRef
	TupleID int
	Func    AggFunc
	Target  Expression
	Cond    Condition
	Nested  Operation
}

// IndexedAggregate composes Aggregate with an index-restricted range scan.
type IndexedAggregate struct {
	Rel     RelationRef
	TupleID int
	Func    AggFunc
	Target  Expression
	Pattern []Expression
	Cond    Condition
	Nested  Operation
}

// Filter runs Nested only if Cond holds; unlike Choice it does not iterate
// a relation.
type Filter struct {
	Cond   Condition
	Nested Operation
}

// Break stops the nearest enclosing Scan/Choice loop (or its indexed
// variant) early when Cond holds. Cond is tested first, so Nested runs
// only for a tuple on which Cond does not hold.
type Break struct {
	Cond   Condition
	Nested Operation
}

// UnpackRecord evaluates Expr, which must yield either a packed record
// reference or a null one, and, if the reference is non-null, destructures
// its Arity columns into tuple register TupleID before running Nested; a
// null reference skips Nested entirely. It is PackRecord's inverse and,
// unlike the other loop-nest operations, iterates nothing of its own.
type UnpackRecord struct {
	Expr    Expression
	Arity   int
	TupleID int
	Nested  Operation
}

// Project is a terminal operation: it inserts one tuple, built from
// Values, into Rel.
type Project struct {
	Rel    RelationRef
	Values []Expression
}

// SubroutineReturn is a terminal operation used inside a subroutine body:
// it returns Values (nil entries mark an undefined placeholder column) to
// the caller.
type SubroutineReturn struct {
	Values []Expression
}

func (*Scan) isOperation()             {}
func (*IndexedScan) isOperation()      {}
func (*Choice) isOperation()           {}
func (*IndexedChoice) isOperation()    {}
func (*Aggregate) isOperation()        {}
func (*IndexedAggregate) isOperation() {}
func (*Filter) isOperation()           {}
func (*Break) isOperation()            {}
func (*UnpackRecord) isOperation()     {}
func (*Project) isOperation()          {}
func (*SubroutineReturn) isOperation() {}
