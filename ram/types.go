// Package ram declares the relational-algebra IR the code generator
// consumes. The IR construction pipeline that produces these trees
// (parsing, semantic analysis, the magic-set transformation) is out of
// scope for this module; this package supplies only the node shapes a
// downstream producer must build and this compiler walks.
package ram

// AttrType is a relation column's attribute-type qualifier.
type AttrType string

const (
	AttrNumber AttrType = "i"
	AttrSymbol AttrType = "s"
	AttrRecord AttrType = "r"
)

// Representation is the storage representation an IR relation declaration
// asks for. Past the encoder's arity threshold this request is overridden
// and the relation becomes StorageIndirect regardless.
type Representation int

const (
	ReprDefault Representation = iota
	ReprOrderedTree
	ReprTrie
	ReprEquivalence
	ReprIndirect
)

// LexOrder is one lexicographic column order a relation can be indexed by:
// a permutation of column indices, most-significant first.
type LexOrder []int

// RelationDecl is how the upstream IR declares a relation. A program lists
// every relation it touches; the relation encoder pre-interns all of them
// at construction time.
type RelationDecl struct {
	Name           string
	Arity          int
	AttrTypes      []AttrType
	Representation Representation
}

// RelationRef names a relation by its IR-level name; the code generator
// resolves it to a dense id through the encoder before it ever reaches the
// emitted stream.
type RelationRef struct {
	Name string
}

// Pos is an opaque debugging tag carried by the LogTimer and
// LogRelationTimer statements; Filter and the other nodes carry none. It
// carries no structural meaning — this IR deliberately excludes
// source-level debugging information beyond opaque message tags — and is
// never emitted into the stream: it only gives compiler faults raised
// inside those statements a human-readable string to point at.
type Pos string

// IODirectiveInfo is the load/store directive attached to a Load or Store
// statement, copied verbatim into the emitted IODirective sidetable entry.
type IODirectiveInfo struct {
	Operation string
	Params    map[string]string
}

// AggFunc selects the fold an Aggregate/IndexedAggregate operation
// performs.
type AggFunc int

const (
	AggMin AggFunc = iota
	AggMax
	AggCount
	AggSum
)

func (f AggFunc) String() string {
	switch f {
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	default:
		return "AggFunc(?)"
	}
}
