package analysis

import "github.com/gfour/souffle/ram"

// Resolver maps a (relation, search signature) pair to the position of a
// compatible index within the relation's oracle-selected index set. It
// performs no analysis of its own: the set of orders a
// relation offers and the columns an operation binds both come from the
// Oracle. Finding which member of that set is compatible with a given
// signature is the one piece of logic the Resolver itself owns.
type Resolver struct {
	oracle Oracle
}

// NewResolver builds a Resolver over the given Oracle.
func NewResolver(oracle Oracle) *Resolver {
	return &Resolver{oracle: oracle}
}

// Resolve returns the lexicographic index position matching node's search
// signature against relation (whose arity is needed only to normalise a
// zero signature into "full order"). node is the IR search node the
// Oracle was asked about — an *ram.IndexedScan, *ram.IndexedChoice,
// *ram.IndexedAggregate or *ram.ExistenceCheck. It panics with
// *MissingIndexError if no compatible index exists — a compiler invariant
// violation, never a recoverable outcome.
func (r *Resolver) Resolve(node interface{}, relation string, arity int) int {
	mask := r.oracle.SearchSignature(node)
	if mask == 0 {
		mask = FullMask(arity)
	}
	orders := r.oracle.IndexesFor(relation)
	for pos, order := range orders {
		if compatible(order, mask) {
			return pos
		}
	}
	panic(&MissingIndexError{Relation: relation, Signature: mask})
}

// compatible reports whether order's leading popcount(mask) columns are
// exactly the columns bound by mask, in any relative order among
// themselves: that prefix can be used to seek a range, and the remaining
// suffix is scanned freely.
func compatible(order ram.LexOrder, mask uint64) bool {
	prefix := popcount(mask)
	if prefix > len(order) {
		return false
	}
	for i := 0; i < prefix; i++ {
		col := order[i]
		if col < 0 || col >= 64 || mask&(uint64(1)<<uint(col)) == 0 {
			return false
		}
	}
	return true
}

func popcount(mask uint64) int {
	n := 0
	for mask != 0 {
		mask &= mask - 1
		n++
	}
	return n
}
