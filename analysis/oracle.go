// Package analysis is a thin façade over an externally supplied
// index-analysis oracle: given an operation's search signature, it names
// which of the relation's lexicographic index orders to iterate. The
// oracle itself — which orders exist for a relation, and which columns an
// operation binds — is produced by an upstream analysis pass this module
// does not implement; Oracle is the seam that pass is plugged in through.
package analysis

import (
	"fmt"

	"github.com/gfour/souffle/ram"
)

// Oracle is the externally supplied analysis the Index Resolver consults.
// Both methods are referentially transparent and may be called repeatedly.
type Oracle interface {
	// IndexesFor returns relation's ordered index set: every lexicographic
	// column order the analysis decided the relation should be indexed by,
	// in the order index positions are numbered.
	IndexesFor(relation string) []ram.LexOrder

	// SearchSignature returns the bound/free bitmask for the given search
	// node: bit i set means column i is bound there. node is always one of
	// *ram.IndexedScan, *ram.IndexedChoice, *ram.IndexedAggregate or
	// *ram.ExistenceCheck — the four IR node kinds that carry a
	// bound-value pattern and so are the only ones that ever ask the
	// Index Resolver for a position.
	SearchSignature(node interface{}) uint64
}

// MissingIndexError reports that the oracle has no index order compatible
// with an operation's search signature. This is a compiler invariant
// violation, never a run-time error: codegen recovers it at its single
// entry point and turns it into a returned error, it does not fall back
// to a sequential scan.
type MissingIndexError struct {
	Relation  string
	Signature uint64
}

func (e *MissingIndexError) Error() string {
	return fmt.Sprintf("analysis: relation %q has no index matching search signature %#b", e.Relation, e.Signature)
}

// FullMask returns the all-ones bitmask of width arity: the normalisation
// required for a zero (unconstrained) search signature.
func FullMask(arity int) uint64 {
	if arity <= 0 {
		return 0
	}
	if arity >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(arity)) - 1
}
