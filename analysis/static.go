package analysis

import "github.com/gfour/souffle/ram"

// StaticOracle is a fixed, in-memory Oracle: it answers IndexesFor from a
// map supplied at construction time and computes SearchSignature by
// inspecting the operation's own bound-value pattern directly. It is meant
// for unit tests and small fixtures that want to hand-author index sets
// without a database; analysis/sqlref provides the SQLite-backed
// alternative used by the CLI and larger fixtures.
type StaticOracle struct {
	indexes map[string][]ram.LexOrder
}

// NewStaticOracle builds a StaticOracle from a relation-name -> index-set
// map. Only indexed operations consult it; unindexed scans iterate the
// full relation without looking up an order here.
func NewStaticOracle(indexes map[string][]ram.LexOrder) *StaticOracle {
	return &StaticOracle{indexes: indexes}
}

// IndexesFor implements Oracle.
func (o *StaticOracle) IndexesFor(relation string) []ram.LexOrder {
	return o.indexes[relation]
}

// SearchSignature implements Oracle by reading the bound/free pattern
// carried directly on the search node; anything without one gets a zero
// signature, which normalises to full order.
func (o *StaticOracle) SearchSignature(node interface{}) uint64 {
	switch n := node.(type) {
	case *ram.IndexedScan:
		return patternMask(n.Pattern)
	case *ram.IndexedChoice:
		return patternMask(n.Pattern)
	case *ram.IndexedAggregate:
		return patternMask(n.Pattern)
	case *ram.ExistenceCheck:
		mask := patternMask(n.Pattern)
		if n.Provenance {
			// codegen never reads the last two columns of a provenance
			// existence check regardless of what the pattern says about
			// them; the signature must agree or the Resolver could pick
			// an index keyed on a column codegen never actually binds.
			mask &^= provenanceMask(len(n.Pattern))
		}
		return mask
	default:
		return 0
	}
}

func patternMask(pattern []ram.Expression) uint64 {
	var mask uint64
	for i, v := range pattern {
		if v != nil && i < 64 {
			mask |= uint64(1) << uint(i)
		}
	}
	return mask
}

// provenanceMask returns the two-bit mask covering the top two columns of
// an arity-column relation: the provenance metadata columns a provenance
// existence check always ignores.
func provenanceMask(arity int) uint64 {
	var mask uint64
	for _, col := range []int{arity - 1, arity - 2} {
		if col >= 0 && col < 64 {
			mask |= uint64(1) << uint(col)
		}
	}
	return mask
}
