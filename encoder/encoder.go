// Package encoder interns every relation referenced by a RAM program into a
// dense integer id and records its physical shape: arity, attribute-type
// qualifiers, storage kind and selected index set.
package encoder

import (
	"fmt"

	"github.com/gfour/souffle/ram"
)

// DefaultMaxDirectArity is the arity threshold New uses, beyond which a
// relation is always stored indirectly, regardless of its declared
// representation. config.Config.Compiler.MaxDirectArity does not assign
// this var; it reaches the encoder through NewWithMaxArity.
var DefaultMaxDirectArity = 12

// StorageKind is the physical representation selected for a relation.
type StorageKind int

const (
	StorageDefault StorageKind = iota
	StorageOrderedTree
	StorageTrie
	StorageEquivalence
	StorageIndirect
)

func (k StorageKind) String() string {
	switch k {
	case StorageDefault:
		return "default"
	case StorageOrderedTree:
		return "ordered-tree"
	case StorageTrie:
		return "trie"
	case StorageEquivalence:
		return "equivalence"
	case StorageIndirect:
		return "indirect"
	default:
		return fmt.Sprintf("StorageKind(%d)", int(k))
	}
}

// RelationID is a dense, insertion-ordered id assigned by an Encoder.
type RelationID int

// Descriptor is the immutable record an Encoder creates the first time a
// relation is interned. Invariant: names are unique within one Encoder;
// ids are a dense prefix of the naturals in insertion order.
type Descriptor struct {
	ID        RelationID
	Name      string
	Arity     int
	AttrTypes []ram.AttrType
	Storage   StorageKind
}

// Encoder interns relations to ids and owns their descriptors. The emitted
// bytecode references only ids; descriptors never leave the encoder except
// by value through Lookup.
type Encoder struct {
	maxDirectArity int
	byName         map[string]RelationID
	descriptors    []Descriptor
}

// New creates an Encoder pre-seeded with every relation declared in decls,
// so that ids are stable and independent of the order in which the code
// generator later discovers references.
func New(decls []ram.RelationDecl) *Encoder {
	return NewWithMaxArity(decls, DefaultMaxDirectArity)
}

// NewWithMaxArity is New with an explicit storage-kind arity threshold,
// used by config.Config.Compiler.MaxDirectArity to exercise the indirect
// boundary at small arities in tests without huge fixtures.
func NewWithMaxArity(decls []ram.RelationDecl, maxDirectArity int) *Encoder {
	e := &Encoder{
		maxDirectArity: maxDirectArity,
		byName:         make(map[string]RelationID, len(decls)),
		descriptors:    make([]Descriptor, 0, len(decls)),
	}
	for _, d := range decls {
		e.intern(d)
	}
	return e
}

// Intern returns the id for decl, creating and appending its descriptor the
// first time this relation name is seen. Idempotent by name: a relation
// already declared up front, or interned by an earlier call, always
// yields the same id and never grows the descriptor vector on a
// repeat call.
func (e *Encoder) Intern(decl ram.RelationDecl) RelationID {
	if id, ok := e.byName[decl.Name]; ok {
		return id
	}
	return e.intern(decl)
}

func (e *Encoder) intern(decl ram.RelationDecl) RelationID {
	id := RelationID(len(e.descriptors))
	e.byName[decl.Name] = id
	e.descriptors = append(e.descriptors, Descriptor{
		ID:        id,
		Name:      decl.Name,
		Arity:     decl.Arity,
		AttrTypes: decl.AttrTypes,
		Storage:   selectStorage(decl, e.maxDirectArity),
	})
	return id
}

// selectStorage implements the storage-selection rule: past the arity
// threshold, storage is always indirect; below it, the IR's declared
// representation is used verbatim.
func selectStorage(decl ram.RelationDecl, maxDirectArity int) StorageKind {
	if decl.Arity > maxDirectArity {
		return StorageIndirect
	}
	switch decl.Representation {
	case ram.ReprOrderedTree:
		return StorageOrderedTree
	case ram.ReprTrie:
		return StorageTrie
	case ram.ReprEquivalence:
		return StorageEquivalence
	case ram.ReprIndirect:
		return StorageIndirect
	default:
		return StorageDefault
	}
}

// Lookup returns the descriptor for id. It panics if id is out of range —
// every relation id appearing as an operand must satisfy 0 <= id <
// encoder.size(), and a violation is a compiler invariant break, never a
// recoverable condition.
func (e *Encoder) Lookup(id RelationID) Descriptor {
	if id < 0 || int(id) >= len(e.descriptors) {
		panic(fmt.Sprintf("encoder: relation id %d out of range [0,%d)", id, len(e.descriptors)))
	}
	return e.descriptors[id]
}

// LookupByName returns the descriptor for name and whether it was found.
func (e *Encoder) LookupByName(name string) (Descriptor, bool) {
	id, ok := e.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return e.descriptors[id], true
}

// Size returns the number of interned relations.
func (e *Encoder) Size() int { return len(e.descriptors) }

// All returns every descriptor in id order. The result is a copy.
func (e *Encoder) All() []Descriptor {
	out := make([]Descriptor, len(e.descriptors))
	copy(out, e.descriptors)
	return out
}
