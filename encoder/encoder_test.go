package encoder

import (
	"testing"

	"github.com/gfour/souffle/ram"
)

func TestNewPreseedsDeclaredRelations(t *testing.T) {
	decls := []ram.RelationDecl{
		{Name: "edge", Arity: 2, AttrTypes: []ram.AttrType{ram.AttrSymbol, ram.AttrSymbol}},
		{Name: "path", Arity: 2, AttrTypes: []ram.AttrType{ram.AttrSymbol, ram.AttrSymbol}},
	}
	e := New(decls)

	if e.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", e.Size())
	}
	edge, ok := e.LookupByName("edge")
	if !ok {
		t.Fatal("edge should be interned")
	}
	if edge.ID != 0 {
		t.Errorf("edge.ID = %d, want 0 (insertion order)", edge.ID)
	}
	path, ok := e.LookupByName("path")
	if !ok || path.ID != 1 {
		t.Errorf("path descriptor = %+v, want ID 1", path)
	}
}

func TestInternIsIdempotentByName(t *testing.T) {
	e := New(nil)
	decl := ram.RelationDecl{Name: "r", Arity: 1}

	id1 := e.Intern(decl)
	id2 := e.Intern(decl)
	if id1 != id2 {
		t.Errorf("Intern called twice with the same name yielded different ids: %d != %d", id1, id2)
	}
	if e.Size() != 1 {
		t.Errorf("Size() = %d, want 1 after repeated Intern", e.Size())
	}
}

func TestSelectStorageAboveArityThresholdIsIndirect(t *testing.T) {
	decl := ram.RelationDecl{Name: "wide", Arity: 20, Representation: ram.ReprOrderedTree}
	e := NewWithMaxArity([]ram.RelationDecl{decl}, 12)

	d, _ := e.LookupByName("wide")
	if d.Storage != StorageIndirect {
		t.Errorf("Storage = %v, want StorageIndirect for arity 20 > threshold 12", d.Storage)
	}
}

func TestSelectStorageBelowThresholdUsesDeclaredRepresentation(t *testing.T) {
	decl := ram.RelationDecl{Name: "narrow", Arity: 3, Representation: ram.ReprTrie}
	e := NewWithMaxArity([]ram.RelationDecl{decl}, 12)

	d, _ := e.LookupByName("narrow")
	if d.Storage != StorageTrie {
		t.Errorf("Storage = %v, want StorageTrie", d.Storage)
	}
}

func TestLookupOutOfRangePanics(t *testing.T) {
	e := New(nil)
	defer func() {
		if recover() == nil {
			t.Error("Lookup with an out-of-range id should panic")
		}
	}()
	e.Lookup(0)
}

func TestLookupByNameMissing(t *testing.T) {
	e := New(nil)
	if _, ok := e.LookupByName("nope"); ok {
		t.Error("LookupByName should report false for an unknown relation")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	e := New([]ram.RelationDecl{{Name: "r", Arity: 1}})
	all := e.All()
	all[0].Name = "mutated"

	d, _ := e.LookupByName("r")
	if d.Name != "r" {
		t.Errorf("mutating All()'s result affected the encoder's own descriptor: %+v", d)
	}
}
