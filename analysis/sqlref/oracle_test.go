package sqlref

import (
	"testing"

	"github.com/gfour/souffle/ram"
)

func openTestOracle(t *testing.T) *Oracle {
	t.Helper()
	o, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { o.Close() })
	return o
}

func TestPutThenIndexesForRoundTrips(t *testing.T) {
	o := openTestOracle(t)
	orders := []ram.LexOrder{{0, 1}, {1, 0}}
	if err := o.Put("edge", orders); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got := o.IndexesFor("edge")
	if len(got) != 2 {
		t.Fatalf("IndexesFor = %v, want 2 orders", got)
	}
	if got[0][0] != 0 || got[0][1] != 1 {
		t.Errorf("IndexesFor[0] = %v, want [0 1]", got[0])
	}
	if got[1][0] != 1 || got[1][1] != 0 {
		t.Errorf("IndexesFor[1] = %v, want [1 0]", got[1])
	}
}

func TestPutReplacesExistingEntry(t *testing.T) {
	o := openTestOracle(t)
	if err := o.Put("edge", []ram.LexOrder{{0, 1}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := o.Put("edge", []ram.LexOrder{{1, 0}}); err != nil {
		t.Fatalf("Put (replace): %v", err)
	}
	got := o.IndexesFor("edge")
	if len(got) != 1 || got[0][0] != 1 {
		t.Errorf("IndexesFor = %v, want a single [1 0] order after replacement", got)
	}
}

func TestIndexesForUnknownRelationIsEmpty(t *testing.T) {
	o := openTestOracle(t)
	if got := o.IndexesFor("nothing"); len(got) != 0 {
		t.Errorf("IndexesFor(unknown) = %v, want empty", got)
	}
}

func TestSearchSignatureAlwaysZero(t *testing.T) {
	o := openTestOracle(t)
	if got := o.SearchSignature(nil); got != 0 {
		t.Errorf("SearchSignature() = %d, want 0", got)
	}
}

func TestPutSignatureThenSignatureRoundTrips(t *testing.T) {
	o := openTestOracle(t)
	if err := o.PutSignature("edge", "op1", 0b101); err != nil {
		t.Fatalf("PutSignature: %v", err)
	}
	if got := o.Signature("edge", "op1"); got != 0b101 {
		t.Errorf("Signature() = %#b, want 0b101", got)
	}
}

func TestSignatureDefaultsToZero(t *testing.T) {
	o := openTestOracle(t)
	if got := o.Signature("edge", "unknown-op"); got != 0 {
		t.Errorf("Signature() = %d, want 0 for an unrecorded op key", got)
	}
}

func TestPutSignatureUpsertsOnConflict(t *testing.T) {
	o := openTestOracle(t)
	if err := o.PutSignature("edge", "op1", 1); err != nil {
		t.Fatalf("PutSignature: %v", err)
	}
	if err := o.PutSignature("edge", "op1", 2); err != nil {
		t.Fatalf("PutSignature (update): %v", err)
	}
	if got := o.Signature("edge", "op1"); got != 2 {
		t.Errorf("Signature() = %d, want 2 after upsert", got)
	}
}
