package bytecode

import "testing"

func TestInternIsIdempotent(t *testing.T) {
	s := NewSymbolTable()
	id1 := s.Intern("hello")
	id2 := s.Intern("hello")
	if id1 != id2 {
		t.Errorf("Intern(\"hello\") = %d then %d, want the same id both times", id1, id2)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after interning the same string twice", s.Len())
	}
}

func TestInternDistinctStringsGetDistinctIDs(t *testing.T) {
	s := NewSymbolTable()
	a := s.Intern("a")
	b := s.Intern("b")
	if a == b {
		t.Error("distinct strings must get distinct ids")
	}
}

func TestLookupAndString(t *testing.T) {
	s := NewSymbolTable()
	id := s.Intern("x")
	got, ok := s.Lookup("x")
	if !ok || got != id {
		t.Errorf("Lookup(\"x\") = (%d, %v), want (%d, true)", got, ok, id)
	}
	if s.String(id) != "x" {
		t.Errorf("String(%d) = %q, want \"x\"", id, s.String(id))
	}
}

func TestLookupMissingIsNotFound(t *testing.T) {
	s := NewSymbolTable()
	if _, ok := s.Lookup("nope"); ok {
		t.Error("Lookup of an uninterned string should report not found")
	}
}

func TestStringOutOfRangeIsEmpty(t *testing.T) {
	s := NewSymbolTable()
	if got := s.String(999); got != "" {
		t.Errorf("String(999) = %q, want \"\" for an out-of-range id", got)
	}
}

func TestAllReturnsInsertionOrderCopy(t *testing.T) {
	s := NewSymbolTable()
	s.Intern("first")
	s.Intern("second")
	all := s.All()
	if len(all) != 2 || all[0] != "first" || all[1] != "second" {
		t.Errorf("All() = %v, want [first second]", all)
	}
	all[0] = "mutated"
	if got, _ := s.Lookup("first"); got != 0 {
		t.Error("mutating the slice returned by All() should not affect the table")
	}
}
