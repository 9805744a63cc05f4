package bytecode

// IODirective is an opaque load/store directive record. The compiler
// describes I/O; it never executes it, so the fields here are exactly what
// a downstream I/O driver needs to open the right file/format for a
// relation and nothing more.
type IODirective struct {
	RelationName string
	Operation    string            // "load" or "store"
	Params       map[string]string // e.g. {"IO": "file", "filename": "out.facts", "delimiter": "\t"}
}

// IOTable is the ordered, append-only sidetable of I/O directives. The
// stream references entries by their index (see OpLoad/OpStore).
type IOTable struct {
	directives []IODirective
}

// NewIOTable creates an empty sidetable.
func NewIOTable() *IOTable {
	return &IOTable{}
}

// Add appends a directive and returns its index.
func (t *IOTable) Add(d IODirective) int {
	t.directives = append(t.directives, d)
	return len(t.directives) - 1
}

// Get returns the directive at index i.
func (t *IOTable) Get(i int) IODirective {
	return t.directives[i]
}

// Len returns the number of directives recorded.
func (t *IOTable) Len() int {
	return len(t.directives)
}

// All returns the full directive list in insertion order. The result is a
// copy; callers must not mutate the table through it.
func (t *IOTable) All() []IODirective {
	out := make([]IODirective, len(t.directives))
	copy(out, t.directives)
	return out
}

// reset discards all directives, keeping the underlying array's capacity.
// Used between the code generator's two emission passes.
func (t *IOTable) reset() {
	t.directives = t.directives[:0]
}
