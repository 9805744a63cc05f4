package bytecode

// LabelID names a branch target that will resolve to a concrete stream
// offset once the code generator's first walk has visited the point it
// marks.
type LabelID int

// labelKey identifies a label by the IR node it belongs to and a small tag
// distinguishing multiple labels attached to the same node (a Scan needs
// only "end", a Choice needs both "end" and "match"). Using the node's own
// identity as part of the key is what makes label allocation idempotent
// across the generator's two walks: the first walk allocates on first use,
// the second walk's identical traversal order hits the same keys and reuses
// the ids already recorded, so the label allocator is never advanced during
// the second pass even though it is never explicitly reset.
type labelKey struct {
	node interface{}
	tag  string
}

// Builder accumulates a word stream plus the side tables and allocators the
// code generator needs while doing it: labels, iterator slots, timer slots
// and the I/O directive sidetable. A single Builder is reused across the
// generator's two passes; Reset clears everything an emission pass produces
// while preserving the label table pass one built.
type Builder struct {
	words []Word

	labelKeyToID map[labelKey]LabelID
	labelOffset  map[LabelID]Word
	nextLabel    LabelID

	io *IOTable

	nextIterSlot  int
	nextTimerSlot int
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		labelKeyToID: make(map[labelKey]LabelID),
		labelOffset:  make(map[LabelID]Word),
		io:           NewIOTable(),
	}
}

// Len returns the current stream length in words; this is the offset the
// next emitted word will occupy.
func (b *Builder) Len() int { return len(b.words) }

// Words returns the stream built so far. The caller must not retain it
// across a Reset.
func (b *Builder) Words() []Word { return b.words }

// Emit appends a single word and returns the offset it was written at.
func (b *Builder) Emit(w Word) int {
	b.words = append(b.words, w)
	return len(b.words) - 1
}

// EmitOp appends an opcode.
func (b *Builder) EmitOp(op Opcode) int { return b.Emit(Word(op)) }

// EmitWords appends a run of words in order.
func (b *Builder) EmitWords(ws ...Word) {
	b.words = append(b.words, ws...)
}

// Label returns the id of the label identified by (node, tag), allocating a
// new one the first time this (node, tag) pair is seen. Calling it again
// with the same pair — as the second emission pass does, deterministically
// visiting the same nodes in the same order — returns the same id without
// allocating.
func (b *Builder) Label(node interface{}, tag string) LabelID {
	k := labelKey{node: node, tag: tag}
	if id, ok := b.labelKeyToID[k]; ok {
		return id
	}
	id := b.nextLabel
	b.nextLabel++
	b.labelKeyToID[k] = id
	return id
}

// Mark resolves label to the current stream position. Calling Mark twice on
// the same label (once per pass) is fine as long as both calls land at the
// same offset, which deterministic emission guarantees.
func (b *Builder) Mark(id LabelID) {
	b.labelOffset[id] = Word(len(b.words))
}

// ResolveLabel returns the offset id was Marked at, if any. During the
// first emission pass a forward-referenced label is not resolved yet; the
// caller emits a placeholder in that case, which is safe because the whole
// first-pass stream is discarded before the second pass runs.
func (b *Builder) ResolveLabel(id LabelID) (Word, bool) {
	off, ok := b.labelOffset[id]
	return off, ok
}

// EmitBranch appends op followed by the resolved (or, in pass one,
// placeholder) offset of the label identified by (node, tag).
func (b *Builder) EmitBranch(op Opcode, node interface{}, tag string) {
	id := b.Label(node, tag)
	b.EmitOp(op)
	if off, ok := b.ResolveLabel(id); ok {
		b.Emit(off)
	} else {
		b.Emit(0)
	}
}

// EmitBranchAbsolute appends op followed by a known absolute offset, for
// backward jumps to a point already marked in the current pass (loop
// headers).
func (b *Builder) EmitBranchAbsolute(op Opcode, target int) {
	b.EmitOp(op)
	b.Emit(Word(target))
}

// EmitBranchByID appends op followed by the resolved (or, in pass one,
// placeholder) offset of an already-allocated label id. It is EmitBranch's
// counterpart for callers that thread a LabelID down through a recursive
// walk (an enclosing loop's exit address, an enclosing Loop's exit label)
// instead of re-deriving it from a (node, tag) pair at every use.
func (b *Builder) EmitBranchByID(op Opcode, id LabelID) {
	b.EmitOp(op)
	if off, ok := b.ResolveLabel(id); ok {
		b.Emit(off)
	} else {
		b.Emit(0)
	}
}

// NewIterSlot allocates the next iterator slot id.
func (b *Builder) NewIterSlot() int {
	id := b.nextIterSlot
	b.nextIterSlot++
	return id
}

// NewTimerSlot allocates the next profile-timer slot id.
func (b *Builder) NewTimerSlot() int {
	id := b.nextTimerSlot
	b.nextTimerSlot++
	return id
}

// IterSlotCount returns how many iterator slots have been allocated so far
// in the current pass.
func (b *Builder) IterSlotCount() int { return b.nextIterSlot }

// TimerSlotCount returns how many timer slots have been allocated so far in
// the current pass.
func (b *Builder) TimerSlotCount() int { return b.nextTimerSlot }

// IO returns the I/O directive sidetable being built.
func (b *Builder) IO() *IOTable { return b.io }

// Reset clears the stream, the I/O sidetable and the iterator/timer
// allocators for a fresh emission pass, while preserving the label table.
func (b *Builder) Reset() {
	b.words = b.words[:0]
	b.io.reset()
	b.nextIterSlot = 0
	b.nextTimerSlot = 0
}
