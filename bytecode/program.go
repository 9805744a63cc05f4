package bytecode

import "github.com/google/uuid"

// Program is the compiled LVMCode artifact: an instruction stream
// terminated by a single OpStop, the symbol table it references, the
// I/O-directive sidetable it references, and the frame-sizing counts the
// interpreter needs to pre-allocate its iterator/timer slot arrays up
// front rather than growing them lazily at run time.
//
// A Program is immutable after it is returned from codegen.Generate and may
// be shared by multiple interpreter instances executing concurrently.
type Program struct {
	BuildID string

	Stream  []Word
	Symbols *SymbolTable
	IO      []IODirective

	IterSlots  int
	TimerSlots int
}

// NewProgram assembles a Program from a finished emission pass.
func NewProgram(stream []Word, symbols *SymbolTable, io []IODirective, iterSlots, timerSlots int) *Program {
	// copy the stream so later reuse of the Builder that produced it can't
	// alias into a "final" artifact.
	s := make([]Word, len(stream))
	copy(s, stream)
	return &Program{
		BuildID:    uuid.NewString(),
		Stream:     s,
		Symbols:    symbols,
		IO:         io,
		IterSlots:  iterSlots,
		TimerSlots: timerSlots,
	}
}

// Len returns the number of words in the stream.
func (p *Program) Len() int { return len(p.Stream) }
