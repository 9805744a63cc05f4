package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode is canonical-mode CBOR: deterministic key ordering and
// shortest-form integers, so two encodings of the same Program are
// byte-identical, matching the determinism the stream itself is held to.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireProgram is Program's CBOR wire shape. Symbols are flattened to their
// plain string slice (SymbolTable's mutex and lookup index are
// reconstructed on decode, not carried on the wire).
type wireProgram struct {
	BuildID    string
	Stream     []Word
	Symbols    []string
	IO         []IODirective
	IterSlots  int
	TimerSlots int
}

// Marshal serializes p to canonical CBOR.
func (p *Program) Marshal() ([]byte, error) {
	w := wireProgram{
		BuildID:    p.BuildID,
		Stream:     p.Stream,
		Symbols:    p.Symbols.All(),
		IO:         p.IO,
		IterSlots:  p.IterSlots,
		TimerSlots: p.TimerSlots,
	}
	b, err := cborEncMode.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal program: %w", err)
	}
	return b, nil
}

// UnmarshalProgram deserializes a Program previously produced by Marshal.
func UnmarshalProgram(data []byte) (*Program, error) {
	var w wireProgram
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal program: %w", err)
	}
	sym := NewSymbolTable()
	for _, s := range w.Symbols {
		sym.Intern(s)
	}
	return &Program{
		BuildID:    w.BuildID,
		Stream:     w.Stream,
		Symbols:    sym,
		IO:         w.IO,
		IterSlots:  w.IterSlots,
		TimerSlots: w.TimerSlots,
	}, nil
}
