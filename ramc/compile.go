// Package ramc is the compiler's top-level entry point: it wires the
// relation encoder, index resolver and code generator into a single
// Compile call.
package ramc

import (
	"fmt"

	"github.com/gfour/souffle/analysis"
	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/codegen"
	"github.com/gfour/souffle/config"
	"github.com/gfour/souffle/internal/logging"
	"github.com/gfour/souffle/ram"
)

var log = logging.Named("ramc")

// Compile lowers prog into a finished bytecode.Program, resolving indexed
// operations against oracle, using the compiler's default arity threshold.
// The CLI and the RPC service call CompileWithConfig instead, to honor a
// loaded configuration.
func Compile(prog *ram.Program, oracle analysis.Oracle) (*bytecode.Program, error) {
	return CompileWithConfig(prog, oracle, config.Default())
}

// CompileWithConfig is Compile, honoring cfg.Compiler.MaxDirectArity
// instead of the encoder's built-in default.
func CompileWithConfig(prog *ram.Program, oracle analysis.Oracle, cfg *config.Config) (*bytecode.Program, error) {
	log.Info("compiling program: %d relations, %d subroutines", len(prog.Relations), len(prog.Subroutines))

	p, err := codegen.GenerateWithMaxArity(prog, oracle, cfg.Compiler.MaxDirectArity)
	if err != nil {
		log.Error("compile failed: %v", err)
		return nil, fmt.Errorf("ramc: compile: %w", err)
	}

	log.Info("compile finished: build %s, %d words, %d iter slots, %d timer slots", p.BuildID, p.Len(), p.IterSlots, p.TimerSlots)
	return p, nil
}
