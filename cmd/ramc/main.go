// Command ramc is the compiler's CLI front end: it compiles a serialized
// ram.Program into a bytecode.Program, or disassembles an existing one.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/gfour/souffle/analysis"
	"github.com/gfour/souffle/analysis/sqlref"
	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/config"
	"github.com/gfour/souffle/internal/logging"
	"github.com/gfour/souffle/ram"
	"github.com/gfour/souffle/ramc"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ramc <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  compile <program.ram.cbor>   compile a serialized ram.Program\n")
		fmt.Fprintf(os.Stderr, "  disasm  <program.bc.cbor>    disassemble a compiled bytecode.Program\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  ramc compile -o prog.bc.cbor prog.ram.cbor\n")
		fmt.Fprintf(os.Stderr, "  ramc compile -catalog indexes.sqlite -o prog.bc.cbor prog.ram.cbor\n")
		fmt.Fprintf(os.Stderr, "  ramc disasm -color prog.bc.cbor\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	logging.Configure(cfg.Logging)

	switch os.Args[1] {
	case "compile":
		runCompile(os.Args[2:])
	case "disasm":
		runDisasm(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "ramc: unknown command %q\n\n", os.Args[1])
		flag.Usage()
		os.Exit(2)
	}
}

func runCompile(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	out := fs.String("o", "", "output path for the compiled bytecode.Program (default: stdout)")
	catalog := fs.String("catalog", "", "path to a sqlref SQLite index catalog (default: an empty static oracle)")
	cfgPath := fs.String("config", "", "path to a TOML config file (default: built-in defaults)")
	fs.Parse(args)

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fatalf("load config %s: %v", *cfgPath, err)
		}
		cfg = loaded
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "ramc compile: expected exactly one input file")
		os.Exit(2)
	}
	inPath := fs.Arg(0)

	data, err := os.ReadFile(inPath)
	if err != nil {
		fatalf("read %s: %v", inPath, err)
	}
	prog, err := ram.UnmarshalProgram(data)
	if err != nil {
		fatalf("unmarshal %s: %v", inPath, err)
	}

	var oracle analysis.Oracle
	if *catalog != "" {
		o, err := sqlref.Open(*catalog)
		if err != nil {
			fatalf("open catalog %s: %v", *catalog, err)
		}
		defer o.Close()
		oracle = o
	} else {
		oracle = analysis.NewStaticOracle(nil)
	}

	p, err := ramc.CompileWithConfig(prog, oracle, cfg)
	if err != nil {
		fatalf("compile: %v", err)
	}

	bin, err := p.Marshal()
	if err != nil {
		fatalf("marshal output: %v", err)
	}

	if *out == "" {
		os.Stdout.Write(bin)
		return
	}
	if err := os.WriteFile(*out, bin, 0o644); err != nil {
		fatalf("write %s: %v", *out, err)
	}
}

func runDisasm(args []string) {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	color := fs.Bool("color", false, "force ANSI color output even when stdout is not a terminal")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "ramc disasm: expected exactly one input file")
		os.Exit(2)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fatalf("read %s: %v", fs.Arg(0), err)
	}
	p, err := bytecode.UnmarshalProgram(data)
	if err != nil {
		fatalf("unmarshal %s: %v", fs.Arg(0), err)
	}

	text := bytecode.NewDisassembler(p).Text()
	if *color || isatty.IsTerminal(os.Stdout.Fd()) {
		text = colorize(text)
	}
	fmt.Print(text)
}

// colorize dims label lines and the comment tail of each instruction line;
// it never touches the columns disasm.go's own output already aligned.
func colorize(text string) string {
	profile := termenv.EnvColorProfile()
	labelColor := profile.Color("6")
	commentColor := profile.Color("8")

	var out []byte
	lineStart := 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] != '\n' {
			continue
		}
		line := text[lineStart:i]
		out = append(out, []byte(colorizeLine(line, labelColor, commentColor))...)
		if i < len(text) {
			out = append(out, '\n')
		}
		lineStart = i + 1
	}
	return string(out)
}

func colorizeLine(line string, labelColor, commentColor termenv.Color) string {
	if len(line) > 0 && line[len(line)-1] == ':' {
		return termenv.String(line).Foreground(labelColor).String()
	}
	if idx := indexOf(line, ";"); idx >= 0 {
		return line[:idx] + termenv.String(line[idx:]).Foreground(commentColor).String()
	}
	return line
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ramc: "+format+"\n", args...)
	os.Exit(1)
}
