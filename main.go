package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"minic/pkg/compiler"
	"minic/pkg/cpu"
	"minic/pkg/syntax"
	"minic/pkg/utils"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1 // usage, I/O or internal compiler error
	exitSyntax   = 2
	exitSemantic = 3
)

type config struct {
	input       string
	emitAsm     bool
	output      string
	optimize    bool
	dumpIR      bool
	dumpSymbols bool
	emitTAC     bool
	emitMIPS    bool
	annotate    bool
	execute     bool
	verbose     bool
}

// anyStage reports whether a flag asked for more than the parse tree.
func (c *config) anyStage() bool {
	return c.emitAsm || c.output != "" || c.optimize || c.dumpIR ||
		c.dumpSymbols || c.emitTAC || c.emitMIPS || c.execute
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitFailure
	}

	source, err := os.ReadFile(cfg.input)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read input file %q: %v\n", cfg.input, err)
		return exitFailure
	}

	if !cfg.anyStage() {
		prog, err := syntax.ParseFile(cfg.input, string(source))
		if err != nil {
			return report(stderr, err)
		}
		fmt.Fprintln(stdout, prog)
		return exitOK
	}

	opts := compiler.Options{
		SourceName: cfg.input,
		Optimize:   cfg.optimize,
		Comments:   cfg.annotate,
	}
	if cfg.verbose {
		opts.Logger = log.New(stderr, "minicc: ", 0)
	}
	res, err := compiler.Compile(string(source), opts)

	if cfg.dumpSymbols && res != nil && res.Info != nil {
		fmt.Fprint(stdout, res.Info.Table)
	}
	if err != nil {
		return report(stderr, err)
	}

	if cfg.dumpIR {
		fmt.Fprintln(stdout, "=== TAC (before optimization) ===")
		fmt.Fprint(stdout, res.IR)
		fmt.Fprintln(stdout, "=== TAC (after optimization) ===")
		fmt.Fprint(stdout, res.Final())
	}
	if cfg.emitTAC {
		fmt.Fprint(stdout, res.Final())
	}
	if cfg.emitMIPS {
		fmt.Fprint(stdout, res.Assembly)
	}
	if cfg.emitAsm {
		out := cfg.output
		if out == "" {
			out = defaultOutputPath(cfg.input)
		}
		if err := os.WriteFile(out, []byte(res.Assembly), 0o644); err != nil {
			fmt.Fprintf(stderr, "failed to write assembly file %q: %v\n", out, err)
			return exitFailure
		}
	}
	if cfg.execute {
		vm, err := cpu.Execute(res.Assembly, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "run failed: %v\n", err)
			return exitFailure
		}
		if cfg.verbose {
			fmt.Fprintf(stderr, "run complete: %d steps\n", vm.Steps)
		}
	}
	return exitOK
}

// parseArgs accepts flags before and after the input path.
func parseArgs(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}
	fs := flag.NewFlagSet("minicc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&cfg.emitAsm, "S", false, "write MIPS32 assembly to the output file")
	fs.StringVar(&cfg.output, "o", "", "output assembly file (default: input with .s extension)")
	fs.BoolVar(&cfg.optimize, "O", false, "optimize the TAC before code generation")
	fs.BoolVar(&cfg.dumpIR, "dump-ir", false, "print the TAC before and after optimization")
	fs.BoolVar(&cfg.dumpSymbols, "dump-symbols", false, "print every scope and its symbols")
	fs.BoolVar(&cfg.emitTAC, "emit-tac", false, "print the final TAC")
	fs.BoolVar(&cfg.emitMIPS, "emit-mips", false, "print the assembly to stdout")
	fs.BoolVar(&cfg.annotate, "annotate", false, "annotate the assembly with TAC instructions")
	fs.BoolVar(&cfg.execute, "run", false, "run the program on the built-in MIPS simulator")
	fs.BoolVar(&cfg.verbose, "v", false, "log compiler stages to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: minicc <input.mc> -S -o <output.s> [-O] [--dump-ir]")
		fs.PrintDefaults()
	}

	var inputs []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			break
		}
		inputs = append(inputs, fs.Arg(0))
		args = fs.Args()[1:]
	}
	switch len(inputs) {
	case 0:
		fs.Usage()
		return nil, errors.New("no input file")
	case 1:
		cfg.input = inputs[0]
	default:
		return nil, fmt.Errorf("expected one input file, found %d: %s", len(inputs), strings.Join(inputs, " "))
	}
	if cfg.output != "" {
		cfg.emitAsm = true
	}
	return cfg, nil
}

// report prints a compilation failure and returns its exit code.
func report(stderr io.Writer, err error) int {
	var se *syntax.SyntaxError
	var de *compiler.DiagnosticsError
	switch {
	case errors.As(err, &se):
		fmt.Fprintln(stderr, se.Detail())
		return exitSyntax
	case errors.As(err, &de):
		for _, d := range de.Diagnostics.Strings() {
			fmt.Fprintln(stderr, d)
		}
		fmt.Fprintf(stderr, "%d error(s) found; no code generated\n", de.Diagnostics.Len())
		return exitSemantic
	default:
		fmt.Fprintf(stderr, "compilation failed: %v\n", err)
		return exitFailure
	}
}

func defaultOutputPath(inPath string) string {
	return utils.ReplaceExt(inPath, ".s")
}
