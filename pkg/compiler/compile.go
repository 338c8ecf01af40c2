package compiler

import (
	"errors"
	"fmt"
	"log"
	"time"

	"minic/pkg/asm"
	"minic/pkg/irgen"
	"minic/pkg/mips"
	"minic/pkg/sema"
	"minic/pkg/syntax"
	"minic/pkg/tac"
)

var (
	// ErrSemantic is wrapped by every *DiagnosticsError.
	ErrSemantic = errors.New("semantic errors")

	// ErrInternal marks a failure in code generation or in the checked
	// listing. These indicate a compiler bug, not a user error.
	ErrInternal = errors.New("internal compiler error")
)

// Options configures one compilation.
type Options struct {
	SourceName string      // used in syntax error messages
	Optimize   bool        // run the TAC optimizer before code generation
	Comments   bool        // annotate the assembly with TAC instructions
	Logger     *log.Logger // stage timings; nil disables logging
}

// Result holds the output of every stage that ran. Later fields are nil
// when an earlier stage failed.
type Result struct {
	Program     *syntax.Program
	Info        *sema.Info
	Diagnostics *sema.Diagnostics
	IR          *tac.Program
	Optimized   *tac.Program // nil unless Options.Optimize
	Assembly    string
	Listing     *asm.Listing
}

// Final returns the TAC program the assembly was generated from.
func (r *Result) Final() *tac.Program {
	if r.Optimized != nil {
		return r.Optimized
	}
	return r.IR
}

// DiagnosticsError reports a program rejected by semantic analysis.
type DiagnosticsError struct {
	Diagnostics *sema.Diagnostics
}

func (e *DiagnosticsError) Error() string {
	list := e.Diagnostics.List()
	if len(list) == 1 {
		return fmt.Sprintf("semantic error: %s", list[0])
	}
	return fmt.Sprintf("%d semantic errors, first: %s", len(list), list[0])
}

func (e *DiagnosticsError) Unwrap() error { return ErrSemantic }

// Compile runs the whole pipeline over src. Each call builds its own
// symbol table, diagnostics and programs.
//
// A syntax error is returned as *syntax.SyntaxError with a nil Result.
// Semantic errors return the partial Result together with a
// *DiagnosticsError; no code is generated for such a program.
func Compile(src string, opts Options) (*Result, error) {
	logf := func(format string, args ...any) {
		if opts.Logger != nil {
			opts.Logger.Printf(format, args...)
		}
	}

	start := time.Now()
	prog, err := syntax.ParseFile(opts.SourceName, src)
	if err != nil {
		return nil, err
	}
	logf("parse: %d declarations in %s", len(prog.Decls), time.Since(start))
	res := &Result{Program: prog}

	start = time.Now()
	diags := &sema.Diagnostics{}
	res.Info = sema.Analyze(prog, diags)
	res.Diagnostics = diags
	logf("analyze: %d scopes, %d diagnostics in %s", res.Info.Table.Len(), diags.Len(), time.Since(start))
	if diags.Len() > 0 {
		return res, &DiagnosticsError{Diagnostics: diags}
	}

	start = time.Now()
	res.IR = irgen.Generate(prog, res.Info)
	logf("irgen: %d functions, %d globals in %s", len(res.IR.Functions), len(res.IR.Globals), time.Since(start))

	if opts.Optimize {
		start = time.Now()
		res.Optimized = tac.Optimize(res.IR)
		logf("optimize: %d -> %d instructions in %s", countInstrs(res.IR), countInstrs(res.Optimized), time.Since(start))
	}

	start = time.Now()
	res.Assembly, err = mips.Generate(res.Final(), mips.Options{Comments: opts.Comments})
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	res.Listing, err = asm.Check(res.Assembly)
	if err != nil {
		return res, fmt.Errorf("%w: generated assembly: %w", ErrInternal, err)
	}
	logf("codegen: %d instructions, %d data bytes in %s", res.Listing.Instructions(), res.Listing.DataSize, time.Since(start))

	return res, nil
}

func countInstrs(p *tac.Program) int {
	n := 0
	for _, f := range p.Functions {
		n += len(f.Code)
	}
	return n
}
