// Package tac defines the three-address intermediate representation and
// its optimizer.
package tac

import (
	"fmt"
	"strings"
)

// Global is a named data region reserved in the data segment.
type Global struct {
	Name string
	Size int // bytes
}

func (g Global) String() string {
	return fmt.Sprintf("global %s, %d bytes", g.Name, g.Size)
}

// Function is the lowered body of one source function.
type Function struct {
	Name   string
	Params []string
	Code   []Instr
}

// Emit appends an instruction to the function body.
func (f *Function) Emit(in Instr) {
	f.Code = append(f.Code, in)
}

// Labels returns every label defined in f, in order.
func (f *Function) Labels() []string {
	var labels []string
	for _, in := range f.Code {
		if in.Op == LABEL {
			labels = append(labels, in.R.Text)
		}
	}
	return labels
}

func (f *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s:\n", f.Name)
	for _, in := range f.Code {
		if in.Op == LABEL {
			sb.WriteString(in.String())
		} else {
			sb.WriteString("  ")
			sb.WriteString(in.String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Program is a lowered translation unit.
type Program struct {
	Globals   []Global
	Functions []*Function
}

// NewFunction appends an empty function to the program and returns it.
func (p *Program) NewFunction(name string, params []string) *Function {
	f := &Function{Name: name, Params: params}
	p.Functions = append(p.Functions, f)
	return f
}

// AddGlobal reserves size bytes under name.
func (p *Program) AddGlobal(name string, size int) {
	p.Globals = append(p.Globals, Global{Name: name, Size: size})
}

// Function returns the function named name, or nil.
func (p *Program) Function(name string) *Function {
	for _, f := range p.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// String renders the program dump: a "# globals" block when there are
// globals, then each function followed by a blank line.
func (p *Program) String() string {
	var sb strings.Builder
	if len(p.Globals) > 0 {
		sb.WriteString("# globals\n")
		for _, g := range p.Globals {
			sb.WriteString(g.String())
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	for _, f := range p.Functions {
		sb.WriteString(f.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
