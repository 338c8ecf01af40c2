package sema

import (
	"fmt"

	"minic/pkg/syntax"
)

// Kind classifies a semantic diagnostic.
type Kind int

const (
	Redefinition Kind = iota
	UnboundReference
	ArityMismatch
	TypeMismatch
	EntryPointViolation
)

var kindNames = [...]string{
	Redefinition:        "redefinition",
	UnboundReference:    "unbound reference",
	ArityMismatch:       "arity mismatch",
	TypeMismatch:        "type mismatch",
	EntryPointViolation: "entry point violation",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Diagnostic is one accumulated semantic error. Program-level problems
// carry the zero position and print as 0:0.
type Diagnostic struct {
	Kind Kind
	Pos  syntax.Pos
	Msg  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d %s", d.Pos.Line, d.Pos.Col, d.Msg)
}

// Diagnostics is an append-only collector owned by one compilation and
// passed to each analysis pass.
type Diagnostics struct {
	list []Diagnostic
}

func (d *Diagnostics) Add(kind Kind, pos syntax.Pos, format string, args ...any) {
	d.list = append(d.list, Diagnostic{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// Len returns the number of diagnostics recorded so far.
func (d *Diagnostics) Len() int { return len(d.list) }

// List returns the diagnostics in the order they were recorded.
func (d *Diagnostics) List() []Diagnostic {
	return append([]Diagnostic(nil), d.list...)
}

// Count returns how many diagnostics of kind k were recorded.
func (d *Diagnostics) Count(k Kind) int {
	n := 0
	for _, diag := range d.list {
		if diag.Kind == k {
			n++
		}
	}
	return n
}

// Strings renders every diagnostic as "line:col message".
func (d *Diagnostics) Strings() []string {
	out := make([]string, len(d.list))
	for i, diag := range d.list {
		out[i] = diag.String()
	}
	return out
}
