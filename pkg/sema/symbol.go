package sema

import (
	"fmt"
	"strings"

	"minic/pkg/syntax"
)

// Symbol is a declared name: either a *Variable or a *Function. The set is
// closed; consumers switch over both cases.
type Symbol interface {
	Ident() string
	Declared() syntax.Pos
	isSymbol()
}

// Variable is a scalar (no Dims) or an N-dimensional array.
type Variable struct {
	Name string
	Type Type
	Dims []int
	Pos  syntax.Pos
}

func (v *Variable) Ident() string        { return v.Name }
func (v *Variable) Declared() syntax.Pos { return v.Pos }
func (*Variable) isSymbol()              {}

// Rank is the number of array dimensions; zero for scalars.
func (v *Variable) Rank() int { return len(v.Dims) }

// Size is the storage size in bytes: one 4-byte word per element.
func (v *Variable) Size() int {
	n := 4
	for _, d := range v.Dims {
		n *= d
	}
	return n
}

func (v *Variable) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", v.Name, v.Type)
	for _, d := range v.Dims {
		fmt.Fprintf(&sb, "[%d]", d)
	}
	return sb.String()
}

// Function is a user function or a built-in. Body is the scope of the body
// block, set once the body has been collected; built-ins have NoScope.
type Function struct {
	Name    string
	Return  Type
	Params  []*Variable
	Body    ScopeID
	Builtin bool
	Pos     syntax.Pos
}

func (f *Function) Ident() string        { return f.Name }
func (f *Function) Declared() syntax.Pos { return f.Pos }
func (*Function) isSymbol()              {}

func (f *Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s(%s) %s", f.Name, strings.Join(params, ", "), f.Return)
}
