package sema

import "fmt"

type builtin struct {
	name   string
	params []Type
}

// builtins are the print routines lowered to simulator syscalls. They all
// return void.
var builtins = []builtin{
	{"printInt", []Type{Int}},
	{"printChar", []Type{Char}},
	{"printString", []Type{String}},
	{"println", nil},
	{"print_int", []Type{Int}},
	{"print_char", []Type{Char}},
	{"print_str", []Type{String}},
}

// DeclareBuiltins defines the built-in functions in the global scope,
// skipping any name that is already declared there.
func DeclareBuiltins(s *SymbolTable) {
	for _, b := range builtins {
		if _, exists := s.Scope(GlobalScope).Lookup(b.name); exists {
			continue
		}
		fn := &Function{Name: b.name, Return: Void, Body: NoScope, Builtin: true}
		for i, t := range b.params {
			fn.Params = append(fn.Params, &Variable{Name: fmt.Sprintf("p%d", i), Type: t})
		}
		s.DefineIn(GlobalScope, fn)
	}
}

// acceptsArg reports whether an argument of type arg may be passed for
// param. Calls never widen, except that the char built-ins take an int.
func acceptsArg(fn *Function, param, arg Type) bool {
	if param == arg {
		return true
	}
	return fn.Builtin && param == Char && arg == Int
}
