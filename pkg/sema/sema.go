// Package sema binds names to symbols and checks types for a MiniC parse
// tree.
//
// Analysis runs three passes over the same tree:
//
//	Collect    declare variables and functions, build the scope tree
//	CheckUses  resolve references, validate call arity
//	TypeCheck  infer expression types, validate every typed construct
//
// Every pass appends to a caller-owned Diagnostics collector and keeps
// going after an error.
package sema

import "minic/pkg/syntax"

// Info is the result of analysis: the symbol table plus per-node facts
// recorded by the passes.
type Info struct {
	Table *SymbolTable

	// Scopes maps each scope-introducing node (*syntax.Program,
	// *syntax.FunctionDecl, *syntax.BlockStmt) to the scope it opens.
	Scopes map[syntax.Node]ScopeID

	// Defs maps each *syntax.Declarator and *syntax.Param to its Variable.
	Defs map[syntax.Node]*Variable

	// Funcs maps each function declaration to its Function, including
	// declarations whose name was already taken.
	Funcs map[*syntax.FunctionDecl]*Function

	// Uses maps each *syntax.VarRef, *syntax.IndexExpr and
	// *syntax.FunctionCall to the symbol it resolved to.
	Uses map[syntax.Expr]Symbol

	// Types records the inferred type of every expression.
	Types map[syntax.Expr]Type
}

// NewInfo returns an empty Info whose table already holds the built-ins.
func NewInfo() *Info {
	table := NewSymbolTable()
	DeclareBuiltins(table)
	return &Info{
		Table:  table,
		Scopes: make(map[syntax.Node]ScopeID),
		Defs:   make(map[syntax.Node]*Variable),
		Funcs:  make(map[*syntax.FunctionDecl]*Function),
		Uses:   make(map[syntax.Expr]Symbol),
		Types:  make(map[syntax.Expr]Type),
	}
}

// Analyze runs all three passes over prog.
func Analyze(prog *syntax.Program, diags *Diagnostics) *Info {
	info := NewInfo()
	Collect(prog, info, diags)
	CheckUses(prog, info, diags)
	TypeCheck(prog, info, diags)
	return info
}

// TypeOf returns the recorded type of e, or Invalid.
func (info *Info) TypeOf(e syntax.Expr) Type {
	return info.Types[e]
}

// VarOf returns the variable a reference or declarator is bound to.
func (info *Info) VarOf(n syntax.Node) *Variable {
	if v, ok := info.Defs[n]; ok {
		return v
	}
	if e, ok := n.(syntax.Expr); ok {
		v, _ := info.Uses[e].(*Variable)
		return v
	}
	return nil
}

// IsGlobal reports whether v lives in the global scope.
func (info *Info) IsGlobal(v *Variable) bool {
	return info.Table.IsGlobal(v)
}

// scopeWalker tracks the lexical scope while a later pass re-traverses the
// tree, switching whenever it enters a node recorded by Collect.
type scopeWalker struct {
	info *Info
	cur  ScopeID
}

// enter switches to the scope recorded for n, if any, and returns the
// scope to restore afterwards.
func (w *scopeWalker) enter(n syntax.Node) ScopeID {
	saved := w.cur
	if id, ok := w.info.Scopes[n]; ok {
		w.cur = id
	}
	return saved
}
