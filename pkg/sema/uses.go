package sema

import "minic/pkg/syntax"

type useChecker struct {
	scopeWalker
	diags *Diagnostics
}

// CheckUses resolves every variable reference against its lexical scope
// and every call against the global functions, recording the bindings in
// info.Uses. Calls are also checked for argument count.
func CheckUses(prog *syntax.Program, info *Info, diags *Diagnostics) {
	u := &useChecker{scopeWalker: scopeWalker{info: info, cur: GlobalScope}, diags: diags}
	saved := u.enter(prog)
	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *syntax.VarDecl:
			u.stmt(d)
		case *syntax.FunctionDecl:
			s := u.enter(d)
			u.stmt(d.Body)
			u.cur = s
		}
	}
	u.cur = saved
}

func (u *useChecker) stmt(s syntax.Stmt) {
	switch s := s.(type) {
	case *syntax.VarDecl:
		for _, dc := range s.Declarators {
			u.expr(dc.Init)
		}
	case *syntax.BlockStmt:
		saved := u.enter(s)
		for _, child := range s.Stmts {
			u.stmt(child)
		}
		u.cur = saved
	case *syntax.ExprStmt:
		u.expr(s.Expr)
	case *syntax.ReturnStmt:
		u.expr(s.Value)
	case *syntax.IfStmt:
		u.expr(s.Cond)
		u.stmt(s.Then)
		if s.Else != nil {
			u.stmt(s.Else)
		}
	case *syntax.WhileStmt:
		u.expr(s.Cond)
		u.stmt(s.Body)
	case *syntax.ForStmt:
		u.expr(s.Init)
		u.expr(s.Cond)
		u.expr(s.Post)
		u.stmt(s.Body)
	}
}

func (u *useChecker) resolveVar(e syntax.Expr, name string) {
	sym, _, ok := u.info.Table.ResolveFrom(u.cur, name)
	if !ok {
		u.diags.Add(UnboundReference, e.Start(), "undeclared variable %s", name)
		return
	}
	u.info.Uses[e] = sym
}

func (u *useChecker) expr(e syntax.Expr) {
	switch e := e.(type) {
	case nil:
	case *syntax.VarRef:
		u.resolveVar(e, e.Name)
	case *syntax.IndexExpr:
		u.resolveVar(e, e.Name)
		for _, idx := range e.Indices {
			u.expr(idx)
		}
	case *syntax.FunctionCall:
		fn, ok := u.info.Table.ResolveGlobalFunction(e.Name)
		switch {
		case !ok:
			u.diags.Add(UnboundReference, e.Start(), "undeclared function %s", e.Name)
		case len(e.Args) != len(fn.Params):
			u.info.Uses[e] = fn
			u.diags.Add(ArityMismatch, e.Start(), "call to %s with %d arguments; expected %d", e.Name, len(e.Args), len(fn.Params))
		default:
			u.info.Uses[e] = fn
		}
		for _, arg := range e.Args {
			u.expr(arg)
		}
	case *syntax.BinaryExpr:
		u.expr(e.Left)
		u.expr(e.Right)
	case *syntax.UnaryExpr:
		u.expr(e.Operand)
	case *syntax.AssignExpr:
		u.expr(e.Target)
		u.expr(e.Value)
	case *syntax.IntLit, *syntax.CharLit, *syntax.StringLit, *syntax.BoolLit:
		// literals bind nothing
	}
}
