package sema

import "minic/pkg/syntax"

type typeChecker struct {
	info  *Info
	diags *Diagnostics
	fn    *Function // function whose body is being checked
}

// TypeCheck infers a type for every expression and validates assignments,
// initializers, conditions, operators, indexing, call arguments, returns
// and the entry point. Names that failed to resolve in CheckUses type as
// Invalid and are not reported again.
func TypeCheck(prog *syntax.Program, info *Info, diags *Diagnostics) {
	tc := &typeChecker{info: info, diags: diags}
	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *syntax.VarDecl:
			tc.stmt(d)
		case *syntax.FunctionDecl:
			tc.function(d)
		}
	}
	tc.checkMain()
}

func (tc *typeChecker) mismatch(pos syntax.Pos, format string, args ...any) {
	tc.diags.Add(TypeMismatch, pos, format, args...)
}

func (tc *typeChecker) checkMain() {
	var zero syntax.Pos
	fn, ok := tc.info.Table.ResolveGlobalFunction("main")
	if !ok || fn.Builtin {
		tc.diags.Add(EntryPointViolation, zero, "missing entry point: int main()")
		return
	}
	if fn.Return != Int {
		tc.diags.Add(EntryPointViolation, zero, "main must return int, found %s", fn.Return)
	}
	if len(fn.Params) != 0 {
		tc.diags.Add(EntryPointViolation, zero, "main must take no parameters, found %d", len(fn.Params))
	}
}

func (tc *typeChecker) function(d *syntax.FunctionDecl) {
	tc.fn = tc.info.Funcs[d]
	for _, p := range d.Params {
		if TypeOfToken(p.Type) == Void {
			tc.mismatch(p.Start(), "parameter %s cannot have type void", p.Name)
		}
	}
	tc.stmt(d.Body)
	tc.fn = nil
}

func (tc *typeChecker) stmt(s syntax.Stmt) {
	switch s := s.(type) {
	case *syntax.VarDecl:
		tc.varDecl(s)
	case *syntax.BlockStmt:
		for _, child := range s.Stmts {
			tc.stmt(child)
		}
	case *syntax.ExprStmt:
		if s.Expr != nil {
			tc.expr(s.Expr)
		}
	case *syntax.ReturnStmt:
		tc.returnStmt(s)
	case *syntax.IfStmt:
		tc.condition(s.Cond, "if")
		tc.stmt(s.Then)
		if s.Else != nil {
			tc.stmt(s.Else)
		}
	case *syntax.WhileStmt:
		tc.condition(s.Cond, "while")
		tc.stmt(s.Body)
	case *syntax.ForStmt:
		if s.Init != nil {
			tc.expr(s.Init)
		}
		if s.Cond != nil {
			tc.condition(s.Cond, "for")
		}
		if s.Post != nil {
			tc.expr(s.Post)
		}
		tc.stmt(s.Body)
	}
}

func (tc *typeChecker) varDecl(d *syntax.VarDecl) {
	declT := TypeOfToken(d.Type)
	for _, dc := range d.Declarators {
		if declT == Void {
			tc.mismatch(dc.Start(), "variable %s cannot have type void", dc.Name)
		}
		tc.arraySize(dc)
		if dc.Init == nil {
			continue
		}
		rhs := tc.expr(dc.Init)
		switch {
		case len(dc.Dims) > 0:
			tc.mismatch(dc.Start(), "array %s cannot have an initializer", dc.Name)
		case rhs == Invalid || declT == Void:
		case !rhs.AssignableTo(declT):
			tc.mismatch(dc.Start(), "cannot initialize %s variable %s with %s", declT, dc.Name, rhs)
		}
	}
}

// MaxArrayBytes is the largest storage a single array may reserve.
const MaxArrayBytes = 1 << 24

// arraySize rejects non-positive dimensions and arrays larger than
// MaxArrayBytes.
func (tc *typeChecker) arraySize(dc *syntax.Declarator) {
	size := 4
	for _, n := range dc.Dims {
		if n <= 0 {
			tc.mismatch(dc.Start(), "array %s dimension must be positive, found %d", dc.Name, n)
			return
		}
		if size > MaxArrayBytes/n {
			tc.mismatch(dc.Start(), "array %s is too large, limit is %d bytes", dc.Name, MaxArrayBytes)
			return
		}
		size *= n
	}
}

func (tc *typeChecker) condition(e syntax.Expr, construct string) {
	t := tc.expr(e)
	if t != Invalid && !t.IsBooly() {
		tc.mismatch(e.Start(), "%s condition must be bool, int or char, found %s", construct, t)
	}
}

func (tc *typeChecker) returnStmt(s *syntax.ReturnStmt) {
	found := Void
	if s.Value != nil {
		found = tc.expr(s.Value)
	}
	fn := tc.fn
	if fn == nil || found == Invalid {
		return
	}
	switch {
	case fn.Return == Void && s.Value != nil:
		tc.mismatch(s.Start(), "void function %s cannot return a value", fn.Name)
	case fn.Return != Void && s.Value == nil:
		tc.mismatch(s.Start(), "function %s must return a value of type %s", fn.Name, fn.Return)
	case fn.Return != Void && !found.AssignableTo(fn.Return):
		tc.mismatch(s.Start(), "cannot return %s from function %s returning %s", found, fn.Name, fn.Return)
	}
}

// expr infers, records and returns the type of e.
func (tc *typeChecker) expr(e syntax.Expr) Type {
	if t, ok := tc.info.Types[e]; ok {
		return t
	}
	t := tc.infer(e)
	tc.info.Types[e] = t
	return t
}

func (tc *typeChecker) infer(e syntax.Expr) Type {
	switch e := e.(type) {
	case *syntax.IntLit:
		return Int
	case *syntax.CharLit:
		return Char
	case *syntax.StringLit:
		return String
	case *syntax.BoolLit:
		return Bool
	case *syntax.VarRef:
		return tc.varRef(e)
	case *syntax.IndexExpr:
		return tc.index(e)
	case *syntax.FunctionCall:
		return tc.call(e)
	case *syntax.BinaryExpr:
		return tc.binary(e)
	case *syntax.UnaryExpr:
		return tc.unary(e)
	case *syntax.AssignExpr:
		return tc.assign(e)
	}
	return Invalid
}

// variable returns the Variable e is bound to, reporting a function used
// as a value.
func (tc *typeChecker) variable(e syntax.Expr, name string) *Variable {
	switch sym := tc.info.Uses[e].(type) {
	case *Variable:
		return sym
	case *Function:
		tc.mismatch(e.Start(), "%s is a function, not a variable", name)
	}
	return nil
}

func (tc *typeChecker) varRef(e *syntax.VarRef) Type {
	v := tc.variable(e, e.Name)
	if v == nil {
		return Invalid
	}
	if v.Rank() > 0 {
		tc.mismatch(e.Start(), "array %s expects %d indices, found 0", v.Name, v.Rank())
	}
	return v.Type
}

func (tc *typeChecker) index(e *syntax.IndexExpr) Type {
	for _, idx := range e.Indices {
		if t := tc.expr(idx); t != Invalid && !t.IsNumeric() {
			tc.mismatch(idx.Start(), "array index must be int or char, found %s", t)
		}
	}
	v := tc.variable(e, e.Name)
	if v == nil {
		return Invalid
	}
	switch {
	case v.Rank() == 0:
		tc.mismatch(e.Start(), "%s is not an array", v.Name)
	case v.Rank() != len(e.Indices):
		tc.mismatch(e.Start(), "array %s expects %d indices, found %d", v.Name, v.Rank(), len(e.Indices))
	}
	return v.Type
}

func (tc *typeChecker) call(e *syntax.FunctionCall) Type {
	args := make([]Type, len(e.Args))
	for i, a := range e.Args {
		args[i] = tc.expr(a)
	}
	fn, ok := tc.info.Uses[e].(*Function)
	if !ok {
		return Invalid
	}
	// A count mismatch was already reported as an arity error.
	if len(args) == len(fn.Params) {
		for i, t := range args {
			want := fn.Params[i].Type
			if t != Invalid && !acceptsArg(fn, want, t) {
				tc.mismatch(e.Args[i].Start(), "argument %d of %s must be %s, found %s", i+1, fn.Name, want, t)
			}
		}
	}
	return fn.Return
}

func (tc *typeChecker) binary(e *syntax.BinaryExpr) Type {
	l := tc.expr(e.Left)
	r := tc.expr(e.Right)
	if l == Invalid || r == Invalid {
		return Int
	}
	switch e.Op {
	case syntax.PLUS, syntax.MINUS, syntax.STAR, syntax.SLASH, syntax.PERCENT:
		if !l.IsNumeric() || !r.IsNumeric() {
			tc.mismatch(e.Start(), "operator %s requires int or char operands, found %s and %s", e.Op.Symbol(), l, r)
		}
	default:
		if !l.IsBooly() || !r.IsBooly() {
			tc.mismatch(e.Start(), "operator %s requires bool, int or char operands, found %s and %s", e.Op.Symbol(), l, r)
		}
	}
	return Int
}

func (tc *typeChecker) unary(e *syntax.UnaryExpr) Type {
	t := tc.expr(e.Operand)
	if t == Invalid {
		return Int
	}
	switch e.Op {
	case syntax.MINUS:
		if t != Int {
			tc.mismatch(e.Start(), "unary - requires int, found %s", t)
		}
	case syntax.NOT:
		if !t.IsBooly() {
			tc.mismatch(e.Start(), "operator ! requires bool, int or char, found %s", t)
		}
	}
	return Int
}

func (tc *typeChecker) assign(e *syntax.AssignExpr) Type {
	lhs := tc.expr(e.Target)
	rhs := tc.expr(e.Value)
	if lhs != Invalid && rhs != Invalid && !rhs.AssignableTo(lhs) {
		tc.mismatch(e.Start(), "cannot assign %s to %s of type %s", rhs, e.Target, lhs)
	}
	return lhs
}
