package irgen

import (
	"fmt"
	"strconv"

	"minic/pkg/sema"
	"minic/pkg/syntax"
	"minic/pkg/tac"
)

var binaryOps = map[syntax.TokenType]tac.Op{
	syntax.PLUS:        tac.ADD,
	syntax.MINUS:       tac.SUB,
	syntax.STAR:        tac.MUL,
	syntax.SLASH:       tac.DIV,
	syntax.PERCENT:     tac.MOD,
	syntax.LESS:        tac.LT,
	syntax.LESS_EQ:     tac.LE,
	syntax.GREATER:     tac.GT,
	syntax.GREATER_EQ:  tac.GE,
	syntax.EQUALS:      tac.EQ,
	syntax.NOT_EQ:      tac.NEQ,
	syntax.AND_LOGICAL: tac.AND,
	syntax.OR_LOGICAL:  tac.OR,
}

var none tac.Operand

// expr lowers e and returns the operand holding its value: a literal, a
// local slot or a fresh temporary.
func (g *generator) expr(e syntax.Expr) tac.Operand {
	switch e := e.(type) {
	case *syntax.IntLit:
		v, err := strconv.ParseInt(e.Text, 10, 32)
		if err != nil {
			panic(fmt.Sprintf("irgen: bad int literal %q", e.Text))
		}
		return tac.IntOp(int32(v))
	case *syntax.CharLit:
		return tac.CharOp(e.Text)
	case *syntax.StringLit:
		return tac.StrOp(e.Text)
	case *syntax.BoolLit:
		if e.Value {
			return tac.IntOp(1)
		}
		return tac.IntOp(0)
	case *syntax.VarRef:
		v := g.info.VarOf(e)
		if g.info.IsGlobal(v) {
			t := g.newTemp()
			g.emit(tac.LOAD, g.base(v), tac.IntOp(0), t)
			return t
		}
		return tac.NameOp(g.slot(v))
	case *syntax.IndexExpr:
		v := g.info.VarOf(e)
		off := g.offset(v, e.Indices)
		t := g.newTemp()
		g.emit(tac.LOAD, g.base(v), off, t)
		return t
	case *syntax.FunctionCall:
		return g.call(e)
	case *syntax.BinaryExpr:
		// && and || evaluate both sides
		l := g.expr(e.Left)
		r := g.expr(e.Right)
		t := g.newTemp()
		g.emit(binaryOps[e.Op], l, r, t)
		return t
	case *syntax.UnaryExpr:
		v := g.expr(e.Operand)
		t := g.newTemp()
		if e.Op == syntax.MINUS {
			g.emit(tac.SUB, tac.IntOp(0), v, t)
		} else {
			g.emit(tac.NOT, v, none, t)
		}
		return t
	case *syntax.AssignExpr:
		return g.assign(e)
	}
	panic(fmt.Sprintf("irgen: unexpected expression %T", e))
}

func (g *generator) call(e *syntax.FunctionCall) tac.Operand {
	fn := g.info.Uses[e].(*sema.Function)
	args := make([]tac.Operand, len(e.Args))
	for i, a := range e.Args {
		args[i] = g.expr(a)
	}
	for _, a := range args {
		g.emit(tac.PARAM, a, none, none)
	}
	n := tac.IntOp(int32(len(args)))
	if fn.Return == sema.Void {
		g.emit(tac.CALL, tac.FuncOp(fn.Name), n, none)
		return tac.IntOp(0)
	}
	t := g.newTemp()
	g.emit(tac.CALL, tac.FuncOp(fn.Name), n, t)
	return t
}

// assign stores the value first, then the target's indices, and yields
// the stored value.
func (g *generator) assign(e *syntax.AssignExpr) tac.Operand {
	val := g.expr(e.Value)
	switch target := e.Target.(type) {
	case *syntax.VarRef:
		v := g.info.VarOf(target)
		if g.info.IsGlobal(v) {
			g.emit(tac.STORE, val, g.base(v), tac.IntOp(0))
		} else {
			g.emit(tac.MOV, val, none, tac.NameOp(g.slot(v)))
		}
	case *syntax.IndexExpr:
		v := g.info.VarOf(target)
		off := g.offset(v, target.Indices)
		g.emit(tac.STORE, val, g.base(v), off)
	default:
		panic(fmt.Sprintf("irgen: cannot assign to %T", target))
	}
	return val
}

// offset computes the byte offset of a 1-based element of array v:
// ((i0-1)*d1 + (i1-1))*d2 + ... scaled by 4.
func (g *generator) offset(v *sema.Variable, indices []syntax.Expr) tac.Operand {
	vals := make([]tac.Operand, len(indices))
	for i, idx := range indices {
		vals[i] = g.expr(idx)
	}
	n := min(v.Rank(), len(vals))
	if n == 0 {
		return tac.IntOp(0)
	}
	adj := make([]tac.Operand, n)
	for i := range n {
		t := g.newTemp()
		g.emit(tac.SUB, vals[i], tac.IntOp(1), t)
		adj[i] = t
	}
	lin := adj[0]
	for i := 1; i < n; i++ {
		mul := g.newTemp()
		g.emit(tac.MUL, lin, tac.IntOp(int32(v.Dims[i])), mul)
		add := g.newTemp()
		g.emit(tac.ADD, mul, adj[i], add)
		lin = add
	}
	bytes := g.newTemp()
	g.emit(tac.MUL, lin, tac.IntOp(4), bytes)
	return bytes
}
