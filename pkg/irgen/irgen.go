// Package irgen lowers an analyzed MiniC program to three-address code.
//
// Locals live in per-function slots named after their source identifiers.
// Globals, and local arrays, live in named data regions reached through
// LOAD and STORE with a byte offset. Arrays are indexed from 1.
package irgen

import (
	"fmt"
	"regexp"
	"strconv"

	"minic/pkg/sema"
	"minic/pkg/syntax"
	"minic/pkg/tac"
)

var tempName = regexp.MustCompile(`^t[0-9]+$`)

type generator struct {
	info *sema.Info
	out  *tac.Program
	fn   *tac.Function

	temps  int // reset per function
	labels int // program-wide
	arrays int // program-wide, names static local arrays

	slots  map[*sema.Variable]string
	taken  map[string]bool
	static map[*sema.Variable]string
}

// Generate lowers prog. The program must have passed analysis without
// diagnostics.
func Generate(prog *syntax.Program, info *sema.Info) *tac.Program {
	g := &generator{info: info, out: &tac.Program{}, static: make(map[*sema.Variable]string)}

	var inits []*syntax.Declarator
	for _, d := range prog.Decls {
		vd, ok := d.(*syntax.VarDecl)
		if !ok {
			continue
		}
		for _, dc := range vd.Declarators {
			v := info.VarOf(dc)
			g.out.AddGlobal(v.Name, v.Size())
			if dc.Init != nil {
				inits = append(inits, dc)
			}
		}
	}

	main, _ := info.Table.ResolveGlobalFunction("main")
	for _, d := range prog.Decls {
		fd, ok := d.(*syntax.FunctionDecl)
		if !ok {
			continue
		}
		fn := info.Funcs[fd]
		g.begin(fn)
		if fn == main {
			for _, dc := range inits {
				val := g.expr(dc.Init)
				g.emit(tac.STORE, val, tac.GlobalOp(dc.Name), tac.IntOp(0))
			}
		}
		g.stmt(fd.Body)
	}
	return g.out
}

func (g *generator) begin(fn *sema.Function) {
	g.temps = 0
	g.slots = make(map[*sema.Variable]string)
	g.taken = make(map[string]bool)
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = g.slot(p)
	}
	g.fn = g.out.NewFunction(fn.Name, params)
}

func (g *generator) emit(op tac.Op, a, b, r tac.Operand) {
	g.fn.Emit(tac.Instr{Op: op, A: a, B: b, R: r})
}

func (g *generator) newTemp() tac.Operand {
	t := tac.NameOp("t" + strconv.Itoa(g.temps))
	g.temps++
	return t
}

func (g *generator) newLabel(prefix string) tac.Operand {
	l := tac.LabelOp(fmt.Sprintf("%s_%d", prefix, g.labels))
	g.labels++
	return l
}

func (g *generator) label(l tac.Operand) {
	g.emit(tac.LABEL, tac.Operand{}, tac.Operand{}, l)
}

// slot returns the slot name of local v, assigning one on first use. A
// name already used in this function, or one that looks like a temporary,
// gets a numeric suffix.
func (g *generator) slot(v *sema.Variable) string {
	if name, ok := g.slots[v]; ok {
		return name
	}
	name := v.Name
	for n := 1; g.taken[name] || tempName.MatchString(name); n++ {
		name = fmt.Sprintf("%s.%d", v.Name, n)
	}
	g.taken[name] = true
	g.slots[v] = name
	return name
}

// base returns the data label that holds global v or local array v,
// reserving static storage for a local array on first sight.
func (g *generator) base(v *sema.Variable) tac.Operand {
	if g.info.IsGlobal(v) {
		return tac.GlobalOp(v.Name)
	}
	name, ok := g.static[v]
	if !ok {
		name = fmt.Sprintf("%s__%s_%d", g.fn.Name, v.Name, g.arrays)
		g.arrays++
		g.static[v] = name
		g.out.AddGlobal(name, v.Size())
	}
	return tac.GlobalOp(name)
}

func (g *generator) stmt(s syntax.Stmt) {
	switch s := s.(type) {
	case *syntax.VarDecl:
		for _, dc := range s.Declarators {
			v := g.info.VarOf(dc)
			if v.Rank() > 0 {
				g.base(v)
				continue
			}
			name := g.slot(v)
			if dc.Init != nil {
				val := g.expr(dc.Init)
				g.emit(tac.MOV, val, tac.Operand{}, tac.NameOp(name))
			}
		}
	case *syntax.BlockStmt:
		for _, child := range s.Stmts {
			g.stmt(child)
		}
	case *syntax.ExprStmt:
		if s.Expr != nil {
			g.expr(s.Expr)
		}
	case *syntax.ReturnStmt:
		var val tac.Operand
		if s.Value != nil {
			val = g.expr(s.Value)
		}
		g.emit(tac.RET, val, tac.Operand{}, tac.Operand{})
	case *syntax.IfStmt:
		elseL := g.newLabel("else")
		endL := g.newLabel("endif")
		c := g.expr(s.Cond)
		g.emit(tac.IFZ, c, tac.Operand{}, elseL)
		g.stmt(s.Then)
		if s.Else != nil {
			g.emit(tac.GOTO, tac.Operand{}, tac.Operand{}, endL)
			g.label(elseL)
			g.stmt(s.Else)
			g.label(endL)
		} else {
			g.label(elseL)
		}
	case *syntax.WhileStmt:
		startL := g.newLabel("while")
		endL := g.newLabel("endwhile")
		g.label(startL)
		c := g.expr(s.Cond)
		g.emit(tac.IFZ, c, tac.Operand{}, endL)
		g.stmt(s.Body)
		g.emit(tac.GOTO, tac.Operand{}, tac.Operand{}, startL)
		g.label(endL)
	case *syntax.ForStmt:
		if s.Init != nil {
			g.expr(s.Init)
		}
		startL := g.newLabel("for")
		endL := g.newLabel("endfor")
		g.label(startL)
		if s.Cond != nil {
			c := g.expr(s.Cond)
			g.emit(tac.IFZ, c, tac.Operand{}, endL)
		}
		g.stmt(s.Body)
		if s.Post != nil {
			g.expr(s.Post)
		}
		g.emit(tac.GOTO, tac.Operand{}, tac.Operand{}, startL)
		g.label(endL)
	default:
		panic(fmt.Sprintf("irgen: unexpected statement %T", s))
	}
}
