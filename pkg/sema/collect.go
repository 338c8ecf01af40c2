package sema

import "minic/pkg/syntax"

type collector struct {
	info  *Info
	table *SymbolTable
	diags *Diagnostics
}

// Collect declares every variable and function, opening a scope for each
// function's parameters and for every block. Redefinitions within a scope
// are reported and the first declaration wins.
func Collect(prog *syntax.Program, info *Info, diags *Diagnostics) {
	c := &collector{info: info, table: info.Table, diags: diags}
	info.Scopes[prog] = GlobalScope
	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *syntax.VarDecl:
			c.varDecl(d)
		case *syntax.FunctionDecl:
			c.function(d)
		}
	}
}

func (c *collector) define(sym Symbol, pos syntax.Pos) {
	if !c.table.Define(sym) {
		c.diags.Add(Redefinition, pos, "redefinition of %s", sym.Ident())
	}
}

func (c *collector) varDecl(d *syntax.VarDecl) {
	t := TypeOfToken(d.Type)
	for _, dc := range d.Declarators {
		v := &Variable{Name: dc.Name, Type: t, Dims: dc.Dims, Pos: dc.Start()}
		c.info.Defs[dc] = v
		c.define(v, dc.Start())
	}
}

func (c *collector) function(d *syntax.FunctionDecl) {
	fn := &Function{Name: d.Name, Return: TypeOfToken(d.Return), Body: NoScope, Pos: d.Start()}
	c.info.Funcs[d] = fn
	c.define(fn, d.Start())

	params := c.table.NewScope("func "+d.Name, c.table.Current())
	c.info.Scopes[d] = params
	c.table.Push(params)
	for _, p := range d.Params {
		v := &Variable{Name: p.Name, Type: TypeOfToken(p.Type), Pos: p.Start()}
		fn.Params = append(fn.Params, v)
		c.info.Defs[p] = v
		c.define(v, p.Start())
	}
	fn.Body = c.block(d.Body)
	c.table.Pop()
}

// block opens a scope for b, even when b is empty, and returns it.
func (c *collector) block(b *syntax.BlockStmt) ScopeID {
	id := c.table.NewScope("block", c.table.Current())
	c.info.Scopes[b] = id
	c.table.Push(id)
	for _, s := range b.Stmts {
		c.stmt(s)
	}
	c.table.Pop()
	return id
}

func (c *collector) stmt(s syntax.Stmt) {
	switch s := s.(type) {
	case *syntax.VarDecl:
		c.varDecl(s)
	case *syntax.BlockStmt:
		c.block(s)
	case *syntax.IfStmt:
		c.stmt(s.Then)
		if s.Else != nil {
			c.stmt(s.Else)
		}
	case *syntax.WhileStmt:
		c.stmt(s.Body)
	case *syntax.ForStmt:
		c.stmt(s.Body)
	case *syntax.ExprStmt, *syntax.ReturnStmt:
		// no declarations
	}
}
