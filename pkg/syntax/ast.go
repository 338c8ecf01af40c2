package syntax

import (
	"fmt"
	"strings"
)

// Pos is a source position: 1-based line, 0-based column.
type Pos struct {
	Line int
	Col  int
}

// Start returns p. Every node embeds a Pos, so every node has a Start.
func (p Pos) Start() Pos { return p }

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Node is implemented by every parse tree node. Nodes are always pointers,
// so a node's identity is usable as a map key.
type Node interface {
	Start() Pos
	String() string
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a function body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every node that produces a value.
type Expr interface {
	Node
	exprNode()
}

//  Declarations

// Program is the root of the tree: globals and functions in source order.
type Program struct {
	Pos
	Decls []Decl
}

func (p *Program) String() string {
	parts := make([]string, len(p.Decls))
	for i, d := range p.Decls {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}

// VarDecl declares one or more variables sharing a base type. It appears
// both at the top level and inside blocks.
//
//	int a, b[3] = ..., c = 2;
//	^^^ Type   ^^^^^^^^^^^^^^ Declarators
type VarDecl struct {
	Pos
	Type        TokenType // INT, CHAR, BOOL, STRING or VOID
	Declarators []*Declarator
}

func (*VarDecl) declNode() {}
func (*VarDecl) stmtNode() {}
func (d *VarDecl) String() string {
	parts := make([]string, len(d.Declarators))
	for i, dc := range d.Declarators {
		parts[i] = dc.String()
	}
	return fmt.Sprintf("VarDecl(%s %s)", d.Type, strings.Join(parts, ", "))
}

// Declarator names one variable of a VarDecl.
//
//	m[3][4]
//	^ ^^^^^^  Dims: [3 4]
//	Name
type Declarator struct {
	Pos
	Name string
	Dims []int
	Init Expr // nil when absent
}

func (d *Declarator) String() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	for _, n := range d.Dims {
		fmt.Fprintf(&sb, "[%d]", n)
	}
	if d.Init != nil {
		fmt.Fprintf(&sb, " = %s", d.Init)
	}
	return sb.String()
}

// Param is a scalar function parameter.
type Param struct {
	Pos
	Type TokenType
	Name string
}

func (p *Param) String() string { return fmt.Sprintf("%s %s", p.Type, p.Name) }

// FunctionDecl is a function definition. Its parameters live in their own
// scope, enclosing the body block's scope.
type FunctionDecl struct {
	Pos
	Return TokenType
	Name   string
	Params []*Param
	Body   *BlockStmt
}

func (*FunctionDecl) declNode() {}
func (f *FunctionDecl) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("FunctionDecl(%s %s(%s) %s)", f.Return, f.Name, strings.Join(params, ", "), f.Body)
}

//  Statements

// BlockStmt is a braced statement list with its own scope.
type BlockStmt struct {
	Pos
	Stmts []Stmt
}

func (*BlockStmt) stmtNode() {}
func (b *BlockStmt) String() string {
	parts := make([]string, len(b.Stmts))
	for i, s := range b.Stmts {
		parts[i] = s.String()
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// ExprStmt evaluates an expression for its effects. Expr is nil for an
// empty statement ";".
type ExprStmt struct {
	Pos
	Expr Expr
}

func (*ExprStmt) stmtNode() {}
func (s *ExprStmt) String() string {
	if s.Expr == nil {
		return "ExprStmt()"
	}
	return fmt.Sprintf("ExprStmt(%s)", s.Expr)
}

// ReturnStmt is "return;" or "return expr;".
type ReturnStmt struct {
	Pos
	Value Expr // nil for a bare return
}

func (*ReturnStmt) stmtNode() {}
func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "Return()"
	}
	return fmt.Sprintf("Return(%s)", r.Value)
}

// IfStmt is "if (Cond) Then [else Else]".
type IfStmt struct {
	Pos
	Cond Expr
	Then Stmt
	Else Stmt // nil when there is no else branch
}

func (*IfStmt) stmtNode() {}
func (s *IfStmt) String() string {
	if s.Else == nil {
		return fmt.Sprintf("If(%s, %s)", s.Cond, s.Then)
	}
	return fmt.Sprintf("If(%s, %s, %s)", s.Cond, s.Then, s.Else)
}

// WhileStmt is "while (Cond) Body".
type WhileStmt struct {
	Pos
	Cond Expr
	Body Stmt
}

func (*WhileStmt) stmtNode()        {}
func (s *WhileStmt) String() string { return fmt.Sprintf("While(%s, %s)", s.Cond, s.Body) }

// ForStmt is "for (Init; Cond; Post) Body"; each clause may be nil.
type ForStmt struct {
	Pos
	Init Expr
	Cond Expr
	Post Expr
	Body Stmt
}

func (*ForStmt) stmtNode() {}
func (s *ForStmt) String() string {
	return fmt.Sprintf("For(%s; %s; %s, %s)", exprString(s.Init), exprString(s.Cond), exprString(s.Post), s.Body)
}

func exprString(e Expr) string {
	if e == nil {
		return ""
	}
	return e.String()
}

//  Expressions

// IntLit is a decimal integer constant.
type IntLit struct {
	Pos
	Text string
}

func (*IntLit) exprNode()        {}
func (l *IntLit) String() string { return l.Text }

// CharLit is a character constant; Text keeps the quotes and escapes.
//
//	'\n'
//	^^^^  CharLit{Text: `'\n'`}
type CharLit struct {
	Pos
	Text string
}

func (*CharLit) exprNode()        {}
func (l *CharLit) String() string { return l.Text }

// StringLit is a string constant; Text keeps the quotes and escapes.
type StringLit struct {
	Pos
	Text string
}

func (*StringLit) exprNode()        {}
func (l *StringLit) String() string { return l.Text }

// BoolLit is true or false.
type BoolLit struct {
	Pos
	Value bool
}

func (*BoolLit) exprNode()        {}
func (l *BoolLit) String() string { return fmt.Sprintf("%t", l.Value) }

// VarRef is a read or write of a named variable.
//
//	return x;
//	       ^  VarRef{Name: "x"}
type VarRef struct {
	Pos
	Name string
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return v.Name }

// IndexExpr is an array element access. MiniC only indexes names.
//
//	a[i][j + 1]
//	^ ^^^^^^^^^  Indices
//	Name
type IndexExpr struct {
	Pos
	Name    string
	Indices []Expr
}

func (*IndexExpr) exprNode() {}
func (x *IndexExpr) String() string {
	var sb strings.Builder
	sb.WriteString(x.Name)
	for _, i := range x.Indices {
		fmt.Fprintf(&sb, "[%s]", i)
	}
	return sb.String()
}

// FunctionCall represents name(args).
type FunctionCall struct {
	Pos
	Name string
	Args []Expr
}

func (*FunctionCall) exprNode() {}
func (c *FunctionCall) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ", "))
}

// BinaryExpr represents a binary operation: Left Op Right.
// && and || are binary expressions too: both sides are always evaluated.
//
//	x + 1
//	^ ^ ^
//	| | |
//	| | Right
//	| Op
//	Left
type BinaryExpr struct {
	Pos
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op.Symbol(), b.Right)
}

// UnaryExpr represents Op Operand for "-" and "!".
type UnaryExpr struct {
	Pos
	Op      TokenType
	Operand Expr
}

func (*UnaryExpr) exprNode()        {}
func (u *UnaryExpr) String() string { return fmt.Sprintf("(%s%s)", u.Op.Symbol(), u.Operand) }

// AssignExpr stores Value into Target and yields Value. Target is a
// *VarRef or an *IndexExpr.
type AssignExpr struct {
	Pos
	Target Expr
	Value  Expr
}

func (*AssignExpr) exprNode() {}
func (a *AssignExpr) String() string {
	return fmt.Sprintf("(%s = %s)", a.Target, a.Value)
}
