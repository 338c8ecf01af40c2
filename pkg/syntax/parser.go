package syntax

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds the
// parse tree.
//
// Grammar:
//
//	program        = (varDecl | functionDecl)* EOF
//	varDecl        = type initDeclarator ("," initDeclarator)* ";"
//	initDeclarator = declarator ("=" expression)?
//	declarator     = IDENTIFIER ("[" INT_LIT "]")*
//	functionDecl   = type IDENTIFIER "(" paramList? ")" block
//	paramList      = type IDENTIFIER ("," type IDENTIFIER)*
//	block          = "{" statement* "}"
//	statement      = varDecl | block | "return" expression? ";"
//	               | "if" "(" expression ")" statement ("else" statement)?
//	               | "while" "(" expression ")" statement
//	               | "for" "(" expression? ";" expression? ";" expression? ")" statement
//	               | expression? ";"
//	expression     = assignment
//	assignment     = lvalue "=" assignment | logical_or
//	logical_or     = logical_and ("||" logical_and)*
//	logical_and    = equality ("&&" equality)*
//	equality       = relational (("==" | "!=") relational)*
//	relational     = additive (("<" | "<=" | ">" | ">=") additive)*
//	additive       = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = unary (("*" | "/" | "%") unary)*
//	unary          = ("!" | "-") unary | primary
//	primary        = INT_LIT | CHAR_LIT | STR_LIT | "true" | "false"
//	               | IDENTIFIER "(" args? ")" | lvalue | "(" expression ")"
//	lvalue         = IDENTIFIER ("[" expression "]")*
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// fmtError builds a SyntaxError pointing at tok, carrying the source line.
func (p *Parser) fmtError(tok Token, format string, args ...any) *SyntaxError {
	e := &SyntaxError{Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf(format, args...)}
	return e.withSnippet(p.sourceLines)
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		if len(p.tokens) > 0 {
			last := p.tokens[len(p.tokens)-1]
			return Token{Type: EOF, Line: last.Line, Col: last.Col}
		}
		return Token{Type: EOF, Line: 1}
	}
	return p.tokens[p.pos]
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+offset]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.unexpected(tok, "expected %s", describe(tt))
	}
	return p.advance(), nil
}

func (p *Parser) unexpected(tok Token, format string, args ...any) *SyntaxError {
	found := fmt.Sprintf("%q", tok.Lexeme)
	if tok.Type == EOF {
		found = "end of input"
	}
	return p.fmtError(tok, "%s, found %s", fmt.Sprintf(format, args...), found)
}

func describe(tt TokenType) string {
	switch tt {
	case IDENTIFIER:
		return "identifier"
	case INT_LIT:
		return "integer literal"
	}
	return fmt.Sprintf("%q", tt.Symbol())
}

// ParseProgram parses the whole token stream.
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{Pos: Pos{Line: 1}}
	for p.peek().Type != EOF {
		tok := p.peek()
		if !tok.Type.IsType() {
			return nil, p.unexpected(tok, "expected declaration")
		}
		if p.peekAt(1).Type == IDENTIFIER && p.peekAt(2).Type == LPAREN {
			fn, err := p.parseFunctionDecl()
			if err != nil {
				return nil, err
			}
			prog.Decls = append(prog.Decls, fn)
			continue
		}
		vd, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, vd)
	}
	return prog, nil
}

// parseFunctionDecl parses: type IDENTIFIER "(" paramList? ")" block
func (p *Parser) parseFunctionDecl() (*FunctionDecl, error) {
	typeTok := p.advance()
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	fn := &FunctionDecl{Pos: typeTok.Pos(), Return: typeTok.Type, Name: nameTok.Lexeme}

	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	if p.peek().Type == VOID && p.peekAt(1).Type == RPAREN {
		p.advance()
	}
	for p.peek().Type != RPAREN {
		if len(fn.Params) > 0 {
			if _, err := p.expect(COMMA); err != nil {
				return nil, err
			}
		}
		pt := p.peek()
		if !pt.Type.IsType() {
			return nil, p.unexpected(pt, "expected parameter type")
		}
		p.advance()
		pn, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, &Param{Pos: pt.Pos(), Type: pt.Type, Name: pn.Lexeme})
	}
	p.advance() // )

	fn.Body, err = p.parseBlock()
	if err != nil {
		return nil, err
	}
	return fn, nil
}

// parseVarDecl parses: type initDeclarator ("," initDeclarator)* ";"
func (p *Parser) parseVarDecl() (*VarDecl, error) {
	typeTok := p.advance()
	vd := &VarDecl{Pos: typeTok.Pos(), Type: typeTok.Type}
	for {
		nameTok, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		d := &Declarator{Pos: nameTok.Pos(), Name: nameTok.Lexeme}
		for p.peek().Type == LBRACKET {
			p.advance()
			sizeTok, err := p.expect(INT_LIT)
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(sizeTok.Lexeme)
			if err != nil {
				return nil, p.fmtError(sizeTok, "invalid array size %q", sizeTok.Lexeme)
			}
			d.Dims = append(d.Dims, n)
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
		}
		if p.peek().Type == ASSIGN {
			p.advance()
			d.Init, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		vd.Declarators = append(vd.Declarators, d)
		if p.peek().Type != COMMA {
			break
		}
		p.advance()
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return vd, nil
}

// parseBlock parses: "{" statement* "}"
func (p *Parser) parseBlock() (*BlockStmt, error) {
	lb, err := p.expect(LBRACE)
	if err != nil {
		return nil, err
	}
	block := &BlockStmt{Pos: lb.Pos()}
	for p.peek().Type != RBRACE {
		if p.peek().Type == EOF {
			return nil, p.unexpected(p.peek(), "expected \"}\"")
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, s)
	}
	p.advance() // }
	return block, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch {
	case tok.Type.IsType():
		return p.parseVarDecl()
	case tok.Type == LBRACE:
		return p.parseBlock()
	case tok.Type == RETURN:
		return p.parseReturn()
	case tok.Type == IF:
		return p.parseIf()
	case tok.Type == WHILE:
		return p.parseWhile()
	case tok.Type == FOR:
		return p.parseFor()
	}

	stmt := &ExprStmt{Pos: tok.Pos()}
	if tok.Type != SEMICOLON {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Expr = e
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseReturn() (*ReturnStmt, error) {
	tok := p.advance()
	stmt := &ReturnStmt{Pos: tok.Pos()}
	if p.peek().Type != SEMICOLON {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Value = v
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseCondition parses a parenthesized expression.
func (p *Parser) parseCondition() (Expr, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf() (*IfStmt, error) {
	tok := p.advance()
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Pos: tok.Pos(), Cond: cond, Then: then}
	if p.peek().Type == ELSE {
		p.advance()
		stmt.Else, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (*WhileStmt, error) {
	tok := p.advance()
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Pos: tok.Pos(), Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (*ForStmt, error) {
	tok := p.advance()
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	stmt := &ForStmt{Pos: tok.Pos()}

	clause := func(end TokenType) (Expr, error) {
		var e Expr
		if p.peek().Type != end {
			var err error
			if e, err = p.parseExpression(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(end); err != nil {
			return nil, err
		}
		return e, nil
	}

	var err error
	if stmt.Init, err = clause(SEMICOLON); err != nil {
		return nil, err
	}
	if stmt.Cond, err = clause(SEMICOLON); err != nil {
		return nil, err
	}
	if stmt.Post, err = clause(RPAREN); err != nil {
		return nil, err
	}
	if stmt.Body, err = p.parseStatement(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseAssignment()
}

// parseAssignment handles right-associative "=". The left side must be an
// lvalue: a name, optionally indexed.
func (p *Parser) parseAssignment() (Expr, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != ASSIGN {
		return left, nil
	}
	opTok := p.advance()
	switch left.(type) {
	case *VarRef, *IndexExpr:
	default:
		return nil, p.fmtError(opTok, "cannot assign to %s", left)
	}
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &AssignExpr{Pos: left.Start(), Target: left, Value: value}, nil
}

// parseBinaryLevel parses one left-associative precedence level.
func (p *Parser) parseBinaryLevel(next func() (Expr, error), ops ...TokenType) (Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		matched := false
		for _, op := range ops {
			if tok.Type == op {
				matched = true
				break
			}
		}
		if !matched {
			return expr, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Pos: expr.Start(), Op: tok.Type, Left: expr, Right: right}
	}
}

// parseLogicalOr handles ||
func (p *Parser) parseLogicalOr() (Expr, error) {
	return p.parseBinaryLevel(p.parseLogicalAnd, OR_LOGICAL)
}

// parseLogicalAnd handles &&
func (p *Parser) parseLogicalAnd() (Expr, error) {
	return p.parseBinaryLevel(p.parseEquality, AND_LOGICAL)
}

// parseEquality handles == and !=
func (p *Parser) parseEquality() (Expr, error) {
	return p.parseBinaryLevel(p.parseRelational, EQUALS, NOT_EQ)
}

// parseRelational handles < <= > >=
func (p *Parser) parseRelational() (Expr, error) {
	return p.parseBinaryLevel(p.parseAdditive, LESS, LESS_EQ, GREATER, GREATER_EQ)
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (Expr, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, PLUS, MINUS)
}

// parseMultiplicative handles * / %
func (p *Parser) parseMultiplicative() (Expr, error) {
	return p.parseBinaryLevel(p.parseUnary, STAR, SLASH, PERCENT)
}

// parseUnary handles prefix ! and -
func (p *Parser) parseUnary() (Expr, error) {
	tok := p.peek()
	if tok.Type == NOT || tok.Type == MINUS {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Pos: tok.Pos(), Op: tok.Type, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case INT_LIT:
		p.advance()
		return &IntLit{Pos: tok.Pos(), Text: tok.Lexeme}, nil
	case CHAR_LIT:
		p.advance()
		return &CharLit{Pos: tok.Pos(), Text: tok.Lexeme}, nil
	case STR_LIT:
		p.advance()
		return &StringLit{Pos: tok.Pos(), Text: tok.Lexeme}, nil
	case TRUE, FALSE:
		p.advance()
		return &BoolLit{Pos: tok.Pos(), Value: tok.Type == TRUE}, nil
	case LPAREN:
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case IDENTIFIER:
		p.advance()
		if p.peek().Type == LPAREN {
			return p.parseCall(tok)
		}
		if p.peek().Type != LBRACKET {
			return &VarRef{Pos: tok.Pos(), Name: tok.Lexeme}, nil
		}
		idx := &IndexExpr{Pos: tok.Pos(), Name: tok.Lexeme}
		for p.peek().Type == LBRACKET {
			p.advance()
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
			idx.Indices = append(idx.Indices, e)
		}
		return idx, nil
	}
	return nil, p.unexpected(tok, "expected expression")
}

// parseCall parses the argument list after a callee name.
func (p *Parser) parseCall(name Token) (*FunctionCall, error) {
	p.advance() // (
	call := &FunctionCall{Pos: name.Pos(), Name: name.Lexeme}
	for p.peek().Type != RPAREN {
		if len(call.Args) > 0 {
			if _, err := p.expect(COMMA); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	p.advance() // )
	return call, nil
}

// Parse builds a Program from tokens. rawSource is used for error snippets.
func Parse(tokens []Token, rawSource string) (*Program, error) {
	prog, err := NewParser(tokens, rawSource).ParseProgram()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// ParseFile lexes and parses src. Errors are *SyntaxError values tagged
// with name.
func ParseFile(name, src string) (*Program, error) {
	tokens, err := Lex(src)
	if err == nil {
		var prog *Program
		if prog, err = Parse(tokens, src); err == nil {
			return prog, nil
		}
	}
	var se *SyntaxError
	if errors.As(err, &se) {
		se.Source = name
		if se.Snippet == "" {
			se.withSnippet(strings.Split(src, "\n"))
		}
	}
	return nil, err
}
