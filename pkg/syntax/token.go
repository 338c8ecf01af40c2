package syntax

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable / function name
	INT_LIT    // decimal integer literal
	CHAR_LIT   // character literal 'c', kept with its quotes
	STR_LIT    // string literal "...", kept with its quotes

	// Type keywords
	INT    // "int"
	CHAR   // "char"
	BOOL   // "bool"
	STRING // "string"
	VOID   // "void"

	// Statement keywords
	IF     // "if"
	ELSE   // "else"
	WHILE  // "while"
	FOR    // "for"
	RETURN // "return"
	TRUE   // "true"
	FALSE  // "false"

	// Paired delimiters
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	SEMICOLON // ;
	COMMA     // ,

	// Arithmetic operators
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %

	// Logical operators
	AND_LOGICAL // &&
	OR_LOGICAL  // ||
	NOT         // !

	// Assignment / comparison  (order matters: ASSIGN before EQUALS)
	ASSIGN     // =
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	LESS_EQ    // <=
	GREATER    // >
	GREATER_EQ // >=
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	INT_LIT:     "INT_LIT",
	CHAR_LIT:    "CHAR_LIT",
	STR_LIT:     "STR_LIT",
	INT:         "INT",
	CHAR:        "CHAR",
	BOOL:        "BOOL",
	STRING:      "STRING",
	VOID:        "VOID",
	IF:          "IF",
	ELSE:        "ELSE",
	WHILE:       "WHILE",
	FOR:         "FOR",
	RETURN:      "RETURN",
	TRUE:        "TRUE",
	FALSE:       "FALSE",
	LBRACE:      "LBRACE",
	RBRACE:      "RBRACE",
	LPAREN:      "LPAREN",
	RPAREN:      "RPAREN",
	LBRACKET:    "LBRACKET",
	RBRACKET:    "RBRACKET",
	SEMICOLON:   "SEMICOLON",
	COMMA:       "COMMA",
	PLUS:        "PLUS",
	MINUS:       "MINUS",
	STAR:        "STAR",
	SLASH:       "SLASH",
	PERCENT:     "PERCENT",
	AND_LOGICAL: "AND_LOGICAL",
	OR_LOGICAL:  "OR_LOGICAL",
	NOT:         "NOT",
	ASSIGN:      "ASSIGN",
	EQUALS:      "EQUALS",
	NOT_EQ:      "NOT_EQ",
	LESS:        "LESS",
	LESS_EQ:     "LESS_EQ",
	GREATER:     "GREATER",
	GREATER_EQ:  "GREATER_EQ",
}

// tokenText holds the fixed source spelling of punctuation and operators.
var tokenText = map[TokenType]string{
	LBRACE:      "{",
	RBRACE:      "}",
	LPAREN:      "(",
	RPAREN:      ")",
	LBRACKET:    "[",
	RBRACKET:    "]",
	SEMICOLON:   ";",
	COMMA:       ",",
	PLUS:        "+",
	MINUS:       "-",
	STAR:        "*",
	SLASH:       "/",
	PERCENT:     "%",
	AND_LOGICAL: "&&",
	OR_LOGICAL:  "||",
	NOT:         "!",
	ASSIGN:      "=",
	EQUALS:      "==",
	NOT_EQ:      "!=",
	LESS:        "<",
	LESS_EQ:     "<=",
	GREATER:     ">",
	GREATER_EQ:  ">=",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Symbol returns the source spelling of punctuation and operators, or the
// token name for anything else.
func (tt TokenType) Symbol() string {
	if s, ok := tokenText[tt]; ok {
		return s
	}
	return tt.String()
}

// IsType reports whether tt starts a type specifier.
func (tt TokenType) IsType() bool {
	switch tt {
	case INT, CHAR, BOOL, STRING, VOID:
		return true
	}
	return false
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
	Col    int    // 0-based character position within the line
}

// Pos returns the token's start position.
func (t Token) Pos() Pos {
	return Pos{Line: t.Line, Col: t.Col}
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  %d:%d", t.Type, t.Lexeme, t.Line, t.Col)
}
