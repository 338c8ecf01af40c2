package syntax

import (
	"fmt"
	"strconv"
	"unicode"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"int":    INT,
	"char":   CHAR,
	"bool":   BOOL,
	"string": STRING,
	"void":   VOID,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"return": RETURN,
	"true":   TRUE,
	"false":  FALSE,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // current 0-based column
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

func (l *Lexer) errorf(line, col int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything from the current position to end-of-line.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment discards everything up to and including the closing "*/".
// The opening "/*" must already have been consumed.
func (l *Lexer) skipBlockComment(line, col int) error {
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance() // *
			l.advance() // /
			return nil
		}
		l.advance()
	}
	return l.errorf(line, col, "unterminated block comment")
}

// scanIdent collects a full identifier or keyword token.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !isIdentRune(r) {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line, Col: col}
}

func isIdentRune(r rune) bool {
	return r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// scanInt collects a decimal integer literal. The literal must fit in a
// signed 32-bit word.
func (l *Lexer) scanInt() (Token, error) {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	if isIdentRune(l.peek()) {
		return Token{}, l.errorf(line, col, "malformed integer literal %q", string(l.src[start:l.pos+1]))
	}
	lexeme := string(l.src[start:l.pos])
	if _, err := strconv.ParseInt(lexeme, 10, 32); err != nil {
		return Token{}, l.errorf(line, col, "integer literal %s out of range", lexeme)
	}
	return Token{Type: INT_LIT, Lexeme: lexeme, Line: line, Col: col}, nil
}

// scanEscape validates the rune after a backslash. The backslash must
// already have been consumed.
func (l *Lexer) scanEscape(line, col int) error {
	switch next := l.peek(); next {
	case 'n', 't', 'r', '0', '\\', '\'', '"':
		l.advance()
		return nil
	default:
		return l.errorf(line, col, "unknown escape sequence \\%c", next)
	}
}

// scanChar collects a character literal 'c'. The lexeme keeps the quotes
// and the escape text; decoding happens in the code generator.
func (l *Lexer) scanChar() (Token, error) {
	line, col := l.line, l.col
	start := l.pos
	l.advance() // consume opening '

	switch r := l.peek(); r {
	case '\'':
		return Token{}, l.errorf(line, col, "empty character literal")
	case '\n', 0:
		return Token{}, l.errorf(line, col, "unterminated character literal")
	case '\\':
		l.advance()
		if err := l.scanEscape(line, col); err != nil {
			return Token{}, err
		}
	default:
		l.advance()
	}

	if l.peek() != '\'' {
		return Token{}, l.errorf(line, col, "unterminated character literal")
	}
	l.advance() // consume closing '

	return Token{Type: CHAR_LIT, Lexeme: string(l.src[start:l.pos]), Line: line, Col: col}, nil
}

// scanString collects a string literal "..." with its quotes.
func (l *Lexer) scanString() (Token, error) {
	line, col := l.line, l.col
	start := l.pos
	l.advance() // consume opening "

	for l.pos < len(l.src) {
		r := l.peek()
		if r == '"' {
			break
		}
		if r == '\n' {
			return Token{}, l.errorf(line, col, "unterminated string literal")
		}
		l.advance()
		if r == '\\' {
			if err := l.scanEscape(line, col); err != nil {
				return Token{}, err
			}
		}
	}

	if l.pos >= len(l.src) {
		return Token{}, l.errorf(line, col, "unterminated string literal")
	}
	l.advance() // consume closing "

	return Token{Type: STR_LIT, Lexeme: string(l.src[start:l.pos]), Line: line, Col: col}, nil
}

// nextToken skips whitespace/comments and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return Token{Type: EOF, Lexeme: "", Line: l.line, Col: l.col}, nil
		}
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		if l.peek() == '/' && l.peek2() == '*' {
			line, col := l.line, l.col
			l.advance()
			l.advance()
			if err := l.skipBlockComment(line, col); err != nil {
				return Token{}, err
			}
			continue
		}
		break
	}

	ch := l.peek()
	line, col := l.line, l.col

	if ch == '_' || (ch < unicode.MaxASCII && unicode.IsLetter(ch)) {
		return l.scanIdent(), nil
	}
	if ch >= '0' && ch <= '9' {
		return l.scanInt()
	}
	if ch == '"' {
		return l.scanString()
	}
	if ch == '\'' {
		return l.scanChar()
	}

	tok := func(tt TokenType, lexeme string) (Token, error) {
		return Token{Type: tt, Lexeme: lexeme, Line: line, Col: col}, nil
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '{':
		return tok(LBRACE, "{")
	case '}':
		return tok(RBRACE, "}")
	case '(':
		return tok(LPAREN, "(")
	case ')':
		return tok(RPAREN, ")")
	case '[':
		return tok(LBRACKET, "[")
	case ']':
		return tok(RBRACKET, "]")
	case ';':
		return tok(SEMICOLON, ";")
	case ',':
		return tok(COMMA, ",")
	case '+':
		return tok(PLUS, "+")
	case '-':
		return tok(MINUS, "-")
	case '*':
		return tok(STAR, "*")
	case '/':
		return tok(SLASH, "/")
	case '%':
		return tok(PERCENT, "%")
	case '&':
		if l.peek() == '&' {
			l.advance()
			return tok(AND_LOGICAL, "&&")
		}
	case '|':
		if l.peek() == '|' {
			l.advance()
			return tok(OR_LOGICAL, "||")
		}
	case '!':
		if l.peek() == '=' {
			l.advance()
			return tok(NOT_EQ, "!=")
		}
		return tok(NOT, "!")
	case '<':
		if l.peek() == '=' {
			l.advance()
			return tok(LESS_EQ, "<=")
		}
		return tok(LESS, "<")
	case '>':
		if l.peek() == '=' {
			l.advance()
			return tok(GREATER_EQ, ">=")
		}
		return tok(GREATER, ">")
	case '=':
		if l.peek() == '=' { // lookahead: distinguish = vs ==
			l.advance()
			return tok(EQUALS, "==")
		}
		return tok(ASSIGN, "=")
	}
	return Token{}, l.errorf(line, col, "unexpected character %q", ch)
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It returns a *SyntaxError on the first illegal character, malformed
// literal or unterminated comment.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
