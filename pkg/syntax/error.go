package syntax

import (
	"fmt"
	"strings"
)

// SyntaxError is the single, unrecoverable error produced by the lexer or
// the parser. No partial tree accompanies it.
type SyntaxError struct {
	Source  string // file name, may be empty
	Line    int
	Col     int
	Msg     string
	Snippet string // trimmed source line, when available
}

func (e *SyntaxError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%d:%d: syntax error: %s", e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: syntax error: %s", e.Source, e.Line, e.Col, e.Msg)
}

// Detail returns Error() followed by the offending source line.
func (e *SyntaxError) Detail() string {
	if e.Snippet == "" {
		return e.Error()
	}
	return e.Error() + "\n  |> " + e.Snippet
}

// withSnippet attaches the trimmed source line the error points at.
func (e *SyntaxError) withSnippet(lines []string) *SyntaxError {
	idx := e.Line - 1
	if idx >= 0 && idx < len(lines) {
		e.Snippet = strings.TrimSpace(lines[idx])
	}
	return e
}
