// Package testdoc extracts compiler test cases from Markdown documents.
//
// A test starts at a heading "Test: name" and holds exactly one ```minic
// fence with the source, followed by one or more assertion fences:
//
//	ast           parse tree dump, compared exactly
//	symbols       scope dump, compared exactly
//	tac           unoptimized TAC dump, compared exactly
//	tac-opt       optimized TAC dump, compared exactly
//	asm           fragment that must appear in the assembly listing
//	diagnostics   expected diagnostics, one per line, in order
//	syntax-error  expected syntax error message
//	output        console output of the program when run, trailing newlines ignored
//
// Fences without a language are commentary and are ignored.
package testdoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputFence is the language of the source fence.
const InputFence = "minic"

// AssertionType names what an assertion fence checks.
type AssertionType string

const (
	AssertionAST         AssertionType = "ast"
	AssertionSymbols     AssertionType = "symbols"
	AssertionTAC         AssertionType = "tac"
	AssertionTACOpt      AssertionType = "tac-opt"
	AssertionASM         AssertionType = "asm"
	AssertionDiagnostics AssertionType = "diagnostics"
	AssertionSyntaxError AssertionType = "syntax-error"
	AssertionOutput      AssertionType = "output"
)

var assertionTypes = map[AssertionType]bool{
	AssertionAST:         true,
	AssertionSymbols:     true,
	AssertionTAC:         true,
	AssertionTACOpt:      true,
	AssertionASM:         true,
	AssertionDiagnostics: true,
	AssertionSyntaxError: true,
	AssertionOutput:      true,
}

// Assertion is one expectation about the compiled input.
type Assertion struct {
	Type    AssertionType
	Content string // fence body without the trailing newline
	Line    int    // line of the fence body in the document
}

// TestCase is a source program and its expectations.
type TestCase struct {
	Name       string
	Input      string
	Line       int
	Assertions []Assertion
}

// Failing reports whether the case expects compilation to fail.
func (tc *TestCase) Failing() bool {
	for _, a := range tc.Assertions {
		if a.Type == AssertionDiagnostics || a.Type == AssertionSyntaxError {
			return true
		}
	}
	return false
}

// Extract parses a Markdown document and returns its test cases in order.
func Extract(markdown string) ([]TestCase, error) {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []TestCase
	var cur *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if cur != nil {
				if err := validate(cur); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *cur)
			}
			cur = &TestCase{Name: strings.TrimPrefix(heading, "Test: ")}

		case *ast.FencedCodeBlock:
			lang := string(n.Language(source))
			line := lineNumber(n, source)
			if lang == "" {
				return ast.WalkContinue, nil
			}
			if lang != InputFence && !assertionTypes[AssertionType(lang)] {
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s'", line, lang)
			}
			if cur == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", line, lang)
			}

			content := strings.TrimRight(blockContent(n, source), "\n")
			if lang == InputFence {
				if cur.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences found in test '%s'", line, cur.Name)
				}
				cur.Input = content
				cur.Line = line
				return ast.WalkContinue, nil
			}
			cur.Assertions = append(cur.Assertions, Assertion{
				Type:    AssertionType(lang),
				Content: content,
				Line:    line,
			})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}

	if cur != nil {
		if err := validate(cur); err != nil {
			return nil, err
		}
		cases = append(cases, *cur)
	}
	return cases, nil
}

func validate(tc *TestCase) error {
	if tc.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", tc.Name)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", tc.Name)
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineNumber returns the 1-based line of the node's first content line.
func lineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:min(start, len(source))], []byte("\n")) + 1
}
