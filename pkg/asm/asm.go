// Package asm checks MIPS assembly listings in the SPIM dialect emitted
// by the code generator. It does not encode machine code. It lays out
// the data and text segments, records every label and verifies each
// instruction's operands.
package asm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Segment identifies where a label lives.
type Segment int

const (
	Data Segment = iota
	Text
)

func (s Segment) String() string {
	if s == Text {
		return ".text"
	}
	return ".data"
}

// operand kinds
const (
	reg   = 'r' // $t0
	imm   = 'i' // 32-bit immediate
	imm16 = 'h' // signed 16-bit immediate
	immU  = 'u' // unsigned 16-bit immediate
	mem   = 'm' // off($reg)
	label = 'l' // defined label
)

// instructions maps each accepted mnemonic to its operand signature.
var instructions = map[string]string{
	"addu":    "rrr",
	"subu":    "rrr",
	"mul":     "rrr",
	"and":     "rrr",
	"or":      "rrr",
	"slt":     "rrr",
	"seq":     "rrr",
	"sne":     "rrr",
	"addiu":   "rrh",
	"xori":    "rru",
	"div":     "rr",
	"mflo":    "r",
	"mfhi":    "r",
	"li":      "ri",
	"la":      "rl",
	"lw":      "rm",
	"sw":      "rm",
	"beq":     "rrl",
	"j":       "l",
	"jal":     "l",
	"jr":      "r",
	"syscall": "",
}

// registers maps each accepted register name to its MIPS number.
var registers = map[string]uint8{
	"$zero": 0, "$v0": 2,
	"$a0": 4, "$a1": 5, "$a2": 6, "$a3": 7,
	"$t0": 8, "$t1": 9, "$t2": 10,
	"$sp": 29, "$fp": 30, "$ra": 31,
}

// Symbol is the resolved location of a label.
type Symbol struct {
	Segment Segment
	Offset  uint32
	Line    int
}

// Listing summarizes a checked program.
type Listing struct {
	Labels   map[string]Symbol
	Globals  []string
	DataSize uint32
	TextSize uint32

	// TextMap maps each instruction's text offset to its source line.
	TextMap map[uint32]int
}

// Instructions returns the number of instructions in the text segment.
func (l *Listing) Instructions() int {
	return len(l.TextMap)
}

type Checker struct {
	labels map[string]Symbol
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewChecker() *Checker {
	return &Checker{
		labels: make(map[string]Symbol),
	}
}

// Check validates code and returns its layout.
func Check(code string) (*Listing, error) {
	return NewChecker().Check(code)
}

func (c *Checker) Check(code string) (*Listing, error) {
	l, _, err := c.check(code)
	return l, err
}

func (c *Checker) check(code string) (*Listing, []parsedLine, error) {
	lines := strings.Split(code, "\n")

	parsed := make([]parsedLine, 0, len(lines))
	for i, raw := range lines {
		p, err := parseLine(raw, i+1)
		if err != nil {
			return nil, nil, err
		}
		parsed = append(parsed, p)
	}

	l, err := c.pass1(parsed)
	if err != nil {
		return nil, nil, err
	}
	if err := c.pass2(parsed, l); err != nil {
		return nil, nil, err
	}
	return l, parsed, nil
}

// pass1 lays out both segments and records labels.
func (c *Checker) pass1(lines []parsedLine) (*Listing, error) {
	l := &Listing{Labels: c.labels, TextMap: make(map[uint32]int)}
	seg := Text
	var size [2]uint32

	for _, p := range lines {
		for _, lbl := range p.labels {
			if prev, exists := c.labels[lbl]; exists {
				return nil, fmt.Errorf("duplicate label '%s' on line %d (first defined on line %d)", lbl, p.lineNo, prev.Line)
			}
			c.labels[lbl] = Symbol{Segment: seg, Offset: size[seg], Line: p.lineNo}
		}

		switch p.mnemonic {
		case "":
		case ".data":
			seg = Data
		case ".text":
			seg = Text
		case ".globl":
			if len(p.operands) != 1 {
				return nil, fmt.Errorf(".globl expects exactly one operand on line %d", p.lineNo)
			}
			l.Globals = append(l.Globals, p.operands[0])
		case ".align":
			n, err := directiveArg(p, 0, 3)
			if err != nil {
				return nil, err
			}
			mask := uint32(1)<<n - 1
			size[seg] = (size[seg] + mask) &^ mask
		case ".space":
			if seg != Data {
				return nil, fmt.Errorf(".space outside the data segment on line %d", p.lineNo)
			}
			n, err := directiveArg(p, 1, 1<<24)
			if err != nil {
				return nil, err
			}
			size[seg] += n
		case ".asciiz":
			if seg != Data {
				return nil, fmt.Errorf(".asciiz outside the data segment on line %d", p.lineNo)
			}
			if len(p.operands) != 1 {
				return nil, fmt.Errorf(".asciiz expects exactly one string operand on line %d", p.lineNo)
			}
			n, ok := stringLength(p.operands[0])
			if !ok {
				return nil, fmt.Errorf("invalid string literal on line %d", p.lineNo)
			}
			size[seg] += uint32(n + 1)
		default:
			if _, ok := instructions[p.mnemonic]; !ok {
				return nil, fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, p.mnemonic)
			}
			if seg != Text {
				return nil, fmt.Errorf("instruction in the data segment on line %d: %s", p.lineNo, p.mnemonic)
			}
			l.TextMap[size[seg]] = p.lineNo
			size[seg] += 4
		}
	}

	l.DataSize, l.TextSize = size[Data], size[Text]
	return l, nil
}

// pass2 checks operands now that every label is known.
func (c *Checker) pass2(lines []parsedLine, l *Listing) error {
	for _, g := range l.Globals {
		if _, ok := c.labels[g]; !ok {
			return fmt.Errorf("undefined global label '%s'", g)
		}
	}

	for _, p := range lines {
		sig, ok := instructions[p.mnemonic]
		if !ok {
			continue
		}
		if len(p.operands) != len(sig) {
			return fmt.Errorf("%s expects %d operands on line %d", p.mnemonic, len(sig), p.lineNo)
		}
		for i, kind := range sig {
			if err := c.checkOperand(kind, p.operands[i], p.lineNo); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Checker) checkOperand(kind rune, op string, lineNo int) error {
	switch kind {
	case reg:
		return checkRegister(op, lineNo)
	case imm:
		_, err := parseImmediate(op, 32, lineNo)
		return err
	case imm16:
		_, err := parseImmediate(op, 16, lineNo)
		return err
	case immU:
		if _, err := strconv.ParseUint(op, 0, 16); err != nil {
			return fmt.Errorf("invalid unsigned immediate '%s' on line %d", op, lineNo)
		}
		return nil
	case mem:
		open := strings.IndexByte(op, '(')
		if open < 0 || !strings.HasSuffix(op, ")") {
			return fmt.Errorf("invalid memory operand '%s' on line %d", op, lineNo)
		}
		if _, err := parseImmediate(op[:open], 16, lineNo); err != nil {
			return err
		}
		return checkRegister(op[open+1:len(op)-1], lineNo)
	case label:
		if _, ok := c.labels[op]; ok {
			return nil
		}
		if isIdentifier(op) {
			return fmt.Errorf("undefined label '%s' on line %d", op, lineNo)
		}
		return fmt.Errorf("invalid label '%s' on line %d", op, lineNo)
	}
	panic(fmt.Sprintf("asm: unknown operand kind %q", kind))
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}
		beforeColon := line[:colon]
		if strings.ContainsAny(beforeColon, " \t\"") {
			break
		}
		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}
		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	mnemonic, rest := line, ""
	if sp := strings.IndexFunc(line, unicode.IsSpace); sp > 0 {
		mnemonic, rest = line[:sp], strings.TrimSpace(line[sp:])
	}
	p.mnemonic = strings.ToLower(mnemonic)
	if rest == "" {
		return p, nil
	}
	if p.mnemonic == ".asciiz" {
		p.operands = []string{rest}
		return p, nil
	}
	for _, op := range strings.Split(rest, ",") {
		op = strings.TrimSpace(op)
		if op == "" {
			return p, fmt.Errorf("empty operand on line %d", lineNo)
		}
		p.operands = append(p.operands, op)
	}
	return p, nil
}

// stripComments cuts a '#' comment, ignoring '#' inside a string.
func stripComments(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '#':
			if !inString {
				return line[:i]
			}
		}
	}
	return line
}

// stringLength returns the byte length of a quoted literal, counting
// each backslash escape as one byte.
func stringLength(lit string) (int, bool) {
	b, ok := unquote(lit)
	return len(b), ok
}

// unquote decodes a quoted .asciiz literal. Unknown escapes keep the
// escaped byte.
func unquote(lit string) ([]byte, bool) {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		return nil, false
	}
	body := lit[1 : len(lit)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch ch {
		case '\\':
			if i+1 == len(body) {
				return nil, false
			}
			i++
			ch = body[i]
			switch ch {
			case 'n':
				ch = '\n'
			case 't':
				ch = '\t'
			case 'r':
				ch = '\r'
			case '0':
				ch = 0
			}
		case '"':
			return nil, false
		}
		out = append(out, ch)
	}
	return out, true
}

func directiveArg(p parsedLine, lo, hi uint32) (uint32, error) {
	if len(p.operands) != 1 {
		return 0, fmt.Errorf("%s expects exactly one operand on line %d", p.mnemonic, p.lineNo)
	}
	v, err := strconv.ParseUint(p.operands[0], 0, 32)
	if err != nil || uint32(v) < lo || uint32(v) > hi {
		return 0, fmt.Errorf("invalid %s value on line %d: %s", p.mnemonic, p.lineNo, p.operands[0])
	}
	return uint32(v), nil
}

func checkRegister(token string, lineNo int) error {
	if _, ok := registers[token]; !ok {
		return fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
	}
	return nil
}

func parseImmediate(token string, bits int, lineNo int) (int64, error) {
	v, err := strconv.ParseInt(token, 0, bits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
		}
		return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
	}
	return v, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return false
		}
	}

	return true
}
