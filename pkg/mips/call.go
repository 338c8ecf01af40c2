package mips

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"minic/pkg/tac"
)

// SPIM syscall numbers.
const (
	sysPrintInt    = 1
	sysPrintString = 4
	sysExit        = 10
	sysPrintChar   = 11
)

// builtins maps each I/O name, and its alias, to the syscall it lowers to.
var builtins = map[string]int{
	"printInt":    sysPrintInt,
	"print_int":   sysPrintInt,
	"printChar":   sysPrintChar,
	"print_char":  sysPrintChar,
	"printString": sysPrintString,
	"print_str":   sysPrintString,
	"println":     -1,
}

// call pops the queued arguments for in and emits either a syscall or a
// jal to the callee.
func (cg *CodeGen) call(in tac.Instr) error {
	n, err := strconv.Atoi(in.B.Text)
	if err != nil {
		return fmt.Errorf("bad argument count %q", in.B.Text)
	}
	if n > len(cg.params) {
		return fmt.Errorf("call to %s takes %d arguments but %d are queued", in.A.Text, n, len(cg.params))
	}
	args := cg.params[len(cg.params)-n:]
	cg.params = cg.params[:len(cg.params)-n]

	arg := func(i int) tac.Operand {
		if i < len(args) {
			return args[i]
		}
		return tac.Operand{}
	}

	name := in.A.Text
	if sys, ok := builtins[name]; ok {
		if sys < 0 {
			cg.line("li $a0, 10")
			sys = sysPrintChar
		} else if err := cg.load(arg(0), "$a0"); err != nil {
			return err
		}
		cg.line("li $v0, %d", sys)
		cg.line("syscall")
		return nil
	}

	for i := range min(len(args), 4) {
		if err := cg.load(args[i], fmt.Sprintf("$a%d", i)); err != nil {
			return err
		}
	}
	cg.line("jal %s", name)
	if !in.R.IsZero() {
		cg.store("$v0", in.R.Text)
	}
	return nil
}

// stringLabel returns the data label of a string literal, adding it to
// the pool the first time the exact text is seen. The body is emitted
// with its source escapes, which SPIM decodes.
func (cg *CodeGen) stringLabel(lit string) string {
	if l, ok := cg.strs[lit]; ok {
		return l
	}
	l := fmt.Sprintf("str_%d", cg.nstrs)
	cg.nstrs++
	cg.strs[lit] = l
	fmt.Fprintf(&cg.data, "%s: .asciiz %s\n", l, lit)
	return l
}

// charCode decodes a quoted char literal to its code point.
func charCode(lit string) (int, error) {
	if len(lit) < 3 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return 0, fmt.Errorf("malformed char literal %s", lit)
	}
	body := lit[1 : len(lit)-1]
	if body[0] == '\\' && len(body) == 2 {
		switch body[1] {
		case 'n':
			return '\n', nil
		case 't':
			return '\t', nil
		case 'r':
			return '\r', nil
		case '0':
			return 0, nil
		case '\\', '\'', '"':
			return int(body[1]), nil
		}
		return 0, fmt.Errorf("unknown escape in char literal %s", lit)
	}
	r, size := utf8.DecodeRuneInString(body)
	if size != len(body) {
		return 0, fmt.Errorf("malformed char literal %s", lit)
	}
	return int(r), nil
}
