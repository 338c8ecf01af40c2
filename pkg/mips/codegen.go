// Package mips translates three-address code to MIPS32 assembly in the
// SPIM dialect.
//
// Every local, parameter and temporary gets a word in the stack frame at
// a negative offset from $fp. $fp points at the top of the frame, while
// the saved $ra and $fp sit at its bottom, 0($sp) and 4($sp). Arguments
// travel in $a0-$a3 and results in $v0. Arguments past the fourth are
// dropped.
package mips

import (
	"fmt"
	"strings"

	"minic/pkg/tac"
)

// NullLabel replaces a missing jump target.
const NullLabel = "__L_null"

// Options controls assembly output.
type Options struct {
	// Comments echoes each TAC instruction as a comment above its code.
	Comments bool
}

// CodeGen accumulates the data and text segments of one program.
type CodeGen struct {
	opts Options
	data strings.Builder
	text strings.Builder

	strs  map[string]string // literal text -> label
	nstrs int

	// per function
	slots     map[string]int
	frame     int
	params    []tac.Operand
	nullLabel bool
}

// Generate emits the assembly listing for p.
func Generate(p *tac.Program, opts Options) (string, error) {
	cg := &CodeGen{opts: opts, strs: make(map[string]string)}

	cg.data.WriteString(".data\n")
	for _, g := range p.Globals {
		cg.data.WriteString(".align 2\n")
		fmt.Fprintf(&cg.data, "%s:\n", g.Name)
		fmt.Fprintf(&cg.data, "    .space %d\n", g.Size)
	}

	cg.text.WriteString(".text\n")
	cg.text.WriteString(".globl __start\n")
	cg.label("__start")
	cg.line("jal main")
	cg.line("li $v0, %d", sysExit)
	cg.line("syscall")
	cg.text.WriteByte('\n')

	for _, f := range p.Functions {
		if err := cg.function(f); err != nil {
			return "", fmt.Errorf("function %s: %w", f.Name, err)
		}
	}
	return cg.data.String() + cg.text.String(), nil
}

func (cg *CodeGen) line(format string, args ...any) {
	cg.text.WriteString("    ")
	fmt.Fprintf(&cg.text, format, args...)
	cg.text.WriteByte('\n')
}

func (cg *CodeGen) comment(format string, args ...any) {
	if cg.opts.Comments {
		cg.line("# "+format, args...)
	}
}

func (cg *CodeGen) label(name string) {
	cg.text.WriteString(name)
	cg.text.WriteString(":\n")
}

func (cg *CodeGen) function(f *tac.Function) error {
	cg.slots = make(map[string]int)
	cg.params = cg.params[:0]
	cg.nullLabel = false
	cg.allocSlots(f)
	cg.frame = max(align16(4*len(cg.slots)+8), 16)

	if f.Name == "main" {
		cg.text.WriteString(".globl main\n")
	}
	cg.label(f.Name)
	cg.prologue()
	for i, p := range f.Params {
		if i == 4 {
			break
		}
		cg.store(fmt.Sprintf("$a%d", i), p)
	}

	for _, in := range f.Code {
		if in.Op != tac.LABEL {
			cg.comment("%s", in)
		}
		if err := cg.instr(in); err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
	}
	if n := len(f.Code); n == 0 || f.Code[n-1].Op != tac.RET {
		cg.line("li $v0, 0")
		cg.epilogue()
	}
	return nil
}

// allocSlots assigns a frame slot to every parameter and then to every
// name operand in order of first appearance.
func (cg *CodeGen) allocSlots(f *tac.Function) {
	add := func(name string) {
		if _, ok := cg.slots[name]; !ok {
			cg.slots[name] = -4 * (len(cg.slots) + 1)
		}
	}
	for _, p := range f.Params {
		add(p)
	}
	for _, in := range f.Code {
		ops := in.Reads()
		if d, ok := in.Def(); ok {
			ops = append(ops, d)
		}
		for _, o := range ops {
			if o.Kind == tac.Name {
				add(o.Text)
			}
		}
	}
}

func align16(n int) int {
	return (n + 15) &^ 15
}

func (cg *CodeGen) prologue() {
	cg.line("addiu $sp, $sp, -%d", cg.frame)
	cg.line("sw $ra, 0($sp)")
	cg.line("sw $fp, 4($sp)")
	cg.line("addiu $fp, $sp, %d", cg.frame)
}

func (cg *CodeGen) epilogue() {
	cg.line("lw $ra, 0($sp)")
	cg.line("lw $fp, 4($sp)")
	cg.line("addiu $sp, $sp, %d", cg.frame)
	cg.line("jr $ra")
	cg.text.WriteByte('\n')
}

// store writes reg to the slot of name.
func (cg *CodeGen) store(reg, name string) {
	cg.line("sw %s, %d($fp)", reg, cg.slots[name])
}

// load materializes o in reg. An absent operand loads zero.
func (cg *CodeGen) load(o tac.Operand, reg string) error {
	switch o.Kind {
	case tac.None:
		cg.line("li %s, 0", reg)
	case tac.Int:
		cg.line("li %s, %s", reg, o.Text)
	case tac.Char:
		c, err := charCode(o.Text)
		if err != nil {
			return err
		}
		cg.line("li %s, %d", reg, c)
	case tac.Str:
		cg.line("la %s, %s", reg, cg.stringLabel(o.Text))
	case tac.Name:
		cg.line("lw %s, %d($fp)", reg, cg.slots[o.Text])
	default:
		return fmt.Errorf("operand %s cannot be used as a value", o)
	}
	return nil
}

// loadPair loads a into $t0 and b into $t1.
func (cg *CodeGen) loadPair(in tac.Instr) error {
	if err := cg.load(in.A, "$t0"); err != nil {
		return err
	}
	return cg.load(in.B, "$t1")
}

// target returns the label an instruction names, defining the sentinel
// for a missing one.
func (cg *CodeGen) target(in tac.Instr) string {
	if in.R.IsZero() {
		return NullLabel
	}
	return in.R.Text
}

func (cg *CodeGen) instr(in tac.Instr) error {
	switch in.Op {
	case tac.MOV:
		if err := cg.load(in.A, "$t0"); err != nil {
			return err
		}
		cg.store("$t0", in.R.Text)

	case tac.ADD, tac.SUB, tac.MUL, tac.DIV, tac.MOD:
		if err := cg.loadPair(in); err != nil {
			return err
		}
		switch in.Op {
		case tac.ADD:
			cg.line("addu $t2, $t0, $t1")
		case tac.SUB:
			cg.line("subu $t2, $t0, $t1")
		case tac.MUL:
			cg.line("mul $t2, $t0, $t1")
		case tac.DIV:
			cg.line("div $t0, $t1")
			cg.line("mflo $t2")
		case tac.MOD:
			cg.line("div $t0, $t1")
			cg.line("mfhi $t2")
		}
		cg.store("$t2", in.R.Text)

	case tac.LT, tac.LE, tac.GT, tac.GE, tac.EQ, tac.NEQ:
		if err := cg.loadPair(in); err != nil {
			return err
		}
		switch in.Op {
		case tac.LT:
			cg.line("slt $t2, $t0, $t1")
		case tac.LE:
			cg.line("slt $t2, $t1, $t0")
			cg.line("xori $t2, $t2, 1")
		case tac.GT:
			cg.line("slt $t2, $t1, $t0")
		case tac.GE:
			cg.line("slt $t2, $t0, $t1")
			cg.line("xori $t2, $t2, 1")
		case tac.EQ:
			cg.line("seq $t2, $t0, $t1")
		case tac.NEQ:
			cg.line("sne $t2, $t0, $t1")
		}
		cg.store("$t2", in.R.Text)

	case tac.AND, tac.OR:
		if err := cg.loadPair(in); err != nil {
			return err
		}
		cg.line("sne $t0, $t0, $zero")
		cg.line("sne $t1, $t1, $zero")
		if in.Op == tac.AND {
			cg.line("and $t2, $t0, $t1")
		} else {
			cg.line("or $t2, $t0, $t1")
		}
		cg.store("$t2", in.R.Text)

	case tac.NOT:
		if err := cg.load(in.A, "$t0"); err != nil {
			return err
		}
		cg.line("sne $t0, $t0, $zero")
		cg.line("xori $t2, $t0, 1")
		cg.store("$t2", in.R.Text)

	case tac.LOAD:
		cg.line("la $t1, %s", in.A.Text)
		if err := cg.load(in.B, "$t2"); err != nil {
			return err
		}
		cg.line("addu $t1, $t1, $t2")
		cg.line("lw $t0, 0($t1)")
		cg.store("$t0", in.R.Text)

	case tac.STORE:
		if err := cg.load(in.A, "$t0"); err != nil {
			return err
		}
		cg.line("la $t1, %s", in.B.Text)
		if err := cg.load(in.R, "$t2"); err != nil {
			return err
		}
		cg.line("addu $t1, $t1, $t2")
		cg.line("sw $t0, 0($t1)")

	case tac.LABEL:
		l := cg.target(in)
		if l == NullLabel {
			if cg.nullLabel {
				return nil
			}
			cg.nullLabel = true
		}
		cg.label(l)

	case tac.IFZ:
		if err := cg.load(in.A, "$t0"); err != nil {
			return err
		}
		cg.line("beq $t0, $zero, %s", cg.target(in))

	case tac.GOTO:
		cg.line("j %s", cg.target(in))

	case tac.PARAM:
		cg.params = append(cg.params, in.A)

	case tac.CALL:
		return cg.call(in)

	case tac.RET:
		if err := cg.load(in.A, "$v0"); err != nil {
			return err
		}
		cg.epilogue()

	default:
		return fmt.Errorf("unknown opcode %d", in.Op)
	}
	return nil
}
