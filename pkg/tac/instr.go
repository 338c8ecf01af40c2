package tac

import (
	"fmt"
	"strconv"
)

// Kind classifies an operand.
type Kind int

const (
	None  Kind = iota
	Int        // decimal integer literal
	Char       // quoted char literal, escapes undecoded
	Str        // quoted string literal, escapes undecoded
	Name       // local slot, parameter or temporary
	Data       // label of a global data region
	Label      // jump target
	Func       // callee
)

// Operand is a literal or a name. The zero value is the absent operand.
type Operand struct {
	Kind Kind
	Text string
}

func IntOp(v int32) Operand        { return Operand{Int, strconv.Itoa(int(v))} }
func CharOp(raw string) Operand    { return Operand{Char, raw} }
func StrOp(raw string) Operand     { return Operand{Str, raw} }
func NameOp(name string) Operand   { return Operand{Name, name} }
func GlobalOp(name string) Operand { return Operand{Data, name} }
func LabelOp(name string) Operand  { return Operand{Label, name} }
func FuncOp(name string) Operand   { return Operand{Func, name} }

// IsZero reports whether the operand is absent.
func (o Operand) IsZero() bool { return o.Kind == None }

// IsLiteral reports whether the operand is an int, char or string literal.
func (o Operand) IsLiteral() bool {
	return o.Kind == Int || o.Kind == Char || o.Kind == Str
}

// IntValue returns the value of an int literal operand.
func (o Operand) IntValue() (int32, bool) {
	if o.Kind != Int {
		return 0, false
	}
	v, err := strconv.ParseInt(o.Text, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(v), true
}

func (o Operand) String() string {
	if o.Kind == None {
		return "_"
	}
	return o.Text
}

// Instr is one three-address instruction. A and B are sources and R is the
// destination; STORE is the exception, reading its value from A, its base
// from B and its byte offset from R.
type Instr struct {
	Op Op
	A  Operand
	B  Operand
	R  Operand
}

func (in Instr) String() string {
	switch in.Op {
	case MOV:
		return fmt.Sprintf("%s = %s", in.R, in.A)
	case RET:
		if in.A.IsZero() {
			return "ret"
		}
		return "ret " + in.A.String()
	case NOT:
		return fmt.Sprintf("%s = not %s", in.R, in.A)
	case PARAM:
		return "param " + in.A.String()
	case CALL:
		if in.R.IsZero() {
			return fmt.Sprintf("call %s, %s", in.A, in.B)
		}
		return fmt.Sprintf("%s = call %s, %s", in.R, in.A, in.B)
	case LOAD:
		return fmt.Sprintf("%s = load %s, %s", in.R, in.A, in.B)
	case STORE:
		return fmt.Sprintf("store %s, %s, %s", in.A, in.B, in.R)
	case IFZ:
		return fmt.Sprintf("ifz %s goto %s", in.A, in.R)
	case GOTO:
		return "goto " + in.R.String()
	case LABEL:
		return in.R.String() + ":"
	}
	if in.Op.IsBinary() {
		return fmt.Sprintf("%s = %s %s, %s", in.R, in.Op, in.A, in.B)
	}
	panic(fmt.Sprintf("tac: unknown opcode %d", in.Op))
}

// Target returns the label an IFZ, GOTO or LABEL refers to.
func (in Instr) Target() string {
	if in.Op.IsFlow() {
		return in.R.Text
	}
	return ""
}

// Reads returns the operands the instruction reads, in operand order.
func (in Instr) Reads() []Operand {
	var ops []Operand
	add := func(o Operand) {
		if !o.IsZero() {
			ops = append(ops, o)
		}
	}
	switch in.Op {
	case LABEL, GOTO:
	case STORE:
		add(in.A)
		add(in.B)
		add(in.R)
	default:
		add(in.A)
		add(in.B)
	}
	return ops
}

// Def returns the operand the instruction writes, if any.
func (in Instr) Def() (Operand, bool) {
	switch in.Op {
	case RET, PARAM, STORE, IFZ, GOTO, LABEL:
		return Operand{}, false
	}
	return in.R, !in.R.IsZero()
}
