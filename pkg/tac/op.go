package tac

// Op is a three-address opcode.
type Op int

const (
	MOV Op = iota
	RET
	ADD
	SUB
	MUL
	DIV
	MOD
	LT
	LE
	GT
	GE
	EQ
	NEQ
	AND
	OR
	NOT
	PARAM
	CALL
	LOAD
	STORE
	IFZ
	GOTO
	LABEL
)

var opNames = [...]string{
	MOV:   "mov",
	RET:   "ret",
	ADD:   "add",
	SUB:   "sub",
	MUL:   "mul",
	DIV:   "div",
	MOD:   "mod",
	LT:    "lt",
	LE:    "le",
	GT:    "gt",
	GE:    "ge",
	EQ:    "eq",
	NEQ:   "neq",
	AND:   "and",
	OR:    "or",
	NOT:   "not",
	PARAM: "param",
	CALL:  "call",
	LOAD:  "load",
	STORE: "store",
	IFZ:   "ifz",
	GOTO:  "goto",
	LABEL: "label",
}

func (op Op) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return "op?"
}

// IsBinary reports whether op reads two operands and writes one result.
func (op Op) IsBinary() bool {
	return op >= ADD && op <= OR
}

// IsFlow reports whether op defines or targets a label.
func (op Op) IsFlow() bool {
	return op == LABEL || op == GOTO || op == IFZ
}
