package tac

// Optimize returns an optimized copy of p; p itself is not modified.
//
// Within each function it drops self-moves, propagates int literals held in
// local names through the current basic block and folds binary operations
// whose operands are both int literals. Division and modulo by zero are
// left for run time. Labels and jumps are copied untouched, so the label
// topology of every function is preserved. Optimize(Optimize(p)) equals
// Optimize(p).
func Optimize(p *Program) *Program {
	out := &Program{Globals: append([]Global(nil), p.Globals...)}
	for _, f := range p.Functions {
		out.Functions = append(out.Functions, optimizeFunction(f))
	}
	return out
}

func optimizeFunction(f *Function) *Function {
	out := &Function{Name: f.Name, Params: append([]string(nil), f.Params...)}
	consts := make(map[string]Operand)
	for _, in := range f.Code {
		switch {
		case in.Op == LABEL:
			// a label joins control flow; nothing known survives it
			clear(consts)
			out.Emit(in)
			continue
		case in.Op.IsFlow():
			out.Emit(in)
			continue
		case isSelfMove(in):
			continue
		}

		in = propagate(in, consts)
		if folded, ok := fold(in); ok {
			in = folded
		}
		if d, ok := in.Def(); ok && d.Kind == Name {
			if in.Op == MOV && in.A.Kind == Int {
				consts[d.Text] = in.A
			} else {
				delete(consts, d.Text)
			}
		}
		out.Emit(in)
	}
	return out
}

func isSelfMove(in Instr) bool {
	return in.Op == MOV && in.A.Kind == Name && in.R.Kind == Name && in.A.Text == in.R.Text
}

// propagate replaces every local name read by in with the literal it is
// known to hold.
func propagate(in Instr, consts map[string]Operand) Instr {
	sub := func(o Operand) Operand {
		if o.Kind == Name {
			if v, ok := consts[o.Text]; ok {
				return v
			}
		}
		return o
	}
	in.A = sub(in.A)
	in.B = sub(in.B)
	if in.Op == STORE {
		in.R = sub(in.R)
	}
	return in
}

// fold evaluates a binary instruction over two int literals with 32-bit
// wraparound.
func fold(in Instr) (Instr, bool) {
	if !in.Op.IsBinary() {
		return in, false
	}
	a, ok := in.A.IntValue()
	if !ok {
		return in, false
	}
	b, ok := in.B.IntValue()
	if !ok {
		return in, false
	}
	var v int32
	switch in.Op {
	case ADD:
		v = a + b
	case SUB:
		v = a - b
	case MUL:
		v = a * b
	case DIV:
		if b == 0 {
			return in, false
		}
		v = a / b
	case MOD:
		if b == 0 {
			return in, false
		}
		v = a % b
	case LT:
		v = truth(a < b)
	case LE:
		v = truth(a <= b)
	case GT:
		v = truth(a > b)
	case GE:
		v = truth(a >= b)
	case EQ:
		v = truth(a == b)
	case NEQ:
		v = truth(a != b)
	case AND:
		v = truth(a != 0 && b != 0)
	case OR:
		v = truth(a != 0 || b != 0)
	}
	return Instr{Op: MOV, A: IntOp(v), R: in.R}, true
}

func truth(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
