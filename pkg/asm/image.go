package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment base addresses, as in SPIM.
const (
	TextBase uint32 = 0x00400000
	DataBase uint32 = 0x10010000
)

// Inst is one decoded instruction. Regs holds the register operands as
// MIPS register numbers in source order; the base register of a memory
// operand comes last. Imm holds the immediate, memory offset or resolved
// label address, depending on the mnemonic.
type Inst struct {
	Op   string
	Regs [3]uint8
	Imm  int32
	Line int
}

func (in Inst) String() string {
	return fmt.Sprintf("%s %v %d (line %d)", in.Op, in.Regs, in.Imm, in.Line)
}

// Image is a checked program ready to load: the initial data segment
// and the decoded text segment, one Inst per word.
type Image struct {
	*Listing
	Data  []byte
	Text  []Inst
	Entry uint32 // address of __start
}

// Addr returns the absolute address of a label.
func (img *Image) Addr(label string) (uint32, bool) {
	sym, ok := img.Labels[label]
	if !ok {
		return 0, false
	}
	if sym.Segment == Text {
		return TextBase + sym.Offset, true
	}
	return DataBase + sym.Offset, true
}

// Assemble checks code and decodes it into an Image.
func Assemble(code string) (*Image, error) {
	c := NewChecker()
	l, lines, err := c.check(code)
	if err != nil {
		return nil, err
	}
	img := &Image{
		Listing: l,
		Data:    make([]byte, 0, l.DataSize),
		Text:    make([]Inst, 0, l.TextSize/4),
	}
	entry, ok := img.Addr("__start")
	if !ok {
		return nil, fmt.Errorf("undefined entry label '__start'")
	}
	img.Entry = entry

	seg := Text
	for _, p := range lines {
		switch p.mnemonic {
		case "", ".globl":
		case ".data":
			seg = Data
		case ".text":
			seg = Text
		case ".align":
			n, _ := strconv.ParseUint(p.operands[0], 0, 32)
			mask := 1<<n - 1
			if seg == Data {
				for len(img.Data)&int(mask) != 0 {
					img.Data = append(img.Data, 0)
				}
			} else {
				for (len(img.Text)*4)&int(mask) != 0 {
					img.Text = append(img.Text, Inst{Op: "nop", Line: p.lineNo})
				}
			}
		case ".space":
			n, _ := strconv.ParseUint(p.operands[0], 0, 32)
			img.Data = append(img.Data, make([]byte, n)...)
		case ".asciiz":
			b, _ := unquote(p.operands[0])
			img.Data = append(img.Data, b...)
			img.Data = append(img.Data, 0)
		default:
			in, err := img.decode(p)
			if err != nil {
				return nil, err
			}
			img.Text = append(img.Text, in)
		}
	}
	return img, nil
}

// decode converts an operand-checked line into an Inst.
func (img *Image) decode(p parsedLine) (Inst, error) {
	in := Inst{Op: p.mnemonic, Line: p.lineNo}
	sig := instructions[p.mnemonic]
	next := 0
	for i, kind := range sig {
		op := p.operands[i]
		switch kind {
		case reg:
			in.Regs[next] = registers[op]
			next++
		case imm, imm16:
			v, err := strconv.ParseInt(op, 0, 32)
			if err != nil {
				return in, fmt.Errorf("invalid immediate '%s' on line %d", op, p.lineNo)
			}
			in.Imm = int32(v)
		case immU:
			v, err := strconv.ParseUint(op, 0, 16)
			if err != nil {
				return in, fmt.Errorf("invalid unsigned immediate '%s' on line %d", op, p.lineNo)
			}
			in.Imm = int32(v)
		case mem:
			open := strings.IndexByte(op, '(')
			v, err := strconv.ParseInt(op[:open], 0, 16)
			if err != nil {
				return in, fmt.Errorf("invalid memory operand '%s' on line %d", op, p.lineNo)
			}
			in.Imm = int32(v)
			in.Regs[next] = registers[op[open+1:len(op)-1]]
			next++
		case label:
			addr, ok := img.Addr(op)
			if !ok {
				return in, fmt.Errorf("undefined label '%s' on line %d", op, p.lineNo)
			}
			in.Imm = int32(addr)
		}
	}
	return in, nil
}
