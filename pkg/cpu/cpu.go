// Package cpu simulates the MIPS32 subset emitted by the code generator,
// with the SPIM memory layout and console syscalls. It runs an
// asm.Image until the exit syscall.
package cpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"minic/pkg/asm"
)

// Register numbers used by the generated code.
const (
	RegZero = 0
	RegV0   = 2
	RegA0   = 4
	RegSP   = 29
	RegFP   = 30
	RegRA   = 31
)

const (
	// StackTop is the initial $sp.
	StackTop uint32 = 0x7FFFEFFC
	// StackSize bounds how far the stack may grow below StackTop.
	StackSize uint32 = 1 << 20
	// DefaultMaxSteps stops runaway programs.
	DefaultMaxSteps = 50_000_000
)

var (
	ErrStepLimit    = errors.New("step limit exceeded")
	ErrDivideByZero = errors.New("integer division by zero")
)

// RuntimeError reports a fault at a source line of the listing.
type RuntimeError struct {
	PC   uint32
	Line int
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at 0x%08X (line %d): %v", e.PC, e.Line, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

type CPU struct {
	Regs [32]int32
	HI   int32
	LO   int32
	PC   uint32

	Halted bool
	Steps  int

	// MaxSteps bounds Run; zero means DefaultMaxSteps.
	MaxSteps int

	// Output receives console syscalls. If nil, os.Stdout is used.
	Output io.Writer

	text  []asm.Inst
	data  []byte
	stack []byte
}

// NewCPU loads img with $sp and $fp at the top of the stack and the PC at
// the entry label.
func NewCPU(img *asm.Image) *CPU {
	c := &CPU{
		PC:    img.Entry,
		text:  img.Text,
		data:  append([]byte(nil), img.Data...),
		stack: make([]byte, StackSize),
	}
	c.Regs[RegSP] = int32(StackTop)
	c.Regs[RegFP] = int32(StackTop)
	return c
}

func (c *CPU) outputSink() io.Writer {
	if c.Output != nil {
		return c.Output
	}
	return os.Stdout
}

// memory returns size bytes at addr, which must be aligned to size and
// inside the data segment or the stack.
func (c *CPU) memory(addr uint32, size uint32) ([]byte, error) {
	if addr%size != 0 {
		return nil, fmt.Errorf("unaligned access at 0x%08X", addr)
	}
	if addr >= asm.DataBase && addr-asm.DataBase+size <= uint32(len(c.data)) {
		off := addr - asm.DataBase
		return c.data[off : off+size], nil
	}
	low := StackTop + 4 - StackSize
	if addr >= low && addr+size <= StackTop+4 {
		off := addr - low
		return c.stack[off : off+size], nil
	}
	return nil, fmt.Errorf("bad address 0x%08X", addr)
}

// Read32 reads a little-endian word.
func (c *CPU) Read32(addr uint32) (int32, error) {
	b, err := c.memory(addr, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// Write32 writes a little-endian word.
func (c *CPU) Write32(addr uint32, val int32) error {
	b, err := c.memory(addr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, uint32(val))
	return nil
}

// ReadString reads a NUL-terminated string from the data segment.
func (c *CPU) ReadString(addr uint32) (string, error) {
	var buf []byte
	for {
		b, err := c.memory(addr, 1)
		if err != nil {
			return "", err
		}
		if b[0] == 0 {
			return string(buf), nil
		}
		buf = append(buf, b[0])
		addr++
	}
}

func (c *CPU) set(r uint8, v int32) {
	if r != RegZero {
		c.Regs[r] = v
	}
}

func truth(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Step executes one instruction.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}
	if c.PC < asm.TextBase || c.PC%4 != 0 || int((c.PC-asm.TextBase)/4) >= len(c.text) {
		return &RuntimeError{PC: c.PC, Err: errors.New("jump outside the text segment")}
	}
	in := c.text[(c.PC-asm.TextBase)/4]
	pc := c.PC
	c.PC += 4
	c.Steps++
	if err := c.exec(in); err != nil {
		return &RuntimeError{PC: pc, Line: in.Line, Err: err}
	}
	return nil
}

func (c *CPU) exec(in asm.Inst) error {
	r := func(i int) int32 { return c.Regs[in.Regs[i]] }
	dst := in.Regs[0]

	switch in.Op {
	case "nop":
	case "addu":
		c.set(dst, r(1)+r(2))
	case "subu":
		c.set(dst, r(1)-r(2))
	case "mul":
		c.set(dst, r(1)*r(2))
	case "and":
		c.set(dst, r(1)&r(2))
	case "or":
		c.set(dst, r(1)|r(2))
	case "slt":
		c.set(dst, truth(r(1) < r(2)))
	case "seq":
		c.set(dst, truth(r(1) == r(2)))
	case "sne":
		c.set(dst, truth(r(1) != r(2)))
	case "addiu":
		c.set(dst, r(1)+in.Imm)
	case "xori":
		c.set(dst, r(1)^in.Imm)
	case "div":
		if r(1) == 0 {
			return ErrDivideByZero
		}
		c.LO, c.HI = r(0)/r(1), r(0)%r(1)
	case "mflo":
		c.set(dst, c.LO)
	case "mfhi":
		c.set(dst, c.HI)
	case "li", "la":
		c.set(dst, in.Imm)
	case "lw":
		v, err := c.Read32(uint32(r(1) + in.Imm))
		if err != nil {
			return err
		}
		c.set(dst, v)
	case "sw":
		return c.Write32(uint32(r(1)+in.Imm), r(0))
	case "beq":
		if r(0) == r(1) {
			c.PC = uint32(in.Imm)
		}
	case "j":
		c.PC = uint32(in.Imm)
	case "jal":
		c.Regs[RegRA] = int32(c.PC)
		c.PC = uint32(in.Imm)
	case "jr":
		c.PC = uint32(r(0))
	case "syscall":
		return c.syscall()
	default:
		return fmt.Errorf("unsupported instruction %s", in.Op)
	}
	return nil
}

// Run steps until the exit syscall, a fault or the step limit.
func (c *CPU) Run() error {
	limit := c.MaxSteps
	if limit == 0 {
		limit = DefaultMaxSteps
	}
	for !c.Halted {
		if c.Steps >= limit {
			return &RuntimeError{PC: c.PC, Err: ErrStepLimit}
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Execute assembles code and runs it, writing console output to out.
func Execute(code string, out io.Writer) (*CPU, error) {
	img, err := asm.Assemble(code)
	if err != nil {
		return nil, err
	}
	c := NewCPU(img)
	c.Output = out
	return c, c.Run()
}
