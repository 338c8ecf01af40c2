package cpu

import (
	"fmt"
	"strconv"
)

// SPIM syscall numbers, selected by $v0.
const (
	SysPrintInt    = 1
	SysPrintString = 4
	SysExit        = 10
	SysPrintChar   = 11
)

func (c *CPU) syscall() error {
	out := c.outputSink()
	a0 := c.Regs[RegA0]
	switch c.Regs[RegV0] {
	case SysPrintInt:
		_, err := out.Write(strconv.AppendInt(nil, int64(a0), 10))
		return err
	case SysPrintString:
		s, err := c.ReadString(uint32(a0))
		if err != nil {
			return err
		}
		_, err = out.Write([]byte(s))
		return err
	case SysPrintChar:
		_, err := out.Write([]byte{byte(a0)})
		return err
	case SysExit:
		c.Halted = true
		return nil
	}
	return fmt.Errorf("unknown syscall %d", c.Regs[RegV0])
}
