package chip8

import (
	"fmt"
	"io"
	"strings"
)

// Registers is a copy of the register file and call stack.
type Registers struct {
	V          [RegisterCount]byte
	I          uint16
	PC         uint16
	SP         byte
	DelayTimer byte
	SoundTimer byte
	Stack      [StackDepth]uint16
}

func (r Registers) String() string {
	var b strings.Builder
	for i, v := range r.V {
		if i > 0 {
			if i%8 == 0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		fmt.Fprintf(&b, "V%X:%02X", i, v)
	}
	fmt.Fprintf(&b, "\nI:%04X PC:%04X SP:%X DT:%02X ST:%02X",
		r.I, r.PC, r.SP, r.DelayTimer, r.SoundTimer)
	return b.String()
}

// Registers returns a snapshot of the register file.
func (c *Chip8) Registers() Registers {
	return Registers{
		V:          c.V,
		I:          c.I,
		PC:         c.PC,
		SP:         c.SP,
		DelayTimer: c.DelayTimer,
		SoundTimer: c.SoundTimer,
		Stack:      c.Stack,
	}
}

// ReadMemory returns the byte at addr.
func (c *Chip8) ReadMemory(addr uint16) (byte, error) {
	if err := c.checkRange(int(addr), 1); err != nil {
		return 0, err
	}
	return c.Memory[addr], nil
}

// WriteMemory stores v at addr.
func (c *Chip8) WriteMemory(addr uint16, v byte) error {
	if err := c.checkRange(int(addr), 1); err != nil {
		return err
	}
	c.Memory[addr] = v
	return nil
}

// MemoryRange returns a copy of memory in [start, end).
func (c *Chip8) MemoryRange(start, end int) ([]byte, error) {
	if start > end {
		return nil, fmt.Errorf("invalid memory range [0x%X, 0x%X)", start, end)
	}
	if err := c.checkRange(start, end-start); err != nil {
		return nil, err
	}
	out := make([]byte, end-start)
	copy(out, c.Memory[start:end])
	return out, nil
}

// Keypad returns the state of all keys.
func (c *Chip8) Keypad() [KeyCount]bool {
	return c.keys
}

// Framebuffer returns a copy of the display.
func (c *Chip8) Framebuffer() Frame {
	return c.Display
}

// LastInstruction returns the most recently fetched instruction and the
// address it was fetched from.
func (c *Chip8) LastInstruction() (Instruction, uint16) {
	return c.last, c.lastPC
}

// DumpMemory writes memory in [start, end) as rows of eight bytes, each row
// prefixed with its address.
func (c *Chip8) DumpMemory(w io.Writer, start, end int) error {
	data, err := c.MemoryRange(start, end)
	if err != nil {
		return err
	}

	var b strings.Builder
	for i, v := range data {
		addr := start + i
		if i == 0 || addr%8 == 0 {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%03X:", addr)
		}
		fmt.Fprintf(&b, " %02X", v)
	}
	if len(data) > 0 {
		b.WriteByte('\n')
	}

	_, err = io.WriteString(w, b.String())
	return err
}

// FormatKeypad renders the keypad as "0:0 1:1 ..." with 1 for held keys.
func FormatKeypad(keys [KeyCount]bool) string {
	var b strings.Builder
	for i, down := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%X:%d", i, flag(down))
	}
	return b.String()
}
