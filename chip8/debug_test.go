package chip8

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
)

func TestRegistersSnapshot(t *testing.T) {
	c := newMachine(t, 0x6A42, 0xA321, 0x2300)
	step(t, c, 3)

	regs := c.Registers()
	assert.Equal(t, byte(0x42), regs.V[0xA])
	assert.Equal(t, uint16(0x321), regs.I)
	assert.Equal(t, uint16(0x300), regs.PC)
	assert.Equal(t, byte(1), regs.SP)
	assert.Equal(t, uint16(0x206), regs.Stack[0])

	// The snapshot is a copy.
	regs.V[0xA] = 0
	assert.Equal(t, byte(0x42), c.V[0xA])
}

func TestRegistersString(t *testing.T) {
	regs := Registers{I: 0x123, PC: 0x204, SP: 2, DelayTimer: 0x10, SoundTimer: 0x01}
	regs.V[0] = 0xAB
	regs.V[0xF] = 0x01

	want := "V0:AB V1:00 V2:00 V3:00 V4:00 V5:00 V6:00 V7:00\n" +
		"V8:00 V9:00 VA:00 VB:00 VC:00 VD:00 VE:00 VF:01\n" +
		"I:0123 PC:0204 SP:2 DT:10 ST:01"
	assert.Equal(t, want, regs.String())
}

func TestMemoryRange(t *testing.T) {
	c := newMachine(t, 0x0102, 0x0304)

	data, err := c.MemoryRange(0x200, 0x204)
	assert.NoError(t, err)
	if diff := cmp.Diff([]byte{1, 2, 3, 4}, data); diff != "" {
		t.Errorf("range: (-want, +got)\n%s", diff)
	}

	data[0] = 0xFF
	assert.Equal(t, byte(1), c.Memory[0x200])

	_, err = c.MemoryRange(0xFF0, 0x1001)
	assert.True(t, errors.Is(err, ErrAddressOverflow))

	_, err = c.MemoryRange(0x204, 0x200)
	assert.Error(t, err)
}

func TestDumpMemory(t *testing.T) {
	c := New()
	assert.NoError(t, c.LoadROM([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))

	var buf bytes.Buffer
	assert.NoError(t, c.DumpMemory(&buf, 0x200, 0x20A))
	assert.Equal(t, "200: 00 01 02 03 04 05 06 07\n208: 08 09\n", buf.String())

	buf.Reset()
	assert.NoError(t, c.DumpMemory(&buf, 0x203, 0x209))
	assert.Equal(t, "203: 03 04 05 06 07\n208: 08\n", buf.String())
}

func TestKeypadSnapshot(t *testing.T) {
	c := New()
	assert.NoError(t, c.KeyChange(0x1, true))
	assert.NoError(t, c.KeyChange(0xF, true))

	keys := c.Keypad()
	assert.True(t, keys[0x1])
	assert.True(t, keys[0xF])
	assert.False(t, keys[0x2])

	s := FormatKeypad(keys)
	assert.True(t, strings.HasPrefix(s, "0:0 1:1 2:0"))
	assert.True(t, strings.HasSuffix(s, "E:0 F:1"))
}

func TestFramebuffer(t *testing.T) {
	c := newMachine(t, 0xA000, 0xD005) // draw glyph 0 at 0,0
	step(t, c, 2)

	fb := c.Framebuffer()
	for x := 0; x < 4; x++ {
		assert.Equal(t, byte(1), fb.Pixel(x, 0))
	}
	assert.Equal(t, byte(0), fb.Pixel(1, 1))
	assert.Equal(t, byte(1), fb.Pixel(64, 32)) // wraps to 0,0

	fb[0] = 0
	assert.Equal(t, byte(1), c.Display[0])
}

func TestReadWriteMemory(t *testing.T) {
	c := New()

	assert.NoError(t, c.WriteMemory(0x300, 0xAB))
	v, err := c.ReadMemory(0x300)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xAB), v)

	v, err = c.ReadMemory(0x0000)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xF0), v) // first row of glyph 0

	_, err = c.ReadMemory(MemorySize)
	assert.True(t, errors.Is(err, ErrAddressOverflow))
	assert.True(t, errors.Is(c.WriteMemory(0xFFFF, 1), ErrAddressOverflow))
	assert.Equal(t, Running, c.State())
}
