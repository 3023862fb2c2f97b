// Package chip8 implements the CHIP-8 virtual machine: 4KB of memory, sixteen
// 8-bit registers, a 16 level call stack, a 64x32 monochrome framebuffer, a
// 16 key hexadecimal keypad and two countdown timers.
//
// The machine has no clock of its own. A caller drives it by calling Cycle at
// whatever cadence it likes, reads Status after each cycle to learn whether
// the framebuffer changed or a tone should sound, and feeds key transitions
// through KeyChange.
package chip8

import (
	"math/rand/v2"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// ProgramStart is where programs are loaded and where execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits in memory.
	MaxProgramSize = MemorySize - ProgramStart

	// RegisterCount is the number of general purpose registers V0-VF.
	RegisterCount = 16

	// StackDepth is the number of nested subroutine calls supported.
	StackDepth = 16

	// KeyCount is the number of keys on the hexadecimal keypad.
	KeyCount = 16

	// FlagRegister is the index of VF, written by arithmetic and draw instructions.
	FlagRegister = 0xF
)

// Chip8 holds the complete machine state. All of it is plain value data
// owned by one aggregate; the zero value is not usable, call New.
type Chip8 struct {
	// VF is also used as a flag register by several instructions
	V [RegisterCount]byte

	Memory [MemorySize]byte

	I  uint16
	PC uint16

	Display Frame

	DelayTimer byte
	SoundTimer byte

	Stack [StackDepth]uint16
	SP    byte // number of return addresses on the stack

	keys [KeyCount]bool

	state   State
	fault   error
	status  Status
	waitReg uint8 // register receiving the key once a wait completes

	last   Instruction
	lastPC uint16

	quirks Quirks
	rng    rand.Source
	logger *log.Logger
	trace  bool
}

// Option configures a machine created by New.
type Option func(*Chip8)

// WithRand sets the source used by the random number instruction.
// Passing a fixed source makes runs reproducible.
func WithRand(src rand.Source) Option {
	return func(c *Chip8) {
		c.rng = src
	}
}

// WithQuirks selects interpretations for instructions whose behavior differs
// between CHIP-8 implementations.
func WithQuirks(q Quirks) Option {
	return func(c *Chip8) {
		c.quirks = q
	}
}

// WithLogger sets the logger receiving faults and, once SetTrace enables
// it, a debug level trace of every executed instruction.
func WithLogger(logger *log.Logger) Option {
	return func(c *Chip8) {
		c.logger = logger
	}
}

// New creates a machine in its power-on state.
func New(opts ...Option) *Chip8 {
	c := &Chip8{
		quirks: DefaultQuirks(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		seed := uint64(time.Now().UnixNano())
		c.rng = rand.NewPCG(seed, seed>>32|1)
	}

	c.Reset()
	return c
}

// Reset restores the power-on state: the font is loaded at the start of
// memory, everything else in memory is zeroed, the registers, stack, timers,
// keypad and status flags are cleared and the program counter points at
// ProgramStart. Options passed to New are kept.
func (c *Chip8) Reset() {
	c.V = [RegisterCount]byte{}
	c.Memory = [MemorySize]byte{}
	c.loadFontset()

	c.I = 0
	c.PC = ProgramStart
	c.Display = Frame{}
	c.DelayTimer = 0
	c.SoundTimer = 0
	c.Stack = [StackDepth]uint16{}
	c.SP = 0
	c.keys = [KeyCount]bool{}

	c.state = Running
	c.fault = nil
	c.status = Status{}
	c.waitReg = 0
	c.last = Instruction{}
	c.lastPC = 0
}

// LoadROM copies a program image into memory starting at ProgramStart.
// An image larger than MaxProgramSize is rejected with a *SizeError and
// memory is left untouched.
func (c *Chip8) LoadROM(image []byte) error {
	if len(image) > MaxProgramSize {
		return &SizeError{Size: len(image), Max: MaxProgramSize}
	}

	copy(c.Memory[ProgramStart:], image)
	return nil
}
