package chip8

import "github.com/retroenv/retrogolib/log"

// State is the execution state of the machine.
type State uint8

const (
	// Running machines fetch and execute an instruction per cycle.
	Running State = iota
	// AwaitingKey machines executed FX0A and do nothing until a key is
	// pressed through KeyChange.
	AwaitingKey
	// Halted machines hit a fault. Cycle keeps returning it until Reset.
	Halted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingKey:
		return "awaiting key"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// Status holds the flags a caller acts on after a cycle. Redraw and Sound
// stay set until the caller clears them; Keystroke is cleared by the machine
// when a wait for a key completes.
type Status struct {
	Redraw    bool // framebuffer changed
	Sound     bool // sound timer was nonzero
	Keystroke bool // waiting for a key press
}

// State returns the current execution state.
func (c *Chip8) State() State {
	return c.state
}

// Fault returns the error that halted the machine, or nil.
func (c *Chip8) Fault() error {
	return c.fault
}

// Status returns the pending status flags.
func (c *Chip8) Status() Status {
	return c.status
}

// ClearRedraw acknowledges that the framebuffer has been presented.
func (c *Chip8) ClearRedraw() {
	c.status.Redraw = false
}

// ClearSound acknowledges the sound flag.
func (c *Chip8) ClearSound() {
	c.status.Sound = false
}

// Cycle executes one complete CPU cycle:
// 1. Fetching the two byte opcode at PC
// 2. Advancing PC by 2
// 3. Decoding and executing the opcode
// 4. Updating the timers
//
// While the machine awaits a key Cycle does nothing. A fault (stack or
// memory bounds) halts the machine and is returned by this and every later
// call; timers are not updated on the faulting cycle.
func (c *Chip8) Cycle() error {
	switch c.state {
	case AwaitingKey:
		return nil
	case Halted:
		return c.fault
	}

	pc := c.PC
	if int(pc)+2 > MemorySize {
		c.lastPC = pc
		return c.halt(&AddressError{PC: pc, Addr: int(pc), Len: 2})
	}
	word := uint16(c.Memory[pc])<<8 | uint16(c.Memory[pc+1])
	c.PC += 2

	ins := Decode(word)
	c.last = ins
	c.lastPC = pc

	if c.trace && c.logger != nil {
		c.logger.Debug("exec",
			log.Hex("pc", pc),
			log.Hex("opcode", word),
			log.String("instr", ins.Op.String()))
	}

	if h := handlers[ins.Op]; h != nil {
		if err := h(c, ins); err != nil {
			return c.halt(err)
		}
	}

	c.updateTimers()
	return nil
}

// SetTrace turns the instruction trace on or off. The trace is written to
// the logger passed to WithLogger and does nothing without one.
func (c *Chip8) SetTrace(on bool) {
	c.trace = on
}

// Tracing reports whether the instruction trace is on.
func (c *Chip8) Tracing() bool {
	return c.trace
}

func (c *Chip8) halt(err error) error {
	c.state = Halted
	c.fault = err
	if c.logger != nil {
		c.logger.Error("machine halted", log.Hex("pc", c.lastPC), log.Err(err))
	}
	return err
}

// updateTimers decrements both timers once. A nonzero sound timer raises
// the sound flag.
func (c *Chip8) updateTimers() {
	if c.DelayTimer > 0 {
		c.DelayTimer--
	}
	if c.SoundTimer > 0 {
		c.status.Sound = true
		c.SoundTimer--
	}
}
