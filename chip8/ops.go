package chip8

import "fmt"

// handler executes one decoded instruction. The program counter already
// points at the following instruction when a handler runs.
type handler func(c *Chip8, ins Instruction) error

var handlers = [opCount]handler{
	OpCLS:       (*Chip8).cls,
	OpRET:       (*Chip8).ret,
	OpJP:        (*Chip8).jp,
	OpCALL:      (*Chip8).call,
	OpSEVxByte:  (*Chip8).seVxByte,
	OpSNEVxByte: (*Chip8).sneVxByte,
	OpSEVxVy:    (*Chip8).seVxVy,
	OpLDVxByte:  (*Chip8).ldVxByte,
	OpADDVxByte: (*Chip8).addVxByte,
	OpLDVxVy:    (*Chip8).ldVxVy,
	OpOR:        (*Chip8).or,
	OpAND:       (*Chip8).and,
	OpXOR:       (*Chip8).xor,
	OpADDVxVy:   (*Chip8).addVxVy,
	OpSUB:       (*Chip8).sub,
	OpSHR:       (*Chip8).shr,
	OpSUBN:      (*Chip8).subn,
	OpSHL:       (*Chip8).shl,
	OpSNEVxVy:   (*Chip8).sneVxVy,
	OpLDI:       (*Chip8).ldI,
	OpJPV0:      (*Chip8).jpV0,
	OpRND:       (*Chip8).rnd,
	OpDRW:       (*Chip8).drw,
	OpSKP:       (*Chip8).skp,
	OpSKNP:      (*Chip8).sknp,
	OpLDVxDT:    (*Chip8).ldVxDT,
	OpLDVxK:     (*Chip8).ldVxK,
	OpLDDTVx:    (*Chip8).ldDTVx,
	OpLDSTVx:    (*Chip8).ldSTVx,
	OpADDIVx:    (*Chip8).addIVx,
	OpLDFVx:     (*Chip8).ldFVx,
	OpLDBVx:     (*Chip8).ldBVx,
	OpLDIVx:     (*Chip8).ldIVx,
	OpLDVxI:     (*Chip8).ldVxI,
}

// maxAddressRegister is the largest value I can hold.
const maxAddressRegister = 0xFFFF

// skipIf advances past the next instruction when cond holds.
func (c *Chip8) skipIf(cond bool) {
	if cond {
		c.PC += 2
	}
}

// checkRange fails when n bytes starting at addr do not fit in memory.
func (c *Chip8) checkRange(addr, n int) error {
	if addr < 0 || addr+n > MemorySize {
		return &AddressError{PC: c.lastPC, Addr: addr, Len: n}
	}
	return nil
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// 00E0
func (c *Chip8) cls(Instruction) error {
	c.Display = Frame{}
	c.status.Redraw = true
	return nil
}

// 00EE
func (c *Chip8) ret(Instruction) error {
	if c.SP == 0 {
		return &StackError{PC: c.lastPC, Err: ErrStackUnderflow}
	}
	c.SP--
	c.PC = c.Stack[c.SP]
	return nil
}

// 1NNN
func (c *Chip8) jp(ins Instruction) error {
	c.PC = ins.NNN
	return nil
}

// 2NNN: the pushed address is the one following the call.
func (c *Chip8) call(ins Instruction) error {
	if int(c.SP) >= StackDepth {
		return &StackError{PC: c.lastPC, Err: ErrStackOverflow}
	}
	c.Stack[c.SP] = c.PC
	c.SP++
	c.PC = ins.NNN
	return nil
}

// 3XKK
func (c *Chip8) seVxByte(ins Instruction) error {
	c.skipIf(c.V[ins.X] == ins.KK)
	return nil
}

// 4XKK
func (c *Chip8) sneVxByte(ins Instruction) error {
	c.skipIf(c.V[ins.X] != ins.KK)
	return nil
}

// 5XY0
func (c *Chip8) seVxVy(ins Instruction) error {
	c.skipIf(c.V[ins.X] == c.V[ins.Y])
	return nil
}

// 6XKK
func (c *Chip8) ldVxByte(ins Instruction) error {
	c.V[ins.X] = ins.KK
	return nil
}

// 7XKK does not touch VF.
func (c *Chip8) addVxByte(ins Instruction) error {
	// Wraps at 256. This form never touches the carry flag.
	c.V[ins.X] += ins.KK
	return nil
}

// 8XY0
func (c *Chip8) ldVxVy(ins Instruction) error {
	c.V[ins.X] = c.V[ins.Y]
	return nil
}

// 8XY1
func (c *Chip8) or(ins Instruction) error {
	c.V[ins.X] |= c.V[ins.Y]
	return nil
}

// 8XY2
func (c *Chip8) and(ins Instruction) error {
	c.V[ins.X] &= c.V[ins.Y]
	return nil
}

// 8XY3
func (c *Chip8) xor(ins Instruction) error {
	c.V[ins.X] ^= c.V[ins.Y]
	return nil
}

// 8XY4: operands are read first, VF is written before VX since X may be F.
func (c *Chip8) addVxVy(ins Instruction) error {
	// Add in 16 bits so the carry out of bit 7 is visible.
	sum := uint16(c.V[ins.X]) + uint16(c.V[ins.Y])
	c.V[FlagRegister] = flag(sum > 0xFF)
	// Writing VX last matters when X is F: the result wins over the flag.
	c.V[ins.X] = byte(sum)
	return nil
}

// 8XY5: VF = 1 when no borrow occurs.
func (c *Chip8) sub(ins Instruction) error {
	vx, vy := c.V[ins.X], c.V[ins.Y]
	// VF is NOT borrow, so equal operands set it.
	c.V[FlagRegister] = flag(vx >= vy)
	c.V[ins.X] = vx - vy // byte arithmetic wraps on borrow
	return nil
}

// 8XY7: VX = VY - VX, VF = 1 when no borrow occurs.
func (c *Chip8) subn(ins Instruction) error {
	vx, vy := c.V[ins.X], c.V[ins.Y]
	// Same as SUB with the operands swapped.
	c.V[FlagRegister] = flag(vy >= vx)
	c.V[ins.X] = vy - vx
	return nil
}

// shiftSource returns the register a shift reads from.
func (c *Chip8) shiftSource(ins Instruction) byte {
	if c.quirks.ShiftUsesVY {
		return c.V[ins.Y]
	}
	return c.V[ins.X]
}

// 8XY6: VF = bit shifted out.
func (c *Chip8) shr(ins Instruction) error {
	src := c.shiftSource(ins)
	c.V[FlagRegister] = src & 0x01 // bit shifted out
	c.V[ins.X] = src >> 1
	return nil
}

// 8XYE: VF = bit shifted out.
func (c *Chip8) shl(ins Instruction) error {
	src := c.shiftSource(ins)
	c.V[FlagRegister] = src >> 7
	c.V[ins.X] = src << 1
	return nil
}

// 9XY0
func (c *Chip8) sneVxVy(ins Instruction) error {
	other := ins.Y
	if c.quirks.SkipNotEqualLowByte {
		if ins.KK >= RegisterCount {
			return fmt.Errorf("%w: V%d (pc 0x%04X)", ErrRegisterIndex, ins.KK, c.lastPC)
		}
		other = ins.KK
	}
	c.skipIf(c.V[ins.X] != c.V[other])
	return nil
}

// ANNN
func (c *Chip8) ldI(ins Instruction) error {
	c.I = ins.NNN
	return nil
}

// BNNN
func (c *Chip8) jpV0(ins Instruction) error {
	c.PC = ins.NNN + uint16(c.V[0])
	return nil
}

// CXKK
func (c *Chip8) rnd(ins Instruction) error {
	c.V[ins.X] = byte(c.rng.Uint64()) & ins.KK
	return nil
}

// DXYN draws the N byte sprite at I to (VX, VY). Pixels are XORed onto the
// framebuffer with wraparound at the edges; VF reports whether any set pixel
// was turned off.
func (c *Chip8) drw(ins Instruction) error {
	height := int(ins.N)
	if err := c.checkRange(int(c.I), height); err != nil {
		return err
	}

	// Coordinates are not reduced here, flip wraps each pixel onto the
	// display so a sprite crossing an edge continues on the opposite side.
	x, y := int(c.V[ins.X]), int(c.V[ins.Y])
	c.V[FlagRegister] = 0
	for row := 0; row < height; row++ {
		sprite := c.Memory[int(c.I)+row]
		for col := 0; col < 8; col++ {
			// Bit 7 is the leftmost pixel.
			if sprite&(0x80>>col) == 0 {
				continue
			}
			// A set pixel turned off is a collision.
			if c.Display.flip(x+col, y+row) {
				c.V[FlagRegister] = 1
			}
		}
	}

	c.status.Redraw = true
	return nil
}

// EX9E
func (c *Chip8) skp(ins Instruction) error {
	c.skipIf(c.IsPressed(c.V[ins.X] & 0x0F))
	return nil
}

// EXA1
func (c *Chip8) sknp(ins Instruction) error {
	c.skipIf(!c.IsPressed(c.V[ins.X] & 0x0F))
	return nil
}

// FX07
func (c *Chip8) ldVxDT(ins Instruction) error {
	c.V[ins.X] = c.DelayTimer
	return nil
}

// FX0A only latches the wait. VX is written by KeyChange once a key goes down.
func (c *Chip8) ldVxK(ins Instruction) error {
	c.state = AwaitingKey
	c.waitReg = ins.X
	c.status.Keystroke = true
	return nil
}

// FX15
func (c *Chip8) ldDTVx(ins Instruction) error {
	c.DelayTimer = c.V[ins.X]
	return nil
}

// FX18
func (c *Chip8) ldSTVx(ins Instruction) error {
	c.SoundTimer = c.V[ins.X]
	return nil
}

// FX1E adds VX to I. I is 16 bits wide; a sum that does not fit would
// wrap around to the font area, so it faults and I keeps its old value.
// Sums between MemorySize and 0xFFFF are allowed, every later access
// through I is range checked anyway.
func (c *Chip8) addIVx(ins Instruction) error {
	next := int(c.I) + int(c.V[ins.X])
	if next > maxAddressRegister {
		return &AddressError{PC: c.lastPC, Addr: next, Len: 0}
	}
	c.I = uint16(next)
	return nil
}

// FX29
func (c *Chip8) ldFVx(ins Instruction) error {
	c.I = FontStart + uint16(c.V[ins.X])*FontGlyphSize
	return nil
}

// FX33 stores hundreds, tens and units of VX at I, I+1 and I+2.
func (c *Chip8) ldBVx(ins Instruction) error {
	if err := c.checkRange(int(c.I), 3); err != nil {
		return err
	}
	v := c.V[ins.X]
	c.Memory[c.I] = v / 100
	c.Memory[c.I+1] = (v / 10) % 10
	c.Memory[c.I+2] = v % 10
	return nil
}

// FX55 stores V0 through VX at I, then advances I past them. The range
// check bounds I+n by MemorySize, so the advance cannot overflow.
func (c *Chip8) ldIVx(ins Instruction) error {
	n := int(ins.X) + 1
	if err := c.checkRange(int(c.I), n); err != nil {
		return err
	}
	copy(c.Memory[c.I:], c.V[:n])
	c.I += uint16(n)
	return nil
}

// FX65 reads V0 through VX from I, then advances I past them.
func (c *Chip8) ldVxI(ins Instruction) error {
	n := int(ins.X) + 1
	if err := c.checkRange(int(c.I), n); err != nil {
		return err
	}
	copy(c.V[:n], c.Memory[c.I:])
	c.I += uint16(n)
	return nil
}
