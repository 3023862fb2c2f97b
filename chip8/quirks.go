package chip8

// Quirks selects between interpretations of instructions that CHIP-8
// implementations disagree on.
type Quirks struct {
	// ShiftUsesVY makes 8XY6 and 8XYE shift VY into VX, as the original
	// COSMAC VIP interpreter did. When false VX is shifted in place and VY
	// is ignored.
	ShiftUsesVY bool

	// SkipNotEqualLowByte makes 9XY0 compare VX against the register
	// indexed by the whole low byte of the instruction instead of by Y.
	// This reproduces an interpreter that extracted the wrong field; a low
	// byte of 0x10 or more faults with ErrRegisterIndex. Whether any program
	// depends on it is unsettled, keep it off unless a conformance ROM
	// proves otherwise.
	SkipNotEqualLowByte bool
}

// DefaultQuirks returns the interpretation used when none is configured:
// shifts read VY and 9XY0 compares against VY.
func DefaultQuirks() Quirks {
	return Quirks{
		ShiftUsesVY: true,
	}
}
