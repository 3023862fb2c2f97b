package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramTooLarge is matched by a *SizeError from LoadROM.
	ErrProgramTooLarge = errors.New("program too large")

	// ErrAddressOverflow is matched by an *AddressError raised when an
	// instruction would read or write past the end of memory.
	ErrAddressOverflow = errors.New("address out of range")

	// ErrStackOverflow is raised by a call with all stack levels in use.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow is raised by a return with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrRegisterIndex is raised when an instruction names a register
	// that does not exist.
	ErrRegisterIndex = errors.New("register index out of range")

	// ErrInvalidKey is returned by KeyChange for keys outside 0x0-0xF.
	ErrInvalidKey = errors.New("invalid key")
)

// SizeError reports a program image that does not fit in memory.
type SizeError struct {
	Size int
	Max  int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("ROM too large: %d bytes (max: %d)", e.Size, e.Max)
}

func (e *SizeError) Unwrap() error {
	return ErrProgramTooLarge
}

// AddressError reports a memory access of Len bytes starting at Addr that
// does not fit in memory. PC is the address of the faulting instruction.
type AddressError struct {
	PC   uint16
	Addr int
	Len  int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("access of %d bytes at 0x%04X out of range (pc 0x%04X)", e.Len, e.Addr, e.PC)
}

func (e *AddressError) Unwrap() error {
	return ErrAddressOverflow
}

// StackError reports a call or return that would leave the stack bounds.
// Err is ErrStackOverflow or ErrStackUnderflow.
type StackError struct {
	PC  uint16
	Err error
}

func (e *StackError) Error() string {
	return fmt.Sprintf("%v (pc 0x%04X)", e.Err, e.PC)
}

func (e *StackError) Unwrap() error {
	return e.Err
}
