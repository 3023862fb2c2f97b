// Package disasm renders CHIP-8 instruction words as assembly text using the
// retrogolib CHIP-8 opcode table.
package disasm

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Lookup returns the instruction matching the word, or nil when the word is
// not a known instruction.
func Lookup(word uint16) *chip8.Instruction {
	opcodes := chip8.Opcodes[int(word>>12)]
	for _, op := range opcodes {
		if op.Info.Mask&word == op.Info.Value {
			return op.Instruction
		}
	}
	return nil
}

// Mnemonic formats the word as an instruction with its parameters, for
// example "drw V1, V2, $5". Unknown words are rendered as a data word.
func Mnemonic(word uint16) string {
	ins := Lookup(word)
	if ins == nil {
		return fmt.Sprintf("dw $%04X", word)
	}
	if params := formatParams(ins, word); params != "" {
		return ins.Name + " " + params
	}
	return ins.Name
}

// formatParams formats the instruction parameters for the given word.
func formatParams(ins *chip8.Instruction, word uint16) string {
	x := (word & 0x0F00) >> 8
	y := (word & 0x00F0) >> 4
	kk := word & 0x00FF
	nnn := word & 0x0FFF

	switch ins {
	case chip8.ClsInst, chip8.RetInst:
		return ""
	case chip8.JpInst:
		if word&0xF000 == 0xB000 {
			return fmt.Sprintf("V0, $%03X", nnn)
		}
		return fmt.Sprintf("$%03X", nnn)
	case chip8.CallInst:
		return fmt.Sprintf("$%03X", nnn)
	case chip8.SeInst, chip8.SneInst:
		switch word & 0xF000 {
		case 0x3000, 0x4000:
			return fmt.Sprintf("V%X, $%02X", x, kk)
		default:
			return fmt.Sprintf("V%X, V%X", x, y)
		}
	case chip8.LdInst:
		return formatLoad(word, x, y, kk, nnn)
	case chip8.AddInst:
		switch word & 0xF000 {
		case 0x7000:
			return fmt.Sprintf("V%X, $%02X", x, kk)
		case 0x8000:
			return fmt.Sprintf("V%X, V%X", x, y)
		default:
			return fmt.Sprintf("I, V%X", x)
		}
	case chip8.OrInst, chip8.AndInst, chip8.XorInst, chip8.SubInst, chip8.SubnInst:
		return fmt.Sprintf("V%X, V%X", x, y)
	case chip8.ShrInst, chip8.ShlInst:
		return fmt.Sprintf("V%X", x)
	case chip8.RndInst:
		return fmt.Sprintf("V%X, $%02X", x, kk)
	case chip8.DrwInst:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, word&0x000F)
	case chip8.SkpInst, chip8.SknpInst:
		return fmt.Sprintf("V%X", x)
	}
	return ""
}

// formatLoad covers the many LD forms.
func formatLoad(word, x, y, kk, nnn uint16) string {
	switch word & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, kk)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xA000:
		return fmt.Sprintf("I, $%03X", nnn)
	}

	switch kk {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}

// Listing disassembles data loaded at base, one instruction per line
// prefixed with its address. A trailing odd byte is listed as data.
func Listing(base uint16, data []byte) []string {
	lines := make([]string, 0, len(data)/2+1)
	for i := 0; i+1 < len(data); i += 2 {
		word := uint16(data[i])<<8 | uint16(data[i+1])
		lines = append(lines, fmt.Sprintf("%03X  %04X  %s", int(base)+i, word, Mnemonic(word)))
	}
	if len(data)%2 == 1 {
		i := len(data) - 1
		lines = append(lines, fmt.Sprintf("%03X  %02X    db $%02X", int(base)+i, data[i], data[i]))
	}
	return lines
}

// Format joins a listing into one block of text.
func Format(base uint16, data []byte) string {
	return strings.Join(Listing(base, data), "\n")
}
