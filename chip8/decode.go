package chip8

// Op identifies one of the 35 operations of the instruction set.
type Op uint8

// Operations in instruction set order. OpNone is returned for bit patterns
// that map to no operation; the engine skips them silently.
const (
	OpNone     Op = iota
	OpCLS         // 00E0
	OpRET         // 00EE
	OpJP          // 1NNN
	OpCALL        // 2NNN
	OpSEVxByte    // 3XKK
	OpSNEVxByte   // 4XKK
	OpSEVxVy      // 5XY_
	OpLDVxByte    // 6XKK
	OpADDVxByte   // 7XKK
	OpLDVxVy      // 8XY0
	OpOR          // 8XY1
	OpAND         // 8XY2
	OpXOR         // 8XY3
	OpADDVxVy     // 8XY4
	OpSUB         // 8XY5
	OpSHR         // 8XY6
	OpSUBN        // 8XY7
	OpSHL         // 8XYE
	OpSNEVxVy     // 9XY_
	OpLDI         // ANNN
	OpJPV0        // BNNN
	OpRND         // CXKK
	OpDRW         // DXYN
	OpSKP         // EX9E
	OpSKNP        // EXA1
	OpLDVxDT      // FX07
	OpLDVxK       // FX0A
	OpLDDTVx      // FX15
	OpLDSTVx      // FX18
	OpADDIVx      // FX1E
	OpLDFVx       // FX29
	OpLDBVx       // FX33
	OpLDIVx       // FX55
	OpLDVxI       // FX65

	opCount
)

var opNames = [opCount]string{
	OpNone:      "NONE",
	OpCLS:       "CLS",
	OpRET:       "RET",
	OpJP:        "JP_ADDR",
	OpCALL:      "CALL_ADDR",
	OpSEVxByte:  "SE_VX_BYTE",
	OpSNEVxByte: "SNE_VX_BYTE",
	OpSEVxVy:    "SE_VX_VY",
	OpLDVxByte:  "LD_VX_BYTE",
	OpADDVxByte: "ADD_VX_BYTE",
	OpLDVxVy:    "LD_VX_VY",
	OpOR:        "OR_VX_VY",
	OpAND:       "AND_VX_VY",
	OpXOR:       "XOR_VX_VY",
	OpADDVxVy:   "ADD_VX_VY",
	OpSUB:       "SUB_VX_VY",
	OpSHR:       "SHR_VX_VY",
	OpSUBN:      "SUBN_VX_VY",
	OpSHL:       "SHL_VX_VY",
	OpSNEVxVy:   "SNE_VX_VY",
	OpLDI:       "LD_I_ADDR",
	OpJPV0:      "JP_V0_ADDR",
	OpRND:       "RND_VX_BYTE",
	OpDRW:       "DRW_VX_VY_NIBBLE",
	OpSKP:       "SKP_VX",
	OpSKNP:      "SKNP_VX",
	OpLDVxDT:    "LD_VX_DT",
	OpLDVxK:     "LD_VX_K",
	OpLDDTVx:    "LD_DT_VX",
	OpLDSTVx:    "LD_ST_VX",
	OpADDIVx:    "ADD_I_VX",
	OpLDFVx:     "LD_F_VX",
	OpLDBVx:     "LD_B_VX",
	OpLDIVx:     "LD_AT_I_VX",
	OpLDVxI:     "LD_VX_AT_I",
}

func (o Op) String() string {
	if o >= opCount {
		return opNames[OpNone]
	}
	return opNames[o]
}

// Instruction is a decoded instruction word with its operand fields
// extracted. Handlers read their operands from here and nowhere else.
type Instruction struct {
	Op   Op
	Word uint16

	X   uint8  // bits 8-11, register index
	Y   uint8  // bits 4-7, register index
	N   uint8  // bits 0-3
	KK  byte   // bits 0-7, immediate byte
	NNN uint16 // bits 0-11, address
}

// Top nibbles whose operation is fully determined without looking further.
var primaryOps = [16]Op{
	0x1: OpJP,
	0x2: OpCALL,
	0x3: OpSEVxByte,
	0x4: OpSNEVxByte,
	0x5: OpSEVxVy,
	0x6: OpLDVxByte,
	0x7: OpADDVxByte,
	0x9: OpSNEVxVy,
	0xA: OpLDI,
	0xB: OpJPV0,
	0xC: OpRND,
	0xD: OpDRW,
}

// 0x0___ by low byte.
var systemOps = map[byte]Op{
	0xE0: OpCLS,
	0xEE: OpRET,
}

// 0x8___ by low nibble.
var aluOps = [16]Op{
	0x0: OpLDVxVy,
	0x1: OpOR,
	0x2: OpAND,
	0x3: OpXOR,
	0x4: OpADDVxVy,
	0x5: OpSUB,
	0x6: OpSHR,
	0x7: OpSUBN,
	0xE: OpSHL,
}

// 0xE___ by low byte.
var keyOps = map[byte]Op{
	0x9E: OpSKP,
	0xA1: OpSKNP,
}

// 0xF___ by low byte.
var miscOps = map[byte]Op{
	0x07: OpLDVxDT,
	0x0A: OpLDVxK,
	0x15: OpLDDTVx,
	0x18: OpLDSTVx,
	0x1E: OpADDIVx,
	0x29: OpLDFVx,
	0x33: OpLDBVx,
	0x55: OpLDIVx,
	0x65: OpLDVxI,
}

// Decode splits an instruction word into its fields and classifies it.
// It is pure and total: unmapped words decode to OpNone.
func Decode(word uint16) Instruction {
	return Instruction{
		Op:   classify(word),
		Word: word,
		X:    uint8(word>>8) & 0x0F,
		Y:    uint8(word>>4) & 0x0F,
		N:    uint8(word) & 0x0F,
		KK:   byte(word),
		NNN:  word & 0x0FFF,
	}
}

func classify(word uint16) Op {
	switch word >> 12 {
	case 0x0:
		return systemOps[byte(word)]
	case 0x8:
		return aluOps[word&0x000F]
	case 0xE:
		return keyOps[byte(word)]
	case 0xF:
		return miscOps[byte(word)]
	default:
		return primaryOps[word>>12]
	}
}
