package cpu

import (
	"fmt"
)

// Mnemonic identifies a decoded instruction.
type Mnemonic int

//go:generate go tool stringer -linecomment -type=Mnemonic
const (
	OP_NOP   = Mnemonic(0)  // nop
	OP_ADD   = Mnemonic(1)  // add
	OP_ADC   = Mnemonic(2)  // adc
	OP_SUB   = Mnemonic(3)  // sub
	OP_SBC   = Mnemonic(4)  // sbc
	OP_AND   = Mnemonic(5)  // and
	OP_EOR   = Mnemonic(6)  // eor
	OP_OR    = Mnemonic(7)  // or
	OP_MOV   = Mnemonic(8)  // mov
	OP_CP    = Mnemonic(9)  // cp
	OP_CPC   = Mnemonic(10) // cpc
	OP_CPSE  = Mnemonic(11) // cpse
	OP_CPI   = Mnemonic(12) // cpi
	OP_SUBI  = Mnemonic(13) // subi
	OP_SBCI  = Mnemonic(14) // sbci
	OP_ORI   = Mnemonic(15) // ori
	OP_ANDI  = Mnemonic(16) // andi
	OP_LDI   = Mnemonic(17) // ldi
	OP_COM   = Mnemonic(18) // com
	OP_NEG   = Mnemonic(19) // neg
	OP_SWAP  = Mnemonic(20) // swap
	OP_INC   = Mnemonic(21) // inc
	OP_DEC   = Mnemonic(22) // dec
	OP_ASR   = Mnemonic(23) // asr
	OP_LSR   = Mnemonic(24) // lsr
	OP_ROR   = Mnemonic(25) // ror
	OP_BSET  = Mnemonic(26) // bset
	OP_BCLR  = Mnemonic(27) // bclr
	OP_BLD   = Mnemonic(28) // bld
	OP_BST   = Mnemonic(29) // bst
	OP_SBRC  = Mnemonic(30) // sbrc
	OP_SBRS  = Mnemonic(31) // sbrs
	OP_BRBS  = Mnemonic(32) // brbs
	OP_BRBC  = Mnemonic(33) // brbc
	OP_RJMP  = Mnemonic(34) // rjmp
	OP_SLEEP = Mnemonic(35) // sleep
	OP_BREAK = Mnemonic(36) // break
)

// Form is the operand layout of an instruction word.
type Form int

//go:generate go tool stringer -linecomment -type=Form
const (
	FORM_NONE   = Form(0) // none
	FORM_RD_RR  = Form(1) // rd,rr
	FORM_RD_IMM = Form(2) // rd,k
	FORM_RD     = Form(3) // rd
	FORM_SREG   = Form(4) // s
	FORM_RD_BIT = Form(5) // rd,b
	FORM_BRANCH = Form(6) // s,k
	FORM_JUMP   = Form(7) // k
)

// rule matches an instruction word when word&Mask == Value.
type rule struct {
	Mask     uint16
	Value    uint16
	Mnemonic Mnemonic
	Form     Form
}

// decodeTable is checked in order, most specific mask first.
var decodeTable = []rule{
	// Whole word
	{0xffff, 0x0000, OP_NOP, FORM_NONE},
	{0xffff, 0x9588, OP_SLEEP, FORM_NONE},
	{0xffff, 0x9598, OP_BREAK, FORM_NONE},

	// 1001 0100 Bsss 1000
	{0xff8f, 0x9408, OP_BSET, FORM_SREG},
	{0xff8f, 0x9488, OP_BCLR, FORM_SREG},

	// 1001 010d dddd oooo
	{0xfe0f, 0x9400, OP_COM, FORM_RD},
	{0xfe0f, 0x9401, OP_NEG, FORM_RD},
	{0xfe0f, 0x9402, OP_SWAP, FORM_RD},
	{0xfe0f, 0x9403, OP_INC, FORM_RD},
	{0xfe0f, 0x9405, OP_ASR, FORM_RD},
	{0xfe0f, 0x9406, OP_LSR, FORM_RD},
	{0xfe0f, 0x9407, OP_ROR, FORM_RD},
	{0xfe0f, 0x940a, OP_DEC, FORM_RD},

	// 1111 1ood dddd 0bbb
	{0xfe08, 0xf800, OP_BLD, FORM_RD_BIT},
	{0xfe08, 0xfa00, OP_BST, FORM_RD_BIT},
	{0xfe08, 0xfc00, OP_SBRC, FORM_RD_BIT},
	{0xfe08, 0xfe00, OP_SBRS, FORM_RD_BIT},

	// 1111 0okk kkkk ksss
	{0xfc00, 0xf000, OP_BRBS, FORM_BRANCH},
	{0xfc00, 0xf400, OP_BRBC, FORM_BRANCH},

	// 00oo oord dddd rrrr
	{0xfc00, 0x0400, OP_CPC, FORM_RD_RR},
	{0xfc00, 0x0800, OP_SBC, FORM_RD_RR},
	{0xfc00, 0x0c00, OP_ADD, FORM_RD_RR},
	{0xfc00, 0x1000, OP_CPSE, FORM_RD_RR},
	{0xfc00, 0x1400, OP_CP, FORM_RD_RR},
	{0xfc00, 0x1800, OP_SUB, FORM_RD_RR},
	{0xfc00, 0x1c00, OP_ADC, FORM_RD_RR},
	{0xfc00, 0x2000, OP_AND, FORM_RD_RR},
	{0xfc00, 0x2400, OP_EOR, FORM_RD_RR},
	{0xfc00, 0x2800, OP_OR, FORM_RD_RR},
	{0xfc00, 0x2c00, OP_MOV, FORM_RD_RR},

	// oooo KKKK dddd KKKK
	{0xf000, 0x3000, OP_CPI, FORM_RD_IMM},
	{0xf000, 0x4000, OP_SBCI, FORM_RD_IMM},
	{0xf000, 0x5000, OP_SUBI, FORM_RD_IMM},
	{0xf000, 0x6000, OP_ORI, FORM_RD_IMM},
	{0xf000, 0x7000, OP_ANDI, FORM_RD_IMM},
	{0xf000, 0xe000, OP_LDI, FORM_RD_IMM},

	// 1100 kkkk kkkk kkkk
	{0xf000, 0xc000, OP_RJMP, FORM_JUMP},
}

// ruleOf returns the decode rule of a mnemonic.
func ruleOf(mn Mnemonic) (r rule, ok bool) {
	for _, r = range decodeTable {
		if r.Mnemonic == mn {
			ok = true
			return
		}
	}

	return
}

// Form returns the operand layout of the mnemonic.
func (mn Mnemonic) Form() Form {
	r, _ := ruleOf(mn)
	return r.Form
}

// Operand fields. AVR splits several fields across non-adjacent bits,
// so each one is reassembled piece by piece.

// fieldRd is the 5-bit destination register, bits 8:4.
func fieldRd(word uint16) uint8 {
	return uint8((word >> 4) & 0x1f)
}

// fieldRr is the 5-bit source register, bit 9 then bits 3:0.
func fieldRr(word uint16) uint8 {
	lo := uint8(word & 0x0f)
	hi := uint8((word >> 9) & 0x01)
	return (hi << 4) | lo
}

// fieldRdHigh is the 4-bit destination register r16-r31, bits 7:4.
func fieldRdHigh(word uint16) uint8 {
	return 16 + uint8((word>>4)&0x0f)
}

// fieldImm8 is the 8-bit immediate, bits 11:8 then bits 3:0.
func fieldImm8(word uint16) uint8 {
	hi := uint8((word >> 8) & 0x0f)
	lo := uint8(word & 0x0f)
	return (hi << 4) | lo
}

// fieldSregBit is the SREG flag index of BSET/BCLR, bits 6:4.
func fieldSregBit(word uint16) uint8 {
	return uint8((word >> 4) & 0x07)
}

// fieldBit is the register or SREG bit index, bits 2:0.
func fieldBit(word uint16) uint8 {
	return uint8(word & 0x07)
}

// fieldBranch is the signed 7-bit word offset of BRBS/BRBC, bits 9:3.
func fieldBranch(word uint16) int16 {
	k := int16((word >> 3) & 0x7f)
	if k&0x40 != 0 {
		k -= 0x80
	}
	return k
}

// fieldJump is the signed 12-bit word offset of RJMP, bits 11:0.
func fieldJump(word uint16) int16 {
	k := int16(word & 0x0fff)
	if k&0x0800 != 0 {
		k -= 0x1000
	}
	return k
}

// Branch offset limits, in words.
const (
	BRANCH_MIN = -64
	BRANCH_MAX = 63
	JUMP_MIN   = -2048
	JUMP_MAX   = 2047
)

// Instruction is a decoded instruction word. Which operand fields are
// meaningful depends on the mnemonic's Form.
type Instruction struct {
	Mnemonic Mnemonic
	Word     uint16
	Rd       uint8 // Destination register, or the tested register of SBRC/SBRS.
	Rr       uint8 // Source register.
	Imm      uint8 // 8-bit immediate.
	Bit      uint8 // Register bit, or SREG flag index.
	Offset   int16 // Relative jump, in words.
}

// Encode assembles the instruction fields into an instruction word.
func (inst Instruction) Encode() (word uint16, err error) {
	r, ok := ruleOf(inst.Mnemonic)
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	word = r.Value

	switch r.Form {
	case FORM_NONE:
	case FORM_RD_RR:
		if inst.Rd >= REGISTER_COUNT {
			err = ErrOperandRd
			return
		}
		if inst.Rr >= REGISTER_COUNT {
			err = ErrOperandRr
			return
		}
		word |= uint16(inst.Rd) << 4
		word |= uint16(inst.Rr&0x10)<<5 | uint16(inst.Rr&0x0f)
	case FORM_RD_IMM:
		if inst.Rd < 16 || inst.Rd >= REGISTER_COUNT {
			err = ErrOperandRd
			return
		}
		word |= uint16(inst.Rd-16) << 4
		word |= uint16(inst.Imm&0xf0)<<4 | uint16(inst.Imm&0x0f)
	case FORM_RD:
		if inst.Rd >= REGISTER_COUNT {
			err = ErrOperandRd
			return
		}
		word |= uint16(inst.Rd) << 4
	case FORM_SREG:
		if inst.Bit > 7 {
			err = ErrOperandBit
			return
		}
		word |= uint16(inst.Bit) << 4
	case FORM_RD_BIT:
		if inst.Rd >= REGISTER_COUNT {
			err = ErrOperandRd
			return
		}
		if inst.Bit > 7 {
			err = ErrOperandBit
			return
		}
		word |= uint16(inst.Rd)<<4 | uint16(inst.Bit)
	case FORM_BRANCH:
		if inst.Bit > 7 {
			err = ErrOperandBit
			return
		}
		if inst.Offset < BRANCH_MIN || inst.Offset > BRANCH_MAX {
			err = ErrOperandOffset
			return
		}
		word |= (uint16(inst.Offset)&0x7f)<<3 | uint16(inst.Bit)
	case FORM_JUMP:
		if inst.Offset < JUMP_MIN || inst.Offset > JUMP_MAX {
			err = ErrOperandOffset
			return
		}
		word |= uint16(inst.Offset) & 0x0fff
	}

	return
}

// String returns the assembly language representation of this instruction.
func (inst Instruction) String() (out string) {
	name := inst.Mnemonic.String()

	switch inst.Mnemonic.Form() {
	case FORM_RD_RR:
		out = fmt.Sprintf("%v r%d, r%d", name, inst.Rd, inst.Rr)
	case FORM_RD_IMM:
		out = fmt.Sprintf("%v r%d, 0x%02x", name, inst.Rd, inst.Imm)
	case FORM_RD:
		out = fmt.Sprintf("%v r%d", name, inst.Rd)
	case FORM_SREG:
		out = fmt.Sprintf("%v %d", name, inst.Bit)
	case FORM_RD_BIT:
		out = fmt.Sprintf("%v r%d, %d", name, inst.Rd, inst.Bit)
	case FORM_BRANCH:
		out = fmt.Sprintf("%v %d, %+d", name, inst.Bit, inst.Offset)
	case FORM_JUMP:
		out = fmt.Sprintf("%v %+d", name, inst.Offset)
	default:
		out = name
	}

	return
}
