package cpu

// Decode classifies an instruction word and extracts its operands.
// Words that match no rule fail with ErrUnknownInstruction.
func Decode(word uint16) (inst Instruction, err error) {
	for _, r := range decodeTable {
		if word&r.Mask != r.Value {
			continue
		}

		inst = Instruction{Mnemonic: r.Mnemonic, Word: word}

		switch r.Form {
		case FORM_NONE:
		case FORM_RD_RR:
			inst.Rd = fieldRd(word)
			inst.Rr = fieldRr(word)
		case FORM_RD_IMM:
			inst.Rd = fieldRdHigh(word)
			inst.Imm = fieldImm8(word)
		case FORM_RD:
			inst.Rd = fieldRd(word)
		case FORM_SREG:
			inst.Bit = fieldSregBit(word)
		case FORM_RD_BIT:
			inst.Rd = fieldRd(word)
			inst.Bit = fieldBit(word)
		case FORM_BRANCH:
			inst.Bit = fieldBit(word)
			inst.Offset = fieldBranch(word)
		case FORM_JUMP:
			inst.Offset = fieldJump(word)
		}

		return
	}

	err = ErrUnknownInstruction(word)
	return
}

// twoWordTable matches the first word of the 32-bit AVR instructions.
var twoWordTable = []rule{
	{0xfe0e, 0x940c, 0, FORM_NONE}, // jmp
	{0xfe0e, 0x940e, 0, FORM_NONE}, // call
	{0xfe0f, 0x9000, 0, FORM_NONE}, // lds
	{0xfe0f, 0x9200, 0, FORM_NONE}, // sts
}

// IsTwoWord returns true if word starts a 32-bit instruction, which the
// skip instructions must step over as a unit.
func IsTwoWord(word uint16) bool {
	for _, r := range twoWordTable {
		if word&r.Mask == r.Value {
			return true
		}
	}

	return false
}
