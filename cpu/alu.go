package cpu

// state is the part of the CPU an instruction may modify, other than
// the program counter. It is copied before execution so that a failed
// step can be discarded.
type state struct {
	Register RegisterFile
	Sreg     StatusRegister
}

// execute applies inst, fetched from pc, and returns the next program counter.
func (st *state) execute(inst Instruction, pc int, flash *ProgramMemory) (next int, err error) {
	next = pc + 1

	reg := &st.Register
	sr := &st.Sreg

	rd := reg[inst.Rd&0x1f]
	rr := reg[inst.Rr&0x1f]

	switch inst.Mnemonic {
	case OP_NOP, OP_SLEEP, OP_BREAK:
		// pass
	case OP_ADD:
		reg[inst.Rd] = st.add(rd, rr, 0)
	case OP_ADC:
		reg[inst.Rd] = st.add(rd, rr, sr.carry())
	case OP_SUB:
		reg[inst.Rd] = st.sub(rd, rr, 0, false)
	case OP_SBC:
		reg[inst.Rd] = st.sub(rd, rr, sr.carry(), true)
	case OP_SUBI:
		reg[inst.Rd] = st.sub(rd, inst.Imm, 0, false)
	case OP_SBCI:
		reg[inst.Rd] = st.sub(rd, inst.Imm, sr.carry(), true)
	case OP_CP:
		st.sub(rd, rr, 0, false)
	case OP_CPC:
		st.sub(rd, rr, sr.carry(), true)
	case OP_CPI:
		st.sub(rd, inst.Imm, 0, false)
	case OP_AND:
		reg[inst.Rd] = st.logic(rd & rr)
	case OP_ANDI:
		reg[inst.Rd] = st.logic(rd & inst.Imm)
	case OP_OR:
		reg[inst.Rd] = st.logic(rd | rr)
	case OP_ORI:
		reg[inst.Rd] = st.logic(rd | inst.Imm)
	case OP_EOR:
		reg[inst.Rd] = st.logic(rd ^ rr)
	case OP_MOV:
		reg[inst.Rd] = rr
	case OP_LDI:
		reg[inst.Rd] = inst.Imm
	case OP_COM:
		reg[inst.Rd] = st.logic(^rd)
		sr.SetFlag(FLAG_C, true)
	case OP_NEG:
		reg[inst.Rd] = st.sub(0, rd, 0, false)
	case OP_SWAP:
		reg[inst.Rd] = (rd << 4) | (rd >> 4)
	case OP_INC:
		result := rd + 1
		sr.SetFlag(FLAG_V, rd == 0x7f)
		st.setNZS(result)
		reg[inst.Rd] = result
	case OP_DEC:
		result := rd - 1
		sr.SetFlag(FLAG_V, rd == 0x80)
		st.setNZS(result)
		reg[inst.Rd] = result
	case OP_ASR:
		reg[inst.Rd] = st.shiftRight(rd, rd&0x80)
	case OP_LSR:
		reg[inst.Rd] = st.shiftRight(rd, 0)
	case OP_ROR:
		reg[inst.Rd] = st.shiftRight(rd, sr.carry()<<7)
	case OP_BSET:
		sr.SetFlag(Flag(inst.Bit), true)
	case OP_BCLR:
		sr.SetFlag(Flag(inst.Bit), false)
	case OP_BLD:
		mask := uint8(1) << (inst.Bit & 7)
		if sr.Flag(FLAG_T) {
			reg[inst.Rd] = rd | mask
		} else {
			reg[inst.Rd] = rd &^ mask
		}
	case OP_BST:
		sr.SetFlag(FLAG_T, rd&(1<<(inst.Bit&7)) != 0)
	case OP_BRBS:
		if sr.Flag(Flag(inst.Bit)) {
			next += int(inst.Offset)
		}
	case OP_BRBC:
		if !sr.Flag(Flag(inst.Bit)) {
			next += int(inst.Offset)
		}
	case OP_RJMP:
		next += int(inst.Offset)
	case OP_CPSE:
		if rd == rr {
			next = skip(pc, flash)
		}
	case OP_SBRC:
		if rd&(1<<(inst.Bit&7)) == 0 {
			next = skip(pc, flash)
		}
	case OP_SBRS:
		if rd&(1<<(inst.Bit&7)) != 0 {
			next = skip(pc, flash)
		}
	default:
		err = ErrUnknownInstruction(inst.Word)
		return
	}

	return
}

// skip returns the program counter after skipping the instruction that
// follows pc.
func skip(pc int, flash *ProgramMemory) (next int) {
	next = pc + 2

	word, err := flash.Get(pc + 1)
	if err == nil && IsTwoWord(word) {
		next++
	}

	return
}

// setNZS updates N, Z and S from result. V must already be current.
func (st *state) setNZS(result uint8) {
	sr := &st.Sreg

	n := result&0x80 != 0
	sr.SetFlag(FLAG_N, n)
	sr.SetFlag(FLAG_Z, result == 0)
	sr.SetFlag(FLAG_S, n != sr.Flag(FLAG_V))
}

// add returns rd + rr + carry, updating H, S, V, N, Z and C.
func (st *state) add(rd, rr, carry uint8) (result uint8) {
	sr := &st.Sreg

	sum := uint16(rd) + uint16(rr) + uint16(carry)
	result = uint8(sum)

	sr.SetFlag(FLAG_H, (rd&0x0f)+(rr&0x0f)+carry > 0x0f)
	sr.SetFlag(FLAG_V, ^(rd^rr)&(rd^result)&0x80 != 0)
	sr.SetFlag(FLAG_C, sum > 0xff)
	st.setNZS(result)

	return
}

// sub returns rd - rr - carry, updating H, S, V, N, Z and C.
// When sticky is set, Z can only be cleared, never set.
func (st *state) sub(rd, rr, carry uint8, sticky bool) (result uint8) {
	sr := &st.Sreg

	zero := sr.Flag(FLAG_Z)

	diff := int(rd) - int(rr) - int(carry)
	result = uint8(diff)

	sr.SetFlag(FLAG_H, int(rd&0x0f)-int(rr&0x0f)-int(carry) < 0)
	sr.SetFlag(FLAG_V, (rd^rr)&(rd^result)&0x80 != 0)
	sr.SetFlag(FLAG_C, diff < 0)
	st.setNZS(result)

	if sticky {
		sr.SetFlag(FLAG_Z, result == 0 && zero)
	}

	return
}

// logic clears V and updates S, N and Z from result.
func (st *state) logic(result uint8) uint8 {
	st.Sreg.SetFlag(FLAG_V, false)
	st.setNZS(result)
	return result
}

// shiftRight returns rd shifted right one bit with top as the new bit 7,
// updating S, V, N, Z and C.
func (st *state) shiftRight(rd, top uint8) (result uint8) {
	sr := &st.Sreg

	result = (rd >> 1) | top

	c := rd&0x01 != 0
	n := result&0x80 != 0
	sr.SetFlag(FLAG_C, c)
	sr.SetFlag(FLAG_V, n != c)
	st.setNZS(result)

	return
}
