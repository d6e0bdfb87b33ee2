package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func execWord(st *state, word uint16, pc int, flash *ProgramMemory) (next int, err error) {
	inst, err := Decode(word)
	if err != nil {
		return
	}

	return st.execute(inst, pc, flash)
}

func TestExecuteAlu(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		word     uint16
		reg      map[int]uint8
		sreg     uint8
		reg_out  map[int]uint8
		sreg_out uint8
	}){
		{"add overflow", 0x0c01, map[int]uint8{0: 0x80, 1: 0x80}, 0, map[int]uint8{0: 0x00}, 0x1b},
		{"add half carry", 0x0c01, map[int]uint8{0: 0x0f, 1: 0x01}, 0, map[int]uint8{0: 0x10}, 0x20},
		{"add ignores carry", 0x0c01, map[int]uint8{0: 0x01, 1: 0x01}, 0x01, map[int]uint8{0: 0x02}, 0x00},
		{"adc r0, r0", 0x1c00, map[int]uint8{0: 0x01}, 0, map[int]uint8{0: 0x02}, 0x00},
		{"adc carry in", 0x1c01, map[int]uint8{0: 0xff, 1: 0x00}, 0x01, map[int]uint8{0: 0x00}, 0x23},
		{"sub borrow", 0x1801, map[int]uint8{0: 0x00, 1: 0x01}, 0, map[int]uint8{0: 0xff}, 0x35},
		{"sub overflow", 0x1801, map[int]uint8{0: 0x80, 1: 0x01}, 0, map[int]uint8{0: 0x7f}, 0x38},
		{"sbc keeps z clear", 0x0801, map[int]uint8{0: 0x05, 1: 0x05}, 0x00, map[int]uint8{0: 0x00}, 0x00},
		{"sbc keeps z set", 0x0801, map[int]uint8{0: 0x05, 1: 0x05}, 0x02, map[int]uint8{0: 0x00}, 0x02},
		{"sbc clears z", 0x0801, map[int]uint8{0: 0x05, 1: 0x04}, 0x02, map[int]uint8{0: 0x01}, 0x00},
		{"cp", 0x1401, map[int]uint8{0: 0x03, 1: 0x03}, 0, map[int]uint8{0: 0x03}, 0x02},
		{"cpc sticky", 0x0401, map[int]uint8{0: 0x03, 1: 0x03}, 0, map[int]uint8{0: 0x03}, 0x00},
		{"cpi r16, 0x10", 0x3100, map[int]uint8{16: 0x10}, 0, map[int]uint8{16: 0x10}, 0x02},
		{"subi r16, 1", 0x5001, map[int]uint8{16: 0x10}, 0, map[int]uint8{16: 0x0f}, 0x20},
		{"sbci r16, 0", 0x4000, map[int]uint8{16: 0x10}, 0x01, map[int]uint8{16: 0x0f}, 0x20},
		{"neg 1", 0x9401, map[int]uint8{0: 0x01}, 0, map[int]uint8{0: 0xff}, 0x35},
		{"neg 0x80", 0x9401, map[int]uint8{0: 0x80}, 0, map[int]uint8{0: 0x80}, 0x0d},
		{"inc overflow", 0x9403, map[int]uint8{0: 0x7f}, 0x01, map[int]uint8{0: 0x80}, 0x0d},
		{"dec overflow", 0x940a, map[int]uint8{0: 0x80}, 0, map[int]uint8{0: 0x7f}, 0x18},
		{"dec zero", 0x940a, map[int]uint8{0: 0x01}, 0, map[int]uint8{0: 0x00}, 0x02},
		{"com", 0x9400, map[int]uint8{0: 0x0f}, 0x08, map[int]uint8{0: 0xf0}, 0x15},
		{"asr", 0x9405, map[int]uint8{0: 0x81}, 0, map[int]uint8{0: 0xc0}, 0x15},
		{"lsr", 0x9406, map[int]uint8{0: 0x01}, 0, map[int]uint8{0: 0x00}, 0x1b},
		{"ror", 0x9407, map[int]uint8{0: 0x02}, 0x01, map[int]uint8{0: 0x81}, 0x0c},
		{"swap", 0x9402, map[int]uint8{0: 0x5a}, 0xaa, map[int]uint8{0: 0xa5}, 0xaa},
		{"and", 0x2001, map[int]uint8{0: 0xf0, 1: 0x0f}, 0x08, map[int]uint8{0: 0x00}, 0x02},
		{"or", 0x2801, map[int]uint8{0: 0xf0, 1: 0x0f}, 0, map[int]uint8{0: 0xff}, 0x14},
		{"eor r0, r0", 0x2400, map[int]uint8{0: 0x55}, 0x01, map[int]uint8{0: 0x00}, 0x03},
		{"mov", 0x2c01, map[int]uint8{0: 0x00, 1: 0x99}, 0xff, map[int]uint8{0: 0x99}, 0xff},
		{"ldi r31, 0xff", 0xefff, nil, 0, map[int]uint8{31: 0xff}, 0x00},
		{"ori r16, 0x80", 0x6800, map[int]uint8{16: 0x01}, 0, map[int]uint8{16: 0x81}, 0x14},
		{"andi r16, 0x0f", 0x700f, map[int]uint8{16: 0xf3}, 0, map[int]uint8{16: 0x03}, 0x00},
		{"bld set", 0xf803, map[int]uint8{0: 0x00}, 0x40, map[int]uint8{0: 0x08}, 0x40},
		{"bld clear", 0xf803, map[int]uint8{0: 0xff}, 0x00, map[int]uint8{0: 0xf7}, 0x00},
		{"bst", 0xfa07, map[int]uint8{0: 0x80}, 0x00, map[int]uint8{0: 0x80}, 0x40},
		{"bset 7", 0x9478, nil, 0x00, nil, 0x80},
		{"bclr 0", 0x9488, nil, 0xff, nil, 0xfe},
		{"sleep", 0x9588, nil, 0x12, nil, 0x12},
	}

	flash := NewProgramMemory(16)

	for _, entry := range table {
		st := state{}
		for n, value := range entry.reg {
			st.Register[n] = value
		}
		st.Sreg.SetByte(entry.sreg)

		next, err := execWord(&st, entry.word, 4, flash)
		assert.NoError(err, entry.name)
		assert.Equal(5, next, entry.name)

		for n, value := range entry.reg_out {
			assert.Equal(value, st.Register[n], "%v: r%d", entry.name, n)
		}
		assert.Equal(StatusRegister(entry.sreg_out).String(), st.Sreg.String(), entry.name)
	}
}

func TestExecuteFlow(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		word  uint16
		reg   uint8 // r0
		sreg  uint8
		after uint16 // word following the instruction
		next  int
	}){
		{"brbs taken", 0xf019, 0, 0x02, 0, 14},
		{"brbs not taken", 0xf019, 0, 0x00, 0, 11},
		{"brbc taken", 0xf7e9, 0, 0x00, 0, 8},
		{"brbc not taken", 0xf7e9, 0, 0x02, 0, 11},
		{"rjmp", 0xc002, 0, 0, 0, 13},
		{"rjmp back", 0xcff5, 0, 0, 0, 0},
		{"cpse equal", 0x1001, 0, 0, 0, 12},
		{"cpse equal over jmp", 0x1001, 0, 0, 0x940c, 13},
		{"cpse not equal", 0x1001, 1, 0, 0, 11},
		{"sbrc clear", 0xfc00, 0x00, 0, 0, 12},
		{"sbrc set", 0xfc00, 0x01, 0, 0, 11},
		{"sbrs set", 0xfe00, 0x01, 0, 0x9200, 13},
		{"sbrs clear", 0xfe00, 0x00, 0, 0, 11},
		{"break", 0x9598, 0, 0, 0, 11},
	}

	for _, entry := range table {
		flash := NewProgramMemory(32)
		assert.NoError(flash.Set(entry.word, 10))
		assert.NoError(flash.Set(entry.after, 11))

		st := state{}
		st.Register[0] = entry.reg
		st.Sreg.SetByte(entry.sreg)

		next, err := execWord(&st, entry.word, 10, flash)
		assert.NoError(err, entry.name)
		assert.Equal(entry.next, next, entry.name)
	}
}

func TestExecuteSkipAtEnd(t *testing.T) {
	assert := assert.New(t)

	// Skipping from the last word lands past the end of flash; the
	// caller rejects it.
	flash := NewProgramMemory(4)
	st := state{}

	next, err := execWord(&st, 0x1000, 3, flash)
	assert.NoError(err)
	assert.Equal(5, next)
}
