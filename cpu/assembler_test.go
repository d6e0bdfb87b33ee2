package cpu

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(asm *Assembler, program []string) (*Program, error) {
	return asm.Parse(strings.NewReader(strings.Join(program, "\n")))
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal(fmt.Sprintf("%v", BRANCH_MIN), asm.Equate["BRANCH_MIN"])
	assert.Equal(fmt.Sprintf("%v", BRANCH_MAX), asm.Equate["BRANCH_MAX"])
	assert.Equal(fmt.Sprintf("%v", JUMP_MIN), asm.Equate["JUMP_MIN"])
	assert.Equal(fmt.Sprintf("%v", JUMP_MAX), asm.Equate["JUMP_MAX"])
}

func opEqual(t *testing.T, expected, opcodes []Opcode) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(opcodes))
	if len(expected) == len(opcodes) {
		for n := range len(expected) {
			assert.Equal(expected[n], opcodes[n])
		}
	}
}

func TestAssemblerInstructions(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		code uint16
	}){
		{"nop", 0x0000},
		{"sleep", 0x9588},
		{"break", 0x9598},
		{"ADD R0, R1", 0x0c01},
		{"adc r0, r0", 0x1c00},
		{"mov r0, r31", 0x2e0f},
		{"cpi r31, -1", 0x3fff},
		{"ldi r16, 'A'", 0xe401},
		{"ldi r16, '\\n'", 0xe00a},
		{"swap r5", 0x9452},
		{"bst r0, 7", 0xfa07},
		{"sbrs r31, 0", 0xfff0},
		{"bset 7", 0x9478},
		{"bclr 0", 0x9488},
		{"brbs 1, +3", 0xf019},
		{"rjmp 0", 0xc000},
		{"rjmp -1", 0xcfff},
		{"sec", 0x9408},
		{"cli", 0x94f8},
		{"set", 0x9468},
		{"breq +1", 0xf009},
		{"brne -1", 0xf7f9},
		{"brcc 0", 0xf400},
		{"lsl r1", 0x0c11},
		{"rol r17", 0x1f11},
		{"tst r2", 0x2022},
		{"clr r3", 0x2433},
		{"ser r20", 0xef4f},
		{"sbr r16, 0x03", 0x6003},
		{"cbr r16, 0x0f", 0x7f00},
		{"cbr r16, 0x7f", 0x7800},
		{"cbr r16, 0x80", 0x770f},
		{"cbr r16, 0xff", 0x7000},
		{"cbr r31, 0", 0x7fff},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := assemble(asm, []string{entry.line})
		if !assert.NoError(err, entry.line) {
			continue
		}
		assert.Equal([]uint16{entry.code}, prog.Binary(), entry.line)
	}
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"start:",
		"  ldi r16, 3      ; counter",
		"loop: dec r16",
		"  brne loop",
		"  rjmp done",
		"  nop",
		"done: break",
	}

	prog, err := assemble(asm, program)
	assert.NoError(err)

	expected := []Opcode{
		{2, 0, []string{"ldi", "r16", "3"}, []uint16{0xe003}, ""},
		{3, 1, []string{"dec", "r16"}, []uint16{0x950a}, ""},
		{4, 2, []string{"brne", "loop"}, []uint16{0xf7f1}, "loop"},
		{5, 3, []string{"rjmp", "done"}, []uint16{0xc001}, "done"},
		{6, 4, []string{"nop"}, []uint16{0x0000}, ""},
		{7, 5, []string{"break"}, []uint16{0x9598}, ""},
	}

	opEqual(t, expected, prog.Opcodes)

	assert.Equal(0, asm.Label["start"])
	assert.Equal(1, asm.Label["loop"])
	assert.Equal(5, asm.Label["done"])
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".macro DELAY reg count",
		"  ldi reg, count",
		"@wait:",
		"  dec reg",
		"  brne @wait",
		".endm",
		"  DELAY r20 2",
		"  DELAY r21 5",
		"  break",
	}

	prog, err := assemble(asm, program)
	assert.NoError(err)

	assert.Equal([]uint16{
		0xe042, 0x954a, 0xf7f1,
		0xe055, 0x955a, 0xf7f1,
		0x9598,
	}, prog.Binary())

	assert.Equal(1, asm.Label["DELAY_1_wait"])
	assert.Equal(4, asm.Label["DELAY_2_wait"])

	// Macro opcodes carry the line of the macro body.
	assert.Equal(2, prog.Opcodes[0].LineNo)
	assert.Equal(5, prog.Opcodes[5].LineNo)
	assert.Equal(9, prog.Opcodes[6].LineNo)

	// Macro arguments do not leak.
	_, ok := asm.Equate["reg"]
	assert.False(ok)
}

func TestAssemblerExpressions(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".equ BASE 0x10",
		".equ LIMIT = $(BASE * 2 + 1)",
		"ldi r16, LIMIT",
		"ldi r17, $(LIMIT - BASE)",
		"subi r16, $(LINENO)",
		".dw 0x1234, -1, 'z'",
	}

	prog, err := assemble(asm, program)
	assert.NoError(err)

	assert.Equal("33", asm.Equate["LIMIT"])
	assert.Equal([]uint16{0xe201, 0xe111, 0x5005, 0x1234, 0xffff, 0x007a}, prog.Binary())
	assert.Equal(3, prog.Opcodes[3].Pc)
	assert.Len(prog.Opcodes[3].Codes, 3)
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("ANSWER", "42")
	asm.Predefine("WORK", "r18")

	prog, err := assemble(asm, []string{"ldi WORK, ANSWER"})
	assert.NoError(err)
	assert.Equal([]uint16{0xe22a}, prog.Binary())

	// Predefines survive a second parse.
	prog, err = assemble(asm, []string{"ldi r16, ANSWER"})
	assert.NoError(err)
	assert.Equal([]uint16{0xe20a}, prog.Binary())
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	far := []string{"breq far"}
	for range 64 {
		far = append(far, "nop")
	}
	far = append(far, "far: nop")

	table := [](struct {
		program []string
		err     error
		lineno  int
	}){
		{[]string{"foo r1"}, ErrInstructionInvalid, 1},
		{[]string{"nop", "add r1"}, ErrOpcodeValueMissing, 2},
		{[]string{"add r1, r2, r3"}, ErrOpcodeExtraArgs, 1},
		{[]string{"nop", "nop", "ldi r15, 1"}, ErrOperandRd, 3},
		{[]string{"add r32, r0"}, ErrRegisterInvalid, 1},
		{[]string{"add x1, r0"}, ErrRegisterInvalid, 1},
		{[]string{"add r03, r0"}, ErrRegisterInvalid, 1},
		{[]string{"cbr r16, 0x100"}, ErrInvalidValue, 1},
		{[]string{"cbr r16, mask"}, ErrParseNumber("mask"), 1},
		{[]string{"ldi r16, 256"}, ErrInvalidValue, 1},
		{[]string{"ldi r16, -129"}, ErrInvalidValue, 1},
		{[]string{"ldi r16, lots"}, ErrParseNumber("lots"), 1},
		{[]string{"bset 8"}, ErrOperandBit, 1},
		{[]string{"bld r0, -1"}, ErrOperandBit, 1},
		{[]string{"nop", "brne missing"}, ErrLabelMissing("missing"), 2},
		{[]string{"breq 64"}, ErrBranchRange, 1},
		{[]string{"rjmp 2048"}, ErrBranchRange, 1},
		{far, ErrBranchRange, 1},
		{[]string{".equ A 1", ".equ A 2"}, ErrEquateDuplicate, 2},
		{[]string{".equ A"}, ErrEquateSyntax, 1},
		{[]string{"x:", "x: nop"}, ErrLabelDuplicate, 2},
		{[]string{".macro M", ".macro N"}, ErrMacroNesting, 2},
		{[]string{".macro"}, ErrMacroSyntax, 1},
		{[]string{"nop", ".endm"}, ErrMacroLonelyEndm, 2},
		{[]string{".macro M", "nop"}, ErrMacroLonely, 2},
		{[]string{".macro M", ".endm", ".macro M", ".endm"}, ErrMacroDuplicate, 3},
		{[]string{".macro M a", ".endm", "M"}, ErrMacroSyntax, 3},
		{[]string{".macro M", "  foo", ".endm", "nop", "M"}, ErrInstructionInvalid, 5},
		{[]string{".dw 0x10000"}, ErrInvalidValue, 1},
		{[]string{".dw"}, ErrOpcodeValueMissing, 1},
		{[]string{`ldi r16, $("x")`}, ErrParseExpression(`"x"`), 1},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := assemble(asm, entry.program)
		here := strings.Join(entry.program, "; ")
		assert.ErrorIs(err, entry.err, here)

		var se *ErrSyntax
		if assert.True(errors.As(err, &se), here) {
			assert.Equal(entry.lineno, se.LineNo, here)
		}
	}
}

func TestAssemblerStarlarkError(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := assemble(asm, []string{"ldi r16, $(1 +)"})
	assert.Error(err)
}

func TestAssemblerRoundTrip(t *testing.T) {
	assert := assert.New(t)

	// Every decodable word disassembles to text that assembles back
	// to the same word.
	for word := range 0x10000 {
		inst, err := Decode(uint16(word))
		if err != nil {
			continue
		}
		asm := &Assembler{}
		prog, err := assemble(asm, []string{inst.String()})
		if !assert.NoError(err, inst.String()) {
			return
		}
		if !assert.Equal([]uint16{uint16(word)}, prog.Binary(), inst.String()) {
			return
		}
	}
}
