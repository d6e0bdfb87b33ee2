package cpu

import (
	"fmt"
	"iter"
	"log"
	"strings"
)

// Cpu is the simulation context of a single AVR core.
//
// A Cpu is not safe for concurrent use; give each emulated chip its own.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Ticks int // Instructions executed since reset.

	state  state          // Registers and SREG.
	memory *ProgramMemory // Flash.
	pc     int            // Word index of the next instruction.
}

// New creates a new CPU with the default program memory size.
func New() *Cpu {
	return NewCpu(PROGRAM_MEMORY_SIZE)
}

// NewCpu creates a new CPU with a specifically sized program memory.
func NewCpu(size int) (cpu *Cpu) {
	cpu = &Cpu{
		memory: NewProgramMemory(size),
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if !yield("PROGRAM_MEMORY_SIZE", fmt.Sprintf("%v", cpu.memory.Capacity())) {
			return
		}
		if !yield("REGISTER_COUNT", fmt.Sprintf("%v", REGISTER_COUNT)) {
			return
		}
		for fl := FLAG_C; fl <= FLAG_I; fl++ {
			if !yield("SREG_"+fl.String(), fmt.Sprintf("%v", uint8(fl))) {
				return
			}
		}
	}
}

// Reset the CPU state.
// - Clears the registers, SREG and flash.
// - Zeros the program counter and tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.state.Register.Reset()
	cpu.state.Sreg.SetByte(0)
	cpu.memory.Reset()
	cpu.pc = 0
	cpu.Ticks = 0
}

// Register returns the value of register index.
func (cpu *Cpu) Register(index int) (uint8, error) {
	return cpu.state.Register.Get(index)
}

// SetRegister sets register index to value.
func (cpu *Cpu) SetRegister(index int, value uint8) error {
	return cpu.state.Register.Set(index, value)
}

// Sreg returns the status register.
func (cpu *Cpu) Sreg() uint8 {
	return cpu.state.Sreg.Byte()
}

// SetSreg replaces the status register.
func (cpu *Cpu) SetSreg(value uint8) {
	cpu.state.Sreg.SetByte(value)
}

// Flag returns a single SREG flag.
func (cpu *Cpu) Flag(fl Flag) bool {
	return cpu.state.Sreg.Flag(fl)
}

// SetFlag sets or clears a single SREG flag.
func (cpu *Cpu) SetFlag(fl Flag, on bool) {
	cpu.state.Sreg.SetFlag(fl, on)
}

// ProgramMemorySize returns the flash capacity in words.
func (cpu *Cpu) ProgramMemorySize() int {
	return cpu.memory.Capacity()
}

// ProgramMemory returns the flash word at index.
func (cpu *Cpu) ProgramMemory(index int) (uint16, error) {
	return cpu.memory.Get(index)
}

// SetProgramMemory stores value at flash word index.
func (cpu *Cpu) SetProgramMemory(value uint16, index int) error {
	return cpu.memory.Set(value, index)
}

// Load copies a program image into flash, starting at word 0.
func (cpu *Cpu) Load(words []uint16) error {
	return cpu.memory.Load(words)
}

// ProgramCounter returns the word index of the next instruction.
func (cpu *Cpu) ProgramCounter() int {
	return cpu.pc
}

// Step fetches, decodes and executes the instruction at the program
// counter, and returns it. On error no state is modified.
func (cpu *Cpu) Step() (inst Instruction, err error) {
	word, err := cpu.memory.Get(cpu.pc)
	if err != nil {
		err = ErrProgramCounter(cpu.pc)
		return
	}

	inst, err = Decode(word)
	if err != nil {
		if cpu.Verbose {
			log.Printf("%03x: %v", cpu.pc, err)
		}
		return
	}

	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.pc, inst)
	}

	next := cpu.state
	var pc int
	pc, err = next.execute(inst, cpu.pc, cpu.memory)
	if err != nil {
		return
	}

	if pc < 0 || pc >= cpu.memory.Capacity() {
		err = ErrProgramCounter(pc)
		return
	}

	cpu.state = next
	cpu.pc = pc
	cpu.Ticks += 1

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	sreg := cpu.state.Sreg

	text += fmt.Sprintf("% 5s: 0x%04x\n", "pc", cpu.pc)
	text += fmt.Sprintf("% 5s: %v (0x%02x)\n", "sreg", sreg.String(), sreg.Byte())

	for row := 0; row < REGISTER_COUNT; row += 8 {
		values := make([]string, 8)
		for n := range values {
			values[n] = fmt.Sprintf("%02x", cpu.state.Register[row+n])
		}
		text += fmt.Sprintf("% 5s: %v\n", fmt.Sprintf("r%d", row), strings.Join(values, " "))
	}

	return
}
