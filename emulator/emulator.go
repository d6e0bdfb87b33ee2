// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"
	"strings"

	"github.com/ezrec/avremu/cpu"
	"github.com/ezrec/avremu/internal"
)

const (
	SREG_MAX     = 0xff // Largest value of an 8-bit register.
	DEFAULT_STEP = 1 << 20
)

var _emulator_defines = map[string]string{
	"SREG_MAX":     fmt.Sprintf("%v", SREG_MAX),
	"DEFAULT_STEP": fmt.Sprintf("%v", DEFAULT_STEP),
}

// Emulator state. CPU + program listing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
}

// NewEmulator creates a new emulator with the default flash size.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.New(),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset zeroes the CPU and loads the program listing into flash.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()

	if emu.Program == nil {
		emu.Program = &cpu.Program{}
	}

	err = emu.Cpu.Load(emu.Program.Binary())

	return
}

// LoadBinary resets the CPU and loads a raw little-endian flash image,
// such as one written by `avr-objcopy -O binary`. The program listing
// is cleared, as there is no source for the image.
func (emu *Emulator) LoadBinary(r io.Reader) (err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return
	}

	if len(data)%2 != 0 {
		err = ErrImageOdd
		return
	}

	words := make([]uint16, len(data)/2)
	for n := range words {
		words[n] = binary.LittleEndian.Uint16(data[n*2:])
	}

	emu.Program = &cpu.Program{}
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()

	err = emu.Cpu.Load(words)

	return
}

// Set presets a register (`r0` .. `r31`) or the status register (`sreg`).
func (emu *Emulator) Set(name string, value int) (err error) {
	if value < 0 || value > SREG_MAX {
		err = cpu.ErrValue{Name: name, Value: value, Max: SREG_MAX}
		return
	}

	lname := strings.ToLower(name)
	if lname == "sreg" {
		emu.Cpu.SetSreg(uint8(value))
		return
	}

	index, ok := cpu.ParseRegister(lname)
	if !ok {
		err = fmt.Errorf("%w: %v", ErrName, name)
		return
	}

	err = emu.Cpu.SetRegister(index, uint8(value))

	return
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns current program counter.
func (emu *Emulator) Pc() int {
	return emu.Cpu.ProgramCounter()
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.ProgramCounter())
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick executes a single instruction. done is set once a BREAK executes.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	pc := emu.Cpu.ProgramCounter()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Pc: pc, Err: err}
		}
	}()

	inst, err := emu.Cpu.Step()
	if err != nil {
		return
	}

	done = inst.Mnemonic == cpu.OP_BREAK

	return
}

// RunInstructions executes exactly n instructions, stopping early only on
// an error. BREAK is executed like any other instruction.
func (emu *Emulator) RunInstructions(n int) (err error) {
	for range n {
		_, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Run executes until a BREAK instruction, returning the number of
// instructions executed. After limit instructions with no BREAK,
// ErrStepLimit is returned.
func (emu *Emulator) Run(limit int) (steps int, err error) {
	for steps < limit {
		var done bool
		done, err = emu.Tick()
		if err != nil {
			return
		}
		steps++
		if done {
			return
		}
	}

	err = &ErrRuntime{LineNo: emu.LineNo(), Pc: emu.Cpu.ProgramCounter(), Err: ErrStepLimit}

	return
}

// Stopped reports if err ended a run without a fault of the program.
func Stopped(err error) bool {
	return err == nil || errors.Is(err, ErrStepLimit)
}
