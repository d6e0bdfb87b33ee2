package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated words.
type Opcode struct {
	LineNo    int
	Pc        int
	Words     []string
	Codes     []uint16
	LinkLabel string
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode that generated the word at pc.
func (prog *Program) Debug(pc int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if pc >= op.Pc && pc < op.Pc+len(op.Codes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  pc - op.Pc,
			}
			break
		}
	}

	return
}

// Binary returns the flash image of the program.
func (prog *Program) Binary() (bins []uint16) {
	for pc, code := range prog.Codes() {
		for len(bins) <= pc {
			bins = append(bins, 0)
		}
		bins[pc] = code
	}

	return
}

// Codes iterates over every word of the program with its address.
func (prog *Program) Codes() iter.Seq2[int, uint16] {
	return func(yield func(pc int, code uint16) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Pc+n, code) {
					return
				}
			}
		}
	}
}
