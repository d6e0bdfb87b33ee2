// Package cpu implements the AVR 8-bit microcontroller core and assembler.
//
// The core consists of a 32 entry register file (r0-r31), the status
// register (SREG), word addressed program memory and a program counter.
// Execution is a single step at a time: fetch the word at the program
// counter, decode it into an Instruction, execute it through the ALU and
// commit the result. A step that fails leaves the CPU untouched.
//
// Only the instructions in the decode table are recognised. Anything else
// is reported as ErrUnknownInstruction, never approximated.
//
// The assembler accepts the usual AVR mnemonics and aliases, plus macros,
// labels, equates, and compile-time expression evaluation.
package cpu
