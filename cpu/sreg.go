package cpu

import (
	"strings"
)

// Flag is a bit position in the status register.
type Flag uint8

//go:generate go tool stringer -linecomment -type=Flag
const (
	FLAG_C = Flag(0) // C
	FLAG_Z = Flag(1) // Z
	FLAG_N = Flag(2) // N
	FLAG_V = Flag(3) // V
	FLAG_S = Flag(4) // S
	FLAG_H = Flag(5) // H
	FLAG_T = Flag(6) // T
	FLAG_I = Flag(7) // I
)

// Mask returns the SREG bit mask of the flag.
func (fl Flag) Mask() uint8 {
	return 1 << (fl & 7)
}

// StatusRegister is the AVR SREG. Flags are views over the byte.
type StatusRegister uint8

// Byte returns the whole register.
func (sr StatusRegister) Byte() uint8 {
	return uint8(sr)
}

// SetByte replaces the whole register.
func (sr *StatusRegister) SetByte(value uint8) {
	*sr = StatusRegister(value)
}

// Flag returns the state of a single flag.
func (sr StatusRegister) Flag(fl Flag) bool {
	return uint8(sr)&fl.Mask() != 0
}

// SetFlag sets or clears a single flag.
func (sr *StatusRegister) SetFlag(fl Flag, on bool) {
	if on {
		*sr |= StatusRegister(fl.Mask())
	} else {
		*sr &^= StatusRegister(fl.Mask())
	}
}

// carry returns the C flag as 0 or 1.
func (sr StatusRegister) carry() uint8 {
	return uint8(sr) & 1
}

// String returns the flags from I down to C, upper case when set.
func (sr StatusRegister) String() string {
	s := strings.Builder{}

	for fl := FLAG_I; ; fl-- {
		name := fl.String()
		if !sr.Flag(fl) {
			name = strings.ToLower(name)
		}
		s.WriteString(name)
		if fl == FLAG_C {
			break
		}
	}

	return s.String()
}
