package cpu

import (
	"strconv"
	"strings"
)

const (
	REGISTER_COUNT = 32 // General purpose registers r0-r31
)

// RegisterFile is the bank of general purpose registers.
type RegisterFile [REGISTER_COUNT]uint8

func checkRegister(index int) (err error) {
	if index < 0 || index >= REGISTER_COUNT {
		err = ErrIndex{Name: "register", Index: index, Limit: REGISTER_COUNT}
	}
	return
}

// Get returns the value of register index.
func (rf *RegisterFile) Get(index int) (value uint8, err error) {
	err = checkRegister(index)
	if err != nil {
		return
	}

	value = rf[index]
	return
}

// Set stores value into register index.
func (rf *RegisterFile) Set(index int, value uint8) (err error) {
	err = checkRegister(index)
	if err != nil {
		return
	}

	rf[index] = value
	return
}

// Reset clears all registers.
func (rf *RegisterFile) Reset() {
	clear(rf[:])
}

// ParseRegister parses a register name, `r` (or `R`) followed by a decimal
// index without sign or leading zeros. The index is not range checked.
func ParseRegister(name string) (index int, ok bool) {
	digits, found := strings.CutPrefix(strings.ToLower(name), "r")
	if !found || len(digits) == 0 || len(digits) > 2 {
		return
	}
	if len(digits) > 1 && digits[0] == '0' {
		return
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return
		}
	}

	index, err := strconv.Atoi(digits)
	ok = err == nil
	return
}
