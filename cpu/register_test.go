package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterFile(t *testing.T) {
	assert := assert.New(t)

	rf := RegisterFile{}

	for n := range REGISTER_COUNT {
		value, err := rf.Get(n)
		assert.NoError(err)
		assert.Equal(uint8(0), value)
	}

	for n := range REGISTER_COUNT {
		for v := range 256 {
			assert.NoError(rf.Set(n, uint8(v)))
			value, err := rf.Get(n)
			assert.NoError(err)
			assert.Equal(uint8(v), value, "r%d", n)
		}
	}

	// Writes do not leak into other registers.
	assert.NoError(rf.Set(7, 0x5a))
	value, _ := rf.Get(6)
	assert.Equal(uint8(0xff), value)
	value, _ = rf.Get(8)
	assert.Equal(uint8(0xff), value)

	for _, index := range []int{-1, REGISTER_COUNT, 1000} {
		_, err := rf.Get(index)
		assert.ErrorIs(err, ErrInvalidIndex, index)
		err = rf.Set(index, 1)
		assert.ErrorIs(err, ErrInvalidIndex, index)
	}

	rf.Reset()
	assert.Equal(RegisterFile{}, rf)
}

func TestParseRegister(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		index int
		ok    bool
	}){
		{"r0", 0, true},
		{"R7", 7, true},
		{"r31", 31, true},
		{"r32", 32, true},
		{"r", 0, false},
		{"r003", 0, false},
		{"r01", 0, false},
		{"r+3", 0, false},
		{"r-1", 0, false},
		{"r100", 0, false},
		{"x1", 0, false},
		{"sreg", 0, false},
	}

	for _, entry := range table {
		index, ok := ParseRegister(entry.name)
		assert.Equal(entry.ok, ok, entry.name)
		if entry.ok {
			assert.Equal(entry.index, index, entry.name)
		}
	}
}
