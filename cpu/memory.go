package cpu

const (
	PROGRAM_MEMORY_SIZE = 1024 // Default flash size, in words.
)

// ProgramMemory is the word addressed flash. Its capacity never changes.
type ProgramMemory struct {
	words []uint16
}

// NewProgramMemory creates a zeroed flash of size words.
func NewProgramMemory(size int) (pm *ProgramMemory) {
	if size <= 0 {
		panic("program memory size must be positive")
	}

	pm = &ProgramMemory{
		words: make([]uint16, size),
	}

	return
}

// Capacity returns the flash size in words.
func (pm *ProgramMemory) Capacity() int {
	return len(pm.words)
}

func (pm *ProgramMemory) check(index int) (err error) {
	if index < 0 || index >= len(pm.words) {
		err = ErrIndex{Name: "program memory", Index: index, Limit: len(pm.words)}
	}
	return
}

// Get returns the word at index.
func (pm *ProgramMemory) Get(index int) (value uint16, err error) {
	err = pm.check(index)
	if err != nil {
		return
	}

	value = pm.words[index]
	return
}

// Set stores value at index.
func (pm *ProgramMemory) Set(value uint16, index int) (err error) {
	err = pm.check(index)
	if err != nil {
		return
	}

	pm.words[index] = value
	return
}

// Load copies words into flash starting at word 0.
func (pm *ProgramMemory) Load(words []uint16) (err error) {
	if len(words) > len(pm.words) {
		err = ErrIndex{Name: "program memory", Index: len(words) - 1, Limit: len(pm.words)}
		return
	}

	copy(pm.words, words)
	return
}

// Reset zeroes all of flash.
func (pm *ProgramMemory) Reset() {
	clear(pm.words)
}
