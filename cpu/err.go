package cpu

import (
	"errors"

	"github.com/ezrec/avremu/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrInvalidIndex = errors.New(f("index invalid"))
	ErrInvalidValue = errors.New(f("value invalid"))
	ErrPcRange      = errors.New(f("program counter out of range"))
	ErrInstruction  = errors.New(f("instruction unknown"))

	// Instruction encode errors
	ErrOperandRd     = errors.New(f("rd"))
	ErrOperandRr     = errors.New(f("rr"))
	ErrOperandBit    = errors.New(f("bit"))
	ErrOperandOffset = errors.New(f("offset"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrBranchRange        = errors.New(f("branch target out of range"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrIndex reports an index outside of its container.
type ErrIndex struct {
	Name  string
	Index int
	Limit int
}

func (err ErrIndex) Error() string {
	return f("%v index %v not in [0, %v)", err.Name, err.Index, err.Limit)
}

func (err ErrIndex) Unwrap() error {
	return ErrInvalidIndex
}

// ErrValue reports a value outside of its representable range.
type ErrValue struct {
	Name  string
	Value int
	Max   int
}

func (err ErrValue) Error() string {
	return f("%v value %v not in [0, %v]", err.Name, err.Value, err.Max)
}

func (err ErrValue) Unwrap() error {
	return ErrInvalidValue
}

// ErrUnknownInstruction is an instruction word that matches no decode rule.
type ErrUnknownInstruction uint16

func (eu ErrUnknownInstruction) Error() string {
	return f("unknown instruction 0x%04x", uint16(eu))
}

// Is matches any ErrUnknownInstruction, and ErrInstruction.
func (eu ErrUnknownInstruction) Is(err error) (ok bool) {
	if err == ErrInstruction {
		return true
	}
	_, ok = err.(ErrUnknownInstruction)
	return
}

// ErrProgramCounter is a program counter outside of program memory.
type ErrProgramCounter int

func (ep ErrProgramCounter) Error() string {
	return f("program counter 0x%04x out of range", int(ep))
}

func (ep ErrProgramCounter) Unwrap() error {
	return ErrPcRange
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
