// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":     "0",
	"BRANCH_MIN": fmt.Sprintf("%d", BRANCH_MIN),
	"BRANCH_MAX": fmt.Sprintf("%d", BRANCH_MAX),
	"JUMP_MIN":   fmt.Sprintf("%d", JUMP_MIN),
	"JUMP_MAX":   fmt.Sprintf("%d", JUMP_MAX),
}

// Assembler is a single pass macro assembler for the AVR instruction set.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to program addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansion int // Count of macro expansions, for local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// mnemonicMap maps instruction names to mnemonics.
var mnemonicMap = func() map[string]Mnemonic {
	mm := map[string]Mnemonic{}
	for _, r := range decodeTable {
		mm[r.Mnemonic.String()] = r.Mnemonic
	}
	return mm
}()

// formArgs is the operand count of each instruction form.
var formArgs = map[Form]int{
	FORM_NONE:   0,
	FORM_RD_RR:  2,
	FORM_RD_IMM: 2,
	FORM_RD:     1,
	FORM_SREG:   1,
	FORM_RD_BIT: 2,
	FORM_BRANCH: 2,
	FORM_JUMP:   1,
}

// flagAlias is the set/clear alias of BSET and BCLR.
type flagAlias struct {
	Set  bool
	Flag Flag
}

// sregMap maps SREG set/clear aliases.
var sregMap = map[string]flagAlias{
	"sec": {true, FLAG_C}, "clc": {false, FLAG_C},
	"sez": {true, FLAG_Z}, "clz": {false, FLAG_Z},
	"sen": {true, FLAG_N}, "cln": {false, FLAG_N},
	"sev": {true, FLAG_V}, "clv": {false, FLAG_V},
	"ses": {true, FLAG_S}, "cls": {false, FLAG_S},
	"seh": {true, FLAG_H}, "clh": {false, FLAG_H},
	"set": {true, FLAG_T}, "clt": {false, FLAG_T},
	"sei": {true, FLAG_I}, "cli": {false, FLAG_I},
}

// branchMap maps conditional branch aliases of BRBS and BRBC.
var branchMap = map[string]flagAlias{
	"brcs": {true, FLAG_C}, "brlo": {true, FLAG_C},
	"brcc": {false, FLAG_C}, "brsh": {false, FLAG_C},
	"breq": {true, FLAG_Z}, "brne": {false, FLAG_Z},
	"brmi": {true, FLAG_N}, "brpl": {false, FLAG_N},
	"brvs": {true, FLAG_V}, "brvc": {false, FLAG_V},
	"brlt": {true, FLAG_S}, "brge": {false, FLAG_S},
	"brhs": {true, FLAG_H}, "brhc": {false, FLAG_H},
	"brts": {true, FLAG_T}, "brtc": {false, FLAG_T},
	"brie": {true, FLAG_I}, "brid": {false, FLAG_I},
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	invert := false
	if strings.HasPrefix(word, "~") {
		invert = true
		word = word[1:]
	}

	value, err = strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = ^value
	}

	return
}

// register parses a register name, r0 to r31.
func (asm *Assembler) register(word string) (reg uint8, err error) {
	n, ok := ParseRegister(word)
	if !ok || n >= REGISTER_COUNT {
		err = ErrRegisterInvalid
		return
	}

	reg = uint8(n)
	return
}

// immediate parses an 8-bit value. Negative values are two's complement.
func (asm *Assembler) immediate(word string) (imm uint8, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if value < -0x80 || value > 0xff {
		err = ErrValue{Name: "immediate", Value: int(value), Max: 0xff}
		return
	}

	imm = uint8(value)
	return
}

// bit parses a bit or flag index.
func (asm *Assembler) bit(word string) (b uint8, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if value < 0 || value > 7 {
		err = ErrOperandBit
		return
	}

	b = uint8(value)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v int64
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// splitWords splits a line on blanks and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE, or .equ CONST = VALUE
	if strings.ToLower(words[0]) == ".equ" {
		if len(words) == 4 && words[2] == "=" {
			words = []string{words[0], words[1], words[3]}
		}
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		value := words[2]
		equate, ok := asm.Equate[value]
		if ok {
			value = equate
		}
		asm.Equate[words[1]] = value
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentPc()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// Local labels are unique to each expansion.
		asm.expansion++
		local := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentPc gets the address of the next generated word.
func (asm *Assembler) currentPc() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Pc + len(last.Codes)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.expansion = 0
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		pc, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		if len(op.Codes) != 1 {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, op.LineNo, op.Words)
		}
		op.Codes[0], err = linkOffset(op.Codes[0], pc-(op.Pc+1))
		if err != nil {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			return
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// linkOffset patches a relative branch or jump word with offset.
func linkOffset(code uint16, offset int) (linked uint16, err error) {
	inst, err := Decode(code)
	if err != nil {
		return
	}

	low, high := BRANCH_MIN, BRANCH_MAX
	if inst.Mnemonic == OP_RJMP {
		low, high = JUMP_MIN, JUMP_MAX
	}
	if offset < low || offset > high {
		err = ErrBranchRange
		return
	}

	inst.Offset = int16(offset)
	return inst.Encode()
}

// target parses a relative jump operand: a word offset, or a label to link.
func (asm *Assembler) target(word string) (offset int16, label string, err error) {
	value, verr := asm.valueOf(word)
	if verr == nil {
		if value < JUMP_MIN || value > JUMP_MAX {
			err = ErrBranchRange
			return
		}
		offset = int16(value)
		return
	}

	label = word
	return
}

// aliasWords rewrites alias instructions to their base instruction.
func (asm *Assembler) aliasWords(words []string) (aliased []string, err error) {
	name := strings.ToLower(words[0])
	args := words[1:]

	if alias, ok := sregMap[name]; ok {
		op := "bclr"
		if alias.Set {
			op = "bset"
		}
		aliased = append([]string{op, fmt.Sprintf("%d", alias.Flag)}, args...)
		return
	}

	if alias, ok := branchMap[name]; ok {
		op := "brbc"
		if alias.Set {
			op = "brbs"
		}
		aliased = append([]string{op, fmt.Sprintf("%d", alias.Flag)}, args...)
		return
	}

	switch {
	case name == "lsl" && len(args) == 1:
		aliased = []string{"add", args[0], args[0]}
	case name == "rol" && len(args) == 1:
		aliased = []string{"adc", args[0], args[0]}
	case name == "tst" && len(args) == 1:
		aliased = []string{"and", args[0], args[0]}
	case name == "clr" && len(args) == 1:
		aliased = []string{"eor", args[0], args[0]}
	case name == "ser" && len(args) == 1:
		aliased = []string{"ldi", args[0], "0xff"}
	case name == "sbr":
		aliased = append([]string{"ori"}, args...)
	case name == "cbr" && len(args) == 2:
		// andi Rd, 0xff - K
		var mask uint8
		mask, err = asm.immediate(args[1])
		if err != nil {
			return
		}
		aliased = []string{"andi", args[0], fmt.Sprintf("%d", ^mask)}
	default:
		aliased = append([]string{name}, args...)
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []uint16
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Pc: asm.currentPc(), Words: initial_words, Codes: codes, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	// .dw WORD...
	if strings.ToLower(words[0]) == ".dw" {
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value int64
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			if value < -0x8000 || value > 0xffff {
				err = ErrValue{Name: ".dw", Value: int(value), Max: 0xffff}
				return
			}
			codes = append(codes, uint16(value))
		}
		return
	}

	words, err = asm.aliasWords(words)
	if err != nil {
		return
	}

	mn, ok := mnemonicMap[words[0]]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	args := words[1:]

	form := mn.Form()
	need := formArgs[form]
	if len(args) < need {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > need {
		err = ErrOpcodeExtraArgs
		return
	}

	inst := Instruction{Mnemonic: mn}

	switch form {
	case FORM_NONE:
	case FORM_RD_RR:
		inst.Rd, err = asm.register(args[0])
		if err == nil {
			inst.Rr, err = asm.register(args[1])
		}
	case FORM_RD_IMM:
		inst.Rd, err = asm.register(args[0])
		if err == nil {
			inst.Imm, err = asm.immediate(args[1])
		}
	case FORM_RD:
		inst.Rd, err = asm.register(args[0])
	case FORM_SREG:
		inst.Bit, err = asm.bit(args[0])
	case FORM_RD_BIT:
		inst.Rd, err = asm.register(args[0])
		if err == nil {
			inst.Bit, err = asm.bit(args[1])
		}
	case FORM_BRANCH:
		inst.Bit, err = asm.bit(args[0])
		if err == nil {
			inst.Offset, label, err = asm.target(args[1])
		}
	case FORM_JUMP:
		inst.Offset, label, err = asm.target(args[0])
	}
	if err != nil {
		return
	}

	var code uint16
	code, err = inst.Encode()
	if err != nil {
		if err == ErrOperandOffset {
			err = ErrBranchRange
		}
		return
	}

	codes = append(codes, code)

	return
}
