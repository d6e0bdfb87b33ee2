// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ezrec/avremu/cpu"
	"github.com/ezrec/avremu/emulator"
	"github.com/ezrec/avremu/internal"
)

// presets are the -s name=value register presets, in command line order.
type presets []string

func (p *presets) String() string {
	return strings.Join(*p, ",")
}

func (p *presets) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("%v: expected name=value", value)
	}
	*p = append(*p, value)
	return nil
}

// listing prints a disassembly of the loaded flash, with source lines when known.
func listing(emu *emulator.Emulator, size int) {
	for pc := range size {
		word, _ := emu.ProgramMemory(pc)
		text := "?"
		inst, err := cpu.Decode(word)
		if err == nil {
			text = inst.String()
		}

		dbg := emu.Program.Debug(pc)
		if dbg.Opcode != nil && dbg.Index == 0 {
			fmt.Printf("%04x: %04x  %-16v ; %d: %v\n", pc, word, text, dbg.LineNo, strings.Join(dbg.Words, " "))
		} else {
			fmt.Printf("%04x: %04x  %v\n", pc, word, text)
		}
	}
}

func main() {
	var compile string
	var image string
	var limit int
	var sets presets
	var list bool
	var defines bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".S file to assemble")
	flag.StringVar(&image, "b", "", "raw little-endian flash image to load")
	flag.IntVar(&limit, "n", emulator.DEFAULT_STEP, "Maximum instructions to execute")
	flag.Var(&sets, "s", "Preset a register before running, as name=value (repeatable)")
	flag.BoolVar(&list, "l", false, "List the disassembly, do not execute")
	flag.BoolVar(&defines, "D", false, "Print the assembler predefines, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if defines {
		for name, value := range internal.IterSeq2Sorted(emu.Defines()) {
			fmt.Printf("%v=%v\n", name, value)
		}
		return
	}

	if len(compile) != 0 && len(image) != 0 {
		log.Fatalf("%v: -c and -b are exclusive", os.Args[0])
	}

	size := 0

	// Assemble a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for name, value := range emu.Defines() {
			asm.Predefine(name, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		err = emu.Reset()
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		size = len(emu.Program.Binary())
	}

	// Load a prebuilt flash image.
	if len(image) != 0 {
		inf, err := os.Open(image)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
		defer inf.Close()

		err = emu.LoadBinary(inf)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
		st, err := inf.Stat()
		if err == nil {
			size = int(st.Size() / 2)
		}
	}

	if list {
		listing(emu, size)
		return
	}

	for _, set := range sets {
		name, text, _ := strings.Cut(set, "=")
		value, err := strconv.ParseInt(text, 0, 32)
		if err != nil {
			log.Fatalf("-s %v: %v", set, err)
		}
		err = emu.Set(name, int(value))
		if err != nil {
			log.Fatalf("-s %v: %v", set, err)
		}
	}

	steps, err := emu.Run(limit)
	fmt.Printf("steps: %d\n", steps)
	fmt.Print(emu.Cpu.String())
	if !emulator.Stopped(err) {
		log.Fatal(err)
	}
	if err != nil {
		log.Print(err)
	}
}
