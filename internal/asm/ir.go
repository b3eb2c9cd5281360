package asm

// ir.go defines the typed intermediate representation the parser builds: a flat list
// of items tagged by section, in source order. Address assignment (symtab.go) walks
// this list to size and place every item and record every label's address; code
// generation (gen.go) walks it again to resolve symbol references and emit bytes.

import (
	"fmt"

	"github.com/nicobert/rvm/internal/vm"
)

// Section names a region of the output image. A BssItem reserves size without
// contributing bytes, but the parser never builds one: data directives written after
// .bss become ordinary DataItems, laid out after .data and emitted into the image like
// any other data.
type Section int

const (
	SectionText Section = iota
	SectionData
	SectionBss
)

func (s Section) String() string {
	switch s {
	case SectionText:
		return ".text"
	case SectionData:
		return ".data"
	case SectionBss:
		return ".bss"
	default:
		return "?"
	}
}

// OperandKind classifies one decoded instruction operand.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandSize
	OperandImmediate // a literal number, resolved at parse time
	OperandAddress   // a label reference, resolved in the second pass
	OperandAddressOf // $label: the label's address used as an immediate
)

// Operand is one operand of an instruction, as written in source. Immediate carries a
// concrete value; Address/AddressOf carry a symbol name resolved during code
// generation, once address assignment has filled the symbol table.
type Operand struct {
	Kind   OperandKind
	Reg    vm.Register
	Size   vm.Size
	Imm    vm.Word
	Symbol string
	Info   SourceInfo
}

// Instruction is one assembled instruction: an opcode plus its operands, not yet
// encoded to bytes.
type Instruction struct {
	Opcode   vm.Opcode
	Operands []Operand
	Info     SourceInfo

	Addr vm.Word // filled in by the first address-assignment pass
	Size int     // byte length of this instruction's encoding
}

// DataItem is one initialized .data item: dn (numeric, any size), ds (string,
// NUL-terminated), db (raw bytes), da (address of a label, pointer-sized), offsetfrom
// (a label's address relative to the byte just past this datum, pointer-sized).
type DataItem struct {
	Size       vm.Size
	Bytes      []byte // nil for .da (Symbol) and .offsetfrom (RelativeTo), which need a resolved symbol
	Symbol     string // set only when this item stores another label's address
	RelativeTo string // set only when this item stores a self-relative displacement
	Info       SourceInfo

	Addr vm.Word
}

// BssItem reserves Size*Count bytes of zeroed storage.
type BssItem struct {
	Size  vm.Size
	Count int
	Info  SourceInfo

	Addr vm.Word
}

// Item is one element of the parsed program, in source order.
type Item struct {
	Section Section

	Label       string // non-empty if this item begins with a label definition
	Instruction *Instruction
	Data        *DataItem
	Bss         *BssItem
}

// Program is the complete parsed, not-yet-assembled source.
type Program struct {
	Items []Item

	// Entry names the label execution starts at. Empty means "first .text
	// instruction".
	Entry string
}

// insertTextDataJumps precedes every run of consecutive in-text data items with an
// unconditional jump to a synthetic label bound just past the run, and appends that
// label as a zero-width marker item. Without it the fetch/decode/execute loop falls
// straight into literal data bytes embedded in .text and decodes them as opcodes.
func insertTextDataJumps(prog *Program) *Program {
	var out []Item

	runs := 0

	for i := 0; i < len(prog.Items); {
		item := prog.Items[i]

		if item.Section != SectionText || item.Data == nil {
			out = append(out, item)
			i++
			continue
		}

		runs++
		landing := fmt.Sprintf("__textdata_%d", runs)

		out = append(out, Item{
			Section: SectionText,
			Instruction: &Instruction{
				Opcode:   vm.Jmp,
				Operands: []Operand{{Kind: OperandAddress, Symbol: landing, Info: item.Data.Info}},
				Info:     item.Data.Info,
			},
		})

		for i < len(prog.Items) && prog.Items[i].Section == SectionText && prog.Items[i].Data != nil {
			out = append(out, prog.Items[i])
			i++
		}

		out = append(out, Item{Section: SectionText, Label: landing})
	}

	prog.Items = out

	return prog
}
