package asm

import (
	"testing"

	"github.com/nicobert/rvm/internal/vm"
)

func parseSource(src string) (*Program, *ErrorList) {
	errs := &ErrorList{}
	toks := NewLexer("test.rvmasm", src).Tokens(errs)
	toks = NewExpander().Expand(toks, errs)

	return NewParser(toks, errs).Parse(), errs
}

func TestParserEntryDirective(tt *testing.T) {
	tt.Parallel()

	prog, errs := parseSource(".entry main\n.text\nmain:\n    exit\n")
	if errs.HasErrors() {
		tt.Fatalf("unexpected parse errors: %v", errs.Error())
	}

	if prog.Entry != "main" {
		tt.Errorf("Entry = %q, want %q", prog.Entry, "main")
	}
}

func TestParserSections(tt *testing.T) {
	tt.Parallel()

	src := `
.text
start:
    exit
.data
val:
    .dn 8, 42
.bss
buf:
    .dn 8, 4
`

	prog, errs := parseSource(src)
	if errs.HasErrors() {
		tt.Fatalf("unexpected parse errors: %v", errs.Error())
	}

	var gotSections []Section
	for _, item := range prog.Items {
		gotSections = append(gotSections, item.Section)
	}

	want := []Section{SectionText, SectionData, SectionBss}
	if len(gotSections) != len(want) {
		tt.Fatalf("got %d items, want %d: %v", len(gotSections), len(want), gotSections)
	}

	for i, s := range want {
		if gotSections[i] != s {
			tt.Errorf("item %d section = %s, want %s", i, gotSections[i], s)
		}
	}
}

func TestParserDataDirectives(tt *testing.T) {
	tt.Parallel()

	src := `
.data
greeting:
    .ds "hi"
raw:
    .db 1, 2, 3
num:
    .dn 4, 0xdead
ptr:
    .da greeting
`

	prog, errs := parseSource(src)
	if errs.HasErrors() {
		tt.Fatalf("unexpected parse errors: %v", errs.Error())
	}

	if len(prog.Items) != 4 {
		tt.Fatalf("got %d items, want 4", len(prog.Items))
	}

	ds := prog.Items[0].Data
	if ds == nil || string(ds.Bytes) != "hi\x00" {
		tt.Errorf(".ds bytes = %q, want %q", ds.Bytes, "hi\x00")
	}

	db := prog.Items[1].Data
	if db == nil || len(db.Bytes) != 3 || db.Bytes[2] != 3 {
		tt.Errorf(".db bytes = %v, want [1 2 3]", db.Bytes)
	}

	dn := prog.Items[2].Data
	if dn == nil || dn.Size != vm.Size4 {
		tt.Fatalf(".dn size = %v, want Size4", dn.Size)
	}

	da := prog.Items[3].Data
	if da == nil || da.Symbol != "greeting" {
		tt.Errorf(".da symbol = %q, want %q", da.Symbol, "greeting")
	}
}

func TestParserMoveOperandShapes(tt *testing.T) {
	tt.Parallel()

	src := "mov 8, r1, r2\nmovc 8, r1, 5\nmova 8, r1, label\nlabel:\n    exit\n"

	prog, errs := parseSource(src)
	if errs.HasErrors() {
		tt.Fatalf("unexpected parse errors: %v", errs.Error())
	}

	movRR := prog.Items[0].Instruction
	if movRR.Opcode != vm.MovRR || movRR.Operands[2].Kind != OperandRegister {
		tt.Errorf("mov: opcode = %s, src kind = %v", movRR.Opcode, movRR.Operands[2].Kind)
	}

	movRC := prog.Items[1].Instruction
	if movRC.Opcode != vm.MovRC || movRC.Operands[2].Kind != OperandImmediate || movRC.Operands[2].Imm != 5 {
		tt.Errorf("movc: opcode = %s, src = %+v", movRC.Opcode, movRC.Operands[2])
	}

	movRA := prog.Items[2].Instruction
	if movRA.Opcode != vm.MovRA || movRA.Operands[2].Kind != OperandAddress || movRA.Operands[2].Symbol != "label" {
		tt.Errorf("mova: opcode = %s, src = %+v", movRA.Opcode, movRA.Operands[2])
	}
}

func TestParserAddressOfOperand(tt *testing.T) {
	tt.Parallel()

	src := "start:\n    movc 8, r1, $start\n"

	prog, errs := parseSource(src)
	if errs.HasErrors() {
		tt.Fatalf("unexpected parse errors: %v", errs.Error())
	}

	inst := prog.Items[0].Instruction
	src2 := inst.Operands[2]

	if src2.Kind != OperandAddressOf || src2.Symbol != "start" {
		tt.Errorf("operand = %+v, want AddressOf(start)", src2)
	}
}

func TestParserUnknownMnemonic(tt *testing.T) {
	tt.Parallel()

	_, errs := parseSource("frobnicate r1, r2\n")
	if !errs.HasErrors() {
		tt.Error("expected an unknown-mnemonic error")
	}
}

func TestParserBadRegister(tt *testing.T) {
	tt.Parallel()

	_, errs := parseSource("iadd notareg, r2\n")
	if !errs.HasErrors() {
		tt.Error("expected a bad-register error")
	}
}

func TestParserOffsetFromDirective(tt *testing.T) {
	tt.Parallel()

	src := `
.data
here:
    .offsetfrom there
there:
    .dn 8, 0
`

	prog, errs := parseSource(src)
	if errs.HasErrors() {
		tt.Fatalf("unexpected parse errors: %v", errs.Error())
	}

	if len(prog.Items) != 2 {
		tt.Fatalf("got %d items, want 2", len(prog.Items))
	}

	of := prog.Items[0].Data
	if of == nil || of.RelativeTo != "there" || of.Size != vm.Size8 {
		tt.Errorf(".offsetfrom = %+v, want RelativeTo(there) Size8", of)
	}

	if of.Bytes != nil {
		tt.Errorf(".offsetfrom bytes = %v, want nil (resolved at generation time)", of.Bytes)
	}
}

func TestParserPrintstrExpandsToDataAndInstructions(tt *testing.T) {
	tt.Parallel()

	src := ".printstr \"hi\"\nexit\n"

	prog, errs := parseSource(src)
	if errs.HasErrors() {
		tt.Fatalf("unexpected parse errors: %v", errs.Error())
	}

	// data item, movc print, movc int, intr, exit
	if len(prog.Items) != 5 {
		tt.Fatalf("got %d items, want 5: %+v", len(prog.Items), prog.Items)
	}

	data := prog.Items[0]
	if data.Section != SectionData || data.Data == nil || string(data.Data.Bytes) != "hi\x00" {
		tt.Fatalf("item 0 = %+v, want a .data string item", data)
	}
	if data.Label == "" {
		tt.Error("expected the string data item to carry a synthetic label")
	}

	movPrint := prog.Items[1].Instruction
	if movPrint == nil || movPrint.Opcode != vm.MovRC ||
		movPrint.Operands[1].Reg != vm.Print || movPrint.Operands[2].Kind != OperandAddressOf ||
		movPrint.Operands[2].Symbol != data.Label {
		tt.Errorf("item 1 = %+v, want movc 8, print, $%s", movPrint, data.Label)
	}

	movInt := prog.Items[2].Instruction
	if movInt == nil || movInt.Opcode != vm.MovRC ||
		movInt.Operands[1].Reg != vm.Int || movInt.Operands[2].Kind != OperandImmediate ||
		movInt.Operands[2].Imm != vm.Word(vm.PrintString) {
		tt.Errorf("item 2 = %+v, want movc 8, int, PrintString", movInt)
	}

	intr := prog.Items[3].Instruction
	if intr == nil || intr.Opcode != vm.Intr {
		tt.Errorf("item 3 = %+v, want intr", intr)
	}

	exit := prog.Items[4].Instruction
	if exit == nil || exit.Opcode != vm.Exit {
		tt.Errorf("item 4 = %+v, want exit", exit)
	}
}

func TestParserResync(tt *testing.T) {
	tt.Parallel()

	// One malformed line should not prevent the rest of the unit from parsing.
	src := "frobnicate r1, r2\nexit\n"

	prog, errs := parseSource(src)
	if !errs.HasErrors() {
		tt.Fatal("expected an error from the bad line")
	}

	if len(prog.Items) != 1 || prog.Items[0].Instruction.Opcode != vm.Exit {
		tt.Errorf("expected the exit instruction to still parse, got %+v", prog.Items)
	}
}
