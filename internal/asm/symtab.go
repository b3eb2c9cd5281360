package asm

// symtab.go assigns every item an address (pass one) and resolves every symbol
// reference against the completed table (pass two, performed by gen.go through
// SymbolTable.Lookup).

import (
	"github.com/nicobert/rvm/internal/vm"
)

// symbol records where a label was defined.
type symbol struct {
	Addr    vm.Word
	Defined bool
	Info    SourceInfo
}

// SymbolTable maps label names to addresses, built by Assign.
type SymbolTable struct {
	syms map[string]symbol
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{syms: make(map[string]symbol)}
}

// Lookup returns name's address, reporting an unresolved SymbolError if it was never
// defined.
func (t *SymbolTable) Lookup(name string, info SourceInfo) (vm.Word, error) {
	sym, ok := t.syms[name]
	if !ok || !sym.Defined {
		return 0, &SymbolError{Info: info, Symbol: name, Reason: "undefined"}
	}

	return sym.Addr, nil
}

// Assign walks prog once, in three size-then-place sub-steps per section (.text then
// .data then .bss, text first since entry defaults to its first instruction), giving
// every item an address and recording every label's address in a SymbolTable.
//
// Sections are laid out contiguously in that order starting at base; callers load the
// image starting at address 0, so base is ordinarily 0.
func Assign(prog *Program, base vm.Word, errs *ErrorList) (*SymbolTable, vm.Word, error) {
	t := NewSymbolTable()

	order := []Section{SectionText, SectionData, SectionBss}
	addr := base

	var textEntry vm.Word

	textSeen := false

	for _, sec := range order {
		for i := range prog.Items {
			item := &prog.Items[i]
			if item.Section != sec {
				continue
			}

			if item.Label != "" {
				if existing, ok := t.syms[item.Label]; ok && existing.Defined {
					errs.Add(&SymbolError{Info: labelInfo(item), Symbol: item.Label, Reason: "redefined"})
				}

				t.syms[item.Label] = symbol{Addr: addr, Defined: true, Info: labelInfo(item)}
			}

			switch {
			case item.Instruction != nil:
				size, err := sizeOf(item.Instruction)
				if err != nil {
					errs.Add(&SyntaxError{Info: item.Instruction.Info, Msg: err.Error()})
					continue
				}

				item.Instruction.Addr = addr
				item.Instruction.Size = size

				if sec == SectionText && !textSeen {
					textEntry = addr
					textSeen = true
				}

				addr += vm.Word(size)

			case item.Data != nil:
				item.Data.Addr = addr

				if item.Data.Symbol != "" || item.Data.RelativeTo != "" {
					addr += vm.Word(item.Data.Size)
				} else {
					addr += vm.Word(len(item.Data.Bytes))
				}

			case item.Bss != nil:
				item.Bss.Addr = addr
				addr += vm.Word(item.Bss.Size) * vm.Word(item.Bss.Count)
			}
		}
	}

	entry := textEntry

	if prog.Entry != "" {
		resolved, err := t.Lookup(prog.Entry, SourceInfo{})
		if err != nil {
			errs.Add(err)
		} else {
			entry = resolved
		}
	}

	return t, entry, nil
}

func labelInfo(item *Item) SourceInfo {
	switch {
	case item.Instruction != nil:
		return item.Instruction.Info
	case item.Data != nil:
		return item.Data.Info
	case item.Bss != nil:
		return item.Bss.Info
	default:
		return SourceInfo{}
	}
}
