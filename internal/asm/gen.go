package asm

// gen.go walks an assigned Program a final time, emitting each item's bytes into the
// output image and, when requested, a parallel debug-info blob mapping addresses back
// to source.

import (
	"fmt"

	"github.com/nicobert/rvm/internal/encoding"
	"github.com/nicobert/rvm/internal/vm"
)

// Generator emits the final bytecode container for an assigned Program.
type Generator struct {
	table *SymbolTable
	entry vm.Word
	debug bool
}

// NewGenerator returns a Generator that resolves symbols against table and records
// entry as the container's entry address. Set debug to also emit source-mapping debug
// info.
func NewGenerator(table *SymbolTable, entry vm.Word, debug bool) *Generator {
	return &Generator{table: table, entry: entry, debug: debug}
}

// Generate emits prog's image.
func (g *Generator) Generate(prog *Program, errs *ErrorList) encoding.Container {
	var image []byte

	var dbg *encoding.DebugInfo
	if g.debug {
		dbg = &encoding.DebugInfo{}
	}

	resolve := func(name string, info SourceInfo) (vm.Word, error) {
		return g.table.Lookup(name, info)
	}

	grow := func(addr vm.Word, data []byte) {
		need := int(addr) + len(data)
		if need > len(image) {
			grown := make([]byte, need)
			copy(grown, image)
			image = grown
		}

		copy(image[addr:], data)
	}

	for i := range prog.Items {
		item := &prog.Items[i]

		switch {
		case item.Instruction != nil:
			inst := item.Instruction

			bytes, err := encode(inst, resolve)
			if err != nil {
				errs.Add(err)
				continue
			}

			grow(inst.Addr, bytes)

			if dbg != nil {
				g.recordInstruction(dbg, inst)
			}

		case item.Data != nil:
			data := item.Data

			switch {
			case data.Symbol != "":
				addr, err := g.table.Lookup(data.Symbol, data.Info)
				if err != nil {
					errs.Add(err)
					continue
				}

				buf := make([]byte, data.Size)
				for i := range buf {
					buf[i] = byte(addr >> (8 * uint(i)))
				}

				grow(data.Addr, buf)

			case data.RelativeTo != "":
				target, err := g.table.Lookup(data.RelativeTo, data.Info)
				if err != nil {
					errs.Add(err)
					continue
				}

				offset := target - data.Addr - vm.Word(data.Size)

				buf := make([]byte, data.Size)
				for i := range buf {
					buf[i] = byte(offset >> (8 * uint(i)))
				}

				grow(data.Addr, buf)

			default:
				grow(data.Addr, data.Bytes)
			}

		case item.Bss != nil:
			// Reserves space only; the loader's zeroed image already covers it, so
			// there is nothing to emit here beyond the address assignment done in
			// symtab.go.
		}

		if item.Label != "" && dbg != nil {
			g.recordLabel(dbg, item.Label)
		}
	}

	return encoding.Container{Debug: dbg, Image: image, Entry: uint64(g.entry)}
}

func (g *Generator) recordLabel(dbg *encoding.DebugInfo, name string) {
	addr, err := g.table.Lookup(name, SourceInfo{})
	if err != nil {
		return
	}

	dbg.Labels = append(dbg.Labels, addrBytes(addr)...)
	dbg.LabelNames = append(append(dbg.LabelNames, []byte(name)...), 0)
}

func (g *Generator) recordInstruction(dbg *encoding.DebugInfo, inst *Instruction) {
	line := fmt.Sprintf("%s:%d:%d@%d", inst.Info.File, inst.Info.Line, inst.Info.Col, inst.Addr)
	dbg.Instructions = append(append(dbg.Instructions, []byte(line)...), '\n')

	if !containsFile(dbg.SourceFiles, inst.Info.File) {
		dbg.SourceFiles = append(append(dbg.SourceFiles, []byte(inst.Info.File)...), 0)
	}
}

func containsFile(blob []byte, file string) bool {
	needle := append([]byte(file), 0)

	for i := 0; i+len(needle) <= len(blob); i++ {
		match := true

		for j := range needle {
			if blob[i+j] != needle[j] {
				match = false
				break
			}
		}

		if match {
			return true
		}
	}

	return false
}

func addrBytes(addr vm.Word) []byte {
	b := make([]byte, 8)
	for i := range b {
		b[i] = byte(addr >> (8 * uint(i)))
	}

	return b
}
