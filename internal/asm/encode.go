package asm

// encode.go sizes and encodes instructions. Rather than one hand-written struct per
// opcode, every opcode is classified into one of a handful of regular shapes -- this
// ISA's instruction formats are byte-aligned and uniform (unlike a bit-packed ISA,
// which genuinely needs per-opcode decode logic), so a single table-driven encoder
// covers all of them.

import (
	"fmt"

	"github.com/nicobert/rvm/internal/vm"
)

// shape names the operand layout the parser must produce and the encoder must emit,
// for one opcode.
type shape int

const (
	shapeNone       shape = iota // no operands: ret, intr, exit
	shapeReg                     // one register: inc, dec, not, push, pop
	shapeRegReg                  // two registers: arithmetic, and/or/xor, shl/shr, cmp
	shapeSizedAddr                // size + address: incm, decm
	shapeSizedConst              // size + immediate: pushc, pushsp, popsp
	shapeAddr                    // one address/label: jumps, call
	shapeMove                    // size + two operands, addressing mode from the mnemonic
)

var opcodeShape = buildOpcodeShapes()

func buildOpcodeShapes() map[vm.Opcode]shape {
	m := map[vm.Opcode]shape{
		vm.Ret: shapeNone, vm.Intr: shapeNone, vm.Exit: shapeNone,

		vm.IncReg: shapeReg, vm.DecReg: shapeReg, vm.Not: shapeReg,
		vm.PushReg: shapeReg, vm.PopReg: shapeReg,

		vm.Iadd: shapeRegReg, vm.Isub: shapeRegReg, vm.Imul: shapeRegReg,
		vm.Idiv: shapeRegReg, vm.Imod: shapeRegReg,
		vm.Fadd: shapeRegReg, vm.Fsub: shapeRegReg, vm.Fmul: shapeRegReg,
		vm.Fdiv: shapeRegReg, vm.Fmod: shapeRegReg,
		vm.And: shapeRegReg, vm.Or: shapeRegReg, vm.Xor: shapeRegReg,
		vm.Shl: shapeRegReg, vm.Shr: shapeRegReg,
		vm.Cmp: shapeRegReg,

		vm.IncAddr: shapeSizedAddr, vm.DecAddr: shapeSizedAddr,

		vm.PushConst: shapeSizedConst, vm.Pushsp: shapeSizedConst, vm.Popsp: shapeSizedConst,

		vm.Jmp: shapeAddr, vm.Jmpz: shapeAddr, vm.Jmpnz: shapeAddr,
		vm.Jmpgr: shapeAddr, vm.Jmpge: shapeAddr, vm.Jmplt: shapeAddr, vm.Jmple: shapeAddr,
		vm.Jmpsn: shapeAddr, vm.Jmpnsn: shapeAddr, vm.Jmpof: shapeAddr, vm.Jmpnof: shapeAddr,
		vm.Jmpcr: shapeAddr, vm.Jmpncr: shapeAddr,
		vm.Call: shapeAddr,

		vm.MovRR: shapeMove, vm.MovRA: shapeMove, vm.MovRI: shapeMove, vm.MovRC: shapeMove,
		vm.MovAR: shapeMove, vm.MovAA: shapeMove, vm.MovAI: shapeMove, vm.MovAC: shapeMove,
		vm.MovIR: shapeMove, vm.MovIA: shapeMove, vm.MovII: shapeMove, vm.MovIC: shapeMove,
	}

	return m
}

// moveDstKind and moveSrcKind classify a Mov* opcode's two addressing modes from its
// name, mirroring the mov encode/decode split in package vm.
func moveDstKind(op vm.Opcode) byte {
	switch op {
	case vm.MovRR, vm.MovRA, vm.MovRI, vm.MovRC:
		return 'R'
	case vm.MovAR, vm.MovAA, vm.MovAI, vm.MovAC:
		return 'A'
	default:
		return 'I'
	}
}

func moveSrcKind(op vm.Opcode) byte {
	switch op {
	case vm.MovRR, vm.MovAR, vm.MovIR:
		return 'R'
	case vm.MovRA, vm.MovAA, vm.MovIA:
		return 'A'
	case vm.MovRC, vm.MovAC, vm.MovIC:
		return 'C'
	default:
		return 'I'
	}
}

// sizeOf returns an instruction's encoded length. It never needs resolved addresses,
// only the instruction's shape and (for sized forms) its declared size, so it runs
// identically in both address-assignment passes.
func sizeOf(inst *Instruction) (int, error) {
	sh, ok := opcodeShape[inst.Opcode]
	if !ok {
		return 0, fmt.Errorf("asm: %s has no known encoding shape", inst.Opcode)
	}

	const opByte = 1

	switch sh {
	case shapeNone:
		return opByte, nil
	case shapeReg:
		return opByte + 1, nil
	case shapeRegReg:
		return opByte + 2, nil
	case shapeSizedAddr:
		return opByte + 1 + 8, nil
	case shapeSizedConst:
		size := inst.Operands[0].Size
		return opByte + 1 + int(size), nil
	case shapeAddr:
		return opByte + 8, nil
	case shapeMove:
		size := inst.Operands[0].Size
		n := opByte + 1

		if moveDstKind(inst.Opcode) == 'A' {
			n += 8
		} else {
			n += 1
		}

		switch moveSrcKind(inst.Opcode) {
		case 'A':
			n += 8
		case 'C':
			n += int(size)
		default:
			n += 1
		}

		return n, nil
	default:
		return 0, fmt.Errorf("asm: %s: unhandled shape", inst.Opcode)
	}
}

// resolver looks up a symbol's final address. gen.go supplies one backed by the
// completed symbol table.
type resolver func(name string, info SourceInfo) (vm.Word, error)

// encode emits inst's bytes. Any OperandAddress/OperandAddressOf operand is resolved
// through resolve.
func encode(inst *Instruction, resolve resolver) ([]byte, error) {
	sh := opcodeShape[inst.Opcode]

	buf := []byte{byte(inst.Opcode)}

	appendWord := func(w vm.Word, n int) {
		for i := 0; i < n; i++ {
			buf = append(buf, byte(w>>(8*uint(i))))
		}
	}

	resolveOperand := func(op Operand) (vm.Word, error) {
		switch op.Kind {
		case OperandImmediate:
			return op.Imm, nil
		case OperandAddress, OperandAddressOf:
			return resolve(op.Symbol, op.Info)
		default:
			return 0, fmt.Errorf("asm: operand at %s is not a value", op.Info)
		}
	}

	switch sh {
	case shapeNone:
		return buf, nil

	case shapeReg:
		buf = append(buf, byte(inst.Operands[0].Reg))
		return buf, nil

	case shapeRegReg:
		buf = append(buf, byte(inst.Operands[0].Reg), byte(inst.Operands[1].Reg))
		return buf, nil

	case shapeSizedAddr:
		size := inst.Operands[0].Size
		buf = append(buf, byte(size))

		addr, err := resolveOperand(inst.Operands[1])
		if err != nil {
			return nil, err
		}

		appendWord(addr, 8)

		return buf, nil

	case shapeSizedConst:
		size := inst.Operands[0].Size
		buf = append(buf, byte(size))

		v, err := resolveOperand(inst.Operands[1])
		if err != nil {
			return nil, err
		}

		appendWord(v, int(size))

		return buf, nil

	case shapeAddr:
		addr, err := resolveOperand(inst.Operands[0])
		if err != nil {
			return nil, err
		}

		appendWord(addr, 8)

		return buf, nil

	case shapeMove:
		size := inst.Operands[0].Size
		buf = append(buf, byte(size))

		dst := inst.Operands[1]
		if moveDstKind(inst.Opcode) == 'A' {
			addr, err := resolveOperand(dst)
			if err != nil {
				return nil, err
			}
			appendWord(addr, 8)
		} else {
			buf = append(buf, byte(dst.Reg))
		}

		src := inst.Operands[2]
		switch moveSrcKind(inst.Opcode) {
		case 'A':
			addr, err := resolveOperand(src)
			if err != nil {
				return nil, err
			}
			appendWord(addr, 8)
		case 'C':
			v, err := resolveOperand(src)
			if err != nil {
				return nil, err
			}
			appendWord(v, int(size))
		default:
			buf = append(buf, byte(src.Reg))
		}

		return buf, nil

	default:
		return nil, fmt.Errorf("asm: %s: unhandled shape", inst.Opcode)
	}
}
