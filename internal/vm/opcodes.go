package vm

// opcodes.go defines the opcode enum and the operand-form each instruction family uses
// to decode its bytes. The processor's dispatch table (see cpu.go) is indexed directly
// by Opcode and treats it as a dense, contiguous range: any opcode without a handler is
// fatal if it is ever fetched from a running program.

import "fmt"

// Opcode identifies one processor operation.
type Opcode uint8

// Operand forms used to decode each instruction family's bytes. Each opcode's decode
// routine (ops_*.go) knows its own form; this comment block is the single source of
// truth for the byte layouts.
//
//	OP_REG             op | reg
//	OP_SIZED_REG       op | size | reg
//	OP_SIZED_REG_REG   op | size | reg_dst | reg_src
//	OP_SIZED_REG_CONST op | size | reg | imm[size]
//	OP_SIZED_CONST     op | size | imm[size]
//	OP_SIZED_ADDR_LIT  op | size | addr(8)
//	OP_ADDR_LIT        op | addr(8)
//	OP_JUMP            op | addr(8)
//	OP_INTR            op
const (
	// Memory-move family: twelve combinations of {register, address-literal,
	// register-indirect} destination against {register, address-literal,
	// register-indirect, constant} source. Naming: MovDstSrc, where each of Dst/Src is
	// one of R (register), A (address literal), I (register-indirect), and Src may
	// additionally be C (immediate constant).
	MovRR Opcode = iota // mov
	MovRA               // mova
	MovRI               // movi
	MovRC               // movc
	MovAR               // amov
	MovAA               // amova
	MovAI               // amovi
	MovAC               // amovc
	MovIR               // imov
	MovIA               // imova
	MovII               // imovi
	MovIC               // imovc

	// Integer arithmetic: r1 <op> r2 -> r1 (OP form).
	Iadd // iadd
	Isub // isub
	Imul // imul
	Idiv // idiv
	Imod // imod

	// Float arithmetic: same register convention, IEEE-754 double in the low 8 bytes.
	Fadd // fadd
	Fsub // fsub
	Fmul // fmul
	Fdiv // fdiv
	Fmod // fmod

	// Bitwise: r1 <op> r2 -> r1. Not takes a single register (OP_REG); shl/shr shift r1 by r2.
	And // and
	Or  // or
	Xor // xor
	Not // not
	Shl // shl
	Shr // shr

	// Unary increment/decrement. Register form (OP_REG) or sized address-literal form
	// (OP_SIZED_ADDR_LIT).
	IncReg  // inc
	DecReg  // dec
	IncAddr // incm
	DecAddr // decm

	// Comparison: sets flags from r1-r2 without storing a result.
	Cmp // cmp

	// Stack.
	PushReg   // push
	PushConst // pushc
	Pushsp    // pushsp
	PopReg    // pop
	Popsp     // popsp

	// Control flow (OP_JUMP unless noted).
	Jmp    // jmp
	Jmpz   // jmpz
	Jmpnz  // jmpnz
	Jmpgr  // jmpgr
	Jmpge  // jmpge
	Jmplt  // jmplt
	Jmple  // jmple
	Jmpsn  // jmpsn
	Jmpnsn // jmpnsn
	Jmpof  // jmpof
	Jmpnof // jmpnof
	Jmpcr  // jmpcr
	Jmpncr // jmpncr
	Call   // call
	Ret    // ret (OP form)

	// Host interrupt and process exit (both OP_INTR form).
	Intr // intr
	Exit // exit

	NumOpcodes // Sentinel: count of real opcodes.
)

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}

	return fmt.Sprintf("opcode(invalid:%#x)", uint8(op))
}

// Valid reports whether op is a real, executable opcode.
func (op Opcode) Valid() bool { return op < NumOpcodes }

var opcodeNames = [NumOpcodes]string{
	MovRR: "mov", MovRA: "mova", MovRI: "movi", MovRC: "movc",
	MovAR: "amov", MovAA: "amova", MovAI: "amovi", MovAC: "amovc",
	MovIR: "imov", MovIA: "imova", MovII: "imovi", MovIC: "imovc",
	Iadd: "iadd", Isub: "isub", Imul: "imul", Idiv: "idiv", Imod: "imod",
	Fadd: "fadd", Fsub: "fsub", Fmul: "fmul", Fdiv: "fdiv", Fmod: "fmod",
	And: "and", Or: "or", Xor: "xor", Not: "not", Shl: "shl", Shr: "shr",
	IncReg: "inc", DecReg: "dec", IncAddr: "incm", DecAddr: "decm",
	Cmp:       "cmp",
	PushReg:   "push",
	PushConst: "pushc",
	Pushsp:    "pushsp",
	PopReg:    "pop",
	Popsp:     "popsp",
	Jmp:       "jmp", Jmpz: "jmpz", Jmpnz: "jmpnz",
	Jmpgr: "jmpgr", Jmpge: "jmpge", Jmplt: "jmplt", Jmple: "jmple",
	Jmpsn: "jmpsn", Jmpnsn: "jmpnsn", Jmpof: "jmpof", Jmpnof: "jmpnof",
	Jmpcr: "jmpcr", Jmpncr: "jmpncr",
	Call: "call", Ret: "ret",
	Intr: "intr", Exit: "exit",
}

// LookupOpcode returns the opcode named by mnemonic (case-sensitive, lowercase).
func LookupOpcode(mnemonic string) (Opcode, bool) {
	for i := Opcode(0); i < NumOpcodes; i++ {
		if opcodeNames[i] == mnemonic {
			return i, true
		}
	}

	return 0, false
}
