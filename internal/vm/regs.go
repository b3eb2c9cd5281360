package vm

// regs.go defines the register file and the basic data types the processor operates on.

import "fmt"

// Word is a 64-bit value: the width of every register and of every address.
type Word uint64

func (w Word) String() string { return fmt.Sprintf("%#016x", uint64(w)) }

// Size is an operand width tag. Every sized memory access and every sized immediate
// carries one of these four values; any other byte found in that position is a
// program error caught at assembly time (spec: size tags not in {1,2,4,8}).
type Size uint8

// Valid operand widths.
const (
	Size1 Size = 1
	Size2 Size = 2
	Size4 Size = 4
	Size8 Size = 8
)

// Valid reports whether s is one of the four supported widths.
func (s Size) Valid() bool {
	switch s {
	case Size1, Size2, Size4, Size8:
		return true
	default:
		return false
	}
}

func (s Size) String() string {
	if s.Valid() {
		return fmt.Sprintf("size%d", uint8(s))
	}

	return fmt.Sprintf("size(invalid:%#x)", uint8(s))
}

// Register identifies one of the processor's 64-bit registers by a single byte index.
//
// The ordering follows the README's tabular enum (see design notes/open questions):
// eight general-purpose registers, the exit code, the four role registers, the stack
// and control registers, the bump-allocator cursor, and finally the five flags. Code
// must never depend on specific numeric values beyond this order; Register.String and
// LookupRegister, which the assembler uses, both derive register names from this list.
type Register uint8

// Registers, in encoding order.
const (
	R1 Register = iota
	R2
	R3
	R4
	R5
	R6
	R7
	R8

	Exit // Holds the process exit code when the exit instruction runs.

	Input // Role register: operand for INPUT_* interrupts.
	Error // Role register: set by host handlers; see error code table.
	Print // Role register: operand for PRINT_* interrupts.
	Int   // Role register: selects the intr handler.

	Stp // Stack top. Grows upward (toward higher addresses).
	Sbp // Stack/call-frame base.
	PC  // Program counter.
	Pep // Bump-allocator heap-end cursor (conventional; the processor never touches it).

	Zf // Zero flag.
	Sf // Sign flag.
	Rf // Remainder / NaN-indicator flag.
	Cf // Carry / +Inf-indicator flag.
	Of // Overflow / -Inf-indicator flag.

	NumRegisters // Sentinel: count of registers, not a valid register itself.
)

var registerNames = [NumRegisters]string{
	R1: "r1", R2: "r2", R3: "r3", R4: "r4", R5: "r5", R6: "r6", R7: "r7", R8: "r8",
	Exit: "exit", Input: "input", Error: "error", Print: "print", Int: "int",
	Stp: "stp", Sbp: "sbp", PC: "pc", Pep: "pep",
	Zf: "zf", Sf: "sf", Rf: "rf", Cf: "cf", Of: "of",
}

func (r Register) String() string {
	if r < NumRegisters {
		return registerNames[r]
	}

	return fmt.Sprintf("reg(invalid:%#x)", uint8(r))
}

// Valid reports whether r names a real register.
func (r Register) Valid() bool { return r < NumRegisters }

// LookupRegister returns the register named by s (case-sensitive, lowercase, as
// produced by Register.String), and false if s does not name a register.
func LookupRegister(s string) (Register, bool) {
	for i := Register(0); i < NumRegisters; i++ {
		if registerNames[i] == s {
			return i, true
		}
	}

	return 0, false
}

// RegisterFile is the complete set of processor registers, indexed by Register.
type RegisterFile [NumRegisters]Word

func (rf RegisterFile) String() string {
	s := ""
	for i := Register(0); i < NumRegisters; i++ {
		s += fmt.Sprintf("%s:%s ", i, rf[i])
	}

	return s
}
