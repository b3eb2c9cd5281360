package vm

// errors.go defines the two tiers of failure a running program can hit: runtime error
// codes (observable from bytecode via the error register, and used by host handlers)
// and Go-level sentinel errors returned across the package's exported API. The two
// tiers are deliberately distinct types -- never conflate a Go error with an ErrorCode.

import (
	"errors"
	"fmt"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type ErrorCode

// ErrorCode is the value a host handler or the processor writes into the error
// register. Zero (NoError) means success; every handler that can fail documents the
// exact code it may set, and clears the register to NoError on success.
type ErrorCode uint8

// Runtime error codes.
const (
	NoError ErrorCode = iota
	EndOfFile
	InvalidInput
	ZeroDivision
	StackOverflow
	OutOfBounds
	UnalignedAddress
	PermissionDenied
	TimedOut
	NotFound
	AlreadyExists
	InvalidData
	Interrupted
	OutOfMemory
	WriteZero
	ModuleUnavailable
	GenericError
)

// InterruptCode selects a host-service handler through the int register. Values are
// part of the ABI and must not be renumbered.
type InterruptCode uint8

// Host interrupt codes.
const (
	PrintSigned InterruptCode = iota
	PrintUnsigned
	PrintChar
	PrintString
	PrintBytes
	InputSigned
	InputUnsigned
	InputString
	Malloc
	Free
	Random
	HostTimeNanos
	ElapsedTimeNanos
	DiskRead
	DiskWrite
	TermIntr
	SetTimerNanos
	FlushStdout
	HostFsIntr

	NumInterrupts
)

// Fault is a catastrophic, non-recoverable processor error: fetching past memory, an
// opcode outside the dispatch table, stack underflow on ret/pop. It halts the
// instruction cycle; callers should report it to stderr and exit with GenericError.
type Fault struct {
	Op  Opcode
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault: %s: %s", f.Op, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

var (
	// ErrOutOfBounds is returned when a memory access falls outside the image.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrUnalignedAddress is returned by instructions that document an alignment
	// requirement.
	ErrUnalignedAddress = errors.New("unaligned address")

	// ErrStackOverflow is returned when a stack write would carry stp past capacity.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrBadSize is a program error: a size tag outside {1,2,4,8}.
	ErrBadSize = errors.New("invalid size tag")

	// ErrBadOpcode is returned when the dispatch table has no handler for an opcode
	// fetched from a running program (reserved/assembler-only/out-of-range byte).
	ErrBadOpcode = errors.New("invalid opcode")

	// ErrHalted is returned by Step/Run when the processor has already exited.
	ErrHalted = errors.New("processor halted")

	// ErrNoHandler is returned when int names a code with no registered handler.
	ErrNoHandler = errors.New("no interrupt handler")

	// errZeroDivision backs ErrZeroDivision; idiv/imod by zero is a Fault, unlike
	// float division by zero which sets rf and produces Inf/NaN per IEEE-754.
	errZeroDivision = errors.New("division by zero")
)
