package asm

// errors.go collects the diagnostic types the assembler accumulates across a full
// pass rather than aborting on the first problem, so a single invocation reports every
// syntax and symbol error in a source unit at once.

import (
	"errors"
	"fmt"
)

var errUnterminated = errors.New("unterminated literal")

// SourceInfo locates a token or error in its originating file.
type SourceInfo struct {
	File string
	Line int
	Col  int
}

func (s SourceInfo) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}

// SyntaxError reports a malformed token stream: an unexpected token, an unterminated
// string, an unknown mnemonic.
type SyntaxError struct {
	Info SourceInfo
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Info, e.Msg)
}

// OffsetRangeError reports an offset or address literal that does not fit the field
// it was written into.
type OffsetRangeError struct {
	Info  SourceInfo
	Value int64
}

func (e *OffsetRangeError) Error() string {
	return fmt.Sprintf("%s: offset %d out of range", e.Info, e.Value)
}

// LiteralRangeError reports a numeric or sized immediate literal that overflows its
// declared size.
type LiteralRangeError struct {
	Info SourceInfo
	Size int
	Raw  string
}

func (e *LiteralRangeError) Error() string {
	return fmt.Sprintf("%s: literal %q does not fit in %d bytes", e.Info, e.Raw, e.Size)
}

// RegisterError reports an operand that names something other than a valid register.
type RegisterError struct {
	Info SourceInfo
	Name string
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("%s: %q is not a register", e.Info, e.Name)
}

// SymbolError reports an undefined, redefined or ambiguous symbol.
type SymbolError struct {
	Info   SourceInfo
	Symbol string
	Reason string
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%s: symbol %q: %s", e.Info, e.Symbol, e.Reason)
}

// MacroError reports a problem expanding a parametric or inline macro: wrong argument
// count, undefined macro name, recursion past the expansion depth limit.
type MacroError struct {
	Info SourceInfo
	Name string
	Msg  string
}

func (e *MacroError) Error() string {
	return fmt.Sprintf("%s: macro %q: %s", e.Info, e.Name, e.Msg)
}

// ErrorList accumulates every diagnostic produced by a single Assemble call.
type ErrorList struct {
	Errors []error
}

func (l *ErrorList) Add(err error) { l.Errors = append(l.Errors, err) }

func (l *ErrorList) HasErrors() bool { return len(l.Errors) > 0 }

func (l *ErrorList) Error() string {
	if len(l.Errors) == 0 {
		return "no errors"
	}

	msg := fmt.Sprintf("%d error(s):\n", len(l.Errors))
	for _, err := range l.Errors {
		msg += "  " + err.Error() + "\n"
	}

	return msg
}
