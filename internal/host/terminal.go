package host

// terminal.go implements TERM_INTR, which multiplexes raw-terminal sub-operations by
// the value of print: cursor goto, clear, set SGR style, set cursor shape, query size,
// and a non-blocking key read backed by the console's background listener goroutine.

import (
	"context"

	"github.com/nicobert/rvm/internal/tty"
	"github.com/nicobert/rvm/internal/vm"
)

// Terminal sub-operations, selected via print.
const (
	termGoto termOp = iota
	termClear
	termSetStyle
	termSetCursorShape
	termSize
	termReadKey
)

type termOp vm.Word

// Terminal services TERM_INTR against a raw-mode tty.Console.
type Terminal struct {
	console *tty.Console
}

// NewTerminal wraps console for TERM_INTR.
func NewTerminal(console *tty.Console) *Terminal {
	return &Terminal{console: console}
}

// Register installs this Terminal's handler on h.
func (t *Terminal) Register(h *Host) {
	h.Register(vm.TermIntr, t.dispatch)
}

// dispatch reads print (sub-op), r2/r3 (row/col or SGR/shape code as appropriate) and
// writes any result into r2/r3.
func (t *Terminal) dispatch(_ context.Context, p *vm.Processor) error {
	switch termOp(p.Regs[vm.Print]) {
	case termGoto:
		if err := t.console.Goto(int(p.Regs[vm.R2]), int(p.Regs[vm.R3])); err != nil {
			setError(p, vm.WriteZero)
			return nil
		}

	case termClear:
		if err := t.console.Clear(); err != nil {
			setError(p, vm.WriteZero)
			return nil
		}

	case termSetStyle:
		if err := t.console.SetStyle(int(p.Regs[vm.R2])); err != nil {
			setError(p, vm.WriteZero)
			return nil
		}

	case termSetCursorShape:
		if err := t.console.SetCursorShape(int(p.Regs[vm.R2])); err != nil {
			setError(p, vm.WriteZero)
			return nil
		}

	case termSize:
		rows, cols, err := t.console.Size()
		if err != nil {
			setError(p, vm.GenericError)
			return nil
		}

		p.Regs[vm.R2] = vm.Word(rows)
		p.Regs[vm.R3] = vm.Word(cols)

	case termReadKey:
		key, ok := t.console.ReadKey()
		if !ok {
			setError(p, vm.EndOfFile)
			return nil
		}

		p.Regs[vm.R2] = vm.Word(key)

	default:
		setError(p, vm.InvalidInput)
		return nil
	}

	setError(p, vm.NoError)

	return nil
}
