package host

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/nicobert/rvm/internal/tty"
	"github.com/nicobert/rvm/internal/vm"
)

// newTestTerminal builds a Terminal against the real stdin/stdout, skipping the test
// when they are not an attached TTY (as under a plain "go test" run).
func newTestTerminal(tt *testing.T) (*Terminal, func()) {
	tt.Helper()

	console, err := tty.NewConsole(os.Stdin, os.Stdout)
	if errors.Is(err, tty.ErrNoTTY) {
		tt.Skipf("skipping: %s", err)
	}
	if err != nil {
		tt.Fatalf("NewConsole: %v", err)
	}

	return NewTerminal(console), func() { console.Close() }
}

func TestTerminalSize(tt *testing.T) {
	term, closeFn := newTestTerminal(tt)
	defer closeFn()

	h := New()
	term.Register(h)

	p := newTestProcessor()
	p.Regs[vm.Print] = vm.Word(termSize)

	if err := h.Handle(context.Background(), p, vm.TermIntr); err != nil {
		tt.Fatalf("Handle: %v", err)
	}

	if p.Regs[vm.Error] != vm.Word(vm.NoError) {
		tt.Fatalf("error = %d, want NoError", p.Regs[vm.Error])
	}

	if p.Regs[vm.R2] == 0 || p.Regs[vm.R3] == 0 {
		tt.Errorf("size = (%d, %d), want positive dimensions", p.Regs[vm.R2], p.Regs[vm.R3])
	}
}

func TestTerminalUnknownSubOp(tt *testing.T) {
	term, closeFn := newTestTerminal(tt)
	defer closeFn()

	h := New()
	term.Register(h)

	p := newTestProcessor()
	p.Regs[vm.Print] = 0xff

	if err := h.Handle(context.Background(), p, vm.TermIntr); err != nil {
		tt.Fatalf("Handle: %v", err)
	}

	if p.Regs[vm.Error] != vm.Word(vm.InvalidInput) {
		tt.Errorf("error = %d, want InvalidInput", p.Regs[vm.Error])
	}
}
