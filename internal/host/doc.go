// Package host implements the default HostService: the table of handlers a running
// program reaches through the processor's single intr opcode, indexed by the value of
// the int register. Every handler reads its arguments from fixed role registers
// (input, print, error, int) and memory, and reports failure by setting the error
// register rather than by any Go-visible side channel -- from the program's point of
// view, a host call either succeeds or leaves a code in error.
package host

import (
	"context"
	"fmt"

	"github.com/nicobert/rvm/internal/vm"
)

// Handler services one interrupt code against the live processor state.
type Handler func(ctx context.Context, p *vm.Processor) error

// Host is the default vm.HostService: a flat table of handlers indexed by
// vm.InterruptCode.
type Host struct {
	handlers [vm.NumInterrupts]Handler
}

// New builds a Host with no handlers registered; callers install handlers with
// Register (or a module's own Register method), or call NewDefault for the usual
// stdio/random/clock set plus disk/fs when configured.
func New() *Host {
	return &Host{}
}

// Register installs fn as the handler for code, replacing any existing handler.
func (h *Host) Register(code vm.InterruptCode, fn Handler) {
	h.handlers[code] = fn
}

// Handle implements vm.HostService.
func (h *Host) Handle(ctx context.Context, p *vm.Processor, code vm.InterruptCode) error {
	if code >= vm.NumInterrupts || h.handlers[code] == nil {
		p.Regs[vm.Error] = vm.Word(vm.ModuleUnavailable)

		return fmt.Errorf("%w: code %d", vm.ErrNoHandler, code)
	}

	return h.handlers[code](ctx, p)
}

// setError records code in the error register and clears it to vm.NoError on success,
// the convention every handler in this package follows.
func setError(p *vm.Processor, code vm.ErrorCode) {
	p.Regs[vm.Error] = vm.Word(code)
}
