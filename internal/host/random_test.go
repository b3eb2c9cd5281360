package host

import (
	"context"
	"testing"

	"github.com/nicobert/rvm/internal/vm"
)

func TestRandomDeterministicSeed(tt *testing.T) {
	tt.Parallel()

	h1 := New()
	NewRandom(42).Register(h1)
	p1 := newTestProcessor()

	h2 := New()
	NewRandom(42).Register(h2)
	p2 := newTestProcessor()

	if err := h1.Handle(context.Background(), p1, vm.Random); err != nil {
		tt.Fatalf("Handle: %v", err)
	}
	if err := h2.Handle(context.Background(), p2, vm.Random); err != nil {
		tt.Fatalf("Handle: %v", err)
	}

	if p1.Regs[vm.R1] != p2.Regs[vm.R1] {
		tt.Errorf("same seed produced different values: %d vs %d", p1.Regs[vm.R1], p2.Regs[vm.R1])
	}

	if p1.Regs[vm.Error] != vm.Word(vm.NoError) {
		tt.Errorf("error register = %d, want NoError", p1.Regs[vm.Error])
	}
}
