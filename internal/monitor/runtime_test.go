package monitor_test

import (
	"context"
	"testing"

	"github.com/nicobert/rvm/internal/asm"
	"github.com/nicobert/rvm/internal/monitor"
	"github.com/nicobert/rvm/internal/vm"
)

func TestReaderFallsBackToEmbeddedLibrary(tt *testing.T) {
	tt.Parallel()

	r := monitor.Reader{}

	src, err := r.Read("rvm/callconv.rvmasm")
	if err != nil {
		tt.Fatalf("Read: %v", err)
	}

	if len(src) == 0 {
		tt.Fatal("Read returned empty source")
	}
}

func TestAllocLibraryAssembles(tt *testing.T) {
	tt.Parallel()

	main := `
.include "rvm/alloc.rvmasm"
.entry start
.text
start:
    movc 8, r1, 16
    call malloc
    exit
`

	reader := mapOverlay{base: monitor.Reader{}, overlay: map[string]string{"main.rvmasm": main}}

	a := asm.NewAssembler(asm.Options{Reader: reader})

	_, errs := a.Assemble("main.rvmasm")
	if errs.HasErrors() {
		tt.Fatalf("unexpected assemble errors: %v", errs.Error())
	}
}

func TestCallconvMacrosExpand(tt *testing.T) {
	tt.Parallel()

	main := `
.include "rvm/callconv.rvmasm"
.text
start:
    !save_reg_state
    !restore_reg_state
    ret
`

	reader := mapOverlay{base: monitor.Reader{}, overlay: map[string]string{"main.rvmasm": main}}

	a := asm.NewAssembler(asm.Options{Reader: reader})

	_, errs := a.Assemble("main.rvmasm")
	if errs.HasErrors() {
		tt.Fatalf("unexpected assemble errors: %v", errs.Error())
	}
}

// TestCallConvSquareFunction assembles and runs a square(x) = x*x function built on
// the embedded enter_frame/leave_frame macros, exercising the full call/ret
// convention end to end: caller pushes the argument, callee reads it back relative to
// sbp, and both frames tear down cleanly enough for the caller's own cleanup and the
// ultimate ret to succeed.
func TestCallConvSquareFunction(tt *testing.T) {
	tt.Parallel()

	main := `
.include "rvm/callconv.rvmasm"
.entry start
.text
start:
    movc 8, r1, 7
    push r1
    call square
    pop r2
    mov 8, exit, r1
    exit

square:
    !enter_frame 0
    mov 8, r1, sbp
    movc 8, r8, 24
    isub r1, r8
    movi 8, r1, r1
    imul r1, r1
    !leave_frame 0
    ret
`

	reader := mapOverlay{base: monitor.Reader{}, overlay: map[string]string{"main.rvmasm": main}}

	a := asm.NewAssembler(asm.Options{Reader: reader})

	container, errs := a.Assemble("main.rvmasm")
	if errs.HasErrors() {
		tt.Fatalf("unexpected assemble errors: %v", errs.Error())
	}

	mem := vm.NewMemory(4096)
	proc := vm.New(mem, vm.WithStackLimit(4096))

	loader := vm.NewLoader(proc)
	if _, err := loader.Load(container); err != nil {
		tt.Fatalf("Load: %v", err)
	}

	// The loader only installs the image; give the stack room above it so pushing
	// arguments and frames doesn't clobber the program's own text/data.
	proc.Regs[vm.Stp] = vm.Word(len(container.Image)) + 256

	if err := proc.Run(context.Background()); err != nil {
		tt.Fatalf("Run: %v", err)
	}

	if got := proc.Regs[vm.R1]; got != 49 {
		tt.Errorf("r1 = %d, want 49 (square(7))", got)
	}

	if got := proc.Regs[vm.Exit]; got != 49 {
		tt.Errorf("exit = %d, want 49", got)
	}
}

// mapOverlay serves a fixed in-memory root unit and falls through to base (the
// embedded runtime library) for everything else, so a test can .include a bundled
// library file without writing it to disk.
type mapOverlay struct {
	base    asm.FileReader
	overlay map[string]string
}

func (m mapOverlay) Read(path string) (string, error) {
	if src, ok := m.overlay[path]; ok {
		return src, nil
	}

	return m.base.Read(path)
}
