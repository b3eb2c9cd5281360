package vm

import (
	"bytes"
	"context"
	"strings"
	"testing"

	rvmlog "github.com/nicobert/rvm/internal/log"
)

// movConst appends a MovRC instruction: op | size | reg | imm[8].
func movConst(b []byte, reg Register, v Word) []byte {
	b = append(b, byte(MovRC), byte(Size8), byte(reg))

	for i := 0; i < 8; i++ {
		b = append(b, byte(v>>(8*uint(i))))
	}

	return b
}

func TestProcessorRun_AddAndExit(tt *testing.T) {
	tt.Parallel()

	var code []byte
	code = movConst(code, R1, 2)
	code = movConst(code, R2, 3)
	code = append(code, byte(Iadd), byte(R1), byte(R2))
	code = movConst(code, Exit, 7)
	code = append(code, byte(Exit))

	mem := NewMemory(256)
	if err := mem.StoreBytes(0, code); err != nil {
		tt.Fatalf("StoreBytes: %v", err)
	}

	p := New(mem)

	if err := p.Run(context.Background()); err != nil {
		tt.Fatalf("Run: %v", err)
	}

	if !p.Halted() {
		tt.Fatal("processor did not halt")
	}

	if got := p.Regs[R1]; got != 5 {
		tt.Errorf("r1 = %d, want 5", got)
	}

	if got := p.Regs[Exit]; got != 7 {
		tt.Errorf("exit = %d, want 7", got)
	}
}

func TestProcessorStep_BadOpcode(tt *testing.T) {
	tt.Parallel()

	mem := NewMemory(16)
	if err := mem.Store(0, Size1, Word(NumOpcodes)); err != nil {
		tt.Fatalf("Store: %v", err)
	}

	p := New(mem)

	err := p.Step(context.Background())

	var fault *Fault
	if !asFault(err, &fault) {
		tt.Fatalf("Step() err = %v, want *Fault", err)
	}
}

func asFault(err error, target **Fault) bool {
	f, ok := err.(*Fault)
	if ok {
		*target = f
	}

	return ok
}

func TestProcessorDivideByZero(tt *testing.T) {
	tt.Parallel()

	var code []byte
	code = movConst(code, R1, 10)
	code = movConst(code, R2, 0)
	code = append(code, byte(Idiv), byte(R1), byte(R2))
	code = append(code, byte(Exit))

	mem := NewMemory(256)
	if err := mem.StoreBytes(0, code); err != nil {
		tt.Fatalf("StoreBytes: %v", err)
	}

	p := New(mem)

	if err := p.Run(context.Background()); err == nil {
		tt.Fatal("Run() err = nil, want a division fault")
	}
}

func TestIdivStoresRemainderInRf(tt *testing.T) {
	tt.Parallel()

	var code []byte
	code = movConst(code, R1, 17)
	code = movConst(code, R2, 5)
	code = append(code, byte(Idiv), byte(R1), byte(R2))
	code = append(code, byte(Exit))

	mem := NewMemory(256)
	if err := mem.StoreBytes(0, code); err != nil {
		tt.Fatalf("StoreBytes: %v", err)
	}

	p := New(mem)

	if err := p.Run(context.Background()); err != nil {
		tt.Fatalf("Run: %v", err)
	}

	if got := p.Regs[R1]; got != 3 {
		tt.Errorf("r1 (quotient) = %d, want 3", got)
	}

	if got := p.Regs[Rf]; got != 2 {
		tt.Errorf("rf (remainder) = %d, want 2", got)
	}
}

func TestImodClearsRf(tt *testing.T) {
	tt.Parallel()

	var code []byte
	code = movConst(code, R1, 17)
	code = movConst(code, R2, 5)
	code = append(code, byte(Idiv), byte(R1), byte(R2)) // leaves rf = 2
	code = movConst(code, R1, 17)
	code = append(code, byte(Imod), byte(R1), byte(R2))
	code = append(code, byte(Exit))

	mem := NewMemory(256)
	if err := mem.StoreBytes(0, code); err != nil {
		tt.Fatalf("StoreBytes: %v", err)
	}

	p := New(mem)

	if err := p.Run(context.Background()); err != nil {
		tt.Fatalf("Run: %v", err)
	}

	if got := p.Regs[R1]; got != 2 {
		tt.Errorf("r1 (modulo) = %d, want 2", got)
	}

	if got := p.Regs[Rf]; got != 0 {
		tt.Errorf("rf = %d, want 0 (imod always clears it)", got)
	}
}

func TestPushspReservesWithoutWriting(tt *testing.T) {
	tt.Parallel()

	var code []byte
	code = append(code, byte(Pushsp), byte(Size8))
	code = append(code, 16, 0, 0, 0, 0, 0, 0, 0) // n = 16
	code = append(code, byte(Exit))

	mem := NewMemory(256)
	if err := mem.StoreBytes(0, code); err != nil {
		tt.Fatalf("StoreBytes: %v", err)
	}

	p := New(mem, WithStackLimit(256))
	p.Regs[Stp] = 32

	if err := p.Run(context.Background()); err != nil {
		tt.Fatalf("Run: %v", err)
	}

	if got := p.Regs[Stp]; got != 48 {
		tt.Errorf("stp = %d, want 48 (32 + 16 reserved)", got)
	}
}

func TestPopspReleasesWithoutReading(tt *testing.T) {
	tt.Parallel()

	var code []byte
	code = append(code, byte(Popsp), byte(Size8))
	code = append(code, 16, 0, 0, 0, 0, 0, 0, 0) // n = 16
	code = append(code, byte(Exit))

	mem := NewMemory(256)
	if err := mem.StoreBytes(0, code); err != nil {
		tt.Fatalf("StoreBytes: %v", err)
	}

	p := New(mem, WithStackLimit(256))
	p.Regs[Stp] = 48
	p.Regs[Sbp] = 0

	if err := p.Run(context.Background()); err != nil {
		tt.Fatalf("Run: %v", err)
	}

	if got := p.Regs[Stp]; got != 32 {
		tt.Errorf("stp = %d, want 32 (48 - 16 released)", got)
	}
}

func TestPushspOverflowLeavesStpUnchanged(tt *testing.T) {
	tt.Parallel()

	var code []byte
	code = append(code, byte(Pushsp), byte(Size8))
	code = append(code, 16, 0, 0, 0, 0, 0, 0, 0) // n = 16
	code = append(code, byte(Exit))

	mem := NewMemory(256)
	if err := mem.StoreBytes(0, code); err != nil {
		tt.Fatalf("StoreBytes: %v", err)
	}

	p := New(mem, WithStackLimit(40))
	p.Regs[Stp] = 32

	if err := p.Run(context.Background()); err == nil {
		tt.Fatal("Run() err = nil, want a stack-overflow fault")
	}

	if got := p.Regs[Stp]; got != 32 {
		tt.Errorf("stp = %d, want unchanged 32 on overflow", got)
	}
}

func TestStepTracesVerbosePCAndMnemonic(tt *testing.T) {
	var buf bytes.Buffer

	prev := rvmlog.LogLevel.Level()
	rvmlog.LogLevel.Set(rvmlog.Debug)

	defer rvmlog.LogLevel.Set(prev)

	logger := rvmlog.NewFormattedLogger(&buf)

	mem := NewMemory(16)
	if err := mem.Store(0, Size1, Word(Exit)); err != nil {
		tt.Fatalf("Store: %v", err)
	}

	p := New(mem, WithLogger(logger))

	if err := p.Step(context.Background()); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	out := buf.String()

	if !strings.Contains(out, "PC") {
		tt.Errorf("trace output missing a pc field: %q", out)
	}

	if !strings.Contains(out, "exit") {
		tt.Errorf("trace output missing the exit mnemonic: %q", out)
	}
}
