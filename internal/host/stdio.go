package host

// stdio.go implements the console print and input interrupts: PRINT_SIGNED,
// PRINT_UNSIGNED, PRINT_CHAR, PRINT_STRING, PRINT_BYTES, INPUT_SIGNED, INPUT_UNSIGNED
// and INPUT_STRING. Print operands come from the print register (or, for PRINT_BYTES,
// print/r1 as address/length); input operands are written back through input.

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/nicobert/rvm/internal/vm"
)

// Stdio holds the console streams the print/input handlers read and write.
type Stdio struct {
	out *bufio.Writer
	in  *bufio.Reader
}

// NewStdio wraps out/in for buffered console I/O.
func NewStdio(out io.Writer, in io.Reader) *Stdio {
	return &Stdio{out: bufio.NewWriter(out), in: bufio.NewReader(in)}
}

// Flush writes any buffered console output. The FLUSH_STDOUT interrupt calls this
// directly; callers embedding Stdio in a longer-lived process should also call it on
// shutdown.
func (s *Stdio) Flush() error { return s.out.Flush() }

// Register installs this Stdio's handlers on h.
func (s *Stdio) Register(h *Host) {
	h.Register(vm.PrintSigned, s.printSigned)
	h.Register(vm.PrintUnsigned, s.printUnsigned)
	h.Register(vm.PrintChar, s.printChar)
	h.Register(vm.PrintString, s.printString)
	h.Register(vm.PrintBytes, s.printBytes)
	h.Register(vm.InputSigned, s.inputSigned)
	h.Register(vm.InputUnsigned, s.inputUnsigned)
	h.Register(vm.InputString, s.inputString)
	h.Register(vm.FlushStdout, s.flush)
}

func (s *Stdio) printSigned(_ context.Context, p *vm.Processor) error {
	_, err := fmt.Fprintf(s.out, "%d", int64(p.Regs[vm.Print]))
	return s.report(p, err)
}

func (s *Stdio) printUnsigned(_ context.Context, p *vm.Processor) error {
	_, err := fmt.Fprintf(s.out, "%d", uint64(p.Regs[vm.Print]))
	return s.report(p, err)
}

func (s *Stdio) printChar(_ context.Context, p *vm.Processor) error {
	_, err := s.out.WriteRune(rune(p.Regs[vm.Print]))
	return s.report(p, err)
}

// printString writes the NUL-terminated string at the address in print.
func (s *Stdio) printString(_ context.Context, p *vm.Processor) error {
	str, err := p.Mem.LoadCString(p.Regs[vm.Print])
	if err != nil {
		setError(p, vm.InvalidData)
		return nil
	}

	_, err = s.out.Write(str)

	return s.report(p, err)
}

// printBytes writes a fixed-length, non-NUL-terminated buffer: address in print,
// length in r1.
func (s *Stdio) printBytes(_ context.Context, p *vm.Processor) error {
	buf, err := p.Mem.LoadBytes(p.Regs[vm.Print], int(p.Regs[vm.R1]))
	if err != nil {
		setError(p, vm.InvalidData)
		return nil
	}

	_, err = s.out.Write(buf)

	return s.report(p, err)
}

func (s *Stdio) inputSigned(_ context.Context, p *vm.Processor) error {
	var v int64
	if _, err := fmt.Fscan(s.in, &v); err != nil {
		return s.reportInput(p, err)
	}

	p.Regs[vm.Input] = vm.Word(v)
	setError(p, vm.NoError)

	return nil
}

func (s *Stdio) inputUnsigned(_ context.Context, p *vm.Processor) error {
	var v uint64
	if _, err := fmt.Fscan(s.in, &v); err != nil {
		return s.reportInput(p, err)
	}

	p.Regs[vm.Input] = vm.Word(v)
	setError(p, vm.NoError)

	return nil
}

// inputString reads one line, pushes it NUL-terminated onto the VM stack, and reports
// back the resulting address in input and its length (excluding the terminator) in r1.
// There is no caller-supplied buffer: the host owns the allocation.
func (s *Stdio) inputString(_ context.Context, p *vm.Processor) error {
	line, err := s.in.ReadString('\n')
	if err != nil && len(line) == 0 {
		return s.reportInput(p, err)
	}

	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}

	addr, err := p.PushBytes(append([]byte(line), 0))
	if err != nil {
		setError(p, vm.OutOfBounds)
		return nil
	}

	p.Regs[vm.Input] = addr
	p.Regs[vm.R1] = vm.Word(len(line))
	setError(p, vm.NoError)

	return nil
}

func (s *Stdio) flush(_ context.Context, p *vm.Processor) error {
	err := s.out.Flush()
	return s.report(p, err)
}

func (s *Stdio) report(p *vm.Processor, err error) error {
	if err != nil {
		setError(p, vm.WriteZero)
		return nil
	}

	setError(p, vm.NoError)

	return nil
}

func (s *Stdio) reportInput(p *vm.Processor, err error) error {
	if err == io.EOF {
		setError(p, vm.EndOfFile)
		return nil
	}

	setError(p, vm.InvalidInput)

	return nil
}
