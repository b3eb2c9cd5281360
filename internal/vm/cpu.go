package vm

// cpu.go implements the fetch/decode/execute cycle over the dense opcode dispatch
// table. Each opcode's decode and execute steps live in the ops_*.go files grouped by
// instruction family; this file only owns the loop, the dispatch table itself, and the
// handful of helpers every family needs (operand fetch, flag update, stack access).

import (
	"context"
	"fmt"

	"github.com/nicobert/rvm/internal/log"
)

// HostService dispatches the intr opcode: it reads vm.Regs[Int] to select a handler and
// runs it against the live register file and memory. See package host for the default
// implementation; the processor only depends on this interface so it never imports
// host directly.
type HostService interface {
	Handle(ctx context.Context, p *Processor, code InterruptCode) error
}

// operation is implemented by every opcode's handler struct in the ops_*.go files. Each
// handler decodes its own operands from the instruction stream (advancing pc past
// them) and then executes against the processor state.
type operation interface {
	Decode(p *Processor) error
	Execute(p *Processor) error
	fmt.Stringer
}

// decoder constructs the zero-value operation for an opcode so the dispatch table can
// be a plain array of factory functions rather than pre-allocated instances shared
// (unsafely) across instructions.
type decoder func() operation

// Processor is the register-based machine: a register file, the flat memory it
// addresses, and the host-service dispatcher reached through intr.
type Processor struct {
	Regs RegisterFile
	Mem  *Memory
	Host HostService

	stack    *Stack
	halted   bool
	log      *log.Logger
	dispatch [NumOpcodes]decoder
	ctx      context.Context
}

// Option configures a Processor at construction. Options run after the zero-value
// struct is built so later options can see earlier ones' effects.
type Option func(*Processor)

// WithLogger overrides the processor's diagnostic logger (default: log.DefaultLogger()).
func WithLogger(l *log.Logger) Option {
	return func(p *Processor) { p.log = l }
}

// WithHost installs the host-service dispatcher used for intr.
func WithHost(h HostService) Option {
	return func(p *Processor) { p.Host = h }
}

// WithStackLimit sets the highest address the stack (stp) may reach. Default is the
// full size of mem.
func WithStackLimit(limit Word) Option {
	return func(p *Processor) { p.stack = NewStack(p.Mem, limit) }
}

// New builds a Processor over mem with pc, sbp and stp all zeroed, ready to run a
// freshly loaded image. Callers set pc (and sbp/stp, if not zero) via Regs or a Loader
// before calling Run.
func New(mem *Memory, opts ...Option) *Processor {
	p := &Processor{
		Mem: mem,
		log: log.DefaultLogger(),
		ctx: context.Background(),
	}

	p.dispatch = buildDispatch()

	for _, opt := range opts {
		opt(p)
	}

	if p.stack == nil {
		p.stack = NewStack(mem, Word(mem.Size()))
	}

	return p
}

// Halted reports whether exit has run.
func (p *Processor) Halted() bool { return p.halted }

// Run steps the processor until it halts, a host handler returns a fatal error, or ctx
// is done. It returns nil on a normal exit.
func (p *Processor) Run(ctx context.Context) error {
	for !p.halted {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := p.Step(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Step executes exactly one instruction: fetch the opcode at pc, decode its operands
// (advancing pc past them), then execute.
func (p *Processor) Step(ctx context.Context) error {
	if p.halted {
		return ErrHalted
	}

	pc := p.Regs[PC]

	raw, err := p.Mem.Load(pc, Size1)
	if err != nil {
		return &Fault{Err: fmt.Errorf("fetch at %s: %w", pc, err)}
	}

	op := Opcode(raw)
	if !op.Valid() || p.dispatch[op] == nil {
		return &Fault{Op: op, Err: ErrBadOpcode}
	}

	p.log.Debug("step", log.String("pc", pc.String()), log.String("op", op.String()))

	p.Regs[PC] = pc + 1

	inst := p.dispatch[op]()

	if err := inst.Decode(p); err != nil {
		return &Fault{Op: op, Err: err}
	}

	p.ctx = ctx

	if err := inst.Execute(p); err != nil {
		return &Fault{Op: op, Err: err}
	}

	return nil
}

// PushBytes pushes data onto the VM stack one byte at a time, in order, and returns the
// address of its first byte -- the low end of the pushed range, since the stack grows
// upward. Used by host handlers (INPUT_STRING) that hand a result back on the VM's own
// stack instead of requiring a caller-supplied buffer.
func (p *Processor) PushBytes(data []byte) (Word, error) {
	start := p.Regs[Stp]

	for _, b := range data {
		if err := p.stack.Push(&p.Regs[Stp], Size1, Word(b)); err != nil {
			return 0, err
		}
	}

	return start, nil
}

// fetchByte reads one byte from the instruction stream at pc and advances pc.
func (p *Processor) fetchByte() (byte, error) {
	pc := p.Regs[PC]

	b, err := p.Mem.Load(pc, Size1)
	if err != nil {
		return 0, err
	}

	p.Regs[PC] = pc + 1

	return byte(b), nil
}

// fetchSized reads a Size-byte little-endian operand from the instruction stream at pc
// and advances pc past it.
func (p *Processor) fetchSized(size Size) (Word, error) {
	pc := p.Regs[PC]

	v, err := p.Mem.Load(pc, size)
	if err != nil {
		return 0, err
	}

	p.Regs[PC] = pc + uint64AsWord(size)

	return v, nil
}

// fetchAddr reads an 8-byte address literal from the instruction stream at pc.
func (p *Processor) fetchAddr() (Word, error) {
	return p.fetchSized(Size8)
}

func uint64AsWord(s Size) Word { return Word(s) }

// fetchRegister reads one byte naming a register from the instruction stream and
// validates it.
func (p *Processor) fetchRegister() (Register, error) {
	b, err := p.fetchByte()
	if err != nil {
		return 0, err
	}

	r := Register(b)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: register %#x", ErrBadOpcode, b)
	}

	return r, nil
}

// fetchSize reads one byte naming an operand width and validates it.
func (p *Processor) fetchSize() (Size, error) {
	b, err := p.fetchByte()
	if err != nil {
		return 0, err
	}

	s := Size(b)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %#x", ErrBadSize, b)
	}

	return s, nil
}

// sext sign-extends the low size bytes of v to a full Word. No instruction calls it:
// idiv, imod and cmp read their operands as full 64-bit words.
func sext(v Word, size Size) Word {
	shift := uint(64 - 8*size)

	return Word(int64(v<<shift) >> shift)
}

// setArithFlags updates zf/sf/cf/of from a signed addition-style result: zf when the
// result is zero, sf from the result's sign bit, cf on unsigned carry out, of on
// signed overflow.
func (p *Processor) setArithFlags(a, b, result Word, size Size, carry, overflow bool) {
	mask := sizeMask(size)

	if result&mask == 0 {
		p.Regs[Zf] = 1
	} else {
		p.Regs[Zf] = 0
	}

	signBit := Word(1) << (8*uint(size) - 1)
	if result&signBit != 0 {
		p.Regs[Sf] = 1
	} else {
		p.Regs[Sf] = 0
	}

	if carry {
		p.Regs[Cf] = 1
	} else {
		p.Regs[Cf] = 0
	}

	if overflow {
		p.Regs[Of] = 1
	} else {
		p.Regs[Of] = 0
	}
}

func sizeMask(size Size) Word {
	if size == Size8 {
		return ^Word(0)
	}

	return (Word(1) << (8 * uint(size))) - 1
}
