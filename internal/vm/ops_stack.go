package vm

// ops_stack.go implements the stack family: push/pop of a register or constant, always
// a full 8-byte word, plus pushsp/popsp, which reserve and release a block of n bytes
// above stp for locals without touching them. Neither family is a frame-base
// save/restore mechanism on its own: pop and popsp both floor stp at the live sbp, so
// retrieving a saved sbp (which sits below that floor once established) takes an
// indirect load and a direct register move instead -- see callconv.rvmasm's
// leave_frame macro.

import "fmt"

// pushRegOp pushes the value of a register.
type pushRegOp struct {
	reg Register
}

func (op pushRegOp) String() string { return fmt.Sprintf("push[%s]", op.reg) }

func (op *pushRegOp) Decode(p *Processor) error {
	reg, err := p.fetchRegister()
	if err != nil {
		return err
	}

	op.reg = reg

	return nil
}

func (op *pushRegOp) Execute(p *Processor) error {
	return p.stack.Push(&p.Regs[Stp], Size8, p.Regs[op.reg])
}

// pushConstOp pushes a sized immediate, zero-extended to a full word.
type pushConstOp struct {
	size Size
	v    Word
}

func (op pushConstOp) String() string { return fmt.Sprintf("pushc[size:%s %s]", op.size, op.v) }

func (op *pushConstOp) Decode(p *Processor) error {
	size, err := p.fetchSize()
	if err != nil {
		return err
	}

	v, err := p.fetchSized(size)
	if err != nil {
		return err
	}

	op.size, op.v = size, v

	return nil
}

func (op *pushConstOp) Execute(p *Processor) error {
	return p.stack.Push(&p.Regs[Stp], Size8, op.v&sizeMask(op.size))
}

// popRegOp pops a full word off the stack into a register.
type popRegOp struct {
	reg Register
}

func (op popRegOp) String() string { return fmt.Sprintf("pop[%s]", op.reg) }

func (op *popRegOp) Decode(p *Processor) error {
	reg, err := p.fetchRegister()
	if err != nil {
		return err
	}

	op.reg = reg

	return nil
}

func (op *popRegOp) Execute(p *Processor) error {
	v, err := p.stack.Pop(&p.Regs[Stp], p.Regs[Sbp], Size8)
	if err != nil {
		return err
	}

	p.Regs[op.reg] = v

	return nil
}

// frameOp implements pushsp n and popsp n, which reserve and release n bytes of stack
// space for locals by moving stp alone -- no value is ever written or read.
type frameOp struct {
	opcode Opcode
	size   Size
	n      Word
}

func (op frameOp) String() string {
	return fmt.Sprintf("%s[size:%s %s]", op.opcode, op.size, op.n)
}

func (op *frameOp) Decode(p *Processor) error {
	size, err := p.fetchSize()
	if err != nil {
		return err
	}

	n, err := p.fetchSized(size)
	if err != nil {
		return err
	}

	op.size, op.n = size, n

	return nil
}

func (op *frameOp) Execute(p *Processor) error {
	switch op.opcode {
	case Pushsp:
		return p.stack.Reserve(&p.Regs[Stp], op.n)

	case Popsp:
		return p.stack.Release(&p.Regs[Stp], p.Regs[Sbp], op.n)
	}

	return nil
}

func registerStackOps(d *[NumOpcodes]decoder) {
	d[PushReg] = func() operation { return &pushRegOp{} }
	d[PushConst] = func() operation { return &pushConstOp{} }
	d[PopReg] = func() operation { return &popRegOp{} }

	for _, op := range []Opcode{Pushsp, Popsp} {
		op := op
		d[op] = func() operation { return &frameOp{opcode: op} }
	}
}
