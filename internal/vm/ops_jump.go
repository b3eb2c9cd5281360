package vm

// ops_jump.go implements control flow: the thirteen conditional/unconditional jumps,
// each testing flags set by the preceding cmp or arithmetic op, plus call and ret,
// which manage the return address on the stack.

import "fmt"

// jumpOp covers every opcode whose operand is a single absolute target address.
type jumpOp struct {
	opcode Opcode
	target Word
}

func (op jumpOp) String() string { return fmt.Sprintf("%s[%s]", op.opcode, op.target) }

func (op *jumpOp) Decode(p *Processor) error {
	target, err := p.fetchAddr()
	if err != nil {
		return err
	}

	op.target = target

	return nil
}

func (op *jumpOp) Execute(p *Processor) error {
	if op.taken(p) {
		p.Regs[PC] = op.target
	}

	return nil
}

// taken evaluates this jump's condition against the current flags. Signed relational
// jumps follow the standard sf/of comparison convention: the result of the preceding
// cmp is non-negative (sf == of) exactly when the first operand was >= the second.
func (op *jumpOp) taken(p *Processor) bool {
	zf, sf, of, cf := p.Regs[Zf] != 0, p.Regs[Sf] != 0, p.Regs[Of] != 0, p.Regs[Cf] != 0

	switch op.opcode {
	case Jmp:
		return true
	case Jmpz:
		return zf
	case Jmpnz:
		return !zf
	case Jmpgr:
		return !zf && sf == of
	case Jmpge:
		return sf == of
	case Jmplt:
		return sf != of
	case Jmple:
		return zf || sf != of
	case Jmpsn:
		return sf
	case Jmpnsn:
		return !sf
	case Jmpof:
		return of
	case Jmpnof:
		return !of
	case Jmpcr:
		return cf
	case Jmpncr:
		return !cf
	default:
		return false
	}
}

// callOp pushes the return address (pc after the call's operand) and jumps to target.
type callOp struct {
	target Word
}

func (op callOp) String() string { return fmt.Sprintf("call[%s]", op.target) }

func (op *callOp) Decode(p *Processor) error {
	target, err := p.fetchAddr()
	if err != nil {
		return err
	}

	op.target = target

	return nil
}

func (op *callOp) Execute(p *Processor) error {
	if err := p.stack.Push(&p.Regs[Stp], Size8, p.Regs[PC]); err != nil {
		return err
	}

	p.Regs[PC] = op.target

	return nil
}

// retOp pops the return address pushed by call back into pc.
type retOp struct{}

func (op retOp) String() string { return "ret" }

func (op *retOp) Decode(p *Processor) error { return nil }

func (op *retOp) Execute(p *Processor) error {
	v, err := p.stack.Pop(&p.Regs[Stp], p.Regs[Sbp], Size8)
	if err != nil {
		return err
	}

	p.Regs[PC] = v

	return nil
}

func registerJumpOps(d *[NumOpcodes]decoder) {
	for _, op := range []Opcode{
		Jmp, Jmpz, Jmpnz, Jmpgr, Jmpge, Jmplt, Jmple,
		Jmpsn, Jmpnsn, Jmpof, Jmpnof, Jmpcr, Jmpncr,
	} {
		op := op
		d[op] = func() operation { return &jumpOp{opcode: op} }
	}

	d[Call] = func() operation { return &callOp{} }
	d[Ret] = func() operation { return &retOp{} }
}
