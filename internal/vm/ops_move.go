package vm

// ops_move.go implements the twelve memory-move opcodes. Each combines a destination
// addressing mode (register, address literal, or register-indirect) with a source mode
// (the same three, plus an immediate constant), all carrying an explicit size tag that
// selects how many of the value's low bytes move.
//
// Naming follows opcodes.go: MovDstSrc, where R=register, A=address literal,
// I=register-indirect, C=constant (source only). The source's addressing mode decides
// how its operand is fetched and read; the destination's decides how the result is
// stored. The two are independent, which is why decode and execute below dispatch on
// dst and src separately rather than switching on the full opcode twelve ways.

import "fmt"

type moveOp struct {
	opcode Opcode
	size   Size

	dstReg  Register
	dstAddr Word

	srcReg   Register
	srcAddr  Word
	srcConst Word
}

func (op moveOp) String() string {
	return fmt.Sprintf("%s[size:%s]", op.opcode, op.size)
}

var moveDstIsAddr = map[Opcode]bool{
	MovAR: true, MovAA: true, MovAI: true, MovAC: true,
}

var moveDstIsIndirect = map[Opcode]bool{
	MovIR: true, MovIA: true, MovII: true, MovIC: true,
}

var moveSrcKind = map[Opcode]byte{
	MovRR: 'R', MovAR: 'R', MovIR: 'R',
	MovRA: 'A', MovAA: 'A', MovIA: 'A',
	MovRI: 'I', MovAI: 'I', MovII: 'I',
	MovRC: 'C', MovAC: 'C', MovIC: 'C',
}

func (op *moveOp) Decode(p *Processor) error {
	size, err := p.fetchSize()
	if err != nil {
		return err
	}

	op.size = size

	switch {
	case moveDstIsAddr[op.opcode]:
		addr, err := p.fetchAddr()
		if err != nil {
			return err
		}
		op.dstAddr = addr

	default: // register destination or register-indirect destination: both a reg byte
		reg, err := p.fetchRegister()
		if err != nil {
			return err
		}
		op.dstReg = reg
	}

	switch moveSrcKind[op.opcode] {
	case 'R', 'I':
		reg, err := p.fetchRegister()
		if err != nil {
			return err
		}
		op.srcReg = reg

	case 'A':
		addr, err := p.fetchAddr()
		if err != nil {
			return err
		}
		op.srcAddr = addr

	case 'C':
		v, err := p.fetchSized(size)
		if err != nil {
			return err
		}
		op.srcConst = v

	default:
		return fmt.Errorf("%w: %s has no source form", ErrBadOpcode, op.opcode)
	}

	return nil
}

// readSrc resolves this op's source to a concrete Word of size bytes, following the
// addressing mode implied by the opcode.
func (op moveOp) readSrc(p *Processor) (Word, error) {
	switch moveSrcKind[op.opcode] {
	case 'R':
		return p.Regs[op.srcReg] & sizeMask(op.size), nil
	case 'I':
		return p.Mem.Load(p.Regs[op.srcReg], op.size)
	case 'A':
		return p.Mem.Load(op.srcAddr, op.size)
	case 'C':
		return op.srcConst & sizeMask(op.size), nil
	default:
		return 0, fmt.Errorf("%w: %s has no source form", ErrBadOpcode, op.opcode)
	}
}

func (op *moveOp) Execute(p *Processor) error {
	v, err := op.readSrc(p)
	if err != nil {
		return err
	}

	switch {
	case moveDstIsAddr[op.opcode]:
		return p.Mem.Store(op.dstAddr, op.size, v)
	case moveDstIsIndirect[op.opcode]:
		return p.Mem.Store(p.Regs[op.dstReg], op.size, v)
	default:
		p.Regs[op.dstReg] = v
	}

	return nil
}

func registerMoveOps(d *[NumOpcodes]decoder) {
	for _, op := range []Opcode{
		MovRR, MovRA, MovRI, MovRC,
		MovAR, MovAA, MovAI, MovAC,
		MovIR, MovIA, MovII, MovIC,
	} {
		op := op
		d[op] = func() operation { return &moveOp{opcode: op} }
	}
}
