package vm

// dispatch.go assembles the per-family decoder tables defined across the ops_*.go
// files into the single dense array cpu.go's Step indexes by opcode.

func buildDispatch() [NumOpcodes]decoder {
	var d [NumOpcodes]decoder

	registerMoveOps(&d)
	registerArithOps(&d)
	registerStackOps(&d)
	registerJumpOps(&d)
	registerSysOps(&d)

	return d
}
