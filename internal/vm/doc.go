// Package vm implements the register-based virtual machine: a flat byte-addressable
// memory, a fetch/decode/execute loop over a dense opcode dispatch table, and the
// interrupt mechanism that hands I/O off to host-service modules.
//
// The processor has no notion of files, terminals or the outside world. Everything it
// needs from the host -- printing, reading a line, the time of day, a random number,
// disk contents, a terminal -- is reached through exactly one opcode, intr, which
// indexes a handler table by the value of the int register. See package host for the
// default handlers and package asm for the assembler that produces the bytecode this
// package executes.
package vm
