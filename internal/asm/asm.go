// Package asm implements the two-pass assembler: it resolves includes into one token
// stream, expands parametric and inline macros, parses the result into a typed IR,
// assigns every label and instruction an address, and emits the bytecode container
// package vm's loader reads.
package asm

import (
	"fmt"

	"github.com/nicobert/rvm/internal/encoding"
	"github.com/nicobert/rvm/internal/log"
)

// Options configures an assembler run.
type Options struct {
	SearchPath []string
	Debug      bool

	// Reader loads source units. Defaults to OSFileReader{} when nil; callers that
	// want to fall back to an embedded runtime library (see package monitor) supply
	// their own FileReader that tries disk first and a bundled fs.FS second.
	Reader FileReader
}

// Assembler is the top-level orchestrator tying together include resolution, macro
// expansion, parsing, address assignment and code generation.
type Assembler struct {
	opts Options
	log  *log.Logger
}

// NewAssembler returns an Assembler configured with opts.
func NewAssembler(opts Options) *Assembler {
	return &Assembler{opts: opts, log: log.DefaultLogger()}
}

// Assemble reads path and every file it includes, and returns the assembled
// container. Diagnostics accumulate in the returned ErrorList rather than aborting the
// run early; callers should check HasErrors before trusting the container.
func (a *Assembler) Assemble(path string) (encoding.Container, *ErrorList) {
	errs := &ErrorList{}

	reader := a.opts.Reader
	if reader == nil {
		reader = OSFileReader{}
	}

	resolver := NewUnitResolver(reader)
	resolver.SearchPath = a.opts.SearchPath

	toks := resolver.Resolve(path, errs)

	expanded := NewExpander().Expand(toks, errs)

	prog := NewParser(expanded, errs).Parse()
	prog = insertTextDataJumps(prog)

	if errs.HasErrors() {
		return encoding.Container{}, errs
	}

	table, entry, err := Assign(prog, 0, errs)
	if err != nil {
		errs.Add(err)
	}

	if errs.HasErrors() {
		return encoding.Container{}, errs
	}

	a.log.Debug("assigned addresses", "entry", entry, "symbols", fmt.Sprintf("%d", len(table.syms)))

	container := NewGenerator(table, entry, a.opts.Debug).Generate(prog, errs)

	return container, errs
}
