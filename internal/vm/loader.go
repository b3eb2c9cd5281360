package vm

// loader.go reads an assembled bytecode container and installs it into a Processor's
// memory, ready to run from its recorded entry address.

import (
	"fmt"

	"github.com/nicobert/rvm/internal/encoding"
	"github.com/nicobert/rvm/internal/log"
)

// Loader copies a bytecode image into a Processor's memory.
type Loader struct {
	p   *Processor
	log *log.Logger
}

// NewLoader creates a loader bound to p.
func NewLoader(p *Processor) *Loader {
	return &Loader{p: p, log: log.DefaultLogger()}
}

// ErrLoader wraps any failure encountered while loading a container.
var ErrLoader = fmt.Errorf("loader error")

// Load installs c's image at address 0 and sets pc to its entry address. It returns
// the number of bytes copied.
func (l *Loader) Load(c encoding.Container) (int, error) {
	if len(c.Image) == 0 {
		return 0, fmt.Errorf("%w: empty image", ErrLoader)
	}

	if len(c.Image) > l.p.Mem.Size() {
		return 0, fmt.Errorf("%w: image of %d bytes exceeds memory of %d bytes", ErrLoader, len(c.Image), l.p.Mem.Size())
	}

	if err := l.p.Mem.StoreBytes(0, c.Image); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLoader, err)
	}

	l.p.Regs[PC] = Word(c.Entry)

	l.log.Debug("loaded image", "bytes", len(c.Image), "entry", l.p.Regs[PC])

	return len(c.Image), nil
}
