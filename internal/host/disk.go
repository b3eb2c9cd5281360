package host

// disk.go implements DISK_READ and DISK_WRITE against a byte-addressable backing file:
// r3 bytes are moved between local storage at r1 and memory at r2.

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/nicobert/rvm/internal/vm"
)

// Disk services DISK_READ/DISK_WRITE against a single backing file opened for
// read-write random access.
type Disk struct {
	mu   sync.Mutex
	file *os.File
}

// NewDisk opens path as the backing store, creating it if absent.
func NewDisk(path string) (*Disk, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("host: disk: %w", err)
	}

	return &Disk{file: f}, nil
}

// Close releases the backing file.
func (d *Disk) Close() error { return d.file.Close() }

// Register installs this Disk's handlers on h.
func (d *Disk) Register(h *Host) {
	h.Register(vm.DiskRead, d.read)
	h.Register(vm.DiskWrite, d.write)
}

// read moves r3 bytes from the backing file at byte offset r1 into memory at r2.
// Bytes past the end of the backing file read back as zero.
func (d *Disk) read(_ context.Context, p *vm.Processor) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	offset := int64(p.Regs[vm.R1])
	n := int(p.Regs[vm.R3])

	buf := make([]byte, n)

	if _, err := d.file.ReadAt(buf, offset); err != nil && err != io.EOF {
		setError(p, vm.NotFound)
		return nil
	}

	if err := p.Mem.StoreBytes(p.Regs[vm.R2], buf); err != nil {
		setError(p, vm.OutOfBounds)
		return nil
	}

	setError(p, vm.NoError)

	return nil
}

// write moves r3 bytes from memory at r2 into the backing file at byte offset r1.
func (d *Disk) write(_ context.Context, p *vm.Processor) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	offset := int64(p.Regs[vm.R1])
	n := int(p.Regs[vm.R3])

	buf, err := p.Mem.LoadBytes(p.Regs[vm.R2], n)
	if err != nil {
		setError(p, vm.OutOfBounds)
		return nil
	}

	if _, err := d.file.WriteAt(buf, offset); err != nil {
		setError(p, vm.WriteZero)
		return nil
	}

	setError(p, vm.NoError)

	return nil
}
