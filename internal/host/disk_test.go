package host

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/nicobert/rvm/internal/vm"
)

func TestDiskWriteThenRead(tt *testing.T) {
	tt.Parallel()

	path := filepath.Join(tt.TempDir(), "disk.img")

	disk, err := NewDisk(path)
	if err != nil {
		tt.Fatalf("NewDisk: %v", err)
	}
	defer disk.Close()

	h := New()
	disk.Register(h)

	p := vm.New(vm.NewMemory(1024))

	payload := bytes.Repeat([]byte{0xab}, 37)
	if err := p.Mem.StoreBytes(0, payload); err != nil {
		tt.Fatalf("StoreBytes: %v", err)
	}

	p.Regs[vm.R1] = 128 // byte offset on the backing store
	p.Regs[vm.R2] = 0   // memory address of the payload
	p.Regs[vm.R3] = vm.Word(len(payload))

	if err := h.Handle(context.Background(), p, vm.DiskWrite); err != nil {
		tt.Fatalf("Handle(write): %v", err)
	}

	if p.Regs[vm.Error] != vm.Word(vm.NoError) {
		tt.Fatalf("write error register = %d, want NoError", p.Regs[vm.Error])
	}

	// Read the same bytes back into a different memory region.
	readAddr := vm.Word(512)
	p.Regs[vm.R2] = readAddr

	if err := h.Handle(context.Background(), p, vm.DiskRead); err != nil {
		tt.Fatalf("Handle(read): %v", err)
	}

	got, err := p.Mem.LoadBytes(readAddr, len(payload))
	if err != nil {
		tt.Fatalf("LoadBytes: %v", err)
	}

	if !bytes.Equal(got, payload) {
		tt.Errorf("read back %v, want %v", got[:4], payload[:4])
	}
}

func TestDiskReadUnwrittenRegionZeroed(tt *testing.T) {
	tt.Parallel()

	path := filepath.Join(tt.TempDir(), "disk.img")

	disk, err := NewDisk(path)
	if err != nil {
		tt.Fatalf("NewDisk: %v", err)
	}
	defer disk.Close()

	h := New()
	disk.Register(h)

	p := newTestProcessor()
	p.Regs[vm.R1] = 0
	p.Regs[vm.R2] = 0
	p.Regs[vm.R3] = 16

	if err := h.Handle(context.Background(), p, vm.DiskRead); err != nil {
		tt.Fatalf("Handle: %v", err)
	}

	if p.Regs[vm.Error] != vm.Word(vm.NoError) {
		tt.Errorf("error register = %d, want NoError", p.Regs[vm.Error])
	}

	got, err := p.Mem.LoadBytes(0, 16)
	if err != nil {
		tt.Fatalf("LoadBytes: %v", err)
	}

	if !bytes.Equal(got, make([]byte, 16)) {
		tt.Errorf("unwritten region = %v, want all zero", got)
	}
}

func TestDiskPartialByteCount(tt *testing.T) {
	tt.Parallel()

	path := filepath.Join(tt.TempDir(), "disk.img")

	disk, err := NewDisk(path)
	if err != nil {
		tt.Fatalf("NewDisk: %v", err)
	}
	defer disk.Close()

	h := New()
	disk.Register(h)

	p := vm.New(vm.NewMemory(64))

	payload := []byte{1, 2, 3}
	if err := p.Mem.StoreBytes(0, payload); err != nil {
		tt.Fatalf("StoreBytes: %v", err)
	}

	p.Regs[vm.R1] = 5
	p.Regs[vm.R2] = 0
	p.Regs[vm.R3] = vm.Word(len(payload))

	if err := h.Handle(context.Background(), p, vm.DiskWrite); err != nil {
		tt.Fatalf("Handle(write): %v", err)
	}

	p.Regs[vm.R2] = 32
	if err := h.Handle(context.Background(), p, vm.DiskRead); err != nil {
		tt.Fatalf("Handle(read): %v", err)
	}

	got, err := p.Mem.LoadBytes(32, len(payload))
	if err != nil {
		tt.Fatalf("LoadBytes: %v", err)
	}

	if !bytes.Equal(got, payload) {
		tt.Errorf("read back %v, want %v", got, payload)
	}
}
