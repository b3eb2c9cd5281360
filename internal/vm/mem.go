package vm

// mem.go implements the flat byte-addressable memory: a single contiguous byte slice,
// sized little-endian loads and stores, and an upward-growing stack region carved out
// of the same address space.

import (
	"encoding/binary"
	"fmt"
)

// Memory is the processor's entire address space: program image, static data and the
// stack all live in one contiguous byte slice. There is no MMU and no protection
// between regions; callers (cpu.go, host handlers) are responsible for staying within
// bounds, and every accessor here returns a wrapped error rather than panicking so a
// bad address in a running program becomes an orderly Fault instead of a crash.
type Memory struct {
	bytes []byte
}

// NewMemory allocates size bytes of zeroed memory.
func NewMemory(size int) *Memory {
	return &Memory{bytes: make([]byte, size)}
}

// Size returns the total addressable byte count.
func (m *Memory) Size() int { return len(m.bytes) }

// Bytes exposes the underlying slice for the loader to populate a program image.
// Callers must not retain it past the lifetime of this Memory.
func (m *Memory) Bytes() []byte { return m.bytes }

func (m *Memory) bounds(addr Word, n Size) error {
	start := uint64(addr)
	end := start + uint64(n)
	if end > uint64(len(m.bytes)) || end < start {
		return fmt.Errorf("%w: address %s size %d", ErrOutOfBounds, addr, n)
	}

	return nil
}

// Load reads a size-byte little-endian value at addr.
func (m *Memory) Load(addr Word, size Size) (Word, error) {
	if !size.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrBadSize, size)
	}

	if err := m.bounds(addr, size); err != nil {
		return 0, err
	}

	buf := m.bytes[addr : uint64(addr)+uint64(size)]

	switch size {
	case Size1:
		return Word(buf[0]), nil
	case Size2:
		return Word(binary.LittleEndian.Uint16(buf)), nil
	case Size4:
		return Word(binary.LittleEndian.Uint32(buf)), nil
	case Size8:
		return Word(binary.LittleEndian.Uint64(buf)), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
}

// Store writes the low size bytes of v, little-endian, at addr.
func (m *Memory) Store(addr Word, size Size, v Word) error {
	if !size.Valid() {
		return fmt.Errorf("%w: %d", ErrBadSize, size)
	}

	if err := m.bounds(addr, size); err != nil {
		return err
	}

	buf := m.bytes[addr : uint64(addr)+uint64(size)]

	switch size {
	case Size1:
		buf[0] = byte(v)
	case Size2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case Size4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case Size8:
		binary.LittleEndian.PutUint64(buf, uint64(v))
	}

	return nil
}

// LoadBytes returns a copy of n raw bytes at addr, used by PRINT_STRING/PRINT_BYTES and
// the filesystem handlers. A copy, not a slice into memory, so a host handler cannot
// observe later mutation of the image while it is still working with the buffer.
func (m *Memory) LoadBytes(addr Word, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length", ErrOutOfBounds)
	}

	start := uint64(addr)
	end := start + uint64(n)
	if end > uint64(len(m.bytes)) || end < start {
		return nil, fmt.Errorf("%w: address %s length %d", ErrOutOfBounds, addr, n)
	}

	out := make([]byte, n)
	copy(out, m.bytes[start:end])

	return out, nil
}

// LoadCString reads a NUL-terminated byte string starting at addr, the convention
// PRINT_STRING/INPUT_STRING use. The terminator is not included in the result.
func (m *Memory) LoadCString(addr Word) ([]byte, error) {
	start := uint64(addr)
	if start > uint64(len(m.bytes)) {
		return nil, fmt.Errorf("%w: address %s", ErrOutOfBounds, addr)
	}

	i := start
	for i < uint64(len(m.bytes)) && m.bytes[i] != 0 {
		i++
	}

	if i >= uint64(len(m.bytes)) {
		return nil, fmt.Errorf("%w: unterminated string at %s", ErrOutOfBounds, addr)
	}

	out := make([]byte, i-start)
	copy(out, m.bytes[start:i])

	return out, nil
}

// StoreBytes writes raw bytes at addr with no size framing, used by DISK_READ and
// INPUT_STRING.
func (m *Memory) StoreBytes(addr Word, data []byte) error {
	start := uint64(addr)
	end := start + uint64(len(data))
	if end > uint64(len(m.bytes)) || end < start {
		return fmt.Errorf("%w: address %s length %d", ErrOutOfBounds, addr, len(data))
	}

	copy(m.bytes[start:end], data)

	return nil
}

// Stack is the upward-growing region of memory addressed by the stp/sbp registers. It
// is not a distinct allocation: it is a view over the same Memory, and the processor is
// responsible for keeping stp within [sbp, limit).
type Stack struct {
	mem   *Memory
	limit Word
}

// NewStack returns a Stack view over mem that refuses to grow stp past limit.
func NewStack(mem *Memory, limit Word) *Stack {
	return &Stack{mem: mem, limit: limit}
}

// Push writes size bytes of v at *stp and advances stp by size, per the
// caller-pushes-right-to-left calling convention. It fails without mutating stp if the
// write would cross limit.
func (s *Stack) Push(stp *Word, size Size, v Word) error {
	next := uint64(*stp) + uint64(size)
	if next > uint64(s.limit) {
		return fmt.Errorf("%w: stp %s size %d limit %s", ErrStackOverflow, *stp, size, s.limit)
	}

	if err := s.mem.Store(*stp, size, v); err != nil {
		return err
	}

	*stp = Word(next)

	return nil
}

// Pop retreats stp by size and returns the size bytes that were there. It fails without
// mutating stp if fewer than size bytes lie between base and stp.
func (s *Stack) Pop(stp *Word, base Word, size Size) (Word, error) {
	if uint64(*stp) < uint64(base)+uint64(size) {
		return 0, fmt.Errorf("%w: stp %s base %s size %d", ErrStackOverflow, *stp, base, size)
	}

	newStp := Word(uint64(*stp) - uint64(size))

	v, err := s.mem.Load(newStp, size)
	if err != nil {
		return 0, err
	}

	*stp = newStp

	return v, nil
}

// Reserve advances stp by n bytes without writing, carving out space for pushsp's
// local-variable reservation. It fails without mutating stp if the advance would cross
// limit.
func (s *Stack) Reserve(stp *Word, n Word) error {
	next := uint64(*stp) + uint64(n)
	if next > uint64(s.limit) {
		return fmt.Errorf("%w: stp %s n %s limit %s", ErrStackOverflow, *stp, n, s.limit)
	}

	*stp = Word(next)

	return nil
}

// Release retreats stp by n bytes without reading, popsp's counterpart to Reserve. It
// fails without mutating stp if the retreat would cross base.
func (s *Stack) Release(stp *Word, base Word, n Word) error {
	if uint64(*stp) < uint64(base)+uint64(n) {
		return fmt.Errorf("%w: stp %s base %s n %s", ErrStackOverflow, *stp, base, n)
	}

	*stp = Word(uint64(*stp) - uint64(n))

	return nil
}
